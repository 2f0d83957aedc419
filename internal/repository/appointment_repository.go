package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/appsalon/booking-api/internal/model"
)

// AppointmentRepo persists appointments together with their service
// snapshot rows. The appointment row and its snapshot always change in
// the same transaction so a booking can never be observed without the
// prices that were charged for it.
type AppointmentRepo struct{ DB *sql.DB }

func NewAppointmentRepo(db *sql.DB) *AppointmentRepo { return &AppointmentRepo{DB: db} }

// Create inserts the appointment and its snapshot rows and fills in the
// id. A unique key on (date, time) rejects double bookings; that
// violation surfaces as ErrSlotTaken.
func (r *AppointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO appointments (user_id, date, time, total) VALUES (?,?,?,?)",
		a.UserID, a.Date.Format("2006-01-02"), a.Time, a.Total)
	if err != nil {
		if isDuplicate(err) {
			return ErrSlotTaken
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)

	if err := insertSnapshot(ctx, tx, a.ID, a.Services); err != nil {
		return err
	}
	return tx.Commit()
}

// Update rewrites the appointment row and replaces its snapshot rows.
func (r *AppointmentRepo) Update(ctx context.Context, a *model.Appointment) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"UPDATE appointments SET date=?, time=?, total=? WHERE id=?",
		a.Date.Format("2006-01-02"), a.Time, a.Total, a.ID); err != nil {
		if isDuplicate(err) {
			return ErrSlotTaken
		}
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM appointment_services WHERE appointment_id=?", a.ID); err != nil {
		return err
	}
	if err := insertSnapshot(ctx, tx, a.ID, a.Services); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes the appointment and its snapshot rows.
func (r *AppointmentRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM appointment_services WHERE appointment_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM appointments WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// GetByID fetches one appointment with its snapshot rows and owner view.
func (r *AppointmentRepo) GetByID(ctx context.Context, id uint64) (model.Appointment, error) {
	var (
		a model.Appointment
		u model.AppointmentUser
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT a.id, a.user_id, a.date, a.time, a.total, a.created_at, a.updated_at,
		        u.id, u.name, u.email
		 FROM appointments a JOIN users u ON u.id = a.user_id
		 WHERE a.id=? LIMIT 1`, id).
		Scan(&a.ID, &a.UserID, &a.Date, &a.Time, &a.Total, &a.CreatedAt, &a.UpdatedAt,
			&u.ID, &u.Name, &u.Email)
	if err == sql.ErrNoRows {
		return model.Appointment{}, ErrNotFound
	}
	if err != nil {
		return model.Appointment{}, err
	}
	a.User = &u
	snaps, err := r.loadSnapshots(ctx, []uint64{a.ID})
	if err != nil {
		return model.Appointment{}, err
	}
	a.Services = snaps[a.ID]
	return a, nil
}

// BookedTimes returns the time slots already taken on a calendar day,
// sorted ascending. Callers infer free slots by exclusion.
func (r *AppointmentRepo) BookedTimes(ctx context.Context, day time.Time) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT time FROM appointments WHERE date=? ORDER BY time",
		day.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListFuture returns future-dated appointments sorted ascending by date
// and time. With all=true the user filter is skipped (admin view);
// otherwise only the given user's bookings are returned.
func (r *AppointmentRepo) ListFuture(ctx context.Context, userID uint64, all bool) ([]model.Appointment, error) {
	query := `SELECT a.id, a.user_id, a.date, a.time, a.total, a.created_at, a.updated_at,
	                 u.id, u.name, u.email
	          FROM appointments a JOIN users u ON u.id = a.user_id
	          WHERE a.date >= CURDATE()`
	args := []any{}
	if !all {
		query += " AND a.user_id=?"
		args = append(args, userID)
	}
	query += " ORDER BY a.date, a.time"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Appointment{}
	ids := []uint64{}
	for rows.Next() {
		var (
			a model.Appointment
			u model.AppointmentUser
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Date, &a.Time, &a.Total, &a.CreatedAt, &a.UpdatedAt,
			&u.ID, &u.Name, &u.Email); err != nil {
			return nil, err
		}
		a.User = &u
		out = append(out, a)
		ids = append(ids, a.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	snaps, err := r.loadSnapshots(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Services = snaps[out[i].ID]
	}
	return out, nil
}

func insertSnapshot(ctx context.Context, tx *sql.Tx, appointmentID uint64, services []model.AppointmentService) error {
	for _, s := range services {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO appointment_services (appointment_id, service_id, name, price) VALUES (?,?,?,?)",
			appointmentID, s.ServiceID, s.Name, s.Price); err != nil {
			return err
		}
	}
	return nil
}

func (r *AppointmentRepo) loadSnapshots(ctx context.Context, ids []uint64) (map[uint64][]model.AppointmentService, error) {
	out := map[uint64][]model.AppointmentService{}
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT appointment_id, service_id, name, price FROM appointment_services WHERE appointment_id IN ("+placeholders+") ORDER BY id",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			aid uint64
			s   model.AppointmentService
		)
		if err := rows.Scan(&aid, &s.ServiceID, &s.Name, &s.Price); err != nil {
			return nil, err
		}
		out[aid] = append(out[aid], s)
	}
	return out, rows.Err()
}
