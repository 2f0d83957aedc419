package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/appsalon/booking-api/internal/model"
	repo "github.com/appsalon/booking-api/internal/repository"
)

func TestAppointmentRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := repo.NewAppointmentRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO appointments (user_id, date, time, total) VALUES (?,?,?,?)")).
		WithArgs(uint64(1), "2026-09-10", "10:30", 35.0).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO appointment_services (appointment_id, service_id, name, price) VALUES (?,?,?,?)")).
		WithArgs(uint64(11), uint64(1), "Corte", 10.0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO appointment_services (appointment_id, service_id, name, price) VALUES (?,?,?,?)")).
		WithArgs(uint64(11), uint64(3), "Tinte", 25.0).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	a := model.Appointment{
		UserID: 1,
		Date:   time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		Time:   "10:30",
		Total:  35.0,
		Services: []model.AppointmentService{
			{ServiceID: 1, Name: "Corte", Price: 10.0},
			{ServiceID: 3, Name: "Tinte", Price: 25.0},
		},
	}
	require.NoError(t, r.Create(context.Background(), &a))
	require.Equal(t, uint64(11), a.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepo_Create_SlotTaken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := repo.NewAppointmentRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO appointments").
		WillReturnError(&mysqlError{msg: "Error 1062 (23000): Duplicate entry '2026-09-10-10:30' for key 'uq_appointments_slot'"})
	mock.ExpectRollback()

	a := model.Appointment{
		UserID: 2,
		Date:   time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		Time:   "10:30",
		Total:  10.0,
		Services: []model.AppointmentService{
			{ServiceID: 1, Name: "Corte", Price: 10.0},
		},
	}
	err = r.Create(context.Background(), &a)
	require.ErrorIs(t, err, repo.ErrSlotTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepo_Update_ReplacesSnapshot(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := repo.NewAppointmentRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET date=?, time=?, total=? WHERE id=?")).
		WithArgs("2026-09-12", "16:00", 25.0, uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM appointment_services WHERE appointment_id=?")).
		WithArgs(uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO appointment_services").
		WithArgs(uint64(11), uint64(3), "Tinte", 25.0).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	a := model.Appointment{
		ID:    11,
		Date:  time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		Time:  "16:00",
		Total: 25.0,
		Services: []model.AppointmentService{
			{ServiceID: 3, Name: "Tinte", Price: 25.0},
		},
	}
	require.NoError(t, r.Update(context.Background(), &a))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepo_Delete_Unknown(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := repo.NewAppointmentRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM appointment_services WHERE appointment_id=?")).
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM appointments WHERE id=?")).
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = r.Delete(context.Background(), 99)
	require.ErrorIs(t, err, repo.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepo_BookedTimes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := repo.NewAppointmentRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT time FROM appointments WHERE date=? ORDER BY time")).
		WithArgs("2026-09-10").
		WillReturnRows(sqlmock.NewRows([]string{"time"}).AddRow("10:30").AddRow("14:00"))

	times, err := r.BookedTimes(context.Background(), time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, []string{"10:30", "14:00"}, times)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepo_BookedTimes_EmptyDay(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := repo.NewAppointmentRepo(db)

	mock.ExpectQuery("SELECT time FROM appointments").
		WithArgs("2026-09-11").
		WillReturnRows(sqlmock.NewRows([]string{"time"}))

	times, err := r.BookedTimes(context.Background(), time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, times)
	require.Empty(t, times)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepo_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := repo.NewAppointmentRepo(db)

	now := time.Now()
	day := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT a.id, a.user_id, a.date, a.time, a.total").
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "date", "time", "total", "created_at", "updated_at", "uid", "uname", "uemail"}).
			AddRow(11, 1, day, "10:30", 35.0, now, now, 1, "Ann", "ann@x.com"))
	mock.ExpectQuery("SELECT appointment_id, service_id, name, price FROM appointment_services").
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"appointment_id", "service_id", "name", "price"}).
			AddRow(11, 1, "Corte", 10.0).
			AddRow(11, 3, "Tinte", 25.0))

	a, err := r.GetByID(context.Background(), 11)
	require.NoError(t, err)
	require.Equal(t, uint64(1), a.UserID)
	require.NotNil(t, a.User)
	require.Equal(t, "Ann", a.User.Name)
	require.Len(t, a.Services, 2)
	require.Equal(t, 25.0, a.Services[1].Price)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepo_ListFuture_UserFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := repo.NewAppointmentRepo(db)

	now := time.Now()
	day := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("WHERE a.date >= CURDATE\\(\\) AND a.user_id=").
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "date", "time", "total", "created_at", "updated_at", "uid", "uname", "uemail"}).
			AddRow(11, 1, day, "10:30", 35.0, now, now, 1, "Ann", "ann@x.com"))
	mock.ExpectQuery("SELECT appointment_id, service_id, name, price FROM appointment_services").
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"appointment_id", "service_id", "name", "price"}).
			AddRow(11, 1, "Corte", 10.0))

	out, err := r.ListFuture(context.Background(), 1, false)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0].Services, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepo_ListFuture_AdminSeesAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := repo.NewAppointmentRepo(db)

	now := time.Now()
	day := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("WHERE a.date >= CURDATE\\(\\) ORDER BY a.date, a.time").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "date", "time", "total", "created_at", "updated_at", "uid", "uname", "uemail"}).
			AddRow(11, 1, day, "10:30", 35.0, now, now, 1, "Ann", "ann@x.com").
			AddRow(12, 2, day, "14:00", 10.0, now, now, 2, "Bob", "bob@x.com"))
	mock.ExpectQuery("SELECT appointment_id, service_id, name, price FROM appointment_services").
		WithArgs(uint64(11), uint64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"appointment_id", "service_id", "name", "price"}).
			AddRow(11, 1, "Corte", 10.0).
			AddRow(12, 1, "Corte", 10.0))

	out, err := r.ListFuture(context.Background(), 0, true)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "bob@x.com", out[1].User.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}
