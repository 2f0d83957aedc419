package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/appsalon/booking-api/internal/model"
)

// ServiceRepo persists catalog services and their attached images.
type ServiceRepo struct{ DB *sql.DB }

func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{DB: db} }

// Create inserts a service with an empty image sequence and fills in its ID.
func (r *ServiceRepo) Create(ctx context.Context, s *model.Service) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO services (name, description, price) VALUES (?,?,?)",
		s.Name, s.Description, s.Price)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// List returns all services with their images, unfiltered and unpaginated.
func (r *ServiceRepo) List(ctx context.Context) ([]model.Service, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,description,price,created_at,updated_at FROM services ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := []model.Service{}
	index := map[uint64]int{}
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		index[s.ID] = len(services)
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	imgs, err := r.DB.QueryContext(ctx,
		"SELECT id,service_id,object_key,url,position FROM service_images ORDER BY service_id, position")
	if err != nil {
		return nil, err
	}
	defer imgs.Close()
	for imgs.Next() {
		var im model.ServiceImage
		if err := imgs.Scan(&im.ID, &im.ServiceID, &im.ObjectKey, &im.URL, &im.Position); err != nil {
			return nil, err
		}
		if i, ok := index[im.ServiceID]; ok {
			services[i].Images = append(services[i].Images, im)
		}
	}
	return services, imgs.Err()
}

// GetByID fetches a single service with its images.
func (r *ServiceRepo) GetByID(ctx context.Context, id uint64) (model.Service, error) {
	var s model.Service
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,description,price,created_at,updated_at FROM services WHERE id=? LIMIT 1",
		id).Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Service{}, ErrNotFound
	}
	if err != nil {
		return model.Service{}, err
	}
	imgs, err := r.ListImages(ctx, id)
	if err != nil {
		return model.Service{}, err
	}
	s.Images = imgs
	return s, nil
}

// GetByIDs resolves a set of service ids, used when snapshotting prices
// into an appointment. The result preserves the requested order and is
// shorter than the input when some ids do not exist.
func (r *ServiceRepo) GetByIDs(ctx context.Context, ids []uint64) ([]model.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,description,price FROM services WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := map[uint64]model.Service{}
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Price); err != nil {
			return nil, err
		}
		byID[s.ID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]model.Service, 0, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// Update applies only the provided fields. Nil pointers mean "leave
// unchanged", so an explicitly empty string or zero price is still a
// legitimate update value.
func (r *ServiceRepo) Update(ctx context.Context, id uint64, name, description *string, price *float64) error {
	sets := []string{}
	args := []any{}
	if name != nil {
		sets = append(sets, "name=?")
		args = append(args, *name)
	}
	if description != nil {
		sets = append(sets, "description=?")
		args = append(args, *description)
	}
	if price != nil {
		sets = append(sets, "price=?")
		args = append(args, *price)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE services SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// The row may exist with identical values; distinguish via lookup.
		var exists uint64
		err := r.DB.QueryRowContext(ctx, "SELECT id FROM services WHERE id=? LIMIT 1", id).Scan(&exists)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Delete removes a service row. Snapshot rows on appointments keep the
// booked name and price, so history survives catalog deletions.
func (r *ServiceRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM services WHERE id=?", id)
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
	return nil
}

// AddImage appends an image record at the end of the service's sequence
// and returns its id.
func (r *ServiceRepo) AddImage(ctx context.Context, serviceID uint64, objectKey, url string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO service_images (service_id, object_key, url, position)
		 SELECT ?, ?, ?, COALESCE(MAX(position)+1, 0) FROM service_images WHERE service_id=?`,
		serviceID, objectKey, url, serviceID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListImages returns the image sequence of a service in display order.
func (r *ServiceRepo) ListImages(ctx context.Context, serviceID uint64) ([]model.ServiceImage, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,service_id,object_key,url,position FROM service_images WHERE service_id=? ORDER BY position",
		serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ServiceImage{}
	for rows.Next() {
		var im model.ServiceImage
		if err := rows.Scan(&im.ID, &im.ServiceID, &im.ObjectKey, &im.URL, &im.Position); err != nil {
			return nil, err
		}
		out = append(out, im)
	}
	return out, rows.Err()
}

// GetImage fetches one image by id, scoped to its service so an image id
// from another service cannot be targeted.
func (r *ServiceRepo) GetImage(ctx context.Context, serviceID, imageID uint64) (model.ServiceImage, error) {
	var im model.ServiceImage
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,service_id,object_key,url,position FROM service_images WHERE id=? AND service_id=? LIMIT 1",
		imageID, serviceID).Scan(&im.ID, &im.ServiceID, &im.ObjectKey, &im.URL, &im.Position)
	if err == sql.ErrNoRows {
		return model.ServiceImage{}, ErrNotFound
	}
	if err != nil {
		return model.ServiceImage{}, err
	}
	return im, nil
}

// DeleteImage removes a single image record by exact id match.
func (r *ServiceRepo) DeleteImage(ctx context.Context, serviceID, imageID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM service_images WHERE id=? AND service_id=?", imageID, serviceID)
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
	return nil
}
