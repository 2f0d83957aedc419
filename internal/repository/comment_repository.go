package repository

import (
	"context"
	"database/sql"

	"github.com/appsalon/booking-api/internal/model"
)

// CommentRepo persists service comments. Comments are create-only.
type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

// Create inserts a comment and fills in its id and creation time.
func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO comments (user_id, service_id, body, rating) VALUES (?,?,?,?)",
		c.UserID, c.ServiceID, c.Body, c.Rating)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at FROM comments WHERE id=?", c.ID).Scan(&c.CreatedAt)
}

// ListAll returns every comment with author and target service resolved.
func (r *CommentRepo) ListAll(ctx context.Context) ([]model.Comment, error) {
	return r.list(ctx, commentQuery+" ORDER BY c.created_at DESC")
}

// ListByService returns the comments targeting one service. Whether the
// service exists at all is checked by the caller beforehand, so an empty
// result here really means "no comments yet".
func (r *CommentRepo) ListByService(ctx context.Context, serviceID uint64) ([]model.Comment, error) {
	return r.list(ctx, commentQuery+" WHERE c.service_id=? ORDER BY c.created_at DESC", serviceID)
}

const commentQuery = `SELECT c.id, c.user_id, c.service_id, c.body, c.rating, c.created_at,
       u.id, u.name, u.email, s.name
FROM comments c
JOIN users u ON u.id = c.user_id
JOIN services s ON s.id = c.service_id`

func (r *CommentRepo) list(ctx context.Context, query string, args ...any) ([]model.Comment, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Comment{}
	for rows.Next() {
		var (
			c      model.Comment
			u      model.AppointmentUser
			rating sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.ServiceID, &c.Body, &rating, &c.CreatedAt,
			&u.ID, &u.Name, &u.Email, &c.Service); err != nil {
			return nil, err
		}
		if rating.Valid {
			v := int(rating.Int64)
			c.Rating = &v
		}
		c.User = &u
		out = append(out, c)
	}
	return out, rows.Err()
}
