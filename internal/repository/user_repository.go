package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/appsalon/booking-api/internal/model"
	"github.com/appsalon/booking-api/internal/utils"
)

// UserRepo persists user accounts in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id,name,email,password_hash,admin,verified,token,token_purpose,created_at,updated_at"

// Create inserts an unverified user with a pending verification token and
// returns its ID. The password is hashed here so callers never handle the
// hash directly.
func (r *UserRepo) Create(ctx context.Context, name, email, password string, cost int, token string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, token, token_purpose) VALUES (?,?,?,?,?)",
		name, email, hash, token, model.TokenPurposeVerify)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx, "SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id)
}

// GetByToken fetches the user holding a pending one-time token issued for
// the given purpose. A token issued for verification can never pass a
// password-reset lookup and vice versa.
func (r *UserRepo) GetByToken(ctx context.Context, token, purpose string) (model.User, error) {
	if token == "" {
		return model.User{}, ErrNotFound
	}
	return r.getOne(ctx,
		"SELECT "+userCols+" FROM users WHERE token=? AND token_purpose=? LIMIT 1",
		token, purpose)
}

// MarkVerified flips the verified flag and clears the pending token.
func (r *UserRepo) MarkVerified(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET verified=1, token='', token_purpose=NULL WHERE id=?", id)
	return err
}

// SetToken stores a fresh one-time token issued for the given purpose,
// replacing any outstanding token.
func (r *UserRepo) SetToken(ctx context.Context, id uint64, token, purpose string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET token=?, token_purpose=? WHERE id=?", token, purpose, id)
	return err
}

// UpdatePassword replaces the password hash and clears the pending token.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, token='', token_purpose=NULL WHERE id=?", hash, id)
	return err
}

func (r *UserRepo) getOne(ctx context.Context, query string, args ...any) (model.User, error) {
	var (
		u       model.User
		token   sql.NullString
		purpose sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Admin, &u.Verified,
		&token, &purpose, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	u.Token = token.String
	u.TokenPurpose = purpose.String
	return u, nil
}
