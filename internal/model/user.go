package model

import "time"

// Token purposes for the one-time token carried on a user row. The same
// column backs both email verification and password reset, so every token
// is stored together with the purpose it was issued for and lookups must
// match both.
const (
	TokenPurposeVerify = "verify"
	TokenPurposeReset  = "reset"
)

// User represents an application user record as stored in the `users`
// table. Sensitive columns are excluded from JSON so that the record can
// be attached to the request context and returned from profile endpoints
// without leaking credentials or pending tokens.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  Admin        – whether the user may manage the catalog.
//  Verified     – whether the email address has been confirmed.
//  Token        – pending one-time token, empty when none is outstanding.
//  TokenPurpose – what the pending token was issued for (verify/reset).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Admin        bool      `json:"admin"`
	Verified     bool      `json:"-"`
	Token        string    `json:"-"`
	TokenPurpose string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}
