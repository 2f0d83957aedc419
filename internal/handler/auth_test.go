package handler_test

import (
	"database/sql"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/appsalon/booking-api/internal/config"
	"github.com/appsalon/booking-api/internal/handler"
	"github.com/appsalon/booking-api/internal/model"
	"github.com/appsalon/booking-api/internal/repository"
	"github.com/appsalon/booking-api/internal/utils"
)

func newAuthHandler(t *testing.T) (*handler.AuthHandler, sqlmock.Sqlmock, *fakeMailer) {
	t.Helper()
	db, mock := newMockDB(t)
	mail := newFakeMailer()
	cfg := config.Config{JWTSecret: "test-secret", BcryptCost: 4}
	return handler.NewAuthHandler(cfg, repository.NewUserRepo(db), mail), mock, mail
}

func TestRegister(t *testing.T) {
	h, mock, mail := newAuthHandler(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("Ann", "ann@x.com", sqlmock.AnyArg(), sqlmock.AnyArg(), model.TokenPurposeVerify).
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := newContext(t, http.MethodPost, "/api/auth/register",
		`{"name":"Ann","email":"Ann@X.com","password":"password123"}`)
	require.NoError(t, h.Register(c))
	requireStatus(t, rec, http.StatusOK)
	require.Contains(t, rec.Body.String(), "revisa tu email")
	require.Contains(t, mail.waitSend(t), "verification:ann@x.com:")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_ShortPassword(t *testing.T) {
	h, mock, _ := newAuthHandler(t)

	c, rec := newContext(t, http.MethodPost, "/api/auth/register",
		`{"name":"Ann","email":"ann@x.com","password":"corta"}`)
	require.NoError(t, h.Register(c))
	requireStatus(t, rec, http.StatusBadRequest)
	require.Contains(t, rec.Body.String(), "al menos 8 caracteres")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_MissingFields(t *testing.T) {
	h, _, _ := newAuthHandler(t)

	c, rec := newContext(t, http.MethodPost, "/api/auth/register",
		`{"email":"ann@x.com","password":"password123"}`)
	require.NoError(t, h.Register(c))
	requireStatus(t, rec, http.StatusBadRequest)
	require.Contains(t, rec.Body.String(), "obligatorios")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h, mock, _ := newAuthHandler(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&stubErr{"Error 1062 (23000): Duplicate entry"})

	c, rec := newContext(t, http.MethodPost, "/api/auth/register",
		`{"name":"Ann","email":"ann@x.com","password":"password123"}`)
	require.NoError(t, h.Register(c))
	requireStatus(t, rec, http.StatusBadRequest)
	require.Contains(t, rec.Body.String(), "Ya existe un usuario con ese correo")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyAccount(t *testing.T) {
	h, mock, _ := newAuthHandler(t)

	mock.ExpectQuery("WHERE token=").
		WithArgs("tok123", model.TokenPurposeVerify).
		WillReturnRows(userRow(3, "Ann", "ann@x.com", "hash", false, false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET verified=1, token='', token_purpose=NULL WHERE id=?")).
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := newContext(t, http.MethodGet, "/api/auth/verify/tok123", "")
	c.SetParamNames("token")
	c.SetParamValues("tok123")
	require.NoError(t, h.VerifyAccount(c))
	requireStatus(t, rec, http.StatusOK)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyAccount_UnknownToken(t *testing.T) {
	h, mock, _ := newAuthHandler(t)

	mock.ExpectQuery("WHERE token=").
		WithArgs("nope", model.TokenPurposeVerify).
		WillReturnError(sql.ErrNoRows)

	c, rec := newContext(t, http.MethodGet, "/api/auth/verify/nope", "")
	c.SetParamNames("token")
	c.SetParamValues("nope")
	require.NoError(t, h.VerifyAccount(c))
	requireStatus(t, rec, http.StatusUnauthorized)
	require.Contains(t, rec.Body.String(), "token no válido")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin(t *testing.T) {
	h, mock, _ := newAuthHandler(t)

	hash, err := utils.HashPassword("password123", 4)
	require.NoError(t, err)
	mock.ExpectQuery("FROM users WHERE email=").
		WithArgs("ann@x.com").
		WillReturnRows(userRow(3, "Ann", "ann@x.com", hash, false, true))

	c, rec := newContext(t, http.MethodPost, "/api/auth/login",
		`{"email":"ann@x.com","password":"password123"}`)
	require.NoError(t, h.Login(c))
	requireStatus(t, rec, http.StatusOK)
	require.Contains(t, rec.Body.String(), `"token"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_Unverified(t *testing.T) {
	h, mock, _ := newAuthHandler(t)

	mock.ExpectQuery("FROM users WHERE email=").
		WithArgs("ann@x.com").
		WillReturnRows(userRow(3, "Ann", "ann@x.com", "hash", false, false))

	c, rec := newContext(t, http.MethodPost, "/api/auth/login",
		`{"email":"ann@x.com","password":"password123"}`)
	require.NoError(t, h.Login(c))
	requireStatus(t, rec, http.StatusUnauthorized)
	require.Contains(t, rec.Body.String(), "no ha sido confirmada")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_WrongPassword(t *testing.T) {
	h, mock, _ := newAuthHandler(t)

	hash, err := utils.HashPassword("password123", 4)
	require.NoError(t, err)
	mock.ExpectQuery("FROM users WHERE email=").
		WithArgs("ann@x.com").
		WillReturnRows(userRow(3, "Ann", "ann@x.com", hash, false, true))

	c, rec := newContext(t, http.MethodPost, "/api/auth/login",
		`{"email":"ann@x.com","password":"otra-cosa"}`)
	require.NoError(t, h.Login(c))
	requireStatus(t, rec, http.StatusUnauthorized)
	require.Contains(t, rec.Body.String(), "contraseña es incorrecta")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_UnknownUser(t *testing.T) {
	h, mock, _ := newAuthHandler(t)

	mock.ExpectQuery("FROM users WHERE email=").
		WithArgs("nadie@x.com").
		WillReturnError(sql.ErrNoRows)

	c, rec := newContext(t, http.MethodPost, "/api/auth/login",
		`{"email":"nadie@x.com","password":"password123"}`)
	require.NoError(t, h.Login(c))
	requireStatus(t, rec, http.StatusUnauthorized)
	require.Contains(t, rec.Body.String(), "El usuario no existe")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestForgotPassword(t *testing.T) {
	h, mock, mail := newAuthHandler(t)

	mock.ExpectQuery("FROM users WHERE email=").
		WithArgs("ann@x.com").
		WillReturnRows(userRow(3, "Ann", "ann@x.com", "hash", false, true))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET token=?, token_purpose=? WHERE id=?")).
		WithArgs(sqlmock.AnyArg(), model.TokenPurposeReset, uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := newContext(t, http.MethodPost, "/api/auth/forgot-password",
		`{"email":"ann@x.com"}`)
	require.NoError(t, h.ForgotPassword(c))
	requireStatus(t, rec, http.StatusOK)
	require.Contains(t, mail.waitSend(t), "reset:ann@x.com:")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePassword(t *testing.T) {
	h, mock, _ := newAuthHandler(t)

	mock.ExpectQuery("WHERE token=").
		WithArgs("tok456", model.TokenPurposeReset).
		WillReturnRows(userRow(3, "Ann", "ann@x.com", "hash", false, true))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash=?, token='', token_purpose=NULL WHERE id=?")).
		WithArgs(sqlmock.AnyArg(), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := newContext(t, http.MethodPost, "/api/auth/forgot-password/tok456",
		`{"password":"nueva-clave-123"}`)
	c.SetParamNames("token")
	c.SetParamValues("tok456")
	require.NoError(t, h.UpdatePassword(c))
	requireStatus(t, rec, http.StatusOK)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePassword_ShortPassword(t *testing.T) {
	h, mock, _ := newAuthHandler(t)

	mock.ExpectQuery("WHERE token=").
		WithArgs("tok456", model.TokenPurposeReset).
		WillReturnRows(userRow(3, "Ann", "ann@x.com", "hash", false, true))

	c, rec := newContext(t, http.MethodPost, "/api/auth/forgot-password/tok456",
		`{"password":"corta"}`)
	c.SetParamNames("token")
	c.SetParamValues("tok456")
	require.NoError(t, h.UpdatePassword(c))
	requireStatus(t, rec, http.StatusBadRequest)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmin_Forbidden(t *testing.T) {
	h, _, _ := newAuthHandler(t)

	c, rec := newContext(t, http.MethodGet, "/api/auth/admin", "")
	asUser(c, model.User{ID: 3, Name: "Ann", Admin: false})
	require.NoError(t, h.Admin(c))
	requireStatus(t, rec, http.StatusForbidden)
	require.Contains(t, rec.Body.String(), "Acción no válida")
}

func userRow(id uint64, name, email, hash string, admin, verified bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "email", "password_hash", "admin", "verified",
		"token", "token_purpose", "created_at", "updated_at"}).
		AddRow(id, name, email, hash, admin, verified, "", nil, now, now)
}

type stubErr struct{ msg string }

func (e *stubErr) Error() string { return e.msg }
