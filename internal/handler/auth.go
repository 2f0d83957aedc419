package handler

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/appsalon/booking-api/internal/config"
	"github.com/appsalon/booking-api/internal/middleware"
	"github.com/appsalon/booking-api/internal/model"
	"github.com/appsalon/booking-api/internal/repository"
	"github.com/appsalon/booking-api/internal/utils"
)

// userTokenTTL is how long issued bearer tokens stay valid.
const userTokenTTL = 30 * 24 * time.Hour

// minPasswordLen applies to registration and password reset, measured
// after trimming.
const minPasswordLen = 8

// AuthMailer sends the account emails. Sends happen fire-and-forget from
// the handler; a mail failure never fails the request.
type AuthMailer interface {
	SendVerification(to, name, token string) error
	SendPasswordReset(to, name, token string) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Mail  AuthMailer
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo, mail AuthMailer) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Mail: mail}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type emailReq struct {
	Email string `json:"email"`
}
type passwordReq struct {
	Password string `json:"password"`
}

// Register creates an unverified user and mails the verification link.
// Neither the user record nor a credential is returned; the account is
// unusable until verified.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Solicitud no válida"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Todos los campos son obligatorios"})
	}
	if len(strings.TrimSpace(req.Password)) < minPasswordLen {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "La contraseña debe contener al menos 8 caracteres"})
	}

	token, err := utils.NewOneTimeToken()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Hubo un error"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	if _, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, h.Cfg.BcryptCost, token); err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Ya existe un usuario con ese correo"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Hubo un error"})
	}

	go func(to, name, token string) {
		if err := h.Mail.SendVerification(to, name, token); err != nil {
			log.Printf("mail: verification to %s failed: %v", to, err)
		}
	}(req.Email, req.Name, token)

	return c.JSON(http.StatusOK, echo.Map{"msg": "El usuario se creó correctamente, revisa tu email"})
}

// VerifyAccount confirms an email address via its one-time token.
func (h *AuthHandler) VerifyAccount(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByToken(ctx, c.Param("token"), model.TokenPurposeVerify)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"msg": "Hubo un error, token no válido"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Hubo un error"})
	}
	if err := h.Users.MarkVerified(ctx, u.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Hubo un error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "Usuario confirmado correctamente"})
}

// Login authenticates a verified user and issues a bearer token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Solicitud no válida"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"msg": "El usuario no existe"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Hubo un error"})
	}
	if !u.Verified {
		return c.JSON(http.StatusUnauthorized, echo.Map{"msg": "Tu cuenta no ha sido confirmada aún"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"msg": "La contraseña es incorrecta"})
	}

	token, err := utils.NewUserToken(h.Cfg.JWTSecret, u.ID, userTokenTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Hubo un error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

// ForgotPassword issues a reset token and mails the reset link.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Solicitud no válida"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"msg": "El correo no existe"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Hubo un error"})
	}

	token, err := utils.NewOneTimeToken()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Hubo un error"})
	}
	if err := h.Users.SetToken(ctx, u.ID, token, model.TokenPurposeReset); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Hubo un error"})
	}

	go func(to, name, token string) {
		if err := h.Mail.SendPasswordReset(to, name, token); err != nil {
			log.Printf("mail: password reset to %s failed: %v", to, err)
		}
	}(u.Email, u.Name, token)

	return c.JSON(http.StatusOK, echo.Map{"msg": "Hemos enviado un email con las instrucciones"})
}

// VerifyResetToken confirms a reset token is outstanding without mutating
// any state, so the frontend can show the new-password form.
func (h *AuthHandler) VerifyResetToken(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	if _, err := h.Users.GetByToken(ctx, c.Param("token"), model.TokenPurposeReset); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Hubo un error, token no válido"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Hubo un error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "Token válido"})
}

// UpdatePassword consumes a reset token and stores the new password.
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByToken(ctx, c.Param("token"), model.TokenPurposeReset)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Hubo un error, token no válido"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Hubo un error"})
	}

	var req passwordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Solicitud no válida"})
	}
	if len(strings.TrimSpace(req.Password)) < minPasswordLen {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "La contraseña debe contener al menos 8 caracteres"})
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, req.Password, h.Cfg.BcryptCost); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Hubo un error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "Contraseña modificada correctamente"})
}

// User returns the caller's profile; identity was resolved by the Auth
// middleware.
func (h *AuthHandler) User(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"msg": "Token no válido o inexistente"})
	}
	return c.JSON(http.StatusOK, u)
}

// Admin returns the caller's profile only when the admin flag is set.
func (h *AuthHandler) Admin(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"msg": "Token no válido o inexistente"})
	}
	if !u.Admin {
		return c.JSON(http.StatusForbidden, echo.Map{"msg": "Acción no válida"})
	}
	return c.JSON(http.StatusOK, u)
}
