package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/appsalon/booking-api/internal/middleware"
	"github.com/appsalon/booking-api/internal/model"
	"github.com/appsalon/booking-api/internal/repository"
)

// CommentHandler bundles dependencies for comment endpoints.
type CommentHandler struct {
	Comments *repository.CommentRepo
	Services *repository.ServiceRepo
}

func NewCommentHandler(comments *repository.CommentRepo, services *repository.ServiceRepo) *CommentHandler {
	return &CommentHandler{Comments: comments, Services: services}
}

type commentReq struct {
	ServiceID uint64 `json:"serviceId"`
	Body      string `json:"body"`
	Rating    *int   `json:"rating"`
}

// Create attaches a comment to a service. The target service must exist;
// a comment can never point at nothing.
func (h *CommentHandler) Create(c echo.Context) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"msg": "Token no válido o inexistente"})
	}
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Solicitud no válida"})
	}
	req.Body = strings.TrimSpace(req.Body)
	if req.ServiceID == 0 || req.Body == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Todos los campos son obligatorios"})
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "La calificación debe estar entre 1 y 5"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if _, err := h.Services.GetByID(ctx, req.ServiceID); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"msg": "El servicio no existe"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Hubo un error"})
	}

	comment := model.Comment{
		UserID:    caller.ID,
		ServiceID: req.ServiceID,
		Body:      req.Body,
		Rating:    req.Rating,
	}
	if err := h.Comments.Create(ctx, &comment); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Hubo un error al procesar tu solicitud"})
	}
	comment.User = &model.AppointmentUser{ID: caller.ID, Name: caller.Name, Email: caller.Email}

	return c.JSON(http.StatusCreated, echo.Map{"msg": "Tu comentario se creó correctamente", "comment": comment})
}

// ListAll returns every comment with author and service resolved.
func (h *CommentHandler) ListAll(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	comments, err := h.Comments.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Error al obtener comentarios"})
	}
	return c.JSON(http.StatusOK, comments)
}

// ListForService returns the comments of one service. The service's
// existence is checked first so an unknown id answers 404 while a service
// without comments answers an empty list.
func (h *CommentHandler) ListForService(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "El id no es válido"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if _, err := h.Services.GetByID(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"msg": "El servicio no existe"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Hubo un error"})
	}
	comments, err := h.Comments.ListByService(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Error al obtener comentarios"})
	}
	return c.JSON(http.StatusOK, comments)
}
