package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/appsalon/booking-api/internal/middleware"
	"github.com/appsalon/booking-api/internal/model"
	"github.com/appsalon/booking-api/internal/queue"
	"github.com/appsalon/booking-api/internal/repository"
)

// EventPublisher emits appointment lifecycle events after the database
// commit. Failures are swallowed by the handler: the booking stands even
// when the notification is lost.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.AppointmentEvent) error
}

// AppointmentHandler bundles dependencies for booking endpoints.
type AppointmentHandler struct {
	Appointments *repository.AppointmentRepo
	Services     *repository.ServiceRepo
	Events       EventPublisher
}

func NewAppointmentHandler(appts *repository.AppointmentRepo, services *repository.ServiceRepo, events EventPublisher) *AppointmentHandler {
	return &AppointmentHandler{Appointments: appts, Services: services, Events: events}
}

type appointmentReq struct {
	Services []uint64 `json:"services"`
	Date     string   `json:"date"` // dd/MM/yyyy
	Time     string   `json:"time"` // HH:MM
}

// Create books an appointment for the caller. The referenced services'
// name and price are snapshotted and the total is computed server-side
// from that snapshot; the client never supplies an amount.
func (h *AppointmentHandler) Create(c echo.Context) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"msg": "Token no válido o inexistente"})
	}
	var req appointmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Solicitud no válida"})
	}
	if len(req.Services) == 0 || req.Date == "" || req.Time == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Todos los campos son obligatorios"})
	}
	day, err := time.Parse(wireDate, req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Fecha no válida"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	snapshot, total, err := h.snapshot(ctx, req.Services)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Hay servicios que no existen"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Error al crear la cita"})
	}

	appt := model.Appointment{
		UserID:   caller.ID,
		Date:     day,
		Time:     req.Time,
		Total:    total,
		Services: snapshot,
	}
	if err := h.Appointments.Create(ctx, &appt); err != nil {
		if err == repository.ErrSlotTaken {
			return c.JSON(http.StatusConflict, echo.Map{"msg": "Esa fecha y hora ya no están disponibles"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Error al crear la cita"})
	}

	// Post-commit; a lost event never unbooks the appointment.
	_ = h.Events.Publish(ctx, h.event(queue.KindBooked, &appt, caller))

	return c.JSON(http.StatusOK, echo.Map{"msg": "Tu reservación se realizó correctamente"})
}

// BookedTimes lists the already-booked time slots for a calendar day so
// clients can offer the remaining ones.
func (h *AppointmentHandler) BookedTimes(c echo.Context) error {
	day, err := time.Parse(wireDate, c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Fecha no válida"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	times, err := h.Appointments.BookedTimes(ctx, day)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Hubo un error"})
	}
	return c.JSON(http.StatusOK, times)
}

// GetByID returns one appointment to its owner, or to an admin.
func (h *AppointmentHandler) GetByID(c echo.Context) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"msg": "Token no válido o inexistente"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "El id no es válido"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	appt, err := h.Appointments.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"msg": "La cita no existe"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Hubo un error"})
	}
	if appt.UserID != caller.ID && !caller.Admin {
		return c.JSON(http.StatusForbidden, echo.Map{"msg": "No tienes los permisos"})
	}
	return c.JSON(http.StatusOK, appt)
}

// Update rewrites an appointment's date, time and services. Only the
// owner may mutate; the snapshot and total are recomputed from the
// current catalog.
func (h *AppointmentHandler) Update(c echo.Context) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"msg": "Token no válido o inexistente"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "El id no es válido"})
	}
	var req appointmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Solicitud no válida"})
	}
	if len(req.Services) == 0 || req.Date == "" || req.Time == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Todos los campos son obligatorios"})
	}
	day, err := time.Parse(wireDate, req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Fecha no válida"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	appt, err := h.Appointments.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"msg": "La cita no existe"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Hubo un error"})
	}
	if appt.UserID != caller.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"msg": "No tienes los permisos"})
	}

	snapshot, total, err := h.snapshot(ctx, req.Services)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Hay servicios que no existen"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Error al actualizar la cita"})
	}

	appt.Date = day
	appt.Time = req.Time
	appt.Total = total
	appt.Services = snapshot
	if err := h.Appointments.Update(ctx, &appt); err != nil {
		if err == repository.ErrSlotTaken {
			return c.JSON(http.StatusConflict, echo.Map{"msg": "Esa fecha y hora ya no están disponibles"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Error al actualizar la cita"})
	}

	_ = h.Events.Publish(ctx, h.event(queue.KindUpdated, &appt, caller))

	return c.JSON(http.StatusOK, echo.Map{"msg": "Cita actualizada correctamente"})
}

// Cancel deletes an appointment. Deletion commits first; the cancellation
// email is dispatched only for a booking that is really gone.
func (h *AppointmentHandler) Cancel(c echo.Context) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"msg": "Token no válido o inexistente"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "El id no es válido"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	appt, err := h.Appointments.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"msg": "La cita no existe"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Hubo un error"})
	}
	if appt.UserID != caller.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"msg": "No tienes los permisos"})
	}

	if err := h.Appointments.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Error al cancelar la cita"})
	}

	_ = h.Events.Publish(ctx, h.event(queue.KindCancelled, &appt, caller))

	return c.JSON(http.StatusOK, echo.Map{"msg": "Cita cancelada exitosamente"})
}

// ListForUser returns a user's future appointments sorted ascending by
// date. Admin callers get the system-wide future agenda regardless of the
// :user parameter.
func (h *AppointmentHandler) ListForUser(c echo.Context) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"msg": "Token no válido o inexistente"})
	}
	target, ok := parseID(c, "user")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Parámetros inválidos"})
	}
	if target != caller.ID && !caller.Admin {
		return c.JSON(http.StatusForbidden, echo.Map{"msg": "Acceso denegado"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	appts, err := h.Appointments.ListFuture(ctx, target, caller.Admin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Hubo un error"})
	}
	return c.JSON(http.StatusOK, appts)
}

// snapshot resolves service ids against the catalog and returns the
// snapshot rows plus their summed price. ErrNotFound means at least one
// id did not resolve.
func (h *AppointmentHandler) snapshot(ctx context.Context, ids []uint64) ([]model.AppointmentService, float64, error) {
	// Dedupe so a repeated id counts (and charges) once.
	seen := map[uint64]bool{}
	uniq := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}
	ids = uniq

	services, err := h.Services.GetByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	if len(services) != len(ids) {
		return nil, 0, repository.ErrNotFound
	}
	snapshot := make([]model.AppointmentService, len(services))
	total := 0.0
	for i, s := range services {
		snapshot[i] = model.AppointmentService{ServiceID: s.ID, Name: s.Name, Price: s.Price}
		total += s.Price
	}
	return snapshot, total, nil
}

func (h *AppointmentHandler) event(kind string, a *model.Appointment, u model.User) queue.AppointmentEvent {
	names := make([]string, len(a.Services))
	for i, s := range a.Services {
		names[i] = s.Name
	}
	return queue.AppointmentEvent{
		Kind:          kind,
		AppointmentID: a.ID,
		UserName:      u.Name,
		UserEmail:     u.Email,
		Date:          a.Date.Format(wireDate),
		Time:          a.Time,
		Services:      names,
		Total:         a.Total,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
}
