package handler

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/appsalon/booking-api/internal/model"
	"github.com/appsalon/booking-api/internal/repository"
)

// ImageStore is the object-storage collaborator for service images.
type ImageStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// ServiceHandler bundles dependencies for the admin catalog endpoints.
// Images may be nil when object storage is not configured; the image
// endpoints then answer with an explicit error instead of panicking.
type ServiceHandler struct {
	Services *repository.ServiceRepo
	Images   ImageStore
}

func NewServiceHandler(services *repository.ServiceRepo, images ImageStore) *ServiceHandler {
	return &ServiceHandler{Services: services, Images: images}
}

type serviceCreateReq struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price" validate:"required,gt=0"`
}

// serviceUpdateReq distinguishes absent fields from explicitly empty or
// zero values: a nil pointer means "leave unchanged".
type serviceUpdateReq struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
}

// Create adds a catalog entry with an empty image sequence.
func (h *ServiceHandler) Create(c echo.Context) error {
	var req serviceCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Solicitud no válida"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Todos los campos son obligatorios"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	s := model.Service{Name: req.Name, Description: req.Description, Price: req.Price}
	if err := h.Services.Create(ctx, &s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Error al crear el servicio"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"msg": "El servicio se creó correctamente", "id": s.ID})
}

// List returns the whole catalog, unfiltered and unpaginated.
func (h *ServiceHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	services, err := h.Services.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Error al obtener los servicios"})
	}
	return c.JSON(http.StatusOK, services)
}

// GetByID returns one catalog entry.
func (h *ServiceHandler) GetByID(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "El id no es válido"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	s, err := h.Services.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"msg": "El servicio no existe"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Hubo un error"})
	}
	return c.JSON(http.StatusOK, s)
}

// Update applies only the fields present in the body.
func (h *ServiceHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "El id no es válido"})
	}
	var req serviceUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "Solicitud no válida"})
	}
	if req.Price != nil && *req.Price <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "El precio debe ser mayor a cero"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Services.Update(ctx, id, req.Name, req.Description, req.Price); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"msg": "El servicio no existe"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Error al actualizar el servicio"})
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "El servicio se actualizó correctamente"})
}

// Delete removes a catalog entry together with its stored images, so
// nothing is left orphaned in object storage.
func (h *ServiceHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "El id no es válido"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	s, err := h.Services.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"msg": "El servicio no existe"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Hubo un error"})
	}
	if err := h.Services.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Error al eliminar el servicio"})
	}
	if h.Images != nil {
		for _, im := range s.Images {
			if err := h.Images.Delete(ctx, im.ObjectKey); err != nil {
				log.Printf("storage: delete %s failed: %v", im.ObjectKey, err)
			}
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "El servicio se eliminó correctamente"})
}

// UploadImage stores a multipart image under the service's prefix and
// appends its URL to the image sequence.
func (h *ServiceHandler) UploadImage(c echo.Context) error {
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

	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "No se envió ninguna imagen"})
	}
	if h.Images == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "El almacenamiento de imágenes no está disponible"})
	}

	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Error al leer la imagen"})
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := fmt.Sprintf("services/%d/%s%s", id, uuid.New().String(), filepath.Ext(fh.Filename))

	url, err := h.Images.Upload(c.Request().Context(), key, contentType, f)
	if err != nil {
		log.Printf("storage: upload %s failed: %v", key, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Error al subir la imagen"})
	}

	imageID, err := h.Services.AddImage(ctx, id, key, url)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Error al guardar la imagen"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"msg": "La imagen se subió correctamente", "id": imageID, "url": url})
}

// ListImages returns a service's image sequence.
func (h *ServiceHandler) ListImages(c echo.Context) error {
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
	images, err := h.Services.ListImages(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Hubo un error"})
	}
	return c.JSON(http.StatusOK, images)
}

// DeleteImage removes one image by exact id match, from storage first and
// then from the sequence.
func (h *ServiceHandler) DeleteImage(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "El id no es válido"})
	}
	imageID, ok := parseID(c, "imageId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "El id no es válido"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	im, err := h.Services.GetImage(ctx, id, imageID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"msg": "La imagen no existe"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Hubo un error"})
	}
	if h.Images != nil {
		if err := h.Images.Delete(c.Request().Context(), im.ObjectKey); err != nil {
			// Record stays consistent with what clients see; the orphaned
			// object is only a storage-side leak.
			log.Printf("storage: delete %s failed: %v", im.ObjectKey, err)
		}
	}
	if err := h.Services.DeleteImage(ctx, id, imageID); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"msg": "La imagen no existe"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "Error al eliminar la imagen"})
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "La imagen se eliminó correctamente"})
}
