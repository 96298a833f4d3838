// Vehicle HTTP handlers.
//
// This file exposes REST endpoints for the vehicle catalogue:
//   - GET    /vehicles              (list, optional ?featured=true)
//   - GET    /vehicles/featured     (featured shortcut)
//   - GET    /vehicles/{id}         (fetch one)
//   - POST   /vehicles              (create, admin)
//   - PUT    /vehicles/{id}         (partial update, admin)
//   - DELETE /vehicles/{id}         (delete + image cleanup, admin)
//   - POST   /vehicles/upload/{id}  (attach images, admin)
package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/autoexport/go-export-backend/internal/domain"
	"github.com/autoexport/go-export-backend/internal/services"
	"github.com/autoexport/go-export-backend/internal/storage"
)

// VehicleService defines vehicle catalogue operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type VehicleService interface {
	// Create validates and persists a new listing.
	Create(ctx context.Context, in services.VehicleInput, user string) (*domain.Vehicle, error)
	// List returns all listings, optionally featured only.
	List(ctx context.Context, featuredOnly bool) ([]domain.Vehicle, error)
	// Get returns one listing by id.
	Get(ctx context.Context, id string) (*domain.Vehicle, error)
	// Update merges the supplied fields onto an existing listing.
	Update(ctx context.Context, id string, in services.VehicleInput, user string) (*domain.Vehicle, error)
	// Delete removes a listing and best-effort removes its image files.
	Delete(ctx context.Context, id, user string) error
	// AttachImages stores the uploaded files and appends them to the
	// listing's ordered image list, returning the updated list.
	AttachImages(ctx context.Context, id string, files []*multipart.FileHeader, rule storage.Rule, user string) ([]string, error)
}

// AttachImagesResponse wraps the updated ordered image list after an upload.
type AttachImagesResponse struct {
	Images []string `json:"images"`
}

// vehicleErr translates service errors into HTTP responses shared by all
// vehicle endpoints.
func vehicleErr(c *gin.Context, err error) {
	if ve, okv := services.AsValidation(err); okv {
		failValidation(c, ve)
		return
	}
	switch {
	case errors.Is(err, services.ErrVehicleNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "Vehicle not found")
	case errors.Is(err, storage.ErrInvalidFile):
		fail(c, http.StatusBadRequest, ErrCodeInvalidFile, err.Error())
	case errors.Is(err, storage.ErrUploadFailed):
		fail(c, http.StatusInternalServerError, ErrCodeUploadFailed, "could not store uploaded file")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}

// ListVehicles godoc
// @ID          listVehicles
// @Summary     List vehicles
// @Description Returns all vehicle listings. Pass featured=true to restrict to featured listings.
// @Tags        Vehicles
// @Produce     json
//
// @Param       featured  query  bool  false  "Only featured listings"
//
// @Success     200  {array}   domain.Vehicle
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /vehicles [get]
func (h *Handlers) ListVehicles(c *gin.Context) {
	featured := c.Query("featured") == "true"
	items, err := h.vehicleSvc.List(c.Request.Context(), featured)
	if err != nil {
		vehicleErr(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// ListFeaturedVehicles godoc
// @ID          listFeaturedVehicles
// @Summary     List featured vehicles
// @Tags        Vehicles
// @Produce     json
//
// @Success     200  {array}   domain.Vehicle
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /vehicles/featured [get]
func (h *Handlers) ListFeaturedVehicles(c *gin.Context) {
	items, err := h.vehicleSvc.List(c.Request.Context(), true)
	if err != nil {
		vehicleErr(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// GetVehicle godoc
// @ID          getVehicle
// @Summary     Fetch a vehicle
// @Tags        Vehicles
// @Produce     json
//
// @Param       id  path  string  true  "Vehicle ID (UUID)"  format(uuid)
//
// @Success     200  {object}  domain.Vehicle
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Vehicle not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /vehicles/{id} [get]
func (h *Handlers) GetVehicle(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "vehicle id must be a UUID")
		return
	}
	v, err := h.vehicleSvc.Get(c.Request.Context(), id)
	if err != nil {
		vehicleErr(c, err)
		return
	}
	ok(c, http.StatusOK, v)
}

// CreateVehicle godoc
// @ID          createVehicle
// @Summary     Create a vehicle
// @Description Validates the payload and persists a new listing with an empty image list.
// @Tags        Vehicles
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  services.VehicleInput  true  "Vehicle payload"
//
// @Success     201  {object}  domain.Vehicle
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failure"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /vehicles [post]
func (h *Handlers) CreateVehicle(c *gin.Context) {
	var in services.VehicleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	v, err := h.vehicleSvc.Create(c.Request.Context(), in, adminUser(c))
	if err != nil {
		vehicleErr(c, err)
		return
	}
	ok(c, http.StatusCreated, v)
}

// UpdateVehicle godoc
// @ID          updateVehicle
// @Summary     Update a vehicle
// @Description Merges the supplied fields onto the existing listing; absent fields are untouched.
// @Tags        Vehicles
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string                 true  "Vehicle ID (UUID)"  format(uuid)
// @Param       body  body  services.VehicleInput  true  "Fields to update"
//
// @Success     200  {object}  domain.Vehicle
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failure"
// @Failure     404  {object}  handlers.ErrorResponse  "Vehicle not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /vehicles/{id} [put]
func (h *Handlers) UpdateVehicle(c *gin.Context) {
	id := c.Param("id")
	var in services.VehicleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	v, err := h.vehicleSvc.Update(c.Request.Context(), id, in, adminUser(c))
	if err != nil {
		vehicleErr(c, err)
		return
	}
	ok(c, http.StatusOK, v)
}

// DeleteVehicle godoc
// @ID          deleteVehicle
// @Summary     Delete a vehicle
// @Description Removes the listing and best-effort removes its stored image files.
// @Tags        Vehicles
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Vehicle ID (UUID)"  format(uuid)
//
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Vehicle not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /vehicles/{id} [delete]
func (h *Handlers) DeleteVehicle(c *gin.Context) {
	if err := h.vehicleSvc.Delete(c.Request.Context(), c.Param("id"), adminUser(c)); err != nil {
		vehicleErr(c, err)
		return
	}
	noContent(c)
}

// UploadVehicleImages godoc
// @ID          uploadVehicleImages
// @Summary     Attach images to a vehicle
// @Description Validates and stores one or more image files, appending them to the listing's ordered image list.
// @Tags        Vehicles
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
//
// @Param       id      path      string  true  "Vehicle ID (UUID)"  format(uuid)
// @Param       images  formData  file    true  "Image files (jpg/jpeg/png/webp, max 10MB each)"
//
// @Success     200  {object}  handlers.AttachImagesResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid file"
// @Failure     404  {object}  handlers.ErrorResponse  "Vehicle not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Upload failed"
// @Router      /vehicles/upload/{id} [post]
func (h *Handlers) UploadVehicleImages(c *gin.Context) {
	id := c.Param("id")

	form, err := c.MultipartForm()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "multipart form expected")
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "at least one image file required")
		return
	}

	rule := storage.ImageRule(h.uploadCfg.MaxImageBytes, "vehicles")
	images, err := h.vehicleSvc.AttachImages(c.Request.Context(), id, files, rule, adminUser(c))
	if err != nil {
		vehicleErr(c, err)
		return
	}
	ok(c, http.StatusOK, AttachImagesResponse{Images: images})
}
