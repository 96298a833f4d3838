// Media asset HTTP handlers.
//
//   - GET    /media       (list, admin)
//   - POST   /media       (upload, admin)
//   - DELETE /media/{id}  (delete, admin)
package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/autoexport/go-export-backend/internal/domain"
	"github.com/autoexport/go-export-backend/internal/services"
	"github.com/autoexport/go-export-backend/internal/storage"
)

// MediaService defines media asset management operations.
type MediaService interface {
	// List returns all recorded assets, newest first.
	List(ctx context.Context) ([]domain.MediaAsset, error)
	// Upload validates, stores, and records one file.
	Upload(ctx context.Context, fh *multipart.FileHeader, rule storage.Rule, user string) (*domain.MediaAsset, error)
	// Delete removes the record and best-effort removes the stored file.
	Delete(ctx context.Context, id, user string) error
}

func mediaErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMediaNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "Media asset not found")
	case errors.Is(err, storage.ErrInvalidFile):
		fail(c, http.StatusBadRequest, ErrCodeInvalidFile, err.Error())
	case errors.Is(err, storage.ErrUploadFailed):
		fail(c, http.StatusInternalServerError, ErrCodeUploadFailed, "could not store uploaded file")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}

// ListMedia godoc
// @ID          listMedia
// @Summary     List media assets
// @Tags        Media
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {array}   domain.MediaAsset
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /media [get]
func (h *Handlers) ListMedia(c *gin.Context) {
	items, err := h.mediaSvc.List(c.Request.Context())
	if err != nil {
		mediaErr(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// UploadMedia godoc
// @ID          uploadMedia
// @Summary     Upload a media asset
// @Description Validates and stores one image file and records the asset.
// @Tags        Media
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
//
// @Param       file  formData  file  true  "Image file (jpg/jpeg/png/webp, max 10MB)"
//
// @Success     201  {object}  domain.MediaAsset
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid file"
// @Failure     500  {object}  handlers.ErrorResponse  "Upload failed"
// @Router      /media [post]
func (h *Handlers) UploadMedia(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "file required")
		return
	}

	rule := storage.ImageRule(h.uploadCfg.MaxImageBytes, "media")
	asset, err := h.mediaSvc.Upload(c.Request.Context(), fh, rule, adminUser(c))
	if err != nil {
		mediaErr(c, err)
		return
	}
	ok(c, http.StatusCreated, asset)
}

// DeleteMedia godoc
// @ID          deleteMedia
// @Summary     Delete a media asset
// @Description Removes the asset record and best-effort removes the stored file.
// @Tags        Media
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Asset ID (UUID)"  format(uuid)
//
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Media asset not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /media/{id} [delete]
func (h *Handlers) DeleteMedia(c *gin.Context) {
	if err := h.mediaSvc.Delete(c.Request.Context(), c.Param("id"), adminUser(c)); err != nil {
		mediaErr(c, err)
		return
	}
	noContent(c)
}
