// Site configuration HTTP handlers.
//
//   - GET  /admin/site-config    (read singleton, admin)
//   - PUT  /admin/site-config    (merge update, admin)
//   - POST /admin/upload-video   (replace landing video, admin)
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/autoexport/go-export-backend/internal/domain"
	"github.com/autoexport/go-export-backend/internal/services"
	"github.com/autoexport/go-export-backend/internal/storage"
)

// SiteConfigService defines operations on the singleton site configuration.
type SiteConfigService interface {
	// Get returns the singleton config, creating the row on first access.
	Get(ctx context.Context) (*domain.SiteConfig, error)
	// Update merges the supplied fields and stamps LastUpdated.
	Update(ctx context.Context, in services.SiteConfigInput, user string) (*domain.SiteConfig, error)
	// SetVideoURL replaces the landing-page video reference.
	SetVideoURL(ctx context.Context, url, user string) (*domain.SiteConfig, error)
}

// GetSiteConfig godoc
// @ID          getSiteConfig
// @Summary     Read site configuration
// @Description Returns the singleton configuration record, creating it with defaults on first read.
// @Tags        SiteConfig
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  domain.SiteConfig
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/site-config [get]
func (h *Handlers) GetSiteConfig(c *gin.Context) {
	cfg, err := h.siteSvc.Get(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load site configuration")
		return
	}
	ok(c, http.StatusOK, cfg)
}

// UpdateSiteConfig godoc
// @ID          updateSiteConfig
// @Summary     Update site configuration
// @Description Merges supplied fields onto the singleton record; absent fields are untouched.
// @Tags        SiteConfig
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  services.SiteConfigInput  true  "Fields to update"
//
// @Success     200  {object}  domain.SiteConfig
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/site-config [put]
func (h *Handlers) UpdateSiteConfig(c *gin.Context) {
	var in services.SiteConfigInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	cfg, err := h.siteSvc.Update(c.Request.Context(), in, adminUser(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not update site configuration")
		return
	}
	ok(c, http.StatusOK, cfg)
}

// UploadSiteVideo godoc
// @ID          uploadSiteVideo
// @Summary     Replace the landing-page video
// @Description Validates and stores the uploaded video, records a media asset, and points SiteConfig.VideoURL at it.
// @Tags        SiteConfig
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
//
// @Param       video  formData  file  true  "Video file (mp4/webm/mov/avi, max 100MB)"
//
// @Success     200  {object}  domain.SiteConfig
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid file"
// @Failure     500  {object}  handlers.ErrorResponse  "Upload failed"
// @Router      /admin/upload-video [post]
func (h *Handlers) UploadSiteVideo(c *gin.Context) {
	fh, err := c.FormFile("video")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "video file required")
		return
	}

	rule := storage.VideoRule(h.uploadCfg.MaxVideoBytes, "videos")
	asset, err := h.mediaSvc.Upload(c.Request.Context(), fh, rule, adminUser(c))
	if err != nil {
		mediaErr(c, err)
		return
	}

	cfg, err := h.siteSvc.SetVideoURL(c.Request.Context(), asset.URL, adminUser(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not update site configuration")
		return
	}
	ok(c, http.StatusOK, cfg)
}
