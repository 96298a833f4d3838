// Handler wiring shared by all endpoint files in this package.
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. Business rules (field validation,
// activity logging, storage cleanup) live in the services layer.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/autoexport/go-export-backend/internal/config"
	"github.com/autoexport/go-export-backend/internal/http/middleware"
	"github.com/autoexport/go-export-backend/internal/services"
)

// Handlers groups HTTP endpoints for vehicles, contact messages, visitors,
// site configuration, media assets, and admin authentication. It depends on
// abstract service interfaces to keep transport concerns separate from
// business logic.
type Handlers struct {
	vehicleSvc VehicleService
	contactSvc ContactService
	visitorSvc VisitorService
	siteSvc    SiteConfigService
	mediaSvc   MediaService

	authCfg   config.AuthConfig
	uploadCfg config.UploadConfig
}

// New constructs and returns a Handlers instance bound to the given services
// and configuration.
func New(
	vehicleSvc VehicleService,
	contactSvc ContactService,
	visitorSvc VisitorService,
	siteSvc SiteConfigService,
	mediaSvc MediaService,
	authCfg config.AuthConfig,
	uploadCfg config.UploadConfig,
) *Handlers {
	return &Handlers{
		vehicleSvc: vehicleSvc,
		contactSvc: contactSvc,
		visitorSvc: visitorSvc,
		siteSvc:    siteSvc,
		mediaSvc:   mediaSvc,
		authCfg:    authCfg,
		uploadCfg:  uploadCfg,
	}
}

// adminUser returns the authenticated username for activity attribution.
// Routes calling this sit behind RequireAuth, so the value is always present
// in practice; the fallback keeps audit rows readable if wiring ever changes.
func adminUser(c *gin.Context) string {
	if u, ok := middleware.Username(c); ok {
		return u
	}
	return "unknown"
}

// failValidation renders a 400 with the envelope plus per-field messages.
func failValidation(c *gin.Context, ve *services.ValidationError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       ErrCodeBadRequest,
		"message":    ve.Error(),
		"fields":     ve.Fields,
	})
}
