// Visitor analytics HTTP handlers.
//
//   - POST /visitors/record  (public, never fails)
//   - GET  /visitors/stats   (admin)
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/autoexport/go-export-backend/internal/services"
	"github.com/autoexport/go-export-backend/internal/utils"
)

// VisitorService defines visit recording and aggregation operations.
type VisitorService interface {
	// Record persists a page visit. It never returns an error; persistence
	// and notification failures are logged and swallowed.
	Record(ctx context.Context, ip, userAgent, page string)
	// Stats aggregates visit counts for the admin dashboard.
	Stats(ctx context.Context) (*services.Stats, error)
}

// RecordVisitRequest is the JSON payload for visit recording.
type RecordVisitRequest struct {
	Page string `json:"page" example:"/vehicles/42"`
}

// RecordVisit godoc
// @ID          recordVisit
// @Summary     Record a page visit
// @Description Public endpoint. Always responds 200, even when persistence fails; watched pages trigger an async email notification.
// @Tags        Visitors
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RecordVisitRequest  true  "Visited page"
//
// @Success     200  {object}  map[string]string
// @Router      /visitors/record [post]
func (h *Handlers) RecordVisit(c *gin.Context) {
	var req RecordVisitRequest
	// A malformed body still records the visit against the referer-less root;
	// this endpoint is contractually infallible.
	_ = c.ShouldBindJSON(&req)

	h.visitorSvc.Record(c.Request.Context(), c.ClientIP(), c.Request.UserAgent(), req.Page)
	ok(c, http.StatusOK, gin.H{"message": "recorded"})
}

// VisitorStats godoc
// @ID          visitorStats
// @Summary     Visit statistics
// @Description Totals, today's count, per-page counts, and a last-7-days series. Pass top=N to cap the per-page list.
// @Tags        Visitors
// @Produce     json
// @Security    BearerAuth
//
// @Param       top  query  int  false  "Max per-page entries"  minimum(1) default(10)
//
// @Success     200  {object}  services.Stats
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /visitors/stats [get]
func (h *Handlers) VisitorStats(c *gin.Context) {
	stats, err := h.visitorSvc.Stats(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not aggregate visits")
		return
	}
	if top := utils.AtoiDefault(c.Query("top"), 10); top > 0 && len(stats.TopPages) > top {
		stats.TopPages = stats.TopPages[:top]
	}
	ok(c, http.StatusOK, stats)
}
