// Package services – activity audit trail.
//
// Admin mutations append ActivityLog entries as a side effect. Appends are
// fire-and-forget: they run on a background goroutine with their own timeout
// and a failed write is logged and swallowed, so the audit trail can never
// affect the result of the primary operation.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/autoexport/go-export-backend/internal/repo"
)

// activityTimeout bounds each background audit write.
const activityTimeout = 5 * time.Second

// ActivityRecorder appends audit entries without ever failing the caller.
type ActivityRecorder struct {
	DB *gorm.DB

	// sync forces Record to run inline; used by tests to observe writes.
	sync bool
}

// NewActivityRecorder constructs an ActivityRecorder over db.
func NewActivityRecorder(db *gorm.DB) *ActivityRecorder {
	return &ActivityRecorder{DB: db}
}

// Record appends one audit entry asynchronously. The write uses its own
// context; the caller's request may complete (or be cancelled) first.
func (a *ActivityRecorder) Record(typ, action, details string, user *string) {
	if a == nil || a.DB == nil {
		return
	}
	write := func() {
		ctx, cancel := context.WithTimeout(context.Background(), activityTimeout)
		defer cancel()
		if _, err := repo.CreateActivity(ctx, a.DB, typ, action, details, user); err != nil {
			log.Warn().Err(err).
				Str("type", typ).
				Str("action", action).
				Msg("activity append failed")
		}
	}
	if a.sync {
		write()
		return
	}
	go write()
}
