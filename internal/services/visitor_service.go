// Package services – VisitorService
//
// This file implements the VisitorService. Recording a visit is the one
// operation in the system that must never surface an error to the caller: a
// failed insert is logged and swallowed and the endpoint still reports
// success. Visits to watched pages (contact, vehicle listing, any vehicle
// detail page) additionally trigger an asynchronous, best-effort email
// notification.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/autoexport/go-export-backend/internal/notify"
	"github.com/autoexport/go-export-backend/internal/repo"
)

// VisitorService records page views and aggregates visit stats.
type VisitorService struct {
	DB *gorm.DB

	// WatchedPaths lists page paths whose visits trigger a notification.
	// A visit matches on the exact path or any child path.
	WatchedPaths []string

	// Notifier delivers visit notifications; nil disables them.
	Notifier notify.Notifier

	// syncNotify forces notifications to run inline; used by tests.
	syncNotify bool
}

// Record appends one visit. It NEVER returns an error: persistence failures
// are logged and swallowed so the public endpoint can always answer success.
func (s *VisitorService) Record(ctx context.Context, ip, userAgent, page string) {
	page = normalizePage(page)

	if _, err := repo.CreateVisitor(ctx, s.DB, ip, userAgent, page); err != nil {
		log.Error().Err(err).Str("page", page).Msg("visitor record failed")
		return
	}

	if s.Notifier != nil && s.isWatched(page) {
		send := func() {
			if err := s.Notifier.NotifyVisit(page, ip, time.Now().UTC()); err != nil {
				log.Warn().Err(err).Str("page", page).Msg("visit notification failed")
			}
		}
		if s.syncNotify {
			send()
		} else {
			go send()
		}
	}
}

// Stats summarizes recorded visits for the admin dashboard.
type Stats struct {
	Total    int64            `json:"total"`
	Today    int64            `json:"today"`
	TopPages []repo.PageCount `json:"topPages"`
	LastWeek []repo.DayCount  `json:"lastWeek"`
}

// Stats aggregates total, today's, per-page, and last-7-days visit counts.
func (s *VisitorService) Stats(ctx context.Context) (*Stats, error) {
	total, err := repo.CountVisitors(ctx, s.DB)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	today, err := repo.CountVisitorsSince(ctx, s.DB, midnight)
	if err != nil {
		return nil, err
	}

	top, err := repo.TopPages(ctx, s.DB, 10)
	if err != nil {
		return nil, err
	}

	week, err := repo.VisitsPerDay(ctx, s.DB, midnight.AddDate(0, 0, -6))
	if err != nil {
		return nil, err
	}

	return &Stats{Total: total, Today: today, TopPages: top, LastWeek: week}, nil
}

// isWatched reports whether page equals, or is a child of, a watched path.
func (s *VisitorService) isWatched(page string) bool {
	for _, w := range s.WatchedPaths {
		w = normalizePage(w)
		if page == w || strings.HasPrefix(page, w+"/") {
			return true
		}
	}
	return false
}

// normalizePage ensures a leading slash and strips a trailing one.
func normalizePage(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}
