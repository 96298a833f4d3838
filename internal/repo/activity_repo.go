// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the append-only
// ActivityLog audit trail.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autoexport/go-export-backend/internal/domain"
)

// CreateActivity appends one audit entry. Entries are never updated.
func CreateActivity(ctx context.Context, db *gorm.DB, typ, action, details string, user *string) (*domain.ActivityLog, error) {
	e := &domain.ActivityLog{
		ID:        uuid.NewString(),
		Type:      typ,
		Action:    action,
		Details:   details,
		User:      user,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

// ListActivity returns the most recent audit entries, newest first. A limit
// of 0 returns everything.
func ListActivity(ctx context.Context, db *gorm.DB, limit int) ([]domain.ActivityLog, error) {
	var out []domain.ActivityLog
	q := db.WithContext(ctx).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
