// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the append-only
// Visitor model and its aggregate stats queries.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autoexport/go-export-backend/internal/domain"
)

// CreateVisitor appends one visit record. Visitor rows are never updated.
func CreateVisitor(ctx context.Context, db *gorm.DB, ip, userAgent, page string) (*domain.Visitor, error) {
	v := &domain.Visitor{
		ID:        uuid.NewString(),
		IP:        ip,
		UserAgent: userAgent,
		Page:      page,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(v).Error; err != nil {
		return nil, err
	}
	return v, nil
}

// PageCount is one row of the per-page visit aggregation.
type PageCount struct {
	Page  string `json:"page"`
	Count int64  `json:"count"`
}

// DayCount is one row of the per-day visit aggregation.
type DayCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// CountVisitors returns the total number of recorded visits.
func CountVisitors(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Visitor{}).Count(&total).Error
	return total, err
}

// CountVisitorsSince returns the number of visits recorded at or after t.
func CountVisitorsSince(ctx context.Context, db *gorm.DB, t time.Time) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Visitor{}).
		Where("created_at >= ?", t).
		Count(&total).Error
	return total, err
}

// TopPages groups visits by page and returns the most visited pages first.
func TopPages(ctx context.Context, db *gorm.DB, limit int) ([]PageCount, error) {
	var out []PageCount
	q := db.WithContext(ctx).
		Model(&domain.Visitor{}).
		Select("page, COUNT(*) as count").
		Group("page").
		Order("count desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Scan(&out).Error
	return out, err
}

// VisitsPerDay aggregates visit counts by calendar day (UTC) since t,
// oldest day first.
func VisitsPerDay(ctx context.Context, db *gorm.DB, t time.Time) ([]DayCount, error) {
	var out []DayCount
	err := db.WithContext(ctx).
		Model(&domain.Visitor{}).
		Select("date(created_at) as day, COUNT(*) as count").
		Where("created_at >= ?", t).
		Group("date(created_at)").
		Order("day asc").
		Scan(&out).Error
	return out, err
}
