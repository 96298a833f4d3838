// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the singleton
// SiteConfig record.
//
// The singleton is maintained with an explicit upsert against a fixed primary
// key rather than a found-or-new heuristic, so concurrent first reads cannot
// race into duplicate rows.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/autoexport/go-export-backend/internal/domain"
)

// GetOrInitSiteConfig returns the singleton config row, inserting an empty
// one under the fixed key first when absent. The insert uses ON CONFLICT DO
// NOTHING, so concurrent callers converge on the same single row.
func GetOrInitSiteConfig(ctx context.Context, db *gorm.DB) (*domain.SiteConfig, error) {
	seed := &domain.SiteConfig{
		ID:          domain.SiteConfigID,
		LastUpdated: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(seed).Error; err != nil {
		return nil, err
	}

	var cfg domain.SiteConfig
	if err := db.WithContext(ctx).
		Where("id = ?", domain.SiteConfigID).
		First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveSiteConfig persists the singleton row under the fixed key, stamping
// LastUpdated. The ID is forced so a caller can never create a second row.
func SaveSiteConfig(ctx context.Context, db *gorm.DB, cfg *domain.SiteConfig) error {
	cfg.ID = domain.SiteConfigID
	cfg.LastUpdated = time.Now().UTC()
	return db.WithContext(ctx).Save(cfg).Error
}
