// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the MediaAsset
// model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autoexport/go-export-backend/internal/domain"
)

// CreateMediaAsset records one stored file.
func CreateMediaAsset(ctx context.Context, db *gorm.DB, filename, url, ext string, size int64, provider string) (*domain.MediaAsset, error) {
	m := &domain.MediaAsset{
		ID:        uuid.NewString(),
		Filename:  filename,
		URL:       url,
		Type:      ext,
		Size:      size,
		Provider:  provider,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// ListMediaAssets returns all media records, most recent first.
func ListMediaAssets(ctx context.Context, db *gorm.DB) ([]domain.MediaAsset, error) {
	var out []domain.MediaAsset
	err := db.WithContext(ctx).Order("created_at desc").Find(&out).Error
	return out, err
}

// GetMediaAsset fetches a media record by ID, or ErrNotFound.
func GetMediaAsset(ctx context.Context, db *gorm.DB, id string) (*domain.MediaAsset, error) {
	var m domain.MediaAsset
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMediaAsset removes a media record by ID. Returns ErrNotFound when no
// row was affected.
func DeleteMediaAsset(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.MediaAsset{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
