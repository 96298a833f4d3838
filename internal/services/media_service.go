// Package services – MediaService
//
// This file implements the MediaService, which manages the standalone media
// library: uploading general assets, listing them, and deleting a record
// together with its stored file.
package services

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/autoexport/go-export-backend/internal/domain"
	"github.com/autoexport/go-export-backend/internal/repo"
	"github.com/autoexport/go-export-backend/internal/storage"
)

// MediaService manages the admin media library.
type MediaService struct {
	DB       *gorm.DB
	Files    *storage.Store
	Activity *ActivityRecorder
}

// List returns all media records, newest first.
func (s *MediaService) List(ctx context.Context) ([]domain.MediaAsset, error) {
	return repo.ListMediaAssets(ctx, s.DB)
}

// Upload runs the upload pipeline for one part and records the asset.
func (s *MediaService) Upload(ctx context.Context, fh *multipart.FileHeader, rule storage.Rule, user string) (*domain.MediaAsset, error) {
	st, err := s.Files.Save(fh, rule)
	if err != nil {
		return nil, err
	}

	m, err := repo.CreateMediaAsset(ctx, s.DB, st.Filename, st.URL, st.Ext, st.Size, st.Provider)
	if err != nil {
		// The record is the source of truth; without it the stored file is
		// unreachable, so clean it up.
		_ = s.Files.Remove(st.URL)
		return nil, err
	}

	s.Activity.Record(domain.ActivityAdmin, "media-upload", st.Filename, &user)
	return m, nil
}

// Delete removes a media record and best-effort deletes its stored file.
func (s *MediaService) Delete(ctx context.Context, id, user string) error {
	m, err := repo.GetMediaAsset(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMediaNotFound
		}
		return err
	}

	if err := repo.DeleteMediaAsset(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrMediaNotFound
		}
		return err
	}

	if err := s.Files.Remove(m.URL); err != nil {
		log.Warn().Err(err).Str("url", m.URL).Msg("media file cleanup failed")
	}

	s.Activity.Record(domain.ActivityAdmin, "media-delete", m.Filename, &user)
	return nil
}
