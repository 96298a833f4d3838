// Package services – SiteConfigService
//
// This file implements the SiteConfigService, which manages the singleton
// site configuration record. The row is created lazily through a fixed-key
// upsert on first read, and updates merge the supplied fields onto the stored
// row (last write wins; concurrent admin edits are an accepted risk at this
// scale).
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/autoexport/go-export-backend/internal/domain"
	"github.com/autoexport/go-export-backend/internal/repo"
)

// SiteConfigInput is the update payload. Pointer fields distinguish "absent"
// from empty strings so a partial update cannot wipe unrelated settings.
type SiteConfigInput struct {
	VideoURL     *string             `json:"videoUrl"`
	HomeHeroText *string             `json:"homeHeroText"`
	ContactInfo  *domain.ContactInfo `json:"contactInfo"`
	SocialMedia  *domain.SocialMedia `json:"socialMedia"`
}

// SiteConfigService reads and updates the singleton configuration.
type SiteConfigService struct {
	DB       *gorm.DB
	Activity *ActivityRecorder
}

// Get returns the singleton config, creating the row on first access.
func (s *SiteConfigService) Get(ctx context.Context) (*domain.SiteConfig, error) {
	return repo.GetOrInitSiteConfig(ctx, s.DB)
}

// Update merges the supplied fields onto the stored row and stamps
// LastUpdated.
func (s *SiteConfigService) Update(ctx context.Context, in SiteConfigInput, user string) (*domain.SiteConfig, error) {
	cfg, err := repo.GetOrInitSiteConfig(ctx, s.DB)
	if err != nil {
		return nil, err
	}

	if in.VideoURL != nil {
		cfg.VideoURL = *in.VideoURL
	}
	if in.HomeHeroText != nil {
		cfg.HomeHeroText = *in.HomeHeroText
	}
	if in.ContactInfo != nil {
		cfg.ContactInfo = *in.ContactInfo
	}
	if in.SocialMedia != nil {
		cfg.SocialMedia = *in.SocialMedia
	}

	if err := repo.SaveSiteConfig(ctx, s.DB, cfg); err != nil {
		return nil, err
	}

	s.Activity.Record(domain.ActivityAdmin, "site-config-update", "", &user)
	return cfg, nil
}

// SetVideoURL replaces the site hero video reference (set by the video upload
// endpoint).
func (s *SiteConfigService) SetVideoURL(ctx context.Context, url, user string) (*domain.SiteConfig, error) {
	return s.Update(ctx, SiteConfigInput{VideoURL: &url}, user)
}
