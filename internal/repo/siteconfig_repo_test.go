package repo

import (
	"context"
	"testing"

	"github.com/autoexport/go-export-backend/internal/domain"
)

func TestGetOrInitSiteConfig_SeedsSingleRow(t *testing.T) {
	db := newRepoDB(t, &domain.SiteConfig{})
	ctx := context.Background()

	cfg, err := GetOrInitSiteConfig(ctx, db)
	if err != nil {
		t.Fatalf("GetOrInitSiteConfig: %v", err)
	}
	if cfg.ID != domain.SiteConfigID {
		t.Fatalf("expected fixed ID %d, got %d", domain.SiteConfigID, cfg.ID)
	}

	// A second call must return the same row, not insert another.
	if _, err := GetOrInitSiteConfig(ctx, db); err != nil {
		t.Fatalf("GetOrInitSiteConfig again: %v", err)
	}
	var count int64
	if err := db.Model(&domain.SiteConfig{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 config row, got %d", count)
	}
}

func TestSaveSiteConfig_ForcesSingletonKey(t *testing.T) {
	db := newRepoDB(t, &domain.SiteConfig{})
	ctx := context.Background()

	if _, err := GetOrInitSiteConfig(ctx, db); err != nil {
		t.Fatalf("GetOrInitSiteConfig: %v", err)
	}

	cfg := &domain.SiteConfig{
		ID:           999,
		VideoURL:     "/uploads/videos/hero.mp4",
		HomeHeroText: "Export de véhicules vers l'Afrique",
		ContactInfo:  domain.ContactInfo{Email: "contact@example.com"},
		SocialMedia:  domain.SocialMedia{Facebook: "https://facebook.com/autoexport"},
	}
	if err := SaveSiteConfig(ctx, db, cfg); err != nil {
		t.Fatalf("SaveSiteConfig: %v", err)
	}
	if cfg.ID != domain.SiteConfigID {
		t.Fatalf("expected ID forced to %d, got %d", domain.SiteConfigID, cfg.ID)
	}
	if cfg.LastUpdated.IsZero() {
		t.Fatal("expected LastUpdated stamped")
	}

	got, err := GetOrInitSiteConfig(ctx, db)
	if err != nil {
		t.Fatalf("GetOrInitSiteConfig: %v", err)
	}
	if got.VideoURL != "/uploads/videos/hero.mp4" {
		t.Fatalf("video URL not persisted: %+v", got)
	}
	if got.ContactInfo.Email != "contact@example.com" || got.SocialMedia.Facebook == "" {
		t.Fatalf("embedded fields not persisted: %+v", got)
	}

	var count int64
	if err := db.Model(&domain.SiteConfig{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 config row after save, got %d", count)
	}
}
