package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/autoexport/go-export-backend/internal/domain"
	"github.com/autoexport/go-export-backend/internal/storage"
)

func newMediaService(t *testing.T) *MediaService {
	db := newServiceDB(t)
	return &MediaService{DB: db, Files: newTestStore(t), Activity: syncRecorder(db)}
}

func TestMediaUpload_StoresFileAndRecord(t *testing.T) {
	s := newMediaService(t)
	ctx := context.Background()

	fh := makeFileHeader(t, "banner.png", "image/png", []byte("pngdata"))
	m, err := s.Upload(ctx, fh, storage.ImageRule(1<<20, "media"), "admin")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(m.URL, "/uploads/media/") {
		t.Fatalf("unexpected URL %q", m.URL)
	}
	if m.Provider != domain.ProviderLocal {
		t.Fatalf("expected local provider, got %q", m.Provider)
	}

	rel := strings.TrimPrefix(m.URL, "/uploads/")
	if _, err := os.Stat(filepath.Join(s.Files.Root, filepath.FromSlash(rel))); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}

	out, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 1 || out[0].ID != m.ID {
		t.Fatalf("expected the uploaded asset listed, got %+v", out)
	}
}

func TestMediaUpload_RejectsInvalidFile(t *testing.T) {
	s := newMediaService(t)

	fh := makeFileHeader(t, "script.sh", "text/x-shellscript", []byte("#!/bin/sh"))
	_, err := s.Upload(context.Background(), fh, storage.ImageRule(1<<20, "media"), "admin")
	if !errors.Is(err, storage.ErrInvalidFile) {
		t.Fatalf("expected ErrInvalidFile, got %v", err)
	}

	out, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no asset records, got %+v", out)
	}
}

func TestMediaDelete_RemovesRecordAndFile(t *testing.T) {
	s := newMediaService(t)
	ctx := context.Background()

	fh := makeFileHeader(t, "banner.png", "image/png", []byte("pngdata"))
	m, err := s.Upload(ctx, fh, storage.ImageRule(1<<20, "media"), "admin")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := s.Delete(ctx, m.ID, "admin"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	rel := strings.TrimPrefix(m.URL, "/uploads/")
	if _, err := os.Stat(filepath.Join(s.Files.Root, filepath.FromSlash(rel))); !os.IsNotExist(err) {
		t.Fatalf("expected stored file removed, stat err: %v", err)
	}

	if err := s.Delete(ctx, m.ID, "admin"); !errors.Is(err, ErrMediaNotFound) {
		t.Fatalf("expected ErrMediaNotFound on second delete, got %v", err)
	}
}
