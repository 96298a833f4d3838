package services

import (
	"context"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/autoexport/go-export-backend/internal/domain"
	"github.com/autoexport/go-export-backend/internal/repo"
	"github.com/autoexport/go-export-backend/internal/storage"
)

func newVehicleService(t *testing.T) *VehicleService {
	db := newServiceDB(t)
	return &VehicleService{DB: db, Files: newTestStore(t), Activity: syncRecorder(db)}
}

func validVehicleInput() VehicleInput {
	return VehicleInput{
		Title:        strPtr("Renault Clio 2020"),
		Make:         strPtr("renault"),
		Model:        strPtr("clio"),
		Year:         intPtr(2020),
		Price:        f64Ptr(8500),
		Mileage:      intPtr(42000),
		FuelType:     strPtr("essence"),
		Transmission: strPtr("manuelle"),
	}
}

func TestVehicleCreate_NormalizesAndDefaults(t *testing.T) {
	s := newVehicleService(t)
	ctx := context.Background()

	v, err := s.Create(ctx, validVehicleInput(), "admin")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if v.Make != "Renault" {
		t.Fatalf("expected title-cased make, got %q", v.Make)
	}
	if v.Status != domain.StatusAvailable {
		t.Fatalf("expected default status, got %q", v.Status)
	}
	if v.Images == nil || len(v.Images) != 0 {
		t.Fatalf("expected empty image list, got %v", v.Images)
	}

	entries, err := repo.ListActivity(ctx, s.DB, 0)
	if err != nil {
		t.Fatalf("ListActivity: %v", err)
	}
	if len(entries) != 1 || entries[0].Type != domain.ActivityVehicle || entries[0].Action != "create" {
		t.Fatalf("expected one vehicle/create audit entry, got %+v", entries)
	}
}

func TestVehicleCreate_ValidationCollectsAllFields(t *testing.T) {
	s := newVehicleService(t)

	in := VehicleInput{
		Year:     intPtr(1800),
		Price:    f64Ptr(-1),
		FuelType: strPtr("plutonium"),
	}
	_, err := s.Create(context.Background(), in, "admin")
	ve, ok := AsValidation(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"title", "make", "model", "year", "price", "fuelType", "transmission"} {
		if _, present := ve.Fields[field]; !present {
			t.Fatalf("expected field %q in validation error, got %v", field, ve.Fields)
		}
	}
	if !strings.Contains(ve.Error(), "validation failed") {
		t.Fatalf("unexpected error text: %v", ve)
	}
}

func TestVehicleUpdate_PartialMerge(t *testing.T) {
	s := newVehicleService(t)
	ctx := context.Background()

	v, err := s.Create(ctx, validVehicleInput(), "admin")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Update(ctx, v.ID, VehicleInput{Price: f64Ptr(7900), Status: strPtr("reserved")}, "admin")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Price != 7900 || got.Status != domain.StatusReserved {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.Title != "Renault Clio 2020" || got.Make != "Renault" {
		t.Fatalf("absent fields must keep stored values: %+v", got)
	}
}

func TestVehicleUpdate_RejectsInvalidMerge(t *testing.T) {
	s := newVehicleService(t)
	ctx := context.Background()

	v, err := s.Create(ctx, validVehicleInput(), "admin")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = s.Update(ctx, v.ID, VehicleInput{FuelType: strPtr("charbon")}, "admin")
	if _, ok := AsValidation(err); !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	// The stored row must be untouched.
	got, err := s.Get(ctx, v.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FuelType != domain.FuelEssence {
		t.Fatalf("rejected update leaked into storage: %+v", got)
	}
}

func TestVehicleGet_NotFound(t *testing.T) {
	s := newVehicleService(t)

	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrVehicleNotFound) {
		t.Fatalf("expected ErrVehicleNotFound, got %v", err)
	}
	if _, err := s.Update(context.Background(), "missing", VehicleInput{}, "admin"); !errors.Is(err, ErrVehicleNotFound) {
		t.Fatalf("expected ErrVehicleNotFound on update, got %v", err)
	}
	if err := s.Delete(context.Background(), "missing", "admin"); !errors.Is(err, ErrVehicleNotFound) {
		t.Fatalf("expected ErrVehicleNotFound on delete, got %v", err)
	}
}

func TestVehicleAttachImages_AppendsAndRecordsAssets(t *testing.T) {
	s := newVehicleService(t)
	ctx := context.Background()

	v, err := s.Create(ctx, validVehicleInput(), "admin")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	rule := storage.ImageRule(1<<20, "vehicles")
	fh1 := makeFileHeader(t, "front.jpg", "image/jpeg", []byte("jpegdata"))
	fh2 := makeFileHeader(t, "rear.png", "image/png", []byte("pngdata"))

	images, err := s.AttachImages(ctx, v.ID, []*multipart.FileHeader{fh1, fh2}, rule, "admin")
	if err != nil {
		t.Fatalf("AttachImages: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("expected 2 image refs, got %v", images)
	}
	for _, ref := range images {
		if !strings.HasPrefix(ref, "/uploads/vehicles/") {
			t.Fatalf("unexpected image ref %q", ref)
		}
		rel := strings.TrimPrefix(ref, "/uploads/")
		if _, err := os.Stat(filepath.Join(s.Files.Root, filepath.FromSlash(rel))); err != nil {
			t.Fatalf("stored file missing for %q: %v", ref, err)
		}
	}

	assets, err := repo.ListMediaAssets(ctx, s.DB)
	if err != nil {
		t.Fatalf("ListMediaAssets: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("expected 2 media asset records, got %d", len(assets))
	}
}

func TestVehicleAttachImages_RejectedBatchLeavesNoFiles(t *testing.T) {
	s := newVehicleService(t)
	ctx := context.Background()

	v, err := s.Create(ctx, validVehicleInput(), "admin")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	rule := storage.ImageRule(1<<20, "vehicles")
	good := makeFileHeader(t, "ok.jpg", "image/jpeg", []byte("jpegdata"))
	bad := makeFileHeader(t, "malware.exe", "application/octet-stream", []byte("nope"))

	_, err = s.AttachImages(ctx, v.ID, []*multipart.FileHeader{good, bad}, rule, "admin")
	if !errors.Is(err, storage.ErrInvalidFile) {
		t.Fatalf("expected ErrInvalidFile, got %v", err)
	}

	// The first file was stored before the second was rejected; the batch
	// rollback must have removed it again.
	dir := filepath.Join(s.Files.Root, "vehicles")
	if entries, err := os.ReadDir(dir); err == nil && len(entries) != 0 {
		t.Fatalf("expected no files after rejected batch, found %d", len(entries))
	}

	got, err := s.Get(ctx, v.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Images) != 0 {
		t.Fatalf("expected no attached images, got %v", got.Images)
	}
}

func TestVehicleDelete_RemovesImageFiles(t *testing.T) {
	s := newVehicleService(t)
	ctx := context.Background()

	v, err := s.Create(ctx, validVehicleInput(), "admin")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	fh := makeFileHeader(t, "front.jpg", "image/jpeg", []byte("jpegdata"))
	images, err := s.AttachImages(ctx, v.ID, []*multipart.FileHeader{fh}, storage.ImageRule(1<<20, "vehicles"), "admin")
	if err != nil {
		t.Fatalf("AttachImages: %v", err)
	}

	if err := s.Delete(ctx, v.ID, "admin"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, v.ID); !errors.Is(err, ErrVehicleNotFound) {
		t.Fatalf("expected ErrVehicleNotFound after delete, got %v", err)
	}

	rel := strings.TrimPrefix(images[0], "/uploads/")
	if _, err := os.Stat(filepath.Join(s.Files.Root, filepath.FromSlash(rel))); !os.IsNotExist(err) {
		t.Fatalf("expected image file removed, stat err: %v", err)
	}
}
