// Package services – VehicleService
//
// This file implements the VehicleService, which owns the lifecycle of
// vehicle listings. It validates payloads against the catalogue invariants
// (year range, non-negative price/mileage, constrained enums), normalizes the
// make label, coordinates image attachment, and cleans up stored image files
// when a listing is deleted. Deletion cleanup is best-effort: a file that
// cannot be removed is logged and skipped, never failing the record deletion.
//
// Service-level errors (ErrVehicleNotFound, *ValidationError) are returned
// for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/autoexport/go-export-backend/internal/domain"
	"github.com/autoexport/go-export-backend/internal/repo"
	"github.com/autoexport/go-export-backend/internal/storage"
)

// VehicleInput is the payload accepted for create and update operations.
// Pointer fields distinguish "absent" from zero values on partial updates.
type VehicleInput struct {
	Title        *string  `json:"title"`
	Make         *string  `json:"make"`
	Model        *string  `json:"model"`
	Year         *int     `json:"year"`
	Price        *float64 `json:"price"`
	Mileage      *int     `json:"mileage"`
	FuelType     *string  `json:"fuelType"`
	Transmission *string  `json:"transmission"`
	Description  *string  `json:"description"`
	Features     *string  `json:"features"`
	IsFeatured   *bool    `json:"isFeatured"`
	Status       *string  `json:"status"`
}

// VehicleService provides CRUD operations over vehicle listings plus image
// attachment and deletion cleanup.
type VehicleService struct {
	DB       *gorm.DB
	Files    *storage.Store
	Activity *ActivityRecorder
}

// titleCaser normalizes make labels ("toyota" → "Toyota"). French casing
// matches the catalogue's locale.
var titleCaser = cases.Title(language.French)

// Create validates payload and persists a new listing with an empty image
// list. Returns *ValidationError with field-level messages on bad input.
func (s *VehicleService) Create(ctx context.Context, in VehicleInput, user string) (*domain.Vehicle, error) {
	tr := otel.Tracer("services/VehicleService")
	ctx, span := tr.Start(ctx, "Create")
	defer span.End()

	v := &domain.Vehicle{Status: domain.StatusAvailable, Images: []string{}}
	applyVehicleInput(v, in)

	if err := validateVehicle(v, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := repo.CreateVehicle(ctx, s.DB, v); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("vehicle.id", v.ID))

	s.Activity.Record(domain.ActivityVehicle, "create",
		fmt.Sprintf("%s %s %d", v.Make, v.Model, v.Year), &user)
	return v, nil
}

// List returns all listings, optionally restricted to featured ones.
func (s *VehicleService) List(ctx context.Context, featuredOnly bool) ([]domain.Vehicle, error) {
	return repo.ListVehicles(ctx, s.DB, featuredOnly)
}

// Get returns one listing by ID or ErrVehicleNotFound.
func (s *VehicleService) Get(ctx context.Context, id string) (*domain.Vehicle, error) {
	v, err := repo.GetVehicle(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return v, nil
}

// Update merges the supplied fields onto an existing listing and re-validates
// the result. Absent fields keep their stored values.
func (s *VehicleService) Update(ctx context.Context, id string, in VehicleInput, user string) (*domain.Vehicle, error) {
	tr := otel.Tracer("services/VehicleService")
	ctx, span := tr.Start(ctx, "Update", trace.WithAttributes(attribute.String("vehicle.id", id)))
	defer span.End()

	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	applyVehicleInput(v, in)
	if err := validateVehicle(v, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := repo.SaveVehicle(ctx, s.DB, v); err != nil {
		return nil, err
	}

	s.Activity.Record(domain.ActivityVehicle, "update", v.ID, &user)
	return v, nil
}

// Delete removes a listing and, best-effort, every image file it references.
// A file that is already missing or cannot be removed is logged and skipped;
// the record deletion itself still succeeds.
func (s *VehicleService) Delete(ctx context.Context, id string, user string) error {
	tr := otel.Tracer("services/VehicleService")
	ctx, span := tr.Start(ctx, "Delete", trace.WithAttributes(attribute.String("vehicle.id", id)))
	defer span.End()

	v, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := repo.DeleteVehicle(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrVehicleNotFound
		}
		return err
	}

	for _, ref := range v.Images {
		if err := s.Files.Remove(ref); err != nil {
			log.Warn().Err(err).Str("ref", ref).Str("vehicle_id", id).
				Msg("vehicle image cleanup failed")
		}
	}

	s.Activity.Record(domain.ActivityVehicle, "delete", v.ID, &user)
	return nil
}

// AttachImages runs the upload pipeline for each part and appends the stored
// references to the listing's ordered image list, returning the updated list.
// Each stored file is also recorded as a MediaAsset.
func (s *VehicleService) AttachImages(ctx context.Context, id string, files []*multipart.FileHeader, rule storage.Rule, user string) ([]string, error) {
	tr := otel.Tracer("services/VehicleService")
	ctx, span := tr.Start(ctx, "AttachImages",
		trace.WithAttributes(attribute.String("vehicle.id", id), attribute.Int("files", len(files))))
	defer span.End()

	// The listing must exist before anything is written.
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	refs := make([]string, 0, len(files))
	for _, fh := range files {
		st, err := s.Files.Save(fh, rule)
		if err != nil {
			// Remove files stored so far in this batch; the batch is all-or-nothing.
			for _, ref := range refs {
				_ = s.Files.Remove(ref)
			}
			return nil, err
		}
		refs = append(refs, st.URL)

		if _, err := repo.CreateMediaAsset(ctx, s.DB, st.Filename, st.URL, st.Ext, st.Size, st.Provider); err != nil {
			log.Warn().Err(err).Str("file", st.Filename).Msg("media asset record failed")
		}
	}

	images, err := repo.AppendVehicleImages(ctx, s.DB, id, refs)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	s.Activity.Record(domain.ActivityVehicle, "upload-images",
		fmt.Sprintf("%s: %d image(s)", id, len(refs)), &user)
	return images, nil
}

// applyVehicleInput merges non-nil input fields onto v, normalizing labels.
func applyVehicleInput(v *domain.Vehicle, in VehicleInput) {
	if in.Title != nil {
		v.Title = strings.TrimSpace(*in.Title)
	}
	if in.Make != nil {
		v.Make = titleCaser.String(strings.TrimSpace(*in.Make))
	}
	if in.Model != nil {
		v.Model = strings.TrimSpace(*in.Model)
	}
	if in.Year != nil {
		v.Year = *in.Year
	}
	if in.Price != nil {
		v.Price = *in.Price
	}
	if in.Mileage != nil {
		v.Mileage = *in.Mileage
	}
	if in.FuelType != nil {
		v.FuelType = strings.ToLower(strings.TrimSpace(*in.FuelType))
	}
	if in.Transmission != nil {
		v.Transmission = strings.ToLower(strings.TrimSpace(*in.Transmission))
	}
	if in.Description != nil {
		v.Description = *in.Description
	}
	if in.Features != nil {
		v.Features = *in.Features
	}
	if in.IsFeatured != nil {
		v.IsFeatured = *in.IsFeatured
	}
	if in.Status != nil {
		v.Status = strings.ToLower(strings.TrimSpace(*in.Status))
	}
}

// validateVehicle enforces the catalogue invariants and returns field-level
// messages for every violation at once.
func validateVehicle(v *domain.Vehicle, now time.Time) error {
	fields := map[string]string{}

	if v.Title == "" {
		fields["title"] = "title is required"
	}
	if v.Make == "" {
		fields["make"] = "make is required"
	}
	if v.Model == "" {
		fields["model"] = "model is required"
	}
	if v.Year < domain.MinVehicleYear || v.Year > now.Year()+1 {
		fields["year"] = fmt.Sprintf("year must be between %d and %d", domain.MinVehicleYear, now.Year()+1)
	}
	if v.Price < 0 {
		fields["price"] = "price must be >= 0"
	}
	if v.Mileage < 0 {
		fields["mileage"] = "mileage must be >= 0"
	}
	switch v.FuelType {
	case domain.FuelEssence, domain.FuelDiesel, domain.FuelHybride, domain.FuelElectrique, domain.FuelGPL:
	default:
		fields["fuelType"] = "fuelType must be one of: essence, diesel, hybride, electrique, gpl"
	}
	switch v.Transmission {
	case domain.TransmissionManual, domain.TransmissionAutomatic, domain.TransmissionSemiAuto:
	default:
		fields["transmission"] = "transmission must be one of: manuelle, automatique, semi-automatique"
	}
	switch v.Status {
	case domain.StatusAvailable, domain.StatusReserved, domain.StatusSold:
	default:
		fields["status"] = "status must be one of: available, reserved, sold"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
