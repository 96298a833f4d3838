// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Vehicle model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a vehicle is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autoexport/go-export-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateVehicle inserts a new Vehicle row. The ID is a randomly generated
// UUID and CreatedAt is set to UTC. The Images list starts empty unless the
// caller provides one.
func CreateVehicle(ctx context.Context, db *gorm.DB, v *domain.Vehicle) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Images == nil {
		v.Images = []string{}
	}
	v.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(v).Error
}

// ListVehicles returns all vehicles ordered by creation time descending.
// When featuredOnly is true, only featured listings are returned.
func ListVehicles(ctx context.Context, db *gorm.DB, featuredOnly bool) ([]domain.Vehicle, error) {
	var out []domain.Vehicle
	q := db.WithContext(ctx).Order("created_at desc")
	if featuredOnly {
		q = q.Where("is_featured = ?", true)
	}
	err := q.Find(&out).Error
	return out, err
}

// GetVehicle fetches a single vehicle by ID, or ErrNotFound if missing.
func GetVehicle(ctx context.Context, db *gorm.DB, id string) (*domain.Vehicle, error) {
	var v domain.Vehicle
	if err := db.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// SaveVehicle persists all fields of an existing vehicle row.
func SaveVehicle(ctx context.Context, db *gorm.DB, v *domain.Vehicle) error {
	return db.WithContext(ctx).Save(v).Error
}

// DeleteVehicle removes a vehicle row by ID. If no rows are affected the
// record did not exist and ErrNotFound is returned.
func DeleteVehicle(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Vehicle{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendVehicleImages atomically appends refs to a vehicle's ordered image
// list and returns the updated list. ErrNotFound is returned when the vehicle
// does not exist.
func AppendVehicleImages(ctx context.Context, db *gorm.DB, id string, refs []string) ([]string, error) {
	var images []string
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v domain.Vehicle
		if err := tx.Where("id = ?", id).First(&v).Error; err != nil {
			return err
		}
		v.Images = append(v.Images, refs...)
		if err := tx.Model(&v).Update("images", v.Images).Error; err != nil {
			return err
		}
		images = v.Images
		return nil
	})
	return images, err
}
