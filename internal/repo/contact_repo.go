// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// ContactMessage model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autoexport/go-export-backend/internal/domain"
)

// CreateContactMessage inserts a new contact form submission. CreatedAt is
// fixed at insert time and never updated afterwards.
func CreateContactMessage(ctx context.Context, db *gorm.DB, name, email string, phone *string, message string) (*domain.ContactMessage, error) {
	m := &domain.ContactMessage{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		Message:   message,
		Responded: false,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// ListContactMessages returns all submissions, most recent first.
func ListContactMessages(ctx context.Context, db *gorm.DB) ([]domain.ContactMessage, error) {
	var out []domain.ContactMessage
	err := db.WithContext(ctx).Order("created_at desc").Find(&out).Error
	return out, err
}

// GetContactMessage fetches a single submission by ID, or ErrNotFound.
func GetContactMessage(ctx context.Context, db *gorm.DB, id string) (*domain.ContactMessage, error) {
	var m domain.ContactMessage
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// MarkContactResponded sets the responded flag. Returns ErrNotFound when no
// row was affected.
func MarkContactResponded(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.ContactMessage{}).
		Where("id = ?", id).
		Update("responded", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteContactMessage removes a submission by ID. Returns ErrNotFound when
// no row was affected.
func DeleteContactMessage(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.ContactMessage{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
