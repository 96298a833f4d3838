// Package services – ContactService
//
// This file implements the ContactService, which handles public contact form
// submissions and their admin-side management (listing, marking responded,
// deletion). Submissions support idempotent retries: when the transport layer
// has validated an Idempotency-Key, a replayed submission returns the
// original record instead of creating a second row.
package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/autoexport/go-export-backend/internal/domain"
	"github.com/autoexport/go-export-backend/internal/repo"
)

// ContactInput is the public submission payload.
type ContactInput struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone,omitempty"`
	Message string  `json:"message"`
}

// ContactService implements the use-cases around contact messages.
type ContactService struct {
	DB       *gorm.DB
	Activity *ActivityRecorder

	// IdempotencyTTL bounds how long a submission key dedupes retries.
	IdempotencyTTL time.Duration
}

// Submit validates and persists a public submission. When idemScope/idemKey
// are non-empty, a retry carrying the same key returns the originally created
// record (replay=true) instead of inserting again.
func (s *ContactService) Submit(ctx context.Context, in ContactInput, idemScope, idemKey string) (msg *domain.ContactMessage, replay bool, err error) {
	if err := validateContact(in); err != nil {
		return nil, false, err
	}

	const path = "/api/contact"
	if idemKey != "" {
		if rec, err := repo.GetIdempotency(ctx, s.DB, idemScope, path, idemKey, time.Now().UTC()); err == nil {
			if prev, err := repo.GetContactMessage(ctx, s.DB, rec.RecordID); err == nil {
				return prev, true, nil
			}
		}
	}

	m, err := repo.CreateContactMessage(ctx, s.DB, strings.TrimSpace(in.Name), strings.TrimSpace(in.Email), in.Phone, in.Message)
	if err != nil {
		return nil, false, err
	}

	if idemKey != "" {
		if _, err := repo.CreateIdempotency(ctx, s.DB, idemScope, path, idemKey, m.ID, 201, s.IdempotencyTTL); err != nil &&
			!errors.Is(err, repo.ErrDuplicate) {
			log.Warn().Err(err).Msg("idempotency record failed")
		}
	}
	return m, false, nil
}

// List returns all submissions, newest first. Admin only.
func (s *ContactService) List(ctx context.Context) ([]domain.ContactMessage, error) {
	return repo.ListContactMessages(ctx, s.DB)
}

// Get returns one submission by ID or ErrMessageNotFound.
func (s *ContactService) Get(ctx context.Context, id string) (*domain.ContactMessage, error) {
	m, err := repo.GetContactMessage(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return m, nil
}

// MarkResponded flips the responded flag. Admin only.
func (s *ContactService) MarkResponded(ctx context.Context, id, user string) error {
	if err := repo.MarkContactResponded(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	s.Activity.Record(domain.ActivityMessage, "respond", id, &user)
	return nil
}

// Delete removes a submission. Admin only.
func (s *ContactService) Delete(ctx context.Context, id, user string) error {
	if err := repo.DeleteContactMessage(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	s.Activity.Record(domain.ActivityMessage, "delete", id, &user)
	return nil
}

// validateContact enforces required fields and a parseable email address.
func validateContact(in ContactInput) error {
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "name is required"
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		fields["email"] = "email is required"
	} else if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "email is not a valid address"
	}
	if strings.TrimSpace(in.Message) == "" {
		fields["message"] = "message is required"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
