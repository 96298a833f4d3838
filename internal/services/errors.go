// Package services defines the business logic for vehicles, contact
// messages, visitors, site configuration, and media assets. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrVehicleNotFound indicates that the requested vehicle does not exist.
	ErrVehicleNotFound = errors.New("vehicle not found")

	// ErrMessageNotFound indicates that the requested contact message does
	// not exist.
	ErrMessageNotFound = errors.New("message not found")

	// ErrMediaNotFound indicates that the requested media asset does not exist.
	ErrMediaNotFound = errors.New("media not found")
)

// ValidationError carries field-level messages for a rejected payload.
// Fields maps a JSON field name to a human-readable problem description.
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface with a deterministic summary.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for f, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidation unwraps err into a *ValidationError when possible.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
