// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP responses
// (via the `fail()` helper in this package). These codes provide clients with a stable,
// machine-readable error taxonomy that supplements human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless explicitly noted.
//   - Generic codes (e.g., bad_request, unauthorized, not_found) mirror common HTTP
//     status semantics to aid interoperability.
//   - Auth codes (missing_token, malformed_header, token_expired, invalid_token)
//     distinguish the exact failure so clients can decide between re-login and
//     header fixes.
//   - Upload codes (invalid_file, upload_failed) separate client mistakes (400)
//     from storage-side failures (500).
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "not_found",
//	  "message": "Vehicle not found"
//	}
package handlers

const (
	ErrCodeBadRequest  = "bad_request"
	ErrCodeForbidden   = "forbidden"
	ErrCodeNotFound    = "not_found"
	ErrCodeRateLimited = "too_many_requests"
	ErrCodeInternal    = "internal_error"

	// Auth:
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeMissingToken    = "missing_token"
	ErrCodeMalformedHeader = "malformed_header"
	ErrCodeTokenExpired    = "token_expired"
	ErrCodeInvalidToken    = "invalid_token"

	// Uploads:
	ErrCodeInvalidFile  = "invalid_file"
	ErrCodeUploadFailed = "upload_failed"

	ErrCodeMethodNotAllowed = "method_not_allowed"
)
