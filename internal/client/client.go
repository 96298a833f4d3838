// Package client provides a typed Go client for the vehicle-export backend
// API. Every failure (transport or non-2xx response) is normalized into an
// *APIError so callers branch on one error shape; idempotent GETs are retried
// with exponential backoff, writes never are.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/autoexport/go-export-backend/internal/domain"
	"github.com/autoexport/go-export-backend/internal/services"
)

// maxGetRetries bounds retry attempts for idempotent GET requests
// (1 initial try + maxGetRetries retries).
const maxGetRetries = 3

// TokenSource supplies the bearer token injected into protected calls.
// Implementations may refresh tokens; errors abort the request.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a TokenSource wrapping a fixed token string.
type StaticToken string

// Token returns the wrapped token.
func (s StaticToken) Token() (string, error) { return string(s), nil }

// APIError is the normalized failure shape for every client method.
type APIError struct {
	// Status is the HTTP status code, or 0 for transport failures.
	Status int
	// Code is the machine-readable error code from the response envelope.
	Code string
	// Message is a displayable description of the failure.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// errorEnvelope mirrors the server's error body.
type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client calls the backend REST API. The zero value is not usable; construct
// with New.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client (default 30s timeout).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTokenSource sets the bearer token provider used on protected calls.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// New returns a Client for the API rooted at baseURL (e.g.
// "https://host/api"). A trailing slash is trimmed.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do executes one request. Protected calls get the bearer token; JSON bodies
// get the content type. The caller owns closing the response body.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, authed bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if authed {
		if c.tokens == nil {
			return nil, &APIError{Message: "no token source configured"}
		}
		tok, err := c.tokens.Token()
		if err != nil {
			return nil, &APIError{Message: "token source: " + err.Error()}
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	return resp, nil
}

// decodeOrError consumes resp: 2xx decodes into out (when non-nil), anything
// else becomes an *APIError built from the envelope.
func decodeOrError(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &APIError{Status: resp.StatusCode, Message: "malformed response: " + err.Error()}
		}
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var env errorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && env.Message != "" {
		apiErr.Code, apiErr.Message = env.Code, env.Message
	}
	return apiErr
}

// getJSON performs a GET with retries (transport errors and 5xx responses are
// retried with exponential backoff, bounded by the context).
func (c *Client) getJSON(ctx context.Context, path string, authed bool, out any) error {
	op := func() error {
		resp, err := c.do(ctx, http.MethodGet, path, nil, "", authed)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 500 {
			err := decodeOrError(resp, nil)
			if err == nil {
				err = &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
			}
			return err
		}
		// Client errors and success are final.
		return backoff.Permanent(decodeOrError(resp, out))
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxGetRetries), ctx)
	err := backoff.Retry(op, bo)
	// backoff.Permanent(nil) unwraps to nil already; normalize the rest.
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{Message: err.Error()}
}

// writeJSON performs a non-retried write with a JSON body.
func (c *Client) writeJSON(ctx context.Context, method, path string, in, out any, authed bool) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return &APIError{Message: "encode request: " + err.Error()}
		}
		body = bytes.NewReader(buf)
	}
	resp, err := c.do(ctx, method, path, body, "application/json", authed)
	if err != nil {
		return err
	}
	return decodeOrError(resp, out)
}

//
// Auth
//

// LoginResult carries the issued bearer token and its expiry.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login authenticates the admin account. On success the returned token can be
// wrapped in a StaticToken and passed to WithTokenSource. This is the one
// call whose *APIError a UI is expected to surface verbatim ("Invalid
// credentials").
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var out LoginResult
	err := c.writeJSON(ctx, http.MethodPost, "/admin/login",
		map[string]string{"username": username, "password": password}, &out, false)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

//
// Vehicles
//

// ListVehicles returns all listings; set featuredOnly to restrict the result.
func (c *Client) ListVehicles(ctx context.Context, featuredOnly bool) ([]domain.Vehicle, error) {
	path := "/vehicles"
	if featuredOnly {
		path += "?featured=true"
	}
	var out []domain.Vehicle
	if err := c.getJSON(ctx, path, false, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetVehicle fetches one listing.
func (c *Client) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	var out domain.Vehicle
	if err := c.getJSON(ctx, "/vehicles/"+url.PathEscape(id), false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateVehicle creates a listing (admin).
func (c *Client) CreateVehicle(ctx context.Context, in services.VehicleInput) (*domain.Vehicle, error) {
	var out domain.Vehicle
	if err := c.writeJSON(ctx, http.MethodPost, "/vehicles", in, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateVehicle merges the supplied fields onto an existing listing (admin).
func (c *Client) UpdateVehicle(ctx context.Context, id string, in services.VehicleInput) (*domain.Vehicle, error) {
	var out domain.Vehicle
	if err := c.writeJSON(ctx, http.MethodPut, "/vehicles/"+url.PathEscape(id), in, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteVehicle removes a listing (admin).
func (c *Client) DeleteVehicle(ctx context.Context, id string) error {
	return c.writeJSON(ctx, http.MethodDelete, "/vehicles/"+url.PathEscape(id), nil, nil, true)
}

// UploadVehicleImages attaches image files to a listing (admin) and returns
// the updated ordered image list. Parts are sent, and therefore appended to
// the listing's image list, in slice order.
func (c *Client) UploadVehicleImages(ctx context.Context, id string, files []FilePart) ([]string, error) {
	body, contentType, err := multipartBody("images", files)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPost, "/vehicles/upload/"+url.PathEscape(id), body, contentType, true)
	if err != nil {
		return nil, err
	}
	var out struct {
		Images []string `json:"images"`
	}
	if err := decodeOrError(resp, &out); err != nil {
		return nil, err
	}
	return out.Images, nil
}

//
// Contact
//

// SubmitContact sends a public contact-form submission. A non-empty idemKey
// is forwarded as Idempotency-Key so client retries do not double-submit.
func (c *Client) SubmitContact(ctx context.Context, in services.ContactInput, idemKey string) (*domain.ContactMessage, error) {
	buf, err := json.Marshal(in)
	if err != nil {
		return nil, &APIError{Message: "encode request: " + err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/contact", bytes.NewReader(buf))
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	var out domain.ContactMessage
	if err := decodeOrError(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListContacts returns all contact messages (admin).
func (c *Client) ListContacts(ctx context.Context) ([]domain.ContactMessage, error) {
	var out []domain.ContactMessage
	if err := c.getJSON(ctx, "/contact", true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetContact fetches one contact message (admin).
func (c *Client) GetContact(ctx context.Context, id string) (*domain.ContactMessage, error) {
	var out domain.ContactMessage
	if err := c.getJSON(ctx, "/contact/"+url.PathEscape(id), true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RespondContact marks a message responded (admin).
func (c *Client) RespondContact(ctx context.Context, id string) error {
	return c.writeJSON(ctx, http.MethodPut, "/contact/"+url.PathEscape(id)+"/respond", nil, nil, true)
}

// DeleteContact removes a message (admin).
func (c *Client) DeleteContact(ctx context.Context, id string) error {
	return c.writeJSON(ctx, http.MethodDelete, "/contact/"+url.PathEscape(id), nil, nil, true)
}

//
// Visitors
//

// RecordVisit logs a page visit. The endpoint is contractually infallible;
// only transport-level failures surface here.
func (c *Client) RecordVisit(ctx context.Context, page string) error {
	return c.writeJSON(ctx, http.MethodPost, "/visitors/record",
		map[string]string{"page": page}, nil, false)
}

// VisitorStats fetches aggregate visit statistics (admin).
func (c *Client) VisitorStats(ctx context.Context) (*services.Stats, error) {
	var out services.Stats
	if err := c.getJSON(ctx, "/visitors/stats", true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//
// Site configuration
//

// GetSiteConfig reads the singleton site configuration (admin).
func (c *Client) GetSiteConfig(ctx context.Context) (*domain.SiteConfig, error) {
	var out domain.SiteConfig
	if err := c.getJSON(ctx, "/admin/site-config", true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSiteConfig merges fields onto the singleton configuration (admin).
func (c *Client) UpdateSiteConfig(ctx context.Context, in services.SiteConfigInput) (*domain.SiteConfig, error) {
	var out domain.SiteConfig
	if err := c.writeJSON(ctx, http.MethodPut, "/admin/site-config", in, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadSiteVideo replaces the landing-page video (admin).
func (c *Client) UploadSiteVideo(ctx context.Context, filename string, video io.Reader) (*domain.SiteConfig, error) {
	body, contentType, err := multipartBody("video", []FilePart{{Name: filename, Reader: video}})
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPost, "/admin/upload-video", body, contentType, true)
	if err != nil {
		return nil, err
	}
	var out domain.SiteConfig
	if err := decodeOrError(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//
// Media
//

// ListMedia returns all media assets (admin).
func (c *Client) ListMedia(ctx context.Context) ([]domain.MediaAsset, error) {
	var out []domain.MediaAsset
	if err := c.getJSON(ctx, "/media", true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadMedia uploads one image asset (admin).
func (c *Client) UploadMedia(ctx context.Context, filename string, file io.Reader) (*domain.MediaAsset, error) {
	body, contentType, err := multipartBody("file", []FilePart{{Name: filename, Reader: file}})
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPost, "/media", body, contentType, true)
	if err != nil {
		return nil, err
	}
	var out domain.MediaAsset
	if err := decodeOrError(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMedia removes a media asset (admin).
func (c *Client) DeleteMedia(ctx context.Context, id string) error {
	return c.writeJSON(ctx, http.MethodDelete, "/media/"+url.PathEscape(id), nil, nil, true)
}

// FilePart is one named file sent in a multipart upload. Parts keep their
// slice position on the wire, which the server relies on when appending to
// ordered lists.
type FilePart struct {
	// Name is the filename declared for the part.
	Name string
	// Reader supplies the part content.
	Reader io.Reader
}

// multipartBody builds an in-memory multipart form with one part per file
// under the given field name, in slice order, returning the body and its
// content type. Each part declares a content type derived from its filename
// extension, which the server validates.
func multipartBody(field string, files []FilePart) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, f.Name))
		ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(f.Name)))
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", &APIError{Message: "build form: " + err.Error()}
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return nil, "", &APIError{Message: "read file: " + err.Error()}
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", &APIError{Message: "finish form: " + err.Error()}
	}
	return &buf, mw.FormDataContentType(), nil
}
