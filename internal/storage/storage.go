// Package storage implements the file upload pipeline: validation of
// multipart parts against per-target rules, persistence to local disk under
// collision-resistant names, and optional forwarding to a remote object
// store. One generic pipeline serves every upload target; only the Rule
// differs per endpoint.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Sentinel errors surfaced by the pipeline. Handlers map these onto the HTTP
// error taxonomy (invalid_file → 400, upload_failed → 500).
var (
	// ErrInvalidFile is returned before any storage write, when the declared
	// content type, the extension, or the size violates the target's rule.
	ErrInvalidFile = errors.New("invalid file")

	// ErrUploadFailed is returned when persisting or forwarding the file
	// fails after validation passed.
	ErrUploadFailed = errors.New("upload failed")
)

// Rule describes what one upload target accepts. Both the extension and the
// declared MIME type must be allowed; a mismatch between the two rejects the
// file even when each is individually plausible, and a part that declares no
// content type at all is rejected.
type Rule struct {
	// AllowedExts lists acceptable lowercase extensions without the dot.
	AllowedExts []string
	// AllowedTypes lists acceptable declared Content-Type values.
	AllowedTypes []string
	// MaxBytes caps the file size; checked before any write.
	MaxBytes int64
	// Subdir is the directory under the store root (and public path) for
	// this target, e.g. "vehicles" or "videos".
	Subdir string
}

// ImageRule returns the validation rule for image uploads.
func ImageRule(maxBytes int64, subdir string) Rule {
	return Rule{
		AllowedExts:  []string{"jpg", "jpeg", "png", "webp"},
		AllowedTypes: []string{"image/jpeg", "image/jpg", "image/png", "image/webp"},
		MaxBytes:     maxBytes,
		Subdir:       subdir,
	}
}

// VideoRule returns the validation rule for video uploads.
func VideoRule(maxBytes int64, subdir string) Rule {
	return Rule{
		AllowedExts:  []string{"mp4", "webm", "mov", "avi"},
		AllowedTypes: []string{"video/mp4", "video/webm", "video/quicktime", "video/x-msvideo"},
		MaxBytes:     maxBytes,
		Subdir:       subdir,
	}
}

// Validate checks a multipart file header against the rule. It never touches
// the file contents, so a rejection is guaranteed to happen before any write.
func (r Rule) Validate(fh *multipart.FileHeader) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fh.Filename)), ".")
	if !contains(r.AllowedExts, ext) {
		return fmt.Errorf("%w: extension %q not allowed", ErrInvalidFile, ext)
	}
	declared := strings.ToLower(strings.TrimSpace(fh.Header.Get("Content-Type")))
	// Strip parameters like "; charset=binary".
	if i := strings.Index(declared, ";"); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if !contains(r.AllowedTypes, declared) {
		return fmt.Errorf("%w: content type %q not allowed", ErrInvalidFile, declared)
	}
	if r.MaxBytes > 0 && fh.Size > r.MaxBytes {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrInvalidFile, fh.Size, r.MaxBytes)
	}
	return nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Stored describes the outcome of one persisted upload.
type Stored struct {
	// Filename is the collision-resistant stored name.
	Filename string
	// URL is the public reference: a local path under the public prefix, or
	// the remote object URL when forwarding succeeded.
	URL string
	// Ext is the lowercase extension without the dot.
	Ext string
	// Size is the file size in bytes.
	Size int64
	// Provider is "local" or "remote".
	Provider string
}

// RemoteStore forwards a stored file to a remote object store and returns the
// resulting public URL. Implementations must not leave a remote object behind
// when they return an error.
type RemoteStore interface {
	Put(localPath, filename string) (url string, err error)
}

// SaveFile is the seam used to persist a multipart part to disk; tests may
// replace it. The default implementation streams the part to the destination
// path.
var SaveFile = func(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

// Store is the upload pipeline. Root is the local storage directory,
// PublicPath the URL prefix under which Root is served. Remote is optional;
// when set, files are forwarded after the local write and the local copy is
// removed on success.
type Store struct {
	Root       string
	PublicPath string
	Remote     RemoteStore
}

// unsafeNameRE matches every character that is stripped from client-supplied
// file names before they reach the filesystem.
var unsafeNameRE = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// StoredName builds a collision-resistant name for a client-supplied one:
// a nanosecond timestamp prefix plus the sanitized original base name.
func StoredName(original string) string {
	base := unsafeNameRE.ReplaceAllString(filepath.Base(original), "_")
	if base == "" || base == "." {
		base = "file"
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixNano(), base)
}

// Save validates the part against rule and persists it. On success it returns
// the stored reference; on failure no file is left behind, locally or
// remotely.
//
// Flow:
//  1. rule.Validate — rejection happens before any write (ErrInvalidFile).
//  2. write to Root/Subdir under a timestamp-prefixed name.
//  3. when a RemoteStore is configured: forward, then delete the local copy.
//     Forwarding failure deletes the local copy too and surfaces
//     ErrUploadFailed, so a client abort or remote outage cannot orphan
//     temp files.
func (s *Store) Save(fh *multipart.FileHeader, rule Rule) (*Stored, error) {
	if err := rule.Validate(fh); err != nil {
		return nil, err
	}

	dir := filepath.Join(s.Root, rule.Subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	name := StoredName(fh.Filename)
	localPath := filepath.Join(dir, name)
	if err := SaveFile(fh, localPath); err != nil {
		_ = os.Remove(localPath)
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	stored := &Stored{
		Filename: name,
		URL:      path.Join(s.PublicPath, rule.Subdir, name),
		Ext:      ext,
		Size:     fh.Size,
		Provider: "local",
	}

	if s.Remote != nil {
		url, err := s.Remote.Put(localPath, name)
		// The local copy is temporary once a remote store is configured.
		_ = os.Remove(localPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
		stored.URL = url
		stored.Provider = "remote"
	}

	return stored, nil
}

// Remove deletes a stored file given its public URL reference. Remote
// references are ignored (the remote object lifecycle is the provider's).
// A missing local file is not an error.
func (s *Store) Remove(url string) error {
	rel, ok := strings.CutPrefix(url, s.PublicPath+"/")
	if !ok {
		return nil
	}
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
