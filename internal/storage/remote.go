// Package storage — remote object store forwarder.
//
// The site optionally mirrors uploads to an external object-storage HTTP API
// (a signed multipart POST returning the public URL). The forwarder deletes
// the uploaded object again if the response cannot be decoded, so a failed
// forward never leaves an orphaned remote object.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"
)

// HTTPRemoteStore forwards files to a remote object-storage endpoint.
type HTTPRemoteStore struct {
	// Endpoint receives multipart POSTs with a "file" part.
	Endpoint string
	// APIKey is sent as a bearer token when non-empty.
	APIKey string
	// Client defaults to a 30s-timeout client when nil.
	Client *http.Client
}

// uploadResponse is the provider's reply to a successful upload.
type uploadResponse struct {
	URL string `json:"url"`
}

func (r *HTTPRemoteStore) client() *http.Client {
	if r.Client != nil {
		return r.Client
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// Put uploads the file at localPath under the given name and returns the
// public URL reported by the provider.
func (r *HTTPRemoteStore) Put(localPath, filename string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, r.Endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if r.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.APIKey)
	}

	resp, err := r.client().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("remote store returned status %d", resp.StatusCode)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.URL == "" {
		// The object may exist remotely even though we cannot reference it;
		// try to remove it so nothing is orphaned.
		r.tryDelete(filename)
		return "", fmt.Errorf("remote store response unusable: %v", err)
	}
	return out.URL, nil
}

// tryDelete best-effort removes a remote object by name.
func (r *HTTPRemoteStore) tryDelete(filename string) {
	req, err := http.NewRequest(http.MethodDelete, r.Endpoint+"/"+filename, nil)
	if err != nil {
		return
	}
	if r.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.APIKey)
	}
	if resp, err := r.client().Do(req); err == nil {
		resp.Body.Close()
	}
}
