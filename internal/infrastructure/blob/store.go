// Package blob stores uploaded files behind a small S3-like interface.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// Driver identifies a concrete blob storage backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"     // local filesystem (default, dev)
	DriverS3         Driver = "s3"     // S3 / MinIO compatible
	DriverMemory     Driver = "memory" // in-memory (tests)
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("blob: not found")

// Info describes a stored blob.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified time.Time `json:"last_modified"`
	URL          string    `json:"url,omitempty"`
}

// Store is implemented by every backend.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Driver() Driver
}

// sanitizeKey rejects keys that would escape the store root.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key %q", key)
	}
	clean := path.Clean(key)
	if clean == ".." || strings.HasPrefix(clean, "../") || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return clean, nil
}
