// Package storage provides the transient file spool that backs uploaded
// statements while they are being processed.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned for unknown file IDs.
	ErrNotFound = errors.New("file not found")
	// ErrTooLarge is returned when an upload exceeds Config.MaxBytes.
	ErrTooLarge = errors.New("file exceeds size limit")
)

// FileInfo contains metadata about a stored file
type FileInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"` // Internal storage path
	CreatedAt   time.Time `json:"created_at"`
}

// Storage defines the interface for spool operations
type Storage interface {
	// Upload stores a file and returns its metadata
	Upload(ctx context.Context, filename string, contentType string, r io.Reader) (*FileInfo, error)

	// ReadAll returns the full content of a file
	ReadAll(ctx context.Context, fileID uuid.UUID) ([]byte, error)

	// Delete removes a file by its ID
	Delete(ctx context.Context, fileID uuid.UUID) error

	// List returns all spooled files
	List(ctx context.Context) ([]*FileInfo, error)

	// GetInfo returns metadata for a file without reading it
	GetInfo(ctx context.Context, fileID uuid.UUID) (*FileInfo, error)

	// Sweep deletes files created before now-maxAge and returns how many were removed
	Sweep(ctx context.Context, maxAge time.Duration) (int, error)
}

// Config holds storage configuration
type Config struct {
	LocalPath string
	MaxBytes  int64 // 0 means unlimited
}

// New creates a new Storage implementation based on configuration
func New(cfg *Config) (Storage, error) {
	return NewLocalStorage(cfg.LocalPath, cfg.MaxBytes)
}
