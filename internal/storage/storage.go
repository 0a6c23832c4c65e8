package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/silomba/backend/internal/config"
)

// PublicPrefix is the URL path under which stored posters are served.
const PublicPrefix = "/uploads/"

var (
	ErrNotFound    = errors.New("poster not found")
	ErrInvalidName = errors.New("invalid poster name")
)

type ObjectInfo struct {
	Size        int64
	ContentType string
}

// PosterStore keeps uploaded poster images addressed by a flat file name.
type PosterStore interface {
	Save(ctx context.Context, name string, reader io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, name string) error
}

// New returns the store selected by cfg.Storage.Driver.
func New(ctx context.Context, cfg *config.Config) (PosterStore, error) {
	switch cfg.Storage.Driver {
	case "", "local":
		return NewLocalStore(cfg.Storage.UploadDir)
	case "minio":
		store, err := NewMinIOStore(cfg.MinIO)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// NewPosterName returns a collision-free name keeping ext (".png", ".jpg").
func NewPosterName(ext string) string {
	return "poster-" + uuid.NewString() + ext
}

func URLFor(name string) string {
	return PublicPrefix + name
}

// NameFromURL extracts the stored name from a poster URL. It returns false for
// URLs that do not point into the poster store.
func NameFromURL(posterURL string) (string, bool) {
	if !strings.HasPrefix(posterURL, PublicPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(posterURL, PublicPrefix)
	if validateName(name) != nil {
		return "", false
	}
	return name, true
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return ErrInvalidName
	}
	return nil
}
