package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/gabriel-vasile/mimetype"
)

// Store persists public objects such as product images and returns their URL.
type Store interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

var ErrEmptyObject = errors.New("object body is empty")

// New returns the S3 store when a bucket is configured, otherwise the local media store.
func New(cfg config.StorageConfig) (Store, error) {
	if cfg.UsesS3() {
		return NewS3Store(cfg)
	}
	return NewLocalStore(cfg.MediaRoot, cfg.MediaBaseURL)
}

// DetectContentType sniffs body and falls back to the declared type when sniffing is inconclusive.
func DetectContentType(body []byte, declared string) string {
	detected := mimetype.Detect(body)
	if detected != nil && detected.String() != "application/octet-stream" && !strings.HasPrefix(detected.String(), "text/plain") {
		return detected.String()
	}
	if declared = strings.TrimSpace(declared); declared != "" {
		return declared
	}
	return detected.String()
}

// IsImage reports whether body looks like an image.
func IsImage(body []byte) bool {
	return strings.HasPrefix(mimetype.Detect(body).String(), "image/")
}

func cleanKey(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", fmt.Errorf("object key is required")
	}
	cleaned := path.Clean(key)
	if cleaned == "." || strings.HasPrefix(cleaned, "../") || cleaned == ".." {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return cleaned, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
