package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore writes objects under a media root directory.
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if root == "" {
		return nil, fmt.Errorf("media root is required")
	}
	if baseURL == "" {
		baseURL = "/media"
	}
	return &LocalStore{root: root, baseURL: baseURL}, nil
}

// Put writes body to <root>/<key>, replacing any existing file.
func (s *LocalStore) Put(ctx context.Context, key, _ string, body []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", ErrEmptyObject
	}
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("creating media dir: %w", err)
	}
	if err := os.WriteFile(dest, body, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", key, err)
	}
	return joinURL(s.baseURL, key), nil
}
