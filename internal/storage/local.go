package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/refera/refera-backend/internal/logger"
)

type localStore struct {
	log     *logger.Logger
	root    string
	baseURL string
}

// NewLocal builds a Store writing under a directory on disk, for development
// and tests. Keys map straight to paths below the root.
func NewLocal(log *logger.Logger, root, baseURL string) (Store, error) {
	if root == "" {
		return nil, fmt.Errorf("local store root must not be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store root %q: %w", root, err)
	}
	return &localStore{
		log:     log.With("store", "local"),
		root:    root,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (ls *localStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(ls.root, clean), nil
}

func (ls *localStore) Upload(ctx context.Context, key string, file io.Reader) error {
	p, err := ls.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %q: %w", key, err)
	}
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("failed to create file %q: %w", key, err)
	}
	if _, err := io.Copy(f, file); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write file %q: %w", key, err)
	}
	return f.Close()
}

func (ls *localStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := ls.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", key, err)
	}
	return f, nil
}

func (ls *localStore) Delete(ctx context.Context, key string) error {
	p, err := ls.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("failed to delete file %q: %w", key, err)
	}
	return nil
}

func (ls *localStore) Replace(ctx context.Context, key string, newFile io.Reader) error {
	return ls.Upload(ctx, key, newFile)
}

func (ls *localStore) DeletePrefix(ctx context.Context, prefix string) error {
	p, err := ls.path(strings.TrimSuffix(prefix, "/"))
	if err != nil {
		return err
	}
	if err := os.RemoveAll(p); err != nil {
		return fmt.Errorf("failed to delete prefix %q: %w", prefix, err)
	}
	return nil
}

func (ls *localStore) PublicURL(key string) string {
	if ls.baseURL == "" {
		return key
	}
	return ls.baseURL + "/" + key
}
