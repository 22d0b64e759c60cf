package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps blobs under a local directory; used when no bucket is configured.
type DiskStore struct {
	root      string
	publicURL string
}

func NewDiskStore(root, publicURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &DiskStore{root: root, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Root is the directory served at the public URL
func (d *DiskStore) Root() string { return d.root }

func (d *DiskStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	full := filepath.Join(d.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	return d.publicURL + "/" + key, nil
}

func (d *DiskStore) Delete(_ context.Context, url string) error {
	key, ok := strings.CutPrefix(url, d.publicURL+"/")
	if !ok || key == "" || strings.Contains(key, "..") {
		return ErrNotOwned
	}
	if err := os.Remove(filepath.Join(d.root, filepath.FromSlash(key))); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
