package identity

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
)

// FileStore persists one JSON document per logical key under a root
// directory. It is the local-storage analog for CLI and desktop embeddings.
// Writes go through a temp file and rename so readers never observe a
// partially written value.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, ErrNoEmptyString
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, wrapStorage(err, "unable to create store directory")
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	// Keys contain ":" separators; escape them so every key maps to a flat
	// file name.
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, wrapStorage(err, "unable to read store file")
	}
	return string(raw), true, nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	tmp, err := os.CreateTemp(s.dir, ".pending-*")
	if err != nil {
		return wrapStorage(err, "unable to create store file")
	}

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return wrapStorage(err, "unable to write store file")
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return wrapStorage(err, "unable to close store file")
	}

	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		os.Remove(tmp.Name())
		return wrapStorage(err, "unable to commit store file")
	}

	return nil
}

func (s *FileStore) Remove(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return wrapStorage(err, "unable to remove store file")
	}
	return nil
}
