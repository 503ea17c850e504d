package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"FilmCatalog/internal/ports"
)

const lockRetryDelay = 50 * time.Millisecond

// FileStore keeps every key in one JSON object file. Writes replace the file
// atomically; an advisory lock file serializes writers across processes.
type FileStore struct {
	path string
	lock *flock.Flock
}

var _ ports.KeyValueStore = (*FileStore)(nil)

// OpenFile prepares the parent directory of path; the file itself is created on first write.
func OpenFile(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("file store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{path: path, lock: flock.New(path + ".lock")}, nil
}

func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	ok, err := s.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return "", false, fmt.Errorf("acquire read lock: %w", err)
	}
	if !ok {
		return "", false, errors.New("acquire read lock: not acquired")
	}
	defer s.lock.Unlock()

	data, err := s.readAll()
	if err != nil {
		return "", false, err
	}
	v, found := data[key]
	return v, found, nil
}

func (s *FileStore) SetMany(ctx context.Context, entries map[string]string) error {
	ok, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire write lock: %w", err)
	}
	if !ok {
		return errors.New("acquire write lock: not acquired")
	}
	defer s.lock.Unlock()

	data, err := s.readAll()
	if err != nil {
		return err
	}
	for k, v := range entries {
		data[k] = v
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	return writeFileAtomic(s.path, raw)
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) readAll() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read store: %w", err)
	}
	data := map[string]string{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode store %s: %w", s.path, err)
	}
	return data, nil
}

// writeFileAtomic writes through a temp file in the same directory and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
