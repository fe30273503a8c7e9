// Package file stores the note collection as one JSON document on disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"lumina/internal/services/notes"
)

// StorageKey names the stored collection.
const StorageKey = "lumina_notes_data"

const tempFilePrefix = ".lumina-tmp-"

// Store keeps the collection in <dir>/lumina_notes_data.json.
type Store struct {
	path string
}

// New creates the directory if needed and returns a store rooted in it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Store{path: filepath.Join(dir, StorageKey+".json")}, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string { return s.path }

// Load returns the stored collection. A missing file is an empty collection.
func (s *Store) Load(_ context.Context) ([]notes.Note, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []notes.Note{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var list []notes.Note
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if list == nil {
		list = []notes.Note{}
	}
	return list, nil
}

// Save rewrites the file atomically.
func (s *Store) Save(_ context.Context, list []notes.Note) error {
	if list == nil {
		list = []notes.Note{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode notes: %w", err)
	}
	return WriteFileAtomic(s.path, raw, 0o644)
}

// Ping checks that the storage directory is still reachable.
func (s *Store) Ping(_ context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it over filename, so readers never see a partial write.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), tempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("rename temp file to %s: %w", filename, err)
	}
	return nil
}
