// Package storage provides file-based JSON persistence for projects,
// transcripts, and cached generations.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var ErrNotFound = errors.New("not found")

// Store persists JSON documents under a base directory. Keys are
// slash-separated, e.g. "project/prj_123" or "transcript/prj_123/msg_1".
type Store struct {
	basePath string
	mu       sync.Mutex
	locks    map[string]*FileLock
}

// New creates a Store rooted at basePath.
func New(basePath string) *Store {
	return &Store{
		basePath: basePath,
		locks:    make(map[string]*FileLock),
	}
}

func (s *Store) filePath(key string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(key)) + ".json"
}

func (s *Store) dirPath(prefix string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(prefix))
}

// Read loads the document at key into v.
func (s *Store) Read(ctx context.Context, key string, v any) error {
	data, err := os.ReadFile(s.filePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	return nil
}

// Write stores v at key. The write is atomic: the document is written to a
// temp file and renamed into place under an exclusive lock.
func (s *Store) Write(ctx context.Context, key string, v any) error {
	path := s.filePath(key)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	lock := s.getLock(path)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer lock.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

// Remove deletes the document at key. Removing a missing key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	path := s.filePath(key)

	lock := s.getLock(path)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer lock.Unlock()

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}

	return nil
}

// Keys returns the document keys directly under prefix.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.dirPath(prefix))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			keys = append(keys, name)
		} else if strings.HasSuffix(name, ".json") {
			keys = append(keys, strings.TrimSuffix(name, ".json"))
		}
	}

	return keys, nil
}

// Walk calls fn for every document directly under prefix. Documents that
// cannot be read are skipped; an error from fn stops the walk.
func (s *Store) Walk(ctx context.Context, prefix string, fn func(key string, data json.RawMessage) error) error {
	dir := s.dirPath(prefix)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}

		if err := fn(strings.TrimSuffix(name, ".json"), json.RawMessage(data)); err != nil {
			return err
		}
	}

	return nil
}

// Exists reports whether a document exists at key.
func (s *Store) Exists(ctx context.Context, key string) bool {
	_, err := os.Stat(s.filePath(key))
	return err == nil
}

func (s *Store) getLock(path string) *FileLock {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[path]
	if !ok {
		lock = NewFileLock(path)
		s.locks[path] = lock
	}

	return lock
}
