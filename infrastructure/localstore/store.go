// Package localstore is the device-local persistence layer: a flat
// key/value document holding the check flags and the alarm settings blob.
// Storage may be unavailable (restricted profiles, read-only media), so
// every operation degrades to "no persisted value" instead of failing —
// the in-memory state stays the source of truth for the session.
package localstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// AlarmSettingsKey is the fixed key of the alarm settings JSON blob
const AlarmSettingsKey = "alarmSettings"

// Store is a fail-soft key/value store scoped to the device
type Store interface {
	// Get returns the stored value and whether one exists
	Get(key string) (string, bool)
	// Set stores a value and reports whether the write happened
	Set(key, value string) bool
	// Remove deletes a key; absent keys are a no-op
	Remove(key string)
	// Clear wipes everything, check flags and alarm settings alike
	Clear()
}

// FileStore persists the map as one JSON document on disk
type FileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
	logger *zap.Logger
}

// NewFileStore loads (or lazily creates) the document at path. A document
// that cannot be read or parsed starts the session empty rather than
// failing: the read path is fail-soft like every other operation.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	s := &FileStore{
		path:   path,
		values: make(map[string]string),
		logger: logger,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("local store unreadable, starting empty",
				zap.String("path", path),
				zap.Error(err),
			)
		}
		return s
	}

	if err := json.Unmarshal(data, &s.values); err != nil {
		logger.Warn("local store corrupt, starting empty",
			zap.String("path", path),
			zap.Error(err),
		)
		s.values = make(map[string]string)
	}
	return s
}

// Get returns the stored value and whether one exists
func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores a value and reports whether the write reached disk
func (s *FileStore) Set(key, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.flush()
}

// Remove deletes a key
func (s *FileStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	s.flush()
}

// Clear wipes the whole document
func (s *FileStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
	s.flush()
}

// flush writes the document; failures are logged and swallowed.
// Callers hold s.mu.
func (s *FileStore) flush() bool {
	data, err := json.Marshal(s.values)
	if err != nil {
		s.logger.Warn("local store marshal failed", zap.Error(err))
		return false
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.logger.Warn("local store directory unavailable",
				zap.String("path", s.path),
				zap.Error(err),
			)
			return false
		}
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.logger.Warn("local store write failed",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return false
	}
	return true
}

// MemoryStore is the in-memory Store used by tests and by sessions whose
// storage never becomes available
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns the stored value and whether one exists
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores a value
func (s *MemoryStore) Set(key, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return true
}

// Remove deletes a key
func (s *MemoryStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Clear wipes the store
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
}
