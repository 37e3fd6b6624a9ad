// Package storage persists the application's logical records as keyed
// JSON documents in a data directory, one file per key. Writes replace
// the whole record atomically (temp file + rename), so a concurrent
// writer can clobber at most one key, never the whole data set.
// Consistency across writers is last-writer-wins per key; other views
// learn about a write through the "storage.<key>" event published after
// it lands, or at the latest on the next poll tick.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"burguerclub-pos/pkg/pubsub"

	"go.uber.org/zap"
)

var ErrNotFound = errors.New("storage: record not found")

type RecordStore struct {
	dir string
	bus *pubsub.Bus
	log *zap.Logger

	mu sync.Mutex
}

func Open(dir string, bus *pubsub.Bus, log *zap.Logger) (*RecordStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage: data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data directory: %w", err)
	}
	return &RecordStore{dir: dir, bus: bus, log: log}, nil
}

// Get unmarshals the record stored under key into out. A missing record
// returns ErrNotFound. An unreadable or unparsable record is logged and
// reported as ErrNotFound so the owning store falls back to its default
// state instead of failing the load.
func (s *RecordStore) Get(key string, out any) error {
	s.mu.Lock()
	data, err := os.ReadFile(s.path(key))
	s.mu.Unlock()

	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		s.log.Warn("record unreadable, falling back to default",
			zap.String("key", key), zap.Error(err))
		return ErrNotFound
	}

	if err := json.Unmarshal(data, out); err != nil {
		s.log.Warn("record corrupt, falling back to default",
			zap.String("key", key), zap.Error(err))
		return ErrNotFound
	}
	return nil
}

// Put replaces the record stored under key and, on success, publishes
// "storage.<key>" so other views re-read it.
func (s *RecordStore) Put(key string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: marshal %s: %w", key, err)
	}

	s.mu.Lock()
	err = s.replace(key, data)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if s.bus != nil {
		s.bus.Publish("storage."+key, key)
	}
	return nil
}

// Delete removes the record stored under key. Missing records are a
// no-op.
func (s *RecordStore) Delete(key string) error {
	s.mu.Lock()
	err := os.Remove(s.path(key))
	s.mu.Unlock()

	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}

func (s *RecordStore) replace(key string, data []byte) error {
	target := s.path(key)
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("storage: write %s: %w", key, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("storage: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("storage: write %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("storage: write %s: %w", key, err)
	}
	return nil
}

func (s *RecordStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
