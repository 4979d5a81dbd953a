// Package store persists the configured folder list, optimization settings,
// favorites, and trash as whole-file JSON documents. Every save replaces the
// entire persisted collection; concurrent writers race and the last writer
// wins.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"localfeed/internal/logging"
)

// ErrStoreIO indicates an underlying read or write failure.
var ErrStoreIO = errors.New("store I/O failure")

// Optimizations holds the feature flags for derivative serving and the
// viewer behavior settings that ride along in the same document.
type Optimizations struct {
	ThumbnailCache   bool `json:"thumbnail_cache"`
	VideoPosterCache bool `json:"video_poster_cache"`
	FillScreen       bool `json:"fill_screen"`
	AutoAdvance      bool `json:"auto_advance"`
	AutoAdvanceDelay int  `json:"auto_advance_delay"`
}

// DefaultOptimizations returns the settings applied when the config document
// has no optimizations section.
func DefaultOptimizations() Optimizations {
	return Optimizations{AutoAdvanceDelay: 3}
}

// Config is the persisted configuration document.
type Config struct {
	Folders       []string       `json:"folders"`
	Shuffle       bool           `json:"shuffle"`
	Optimizations *Optimizations `json:"optimizations,omitempty"`
}

// ConfigStore persists the Config document to a single JSON file.
type ConfigStore struct {
	path string
	mu   sync.Mutex
}

// NewConfigStore creates a store backed by the given file path. The file is
// created on first save.
func NewConfigStore(path string) *ConfigStore {
	return &ConfigStore{path: path}
}

// Load reads the whole configuration document. A missing file yields an
// empty configuration, not an error.
func (s *ConfigStore) Load() (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *ConfigStore) loadLocked() (Config, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{Folders: []string{}}, nil
		}
		return Config{}, fmt.Errorf("%w: read %s: %v", ErrStoreIO, s.path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parse %s: %v", ErrStoreIO, s.path, err)
	}
	if cfg.Folders == nil {
		cfg.Folders = []string{}
	}
	return cfg, nil
}

// Save replaces the whole configuration document.
func (s *ConfigStore) Save(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(cfg)
}

func (s *ConfigStore) saveLocked(cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode config: %v", ErrStoreIO, err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStoreIO, s.path, err)
	}
	return nil
}

// Folders returns the configured media roots. Load failures are logged and
// yield an empty list so callers degrade to an empty feed.
func (s *ConfigStore) Folders() []string {
	cfg, err := s.Load()
	if err != nil {
		logging.Error("failed to load config: %v", err)
		return nil
	}
	return cfg.Folders
}

// SaveFolders replaces the configured roots, preserving the rest of the
// document.
func (s *ConfigStore) SaveFolders(folders []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.loadLocked()
	if err != nil {
		return err
	}
	cfg.Folders = folders
	return s.saveLocked(cfg)
}

// GetOptimizations returns the optimization settings with defaults applied
// for any missing section.
func (s *ConfigStore) GetOptimizations() Optimizations {
	cfg, err := s.Load()
	if err != nil {
		logging.Error("failed to load optimization settings: %v", err)
		return DefaultOptimizations()
	}
	if cfg.Optimizations == nil {
		return DefaultOptimizations()
	}
	return *cfg.Optimizations
}

// SaveOptimizations replaces the optimization settings, preserving the rest
// of the document.
func (s *ConfigStore) SaveOptimizations(opts Optimizations) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.loadLocked()
	if err != nil {
		return err
	}
	cfg.Optimizations = &opts
	return s.saveLocked(cfg)
}
