package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// ListStore persists one named list of media paths (favorites, trash) as a
// whole-file JSON document of the form {"<key>": ["/path", ...]}.
type ListStore struct {
	path string
	key  string
	mu   sync.Mutex
}

// NewListStore creates a list store backed by the given file. key names the
// JSON field holding the list (e.g. "favorites").
func NewListStore(path, key string) *ListStore {
	return &ListStore{path: path, key: key}
}

// Load reads the whole list. A missing file yields an empty list.
func (s *ListStore) Load() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *ListStore) loadLocked() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrStoreIO, s.path, err)
	}

	var doc map[string][]string
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrStoreIO, s.path, err)
	}
	list := doc[s.key]
	if list == nil {
		list = []string{}
	}
	return list, nil
}

// Save replaces the whole list.
func (s *ListStore) Save(list []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(list)
}

func (s *ListStore) saveLocked(list []string) error {
	if list == nil {
		list = []string{}
	}
	data, err := json.MarshalIndent(map[string][]string{s.key: list}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrStoreIO, s.key, err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStoreIO, s.path, err)
	}
	return nil
}

// Contains reports whether path is present in the list.
func (s *ListStore) Contains(path string) (bool, error) {
	list, err := s.Load()
	if err != nil {
		return false, err
	}
	for _, p := range list {
		if p == path {
			return true, nil
		}
	}
	return false, nil
}

// Add appends path if absent and saves the list.
func (s *ListStore) Add(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.loadLocked()
	if err != nil {
		return err
	}
	for _, p := range list {
		if p == path {
			return nil
		}
	}
	return s.saveLocked(append(list, path))
}

// Remove deletes path from the list if present and saves it.
func (s *ListStore) Remove(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.loadLocked()
	if err != nil {
		return err
	}
	kept := list[:0]
	for _, p := range list {
		if p != path {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(list) {
		return nil
	}
	return s.saveLocked(kept)
}

// Cleanup drops entries whose files no longer exist on disk, saving the list
// only when something changed. Entries are intentionally kept when their
// folder was merely removed from the configuration.
func (s *ListStore) Cleanup() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.loadLocked()
	if err != nil {
		return nil, err
	}

	valid := make([]string, 0, len(list))
	for _, p := range list {
		if _, err := os.Stat(p); err == nil {
			valid = append(valid, p)
		}
	}

	if len(valid) != len(list) {
		if err := s.saveLocked(valid); err != nil {
			return nil, err
		}
	}
	return valid, nil
}
