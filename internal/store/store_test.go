package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestConfigStoreRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	s := NewConfigStore(path)

	// Missing file loads as empty config
	cfg, err := s.Load()
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if len(cfg.Folders) != 0 {
		t.Errorf("expected empty folders, got %v", cfg.Folders)
	}

	cfg.Folders = []string{"/data/photos", "/data/videos"}
	if err := s.Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(loaded.Folders, cfg.Folders) {
		t.Errorf("Folders = %v, want %v", loaded.Folders, cfg.Folders)
	}
}

func TestConfigStoreSaveFoldersPreservesOptimizations(t *testing.T) {
	t.Parallel()

	s := NewConfigStore(filepath.Join(t.TempDir(), "config.json"))

	opts := Optimizations{ThumbnailCache: true, AutoAdvanceDelay: 5}
	if err := s.SaveOptimizations(opts); err != nil {
		t.Fatalf("SaveOptimizations: %v", err)
	}
	if err := s.SaveFolders([]string{"/a"}); err != nil {
		t.Fatalf("SaveFolders: %v", err)
	}

	got := s.GetOptimizations()
	if !got.ThumbnailCache || got.AutoAdvanceDelay != 5 {
		t.Errorf("optimizations lost across folder save: %+v", got)
	}
	if folders := s.Folders(); !reflect.DeepEqual(folders, []string{"/a"}) {
		t.Errorf("Folders = %v", folders)
	}
}

func TestOptimizationDefaults(t *testing.T) {
	t.Parallel()

	s := NewConfigStore(filepath.Join(t.TempDir(), "config.json"))

	opts := s.GetOptimizations()
	if opts.ThumbnailCache || opts.VideoPosterCache {
		t.Error("derivative caches should default to disabled")
	}
	if opts.AutoAdvanceDelay != 3 {
		t.Errorf("AutoAdvanceDelay = %d, want 3", opts.AutoAdvanceDelay)
	}
}

func TestListStoreRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewListStore(filepath.Join(t.TempDir(), "favorites.json"), "favorites")

	list, err := s.Load()
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list, got %v", list)
	}

	if err := s.Add("/data/a.jpg"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add("/data/a.jpg"); err != nil {
		t.Fatalf("duplicate Add: %v", err)
	}
	if err := s.Add("/data/b.jpg"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	list, err = s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(list, []string{"/data/a.jpg", "/data/b.jpg"}) {
		t.Errorf("list = %v", list)
	}

	ok, err := s.Contains("/data/a.jpg")
	if err != nil || !ok {
		t.Errorf("Contains(a.jpg) = %v, %v", ok, err)
	}

	if err := s.Remove("/data/a.jpg"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	list, _ = s.Load()
	if !reflect.DeepEqual(list, []string{"/data/b.jpg"}) {
		t.Errorf("after remove, list = %v", list)
	}
}

func TestListStoreCleanup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	existing := filepath.Join(dir, "keep.jpg")
	if err := os.WriteFile(existing, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewListStore(filepath.Join(dir, "trash.json"), "trash")
	if err := s.Save([]string{existing, filepath.Join(dir, "gone.jpg")}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	valid, err := s.Cleanup()
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if !reflect.DeepEqual(valid, []string{existing}) {
		t.Errorf("Cleanup = %v, want [%s]", valid, existing)
	}

	// The cleaned list was persisted
	list, _ := s.Load()
	if !reflect.DeepEqual(list, []string{existing}) {
		t.Errorf("persisted list = %v", list)
	}
}
