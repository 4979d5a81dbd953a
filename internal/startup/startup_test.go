package startup

import (
	"testing"
	"time"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
	if info.OS == "" || info.Arch == "" {
		t.Errorf("Expected OS/Arch to be set, got %s/%s", info.OS, info.Arch)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_SET_VAR", "custom")

	if got := getEnv("TEST_SET_VAR", "default"); got != "custom" {
		t.Errorf("getEnv = %q, want custom", got)
	}
	if got := getEnv("TEST_UNSET_VAR_XYZ", "default"); got != "default" {
		t.Errorf("getEnv = %q, want default", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("TEST_BOOL_TRUE", "true")
	t.Setenv("TEST_BOOL_GARBAGE", "maybe")

	if !getEnvBool("TEST_BOOL_TRUE", false) {
		t.Error("getEnvBool(true) = false")
	}
	if getEnvBool("TEST_BOOL_GARBAGE", false) {
		t.Error("invalid value did not fall back to default")
	}
	if !getEnvBool("TEST_BOOL_UNSET_XYZ", true) {
		t.Error("unset value did not fall back to default")
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "150")
	t.Setenv("TEST_INT_GARBAGE", "lots")

	if got := getEnvInt("TEST_INT", 75); got != 150 {
		t.Errorf("getEnvInt = %d, want 150", got)
	}
	if got := getEnvInt("TEST_INT_GARBAGE", 75); got != 75 {
		t.Errorf("invalid value = %d, want default 75", got)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("DATA_DIR", dataDir)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if config.Port != "8080" {
		t.Errorf("Port = %s, want 8080", config.Port)
	}
	if config.CacheTTL != 30*time.Second {
		t.Errorf("CacheTTL = %v, want 30s", config.CacheTTL)
	}
	if config.MaxVideoSize != 75*1024*1024 {
		t.Errorf("MaxVideoSize = %d, want 75MB", config.MaxVideoSize)
	}
	if config.ThumbnailMaxSize != 1920 || config.ThumbnailQuality != 85 {
		t.Errorf("thumbnail settings = %d/%d, want 1920/85",
			config.ThumbnailMaxSize, config.ThumbnailQuality)
	}
	if config.ImageBackend != BackendImaging {
		t.Errorf("ImageBackend = %s, want imaging", config.ImageBackend)
	}
	if !config.WatchEnabled || !config.MetricsEnabled {
		t.Error("watcher and metrics should default to enabled")
	}
}

func TestLoadConfigDerivedPaths(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("DATA_DIR", dataDir)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	wantSuffixes := map[string]string{
		config.ConfigPath:    "/config.json",
		config.FavoritesPath: "/favorites.json",
		config.TrashPath:     "/trash.json",
		config.ThumbnailDir:  "/.thumbnails",
	}
	for path, suffix := range wantSuffixes {
		if path != dataDir+suffix {
			t.Errorf("derived path = %s, want %s%s", path, dataDir, suffix)
		}
	}
}

func TestLoadConfigInvalidValues(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("DATA_DIR", dataDir)
	t.Setenv("CACHE_TTL", "soon")
	t.Setenv("IMAGE_BACKEND", "imagemagick")
	t.Setenv("THUMBNAIL_QUALITY", "400")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if config.CacheTTL != 30*time.Second {
		t.Errorf("invalid CACHE_TTL not defaulted: %v", config.CacheTTL)
	}
	if config.ImageBackend != BackendImaging {
		t.Errorf("invalid IMAGE_BACKEND not defaulted: %s", config.ImageBackend)
	}
	if config.ThumbnailQuality != 85 {
		t.Errorf("out-of-range THUMBNAIL_QUALITY not defaulted: %d", config.ThumbnailQuality)
	}
}
