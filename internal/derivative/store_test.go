package derivative

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// writePNG writes a w x h test image, optionally with a transparent region.
func writePNG(t *testing.T, path string, w, h int, transparent bool) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if transparent && x < w/2 {
				img.Set(x, y, color.NRGBA{0, 0, 0, 0})
			} else {
				img.Set(x, y, color.NRGBA{200, 30, 30, 255})
			}
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func decodeJPEG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("decoding %s: %v", path, err)
	}
	return img
}

func newTestStore(t *testing.T, maxSize int) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "cache"), NewImagingCodec(), nil, maxSize, 85)
	if err := s.EnsureReady(); err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}
	return s
}

func TestKeyForDeterminism(t *testing.T) {
	t.Parallel()

	base := KeyFor("/data/a.jpg", 1000, 2000, KindThumbnail)

	if again := KeyFor("/data/a.jpg", 1000, 2000, KindThumbnail); again != base {
		t.Errorf("identical inputs produced different keys: %s vs %s", base, again)
	}

	variants := map[string]string{
		"path":  KeyFor("/data/b.jpg", 1000, 2000, KindThumbnail),
		"mtime": KeyFor("/data/a.jpg", 1001, 2000, KindThumbnail),
		"size":  KeyFor("/data/a.jpg", 1000, 2001, KindThumbnail),
		"kind":  KeyFor("/data/a.jpg", 1000, 2000, KindPoster),
	}
	for field, key := range variants {
		if key == base {
			t.Errorf("changing %s did not change the key", field)
		}
	}
}

func TestEnsureReadyCreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "cache")
	s := NewStore(dir, NewImagingCodec(), nil, 1920, 85)
	if err := s.EnsureReady(); err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("cache directory not created: %v", err)
	}
}

func TestGetOrCreateThumbnail(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, 1920)
	src := filepath.Join(t.TempDir(), "photo.png")
	writePNG(t, src, 40, 20, false)

	info, err := os.Stat(src)
	if err != nil {
		t.Fatal(err)
	}

	cachePath, err := s.GetOrCreateThumbnail(src, info.ModTime().Unix(), info.Size())
	if err != nil {
		t.Fatalf("GetOrCreateThumbnail: %v", err)
	}
	if _, err := os.Stat(cachePath); err != nil {
		t.Fatalf("cache entry missing: %v", err)
	}

	// Small source is not upscaled
	thumb := decodeJPEG(t, cachePath)
	if thumb.Bounds().Dx() != 40 || thumb.Bounds().Dy() != 20 {
		t.Errorf("small image resized: got %v", thumb.Bounds())
	}

	// Second request is a cache hit and returns the same path even if the
	// source disappears.
	if err := os.Remove(src); err != nil {
		t.Fatal(err)
	}
	again, err := s.GetOrCreateThumbnail(src, info.ModTime().Unix(), info.Size())
	if err != nil {
		t.Fatalf("cached GetOrCreateThumbnail: %v", err)
	}
	if again != cachePath {
		t.Errorf("cache hit returned %s, want %s", again, cachePath)
	}
}

func TestThumbnailResizePreservesAspectRatio(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, 100)
	src := filepath.Join(t.TempDir(), "wide.png")
	writePNG(t, src, 400, 200, false)

	info, err := os.Stat(src)
	if err != nil {
		t.Fatal(err)
	}
	cachePath, err := s.GetOrCreateThumbnail(src, info.ModTime().Unix(), info.Size())
	if err != nil {
		t.Fatalf("GetOrCreateThumbnail: %v", err)
	}

	thumb := decodeJPEG(t, cachePath)
	if thumb.Bounds().Dx() != 100 || thumb.Bounds().Dy() != 50 {
		t.Errorf("resized dimensions = %v, want 100x50", thumb.Bounds())
	}
}

func TestThumbnailFlattensTransparencyOntoWhite(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, 1920)
	src := filepath.Join(t.TempDir(), "alpha.png")
	writePNG(t, src, 20, 20, true)

	info, err := os.Stat(src)
	if err != nil {
		t.Fatal(err)
	}
	cachePath, err := s.GetOrCreateThumbnail(src, info.ModTime().Unix(), info.Size())
	if err != nil {
		t.Fatalf("GetOrCreateThumbnail: %v", err)
	}

	thumb := decodeJPEG(t, cachePath)
	// The transparent left half must come out near-white, not black.
	r, g, b, _ := thumb.At(2, 10).RGBA()
	if r>>8 < 200 || g>>8 < 200 || b>>8 < 200 {
		t.Errorf("transparent region not flattened onto white: got rgb(%d,%d,%d)",
			r>>8, g>>8, b>>8)
	}
}

func TestThumbnailDecodeFailure(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, 1920)
	src := filepath.Join(t.TempDir(), "broken.jpg")
	if err := os.WriteFile(src, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := s.GetOrCreateThumbnail(src, 1000, 12)
	if !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("error = %v, want ErrGenerationFailed", err)
	}
}

// stubPosterCodec writes a fixed file or fails, for exercising the poster
// path without ffmpeg.
type stubPosterCodec struct {
	fail  bool
	calls int
}

func (c *stubPosterCodec) ExtractPoster(_ context.Context, _, targetPath string, _, _ int) error {
	c.calls++
	if c.fail {
		return fmt.Errorf("%w: stub failure", ErrGenerationFailed)
	}
	return os.WriteFile(targetPath, []byte("poster"), 0644)
}

func TestGetOrCreatePoster(t *testing.T) {
	t.Parallel()

	stub := &stubPosterCodec{}
	s := NewStore(filepath.Join(t.TempDir(), "cache"), NewImagingCodec(), stub, 1920, 85)
	if err := s.EnsureReady(); err != nil {
		t.Fatal(err)
	}

	cachePath, err := s.GetOrCreatePoster("/videos/clip.mp4", 1000, 5000)
	if err != nil {
		t.Fatalf("GetOrCreatePoster: %v", err)
	}
	if _, err := os.Stat(cachePath); err != nil {
		t.Fatalf("poster entry missing: %v", err)
	}
	if stub.calls != 1 {
		t.Errorf("codec invoked %d times, want 1", stub.calls)
	}

	// Cache hit skips the codec entirely
	if _, err := s.GetOrCreatePoster("/videos/clip.mp4", 1000, 5000); err != nil {
		t.Fatalf("cached GetOrCreatePoster: %v", err)
	}
	if stub.calls != 1 {
		t.Errorf("codec invoked %d times after cache hit, want 1", stub.calls)
	}
}

func TestPosterFailure(t *testing.T) {
	t.Parallel()

	stub := &stubPosterCodec{fail: true}
	s := NewStore(filepath.Join(t.TempDir(), "cache"), NewImagingCodec(), stub, 1920, 85)
	if err := s.EnsureReady(); err != nil {
		t.Fatal(err)
	}

	_, err := s.GetOrCreatePoster("/videos/clip.mp4", 1000, 5000)
	if !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("error = %v, want ErrGenerationFailed", err)
	}
}

func TestPosterWithoutCodec(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, 1920)
	_, err := s.GetOrCreatePoster("/videos/clip.mp4", 1000, 5000)
	if !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("error = %v, want ErrGenerationFailed", err)
	}
}

func TestStatsAndClear(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, 1920)
	srcDir := t.TempDir()
	for i := 0; i < 3; i++ {
		src := filepath.Join(srcDir, fmt.Sprintf("img%d.png", i))
		writePNG(t, src, 10, 10, false)
		info, err := os.Stat(src)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.GetOrCreateThumbnail(src, info.ModTime().Unix(), info.Size()); err != nil {
			t.Fatalf("GetOrCreateThumbnail: %v", err)
		}
	}

	files, bytes, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if files != 3 || bytes <= 0 {
		t.Errorf("Stats = %d files, %d bytes", files, bytes)
	}

	removed, errs := s.Clear()
	if len(errs) != 0 {
		t.Fatalf("Clear errors: %v", errs)
	}
	if removed != 3 {
		t.Errorf("Clear removed %d, want 3", removed)
	}

	files, _, err = s.Stats()
	if err != nil || files != 0 {
		t.Errorf("after Clear, Stats = %d files, err %v", files, err)
	}
}
