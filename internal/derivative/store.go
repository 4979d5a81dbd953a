// Package derivative maintains the on-disk cache of generated thumbnails and
// video poster frames. Cache entries are addressed by a fingerprint of the
// source file's identity and modification state; an unchanged source always
// resolves to the same entry, and entries are written once and never mutated.
package derivative

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"
	"time"

	"localfeed/internal/logging"
	"localfeed/internal/metrics"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/singleflight"
)

// cacheVersion invalidates previously cached derivatives when the
// generation pipeline changes. Version 2 added orientation handling.
const cacheVersion = 2

// Derivative kinds, part of the cache fingerprint.
const (
	KindThumbnail = "thumb"
	KindPoster    = "poster"
)

// posterTimeout bounds the external frame extraction wall-clock time.
const posterTimeout = 10 * time.Second

// ErrGenerationFailed indicates a derivative could not be produced. For
// thumbnails callers fall back to serving the original; posters have no
// fallback format and surface the failure.
var ErrGenerationFailed = errors.New("derivative generation failed")

// Store is the fingerprint-addressed derivative cache.
type Store struct {
	cacheDir string
	image    ImageCodec
	poster   PosterCodec
	maxSize  int
	quality  int

	// group collapses concurrent misses on the same key into a single
	// generation; the losers share the winner's result.
	group singleflight.Group
}

// NewStore creates a derivative store writing into cacheDir. image may not
// be nil; poster may be nil when no frame extractor is available, in which
// case poster requests fail with ErrGenerationFailed.
func NewStore(cacheDir string, img ImageCodec, poster PosterCodec, maxSize, quality int) *Store {
	return &Store{
		cacheDir: cacheDir,
		image:    img,
		poster:   poster,
		maxSize:  maxSize,
		quality:  quality,
	}
}

// EnsureReady creates the cache directory if it does not exist.
func (s *Store) EnsureReady() error {
	if err := os.MkdirAll(s.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache dir %s: %w", s.cacheDir, err)
	}
	return nil
}

// KeyFor computes the deterministic fingerprint for a derivative of the
// given source state. Any change to path, mtime, size, cache version, or
// kind yields a different key.
func KeyFor(sourcePath string, mtime int64, size int64, kind string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s:%d:%d:v%d:%s", sourcePath, mtime, size, cacheVersion, kind)))
	return fmt.Sprintf("%x", sum)
}

// CachePath returns the on-disk location for a derivative key.
func (s *Store) CachePath(key string) string {
	return filepath.Join(s.cacheDir, key+".jpg")
}

// GetOrCreateThumbnail returns the cache path of the thumbnail for the given
// source state, generating it on first request. Animated and video sources
// must not be routed here; callers check the media kind first.
func (s *Store) GetOrCreateThumbnail(sourcePath string, mtime int64, size int64) (string, error) {
	key := KeyFor(sourcePath, mtime, size, KindThumbnail)
	cachePath := s.CachePath(key)

	if _, err := os.Stat(cachePath); err == nil {
		metrics.DerivativeCacheHits.WithLabelValues("thumbnail").Inc()
		logging.Debug("thumbnail cache hit: %s", sourcePath)
		return cachePath, nil
	}
	metrics.DerivativeCacheMisses.WithLabelValues("thumbnail").Inc()

	_, err, _ := s.group.Do(key, func() (interface{}, error) {
		// Re-check inside the flight: a racing request may have finished.
		if _, err := os.Stat(cachePath); err == nil {
			return nil, nil
		}
		return nil, s.generateThumbnail(sourcePath, cachePath)
	})
	if err != nil {
		return "", err
	}
	return cachePath, nil
}

// generateThumbnail decodes, orients, flattens, resizes, and encodes the
// source into cachePath.
func (s *Store) generateThumbnail(sourcePath, cachePath string) error {
	start := time.Now()
	logging.Debug("generating thumbnail for %s via %s", sourcePath, s.image.Name())

	img, err := s.image.Load(sourcePath, s.maxSize)
	if err != nil {
		metrics.DerivativeFailures.WithLabelValues("thumbnail", "decode").Inc()
		return fmt.Errorf("%w: decode %s: %v", ErrGenerationFailed, sourcePath, err)
	}

	img = flattenOnWhite(img)

	// Only shrink when a dimension exceeds the maximum; small images are
	// never upscaled.
	bounds := img.Bounds()
	if bounds.Dx() > s.maxSize || bounds.Dy() > s.maxSize {
		img = imaging.Fit(img, s.maxSize, s.maxSize, imaging.Lanczos)
	}

	if err := s.writeJPEGAtomic(cachePath, img); err != nil {
		metrics.DerivativeFailures.WithLabelValues("thumbnail", "encode").Inc()
		return fmt.Errorf("%w: encode %s: %v", ErrGenerationFailed, sourcePath, err)
	}

	metrics.DerivativeGenerationDuration.WithLabelValues("thumbnail").Observe(time.Since(start).Seconds())
	logging.Debug("thumbnail cached: %s (%v)", cachePath, time.Since(start))
	return nil
}

// GetOrCreatePoster returns the cache path of the poster frame for the given
// video state, extracting it on first request under a hard timeout.
func (s *Store) GetOrCreatePoster(videoPath string, mtime int64, size int64) (string, error) {
	key := KeyFor(videoPath, mtime, size, KindPoster)
	cachePath := s.CachePath(key)

	if _, err := os.Stat(cachePath); err == nil {
		metrics.DerivativeCacheHits.WithLabelValues("poster").Inc()
		return cachePath, nil
	}
	metrics.DerivativeCacheMisses.WithLabelValues("poster").Inc()

	_, err, _ := s.group.Do(key, func() (interface{}, error) {
		if _, err := os.Stat(cachePath); err == nil {
			return nil, nil
		}
		return nil, s.generatePoster(videoPath, cachePath)
	})
	if err != nil {
		return "", err
	}
	return cachePath, nil
}

func (s *Store) generatePoster(videoPath, cachePath string) error {
	if s.poster == nil {
		metrics.DerivativeFailures.WithLabelValues("poster", "exec").Inc()
		return fmt.Errorf("%w: no poster codec configured", ErrGenerationFailed)
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), posterTimeout)
	defer cancel()

	// ffmpeg writes straight to a temp path; rename keeps the entry
	// invisible until complete.
	tmpPath := cachePath + ".tmp"
	err := s.poster.ExtractPoster(ctx, videoPath, tmpPath, s.maxSize, s.quality)
	if err != nil {
		_ = os.Remove(tmpPath)
		reason := "exec"
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			reason = "timeout"
		}
		metrics.DerivativeFailures.WithLabelValues("poster", reason).Inc()
		return err
	}
	if err := os.Rename(tmpPath, cachePath); err != nil {
		_ = os.Remove(tmpPath)
		metrics.DerivativeFailures.WithLabelValues("poster", "exec").Inc()
		return fmt.Errorf("%w: install poster %s: %v", ErrGenerationFailed, cachePath, err)
	}

	metrics.DerivativeGenerationDuration.WithLabelValues("poster").Observe(time.Since(start).Seconds())
	logging.Debug("poster cached: %s (%v)", cachePath, time.Since(start))
	return nil
}

// writeJPEGAtomic encodes img to path via a temp file and rename so readers
// never observe a partial entry.
func (s *Store) writeJPEGAtomic(path string, img image.Image) error {
	tmp, err := os.CreateTemp(s.cacheDir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if err := jpeg.Encode(tmp, img, &jpeg.Options{Quality: s.quality}); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// flattenOnWhite composites img over a white background, discarding any
// transparency.
func flattenOnWhite(img image.Image) image.Image {
	bounds := img.Bounds()
	flat := image.NewRGBA(bounds)
	draw.Draw(flat, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, bounds, img, bounds.Min, draw.Over)
	return flat
}

// Stats reports the total size and file count of the derivative cache.
func (s *Store) Stats() (files int, bytes int64, err error) {
	entries, err := os.ReadDir(s.cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, nil
		}
		return 0, 0, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files++
		bytes += info.Size()
	}
	return files, bytes, nil
}

// Clear deletes every cached derivative, returning the number removed and
// any per-file errors. The media index is never touched.
func (s *Store) Clear() (removed int, errs []error) {
	entries, err := os.ReadDir(s.cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, []error{err}
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(s.cacheDir, entry.Name())
		if err := os.Remove(path); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", entry.Name(), err))
			continue
		}
		removed++
	}
	return removed, errs
}
