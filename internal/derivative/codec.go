package derivative

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"

	"localfeed/internal/logging"

	"github.com/disintegration/imaging"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ImageCodec decodes a source image with its stored orientation already
// applied. Which codec is in use is a configuration decision made at
// startup, never a runtime fallback.
type ImageCodec interface {
	// Load decodes the image at path. maxSize is a hint for codecs that
	// can shrink during decode; the returned image may still be larger.
	Load(path string, maxSize int) (image.Image, error)
	// Name identifies the codec in logs.
	Name() string
}

// PosterCodec extracts a single poster frame from a video into targetPath.
// The invocation must respect ctx cancellation and deadlines.
type PosterCodec interface {
	ExtractPoster(ctx context.Context, videoPath, targetPath string, maxSize, quality int) error
}

// imagingCodec is the default pure-Go image backend.
type imagingCodec struct{}

// NewImagingCodec returns the imaging-library-backed codec.
func NewImagingCodec() ImageCodec {
	return imagingCodec{}
}

func (imagingCodec) Name() string { return "imaging" }

func (imagingCodec) Load(path string, _ int) (image.Image, error) {
	// Orientation metadata must be applied before any other transform.
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}
	logging.Debug("imaging.Open failed for %s: %v, trying registered decoders", path, err)

	file, openErr := os.Open(path)
	if openErr != nil {
		return nil, openErr
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close %s: %v", path, err)
		}
	}()

	img, format, decodeErr := image.Decode(file)
	if decodeErr != nil {
		return nil, fmt.Errorf("decode failed: %w (imaging: %v)", decodeErr, err)
	}
	logging.Debug("decoded %s as %s", path, format)
	return img, nil
}

// ffmpegCodec extracts poster frames by invoking the ffmpeg binary.
type ffmpegCodec struct{}

// NewFFmpegPosterCodec returns the ffmpeg-backed poster codec.
func NewFFmpegPosterCodec() PosterCodec {
	return ffmpegCodec{}
}

func (ffmpegCodec) ExtractPoster(ctx context.Context, videoPath, targetPath string, maxSize, quality int) error {
	// Seek slightly past zero to avoid black first frames. The q:v scale
	// is inverted relative to percentage quality (1 best, 31 worst).
	qv := 31 - (quality * 30 / 100)
	if qv < 1 {
		qv = 1
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-ss", "00:00:00.001",
		"-i", videoPath,
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale=-2:%d:flags=lanczos", maxSize),
		"-q:v", fmt.Sprintf("%d", qv),
		"-y",
		targetPath,
	)

	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: poster extraction timed out for %s", ErrGenerationFailed, videoPath)
		}
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return fmt.Errorf("%w: ffmpeg not available: %v", ErrGenerationFailed, err)
		}
		msg := string(out)
		if len(msg) > 500 {
			msg = msg[:500]
		}
		return fmt.Errorf("%w: ffmpeg failed for %s: %v: %s", ErrGenerationFailed, videoPath, err, msg)
	}

	if _, statErr := os.Stat(targetPath); statErr != nil {
		return fmt.Errorf("%w: ffmpeg produced no output for %s", ErrGenerationFailed, videoPath)
	}
	return nil
}
