package handlers

import (
	"net/http"
	"os"

	"localfeed/internal/derivative"
	"localfeed/internal/logging"
	"localfeed/internal/mediatypes"
	"localfeed/internal/transport"
)

// ServeImage serves an original media file. Videos get range-capable
// responses; images get whole-file responses with conditional revalidation.
func (h *Handlers) ServeImage(w http.ResponseWriter, r *http.Request) {
	path, ok := h.validatePath(w, r.URL.Query().Get("path"))
	if !ok {
		return
	}
	if !fileExists(path) {
		http.Error(w, "Image not found", http.StatusNotFound)
		return
	}

	ext := extOf(path)
	mimeType := mediatypes.GetMimeType(ext)

	if mediatypes.GetKind(ext) == mediatypes.KindVideo {
		transport.ServeRange(w, r, path, mimeType, "")
		return
	}
	transport.ServeWhole(w, r, path, mimeType, true, "")
}

// ServeThumbnail serves the cached thumbnail for an image, generating it on
// first request. Sources that cannot be thumbnailed, and any generation
// failure, transparently fall back to the original.
func (h *Handlers) ServeThumbnail(w http.ResponseWriter, r *http.Request) {
	if !h.config.GetOptimizations().ThumbnailCache {
		logging.Debug("thumbnail cache disabled, serving original")
		h.ServeImage(w, r)
		return
	}

	path, ok := h.validatePath(w, r.URL.Query().Get("path"))
	if !ok {
		return
	}
	if !fileExists(path) {
		http.Error(w, "Image not found", http.StatusNotFound)
		return
	}

	// Animated images must keep their animation and videos are posters'
	// business, so both bypass the thumbnail path entirely.
	ext := extOf(path)
	if mediatypes.AnimatedExtensions[ext] || mediatypes.GetKind(ext) == mediatypes.KindVideo {
		logging.Debug("skipping %s file, serving original", ext)
		h.ServeImage(w, r)
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		http.Error(w, "Could not read file stats", http.StatusInternalServerError)
		return
	}

	cachePath, err := h.derivatives.GetOrCreateThumbnail(path, info.ModTime().Unix(), info.Size())
	if err != nil {
		logging.Warn("thumbnail generation failed for %s, serving original: %v", path, err)
		h.ServeImage(w, r)
		return
	}

	transport.ServeWhole(w, r, cachePath, "image/jpeg", true, derivative.KindThumbnail)
}

// ServeVideoPoster serves the cached first-frame poster for a video. Unlike
// thumbnails there is no fallback format, so a disabled flag or a failed
// extraction surfaces as an error for the client to handle.
func (h *Handlers) ServeVideoPoster(w http.ResponseWriter, r *http.Request) {
	if !h.config.GetOptimizations().VideoPosterCache {
		http.Error(w, "Video poster optimization disabled", http.StatusForbidden)
		return
	}

	path, ok := h.validatePath(w, r.URL.Query().Get("path"))
	if !ok {
		return
	}
	if !fileExists(path) {
		http.Error(w, "Video not found", http.StatusNotFound)
		return
	}

	if mediatypes.GetKind(extOf(path)) != mediatypes.KindVideo {
		http.Error(w, "Not a video file", http.StatusBadRequest)
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		http.Error(w, "Could not read file stats", http.StatusInternalServerError)
		return
	}

	cachePath, err := h.derivatives.GetOrCreatePoster(path, info.ModTime().Unix(), info.Size())
	if err != nil {
		logging.Error("poster extraction failed for %s: %v", path, err)
		http.Error(w, "Could not extract video poster", http.StatusInternalServerError)
		return
	}

	transport.ServeWhole(w, r, cachePath, "image/jpeg", true, derivative.KindPoster)
}
