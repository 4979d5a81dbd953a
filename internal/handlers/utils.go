package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"localfeed/internal/logging"
	"localfeed/internal/mediatypes"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Encoding errors are logged since we typically cannot recover from them in
// an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		logging.Error("failed to encode JSON error response: %v", err)
	}
}

// formatItemURL renders a media path as the URL the feed client fetches.
// When the thumbnail cache is enabled items point at the derivative endpoint,
// which itself falls back to the original for kinds it cannot serve.
func formatItemURL(path string, thumbnails bool) string {
	if thumbnails {
		return "/thumbnail?path=" + url.QueryEscape(path)
	}
	return "/image?path=" + url.QueryEscape(path)
}

// extractPathFromURL undoes formatItemURL so clients may submit either a raw
// path or the URL form they received from a listing.
func extractPathFromURL(s string) string {
	for _, prefix := range []string{"/thumbnail?path=", "/image?path="} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimPrefix(s, prefix)
			break
		}
	}
	if decoded, err := url.QueryUnescape(s); err == nil {
		return decoded
	}
	return s
}

// sortByModTime orders paths by their file modification time, newest first by
// default. Paths whose files cannot be statted sort as the epoch, so vanished
// entries sink to the old end rather than failing the listing.
func sortByModTime(paths []string, order mediatypes.SortOrder) {
	mtimes := make(map[string]time.Time, len(paths))
	for _, path := range paths {
		if info, err := os.Stat(path); err == nil {
			mtimes[path] = info.ModTime()
		}
	}
	sort.SliceStable(paths, func(i, j int) bool {
		ti, tj := mtimes[paths[i]], mtimes[paths[j]]
		if order == mediatypes.SortOldest {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})
}

// formatItemURLs renders a path list the same way the index listings do.
func (h *Handlers) formatItemURLs(paths []string) []string {
	thumbnails := h.config.GetOptimizations().ThumbnailCache
	urls := make([]string, len(paths))
	for i, path := range paths {
		urls[i] = formatItemURL(path, thumbnails)
	}
	return urls
}

// decodeBody decodes a JSON request body into v.
func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// pathRequest is the body shape shared by the list-store mutation endpoints.
type pathRequest struct {
	Path string `json:"path"`
}
