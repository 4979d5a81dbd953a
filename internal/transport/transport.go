// Package transport serves media files over HTTP with conditional-request
// validators and single-range partial content semantics. It is used for both
// originals and cached derivatives; the caller resolves and authorizes the
// path before handing it over.
package transport

import (
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"localfeed/internal/logging"
	"localfeed/internal/metrics"
)

// maxAge is the client cache lifetime for media responses: 7 days.
const maxAge = 604800

// ErrRangeNotSatisfiable indicates a malformed or out-of-bounds Range header.
var ErrRangeNotSatisfiable = errors.New("range not satisfiable")

// ETagFor computes the entity tag for a file state. marker distinguishes
// derivative responses keyed on the same source (e.g. "thumb", "poster");
// pass "" for originals.
func ETagFor(path string, mtime int64, size int64, marker string) string {
	input := fmt.Sprintf("%s:%d:%d", path, mtime, size)
	if marker != "" {
		input += ":" + marker
	}
	return fmt.Sprintf(`"%x"`, md5.Sum([]byte(input)))
}

// ResolveValidators stats the file and returns its ETag and Last-Modified
// validators.
func ResolveValidators(path, marker string) (etag string, modTime time.Time, size int64, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", time.Time{}, 0, err
	}
	modTime = info.ModTime()
	size = info.Size()
	etag = ETagFor(path, modTime.Unix(), size, marker)
	return etag, modTime, size, nil
}

// notModified reports whether the request's conditional headers match the
// current validators.
func notModified(r *http.Request, etag string, modTime time.Time) bool {
	if r.Header.Get("If-None-Match") == etag {
		return true
	}
	if ims := r.Header.Get("If-Modified-Since"); ims != "" {
		if t, err := http.ParseTime(ims); err == nil && !modTime.Truncate(time.Second).After(t) {
			return true
		}
	}
	return false
}

func setCacheHeaders(w http.ResponseWriter, etag string, modTime time.Time, immutable bool) {
	cc := fmt.Sprintf("public, max-age=%d", maxAge)
	if immutable {
		cc += ", immutable"
	}
	w.Header().Set("Cache-Control", cc)
	w.Header().Set("ETag", etag)
	w.Header().Set("Last-Modified", modTime.UTC().Format(http.TimeFormat))
}

// ServeWhole serves the complete file, honoring If-None-Match and
// If-Modified-Since with a bodyless 304. immutable marks responses whose
// URL-to-content mapping can never change (content addressed by mtime+size).
func ServeWhole(w http.ResponseWriter, r *http.Request, path, mimeType string, immutable bool, marker string) {
	tag, modTime, size, err := ResolveValidators(path, marker)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	if notModified(r, tag, modTime) {
		setCacheHeaders(w, tag, modTime, immutable)
		metrics.RangeRequestsTotal.WithLabelValues("not_modified").Inc()
		w.WriteHeader(http.StatusNotModified)
		return
	}

	file, err := os.Open(path)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer closeFile(file, path)

	setCacheHeaders(w, tag, modTime, immutable)
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))

	n, err := io.Copy(w, file)
	if err != nil {
		logging.Debug("write aborted for %s after %d bytes: %v", path, n, err)
	}
	metrics.RangeRequestsTotal.WithLabelValues("full").Inc()
	metrics.BytesServedTotal.WithLabelValues("full").Add(float64(n))
}
