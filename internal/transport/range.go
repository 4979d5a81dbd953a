package transport

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"localfeed/internal/logging"
	"localfeed/internal/metrics"
)

// byteRange is a resolved inclusive byte range within a file.
type byteRange struct {
	start int64
	end   int64
}

// parseRange parses a Range header against the file size. Exactly three
// forms are supported: "start-end", "start-" and "-suffixLength". Only the
// first range of a comma-separated list is honored.
func parseRange(header string, size int64) (byteRange, error) {
	if !strings.HasPrefix(header, "bytes=") {
		return byteRange{}, ErrRangeNotSatisfiable
	}
	spec := strings.TrimSpace(header[len("bytes="):])

	if idx := strings.Index(spec, ","); idx != -1 {
		spec = strings.TrimSpace(spec[:idx])
	}

	var start, end int64
	switch {
	case strings.HasPrefix(spec, "-"):
		// Suffix range: last N bytes
		suffix, err := strconv.ParseInt(spec[1:], 10, 64)
		if err != nil {
			return byteRange{}, ErrRangeNotSatisfiable
		}
		start = size - suffix
		if start < 0 {
			start = 0
		}
		end = size - 1

	case strings.HasSuffix(spec, "-"):
		// Open-ended range: from start to EOF
		var err error
		start, err = strconv.ParseInt(spec[:len(spec)-1], 10, 64)
		if err != nil {
			return byteRange{}, ErrRangeNotSatisfiable
		}
		end = size - 1

	default:
		parts := strings.Split(spec, "-")
		if len(parts) != 2 {
			return byteRange{}, ErrRangeNotSatisfiable
		}
		var err error
		start, err = strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return byteRange{}, ErrRangeNotSatisfiable
		}
		end, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return byteRange{}, ErrRangeNotSatisfiable
		}
	}

	if start < 0 || end < start || start >= size {
		return byteRange{}, ErrRangeNotSatisfiable
	}
	if end > size-1 {
		end = size - 1
	}
	return byteRange{start: start, end: end}, nil
}

// ServeRange serves a file with byte-range support, used for video kinds.
// Range support is advertised even when no Range header is present; an
// invalid or out-of-bounds range yields a 416 carrying the total size.
func ServeRange(w http.ResponseWriter, r *http.Request, path, mimeType, marker string) {
	tag, modTime, size, err := ResolveValidators(path, marker)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Accept-Ranges", "bytes")

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" {
		file, err := os.Open(path)
		if err != nil {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		defer closeFile(file, path)

		setCacheHeaders(w, tag, modTime, false)
		w.Header().Set("Content-Type", mimeType)
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))

		n, err := io.Copy(w, file)
		if err != nil {
			logging.Debug("write aborted for %s after %d bytes: %v", path, n, err)
		}
		metrics.RangeRequestsTotal.WithLabelValues("full").Inc()
		metrics.BytesServedTotal.WithLabelValues("full").Add(float64(n))
		return
	}

	br, err := parseRange(rangeHeader, size)
	if err != nil {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		metrics.RangeRequestsTotal.WithLabelValues("unsatisfiable").Inc()
		http.Error(w, "Requested Range Not Satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return
	}

	file, err := os.Open(path)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer closeFile(file, path)

	if _, err := file.Seek(br.start, io.SeekStart); err != nil {
		http.Error(w, "Failed to read file", http.StatusInternalServerError)
		return
	}

	length := br.end - br.start + 1
	setCacheHeaders(w, tag, modTime, false)
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", br.start, br.end, size))
	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	w.WriteHeader(http.StatusPartialContent)

	n, err := io.CopyN(w, file, length)
	if err != nil {
		logging.Debug("partial write aborted for %s after %d bytes: %v", path, n, err)
	}
	metrics.RangeRequestsTotal.WithLabelValues("partial").Inc()
	metrics.BytesServedTotal.WithLabelValues("partial").Add(float64(n))
}

func closeFile(f *os.File, path string) {
	if err := f.Close(); err != nil {
		logging.Warn("failed to close %s: %v", path, err)
	}
}
