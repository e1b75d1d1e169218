package archive

import (
	"path/filepath"
	"testing"
)

func TestHiddenEntry(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"model.stl", false},
		{".DS_Store", true},
		{"sub/.hidden/file.stl", true},
		{"__MACOSX/model.stl", true},
		{"sub/__MACOSX/x", true},
		{"__macosx/model.stl", false}, // literal match is case-sensitive
		{"dots.in.name.stl", false},
		{"win\\.hidden\\f", true},
		// Navigation segments are not hidden names; traversal entries
		// must fall through to the containment check and be counted
		// as unsafe, not silently dropped as hidden.
		{"../evil.stl", false},
		{"sub/../../evil.stl", false},
		{"./model.stl", false},
	}

	for _, tt := range tests {
		if got := hiddenEntry(tt.path); got != tt.want {
			t.Errorf("hiddenEntry(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestContainedPath(t *testing.T) {
	root := filepath.Join(t.TempDir(), "extract")

	tests := []struct {
		entry string
		safe  bool
	}{
		{"model.stl", true},
		{"sub/dir/model.stl", true},
		{"../outside.txt", false},
		{"sub/../../outside.txt", false},
		{"/etc/passwd", true}, // joined under root, leading slash neutralized
		{".", false},
		{"", false},
	}

	for _, tt := range tests {
		dest, ok := containedPath(root, tt.entry)
		if ok != tt.safe {
			t.Errorf("containedPath(%q) safe = %v, want %v (dest=%q)", tt.entry, ok, tt.safe, dest)
		}
	}
}
