package archive

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// macOS resource-fork directory written by Finder's zip tool.
// Matched case-sensitively against the literal segment.
const macMetadataDir = "__MACOSX"

// hiddenEntry reports whether any path segment of the archive-relative
// entry path is hidden (starts with ".") or is the macOS metadata dir.
// Entry paths use either separator depending on the producing tool.
func hiddenEntry(entryPath string) bool {
	normalized := strings.ReplaceAll(entryPath, "\\", "/")
	for seg := range strings.SplitSeq(normalized, "/") {
		// "." and ".." are path navigation, not hidden names; the
		// containment check decides their fate.
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		if strings.HasPrefix(seg, ".") || seg == macMetadataDir {
			return true
		}
	}
	return false
}

// containedPath resolves destRoot/entryPath and checks it stays inside
// destRoot. Returns the absolute destination path and whether it is safe
// to write. This is the single defense against ../-laden and absolute
// entry names for formats without link metadata.
func containedPath(destRoot, entryPath string) (string, bool) {
	normalized := strings.ReplaceAll(entryPath, "\\", "/")
	dest := filepath.Join(destRoot, filepath.FromSlash(normalized))
	dest = filepath.Clean(dest)

	if dest == destRoot {
		// Joining resolved back to the root itself; nothing to write there.
		return dest, false
	}
	if !strings.HasPrefix(dest, destRoot+string(os.PathSeparator)) {
		return dest, false
	}
	return dest, true
}

// resolveRoot normalizes destRoot to an absolute, clean path so prefix
// checks in containedPath are meaningful.
func resolveRoot(format, destRoot string) (string, error) {
	abs, err := filepath.Abs(destRoot)
	if err != nil {
		return "", &DecodeError{Kind: ErrTraversalRejected, Format: format, Path: destRoot, Err: err}
	}
	return filepath.Clean(abs), nil
}

// writeEntry streams r to fsPath, creating parent directories as needed.
// fsPath must already have passed the containment check.
func writeEntry(fsPath string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(fsPath), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(fsPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
