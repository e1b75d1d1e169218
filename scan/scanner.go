// Package scan walks a model's source directory and produces its
// manifest: every regular file classified by extension and identified by
// a streaming SHA-256 content hash.
//
// The scanner never mutates the source tree, so it runs equally on a
// decoder's extraction output and on a folder-import source directory.
package scan

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/printvault/printvault/iox"
	"github.com/printvault/printvault/types"
)

// Scan recursively walks rootDir and returns the manifest of all regular
// files. Hidden path segments are skipped, mirroring the decoder's entry
// filter for trees that never passed through a decoder. Sibling order
// does not affect the result beyond entry ordering.
func Scan(ctx context.Context, rootDir string) (*types.Manifest, error) {
	root, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}

	manifest := &types.Manifest{}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if path != root && isHiddenName(name) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if isHiddenName(name) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		size, hash, err := hashFile(path)
		if err != nil {
			return err
		}

		fileType, mimeType := Classify(name)
		manifest.Entries = append(manifest.Entries, types.ManifestEntry{
			Filename:     name,
			RelativePath: filepath.ToSlash(rel),
			FileType:     fileType,
			MimeType:     mimeType,
			SizeBytes:    size,
			ContentHash:  hash,
		})
		manifest.TotalSizeBytes += size
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return manifest, nil
}

// isHiddenName reports whether a single path component is hidden.
func isHiddenName(name string) bool {
	return strings.HasPrefix(name, ".")
}

// hashFile streams the file once, computing byte length and SHA-256
// together so large meshes are never held in memory.
func hashFile(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer iox.DiscardClose(f)

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return 0, "", err
	}
	return size, hex.EncodeToString(h.Sum(nil)), nil
}
