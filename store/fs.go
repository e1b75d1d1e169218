package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/printvault/printvault/iox"
)

// FSStore keeps objects under a local root directory. Keys map 1:1 to
// paths under the root, so ResolvePath supports the hardlink and move
// copy strategies without duplicating bytes.
type FSStore struct {
	root string
}

// NewFSStore creates a filesystem store rooted at dir, creating it if
// needed.
func NewFSStore(dir string) (*FSStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, WrapWriteError(err, abs)
	}
	return &FSStore{root: abs}, nil
}

// Root returns the absolute storage root directory.
func (s *FSStore) Root() string { return s.root }

// Put implements Store. The key is containment-checked against the root
// before any write, same discipline as archive extraction.
func (s *FSStore) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	path, err := s.ResolvePath(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, WrapWriteError(err, key)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, WrapWriteError(err, key)
	}
	n, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		return n, WrapWriteError(err, key)
	}
	if err := f.Close(); err != nil {
		return n, WrapWriteError(err, key)
	}
	return n, nil
}

// Open implements Store.
func (s *FSStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.ResolvePath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, WrapReadError(err, key)
	}
	return f, nil
}

// Delete implements Store. Missing objects are not an error.
func (s *FSStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.ResolvePath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return NewStorageError(classifyError(err), "delete", key, err)
	}
	return nil
}

// ResolvePath implements Store. Rejects keys that resolve outside the
// storage root.
func (s *FSStore) ResolvePath(key string) (string, error) {
	path := filepath.Clean(filepath.Join(s.root, filepath.FromSlash(key)))
	if path == s.root || !strings.HasPrefix(path, s.root+string(os.PathSeparator)) {
		return "", NewStorageError(ErrPermissionDenied, "resolve", key,
			fmt.Errorf("key %q escapes storage root", key))
	}
	return path, nil
}

// Backend implements Store.
func (s *FSStore) Backend() string { return "fs" }

// Close implements Store. Filesystem stores hold no resources.
func (s *FSStore) Close() error { return nil }

// CopyInto is a convenience for Put from a local file.
func (s *FSStore) CopyInto(ctx context.Context, srcPath, key string) (int64, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return 0, WrapReadError(err, srcPath)
	}
	defer iox.DiscardClose(f)
	return s.Put(ctx, key, f)
}

// Verify FSStore implements Store.
var _ Store = (*FSStore)(nil)
