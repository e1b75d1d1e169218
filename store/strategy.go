package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// CopyStrategy selects how folder-import places a source file into
// storage.
type CopyStrategy string

// Folder-import copy strategies.
const (
	// StrategyCopy duplicates bytes and preserves originals.
	StrategyCopy CopyStrategy = "copy"
	// StrategyHardlink links source and stored file on the same
	// filesystem, duplicating nothing. Falls back to copy when the
	// backend has no local path or the link crosses devices.
	StrategyHardlink CopyStrategy = "hardlink"
	// StrategyMove duplicates nothing in the end: bytes are copied in,
	// and the source is deleted by the returned finalizer once catalog
	// records are durably committed.
	StrategyMove CopyStrategy = "move"
)

// ParseStrategy parses a strategy name.
func ParseStrategy(s string) (CopyStrategy, error) {
	switch CopyStrategy(s) {
	case StrategyCopy, StrategyHardlink, StrategyMove:
		return CopyStrategy(s), nil
	case "":
		return StrategyCopy, nil
	default:
		return "", fmt.Errorf("invalid copy strategy %q (must be copy, hardlink, or move)", s)
	}
}

// Place applies a copy strategy, putting srcPath into st under key.
//
// The returned finalize func is non-nil only for StrategyMove; the
// caller runs it after catalog records are committed, deleting the
// source file. A crash between placement and finalize leaves a
// duplicate, never a loss.
func Place(ctx context.Context, st Store, strategy CopyStrategy, srcPath, key string) (finalize func() error, err error) {
	switch strategy {
	case StrategyHardlink:
		if err := hardlinkInto(st, srcPath, key); err == nil {
			return nil, nil
		} else if !fallbackToCopy(err) {
			return nil, err
		}
		// Cross-device or remote backend: degrade to a plain copy.
		return nil, copyInto(ctx, st, srcPath, key)

	case StrategyMove:
		if err := copyInto(ctx, st, srcPath, key); err != nil {
			return nil, err
		}
		return func() error {
			if err := os.Remove(srcPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			return nil
		}, nil

	case StrategyCopy:
		return nil, copyInto(ctx, st, srcPath, key)

	default:
		return nil, fmt.Errorf("invalid copy strategy %q", strategy)
	}
}

// hardlinkInto links srcPath to the store's local path for key.
func hardlinkInto(st Store, srcPath, key string) error {
	dest, err := st.ResolvePath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return WrapWriteError(err, key)
	}
	if err := os.Link(srcPath, dest); err != nil {
		return err
	}
	return nil
}

// fallbackToCopy reports whether a hardlink failure should degrade to a
// byte copy rather than fail the placement.
func fallbackToCopy(err error) bool {
	if errors.Is(err, ErrNoLocalPath) {
		return true
	}
	var linkErr *os.LinkError
	return errors.As(err, &linkErr) // EXDEV, EPERM on some filesystems
}

func copyInto(ctx context.Context, st Store, srcPath, key string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return WrapReadError(err, srcPath)
	}
	defer func() { _ = f.Close() }()
	_, err = st.Put(ctx, key, f)
	return err
}
