// Package archive decodes uploaded container files into a destination
// directory, enforcing one safety contract across all supported formats.
//
// This file defines sentinel errors and the classified error wrapper.
// Callers use errors.Is for typed assertions rather than string matching.
package archive

import (
	"errors"
	"fmt"
)

// Sentinel errors for decode failure classification.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrUnsupportedFormat indicates the archive suffix is not in the
	// supported set. Raised before any bytes are read.
	ErrUnsupportedFormat = errors.New("unsupported archive format")

	// ErrCorruptArchive indicates the container structure or an entry
	// header could not be decoded. Fails the whole extraction.
	ErrCorruptArchive = errors.New("corrupt archive")

	// ErrTraversalRejected indicates the destination root itself is
	// unusable for containment checking (e.g. not resolvable).
	ErrTraversalRejected = errors.New("path traversal rejected")

	// ErrIO indicates a filesystem failure while writing extracted bytes.
	ErrIO = errors.New("i/o error")
)

// DecodeError wraps an underlying error with decode classification.
// It preserves the original error in the chain for errors.As inspection.
type DecodeError struct {
	// Kind is the sentinel for classification (e.g. ErrCorruptArchive).
	Kind error
	// Format is the archive format being decoded (e.g. "zip").
	Format string
	// Path is the archive or entry path involved, if any.
	Path string
	// Err is the underlying error.
	Err error
}

func (e *DecodeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v: %v", e.Format, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Format, e.Kind, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target sentinel.
func (e *DecodeError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// corruptErr wraps err as a whole-archive corruption failure.
func corruptErr(format, path string, err error) error {
	return &DecodeError{Kind: ErrCorruptArchive, Format: format, Path: path, Err: err}
}

// ioErr wraps err as a filesystem write failure.
func ioErr(format, path string, err error) error {
	return &DecodeError{Kind: ErrIO, Format: format, Path: path, Err: err}
}
