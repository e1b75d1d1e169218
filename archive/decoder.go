package archive

import (
	"context"
	"fmt"
	"strings"

	"github.com/printvault/printvault/log"
)

// Decoder extracts one archive format into a destination directory.
//
// All implementations share the same safety contract regardless of the
// underlying library:
//   - directory entries are skipped (parents created as files are written)
//   - entries with a hidden path segment are skipped
//   - link entries are skipped where the format exposes link metadata
//   - every destination path is containment-checked before any write;
//     entries resolving outside destRoot are skipped, not fatal
//
// Extraction is sequential in archive order. A corrupt container or
// entry header fails the whole operation.
type Decoder interface {
	// Extract decodes archivePath into destRoot and reports per-entry
	// accounting. Skipped entries are expected, not exceptional.
	Extract(ctx context.Context, archivePath, destRoot string) (*Result, error)

	// Format returns the format name (e.g. "zip") for logs and errors.
	Format() string
}

// Result is the per-entry accounting for one extraction.
type Result struct {
	// Extracted is the number of regular files written under destRoot.
	Extracted int
	// SkippedHidden counts entries dropped for hidden path segments.
	SkippedHidden int
	// SkippedUnsafe counts entries dropped by the containment check.
	SkippedUnsafe int
	// SkippedLinks counts link entries dropped (tar only).
	SkippedLinks int
}

// Suffixes recognized by format dispatch, longest first so ".tar.gz"
// wins over a hypothetical ".gz" handler.
var supportedSuffixes = []string{".tar.gz", ".tgz", ".zip", ".rar", ".7z"}

// SupportedSuffixes returns the archive suffixes the decoder set accepts.
func SupportedSuffixes() []string {
	out := make([]string, len(supportedSuffixes))
	copy(out, supportedSuffixes)
	return out
}

// Supported reports whether path has a recognized archive suffix.
func Supported(path string) bool {
	lower := strings.ToLower(path)
	for _, s := range supportedSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// ForPath selects a decoder purely by filename suffix.
// Returns ErrUnsupportedFormat before any bytes are read if the suffix
// is not in the supported set.
func ForPath(path string, logger *log.Logger) (Decoder, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return &zipDecoder{logger: logger}, nil
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return &tarGzDecoder{logger: logger}, nil
	case strings.HasSuffix(lower, ".rar"):
		return &rarDecoder{logger: logger}, nil
	case strings.HasSuffix(lower, ".7z"):
		return &sevenZipDecoder{logger: logger}, nil
	default:
		return nil, &DecodeError{
			Kind:   ErrUnsupportedFormat,
			Format: "dispatch",
			Path:   path,
			Err:    fmt.Errorf("no decoder for suffix of %q", path),
		}
	}
}
