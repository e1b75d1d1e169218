package archive

import (
	"archive/tar"
	"context"
	"errors"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/printvault/printvault/iox"
	"github.com/printvault/printvault/log"
)

// tarGzDecoder extracts .tar.gz/.tgz archives.
// Tar is the one supported format that exposes link metadata, so symlink
// and hardlink entries are dropped here in addition to the containment
// check shared by all formats.
type tarGzDecoder struct {
	logger *log.Logger
}

func (d *tarGzDecoder) Format() string { return "tar.gz" }

func (d *tarGzDecoder) Extract(ctx context.Context, archivePath, destRoot string) (*Result, error) {
	root, err := resolveRoot(d.Format(), destRoot)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return nil, ioErr(d.Format(), archivePath, err)
	}
	defer iox.DiscardClose(f)

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, corruptErr(d.Format(), archivePath, err)
	}
	defer iox.DiscardClose(gz)

	tr := tar.NewReader(gz)
	res := &Result{}
	for {
		if err := ctx.Err(); err != nil {
			return res, ioErr(d.Format(), archivePath, err)
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return res, corruptErr(d.Format(), archivePath, err)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			continue
		case tar.TypeSymlink, tar.TypeLink:
			res.SkippedLinks++
			d.logger.Debug("skipping link entry", map[string]any{
				"entry":  hdr.Name,
				"target": hdr.Linkname,
			})
			continue
		case tar.TypeReg:
		default:
			// Char/block devices, fifos and the like have no place in
			// an uploaded model archive.
			res.SkippedLinks++
			d.logger.Debug("skipping non-regular entry", map[string]any{"entry": hdr.Name})
			continue
		}

		if hiddenEntry(hdr.Name) {
			res.SkippedHidden++
			d.logger.Debug("skipping hidden entry", map[string]any{"entry": hdr.Name})
			continue
		}
		dest, ok := containedPath(root, hdr.Name)
		if !ok {
			res.SkippedUnsafe++
			d.logger.Debug("skipping unsafe entry", map[string]any{"entry": hdr.Name})
			// The entry body must still be consumed to advance the stream;
			// tar.Reader does that on the next call to Next.
			continue
		}

		if err := writeEntry(dest, tr); err != nil {
			return res, ioErr(d.Format(), dest, err)
		}
		res.Extracted++
	}
}

// Verify tarGzDecoder implements Decoder.
var _ Decoder = (*tarGzDecoder)(nil)
