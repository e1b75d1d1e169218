package archive

import (
	"archive/zip"
	"context"

	"github.com/printvault/printvault/iox"
	"github.com/printvault/printvault/log"
)

// zipDecoder extracts .zip archives with the stdlib reader.
// Zip carries no link metadata, so containment is the only path defense.
type zipDecoder struct {
	logger *log.Logger
}

func (d *zipDecoder) Format() string { return "zip" }

func (d *zipDecoder) Extract(ctx context.Context, archivePath, destRoot string) (*Result, error) {
	root, err := resolveRoot(d.Format(), destRoot)
	if err != nil {
		return nil, err
	}

	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, corruptErr(d.Format(), archivePath, err)
	}
	defer iox.DiscardClose(r)

	res := &Result{}
	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return res, ioErr(d.Format(), archivePath, err)
		}

		if f.FileInfo().IsDir() {
			continue
		}
		if hiddenEntry(f.Name) {
			res.SkippedHidden++
			d.logger.Debug("skipping hidden entry", map[string]any{"entry": f.Name})
			continue
		}
		dest, ok := containedPath(root, f.Name)
		if !ok {
			res.SkippedUnsafe++
			d.logger.Debug("skipping unsafe entry", map[string]any{"entry": f.Name})
			continue
		}

		rc, err := f.Open()
		if err != nil {
			// Entry header decoded but content stream is unreadable:
			// the container is damaged, fail the whole archive.
			return res, corruptErr(d.Format(), f.Name, err)
		}
		writeErr := writeEntry(dest, rc)
		_ = rc.Close()
		if writeErr != nil {
			return res, ioErr(d.Format(), dest, writeErr)
		}
		res.Extracted++
	}

	return res, nil
}

// Verify zipDecoder implements Decoder.
var _ Decoder = (*zipDecoder)(nil)
