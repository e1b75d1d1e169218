package archive

import (
	"context"
	"errors"
	"io"

	"github.com/nwaples/rardecode/v2"

	"github.com/printvault/printvault/iox"
	"github.com/printvault/printvault/log"
)

// rarDecoder extracts .rar archives via the streaming rardecode reader.
// Rar exposes no link metadata through this reader; containment is the
// only path defense, same as zip.
type rarDecoder struct {
	logger *log.Logger
}

func (d *rarDecoder) Format() string { return "rar" }

func (d *rarDecoder) Extract(ctx context.Context, archivePath, destRoot string) (*Result, error) {
	root, err := resolveRoot(d.Format(), destRoot)
	if err != nil {
		return nil, err
	}

	r, err := rardecode.OpenReader(archivePath)
	if err != nil {
		return nil, corruptErr(d.Format(), archivePath, err)
	}
	defer iox.DiscardClose(r)

	res := &Result{}
	for {
		if err := ctx.Err(); err != nil {
			return res, ioErr(d.Format(), archivePath, err)
		}

		hdr, err := r.Next()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return res, corruptErr(d.Format(), archivePath, err)
		}

		if hdr.IsDir {
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
			continue
		}

		if err := writeEntry(dest, r); err != nil {
			return res, ioErr(d.Format(), dest, err)
		}
		res.Extracted++
	}
}

// Verify rarDecoder implements Decoder.
var _ Decoder = (*rarDecoder)(nil)
