package thumbs

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	// Register decoders for the formats the scanner classifies as images.
	_ "image/gif"
	_ "image/jpeg"

	"github.com/printvault/printvault/iox"
	"github.com/printvault/printvault/store"
)

// DefaultMaxDim is the default bounding box for generated thumbnails.
const DefaultMaxDim = 256

// ImageThumbnailer generates PNG thumbnails by reading the source image
// back from storage, downscaling it to fit a square bounding box, and
// writing the result under models/<id>/thumbs/.
type ImageThumbnailer struct {
	store  store.Store
	maxDim int
}

// NewImageThumbnailer creates a thumbnailer writing through the given
// store. maxDim <= 0 uses DefaultMaxDim.
func NewImageThumbnailer(st store.Store, maxDim int) *ImageThumbnailer {
	if maxDim <= 0 {
		maxDim = DefaultMaxDim
	}
	return &ImageThumbnailer{store: st, maxDim: maxDim}
}

// ThumbKey returns the storage key for a file's thumbnail.
func ThumbKey(modelID, fileID string) string {
	return fmt.Sprintf("models/%s/thumbs/%s.png", modelID, fileID)
}

// Generate implements Thumbnailer.
func (t *ImageThumbnailer) Generate(ctx context.Context, sourceKey, modelID, fileID string) (*ThumbnailRecord, error) {
	rc, err := t.store.Open(ctx, sourceKey)
	if err != nil {
		return nil, fmt.Errorf("thumbnail: open %s: %w", sourceKey, err)
	}
	defer iox.DiscardClose(rc)

	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("thumbnail: decode %s: %w", sourceKey, err)
	}

	scaled := downscale(img, t.maxDim)
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("thumbnail: encode %s: %w", sourceKey, err)
	}

	key := ThumbKey(modelID, fileID)
	if _, err := t.store.Put(ctx, key, &buf); err != nil {
		return nil, fmt.Errorf("thumbnail: write %s: %w", key, err)
	}

	bounds := scaled.Bounds()
	return &ThumbnailRecord{
		ModelID:    modelID,
		FileID:     fileID,
		StorageKey: key,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
	}, nil
}

// downscale resizes img to fit within maxDim x maxDim, preserving
// aspect ratio. Images already inside the box pass through unchanged.
// Nearest-neighbor sampling keeps this dependency-free; thumbnails are
// preview artifacts, not print assets.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	longest := w
	if h > longest {
		longest = h
	}
	outW := w * maxDim / longest
	outH := h * maxDim / longest
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}

	out := image.NewRGBA(image.Rect(0, 0, outW, outH))
	for y := 0; y < outH; y++ {
		srcY := bounds.Min.Y + y*h/outH
		for x := 0; x < outW; x++ {
			srcX := bounds.Min.X + x*w/outW
			out.Set(x, y, img.At(srcX, srcY))
		}
	}
	return out
}

// Verify ImageThumbnailer implements Thumbnailer.
var _ Thumbnailer = (*ImageThumbnailer)(nil)
