package scan

import (
	"path/filepath"
	"strings"

	"github.com/printvault/printvault/types"
)

// Extension sets for file type classification. Lowercase, with dot.
var (
	meshExtensions = map[string]struct{}{
		".stl": {}, ".obj": {}, ".3mf": {}, ".ply": {}, ".step": {}, ".stp": {},
		".gcode": {}, ".amf": {},
	}
	imageExtensions = map[string]struct{}{
		".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".webp": {}, ".bmp": {},
	}
	documentExtensions = map[string]struct{}{
		".pdf": {}, ".txt": {}, ".md": {}, ".html": {}, ".rtf": {},
	}
)

// defaultMimeType is used for extensions outside the fixed table.
const defaultMimeType = "application/octet-stream"

// mimeTypes is the fixed extension->MIME table. Classification is
// extension-based only; no content sniffing.
var mimeTypes = map[string]string{
	".stl":   "model/stl",
	".obj":   "model/obj",
	".3mf":   "model/3mf",
	".ply":   "model/mesh",
	".step":  "model/step",
	".stp":   "model/step",
	".amf":   "application/x-amf",
	".gcode": "text/x-gcode",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".webp":  "image/webp",
	".bmp":   "image/bmp",
	".pdf":   "application/pdf",
	".txt":   "text/plain",
	".md":    "text/markdown",
	".html":  "text/html",
	".rtf":   "application/rtf",
}

// Classify derives the file type and MIME type from the lowercase
// extension of filename.
func Classify(filename string) (types.FileType, string) {
	ext := strings.ToLower(filepath.Ext(filename))

	mime, ok := mimeTypes[ext]
	if !ok {
		mime = defaultMimeType
	}

	switch {
	case hasKey(meshExtensions, ext):
		return types.FileTypeSTL, mime
	case hasKey(imageExtensions, ext):
		return types.FileTypeImage, mime
	case hasKey(documentExtensions, ext):
		return types.FileTypeDocument, mime
	default:
		return types.FileTypeOther, mime
	}
}

func hasKey(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
