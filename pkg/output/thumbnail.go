package output

import (
	"image"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
)

// Thumbnail scales img to width pixels wide, preserving the aspect ratio
func Thumbnail(img image.Image, width int) image.Image {
	if width <= 0 || width >= img.Bounds().Dx() {
		return img
	}
	return resize.Resize(uint(width), 0, img, resize.Bilinear)
}

// ThumbnailPath returns the path a thumbnail of path is written to,
// e.g. "out/render.png" -> "out/render_thumb.png"
func ThumbnailPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_thumb" + ext
}
