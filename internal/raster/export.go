package raster

import (
	"image"

	"github.com/disintegration/imaging"
)

// Pix returns a copy of the bitmap as a row-major 8-bit buffer where on
// pixels are 255 and off pixels are 0.
func (b *Bitmap) Pix() []byte {
	pix := make([]byte, b.width*b.height)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if b.at(x, y) {
				pix[y*b.width+x] = 0xff
			}
		}
	}
	return pix
}

// Image returns the bitmap as a grayscale image with on pixels white.
func (b *Bitmap) Image() *image.Gray {
	return &image.Gray{
		Pix:    b.Pix(),
		Stride: b.width,
		Rect:   image.Rect(0, 0, b.width, b.height),
	}
}

// Snapshot renders the bitmap scaled by the given factor for display.
// Nearest-neighbour sampling keeps pixel edges sharp. A scale of 1 or less
// returns the unscaled image.
func (b *Bitmap) Snapshot(scale float64) image.Image {
	img := b.Image()
	if scale <= 1 {
		return img
	}
	w := int(float64(b.width)*scale + 0.5)
	h := int(float64(b.height)*scale + 0.5)
	return imaging.Resize(img, w, h, imaging.NearestNeighbor)
}
