package bitmap

import (
	"image"

	"github.com/disintegration/imaging"
)

// Preview renders b as an RGBA thumbnail no larger than maxDim on its long
// edge, for the CLI's verbose palette-preview output (spec §7's verbose
// diagnostics). Indexed bitmaps are expanded through their palette first.
func (b *Bitmap) Preview(maxDim int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	words := b.RGBA
	if b.IsIndexed() {
		words = make([]uint32, len(b.Indexed))
		for i, idx := range b.Indexed {
			words[i] = b.Palette[idx]
		}
	}
	for i, px := range words {
		img.Pix[i*4+0] = byte(px)
		img.Pix[i*4+1] = byte(px >> 8)
		img.Pix[i*4+2] = byte(px >> 16)
		img.Pix[i*4+3] = byte(px >> 24)
	}
	return imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
}
