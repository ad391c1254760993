package palette

import (
	"image"
	"image/color"

	"github.com/ericpauley/go-quantize/quantize"

	"github.com/crunchpack/crunch/bitmap"
)

// Reduce converts an RGBA bitmap to an 8-bit indexed bitmap in place,
// building a maxColors-entry palette via median-cut quantization. Used
// when an atlas is built in indexed mode but a source bitmap carries no
// palette of its own (a plain RGBA PNG mixed into an indexed build),
// grounding the same RGBA->indexed reduction go-quantize exists for.
func Reduce(b *bitmap.Bitmap, maxColors int) {
	if b.IsIndexed() {
		return
	}
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for i, px := range b.RGBA {
		img.Pix[i*4+0] = byte(px)
		img.Pix[i*4+1] = byte(px >> 8)
		img.Pix[i*4+2] = byte(px >> 16)
		img.Pix[i*4+3] = byte(px >> 24)
	}

	q := quantize.MedianCutQuantizer{}
	pal := q.Quantize(make(color.Palette, 0, maxColors), img)

	palWords := make([]uint32, len(pal))
	for i, c := range pal {
		r, g, bl, a := c.RGBA()
		palWords[i] = uint32(r>>8) | uint32(g>>8)<<8 | uint32(bl>>8)<<16 | uint32(a>>8)<<24
	}

	idx := make([]uint8, b.Width*b.Height)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			idx[y*b.Width+x] = uint8(pal.Index(img.At(x, y)))
		}
	}

	b.Indexed = idx
	b.Palette = palWords
	b.RGBA = nil
}
