// Package palette implements the spec's Palette Blitter: copying a placed
// Bitmap's pixels into an atlas page canvas (with optional 90° rotation),
// and detecting which 16-color row of a page's 256-color palette matches
// an indexed bitmap's own palette. Grounded on the teacher's rotate-and-
// blit path in packer.go (img.image = imaging.Rotate90(...)) generalized
// from image.Image/draw.Draw to the spec's raw pixel buffers, since the
// spec requires an exact, explicit 90°-CW index mapping rather than a
// resampled rotate.
package palette

import "github.com/crunchpack/crunch/bitmap"

// BlitRGBA copies src into dst (dstW x dstH, row-major) at (tx, ty),
// rotating 90° clockwise first if src.Pos.Rot is set.
func BlitRGBA(dst []uint32, dstW int, src *bitmap.Bitmap, tx, ty int) {
	if src.Pos.Rot {
		// destination column tx+x, row ty+y for x in [0,height), y in
		// [0,width) equals source row height-1-x, column y. See spec's
		// rotation blit rule.
		for x := 0; x < src.Height; x++ {
			for y := 0; y < src.Width; y++ {
				dst[(ty+y)*dstW+(tx+x)] = src.RGBA[(src.Height-1-x)*src.Width+y]
			}
		}
		return
	}
	for y := 0; y < src.Height; y++ {
		copy(dst[(ty+y)*dstW+tx:(ty+y)*dstW+tx+src.Width], src.RGBA[y*src.Width:(y+1)*src.Width])
	}
}

// BlitIndexed copies src's 8-bit indices into dst the same way BlitRGBA
// copies RGBA words; the page palette slot is the caller's concern
// (AssignSlot), this function only moves index bytes.
func BlitIndexed(dst []uint8, dstW int, src *bitmap.Bitmap, tx, ty int) {
	if src.Pos.Rot {
		for x := 0; x < src.Height; x++ {
			for y := 0; y < src.Width; y++ {
				dst[(ty+y)*dstW+(tx+x)] = src.Indexed[(src.Height-1-x)*src.Width+y]
			}
		}
		return
	}
	for y := 0; y < src.Height; y++ {
		copy(dst[(ty+y)*dstW+tx:(ty+y)*dstW+tx+src.Width], src.Indexed[y*src.Width:(y+1)*src.Width])
	}
}
