package bitmap

import "github.com/rs/zerolog"

// Trim strips fully-transparent border rows/columns, per spec §4.1. If
// every pixel is transparent, the full original bounds are kept and a
// verbose warning is logged. Trim always runs when called; the loader only
// calls it when trimming is enabled.
func (b *Bitmap) Trim(log zerolog.Logger, verbose bool) {
	origW, origH := b.Width, b.Height
	minX, minY, maxX, maxY, any := b.opaqueBounds()

	if !any {
		if verbose {
			log.Warn().Str("name", b.Name).Msg("bitmap is fully transparent, trim skipped")
		}
		b.FrameW, b.FrameH = origW, origH
		b.FrameX, b.FrameY = 0, 0
		return
	}

	newW := maxX - minX + 1
	newH := maxY - minY + 1
	if minX == 0 && minY == 0 && newW == origW && newH == origH {
		// whole image is already opaque-bordered: no-op, keep original buffer.
		b.FrameW, b.FrameH = origW, origH
		b.FrameX, b.FrameY = 0, 0
		return
	}

	b.crop(minX, minY, newW, newH)
	b.FrameW, b.FrameH = origW, origH
	b.FrameX, b.FrameY = -minX, -minY
	b.Width, b.Height = newW, newH
}

// opaqueBounds returns the tightest rectangle containing every
// non-transparent pixel: a>0 for RGBA, index!=0 for indexed.
func (b *Bitmap) opaqueBounds() (minX, minY, maxX, maxY int, any bool) {
	minX, minY = b.Width, b.Height
	maxX, maxY = -1, -1

	isOpaque := func(x, y int) bool {
		idx := y*b.Width + x
		if b.IsIndexed() {
			return b.Indexed[idx] != 0
		}
		return byte(b.RGBA[idx]>>24) > 0
	}

	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if isOpaque(x, y) {
				any = true
				if x < minX {
					minX = x
				}
				if y < minY {
					minY = y
				}
				if x > maxX {
					maxX = x
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}
	return
}

// crop allocates a fresh pixel buffer of size w x h and copies from the
// current buffer starting at (x0, y0): a new allocation, never an alias of
// the decoder-owned buffer, so Bitmap owns exactly one buffer variant
// regardless of whether trim fired.
func (b *Bitmap) crop(x0, y0, w, h int) {
	if b.IsIndexed() {
		out := make([]uint8, w*h)
		for y := 0; y < h; y++ {
			srcRow := (y0+y)*b.Width + x0
			copy(out[y*w:y*w+w], b.Indexed[srcRow:srcRow+w])
		}
		b.Indexed = out
		return
	}
	out := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		srcRow := (y0+y)*b.Width + x0
		copy(out[y*w:y*w+w], b.RGBA[srcRow:srcRow+w])
	}
	b.RGBA = out
}
