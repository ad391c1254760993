package page

import (
	"github.com/crunchpack/crunch/bitmap"
	"github.com/crunchpack/crunch/palette"
)

// Canvas is the final assembled pixel buffer for a page, after Shrink.
type Canvas struct {
	Indexed bool
	RGBA    []uint32 // len == Width*Height, when !Indexed
	Index   []uint8  // len == Width*Height, when Indexed
	Palette []uint32 // up to 256 entries, only when Indexed
}

// Blit assembles the page's final Canvas from its placed (non-dup)
// bitmaps, per spec §4.5. pagePalette is nil for an RGBA page, or the
// 256-color (16x16) palette constraining an indexed page.
func (p *Page) Blit(pagePalette []uint32) {
	indexed := len(pagePalette) > 0

	c := Canvas{Indexed: indexed}
	if indexed {
		c.Index = make([]uint8, p.Width*p.Height)
		c.Palette = pagePalette
	} else {
		c.RGBA = make([]uint32, p.Width*p.Height)
	}

	for _, b := range p.Bitmaps {
		if b.Pos.DupID >= 0 {
			continue // aliased; already represented by its primary
		}
		if indexed && b.IsIndexed() {
			palette.AssignSlot(pagePalette, b)
			palette.BlitIndexed(c.Index, p.Width, b, b.Pos.X, b.Pos.Y)
		} else if !indexed && !b.IsIndexed() {
			palette.BlitRGBA(c.RGBA, p.Width, b, b.Pos.X, b.Pos.Y)
		}
	}

	p.Canvas = c
}

// ToBitmap packages the page canvas as a bitmap.Bitmap ready for PNG
// encoding.
func (p *Page) ToBitmap(name string) *bitmap.Bitmap {
	b := &bitmap.Bitmap{Name: name, Width: p.Width, Height: p.Height, FrameW: p.Width, FrameH: p.Height}
	if p.Canvas.Indexed {
		b.Indexed = p.Canvas.Index
		b.Palette = p.Canvas.Palette
	} else {
		b.RGBA = p.Canvas.RGBA
	}
	return b
}
