// Package page implements a single atlas page: it owns the set of placed
// bitmaps, the MaxRects free list backing their placement, the dedup
// lookup, and the final pixel canvas. Adapted from the teacher's Packer
// (packer.go), split out from the rect-math (now packer.Bin) and
// generalized from image.Image blitting to the spec's RGBA/indexed
// tagged-variant Bitmap.
package page

import (
	"github.com/crunchpack/crunch/bitmap"
	"github.com/crunchpack/crunch/packer"
)

// Page is one atlas page.
type Page struct {
	Width, Height int // current canvas bounds; shrinks at end of pack
	Pad           int

	Bitmaps   []*bitmap.Bitmap // placed, in insertion order
	dupLookup map[uint64]int   // content hash -> index into Bitmaps; only used when Unique

	bin *packer.Bin

	Unique bool
	Rotate bool

	tightW, tightH int // running bounding box of placements, pre-shrink

	Canvas Canvas // populated by Blit after Shrink
}

// New creates an empty page of size w x h.
func New(w, h, pad int, heur packer.Heuristic, unique, rotate bool) *Page {
	return &Page{
		Width: w, Height: h, Pad: pad,
		dupLookup: make(map[uint64]int),
		bin:       packer.NewBin(w, h, heur, packer.Rotate(rotate)),
		Unique:    unique,
		Rotate:    rotate,
	}
}

// Insert attempts to place b on this page. ok is false if the page is
// full (rectangle does not fit); the caller must retry on a fresh page.
// Dedup (§4.3): if Unique is set and an equal bitmap was already packed,
// b is aliased to it instead of being placed.
func (p *Page) Insert(b *bitmap.Bitmap) (ok bool) {
	if p.Unique {
		if primaryIdx, found := p.dupLookup[b.HashValue]; found {
			primary := p.Bitmaps[primaryIdx]
			if b.Equals(primary) {
				b.Pos = primary.Pos
				b.Pos.DupID = primaryIdx
				p.Bitmaps = append(p.Bitmaps, b)
				return true
			}
		}
	}

	placement, fits := p.bin.Insert(b.Width+p.Pad, b.Height+p.Pad)
	if !fits {
		return false
	}

	b.Pos = bitmap.Pos{X: placement.X, Y: placement.Y, Rot: placement.Rotated, DupID: -1}

	if p.Unique {
		p.dupLookup[b.HashValue] = len(p.Bitmaps)
	}
	p.Bitmaps = append(p.Bitmaps, b)

	placedW, placedH := b.Width, b.Height
	if placement.Rotated {
		placedW, placedH = placedH, placedW
	}
	if right := placement.X + placedW + p.Pad; right > p.tightW {
		p.tightW = right
	}
	if bottom := placement.Y + placedH + p.Pad; bottom > p.tightH {
		p.tightH = bottom
	}

	return true
}

// Shrink halves Width/Height repeatedly while the halved value still
// covers the tight bounding box, yielding the smallest power-of-two
// canvas >= the tight extent (§4.4).
func (p *Page) Shrink() {
	for p.Width/2 >= p.tightW {
		p.Width /= 2
	}
	for p.Height/2 >= p.tightH {
		p.Height /= 2
	}
	if p.Width == 0 {
		p.Width = 1
	}
	if p.Height == 0 {
		p.Height = 1
	}
}
