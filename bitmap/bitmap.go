// Package bitmap implements the decoded-image data model: a Bitmap owns
// either a 32-bit RGBA pixel buffer or an 8-bit indexed buffer plus its
// palette, along with the trim/animation metadata the atlas pipeline
// needs. Adapted from the teacher's inputImage.go (image ownership,
// content hashing) generalized from image.Image wrapping to the spec's
// explicit RGBA/indexed tagged-variant storage.
package bitmap

import (
	"github.com/crunchpack/crunch/internal/xhash"
)

// Pos is only valid after the atlas packer has placed a Bitmap.
type Pos struct {
	X, Y  int
	Rot   bool
	DupID int // -1 == primary placement, >=0 == alias of primary at this bitmap index
}

// Bitmap is a decoded image region, exactly as specified in spec.md §3.
type Bitmap struct {
	FrameIndex int // 0 for still images, 1-based for animation frames
	Name       string
	Label        string
	LoopDirection int
	Duration     int

	Width, Height int // post-trim pixel-storage dimensions

	FrameX, FrameY int // position within the original untrimmed frame
	FrameW, FrameH int // original untrimmed frame size

	// Exactly one of RGBA or (Indexed, Palette) is populated.
	RGBA    []uint32
	Indexed []uint8
	Palette []uint32 // up to 256 entries; empty iff RGBA is used

	PaletteSlot int // 0-15, assigned only for indexed bitmaps during blit

	HashValue uint64

	Pos Pos // valid only after packing
}

// IsIndexed reports whether the bitmap stores 8-bit palette indices.
func (b *Bitmap) IsIndexed() bool {
	return len(b.Palette) > 0
}

// Area is the width*height sort key the pipeline sorts bitmaps by.
func (b *Bitmap) Area() int {
	return b.Width * b.Height
}

// pixelBytes returns the raw byte view of the pixel buffer used for both
// hashing and byte-for-byte dedup comparison. Indexed and RGBA storage are
// treated identically at the byte level, per spec §4.1.
func (b *Bitmap) pixelBytes() []byte {
	if b.IsIndexed() {
		return b.Indexed
	}
	out := make([]byte, len(b.RGBA)*4)
	for i, px := range b.RGBA {
		out[i*4+0] = byte(px)
		out[i*4+1] = byte(px >> 8)
		out[i*4+2] = byte(px >> 16)
		out[i*4+3] = byte(px >> 24)
	}
	return out
}

// ComputeHash sets HashValue from the current width, height and pixel
// bytes. Must be called after trim (and before pack) so the digest
// reflects the final stored pixels.
func (b *Bitmap) ComputeHash() {
	b.HashValue = xhash.Bitmap(b.Width, b.Height, b.pixelBytes())
}

// Equals reports whether two bitmaps are byte-for-byte identical after
// trim: used to guard the dedup dupLookup hit against hash collisions.
func (b *Bitmap) Equals(other *Bitmap) bool {
	if b.Width != other.Width || b.Height != other.Height {
		return false
	}
	if b.IsIndexed() != other.IsIndexed() {
		return false
	}
	ba, oa := b.pixelBytes(), other.pixelBytes()
	if len(ba) != len(oa) {
		return false
	}
	for i := range ba {
		if ba[i] != oa[i] {
			return false
		}
	}
	return true
}

// Premultiply replaces every RGBA pixel with (r*a/255, g*a/255, b*a/255, a)
// using floored integer arithmetic, per spec §4.1. No-op for indexed bitmaps.
func (b *Bitmap) Premultiply() {
	if b.IsIndexed() {
		return
	}
	for i, px := range b.RGBA {
		r := byte(px)
		g := byte(px >> 8)
		bl := byte(px >> 16)
		a := byte(px >> 24)
		r = byte(uint32(r) * uint32(a) / 255)
		g = byte(uint32(g) * uint32(a) / 255)
		bl = byte(uint32(bl) * uint32(a) / 255)
		b.RGBA[i] = uint32(r) | uint32(g)<<8 | uint32(bl)<<16 | uint32(a)<<24
	}
}
