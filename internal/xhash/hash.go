// Package xhash implements the 64-bit content mixer used to fingerprint
// decoded pixel buffers and build-cache inputs.
package xhash

// seed is the starting value for every fresh Digest.
const seed uint64 = 0

// mixConst is the additive constant of fold, the boost::hash_combine-style
// folding step: deterministic across platforms and stable across runs given
// identical inputs.
const mixConst uint64 = 0x9e3779b9

// Digest accumulates a 64-bit fingerprint over ints, strings and raw bytes.
type Digest struct {
	h uint64
}

// New returns a Digest seeded at zero.
func New() *Digest {
	return &Digest{h: seed}
}

func fold(h, x uint64) uint64 {
	return h ^ (x + mixConst + (h << 6) + (h >> 2))
}

// Uint64 folds a single integer chunk into the digest.
func (d *Digest) Uint64(x uint64) *Digest {
	d.h = fold(d.h, x)
	return d
}

// Int folds a signed integer chunk (e.g. a width or height) into the digest.
func (d *Digest) Int(x int) *Digest {
	return d.Uint64(uint64(x))
}

// Bytes folds every byte of b into the digest, one chunk per byte.
func (d *Digest) Bytes(b []byte) *Digest {
	for _, c := range b {
		d.h = fold(d.h, uint64(c))
	}
	return d
}

// String folds every byte of s into the digest.
func (d *Digest) String(s string) *Digest {
	for i := 0; i < len(s); i++ {
		d.h = fold(d.h, uint64(s[i]))
	}
	return d
}

// Sum returns the current 64-bit digest value.
func (d *Digest) Sum() uint64 {
	return d.h
}

// Bitmap computes the content hash of a decoded pixel buffer: width,
// height, then every pixel byte (indexed and RGBA are folded identically
// at the byte level, per the spec's hash definition).
func Bitmap(width, height int, pixels []byte) uint64 {
	return New().Int(width).Int(height).Bytes(pixels).Sum()
}
