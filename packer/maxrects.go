// Package packer implements the MaxRects 2-D rectangle bin packer: a free
// list of maximal axis-aligned free rectangles, split and pruned on every
// placement. Adapted from the teacher's single-file maxRects engine, pulled
// out of the image-specific packer and made to operate on bare dimensions
// so it can be reused for the atlas page, a generic rect-packing library
// concern independent of pixels.
package packer

// Rect is an axis-aligned placement or free region.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) right() int  { return r.X + r.W }
func (r Rect) bottom() int { return r.Y + r.H }

func (r Rect) contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.right() <= r.right() && o.bottom() <= r.bottom()
}

func (r Rect) overlaps(o Rect) bool {
	return r.X < o.right() && r.right() > o.X && r.Y < o.bottom() && r.bottom() > o.Y
}

// Placement is the result of a successful Insert.
type Placement struct {
	X, Y    int
	Rotated bool
}

// Bin is a single MaxRects bin of fixed width/height.
type Bin struct {
	W, H  int
	free  []Rect
	Heur  Heuristic
	Allow Rotate
}

// Rotate controls whether Insert is allowed to place a rectangle rotated
// 90 degrees clockwise when that yields a better (or the only) fit.
type Rotate bool

const (
	NoRotate Rotate = false
	AllowRotate Rotate = true
)

// NewBin creates an empty bin of the given size with a single free
// rectangle covering the whole area.
func NewBin(w, h int, heur Heuristic, allowRotate Rotate) *Bin {
	return &Bin{
		W:     w,
		H:     h,
		free:  []Rect{{0, 0, w, h}},
		Heur:  heur,
		Allow: allowRotate,
	}
}

// Insert places a w x h rectangle using the bin's heuristic. ok is false
// if no free rectangle can hold it in either orientation (page full).
func (b *Bin) Insert(w, h int) (p Placement, ok bool) {
	if w <= 0 || h <= 0 {
		return Placement{}, false
	}

	bestIdx := -1
	bestRotated := false
	bestPrimary, bestSecondary := 0, 0
	bestPlaced := Rect{}

	for i, f := range b.free {
		if p1, s1, fits := b.Heur.score(f.W, f.H, w, h); fits {
			if bestIdx == -1 || p1 < bestPrimary || (p1 == bestPrimary && s1 < bestSecondary) {
				bestIdx, bestPrimary, bestSecondary = i, p1, s1
				bestRotated = false
				bestPlaced = Rect{f.X, f.Y, w, h}
			}
		}
		if b.Allow {
			if p1, s1, fits := b.Heur.score(f.W, f.H, h, w); fits {
				if bestIdx == -1 || p1 < bestPrimary || (p1 == bestPrimary && s1 < bestSecondary) {
					bestIdx, bestPrimary, bestSecondary = i, p1, s1
					bestRotated = true
					bestPlaced = Rect{f.X, f.Y, h, w}
				}
			}
		}
	}

	if bestIdx == -1 {
		return Placement{}, false
	}

	b.split(bestPlaced)
	b.prune()

	return Placement{X: bestPlaced.X, Y: bestPlaced.Y, Rotated: bestRotated}, true
}

// split replaces every free rectangle overlapping placed with the maximal
// sub-rectangles of free space left to the top/bottom/left/right of it.
func (b *Bin) split(placed Rect) {
	next := b.free[:0:0]
	for _, f := range b.free {
		if !f.overlaps(placed) {
			next = append(next, f)
			continue
		}
		if placed.X > f.X {
			next = append(next, Rect{f.X, f.Y, placed.X - f.X, f.H})
		}
		if placed.right() < f.right() {
			next = append(next, Rect{placed.right(), f.Y, f.right() - placed.right(), f.H})
		}
		if placed.Y > f.Y {
			next = append(next, Rect{f.X, f.Y, f.W, placed.Y - f.Y})
		}
		if placed.bottom() < f.bottom() {
			next = append(next, Rect{f.X, placed.bottom(), f.W, f.bottom() - placed.bottom()})
		}
	}
	b.free = next
}

// prune deletes every free rectangle fully contained in another, keeping
// the free list small and maximal.
func (b *Bin) prune() {
	for i := 0; i < len(b.free); i++ {
		for j := i + 1; j < len(b.free); j++ {
			if b.free[j].contains(b.free[i]) {
				b.free = append(b.free[:i], b.free[i+1:]...)
				i--
				break
			}
			if b.free[i].contains(b.free[j]) {
				b.free = append(b.free[:j], b.free[j+1:]...)
				j--
			}
		}
	}
}
