package packer

import "github.com/pkg/errors"

// Heuristic selects how MaxRects scores candidate free rectangles when
// placing a new rectangle. Mirrors the scoring switch the teacher packer
// keeps in its insertNode, generalized to the named heuristics in the spec.
type Heuristic int

const (
	// BestShortSideFit scores by (min(freeW-w, freeH-h), max(freeW-w, freeH-h))
	// lexicographically, lower is better. This is the package default.
	BestShortSideFit Heuristic = iota
	// BestLongSideFit scores by the long-side leftover first.
	BestLongSideFit
	// BestAreaFit scores by the leftover area of the candidate free rectangle.
	BestAreaFit
)

// score returns a comparable (primary, secondary) pair for placing a
// w x h rectangle into a free rectangle of size freeW x freeH. Lower is
// better. ok is false if the rectangle does not fit at all.
func (h Heuristic) score(freeW, freeH, w, hh int) (primary, secondary int, ok bool) {
	if w > freeW || hh > freeH {
		return 0, 0, false
	}
	leftoverW := freeW - w
	leftoverH := freeH - hh
	switch h {
	case BestLongSideFit:
		return max(leftoverW, leftoverH), min(leftoverW, leftoverH), true
	case BestAreaFit:
		return freeW*freeH - w*hh, min(leftoverW, leftoverH), true
	default: // BestShortSideFit
		return min(leftoverW, leftoverH), max(leftoverW, leftoverH), true
	}
}

// ParseHeuristic maps a CLI flag value to a Heuristic, defaulting to
// BestShortSideFit when s is empty.
func ParseHeuristic(s string) (Heuristic, error) {
	switch s {
	case "", "best-short-side":
		return BestShortSideFit, nil
	case "best-long-side":
		return BestLongSideFit, nil
	case "best-area":
		return BestAreaFit, nil
	default:
		return 0, errors.Errorf("invalid heuristic option %q", s)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
