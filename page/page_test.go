package page

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crunchpack/crunch/bitmap"
	"github.com/crunchpack/crunch/packer"
)

func solid(name string, w, h int, a byte) *bitmap.Bitmap {
	px := make([]uint32, w*h)
	for i := range px {
		px[i] = uint32(a) << 24
	}
	b := &bitmap.Bitmap{Name: name, Width: w, Height: h, RGBA: px}
	b.ComputeHash()
	return b
}

func TestInsertStaysInBounds(t *testing.T) {
	p := New(64, 64, 0, packer.BestShortSideFit, false, false)
	b := solid("a", 20, 10, 255)
	require.True(t, p.Insert(b), "expected insert to succeed")
	require.True(t, b.Pos.X >= 0 && b.Pos.Y >= 0 && b.Pos.X+20 <= 64 && b.Pos.Y+10 <= 64, "placement out of bounds: %+v", b.Pos)
}

func TestDedupAliasesSharePosition(t *testing.T) {
	p := New(64, 64, 0, packer.BestShortSideFit, true, false)
	a := solid("a", 16, 16, 255)
	b := solid("b", 16, 16, 255) // same pixels, same hash

	require.True(t, p.Insert(a), "insert a failed")
	require.True(t, p.Insert(b), "insert b failed")
	require.Equal(t, 0, b.Pos.DupID)
	require.Equal(t, a.Pos.X, b.Pos.X)
	require.Equal(t, a.Pos.Y, b.Pos.Y)
}

func TestDedupOffPlacesBothDistinctly(t *testing.T) {
	p := New(64, 64, 0, packer.BestShortSideFit, false, false)
	a := solid("a", 16, 16, 255)
	b := solid("b", 16, 16, 255)
	p.Insert(a)
	p.Insert(b)
	require.False(t, a.Pos.X == b.Pos.X && a.Pos.Y == b.Pos.Y, "expected distinct placements when dedup is off")
}

func TestShrinkIsSmallestPowerOfTwo(t *testing.T) {
	p := New(256, 256, 0, packer.BestShortSideFit, false, false)
	p.Insert(solid("a", 60, 40, 255))
	p.Shrink()
	require.Equal(t, 64, p.Width)
	require.Equal(t, 64, p.Height)
}

func TestFullPageRejectsFurtherInserts(t *testing.T) {
	p := New(16, 16, 0, packer.BestShortSideFit, false, false)
	require.True(t, p.Insert(solid("a", 16, 16, 255)), "expected first bitmap to fit exactly")
	require.False(t, p.Insert(solid("b", 1, 1, 255)), "expected page to report full")
}
