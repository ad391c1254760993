package packer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertFitsWithinBounds(t *testing.T) {
	b := NewBin(64, 64, BestShortSideFit, NoRotate)
	p, ok := b.Insert(20, 10)
	require.True(t, ok, "expected placement to succeed")
	require.True(t, p.X >= 0 && p.Y >= 0 && p.X+20 <= 64 && p.Y+10 <= 64, "placement out of bounds: %+v", p)
}

func TestInsertNoOverlap(t *testing.T) {
	b := NewBin(32, 32, BestShortSideFit, NoRotate)
	type placed struct {
		x, y, w, h int
	}
	var all []placed
	sizes := [][2]int{{10, 10}, {10, 10}, {8, 8}, {16, 16}}
	for _, s := range sizes {
		p, ok := b.Insert(s[0], s[1])
		require.True(t, ok, "expected %v to fit", s)
		all = append(all, placed{p.X, p.Y, s[0], s[1]})
	}
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			a, c := all[i], all[j]
			overlap := a.x < c.x+c.w && a.x+a.w > c.x && a.y < c.y+c.h && a.y+a.h > c.y
			require.False(t, overlap, "placements overlap: %+v %+v", a, c)
		}
	}
}

func TestInsertRejectsOversize(t *testing.T) {
	b := NewBin(16, 16, BestShortSideFit, NoRotate)
	_, ok := b.Insert(32, 8)
	require.False(t, ok, "expected oversize rectangle to be rejected")
}

func TestInsertRotates(t *testing.T) {
	b := NewBin(16, 64, BestShortSideFit, AllowRotate)
	p, ok := b.Insert(64, 16)
	require.True(t, ok, "expected rotated placement to succeed")
	require.True(t, p.Rotated, "expected the bin to choose the rotated orientation")
}

func TestInsertFull(t *testing.T) {
	b := NewBin(8, 8, BestShortSideFit, NoRotate)
	_, ok := b.Insert(8, 8)
	require.True(t, ok, "expected first insert to fit exactly")
	_, ok = b.Insert(1, 1)
	require.False(t, ok, "expected bin to report full")
}

func TestPruneKeepsFreeListMaximal(t *testing.T) {
	b := NewBin(32, 32, BestShortSideFit, NoRotate)
	b.Insert(8, 8)
	for _, f := range b.free {
		for _, g := range b.free {
			if f != g {
				require.False(t, g.contains(f), "free rect %+v is contained in %+v", f, g)
			}
		}
	}
}
