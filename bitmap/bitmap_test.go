package bitmap

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func solidAlpha(w, h int, a byte, opaqueRect [4]int) *Bitmap {
	px := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			alpha := byte(0)
			if x >= opaqueRect[0] && x <= opaqueRect[2] && y >= opaqueRect[1] && y <= opaqueRect[3] {
				alpha = 255
			}
			px[y*w+x] = uint32(alpha) << 24
		}
	}
	return &Bitmap{Name: "t", Width: w, Height: h, FrameW: w, FrameH: h, RGBA: px}
}

func TestTrimReconstructsFrame(t *testing.T) {
	b := solidAlpha(32, 32, 0, [4]int{4, 2, 27, 29})
	b.Trim(zerolog.Nop(), false)

	require.Equal(t, 24, b.Width)
	require.Equal(t, 28, b.Height)
	require.Equal(t, -4, b.FrameX)
	require.Equal(t, -2, b.FrameY)
	require.Equal(t, 32, b.FrameW)
	require.Equal(t, 32, b.FrameH)
}

func TestTrimFullyTransparentKeepsBounds(t *testing.T) {
	b := solidAlpha(10, 10, 0, [4]int{100, 100, 100, 100})
	b.Trim(zerolog.Nop(), true)
	require.Equal(t, 10, b.Width)
	require.Equal(t, 10, b.Height)
}

func TestHashStableAndSensitive(t *testing.T) {
	a := solidAlpha(8, 8, 0, [4]int{0, 0, 7, 7})
	b := solidAlpha(8, 8, 0, [4]int{0, 0, 7, 7})
	a.ComputeHash()
	b.ComputeHash()
	require.Equal(t, a.HashValue, b.HashValue, "identical pixels must hash identically")

	c := solidAlpha(8, 8, 0, [4]int{0, 0, 6, 7})
	c.ComputeHash()
	require.NotEqual(t, a.HashValue, c.HashValue, "different pixels must hash differently (in practice)")
}

func TestEqualsByteForByte(t *testing.T) {
	a := solidAlpha(4, 4, 0, [4]int{1, 1, 2, 2})
	b := solidAlpha(4, 4, 0, [4]int{1, 1, 2, 2})
	require.True(t, a.Equals(b), "expected identical bitmaps to be equal")

	c := solidAlpha(4, 4, 0, [4]int{0, 0, 1, 1})
	require.False(t, a.Equals(c), "expected different bitmaps to be unequal")
}

func TestPremultiplyFloors(t *testing.T) {
	b := &Bitmap{Width: 1, Height: 1, RGBA: []uint32{100 | 100<<8 | 100<<16 | 128<<24}}
	b.Premultiply()
	want := byte(uint32(100) * 128 / 255)
	require.Equal(t, want, byte(b.RGBA[0]))
}
