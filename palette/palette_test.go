package palette

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crunchpack/crunch/bitmap"
)

func makeRow16(base uint32) []uint32 {
	row := make([]uint32, 16)
	for i := range row {
		row[i] = base + uint32(i)
	}
	return row
}

func TestAssignSlotFindsMatchingRow(t *testing.T) {
	page := make([]uint32, 256)
	copy(page[0:16], makeRow16(0x100))
	copy(page[48:64], makeRow16(0x200)) // row 3

	src := &bitmap.Bitmap{Palette: makeRow16(0x200)}
	AssignSlot(page, src)
	require.Equal(t, 3, src.PaletteSlot)
}

func TestAssignSlotIgnoresAlpha(t *testing.T) {
	page := make([]uint32, 256)
	row := makeRow16(0x300)
	copy(page[32:48], row) // row 2

	srcRow := make([]uint32, 16)
	for i, c := range row {
		srcRow[i] = c | 0xAB000000 // different alpha, same RGB
	}
	src := &bitmap.Bitmap{Palette: srcRow}
	AssignSlot(page, src)
	require.Equal(t, 2, src.PaletteSlot, "alpha should be ignored when matching")
}

func TestAssignSlotNoMatchLeavesZero(t *testing.T) {
	page := make([]uint32, 256)
	src := &bitmap.Bitmap{Palette: makeRow16(0xABC)}
	AssignSlot(page, src)
	require.Equal(t, 0, src.PaletteSlot)
}

func TestParseFileJASC(t *testing.T) {
	data := []byte("JASC-PAL\r\n0100\r\n2\r\n255 0 0\r\n0 255 0\r\n")
	colors, count, _, err := ParseFile(data)
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.Equal(t, uint32(0xFF0000FF), colors[0])
}

func TestParseFileGIMP(t *testing.T) {
	data := []byte("GIMP Palette\nName: x\nColumns: 1\n#\n10 20 30\tEntry\n")
	colors, count, _, err := ParseFile(data)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Equal(t, uint32(30<<16|20<<8|10), colors[0]&0xFFFFFF)
}

func TestParseFileACT(t *testing.T) {
	data := make([]byte, 768)
	data[0], data[1], data[2] = 1, 2, 3
	colors, count, transparent, err := ParseFile(data)
	require.NoError(t, err)
	require.Equal(t, 256, count)
	require.Equal(t, -1, transparent)
	require.Equal(t, uint32(3<<16|2<<8|1), colors[0]&0xFFFFFF)
}
