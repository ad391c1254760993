package palette

import "github.com/crunchpack/crunch/bitmap"

// rowSize is the width of one 16-color palette "slot" row.
const rowSize = 16

// AssignSlot implements spec §4.5's sub-palette search: given a page
// palette of 256 colors laid out as 16 rows of 16, find a row i such that
// pagePalette[i*16..i*16+15] equals src's first 16 palette entries,
// comparing only RGB (alpha ignored). If found, src.PaletteSlot is set to
// i; otherwise it is left at 0 (the deliberate limitation noted in
// spec §9: only the source's first 16 entries are ever compared, and only
// against slot-aligned rows of the page palette).
func AssignSlot(pagePalette []uint32, src *bitmap.Bitmap) {
	if len(src.Palette) < rowSize {
		return
	}
	for row := 0; row*rowSize+rowSize <= len(pagePalette); row++ {
		if rowMatches(pagePalette[row*rowSize:row*rowSize+rowSize], src.Palette[:rowSize]) {
			src.PaletteSlot = row
			return
		}
	}
}

func rowMatches(a, b []uint32) bool {
	for i := range a {
		if rgb(a[i]) != rgb(b[i]) {
			return false
		}
	}
	return true
}

func rgb(c uint32) uint32 {
	return c & 0x00FFFFFF
}
