package manifest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleDoc() Document {
	return Document{
		Trim: true, Rotate: true,
		Pages: []Page{
			{
				Name: "a0", Width: 64, Height: 64, Format: 0,
				Images: []Image{
					{FrameIndex: 0, Name: "x", Label: "", LoopDirection: 0, Duration: 0,
						X: 1, Y: 2, Width: 10, Height: 20,
						FrameX: -1, FrameY: -2, FrameW: 12, FrameH: 22,
						Rotated: true, PaletteSlot: 3},
				},
			},
		},
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	for _, enc := range []BinStr{NullTerminated, I16Prefixed, SevenBitPrefixed, Fixed16} {
		doc := sampleDoc()
		var buf bytes.Buffer
		require.NoError(t, WriteBinary(&buf, doc, enc))
		data := buf.Bytes()
		require.Equal(t, "crch", string(data[:4]))

		// Parse back via the fragment reader (skip the 4+2+1+1+1 byte header).
		numPagesOff := 4 + 2 + 1 + 1 + 1
		pages, err := ReadFragment(data[numPagesOff:], doc.Trim, doc.Rotate, enc)
		require.NoError(t, err)
		require.Len(t, pages, 1)
		require.Len(t, pages[0].Images, 1)
		require.Equal(t, doc.Pages[0].Images[0], pages[0].Images[0])
	}
}

func TestMergeFragmentsSumsPageCounts(t *testing.T) {
	var frag1, frag2 bytes.Buffer
	pages1 := []Page{{Name: "a_chars0", Width: 32, Height: 32}}
	pages2 := []Page{{Name: "a_tiles0", Width: 32, Height: 32}, {Name: "a_tiles1", Width: 32, Height: 32}}

	require.NoError(t, WriteFragment(&frag1, pages1, false, false, NullTerminated))
	require.NoError(t, WriteFragment(&frag2, pages2, false, false, NullTerminated))

	var merged bytes.Buffer
	require.NoError(t, MergeFragments(&merged, false, false, NullTerminated, [][]byte{frag1.Bytes(), frag2.Bytes()}))

	data := merged.Bytes()
	numPagesOff := 4 + 2 + 1 + 1 + 1
	pages, err := ReadFragment(data[numPagesOff:], false, false, NullTerminated)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	require.Equal(t, "a_chars0", pages[0].Name)
	require.Equal(t, "a_tiles0", pages[1].Name)
	require.Equal(t, "a_tiles1", pages[2].Name)
}

func TestParseBinStrRejectsInvalid(t *testing.T) {
	_, err := ParseBinStr("bogus")
	require.Error(t, err)

	v, err := ParseBinStr("")
	require.NoError(t, err)
	require.Equal(t, NullTerminated, v)
}
