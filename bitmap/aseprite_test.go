package bitmap

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// buildAseFile assembles a minimal single-frame 2x2 indexed .aseprite
// document: a header, a new-style palette chunk (0x2019) defining two
// entries, and a raw cel chunk placing a 2x2 block of indices at (0,0).
func buildAseFile() []byte {
	le := binary.LittleEndian

	// Palette chunk payload: size=2, first=0, last=1, 8 reserved bytes,
	// then two (flags, r, g, b, a) entries.
	var palettePayload bytes.Buffer
	binary.Write(&palettePayload, le, uint32(2)) // new palette size
	binary.Write(&palettePayload, le, uint32(0)) // first changed index
	binary.Write(&palettePayload, le, uint32(1)) // last changed index
	palettePayload.Write(make([]byte, 8))        // reserved
	binary.Write(&palettePayload, le, uint16(0)) // entry 0 flags
	palettePayload.Write([]byte{0, 0, 0, 255})   // entry 0: black, opaque
	binary.Write(&palettePayload, le, uint16(0)) // entry 1 flags
	palettePayload.Write([]byte{255, 0, 0, 255}) // entry 1: red, opaque

	// Cel chunk payload, matching decodeCelChunk's own field offsets:
	// layer(2) x(2) y(2) celType(2), 8 pad bytes up to offset 16, then
	// w(2) h(2) and raw index bytes.
	var celPayload bytes.Buffer
	binary.Write(&celPayload, le, uint16(0)) // layer index
	binary.Write(&celPayload, le, int16(0))  // x
	binary.Write(&celPayload, le, int16(0))  // y
	binary.Write(&celPayload, le, uint16(0)) // cel type: raw
	celPayload.Write(make([]byte, 8))        // pad to offset 16
	binary.Write(&celPayload, le, uint16(2)) // cel width
	binary.Write(&celPayload, le, uint16(2)) // cel height
	celPayload.Write([]byte{0, 1, 1, 0})     // 2x2 indices

	var chunks bytes.Buffer
	writeChunk := func(chunkType uint16, payload []byte) {
		binary.Write(&chunks, le, uint32(len(payload)+6))
		binary.Write(&chunks, le, chunkType)
		chunks.Write(payload)
	}
	writeChunk(0x2019, palettePayload.Bytes())
	writeChunk(0x2005, celPayload.Bytes())

	var frame bytes.Buffer
	binary.Write(&frame, le, uint16(0xF1FA)) // frame magic
	binary.Write(&frame, le, uint16(0))      // old chunk count (0: newChunks below is authoritative)
	binary.Write(&frame, le, uint16(100))    // duration ms
	binary.Write(&frame, le, uint16(0))      // reserved
	binary.Write(&frame, le, uint32(2))      // new chunk count: palette + cel
	frame.Write(chunks.Bytes())

	header := make([]byte, 128)
	le.PutUint32(header[0:4], uint32(128+4+frame.Len()))
	le.PutUint16(header[4:6], 0xA5E0) // file magic
	le.PutUint16(header[6:8], 1)      // frame count
	le.PutUint16(header[8:10], 2)     // width
	le.PutUint16(header[10:12], 2)    // height
	le.PutUint16(header[12:14], 8)    // color depth

	var file bytes.Buffer
	file.Write(header)
	binary.Write(&file, le, uint32(4+frame.Len())) // frame bytes field
	file.Write(frame.Bytes())

	return file.Bytes()
}

func TestStdAsepriteDecoderParsesPaletteAndIndices(t *testing.T) {
	data := buildAseFile()

	bitmaps, err := StdAsepriteDecoder{}.Decode(bytes.NewReader(data), "sprite")
	require.NoError(t, err)
	require.Len(t, bitmaps, 1)

	b := bitmaps[0]
	require.True(t, b.IsIndexed(), "expected Palette to be populated alongside Indexed pixels")
	require.Equal(t, []uint8{0, 1, 1, 0}, b.Indexed)
	require.Equal(t, uint32(0xFF000000), b.Palette[0])
	require.Equal(t, uint32(0xFF0000FF), b.Palette[1])

	// A panic here would mean opaqueBounds() mistook this for an RGBA
	// bitmap and indexed into a nil RGBA slice.
	require.NotPanics(t, func() { b.Trim(zerolog.Nop(), false) })

	b.ComputeHash()
	require.NotZero(t, b.HashValue)
}
