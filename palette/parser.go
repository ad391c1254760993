package palette

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FileParser is the external collaborator contract for palette file
// parsing, per spec §6: input bytes to (colors, count, transparentIndex).
// Out of scope per the spec ("any implementer can substitute standard
// libraries"); these are small, stdlib-only decoders, one per format.
type FileParser interface {
	// Sniff reports whether data looks like this parser's format.
	Sniff(data []byte) bool
	// Parse decodes data into up to 256 RGBA colors (alpha 0xFF unless the
	// format carries its own alpha), the color count, and the index
	// flagged as transparent (-1 if the format has none).
	Parse(data []byte) (colors []uint32, count int, transparentIndex int, err error)
}

var parsers = []FileParser{
	pngPaletteParser{},
	mspalParser{},
	jascParser{},
	gimpParser{},
	paintNetParser{},
	actParser{}, // last: ACT has no magic bytes, only a plausible length
}

// ParseFile sniffs data against every known format and parses it with the
// first match.
func ParseFile(data []byte) (colors []uint32, count int, transparentIndex int, err error) {
	for _, p := range parsers {
		if p.Sniff(data) {
			return p.Parse(data)
		}
	}
	return nil, 0, -1, errors.New("unrecognized palette file format")
}

// --- PNG ---

type pngPaletteParser struct{}

func (pngPaletteParser) Sniff(data []byte) bool {
	return bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n"))
}

func (pngPaletteParser) Parse(data []byte) ([]uint32, int, int, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, -1, errors.Wrap(err, "decode png palette")
	}
	pimg, ok := img.(*image.Paletted)
	if !ok {
		return nil, 0, -1, errors.New("png palette file is not a paletted PNG")
	}
	colors := make([]uint32, len(pimg.Palette))
	transparent := -1
	for i, c := range pimg.Palette {
		r, g, b, a := c.RGBA()
		colors[i] = uint32(r>>8) | uint32(g>>8)<<8 | uint32(b>>8)<<16 | uint32(a>>8)<<24
		if a == 0 && transparent == -1 {
			transparent = i
		}
	}
	return colors, len(colors), transparent, nil
}

// --- JASC-PAL ---

type jascParser struct{}

func (jascParser) Sniff(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, "\xef\xbb\xbf"), []byte("JASC-PAL"))
}

func (jascParser) Parse(data []byte) ([]uint32, int, int, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	var lines []string
	for sc.Scan() {
		lines = append(lines, strings.TrimSpace(sc.Text()))
	}
	if len(lines) < 3 || lines[0] != "JASC-PAL" {
		return nil, 0, -1, errors.New("not a JASC-PAL file")
	}
	count, err := strconv.Atoi(lines[2])
	if err != nil {
		return nil, 0, -1, errors.Wrap(err, "JASC-PAL count")
	}
	colors := make([]uint32, 0, count)
	for i := 0; i < count && 3+i < len(lines); i++ {
		var r, g, b int
		if _, err := fmt.Sscanf(lines[3+i], "%d %d %d", &r, &g, &b); err != nil {
			return nil, 0, -1, errors.Wrapf(err, "JASC-PAL entry %d", i)
		}
		colors = append(colors, uint32(r)|uint32(g)<<8|uint32(b)<<16|0xFF000000)
	}
	return colors, len(colors), -1, nil
}

// --- GIMP .gpl ---

type gimpParser struct{}

func (gimpParser) Sniff(data []byte) bool {
	return bytes.HasPrefix(data, []byte("GIMP Palette"))
}

func (gimpParser) Parse(data []byte) ([]uint32, int, int, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	var colors []uint32
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "GIMP Palette") ||
			strings.HasPrefix(line, "Name:") || strings.HasPrefix(line, "Columns:") {
			continue
		}
		var r, g, b int
		if _, err := fmt.Sscanf(line, "%d %d %d", &r, &g, &b); err != nil {
			continue
		}
		colors = append(colors, uint32(r)|uint32(g)<<8|uint32(b)<<16|0xFF000000)
	}
	return colors, len(colors), -1, nil
}

// --- Paint.NET .txt ---

type paintNetParser struct{}

func (paintNetParser) Sniff(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) < 8 {
		return false
	}
	for _, line := range bytes.Split(trimmed, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == ';' {
			continue
		}
		return len(line) == 8 && isHex(line)
	}
	return false
}

func isHex(b []byte) bool {
	for _, c := range b {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

func (paintNetParser) Parse(data []byte) ([]uint32, int, int, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	var colors []uint32
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		v, err := strconv.ParseUint(line, 16, 32)
		if err != nil {
			return nil, 0, -1, errors.Wrapf(err, "paint.net entry %q", line)
		}
		a := byte(v >> 24)
		r := byte(v >> 16)
		g := byte(v >> 8)
		b := byte(v)
		colors = append(colors, uint32(r)|uint32(g)<<8|uint32(b)<<16|uint32(a)<<24)
	}
	return colors, len(colors), -1, nil
}

// --- Microsoft RIFF PAL ---

type mspalParser struct{}

func (mspalParser) Sniff(data []byte) bool {
	return len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("PAL "))
}

func (mspalParser) Parse(data []byte) ([]uint32, int, int, error) {
	if len(data) < 12+8 {
		return nil, 0, -1, errors.New("RIFF PAL file too short")
	}
	// data[12:16] == "data", data[16:20] == chunk size
	count := int(binary.LittleEndian.Uint16(data[22:24]))
	colors := make([]uint32, 0, count)
	off := 24
	for i := 0; i < count && off+4 <= len(data); i++ {
		r, g, b := data[off], data[off+1], data[off+2]
		colors = append(colors, uint32(r)|uint32(g)<<8|uint32(b)<<16|0xFF000000)
		off += 4
	}
	return colors, len(colors), -1, nil
}

// --- Adobe ACT ---

type actParser struct{}

func (actParser) Sniff(data []byte) bool {
	return len(data) == 768 || len(data) == 772
}

func (actParser) Parse(data []byte) ([]uint32, int, int, error) {
	count := 256
	transparent := -1
	if len(data) == 772 {
		count = int(binary.BigEndian.Uint16(data[768:770]))
		transparent = int(binary.BigEndian.Uint16(data[770:772]))
	}
	colors := make([]uint32, count)
	for i := 0; i < count; i++ {
		r, g, b := data[i*3], data[i*3+1], data[i*3+2]
		colors[i] = uint32(r) | uint32(g)<<8 | uint32(b)<<16 | 0xFF000000
	}
	return colors, count, transparent, nil
}
