package manifest

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// BinStr selects the string encoding used throughout the binary manifest,
// per spec §6.
type BinStr byte

const (
	NullTerminated BinStr = iota
	I16Prefixed
	SevenBitPrefixed
	Fixed16
)

// ParseBinStr maps a CLI flag value to a BinStr, defaulting to
// NullTerminated when s is empty (per original_source/crunch/main.cpp's
// NULL_TERMINATED default) and rejecting anything else as a ConfigError.
func ParseBinStr(s string) (BinStr, error) {
	switch s {
	case "", "null-term":
		return NullTerminated, nil
	case "i16-prefixed":
		return I16Prefixed, nil
	case "7-bit-prefixed":
		return SevenBitPrefixed, nil
	case "fixed-16":
		return Fixed16, nil
	default:
		return 0, errors.Errorf("invalid binstr option %q", s)
	}
}

const binMagic = "crch"
const binVersion = int16(0)

func writeString(w *bufio.Writer, s string, enc BinStr) error {
	switch enc {
	case NullTerminated:
		if _, err := w.WriteString(s); err != nil {
			return err
		}
		return w.WriteByte(0)
	case I16Prefixed:
		if err := binary.Write(w, binary.LittleEndian, int16(len(s))); err != nil {
			return err
		}
		_, err := w.WriteString(s)
		return err
	case SevenBitPrefixed:
		n := len(s)
		for {
			b := byte(n & 0x7f)
			n >>= 7
			if n != 0 {
				b |= 0x80
			}
			if err := w.WriteByte(b); err != nil {
				return err
			}
			if n == 0 {
				break
			}
		}
		_, err := w.WriteString(s)
		return err
	case Fixed16:
		buf := make([]byte, 16)
		copy(buf, s)
		_, err := w.Write(buf)
		return err
	}
	return errors.Errorf("unknown binstr encoding %d", enc)
}

func readString(r *bytes.Reader, enc BinStr) (string, error) {
	switch enc {
	case NullTerminated:
		var buf []byte
		for {
			b, err := r.ReadByte()
			if err != nil {
				return "", err
			}
			if b == 0 {
				break
			}
			buf = append(buf, b)
		}
		return string(buf), nil
	case I16Prefixed:
		var n int16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return "", err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		return string(buf), nil
	case SevenBitPrefixed:
		var n, shift uint
		for {
			b, err := r.ReadByte()
			if err != nil {
				return "", err
			}
			n |= uint(b&0x7f) << shift
			if b&0x80 == 0 {
				break
			}
			shift += 7
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		return string(buf), nil
	case Fixed16:
		buf := make([]byte, 16)
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		return string(bytes.TrimRight(buf, "\x00")), nil
	}
	return "", errors.Errorf("unknown binstr encoding %d", enc)
}

func writeImage(w *bufio.Writer, img Image, trim, rotate bool, enc BinStr) error {
	if err := binary.Write(w, binary.LittleEndian, int16(img.FrameIndex)); err != nil {
		return err
	}
	if err := writeString(w, img.Name, enc); err != nil {
		return err
	}
	if err := writeString(w, img.Label, enc); err != nil {
		return err
	}
	if err := w.WriteByte(byte(img.LoopDirection)); err != nil {
		return err
	}
	for _, v := range []int16{int16(img.Duration), int16(img.X), int16(img.Y), int16(img.Width), int16(img.Height)} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if trim {
		for _, v := range []int16{int16(img.FrameX), int16(img.FrameY), int16(img.FrameW), int16(img.FrameH)} {
			if err := binary.Write(w, binary.LittleEndian, v); err != nil {
				return err
			}
		}
	}
	if rotate {
		b := byte(0)
		if img.Rotated {
			b = 1
		}
		if err := w.WriteByte(b); err != nil {
			return err
		}
	}
	return w.WriteByte(byte(img.PaletteSlot))
}

func readImage(r *bytes.Reader, trim, rotate bool, enc BinStr) (Image, error) {
	var img Image
	var fi, dur, x, y, width, height int16
	if err := binary.Read(r, binary.LittleEndian, &fi); err != nil {
		return img, err
	}
	img.FrameIndex = int(fi)
	var err error
	if img.Name, err = readString(r, enc); err != nil {
		return img, err
	}
	if img.Label, err = readString(r, enc); err != nil {
		return img, err
	}
	ld, err := r.ReadByte()
	if err != nil {
		return img, err
	}
	img.LoopDirection = int(ld)
	for _, v := range []*int16{&dur, &x, &y, &width, &height} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return img, err
		}
	}
	img.Duration, img.X, img.Y, img.Width, img.Height = int(dur), int(x), int(y), int(width), int(height)
	if trim {
		var fx, fy, fw, fh int16
		for _, v := range []*int16{&fx, &fy, &fw, &fh} {
			if err := binary.Read(r, binary.LittleEndian, v); err != nil {
				return img, err
			}
		}
		img.FrameX, img.FrameY, img.FrameW, img.FrameH = int(fx), int(fy), int(fw), int(fh)
	}
	if rotate {
		b, err := r.ReadByte()
		if err != nil {
			return img, err
		}
		img.Rotated = b != 0
	}
	ps, err := r.ReadByte()
	if err != nil {
		return img, err
	}
	img.PaletteSlot = int(ps)
	return img, nil
}

func writePage(w *bufio.Writer, p Page, trim, rotate bool, enc BinStr) error {
	if err := writeString(w, p.Name, enc); err != nil {
		return err
	}
	for _, v := range []int16{int16(p.Width), int16(p.Height), int16(p.Format), int16(len(p.Images))} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	for _, img := range p.Images {
		if err := writeImage(w, img, trim, rotate, enc); err != nil {
			return err
		}
	}
	return nil
}

func readPage(r *bytes.Reader, trim, rotate bool, enc BinStr) (Page, error) {
	var p Page
	var err error
	if p.Name, err = readString(r, enc); err != nil {
		return p, err
	}
	var width, height, format, numImages int16
	for _, v := range []*int16{&width, &height, &format, &numImages} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return p, err
		}
	}
	p.Width, p.Height, p.Format = int(width), int(height), int(format)
	for i := 0; i < int(numImages); i++ {
		img, err := readImage(r, trim, rotate, enc)
		if err != nil {
			return p, err
		}
		p.Images = append(p.Images, img)
	}
	return p, nil
}

// WriteBinary emits the full CRCH manifest: magic, version, trim, rotate,
// binstr, numPages, then each page per spec §6.
func WriteBinary(w io.Writer, doc Document, enc BinStr) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(binMagic); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, binVersion); err != nil {
		return err
	}
	for _, b := range []bool{doc.Trim, doc.Rotate} {
		v := byte(0)
		if b {
			v = 1
		}
		if err := bw.WriteByte(v); err != nil {
			return err
		}
	}
	if err := bw.WriteByte(byte(enc)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, int16(len(doc.Pages))); err != nil {
		return err
	}
	for _, p := range doc.Pages {
		if err := writePage(bw, p, doc.Trim, doc.Rotate, enc); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFragment emits just a page-count-prefixed page array, omitting the
// top-level header — the shape a partition-mode subdirectory build writes
// so the top-level merge can trivially sum counts and concatenate bodies
// (spec §4.7, §9).
func WriteFragment(w io.Writer, pages []Page, trim, rotate bool, enc BinStr) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, int16(len(pages))); err != nil {
		return err
	}
	for _, p := range pages {
		if err := writePage(bw, p, trim, rotate, enc); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadFragment parses a fragment written by WriteFragment.
func ReadFragment(data []byte, trim, rotate bool, enc BinStr) ([]Page, error) {
	r := bytes.NewReader(data)
	var numPages int16
	if err := binary.Read(r, binary.LittleEndian, &numPages); err != nil {
		return nil, errors.Wrap(err, "fragment page count")
	}
	pages := make([]Page, 0, numPages)
	for i := 0; i < int(numPages); i++ {
		p, err := readPage(r, trim, rotate, enc)
		if err != nil {
			return nil, errors.Wrapf(err, "fragment page %d", i)
		}
		pages = append(pages, p)
	}
	return pages, nil
}

// MergeFragments concatenates fragments written by WriteFragment (in
// subdirectory order) into one top-level binary manifest, re-emitting the
// top-level header and summing page counts (spec §4.7).
func MergeFragments(w io.Writer, trim, rotate bool, enc BinStr, fragments [][]byte) error {
	var allPages []Page
	for _, frag := range fragments {
		pages, err := ReadFragment(frag, trim, rotate, enc)
		if err != nil {
			return err
		}
		allPages = append(allPages, pages...)
	}
	return WriteBinary(w, Document{Trim: trim, Rotate: rotate, Pages: allPages}, enc)
}
