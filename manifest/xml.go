package manifest

import (
	"fmt"
	"io"
	"strconv"
)

// WriteXML emits the <atlas>...</atlas> manifest, per spec §6. Grounded on
// the original tool's SaveXml (original_source/crunch/packer.cpp): a thin
// hand-rolled writer, not encoding/xml, because the original's attribute
// order and boolean spelling ("true"/"false" vs 0/1) must be preserved
// byte-for-byte for deterministic builds (spec §8 property 4).
func WriteXML(w io.Writer, doc Document) error {
	if _, err := fmt.Fprintf(w, "<atlas><trim>%s</trim><rotate>%s</rotate>", boolStr(doc.Trim), boolStr(doc.Rotate)); err != nil {
		return err
	}
	for _, p := range doc.Pages {
		if _, err := fmt.Fprintf(w, "\t<tex n=\"%s\" w=\"%d\" h=\"%d\" format=\"%d\">\n", escape(p.Name), p.Width, p.Height, p.Format); err != nil {
			return err
		}
		for _, img := range p.Images {
			if err := writeXMLImage(w, img, doc.Trim, doc.Rotate); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(w, "\t</tex>\n"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, "</atlas>")
	return err
}

func writeXMLImage(w io.Writer, img Image, trim, rotate bool) error {
	if _, err := fmt.Fprintf(w, "\t\t<img fi=\"%d\" n=\"%s\" l=\"%s\" ld=\"%d\" d=\"%d\" x=\"%d\" y=\"%d\" w=\"%d\" h=\"%d\" ",
		img.FrameIndex, escape(img.Name), escape(img.Label), img.LoopDirection, img.Duration, img.X, img.Y, img.Width, img.Height); err != nil {
		return err
	}
	if trim {
		if _, err := fmt.Fprintf(w, "fx=\"%d\" fy=\"%d\" fw=\"%d\" fh=\"%d\" ", img.FrameX, img.FrameY, img.FrameW, img.FrameH); err != nil {
			return err
		}
	}
	if rotate {
		if _, err := fmt.Fprintf(w, "r=\"%s\" ", boolDigit(img.Rotated)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "ps=\"%d\" />\n", img.PaletteSlot)
	return err
}

func boolStr(b bool) string {
	return strconv.FormatBool(b)
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func escape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '&':
			out = append(out, "&amp;"...)
		case '"':
			out = append(out, "&quot;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}
