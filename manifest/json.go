package manifest

import (
	"encoding/json"
	"io"
)

type jsonImage struct {
	FI int    `json:"fi"`
	N  string `json:"n"`
	L  string `json:"l"`
	LD int    `json:"ld"`
	D  int    `json:"d"`
	X  int    `json:"x"`
	Y  int    `json:"y"`
	W  int    `json:"w"`
	H  int    `json:"h"`

	FX *int `json:"fx,omitempty"`
	FY *int `json:"fy,omitempty"`
	FW *int `json:"fw,omitempty"`
	FH *int `json:"fh,omitempty"`

	R *bool `json:"r,omitempty"`

	PS int `json:"ps"`
}

type jsonTexture struct {
	Name   string      `json:"name"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Format int         `json:"format"`
	Images []jsonImage `json:"images"`
}

type jsonDocument struct {
	Trim     bool          `json:"trim"`
	Rotate   bool          `json:"rotate"`
	Textures []jsonTexture `json:"textures"`
}

// WriteJSON emits the JSON manifest projection, per spec §6: the same
// fields as XML, abbreviated keys.
func WriteJSON(w io.Writer, doc Document) error {
	out := jsonDocument{Trim: doc.Trim, Rotate: doc.Rotate}
	for _, p := range doc.Pages {
		tex := jsonTexture{Name: p.Name, Width: p.Width, Height: p.Height, Format: p.Format}
		for _, img := range p.Images {
			img := img // the frame-field pointers below must not alias the loop variable
			ji := jsonImage{
				FI: img.FrameIndex, N: img.Name, L: img.Label, LD: img.LoopDirection,
				D: img.Duration, X: img.X, Y: img.Y, W: img.Width, H: img.Height, PS: img.PaletteSlot,
			}
			if doc.Trim {
				ji.FX, ji.FY, ji.FW, ji.FH = &img.FrameX, &img.FrameY, &img.FrameW, &img.FrameH
			}
			if doc.Rotate {
				r := img.Rotated
				ji.R = &r
			}
			tex.Images = append(tex.Images, ji)
		}
		out.Textures = append(out.Textures, tex)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	return enc.Encode(out)
}
