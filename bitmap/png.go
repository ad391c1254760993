package bitmap

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/pkg/errors"
)

// PNGCodec is the external collaborator contract for PNG decode/encode,
// per spec §6. Any implementer may substitute a standard library here;
// Decode and Encode are pinned only to the shapes the pipeline needs.
type PNGCodec interface {
	// Decode reads a PNG and returns a fresh, trim-ready Bitmap (FrameIndex
	// 0, no animation metadata). Palette color types (including 4-bit,
	// which is expanded to 8-bit) decode to an indexed Bitmap; everything
	// else decodes to RGBA.
	Decode(r io.Reader, name string) (*Bitmap, error)
	// Encode writes b as a PNG: indexed if b.IsIndexed(), RGBA8 otherwise.
	Encode(w io.Writer, b *Bitmap) error
}

// StdPNGCodec backs PNGCodec with the standard library image/png package,
// per spec §6's explicit license to substitute stdlib for this collaborator.
type StdPNGCodec struct{}

func (StdPNGCodec) Decode(r io.Reader, name string) (*Bitmap, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, errors.Wrapf(err, "decode png %s", name)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if pimg, ok := img.(*image.Paletted); ok {
		pal := make([]uint32, len(pimg.Palette))
		for i, c := range pimg.Palette {
			pal[i] = packRGBA(c)
		}
		idx := make([]uint8, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				idx[y*w+x] = pimg.ColorIndexAt(bounds.Min.X+x, bounds.Min.Y+y)
			}
		}
		return &Bitmap{
			Name: name, Width: w, Height: h, FrameW: w, FrameH: h,
			Indexed: idx, Palette: pal,
		}, nil
	}

	px := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bch, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			px[y*w+x] = uint32(r>>8) | uint32(g>>8)<<8 | uint32(bch>>8)<<16 | uint32(a>>8)<<24
		}
	}
	return &Bitmap{
		Name: name, Width: w, Height: h, FrameW: w, FrameH: h,
		RGBA: px,
	}, nil
}

func (StdPNGCodec) Encode(w io.Writer, b *Bitmap) error {
	if b.IsIndexed() {
		pal := make(color.Palette, len(b.Palette))
		for i, c := range b.Palette {
			pal[i] = unpackRGBA(c)
		}
		img := image.NewPaletted(image.Rect(0, 0, b.Width, b.Height), pal)
		copy(img.Pix, b.Indexed)
		return errors.Wrap(png.Encode(w, img), "encode indexed png")
	}

	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for i, px := range b.RGBA {
		img.Pix[i*4+0] = byte(px)
		img.Pix[i*4+1] = byte(px >> 8)
		img.Pix[i*4+2] = byte(px >> 16)
		img.Pix[i*4+3] = byte(px >> 24)
	}
	return errors.Wrap(png.Encode(w, img), "encode rgba png")
}

func packRGBA(c color.Color) uint32 {
	r, g, b, a := c.RGBA()
	return uint32(r>>8) | uint32(g>>8)<<8 | uint32(b>>8)<<16 | uint32(a>>8)<<24
}

func unpackRGBA(v uint32) color.RGBA {
	return color.RGBA{
		R: byte(v),
		G: byte(v >> 8),
		B: byte(v >> 16),
		A: byte(v >> 24),
	}
}
