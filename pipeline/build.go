package pipeline

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"

	"github.com/crunchpack/crunch/bitmap"
	"github.com/crunchpack/crunch/cache"
	"github.com/crunchpack/crunch/loader"
	"github.com/crunchpack/crunch/manifest"
	"github.com/crunchpack/crunch/packer"
	"github.com/crunchpack/crunch/page"
	"github.com/crunchpack/crunch/palette"
)

// Result reports what a build actually did, for the CLI's exit-code and
// logging decisions (spec §7).
type Result struct {
	Skipped bool
	Pages   int
}

// BuildJob runs the single-atlas pipeline (spec §4): load, pack, shrink,
// palette-assign, write PNGs, emit the manifest. Grounded on the teacher's
// Packer.Pack driver loop (packer.go), generalized from one fixed-size
// canvas to the spec's open-ended multi-page pack.
func BuildJob(opts Options, col loader.Collaborators, codec bitmap.PNGCodec, log zerolog.Logger) (Result, error) {
	cfg, err := opts.resolve()
	if err != nil {
		return Result{}, err
	}

	hashInputs := append([]string{}, opts.Inputs...)
	if opts.PaletteFile != "" {
		hashInputs = append(hashInputs, opts.PaletteFile)
	}
	newHash, err := cache.Hash(hashInputs, opts.cacheArgs(), opts.Last)
	if err != nil {
		return Result{}, errors.Wrap(err, "hash inputs")
	}

	if !opts.Force {
		stored, ok, err := cache.LoadStored(opts.OutputDir, opts.Name)
		if err != nil {
			return Result{}, errors.Wrap(err, "load stored hash")
		}
		if ok && stored == newHash {
			log.Info().Str("name", opts.Name).Msg("atlas is unchanged: " + opts.Name)
			return Result{Skipped: true}, nil
		}
	}

	if err := cache.Sweep(opts.OutputDir, opts.Name); err != nil {
		return Result{}, errors.Wrap(err, "sweep stale outputs")
	}

	bitmaps, err := loader.Load(opts.Inputs, "", col, loader.Options{Trim: opts.Trim, Alpha: opts.Alpha, Verbose: opts.Verbose}, log)
	if err != nil {
		return Result{}, errors.Wrap(err, "load inputs")
	}
	if opts.Verbose {
		log.Debug().Int("count", len(bitmaps)).Msg("loaded bitmaps")
	}

	var pagePalette []uint32
	if opts.Indexed {
		pagePalette, err = buildPagePalette(opts.PaletteFile, bitmaps, cfg.maxColors)
		if err != nil {
			return Result{}, err
		}
		for _, b := range bitmaps {
			if !b.IsIndexed() {
				palette.Reduce(b, cfg.maxColors)
			}
		}
	}

	slices.SortStableFunc(bitmaps, func(a, b *bitmap.Bitmap) int {
		return a.Area() - b.Area()
	})

	pages, err := packAll(bitmaps, cfg.width, cfg.height, cfg.padding, cfg.heuristic, opts.Unique, opts.Rotate)
	if err != nil {
		return Result{}, errors.Wrap(err, "pack")
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return Result{}, errors.Wrap(err, "create output dir")
	}

	doc := manifest.Document{Trim: opts.Trim, Rotate: opts.Rotate}
	for i, p := range pages {
		p.Shrink()
		p.Blit(pagePalette)

		baseName := pageFileName(opts.Name, i, len(pages), opts.NoZero, false)
		pngPath := filepath.Join(opts.OutputDir, baseName+".png")
		if err := writePNG(codec, pngPath, p.ToBitmap(baseName)); err != nil {
			return Result{}, err
		}

		doc.Pages = append(doc.Pages, buildManifestPage(baseName, p, opts.TextureFormat))

		if opts.Verbose && i == 0 {
			writePreview(p, opts.OutputDir, opts.Name, log)
		}
	}

	if err := writeManifest(opts.OutputDir, opts.Name, doc, cfg.format, cfg.binstr); err != nil {
		return Result{}, err
	}

	if err := cache.SaveStored(opts.OutputDir, opts.Name, newHash); err != nil {
		return Result{}, errors.Wrap(err, "save hash")
	}

	return Result{Pages: len(pages)}, nil
}

// packAll repeatedly opens fresh pages and inserts the remaining bitmaps
// into the current one until every bitmap is placed, per spec §4.2.
func packAll(bitmaps []*bitmap.Bitmap, width, height, pad int, heur packer.Heuristic, unique, rotate bool) ([]*page.Page, error) {
	cur := page.New(width, height, pad, heur, unique, rotate)
	pages := []*page.Page{cur}
	for _, b := range bitmaps {
		if cur.Insert(b) {
			continue
		}
		cur = page.New(width, height, pad, heur, unique, rotate)
		pages = append(pages, cur)
		if !cur.Insert(b) {
			return nil, errors.Errorf("packing failed, could not fit bitmap: %s", b.Name)
		}
	}
	return pages, nil
}

// pageFileName is the <name>[<index>] stem for a page's PNG/manifest
// entry. NoZero only collapses the page-index suffix for a lone top-level
// page; partitioned subdirectory builds always keep it (SPEC_FULL.md's
// supplemented nozero/dirs interaction).
func pageFileName(name string, index, total int, noZero, partitioned bool) string {
	if total == 1 && noZero && !partitioned {
		return name
	}
	return fmt.Sprintf("%s%d", name, index)
}

func buildManifestPage(name string, p *page.Page, textureFormat int) manifest.Page {
	mp := manifest.Page{Name: name, Width: p.Width, Height: p.Height, Format: textureFormat}
	bitmaps := append([]*bitmap.Bitmap{}, p.Bitmaps...)
	slices.SortStableFunc(bitmaps, func(a, b *bitmap.Bitmap) int {
		if a.Name != b.Name {
			if a.Name < b.Name {
				return -1
			}
			return 1
		}
		return a.FrameIndex - b.FrameIndex
	})
	for _, b := range bitmaps {
		mp.Images = append(mp.Images, manifest.Image{
			FrameIndex: b.FrameIndex, Name: b.Name, Label: b.Label,
			LoopDirection: b.LoopDirection, Duration: b.Duration,
			X: b.Pos.X, Y: b.Pos.Y, Width: b.Width, Height: b.Height,
			FrameX: b.FrameX, FrameY: b.FrameY, FrameW: b.FrameW, FrameH: b.FrameH,
			Rotated: b.Pos.Rot, PaletteSlot: b.PaletteSlot,
		})
	}
	return mp
}

func writePNG(codec bitmap.PNGCodec, path string, b *bitmap.Bitmap) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()
	return errors.Wrapf(codec.Encode(f, b), "encode %s", path)
}

func writeManifest(outputDir, name string, doc manifest.Document, format Format, binstr manifest.BinStr) error {
	path := filepath.Join(outputDir, name+"."+format.ext())
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	switch format {
	case FormatJSON:
		return errors.Wrap(manifest.WriteJSON(f, doc), "write json manifest")
	case FormatBinary:
		return errors.Wrap(manifest.WriteBinary(f, doc, binstr), "write binary manifest")
	default:
		return errors.Wrap(manifest.WriteXML(f, doc), "write xml manifest")
	}
}

func writePreview(p *page.Page, outputDir, name string, log zerolog.Logger) {
	thumb := p.ToBitmap(name).Preview(256)
	path := filepath.Join(outputDir, name+".preview.png")
	f, err := os.Create(path)
	if err != nil {
		log.Warn().Err(err).Msg("could not write preview")
		return
	}
	defer f.Close()
	if err := png.Encode(f, thumb); err != nil {
		log.Warn().Err(err).Msg("could not write preview")
	}
}

func buildPagePalette(paletteFile string, bitmaps []*bitmap.Bitmap, maxColors int) ([]uint32, error) {
	if paletteFile == "" {
		return make([]uint32, maxColors), nil
	}
	data, err := os.ReadFile(paletteFile)
	if err != nil {
		return nil, errors.Wrapf(err, "read palette file %s", paletteFile)
	}
	colors, _, _, err := palette.ParseFile(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse palette file %s", paletteFile)
	}
	if len(colors) < maxColors {
		padded := make([]uint32, maxColors)
		copy(padded, colors)
		return padded, nil
	}
	return colors[:maxColors], nil
}
