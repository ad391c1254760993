package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"

	"github.com/crunchpack/crunch/bitmap"
	"github.com/crunchpack/crunch/cache"
	"github.com/crunchpack/crunch/loader"
	"github.com/crunchpack/crunch/manifest"
	"github.com/crunchpack/crunch/palette"
)

// PartitionResult reports what the dirs driver did across every
// subdirectory, for the CLI's logging and exit-code decisions.
type PartitionResult struct {
	Built      []string // subdirectory atlas names that were rebuilt
	Unchanged  int
	TotalPages int
}

// PartitionJob implements --dirs (spec §4.7): one independent atlas per
// immediate subdirectory of opts.Inputs[0], named <name>_<subdir>, whose
// binary/XML/JSON page fragments are merged under one re-emitted
// top-level header sharing opts.Name.
func PartitionJob(opts Options, col loader.Collaborators, codec bitmap.PNGCodec, log zerolog.Logger) (PartitionResult, error) {
	if len(opts.Inputs) != 1 {
		return PartitionResult{}, configErrorf("--dirs requires exactly one input directory, got %d", len(opts.Inputs))
	}
	root := opts.Inputs[0]
	subdirs, err := immediateSubdirs(root)
	if err != nil {
		return PartitionResult{}, err
	}

	cfg, err := opts.resolve()
	if err != nil {
		return PartitionResult{}, err
	}

	var result PartitionResult
	var binaryFragments [][]byte
	var mergedPages []manifest.Page

	for _, sub := range subdirs {
		subName := fmt.Sprintf("%s_%s", opts.Name, sub)
		subOpts := opts
		subOpts.Inputs = []string{filepath.Join(root, sub)}
		subOpts.Name = subName
		subOpts.NoZero = false // nozero never applies inside a dirs partition, per SPEC_FULL.md

		pages, skipped, err := buildPartitionAtlas(subOpts, cfg, col, codec, log)
		if err != nil {
			return PartitionResult{}, errors.Wrapf(err, "subdirectory %s", sub)
		}
		if skipped {
			result.Unchanged++
			continue
		}
		result.Built = append(result.Built, subName)
		result.TotalPages += len(pages)

		switch cfg.format {
		case FormatBinary:
			var buf []byte
			buf, err = encodeFragment(pages, opts.Trim, opts.Rotate, cfg.binstr)
			if err != nil {
				return PartitionResult{}, err
			}
			binaryFragments = append(binaryFragments, buf)
		default:
			mergedPages = append(mergedPages, pages...)
		}
	}

	if len(result.Built) == 0 {
		log.Info().Str("name", opts.Name).Msg("atlas is unchanged: " + opts.Name)
		return result, nil
	}

	if err := writePartitionManifest(opts, cfg, binaryFragments, mergedPages); err != nil {
		return PartitionResult{}, err
	}

	return result, nil
}

func immediateSubdirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "read directory %s", root)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// buildPartitionAtlas runs one subdirectory through the same load/pack/
// shrink/blit/PNG-write steps as BuildJob, returning its manifest pages
// instead of writing a standalone manifest file.
func buildPartitionAtlas(opts Options, cfg resolved, col loader.Collaborators, codec bitmap.PNGCodec, log zerolog.Logger) ([]manifest.Page, bool, error) {
	newHash, err := cache.Hash(opts.Inputs, opts.cacheArgs(), opts.Last)
	if err != nil {
		return nil, false, errors.Wrap(err, "hash inputs")
	}
	if !opts.Force {
		stored, ok, err := cache.LoadStored(opts.OutputDir, opts.Name)
		if err != nil {
			return nil, false, errors.Wrap(err, "load stored hash")
		}
		if ok && stored == newHash {
			return nil, true, nil
		}
	}

	bitmaps, err := loader.Load(opts.Inputs, "", col, loader.Options{Trim: opts.Trim, Alpha: opts.Alpha, Verbose: opts.Verbose}, log)
	if err != nil {
		return nil, false, errors.Wrap(err, "load inputs")
	}

	var pagePalette []uint32
	if opts.Indexed {
		pagePalette, err = buildPagePalette(opts.PaletteFile, bitmaps, cfg.maxColors)
		if err != nil {
			return nil, false, err
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
		return nil, false, errors.Wrap(err, "pack")
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, false, errors.Wrap(err, "create output dir")
	}

	var manifestPages []manifest.Page
	for i, p := range pages {
		p.Shrink()
		p.Blit(pagePalette)

		baseName := pageFileName(opts.Name, i, len(pages), opts.NoZero, true)
		pngPath := filepath.Join(opts.OutputDir, baseName+".png")
		if err := writePNG(codec, pngPath, p.ToBitmap(baseName)); err != nil {
			return nil, false, err
		}
		manifestPages = append(manifestPages, buildManifestPage(baseName, p, opts.TextureFormat))
	}

	if err := cache.SaveStored(opts.OutputDir, opts.Name, newHash); err != nil {
		return nil, false, errors.Wrap(err, "save hash")
	}

	return manifestPages, false, nil
}

func encodeFragment(pages []manifest.Page, trim, rotate bool, enc manifest.BinStr) ([]byte, error) {
	var buf bytes.Buffer
	if err := manifest.WriteFragment(&buf, pages, trim, rotate, enc); err != nil {
		return nil, errors.Wrap(err, "encode fragment")
	}
	return buf.Bytes(), nil
}

func writePartitionManifest(opts Options, cfg resolved, binaryFragments [][]byte, xmlJSONPages []manifest.Page) error {
	switch cfg.format {
	case FormatBinary:
		path := filepath.Join(opts.OutputDir, opts.Name+".crch")
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "create %s", path)
		}
		defer f.Close()
		return errors.Wrap(manifest.MergeFragments(f, opts.Trim, opts.Rotate, cfg.binstr, binaryFragments), "merge binary fragments")
	case FormatJSON:
		return writeManifest(opts.OutputDir, opts.Name, manifest.Document{Trim: opts.Trim, Rotate: opts.Rotate, Pages: xmlJSONPages}, FormatJSON, cfg.binstr)
	default:
		return writeManifest(opts.OutputDir, opts.Name, manifest.Document{Trim: opts.Trim, Rotate: opts.Rotate, Pages: xmlJSONPages}, FormatXML, cfg.binstr)
	}
}
