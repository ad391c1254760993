// Package loader implements the Input Loader: walks a directory or file
// list, decodes PNG/Aseprite input into Bitmaps in deterministic order.
// Grounded on the teacher's AddImageReader/addImage (inputImage.go) —
// generalized from a single io.Reader entry point to the spec's directory
// walk plus the optional bounded-parallel decode spec §5 permits, using
// golang.org/x/sync/errgroup (as github.com/murkland/bnrom does for its
// sprite-sheet decode) so the fan-out never disturbs load order.
package loader

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/crunchpack/crunch/bitmap"
)

// Options controls decode-time bitmap transforms, mirroring the relevant
// subset of spec §3's Options table.
type Options struct {
	Trim    bool
	Alpha   bool
	Verbose bool
}

// Collaborators bundles the out-of-scope decoders the loader is built
// against (spec §6).
type Collaborators struct {
	PNG      bitmap.PNGCodec
	Aseprite bitmap.AsepriteDecoder
}

// Default wires the standard-library-backed collaborator implementations.
func Default() Collaborators {
	return Collaborators{PNG: bitmap.StdPNGCodec{}, Aseprite: bitmap.StdAsepriteDecoder{}}
}

// entry is one file queued for decode, with the logical name it should be
// recorded under (namePrefix + relative path, per spec §3's Bitmap.name).
type entry struct {
	path string
	name string
}

// Load walks every path in paths (files are taken as-is, directories are
// walked depth-first in sorted order, per spec §5's ordering guarantee)
// and decodes each into one or more Bitmaps, returned in load order.
func Load(paths []string, namePrefix string, col Collaborators, opts Options, log zerolog.Logger) ([]*bitmap.Bitmap, error) {
	var entries []entry
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.Wrapf(err, "input %s", p)
		}
		if info.IsDir() {
			dirEntries, err := walkDir(p, namePrefix)
			if err != nil {
				return nil, err
			}
			entries = append(entries, dirEntries...)
			continue
		}
		entries = append(entries, entry{path: p, name: namePrefix + baseName(p)})
	}

	var bar *progressbar.ProgressBar
	if opts.Verbose {
		bar = progressbar.Default(int64(len(entries)), "loading")
	}

	results := make([][]*bitmap.Bitmap, len(entries))
	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			bitmaps, err := decodeOne(e, col, opts, log)
			if err != nil {
				return err
			}
			results[i] = bitmaps
			if bar != nil {
				bar.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []*bitmap.Bitmap
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

func walkDir(root, namePrefix string) ([]entry, error) {
	var files []string
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", root)
	}
	sort.Strings(files)

	entries := make([]entry, len(files))
	for i, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			rel = f
		}
		rel = strings.TrimSuffix(rel, filepath.Ext(rel))
		entries[i] = entry{path: f, name: namePrefix + filepath.ToSlash(rel)}
	}
	return entries, nil
}

func baseName(p string) string {
	return strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
}

func decodeOne(e entry, col Collaborators, opts Options, log zerolog.Logger) ([]*bitmap.Bitmap, error) {
	f, err := os.Open(e.path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", e.path)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(e.path))
	var bitmaps []*bitmap.Bitmap

	switch ext {
	case ".ase", ".aseprite":
		bitmaps, err = col.Aseprite.Decode(f, e.name)
		if err != nil {
			return nil, err
		}
	case ".png":
		b, err := col.PNG.Decode(f, e.name)
		if err != nil {
			return nil, err
		}
		bitmaps = []*bitmap.Bitmap{b}
	default:
		return nil, nil
	}

	for _, b := range bitmaps {
		if opts.Alpha {
			b.Premultiply()
		}
		if opts.Trim {
			b.Trim(log, opts.Verbose)
		}
		b.ComputeHash()
	}
	return bitmaps, nil
}
