// Package pipeline implements the two atlas build drivers: a single-atlas
// BuildJob and the per-directory partition driver, wiring together
// loader, packer, page, palette, manifest and cache into the full spec §4
// flow. Adapted from the teacher's top-level Packer.Pack orchestration
// (packer.go), split into an Options-driven job the CLI configures.
package pipeline

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/crunchpack/crunch/manifest"
	"github.com/crunchpack/crunch/packer"
)

// Format selects the manifest projection emitted alongside the page PNGs.
type Format int

const (
	FormatXML Format = iota
	FormatJSON
	FormatBinary
)

// ParseFormat maps a CLI flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "xml":
		return FormatXML, nil
	case "json":
		return FormatJSON, nil
	case "binary", "bin":
		return FormatBinary, nil
	default:
		return 0, errors.Errorf("invalid format option %q", s)
	}
}

func (f Format) ext() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatBinary:
		return "crch"
	default:
		return "xml"
	}
}

// Options configures a build, populated directly from CLI flags (spec §6).
type Options struct {
	OutputDir   string
	Name        string
	Inputs      []string
	PaletteFile string

	Width, Height int
	Size          int // square shortcut; overrides Width/Height when > 0
	Padding       int

	HeuristicName string
	Rotate        bool
	Unique        bool
	Trim          bool
	Alpha         bool

	Indexed   bool
	MaxColors int

	TextureFormat int // opaque tag copied into the manifest verbatim, never interpreted

	FormatName string
	BinStrName string

	Dirs    bool
	NoZero  bool
	Force   bool
	Last    bool
	Verbose bool
}

// resolved is Options after validation, with the string flags parsed into
// their typed equivalents.
type resolved struct {
	width, height, padding int
	heuristic              packer.Heuristic
	format                 Format
	binstr                 manifest.BinStr
	maxColors              int
}

// resolve validates Options and returns the typed configuration a build
// needs, or a ConfigError describing the first invalid value.
func (o Options) resolve() (resolved, error) {
	var r resolved

	r.width, r.height = o.Width, o.Height
	if o.Size > 0 {
		r.width, r.height = o.Size, o.Size
	}
	if r.width <= 0 || r.height <= 0 {
		return r, configErrorf("page dimensions must be positive, got %dx%d", r.width, r.height)
	}
	if o.Padding < 0 {
		return r, configErrorf("padding must not be negative, got %d", o.Padding)
	}
	r.padding = o.Padding

	heur, err := packer.ParseHeuristic(o.HeuristicName)
	if err != nil {
		return r, &ConfigError{msg: err.Error()}
	}
	r.heuristic = heur

	format, err := ParseFormat(o.FormatName)
	if err != nil {
		return r, &ConfigError{msg: err.Error()}
	}
	r.format = format

	binstr, err := manifest.ParseBinStr(o.BinStrName)
	if err != nil {
		return r, &ConfigError{msg: err.Error()}
	}
	r.binstr = binstr

	r.maxColors = o.MaxColors
	if r.maxColors <= 0 {
		r.maxColors = 256
	}
	if r.maxColors > 256 {
		return r, configErrorf("max colors must be <= 256, got %d", r.maxColors)
	}

	if o.Name == "" {
		return r, configErrorf("output name must not be empty")
	}

	return r, nil
}

// cacheArgs renders the option fields that affect build output into a
// stable argument list for the cache hash (spec §4.6): anything that
// changes this list forces a rebuild even if no input file changed.
func (o Options) cacheArgs() []string {
	return []string{
		fmt.Sprintf("w=%d", o.Width), fmt.Sprintf("h=%d", o.Height), fmt.Sprintf("size=%d", o.Size),
		fmt.Sprintf("pad=%d", o.Padding), fmt.Sprintf("heur=%s", o.HeuristicName),
		fmt.Sprintf("rotate=%v", o.Rotate), fmt.Sprintf("unique=%v", o.Unique),
		fmt.Sprintf("trim=%v", o.Trim), fmt.Sprintf("alpha=%v", o.Alpha),
		fmt.Sprintf("indexed=%v", o.Indexed), fmt.Sprintf("maxcolors=%d", o.MaxColors),
		fmt.Sprintf("format=%s", o.FormatName), fmt.Sprintf("binstr=%s", o.BinStrName),
		fmt.Sprintf("dirs=%v", o.Dirs), fmt.Sprintf("nozero=%v", o.NoZero),
		fmt.Sprintf("last=%v", o.Last), fmt.Sprintf("palette=%s", o.PaletteFile),
		fmt.Sprintf("texfmt=%d", o.TextureFormat),
	}
}

// ConfigError marks an invalid Options value. The CLI recognizes it and
// logs only its message; it exits with status 1, the same status as a
// build-time failure.
type ConfigError struct{ msg string }

func (e *ConfigError) Error() string { return e.msg }

func configErrorf(format string, args ...interface{}) error {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}
