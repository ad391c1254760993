// Command crunch packs a set of PNG/Aseprite inputs into atlas pages and
// emits an XML, JSON, or binary manifest describing where every input
// landed. See spec §6 for the exact invocation shape.
package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/crunchpack/crunch/loader"
	"github.com/crunchpack/crunch/pipeline"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	app := &cli.App{
		Name:      "crunch",
		Usage:     "pack sprites into atlas pages",
		ArgsUsage: "<outputPrefix> <input1,input2,...> [paletteFilename]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Value: "xml", Usage: "manifest format: xml, json, binary"},
			&cli.IntFlag{Name: "texture-format", Usage: "opaque tag copied into the manifest, not interpreted"},
			&cli.BoolFlag{Name: "alpha", Usage: "premultiply RGBA pixels by alpha during decode"},
			&cli.BoolFlag{Name: "trim", Usage: "strip fully-transparent borders during decode"},
			&cli.BoolFlag{Name: "verbose", Usage: "emit progress logs"},
			&cli.BoolFlag{Name: "ignore", Usage: "bypass the hash short-circuit; always rebuild"},
			&cli.BoolFlag{Name: "unique", Usage: "enable dedup by content hash"},
			&cli.BoolFlag{Name: "rotate", Usage: "allow the packer to place rectangles rotated 90 degrees"},
			&cli.IntFlag{Name: "size", Usage: "square page size; overrides width/height"},
			&cli.IntFlag{Name: "width", Value: 4096, Usage: "page width"},
			&cli.IntFlag{Name: "height", Value: 4096, Usage: "page height"},
			&cli.IntFlag{Name: "padding", Usage: "pixel padding around every placed rectangle"},
			&cli.StringFlag{Name: "heuristic", Value: "best-short-side", Usage: "best-short-side, best-long-side, best-area"},
			&cli.StringFlag{Name: "binstr", Value: "null-term", Usage: "null-term, i16-prefixed, 7-bit-prefixed, fixed-16"},
			&cli.BoolFlag{Name: "last", Usage: "hash inputs by (path, mtime) rather than content bytes"},
			&cli.BoolFlag{Name: "dirs", Usage: "one atlas per first-level subdirectory, merged at top"},
			&cli.BoolFlag{Name: "nozero", Usage: "drop the 0 suffix when exactly one page is produced"},
			&cli.BoolFlag{Name: "indexed", Usage: "build an 8-bit indexed-palette atlas"},
			&cli.IntFlag{Name: "max-colors", Value: 256, Usage: "palette size ceiling for indexed atlases"},
		},
		Action: func(c *cli.Context) error {
			return run(c, log)
		},
	}

	if err := app.Run(os.Args); err != nil {
		var cfgErr *pipeline.ConfigError
		if errors.As(err, &cfgErr) {
			log.Error().Msg(cfgErr.Error())
			os.Exit(1)
		}
		log.Error().Msgf("%+v", err)
		os.Exit(1)
	}
}

func run(c *cli.Context, log zerolog.Logger) error {
	if c.NArg() < 2 {
		return cli.Exit("usage: crunch [options] <outputPrefix> <input1,input2,...> [paletteFilename]", 1)
	}

	outputDir, name := splitPrefix(c.Args().Get(0))
	inputs := strings.Split(c.Args().Get(1), ",")
	paletteFile := c.Args().Get(2)

	opts := pipeline.Options{
		OutputDir: outputDir, Name: name, Inputs: inputs, PaletteFile: paletteFile,

		Width: c.Int("width"), Height: c.Int("height"), Size: c.Int("size"),
		Padding: c.Int("padding"),

		HeuristicName: c.String("heuristic"),
		Rotate:        c.Bool("rotate"),
		Unique:        c.Bool("unique"),
		Trim:          c.Bool("trim"),
		Alpha:         c.Bool("alpha"),

		Indexed:       c.Bool("indexed"),
		MaxColors:     c.Int("max-colors"),
		TextureFormat: c.Int("texture-format"),

		FormatName: c.String("format"),
		BinStrName: c.String("binstr"),

		Dirs:    c.Bool("dirs"),
		NoZero:  c.Bool("nozero"),
		Force:   c.Bool("ignore"),
		Last:    c.Bool("last"),
		Verbose: c.Bool("verbose"),
	}

	if opts.Verbose {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	col := loader.Default()
	codec := col.PNG

	if opts.Dirs {
		result, err := pipeline.PartitionJob(opts, col, codec, log)
		if err != nil {
			return err
		}
		log.Info().Strs("built", result.Built).Int("unchanged", result.Unchanged).Msg("partition build complete")
		return nil
	}

	result, err := pipeline.BuildJob(opts, col, codec, log)
	if err != nil {
		return err
	}
	if !result.Skipped {
		log.Info().Int("pages", result.Pages).Msg("build complete")
	}
	return nil
}

// splitPrefix divides an outputPrefix CLI argument into its directory and
// base-name components, per spec §6.
func splitPrefix(prefix string) (dir, name string) {
	idx := strings.LastIndexAny(prefix, "/\\")
	if idx < 0 {
		return ".", prefix
	}
	return prefix[:idx], prefix[idx+1:]
}
