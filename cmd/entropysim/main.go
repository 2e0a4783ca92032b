// Command entropysim codes synthetic frames through the entropy coders and
// reports their size. It is meant for comparing options without a full
// codec around the coders.
//
// Usage:
//
//	entropysim run [options]     code frames, verify the round trip, print sizes
//	entropysim model [options]   print the motion vector model after adaptation
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/kr/pretty"

	"github.com/deepteams/entropy"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = runFrames(os.Args[2:], os.Stdout, os.Stderr)
	case "model":
		err = runModel(os.Args[2:], os.Stdout)
	case "-h", "-help", "--help", "help":
		printUsage(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "entropysim: unknown command %q\n\n", os.Args[1])
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "entropysim: %v\n", err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `Usage:
  entropysim run [options]     Code synthetic frames and print their size
  entropysim model [options]   Print the adapted motion vector model

Run "entropysim <command> -h" for command-specific options.
`)
}

// config is the set of flags shared by both commands.
type config struct {
	frames   int
	tiles    int
	cols     int
	rows     int
	q        int
	seed     int64
	opts     entropy.Options
	lambda   int64
	verbose  bool
	keyEvery int
	multi    *bool
}

func (c *config) register(fs *flag.FlagSet) {
	fs.IntVar(&c.frames, "frames", 8, "number of frames")
	fs.IntVar(&c.tiles, "tiles", 4, "tiles per frame")
	fs.IntVar(&c.cols, "cols", 16, "tile width in 4x4 units")
	fs.IntVar(&c.rows, "rows", 16, "tile height in 4x4 units")
	fs.IntVar(&c.q, "q", 12, "dequantization step")
	fs.Int64Var(&c.seed, "seed", 1, "random seed")
	fs.IntVar(&c.keyEvery, "key", 0, "key frame interval (0 = first frame only)")
	fs.IntVar(&c.opts.BitDepth, "bitdepth", 8, "bit depth 8/10/12")
	fs.IntVar(&c.opts.Workers, "workers", 0, "tile workers (0 = all CPUs)")
	fs.BoolVar(&c.opts.AllowHighPrecisionMV, "hp", false, "eighth-pel motion vectors")
	fs.BoolVar(&c.opts.TrellisShortcut, "shortcut", false, "trellis shortcut heuristic")
	fs.Int64Var(&c.lambda, "lambda", 0, "trellis rate multiplier (0 = no trellis)")
	fs.BoolVar(&c.verbose, "v", false, "log tile and adaptation details to stderr")
	multi := fs.Bool("multi", false, "multi-symbol coding instead of binary trees")
	fs.Func("strategy", "tree or multi", func(s string) error {
		switch s {
		case "tree":
			c.opts.Strategy = entropy.StrategyTree
		case "multi":
			c.opts.Strategy = entropy.StrategyMultiSymbol
		default:
			return fmt.Errorf("unknown strategy %q", s)
		}
		return nil
	})
	c.multi = multi
}

func (c *config) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *c.multi {
		c.opts.Strategy = entropy.StrategyMultiSymbol
	}
	if c.frames < 1 || c.tiles < 1 || c.q < 1 {
		return fmt.Errorf("frames, tiles and q must be positive")
	}
	return nil
}

func (c *config) frameType(f int) entropy.FrameType {
	switch {
	case f == 0 || (c.keyEvery > 0 && f%c.keyEvery == 0):
		return entropy.KeyFrame
	case c.frameType(f-1) == entropy.KeyFrame:
		return entropy.InterAfterKey
	}
	return entropy.InterFrame
}

// simulate codes the configured frames, checking every decoded value, and
// calls report after each frame. It returns the final model.
func simulate(c *config, report func(f int, ft entropy.FrameType, bytes int, counts *entropy.Counts)) (*entropy.Model, error) {
	tiles := make([]entropy.Tile, c.tiles)
	for i := range tiles {
		tiles[i] = entropy.Tile{Cols: c.cols, Rows: c.rows}
	}
	gen := newSynth(c.seed, int32(c.q), c.opts.AllowHighPrecisionMV)
	model := entropy.NewModel()
	for f := 0; f < c.frames; f++ {
		ft := c.frameType(f)
		syms := make([][]symbol, len(tiles))
		for i, t := range tiles {
			syms[i] = gen.tile(t, ft != entropy.KeyFrame)
		}
		data, counts, err := entropy.EncodeTiles(model, tiles, &c.opts, func(i int, e *entropy.TileEncoder) error {
			return encodeSymbols(e, syms[i], c.lambda)
		})
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", f, err)
		}
		_, err = entropy.DecodeTiles(model, tiles, data, &c.opts, func(i int, d *entropy.TileDecoder) error {
			return verifySymbols(d, syms[i])
		})
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", f, err)
		}
		size := 0
		for _, d := range data {
			size += len(d)
		}
		if report != nil {
			report(f, ft, size, counts)
		}
		if model, err = entropy.Adapt(model, counts, ft, &c.opts); err != nil {
			return nil, err
		}
	}
	return model, nil
}

func encodeSymbols(e *entropy.TileEncoder, syms []symbol, lambda int64) error {
	for i := range syms {
		s := &syms[i]
		if s.isMV {
			if err := e.EncodeMV(s.mv, s.prec); err != nil {
				return err
			}
			continue
		}
		if lambda > 0 {
			if _, err := e.OptimizeBlock(&s.params, s.coeffs, s.levels, nil, lambda); err != nil {
				return err
			}
		}
		if _, err := e.EncodeBlock(&s.params, s.levels); err != nil {
			return err
		}
	}
	return nil
}

// verifySymbols decodes syms and compares them with what was encoded. No
// quantization matrix is used, so every coefficient is its level times the
// AC step, except raster position 0, which every scan codes first, with
// the DC step.
func verifySymbols(d *entropy.TileDecoder, syms []symbol) error {
	out := make([]int32, 1024)
	for i := range syms {
		s := &syms[i]
		if s.isMV {
			v, err := d.DecodeMV(s.prec)
			if err != nil {
				return err
			}
			if v != s.mv {
				return fmt.Errorf("symbol %d: decoded %+v, encoded %+v", i, v, s.mv)
			}
			continue
		}
		if _, err := d.DecodeBlock(&s.params, out); err != nil {
			return err
		}
		for rc, l := range s.levels {
			want := l * s.params.Dequant.AC
			if rc == 0 {
				want = l * s.params.Dequant.DC
			}
			if out[rc] != want {
				return fmt.Errorf("symbol %d: coefficient %d decoded as %d, want %d", i, rc, out[rc], want)
			}
		}
	}
	return nil
}

// --- run ---

func runFrames(args []string, stdout, stderr io.Writer) error {
	var c config
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	c.register(fs)
	if err := c.parse(fs, args); err != nil {
		return err
	}
	if c.verbose {
		c.opts.Logger = log.New(stderr, "", log.Lmicroseconds)
	}

	total := 0
	_, err := simulate(&c, func(f int, ft entropy.FrameType, size int, counts *entropy.Counts) {
		total += size
		fmt.Fprintf(stdout, "frame %3d  %-13s %8d bytes  %8d tokens\n", f, frameTypeName(ft), size, counts.Coeff.Total())
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "total      %d bytes in %d frames\n", total, c.frames)
	return nil
}

func frameTypeName(ft entropy.FrameType) string {
	switch ft {
	case entropy.KeyFrame:
		return "key"
	case entropy.InterAfterKey:
		return "inter (first)"
	}
	return "inter"
}

// --- model ---

func runModel(args []string, stdout io.Writer) error {
	var c config
	fs := flag.NewFlagSet("model", flag.ContinueOnError)
	fs.SetOutput(stdout)
	c.register(fs)
	if err := c.parse(fs, args); err != nil {
		return err
	}

	model, err := simulate(&c, nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "after %d frames:\n", c.frames)
	if _, err := pretty.Fprintf(stdout, "joints: %v\n", model.MV.Joints); err != nil {
		return err
	}
	for i, name := range []string{"vertical", "horizontal"} {
		if _, err := pretty.Fprintf(stdout, "%s: %# v\n", name, model.MV.Comps[i]); err != nil {
			return err
		}
	}
	return nil
}
