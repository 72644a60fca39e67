package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ironsheep/huecycle/internal/imaging"
	"github.com/ironsheep/huecycle/internal/pipeline"
	"github.com/ironsheep/huecycle/internal/render"
	"github.com/ironsheep/huecycle/internal/sequencer"
	"github.com/spf13/cobra"
)

type renderFlags struct {
	steps      int
	durationMs int
	frameDir   string
	output     string
	maxSize    int
	workers    int
	dither     bool
	noHint     bool
	quiet      bool
}

// options merges flags over the default layout for source. Only flags the
// user set override the defaults.
func (f *renderFlags) options(cmd *cobra.Command, source string) pipeline.Options {
	opts := pipeline.Defaults(source)
	flags := cmd.Flags()

	if flags.Changed("steps") {
		opts.Steps = f.steps
	}
	if flags.Changed("duration") {
		opts.CycleDuration = time.Duration(f.durationMs) * time.Millisecond
	}
	if f.frameDir != "" {
		opts.FrameDir = f.frameDir
	}
	if f.output != "" {
		opts.Output = f.output
	}
	opts.MaxSize = f.maxSize
	opts.Workers = f.workers
	opts.Dither = f.dither
	opts.WriteHint = !f.noHint
	return opts
}

func newRenderCmd() *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render <image>",
		Short: "Render hue-shifted frames and encode the animated GIF",
		Long: `Render one frame per hue step and encode them into a looping GIF.

By default frames go to <base>/<base>_frames/<step>_<base>.<ext> and the GIF to
<base>/<base>.gif, relative to the working directory. An ffmpeg command that
builds a higher quality GIF from the same frames is written next to the GIF.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := f.options(cmd, args[0])
			out := cmd.OutOrStdout()
			if !f.quiet {
				opts.Progress = progressPrinter(out)
			}

			res, err := pipeline.NewRunner(nil).Run(opts)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Wrote %d frames to %s\n", len(res.Frames), opts.FrameDir)
			fmt.Fprintf(out, "Wrote %s (%dx%d, %dcs per frame)\n", res.Output, res.Width, res.Height, res.DelayCs)
			if res.HintPath != "" {
				fmt.Fprintf(out, "ffmpeg command in %s\n", res.HintPath)
			}
			fmt.Fprintf(out, "Finished in: %.2fs!\n", res.Elapsed.Seconds())
			return nil
		},
	}

	fl := cmd.Flags()
	fl.IntVarP(&f.steps, "steps", "n", pipeline.DefaultSteps, "frames in one full hue rotation (1-360)")
	fl.IntVarP(&f.durationMs, "duration", "d", int(pipeline.DefaultCycleDuration/time.Millisecond), "duration of one cycle in milliseconds")
	fl.StringVar(&f.frameDir, "frames", "", "frame directory (default <base>/<base>_frames)")
	fl.StringVarP(&f.output, "out", "o", "", "output GIF (default <base>/<base>.gif)")
	fl.IntVar(&f.maxSize, "max-size", 0, "downscale so neither side exceeds this many pixels (0 keeps the size)")
	fl.IntVar(&f.workers, "workers", 0, "frames rendered concurrently (0 = one per CPU)")
	fl.BoolVar(&f.dither, "dither", true, "Floyd-Steinberg dithering when reducing to the GIF palette")
	fl.BoolVar(&f.noHint, "no-hint", false, "do not write "+pipeline.HintFile)
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "suppress progress lines")
	return cmd
}

// progressPrinter prints one table row per finished frame.
func progressPrinter(w io.Writer) pipeline.ProgressFunc {
	return func(fraction float64, stage pipeline.Stage, path string) {
		fmt.Fprintf(w, "| %.2f%% | %s %s |\n", fraction*100, stage, path)
	}
}

func newSampleCmd() *cobra.Command {
	var x, y, step, steps int
	cmd := &cobra.Command{
		Use:   "sample <image>",
		Short: "Show a pixel before and after the hue rotation of one frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := imaging.NewImageCache().Load(args[0])
			if err != nil {
				return err
			}
			res, err := imaging.SampleShifted(img, x, y, step, steps, render.Offset, render.ShiftPixel)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&x, "x", 0, "x coordinate")
	fl.IntVar(&y, "y", 0, "y coordinate")
	fl.IntVar(&step, "step", 0, "frame index within the cycle")
	fl.IntVarP(&steps, "steps", "n", pipeline.DefaultSteps, "frames in one full hue rotation")
	return cmd
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Describe a source image or an encoded GIF",
		Long: `Describe a file. GIFs report their frame count, delays and loop flag;
any other image reports its size, format and the extension its frames use.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				v   interface{}
				err error
			)
			if _, ext := imaging.SplitName(args[0]); strings.EqualFold(ext, "gif") {
				v, err = sequencer.Inspect(args[0])
			} else {
				v, err = imaging.LoadImageInfo(imaging.NewImageCache(), args[0])
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
