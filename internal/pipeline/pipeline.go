package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ironsheep/huecycle/internal/imaging"
	"github.com/ironsheep/huecycle/internal/render"
	"github.com/ironsheep/huecycle/internal/sequencer"
)

// Limits enforced by Validate.
const (
	MinSteps         = 1
	MaxSteps         = 360
	MaxCycleDuration = 10 * time.Minute

	DefaultSteps         = 36
	DefaultCycleDuration = 2 * time.Second
)

// HintFile is the name of the ffmpeg command file written next to the GIF.
const HintFile = "ffmpeg_command.txt"

// Stage names the phase a progress report belongs to.
type Stage string

const (
	StageRender Stage = "Processing"
	StageEncode Stage = "Encoding"
)

// ProgressFunc receives overall completion in [0,1], the current stage, and
// the frame just finished.
type ProgressFunc func(fraction float64, stage Stage, path string)

// Options configures one hue-cycle run.
type Options struct {
	// Source is the image to animate.
	Source string

	// Steps is the number of frames, and of hue steps, in one cycle.
	Steps int

	// CycleDuration is how long one full rotation takes. Each frame is shown
	// for CycleDuration/Steps.
	CycleDuration time.Duration

	// FrameDir receives the individual frames. It is created if needed.
	FrameDir string

	// Output is the GIF path. An existing file is replaced.
	Output string

	// MaxSize, when positive, downscales the source so neither side exceeds it.
	MaxSize int

	// Workers bounds concurrent frame rendering. Zero means GOMAXPROCS.
	Workers int

	// Dither enables Floyd-Steinberg dithering in the GIF.
	Dither bool

	// WriteHint writes HintFile next to Output.
	WriteHint bool

	Progress ProgressFunc
}

// Defaults returns options for source using the default layout: frames in
// <base>/<base>_frames and the GIF at <base>/<base>.gif, relative to the
// working directory.
func Defaults(source string) Options {
	base, _ := imaging.SplitName(source)
	return Options{
		Source:        source,
		Steps:         DefaultSteps,
		CycleDuration: DefaultCycleDuration,
		FrameDir:      filepath.Join(base, base+"_frames"),
		Output:        filepath.Join(base, base+".gif"),
		Dither:        true,
		WriteHint:     true,
	}
}

// Validate checks every option without touching the filesystem.
func (o Options) Validate() error {
	switch {
	case o.Source == "":
		return fmt.Errorf("%w: source image is required", ErrConfiguration)
	case o.Steps < MinSteps || o.Steps > MaxSteps:
		return fmt.Errorf("%w: steps %d outside [%d,%d]", ErrConfiguration, o.Steps, MinSteps, MaxSteps)
	case o.CycleDuration < 0 || o.CycleDuration > MaxCycleDuration:
		return fmt.Errorf("%w: cycle duration %v outside [0,%v]", ErrConfiguration, o.CycleDuration, MaxCycleDuration)
	case o.FrameDir == "":
		return fmt.Errorf("%w: frame directory is required", ErrConfiguration)
	case o.Output == "":
		return fmt.Errorf("%w: output path is required", ErrConfiguration)
	case o.MaxSize < 0:
		return fmt.Errorf("%w: max size %d must not be negative", ErrConfiguration, o.MaxSize)
	case o.Workers < 0:
		return fmt.Errorf("%w: workers %d must not be negative", ErrConfiguration, o.Workers)
	}
	return nil
}

// Result describes a completed run.
type Result struct {
	Frames     []string      `json:"frames"`
	Output     string        `json:"output"`
	Steps      int           `json:"steps"`
	FrameDelay time.Duration `json:"frame_delay_ns"`
	DelayCs    int           `json:"delay_cs"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	HintPath   string        `json:"hint_path,omitempty"`
	Elapsed    time.Duration `json:"elapsed_ns"`
}

// Runner executes runs, sharing one decode cache between them.
type Runner struct {
	cache *imaging.ImageCache
}

// NewRunner returns a Runner using cache for source images. A nil cache gets
// a fresh one.
func NewRunner(cache *imaging.ImageCache) *Runner {
	if cache == nil {
		cache = imaging.NewImageCache()
	}
	return &Runner{cache: cache}
}

// Run executes opts with a private cache.
func Run(opts Options) (*Result, error) {
	return NewRunner(nil).Run(opts)
}

// Run renders every frame, then encodes the animation. Encoding starts only
// after all frames are persisted. Any failure aborts the run; in that case
// no GIF is left at opts.Output.
func (r *Runner) Run(opts Options) (_ *Result, err error) {
	start := time.Now()

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			removeStale(opts.Output)
		}
	}()

	img, err := r.cache.Load(opts.Source)
	if err != nil {
		return nil, err
	}
	src := imaging.ToNRGBA(imaging.Fit(img, opts.MaxSize))
	debugf("source %s decoded: %dx%d", opts.Source, src.Bounds().Dx(), src.Bounds().Dy())

	base, ext := imaging.SplitName(opts.Source)
	frames := render.FrameSet{Dir: opts.FrameDir, Base: base, Ext: imaging.FrameExt(ext)}

	if err := prepareFrameDir(frames); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(opts.Output), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create output directory: %w", sequencer.ErrEncode, err)
	}

	var hintPath string
	if opts.WriteHint {
		hintPath = filepath.Join(filepath.Dir(opts.Output), HintFile)
		if err := os.WriteFile(hintPath, []byte(FFmpegCommand(frames, opts)), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", hintPath, err)
		}
	}

	renderer := &render.Renderer{Steps: opts.Steps, Workers: opts.Workers}
	if opts.Progress != nil {
		renderer.Progress = func(f float64, path string) { opts.Progress(f, StageRender, path) }
	}
	paths, err := renderer.Render(src, frames)
	if err != nil {
		return nil, err
	}
	debugf("rendered %d frames into %s in %v", len(paths), opts.FrameDir, time.Since(start))

	seq := sequencer.NewSequence(paths, opts.CycleDuration)
	enc := &sequencer.Encoder{Dither: opts.Dither}
	if opts.Progress != nil {
		enc.Progress = func(f float64, path string) { opts.Progress(f, StageEncode, path) }
	}
	if err := enc.Encode(seq, opts.Output); err != nil {
		return nil, err
	}

	delay := seq[0].Delay
	return &Result{
		Frames:     paths,
		Output:     opts.Output,
		Steps:      opts.Steps,
		FrameDelay: delay,
		DelayCs:    sequencer.Centiseconds(delay),
		Width:      src.Bounds().Dx(),
		Height:     src.Bounds().Dy(),
		HintPath:   hintPath,
		Elapsed:    time.Since(start),
	}, nil
}

// prepareFrameDir creates the frame directory and deletes frames left by an
// earlier run of the same source. Other files are left alone.
func prepareFrameDir(frames render.FrameSet) error {
	if err := os.MkdirAll(frames.Dir, 0o755); err != nil {
		return fmt.Errorf("%w: create frame directory: %w", render.ErrFrameWrite, err)
	}

	entries, err := os.ReadDir(frames.Dir)
	if err != nil {
		return fmt.Errorf("%w: read frame directory: %w", render.ErrFrameWrite, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := imaging.ParseFrameName(e.Name(), frames.Base, frames.Ext); !ok {
			continue
		}
		if err := os.Remove(filepath.Join(frames.Dir, e.Name())); err != nil {
			return fmt.Errorf("%w: remove stale frame: %w", render.ErrFrameWrite, err)
		}
	}
	return nil
}

func removeStale(path string) {
	if err := os.Remove(path); err == nil {
		debugf("removed stale %s", path)
	}
}

// FFmpegCommand returns an ffmpeg command line that builds the same GIF from
// the persisted frames with a palette optimized for them.
func FFmpegCommand(frames render.FrameSet, opts Options) string {
	pattern := filepath.Join(frames.Dir, "%d_"+frames.Base+"."+frames.Ext)
	return fmt.Sprintf(
		"ffmpeg -i %s -vf palettegen palette.png && "+
			"ffmpeg -v warning -i %s -i palette.png -lavfi \"paletteuse,setpts=N/(%g*TB)\" -y %s && "+
			"rm palette.png",
		pattern, pattern, FrameRate(opts.Steps, opts.CycleDuration), opts.Output)
}

// FrameRate is frames per second for steps frames spread over cycle. A zero
// cycle yields the fastest rate a GIF can express.
func FrameRate(steps int, cycle time.Duration) float64 {
	if cycle <= 0 {
		return 100
	}
	return float64(steps) / cycle.Seconds()
}
