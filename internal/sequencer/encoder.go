package sequencer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"time"

	gif "github.com/NathanBaulch/gifx"
	"github.com/ironsheep/huecycle/internal/imaging"
	"golang.org/x/image/draw"
)

// Frame is one entry of an animation: a persisted raster and how long it is
// shown.
type Frame struct {
	Index int
	Path  string
	Delay time.Duration
}

// Sequence is an ordered list of frames, Index 0..N-1.
type Sequence []Frame

// NewSequence pairs each path, in order, with an equal share of cycle.
func NewSequence(paths []string, cycle time.Duration) Sequence {
	seq := make(Sequence, len(paths))
	if len(paths) == 0 {
		return seq
	}
	delay := cycle / time.Duration(len(paths))
	for i, p := range paths {
		seq[i] = Frame{Index: i, Path: p, Delay: delay}
	}
	return seq
}

// Centiseconds converts d to GIF delay units, rounding to the nearest unit
// and clamping to what the format can store.
func Centiseconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	cs := int((d + 5*time.Millisecond) / (10 * time.Millisecond))
	if cs > 0xffff {
		cs = 0xffff
	}
	return cs
}

// ProgressFunc receives the completed fraction of a two-phase render+encode
// job and the frame that was just appended. Encoding covers (0.5, 1].
type ProgressFunc func(fraction float64, path string)

// Encoder writes a Sequence as an infinitely looping GIF.
type Encoder struct {
	// Dither selects Floyd-Steinberg error diffusion when quantizing frames.
	// Without it each pixel maps to its nearest palette entry.
	Dither bool

	// Quantizer builds each frame's palette. Nil means MedianCut.
	Quantizer draw.Quantizer

	// Progress, if set, is called after each frame is appended.
	Progress ProgressFunc
}

// Encode streams seq, in order, into a GIF at out. Each frame is loaded,
// given its own palette and written before the next one is read.
//
// Any existing file at out is removed first. The GIF is written to a
// temporary file next to out and renamed into place on success, so a failed
// encode leaves no artifact at out. All failures wrap ErrEncode.
func (e *Encoder) Encode(seq Sequence, out string) (err error) {
	if len(seq) == 0 {
		return fmt.Errorf("%w: no frames to encode", ErrEncode)
	}
	for i, f := range seq {
		if f.Index != i {
			return fmt.Errorf("%w: frame %d out of order at position %d", ErrEncode, f.Index, i)
		}
	}

	if err := os.Remove(out); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: remove stale %s: %w", ErrEncode, out, err)
	}

	tmp := out + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrEncode, tmp, err)
	}
	defer func() {
		if err != nil {
			file.Close()
			os.Remove(tmp)
		}
	}()

	enc := gif.NewEncoder(file)
	var size image.Point

	for i, f := range seq {
		img, err := imaging.LoadFrame(f.Path)
		if err != nil {
			return fmt.Errorf("%w: frame %d: %w", ErrEncode, f.Index, err)
		}

		if i == 0 {
			size = img.Bounds().Size()
			// No global color table: every frame carries its own palette.
			if err := enc.WriteHeader(image.Config{Width: size.X, Height: size.Y}, 0); err != nil {
				return fmt.Errorf("%w: write header: %w", ErrEncode, err)
			}
			if err := enc.WriteApplicationNetscape(&gif.ApplicationNetscape{LoopCount: 0}); err != nil {
				return fmt.Errorf("%w: write loop extension: %w", ErrEncode, err)
			}
		} else if img.Bounds().Size() != size {
			return fmt.Errorf("%w: frame %d is %v, want %v", ErrEncode, f.Index, img.Bounds().Size(), size)
		}

		frame := &gif.Frame{
			Image:          e.quantize(img),
			DelayTime:      time.Duration(Centiseconds(f.Delay)) * 10 * time.Millisecond,
			DisposalMethod: gif.DisposalBackground,
		}
		if err := enc.WriteFrame(frame); err != nil {
			return fmt.Errorf("%w: write frame %d: %w", ErrEncode, f.Index, err)
		}

		if e.Progress != nil {
			e.Progress(0.5+float64(i+1)/float64(2*len(seq)), f.Path)
		}
	}

	if err := enc.WriteTrailer(); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrEncode, out, err)
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrEncode, out, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrEncode, tmp, err)
	}
	if err := os.Rename(tmp, out); err != nil {
		return fmt.Errorf("%w: rename %s: %w", ErrEncode, tmp, err)
	}
	return nil
}

// quantize maps img onto a palette built for it, anchored at (0,0).
func (e *Encoder) quantize(img image.Image) *image.Paletted {
	q := e.Quantizer
	if q == nil {
		q = MedianCut{}
	}
	b := img.Bounds()
	pal := q.Quantize(make(color.Palette, 0, MaxColors), img)
	pm := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), pal)
	if e.Dither {
		draw.FloydSteinberg.Draw(pm, pm.Bounds(), img, b.Min)
	} else {
		draw.Draw(pm, pm.Bounds(), img, b.Min, draw.Src)
	}
	return pm
}

// AnimationInfo describes an encoded GIF.
type AnimationInfo struct {
	Width     int   `json:"width"`
	Height    int   `json:"height"`
	Frames    int   `json:"frames"`
	Delays    []int `json:"delays_cs"`
	LoopCount int   `json:"loop_count"`
	// DurationMs is the sum of all frame delays.
	DurationMs int `json:"duration_ms"`
}

// Inspect decodes the GIF at path and reports its frame layout.
func Inspect(path string) (*AnimationInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open animation: %w", err)
	}
	defer f.Close()

	anim, err := gif.DecodeAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode animation: %w", err)
	}

	total := 0
	for _, d := range anim.Delay {
		total += d * 10
	}

	return &AnimationInfo{
		Width:      anim.Config.Width,
		Height:     anim.Config.Height,
		Frames:     len(anim.Image),
		Delays:     anim.Delay,
		LoopCount:  anim.LoopCount,
		DurationMs: total,
	}, nil
}
