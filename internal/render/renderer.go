package render

import (
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/ironsheep/huecycle/internal/colormodel"
	"github.com/ironsheep/huecycle/internal/imaging"
)

// ProgressFunc receives the completed fraction of a two-phase render+encode
// job and the frame that was just finished. Rendering covers [0, 0.5].
type ProgressFunc func(fraction float64, path string)

// FrameSet names where the frames of one render are persisted.
type FrameSet struct {
	Dir  string // output directory, must exist
	Base string // source base name
	Ext  string // frame extension without the dot
}

// Path returns the file for frame step.
func (fs FrameSet) Path(step int) string {
	return imaging.FramePath(fs.Dir, step, fs.Base, fs.Ext)
}

// Paths returns the files for frames 0..steps-1 in order.
func (fs FrameSet) Paths(steps int) []string {
	paths := make([]string, steps)
	for h := range paths {
		paths[h] = fs.Path(h)
	}
	return paths
}

// Renderer computes and persists the frames of a hue cycle.
type Renderer struct {
	// Steps is the number of frames, at least 1.
	Steps int

	// Workers bounds how many frames are computed at once. Zero means
	// GOMAXPROCS.
	Workers int

	// Progress, if set, is called once per persisted frame. Calls are
	// serialized and the reported fraction never decreases.
	Progress ProgressFunc
}

// New returns a Renderer for steps frames with default concurrency.
func New(steps int) *Renderer {
	return &Renderer{Steps: steps}
}

// Offset is the hue rotation in degrees applied to frame step of steps.
func Offset(step, steps int) float64 {
	return float64(step) * (360 / float64(steps))
}

// ShiftPixel applies the per-pixel transform: convert to HSVA, collapse any
// non-opaque alpha to fully transparent, then rotate the hue by offset degrees.
func ShiftPixel(c colormodel.Color, offset float64) colormodel.Color {
	hsva := c.ToHSVA()
	if hsva.A != 1 {
		hsva.A = 0
	}
	return hsva.RotateHue(offset)
}

// ShiftFrame returns a new image, the size of src and anchored at (0,0), with
// every pixel's hue rotated by offset degrees. src is only read.
func ShiftFrame(src *image.NRGBA, offset float64) *image.NRGBA {
	b := src.Bounds()
	w := b.Dx()
	dst := image.NewNRGBA(image.Rect(0, 0, w, b.Dy()))

	parallel.Line(b.Dy(), func(start, end int) {
		for y := start; y < end; y++ {
			si := src.PixOffset(b.Min.X, b.Min.Y+y)
			di := dst.PixOffset(0, y)
			for x := 0; x < w; x++ {
				s := src.Pix[si+4*x : si+4*x+4 : si+4*x+4]
				c := colormodel.FromNRGBA(color.NRGBA{R: s[0], G: s[1], B: s[2], A: s[3]})
				px := ShiftPixel(c, offset).Bytes()
				copy(dst.Pix[di+4*x:di+4*x+4], px[:])
			}
		}
	})

	return dst
}

// Render computes every frame of the cycle from src and saves frame h to
// frames.Path(h). It returns the frame paths in step order once all of them
// are on disk.
//
// The first failure to persist a frame stops further frames from being
// started and is returned wrapped in ErrFrameWrite. Frames already written
// are left in place; callers should treat the set as incomplete.
func (r *Renderer) Render(src *image.NRGBA, frames FrameSet) ([]string, error) {
	steps := r.Steps
	if steps < 1 {
		return nil, fmt.Errorf("render: steps must be at least 1, got %d", steps)
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > steps {
		workers = steps
	}

	paths := frames.Paths(steps)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		done     int
		firstErr error
		failed   atomic.Bool
	)

	jobs := make(chan int)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for h := range jobs {
				if failed.Load() {
					continue
				}

				frame := ShiftFrame(src, Offset(h, steps))
				if err := imaging.SaveFrame(frame, paths[h]); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("%w: step %d: %w", ErrFrameWrite, h, err)
					}
					mu.Unlock()
					failed.Store(true)
					continue
				}

				mu.Lock()
				done++
				if r.Progress != nil {
					r.Progress(float64(done)/float64(2*steps), paths[h])
				}
				mu.Unlock()
			}
		}()
	}

	for h := 0; h < steps && !failed.Load(); h++ {
		jobs <- h
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return paths, nil
}
