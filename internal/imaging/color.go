package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ironsheep/huecycle/internal/colormodel"
	"github.com/lucasb-eyer/go-colorful"
)

// RGBAColor represents an RGBA color with 8-bit straight-alpha components.
//
// The alpha component represents opacity:
//   - 0 = fully transparent
//   - 255 = fully opaque
type RGBAColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
	A uint8 `json:"a"` // Alpha/opacity component (0-255)
}

// HSVColor represents a color in HSV (Hue, Saturation, Value) color space.
type HSVColor struct {
	H float64 `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S float64 `json:"s"` // Saturation: 0-1 (0=gray, 1=vivid)
	V float64 `json:"v"` // Value: 0-1 (0=black, 1=full brightness)
}

// ColorResult contains a color value in multiple representations.
type ColorResult struct {
	Hex  string    `json:"hex"`  // Hex format "#rrggbb" (no alpha)
	RGBA RGBAColor `json:"rgba"` // RGBA components with alpha
	HSV  HSVColor  `json:"hsv"`  // HSV representation
}

// SampleColor extracts the color value at a specific pixel coordinate.
//
// Coordinates are relative to the image bounds and 0-based with origin at
// top-left. The color is read as straight (non-premultiplied) alpha, which is
// how the hue transform sees it.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	c, err := pixelAt(img, x, y)
	if err != nil {
		return nil, err
	}
	return newColorResult(colormodel.FromNRGBA(c)), nil
}

// ShiftedSample pairs a source pixel with what it becomes at one hue step.
type ShiftedSample struct {
	X           int         `json:"x"`
	Y           int         `json:"y"`
	Step        int         `json:"step"`
	Steps       int         `json:"steps"`
	OffsetDeg   float64     `json:"offset_degrees"`
	Source      ColorResult `json:"source"`
	Transformed ColorResult `json:"transformed"`
}

// SampleShifted returns the pixel at (x, y) together with its value in frame
// step of a steps-frame hue cycle. offset and transform are the step-to-degrees
// and per-pixel functions used by the renderer, so the result matches what the
// rendered frame contains.
func SampleShifted(img image.Image, x, y, step, steps int, offset func(step, steps int) float64, transform func(colormodel.Color, float64) colormodel.Color) (*ShiftedSample, error) {
	if steps < 1 {
		return nil, fmt.Errorf("steps must be at least 1, got %d", steps)
	}
	if step < 0 || step >= steps {
		return nil, fmt.Errorf("step %d outside [0,%d)", step, steps)
	}
	c, err := pixelAt(img, x, y)
	if err != nil {
		return nil, err
	}

	deg := offset(step, steps)
	src := colormodel.FromNRGBA(c)
	out := transform(src, deg).ToRGBA()
	// Quantize so the reported value matches the stored raster.
	out = colormodel.FromNRGBA(out.NRGBA())

	return &ShiftedSample{
		X:           x,
		Y:           y,
		Step:        step,
		Steps:       steps,
		OffsetDeg:   deg,
		Source:      *newColorResult(src),
		Transformed: *newColorResult(out),
	}, nil
}

func pixelAt(img image.Image, x, y int) (color.NRGBA, error) {
	bounds := img.Bounds()
	px, py := bounds.Min.X+x, bounds.Min.Y+y
	if x < 0 || y < 0 || px >= bounds.Max.X || py >= bounds.Max.Y {
		return color.NRGBA{}, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}
	return color.NRGBAModel.Convert(img.At(px, py)).(color.NRGBA), nil
}

func newColorResult(c colormodel.Color) *ColorResult {
	b := c.Bytes()
	hsva := c.ToHSVA()
	return &ColorResult{
		Hex:  colorful.Color{R: float64(b[0]) / 255, G: float64(b[1]) / 255, B: float64(b[2]) / 255}.Hex(),
		RGBA: RGBAColor{R: b[0], G: b[1], B: b[2], A: b[3]},
		HSV:  HSVColor{H: hsva.C1, S: hsva.C2, V: hsva.C3},
	}
}
