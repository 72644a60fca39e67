package colormodel

import (
	"image/color"
	"math"
)

// Model tags how the channels of a Color are interpreted.
type Model uint8

const (
	// RGBA channels: C1=red, C2=green, C3=blue, each in [0,1].
	RGBA Model = iota
	// HSVA channels: C1=hue in degrees [0,360), C2=saturation, C3=value, each in [0,1].
	HSVA
)

func (m Model) String() string {
	switch m {
	case RGBA:
		return "RGBA"
	case HSVA:
		return "HSVA"
	default:
		return "unknown"
	}
}

// Color is a single pixel color held in one of two representations.
//
// The three channel fields are only meaningful under the current Model tag.
// ToHSVA and ToRGBA are the only way to reinterpret them. A is opacity in [0,1]
// and is carried through both conversions unchanged.
type Color struct {
	Model      Model
	C1, C2, C3 float64
	A          float64
}

// NewRGBA returns a Color tagged RGBA. Channels are expected in [0,1].
func NewRGBA(r, g, b, a float64) Color {
	return Color{Model: RGBA, C1: r, C2: g, C3: b, A: a}
}

// NewHSVA returns a Color tagged HSVA. The hue is normalized into [0,360).
func NewHSVA(h, s, v, a float64) Color {
	return Color{Model: HSVA, C1: NormalizeHue(h), C2: s, C3: v, A: a}
}

// FromNRGBA converts a straight-alpha 8-bit color into a normalized RGBA Color.
func FromNRGBA(c color.NRGBA) Color {
	return NewRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, float64(c.A)/255)
}

// ToHSVA converts an RGBA color to HSVA. A color already tagged HSVA is
// returned unchanged.
//
// Value is the largest channel and saturation is chroma/value (0 when value
// is 0). Hue is derived from whichever channel is largest and is 0 for
// achromatic colors, where it carries no information.
func (c Color) ToHSVA() Color {
	if c.Model == HSVA {
		return c
	}

	r, g, b := c.C1, c.C2, c.C3
	max := math.Max(math.Max(r, g), b)
	min := math.Min(math.Min(r, g), b)
	chroma := max - min

	var s float64
	if max > 0 {
		s = chroma / max
	}

	var h float64
	if chroma > 0 {
		switch max {
		case r:
			h = (g - b) / chroma
		case g:
			h = (b-r)/chroma + 2
		default:
			h = (r-g)/chroma + 4
		}
		h *= 60
	}

	return Color{Model: HSVA, C1: NormalizeHue(h), C2: s, C3: max, A: c.A}
}

// ToRGBA converts an HSVA color to RGBA using the six-sector reconstruction.
// A color already tagged RGBA is returned unchanged.
func (c Color) ToRGBA() Color {
	if c.Model == RGBA {
		return c
	}

	h, s, v := NormalizeHue(c.C1)/60, c.C2, c.C3
	i := math.Floor(h)
	f := h - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}

	return Color{Model: RGBA, C1: r, C2: g, C3: b, A: c.A}
}

// RotateHue returns the color in HSVA with deg added to its hue. The result
// is always within [0,360), for positive and negative offsets alike.
func (c Color) RotateHue(deg float64) Color {
	hsva := c.ToHSVA()
	hsva.C1 = NormalizeHue(hsva.C1 + deg)
	return hsva
}

// Bytes quantizes the color to four 8-bit channels (r, g, b, a). Each channel
// is clamped to [0,1], scaled by 255 and rounded independently.
func (c Color) Bytes() [4]uint8 {
	rgba := c.ToRGBA()
	return [4]uint8{
		toByte(rgba.C1),
		toByte(rgba.C2),
		toByte(rgba.C3),
		toByte(rgba.A),
	}
}

// NRGBA returns the quantized color as a straight-alpha color.NRGBA.
func (c Color) NRGBA() color.NRGBA {
	b := c.Bytes()
	return color.NRGBA{R: b[0], G: b[1], B: b[2], A: b[3]}
}

// RGBA implements image/color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// NormalizeHue wraps an angle in degrees into [0,360).
func NormalizeHue(deg float64) float64 {
	h := math.Mod(deg, 360)
	if h < 0 {
		h += 360
	}
	// math.Mod of a tiny negative value can round back up to 360.
	if h >= 360 {
		h = 0
	}
	return h
}

func toByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
