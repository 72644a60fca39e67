// Package colormodel converts single pixel colors between RGBA and HSVA.
//
// A Color carries four float64 channels plus a Model tag naming how the
// channels are read. Conversion is a pure function of the tag:
//
//	c := colormodel.NewRGBA(0, 1, 0, 1) // pure green
//	shifted := c.RotateHue(180)         // HSVA, hue 300
//	px := shifted.Bytes()               // [255 0 255 255], magenta
//
// Hue is measured in degrees and always kept within [0,360). Saturation,
// value and all RGBA channels are in [0,1]. Inputs outside those ranges are
// not rejected; the results are simply not meaningful.
//
// Round-tripping ToRGBA(ToHSVA(c)) reproduces c to floating-point precision,
// except that achromatic colors (zero chroma) lose their hue, which is
// reported as 0.
package colormodel
