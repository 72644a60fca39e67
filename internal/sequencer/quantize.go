package sequencer

import (
	"image"
	"image/color"
	"sort"
)

// MaxColors is the largest palette a GIF frame can carry.
const MaxColors = 256

// MedianCut is a draw.Quantizer that derives a palette from the colors an
// image actually contains. Images with few enough distinct colors get every
// one of them verbatim; otherwise the color space is split at the weighted
// median of its widest channel until the palette is full, and each region
// contributes its pixel-weighted mean.
//
// The last entry is always fully transparent so alpha-0 pixels survive
// quantization.
type MedianCut struct{}

// Quantize appends up to cap(p)-len(p) colors to p, or MaxColors-len(p) when
// p has no spare capacity.
func (MedianCut) Quantize(p color.Palette, m image.Image) color.Palette {
	n := cap(p) - len(p)
	if n < 1 {
		n = MaxColors - len(p)
	}
	if n < 1 {
		return p
	}
	n-- // transparent entry

	hist := histogram(m)
	if len(hist) <= n {
		for _, cc := range hist {
			p = append(p, cc.c)
		}
		return append(p, color.Transparent)
	}

	boxes := []colorBox{hist}
	for len(boxes) < n {
		i, ch := widestBox(boxes)
		if i < 0 {
			break
		}
		lo, hi := boxes[i].split(ch)
		boxes[i] = lo
		boxes = append(boxes, hi)
	}
	for _, b := range boxes {
		p = append(p, b.mean())
	}
	return append(p, color.Transparent)
}

type colorCount struct {
	c color.NRGBA
	n int
}

// colorBox is a set of distinct colors with their pixel counts.
type colorBox []colorCount

// histogram counts the non-transparent colors of m, ordered by packed value
// so the result does not depend on map iteration.
func histogram(m image.Image) colorBox {
	counts := make(map[color.NRGBA]int)
	b := m.Bounds()
	if nrgba, ok := m.(*image.NRGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := nrgba.Pix[nrgba.PixOffset(b.Min.X, y):nrgba.PixOffset(b.Max.X, y)]
			for i := 0; i < len(row); i += 4 {
				if row[i+3] == 0 {
					continue
				}
				counts[color.NRGBA{row[i], row[i+1], row[i+2], row[i+3]}]++
			}
		}
	} else {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
				if c.A == 0 {
					continue
				}
				counts[c]++
			}
		}
	}

	box := make(colorBox, 0, len(counts))
	for c, n := range counts {
		box = append(box, colorCount{c, n})
	}
	sort.Slice(box, func(i, j int) bool { return pack(box[i].c) < pack(box[j].c) })
	return box
}

func pack(c color.NRGBA) uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

func channel(c color.NRGBA, ch int) uint8 {
	switch ch {
	case 0:
		return c.R
	case 1:
		return c.G
	default:
		return c.B
	}
}

// span returns the channel with the largest value range and that range.
func (b colorBox) span() (ch, width int) {
	for k := 0; k < 3; k++ {
		lo, hi := uint8(255), uint8(0)
		for _, cc := range b {
			v := channel(cc.c, k)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if w := int(hi) - int(lo); w > width {
			ch, width = k, w
		}
	}
	return ch, width
}

// widestBox picks the splittable box with the largest channel range. It
// returns -1 when every box holds a single color.
func widestBox(boxes []colorBox) (index, ch int) {
	index, best := -1, 0
	for i, b := range boxes {
		if len(b) < 2 {
			continue
		}
		c, w := b.span()
		if w > best || index < 0 {
			index, ch, best = i, c, w
		}
	}
	return index, ch
}

// split sorts b along ch and cuts it where half of its pixels fall on each
// side. Both halves are non-empty.
func (b colorBox) split(ch int) (colorBox, colorBox) {
	sort.Slice(b, func(i, j int) bool {
		vi, vj := channel(b[i].c, ch), channel(b[j].c, ch)
		if vi != vj {
			return vi < vj
		}
		return pack(b[i].c) < pack(b[j].c)
	})

	total := 0
	for _, cc := range b {
		total += cc.n
	}
	k, sum := 1, b[0].n
	for k < len(b)-1 && sum*2 < total {
		sum += b[k].n
		k++
	}
	return b[:k:k], b[k:]
}

func (b colorBox) mean() color.NRGBA {
	var r, g, bl, a, n int
	for _, cc := range b {
		r += int(cc.c.R) * cc.n
		g += int(cc.c.G) * cc.n
		bl += int(cc.c.B) * cc.n
		a += int(cc.c.A) * cc.n
		n += cc.n
	}
	return color.NRGBA{
		R: uint8((r + n/2) / n),
		G: uint8((g + n/2) / n),
		B: uint8((bl + n/2) / n),
		A: uint8((a + n/2) / n),
	}
}
