package visual

import (
	"image"

	"github.com/nao1215/pdfdiff/internal/model"
)

// highlight is the overlay colour of changed pixels.
var highlight = [3]int{0xff, 0x00, 0x00}

// Overlay blend weights, in tenths: 40% highlight over 60% original.
const (
	overlayWeight  = 4
	originalWeight = 6
)

// Mask is a read-only boolean grid marking changed pixels.
type Mask struct {
	width  int
	height int
	bits   []bool
}

// Width returns the mask width.
func (m *Mask) Width() int { return m.width }

// Height returns the mask height.
func (m *Mask) Height() int { return m.height }

// At reports whether the pixel at (x, y) changed.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.bits[y*m.width+x]
}

// Count returns the number of changed pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// Result is the pixel diff of one aligned page pair.
type Result struct {
	// Mask marks the changed pixels.
	Mask *Mask

	// ChangedPixels is the number of true cells in Mask.
	ChangedPixels int

	// TotalPixels is width*height of the canvases.
	TotalPixels int

	// ChangePercent is ChangedPixels/TotalPixels*100 rounded to 2 decimals.
	ChangePercent float64

	// Overlay is the compare canvas with changed pixels tinted red.
	Overlay *image.RGBA
}

// Diff compares an aligned pair. A pixel is changed when the mean absolute
// difference of its R, G and B channels is at least threshold. The threshold
// range is validated by the caller.
func Diff(pair AlignedPair, threshold int) Result {
	b := pair.Bounds()
	w, h := b.Dx(), b.Dy()

	mask := &Mask{width: w, height: h, bits: make([]bool, w*h)}
	overlay := image.NewRGBA(b)
	copy(overlay.Pix, pair.Compare.Pix)

	// mean(|dr|,|dg|,|db|) >= t  <=>  |dr|+|dg|+|db| >= 3t
	limit := 3 * threshold
	changed := 0

	for y := 0; y < h; y++ {
		bo := pair.Base.PixOffset(b.Min.X, b.Min.Y+y)
		co := pair.Compare.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			bp := pair.Base.Pix[bo+x*4 : bo+x*4+3]
			cp := pair.Compare.Pix[co+x*4 : co+x*4+3]

			if absDiff(bp[0], cp[0])+absDiff(bp[1], cp[1])+absDiff(bp[2], cp[2]) < limit {
				continue
			}

			mask.bits[y*w+x] = true
			changed++

			op := overlay.Pix[co+x*4 : co+x*4+3]
			for c := range 3 {
				op[c] = blend(highlight[c], int(cp[c]))
			}
		}
	}

	total := w * h
	return Result{
		Mask:          mask,
		ChangedPixels: changed,
		TotalPixels:   total,
		ChangePercent: model.Percent(changed, total),
		Overlay:       overlay,
	}
}

// blend mixes the highlight and original channel values and rounds to the
// nearest integer.
func blend(over, orig int) uint8 {
	v := (overlayWeight*over + originalWeight*orig + 5) / 10
	return uint8(min(v, 0xff))
}

// absDiff returns |a-b| as an int.
func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
