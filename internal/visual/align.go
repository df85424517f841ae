package visual

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// AlignedPair holds two canvases of identical dimensions.
type AlignedPair struct {
	Base    *image.RGBA
	Compare *image.RGBA
}

// Bounds returns the shared canvas bounds.
func (p AlignedPair) Bounds() image.Rectangle {
	return p.Base.Bounds()
}

// Blank returns an opaque white canvas of the given size.
// Negative dimensions are treated as zero.
func Blank(width, height int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
	xdraw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, xdraw.Src)
	return canvas
}

// BlankLike returns a white canvas with the same size as img.
// A nil img yields an empty canvas.
func BlankLike(img image.Image) *image.RGBA {
	if img == nil {
		return Blank(0, 0)
	}
	b := img.Bounds()
	return Blank(b.Dx(), b.Dy())
}

// Align pads base and compare onto white canvases of
// max(width) x max(height). Each source is copied into the top-left corner
// of its canvas and its alpha channel is discarded. A nil source is treated
// as an empty image.
func Align(base, compare image.Image) AlignedPair {
	bw, bh := size(base)
	cw, ch := size(compare)
	w, h := max(bw, cw), max(bh, ch)

	return AlignedPair{
		Base:    place(base, w, h),
		Compare: place(compare, w, h),
	}
}

// size returns the dimensions of img, or 0x0 for nil.
func size(img image.Image) (int, int) {
	if img == nil {
		return 0, 0
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

// place copies src into the top-left corner of a new white w x h canvas.
func place(src image.Image, w, h int) *image.RGBA {
	canvas := Blank(w, h)
	if src == nil {
		return canvas
	}

	sb := src.Bounds()
	region := image.Rect(0, 0, sb.Dx(), sb.Dy())
	xdraw.Draw(canvas, region, src, sb.Min, xdraw.Src)
	opaque(canvas, region)
	return canvas
}

// opaque sets the alpha channel of every pixel in r to 255.
func opaque(img *image.RGBA, r image.Rectangle) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := img.PixOffset(r.Min.X, y)
		for x := 0; x < r.Dx(); x++ {
			img.Pix[row+x*4+3] = 0xff
		}
	}
}
