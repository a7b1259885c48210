// canvas.go - The square raster surface every smash is drawn onto.
// Wraps an image.RGBA with the drawing operations the composition engine
// needs: diagonal gradient fill, opacity-blended image region copies, and
// rotated text. Scaling and transforms go through golang.org/x/image/draw.
package canvas

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

// DefaultSide is the fixed side length of the square smash surface.
const DefaultSide = 900

// Canvas is a fixed-size square drawable surface.
type Canvas struct {
	img   *image.RGBA
	side  int
	fonts *FontManager
}

// New creates a canvas with the given side length. fontPath may be empty to
// use the embedded default font.
func New(side int, fontPath string) (*Canvas, error) {
	if side <= 0 {
		side = DefaultSide
	}
	fm, err := NewFontManager(fontPath)
	if err != nil {
		return nil, err
	}
	return &Canvas{
		img:   image.NewRGBA(image.Rect(0, 0, side, side)),
		side:  side,
		fonts: fm,
	}, nil
}

// Side returns the side length in pixels.
func (c *Canvas) Side() int {
	return c.side
}

// Image exposes the backing raster for encoding and capture.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Clear resets the surface to opaque black.
func (c *Canvas) Clear() {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(color.RGBA{A: 255}), image.Point{}, draw.Src)
}

// FillGradient paints a two-stop linear gradient along the canvas diagonal.
func (c *Canvas) FillGradient(from, to color.Color) {
	fr, fg, fb, _ := from.RGBA()
	tr, tg, tb, _ := to.RGBA()
	denom := float64(2*c.side - 2)
	if denom <= 0 {
		denom = 1
	}
	for y := 0; y < c.side; y++ {
		for x := 0; x < c.side; x++ {
			t := float64(x+y) / denom
			c.img.SetRGBA(x, y, color.RGBA{
				R: lerp8(fr, tr, t),
				G: lerp8(fg, tg, t),
				B: lerp8(fb, tb, t),
				A: 255,
			})
		}
	}
}

func lerp8(a, b uint32, t float64) uint8 {
	return uint8((float64(a)*(1-t) + float64(b)*t) / 257)
}

// DrawImageRegion scales the src rectangle sr into the destination rectangle
// dr and composites it with the given opacity in [0,1].
func (c *Canvas) DrawImageRegion(src image.Image, sr, dr image.Rectangle, opacity float64) {
	if sr.Empty() || dr.Empty() {
		return
	}
	tmp := image.NewRGBA(image.Rect(0, 0, dr.Dx(), dr.Dy()))
	xdraw.ApproxBiLinear.Scale(tmp, tmp.Bounds(), src, sr, xdraw.Src, nil)

	a := uint8(clamp01(opacity) * 255)
	mask := image.NewUniform(color.Alpha{A: a})
	draw.DrawMask(c.img, dr, tmp, image.Point{}, mask, image.Point{}, draw.Over)
}

// DrawText renders text centered at (x, y), rotated by angle radians, at the
// given pixel size, fill color and opacity. The glyphs are rasterized into a
// scratch layer first so the rotation is a single affine composite.
func (c *Canvas) DrawText(text string, x, y, size, angle float64, col color.Color, opacity float64) {
	if text == "" {
		return
	}
	face, err := c.fonts.Face(size)
	if err != nil {
		return
	}

	adv := font.MeasureString(face, text)
	metrics := face.Metrics()
	w := adv.Ceil() + 2
	h := (metrics.Ascent + metrics.Descent).Ceil() + 2
	if w <= 2 || h <= 2 {
		return
	}

	r, g, b, _ := col.RGBA()
	fill := color.NRGBA{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
		A: uint8(clamp01(opacity) * 255),
	}

	layer := image.NewRGBA(image.Rect(0, 0, w, h))
	drawer := &font.Drawer{
		Dst:  layer,
		Src:  image.NewUniform(fill),
		Face: face,
		Dot:  fixed.P(1, metrics.Ascent.Ceil()+1),
	}
	drawer.DrawString(text)

	// Rotate about the layer center, then translate the center to (x, y).
	sin, cos := math.Sincos(angle)
	cx, cy := float64(w)/2, float64(h)/2
	m := f64.Aff3{
		cos, -sin, x - cos*cx + sin*cy,
		sin, cos, y - sin*cx - cos*cy,
	}
	xdraw.ApproxBiLinear.Transform(c.img, m, layer, layer.Bounds(), xdraw.Over, nil)
}

// DrawMarker paints a faint moving dot used during video capture so every
// recorded frame differs from the last. Not part of the composition proper.
func (c *Canvas) DrawMarker(step int) {
	x := (step * 7) % c.side
	y := (step * 11) % c.side
	dot := image.Rect(x, y, x+3, y+3).Intersect(c.img.Bounds())
	draw.Draw(c.img, dot, image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 18}), image.Point{}, draw.Over)
}

// EncodePNG encodes the surface to a PNG payload. The boolean reports whether
// a non-empty payload was produced.
func (c *Canvas) EncodePNG() ([]byte, bool) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.img); err != nil {
		return nil, false
	}
	return buf.Bytes(), buf.Len() > 0
}
