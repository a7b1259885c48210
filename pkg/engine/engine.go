// Package engine is the generative composition engine: one Compose call
// renders a fresh randomized visual layout onto a surface and returns the
// matching audio timeline.
package engine

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/xob0t/GoSmash/pkg/canvas"
	"github.com/xob0t/GoSmash/pkg/catalog"
)

// Surface is the drawable target the visual layers land on. Implemented by
// *canvas.Canvas; tests substitute a recording stub.
type Surface interface {
	Side() int
	FillGradient(from, to color.Color)
	DrawImageRegion(src image.Image, sr, dr image.Rectangle, opacity float64)
	DrawText(text string, x, y, size, angle float64, col color.Color, opacity float64)
}

// textInset keeps text anchor points away from the canvas edge.
const textInset = 60

// Destination rectangles for image layers span this fraction range of the
// canvas side.
const (
	destFracLow  = 0.25
	destFracHigh = 0.75
)

// Result is the outcome of one smash invocation.
type Result struct {
	Timeline Timeline
	Seed     string // short token used in export filenames
}

// Compose renders a randomized layout onto surf and builds a fresh audio
// timeline. The catalog is read-only; any prior timeline is simply superseded
// by the returned one. Layer counts of zero and empty catalogs of a kind are
// no-ops. Draw order is generation order: later layers occlude earlier ones.
func Compose(cat *catalog.Catalog, cfg Config, rng Rand, surf Surface) Result {
	cfg = cfg.Normalize()

	drawBackground(surf, rng)
	drawImageLayers(surf, cat, cfg, rng)
	drawTextLayers(surf, cat, cfg, rng)

	return Result{
		Timeline: buildTimeline(cat, cfg, rng),
		Seed:     fmt.Sprintf("%06x", rng.IntN(1<<24)),
	}
}

// drawBackground fills the diagonal gradient from two independently
// randomized HSL stops.
func drawBackground(surf Surface, rng Rand) {
	pick := func() color.RGBA {
		return canvas.HSL(
			rng.Float64()*360,
			55+rng.Float64()*35, // saturation 55-90%
			35+rng.Float64()*35, // lightness 35-70%
		)
	}
	surf.FillGradient(pick(), pick())
}

func drawImageLayers(surf Surface, cat *catalog.Catalog, cfg Config, rng Rand) {
	images := cat.ListByKind(catalog.KindImage)
	if len(images) == 0 {
		return
	}
	side := surf.Side()

	for i := 0; i < cfg.ImageLayers; i++ {
		src := images[rng.IntN(len(images))].Image
		b := src.Bounds()

		cw := int(cfg.ImageCrop.Pick(rng) * float64(b.Dx()))
		ch := int(cfg.ImageCrop.Pick(rng) * float64(b.Dy()))
		cw = clampInt(cw, 1, b.Dx())
		ch = clampInt(ch, 1, b.Dy())
		// Origin range collapses to 0 when the crop spans the full dimension.
		cx := b.Min.X + randSpan(rng, b.Dx()-cw)
		cy := b.Min.Y + randSpan(rng, b.Dy()-ch)

		dw := int((destFracLow + rng.Float64()*(destFracHigh-destFracLow)) * float64(side))
		dh := int((destFracLow + rng.Float64()*(destFracHigh-destFracLow)) * float64(side))
		dx := randSpan(rng, side-dw)
		dy := randSpan(rng, side-dh)

		surf.DrawImageRegion(src,
			image.Rect(cx, cy, cx+cw, cy+ch),
			image.Rect(dx, dy, dx+dw, dy+dh),
			cfg.Alpha.Pick(rng))
	}
}

func drawTextLayers(surf Surface, cat *catalog.Catalog, cfg Config, rng Rand) {
	texts := cat.ListByKind(catalog.KindText)
	if len(texts) == 0 {
		return
	}
	side := surf.Side()

	for i := 0; i < cfg.TextLayers; i++ {
		span := wordSpan(texts[rng.IntN(len(texts))].Text, rng)
		if span == "" {
			continue
		}

		x := float64(textInset) + rng.Float64()*float64(side-2*textInset)
		y := float64(textInset) + rng.Float64()*float64(side-2*textInset)
		angle := (rng.Float64()*2 - 1) * cfg.Rotation
		opacity := cfg.Alpha.Low + rng.Float64()*(1-cfg.Alpha.Low)

		surf.DrawText(span, x, y,
			cfg.TextSize.Pick(rng),
			angle,
			canvas.HSL(rng.Float64()*360, 75, 60),
			opacity)
	}
}

// wordSpan extracts a random contiguous run of up to four words. A blank
// string yields "", a single word is used whole.
func wordSpan(text string, rng Rand) string {
	words := strings.Fields(text)
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	}
	maxSpan := min(4, len(words))
	n := 1 + rng.IntN(maxSpan)
	start := rng.IntN(len(words) - n + 1)
	return strings.Join(words[start:start+n], " ")
}

// randSpan picks a uniform int in [0, n], collapsing to 0 when n <= 0.
func randSpan(rng Rand, n int) int {
	if n <= 0 {
		return 0
	}
	return rng.IntN(n + 1)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
