// Package raster holds the fixed-resolution logical pixel buffer and the
// segment rasteriser used by the painting engine.
//
// Pixels are either fully painted or untouched: there is no anti-aliasing and
// no blending, so the buffer only ever contains colours that were painted into
// it. The search backend classifies regions by exact colour and depends on it.
package raster

import (
	"image"
	"math"

	"github.com/aretw0/landsketch/pkg/domain"
)

// Canvas is an opaque RGBA pixel buffer with origin (0,0) at top-left.
type Canvas struct {
	img *image.RGBA
}

// New creates a width x height canvas filled with bg.
func New(width, height int, bg domain.RGB) *Canvas {
	c := &Canvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}
	c.Fill(bg)
	return c
}

// Width returns the width of the canvas.
func (c *Canvas) Width() int {
	return c.img.Rect.Dx()
}

// Height returns the height of the canvas.
func (c *Canvas) Height() int {
	return c.img.Rect.Dy()
}

// Fill overwrites every pixel with col.
func (c *Canvas) Fill(col domain.RGB) {
	pix := c.img.Pix
	if len(pix) == 0 {
		return
	}
	pix[0], pix[1], pix[2], pix[3] = col.R, col.G, col.B, 0xff
	// Doubling copy: each pass duplicates the already filled prefix.
	for filled := 4; filled < len(pix); filled *= 2 {
		copy(pix[filled:], pix[:filled])
	}
}

// At returns the colour of a pixel. Out-of-bounds reads return the zero RGB.
func (c *Canvas) At(x, y int) domain.RGB {
	if !(image.Point{X: x, Y: y}.In(c.img.Rect)) {
		return domain.RGB{}
	}
	i := c.img.PixOffset(x, y)
	return domain.RGB{R: c.img.Pix[i], G: c.img.Pix[i+1], B: c.img.Pix[i+2]}
}

// Snapshot returns an independent copy of the pixels.
func (c *Canvas) Snapshot() *image.RGBA {
	out := image.NewRGBA(c.img.Rect)
	copy(out.Pix, c.img.Pix)
	return out
}

// Stroke is the style of a rasterised segment. Caps and joins are always round.
type Stroke struct {
	Width float64
	Color domain.RGB
}

// StrokeSegment paints every pixel whose centre lies within Width/2 of the
// segment from-to, overwriting what was there. It returns the number of
// pixels written.
//
// Measuring distance to the segment (not the infinite line) yields round caps;
// consecutive segments share endpoints, which yields round joins.
func (c *Canvas) StrokeSegment(from, to domain.Point, s Stroke) int {
	r := s.Width / 2
	if r <= 0 {
		return 0
	}
	bounds := c.img.Rect
	x0 := clampInt(int(math.Floor(math.Min(from.X, to.X)-r)), bounds.Min.X, bounds.Max.X)
	x1 := clampInt(int(math.Ceil(math.Max(from.X, to.X)+r)), bounds.Min.X, bounds.Max.X)
	y0 := clampInt(int(math.Floor(math.Min(from.Y, to.Y)-r)), bounds.Min.Y, bounds.Max.Y)
	y1 := clampInt(int(math.Ceil(math.Max(from.Y, to.Y)+r)), bounds.Min.Y, bounds.Max.Y)

	dx, dy := to.X-from.X, to.Y-from.Y
	len2 := dx*dx + dy*dy
	r2 := r * r

	painted := 0
	for y := y0; y < y1; y++ {
		py := float64(y) + 0.5
		i := c.img.PixOffset(x0, y)
		for x := x0; x < x1; x, i = x+1, i+4 {
			px := float64(x) + 0.5
			if distSq(px, py, from, dx, dy, len2) > r2 {
				continue
			}
			c.img.Pix[i] = s.Color.R
			c.img.Pix[i+1] = s.Color.G
			c.img.Pix[i+2] = s.Color.B
			c.img.Pix[i+3] = 0xff
			painted++
		}
	}
	return painted
}

// distSq is the squared distance from (px,py) to the segment starting at
// from with direction (dx,dy) and squared length len2.
func distSq(px, py float64, from domain.Point, dx, dy, len2 float64) float64 {
	ox, oy := px-from.X, py-from.Y
	if len2 == 0 {
		return ox*ox + oy*oy
	}
	t := (ox*dx + oy*dy) / len2
	switch {
	case t < 0:
		t = 0
	case t > 1:
		t = 1
	}
	ex, ey := ox-t*dx, oy-t*dy
	return ex*ex + ey*ey
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
