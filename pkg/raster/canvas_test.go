package raster_test

import (
	"testing"

	"github.com/aretw0/landsketch/pkg/domain"
	"github.com/aretw0/landsketch/pkg/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sky   = domain.RGB{R: 179, G: 229, B: 252}
	water = domain.RGB{R: 74, G: 163, B: 210}
	dirt  = domain.RGB{R: 137, G: 115, B: 96}
)

func TestNew_FilledWithBackground(t *testing.T) {
	c := raster.New(7, 5, sky)

	require.Equal(t, 7, c.Width())
	require.Equal(t, 5, c.Height())
	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			assert.Equal(t, sky, c.At(x, y))
		}
	}
	assert.Equal(t, uint8(0xff), c.Snapshot().Pix[3], "canvas is opaque")
}

func TestStrokeSegment_HorizontalCapsule(t *testing.T) {
	c := raster.New(300, 200, sky)

	n := c.StrokeSegment(domain.Point{X: 100, Y: 100}, domain.Point{X: 200, Y: 100}, raster.Stroke{Width: 80, Color: water})
	require.Positive(t, n)

	// Along the segment and within half width.
	assert.Equal(t, water, c.At(100, 100))
	assert.Equal(t, water, c.At(150, 100))
	assert.Equal(t, water, c.At(199, 100))
	assert.Equal(t, water, c.At(150, 61))
	assert.Equal(t, water, c.At(150, 138))

	// Round caps reach 40 units past each endpoint on the axis.
	assert.Equal(t, water, c.At(61, 100))
	assert.Equal(t, water, c.At(238, 100))

	// Outside the stroke.
	assert.Equal(t, sky, c.At(150, 59))
	assert.Equal(t, sky, c.At(150, 141))
	assert.Equal(t, sky, c.At(58, 100))
	assert.Equal(t, sky, c.At(242, 100))
	// Corner of the bounding box is outside the rounded cap.
	assert.Equal(t, sky, c.At(62, 62))
}

func TestStrokeSegment_OnlyPaletteColours(t *testing.T) {
	c := raster.New(120, 120, sky)
	c.StrokeSegment(domain.Point{X: 10.3, Y: 17.9}, domain.Point{X: 97.2, Y: 83.4}, raster.Stroke{Width: 23, Color: dirt})

	img := c.Snapshot()
	for i := 0; i < len(img.Pix); i += 4 {
		got := domain.RGB{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2]}
		if got != sky && got != dirt {
			t.Fatalf("blended colour %v at offset %d", got, i)
		}
		require.Equal(t, uint8(0xff), img.Pix[i+3])
	}
}

func TestStrokeSegment_Overwrites(t *testing.T) {
	c := raster.New(100, 100, sky)
	c.StrokeSegment(domain.Point{X: 10, Y: 50}, domain.Point{X: 90, Y: 50}, raster.Stroke{Width: 20, Color: water})
	c.StrokeSegment(domain.Point{X: 50, Y: 10}, domain.Point{X: 50, Y: 90}, raster.Stroke{Width: 20, Color: dirt})

	assert.Equal(t, dirt, c.At(50, 50), "later stroke occludes earlier one")
	assert.Equal(t, water, c.At(20, 50))
}

func TestStrokeSegment_ZeroLengthIsDot(t *testing.T) {
	c := raster.New(50, 50, sky)
	p := domain.Point{X: 25, Y: 25}

	n := c.StrokeSegment(p, p, raster.Stroke{Width: 10, Color: water})

	assert.Positive(t, n)
	assert.Equal(t, water, c.At(25, 25))
	assert.Equal(t, sky, c.At(25, 31))
}

func TestStrokeSegment_ClipsToBounds(t *testing.T) {
	c := raster.New(40, 40, sky)

	assert.NotPanics(t, func() {
		c.StrokeSegment(domain.Point{X: -100, Y: 0}, domain.Point{X: 500, Y: 20}, raster.Stroke{Width: 100, Color: water})
	})
	assert.Equal(t, water, c.At(0, 0))
	assert.Equal(t, 0, c.StrokeSegment(domain.Point{X: 900, Y: 900}, domain.Point{X: 950, Y: 950}, raster.Stroke{Width: 10, Color: water}))
}

func TestFill_Resets(t *testing.T) {
	c := raster.New(30, 30, sky)
	c.StrokeSegment(domain.Point{X: 0, Y: 0}, domain.Point{X: 30, Y: 30}, raster.Stroke{Width: 10, Color: water})

	c.Fill(sky)

	assert.Equal(t, raster.New(30, 30, sky).Snapshot().Pix, c.Snapshot().Pix)
}

func TestSnapshot_IsCopy(t *testing.T) {
	c := raster.New(10, 10, sky)
	snap := c.Snapshot()
	c.Fill(water)

	assert.Equal(t, sky.R, snap.Pix[0])
}
