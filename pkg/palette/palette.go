// Package palette is the fixed brush-to-colour table shared with the search
// backend's classifier. The triples are a versionless wire contract: changing
// one without a matching backend update silently breaks classification.
package palette

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/aretw0/landsketch/pkg/domain"
)

var table = map[domain.BrushKind]domain.RGB{
	domain.BrushSky:      {R: 179, G: 229, B: 252},
	domain.BrushMountain: {R: 97, G: 115, B: 97},
	domain.BrushWater:    {R: 74, G: 163, B: 210},  // WATER_BODY
	domain.BrushTrees:    {R: 46, G: 139, B: 87},   // FOREST_TREES
	domain.BrushFlowers:  {R: 231, G: 154, B: 184},
	domain.BrushBoulders: {R: 164, G: 159, B: 154}, // BOULDERS_CLIFF
	domain.BrushPath:     {R: 191, G: 168, B: 147}, // PATH_ROAD
	domain.BrushGrass:    {R: 122, G: 180, B: 96},  // GRASS_FIELD
	domain.BrushDirt:     {R: 137, G: 115, B: 96},  // EARTH_LAND
	domain.BrushEraser:   {R: 179, G: 229, B: 252},
}

// order is the toolbar order.
var order = []domain.BrushKind{
	domain.BrushSky,
	domain.BrushMountain,
	domain.BrushWater,
	domain.BrushTrees,
	domain.BrushFlowers,
	domain.BrushBoulders,
	domain.BrushPath,
	domain.BrushGrass,
	domain.BrushDirt,
	domain.BrushEraser,
}

// reverse maps a packed colour to its semantic class. Eraser is left out so
// the background always classifies as Sky.
var reverse = func() map[uint32]domain.BrushKind {
	m := make(map[uint32]domain.BrushKind, len(table))
	for _, kind := range order {
		if kind == domain.BrushEraser {
			continue
		}
		m[pack(table[kind])] = kind
	}
	return m
}()

func pack(c domain.RGB) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Lookup returns the colour painted by kind.
func Lookup(kind domain.BrushKind) (domain.RGB, error) {
	c, ok := table[kind]
	if !ok {
		return domain.RGB{}, fmt.Errorf("%w: %q", domain.ErrUnknownBrush, kind)
	}
	return c, nil
}

// MustLookup is Lookup for brushes known to be valid.
func MustLookup(kind domain.BrushKind) domain.RGB {
	c, err := Lookup(kind)
	if err != nil {
		panic(err)
	}
	return c
}

// Background is the colour of an empty canvas, shared by Sky and Eraser.
func Background() domain.RGB {
	return table[domain.BrushEraser]
}

// Kinds returns every brush in toolbar order.
func Kinds() []domain.BrushKind {
	out := make([]domain.BrushKind, len(order))
	copy(out, order)
	return out
}

// Parse resolves a brush name, ignoring case and surrounding spaces.
func Parse(name string) (domain.BrushKind, error) {
	name = strings.TrimSpace(name)
	for _, kind := range order {
		if strings.EqualFold(string(kind), name) {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownBrush, name)
}

// Classify maps an exact palette colour back to its class.
// Alpha is ignored; anything that is not a palette colour reports false.
func Classify(c color.Color) (domain.BrushKind, bool) {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	kind, ok := reverse[pack(domain.RGB{R: rgba.R, G: rgba.G, B: rgba.B})]
	return kind, ok
}

// Coverage counts pixels per semantic class. Pixels that match no palette
// colour are counted under the empty kind.
func Coverage(img image.Image) map[domain.BrushKind]int {
	counts := make(map[domain.BrushKind]int)
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := rgba.Pix[rgba.PixOffset(b.Min.X, y):rgba.PixOffset(b.Max.X, y)]
			for i := 0; i+3 < len(row); i += 4 {
				counts[reverse[pack(domain.RGB{R: row[i], G: row[i+1], B: row[i+2]})]]++
			}
		}
		return counts
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			kind, _ := Classify(img.At(x, y))
			counts[kind]++
		}
	}
	return counts
}
