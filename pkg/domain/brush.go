package domain

import (
	"fmt"
	"image/color"
)

// BrushKind identifies a semantic paint category.
type BrushKind string

const (
	BrushSky      BrushKind = "Sky"
	BrushMountain BrushKind = "Mountain"
	BrushWater    BrushKind = "Water"
	BrushTrees    BrushKind = "Trees"
	BrushFlowers  BrushKind = "Flowers"
	BrushBoulders BrushKind = "Boulders"
	BrushPath     BrushKind = "Path"
	BrushGrass    BrushKind = "Grass"
	BrushDirt     BrushKind = "Dirt"
	BrushEraser   BrushKind = "Eraser" // Repaints with the Sky colour, never transparency.
)

// Brush size bounds, in logical units.
const (
	MinBrushSize     = 10
	MaxBrushSize     = 100
	DefaultBrushSize = 80
	DefaultBrush     = BrushMountain
)

// RGB is an opaque 8-bit colour triple.
type RGB struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
}

// RGBA converts the triple to a fully opaque color.RGBA.
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// Hex returns the colour as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// ValidBrushSize reports whether size is within [MinBrushSize, MaxBrushSize].
func ValidBrushSize(size int) bool {
	return size >= MinBrushSize && size <= MaxBrushSize
}
