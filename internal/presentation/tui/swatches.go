package tui

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/aretw0/landsketch/pkg/codec"
	"github.com/aretw0/landsketch/pkg/palette"
	"github.com/muesli/termenv"
)

// PrintPalette writes one line per brush: a colour block, the name and the
// exact RGB triple.
func PrintPalette(w io.Writer) {
	p := profileFor(w)
	for _, kind := range palette.Kinds() {
		c := palette.MustLookup(kind)
		block := p.String("    ").Background(p.Color(c.Hex()))
		if p == termenv.Ascii {
			block = p.String("[  ]")
		}
		fmt.Fprintf(w, "%s %-9s %s  rgb(%d, %d, %d)\n", block, kind, c.Hex(), c.R, c.G, c.B)
	}
}

// RenderPreview draws img with half-block characters, two pixel rows per
// text line, scaled to at most cols columns. Without colour support every
// cell is the first letter of its class.
func RenderPreview(w io.Writer, img image.Image, cols int) {
	p := profileFor(w)
	small := codec.Preview(img, cols)
	b := small.Bounds()

	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := small.RGBAAt(x, y)
			if p == termenv.Ascii {
				sb.WriteByte(classLetter(top))
				continue
			}
			cell := p.String("▀").Foreground(p.FromColor(top))
			if y+1 < b.Max.Y {
				cell = cell.Background(p.FromColor(small.RGBAAt(x, y+1)))
			}
			sb.WriteString(cell.String())
		}
		sb.WriteByte('\n')
	}
	fmt.Fprint(w, sb.String())
}

func classLetter(c color.Color) byte {
	kind, ok := palette.Classify(c)
	if !ok || kind == "" {
		return '?'
	}
	return kind[0]
}
