package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/landsketch"
	"github.com/aretw0/landsketch/pkg/domain"
	"github.com/aretw0/landsketch/pkg/palette"
	"github.com/aretw0/landsketch/pkg/ports"
	"github.com/aretw0/landsketch/pkg/script"
)

// Paint builds a studio over store and replays the script at path into it.
// It returns the studio and the number of strokes replayed.
func (a *App) Paint(ctx context.Context, store ports.KVStore, path string, opts ...landsketch.Option) (*landsketch.Studio, int, error) {
	sc, err := script.Load(path)
	if err != nil {
		return nil, 0, err
	}

	studio, err := a.NewStudio(store, opts...)
	if err != nil {
		return nil, 0, err
	}

	n, err := sc.Replay(ctx, studio)
	if err != nil {
		return nil, n, fmt.Errorf("replay stopped after %d strokes: %w", n, err)
	}
	a.Logger.Debug("script replayed", "path", path, "strokes", n, "segments", studio.Engine().Segments())
	return studio, n, nil
}

// CoverageRow is one line of the stats table.
type CoverageRow struct {
	Brush   domain.BrushKind `json:"brush"`
	Pixels  int              `json:"pixels"`
	Percent float64          `json:"percent"`
}

// CoverageRows orders a coverage histogram by pixel count, largest first.
// Pixels outside the palette are reported under "Unknown".
func CoverageRows(cov map[domain.BrushKind]int) []CoverageRow {
	total := 0
	for _, n := range cov {
		total += n
	}

	rows := make([]CoverageRow, 0, len(cov))
	for kind, n := range cov {
		if n == 0 {
			continue
		}
		if kind == "" {
			kind = "Unknown"
		}
		rows = append(rows, CoverageRow{
			Brush:   kind,
			Pixels:  n,
			Percent: 100 * float64(n) / float64(total),
		})
	}

	rank := make(map[domain.BrushKind]int)
	for i, kind := range palette.Kinds() {
		rank[kind] = i
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Pixels != rows[j].Pixels {
			return rows[i].Pixels > rows[j].Pixels
		}
		return rank[rows[i].Brush] < rank[rows[j].Brush]
	})
	return rows
}
