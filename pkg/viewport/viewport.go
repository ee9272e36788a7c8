// Package viewport maps pointer positions from the displayed element's client
// space into the fixed logical raster space.
//
// The displayed element is scaled by layout independently of its backing
// raster, so every pointer position must be rescaled or strokes drift away
// from the cursor.
package viewport

import "github.com/aretw0/landsketch/pkg/domain"

// ToLogical converts client coordinates into logical raster coordinates:
//
//	x = (clientX - rect.Left) / rect.Width  * logicalW
//	y = (clientY - rect.Top)  / rect.Height * logicalH
//
// An unmounted or unmeasurable element (nil rect, zero size) maps to the origin.
func ToLogical(clientX, clientY float64, rect *domain.Rect, logicalW, logicalH int) domain.Point {
	if !rect.Measurable() {
		return domain.Point{}
	}
	return domain.Point{
		X: (clientX - rect.Left) / rect.Width * float64(logicalW),
		Y: (clientY - rect.Top) / rect.Height * float64(logicalH),
	}
}

// Identity returns the rect of an element displayed at exactly its logical size.
func Identity(logicalW, logicalH int) *domain.Rect {
	return &domain.Rect{Width: float64(logicalW), Height: float64(logicalH)}
}
