// Package painter implements the pointer-driven painting engine.
//
// The engine is a two-state machine (Idle, Painting) over pointer gestures.
// Pointer-down records the stroke start without drawing; each pointer-move
// while painting rasterises one segment from the previous position; pointer-up
// and pointer-leave end the stroke. The logical raster it paints on is owned
// exclusively by the engine; other components only read snapshots of it.
package painter

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/landsketch/internal/logging"
	"github.com/aretw0/landsketch/pkg/domain"
	"github.com/aretw0/landsketch/pkg/palette"
	"github.com/aretw0/landsketch/pkg/raster"
	"github.com/aretw0/landsketch/pkg/viewport"
)

// Default logical raster size.
const (
	DefaultWidth  = 570
	DefaultHeight = 570
)

// Engine turns pointer gestures into segments on the logical raster.
// It is safe for concurrent use; each call runs to completion before the next.
type Engine struct {
	mu sync.Mutex

	width, height int
	surface       *raster.Canvas // nil until Mount

	brush domain.BrushKind
	size  int

	painting bool
	last     *domain.Point
	segments int

	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// New creates an engine for a width x height logical raster. The raster does
// not exist until Mount is called.
func New(width, height int, opts ...Option) *Engine {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	e := &Engine{
		width:  width,
		height: height,
		brush:  domain.DefaultBrush,
		size:   domain.DefaultBrushSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	return e
}

// Mount acquires the drawing surface, filled with the background colour.
// Mounting an already mounted engine keeps the existing raster.
func (e *Engine) Mount() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.surface != nil {
		return
	}
	e.surface = raster.New(e.width, e.height, palette.Background())
	e.logger.Debug("surface mounted", "width", e.width, "height", e.height)
}

// Unmount releases the drawing surface. Subsequent operations are no-ops
// until the next Mount.
func (e *Engine) Unmount() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.surface = nil
	e.painting = false
	e.last = nil
}

// Mounted reports whether the drawing surface is present.
func (e *Engine) Mounted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface != nil
}

// Bounds returns the logical raster dimensions.
func (e *Engine) Bounds() (width, height int) {
	return e.width, e.height
}

// SetBrush selects the active brush.
func (e *Engine) SetBrush(kind domain.BrushKind) error {
	if _, err := palette.Lookup(kind); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.brush = kind
	return nil
}

// Brush returns the active brush.
func (e *Engine) Brush() domain.BrushKind {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.brush
}

// SetSize sets the stroke width in logical units.
func (e *Engine) SetSize(size int) error {
	if !domain.ValidBrushSize(size) {
		return fmt.Errorf("%w: %d (want %d-%d)", domain.ErrInvalidSize, size, domain.MinBrushSize, domain.MaxBrushSize)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.size = size
	return nil
}

// BrushSize returns the stroke width in logical units.
func (e *Engine) BrushSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.size
}

// Painting reports whether a stroke is in progress.
func (e *Engine) Painting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.painting
}

// Segments returns how many segments have been rasterised.
func (e *Engine) Segments() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.segments
}

// Handle maps a client-space pointer event through the displayed element's
// rect and dispatches it.
func (e *Engine) Handle(ctx context.Context, ev domain.PointerEvent, rect *domain.Rect) {
	switch ev.Type {
	case domain.PointerDown:
		e.Down(ctx, viewport.ToLogical(ev.ClientX, ev.ClientY, rect, e.width, e.height))
	case domain.PointerMove:
		e.Move(ctx, viewport.ToLogical(ev.ClientX, ev.ClientY, rect, e.width, e.height))
	case domain.PointerUp, domain.PointerLeave:
		e.Up(ctx)
	default:
		e.logger.Debug("ignoring pointer event", "type", ev.Type)
	}
}

// Down starts a stroke at p (logical space). Nothing is drawn: a single point
// has no second endpoint.
func (e *Engine) Down(ctx context.Context, p domain.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.surface == nil {
		return
	}
	e.painting = true
	e.last = &p
}

// Move extends the stroke to p (logical space), rasterising the segment from
// the last position. Moves outside a stroke are ignored.
func (e *Engine) Move(ctx context.Context, p domain.Point) {
	e.mu.Lock()
	if !e.painting || e.surface == nil {
		e.mu.Unlock()
		return
	}
	var ev *domain.SegmentEvent
	if e.last != nil {
		// Eraser resolves to the background colour through the palette.
		col := palette.MustLookup(e.brush)
		e.surface.StrokeSegment(*e.last, p, raster.Stroke{Width: float64(e.size), Color: col})
		e.segments++
		ev = &domain.SegmentEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventSegment},
			Brush:     e.brush,
			Width:     e.size,
			From:      *e.last,
			To:        p,
		}
	}
	e.last = &p
	e.mu.Unlock()

	if ev != nil && e.hooks.OnSegment != nil {
		e.hooks.OnSegment(ctx, ev)
	}
}

// Up ends the current stroke, if any. Pointer-leave is handled the same way.
func (e *Engine) Up(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.painting = false
	e.last = nil
}

// Clear resets the whole raster to the background colour. Brush and size are
// kept. Clear is idempotent.
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	if e.surface == nil {
		e.mu.Unlock()
		return
	}
	e.surface.Fill(palette.Background())
	e.mu.Unlock()

	if e.hooks.OnClear != nil {
		e.hooks.OnClear(ctx, &domain.ClearEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventClear},
		})
	}
}

// Snapshot returns a copy of the raster for encoding.
// It returns domain.ErrSurfaceUnready when the surface is not mounted.
func (e *Engine) Snapshot() (*image.RGBA, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.surface == nil {
		return nil, domain.ErrSurfaceUnready
	}
	return e.surface.Snapshot(), nil
}
