package painter_test

import (
	"context"
	"testing"

	"github.com/aretw0/landsketch/pkg/domain"
	"github.com/aretw0/landsketch/pkg/painter"
	"github.com/aretw0/landsketch/pkg/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMounted(t *testing.T, opts ...painter.Option) *painter.Engine {
	t.Helper()
	e := painter.New(570, 570, opts...)
	e.Mount()
	return e
}

func pixel(t *testing.T, e *painter.Engine, x, y int) domain.RGB {
	t.Helper()
	img, err := e.Snapshot()
	require.NoError(t, err)
	i := img.PixOffset(x, y)
	return domain.RGB{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2]}
}

func TestEngine_Defaults(t *testing.T) {
	e := painter.New(0, 0)

	w, h := e.Bounds()
	assert.Equal(t, painter.DefaultWidth, w)
	assert.Equal(t, painter.DefaultHeight, h)
	assert.Equal(t, domain.BrushMountain, e.Brush())
	assert.Equal(t, 80, e.BrushSize())
	assert.False(t, e.Mounted())
}

func TestEngine_DownDrawsNothing(t *testing.T) {
	e := newMounted(t)
	ctx := context.Background()

	e.Down(ctx, domain.Point{X: 100, Y: 100})

	assert.True(t, e.Painting())
	assert.Equal(t, 0, e.Segments())
	assert.Equal(t, palette.Background(), pixel(t, e, 100, 100))
}

func TestEngine_SegmentCountMatchesMoves(t *testing.T) {
	for _, moves := range []int{2, 3, 10} {
		e := newMounted(t)
		ctx := context.Background()

		e.Down(ctx, domain.Point{X: 10, Y: 10})
		for i := 1; i <= moves; i++ {
			e.Move(ctx, domain.Point{X: 10 + float64(i*20), Y: 10 + float64(i*15)})
		}
		e.Up(ctx)

		assert.Equal(t, moves, e.Segments(), "moves=%d", moves)
		assert.False(t, e.Painting())
	}
}

func TestEngine_MoveWhileIdleIgnored(t *testing.T) {
	e := newMounted(t)
	ctx := context.Background()

	e.Move(ctx, domain.Point{X: 50, Y: 50})
	e.Move(ctx, domain.Point{X: 150, Y: 50})

	assert.Equal(t, 0, e.Segments())
	assert.Equal(t, palette.Background(), pixel(t, e, 100, 50))
}

func TestEngine_LeaveEndsStroke(t *testing.T) {
	e := newMounted(t)
	ctx := context.Background()
	rect := &domain.Rect{Width: 570, Height: 570}

	e.Handle(ctx, domain.PointerEvent{Type: domain.PointerDown, ClientX: 10, ClientY: 10}, rect)
	e.Handle(ctx, domain.PointerEvent{Type: domain.PointerMove, ClientX: 60, ClientY: 10}, rect)
	e.Handle(ctx, domain.PointerEvent{Type: domain.PointerLeave}, rect)
	e.Handle(ctx, domain.PointerEvent{Type: domain.PointerMove, ClientX: 300, ClientY: 300}, rect)

	assert.Equal(t, 1, e.Segments())
	assert.False(t, e.Painting())
	assert.Equal(t, palette.Background(), pixel(t, e, 300, 300))
}

func TestEngine_WaterScenario(t *testing.T) {
	e := newMounted(t)
	ctx := context.Background()
	require.NoError(t, e.SetBrush(domain.BrushWater))
	require.NoError(t, e.SetSize(80))

	e.Down(ctx, domain.Point{X: 100, Y: 100})
	e.Move(ctx, domain.Point{X: 200, Y: 100})
	e.Up(ctx)

	water := domain.RGB{R: 74, G: 163, B: 210}
	for x := 100; x <= 200; x += 25 {
		assert.Equal(t, water, pixel(t, e, x, 100))
	}
	assert.Equal(t, domain.RGB{R: 179, G: 229, B: 252}, pixel(t, e, 150, 300))
	assert.Equal(t, domain.RGB{R: 179, G: 229, B: 252}, pixel(t, e, 400, 100))
}

func TestEngine_HandleScalesClientCoordinates(t *testing.T) {
	e := newMounted(t)
	ctx := context.Background()
	// Displayed at half size, offset in the page.
	rect := &domain.Rect{Left: 50, Top: 20, Width: 285, Height: 285}
	require.NoError(t, e.SetSize(10))

	e.Handle(ctx, domain.PointerEvent{Type: domain.PointerDown, ClientX: 100, ClientY: 70}, rect)
	e.Handle(ctx, domain.PointerEvent{Type: domain.PointerMove, ClientX: 150, ClientY: 70}, rect)

	mountain := palette.MustLookup(domain.BrushMountain)
	assert.Equal(t, mountain, pixel(t, e, 100, 100))
	assert.Equal(t, mountain, pixel(t, e, 200, 100))
	assert.Equal(t, palette.Background(), pixel(t, e, 50, 50))
}

func TestEngine_EraserRepaintsBackground(t *testing.T) {
	e := newMounted(t)
	ctx := context.Background()

	e.Down(ctx, domain.Point{X: 100, Y: 100})
	e.Move(ctx, domain.Point{X: 300, Y: 100})
	e.Up(ctx)
	require.Equal(t, palette.MustLookup(domain.BrushMountain), pixel(t, e, 200, 100))

	require.NoError(t, e.SetBrush(domain.BrushEraser))
	e.Down(ctx, domain.Point{X: 150, Y: 100})
	e.Move(ctx, domain.Point{X: 250, Y: 100})
	e.Up(ctx)

	assert.Equal(t, palette.Background(), pixel(t, e, 200, 100))
	img, err := e.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, uint8(0xff), img.Pix[img.PixOffset(200, 100)+3], "erasing is not transparency")
}

func TestEngine_ClearIdempotentAndKeepsSelection(t *testing.T) {
	e := newMounted(t)
	ctx := context.Background()
	require.NoError(t, e.SetBrush(domain.BrushTrees))
	require.NoError(t, e.SetSize(33))
	e.Down(ctx, domain.Point{X: 10, Y: 10})
	e.Move(ctx, domain.Point{X: 500, Y: 500})
	e.Up(ctx)

	e.Clear(ctx)
	once, err := e.Snapshot()
	require.NoError(t, err)
	e.Clear(ctx)
	twice, err := e.Snapshot()
	require.NoError(t, err)

	assert.Equal(t, once.Pix, twice.Pix)
	assert.Equal(t, palette.Background(), pixel(t, e, 255, 255))
	assert.Equal(t, domain.BrushTrees, e.Brush())
	assert.Equal(t, 33, e.BrushSize())
}

func TestEngine_UnreadySurfaceIsSilent(t *testing.T) {
	e := painter.New(570, 570)
	ctx := context.Background()

	assert.NotPanics(t, func() {
		e.Down(ctx, domain.Point{X: 1, Y: 1})
		e.Move(ctx, domain.Point{X: 100, Y: 100})
		e.Up(ctx)
		e.Clear(ctx)
	})
	assert.Equal(t, 0, e.Segments())

	_, err := e.Snapshot()
	assert.ErrorIs(t, err, domain.ErrSurfaceUnready)
}

func TestEngine_UnmountDropsRaster(t *testing.T) {
	e := newMounted(t)
	ctx := context.Background()
	e.Down(ctx, domain.Point{X: 1, Y: 1})

	e.Unmount()

	assert.False(t, e.Painting())
	_, err := e.Snapshot()
	assert.ErrorIs(t, err, domain.ErrSurfaceUnready)
}

func TestEngine_RejectsInvalidSelection(t *testing.T) {
	e := painter.New(570, 570)

	assert.ErrorIs(t, e.SetBrush("Lava"), domain.ErrUnknownBrush)
	assert.ErrorIs(t, e.SetSize(9), domain.ErrInvalidSize)
	assert.ErrorIs(t, e.SetSize(101), domain.ErrInvalidSize)
	assert.NoError(t, e.SetSize(10))
	assert.NoError(t, e.SetSize(100))
}

func TestEngine_Hooks(t *testing.T) {
	var segments []*domain.SegmentEvent
	clears := 0
	e := newMounted(t, painter.WithLifecycleHooks(domain.LifecycleHooks{
		OnSegment: func(ctx context.Context, ev *domain.SegmentEvent) { segments = append(segments, ev) },
		OnClear:   func(ctx context.Context, ev *domain.ClearEvent) { clears++ },
	}))
	ctx := context.Background()
	require.NoError(t, e.SetBrush(domain.BrushGrass))

	e.Down(ctx, domain.Point{X: 0, Y: 0})
	e.Move(ctx, domain.Point{X: 5, Y: 5})
	e.Clear(ctx)

	require.Len(t, segments, 1)
	assert.Equal(t, domain.BrushGrass, segments[0].Brush)
	assert.Equal(t, domain.Point{X: 5, Y: 5}, segments[0].To)
	assert.Equal(t, 1, clears)
}
