package landsketch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/aretw0/landsketch/internal/logging"
	"github.com/aretw0/landsketch/pkg/adapters/memory"
	"github.com/aretw0/landsketch/pkg/domain"
	"github.com/aretw0/landsketch/pkg/export"
	"github.com/aretw0/landsketch/pkg/painter"
	"github.com/aretw0/landsketch/pkg/palette"
	"github.com/aretw0/landsketch/pkg/ports"
	"github.com/aretw0/landsketch/pkg/submit"
)

// DefaultEndpoint is where sketches are submitted when no endpoint is configured.
const DefaultEndpoint = "http://localhost:8000" + submit.DefaultPath

// Studio is the controller of one painting session.
// It owns the painting engine, the submission pipeline and the UI state.
type Studio struct {
	engine   *painter.Engine
	pipeline *submit.Pipeline
	store    ports.KVStore

	endpoint  string
	client    *http.Client
	width     int
	height    int
	navigator ports.Navigator
	notifier  ports.Notifier
	hooks     domain.LifecycleHooks
	logger    *slog.Logger

	mu   sync.Mutex
	help bool
	view domain.View
}

// Option defines a functional option for configuring the Studio.
type Option func(*Studio)

// WithEndpoint sets the full URL of the search route.
func WithEndpoint(endpoint string) Option {
	return func(s *Studio) {
		s.endpoint = endpoint
	}
}

// WithHTTPClient sets the client used for submissions.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Studio) {
		s.client = c
	}
}

// WithStore sets the session-scoped key/value store (default: in-memory).
func WithStore(store ports.KVStore) Option {
	return func(s *Studio) {
		s.store = store
	}
}

// WithCanvasSize sets the logical raster size.
func WithCanvasSize(width, height int) Option {
	return func(s *Studio) {
		s.width = width
		s.height = height
	}
}

// WithNavigator is told about every view change.
func WithNavigator(n ports.Navigator) Option {
	return func(s *Studio) {
		s.navigator = n
	}
}

// WithNotifier receives user-visible failure messages.
func WithNotifier(n ports.Notifier) Option {
	return func(s *Studio) {
		s.notifier = n
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Studio) {
		s.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Studio) {
		s.logger = logger
	}
}

// New creates a Studio. The surface is not mounted yet; call Mount before painting.
func New(opts ...Option) (*Studio, error) {
	s := &Studio{
		endpoint: DefaultEndpoint,
		help:     true,
		view:     domain.ViewCanvas,
	}
	for _, opt := range opts {
		opt(s)
	}

	u, err := url.Parse(s.endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q", s.endpoint)
	}
	if s.width < 0 || s.height < 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", s.width, s.height)
	}

	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.store == nil {
		s.store = memory.NewStore()
	}

	s.engine = painter.New(s.width, s.height,
		painter.WithLogger(s.logger),
		painter.WithLifecycleHooks(s.hooks),
	)

	pipeOpts := []submit.Option{
		submit.WithHTTPClient(s.client),
		submit.WithNavigator(ports.NavigatorFunc(s.navigate)),
		submit.WithLifecycleHooks(s.hooks),
		submit.WithLogger(s.logger),
	}
	if s.notifier != nil {
		pipeOpts = append(pipeOpts, submit.WithNotifier(s.notifier))
	}
	s.pipeline = submit.New(s.endpoint, s.store, pipeOpts...)

	return s, nil
}

// Mount acquires the drawing surface.
func (s *Studio) Mount() {
	s.engine.Mount()
}

// Unmount releases the drawing surface.
func (s *Studio) Unmount() {
	s.engine.Unmount()
}

// Close ends the studio. An in-flight submission is cancelled and awaited,
// nothing more is written to the store, and the surface is released.
func (s *Studio) Close() {
	s.pipeline.Close()
	s.engine.Unmount()
}

// Engine returns the painting engine.
func (s *Studio) Engine() *painter.Engine {
	return s.engine
}

// Store returns the session store.
func (s *Studio) Store() ports.KVStore {
	return s.store
}

// Endpoint returns the search URL submissions go to.
func (s *Studio) Endpoint() string {
	return s.pipeline.URL()
}

// State returns a copy of the UI state.
func (s *Studio) State() domain.UIState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.UIState{
		Brush:       s.engine.Brush(),
		Size:        s.engine.BrushSize(),
		Submitting:  s.pipeline.Submitting(),
		HelpVisible: s.help,
		View:        s.view,
	}
}

// SelectBrush sets the active brush.
func (s *Studio) SelectBrush(kind domain.BrushKind) error {
	return s.engine.SetBrush(kind)
}

// SetSize sets the stroke width.
func (s *Studio) SetSize(size int) error {
	return s.engine.SetSize(size)
}

// ShowHelp opens the help dialog.
func (s *Studio) ShowHelp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.help = true
}

// HideHelp dismisses the help dialog.
func (s *Studio) HideHelp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.help = false
}

// Pointer dispatches a client-space pointer event measured against rect.
func (s *Studio) Pointer(ctx context.Context, ev domain.PointerEvent, rect *domain.Rect) {
	s.engine.Handle(ctx, ev, rect)
}

// Stroke paints a polyline in logical coordinates with the active brush.
func (s *Studio) Stroke(ctx context.Context, points ...domain.Point) {
	if len(points) == 0 {
		return
	}
	s.engine.Down(ctx, points[0])
	for _, p := range points[1:] {
		s.engine.Move(ctx, p)
	}
	s.engine.Up(ctx)
}

// Clear resets the raster to the background colour.
func (s *Studio) Clear(ctx context.Context) {
	s.engine.Clear(ctx)
}

// Snapshot returns a copy of the raster.
func (s *Studio) Snapshot() (*image.RGBA, error) {
	return s.engine.Snapshot()
}

// Coverage counts raster pixels per palette class.
func (s *Studio) Coverage() (map[domain.BrushKind]int, error) {
	img, err := s.engine.Snapshot()
	if err != nil {
		return nil, err
	}
	return palette.Coverage(img), nil
}

// Submit sends the raster to the search backend.
func (s *Studio) Submit(ctx context.Context) submit.Report {
	return s.pipeline.Submit(ctx, s.engine)
}

// Export writes painting.png into dir.
func (s *Studio) Export(dir string) (string, error) {
	img, err := s.engine.Snapshot()
	if err != nil {
		return "", err
	}
	return export.ToDir(dir, img)
}

// ExportTo writes the PNG encoding of the raster to w.
func (s *Studio) ExportTo(w io.Writer) (int, error) {
	img, err := s.engine.Snapshot()
	if err != nil {
		return 0, err
	}
	return export.WriteTo(w, img)
}

// Results reads the last successful submission from the session store.
func (s *Studio) Results(ctx context.Context) (*domain.SubmissionResult, error) {
	results, err := s.store.Get(ctx, domain.KeySearchResults)
	if err != nil {
		return nil, err
	}
	debug, err := s.store.Get(ctx, domain.KeyDebugInfo)
	if err != nil && !errors.Is(err, domain.ErrKeyNotFound) {
		return nil, err
	}
	r := &domain.SubmissionResult{Results: json.RawMessage(results)}
	if debug != "" {
		r.DebugInfo = json.RawMessage(debug)
	}
	return r, nil
}

// Navigate switches the current view and informs the navigator.
func (s *Studio) Navigate(ctx context.Context, view domain.View) error {
	return s.navigate(ctx, view)
}

func (s *Studio) navigate(ctx context.Context, view domain.View) error {
	s.mu.Lock()
	s.view = view
	s.mu.Unlock()

	s.logger.Debug("view changed", "view", view)
	if s.navigator != nil {
		return s.navigator.Navigate(ctx, view)
	}
	return nil
}

// Bounds returns the logical raster size.
func (s *Studio) Bounds() (width, height int) {
	return s.engine.Bounds()
}
