// Package submit sends the painted sketch to the image-search backend and
// routes the answer to the session store, the navigator and the notifier.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/landsketch/internal/logging"
	"github.com/aretw0/landsketch/pkg/codec"
	"github.com/aretw0/landsketch/pkg/domain"
	"github.com/aretw0/landsketch/pkg/ports"
)

// DefaultPath is the search route on the backend.
const DefaultPath = "/api/search"

// Multipart layout of the request body.
const (
	FieldName = "file"
	FileName  = "sketch.png"
)

// User-visible messages.
const (
	MsgEncodingFailed  = "Error creating image file."
	MsgRejectedPrefix  = "Failed to submit: "
	MsgUnknownError    = "Unknown error"
	MsgTransportFailed = "Error submitting image. Is the search server running?"
	MsgStoreFailed     = "Error saving search results."
)

// Outcome is the terminal state of one Submit call.
type Outcome string

const (
	OutcomeSucceeded       Outcome = "succeeded"
	OutcomeRejected        Outcome = "rejected"
	OutcomeTransportFailed Outcome = "transport_failed"
	OutcomeEncodingFailed  Outcome = "encoding_failed"
	OutcomeStoreFailed     Outcome = "store_failed"
	OutcomeBusy            Outcome = "busy"
	OutcomeUnready         Outcome = "unready"
	OutcomeClosed          Outcome = "closed"
)

// Source provides the raster to submit.
type Source interface {
	Snapshot() (*image.RGBA, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func() (*image.RGBA, error)

// Snapshot calls f.
func (f SourceFunc) Snapshot() (*image.RGBA, error) { return f() }

// Report describes how a submission ended.
type Report struct {
	Outcome  Outcome                  `json:"outcome"`
	Status   int                      `json:"status,omitempty"`
	Message  string                   `json:"message,omitempty"`
	Bytes    int                      `json:"bytes,omitempty"`
	Duration time.Duration            `json:"duration,omitempty"`
	Result   *domain.SubmissionResult `json:"result,omitempty"`
	Err      error                    `json:"-"`
}

// Pipeline runs submissions for one session. At most one is in flight.
type Pipeline struct {
	endpoint  string
	client    *http.Client
	store     ports.KVStore
	navigator ports.Navigator
	notifier  ports.Notifier
	hooks     domain.LifecycleHooks
	logger    *slog.Logger

	inFlight atomic.Bool

	mu     sync.Mutex
	closed bool
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures the Pipeline.
type Option func(*Pipeline)

// WithHTTPClient sets the client used for the search request.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Pipeline) {
		p.client = c
	}
}

// WithNavigator sets where control goes after a successful submission.
func WithNavigator(n ports.Navigator) Option {
	return func(p *Pipeline) {
		p.navigator = n
	}
}

// WithNotifier sets the sink for user-visible failure messages.
func WithNotifier(n ports.Notifier) Option {
	return func(p *Pipeline) {
		p.notifier = n
	}
}

// WithLifecycleHooks registers submission callbacks.
func WithLifecycleHooks(h domain.LifecycleHooks) Option {
	return func(p *Pipeline) {
		p.hooks = h
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// New creates a Pipeline posting to endpoint and caching into store.
func New(endpoint string, store ports.KVStore, opts ...Option) *Pipeline {
	p := &Pipeline{
		endpoint:  endpoint,
		client:    http.DefaultClient,
		store:     store,
		navigator: ports.NavigatorFunc(func(context.Context, domain.View) error { return nil }),
		notifier:  ports.NotifierFunc(func(context.Context, string) {}),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = http.DefaultClient
	}
	return p
}

// Endpoint resolves path against base. An empty path means DefaultPath.
func Endpoint(base, path string) (string, error) {
	if path == "" {
		path = DefaultPath
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", base, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid endpoint %q: scheme and host required", base)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	return u.String(), nil
}

// URL returns the search endpoint.
func (p *Pipeline) URL() string {
	return p.endpoint
}

// Submitting reports whether a submission is in flight.
func (p *Pipeline) Submitting() bool {
	return p.inFlight.Load()
}

// Submit encodes the current raster of src and posts it to the backend.
// Failures are reported through the notifier and the returned Report; Submit
// never retries.
func (p *Pipeline) Submit(ctx context.Context, src Source) Report {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.logger.Debug("submission already in flight")
		return p.finish(ctx, Report{Outcome: OutcomeBusy})
	}
	defer p.inFlight.Store(false)

	ctx, release, ok := p.begin(ctx)
	if !ok {
		return p.finish(ctx, Report{Outcome: OutcomeClosed})
	}
	defer release()

	img, err := src.Snapshot()
	if err != nil {
		if errors.Is(err, domain.ErrSurfaceUnready) {
			return p.finish(ctx, Report{Outcome: OutcomeUnready, Err: err})
		}
		return p.fail(ctx, Report{Outcome: OutcomeEncodingFailed, Err: err}, MsgEncodingFailed)
	}

	if p.hooks.OnSubmitStart != nil {
		p.hooks.OnSubmitStart(ctx, &domain.SubmitEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventSubmitStart},
		})
	}
	start := time.Now()

	enc, err := codec.Encode(img)
	if err != nil {
		return p.fail(ctx, Report{Outcome: OutcomeEncodingFailed, Err: err}, MsgEncodingFailed)
	}
	if err := p.store.Set(ctx, domain.KeyUserSketch, enc.DataURI); err != nil {
		p.logger.Warn("failed to cache sketch", "err", err)
	}

	report := p.exchange(ctx, enc.Blob)
	report.Bytes = len(enc.Blob)
	report.Duration = time.Since(start)

	if p.isClosed() {
		report.Outcome = OutcomeClosed
		report.Message = ""
		report.Result = nil
		return p.finish(ctx, report)
	}

	switch report.Outcome {
	case OutcomeRejected:
		return p.fail(ctx, report, report.Message)
	case OutcomeTransportFailed:
		return p.fail(ctx, report, MsgTransportFailed)
	}

	if err := p.storeResult(ctx, report.Result); err != nil {
		report.Outcome = OutcomeStoreFailed
		report.Err = err
		return p.fail(ctx, report, MsgStoreFailed)
	}

	if err := p.navigator.Navigate(ctx, domain.ViewResults); err != nil {
		p.logger.Warn("navigation to results failed", "err", err)
	}
	return p.finish(ctx, report)
}

// begin registers the in-flight submission so Close can abort and await it.
func (p *Pipeline) begin(ctx context.Context) (context.Context, func(), bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ctx, nil, false
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel, p.done = cancel, done
	return ctx, func() {
		cancel()
		p.mu.Lock()
		p.cancel, p.done = nil, nil
		p.mu.Unlock()
		close(done)
	}, true
}

func (p *Pipeline) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Close stops the pipeline. An in-flight submission is cancelled and Close
// returns once it has ended; it writes nothing to the store after its
// exchange. Later calls to Submit report OutcomeClosed.
func (p *Pipeline) Close() {
	p.mu.Lock()
	p.closed = true
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// exchange performs the single POST and classifies the answer.
func (p *Pipeline) exchange(ctx context.Context, blob []byte) Report {
	body, contentType, err := multipartBody(blob)
	if err != nil {
		return Report{Outcome: OutcomeTransportFailed, Err: &domain.TransportError{Err: err}}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, body)
	if err != nil {
		return Report{Outcome: OutcomeTransportFailed, Err: &domain.TransportError{Err: err}}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Report{Outcome: OutcomeTransportFailed, Err: &domain.TransportError{Err: err}}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Report{Outcome: OutcomeTransportFailed, Status: resp.StatusCode, Err: &domain.TransportError{Err: err}}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := rejectionDetail(raw)
		msg := MsgRejectedPrefix + detail
		if detail == "" {
			msg = MsgRejectedPrefix + MsgUnknownError
		}
		return Report{
			Outcome: OutcomeRejected,
			Status:  resp.StatusCode,
			Message: msg,
			Err:     &domain.BackendRejectedError{Status: resp.StatusCode, Detail: detail},
		}
	}

	result, err := decodeResult(raw)
	if err != nil {
		return Report{Outcome: OutcomeTransportFailed, Status: resp.StatusCode, Err: &domain.TransportError{Err: err}}
	}
	return Report{Outcome: OutcomeSucceeded, Status: resp.StatusCode, Result: result}
}

func (p *Pipeline) storeResult(ctx context.Context, r *domain.SubmissionResult) error {
	if err := p.store.Set(ctx, domain.KeySearchResults, string(r.Results)); err != nil {
		return fmt.Errorf("failed to store %s: %w", domain.KeySearchResults, err)
	}
	if err := p.store.Set(ctx, domain.KeyDebugInfo, string(r.DebugInfo)); err != nil {
		return fmt.Errorf("failed to store %s: %w", domain.KeyDebugInfo, err)
	}
	return nil
}

func (p *Pipeline) fail(ctx context.Context, r Report, message string) Report {
	r.Message = message
	p.notifier.Notify(ctx, message)
	return p.finish(ctx, r)
}

func (p *Pipeline) finish(ctx context.Context, r Report) Report {
	attrs := []any{"outcome", r.Outcome}
	if r.Status != 0 {
		attrs = append(attrs, "status", r.Status)
	}
	if r.Duration > 0 {
		attrs = append(attrs, "duration", r.Duration)
	}
	if r.Err != nil {
		attrs = append(attrs, "err", r.Err)
	}
	switch r.Outcome {
	case OutcomeSucceeded:
		p.logger.Info("submission finished", attrs...)
	case OutcomeBusy, OutcomeUnready, OutcomeClosed:
		p.logger.Debug("submission skipped", attrs...)
	default:
		p.logger.Warn("submission failed", attrs...)
	}

	if p.hooks.OnSubmitFinish != nil {
		p.hooks.OnSubmitFinish(ctx, &domain.SubmitEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventSubmitFinish},
			Outcome:   string(r.Outcome),
			Status:    r.Status,
			Bytes:     r.Bytes,
			Duration:  r.Duration,
		})
	}
	return r
}

func multipartBody(blob []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FieldName, FileName))
	h.Set("Content-Type", codec.MediaType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(blob); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// decodeResult requires both fields to be present and stores them compacted.
// A present null is kept as "null".
func decodeResult(raw []byte) (*domain.SubmissionResult, error) {
	var r domain.SubmissionResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("malformed search response: %w", err)
	}
	results, err := compact(r.Results)
	if err != nil {
		return nil, fmt.Errorf("malformed search response: results: %w", err)
	}
	debug, err := compact(r.DebugInfo)
	if err != nil {
		return nil, fmt.Errorf("malformed search response: debug_info: %w", err)
	}
	return &domain.SubmissionResult{Results: results, DebugInfo: debug}, nil
}

func compact(raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, errors.New("missing")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// rejectionDetail extracts "detail" from an error body. A non-string detail
// is returned as compact JSON; anything unparseable yields "".
func rejectionDetail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if len(body.Detail) == 0 || string(body.Detail) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}
	d, err := compact(body.Detail)
	if err != nil {
		return ""
	}
	return string(d)
}
