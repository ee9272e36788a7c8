// Package http exposes painting sessions over a JSON API and a websocket
// pointer stream.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/landsketch"
	"github.com/aretw0/landsketch/internal/logging"
	"github.com/aretw0/landsketch/pkg/domain"
	"github.com/aretw0/landsketch/pkg/export"
	"github.com/aretw0/landsketch/pkg/palette"
	"github.com/aretw0/landsketch/pkg/session"
	"github.com/aretw0/landsketch/pkg/submit"
	"github.com/aretw0/landsketch/pkg/viewport"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// Server implements ServerInterface on top of a session manager.
type Server struct {
	Sessions *session.Manager

	metrics  http.Handler
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// Ensure Server implements ServerInterface
var _ ServerInterface = (*Server)(nil)

// Option configures the Server.
type Option func(*Server)

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewHandler creates a new HTTP handler for the sessions of mgr.
func NewHandler(mgr *session.Manager, opts ...Option) http.Handler {
	server := &Server{
		Sessions: mgr,
		logger:   logging.NewNop(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec())
	})
	if server.metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.metrics)
	}

	handler := HandlerFromMux(server, r)
	return enableCORS(handler)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	} else if err != nil {
		s.logger.Error("Failed to load OpenAPI spec", "err", err)
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "landsketch-http",
		"version":     strings.TrimSpace(landsketch.Version),
		"api_version": apiVersion,
	})
}

// GetPalette handles the GET /palette request.
func (s *Server) GetPalette(w http.ResponseWriter, r *http.Request) {
	kinds := palette.Kinds()
	swatches := make([]Swatch, 0, len(kinds))
	for _, kind := range kinds {
		c := palette.MustLookup(kind)
		swatches = append(swatches, Swatch{Brush: kind, Hex: c.Hex(), RGB: [3]uint8{c.R, c.G, c.B}})
	}
	s.writeJSON(w, http.StatusOK, swatches)
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, SessionList{Sessions: s.Sessions.List()})
}

// CreateSession handles the POST /sessions request.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	ws, err := s.Sessions.Create(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, stateOf(ws))
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.Sessions.Close(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetState handles the GET /sessions/{id}/state request.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request, id string) {
	s.withSession(w, r, id, func(ctx context.Context, ws *session.Workspace) error {
		return nil
	})
}

// SetBrush handles the PUT /sessions/{id}/brush request.
func (s *Server) SetBrush(w http.ResponseWriter, r *http.Request, id string) {
	var body BrushRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("SetBrush: Invalid request body", "err", err)
		return
	}

	s.withSession(w, r, id, func(ctx context.Context, ws *session.Workspace) error {
		if body.Brush != nil {
			kind, err := palette.Parse(*body.Brush)
			if err != nil {
				return err
			}
			if err := ws.Studio.SelectBrush(kind); err != nil {
				return err
			}
		}
		if body.Size != nil {
			if err := ws.Studio.SetSize(*body.Size); err != nil {
				return err
			}
		}
		return nil
	})
}

// PostPointer handles the POST /sessions/{id}/pointer request.
func (s *Server) PostPointer(w http.ResponseWriter, r *http.Request, id string) {
	var body PointerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PostPointer: Invalid request body", "err", err)
		return
	}

	s.withSession(w, r, id, func(ctx context.Context, ws *session.Workspace) error {
		return applyPointer(ctx, ws, body)
	})
}

// ClearCanvas handles the POST /sessions/{id}/clear request.
func (s *Server) ClearCanvas(w http.ResponseWriter, r *http.Request, id string) {
	s.withSession(w, r, id, func(ctx context.Context, ws *session.Workspace) error {
		ws.Studio.Clear(ctx)
		return nil
	})
}

// SubmitSketch handles the POST /sessions/{id}/submit request.
// The session lock is not held so pointer events keep flowing while the
// search request is in flight. Deleting the session cancels it (410).
func (s *Server) SubmitSketch(w http.ResponseWriter, r *http.Request, id string) {
	ws, err := s.Sessions.Get(id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// A dropped client must not abort the exchange.
	ctx := context.WithoutCancel(r.Context())
	report := ws.Studio.Submit(ctx)

	s.writeJSON(w, submitStatus(report.Outcome), SubmitResponse{
		Report:     report,
		DurationMS: report.Duration.Milliseconds(),
	})
}

// ExportPainting handles the GET /sessions/{id}/export request.
func (s *Server) ExportPainting(w http.ResponseWriter, r *http.Request, id string) {
	var buf bytes.Buffer
	err := s.Sessions.WithLock(r.Context(), id, func(ctx context.Context, ws *session.Workspace) error {
		_, err := ws.Studio.ExportTo(&buf)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	_, _ = w.Write(buf.Bytes())
}

// GetResults handles the GET /sessions/{id}/results request.
func (s *Server) GetResults(w http.ResponseWriter, r *http.Request, id string) {
	var res *domain.SubmissionResult
	err := s.Sessions.WithLock(r.Context(), id, func(ctx context.Context, ws *session.Workspace) error {
		var err error
		res, err = ws.Studio.Results(ctx)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// StreamPointer handles the GET /sessions/{id}/ws websocket.
func (s *Server) StreamPointer(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := s.Sessions.Get(id); err != nil {
		s.writeError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "session_id", id, "err", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			s.logger.Debug("websocket closed", "session_id", id, "err", err)
			return
		}

		var msg PointerRequest
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logger.Warn("discarding malformed pointer message", "session_id", id, "err", err)
			continue
		}

		var ack SessionState
		err = s.Sessions.WithLock(ctx, id, func(ctx context.Context, ws *session.Workspace) error {
			if err := applyPointer(ctx, ws, msg); err != nil {
				return err
			}
			ack = stateOf(ws)
			return nil
		})
		if errors.Is(err, domain.ErrSessionNotFound) {
			message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown session")
			_ = conn.WriteMessage(websocket.CloseMessage, message)
			return
		}
		if err != nil {
			s.logger.Warn("pointer message rejected", "session_id", id, "err", err)
			continue
		}

		data, err := json.Marshal(ack)
		if err != nil {
			s.logger.Error("failed to marshal ack", "session_id", id, "err", err)
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// -- Helpers --

func applyPointer(ctx context.Context, ws *session.Workspace, msg PointerRequest) error {
	switch msg.Type {
	case domain.PointerDown, domain.PointerMove, domain.PointerUp, domain.PointerLeave:
	default:
		return fmt.Errorf("%w: pointer type %q", errBadRequest, msg.Type)
	}
	rect := msg.Rect
	if rect == nil {
		rect = viewport.Identity(ws.Studio.Bounds())
	}
	ws.Studio.Pointer(ctx, domain.PointerEvent{Type: msg.Type, ClientX: msg.ClientX, ClientY: msg.ClientY}, rect)
	return nil
}

func stateOf(ws *session.Workspace) SessionState {
	w, h := ws.Studio.Bounds()
	return SessionState{
		SessionID: ws.ID,
		State:     ws.Studio.State(),
		Segments:  ws.Studio.Engine().Segments(),
		Width:     w,
		Height:    h,
	}
}

// withSession runs fn under the session lock and answers with the new state.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, id string, fn func(context.Context, *session.Workspace) error) {
	var resp SessionState
	err := s.Sessions.WithLock(r.Context(), id, func(ctx context.Context, ws *session.Workspace) error {
		if err := fn(ctx, ws); err != nil {
			return err
		}
		resp = stateOf(ws)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

var errBadRequest = errors.New("bad request")

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrKeyNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownBrush), errors.Is(err, domain.ErrInvalidSize),
		errors.Is(err, domain.ErrInvalidSessionID), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSurfaceUnready):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func submitStatus(o submit.Outcome) int {
	switch o {
	case submit.OutcomeSucceeded:
		return http.StatusOK
	case submit.OutcomeBusy, submit.OutcomeUnready:
		return http.StatusConflict
	case submit.OutcomeRejected, submit.OutcomeTransportFailed:
		return http.StatusBadGateway
	case submit.OutcomeClosed:
		return http.StatusGone
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	http.Error(w, err.Error(), status)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
