package http

import (
	"fmt"
	"net/http"

	"github.com/aretw0/landsketch/pkg/domain"
	"github.com/aretw0/landsketch/pkg/submit"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// Swatch is one palette entry.
type Swatch struct {
	Brush domain.BrushKind `json:"brush"`
	Hex   string           `json:"hex"`
	RGB   [3]uint8         `json:"rgb"`
}

// SessionState is the response of every session operation.
type SessionState struct {
	SessionID string         `json:"session_id"`
	State     domain.UIState `json:"state"`
	Segments  int            `json:"segments"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
}

// BrushRequest changes the brush, the size, or both.
type BrushRequest struct {
	Brush *string `json:"brush,omitempty"`
	Size  *int    `json:"size,omitempty"`
}

// PointerRequest is a pointer event measured against the displayed element.
// Without Rect the coordinates are logical.
type PointerRequest struct {
	Type    domain.PointerEventType `json:"type"`
	ClientX float64                 `json:"client_x"`
	ClientY float64                 `json:"client_y"`
	Rect    *domain.Rect            `json:"rect,omitempty"`
}

// SessionList is the response of GET /sessions.
type SessionList struct {
	Sessions []string `json:"sessions"`
}

// SubmitResponse reports a submission.
type SubmitResponse struct {
	submit.Report
	DurationMS int64 `json:"duration_ms"`
}

// ServerInterface lists the API operations.
type ServerInterface interface {
	GetHealth(w http.ResponseWriter, r *http.Request)
	GetInfo(w http.ResponseWriter, r *http.Request)
	GetPalette(w http.ResponseWriter, r *http.Request)
	ListSessions(w http.ResponseWriter, r *http.Request)
	CreateSession(w http.ResponseWriter, r *http.Request)
	DeleteSession(w http.ResponseWriter, r *http.Request, id string)
	GetState(w http.ResponseWriter, r *http.Request, id string)
	SetBrush(w http.ResponseWriter, r *http.Request, id string)
	PostPointer(w http.ResponseWriter, r *http.Request, id string)
	ClearCanvas(w http.ResponseWriter, r *http.Request, id string)
	SubmitSketch(w http.ResponseWriter, r *http.Request, id string)
	ExportPainting(w http.ResponseWriter, r *http.Request, id string)
	GetResults(w http.ResponseWriter, r *http.Request, id string)
	StreamPointer(w http.ResponseWriter, r *http.Request, id string)
}

// HandlerFromMux registers si's operations on r.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	r.Get("/health", si.GetHealth)
	r.Get("/info", si.GetInfo)
	r.Get("/palette", si.GetPalette)
	r.Get("/sessions", si.ListSessions)
	r.Post("/sessions", si.CreateSession)

	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Delete("/", withSessionID(si.DeleteSession))
		r.Get("/state", withSessionID(si.GetState))
		r.Put("/brush", withSessionID(si.SetBrush))
		r.Post("/pointer", withSessionID(si.PostPointer))
		r.Post("/clear", withSessionID(si.ClearCanvas))
		r.Post("/submit", withSessionID(si.SubmitSketch))
		r.Get("/export", withSessionID(si.ExportPainting))
		r.Get("/results", withSessionID(si.GetResults))
		r.Get("/ws", withSessionID(si.StreamPointer))
	})
	return r
}

// withSessionID binds the {id} path parameter.
func withSessionID(fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var id string
		err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id, runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid format for parameter id: %v", err), http.StatusBadRequest)
			return
		}
		fn(w, r, id)
	}
}
