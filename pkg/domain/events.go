package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSegment      EventType = "segment"
	EventClear        EventType = "clear"
	EventSubmitStart  EventType = "submit_start"
	EventSubmitFinish EventType = "submit_finish"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// SegmentEvent is emitted for every rasterised segment.
type SegmentEvent struct {
	EventBase
	Brush BrushKind `json:"brush"`
	Width int       `json:"width"`
	From  Point     `json:"from"`
	To    Point     `json:"to"`
}

// ClearEvent is emitted when the raster is reset to the background colour.
type ClearEvent struct {
	EventBase
}

// SubmitEvent describes a submission attempt.
// Outcome, Status and Duration are only set on EventSubmitFinish.
type SubmitEvent struct {
	EventBase
	Outcome  string        `json:"outcome,omitempty"`
	Status   int           `json:"status,omitempty"`
	Bytes    int           `json:"bytes,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// LifecycleHooks defines callbacks for observability.
type LifecycleHooks struct {
	OnSegment      func(context.Context, *SegmentEvent)
	OnClear        func(context.Context, *ClearEvent)
	OnSubmitStart  func(context.Context, *SubmitEvent)
	OnSubmitFinish func(context.Context, *SubmitEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnSegment:      chain(h.OnSegment, other.OnSegment),
		OnClear:        chain(h.OnClear, other.OnClear),
		OnSubmitStart:  chain(h.OnSubmitStart, other.OnSubmitStart),
		OnSubmitFinish: chain(h.OnSubmitFinish, other.OnSubmitFinish),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
