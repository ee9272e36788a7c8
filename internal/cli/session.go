package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/landsketch/pkg/codec"
	"github.com/aretw0/landsketch/pkg/domain"
	"github.com/aretw0/landsketch/pkg/ports"
	"github.com/aretw0/landsketch/pkg/session"
	"github.com/google/uuid"
)

// SketchSummary describes a cached sketch without its bytes.
type SketchSummary struct {
	Bytes  int `json:"bytes"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SessionReport is what `session inspect` prints.
type SessionReport struct {
	ID            string          `json:"id"`
	Keys          []string        `json:"keys"`
	Sketch        *SketchSummary  `json:"user_sketch,omitempty"`
	SearchResults json.RawMessage `json:"search_results,omitempty"`
	DebugInfo     json.RawMessage `json:"debug_info,omitempty"`
}

// ResolveSessionID returns id, or a fresh random ID when id is empty.
func ResolveSessionID(id string) (string, error) {
	if id == "" {
		return uuid.NewString(), nil
	}
	if err := session.ValidateID(id); err != nil {
		return "", err
	}
	return id, nil
}

// InspectSession reads everything stored for sessionID.
// A session with no keys reports domain.ErrSessionNotFound.
func InspectSession(ctx context.Context, store ports.KVStore, sessionID string) (*SessionReport, error) {
	if err := session.ValidateID(sessionID); err != nil {
		return nil, err
	}
	scoped := session.Scope(store, sessionID)
	keys, err := scoped.Keys(ctx)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}

	report := &SessionReport{ID: sessionID, Keys: keys}

	if uri, err := scoped.Get(ctx, domain.KeyUserSketch); err == nil {
		img, err := codec.DecodeDataURI(uri)
		if err != nil {
			return nil, fmt.Errorf("stored sketch is corrupt: %w", err)
		}
		report.Sketch = &SketchSummary{
			Bytes:  len(uri),
			Width:  img.Bounds().Dx(),
			Height: img.Bounds().Dy(),
		}
	} else if !errors.Is(err, domain.ErrKeyNotFound) {
		return nil, err
	}

	for key, dst := range map[string]*json.RawMessage{
		domain.KeySearchResults: &report.SearchResults,
		domain.KeyDebugInfo:     &report.DebugInfo,
	} {
		val, err := scoped.Get(ctx, key)
		if errors.Is(err, domain.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if json.Valid([]byte(val)) {
			*dst = json.RawMessage(val)
		} else {
			quoted, _ := json.Marshal(val)
			*dst = quoted
		}
	}
	return report, nil
}
