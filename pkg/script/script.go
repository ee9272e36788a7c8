// Package script replays recorded strokes through a painting session.
//
// A script is a YAML or JSON document:
//
//	display: {left: 0, top: 0, width: 570, height: 570}
//	clear: true
//	strokes:
//	  - brush: Water
//	    size: 80
//	    points: [[100, 100], [200, 100]]
//
// Points are client coordinates inside display, so a script recorded on a
// scaled element maps onto the logical raster the same way live input does.
package script

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/landsketch/pkg/domain"
	"github.com/aretw0/landsketch/pkg/palette"
	"github.com/aretw0/landsketch/pkg/viewport"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Script is a sequence of strokes.
type Script struct {
	Display *domain.Rect `mapstructure:"display"`
	Clear   bool         `mapstructure:"clear"`
	Strokes []Stroke     `mapstructure:"strokes"`
}

// Stroke is one pointer-down / move... / pointer-up gesture.
// An empty Brush or a zero Size keeps the current setting.
type Stroke struct {
	Brush  domain.BrushKind `mapstructure:"brush"`
	Size   int              `mapstructure:"size"`
	Points [][]float64      `mapstructure:"points"`
}

// Target is the session a script is replayed into.
type Target interface {
	Bounds() (width, height int)
	SelectBrush(kind domain.BrushKind) error
	SetSize(size int) error
	Pointer(ctx context.Context, ev domain.PointerEvent, rect *domain.Rect)
	Clear(ctx context.Context)
}

// Decode builds a Script from generic data (parsed YAML/JSON, MCP arguments).
func Decode(input map[string]any) (*Script, error) {
	var s Script
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(input); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a script file. JSON is chosen by extension, anything else is YAML.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	var raw map[string]any
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return Decode(raw)
}

// Validate normalises brush names and checks sizes and points.
func (s *Script) Validate() error {
	if s.Display != nil && !s.Display.Measurable() {
		return fmt.Errorf("display must have a positive width and height")
	}
	for i := range s.Strokes {
		st := &s.Strokes[i]
		if st.Brush != "" {
			kind, err := palette.Parse(string(st.Brush))
			if err != nil {
				return fmt.Errorf("stroke %d: %w", i, err)
			}
			st.Brush = kind
		}
		if st.Size != 0 && !domain.ValidBrushSize(st.Size) {
			return fmt.Errorf("stroke %d: %w: %d", i, domain.ErrInvalidSize, st.Size)
		}
		if len(st.Points) == 0 {
			return fmt.Errorf("stroke %d: no points", i)
		}
		for j, p := range st.Points {
			if len(p) != 2 {
				return fmt.Errorf("stroke %d: point %d: want [x, y], got %d values", i, j, len(p))
			}
		}
	}
	return nil
}

// Replay feeds the script into t as pointer events and returns the number of
// strokes played.
func (s *Script) Replay(ctx context.Context, t Target) (int, error) {
	rect := s.Display
	if rect == nil {
		w, h := t.Bounds()
		rect = viewport.Identity(w, h)
	}

	if s.Clear {
		t.Clear(ctx)
	}

	for i, st := range s.Strokes {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if st.Brush != "" {
			if err := t.SelectBrush(st.Brush); err != nil {
				return i, fmt.Errorf("stroke %d: %w", i, err)
			}
		}
		if st.Size != 0 {
			if err := t.SetSize(st.Size); err != nil {
				return i, fmt.Errorf("stroke %d: %w", i, err)
			}
		}

		first := st.Points[0]
		t.Pointer(ctx, domain.PointerEvent{Type: domain.PointerDown, ClientX: first[0], ClientY: first[1]}, rect)
		for _, p := range st.Points[1:] {
			t.Pointer(ctx, domain.PointerEvent{Type: domain.PointerMove, ClientX: p[0], ClientY: p[1]}, rect)
		}
		t.Pointer(ctx, domain.PointerEvent{Type: domain.PointerUp}, rect)
	}
	return len(s.Strokes), nil
}
