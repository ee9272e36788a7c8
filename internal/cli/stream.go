package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/landsketch"
	"github.com/aretw0/landsketch/pkg/domain"
	"github.com/aretw0/landsketch/pkg/palette"
	"github.com/aretw0/landsketch/pkg/submit"
	"github.com/aretw0/landsketch/pkg/viewport"
)

// Stream operations.
const (
	OpBrush   = "brush"
	OpPointer = "pointer"
	OpClear   = "clear"
	OpSubmit  = "submit"
	OpExport  = "export"
	OpState   = "state"
)

// StreamCommand is one JSON line read by RunStream. Without Rect, X and Y
// are logical coordinates.
type StreamCommand struct {
	Op    string                  `json:"op"`
	Brush string                  `json:"brush,omitempty"`
	Size  int                     `json:"size,omitempty"`
	Type  domain.PointerEventType `json:"type,omitempty"`
	X     float64                 `json:"x,omitempty"`
	Y     float64                 `json:"y,omitempty"`
	Rect  *domain.Rect            `json:"rect,omitempty"`
	Dir   string                  `json:"dir,omitempty"`
}

// StreamReply is written for every command, in order.
type StreamReply struct {
	Op       string         `json:"op"`
	State    domain.UIState `json:"state"`
	Segments int            `json:"segments"`
	Report   *submit.Report `json:"report,omitempty"`
	Path     string         `json:"path,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// RunStream drives studio from JSON lines on r and answers each line on w.
// Bad lines are answered with an error and the stream continues. It returns
// at EOF or when ctx is cancelled.
func RunStream(ctx context.Context, studio *landsketch.Studio, r io.Reader, w io.Writer) error {
	enc := json.NewEncoder(w)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var cmd StreamCommand
		reply := StreamReply{}
		if err := json.Unmarshal([]byte(line), &cmd); err != nil {
			reply.Error = fmt.Sprintf("invalid command: %v", err)
		} else {
			reply = applyCommand(ctx, studio, cmd)
		}
		reply.State = studio.State()
		reply.Segments = studio.Engine().Segments()

		if err := enc.Encode(reply); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyCommand(ctx context.Context, studio *landsketch.Studio, cmd StreamCommand) StreamReply {
	reply := StreamReply{Op: cmd.Op}
	fail := func(err error) StreamReply {
		reply.Error = err.Error()
		return reply
	}

	switch cmd.Op {
	case OpBrush:
		if cmd.Brush != "" {
			kind, err := palette.Parse(cmd.Brush)
			if err != nil {
				return fail(err)
			}
			if err := studio.SelectBrush(kind); err != nil {
				return fail(err)
			}
		}
		if cmd.Size != 0 {
			if err := studio.SetSize(cmd.Size); err != nil {
				return fail(err)
			}
		}
	case OpPointer:
		switch cmd.Type {
		case domain.PointerDown, domain.PointerMove, domain.PointerUp, domain.PointerLeave:
		default:
			return fail(fmt.Errorf("unknown pointer type %q", cmd.Type))
		}
		rect := cmd.Rect
		if rect == nil {
			rect = viewport.Identity(studio.Bounds())
		}
		studio.Pointer(ctx, domain.PointerEvent{Type: cmd.Type, ClientX: cmd.X, ClientY: cmd.Y}, rect)
	case OpClear:
		studio.Clear(ctx)
	case OpSubmit:
		report := studio.Submit(ctx)
		reply.Report = &report
	case OpExport:
		dir := cmd.Dir
		if dir == "" {
			dir = "."
		}
		path, err := studio.Export(dir)
		if err != nil {
			return fail(err)
		}
		reply.Path = path
	case OpState:
	default:
		return fail(fmt.Errorf("unknown op %q", cmd.Op))
	}
	return reply
}
