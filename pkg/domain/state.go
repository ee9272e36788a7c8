package domain

// View names the screen the controller is showing.
type View string

const (
	ViewCanvas  View = "canvas"
	ViewResults View = "results"
)

// UIState is the controller state of a painting session.
// It is plain data so it can be persisted, logged or sent over the wire.
type UIState struct {
	Brush       BrushKind `json:"brush" yaml:"brush"`
	Size        int       `json:"size" yaml:"size"`
	Submitting  bool      `json:"submitting" yaml:"submitting"`
	HelpVisible bool      `json:"help_visible" yaml:"help_visible"`
	View        View      `json:"view" yaml:"view"`
}

// NewUIState returns the state of a freshly opened canvas.
func NewUIState() UIState {
	return UIState{
		Brush:       DefaultBrush,
		Size:        DefaultBrushSize,
		HelpVisible: true,
		View:        ViewCanvas,
	}
}
