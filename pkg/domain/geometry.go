package domain

// Point is a position in logical raster space.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Rect is the bounding rectangle of the displayed element in client (CSS pixel) space.
type Rect struct {
	Left   float64 `json:"left" yaml:"left" mapstructure:"left"`
	Top    float64 `json:"top" yaml:"top" mapstructure:"top"`
	Width  float64 `json:"width" yaml:"width" mapstructure:"width"`
	Height float64 `json:"height" yaml:"height" mapstructure:"height"`
}

// Measurable reports whether the rectangle can be used for coordinate mapping.
func (r *Rect) Measurable() bool {
	return r != nil && r.Width > 0 && r.Height > 0
}

// PointerEventType is the kind of pointer gesture.
type PointerEventType string

const (
	PointerDown  PointerEventType = "down"
	PointerMove  PointerEventType = "move"
	PointerUp    PointerEventType = "up"
	PointerLeave PointerEventType = "leave"
)

// PointerEvent is a pointer gesture in client coordinates.
type PointerEvent struct {
	Type    PointerEventType `json:"type" mapstructure:"type"`
	ClientX float64          `json:"client_x" mapstructure:"client_x"`
	ClientY float64          `json:"client_y" mapstructure:"client_y"`
}
