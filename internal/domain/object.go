package domain

import "errors"

// Kind identifies a drawable shape type.
type Kind string

const (
	KindRect     Kind = "rect"
	KindCircle   Kind = "circle"
	KindEllipse  Kind = "ellipse"
	KindTriangle Kind = "triangle"
	KindLine     Kind = "line"
	KindPolyline Kind = "polyline"
	KindPolygon  Kind = "polygon"
	KindPath     Kind = "path"
	KindText     Kind = "text"
)

// ErrUnknownKind is returned when a shape kind is not part of the closed set.
var ErrUnknownKind = errors.New("unknown shape kind")

// Kinds lists every supported shape kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindRect, KindCircle, KindEllipse, KindTriangle, KindLine,
		KindPolyline, KindPolygon, KindPath, KindText,
	}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Point is a 2D coordinate on the canvas.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shadow is the drop shadow drawn behind an object.
type Shadow struct {
	Color   string  `json:"color"`
	Blur    float64 `json:"blur"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// DefaultShadow is the soft shadow applied to placed shapes and brush strokes.
func DefaultShadow() *Shadow {
	return &Shadow{Color: "rgba(0, 0, 0, 0.3)", Blur: 10, OffsetX: 5, OffsetY: 5}
}

// Object is a single drawable on the canvas.
// Which geometry fields are meaningful depends on Kind:
//   - rect, triangle, text: Left/Top/Width/Height (rect also Rx/Ry)
//   - circle: Left/Top/Radius
//   - ellipse: Left/Top/Rx/Ry
//   - line, polyline, polygon: Points
//   - path: PathData, drawn translated by Left/Top
//
// An empty Fill or Stroke means "none".
type Object struct {
	ID          string  `json:"id"`
	Kind        Kind    `json:"type"`
	Left        float64 `json:"left"`
	Top         float64 `json:"top"`
	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
	Radius      float64 `json:"radius,omitempty"`
	Rx          float64 `json:"rx,omitempty"`
	Ry          float64 `json:"ry,omitempty"`
	Points      []Point `json:"points,omitempty"`
	PathData    string  `json:"path,omitempty"`
	Text        string  `json:"text,omitempty"`
	FontSize    float64 `json:"fontSize,omitempty"`
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Opacity     float64 `json:"opacity"`
	Shadow      *Shadow `json:"shadow,omitempty"`
}

// Clone returns a deep copy of o.
func (o Object) Clone() Object {
	c := o
	if o.Points != nil {
		c.Points = append([]Point(nil), o.Points...)
	}
	if o.Shadow != nil {
		s := *o.Shadow
		c.Shadow = &s
	}
	return c
}
