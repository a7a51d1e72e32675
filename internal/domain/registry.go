package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ShapeOptions carries the placement and style used when constructing a shape.
type ShapeOptions struct {
	Left, Top     float64
	Width, Height float64
	Radius        float64
	Fill          string
	Stroke        string
	StrokeWidth   float64
	Shadow        *Shadow
}

// Constructor builds a new object of one kind from placement options.
type Constructor func(opts ShapeOptions) Object

// Registry maps shape kinds to their constructors.
type Registry struct {
	ctors map[Kind]Constructor
}

// NewRegistry returns a registry with constructors for every placeable kind.
func NewRegistry() *Registry {
	r := &Registry{ctors: make(map[Kind]Constructor)}
	r.Register(KindRect, newRect)
	r.Register(KindCircle, newCircle)
	r.Register(KindEllipse, newEllipse)
	r.Register(KindTriangle, newTriangle)
	r.Register(KindLine, newLine)
	return r
}

// Register installs (or replaces) the constructor for kind.
func (r *Registry) Register(kind Kind, ctor Constructor) {
	r.ctors[kind] = ctor
}

// Kinds returns the registered kinds in the canonical order.
func (r *Registry) Kinds() []Kind {
	var out []Kind
	for _, k := range Kinds() {
		if _, ok := r.ctors[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// New constructs an object of the given kind with a fresh ID.
func (r *Registry) New(kind Kind, opts ShapeOptions) (Object, error) {
	ctor, ok := r.ctors[kind]
	if !ok {
		return Object{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	o := ctor(opts)
	o.ID = NewObjectID()
	o.Kind = kind
	if o.Opacity == 0 {
		o.Opacity = 1
	}
	return o, nil
}

// NewObjectID returns a unique object identifier.
func NewObjectID() string {
	return uuid.New().String()
}

func base(opts ShapeOptions) Object {
	return Object{
		Left:        opts.Left,
		Top:         opts.Top,
		Fill:        opts.Fill,
		Stroke:      opts.Stroke,
		StrokeWidth: opts.StrokeWidth,
		Shadow:      opts.Shadow,
		Opacity:     1,
	}
}

func newRect(opts ShapeOptions) Object {
	o := base(opts)
	o.Width, o.Height = opts.Width, opts.Height
	return o
}

func newCircle(opts ShapeOptions) Object {
	o := base(opts)
	o.Radius = opts.Radius
	return o
}

func newEllipse(opts ShapeOptions) Object {
	o := base(opts)
	o.Rx, o.Ry = opts.Width/2, opts.Height/2
	return o
}

func newTriangle(opts ShapeOptions) Object {
	o := base(opts)
	o.Width, o.Height = opts.Width, opts.Height
	return o
}

func newLine(opts ShapeOptions) Object {
	o := base(opts)
	if o.Stroke == "" {
		o.Stroke = opts.Fill
	}
	if o.StrokeWidth == 0 {
		o.StrokeWidth = 2
	}
	o.Fill = ""
	o.Points = []Point{
		{X: opts.Left, Y: opts.Top + opts.Height/2},
		{X: opts.Left + opts.Width, Y: opts.Top + opts.Height/2},
	}
	return o
}
