package scene

// Renderer paints a scene to some surface.
type Renderer interface {
	Render(g *Graph)
}

// RenderFunc adapts a plain function to Renderer.
type RenderFunc func(g *Graph)

func (f RenderFunc) Render(g *Graph) { f(g) }

// NopRenderer discards render requests.
type NopRenderer struct{}

func (NopRenderer) Render(*Graph) {}

// CountingRenderer records how often it was asked to render and the object
// count of the last frame. Handy in tests.
type CountingRenderer struct {
	Frames    int
	LastCount int
}

func (r *CountingRenderer) Render(g *Graph) {
	r.Frames++
	r.LastCount = g.Len()
}
