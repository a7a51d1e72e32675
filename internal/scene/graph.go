// Package scene holds the live set of drawable objects on a canvas together
// with canvas-level state and the current selection.
package scene

import (
	"sketchpad/internal/domain"
)

// DefaultBackground is the canvas color used for a fresh scene.
const DefaultBackground = "white"

// Graph is the live scene: ordered objects (back to front), a background
// color and the set of selected object IDs.
//
// Graph is not safe for concurrent use; callers serialize access.
type Graph struct {
	objects    []domain.Object
	background string
	selected   map[string]struct{}
}

// New returns an empty scene with the given background.
func New(background string) *Graph {
	if background == "" {
		background = DefaultBackground
	}
	return &Graph{background: background, selected: make(map[string]struct{})}
}

// Objects returns a deep copy of all objects in paint order.
func (g *Graph) Objects() []domain.Object {
	out := make([]domain.Object, len(g.objects))
	for i, o := range g.objects {
		out[i] = o.Clone()
	}
	return out
}

// Len returns the number of objects.
func (g *Graph) Len() int { return len(g.objects) }

// Background returns the canvas background color.
func (g *Graph) Background() string { return g.background }

// SetBackground changes the canvas background color.
func (g *Graph) SetBackground(color string) { g.background = color }

// Add appends an object on top of the scene. An object without an ID gets one.
func (g *Graph) Add(o domain.Object) domain.Object {
	if o.ID == "" {
		o.ID = domain.NewObjectID()
	}
	g.objects = append(g.objects, o.Clone())
	return o
}

// Get returns the object with the given ID.
func (g *Graph) Get(id string) (domain.Object, bool) {
	i := g.index(id)
	if i < 0 {
		return domain.Object{}, false
	}
	return g.objects[i].Clone(), true
}

// Update applies fn to the stored object with the given ID.
// It reports whether the object exists.
func (g *Graph) Update(id string, fn func(o *domain.Object)) bool {
	i := g.index(id)
	if i < 0 {
		return false
	}
	fn(&g.objects[i])
	g.objects[i].ID = id
	return true
}

// Remove deletes the object with the given ID and drops it from the selection.
func (g *Graph) Remove(id string) bool {
	i := g.index(id)
	if i < 0 {
		return false
	}
	g.objects = append(g.objects[:i], g.objects[i+1:]...)
	delete(g.selected, id)
	return true
}

// Clear removes every object and the selection. The background is kept.
func (g *Graph) Clear() {
	g.objects = nil
	g.selected = make(map[string]struct{})
}

// Replace swaps the whole scene content in one step. Used when restoring
// a snapshot.
func (g *Graph) Replace(objects []domain.Object, background string) {
	g.Clear()
	for _, o := range objects {
		g.objects = append(g.objects, o.Clone())
	}
	g.background = background
}

// ── Selection ──────────────────────────────────────────────

// Select replaces the selection with the given IDs. Unknown IDs are ignored.
// It returns how many objects ended up selected.
func (g *Graph) Select(ids ...string) int {
	g.selected = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if g.index(id) >= 0 {
			g.selected[id] = struct{}{}
		}
	}
	return len(g.selected)
}

// SelectAll selects every object.
func (g *Graph) SelectAll() int {
	g.selected = make(map[string]struct{}, len(g.objects))
	for _, o := range g.objects {
		g.selected[o.ID] = struct{}{}
	}
	return len(g.selected)
}

// ClearSelection deselects everything.
func (g *Graph) ClearSelection() {
	g.selected = make(map[string]struct{})
}

// Selected returns copies of the selected objects in paint order.
func (g *Graph) Selected() []domain.Object {
	var out []domain.Object
	for _, o := range g.objects {
		if _, ok := g.selected[o.ID]; ok {
			out = append(out, o.Clone())
		}
	}
	return out
}

// SelectedIDs returns the selected IDs in paint order.
func (g *Graph) SelectedIDs() []string {
	var out []string
	for _, o := range g.objects {
		if _, ok := g.selected[o.ID]; ok {
			out = append(out, o.ID)
		}
	}
	return out
}

func (g *Graph) index(id string) int {
	for i := range g.objects {
		if g.objects[i].ID == id {
			return i
		}
	}
	return -1
}
