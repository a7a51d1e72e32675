package scene

import (
	"strings"
	"testing"

	"sketchpad/internal/domain"
)

func TestGraph_AddAssignsID(t *testing.T) {
	g := New("")
	o := g.Add(domain.Object{Kind: domain.KindRect, Width: 10, Height: 10, Opacity: 1})
	if o.ID == "" {
		t.Fatal("expected Add to assign an ID")
	}
	if g.Len() != 1 {
		t.Fatalf("expected 1 object, got %d", g.Len())
	}
	if g.Background() != DefaultBackground {
		t.Errorf("expected default background, got %q", g.Background())
	}
}

func TestGraph_ObjectsAreCopies(t *testing.T) {
	g := New("white")
	o := g.Add(domain.Object{Kind: domain.KindPolyline, Points: []domain.Point{{X: 1, Y: 2}}})

	objs := g.Objects()
	objs[0].Points[0].X = 99

	got, _ := g.Get(o.ID)
	if got.Points[0].X != 1 {
		t.Errorf("mutating the returned slice leaked into the graph: %v", got.Points)
	}
}

func TestGraph_Selection(t *testing.T) {
	g := New("white")
	a := g.Add(domain.Object{Kind: domain.KindRect})
	b := g.Add(domain.Object{Kind: domain.KindCircle})

	if n := g.Select(a.ID, "missing"); n != 1 {
		t.Fatalf("expected 1 selected, got %d", n)
	}
	if ids := g.SelectedIDs(); len(ids) != 1 || ids[0] != a.ID {
		t.Errorf("unexpected selection %v", ids)
	}

	g.SelectAll()
	if len(g.Selected()) != 2 {
		t.Errorf("expected SelectAll to select both objects")
	}

	g.Remove(b.ID)
	if ids := g.SelectedIDs(); len(ids) != 1 {
		t.Errorf("removing an object should drop it from the selection, got %v", ids)
	}

	g.ClearSelection()
	if len(g.Selected()) != 0 {
		t.Error("expected empty selection")
	}
}

func TestGraph_ReplaceClearsSelection(t *testing.T) {
	g := New("white")
	a := g.Add(domain.Object{Kind: domain.KindRect})
	g.Select(a.ID)

	g.Replace([]domain.Object{{ID: "x", Kind: domain.KindText}}, "black")
	if g.Len() != 1 || g.Background() != "black" {
		t.Fatalf("replace did not swap content: len=%d bg=%q", g.Len(), g.Background())
	}
	if len(g.SelectedIDs()) != 0 {
		t.Error("replace should clear the selection")
	}
}

func TestSVG_Fragments(t *testing.T) {
	tests := []struct {
		name string
		obj  domain.Object
		want string
	}{
		{
			name: "rect",
			obj:  domain.Object{Kind: domain.KindRect, Left: 1, Top: 2, Width: 3, Height: 4, Fill: "#ff0000", Opacity: 1},
			want: `<rect x="1" y="2" width="3" height="4" fill="#ff0000" stroke="none"/>`,
		},
		{
			name: "circle",
			obj:  domain.Object{Kind: domain.KindCircle, Left: 10, Top: 10, Radius: 5, Fill: "#000", Opacity: 0.5},
			want: `<circle cx="15" cy="15" r="5" fill="#000" stroke="none" opacity="0.5"/>`,
		},
		{
			name: "triangle",
			obj:  domain.Object{Kind: domain.KindTriangle, Width: 10, Height: 10, Fill: "#000", Opacity: 1},
			want: `<polygon points="5,0 10,10 0,10" fill="#000" stroke="none"/>`,
		},
		{
			name: "text escapes",
			obj:  domain.Object{Kind: domain.KindText, Left: 100, Top: 100, FontSize: 24, Text: "a<b & c", Fill: "#000", Opacity: 1},
			want: `<text x="100" y="124" font-size="24" fill="#000" stroke="none">a&lt;b &amp; c</text>`,
		},
		{
			name: "shadow filter",
			obj: domain.Object{ID: "s1", Kind: domain.KindRect, Width: 2, Height: 2, Fill: "#000", Opacity: 1,
				Shadow: &domain.Shadow{Color: "#333", Blur: 10, OffsetX: 5, OffsetY: 5}},
			want: `<filter id="shadow-s1"><feDropShadow dx="5" dy="5" stdDeviation="5" flood-color="#333"/></filter>` +
				`<rect x="0" y="0" width="2" height="2" fill="#000" stroke="none" filter="url(#shadow-s1)"/>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SVG(tt.obj); got != tt.want {
				t.Errorf("SVG() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestDocument_Wraps(t *testing.T) {
	doc := Document([]string{"<a/>", "<b/>"})
	want := "<svg xmlns=\"http://www.w3.org/2000/svg\">\n<a/>\n<b/>\n</svg>"
	if doc != want {
		t.Errorf("Document() = %q, want %q", doc, want)
	}
	if !strings.HasPrefix(doc, "<svg") {
		t.Error("document must start with <svg")
	}
}
