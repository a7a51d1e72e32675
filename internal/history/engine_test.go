package history

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"sketchpad/internal/domain"
	"sketchpad/internal/scene"
	"sketchpad/internal/snapshot"
)

func newEngine(t *testing.T, opts ...Option) (*Engine, *scene.Graph, *scene.CountingRenderer) {
	t.Helper()
	g := scene.New("white")
	r := &scene.CountingRenderer{}
	e, err := New(g, r, opts...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e, g, r
}

func addRect(t *testing.T, e *Engine, g *scene.Graph, id string) {
	t.Helper()
	g.Add(domain.Object{ID: id, Kind: domain.KindRect, Width: 10, Height: 10, Fill: "#000", Opacity: 1})
	if err := e.Record(); err != nil {
		t.Fatalf("record: %v", err)
	}
}

func ids(g *scene.Graph) []string {
	var out []string
	for _, o := range g.Objects() {
		out = append(out, o.ID)
	}
	return out
}

func TestNew_SeedsEmptyScene(t *testing.T) {
	e, _, _ := newEngine(t)
	if e.Current() == "" {
		t.Fatal("expected seeded current snapshot")
	}
	if e.CanUndo() || e.CanRedo() {
		t.Error("fresh engine must have empty stacks")
	}
}

func TestScenario_AddAddUndoUndoRedo(t *testing.T) {
	e, g, r := newEngine(t)
	addRect(t, e, g, "A")
	addRect(t, e, g, "B")

	if ok, err := e.Undo(); !ok || err != nil {
		t.Fatalf("undo 1: ok=%v err=%v", ok, err)
	}
	if got := ids(g); !reflect.DeepEqual(got, []string{"A"}) {
		t.Fatalf("after first undo expected [A], got %v", got)
	}

	if ok, err := e.Undo(); !ok || err != nil {
		t.Fatalf("undo 2: ok=%v err=%v", ok, err)
	}
	if g.Len() != 0 {
		t.Fatalf("after second undo expected empty scene, got %v", ids(g))
	}

	if ok, err := e.Redo(); !ok || err != nil {
		t.Fatalf("redo: ok=%v err=%v", ok, err)
	}
	if got := ids(g); !reflect.DeepEqual(got, []string{"A"}) {
		t.Fatalf("after redo expected [A], got %v", got)
	}
	if r.Frames != 3 {
		t.Errorf("expected 3 renders, got %d", r.Frames)
	}
}

func TestUndoPastBeginning_IsNoop(t *testing.T) {
	e, g, r := newEngine(t)
	addRect(t, e, g, "A")
	e.Undo()

	before := e.State()
	for i := 0; i < 3; i++ {
		ok, err := e.Undo()
		if ok || err != nil {
			t.Fatalf("undo on empty stack: ok=%v err=%v", ok, err)
		}
	}
	if !reflect.DeepEqual(before, e.State()) {
		t.Error("undo on empty stack changed state")
	}
	if r.Frames != 1 {
		t.Errorf("no-op undo must not render, frames=%d", r.Frames)
	}
}

func TestRedoOnEmpty_IsNoop(t *testing.T) {
	e, _, _ := newEngine(t)
	before := e.State()
	if ok, err := e.Redo(); ok || err != nil {
		t.Fatalf("redo on empty stack: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(before, e.State()) {
		t.Error("redo on empty stack changed state")
	}
}

func TestRecordClearsRedo(t *testing.T) {
	e, g, _ := newEngine(t)
	addRect(t, e, g, "A")
	addRect(t, e, g, "B")
	e.Undo()
	if !e.CanRedo() {
		t.Fatal("expected redo to be available after undo")
	}

	addRect(t, e, g, "C")
	if e.CanRedo() {
		t.Fatal("record must clear redo")
	}
	if ok, _ := e.Redo(); ok {
		t.Error("redo after a new mutation must be a no-op")
	}
	if got := ids(g); !reflect.DeepEqual(got, []string{"A", "C"}) {
		t.Errorf("expected [A C], got %v", got)
	}
}

func TestNMutations_UndoRedoProperty(t *testing.T) {
	for _, n := range []int{1, 2, 5, 20} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			e, g, _ := newEngine(t)
			initial, _ := snapshot.Encode(g)

			for i := 0; i < n; i++ {
				addRect(t, e, g, fmt.Sprintf("obj-%d", i))
			}
			final, _ := snapshot.Encode(g)

			for i := 0; i < n; i++ {
				if ok, err := e.Undo(); !ok || err != nil {
					t.Fatalf("undo %d: ok=%v err=%v", i, ok, err)
				}
			}
			if got, _ := snapshot.Encode(g); got != initial {
				t.Fatalf("after %d undos scene differs from initial:\n%s\n%s", n, got, initial)
			}

			for i := 0; i < n; i++ {
				if ok, err := e.Redo(); !ok || err != nil {
					t.Fatalf("redo %d: ok=%v err=%v", i, ok, err)
				}
			}
			if got, _ := snapshot.Encode(g); got != final {
				t.Fatalf("after %d redos scene differs from final", n)
			}
		})
	}
}

func TestCurrentMatchesScene(t *testing.T) {
	e, g, _ := newEngine(t)
	addRect(t, e, g, "A")
	addRect(t, e, g, "B")
	e.Undo()

	got, _ := snapshot.Encode(g)
	if got != e.Current() {
		t.Error("current snapshot must reflect the rendered scene")
	}
}

func TestCorruptUndoEntry_LeavesStateUntouched(t *testing.T) {
	e, g, r := newEngine(t)
	addRect(t, e, g, "A")

	st := e.State()
	st.Undo[len(st.Undo)-1] = snapshot.Snapshot(`{"version":1,"objects":[`)
	// Inject directly: Restore would reject the corrupt entry.
	e.undo = st.Undo
	before := e.State()
	frames := r.Frames

	ok, err := e.Undo()
	if ok {
		t.Fatal("undo of corrupt snapshot must not succeed")
	}
	if !errors.Is(err, snapshot.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	if !reflect.DeepEqual(before, e.State()) {
		t.Error("failed undo changed history state")
	}
	if got := ids(g); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("failed undo changed the scene: %v", got)
	}
	if r.Frames != frames {
		t.Error("failed undo must not render")
	}
}

func TestMaxDepth_DropsOldest(t *testing.T) {
	e, g, _ := newEngine(t, WithMaxDepth(3))
	for i := 0; i < 6; i++ {
		addRect(t, e, g, fmt.Sprintf("o%d", i))
	}
	if got := len(e.State().Undo); got != 3 {
		t.Fatalf("expected undo depth 3, got %d", got)
	}

	undone := 0
	for {
		ok, err := e.Undo()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		undone++
	}
	if undone != 3 {
		t.Errorf("expected 3 undos, got %d", undone)
	}
	if got := ids(g); len(got) != 3 {
		t.Errorf("expected 3 objects left after bounded undo, got %v", got)
	}

	e.SetMaxDepth(1)
	if e.MaxDepth() != 1 {
		t.Errorf("MaxDepth() = %d", e.MaxDepth())
	}
}

func TestRestore(t *testing.T) {
	src, g, _ := newEngine(t)
	addRect(t, src, g, "A")
	addRect(t, src, g, "B")
	src.Undo()
	st := src.State()

	dst, g2, r := newEngine(t)
	if err := dst.Restore(st); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !reflect.DeepEqual(dst.State(), st) {
		t.Error("restored state differs")
	}
	if got := ids(g2); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("restore should decode current into the scene, got %v", got)
	}
	if r.Frames != 1 {
		t.Errorf("restore should render once, got %d", r.Frames)
	}

	if ok, _ := dst.Redo(); !ok {
		t.Fatal("expected redo after restore")
	}
	if got := ids(g2); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("expected [A B] after redo, got %v", got)
	}
}

func TestRestore_RejectsCorrupt(t *testing.T) {
	e, g, _ := newEngine(t)
	addRect(t, e, g, "A")
	before := e.State()

	bad := before
	bad.Redo = []snapshot.Snapshot{"nope"}
	if err := e.Restore(bad); !errors.Is(err, snapshot.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	if !reflect.DeepEqual(before, e.State()) {
		t.Error("rejected restore changed state")
	}
}
