package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"sketchpad/internal/clipboard"
	"sketchpad/internal/config"
	"sketchpad/internal/domain"
	"sketchpad/internal/history"
	"sketchpad/internal/input"
	"sketchpad/internal/scene"
	"sketchpad/internal/snapshot"
)

// Shape defaults applied by AddShape and the style toolbar.
const (
	DefaultColor       = "#000000"
	defaultShapeSize   = 100
	defaultShapeRadius = 50
	enabledStrokeWidth = 4
)

var (
	// ErrObjectNotFound is returned when an operation names an unknown object.
	ErrObjectNotFound = errors.New("object not found")
	// ErrNotResizable is returned by ResizeObject for point based kinds.
	ErrNotResizable = errors.New("object cannot be resized")
)

// SessionOptions configures a new editing session.
type SessionOptions struct {
	Canvas      config.CanvasConfig
	MaxDepth    int
	Paste       config.PasteConfig
	BrushWidth  float64
	ReadTimeout time.Duration
	TapReset    time.Duration
	Emitter     EventEmitter
	Logger      *slog.Logger
}

// OptionsFromConfig derives session options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config, emitter EventEmitter, logger *slog.Logger) SessionOptions {
	return SessionOptions{
		Canvas:      cfg.Canvas,
		MaxDepth:    cfg.History.MaxDepth,
		Paste:       cfg.Paste,
		BrushWidth:  cfg.Brush.Width,
		ReadTimeout: cfg.Clipboard.ReadTimeout,
		TapReset:    cfg.Input.TapReset,
		Emitter:     emitter,
		Logger:      logger,
	}
}

// RenderEvent is the payload of EventRender.
type RenderEvent struct {
	DocumentID string          `json:"documentId"`
	Background string          `json:"background"`
	Objects    []domain.Object `json:"objects"`
	Selected   []string        `json:"selected"`
}

// HistoryInfo summarizes the undo/redo stacks of a session.
type HistoryInfo struct {
	DocumentID string `json:"documentId"`
	CanUndo    bool   `json:"canUndo"`
	CanRedo    bool   `json:"canRedo"`
	UndoDepth  int    `json:"undoDepth"`
	RedoDepth  int    `json:"redoDepth"`
	MaxDepth   int    `json:"maxDepth"`
	Dirty      bool   `json:"dirty"`
}

// DrawingState is the active toolbar state.
type DrawingState struct {
	Color         string  `json:"color"`
	FillEnabled   bool    `json:"fillEnabled"`
	StrokeEnabled bool    `json:"strokeEnabled"`
	DrawingMode   bool    `json:"drawingMode"`
	BrushWidth    float64 `json:"brushWidth"`
}

// Session is one open document: its scene, history and toolbar state.
// All methods are safe for concurrent use; mutations are serialized.
type Session struct {
	id       string
	opts     SessionOptions
	emitter  EventEmitter
	logger   *slog.Logger
	registry *domain.Registry
	clip     *clipboard.Interchange
	taps     *input.TapTracker

	mu       sync.Mutex
	graph    *scene.Graph
	history  *history.Engine
	drawing  DrawingState
	revision uint64
	saved    uint64
}

// NewSession creates a session with an empty scene on the configured
// background. The history is seeded with that scene.
func NewSession(id string, clip clipboard.Clipboard, opts SessionOptions) (*Session, error) {
	if opts.Emitter == nil {
		opts.Emitter = NopEmitter{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Canvas.Background == "" {
		opts.Canvas.Background = scene.DefaultBackground
	}
	if opts.BrushWidth <= 0 {
		opts.BrushWidth = 5
	}
	logger := opts.Logger.With("document", id)

	s := &Session{
		id:       id,
		opts:     opts,
		emitter:  opts.Emitter,
		logger:   logger,
		registry: domain.NewRegistry(),
		clip:     clipboard.New(clip, logger),
		taps:     input.NewTapTracker(opts.TapReset),
		graph:    scene.New(opts.Canvas.Background),
		drawing: DrawingState{
			Color:       DefaultColor,
			FillEnabled: true,
			BrushWidth:  opts.BrushWidth,
		},
	}
	engine, err := history.New(s.graph, scene.RenderFunc(s.render),
		history.WithMaxDepth(opts.MaxDepth), history.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	s.history = engine
	return s, nil
}

// ID returns the document ID of the session.
func (s *Session) ID() string { return s.id }

// render emits the scene. Called with mu held.
func (s *Session) render(g *scene.Graph) {
	s.emitter.Emit(context.Background(), EventRender, RenderEvent{
		DocumentID: s.id,
		Background: g.Background(),
		Objects:    g.Objects(),
		Selected:   g.SelectedIDs(),
	})
}

func (s *Session) emitHistory() {
	s.emitter.Emit(context.Background(), EventHistoryChanged, s.historyInfoLocked())
}

// commit records and renders a mutation the caller already applied to the
// graph. When the scene cannot be recorded the graph is rolled back to the
// current snapshot, so the screen never shows an unrecorded state.
// Called with mu held.
func (s *Session) commit(op string) error {
	if err := s.history.Record(); err != nil {
		s.logger.Error("record failed, rolling back", "op", op, "error", err)
		if rerr := snapshot.Decode(s.history.Current(), s.graph); rerr != nil {
			s.logger.Error("rollback failed", "op", op, "error", rerr)
		}
		s.render(s.graph)
		return fmt.Errorf("%s: %w", op, err)
	}
	s.render(s.graph)
	s.revision++
	s.emitHistory()
	return nil
}

// mutate runs fn under the lock and commits when it reports a change.
func (s *Session) mutate(op string, fn func() (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed, err := fn()
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.commit(op)
}

// ─────────────────────────────────────────────────────────────
// Object creation
// ─────────────────────────────────────────────────────────────

// AddShape places a new shape of kind at the canvas center in the active
// color and leaves drawing mode.
func (s *Session) AddShape(kind domain.Kind) (domain.Object, error) {
	var added domain.Object
	err := s.mutate("add shape", func() (bool, error) {
		o, err := s.registry.New(kind, domain.ShapeOptions{
			Left:   s.opts.Canvas.Width/2 - defaultShapeSize/2,
			Top:    s.opts.Canvas.Height/2 - defaultShapeSize/2,
			Width:  defaultShapeSize,
			Height: defaultShapeSize,
			Radius: defaultShapeRadius,
			Fill:   s.drawing.Color,
			Shadow: domain.DefaultShadow(),
		})
		if err != nil {
			return false, err
		}
		s.drawing.DrawingMode = false
		added = s.graph.Add(o)
		return true, nil
	})
	return added, err
}

// AddStroke adds a freehand path through points using the brush settings.
func (s *Session) AddStroke(points []domain.Point) (domain.Object, error) {
	if len(points) < 2 {
		return domain.Object{}, fmt.Errorf("add stroke: need at least 2 points, got %d", len(points))
	}
	var added domain.Object
	err := s.mutate("add stroke", func() (bool, error) {
		added = s.graph.Add(domain.Object{
			ID:          domain.NewObjectID(),
			Kind:        domain.KindPath,
			PathData:    strokePath(points),
			Stroke:      s.drawing.Color,
			StrokeWidth: s.drawing.BrushWidth,
			Opacity:     1,
			Shadow:      domain.DefaultShadow(),
		})
		return true, nil
	})
	return added, err
}

func strokePath(points []domain.Point) string {
	var b strings.Builder
	for i, p := range points {
		if i == 0 {
			fmt.Fprintf(&b, "M %g %g", p.X, p.Y)
			continue
		}
		fmt.Fprintf(&b, " L %g %g", p.X, p.Y)
	}
	return b.String()
}

// AddText adds a text object at left/top in the active color.
func (s *Session) AddText(text string, left, top float64) (domain.Object, error) {
	var added domain.Object
	err := s.mutate("add text", func() (bool, error) {
		size := s.opts.Paste.FontSize
		if size <= 0 {
			size = clipboard.DefaultTextFontSize
		}
		added = s.graph.Add(domain.Object{
			ID:       domain.NewObjectID(),
			Kind:     domain.KindText,
			Left:     left,
			Top:      top,
			Text:     text,
			FontSize: size,
			Fill:     s.drawing.Color,
			Opacity:  1,
		})
		return true, nil
	})
	return added, err
}

// ─────────────────────────────────────────────────────────────
// Selection (not recorded in history)
// ─────────────────────────────────────────────────────────────

// Select replaces the selection and returns how many IDs matched.
func (s *Session) Select(ids ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.graph.Select(ids...)
	s.render(s.graph)
	return n
}

// SelectAll selects every object.
func (s *Session) SelectAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.graph.SelectAll()
	s.render(s.graph)
	return n
}

// ClearSelection deselects everything.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph.ClearSelection()
	s.render(s.graph)
}

// ─────────────────────────────────────────────────────────────
// Modification
// ─────────────────────────────────────────────────────────────

// DeleteSelected removes the selected objects and returns how many were
// removed. With nothing selected no history entry is recorded.
func (s *Session) DeleteSelected() (int, error) {
	var removed int
	err := s.mutate("delete", func() (bool, error) {
		for _, id := range s.graph.SelectedIDs() {
			if s.graph.Remove(id) {
				removed++
			}
		}
		s.graph.ClearSelection()
		return removed > 0, nil
	})
	return removed, err
}

// MoveObject places the object's top-left corner at left/top. Point based
// kinds have their points shifted by the same offset.
func (s *Session) MoveObject(id string, left, top float64) error {
	return s.mutate("move", func() (bool, error) {
		ok := s.graph.Update(id, func(o *domain.Object) {
			cur := objectOrigin(*o)
			dx, dy := left-cur.X, top-cur.Y
			for i := range o.Points {
				o.Points[i].X += dx
				o.Points[i].Y += dy
			}
			if len(o.Points) == 0 {
				o.Left, o.Top = left, top
			}
		})
		if !ok {
			return false, fmt.Errorf("move %s: %w", id, ErrObjectNotFound)
		}
		return true, nil
	})
}

func objectOrigin(o domain.Object) domain.Point {
	if len(o.Points) == 0 {
		return domain.Point{X: o.Left, Y: o.Top}
	}
	origin := o.Points[0]
	for _, p := range o.Points[1:] {
		origin.X = min(origin.X, p.X)
		origin.Y = min(origin.Y, p.Y)
	}
	return origin
}

// ResizeObject sets the bounding box of a box shaped object.
func (s *Session) ResizeObject(id string, width, height float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize %s: size must be positive", id)
	}
	return s.mutate("resize", func() (bool, error) {
		o, ok := s.graph.Get(id)
		if !ok {
			return false, fmt.Errorf("resize %s: %w", id, ErrObjectNotFound)
		}
		switch o.Kind {
		case domain.KindRect, domain.KindTriangle, domain.KindText, domain.KindCircle, domain.KindEllipse:
		default:
			return false, fmt.Errorf("resize %s (%s): %w", id, o.Kind, ErrNotResizable)
		}
		s.graph.Update(id, func(o *domain.Object) {
			switch o.Kind {
			case domain.KindCircle:
				o.Radius = min(width, height) / 2
			case domain.KindEllipse:
				o.Rx, o.Ry = width/2, height/2
			default:
				o.Width, o.Height = width, height
			}
		})
		return true, nil
	})
}

// forSelection applies fn to every selected object. It reports false when
// nothing is selected.
func (s *Session) forSelection(fn func(o *domain.Object)) bool {
	ids := s.graph.SelectedIDs()
	for _, id := range ids {
		s.graph.Update(id, fn)
	}
	return len(ids) > 0
}

// SetColor makes hex the active color and repaints the selection according
// to the fill and stroke toggles.
func (s *Session) SetColor(hex string) error {
	return s.mutate("set color", func() (bool, error) {
		s.drawing.Color = hex
		return s.forSelection(func(o *domain.Object) {
			s.applyPaint(o)
		}), nil
	})
}

// applyPaint sets fill and stroke from the toggles. Called with mu held.
func (s *Session) applyPaint(o *domain.Object) {
	o.Fill = ""
	if s.drawing.FillEnabled {
		o.Fill = s.drawing.Color
	}
	o.Stroke = ""
	if s.drawing.StrokeEnabled {
		o.Stroke = s.drawing.Color
	}
}

// SetCornerRadius rounds the corners of the selected rectangles.
func (s *Session) SetCornerRadius(r float64) error {
	if r < 0 {
		return fmt.Errorf("set corner radius: negative radius %g", r)
	}
	return s.mutate("set corner radius", func() (bool, error) {
		return s.forSelection(func(o *domain.Object) {
			if o.Kind == domain.KindRect {
				o.Rx, o.Ry = r, r
			}
		}), nil
	})
}

// SetOpacity sets the opacity of the selection from a 0..100 percentage.
func (s *Session) SetOpacity(percent float64) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("set opacity: %g is outside 0..100", percent)
	}
	return s.mutate("set opacity", func() (bool, error) {
		return s.forSelection(func(o *domain.Object) {
			o.Opacity = percent / 100
		}), nil
	})
}

// SetFillEnabled toggles filling with the active color for the selection
// and for later color changes.
func (s *Session) SetFillEnabled(enabled bool) error {
	return s.mutate("set fill", func() (bool, error) {
		s.drawing.FillEnabled = enabled
		return s.forSelection(func(o *domain.Object) {
			o.Fill = ""
			if enabled {
				o.Fill = s.drawing.Color
			}
		}), nil
	})
}

// SetStrokeEnabled toggles a stroke in the active color on the selection.
func (s *Session) SetStrokeEnabled(enabled bool) error {
	return s.mutate("set stroke", func() (bool, error) {
		s.drawing.StrokeEnabled = enabled
		return s.forSelection(func(o *domain.Object) {
			o.Stroke = ""
			if enabled {
				o.Stroke = s.drawing.Color
				o.StrokeWidth = enabledStrokeWidth
			}
		}), nil
	})
}

// SetBackground changes the canvas background.
func (s *Session) SetBackground(color string) error {
	return s.mutate("set background", func() (bool, error) {
		if s.graph.Background() == color {
			return false, nil
		}
		s.graph.SetBackground(color)
		return true, nil
	})
}

// ToggleDrawingMode flips freehand drawing and returns the new mode.
func (s *Session) ToggleDrawingMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawing.DrawingMode = !s.drawing.DrawingMode
	return s.drawing.DrawingMode
}

// SetDrawingMode turns freehand drawing on or off.
func (s *Session) SetDrawingMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawing.DrawingMode = on
}

// ─────────────────────────────────────────────────────────────
// History
// ─────────────────────────────────────────────────────────────

// Undo steps back one mutation. It reports false when there is nothing to
// undo.
func (s *Session) Undo() (bool, error) {
	return s.step(s.history.Undo)
}

// Redo re-applies the last undone mutation.
func (s *Session) Redo() (bool, error) {
	return s.step(s.history.Redo)
}

func (s *Session) step(fn func() (bool, error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok, err := fn()
	if err != nil || !ok {
		return ok, err
	}
	s.revision++
	s.emitHistory()
	return true, nil
}

// SetMaxDepth changes the undo bound of the session.
func (s *Session) SetMaxDepth(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.SetMaxDepth(n)
}

// restore replaces the history with st, used when opening a stored document.
func (s *Session) restore(st history.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.history.Restore(st); err != nil {
		return err
	}
	s.emitHistory()
	return nil
}

// ─────────────────────────────────────────────────────────────
// Clipboard
// ─────────────────────────────────────────────────────────────

// Copy writes the selection to the clipboard as an SVG document. It
// reports false when nothing is selected.
func (s *Session) Copy(ctx context.Context) (bool, error) {
	s.mu.Lock()
	doc, ok := clipboard.SelectionSVG(s.graph)
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	_, ok, err := s.clip.Write(ctx, doc)
	if err == nil {
		s.emitter.Emit(ctx, EventClipboard, clipboard.SvgDocument)
	}
	return ok, err
}

// Paste reads the clipboard and adds its content to the scene. The read
// happens without holding the session lock, so other operations and other
// pastes proceed while it is pending.
func (s *Session) Paste(ctx context.Context) (clipboard.PasteResult, error) {
	if s.opts.ReadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ReadTimeout)
		defer cancel()
	}
	p, err := s.clip.Read(ctx)
	if err != nil {
		return clipboard.PasteResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.clip.Apply(s.graph, p, s.pasteOptions())
	if err := s.commit("paste"); err != nil {
		return res, err
	}
	return res, nil
}

// pasteOptions places pasted text. Called with mu held.
func (s *Session) pasteOptions() clipboard.PasteOptions {
	opts := clipboard.PasteOptions{FontSize: s.opts.Paste.FontSize, Color: s.drawing.Color}
	if s.opts.Paste.Left != nil || s.opts.Paste.Top != nil {
		at := domain.Point{X: clipboard.DefaultTextLeft, Y: clipboard.DefaultTextTop}
		if s.opts.Paste.Left != nil {
			at.X = *s.opts.Paste.Left
		}
		if s.opts.Paste.Top != nil {
			at.Y = *s.opts.Paste.Top
		}
		opts.At = &at
	}
	return opts
}

// PasteAsync starts a paste and returns a channel that receives its error
// (nil on success) once the paste has been applied.
func (s *Session) PasteAsync(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		_, err := s.Paste(ctx)
		done <- err
	}()
	return done
}

// ─────────────────────────────────────────────────────────────
// Input
// ─────────────────────────────────────────────────────────────

// Dispatch runs the editor command bound to a resolved key or tap action.
// Paste blocks until the clipboard was read and applied.
func (s *Session) Dispatch(ctx context.Context, action input.Action) error {
	var err error
	switch action {
	case input.ActionNone:
	case input.ActionUndo:
		_, err = s.Undo()
	case input.ActionRedo:
		_, err = s.Redo()
	case input.ActionCopy:
		_, err = s.Copy(ctx)
	case input.ActionPaste:
		_, err = s.Paste(ctx)
	case input.ActionToggleDrawing:
		s.ToggleDrawingMode()
	case input.ActionDelete:
		_, err = s.DeleteSelected()
	default:
		err = fmt.Errorf("dispatch: unknown action %q", action)
	}
	return err
}

// Tap registers a multi-finger tap and runs the command a completed double
// tap maps to. It returns the action that ran, ActionNone for a first tap or
// an unbound finger count.
func (s *Session) Tap(ctx context.Context, fingers int) (input.Action, error) {
	action := s.taps.Tap(fingers)
	if action == input.ActionNone {
		return action, nil
	}
	return action, s.Dispatch(ctx, action)
}

// ─────────────────────────────────────────────────────────────
// Read views
// ─────────────────────────────────────────────────────────────

// Objects returns copies of the scene objects in z-order.
func (s *Session) Objects() []domain.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Objects()
}

// Selected returns copies of the selected objects.
func (s *Session) Selected() []domain.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Selected()
}

// Background returns the canvas background.
func (s *Session) Background() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Background()
}

// Drawing returns the toolbar state.
func (s *Session) Drawing() DrawingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawing
}

// History summarizes the undo/redo stacks.
func (s *Session) History() HistoryInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyInfoLocked()
}

func (s *Session) historyInfoLocked() HistoryInfo {
	st := s.history.State()
	return HistoryInfo{
		DocumentID: s.id,
		CanUndo:    len(st.Undo) > 0,
		CanRedo:    len(st.Redo) > 0,
		UndoDepth:  len(st.Undo),
		RedoDepth:  len(st.Redo),
		MaxDepth:   s.history.MaxDepth(),
		Dirty:      s.revision != s.saved,
	}
}

// Current returns the snapshot of what is on screen.
func (s *Session) Current() snapshot.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Current()
}

// ExportSVG renders the whole scene as an SVG document.
func (s *Session) ExportSVG() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	objs := s.graph.Objects()
	fragments := make([]string, len(objs))
	for i, o := range objs {
		fragments[i] = scene.SVG(o)
	}
	return scene.Document(fragments)
}

// Checkpoint returns the history and the revision it belongs to, for saving.
func (s *Session) Checkpoint() (history.State, int, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.State(), s.graph.Len(), s.revision
}

// Dirty reports whether the session changed since the last MarkSaved.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision != s.saved
}

// MarkSaved records that revision rev has been persisted.
func (s *Session) MarkSaved(rev uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rev > s.saved {
		s.saved = rev
	}
}
