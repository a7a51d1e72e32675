// Package history implements snapshot-based undo/redo for a scene.
//
// The engine keeps the current snapshot plus two stacks. Recording a mutation
// pushes the current snapshot onto the undo stack and invalidates redo;
// undo/redo move snapshots between the stacks and decode the target snapshot
// back into the scene.
package history

import (
	"fmt"
	"log/slog"

	"sketchpad/internal/scene"
	"sketchpad/internal/snapshot"
)

// State is a copy of the engine's stacks. Undo and Redo are ordered
// oldest→newest; the last element is the next one to be applied.
type State struct {
	Current snapshot.Snapshot   `json:"current"`
	Undo    []snapshot.Snapshot `json:"undo"`
	Redo    []snapshot.Snapshot `json:"redo"`
}

// Engine owns the history of one scene. It is not safe for concurrent use.
type Engine struct {
	graph    *scene.Graph
	renderer scene.Renderer
	logger   *slog.Logger
	maxDepth int

	current snapshot.Snapshot
	undo    []snapshot.Snapshot
	redo    []snapshot.Snapshot
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxDepth bounds the undo stack; the oldest entries are dropped first.
// Zero or negative means unbounded.
func WithMaxDepth(n int) Option {
	return func(e *Engine) { e.maxDepth = n }
}

// WithLogger sets the logger used for history diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine for graph and records the scene as it is now, so the
// first user edit has something to undo back to.
func New(graph *scene.Graph, renderer scene.Renderer, opts ...Option) (*Engine, error) {
	if renderer == nil {
		renderer = scene.NopRenderer{}
	}
	e := &Engine{graph: graph, renderer: renderer, logger: slog.Default()}
	for _, o := range opts {
		o(e)
	}
	if err := e.Record(); err != nil {
		return nil, err
	}
	return e, nil
}

// Record captures the scene after a mutation the caller already applied.
// The redo stack is cleared: a new edit starts a new branch.
func (e *Engine) Record() error {
	snap, err := snapshot.Encode(e.graph)
	if err != nil {
		return fmt.Errorf("record mutation: %w", err)
	}
	if e.current != "" {
		e.undo = append(e.undo, e.current)
		e.trim()
	}
	e.redo = nil
	e.current = snap
	return nil
}

// Undo restores the previous snapshot. It returns false without error when
// there is nothing to undo.
func (e *Engine) Undo() (bool, error) {
	return e.replay(&e.undo, &e.redo, "undo")
}

// Redo re-applies the most recently undone snapshot. It returns false without
// error when there is nothing to redo.
func (e *Engine) Redo() (bool, error) {
	return e.replay(&e.redo, &e.undo, "redo")
}

// replay pops from play and pushes current onto save. The target snapshot is
// decoded first so a corrupt entry leaves the stacks untouched.
func (e *Engine) replay(play, save *[]snapshot.Snapshot, op string) (bool, error) {
	if len(*play) == 0 {
		return false, nil
	}
	target := (*play)[len(*play)-1]
	if err := snapshot.Decode(target, e.graph); err != nil {
		e.logger.Error("history replay failed", "op", op, "error", err)
		return false, fmt.Errorf("%s: %w", op, err)
	}
	*play = (*play)[:len(*play)-1]
	*save = append(*save, e.current)
	e.current = target
	e.renderer.Render(e.graph)
	return true, nil
}

// CanUndo reports whether Undo would change the scene.
func (e *Engine) CanUndo() bool { return len(e.undo) > 0 }

// CanRedo reports whether Redo would change the scene.
func (e *Engine) CanRedo() bool { return len(e.redo) > 0 }

// Current returns the snapshot matching what was last rendered.
func (e *Engine) Current() snapshot.Snapshot { return e.current }

// State returns a copy of the stacks.
func (e *Engine) State() State {
	return State{
		Current: e.current,
		Undo:    append([]snapshot.Snapshot(nil), e.undo...),
		Redo:    append([]snapshot.Snapshot(nil), e.redo...),
	}
}

// Restore replaces the engine's stacks with st and decodes st.Current into
// the scene. Every snapshot is validated first; on error nothing changes.
func (e *Engine) Restore(st State) error {
	if _, err := snapshot.Parse(st.Current); err != nil {
		return fmt.Errorf("restore current: %w", err)
	}
	for i, s := range st.Undo {
		if _, err := snapshot.Parse(s); err != nil {
			return fmt.Errorf("restore undo[%d]: %w", i, err)
		}
	}
	for i, s := range st.Redo {
		if _, err := snapshot.Parse(s); err != nil {
			return fmt.Errorf("restore redo[%d]: %w", i, err)
		}
	}
	if err := snapshot.Decode(st.Current, e.graph); err != nil {
		return fmt.Errorf("restore current: %w", err)
	}
	e.current = st.Current
	e.undo = append([]snapshot.Snapshot(nil), st.Undo...)
	e.redo = append([]snapshot.Snapshot(nil), st.Redo...)
	e.trim()
	e.renderer.Render(e.graph)
	return nil
}

// SetMaxDepth changes the undo bound and trims immediately if needed.
func (e *Engine) SetMaxDepth(n int) {
	e.maxDepth = n
	e.trim()
}

// MaxDepth returns the undo bound, 0 meaning unbounded.
func (e *Engine) MaxDepth() int {
	if e.maxDepth < 0 {
		return 0
	}
	return e.maxDepth
}

func (e *Engine) trim() {
	if e.maxDepth <= 0 || len(e.undo) <= e.maxDepth {
		return
	}
	drop := len(e.undo) - e.maxDepth
	e.logger.Debug("history depth exceeded, dropping oldest", "dropped", drop, "max", e.maxDepth)
	e.undo = append([]snapshot.Snapshot(nil), e.undo[drop:]...)
}
