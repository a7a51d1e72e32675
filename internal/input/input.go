// Package input maps keyboard shortcuts and multi-finger tap gestures to
// editor actions.
package input

import (
	"strings"
	"sync"
	"time"
)

// Action is an editor command triggered by user input.
type Action string

const (
	ActionNone          Action = ""
	ActionUndo          Action = "undo"
	ActionRedo          Action = "redo"
	ActionCopy          Action = "copy"
	ActionPaste         Action = "paste"
	ActionToggleDrawing Action = "toggle-drawing"
	ActionDelete        Action = "delete"
)

// KeyEvent is a key press with its modifier state.
type KeyEvent struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl"`
	Shift bool   `json:"shift"`
}

// Resolve returns the action bound to ev, or ActionNone.
func Resolve(ev KeyEvent) Action {
	key := strings.ToLower(ev.Key)
	if !ev.Ctrl {
		if key == "delete" {
			return ActionDelete
		}
		return ActionNone
	}
	switch key {
	case "z":
		if ev.Shift {
			return ActionRedo
		}
		return ActionUndo
	case "y":
		if !ev.Shift {
			return ActionRedo
		}
	case "c":
		if !ev.Shift {
			return ActionCopy
		}
	case "v":
		if !ev.Shift {
			return ActionPaste
		}
	case "p":
		if !ev.Shift {
			return ActionToggleDrawing
		}
	}
	return ActionNone
}

// ParseCombo turns a combo like "ctrl+shift+z" into a KeyEvent.
func ParseCombo(combo string) KeyEvent {
	var ev KeyEvent
	for _, part := range strings.Split(combo, "+") {
		switch p := strings.ToLower(strings.TrimSpace(part)); p {
		case "ctrl", "control", "cmd", "meta":
			ev.Ctrl = true
		case "shift":
			ev.Shift = true
		default:
			ev.Key = p
		}
	}
	return ev
}

// DefaultTapReset is how long a first tap waits for its second tap.
const DefaultTapReset = 300 * time.Millisecond

// TapTracker turns pairs of multi-finger taps into actions: a double tap with
// two fingers undoes, with three fingers redoes.
type TapTracker struct {
	mu    sync.Mutex
	reset time.Duration
	now   func() time.Time
	count int
	last  time.Time
}

// NewTapTracker returns a tracker with the given reset window
// (DefaultTapReset when zero).
func NewTapTracker(reset time.Duration) *TapTracker {
	if reset <= 0 {
		reset = DefaultTapReset
	}
	return &TapTracker{reset: reset, now: time.Now}
}

// Tap registers a tap with the given number of touch points and returns the
// resulting action once the second tap of a pair arrives.
func (t *TapTracker) Tap(fingers int) Action {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if t.count > 0 && now.Sub(t.last) > t.reset {
		t.count = 0
	}
	t.count++
	t.last = now
	if t.count < 2 {
		return ActionNone
	}
	t.count = 0
	switch fingers {
	case 2:
		return ActionUndo
	case 3:
		return ActionRedo
	}
	return ActionNone
}
