package clipboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
)

// Clipboard is the system clipboard boundary. Both operations may fail.
type Clipboard interface {
	ReadText(ctx context.Context) (string, error)
	WriteText(ctx context.Context, text string) error
}

// ErrUnavailable is returned when no system clipboard utility can be used.
var ErrUnavailable = errors.New("system clipboard unavailable")

// System talks to the OS clipboard (pbcopy/pbpaste, xclip/xsel, wl-clipboard,
// or the Windows API, depending on platform).
type System struct{}

// NewSystem returns the OS clipboard, or ErrUnavailable when the platform has
// no supported clipboard utility.
func NewSystem() (*System, error) {
	if clipboard.Unsupported {
		return nil, ErrUnavailable
	}
	return &System{}, nil
}

// ReadText reads the clipboard. The underlying call cannot be interrupted;
// on cancellation the result is abandoned.
func (System) ReadText(ctx context.Context) (string, error) {
	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		text, err := clipboard.ReadAll()
		ch <- result{text, err}
	}()
	select {
	case r := <-ch:
		if r.err != nil {
			return "", fmt.Errorf("read clipboard: %w", r.err)
		}
		return r.text, nil
	case <-ctx.Done():
		return "", fmt.Errorf("read clipboard: %w", ctx.Err())
	}
}

// WriteText replaces the clipboard content.
func (System) WriteText(ctx context.Context, text string) error {
	ch := make(chan error, 1)
	go func() { ch <- clipboard.WriteAll(text) }()
	select {
	case err := <-ch:
		if err != nil {
			return fmt.Errorf("write clipboard: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("write clipboard: %w", ctx.Err())
	}
}

// Memory is an in-process clipboard. The zero value is ready to use.
type Memory struct {
	mu     sync.Mutex
	text   string
	writes int

	// ReadErr and WriteErr, when set, are returned by the next operations.
	ReadErr  error
	WriteErr error
}

// NewMemory returns a Memory clipboard holding text.
func NewMemory(text string) *Memory {
	return &Memory{text: text}
}

func (m *Memory) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return "", m.ReadErr
	}
	return m.text, nil
}

func (m *Memory) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.text = text
	m.writes++
	return nil
}

// Text returns the current content.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Writes returns how many successful writes happened.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
