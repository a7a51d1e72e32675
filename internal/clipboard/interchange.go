package clipboard

import (
	"context"
	"fmt"
	"log/slog"

	"sketchpad/internal/domain"
	"sketchpad/internal/scene"
)

// Default placement of pasted plain text.
const (
	DefaultTextLeft     = 100
	DefaultTextTop      = 100
	DefaultTextFontSize = 24
)

// PasteOptions controls how plain text is placed.
type PasteOptions struct {
	// At is the top-left corner of pasted text. Nil means
	// DefaultTextLeft/DefaultTextTop; an explicit origin is kept as is.
	At       *domain.Point
	FontSize float64
	Color    string // active drawing color
}

func (o *PasteOptions) defaults() {
	if o.At == nil {
		o.At = &domain.Point{X: DefaultTextLeft, Y: DefaultTextTop}
	}
	if o.FontSize <= 0 {
		o.FontSize = DefaultTextFontSize
	}
	if o.Color == "" {
		o.Color = "#000000"
	}
}

// PasteResult describes what a paste added to the scene.
type PasteResult struct {
	Payload Payload         `json:"payload"`
	Objects []domain.Object `json:"objects"`
	// ParseErr is set when SVG markup was only partly understood. Objects
	// holds whatever was decoded before the error.
	ParseErr error `json:"-"`
}

// Interchange copies the selection to a clipboard and pastes clipboard text
// into a scene.
type Interchange struct {
	clip   Clipboard
	logger *slog.Logger
}

// New creates an Interchange over clip. A nil logger means slog.Default().
func New(clip Clipboard, logger *slog.Logger) *Interchange {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interchange{clip: clip, logger: logger}
}

// SelectionSVG builds the copy document for the selected objects of g.
// It returns false when nothing is selected.
func SelectionSVG(g *scene.Graph) (string, bool) {
	selected := g.Selected()
	if len(selected) == 0 {
		return "", false
	}
	fragments := make([]string, len(selected))
	for i, o := range selected {
		fragments[i] = scene.SVG(o)
	}
	return scene.Document(fragments), true
}

// Write puts an already built SVG document on the clipboard.
func (x *Interchange) Write(ctx context.Context, doc string) (Payload, bool, error) {
	p := Payload{Kind: SvgDocument, Content: doc}
	if err := x.clip.WriteText(ctx, doc); err != nil {
		x.logger.Error("copy to clipboard failed", "error", err)
		return p, false, fmt.Errorf("copy selection: %w", err)
	}
	x.logger.Debug("copied selection to clipboard", "bytes", len(doc))
	return p, true, nil
}

// Read fetches and classifies the clipboard text. This is the only blocking
// step of a paste and does not touch any scene.
func (x *Interchange) Read(ctx context.Context) (Payload, error) {
	text, err := x.clip.ReadText(ctx)
	if err != nil {
		x.logger.Error("failed to read clipboard contents", "error", err)
		return Payload{}, fmt.Errorf("paste: %w", err)
	}
	return Classify(text), nil
}

// Apply adds the objects described by p to g and logs markup that was only
// partly understood. The caller renders and records the mutation afterwards.
func (x *Interchange) Apply(g *scene.Graph, p Payload, opts PasteOptions) PasteResult {
	res := applyPayload(g, p, opts)
	if res.ParseErr != nil {
		x.logger.Warn("pasted svg only partly parsed", "objects", len(res.Objects), "error", res.ParseErr)
	}
	return res
}

func applyPayload(g *scene.Graph, p Payload, opts PasteOptions) PasteResult {
	opts.defaults()
	res := PasteResult{Payload: p}

	switch p.Kind {
	case SvgDocument:
		objs, err := ParseSVG(p.Content)
		res.ParseErr = err
		for _, o := range objs {
			res.Objects = append(res.Objects, g.Add(o))
		}
	default:
		o := domain.Object{
			ID:       domain.NewObjectID(),
			Kind:     domain.KindText,
			Left:     opts.At.X,
			Top:      opts.At.Y,
			Text:     p.Content,
			FontSize: opts.FontSize,
			Fill:     opts.Color,
			Opacity:  1,
		}
		res.Objects = append(res.Objects, g.Add(o))
	}
	return res
}
