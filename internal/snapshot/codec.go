// Package snapshot serializes a whole scene to a self-contained JSON text and
// restores it again. A Snapshot is what the history engine stores per step.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"sketchpad/internal/domain"
	"sketchpad/internal/scene"
)

// Version is the wire format version written by Encode.
const Version = 1

// Snapshot is an immutable encoded scene.
type Snapshot string

// ErrCorrupt matches every *CorruptError via errors.Is.
var ErrCorrupt = errors.New("corrupt snapshot")

// CorruptError reports a snapshot text that is not a well-formed encoding.
type CorruptError struct {
	Reason string
	Err    error
}

func (e *CorruptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt snapshot: %s: %v", e.Reason, e.Err)
	}
	return "corrupt snapshot: " + e.Reason
}

func (e *CorruptError) Unwrap() error { return e.Err }

func (e *CorruptError) Is(target error) bool { return target == ErrCorrupt }

// Scene is the decoded form of a snapshot.
type Scene struct {
	Version    int             `json:"version"`
	Background string          `json:"background"`
	Objects    []domain.Object `json:"objects"`
}

// Encode serializes every object and the background of g.
// Field order is fixed by the struct layout, so equal scenes encode to
// identical text.
func Encode(g *scene.Graph) (Snapshot, error) {
	objs := g.Objects()
	if objs == nil {
		objs = []domain.Object{}
	}
	data, err := json.Marshal(Scene{Version: Version, Background: g.Background(), Objects: objs})
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return Snapshot(data), nil
}

// Parse decodes s without touching any scene.
func Parse(s Snapshot) (Scene, error) {
	if s == "" {
		return Scene{}, &CorruptError{Reason: "empty text"}
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.DisallowUnknownFields()

	var sc Scene
	if err := dec.Decode(&sc); err != nil {
		return Scene{}, &CorruptError{Reason: "malformed json", Err: err}
	}
	if dec.More() {
		return Scene{}, &CorruptError{Reason: "trailing data"}
	}
	if sc.Version != Version {
		return Scene{}, &CorruptError{Reason: fmt.Sprintf("unsupported version %d", sc.Version)}
	}
	seen := make(map[string]struct{}, len(sc.Objects))
	for i, o := range sc.Objects {
		if !o.Kind.Valid() {
			return Scene{}, &CorruptError{Reason: fmt.Sprintf("object %d", i), Err: fmt.Errorf("%w: %q", domain.ErrUnknownKind, o.Kind)}
		}
		if o.ID == "" {
			return Scene{}, &CorruptError{Reason: fmt.Sprintf("object %d has no id", i)}
		}
		if _, dup := seen[o.ID]; dup {
			return Scene{}, &CorruptError{Reason: fmt.Sprintf("duplicate object id %q", o.ID)}
		}
		seen[o.ID] = struct{}{}
	}
	return sc, nil
}

// Decode replaces the content of g with the scene encoded in s.
// On error g is left exactly as it was.
func Decode(s Snapshot, g *scene.Graph) error {
	sc, err := Parse(s)
	if err != nil {
		return err
	}
	g.Replace(sc.Objects, sc.Background)
	return nil
}
