package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"sketchpad/internal/clipboard"
	"sketchpad/internal/config"
	"sketchpad/internal/service"
	"sketchpad/internal/storage"

	"github.com/mark3labs/mcp-go/mcp"
)

type toolHandler func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "mcp.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	docs := service.NewDocumentService(
		storage.NewDocumentStore(db),
		storage.NewHistoryStore(db, 0),
		clipboard.NewMemory(""),
		service.SessionOptions{Canvas: config.CanvasConfig{Width: 800, Height: 600}},
	)
	return New(Deps{Documents: docs})
}

func call(t *testing.T, h toolHandler, args map[string]any) string {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("tool failed: %v", err)
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content %T", res.Content[0])
	}
	return text.Text
}

func callErr(h toolHandler, args map[string]any) error {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	_, err := h(context.Background(), req)
	return err
}

func TestTools_EditAndUndo(t *testing.T) {
	s := newTestServer(t)

	var doc struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(call(t, s.handleCreateDocument, map[string]any{"name": "diagram"})), &doc); err != nil {
		t.Fatal(err)
	}
	if s.active() != doc.ID {
		t.Fatal("create_document should set the active document")
	}

	call(t, s.handleAddShape, map[string]any{"type": "rect"})
	call(t, s.handleAddText, map[string]any{"text": "label", "x": 10.0, "y": 20.0})

	svg := call(t, s.handleExportSVG, nil)
	if !strings.Contains(svg, "<rect") || !strings.Contains(svg, ">label</text>") {
		t.Fatalf("export missing objects:\n%s", svg)
	}

	var hist service.HistoryInfo
	json.Unmarshal([]byte(call(t, s.handleUndo, nil)), &hist)
	if hist.UndoDepth != 1 || hist.RedoDepth != 1 {
		t.Errorf("unexpected history after undo: %+v", hist)
	}

	out := call(t, s.handlePressKeys, map[string]any{"keys": "ctrl+shift+z, ctrl+z"})
	if !strings.Contains(out, `"action": "redo"`) || !strings.Contains(out, `"action": "undo"`) {
		t.Errorf("press_keys did not resolve both combos: %s", out)
	}

	call(t, s.handleSaveDocument, nil)
	list := call(t, s.handleListDocuments, nil)
	if !strings.Contains(list, `"objectCount": 1`) {
		t.Errorf("saved document should report one object: %s", list)
	}
}

func TestTools_CopyPaste(t *testing.T) {
	s := newTestServer(t)
	call(t, s.handleCreateDocument, map[string]any{"name": "clip"})
	call(t, s.handleAddShape, map[string]any{"type": "circle"})

	if got := call(t, s.handleCopySelection, nil); !strings.Contains(got, "Nothing selected") {
		t.Errorf("copy with no selection should be a no-op, got %q", got)
	}
	call(t, s.handleSelectObjects, map[string]any{"all": true})
	call(t, s.handleCopySelection, nil)

	out := call(t, s.handlePasteClipboard, nil)
	if !strings.Contains(out, `"kind": "svg"`) {
		t.Errorf("expected svg paste, got %s", out)
	}

	var listed struct {
		Objects []json.RawMessage `json:"objects"`
	}
	json.Unmarshal([]byte(call(t, s.handleListObjects, nil)), &listed)
	if len(listed.Objects) != 2 {
		t.Errorf("expected 2 objects after paste, got %d", len(listed.Objects))
	}
}

func TestTools_Tap(t *testing.T) {
	s := newTestServer(t)
	call(t, s.handleCreateDocument, map[string]any{"name": "touch"})
	call(t, s.handleAddShape, map[string]any{"type": "rect"})

	out := call(t, s.handleTap, map[string]any{"fingers": 2.0})
	if !strings.Contains(out, `"undo"`) || !strings.Contains(out, `"undoDepth": 0`) {
		t.Errorf("two-finger double tap should undo: %s", out)
	}
	out = call(t, s.handleTap, map[string]any{"fingers": 3.0})
	if !strings.Contains(out, `"redo"`) || !strings.Contains(out, `"undoDepth": 1`) {
		t.Errorf("three-finger double tap should redo: %s", out)
	}
	if err := callErr(s.handleTap, map[string]any{}); err == nil {
		t.Error("expected error without fingers")
	}
}

func TestPrompts(t *testing.T) {
	s := newTestServer(t)

	var req mcp.GetPromptRequest
	req.Params.Arguments = map[string]string{"systemName": "billing"}
	res, err := s.handleSystemDiagramPrompt(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	text := res.Messages[0].Content.(mcp.TextContent).Text
	for _, tool := range []string{"create_document", "add_shape", "add_text", "add_stroke", "undo"} {
		if !strings.Contains(text, tool) {
			t.Errorf("system_diagram prompt should mention %s", tool)
		}
	}

	req.Params.Arguments = map[string]string{"sourceDocumentId": "doc-a"}
	res, err = s.handleDuplicateSelectionPrompt(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	text = res.Messages[0].Content.(mcp.TextContent).Text
	if !strings.Contains(text, `paste_clipboard with documentId "doc-a"`) {
		t.Errorf("target should default to the source document: %s", text)
	}
}

func TestTools_RequireDocument(t *testing.T) {
	s := newTestServer(t)
	if err := callErr(s.handleAddShape, map[string]any{"type": "rect"}); err == nil {
		t.Error("expected error without an active document")
	}
	if err := callErr(s.handleSetActiveDocument, map[string]any{"documentId": "missing"}); err == nil {
		t.Error("expected error for unknown document")
	}
	call(t, s.handleCreateDocument, map[string]any{"name": "x"})
	if err := callErr(s.handleAddShape, map[string]any{"type": "star"}); err == nil {
		t.Error("expected error for unknown shape type")
	}
	if err := callErr(s.handleMoveObject, map[string]any{"objectId": "nope", "x": 1.0}); err == nil {
		t.Error("expected error for missing y")
	}
}

func TestParsePoints(t *testing.T) {
	tests := []struct {
		in   string
		want int
		err  bool
	}{
		{`[{"x":1,"y":2},{"x":3,"y":4}]`, 2, false},
		{`[[1,2],[3,4],[5,6]]`, 3, false},
		{`"nope"`, 0, true},
	}
	for _, tt := range tests {
		pts, err := parsePoints(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("parsePoints(%s) error = %v", tt.in, err)
			continue
		}
		if len(pts) != tt.want {
			t.Errorf("parsePoints(%s) = %d points, want %d", tt.in, len(pts), tt.want)
		}
	}
}

func TestDocumentIDFromURI(t *testing.T) {
	tests := map[string]string{
		"sketchpad://document/abc-123/svg": "abc-123",
		"sketchpad://document/abc":         "",
		"notes://page/abc/blocks":          "",
	}
	for uri, want := range tests {
		if got := documentIDFromURI(uri); got != want {
			t.Errorf("documentIDFromURI(%q) = %q, want %q", uri, got, want)
		}
	}
}
