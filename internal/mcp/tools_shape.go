package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"sketchpad/internal/domain"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerShapeTools() {
	kinds := make([]string, 0)
	for _, k := range domain.NewRegistry().Kinds() {
		kinds = append(kinds, string(k))
	}

	s.mcp.AddTool(mcp.NewTool("add_shape",
		mcp.WithDescription("Add a shape at the canvas center in the active color"),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
		mcp.WithString("type", mcp.Description("Shape type: "+strings.Join(kinds, ", ")), mcp.Required()),
	), s.handleAddShape)

	s.mcp.AddTool(mcp.NewTool("add_text",
		mcp.WithDescription("Add a text object in the active color"),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
		mcp.WithString("text", mcp.Description("Text content"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("Left position (optional, default 100)")),
		mcp.WithNumber("y", mcp.Description("Top position (optional, default 100)")),
	), s.handleAddText)

	s.mcp.AddTool(mcp.NewTool("add_stroke",
		mcp.WithDescription("Add a freehand brush stroke through the given points"),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
		mcp.WithString("points", mcp.Description("JSON array of points [{x, y}, ...] or [[x, y], ...]"), mcp.Required()),
	), s.handleAddStroke)

	s.mcp.AddTool(mcp.NewTool("list_objects",
		mcp.WithDescription("List all objects on the canvas with their IDs, types, positions and styles"),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
	), s.handleListObjects)

	s.mcp.AddTool(mcp.NewTool("select_objects",
		mcp.WithDescription("Replace the selection. Pass objectIds, or all=true to select everything, or neither to clear."),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
		mcp.WithString("objectIds", mcp.Description("Comma-separated object IDs")),
		mcp.WithBoolean("all", mcp.Description("Select every object")),
	), s.handleSelectObjects)

	s.mcp.AddTool(mcp.NewTool("delete_selected",
		mcp.WithDescription("🛑 DESTRUCTIVE: Remove the selected objects (undoable)"),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteSelected)

	s.mcp.AddTool(mcp.NewTool("move_object",
		mcp.WithDescription("Move an object so its top-left corner is at x, y"),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
		mcp.WithString("objectId", mcp.Description("Object ID"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("New left position"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("New top position"), mcp.Required()),
	), s.handleMoveObject)

	s.mcp.AddTool(mcp.NewTool("resize_object",
		mcp.WithDescription("Resize a rect, triangle, text, circle or ellipse"),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
		mcp.WithString("objectId", mcp.Description("Object ID"), mcp.Required()),
		mcp.WithNumber("width", mcp.Description("New width"), mcp.Required()),
		mcp.WithNumber("height", mcp.Description("New height"), mcp.Required()),
	), s.handleResizeObject)
}

func boolPtr(v bool) *bool { return &v }

func (s *Server) handleAddShape(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	sess, err := s.sessionForTool(args)
	if err != nil {
		return nil, err
	}
	kind := domain.Kind(req.GetString("type", ""))
	o, err := sess.AddShape(kind)
	if err != nil {
		return nil, fmt.Errorf("add shape: %w", err)
	}
	return jsonResult(o)
}

func (s *Server) handleAddText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	sess, err := s.sessionForTool(args)
	if err != nil {
		return nil, err
	}
	text, ok := args["text"].(string)
	if !ok {
		return nil, fmt.Errorf("text is required")
	}
	o, err := sess.AddText(text, getFloat(args, "x", 100), getFloat(args, "y", 100))
	if err != nil {
		return nil, fmt.Errorf("add text: %w", err)
	}
	return jsonResult(o)
}

func (s *Server) handleAddStroke(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	sess, err := s.sessionForTool(args)
	if err != nil {
		return nil, err
	}
	pts, err := parsePoints(req.GetString("points", ""))
	if err != nil {
		return nil, err
	}
	o, err := sess.AddStroke(pts)
	if err != nil {
		return nil, fmt.Errorf("add stroke: %w", err)
	}
	return jsonResult(o)
}

func (s *Server) handleListObjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.sessionForTool(req.GetArguments())
	if err != nil {
		return nil, err
	}
	selected := make(map[string]bool)
	for _, o := range sess.Selected() {
		selected[o.ID] = true
	}

	type objectSummary struct {
		domain.Object
		Selected bool `json:"selected,omitempty"`
	}
	objs := sess.Objects()
	out := make([]objectSummary, len(objs))
	for i, o := range objs {
		out[i] = objectSummary{Object: o, Selected: selected[o.ID]}
	}
	return jsonResult(map[string]any{
		"background": sess.Background(),
		"objects":    out,
	})
}

func (s *Server) handleSelectObjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	sess, err := s.sessionForTool(args)
	if err != nil {
		return nil, err
	}
	var n int
	switch ids := splitIDs(req.GetString("objectIds", "")); {
	case getBool(args, "all", false):
		n = sess.SelectAll()
	case len(ids) > 0:
		n = sess.Select(ids...)
	default:
		sess.ClearSelection()
	}
	return textResult(fmt.Sprintf("%d object(s) selected", n)), nil
}

func (s *Server) handleDeleteSelected(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.sessionForTool(req.GetArguments())
	if err != nil {
		return nil, err
	}
	n, err := sess.DeleteSelected()
	if err != nil {
		return nil, fmt.Errorf("delete selected: %w", err)
	}
	return textResult(fmt.Sprintf("Deleted %d object(s)", n)), nil
}

func (s *Server) handleMoveObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	sess, err := s.sessionForTool(args)
	if err != nil {
		return nil, err
	}
	id := req.GetString("objectId", "")
	x, err := requireFloat(args, "x")
	if err != nil {
		return nil, err
	}
	y, err := requireFloat(args, "y")
	if err != nil {
		return nil, err
	}
	if err := sess.MoveObject(id, x, y); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Moved %s to (%.0f, %.0f)", id, x, y)), nil
}

func (s *Server) handleResizeObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	sess, err := s.sessionForTool(args)
	if err != nil {
		return nil, err
	}
	id := req.GetString("objectId", "")
	w, err := requireFloat(args, "width")
	if err != nil {
		return nil, err
	}
	h, err := requireFloat(args, "height")
	if err != nil {
		return nil, err
	}
	if err := sess.ResizeObject(id, w, h); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Resized %s to %.0fx%.0f", id, w, h)), nil
}
