package mcpserver

import (
	"context"
	"fmt"

	"sketchpad/internal/input"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerHistoryTools() {
	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last change. A no-op when there is nothing to undo."),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
	), s.handleUndo)

	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the last undone change. A no-op when there is nothing to redo."),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
	), s.handleRedo)

	s.mcp.AddTool(mcp.NewTool("history_state",
		mcp.WithDescription("Report undo/redo depth and whether the document has unsaved changes"),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
	), s.handleHistoryState)

	s.mcp.AddTool(mcp.NewTool("press_keys",
		mcp.WithDescription("Send keyboard shortcuts such as ctrl+z, ctrl+shift+z, ctrl+y, ctrl+c, ctrl+v, ctrl+p, delete"),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
		mcp.WithString("keys", mcp.Description("Comma-separated key combos, applied in order"), mcp.Required()),
	), s.handlePressKeys)

	s.mcp.AddTool(mcp.NewTool("tap",
		mcp.WithDescription("Tap the canvas with several fingers. A two-finger double tap undoes, a three-finger double tap redoes."),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
		mcp.WithNumber("fingers", mcp.Description("Number of touch points (2 or 3)"), mcp.Required()),
		mcp.WithNumber("taps", mcp.Description("Number of taps to send (default: 2, a double tap)")),
	), s.handleTap)
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.sessionForTool(req.GetArguments())
	if err != nil {
		return nil, err
	}
	if _, err := sess.Undo(); err != nil {
		return nil, err
	}
	return jsonResult(sess.History())
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.sessionForTool(req.GetArguments())
	if err != nil {
		return nil, err
	}
	if _, err := sess.Redo(); err != nil {
		return nil, err
	}
	return jsonResult(sess.History())
}

func (s *Server) handleHistoryState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.sessionForTool(req.GetArguments())
	if err != nil {
		return nil, err
	}
	return jsonResult(sess.History())
}

func (s *Server) handlePressKeys(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.sessionForTool(req.GetArguments())
	if err != nil {
		return nil, err
	}
	combos := splitIDs(req.GetString("keys", ""))
	if len(combos) == 0 {
		return nil, fmt.Errorf("keys is required")
	}

	type keyResult struct {
		Keys   string       `json:"keys"`
		Action input.Action `json:"action"`
	}
	results := make([]keyResult, 0, len(combos))
	for _, combo := range combos {
		action := input.Resolve(input.ParseCombo(combo))
		if err := sess.Dispatch(ctx, action); err != nil {
			return nil, fmt.Errorf("%s: %w", combo, err)
		}
		results = append(results, keyResult{Keys: combo, Action: action})
	}
	return jsonResult(map[string]any{
		"pressed": results,
		"history": sess.History(),
	})
}

func (s *Server) handleTap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	sess, err := s.sessionForTool(args)
	if err != nil {
		return nil, err
	}
	fingers, err := requireFloat(args, "fingers")
	if err != nil {
		return nil, err
	}
	taps := int(getFloat(args, "taps", 2))
	if taps < 1 {
		return nil, fmt.Errorf("taps must be at least 1")
	}

	var actions []input.Action
	for range taps {
		action, err := sess.Tap(ctx, int(fingers))
		if err != nil {
			return nil, err
		}
		if action != input.ActionNone {
			actions = append(actions, action)
		}
	}
	return jsonResult(map[string]any{
		"actions": actions,
		"history": sess.History(),
	})
}
