package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerStyleTools() {
	s.mcp.AddTool(mcp.NewTool("set_color",
		mcp.WithDescription("Set the active color and repaint the selection according to the fill and stroke toggles"),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
		mcp.WithString("color", mcp.Description("Color hex, e.g. #3b82f6"), mcp.Required()),
	), s.handleSetColor)

	s.mcp.AddTool(mcp.NewTool("set_opacity",
		mcp.WithDescription("Set the opacity of the selection"),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
		mcp.WithNumber("percent", mcp.Description("Opacity 0..100"), mcp.Required()),
	), s.handleSetOpacity)

	s.mcp.AddTool(mcp.NewTool("set_corner_radius",
		mcp.WithDescription("Round the corners of the selected rectangles"),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
		mcp.WithNumber("radius", mcp.Description("Corner radius"), mcp.Required()),
	), s.handleSetCornerRadius)

	s.mcp.AddTool(mcp.NewTool("set_fill",
		mcp.WithDescription("Enable or disable filling the selection with the active color"),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
		mcp.WithBoolean("enabled", mcp.Description("Whether fill is enabled"), mcp.Required()),
	), s.handleSetFill)

	s.mcp.AddTool(mcp.NewTool("set_stroke",
		mcp.WithDescription("Enable or disable a stroke in the active color on the selection"),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
		mcp.WithBoolean("enabled", mcp.Description("Whether stroke is enabled"), mcp.Required()),
	), s.handleSetStroke)

	s.mcp.AddTool(mcp.NewTool("set_background",
		mcp.WithDescription("Change the canvas background color"),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
		mcp.WithString("color", mcp.Description("Background color"), mcp.Required()),
	), s.handleSetBackground)
}

func (s *Server) handleSetColor(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.sessionForTool(req.GetArguments())
	if err != nil {
		return nil, err
	}
	color := req.GetString("color", "")
	if color == "" {
		return nil, fmt.Errorf("color is required")
	}
	if err := sess.SetColor(color); err != nil {
		return nil, err
	}
	return jsonResult(sess.Drawing())
}

func (s *Server) handleSetOpacity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	sess, err := s.sessionForTool(args)
	if err != nil {
		return nil, err
	}
	pct, err := requireFloat(args, "percent")
	if err != nil {
		return nil, err
	}
	if err := sess.SetOpacity(pct); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Opacity set to %.0f%%", pct)), nil
}

func (s *Server) handleSetCornerRadius(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	sess, err := s.sessionForTool(args)
	if err != nil {
		return nil, err
	}
	r, err := requireFloat(args, "radius")
	if err != nil {
		return nil, err
	}
	if err := sess.SetCornerRadius(r); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Corner radius set to %g", r)), nil
}

func (s *Server) handleSetFill(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	sess, err := s.sessionForTool(args)
	if err != nil {
		return nil, err
	}
	if err := sess.SetFillEnabled(getBool(args, "enabled", true)); err != nil {
		return nil, err
	}
	return jsonResult(sess.Drawing())
}

func (s *Server) handleSetStroke(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	sess, err := s.sessionForTool(args)
	if err != nil {
		return nil, err
	}
	if err := sess.SetStrokeEnabled(getBool(args, "enabled", false)); err != nil {
		return nil, err
	}
	return jsonResult(sess.Drawing())
}

func (s *Server) handleSetBackground(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.sessionForTool(req.GetArguments())
	if err != nil {
		return nil, err
	}
	color := req.GetString("color", "")
	if color == "" {
		return nil, fmt.Errorf("color is required")
	}
	if err := sess.SetBackground(color); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Background set to %s", color)), nil
}
