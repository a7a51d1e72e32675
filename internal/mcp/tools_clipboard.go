package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerClipboardTools() {
	s.mcp.AddTool(mcp.NewTool("copy_selection",
		mcp.WithDescription("Copy the selected objects to the clipboard as an SVG document"),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
	), s.handleCopySelection)

	s.mcp.AddTool(mcp.NewTool("paste_clipboard",
		mcp.WithDescription("Paste the clipboard: SVG markup becomes shapes, anything else becomes a text object"),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
	), s.handlePasteClipboard)

	s.mcp.AddTool(mcp.NewTool("export_svg",
		mcp.WithDescription("Render the whole scene as an SVG document"),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
	), s.handleExportSVG)
}

func (s *Server) handleCopySelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.sessionForTool(req.GetArguments())
	if err != nil {
		return nil, err
	}
	ok, err := sess.Copy(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return textResult("Nothing selected, clipboard unchanged"), nil
	}
	return textResult(fmt.Sprintf("Copied %d object(s)", len(sess.Selected()))), nil
}

func (s *Server) handlePasteClipboard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.sessionForTool(req.GetArguments())
	if err != nil {
		return nil, err
	}
	res, err := sess.Paste(ctx)
	if err != nil {
		return nil, err
	}
	out := map[string]any{
		"kind":    res.Payload.Kind,
		"objects": res.Objects,
	}
	if res.ParseErr != nil {
		out["warning"] = res.ParseErr.Error()
	}
	return jsonResult(out)
}

func (s *Server) handleExportSVG(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.sessionForTool(req.GetArguments())
	if err != nil {
		return nil, err
	}
	return textResult(sess.ExportSVG()), nil
}
