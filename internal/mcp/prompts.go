package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("system_diagram",
		mcp.WithPromptDescription("Sketch a system architecture diagram with shapes, labels and connecting strokes"),
		mcp.WithArgument("systemName",
			mcp.ArgumentDescription("Name of the system to diagram"),
			mcp.RequiredArgument(),
		),
	), s.handleSystemDiagramPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("duplicate_selection",
		mcp.WithPromptDescription("Copy objects as SVG and paste them into another document"),
		mcp.WithArgument("sourceDocumentId",
			mcp.ArgumentDescription("Document to copy from"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("targetDocumentId",
			mcp.ArgumentDescription("Document to paste into (defaults to the source document)"),
		),
	), s.handleDuplicateSelectionPrompt)
}

func (s *Server) handleSystemDiagramPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	systemName := req.Params.Arguments["systemName"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Create a system diagram for: %s", systemName),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Create a system architecture diagram for "%s" in a new document. Follow these steps:

1. Use create_document with the name "%s architecture"
2. Identify the main components of the system
3. For each component, use set_color, then add_shape with type "rect" (circle for data stores), then move_object to lay it out on a grid
4. Use add_text to label each component just inside its shape
5. Use add_stroke with two points to connect related components, showing data flow or dependencies
6. Check the result with export_svg; use undo for any step that looks wrong
7. Finish with save_document

Use consistent colors: #3b82f6 for primary components, #10b981 for databases, #f59e0b for external services.`, systemName, systemName),
				},
			},
		},
	}, nil
}

func (s *Server) handleDuplicateSelectionPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	source := req.Params.Arguments["sourceDocumentId"]
	target := req.Params.Arguments["targetDocumentId"]
	if target == "" {
		target = source
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Duplicate objects from %s into %s", source, target),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Duplicate objects from document %s into document %s through the clipboard. Follow these steps:

1. Use list_objects with documentId "%s" and pick the objects to duplicate
2. Use select_objects with their IDs, then copy_selection; it writes them as one SVG document
3. Use paste_clipboard with documentId "%s"; pasted objects get new IDs and keep their geometry and style
4. Use move_object on the pasted objects so they do not cover the originals
5. Use history_state to confirm the paste is a single undo step, and save_document when done`, source, target, source, target),
				},
			},
		},
	}, nil
}
