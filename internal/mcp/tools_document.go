package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerDocumentTools() {
	// ── create_document ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_document",
		mcp.WithDescription("Create a new empty drawing and make it the active document"),
		mcp.WithString("name",
			mcp.Description("Name of the new document"),
			mcp.Required(),
		),
	), s.handleCreateDocument)

	// ── list_documents ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List all stored drawings, most recently updated first"),
	), s.handleListDocuments)

	// ── open_document ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("open_document",
		mcp.WithDescription("Open a stored drawing with its undo history and make it active"),
		mcp.WithString("documentId",
			mcp.Description("ID of the document"),
			mcp.Required(),
		),
	), s.handleOpenDocument)

	// ── save_document ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("save_document",
		mcp.WithDescription("Persist the scene and undo history of an open document"),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
	), s.handleSaveDocument)

	// ── set_active_document ────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_active_document",
		mcp.WithDescription("Set the active document for subsequent tool calls. Tools that accept documentId will default to this."),
		mcp.WithString("documentId",
			mcp.Description("ID of the document to make active"),
			mcp.Required(),
		),
	), s.handleSetActiveDocument)
}

func (s *Server) handleCreateDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	doc, _, err := s.docs.Create(name)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	// Auto-set as active document
	s.setActive(doc.ID)
	return jsonResult(doc)
}

func (s *Server) handleListDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.docs.List()
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return jsonResult(docs)
}

func (s *Server) handleOpenDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("documentId", "")
	if id == "" {
		return nil, fmt.Errorf("documentId is required")
	}
	sess, err := s.docs.Open(id)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	s.setActive(id)
	return jsonResult(map[string]any{
		"documentId": id,
		"background": sess.Background(),
		"objects":    sess.Objects(),
		"history":    sess.History(),
	})
}

func (s *Server) handleSaveDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveDocumentID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	if err := s.docs.Save(id); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return textResult(fmt.Sprintf("Document %s saved", id)), nil
}

func (s *Server) handleSetActiveDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("documentId", "")
	if id == "" {
		return nil, fmt.Errorf("documentId is required")
	}
	if _, err := s.docs.Open(id); err != nil {
		return nil, fmt.Errorf("set active document: %w", err)
	}
	s.setActive(id)
	return textResult(fmt.Sprintf("Active document set to %s", id)), nil
}
