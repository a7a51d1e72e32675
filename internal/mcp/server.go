package mcpserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"sketchpad/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server is the MCP server for sketchpad.
// It exposes tools and resources so AI agents can edit documents.
type Server struct {
	mcp     *server.MCPServer
	emitter service.EventEmitter
	logger  *slog.Logger
	docs    *service.DocumentService

	mu sync.Mutex
	// Active document context (set by set_active_document / create_document)
	activeDocID string
}

// Deps holds all dependencies passed from the app layer to the MCP server.
type Deps struct {
	Emitter   service.EventEmitter
	Logger    *slog.Logger
	Documents *service.DocumentService
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	if deps.Emitter == nil {
		deps.Emitter = service.NopEmitter{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	s := &Server{
		emitter: deps.Emitter,
		logger:  deps.Logger,
		docs:    deps.Documents,
	}

	s.mcp = server.NewMCPServer(
		"sketchpad-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerDocumentTools()
	s.registerShapeTools()
	s.registerStyleTools()
	s.registerHistoryTools()
	s.registerClipboardTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("starting mcp stdio server")
	return server.ServeStdio(s.mcp)
}

// MCPServer exposes the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer { return s.mcp }

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func (s *Server) setActive(id string) {
	s.mu.Lock()
	s.activeDocID = id
	s.mu.Unlock()
}

func (s *Server) active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeDocID
}

// resolveDocumentID returns the documentId from tool args or falls back to
// the active document.
func (s *Server) resolveDocumentID(args map[string]any) (string, error) {
	if id, ok := args["documentId"].(string); ok && id != "" {
		return id, nil
	}
	if id := s.active(); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("no documentId provided and no active document set (use set_active_document first)")
}

// sessionForTool resolves the target document and opens it if needed.
func (s *Server) sessionForTool(args map[string]any) (*service.Session, error) {
	id, err := s.resolveDocumentID(args)
	if err != nil {
		return nil, err
	}
	return s.docs.Open(id)
}
