package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerResources() {
	// ── sketchpad://documents ──────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"sketchpad://documents",
		"All Documents",
		mcp.WithMIMEType("application/json"),
	), s.handleDocumentsResource)

	// ── sketchpad://document/{documentId}/svg ──────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"sketchpad://document/{documentId}/svg",
			"Document rendered as SVG",
		),
		s.handleDocumentSVGResource,
	)
}

func (s *Server) handleDocumentsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	docs, err := s.docs.List()
	if err != nil {
		return nil, err
	}

	type documentSummary struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Objects int    `json:"objects"`
	}

	summaries := make([]documentSummary, 0, len(docs))
	for _, d := range docs {
		summaries = append(summaries, documentSummary{ID: d.ID, Name: d.Name, Objects: d.ObjectCount})
	}

	data, _ := json.MarshalIndent(summaries, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "sketchpad://documents",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleDocumentSVGResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	id := documentIDFromURI(uri)
	if id == "" {
		return nil, fmt.Errorf("could not extract documentId from URI: %s", uri)
	}
	sess, err := s.docs.Open(id)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "image/svg+xml",
			Text:     sess.ExportSVG(),
		},
	}, nil
}

// documentIDFromURI extracts the ID from "sketchpad://document/{id}/svg".
func documentIDFromURI(uri string) string {
	rest, ok := strings.CutPrefix(uri, "sketchpad://document/")
	if !ok {
		return ""
	}
	id, _, ok := strings.Cut(rest, "/")
	if !ok {
		return ""
	}
	return id
}
