package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dkotenko/docstore/internal/core/domain"
	"github.com/dkotenko/docstore/internal/core/ports"
)

// Server exposes a read-only tool surface for agent integrations. Tools never
// mutate state; writes stay behind the HTTP API.
type Server struct {
	documents ports.DocumentRepository
	batches   ports.BatchRepository
	versions  ports.VersionRepository
}

func NewServer(
	documents ports.DocumentRepository,
	batches ports.BatchRepository,
	versions ports.VersionRepository,
) *Server {
	return &Server{
		documents: documents,
		batches:   batches,
		versions:  versions,
	}
}

func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("docstore", "1.0.0", server.WithToolCapabilities(false))

	srv.AddTool(
		mcp.NewTool("get_document",
			mcp.WithDescription("Fetch a document with its extracted text by document id."),
			mcp.WithString("document_id", mcp.Required(), mcp.Description("Document identifier (UUID).")),
		),
		s.getDocument,
	)
	srv.AddTool(
		mcp.NewTool("list_documents",
			mcp.WithDescription("List documents, optionally filtered to one batch."),
			mcp.WithString("batch_id", mcp.Description("Restrict the listing to this batch.")),
			mcp.WithNumber("page", mcp.Description("Page number, starting at 1.")),
			mcp.WithNumber("limit", mcp.Description("Page size, at most 100.")),
		),
		s.listDocuments,
	)
	srv.AddTool(
		mcp.NewTool("batch_status",
			mcp.WithDescription("Report processing status and counters of a batch."),
			mcp.WithString("batch_id", mcp.Required(), mcp.Description("Batch identifier (UUID).")),
		),
		s.batchStatus,
	)
	srv.AddTool(
		mcp.NewTool("list_versions",
			mcp.WithDescription("List the version history of a document, oldest first."),
			mcp.WithString("document_id", mcp.Required(), mcp.Description("Document identifier (UUID).")),
		),
		s.listVersions,
	)

	return srv
}

// ServeStdio blocks serving the MCP protocol on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.MCPServer())
}

func (s *Server) getDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	documentID, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return toolError("get document", err), nil
	}
	return toolJSON(doc)
}

func (s *Server) listDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	batchID := request.GetString("batch_id", "")
	page := request.GetInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := request.GetInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	docs, total, err := s.documents.List(ctx, batchID, limit, (page-1)*limit)
	if err != nil {
		return toolError("list documents", err), nil
	}
	return toolJSON(map[string]any{
		"documents": docs,
		"page":      page,
		"limit":     limit,
		"total":     total,
	})
}

func (s *Server) batchStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	batchID, err := request.RequireString("batch_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	batch, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return toolError("get batch", err), nil
	}
	return toolJSON(map[string]any{
		"id":              batch.ID,
		"name":            batch.Name,
		"status":          batch.Status,
		"degraded":        batch.Degraded(),
		"document_count":  batch.DocumentCount,
		"processed_count": batch.ProcessedCount,
		"failed_count":    batch.FailedCount,
		"created_at":      batch.CreatedAt,
		"updated_at":      batch.UpdatedAt,
	})
}

func (s *Server) listVersions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	documentID, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	versions, err := s.versions.ListByDocument(ctx, documentID)
	if err != nil {
		return toolError("list versions", err), nil
	}
	return toolJSON(map[string]any{"versions": versions})
}

func toolJSON(payload any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func toolError(operation string, err error) *mcp.CallToolResult {
	if domain.IsKind(err, domain.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("%s: not found", operation))
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", operation, err))
}
