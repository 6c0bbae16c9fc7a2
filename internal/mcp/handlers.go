// ABOUTME: MCP tool handler implementations for the docqa server
// ABOUTME: Thin adapters over the pipeline and index with structured error responses
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harper/docqa/internal/config"
	"github.com/harper/docqa/internal/index"
	"github.com/harper/docqa/internal/models"
	"github.com/harper/docqa/internal/pipeline"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	pipeline *pipeline.Pipeline
	store    *index.Store
	cfg      *config.Config
}

func (h *Handlers) chunkingConfig() models.ChunkingConfig {
	return models.ChunkingConfig{TargetSize: h.cfg.ChunkSize, Overlap: h.cfg.ChunkOverlap}
}

// jsonResult marshals v into a text tool result. Tool failures are reported
// as structured error results, never as protocol errors.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// IngestDocument handles the ingest_document tool
func (h *Handlers) IngestDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceID, err := request.RequireString("source_id")
	if err != nil {
		return mcp.NewToolResultError("source_id argument is required and must be a string"), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}
	collection := request.GetString("collection", h.cfg.Collection)

	report, err := h.pipeline.IngestDocument(ctx, collection, sourceID, text, h.chunkingConfig())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ingest failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"source_document": report.SourceDocument,
		"chunks_written":  report.ChunksWritten,
		"collection":      collection,
	})
}

// SearchCollection handles the search_collection tool
func (h *Handlers) SearchCollection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	collection := request.GetString("collection", h.cfg.Collection)
	topK := request.GetInt("top_k", h.cfg.TopK)
	minScore := request.GetFloat("min_score", h.cfg.MinScore)

	results, err := h.pipeline.Search(ctx, collection, query, topK, minScore)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"collection": collection,
		"count":      len(results),
		"results":    results,
	})
}

// AnswerQuery handles the answer_query tool
func (h *Handlers) AnswerQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	collection := request.GetString("collection", h.cfg.Collection)
	topK := request.GetInt("top_k", h.cfg.TopK)
	minScore := request.GetFloat("min_score", h.cfg.MinScore)

	answer, err := h.pipeline.AnswerQuery(ctx, collection, query, topK, minScore)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("answer failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"answer":  answer.Text,
		"results": answer.Results,
	})
}

// DeleteRecords handles the delete_records tool
func (h *Handlers) DeleteRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids := request.GetStringSlice("ids", nil)
	if len(ids) == 0 {
		return mcp.NewToolResultError("ids argument is required and must be a non-empty array of strings"), nil
	}
	collection := request.GetString("collection", h.cfg.Collection)

	if err := h.store.Delete(ctx, collection, ids); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"collection": collection,
		"deleted":    len(ids),
	})
}

// ListCollections handles the list_collections tool
func (h *Handlers) ListCollections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infos, err := h.store.Collections(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing collections failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"count":       len(infos),
		"collections": infos,
	})
}
