// ABOUTME: MCP tool definitions and registration for the docqa server
// ABOUTME: Exposes ingestion, search, answering, and index management over MCP
package mcp

import (
	"github.com/harper/docqa/internal/config"
	"github.com/harper/docqa/internal/index"
	"github.com/harper/docqa/internal/pipeline"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, pipe *pipeline.Pipeline, store *index.Store, cfg *config.Config) *Handlers {
	handlers := &Handlers{
		pipeline: pipe,
		store:    store,
		cfg:      cfg,
	}

	// 1. ingest_document - chunk, embed, and index one document
	server.AddTool(mcp.Tool{
		Name:        "ingest_document",
		Description: "Chunk, embed, and index a plain-text document. Re-ingesting the same source replaces its existing chunks.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"source_id": map[string]interface{}{
					"type":        "string",
					"description": "Stable identifier for the document (e.g. a file path)",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Plain text content of the document",
				},
				"collection": map[string]interface{}{
					"type":        "string",
					"description": "Target collection (default: configured collection)",
				},
			},
			Required: []string{"source_id", "text"},
		},
	}, handlers.IngestDocument)

	// 2. search_collection - raw vector similarity search
	server.AddTool(mcp.Tool{
		Name:        "search_collection",
		Description: "Search a collection by semantic similarity and return ranked chunks with scores.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query text",
				},
				"collection": map[string]interface{}{
					"type":        "string",
					"description": "Collection to search (default: configured collection)",
				},
				"top_k": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results (default from configuration)",
				},
				"min_score": map[string]interface{}{
					"type":        "number",
					"description": "Minimum cosine similarity score (default from configuration)",
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchCollection)

	// 3. answer_query - full retrieval-augmented answer
	server.AddTool(mcp.Tool{
		Name:        "answer_query",
		Description: "Answer a question using retrieved document context. Returns the answer and the supporting chunks.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Question to answer",
				},
				"collection": map[string]interface{}{
					"type":        "string",
					"description": "Collection to retrieve from (default: configured collection)",
				},
				"top_k": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of context chunks (default from configuration)",
				},
				"min_score": map[string]interface{}{
					"type":        "number",
					"description": "Minimum cosine similarity score (default from configuration)",
				},
			},
			Required: []string{"query"},
		},
	}, handlers.AnswerQuery)

	// 4. delete_records - remove records by chunk id
	server.AddTool(mcp.Tool{
		Name:        "delete_records",
		Description: "Delete records from a collection by chunk id.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"collection": map[string]interface{}{
					"type":        "string",
					"description": "Collection to delete from (default: configured collection)",
				},
				"ids": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Chunk ids to delete",
				},
			},
			Required: []string{"ids"},
		},
	}, handlers.DeleteRecords)

	// 5. list_collections - inventory of the index
	server.AddTool(mcp.Tool{
		Name:        "list_collections",
		Description: "List all collections with their record counts and vector dimensions.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ListCollections)

	return handlers
}
