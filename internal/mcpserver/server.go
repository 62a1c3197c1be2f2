// Package mcpserver implements an MCP (Model Context Protocol) server that
// exposes dtsgen capabilities as MCP tools over stdio.
package mcpserver

import (
	"context"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dtsgen/dtsgen"
)

const serverInstructions = `dtsgen MCP server — generates TypeScript declaration files from JSON Schema (draft-04, draft-07) and OpenAPI (2.0, 3.x) documents.

Tools:
- generate: produce a .d.ts declaration text from one or more schema documents. Documents may be given as file paths, URLs, or inline content; all inputs merge into one declaration text with one namespace per document.
- inspect: resolve a document and list every schema that would become a declaration, with its canonical id and kind. Useful to preview naming before generating.

References across documents are fetched automatically; local file references resolve relative to the referencing document.`

// Run starts the MCP server over stdio and blocks until the client
// disconnects or the context is cancelled.
func Run(ctx context.Context) error {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "dtsgen", Version: dtsgen.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate",
		Description: "Generate TypeScript declarations from JSON Schema or OpenAPI documents. Each document may be a file path, URL, or inline content. All documents merge into a single declaration text. Use output to write to a file instead of returning the text inline.",
	}, handleGenerate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "inspect",
		Description: "Resolve a JSON Schema or OpenAPI document and list the schemas that would become declarations, with canonical ids and namespace paths. Does not emit any TypeScript.",
	}, handleInspect)
}

// sanitizeError strips absolute filesystem paths from error messages to
// prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}
