package mcpserver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtsgen/dtsgen/schema"
)

// textOf extracts the text content of a tool result for assertions.
func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestDocInput_ResolveContent(t *testing.T) {
	input := docInput{
		Content: `$schema: "http://json-schema.org/draft-07/schema#"
type: object
properties:
  id:
    type: string
`,
		Name: "widget.json",
	}
	doc, err := input.resolve(context.Background(), newLoader())
	require.NoError(t, err)
	assert.Equal(t, schema.Draft07, doc.Dialect)
	assert.Equal(t, "widget.json#", doc.ID.String())
}

func TestDocInput_ResolveContentDefaultName(t *testing.T) {
	input := docInput{Content: `{"swagger": "2.0", "paths": {}}`}
	doc, err := input.resolve(context.Background(), newLoader())
	require.NoError(t, err)
	assert.Equal(t, schema.OpenAPI2, doc.OpenAPI)
	assert.Equal(t, "document#", doc.ID.String())
}

func TestDocInput_ResolveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pet.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"swagger": "2.0", "paths": {}}`), 0644))

	input := docInput{File: path}
	doc, err := input.resolve(context.Background(), newLoader())
	require.NoError(t, err)
	assert.Equal(t, schema.OpenAPI2, doc.OpenAPI)
}

func TestDocInput_ResolveNoneProvided(t *testing.T) {
	_, err := docInput{}.resolve(context.Background(), newLoader())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of file, url, or content must be set")
}

func TestDocInput_ResolveMultipleProvided(t *testing.T) {
	input := docInput{File: "foo.yaml", Content: "bar"}
	_, err := input.resolve(context.Background(), newLoader())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of file, url, or content must be set")
}

func TestDocInput_ResolveFileNotFound(t *testing.T) {
	input := docInput{File: filepath.Join(t.TempDir(), "missing.json")}
	_, err := input.resolve(context.Background(), newLoader())
	assert.Error(t, err)
}

func TestDocInput_ResolveMalformedContent(t *testing.T) {
	input := docInput{Content: "{{not yaml"}
	_, err := input.resolve(context.Background(), newLoader())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse inline content")
}
