package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtsgen/dtsgen/dtserrors"
)

func TestParseDocumentDialectDetection(t *testing.T) {
	tests := []struct {
		name        string
		content     map[string]any
		wantDialect Dialect
		wantOpenAPI OpenAPIVersion
	}{
		{
			"draft-04 by $schema",
			map[string]any{"$schema": "http://json-schema.org/draft-04/schema#"},
			Draft04, OpenAPINone,
		},
		{
			"draft-07 by $schema",
			map[string]any{"$schema": "http://json-schema.org/draft-07/schema#"},
			Draft07, OpenAPINone,
		},
		{
			"swagger 2.0",
			map[string]any{"swagger": "2.0"},
			Draft04, OpenAPI2,
		},
		{
			"openapi 3.0",
			map[string]any{"openapi": "3.0.3"},
			Draft07, OpenAPI3,
		},
		{
			"openapi 3.1",
			map[string]any{"openapi": "3.1.0"},
			Draft07, OpenAPI3,
		},
		{
			"no markers defaults to draft-04",
			map[string]any{"type": "object"},
			Draft04, OpenAPINone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseDocument(tt.content, "test.json")
			require.NoError(t, err)
			assert.Equal(t, tt.wantDialect, doc.Dialect)
			assert.Equal(t, tt.wantOpenAPI, doc.OpenAPI)
		})
	}
}

func TestParseDocumentID(t *testing.T) {
	t.Run("declared $id wins over source URL", func(t *testing.T) {
		doc, err := ParseDocument(map[string]any{
			"$schema": "http://json-schema.org/draft-07/schema#",
			"$id":     "https://example.com/declared.json",
		}, "local.json")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/declared.json#", doc.ID.String())
	})

	t.Run("draft-04 uses id keyword", func(t *testing.T) {
		doc, err := ParseDocument(map[string]any{
			"$schema": "http://json-schema.org/draft-04/schema#",
			"id":      "https://example.com/v4.json",
		}, "local.json")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/v4.json#", doc.ID.String())
	})

	t.Run("source URL is the fallback", func(t *testing.T) {
		doc, err := ParseDocument(map[string]any{"type": "object"}, "local.json")
		require.NoError(t, err)
		assert.Equal(t, "local.json#", doc.ID.String())
	})

	t.Run("boolean document", func(t *testing.T) {
		doc, err := ParseDocument(true, "b.json")
		require.NoError(t, err)
		assert.Equal(t, true, doc.Content)
		assert.Equal(t, "b.json#", doc.ID.String())
	})

	t.Run("scalar document is a parse error", func(t *testing.T) {
		_, err := ParseDocument("nope", "s.json")
		require.Error(t, err)
		assert.True(t, errors.Is(err, dtserrors.ErrParse))
	})
}

func TestParseDocumentEntryIDs(t *testing.T) {
	t.Run("swagger definitions get synthetic ids", func(t *testing.T) {
		content := map[string]any{
			"swagger": "2.0",
			"definitions": map[string]any{
				"Pet": map[string]any{"type": "object"},
			},
		}
		doc, err := ParseDocument(content, "api.yaml")
		require.NoError(t, err)
		require.Equal(t, OpenAPI2, doc.OpenAPI)

		pet := content["definitions"].(map[string]any)["Pet"].(map[string]any)
		assert.Equal(t, "api.yaml#/definitions/Pet", pet["id"])
	})

	t.Run("openapi component schemas get synthetic ids", func(t *testing.T) {
		content := map[string]any{
			"openapi": "3.0.0",
			"components": map[string]any{
				"schemas": map[string]any{
					"User": map[string]any{"type": "object"},
				},
			},
		}
		_, err := ParseDocument(content, "api.yaml")
		require.NoError(t, err)

		user := content["components"].(map[string]any)["schemas"].(map[string]any)["User"].(map[string]any)
		assert.Equal(t, "api.yaml#/components/schemas/User", user["$id"])
	})

	t.Run("declared entry id is preserved", func(t *testing.T) {
		content := map[string]any{
			"swagger": "2.0",
			"definitions": map[string]any{
				"Pet": map[string]any{"id": "https://example.com/Pet.json"},
			},
		}
		_, err := ParseDocument(content, "api.yaml")
		require.NoError(t, err)

		pet := content["definitions"].(map[string]any)["Pet"].(map[string]any)
		assert.Equal(t, "https://example.com/Pet.json", pet["id"])
	})
}

func TestSubSchema(t *testing.T) {
	doc, err := ParseDocument(map[string]any{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"$id":     "https://example.com/root.json",
		"definitions": map[string]any{
			"Plain": map[string]any{"type": "string"},
			"Named": map[string]any{"$id": "named.json", "type": "object"},
		},
	}, "")
	require.NoError(t, err)

	t.Run("synthetic id from pointer", func(t *testing.T) {
		sub, err := SubSchema(doc, "/definitions/Plain", EmptyID)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/root.json#/definitions/Plain", sub.ID.String())
		assert.Same(t, doc, sub.Root)
	})

	t.Run("declared id resolves against root", func(t *testing.T) {
		sub, err := SubSchema(doc, "/definitions/Named", EmptyID)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/named.json#", sub.ID.String())
	})

	t.Run("explicit id overrides", func(t *testing.T) {
		explicit := ParseID("https://example.com/override.json#/X")
		sub, err := SubSchema(doc, "/definitions/Plain", explicit)
		require.NoError(t, err)
		assert.True(t, sub.ID.Equal(explicit))
	})

	t.Run("missing pointer is a parse error", func(t *testing.T) {
		_, err := SubSchema(doc, "/definitions/Missing", EmptyID)
		require.Error(t, err)
		var perr *dtserrors.ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, "/definitions/Missing", perr.Pointer)
	})
}

func TestDocument(t *testing.T) {
	root := &Schema{ID: ParseID("a.json")}
	child := &Schema{ID: ParseID("a.json#/x"), Root: root}
	assert.Same(t, root, root.Document())
	assert.Same(t, root, child.Document())
}
