package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtsgen/dtsgen/resolver"
	"github.com/dtsgen/dtsgen/schema"
)

func registerAPI(t *testing.T, content map[string]any, sourceURL string) (*resolver.Resolver, *schema.Schema) {
	t.Helper()
	doc, err := schema.ParseDocument(content, sourceURL)
	require.NoError(t, err)
	r := resolver.New(nil)
	require.NoError(t, r.RegisterDocument(doc))
	return r, doc
}

func findSynthesized(schemas []*schema.Schema, id string) *schema.Schema {
	for _, s := range schemas {
		if s.ID.String() == id {
			return s
		}
	}
	return nil
}

func synthesize(t *testing.T, r *resolver.Resolver, opID string) []*schema.Schema {
	t.Helper()
	op, err := r.Dereference(schema.ParseID(opID))
	require.NoError(t, err)
	require.True(t, op.Operation)
	out, err := synthesizeOperation(r, op)
	require.NoError(t, err)
	return out
}

func TestSynthesizeParameterGroups(t *testing.T) {
	content := map[string]any{
		"swagger": "2.0",
		"paths": map[string]any{
			"/pets": map[string]any{
				"get": map[string]any{
					"operationId": "listPets",
					"parameters": []any{
						map[string]any{"name": "limit", "in": "query", "type": "integer"},
						map[string]any{"name": "tag", "in": "query", "type": "string", "required": true},
						map[string]any{"name": "X-Trace", "in": "header", "type": "string"},
					},
					"responses": map[string]any{},
				},
			},
		},
	}
	r, _ := registerAPI(t, content, "api.yaml")
	out := synthesize(t, r, "api.yaml#/paths/listPets")

	t.Run("one group per populated location", func(t *testing.T) {
		query := findSynthesized(out, "api.yaml#/paths/listPets/queryParameter")
		require.NotNil(t, query)
		props := query.Content.(map[string]any)["properties"].(map[string]any)
		assert.Contains(t, props, "limit")
		assert.Contains(t, props, "tag")
		assert.Equal(t, []any{"tag"}, query.Content.(map[string]any)["required"])

		header := findSynthesized(out, "api.yaml#/paths/listPets/headerParameter")
		require.NotNil(t, header)
		hprops := header.Content.(map[string]any)["properties"].(map[string]any)
		assert.Contains(t, hprops, "X-Trace")

		assert.Nil(t, findSynthesized(out, "api.yaml#/paths/listPets/pathParameter"))
	})

	t.Run("wrapper references groups and propagates required", func(t *testing.T) {
		wrapper := findSynthesized(out, "api.yaml#/paths/listPets/request")
		require.NotNil(t, wrapper)
		m := wrapper.Content.(map[string]any)
		props := m["properties"].(map[string]any)
		assert.Equal(t, map[string]any{"$ref": "api.yaml#/paths/listPets/queryParameter"},
			props["queryParam"])
		assert.Contains(t, props, "headerParam")
		// query group has a required member, header group does not
		assert.Equal(t, []any{"queryParam"}, m["required"])
	})
}

func TestSynthesizePathLevelParameters(t *testing.T) {
	content := map[string]any{
		"openapi": "3.0.0",
		"paths": map[string]any{
			"/pets/{petId}": map[string]any{
				"parameters": []any{
					map[string]any{
						"name":     "petId",
						"in":       "path",
						"required": true,
						"schema":   map[string]any{"type": "string"},
					},
					map[string]any{
						"name":   "verbose",
						"in":     "query",
						"schema": map[string]any{"type": "boolean"},
					},
				},
				"get": map[string]any{
					"operationId": "getPet",
					"parameters": []any{
						map[string]any{
							"name":   "verbose",
							"in":     "query",
							"schema": map[string]any{"type": "integer"},
						},
					},
					"responses": map[string]any{},
				},
				"delete": map[string]any{
					"operationId": "deletePet",
					"responses":   map[string]any{},
				},
			},
		},
	}
	r, _ := registerAPI(t, content, "api.yaml")

	t.Run("shared parameters reach every operation", func(t *testing.T) {
		out := synthesize(t, r, "api.yaml#/paths/deletePet")
		group := findSynthesized(out, "api.yaml#/paths/deletePet/pathParameter")
		require.NotNil(t, group)
		props := group.Content.(map[string]any)["properties"].(map[string]any)
		assert.Equal(t, map[string]any{"type": "string"}, props["petId"])
		assert.Equal(t, []any{"petId"}, group.Content.(map[string]any)["required"])

		query := findSynthesized(out, "api.yaml#/paths/deletePet/queryParameter")
		require.NotNil(t, query)
		qprops := query.Content.(map[string]any)["properties"].(map[string]any)
		assert.Equal(t, map[string]any{"type": "boolean"}, qprops["verbose"])
	})

	t.Run("operation-level declaration wins by name and location", func(t *testing.T) {
		out := synthesize(t, r, "api.yaml#/paths/getPet")
		query := findSynthesized(out, "api.yaml#/paths/getPet/queryParameter")
		require.NotNil(t, query)
		qprops := query.Content.(map[string]any)["properties"].(map[string]any)
		assert.Equal(t, map[string]any{"type": "integer"}, qprops["verbose"])

		path := findSynthesized(out, "api.yaml#/paths/getPet/pathParameter")
		require.NotNil(t, path)
		pprops := path.Content.(map[string]any)["properties"].(map[string]any)
		assert.Contains(t, pprops, "petId")
	})
}

func TestSynthesizeSwaggerBody(t *testing.T) {
	content := map[string]any{
		"swagger": "2.0",
		"paths": map[string]any{
			"/pets": map[string]any{
				"post": map[string]any{
					"operationId": "createPet",
					"parameters": []any{
						map[string]any{
							"name":     "pet",
							"in":       "body",
							"required": true,
							"schema":   map[string]any{"$ref": "#/definitions/Pet"},
						},
					},
					"responses": map[string]any{
						"200": map[string]any{
							"schema": map[string]any{"$ref": "#/definitions/Pet"},
						},
					},
				},
			},
		},
		"definitions": map[string]any{
			"Pet": map[string]any{"type": "object"},
		},
	}
	r, _ := registerAPI(t, content, "api.yaml")
	out := synthesize(t, r, "api.yaml#/paths/createPet")

	body := findSynthesized(out, "api.yaml#/paths/createPet/RequestBody")
	require.NotNil(t, body)
	assert.Equal(t, "api.yaml#/definitions/Pet", body.Content.(map[string]any)["$ref"])

	wrapper := findSynthesized(out, "api.yaml#/paths/createPet/request")
	require.NotNil(t, wrapper)
	m := wrapper.Content.(map[string]any)
	assert.Equal(t, []any{"body"}, m["required"])

	response := findSynthesized(out, "api.yaml#/paths/createPet/responses/200")
	require.NotNil(t, response)
}

func TestSynthesizeMediaTypes(t *testing.T) {
	operation := func(mediaTypes map[string]any) map[string]any {
		return map[string]any{
			"openapi": "3.0.0",
			"paths": map[string]any{
				"/items": map[string]any{
					"post": map[string]any{
						"operationId": "createItem",
						"requestBody": map[string]any{
							"required": true,
							"content":  mediaTypes,
						},
						"responses": map[string]any{},
					},
				},
			},
		}
	}

	t.Run("single media type omits the prefix", func(t *testing.T) {
		r, _ := registerAPI(t, operation(map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"type": "object"},
			},
		}), "api.yaml")
		out := synthesize(t, r, "api.yaml#/paths/createItem")

		assert.NotNil(t, findSynthesized(out, "api.yaml#/paths/createItem/RequestBody"))
		wrapper := findSynthesized(out, "api.yaml#/paths/createItem/request")
		require.NotNil(t, wrapper)
		assert.Equal(t, []any{"body"}, wrapper.Content.(map[string]any)["required"])
	})

	t.Run("multiple media types get prefixed variants", func(t *testing.T) {
		r, _ := registerAPI(t, operation(map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"type": "object"},
			},
			"application/xml": map[string]any{
				"schema": map[string]any{"type": "object"},
			},
		}), "api.yaml")
		out := synthesize(t, r, "api.yaml#/paths/createItem")

		assert.NotNil(t, findSynthesized(out, "api.yaml#/paths/createItem/jsonRequestBody"))
		assert.NotNil(t, findSynthesized(out, "api.yaml#/paths/createItem/xmlRequestBody"))
		assert.NotNil(t, findSynthesized(out, "api.yaml#/paths/createItem/jsonRequest"))
		assert.NotNil(t, findSynthesized(out, "api.yaml#/paths/createItem/xmlRequest"))
		assert.Nil(t, findSynthesized(out, "api.yaml#/paths/createItem/request"))
	})
}

func TestSynthesizeResponsesV3(t *testing.T) {
	content := map[string]any{
		"openapi": "3.0.0",
		"paths": map[string]any{
			"/items": map[string]any{
				"get": map[string]any{
					"operationId": "getItem",
					"responses": map[string]any{
						"200": map[string]any{
							"content": map[string]any{
								"application/json": map[string]any{
									"schema": map[string]any{"type": "object"},
								},
							},
						},
						"404": map[string]any{
							"content": map[string]any{
								"application/json": map[string]any{
									"schema": map[string]any{"type": "object"},
								},
								"text/plain": map[string]any{
									"schema": map[string]any{"type": "string"},
								},
							},
						},
						"204": map[string]any{
							"description": "no content",
						},
					},
				},
			},
		},
	}
	r, _ := registerAPI(t, content, "api.yaml")
	out := synthesize(t, r, "api.yaml#/paths/getItem")

	assert.NotNil(t, findSynthesized(out, "api.yaml#/paths/getItem/responses/200"))
	assert.NotNil(t, findSynthesized(out, "api.yaml#/paths/getItem/responses/json_404"))
	assert.NotNil(t, findSynthesized(out, "api.yaml#/paths/getItem/responses/text_404"))
	// bodiless responses synthesize nothing
	assert.Nil(t, findSynthesized(out, "api.yaml#/paths/getItem/responses/204"))
}

func TestSynthesizeSharedParameterRef(t *testing.T) {
	content := map[string]any{
		"openapi": "3.0.0",
		"paths": map[string]any{
			"/items": map[string]any{
				"get": map[string]any{
					"operationId": "getItem",
					"parameters": []any{
						map[string]any{"$ref": "#/components/parameters/PageSize"},
					},
					"responses": map[string]any{},
				},
			},
		},
		"components": map[string]any{
			"parameters": map[string]any{
				"PageSize": map[string]any{
					"name":   "pageSize",
					"in":     "query",
					"schema": map[string]any{"type": "integer"},
				},
			},
		},
	}
	doc, err := schema.ParseDocument(content, "api.yaml")
	require.NoError(t, err)
	r := resolver.New(nil)
	require.NoError(t, r.RegisterDocument(doc))
	// The shared parameter object itself must be dereferenceable.
	param, err := schema.SubSchema(doc, "/components/parameters/PageSize", schema.EmptyID)
	require.NoError(t, err)
	require.NoError(t, r.AddSchema(param))

	out := synthesize(t, r, "api.yaml#/paths/getItem")
	group := findSynthesized(out, "api.yaml#/paths/getItem/queryParameter")
	require.NotNil(t, group)
	props := group.Content.(map[string]any)["properties"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "integer"}, props["pageSize"])
}

func TestParameterSchemaCoercion(t *testing.T) {
	op := &schema.Schema{Dialect: schema.Draft07, OpenAPI: schema.OpenAPI3}

	t.Run("object-typed parameter coerces to string", func(t *testing.T) {
		got := parameterSchema(op, map[string]any{
			"name":   "filter",
			"in":     "query",
			"schema": map[string]any{"type": "object"},
		})
		assert.Equal(t, map[string]any{"type": "string"}, got)
	})

	t.Run("scalar parameter schema passes through", func(t *testing.T) {
		got := parameterSchema(op, map[string]any{
			"name":   "limit",
			"in":     "query",
			"schema": map[string]any{"type": "integer", "format": "int32"},
		})
		assert.Equal(t, map[string]any{"type": "integer", "format": "int32"}, got)
	})

	t.Run("swagger inline keywords are extracted", func(t *testing.T) {
		v2op := &schema.Schema{Dialect: schema.Draft04, OpenAPI: schema.OpenAPI2}
		got := parameterSchema(v2op, map[string]any{
			"name": "limit",
			"in":   "query",
			"type": "integer",
			"enum": []any{10, 20},
		})
		assert.Equal(t, map[string]any{"type": "integer", "enum": []any{10, 20}}, got)
	})
}
