package resolver

import (
	"strings"

	"github.com/dtsgen/dtsgen/schema"
)

// Keyword positions holding a single sub-schema, common to both dialects.
var schemaValueKeywords = []string{"not", "additionalProperties", "additionalItems"}

// Keyword positions holding a single sub-schema, Draft-07 only.
var draft07ValueKeywords = []string{"propertyNames", "contains", "if", "then", "else"}

// Keyword positions holding an array of sub-schemas.
var schemaListKeywords = []string{"allOf", "anyOf", "oneOf"}

// Keyword positions holding a name-to-sub-schema map.
var schemaMapKeywords = []string{"properties", "patternProperties", "definitions", "dependencies"}

// HTTP methods carrying operations in an OpenAPI path item.
var operationMethods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// walkNode recursively discovers sub-schemas inside a schema node.
// Every $ref is rewritten in place to its canonical absolute form and
// recorded as referenced; every node declaring its own id is registered.
func (r *Resolver) walkNode(owner *schema.Schema, node any, parents []schema.ID) error {
	m, ok := node.(map[string]any)
	if !ok {
		// Boolean schemas and stray scalars have nothing to discover.
		return nil
	}

	if ref, ok := m["$ref"].(string); ok && ref != "" {
		id := schema.ResolveID(ref, parents)
		m["$ref"] = id.String()
		r.referenced[id.String()] = true
	}

	if decl, ok := m[owner.IDKeyword()].(string); ok && decl != "" {
		id := schema.ResolveID(decl, parents)
		if len(parents) == 0 || !id.Equal(parents[len(parents)-1]) {
			sub := &schema.Schema{
				Dialect: owner.Dialect,
				OpenAPI: owner.OpenAPI,
				ID:      id,
				Content: m,
				Root:    owner.Document(),
			}
			if !r.add(sub) {
				// Same node already registered under this id: a reference
				// cycle or repeated traversal. Do not re-descend.
				return nil
			}
			parents = append(parents, id)
		}
	}

	for _, kw := range schemaValueKeywords {
		if sub, ok := m[kw]; ok {
			if err := r.walkNode(owner, sub, parents); err != nil {
				return err
			}
		}
	}
	if owner.Dialect == schema.Draft07 {
		for _, kw := range draft07ValueKeywords {
			if sub, ok := m[kw]; ok {
				if err := r.walkNode(owner, sub, parents); err != nil {
					return err
				}
			}
		}
	}

	// items carries either one sub-schema or a tuple list.
	switch items := m["items"].(type) {
	case map[string]any:
		if err := r.walkNode(owner, items, parents); err != nil {
			return err
		}
	case []any:
		for _, item := range items {
			if err := r.walkNode(owner, item, parents); err != nil {
				return err
			}
		}
	}

	for _, kw := range schemaListKeywords {
		if list, ok := m[kw].([]any); ok {
			for _, item := range list {
				if err := r.walkNode(owner, item, parents); err != nil {
					return err
				}
			}
		}
	}
	for _, kw := range schemaMapKeywords {
		if entries, ok := m[kw].(map[string]any); ok {
			for _, sub := range entries {
				// dependencies entries may be name arrays, which walkNode skips.
				if err := r.walkNode(owner, sub, parents); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// walkOpenAPI discovers schemas inside an OpenAPI document: definitions or
// component schemas, shared parameters/requestBodies/headers/responses, and
// every path operation. Operations are registered as operation schemas for
// the generator to synthesize request shapes from.
func (r *Resolver) walkOpenAPI(doc *schema.Schema) error {
	m, ok := doc.Content.(map[string]any)
	if !ok {
		return nil
	}
	parents := []schema.ID{doc.ID}

	switch doc.OpenAPI {
	case schema.OpenAPI2:
		if err := r.walkSchemaMap(doc, m["definitions"], parents); err != nil {
			return err
		}
		if params, ok := m["parameters"].(map[string]any); ok {
			for _, p := range params {
				if err := r.walkParameter(doc, p, parents); err != nil {
					return err
				}
			}
		}
		if responses, ok := m["responses"].(map[string]any); ok {
			for _, resp := range responses {
				if err := r.walkResponse(doc, resp, parents); err != nil {
					return err
				}
			}
		}
	case schema.OpenAPI3:
		if components, ok := m["components"].(map[string]any); ok {
			if err := r.walkSchemaMap(doc, components["schemas"], parents); err != nil {
				return err
			}
			if params, ok := components["parameters"].(map[string]any); ok {
				for _, p := range params {
					if err := r.walkParameter(doc, p, parents); err != nil {
						return err
					}
				}
			}
			if bodies, ok := components["requestBodies"].(map[string]any); ok {
				for _, body := range bodies {
					if bm, ok := body.(map[string]any); ok {
						if err := r.walkMediaContent(doc, bm["content"], parents); err != nil {
							return err
						}
					}
				}
			}
			if headers, ok := components["headers"].(map[string]any); ok {
				for _, h := range headers {
					if err := r.walkParameter(doc, h, parents); err != nil {
						return err
					}
				}
			}
			if responses, ok := components["responses"].(map[string]any); ok {
				for _, resp := range responses {
					if err := r.walkResponse(doc, resp, parents); err != nil {
						return err
					}
				}
			}
		}
	}

	paths, ok := m["paths"].(map[string]any)
	if !ok {
		return nil
	}
	for pathKey, rawItem := range paths {
		item, ok := rawItem.(map[string]any)
		if !ok {
			continue
		}
		pathParams, _ := item["parameters"].([]any)
		for _, p := range pathParams {
			if err := r.walkParameter(doc, p, parents); err != nil {
				return err
			}
		}
		for _, method := range operationMethods {
			op, ok := item[method].(map[string]any)
			if !ok {
				continue
			}
			if len(pathParams) > 0 {
				op["parameters"] = mergeParameters(op["parameters"], pathParams)
			}
			opSchema := &schema.Schema{
				Dialect:   doc.Dialect,
				OpenAPI:   doc.OpenAPI,
				ID:        operationID(doc, pathKey, method, op),
				Content:   op,
				Root:      doc,
				Operation: true,
			}
			r.add(opSchema)
			if err := r.walkOperation(doc, op, parents); err != nil {
				return err
			}
		}
	}
	return nil
}

// operationID derives the canonical id of an operation: the operationId when
// present, otherwise the path segments plus the method.
func operationID(doc *schema.Schema, pathKey, method string, op map[string]any) schema.ID {
	id := doc.ID.Child("paths")
	if opID, ok := op["operationId"].(string); ok && opID != "" {
		return id.Child(opID)
	}
	for _, token := range strings.Split(strings.Trim(pathKey, "/"), "/") {
		if token != "" {
			id = id.Child(token)
		}
	}
	return id.Child(method)
}

// mergeParameters appends path-item-level parameters after the operation's
// own. Operation-level entries come first so they take precedence when the
// synthesis pass deduplicates by parameter name and location.
func mergeParameters(opParams any, pathParams []any) []any {
	existing, _ := opParams.([]any)
	merged := make([]any, 0, len(existing)+len(pathParams))
	merged = append(merged, existing...)
	merged = append(merged, pathParams...)
	return merged
}

// walkOperation discovers schemas nested inside one operation object.
func (r *Resolver) walkOperation(doc *schema.Schema, op map[string]any, parents []schema.ID) error {
	if params, ok := op["parameters"].([]any); ok {
		for _, p := range params {
			if err := r.walkParameter(doc, p, parents); err != nil {
				return err
			}
		}
	}
	if body, ok := op["requestBody"].(map[string]any); ok {
		if ref, ok := body["$ref"].(string); ok && ref != "" {
			id := schema.ResolveID(ref, parents)
			body["$ref"] = id.String()
			r.referenced[id.String()] = true
		}
		if err := r.walkMediaContent(doc, body["content"], parents); err != nil {
			return err
		}
	}
	if responses, ok := op["responses"].(map[string]any); ok {
		for _, resp := range responses {
			if err := r.walkResponse(doc, resp, parents); err != nil {
				return err
			}
		}
	}
	return nil
}

// walkParameter discovers the schema inside a parameter or header object.
func (r *Resolver) walkParameter(doc *schema.Schema, raw any, parents []schema.ID) error {
	param, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	if ref, ok := param["$ref"].(string); ok && ref != "" {
		id := schema.ResolveID(ref, parents)
		param["$ref"] = id.String()
		r.referenced[id.String()] = true
		return nil
	}
	if sub, ok := param["schema"]; ok {
		return r.walkNode(doc, sub, parents)
	}
	return nil
}

// walkResponse discovers schemas inside a response object for either
// OpenAPI version.
func (r *Resolver) walkResponse(doc *schema.Schema, raw any, parents []schema.ID) error {
	resp, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	if ref, ok := resp["$ref"].(string); ok && ref != "" {
		id := schema.ResolveID(ref, parents)
		resp["$ref"] = id.String()
		r.referenced[id.String()] = true
		return nil
	}
	if sub, ok := resp["schema"]; ok {
		if err := r.walkNode(doc, sub, parents); err != nil {
			return err
		}
	}
	if err := r.walkMediaContent(doc, resp["content"], parents); err != nil {
		return err
	}
	if headers, ok := resp["headers"].(map[string]any); ok {
		for _, h := range headers {
			if err := r.walkParameter(doc, h, parents); err != nil {
				return err
			}
		}
	}
	return nil
}

// walkMediaContent discovers schemas inside a content map keyed by media type.
func (r *Resolver) walkMediaContent(doc *schema.Schema, raw any, parents []schema.ID) error {
	content, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	for _, mediaRaw := range content {
		if media, ok := mediaRaw.(map[string]any); ok {
			if sub, ok := media["schema"]; ok {
				if err := r.walkNode(doc, sub, parents); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// walkSchemaMap walks each named entry of a schema container map.
func (r *Resolver) walkSchemaMap(doc *schema.Schema, raw any, parents []schema.ID) error {
	entries, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	for _, sub := range entries {
		if err := r.walkNode(doc, sub, parents); err != nil {
			return err
		}
	}
	return nil
}
