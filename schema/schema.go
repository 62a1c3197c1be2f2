// Package schema models JSON Schema and OpenAPI documents as schema records
// with canonical identities, and normalizes their content into the reduced
// form the generator consumes.
package schema

import (
	"strings"

	"github.com/dtsgen/dtsgen/dtserrors"
)

// Dialect identifies the JSON Schema specification version governing keyword
// semantics for a document.
type Dialect string

const (
	// Draft04 is JSON Schema Draft-04. OpenAPI 2.0 schemas use this dialect.
	Draft04 Dialect = "draft-04"
	// Draft07 is JSON Schema Draft-07. OpenAPI 3.x schemas use this dialect.
	Draft07 Dialect = "draft-07"
)

// OpenAPIVersion identifies the OpenAPI flavor of a document, if any.
type OpenAPIVersion int

const (
	// OpenAPINone marks a plain JSON Schema document.
	OpenAPINone OpenAPIVersion = 0
	// OpenAPI2 marks an OpenAPI 2.0 (Swagger) document.
	OpenAPI2 OpenAPIVersion = 2
	// OpenAPI3 marks an OpenAPI 3.x document.
	OpenAPI3 OpenAPIVersion = 3
)

// String returns the display form of the OpenAPI version, empty for plain
// JSON Schema documents.
func (v OpenAPIVersion) String() string {
	switch v {
	case OpenAPI2:
		return "2.0"
	case OpenAPI3:
		return "3.x"
	}
	return ""
}

// Schema is a parsed document or sub-document. Content is either a boolean
// literal or a map tree conforming to the dialect; for registered OpenAPI
// operations it is the raw operation object (see Operation).
//
// Schemas are treated as immutable after normalization.
type Schema struct {
	// Dialect is the JSON Schema dialect governing Content.
	Dialect Dialect
	// OpenAPI is the OpenAPI flavor of the enclosing document, if any.
	OpenAPI OpenAPIVersion
	// ID is the canonical identity of this node.
	ID ID
	// Content is the raw node: bool or map[string]any.
	Content any
	// Root is a non-owning back-reference to the enclosing document schema.
	// It is nil for document roots.
	Root *Schema
	// Operation marks Content as an OpenAPI operation object
	// (parameters/requestBody/responses) rather than an ordinary schema.
	Operation bool
}

// Document returns the enclosing document schema, which is the schema itself
// when it has no parent.
func (s *Schema) Document() *Schema {
	if s.Root != nil {
		return s.Root
	}
	return s
}

// IDKeyword returns the identifier keyword for the schema's dialect.
func (s *Schema) IDKeyword() string {
	return idKeyword(s.Dialect)
}

func idKeyword(d Dialect) string {
	if d == Draft04 {
		return "id"
	}
	return "$id"
}

// ParseDocument inspects a raw parsed document tree and builds a Schema record
// for it. Dialect and OpenAPI version are detected from the $schema, swagger,
// and openapi fields. When the document declares no identifier of its own,
// sourceURL becomes its id.
//
// For OpenAPI documents, every entry under definitions (2.0) or
// components.schemas (3.x) is pre-assigned a synthetic path-derived id so that
// untitled sub-schemas still get stable identities.
func ParseDocument(raw any, sourceURL string) (*Schema, error) {
	switch content := raw.(type) {
	case bool:
		return &Schema{
			Dialect: Draft04,
			ID:      ParseID(sourceURL),
			Content: content,
		}, nil
	case map[string]any:
		s := &Schema{
			Dialect: Draft04,
			Content: content,
		}
		if decl, ok := content["$schema"].(string); ok {
			if strings.Contains(decl, "draft-04") {
				s.Dialect = Draft04
			} else {
				s.Dialect = Draft07
			}
		}
		if sw, ok := content["swagger"].(string); ok && strings.HasPrefix(sw, "2") {
			s.OpenAPI = OpenAPI2
			s.Dialect = Draft04
		}
		if ov, ok := content["openapi"].(string); ok && strings.HasPrefix(ov, "3") {
			s.OpenAPI = OpenAPI3
			s.Dialect = Draft07
		}

		if decl, ok := content[idKeyword(s.Dialect)].(string); ok && decl != "" {
			s.ID = ParseID(decl)
		} else {
			s.ID = ParseID(sourceURL)
		}

		switch s.OpenAPI {
		case OpenAPI2:
			assignEntryIDs(content, "definitions", s.ID.Child("definitions"), s.Dialect)
		case OpenAPI3:
			if components, ok := content["components"].(map[string]any); ok {
				assignEntryIDs(components, "schemas", s.ID.Child("components").Child("schemas"), s.Dialect)
			}
		}
		return s, nil
	default:
		return nil, &dtserrors.ParseError{
			Source:  sourceURL,
			Message: "document must be an object or boolean schema",
		}
	}
}

// assignEntryIDs writes a synthetic id into each named entry of a schema
// container map, unless the entry already declares one.
func assignEntryIDs(parent map[string]any, key string, base ID, dialect Dialect) {
	entries, ok := parent[key].(map[string]any)
	if !ok {
		return
	}
	kw := idKeyword(dialect)
	for name, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if decl, ok := entry[kw].(string); ok && decl != "" {
			continue
		}
		entry[kw] = base.Child(name).String()
	}
}

// SubSchema extracts the sub-document of root at the given JSON pointer.
//
// The sub-schema's id is explicitID when non-empty, otherwise the
// sub-content's own declared id (resolved against the parent chain), otherwise
// a synthetic id built from the pointer qualified by root's id. A pointer that
// does not exist in the content is a fatal ParseError.
func SubSchema(root *Schema, pointer string, explicitID ID) (*Schema, error) {
	content, err := ResolvePointer(root.Content, pointer)
	if err != nil {
		return nil, &dtserrors.ParseError{
			Source:  root.ID.String(),
			Pointer: pointer,
			Message: "sub-schema pointer does not exist",
			Cause:   err,
		}
	}

	sub := &Schema{
		Dialect:   root.Dialect,
		OpenAPI:   root.OpenAPI,
		Content:   content,
		Root:      root.Document(),
		Operation: false,
	}

	switch {
	case !explicitID.IsEmpty():
		sub.ID = explicitID
	default:
		if m, ok := content.(map[string]any); ok {
			if decl, ok := m[idKeyword(root.Dialect)].(string); ok && decl != "" {
				sub.ID = ResolveID(decl, []ID{root.ID})
				return sub, nil
			}
		}
		id := root.ID
		for _, token := range PointerTokens(pointer) {
			id = id.Child(token)
		}
		sub.ID = id
	}
	return sub, nil
}
