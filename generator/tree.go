package generator

import (
	"sort"

	"github.com/dtsgen/dtsgen/schema"
)

// node is one level of the namespace tree: an optional leaf schema plus
// nested children keyed by id path segment. A node may carry both when a
// declaration has nested declarations under the same key.
type node struct {
	leaf     *schema.Schema
	children map[string]*node
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

// sortedKeys returns the child keys in lexicographic order. Emission always
// visits keys in this order so identical input yields byte-identical output.
func (n *node) sortedKeys() []string {
	keys := make([]string, 0, len(n.children))
	for key := range n.children {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// buildTree folds all registered schemas into one nested mapping keyed by id
// path segment. Schemas landing on the same path merge by last write.
// Operation schemas, OpenAPI document roots, and OpenAPI auxiliary objects
// (parameter/response/requestBody/header containers) never become leaves:
// they are structural, not type shapes. A non-empty rootNS replaces the first
// segment of every id, merging all inputs under one namespace.
func buildTree(schemas []*schema.Schema, rootNS string) *node {
	root := newNode()
	for _, s := range schemas {
		if s.Operation {
			continue
		}
		if s.OpenAPI != schema.OpenAPINone && s.Root == nil {
			continue
		}
		if isAuxiliary(s) {
			continue
		}
		segs := s.ID.Segments()
		if rootNS != "" && len(segs) > 0 {
			segs[0] = rootNS
		}
		current := root
		for _, seg := range segs {
			child, ok := current.children[seg]
			if !ok {
				child = newNode()
				current.children[seg] = child
			}
			current = child
		}
		current.leaf = s
	}
	return root
}

// isAuxiliary reports whether a registered schema is an OpenAPI parameter,
// requestBody, header, or response object rather than a schema shape. These
// get registered when a $ref names them directly, and the operation
// synthesizer dereferences them, but they are not emitted as declarations.
func isAuxiliary(s *schema.Schema) bool {
	if s.OpenAPI == schema.OpenAPINone {
		return false
	}
	tokens := schema.PointerTokens(s.ID.Pointer())
	switch s.OpenAPI {
	case schema.OpenAPI2:
		if len(tokens) == 2 && (tokens[0] == "parameters" || tokens[0] == "responses") {
			return true
		}
	case schema.OpenAPI3:
		if len(tokens) == 3 && tokens[0] == "components" {
			switch tokens[1] {
			case "parameters", "requestBodies", "headers", "responses":
				return true
			}
		}
	}
	return false
}
