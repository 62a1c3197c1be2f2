package generator

import (
	"github.com/dtsgen/dtsgen/dtserrors"
	"github.com/dtsgen/dtsgen/internal/naming"
	"github.com/dtsgen/dtsgen/resolver"
	"github.com/dtsgen/dtsgen/schema"
)

// emitter walks the namespace tree and renders each leaf schema as a
// TypeScript declaration. It tracks the current namespace stack so type
// references render relative to the emitting scope.
type emitter struct {
	w      declWriter
	res    *resolver.Resolver
	ns     []string
	rootNS string
	decls  int
}

// render produces the full declaration text for a namespace tree.
func (e *emitter) render(root *node) (string, error) {
	if root.leaf != nil {
		return "", &dtserrors.ConfigError{
			Option:  "document",
			Message: "document requires an id or source URL to be named",
		}
	}
	if err := e.namespace(root, 0); err != nil {
		return "", err
	}
	return e.w.String(), nil
}

// namespace emits all declarations at one tree level, keys in lexicographic
// order. A node carrying both a leaf and children emits the declaration
// first, then a namespace block of the same name.
func (e *emitter) namespace(n *node, depth int) error {
	for _, key := range n.sortedKeys() {
		child := n.children[key]
		name := naming.TypeName(key)
		if child.leaf != nil {
			if err := e.declaration(name, child.leaf, depth == 0); err != nil {
				return err
			}
		}
		if len(child.children) > 0 {
			if depth == 0 {
				e.w.enterf("declare namespace %s", name)
			} else {
				e.w.enterf("namespace %s", name)
			}
			e.ns = append(e.ns, name)
			err := e.namespace(child, depth+1)
			e.ns = e.ns[:len(e.ns)-1]
			e.w.leave()
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// declaration emits one named declaration for a schema leaf.
func (e *emitter) declaration(name string, s *schema.Schema, topLevel bool) error {
	norm, err := s.Normalize()
	if err != nil {
		return err
	}
	m := norm.Content.(map[string]any)
	e.decls++

	kw := "export "
	if topLevel {
		kw = "declare "
	}
	e.docComment(m)

	if ref, ok := m["$ref"].(string); ok && ref != "" {
		expr, err := e.refExpr(norm, ref)
		if err != nil {
			return err
		}
		e.w.linef("%stype %s = %s;", kw, name, expr)
		return nil
	}
	if isObjectShape(m) {
		e.w.enterf("%sinterface %s", kw, name)
		err := e.interfaceBody(norm, m)
		e.w.leave()
		return err
	}
	if isAnyShape(m) {
		e.w.enterf("%sinterface %s", kw, name)
		e.w.comment("Open schema: members are unconstrained.")
		e.w.linef("[name: string]: any;")
		e.w.leave()
		return nil
	}

	expr, err := e.typeExpr(norm, m)
	if err != nil {
		return err
	}
	e.w.linef("%stype %s = %s;", kw, name, expr)
	return nil
}

// interfaceBody emits the members of an interface declaration: the index
// signature first when additionalProperties is set, then each declared
// property in sorted order with its optionality and comment.
func (e *emitter) interfaceBody(s *schema.Schema, m map[string]any) error {
	switch ap := m["additionalProperties"].(type) {
	case bool:
		if ap {
			e.w.linef("[name: string]: any;")
		}
	case map[string]any:
		expr, err := e.exprFor(s, ap)
		if err != nil {
			return err
		}
		e.w.linef("[name: string]: %s;", expr)
	}

	required := stringSet(m["required"])
	props, _ := m["properties"].(map[string]any)
	for _, pname := range sortedMapKeys(props) {
		sub, err := normalizeChild(s, props[pname])
		if err != nil {
			return err
		}
		pm := sub.Content.(map[string]any)
		e.docComment(pm)
		marker := "?"
		if required[pname] {
			marker = ""
		}
		expr, err := e.typeExpr(sub, pm)
		if err != nil {
			return err
		}
		e.w.linef("%s%s: %s;", naming.PropertyName(pname), marker, expr)
	}
	return nil
}

// docComment forwards a schema's description (or title) as a JSDoc comment.
func (e *emitter) docComment(m map[string]any) {
	if desc, ok := m["description"].(string); ok && desc != "" {
		e.w.comment(desc)
		return
	}
	if title, ok := m["title"].(string); ok && title != "" {
		e.w.comment(title)
	}
}

// isObjectShape reports whether a normalized node declares an object with
// members to enumerate.
func isObjectShape(m map[string]any) bool {
	if t, ok := m["type"].(string); ok && t == "object" {
		return true
	}
	return false
}

// isAnyShape reports whether a normalized node constrains nothing: no type,
// no composition, no literal set.
func isAnyShape(m map[string]any) bool {
	if t, ok := m["type"].(string); ok && t != "any" {
		return false
	}
	if _, ok := m["type"].([]any); ok {
		return false
	}
	for _, kw := range []string{"anyOf", "oneOf", "enum", "const", "properties", "items"} {
		if _, ok := m[kw]; ok {
			return false
		}
	}
	return true
}
