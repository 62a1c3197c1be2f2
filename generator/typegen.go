package generator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dtsgen/dtsgen/dtserrors"
	"github.com/dtsgen/dtsgen/internal/naming"
	"github.com/dtsgen/dtsgen/schema"
)

// primitiveTypes maps normalized schema type names to TypeScript primitives.
var primitiveTypes = map[string]string{
	"string":  "string",
	"number":  "number",
	"integer": "number",
	"boolean": "boolean",
	"null":    "null",
	"any":     "any",
}

// normalizeChild wraps a raw sub-schema node in the owner's dialect context
// and normalizes it. The child carries no id of its own; refs inside it were
// already canonicalized during registration.
func normalizeChild(owner *schema.Schema, raw any) (*schema.Schema, error) {
	sub := &schema.Schema{
		Dialect: owner.Dialect,
		OpenAPI: owner.OpenAPI,
		Content: raw,
		Root:    owner.Document(),
	}
	return sub.Normalize()
}

// exprFor normalizes a raw sub-schema node and renders its type expression.
func (e *emitter) exprFor(owner *schema.Schema, raw any) (string, error) {
	sub, err := normalizeChild(owner, raw)
	if err != nil {
		return "", err
	}
	return e.typeExpr(sub, sub.Content.(map[string]any))
}

// typeExpr renders the inline TypeScript type expression for a normalized
// schema node. Dispatch order follows the declaration rules: reference,
// union, literal set, literal, then the declared type.
func (e *emitter) typeExpr(s *schema.Schema, m map[string]any) (string, error) {
	if ref, ok := m["$ref"].(string); ok && ref != "" {
		return e.refExpr(s, ref)
	}
	if alts, ok := unionAlternatives(m); ok {
		return e.unionExpr(s, alts)
	}
	if members, ok := m["enum"].([]any); ok {
		return enumExpr(members), nil
	}
	if value, ok := m["const"]; ok {
		return constExpr(m, value), nil
	}

	switch t := m["type"].(type) {
	case []any:
		return multiTypeExpr(s, t)
	case string:
		switch t {
		case "object":
			return e.objectExpr(s, m)
		case "array":
			return e.arrayExpr(s, m)
		default:
			if prim, ok := primitiveTypes[t]; ok {
				return prim, nil
			}
			return "", &dtserrors.UnsupportedTypeError{
				ID:        s.ID.String(),
				TypeValue: t,
			}
		}
	case nil:
		return "any", nil
	default:
		return "", &dtserrors.UnsupportedTypeError{
			ID:        s.ID.String(),
			TypeValue: t,
		}
	}
}

// refExpr dereferences a canonical reference and renders the target's
// declaration name relative to the current namespace.
func (e *emitter) refExpr(s *schema.Schema, ref string) (string, error) {
	target, err := e.res.Dereference(schema.ParseID(ref))
	if err != nil {
		return "", err
	}
	return e.namedRef(target.ID)
}

// namedRef renders the qualified declaration name for a schema id, dropping
// the namespace prefix shared with the emitting scope for readability.
func (e *emitter) namedRef(id schema.ID) (string, error) {
	segs := id.Segments()
	if len(segs) == 0 {
		return "", &dtserrors.ResolutionError{
			ID:      id.String(),
			Message: "reference target has no resolvable id",
		}
	}
	names := make([]string, len(segs))
	for i, seg := range segs {
		names[i] = naming.TypeName(seg)
	}
	if e.rootNS != "" {
		names[0] = naming.TypeName(e.rootNS)
	}
	common := 0
	for common < len(e.ns) && common < len(names)-1 && e.ns[common] == names[common] {
		common++
	}
	return strings.Join(names[common:], "."), nil
}

// unionAlternatives returns the anyOf or oneOf member list, if present.
func unionAlternatives(m map[string]any) ([]any, bool) {
	if alts, ok := m["anyOf"].([]any); ok {
		return alts, true
	}
	if alts, ok := m["oneOf"].([]any); ok {
		return alts, true
	}
	return nil, false
}

// unionExpr renders the union of the given alternatives. An alternative
// carrying its own id renders as a named reference; everything else inlines.
func (e *emitter) unionExpr(s *schema.Schema, alts []any) (string, error) {
	parts := make([]string, 0, len(alts))
	for _, alt := range alts {
		if am, ok := alt.(map[string]any); ok {
			if decl, ok := am[s.IDKeyword()].(string); ok && decl != "" {
				name, err := e.namedRef(schema.ResolveID(decl, []schema.ID{s.Document().ID}))
				if err != nil {
					return "", err
				}
				parts = append(parts, name)
				continue
			}
		}
		expr, err := e.exprFor(s, alt)
		if err != nil {
			return "", err
		}
		parts = append(parts, expr)
	}
	if len(parts) == 0 {
		return "any", nil
	}
	return strings.Join(parts, " | "), nil
}

// multiTypeExpr renders the union for a reduced type array.
func multiTypeExpr(s *schema.Schema, types []any) (string, error) {
	parts := make([]string, 0, len(types))
	for _, raw := range types {
		name, ok := raw.(string)
		if !ok {
			return "", &dtserrors.UnsupportedTypeError{ID: s.ID.String(), TypeValue: raw}
		}
		prim, ok := primitiveTypes[name]
		if !ok {
			return "", &dtserrors.UnsupportedTypeError{ID: s.ID.String(), TypeValue: name}
		}
		parts = append(parts, prim)
	}
	if len(parts) == 0 {
		return "any", nil
	}
	return strings.Join(parts, " | "), nil
}

// enumExpr renders a literal union: numeric members bare, all others quoted.
func enumExpr(members []any) string {
	parts := make([]string, 0, len(members))
	for _, member := range members {
		parts = append(parts, literalExpr(member, isNumeric(member)))
	}
	if len(parts) == 0 {
		return "any"
	}
	return strings.Join(parts, " | ")
}

// constExpr renders a single literal type, quoted unless the schema's type
// is integer.
func constExpr(m map[string]any, value any) string {
	t, _ := m["type"].(string)
	return literalExpr(value, t == "integer")
}

func literalExpr(value any, bare bool) string {
	if bare {
		return fmt.Sprint(value)
	}
	return strconv.Quote(fmt.Sprint(value))
}

func isNumeric(value any) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

// objectExpr renders an inline structural type for object-typed sub-schemas.
func (e *emitter) objectExpr(s *schema.Schema, m map[string]any) (string, error) {
	var parts []string

	switch ap := m["additionalProperties"].(type) {
	case bool:
		if ap {
			parts = append(parts, "[name: string]: any")
		}
	case map[string]any:
		expr, err := e.exprFor(s, ap)
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("[name: string]: %s", expr))
	}

	required := stringSet(m["required"])
	props, _ := m["properties"].(map[string]any)
	for _, pname := range sortedMapKeys(props) {
		expr, err := e.exprFor(s, props[pname])
		if err != nil {
			return "", err
		}
		marker := "?"
		if required[pname] {
			marker = ""
		}
		parts = append(parts, fmt.Sprintf("%s%s: %s", naming.PropertyName(pname), marker, expr))
	}

	if len(parts) == 0 {
		return "{}", nil
	}
	return "{ " + strings.Join(parts, "; ") + " }", nil
}

// arrayExpr renders array types: any[] without items, element arrays for a
// single item schema, and a union of fixed-length tuples for the list form.
func (e *emitter) arrayExpr(s *schema.Schema, m map[string]any) (string, error) {
	switch items := m["items"].(type) {
	case nil:
		return "any[]", nil
	case map[string]any, bool:
		expr, err := e.exprFor(s, items)
		if err != nil {
			return "", err
		}
		if strings.Contains(expr, "|") || strings.Contains(expr, ";") {
			expr = "(" + expr + ")"
		}
		return expr + "[]", nil
	case []any:
		return e.tupleUnion(s, m, items)
	default:
		return "any[]", nil
	}
}

// tupleUnion renders the minimal union of fixed-length tuple shapes
// consistent with minItems and a possibly-open tail. Tuple lengths run from
// minItems (defaulting to 1) up to one past the larger of minItems and the
// declared item count; slots beyond the declared items render as a generic
// object, except the final slot of an alternative which stays open as any.
func (e *emitter) tupleUnion(s *schema.Schema, m map[string]any, items []any) (string, error) {
	minItems, hasMin := intValue(m["minItems"])
	low := minItems
	if !hasMin {
		low = 1
	}
	high := 1 + len(items)
	if hasMin && minItems > len(items) {
		high = 1 + minItems
	}

	elems := make([]string, len(items))
	for i, item := range items {
		expr, err := e.exprFor(s, item)
		if err != nil {
			return "", err
		}
		if strings.Contains(expr, "|") {
			expr = "(" + expr + ")"
		}
		elems[i] = expr
	}

	var alts []string
	for n := low; n <= high; n++ {
		slots := make([]string, n)
		for i := 0; i < n; i++ {
			switch {
			case i < len(elems):
				slots[i] = elems[i]
			case i == n-1:
				slots[i] = "any"
			default:
				slots[i] = "{}"
			}
		}
		alts = append(alts, "["+strings.Join(slots, ", ")+"]")
	}
	return strings.Join(alts, " | "), nil
}

// stringSet collects the string members of a raw array into a set.
func stringSet(raw any) map[string]bool {
	out := make(map[string]bool)
	if arr, ok := raw.([]any); ok {
		for _, item := range arr {
			if s, ok := item.(string); ok {
				out[s] = true
			}
		}
	}
	return out
}

// sortedMapKeys returns the keys of a raw map in sorted order.
func sortedMapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// intValue extracts an integer from a raw YAML/JSON scalar.
func intValue(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}
