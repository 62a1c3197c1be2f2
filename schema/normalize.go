package schema

// Keys whose values are per-name maps of sub-schemas. During allOf merging
// they union by member name, with right-hand entries overriding on collision.
var mergeByName = map[string]bool{
	"properties":        true,
	"definitions":       true,
	"patternProperties": true,
	"dependencies":      true,
}

// Keys whose values are arrays that concatenate during allOf merging,
// with duplicates removed.
var mergeConcat = map[string]bool{
	"required": true,
}

// Normalize returns a copy of the schema whose content has passed
// normalization: boolean forms replaced by {} / {not:{}}, any allOf folded
// into the node, a type array reduced to its minimal distinct set, and a
// missing type inferred to object when properties or additionalProperties are
// present.
//
// The receiver's content is not mutated.
func (s *Schema) Normalize() (*Schema, error) {
	content, err := normalizeContent(s.Content)
	if err != nil {
		return nil, err
	}
	out := *s
	out.Content = content
	return &out, nil
}

// NormalizeAt extracts the sub-schema at the given JSON pointer and
// normalizes it. The sub-schema's id derives from the pointer qualified by
// the receiver's id when the extracted content declares none of its own.
func (s *Schema) NormalizeAt(pointer string) (*Schema, error) {
	sub, err := SubSchema(s.Document(), joinPointers(s.ID.Pointer(), pointer), EmptyID)
	if err != nil {
		return nil, err
	}
	return sub.Normalize()
}

// joinPointers concatenates two pointer fragments into one.
func joinPointers(base, rel string) string {
	tokens := append(PointerTokens(base), PointerTokens(rel)...)
	out := ""
	for _, token := range tokens {
		out += "/" + EscapePointerToken(token)
	}
	return out
}

// normalizeContent applies the normalization rules to a raw schema node,
// returning a fresh top-level map. Nested values are shared with the input.
func normalizeContent(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case bool:
		if v {
			return map[string]any{}, nil
		}
		return map[string]any{"not": map[string]any{}}, nil
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = val
		}

		if members, ok := out["allOf"].([]any); ok {
			delete(out, "allOf")
			for _, member := range members {
				normalized, err := normalizeContent(member)
				if err != nil {
					return nil, err
				}
				mergeInto(out, normalized)
			}
		}

		reduceTypeArray(out)
		inferObjectType(out)
		return out, nil
	default:
		// Non-object nodes (stray scalars) normalize to the empty schema.
		return map[string]any{}, nil
	}
}

// mergeInto folds one allOf member into the accumulating node. Object-valued
// keys union by member name (src wins on collision), array-valued keys
// concatenate with duplicates removed, and all other keys are last-writer-wins.
func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		switch {
		case mergeByName[k]:
			dstMap, dok := dst[k].(map[string]any)
			srcMap, sok := v.(map[string]any)
			if !dok || !sok {
				dst[k] = v
				continue
			}
			merged := make(map[string]any, len(dstMap)+len(srcMap))
			for name, sub := range dstMap {
				merged[name] = sub
			}
			for name, sub := range srcMap {
				merged[name] = sub
			}
			dst[k] = merged
		case mergeConcat[k]:
			dstArr, dok := dst[k].([]any)
			srcArr, sok := v.([]any)
			if !dok || !sok {
				dst[k] = v
				continue
			}
			seen := make(map[any]bool, len(dstArr)+len(srcArr))
			var merged []any
			for _, item := range append(append([]any{}, dstArr...), srcArr...) {
				if seen[item] {
					continue
				}
				seen[item] = true
				merged = append(merged, item)
			}
			dst[k] = merged
		default:
			dst[k] = v
		}
	}
}

// reduceTypeArray reduces a type array to its minimal distinct set.
// integer is subsumed by number when both appear. A single surviving entry
// collapses to a scalar type.
func reduceTypeArray(m map[string]any) {
	arr, ok := m["type"].([]any)
	if !ok {
		return
	}
	seen := make(map[string]bool, len(arr))
	var reduced []string
	for _, item := range arr {
		name, ok := item.(string)
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		reduced = append(reduced, name)
	}
	if seen["number"] && seen["integer"] {
		filtered := reduced[:0]
		for _, name := range reduced {
			if name != "integer" {
				filtered = append(filtered, name)
			}
		}
		reduced = filtered
	}
	if len(reduced) == 1 {
		m["type"] = reduced[0]
		return
	}
	out := make([]any, len(reduced))
	for i, name := range reduced {
		out[i] = name
	}
	m["type"] = out
}

// inferObjectType fills in type: object for nodes that declare properties or
// additionalProperties without an explicit type.
func inferObjectType(m map[string]any) {
	if _, ok := m["type"]; ok {
		return
	}
	if _, ok := m["properties"]; ok {
		m["type"] = "object"
		return
	}
	if _, ok := m["additionalProperties"]; ok {
		m["type"] = "object"
	}
}
