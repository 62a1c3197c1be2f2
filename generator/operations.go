package generator

import (
	"sort"

	"github.com/dtsgen/dtsgen/resolver"
	"github.com/dtsgen/dtsgen/schema"
)

// Parameter locations, in synthesis order.
var oas3Locations = []string{"path", "query", "header", "cookie"}
var oas2Locations = []string{"path", "query", "header", "formData"}

// mediaPrefixes maps well-known media types to short declaration prefixes.
// Unknown media types use the raw media-type string.
var mediaPrefixes = map[string]string{
	"application/json":                  "json",
	"application/xml":                   "xml",
	"application/x-www-form-urlencoded": "form",
	"text/plain":                        "text",
}

func mediaPrefix(mediaType string) string {
	if prefix, ok := mediaPrefixes[mediaType]; ok {
		return prefix
	}
	return mediaType
}

// synthesizeOperation fabricates the schemas representing one OpenAPI
// operation's request shape: one parameter-group schema per populated
// location, one body schema per media type, request wrapper(s) tying them
// together, and one response schema per status. The returned schemas are
// registered like any ordinary schema and resolved in the second pass.
func synthesizeOperation(r *resolver.Resolver, op *schema.Schema) ([]*schema.Schema, error) {
	content, ok := op.Content.(map[string]any)
	if !ok {
		return nil, nil
	}

	wrapperProps := make(map[string]any)
	var wrapperRequired []any
	var out []*schema.Schema

	params, err := operationParameters(r, content)
	if err != nil {
		return nil, err
	}

	locations := oas3Locations
	if op.OpenAPI == schema.OpenAPI2 {
		locations = oas2Locations
	}
	for _, location := range locations {
		group, groupRequired := parameterGroup(op, params, location)
		if group == nil {
			continue
		}
		groupID := op.ID.Child(location + "Parameter")
		out = append(out, derivedSchema(op, groupID, group))
		wrapperProps[location+"Param"] = map[string]any{"$ref": groupID.String()}
		if groupRequired {
			wrapperRequired = append(wrapperRequired, location+"Param")
		}
	}

	bodySchemas, bodyWrappers, err := synthesizeBody(r, op, content, params, wrapperProps, wrapperRequired)
	if err != nil {
		return nil, err
	}
	out = append(out, bodySchemas...)

	switch {
	case len(bodyWrappers) > 0:
		out = append(out, bodyWrappers...)
	case len(wrapperProps) > 0:
		// Bodyless operation with parameters still gets a request shape.
		out = append(out, derivedSchema(op, op.ID.Child("request"),
			wrapperContent(wrapperProps, wrapperRequired)))
	}

	responses, err := synthesizeResponses(r, op, content)
	if err != nil {
		return nil, err
	}
	out = append(out, responses...)
	return out, nil
}

// operationParameters collects the operation's parameter objects,
// dereferencing any that are shared component references. The list carries
// path-item-level parameters after the operation's own; duplicates by
// name and location keep the first occurrence, so operation-level
// entries override path-level ones.
func operationParameters(r *resolver.Resolver, content map[string]any) ([]map[string]any, error) {
	raw, ok := content["parameters"].([]any)
	if !ok {
		return nil, nil
	}
	out := make([]map[string]any, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, item := range raw {
		param, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if ref, ok := param["$ref"].(string); ok && ref != "" {
			target, err := r.Dereference(schema.ParseID(ref))
			if err != nil {
				return nil, err
			}
			if resolved, ok := target.Content.(map[string]any); ok {
				param = resolved
			} else {
				continue
			}
		}
		if name, _ := param["name"].(string); name != "" {
			in, _ := param["in"].(string)
			key := name + "\x00" + in
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, param)
	}
	return out, nil
}

// parameterGroup builds one object schema covering every parameter bound to
// the given location. It returns nil when no parameter matches. The second
// result reports whether any member is required, which propagates onto the
// request wrapper.
func parameterGroup(op *schema.Schema, params []map[string]any, location string) (map[string]any, bool) {
	props := make(map[string]any)
	var required []any
	for _, param := range params {
		if in, _ := param["in"].(string); in != location {
			continue
		}
		name, _ := param["name"].(string)
		if name == "" {
			continue
		}
		props[name] = parameterSchema(op, param)
		if isRequired, _ := param["required"].(bool); isRequired {
			required = append(required, name)
		}
	}
	if len(props) == 0 {
		return nil, false
	}
	group := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		group["required"] = required
	}
	return group, len(required) > 0
}

// parameterSchema extracts the type schema of one parameter. OpenAPI 2.0
// parameters carry their type keywords inline; 3.x parameters nest a schema.
// Object- or array-typed parameter schemas coerce to string since they
// cannot be expressed as a structured path/query/header value.
func parameterSchema(op *schema.Schema, param map[string]any) any {
	var raw any
	if op.OpenAPI == schema.OpenAPI3 {
		raw = param["schema"]
	} else {
		inline := make(map[string]any)
		for _, kw := range []string{"type", "format", "items", "enum", "default", "description"} {
			if v, ok := param[kw]; ok {
				inline[kw] = v
			}
		}
		raw = inline
	}

	m, ok := raw.(map[string]any)
	if !ok {
		return map[string]any{"type": "string"}
	}
	if t, _ := m["type"].(string); t == "object" || t == "array" {
		return map[string]any{"type": "string"}
	}
	if _, ok := m["properties"]; ok {
		return map[string]any{"type": "string"}
	}
	return raw
}

// synthesizeBody builds the body-content schemas and the request-wrapper
// variants for an operation with a request body. OpenAPI 2.0 operations use
// their body parameter; 3.x operations use requestBody media types, one body
// schema and wrapper variant per media type, with the media prefix omitted
// when exactly one media type exists.
func synthesizeBody(r *resolver.Resolver, op *schema.Schema, content map[string]any,
	params []map[string]any, wrapperProps map[string]any, wrapperRequired []any,
) (bodies, wrappers []*schema.Schema, err error) {
	if op.OpenAPI == schema.OpenAPI2 {
		for _, param := range params {
			if in, _ := param["in"].(string); in != "body" {
				continue
			}
			bodyID := op.ID.Child("RequestBody")
			bodyContent, ok := param["schema"].(map[string]any)
			if !ok {
				bodyContent = map[string]any{}
			}
			bodies = append(bodies, derivedSchema(op, bodyID, bodyContent))

			props := cloneProps(wrapperProps)
			props["body"] = map[string]any{"$ref": bodyID.String()}
			required := wrapperRequired
			if isRequired, _ := param["required"].(bool); isRequired {
				required = append(append([]any{}, wrapperRequired...), "body")
			}
			wrappers = append(wrappers, derivedSchema(op, op.ID.Child("request"),
				wrapperContent(props, required)))
			return bodies, wrappers, nil
		}
		return nil, nil, nil
	}

	body, ok := content["requestBody"].(map[string]any)
	if !ok {
		return nil, nil, nil
	}
	if ref, ok := body["$ref"].(string); ok && ref != "" {
		target, derr := r.Dereference(schema.ParseID(ref))
		if derr != nil {
			return nil, nil, derr
		}
		if resolved, ok := target.Content.(map[string]any); ok {
			body = resolved
		}
	}
	media, ok := body["content"].(map[string]any)
	if !ok || len(media) == 0 {
		return nil, nil, nil
	}

	mediaTypes := sortedMapKeys(media)
	single := len(mediaTypes) == 1
	bodyRequired, _ := body["required"].(bool)

	for _, mediaType := range mediaTypes {
		entry, _ := media[mediaType].(map[string]any)
		bodyContent, ok := entry["schema"].(map[string]any)
		if !ok {
			bodyContent = map[string]any{}
		}

		bodyName, wrapName := "RequestBody", "request"
		if !single {
			prefix := mediaPrefix(mediaType)
			bodyName = prefix + "RequestBody"
			wrapName = prefix + "Request"
		}
		bodyID := op.ID.Child(bodyName)
		bodies = append(bodies, derivedSchema(op, bodyID, bodyContent))

		props := cloneProps(wrapperProps)
		props["body"] = map[string]any{"$ref": bodyID.String()}
		required := wrapperRequired
		if bodyRequired || hasRequiredMembers(bodyContent) {
			required = append(append([]any{}, wrapperRequired...), "body")
		}
		wrappers = append(wrappers, derivedSchema(op, op.ID.Child(wrapName),
			wrapperContent(props, required)))
	}
	return bodies, wrappers, nil
}

// synthesizeResponses builds one schema per response status. Multiple media
// types on one status produce one schema per media type, prefixed like
// request bodies.
func synthesizeResponses(r *resolver.Resolver, op *schema.Schema, content map[string]any) ([]*schema.Schema, error) {
	responses, ok := content["responses"].(map[string]any)
	if !ok {
		return nil, nil
	}

	var out []*schema.Schema
	for _, status := range sortedMapKeys(responses) {
		resp, ok := responses[status].(map[string]any)
		if !ok {
			continue
		}
		if ref, ok := resp["$ref"].(string); ok && ref != "" {
			target, err := r.Dereference(schema.ParseID(ref))
			if err != nil {
				return nil, err
			}
			if resolved, ok := target.Content.(map[string]any); ok {
				resp = resolved
			}
		}

		base := op.ID.Child("responses")
		if op.OpenAPI == schema.OpenAPI2 {
			if respSchema, ok := resp["schema"].(map[string]any); ok {
				out = append(out, derivedSchema(op, base.Child(status), respSchema))
			}
			continue
		}

		media, ok := resp["content"].(map[string]any)
		if !ok {
			continue
		}
		mediaTypes := sortedMapKeys(media)
		single := len(mediaTypes) == 1
		for _, mediaType := range mediaTypes {
			entry, _ := media[mediaType].(map[string]any)
			respSchema, ok := entry["schema"].(map[string]any)
			if !ok {
				continue
			}
			name := status
			if !single {
				name = mediaPrefix(mediaType) + "_" + status
			}
			out = append(out, derivedSchema(op, base.Child(name), respSchema))
		}
	}
	return out, nil
}

// wrapperContent assembles a request-wrapper object schema.
func wrapperContent(props map[string]any, required []any) map[string]any {
	content := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		sorted := append([]any{}, required...)
		sort.Slice(sorted, func(i, j int) bool {
			a, _ := sorted[i].(string)
			b, _ := sorted[j].(string)
			return a < b
		})
		content["required"] = sorted
	}
	return content
}

// hasRequiredMembers reports whether a body schema declares required
// properties of its own.
func hasRequiredMembers(m map[string]any) bool {
	required, ok := m["required"].([]any)
	return ok && len(required) > 0
}

func cloneProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props)+1)
	for k, v := range props {
		out[k] = v
	}
	return out
}

// derivedSchema builds a synthesized schema record rooted at the operation's
// document.
func derivedSchema(op *schema.Schema, id schema.ID, content map[string]any) *schema.Schema {
	return &schema.Schema{
		Dialect: op.Dialect,
		OpenAPI: op.OpenAPI,
		ID:      id,
		Content: content,
		Root:    op.Document(),
	}
}
