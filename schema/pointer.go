package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// PointerTokens splits a JSON pointer into its unescaped tokens.
// Leading '#' and empty tokens are dropped, so "#/a/b", "/a/b" and "a/b" all
// yield ["a", "b"].
func PointerTokens(pointer string) []string {
	pointer = strings.TrimPrefix(pointer, "#")
	var tokens []string
	for _, part := range strings.Split(pointer, "/") {
		if part == "" {
			continue
		}
		tokens = append(tokens, UnescapePointerToken(part))
	}
	return tokens
}

// ResolvePointer navigates content along a JSON pointer per RFC 6901 and
// returns the value it addresses.
func ResolvePointer(content any, pointer string) (any, error) {
	tokens := PointerTokens(pointer)
	current := content
	for i, token := range tokens {
		switch v := current.(type) {
		case map[string]any:
			next, ok := v[token]
			if !ok {
				return nil, fmt.Errorf("pointer not found: /%s (missing key: %s)",
					strings.Join(tokens[:i+1], "/"), token)
			}
			current = next
		case []any:
			index, err := strconv.Atoi(token)
			if err != nil {
				return nil, fmt.Errorf("invalid array index %q in pointer /%s (must be a non-negative integer)",
					token, strings.Join(tokens[:i+1], "/"))
			}
			if index < 0 || index >= len(v) {
				return nil, fmt.Errorf("array index %d out of bounds (length %d) in pointer /%s",
					index, len(v), strings.Join(tokens[:i+1], "/"))
			}
			current = v[index]
		default:
			return nil, fmt.Errorf("cannot traverse into type %T at /%s",
				v, strings.Join(tokens[:i], "/"))
		}
	}
	return current, nil
}
