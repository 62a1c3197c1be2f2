package mcpserver

import (
	"context"
	"fmt"
	"path/filepath"

	"go.yaml.in/yaml/v4"

	"github.com/dtsgen/dtsgen/resolver"
	"github.com/dtsgen/dtsgen/schema"
)

// docInput represents the three ways a schema document can be provided to a
// tool. Exactly one of File, URL, or Content must be set.
type docInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to a JSON Schema or OpenAPI file on disk"`
	URL     string `json:"url,omitempty"     jsonschema:"URL to fetch a document from"`
	Content string `json:"content,omitempty" jsonschema:"Inline document content (JSON or YAML)"`
	Name    string `json:"name,omitempty"    jsonschema:"Source name for inline content; used to name the namespace when the document declares no id"`
}

// resolve turns a docInput into a parsed document, loading through the given
// loader so cross-document references share its cache.
func (in docInput) resolve(ctx context.Context, loader resolver.Loader) (*schema.Schema, error) {
	set := 0
	for _, s := range []string{in.File, in.URL, in.Content} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("exactly one of file, url, or content must be set")
	}

	switch {
	case in.Content != "":
		var raw any
		if err := yaml.Unmarshal([]byte(in.Content), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse inline content: %w", err)
		}
		name := in.Name
		if name == "" {
			name = "document"
		}
		return schema.ParseDocument(raw, name)
	case in.URL != "":
		raw, err := loader.Load(ctx, in.URL)
		if err != nil {
			return nil, err
		}
		return schema.ParseDocument(raw, in.URL)
	default:
		path, err := filepath.Abs(in.File)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path: %w", err)
		}
		raw, err := loader.Load(ctx, path)
		if err != nil {
			return nil, err
		}
		return schema.ParseDocument(raw, path)
	}
}

// newLoader builds the loader shared by one tool invocation. File references
// resolve from the filesystem root since tool inputs carry absolute paths.
func newLoader() resolver.Loader {
	return resolver.NewMultiLoader("/")
}
