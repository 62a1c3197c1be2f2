// Package generator turns resolved schema graphs into TypeScript declaration
// text. It registers all input documents with a resolver, runs the two-pass
// resolve/synthesize/resolve sequence for OpenAPI inputs, folds the registry
// into a namespace tree, and emits deterministic declarations.
package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dtsgen/dtsgen"
	"github.com/dtsgen/dtsgen/resolver"
	"github.com/dtsgen/dtsgen/schema"
)

// Generator produces TypeScript declarations from schema documents.
type Generator struct {
	// Loader fetches documents referenced across document boundaries.
	// If nil, a MultiLoader rooted at the working directory is used.
	Loader resolver.Loader
	// Logger is the structured logger for debug output.
	// If nil, logging is disabled (default).
	Logger dtsgen.Logger
	// RootNamespace replaces the top-level namespace derived from each
	// document's base URL. All inputs merge under the override.
	RootNamespace string
}

// New creates a Generator with default settings.
func New() *Generator {
	return &Generator{}
}

func (g *Generator) log() dtsgen.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return dtsgen.NopLogger{}
}

// Result contains the generated declaration text and generation metadata.
type Result struct {
	// Declarations is the full generated TypeScript declaration text.
	Declarations string
	// SchemaCount is the number of schemas registered after resolution.
	SchemaCount int
	// DeclarationCount is the number of declarations emitted.
	DeclarationCount int
	// OperationCount is the number of OpenAPI operations synthesized.
	OperationCount int
	// LoadTime is the time taken to register and resolve all documents.
	LoadTime time.Duration
	// GenerateTime is the time taken to build the tree and emit text.
	GenerateTime time.Duration
}

// WriteFile persists the declaration text to the given path, creating parent
// directories as needed.
func (r *Result) WriteFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(r.Declarations), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Generate runs the full pipeline over the given parsed documents:
// registration and reference resolution (first pass), OpenAPI operation
// synthesis, a second resolve pass folding in the synthesized schemas, then
// the deterministic tree walk and emission.
//
// Generation either produces a complete declaration text or fails the whole
// run; there is no partial output.
func (g *Generator) Generate(ctx context.Context, docs ...*schema.Schema) (*Result, error) {
	loadStart := time.Now()

	loader := g.Loader
	if loader == nil {
		loader = resolver.NewMultiLoader(".")
	}
	res := resolver.New(loader)
	res.Logger = g.Logger

	for _, doc := range docs {
		if err := res.RegisterDocument(doc); err != nil {
			return nil, err
		}
	}
	if err := res.Resolve(ctx); err != nil {
		return nil, err
	}

	// Synthesize request/response shapes for every registered operation,
	// then resolve again so their internal references are registered too.
	var operations []*schema.Schema
	for _, s := range res.Registered() {
		if s.Operation {
			operations = append(operations, s)
		}
	}
	for _, op := range operations {
		derived, err := synthesizeOperation(res, op)
		if err != nil {
			return nil, err
		}
		for _, d := range derived {
			if err := res.AddSchema(d); err != nil {
				return nil, err
			}
		}
	}
	if len(operations) > 0 {
		if err := res.Resolve(ctx); err != nil {
			return nil, err
		}
	}
	loadTime := time.Since(loadStart)

	generateStart := time.Now()
	registered := res.Registered()
	tree := buildTree(registered, g.RootNamespace)
	em := &emitter{res: res, rootNS: g.RootNamespace}
	text, err := em.render(tree)
	if err != nil {
		return nil, err
	}

	g.log().Debug("generation complete",
		"schemas", len(registered),
		"declarations", em.decls,
		"operations", len(operations))

	return &Result{
		Declarations:     text,
		SchemaCount:      len(registered),
		DeclarationCount: em.decls,
		OperationCount:   len(operations),
		LoadTime:         loadTime,
		GenerateTime:     time.Since(generateStart),
	}, nil
}
