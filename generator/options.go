package generator

import (
	"context"

	"github.com/dtsgen/dtsgen"
	"github.com/dtsgen/dtsgen/dtserrors"
	"github.com/dtsgen/dtsgen/resolver"
	"github.com/dtsgen/dtsgen/schema"
)

// Option is a function that configures a generate operation.
type Option func(*generateConfig) error

// generateConfig holds configuration for a generate operation.
type generateConfig struct {
	// Input sources (at least one must be set)
	filePaths []string
	rawDocs   []rawDocument
	parsed    []*schema.Schema

	// Configuration options
	ctx           context.Context
	loader        resolver.Loader
	logger        dtsgen.Logger
	rootNamespace string
}

type rawDocument struct {
	raw       any
	sourceURL string
}

// GenerateWithOptions generates TypeScript declarations using functional
// options. Input sources combine: every file path, raw document, and parsed
// schema contributes to one declaration text.
//
// Example:
//
//	result, err := generator.GenerateWithOptions(
//	    generator.WithFilePath("api.yaml"),
//	    generator.WithLogger(dtsgen.NewSlogAdapter(slog.Default())),
//	)
func GenerateWithOptions(opts ...Option) (*Result, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}

	ctx := cfg.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	loader := cfg.loader
	if loader == nil {
		loader = resolver.NewMultiLoader(".")
	}

	docs := make([]*schema.Schema, 0, len(cfg.filePaths)+len(cfg.rawDocs)+len(cfg.parsed))
	for _, path := range cfg.filePaths {
		raw, err := loader.Load(ctx, path)
		if err != nil {
			return nil, err
		}
		doc, err := schema.ParseDocument(raw, path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	for _, rd := range cfg.rawDocs {
		doc, err := schema.ParseDocument(rd.raw, rd.sourceURL)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	docs = append(docs, cfg.parsed...)

	g := &Generator{
		Loader:        loader,
		Logger:        cfg.logger,
		RootNamespace: cfg.rootNamespace,
	}
	return g.Generate(ctx, docs...)
}

// applyOptions applies option functions and validates configuration.
func applyOptions(opts ...Option) (*generateConfig, error) {
	cfg := &generateConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if len(cfg.filePaths)+len(cfg.rawDocs)+len(cfg.parsed) == 0 {
		return nil, &dtserrors.ConfigError{
			Option:  "input",
			Message: "must specify an input source (use WithFilePath, WithDocument, or WithParsed)",
		}
	}
	return cfg, nil
}

// WithFilePath adds a file path or URL as an input source. May be repeated.
func WithFilePath(path string) Option {
	return func(cfg *generateConfig) error {
		if path == "" {
			return &dtserrors.ConfigError{
				Option:  "filePath",
				Message: "path must not be empty",
			}
		}
		cfg.filePaths = append(cfg.filePaths, path)
		return nil
	}
}

// WithDocument adds an already-decoded document as an input source. The
// sourceURL names the document when it declares no id of its own.
func WithDocument(raw any, sourceURL string) Option {
	return func(cfg *generateConfig) error {
		cfg.rawDocs = append(cfg.rawDocs, rawDocument{raw: raw, sourceURL: sourceURL})
		return nil
	}
}

// WithParsed adds a parsed document as an input source.
func WithParsed(doc *schema.Schema) Option {
	return func(cfg *generateConfig) error {
		if doc == nil {
			return &dtserrors.ConfigError{
				Option:  "parsed",
				Message: "document must not be nil",
			}
		}
		cfg.parsed = append(cfg.parsed, doc)
		return nil
	}
}

// WithContext sets the context governing loading and resolution.
func WithContext(ctx context.Context) Option {
	return func(cfg *generateConfig) error {
		cfg.ctx = ctx
		return nil
	}
}

// WithLoader sets the loader used for input files and cross-document
// references.
func WithLoader(loader resolver.Loader) Option {
	return func(cfg *generateConfig) error {
		cfg.loader = loader
		return nil
	}
}

// WithRootNamespace replaces the top-level namespace derived from each
// document's base URL. All inputs merge under the given name.
func WithRootNamespace(name string) Option {
	return func(cfg *generateConfig) error {
		cfg.rootNamespace = name
		return nil
	}
}

// WithLogger sets the structured logger for generation diagnostics.
func WithLogger(logger dtsgen.Logger) Option {
	return func(cfg *generateConfig) error {
		cfg.logger = logger
		return nil
	}
}
