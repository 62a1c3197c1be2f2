package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dtsgen/dtsgen/generator"
	"github.com/dtsgen/dtsgen/schema"
)

type generateInput struct {
	Docs   []docInput `json:"docs"             jsonschema:"The schema documents to generate declarations from"`
	Output string     `json:"output,omitempty" jsonschema:"File path to write the declaration text to; omit to return it inline"`
}

type generateOutput struct {
	Success      bool   `json:"success"`
	Declarations string `json:"declarations,omitempty"`
	Output       string `json:"output,omitempty"`
	Schemas      int    `json:"schemas"`
	TypeCount    int    `json:"type_count"`
	Operations   int    `json:"operations"`
}

func handleGenerate(ctx context.Context, _ *mcp.CallToolRequest, input generateInput) (*mcp.CallToolResult, generateOutput, error) {
	if len(input.Docs) == 0 {
		return errResult(fmt.Errorf("docs is required")), generateOutput{}, nil
	}

	loader := newLoader()
	docs := make([]*schema.Schema, 0, len(input.Docs))
	for i, in := range input.Docs {
		doc, err := in.resolve(ctx, loader)
		if err != nil {
			return errResult(fmt.Errorf("docs[%d]: %w", i, err)), generateOutput{}, nil
		}
		docs = append(docs, doc)
	}

	g := &generator.Generator{Loader: loader}
	result, err := g.Generate(ctx, docs...)
	if err != nil {
		return errResult(err), generateOutput{}, nil
	}

	output := generateOutput{
		Success:    true,
		Schemas:    result.SchemaCount,
		TypeCount:  result.DeclarationCount,
		Operations: result.OperationCount,
	}
	if input.Output != "" {
		if err := result.WriteFile(input.Output); err != nil {
			return errResult(err), generateOutput{}, nil
		}
		output.Output = input.Output
	} else {
		output.Declarations = result.Declarations
	}
	return nil, output, nil
}
