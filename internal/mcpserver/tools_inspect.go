package mcpserver

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dtsgen/dtsgen/internal/naming"
	"github.com/dtsgen/dtsgen/resolver"
)

type inspectInput struct {
	Doc docInput `json:"doc" jsonschema:"The schema document to inspect"`
}

type schemaInfo struct {
	ID        string `json:"id"`
	Namespace string `json:"namespace,omitempty"`
	Kind      string `json:"kind"`
}

type inspectOutput struct {
	Success bool         `json:"success"`
	Dialect string       `json:"dialect"`
	OpenAPI string       `json:"openapi,omitempty"`
	Schemas []schemaInfo `json:"schemas"`
}

func handleInspect(ctx context.Context, _ *mcp.CallToolRequest, input inspectInput) (*mcp.CallToolResult, inspectOutput, error) {
	loader := newLoader()
	doc, err := input.Doc.resolve(ctx, loader)
	if err != nil {
		return errResult(err), inspectOutput{}, nil
	}

	res := resolver.New(loader)
	if err := res.RegisterDocument(doc); err != nil {
		return errResult(err), inspectOutput{}, nil
	}
	if err := res.Resolve(ctx); err != nil {
		return errResult(err), inspectOutput{}, nil
	}

	registered := res.Registered()
	output := inspectOutput{
		Success: true,
		Dialect: string(doc.Dialect),
		OpenAPI: doc.OpenAPI.String(),
		Schemas: makeSlice[schemaInfo](len(registered)),
	}
	for _, s := range registered {
		info := schemaInfo{ID: s.ID.String(), Kind: "schema"}
		switch {
		case s.Operation:
			info.Kind = "operation"
		case s.Root == nil:
			info.Kind = "document"
		}
		segs := s.ID.Segments()
		names := make([]string, len(segs))
		for i, seg := range segs {
			names[i] = naming.TypeName(seg)
		}
		info.Namespace = strings.Join(names, ".")
		output.Schemas = append(output.Schemas, info)
	}
	return nil, output, nil
}
