// Package dtsgen provides tools for generating TypeScript declaration files
// from JSON Schema and OpenAPI documents.
//
// dtsgen reads one or more schema documents (JSON Schema Draft-04/Draft-07,
// OpenAPI 2.0, or OpenAPI 3.x), resolves all references across them, and emits
// a single block of nested namespace/type declarations whose compile-time
// shapes match the schema contract.
//
// # Overview
//
// The library consists of three primary packages:
//
//   - schema: parse raw documents into schema records and normalize them
//   - resolver: register and resolve schema references across documents
//   - generator: build the namespace tree and emit TypeScript declarations
//
// Supported input dialects:
//   - JSON Schema Draft-04: https://json-schema.org/draft-04/schema
//   - JSON Schema Draft-07: https://json-schema.org/draft-07/schema
//   - OpenAPI 2.0 (Swagger): https://spec.openapis.org/oas/v2.0.html
//   - OpenAPI 3.x: https://spec.openapis.org/oas/v3.0.0.html
//
// # Installation
//
// Install the library using go get:
//
//	go get github.com/dtsgen/dtsgen
//
// # Quick Start
//
// Generate declarations from a schema file:
//
//	import "github.com/dtsgen/dtsgen/generator"
//
//	result, err := generator.GenerateWithOptions(
//		generator.WithFilePath("api.yaml"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.Declarations)
//
// Generation is deterministic: an unchanged input set always produces
// byte-identical output.
package dtsgen
