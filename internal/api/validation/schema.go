package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const valueSchemaURL = "value.schema.json"

// ValueSchema validates inserted values against a JSON Schema. A nil
// *ValueSchema accepts every value.
type ValueSchema struct {
	schema *jsonschema.Schema
}

// CompileValueSchema compiles a JSON Schema definition
func CompileValueSchema(definition []byte) (*ValueSchema, error) {
	var schemaJSON any
	if err := json.Unmarshal(definition, &schemaJSON); err != nil {
		return nil, fmt.Errorf("schema is not valid JSON: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(valueSchemaURL, bytes.NewReader(definition)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile(valueSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &ValueSchema{schema: schema}, nil
}

// LoadValueSchema reads and compiles the schema at path. An empty path
// returns a nil schema.
func LoadValueSchema(path string) (*ValueSchema, error) {
	if path == "" {
		return nil, nil
	}

	definition, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read value schema: %w", err)
	}

	schema, err := CompileValueSchema(definition)
	if err != nil {
		return nil, fmt.Errorf("value schema %s: %w", path, err)
	}

	return schema, nil
}

// Validate checks a decoded JSON document against the schema
func (s *ValueSchema) Validate(doc any) error {
	if s == nil {
		return nil
	}
	if err := s.schema.Validate(doc); err != nil {
		return SchemaError{Err: err}
	}
	return nil
}
