package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.schema.json
var catalogSchema string

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func schema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = jsonschema.CompileString("catalog.schema.json", catalogSchema)
	})
	return compiledSchema, schemaErr
}

// validateDocument checks the raw YAML against the catalog JSON schema.
// YAML is round-tripped through JSON so the validator sees JSON number types.
func validateDocument(raw []byte) error {
	s, err := schema()
	if err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	var value any
	dec := json.NewDecoder(bytes.NewReader(encoded))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if err := s.Validate(value); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	return nil
}
