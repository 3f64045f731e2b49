package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "vcr-config.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// Schema returns the JSON schema configuration files are checked against.
func Schema() []byte {
	return bytes.Clone(schemaJSON)
}

func compileSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// validateSchema checks a decoded document against the schema. The document
// is normalized through JSON first so YAML values have JSON types.
func validateSchema(doc any) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var normalized any
	if err := dec.Decode(&normalized); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := schema.Validate(normalized); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(schemaMessages(ve, nil), "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// schemaMessages flattens a validation error tree into "path: message"
// lines.
func schemaMessages(err *jsonschema.ValidationError, out []string) []string {
	if len(err.Causes) == 0 {
		path := strings.ReplaceAll(strings.TrimPrefix(err.InstanceLocation, "/"), "/", ".")
		if path == "" {
			return append(out, err.Message)
		}
		return append(out, path+": "+err.Message)
	}
	for _, cause := range err.Causes {
		out = schemaMessages(cause, out)
	}
	return out
}
