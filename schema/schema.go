// Package schema validates extraction output against a JSON Schema, so a
// bad run fails loudly instead of shipping malformed result files.
package schema

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/jsonschema-go/jsonschema"
)

// defaultSchema mirrors output_schema.json and backs validation when no
// schema file is available.
const defaultSchema = `{
    "$schema": "http://json-schema.org/draft-07/schema#",
    "type": "object",
    "required": ["title", "outline"],
    "properties": {
        "title": {
            "type": "string"
        },
        "outline": {
            "type": "array",
            "items": {
                "type": "object",
                "required": ["level", "text", "page"],
                "properties": {
                    "level": {
                        "type": "string",
                        "pattern": "^H[1-6]$"
                    },
                    "text": {
                        "type": "string",
                        "minLength": 1
                    },
                    "page": {
                        "type": "integer",
                        "minimum": 0
                    }
                }
            }
        }
    }
}`

// Validator checks output documents against a resolved schema.
type Validator struct {
	resolved *jsonschema.Resolved
	source   string
}

// Load reads and resolves a schema file.
func Load(path string) (*Validator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	v, err := fromBytes(data)
	if err != nil {
		return nil, err
	}
	v.source = path
	return v, nil
}

// Default returns the built-in output schema.
func Default() *Validator {
	v, err := fromBytes([]byte(defaultSchema))
	if err != nil {
		// The embedded schema is a constant; failing to parse it is a
		// programming error.
		panic(err)
	}
	v.source = "builtin"
	return v
}

func fromBytes(data []byte) (*Validator, error) {
	var s jsonschema.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	resolved, err := s.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve schema: %w", err)
	}
	return &Validator{resolved: resolved}, nil
}

// Source reports where the schema came from.
func (v *Validator) Source() string { return v.source }

// Validate checks a marshaled output document.
func (v *Validator) Validate(doc []byte) error {
	var instance any
	if err := json.Unmarshal(doc, &instance); err != nil {
		return fmt.Errorf("parse output: %w", err)
	}
	if err := v.resolved.Validate(instance); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}

// ValidateValue checks an in-memory value by round-tripping it through
// JSON, so struct tags apply the same way they will on disk.
func (v *Validator) ValidateValue(value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return v.Validate(data)
}
