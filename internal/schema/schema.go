// Package schema validates capability documents at the service boundary.
// The core data model deliberately accepts anything (fail-closed booleans
// instead of errors); structural validation happens here, before a document
// reaches the registry.
package schema

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const capabilityDocument = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["id"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"static_analysis_tools": {"$ref": "#/$defs/toolList"},
		"security_scanning_tools": {"$ref": "#/$defs/toolList"},
		"dynamic_analysis_tools": {"$ref": "#/$defs/toolList"},
		"fuzzing_tools": {"$ref": "#/$defs/toolList"},
		"test_framework_tools": {"$ref": "#/$defs/toolList"},
		"flags": {
			"type": "object",
			"additionalProperties": {"type": "boolean"}
		},
		"metadata": {
			"type": "object",
			"additionalProperties": {"type": "string"}
		}
	},
	"$defs": {
		"toolList": {
			"type": ["array", "null"],
			"items": {
				"type": "object",
				"required": ["tool_name", "required"],
				"properties": {
					"tool_name": {"type": "string", "minLength": 1},
					"required": {"type": "boolean"},
					"alternatives": {
						"type": ["array", "null"],
						"items": {"type": "string"}
					}
				}
			}
		}
	}
}`

// Validator checks capability documents against the wire schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the capability document schema.
func NewValidator() (*Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(capabilityDocument))
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("capability.json", doc); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	sch, err := c.Compile("capability.json")
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return &Validator{schema: sch}, nil
}

// Validate checks one capability document. A nil error means the document
// matches the wire shape; it says nothing about whether the declared tools
// exist.
func (v *Validator) Validate(doc []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return fmt.Errorf("capability document is not valid JSON: %w", err)
	}
	if err := v.schema.Validate(inst); err != nil {
		return fmt.Errorf("capability document rejected: %w", err)
	}
	return nil
}
