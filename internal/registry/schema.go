package registry

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const schemaURL = "chunkmesh://registry.schema.json"

const schemaJSON = `{
  "type": "object",
  "required": ["blocks"],
  "additionalProperties": false,
  "properties": {
    "blocks": {
      "type": "array",
      "items": { "$ref": "#/$defs/block" }
    }
  },
  "$defs": {
    "fraction": { "type": "number", "minimum": 0, "maximum": 1 },
    "block": {
      "type": "object",
      "required": ["name", "shape"],
      "additionalProperties": false,
      "properties": {
        "name": { "type": "string", "minLength": 1 },
        "id": { "type": "integer", "minimum": 1, "maximum": 65535 },
        "shape": {
          "enum": ["none", "cube", "axis_cube", "slab", "stairs", "pane", "fence", "gate", "carpet"]
        },
        "materials": {
          "type": "object",
          "additionalProperties": false,
          "properties": {
            "all": { "type": "string" },
            "top": { "type": "string" },
            "bottom": { "type": "string" },
            "side": { "type": "string" }
          }
        },
        "occludes_same": { "type": "boolean" },
        "seam": {
          "type": "object",
          "additionalProperties": false,
          "properties": {
            "dont_occlude_same": { "type": "boolean" },
            "dont_project_fixups": { "type": "boolean" }
          }
        },
        "alpha_cutoff": { "$ref": "#/$defs/fraction" },
        "fluid": { "type": "boolean" },
        "emission": { "$ref": "#/$defs/fraction" },
        "beacon": { "$ref": "#/$defs/fraction" },
        "model": { "type": "string" }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// validateDocument checks a YAML registry document against the schema. The
// YAML tree is round-tripped through JSON so the validator sees JSON types.
func validateDocument(data []byte) error {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	raw, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("registry document is not JSON compatible: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile registry schema: %w", err)
	}
	return s.Validate(doc)
}
