package config

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const schemaJSON = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "thresholds": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "requirements": {"type": "number", "minimum": 0, "maximum": 10},
        "design": {"type": "number", "minimum": 0, "maximum": 10},
        "tasks": {"type": "number", "minimum": 0, "maximum": 10}
      }
    },
    "convergence": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "max_iterations": {"type": "integer"},
        "plateau_iterations": {"type": "integer"},
        "min_improvement": {"type": "number", "minimum": 0},
        "timeout": {"type": "string"}
      }
    },
    "weights": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "requirements": {
          "type": "object",
          "additionalProperties": false,
          "properties": {
            "structure": {"$ref": "#/definitions/weight"},
            "ears_format": {"$ref": "#/definitions/weight"},
            "user_stories": {"$ref": "#/definitions/weight"},
            "acceptance_criteria": {"$ref": "#/definitions/weight"},
            "nfr_coverage": {"$ref": "#/definitions/weight"},
            "constraints": {"$ref": "#/definitions/weight"}
          }
        },
        "design": {
          "type": "object",
          "additionalProperties": false,
          "properties": {
            "structure": {"$ref": "#/definitions/weight"},
            "traceability": {"$ref": "#/definitions/weight"},
            "diagrams": {"$ref": "#/definitions/weight"},
            "technology": {"$ref": "#/definitions/weight"},
            "nfr_design": {"$ref": "#/definitions/weight"},
            "interfaces": {"$ref": "#/definitions/weight"}
          }
        }
      }
    },
    "backup": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled": {"type": "boolean"},
        "cleanup_on_success": {"type": "boolean"},
        "retention_days": {"type": "integer", "minimum": 0}
      }
    },
    "history": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled": {"type": "boolean"},
        "database": {"type": "string"}
      }
    },
    "logging": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "verbose": {"type": "boolean"},
        "file": {"type": "string"}
      }
    }
  },
  "definitions": {
    "weight": {"type": "number", "minimum": 0, "maximum": 1}
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

// validate checks a decoded YAML document against the config schema.
func validate(name string, doc any) error {
	if doc == nil {
		return nil
	}
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%s: schema validation: %w", name, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("%w: %s: %s", ErrInvalid, name, strings.Join(msgs, "; "))
}
