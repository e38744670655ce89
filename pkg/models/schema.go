package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidDocument indicates a raw workflow document failed schema validation.
var ErrInvalidDocument = errors.New("invalid workflow document")

// workflowSchema is the JSON Schema every incoming workflow document must
// satisfy before it is decoded into a Workflow. It guards structural shape;
// referential integrity between nodes and connections is checked by the
// graph layer afterwards.
var workflowSchema = map[string]any{
	"type":     "object",
	"required": []any{"name", "status", "nodes", "connections"},
	"properties": map[string]any{
		"id":     map[string]any{"type": "string"},
		"name":   map[string]any{"type": "string", "minLength": 3},
		"status": map[string]any{"type": "string", "enum": []any{"draft", "published"}},
		"nodes": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "type", "name", "position"},
				"properties": map[string]any{
					"id": map[string]any{"type": "string", "minLength": 1},
					"type": map[string]any{
						"type": "string",
						"enum": []any{"start", "approval", "condition", "parallel", "notification", "end"},
					},
					"name": map[string]any{"type": "string", "minLength": 1},
					"position": map[string]any{
						"type":     "object",
						"required": []any{"x", "y"},
						"properties": map[string]any{
							"x": map[string]any{"type": "number", "minimum": 0},
							"y": map[string]any{"type": "number", "minimum": 0},
						},
					},
				},
			},
		},
		"connections": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"from", "to"},
				"properties": map[string]any{
					"from": map[string]any{"type": "string", "minLength": 1},
					"to":   map[string]any{"type": "string", "minLength": 1},
				},
			},
		},
	},
}

// ValidateDocumentJSON validates a raw workflow document payload against the
// workflow schema and returns every violation in one error.
func ValidateDocumentJSON(document []byte) error {
	schemaLoader := gojsonschema.NewGoLoader(workflowSchema)
	documentLoader := gojsonschema.NewBytesLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		for _, violation := range result.Errors() {
			violations = append(violations, violation.String())
		}

		return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(violations, "; "))
	}

	return nil
}
