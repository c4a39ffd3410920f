package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const stateSchemaURL = "https://taskmaster.local/schemas/todo-storage.json"

// stateSchemaJSON describes the persisted envelope. Unknown filter values are
// allowed here; the task store falls back to "all" for them.
const stateSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["state"],
  "properties": {
    "version": {"type": "integer", "minimum": 0},
    "state": {
      "type": "object",
      "required": ["tasks"],
      "properties": {
        "filter": {"type": "string"},
        "tasks": {"type": "array", "items": {"$ref": "#/$defs/task"}}
      }
    }
  },
  "$defs": {
    "task": {
      "type": "object",
      "required": ["id", "title", "completed", "createdAt"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "title": {"type": "string", "minLength": 1, "maxLength": 100},
        "completed": {"type": "boolean"},
        "createdAt": {"type": "string", "format": "date-time"},
        "startTime": {"type": "string", "format": "date-time"},
        "dueTime": {"type": "string", "format": "date-time"}
      }
    }
  }
}`

var (
	stateSchemaOnce sync.Once
	stateSchema     *jsonschema.Schema
	stateSchemaErr  error
)

func compiledStateSchema() (*jsonschema.Schema, error) {
	stateSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		if err := compiler.AddResource(stateSchemaURL, strings.NewReader(stateSchemaJSON)); err != nil {
			stateSchemaErr = fmt.Errorf("adding state schema: %w", err)
			return
		}
		stateSchema, stateSchemaErr = compiler.Compile(stateSchemaURL)
	})
	return stateSchema, stateSchemaErr
}

// validateStateDocument checks raw state-file bytes against the schema and
// flattens schema violations into one readable error.
func validateStateDocument(data []byte) error {
	schema, err := compiledStateSchema()
	if err != nil {
		return err
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return fmt.Errorf("validating state: %w", err)
		}
		var msgs []string
		collectSchemaErrors(&msgs, ve)
		return fmt.Errorf("invalid state file:\n  - %s", strings.Join(msgs, "\n  - "))
	}
	return nil
}

func collectSchemaErrors(msgs *[]string, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		loc := err.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*msgs = append(*msgs, fmt.Sprintf("%s: %s", loc, err.Message))
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(msgs, cause)
	}
}
