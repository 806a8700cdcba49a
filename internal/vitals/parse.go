package vitals

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://vitals-record.json"

// recordSchema describes one reading as accepted from JSON input.
var recordSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"age":         map[string]any{"type": "number", "exclusiveMinimum": 0},
		"heartRate":   map[string]any{"type": "number", "exclusiveMinimum": 0},
		"systolic":    map[string]any{"type": "number", "exclusiveMinimum": 0},
		"diastolic":   map[string]any{"type": "number", "exclusiveMinimum": 0},
		"cholesterol": map[string]any{"type": "number", "exclusiveMinimum": 0},
	},
	"required": []any{"age", "heartRate", "systolic", "diastolic"},
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants a decoded JSON value, not Go maps with typed slices.
		raw, err := json.Marshal(recordSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// Parse decodes a JSON object into a Record after schema validation.
func Parse(raw []byte) (Record, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return Record{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return decode(doc, raw)
}

// ParseAll decodes either a single JSON object or an array of objects.
func ParseAll(raw []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty input")
	}
	if trimmed[0] != '[' {
		rec, err := Parse(trimmed)
		if err != nil {
			return nil, err
		}
		return []Record{rec}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("invalid JSON array: %w", err)
	}
	records := make([]Record, 0, len(items))
	for i, item := range items {
		rec, err := Parse(item)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func decode(doc any, raw []byte) (Record, error) {
	sch, err := schema()
	if err != nil {
		return Record{}, fmt.Errorf("compile vitals schema: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return Record{}, fmt.Errorf("schema validation failed: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, fmt.Errorf("decode vitals: %w", err)
	}
	rec = rec.WithDefaults()
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}
