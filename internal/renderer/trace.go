package renderer

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "embed"

	"github.com/kaptinlin/jsonschema"

	"github.com/greensight/carbonscan/internal/model"
)

// ErrInvalidTrace is returned when a trace payload fails schema validation
// or cannot be decoded. Callers treat it as an acquisition failure: the run
// produces no report rather than a report built from garbage.
var ErrInvalidTrace = errors.New("invalid page trace payload")

// traceSchemaJSON is the JSON Schema every raw trace payload must satisfy
// before it is decoded into a PageTrace.
//
//go:embed trace_schema.json
var traceSchemaJSON []byte

var (
	traceSchemaOnce sync.Once
	traceSchema     *jsonschema.Schema
	traceSchemaErr  error
)

// compiledTraceSchema compiles the embedded schema once.
func compiledTraceSchema() (*jsonschema.Schema, error) {
	traceSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		traceSchema, traceSchemaErr = compiler.Compile(traceSchemaJSON)
	})
	return traceSchema, traceSchemaErr
}

// ParseTrace validates and decodes a raw trace payload.
//
// Design decision: We validate against a strict schema at the boundary
// rather than decoding permissively, so that negative sizes, missing
// resource arrays, and mistyped fields are rejected here once and the
// classifier always receives well-formed input.
func ParseTrace(data []byte) (*model.PageTrace, error) {
	schema, err := compiledTraceSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile trace schema: %w", err)
	}

	result := schema.ValidateJSON(data)
	if !result.IsValid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTrace, result.Errors)
	}

	var trace model.PageTrace
	if err := json.Unmarshal(data, &trace); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTrace, err)
	}

	return &trace, nil
}
