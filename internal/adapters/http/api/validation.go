package api

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/okian/todos/internal/domain/model"
)

//go:embed schema/todo_input.json
var todoInputSchema []byte

const todoInputSchemaURL = "https://todos.local/schema/todo_input.json"

// compileInputSchema compiles the embedded todo body schema.
func compileInputSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(todoInputSchemaURL, bytes.NewReader(todoInputSchema)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaCompile, err)
	}
	schema, err := compiler.Compile(todoInputSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaCompile, err)
	}
	return schema, nil
}

// inputSchema is compiled once at package init; the schema is embedded so
// a failure here is a build defect.
var inputSchema = func() *jsonschema.Schema {
	s, err := compileInputSchema()
	if err != nil {
		panic(err)
	}
	return s
}()

// decodeInput parses a todo body, checks it against the schema and the
// model invariants.
func decodeInput(body []byte) (model.Input, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return model.Input{}, fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := inputSchema.Validate(doc); err != nil {
		return model.Input{}, schemaError(err)
	}

	var in model.Input
	if err := json.Unmarshal(body, &in); err != nil {
		return model.Input{}, fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := in.Validate(); err != nil {
		return model.Input{}, err
	}
	return in, nil
}

// schemaError flattens a jsonschema validation failure to its first leaf
// cause, prefixed with the offending field.
func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	leaf := firstLeaf(ve)
	field := strings.TrimPrefix(leaf.InstanceLocation, "/")
	if field == "" {
		return errors.New(leaf.Message)
	}
	return fmt.Errorf("%s: %s", field, leaf.Message)
}

func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}
