// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package api

import (
	"bytes"
	"encoding/json"

	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/samber/oops"
)

func reflectSchema(v any) *jsonschema.Schema {
	r := jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
	}
	return r.Reflect(v)
}

// compileSchema turns a reflected schema into a validator.
func compileSchema(name string, schema *jsonschema.Schema) (*jschema.Schema, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").With("operation", name).Wrap(err)
	}

	doc, err := jschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").With("operation", name).Wrap(err)
	}

	url := "postline://operations/" + name + ".json"
	c := jschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").With("operation", name).Wrap(err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").With("operation", name).Wrap(err)
	}
	return sch, nil
}

// validate checks raw arguments against the operation's input schema.
func (op *Operation) validate(raw json.RawMessage) error {
	if op.validator == nil {
		return nil
	}
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(normalizeArgs(raw)))
	if err != nil {
		return ErrInvalidArgs(op.Name, err)
	}
	if err := op.validator.Validate(doc); err != nil {
		return ErrInvalidArgs(op.Name, err)
	}
	return nil
}

// SchemaEntry describes one operation for clients and the schema command.
type SchemaEntry struct {
	Name        string             `json:"name" yaml:"name"`
	Kind        Kind               `json:"kind" yaml:"kind"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty"`
	Input       *jsonschema.Schema `json:"input" yaml:"input"`
}

// Schema lists every registered operation ordered by name.
func (r *Registry) Schema() []SchemaEntry {
	ops := r.All()
	entries := make([]SchemaEntry, 0, len(ops))
	for _, op := range ops {
		entries = append(entries, SchemaEntry{
			Name:        op.Name,
			Kind:        op.Kind,
			Description: op.Description,
			Input:       op.Input,
		})
	}
	return entries
}
