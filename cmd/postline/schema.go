// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package main

import (
	"encoding/json"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/postline/postline/internal/api"
)

// NewSchemaCmd creates the schema subcommand.
func NewSchemaCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the operation table and input schemas",
		Long: `Print every API operation with the JSON Schema its arguments are
validated against. The same document is served at GET /api.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := renderSchema(format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err //nolint:wrapcheck // write to stdout
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json or yaml)")
	return cmd
}

func renderSchema(format string) ([]byte, error) {
	// Handlers are never invoked, so no services are needed.
	reg, err := api.NewDefaultRegistry(nil, nil)
	if err != nil {
		return nil, err
	}

	doc, err := json.MarshalIndent(map[string]any{"operations": reg.Schema()}, "", "  ")
	if err != nil {
		return nil, oops.Code("SCHEMA_RENDER_FAILED").Wrap(err)
	}

	switch format {
	case "json":
		return append(doc, '\n'), nil
	case "yaml":
		return jsonToYAML(doc)
	default:
		return nil, oops.Code("INVALID_FORMAT").With("format", format).Errorf("format must be json or yaml, got %q", format)
	}
}

// jsonToYAML re-encodes a JSON document as block-style YAML, keeping key order.
func jsonToYAML(doc []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(doc, &node); err != nil {
		return nil, oops.Code("SCHEMA_RENDER_FAILED").Wrap(err)
	}
	clearStyle(&node)

	out, err := yaml.Marshal(&node)
	if err != nil {
		return nil, oops.Code("SCHEMA_RENDER_FAILED").Wrap(err)
	}
	return out, nil
}

func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		clearStyle(child)
	}
}
