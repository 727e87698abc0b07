package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-screener/internal/schemas"
)

type validateOptions struct {
	schema string
	json   string
}

func newValidateCmd() *cobra.Command {
	opts := &validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a JSON file against a JSON Schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.schema, "schema", "", "Path to the JSON Schema")
	cmd.Flags().StringVar(&opts.json, "json", "", "Path to the JSON document")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("json")
	return cmd
}

func runValidate(cmd *cobra.Command, opts *validateOptions) error {
	err := schemas.ValidateJSON(opts.schema, opts.json)
	if err == nil {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "Validation passed")
		return err
	}

	var validationErr *schemas.ValidationError
	if errors.As(err, &validationErr) {
		return fmt.Errorf("Validation failed: %w", err) //nolint:staticcheck // user-facing message
	}
	return err
}
