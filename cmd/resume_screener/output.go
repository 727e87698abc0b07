package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/ingestion"
	"github.com/jonathan/resume-screener/internal/logging"
	"github.com/jonathan/resume-screener/internal/observability"
	"github.com/jonathan/resume-screener/internal/schemas"
	"github.com/jonathan/resume-screener/internal/types"
)

func (o *globalOptions) logger() *zap.Logger {
	return logging.New(o.logLevel, o.logFormat)
}

// printer returns a verbose-mode printer, or nil when verbose output is off.
func (o *globalOptions) printer(cmd *cobra.Command) *observability.Printer {
	if !o.verbose {
		return nil
	}
	return observability.NewPrinter(cmd.ErrOrStderr())
}

// writeResult marshals v, validates it against schemaName when the schema file
// can be found, and writes it to outPath or to stdout when outPath is empty.
func writeResult(cmd *cobra.Command, logger *zap.Logger, v any, schemaName, outPath string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if schemaPath := schemas.ResolveSchemaPath(schemaName); schemaPath != "" {
		if err := schemas.ValidateBytes(schemaPath, data); err != nil {
			return fmt.Errorf("result failed schema validation: %w", err)
		}
	} else {
		logger.Debug("schema not found, skipping output validation", zap.String("schema", schemaName))
	}

	if outPath == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	logger.Info("wrote result", zap.String("path", outPath))
	return nil
}

// readResume extracts the text of a résumé file (pdf, docx or plain text).
func readResume(path string) (types.Document, error) {
	doc, _, err := ingestion.IngestFile(path)
	if err != nil {
		return types.Document{}, fmt.Errorf("failed to read resume %s: %w", path, err)
	}
	return doc, nil
}

// loadJob reads a job opening. A .json file is decoded as a JobOpening and
// checked against its schema; any other file is taken as a plain-text description.
func loadJob(path string) (types.JobOpening, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.JobOpening{}, fmt.Errorf("failed to read job file: %w", err)
	}

	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return types.JobOpening{Description: string(data)}, nil
	}

	if schemaPath := schemas.ResolveSchemaPath(schemas.JobOpening); schemaPath != "" {
		if err := schemas.ValidateBytes(schemaPath, data); err != nil {
			return types.JobOpening{}, fmt.Errorf("invalid job file %s: %w", path, err)
		}
	}

	var job types.JobOpening
	if err := json.Unmarshal(data, &job); err != nil {
		return types.JobOpening{}, fmt.Errorf("failed to parse job JSON: %w", err)
	}
	return job, nil
}

// resolveJob loads the job from a file or imports it from a posting URL.
func resolveJob(ctx context.Context, logger *zap.Logger, jobFile, jobURL string) (types.JobOpening, error) {
	switch {
	case jobFile == "" && jobURL == "":
		return types.JobOpening{}, fmt.Errorf("either --job or --job-url must be provided")
	case jobFile != "" && jobURL != "":
		return types.JobOpening{}, fmt.Errorf("--job and --job-url are mutually exclusive; provide only one")
	case jobFile != "":
		return loadJob(jobFile)
	}

	job, _, err := ingestion.IngestJobURL(ctx, jobURL, nil, logger)
	if err != nil {
		return types.JobOpening{}, fmt.Errorf("failed to import job posting: %w", err)
	}
	return *job, nil
}
