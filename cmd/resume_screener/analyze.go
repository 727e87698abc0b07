package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/schemas"
	"github.com/jonathan/resume-screener/internal/validation"
)

type analyzeOptions struct {
	resume string
	out    string
}

func newAnalyzeCmd(global *globalOptions) *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Audit résumé structure and contact details",
		Long:  "Score a résumé from 0 to 100 on section coverage, contact details, action verbs and length, with suggestions.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, global, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.resume, "resume", "r", "", "Path to the résumé (pdf, docx or txt)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write JSON to this file instead of stdout")
	_ = cmd.MarkFlagRequired("resume")
	return cmd
}

func runAnalyze(cmd *cobra.Command, global *globalOptions, opts *analyzeOptions) error {
	logger := global.logger()
	defer func() { _ = logger.Sync() }()

	doc, err := readResume(opts.resume)
	if err != nil {
		return err
	}

	result := validation.AnalyzeQuality(doc.Content)
	logger.Debug("analyzed resume", zap.String("resume", doc.Filename), zap.Int("score", result.Score))

	if p := global.printer(cmd); p != nil {
		p.PrintQuality(&result)
	}
	return writeResult(cmd, logger, result, schemas.QualityResult, opts.out)
}
