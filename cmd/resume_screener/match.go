package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/ranking"
	"github.com/jonathan/resume-screener/internal/schemas"
)

type matchOptions struct {
	resume   string
	job      string
	jobURL   string
	detailed bool
	out      string
}

func newMatchCmd(global *globalOptions) *cobra.Command {
	opts := &matchOptions{}
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Score a résumé against a job description",
		Long: `Compute the keyword compatibility of a résumé with a job. The job is either a
JSON job opening, a plain-text description or a posting URL. --detailed adds the
technical/general gap breakdown, eligibility level and recommendation.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMatch(cmd, global, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.resume, "resume", "r", "", "Path to the résumé (pdf, docx or txt)")
	cmd.Flags().StringVarP(&opts.job, "job", "j", "", "Path to a job opening (.json) or description (text)")
	cmd.Flags().StringVarP(&opts.jobURL, "job-url", "u", "", "URL of a job posting to import")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "Output the detailed breakdown")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write JSON to this file instead of stdout")
	_ = cmd.MarkFlagRequired("resume")
	return cmd
}

func runMatch(cmd *cobra.Command, global *globalOptions, opts *matchOptions) error {
	logger := global.logger()
	defer func() { _ = logger.Sync() }()

	doc, err := readResume(opts.resume)
	if err != nil {
		return err
	}
	job, err := resolveJob(cmd.Context(), logger, opts.job, opts.jobURL)
	if err != nil {
		return err
	}

	jobText := job.Text()
	detailed := ranking.ScoreDetailed(doc.Content, jobText)
	logger.Debug("scored resume",
		zap.String("resume", doc.Filename),
		zap.Int("score", detailed.Score),
		zap.Int("keywords", detailed.TotalKeywords),
	)

	if p := global.printer(cmd); p != nil {
		p.PrintScore(&detailed)
	}

	if opts.detailed {
		return writeResult(cmd, logger, detailed, schemas.DetailedScoreResult, opts.out)
	}
	return writeResult(cmd, logger, ranking.Score(doc.Content, jobText), schemas.ScoreResult, opts.out)
}
