package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/ingestion"
	"github.com/jonathan/resume-screener/internal/ranking"
	"github.com/jonathan/resume-screener/internal/schemas"
	"github.com/jonathan/resume-screener/internal/types"
)

type screenOptions struct {
	job            string
	jobURL         string
	archive        string
	dir            string
	vacancies      int
	concurrency    int
	includeContent bool
	out            string
}

// screenOutput is the JSON document written by the screen command.
type screenOutput struct {
	Job        string                  `json:"job,omitempty"`
	Candidates []types.CandidateRecord `json:"candidates"`
	Summary    types.ScreeningSummary  `json:"summary"`
	Skipped    []ingestion.SkippedFile `json:"skipped"`
}

func newScreenCmd(global *globalOptions) *cobra.Command {
	opts := &screenOptions{}
	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Rank a batch of résumés against a job opening",
		Long: `Extract every résumé in a zip archive or directory, score each against the job,
sort by score and promote the top candidates to Select within the vacancy count.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScreen(cmd, global, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.job, "job", "j", "", "Path to a job opening (.json) or description (text)")
	cmd.Flags().StringVarP(&opts.jobURL, "job-url", "u", "", "URL of a job posting to import")
	cmd.Flags().StringVarP(&opts.archive, "archive", "a", "", "Zip archive of résumés")
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "Directory of résumés")
	cmd.Flags().IntVar(&opts.vacancies, "vacancies", 0, "Override the job's vacancy count")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "Scoring workers (0 = one per CPU)")
	cmd.Flags().BoolVar(&opts.includeContent, "include-content", false, "Keep extracted résumé text in the output")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write JSON to this file instead of stdout")
	return cmd
}

// loadBatch extracts documents from exactly one of archive or dir.
func loadBatch(archive, dir string) (*ingestion.ArchiveResult, error) {
	switch {
	case archive == "" && dir == "":
		return nil, fmt.Errorf("either --archive or --dir must be provided")
	case archive != "" && dir != "":
		return nil, fmt.Errorf("--archive and --dir are mutually exclusive; provide only one")
	case dir != "":
		return ingestion.IngestDir(dir)
	}

	data, err := os.ReadFile(archive)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	return ingestion.ExtractArchive(data)
}

func runScreen(cmd *cobra.Command, global *globalOptions, opts *screenOptions) error {
	logger := global.logger()
	defer func() { _ = logger.Sync() }()

	if opts.vacancies < 0 {
		return fmt.Errorf("--vacancies must be positive, got %d", opts.vacancies)
	}

	job, err := resolveJob(cmd.Context(), logger, opts.job, opts.jobURL)
	if err != nil {
		return err
	}
	if opts.vacancies > 0 {
		job.Vacancies = strconv.Itoa(opts.vacancies)
	}

	batch, err := loadBatch(opts.archive, opts.dir)
	if err != nil {
		return err
	}
	for _, s := range batch.Skipped {
		logger.Info("skipped file", zap.String("name", s.Name), zap.String("reason", s.Reason), zap.Error(s.Err))
	}

	records, err := ranking.NewRanker(logger, opts.concurrency).Rank(cmd.Context(), job, batch.Documents)
	if err != nil {
		return fmt.Errorf("failed to rank candidates: %w", err)
	}
	if !opts.includeContent {
		for i := range records {
			records[i].Content = ""
		}
	}

	summary := ranking.Summarize(records)
	summary.Vacancies = types.ParseVacancies(job.Vacancies)

	if p := global.printer(cmd); p != nil {
		p.PrintCandidates(records, summary)
		p.PrintSkipped(batch.Skipped)
	}

	return writeResult(cmd, logger, screenOutput{
		Job:        job.Title,
		Candidates: records,
		Summary:    summary,
		Skipped:    batch.Skipped,
	}, schemas.CandidateRecords, opts.out)
}
