package ranking

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-screener/internal/types"
)

// Screening tier boundaries (inclusive lower bounds)
const (
	SelectScore    = 70
	ReviewScore    = 50
	PromotionScore = 60
)

// Ranker scores a batch of résumés against one job opening and orders the result.
type Ranker struct {
	// Concurrency bounds the number of documents scored at once. Zero means runtime.NumCPU().
	Concurrency int
	Logger      *zap.Logger
}

// NewRanker creates a Ranker. A nil logger disables logging.
func NewRanker(logger *zap.Logger, concurrency int) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ranker{Concurrency: concurrency, Logger: logger}
}

// Rank scores every document against job, sorts the records by score
// (descending, ties kept in input order) and promotes the top candidates
// to Select according to the job's vacancy count.
// The only error returned is the context's.
func (r *Ranker) Rank(ctx context.Context, job types.JobOpening, docs []types.Document) ([]types.CandidateRecord, error) {
	records := make([]types.CandidateRecord, len(docs))
	if len(docs) == 0 {
		return records, nil
	}

	jobText := job.Text()
	limit := r.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records[i] = scoreDocument(docs[i], jobText)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to rank candidates: %w", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Score > records[j].Score
	})

	vacancies := types.ParseVacancies(job.Vacancies)
	promoteTop(records, vacancies)

	summary := Summarize(records)
	summary.Vacancies = vacancies
	r.logger().Info("ranked candidates",
		zap.String("job_title", job.Title),
		zap.Int("total", summary.Total),
		zap.Int("selected", summary.Selected),
		zap.Int("review", summary.Review),
		zap.Int("rejected", summary.Rejected),
		zap.Int("promoted", summary.Promoted),
		zap.Int("vacancies", vacancies),
	)
	return records, nil
}

func (r *Ranker) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// Rank is a convenience wrapper around a default Ranker.
func Rank(ctx context.Context, job types.JobOpening, docs []types.Document) ([]types.CandidateRecord, error) {
	return NewRanker(nil, 0).Rank(ctx, job, docs)
}

// scoreDocument builds the initial, unpromoted record for one document.
func scoreDocument(doc types.Document, jobText string) types.CandidateRecord {
	details := ScoreDetailed(doc.Content, jobText)
	rec := types.CandidateRecord{
		Filename: doc.Filename,
		Content:  doc.Content,
		Score:    details.Score,
		Details:  details,
		FileKey:  doc.FileKey,
	}

	switch {
	case details.Score >= SelectScore:
		rec.Recommendation = types.RecommendSelect
		rec.Justification = fmt.Sprintf("Strong match (%d%%). Candidate possesses most required skills.", details.Score)
	case details.Score >= ReviewScore:
		rec.Recommendation = types.RecommendReview
		rec.Justification = fmt.Sprintf("Moderate match (%d%%). Consider for interview to assess fit.", details.Score)
	default:
		rec.Recommendation = types.RecommendReject
		missing := strings.Join(capList(details.MissingTechnical, maxNamedSkills), ", ")
		if missing == "" {
			missing = "multiple areas"
		}
		rec.Justification = fmt.Sprintf("Low match (%d%%). Missing key skills: %s.", details.Score, missing)
	}
	return rec
}

// promoteTop marks the first vacancies records that score at least
// PromotionScore as Select. records must already be sorted.
func promoteTop(records []types.CandidateRecord, vacancies int) {
	for i := range records {
		if i >= vacancies {
			break
		}
		rec := &records[i]
		if rec.Score < PromotionScore {
			continue
		}
		if rec.Recommendation == types.RecommendSelect {
			continue
		}
		rec.Recommendation = types.RecommendSelect
		rec.Justification = fmt.Sprintf("Top %d candidate (%d%%). Meets requirements.", vacancies, rec.Score)
		rec.Promoted = true
	}
}

// Summarize counts records per recommendation and averages their scores.
func Summarize(records []types.CandidateRecord) types.ScreeningSummary {
	s := types.ScreeningSummary{Total: len(records)}
	if len(records) == 0 {
		return s
	}

	total := 0
	for _, rec := range records {
		total += rec.Score
		switch rec.Recommendation {
		case types.RecommendSelect:
			s.Selected++
		case types.RecommendReview:
			s.Review++
		case types.RecommendReject:
			s.Rejected++
		}
		if rec.Promoted {
			s.Promoted++
		}
	}
	s.AverageScore = math.Round(float64(total)/float64(len(records))*10) / 10
	return s
}
