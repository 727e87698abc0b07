// Package ranking scores résumés against job descriptions and ranks candidate batches.
package ranking

import (
	"math"

	"github.com/jonathan/resume-screener/internal/parsing"
	"github.com/jonathan/resume-screener/internal/skills"
	"github.com/jonathan/resume-screener/internal/types"
)

// Caps on the missing-keyword lists carried in results
const (
	maxMissingKeywords = 10
	maxMissingPerGroup = 5
)

// ShortJobMessage is reported when a job description yields no keywords.
const ShortJobMessage = "Job description too short to analyze."

// comparison is the shared intermediate result of both scoring modes.
type comparison struct {
	total   int
	matched int
	missing []string // alphabetical, inherited from parsing.Tokenize
}

func compare(resumeText, jobText string) comparison {
	keywords := parsing.Tokenize(jobText)
	resumeWords := parsing.WordSet(resumeText)

	c := comparison{total: len(keywords), missing: make([]string, 0)}
	for _, k := range keywords {
		if _, ok := resumeWords[k]; ok {
			c.matched++
		} else {
			c.missing = append(c.missing, k)
		}
	}
	return c
}

// percent converts matched/total into a 0-100 integer, rounding half to even.
func (c comparison) percent() int {
	if c.total == 0 {
		return 0
	}
	return int(math.RoundToEven(100 * float64(c.matched) / float64(c.total)))
}

// Score returns the share of job keywords present in the résumé along with up to
// ten missing keywords in alphabetical order.
func Score(resumeText, jobText string) types.ScoreResult {
	c := compare(resumeText, jobText)
	return types.ScoreResult{
		Score:           c.percent(),
		MissingKeywords: capList(c.missing, maxMissingKeywords),
	}
}

// ScoreDetailed returns the full breakdown: counts, missing keywords split into
// technical and general groups, eligibility level and a recommendation.
func ScoreDetailed(resumeText, jobText string) types.DetailedScoreResult {
	c := compare(resumeText, jobText)
	score := c.percent()
	technical, general := skills.SplitTechnical(c.missing)
	technical = capList(technical, maxMissingPerGroup)

	result := types.DetailedScoreResult{
		Score:            score,
		MatchedCount:     c.matched,
		TotalKeywords:    c.total,
		MissingTechnical: technical,
		MissingGeneral:   capList(general, maxMissingPerGroup),
		AllMissing:       capList(c.missing, maxMissingKeywords),
		EligibilityLevel: types.EligibilityForScore(score),
		Recommendation:   Recommend(score, technical),
	}
	if c.total == 0 {
		result.Message = ShortJobMessage
	}
	return result
}

func capList(in []string, n int) []string {
	if len(in) > n {
		in = in[:n]
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
