package types

import (
	"strconv"
	"strings"
)

// Recommendation is the screening tier assigned to a candidate.
type Recommendation string

// Screening recommendations
const (
	RecommendSelect Recommendation = "Select"
	RecommendReview Recommendation = "Review"
	RecommendReject Recommendation = "Reject"
)

// Document is a single extracted résumé in a screening batch.
type Document struct {
	Filename string `json:"filename" validate:"required"`
	Content  string `json:"content"`
	// FileKey locates the stored original, when one was kept.
	FileKey string `json:"-"`
}

// JobOpening carries the job fields the screener reads.
// Vacancies is kept as raw text because it comes from free-form input.
type JobOpening struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	SkillsRequired string `json:"skills_required"`
	Vacancies      string `json:"vacancies"`
}

// Text returns the job description used for scoring: title, description and skills.
func (j JobOpening) Text() string {
	return j.Title + " " + j.Description + " " + j.SkillsRequired
}

// ParseVacancies parses a vacancy count, degrading to 1 for missing,
// malformed, zero or negative values.
func ParseVacancies(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// CandidateRecord is one ranked document in a screening batch.
type CandidateRecord struct {
	Filename       string              `json:"filename"`
	Content        string              `json:"content,omitempty"`
	Score          int                 `json:"score"`
	Recommendation Recommendation      `json:"recommendation"`
	Justification  string              `json:"justification"`
	Promoted       bool                `json:"promoted"`
	Details        DetailedScoreResult `json:"details"`
	FileKey        string              `json:"-"`
}

// ScreeningSummary aggregates a ranked batch.
type ScreeningSummary struct {
	Total        int     `json:"total"`
	Selected     int     `json:"selected"`
	Review       int     `json:"review"`
	Rejected     int     `json:"rejected"`
	Promoted     int     `json:"promoted"`
	AverageScore float64 `json:"average_score"`
	Vacancies    int     `json:"vacancies"`
}
