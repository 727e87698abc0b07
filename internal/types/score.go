// Package types provides type definitions for structured data used throughout the resume-screener system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// EligibilityLevel is the coarse three-tier classification of a match score.
type EligibilityLevel string

// Eligibility levels
const (
	EligibilityHigh   EligibilityLevel = "High"
	EligibilityMedium EligibilityLevel = "Medium"
	EligibilityLow    EligibilityLevel = "Low"
)

// Eligibility thresholds (inclusive lower bounds)
const (
	HighEligibilityScore   = 70
	MediumEligibilityScore = 40
)

// EligibilityForScore maps a 0-100 score to its eligibility level.
func EligibilityForScore(score int) EligibilityLevel {
	switch {
	case score >= HighEligibilityScore:
		return EligibilityHigh
	case score >= MediumEligibilityScore:
		return EligibilityMedium
	default:
		return EligibilityLow
	}
}

// ScoreResult is the simple compatibility result.
type ScoreResult struct {
	Score           int      `json:"score"`
	MissingKeywords []string `json:"missing_keywords"`
}

// DetailedScoreResult is the full compatibility breakdown for a résumé against a job description.
type DetailedScoreResult struct {
	Score            int              `json:"score"`
	MatchedCount     int              `json:"matched_count"`
	TotalKeywords    int              `json:"total_keywords"`
	MissingTechnical []string         `json:"missing_technical"`
	MissingGeneral   []string         `json:"missing_general"`
	AllMissing       []string         `json:"all_missing"`
	EligibilityLevel EligibilityLevel `json:"eligibility_level"`
	Recommendation   string           `json:"recommendation"`
	// Message is set when the job description yields no keywords.
	Message string `json:"message,omitempty"`
}

// Severity classifies a quality finding.
type Severity string

// Finding severities
const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Finding is a single quality check outcome.
type Finding struct {
	Check    string   `json:"check"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Penalty  int      `json:"penalty"`
}

// QualityResult is the structural (ATS-style) quality score of a résumé.
type QualityResult struct {
	Score       int       `json:"score"`
	Suggestions []string  `json:"suggestions"`
	Findings    []Finding `json:"findings"`
	WordCount   int       `json:"word_count"`
}
