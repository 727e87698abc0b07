// Package validation scores résumés for structural completeness, independent of any job.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/resume-screener/internal/types"
)

// Penalties applied by AnalyzeQuality
const (
	maxQualityScore       = 100
	missingSectionPenalty = 10
	missingEmailPenalty   = 20
	missingPhonePenalty   = 5
	weakLanguagePenalty   = 10
	shortResumePenalty    = 10
)

// Word count bounds for the length check
const (
	MinResumeWords = 200
	MaxResumeWords = 1500
)

// minActionVerbs is the number of distinct action verbs a résumé should use.
const minActionVerbs = 3

// Check names reported in findings
const (
	CheckSections    = "sections"
	CheckEmail       = "email"
	CheckPhone       = "phone"
	CheckActionVerbs = "action_verbs"
	CheckLength      = "length"
)

type section struct {
	name     string
	keywords []string
}

// requiredSections is evaluated in order; a section is present when any keyword
// occurs as a substring of the lowercased text.
var requiredSections = []section{
	{"Education", []string{"education", "academic", "degree", "university", "college"}},
	{"Experience", []string{"experience", "work history", "employment", "internship"}},
	{"Skills", []string{"skills", "technologies", "competencies", "proficiencies"}},
	{"Projects", []string{"projects", "undertakings", "portfolio"}},
	{"Contact", []string{"email", "phone", "contact", "address"}},
}

var actionVerbs = []string{
	"led", "managed", "developed", "created", "implemented",
	"designed", "analyzed", "solved", "achieved", "improved",
}

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\b\d{10}\b|\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
)

// AnalyzeQuality scores a résumé from 0 to 100 on section coverage, contact
// details, action-verb usage and length. Suggestions are ordered: sections,
// email, phone, verbs, length.
func AnalyzeQuality(text string) types.QualityResult {
	lower := strings.ToLower(text)
	words := len(strings.Fields(text))

	findings := make([]types.Finding, 0, 5)
	findings = append(findings, checkSections(lower))
	if f, ok := checkEmail(text); ok {
		findings = append(findings, f)
	}
	if f, ok := checkPhone(text); ok {
		findings = append(findings, f)
	}
	findings = append(findings, checkActionVerbs(lower))
	findings = append(findings, checkLength(words))

	score := maxQualityScore
	suggestions := make([]string, 0, len(findings))
	for _, f := range findings {
		score -= f.Penalty
		suggestions = append(suggestions, f.Message)
	}
	if score < 0 {
		score = 0
	}

	return types.QualityResult{
		Score:       score,
		Suggestions: suggestions,
		Findings:    findings,
		WordCount:   words,
	}
}

// MissingSections returns the names of required sections absent from text, in check order.
func MissingSections(text string) []string {
	lower := strings.ToLower(text)
	missing := make([]string, 0)
	for _, s := range requiredSections {
		if !containsAny(lower, s.keywords) {
			missing = append(missing, s.name)
		}
	}
	return missing
}

// FoundActionVerbs returns the distinct action verbs present in text.
func FoundActionVerbs(text string) []string {
	lower := strings.ToLower(text)
	found := make([]string, 0)
	for _, v := range actionVerbs {
		if strings.Contains(lower, v) {
			found = append(found, v)
		}
	}
	return found
}

func checkSections(lower string) types.Finding {
	missing := MissingSections(lower)
	if len(missing) == 0 {
		return types.Finding{
			Check:    CheckSections,
			Severity: types.SeverityInfo,
			Message:  "Structure: All key sections detected. Good job!",
		}
	}
	return types.Finding{
		Check:    CheckSections,
		Severity: types.SeverityWarning,
		Message:  fmt.Sprintf("Missing important sections: %s", strings.Join(missing, ", ")),
		Penalty:  missingSectionPenalty * len(missing),
	}
}

// checkEmail reports a finding only when no email address is present.
func checkEmail(text string) (types.Finding, bool) {
	if emailPattern.MatchString(text) {
		return types.Finding{}, false
	}
	return types.Finding{
		Check:    CheckEmail,
		Severity: types.SeverityCritical,
		Message:  "Critical: No email address found. Recruiters cannot contact you.",
		Penalty:  missingEmailPenalty,
	}, true
}

// checkPhone reports a finding only when no phone number is present.
func checkPhone(text string) (types.Finding, bool) {
	if phonePattern.MatchString(text) {
		return types.Finding{}, false
	}
	return types.Finding{
		Check:    CheckPhone,
		Severity: types.SeverityWarning,
		Message:  "Warning: No clear phone number found.",
		Penalty:  missingPhonePenalty,
	}, true
}

func checkActionVerbs(lower string) types.Finding {
	found := FoundActionVerbs(lower)
	if len(found) < minActionVerbs {
		return types.Finding{
			Check:    CheckActionVerbs,
			Severity: types.SeverityWarning,
			Message:  fmt.Sprintf("Weak language: Try using more action verbs like %s.", strings.Join(actionVerbs[:5], ", ")),
			Penalty:  weakLanguagePenalty,
		}
	}
	return types.Finding{
		Check:    CheckActionVerbs,
		Severity: types.SeverityInfo,
		Message:  fmt.Sprintf("Language: Good use of action verbs (%d found).", len(found)),
	}
}

func checkLength(words int) types.Finding {
	switch {
	case words < MinResumeWords:
		return types.Finding{
			Check:    CheckLength,
			Severity: types.SeverityWarning,
			Message:  "Length: Resume seems too short. Elaborate on your experiences.",
			Penalty:  shortResumePenalty,
		}
	case words > MaxResumeWords:
		return types.Finding{
			Check:    CheckLength,
			Severity: types.SeverityWarning,
			Message:  "Length: Resume might be too long. Keep it concise.",
		}
	default:
		return types.Finding{
			Check:    CheckLength,
			Severity: types.SeverityInfo,
			Message:  "Length: Good word count.",
		}
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
