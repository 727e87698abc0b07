// Package skills classifies job keywords as technical skills.
package skills

import "strings"

// technicalVocabulary lists the terms that mark a keyword as a technical skill.
var technicalVocabulary = []string{
	"python", "java", "javascript", "c++", "sql", "html", "css", "react", "angular", "vue",
	"django", "flask", "spring", "nodejs", "aws", "azure", "docker", "kubernetes", "git",
	"machine", "learning", "tensorflow", "pytorch", "data", "analysis", "science",
	"cloud", "devops", "api", "rest", "database", "mongodb", "postgresql", "mysql",
}

var technicalSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(technicalVocabulary))
	for _, term := range technicalVocabulary {
		set[term] = struct{}{}
	}
	return set
}()

// IsTechnical reports whether token is, or contains as a substring, a term of the
// technical vocabulary. Substring matching is deliberate and favors recall:
// "metadata" and "restaurant" are both classified technical.
func IsTechnical(token string) bool {
	token = strings.ToLower(token)
	if _, ok := technicalSet[token]; ok {
		return true
	}
	for _, term := range technicalVocabulary {
		if strings.Contains(token, term) {
			return true
		}
	}
	return false
}

// SplitTechnical partitions keywords into technical and general lists, preserving order.
func SplitTechnical(keywords []string) (technical, general []string) {
	technical = make([]string, 0)
	general = make([]string, 0)
	for _, k := range keywords {
		if IsTechnical(k) {
			technical = append(technical, k)
		} else {
			general = append(general, k)
		}
	}
	return technical, general
}

// Vocabulary returns a copy of the technical vocabulary.
func Vocabulary() []string {
	out := make([]string, len(technicalVocabulary))
	copy(out, technicalVocabulary)
	return out
}
