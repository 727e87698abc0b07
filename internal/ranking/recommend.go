package ranking

import (
	"fmt"
	"strings"
)

// Recommendation tier boundaries (inclusive lower bounds)
const (
	strongRecommendScore   = 70
	moderateRecommendScore = 50
	weakRecommendScore     = 30
)

const maxNamedSkills = 3

// Recommend produces advice for an applicant from a match score and the
// technical keywords they are missing. Up to three missing skills are named.
func Recommend(score int, missingTechnical []string) string {
	named := strings.Join(capList(missingTechnical, maxNamedSkills), ", ")

	switch {
	case score >= strongRecommendScore:
		return "You are highly eligible for this position. Apply with confidence!"
	case score >= moderateRecommendScore:
		if len(missingTechnical) > 0 {
			return fmt.Sprintf("You have a good foundation. Consider adding skills like: %s", named)
		}
		return "You meet most requirements. Highlight your relevant experience in your application."
	case score >= weakRecommendScore:
		if len(missingTechnical) > 0 {
			return fmt.Sprintf("You may need to strengthen skills in: %s. Consider taking online courses.", named)
		}
		return "You meet some requirements. Emphasize transferable skills and willingness to learn."
	default:
		return "This position requires skills you may not have yet. Consider gaining experience in the key areas mentioned."
	}
}
