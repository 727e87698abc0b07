package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecommend(t *testing.T) {
	tests := []struct {
		name    string
		score   int
		missing []string
		want    string
	}{
		{
			name:    "strong match ignores gaps",
			score:   70,
			missing: []string{"docker"},
			want:    "You are highly eligible for this position. Apply with confidence!",
		},
		{
			name:    "moderate with technical gaps names three",
			score:   55,
			missing: []string{"docker", "kubernetes", "python", "terraform"},
			want:    "You have a good foundation. Consider adding skills like: docker, kubernetes, python",
		},
		{
			name:  "moderate without technical gaps",
			score: 50,
			want:  "You meet most requirements. Highlight your relevant experience in your application.",
		},
		{
			name:    "weak with technical gaps",
			score:   30,
			missing: []string{"aws"},
			want:    "You may need to strengthen skills in: aws. Consider taking online courses.",
		},
		{
			name:  "weak without technical gaps",
			score: 49,
			want:  "You meet some requirements. Emphasize transferable skills and willingness to learn.",
		},
		{
			name:    "poor match",
			score:   29,
			missing: []string{"docker"},
			want:    "This position requires skills you may not have yet. Consider gaining experience in the key areas mentioned.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Recommend(tt.score, tt.missing))
		})
	}
}

func TestRecommend_DoesNotMutateInput(t *testing.T) {
	missing := []string{"docker", "kubernetes", "python", "terraform"}
	_ = Recommend(55, missing)
	assert.Equal(t, []string{"docker", "kubernetes", "python", "terraform"}, missing)
}
