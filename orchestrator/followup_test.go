package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepReference(t *testing.T) {
	tests := []struct {
		q    string
		want int
		ok   bool
	}{
		{"explain step 2", 2, true},
		{"Can you explain step 3 please?", 3, true},
		{"What is step 1?", 1, true},
		{"what's step 4", 4, true},
		{"Why step 2?", 2, true},
		{"step 5 explanation", 5, true},
		{"Step 2 again", 2, true},
		{"step 3?", 3, true},
		{"I don't understand step 12", 12, true},
		{"elaborate on step #2", 2, true},
		{"solve sin x = 0.5 step by step", 0, false},
		{"explain step 0", 0, false},
		{"explain the unit circle", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			n, ok := StepReference(tt.q)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestIsFollowUp(t *testing.T) {
	assert.True(t, IsFollowUp("Explain again"))
	assert.True(t, IsFollowUp("I still don't understand"))
	assert.True(t, IsFollowUp("can you go through it again?"))
	assert.False(t, IsFollowUp("Solve sin x = 0.5"))
}

func TestIsReset(t *testing.T) {
	tests := []struct {
		q    string
		want bool
	}{
		{"reset", true},
		{"Reset!", true},
		{"  new question ", true},
		{"start over please", true},
		{"please clear conversation.", true},
		{"clear the fraction 1/sin x", false},
		{"reset the calculator to degrees and solve sin x = 1", false},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			assert.Equal(t, tt.want, IsReset(tt.q))
		})
	}
}
