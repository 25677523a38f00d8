package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExactValueTable(t *testing.T) {
	for _, a := range StandardAngles {
		for _, fn := range []string{"sin", "cos", "tan"} {
			v, ok := ExactValue(fn, float64(a))
			assert.True(t, ok, "%s(%d)", fn, a)
			assert.NotEmpty(t, v)
		}
	}
	v, _ := ExactValue("TAN", 90)
	assert.Equal(t, "undefined", v)

	_, ok := ExactValue("sin", 37)
	assert.False(t, ok)
	_, ok = ExactValue("sin", 30.5)
	assert.False(t, ok)
	_, ok = ExactValue("sec", 30)
	assert.False(t, ok)

	negatives := []struct {
		fn    string
		angle float64
		want  string
	}{
		{"sin", -30, "-1/2"},
		{"cos", -120, "-1/2"},
		{"tan", -45, "-1"},
		{"tan", -120, "√3"},
		{"sin", -180, "0"},
		{"tan", -90, "undefined"},
		{"cos", -60, "1/2"},
	}
	for _, tt := range negatives {
		v, ok := ExactValue(tt.fn, tt.angle)
		assert.True(t, ok, "%s(%v)", tt.fn, tt.angle)
		assert.Equal(t, tt.want, v, "%s(%v)", tt.fn, tt.angle)
	}
	_, ok = ExactValue("sin", -37)
	assert.False(t, ok)
}

func TestSolveBasic(t *testing.T) {
	tests := []struct {
		name      string
		fn        string
		value     float64
		principal []float64
		general   int
	}{
		{"sin zero", "sin", 0, []float64{0, 180}, 2},
		{"sin one", "sin", 1, []float64{90}, 1},
		{"sin negative", "sin", -0.5, []float64{210, 330}, 2},
		{"cos one", "cos", 1, []float64{0}, 1},
		{"cos minus one", "cos", -1, []float64{180}, 1},
		{"tan negative", "tan", -1, []float64{135, 315}, 1},
		{"tan large", "tan", 1e6, []float64{90, 270}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SolveBasic(tt.fn, tt.value)
			require.False(t, s.NoSolution)
			assert.InDeltaSlice(t, tt.principal, s.Principal, 1e-9)
			assert.Len(t, s.General, tt.general)
		})
	}

	assert.True(t, SolveBasic("cos", -1.5).NoSolution)
	assert.False(t, SolveBasic("tan", 5).NoSolution)
}

func TestDetectIdentity(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{"prove sin^2 x + cos^2 x = 1", "pythagorean"},
		{"show that 1 + cot²θ = csc²θ", "pythagorean_cot"},
		{"prove sin(2x) = 2sin x cos x", "double_angle_sin"},
		{"verify sin²θ + cos²θ = 1 using the unit circle", "pythagorean"},
		{"prove cos(2θ) = cos²θ - sin²θ", "double_angle_cos"},
		{"verify that 1 + tan^2 x = sec^2 x", "pythagorean_tan"},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			id, ok := DetectIdentity(tt.question)
			require.True(t, ok)
			assert.Equal(t, tt.want, id.Name)
		})
	}

	for _, q := range []string{
		"prove that the angles of a triangle sum to 180",
		"Prove that sin²θ/cos²θ = tan²θ",
		"prove that sin²θ = 1 - cos²θ + tan θ",
		"prove that sin²θ = 1",
		"show that tan x = sin x / cos x",
	} {
		t.Run("none/"+q, func(t *testing.T) {
			_, ok := DetectIdentity(q)
			assert.False(t, ok)
		})
	}
}

func TestFunctionsNamed(t *testing.T) {
	assert.Equal(t, map[string]bool{"sin": true, "cos": true}, functionsNamed("verify sin²θ + cos²θ = 1 using the unit circle"))
	assert.Equal(t, map[string]bool{"sin": true, "cos": true}, functionsNamed("2sinθcosθ"))
	assert.Equal(t, map[string]bool{"tan": true, "sec": true}, functionsNamed("tanx + secx"))
	assert.Empty(t, functionsNamed("the second tangent of a cosine"))
}
