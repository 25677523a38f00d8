package templates

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ladderLength finds a stated ladder length such as "a 5 m ladder" or
// "ladder of length 4.5 metres".
var ladderLength = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:m|metres|meters|ft|feet|cm)\b`)

func radians(d float64) float64 { return d * math.Pi / 180 }

func handleLadder(_ context.Context, m []string, question string) (*Result, error) {
	angle, err := strconv.ParseFloat(m[1], 64)
	if err != nil || angle <= 0 || angle >= 90 {
		return nil, fmt.Errorf("%w: ladder angle %q", ErrNoMatch, m[1])
	}
	want := strings.ToLower(m[2])
	a := deg(angle)
	sinV, cosV := math.Sin(radians(angle)), math.Cos(radians(angle))

	steps := []string{
		stepf(1, "Ladder problem with angle %s", a),
		stepf(2, "Using trigonometric ratios:"),
		fmt.Sprintf("   - sin(%s) = opposite/hypotenuse", a),
		fmt.Sprintf("   - cos(%s) = adjacent/hypotenuse", a),
		fmt.Sprintf("   - tan(%s) = opposite/adjacent", a),
	}

	if lm := ladderLength.FindStringSubmatch(question); lm != nil && want != "length" {
		length, _ := strconv.ParseFloat(lm[1], 64)
		ratio, fn := sinV, "sin"
		if want != "height" {
			ratio, fn = cosV, "cos"
		}
		value := length * ratio
		steps = append(steps,
			stepf(3, "The ladder is the hypotenuse: L = %s", lm[1]),
			stepf(4, "%s = L × %s(%s) = %s × %.3f = %.2f", want, fn, a, lm[1], ratio, value),
		)
		return &Result{
			FinalAnswer: fmt.Sprintf("%s = %.2f", want, value),
			Steps:       steps,
		}, nil
	}

	steps = append(steps,
		stepf(3, "To find %s, we need the ladder length", want),
		stepf(4, "With ladder length L:"),
		fmt.Sprintf("   - Height = L × sin(%s)", a),
		fmt.Sprintf("   - Distance from wall = L × cos(%s)", a),
	)
	var answer string
	switch want {
	case "height":
		answer = fmt.Sprintf("For a ladder of length L: height = L × %.3f", sinV)
	case "length":
		answer = fmt.Sprintf("Ladder length = height ÷ sin(%s) = height ÷ %.3f", a, sinV)
	default:
		answer = fmt.Sprintf("For a ladder of length L: %s = L × %.3f", want, cosV)
	}
	return &Result{FinalAnswer: answer, Steps: steps}, nil
}

func handleAngleOfElevation(_ context.Context, m []string, _ string) (*Result, error) {
	angle, err := strconv.ParseFloat(m[1], 64)
	if err != nil || angle <= 0 || angle >= 90 {
		return nil, fmt.Errorf("%w: elevation angle %q", ErrNoMatch, m[1])
	}
	a := deg(angle)
	return &Result{
		FinalAnswer: fmt.Sprintf("tan(%s) = %.3f. Provide either height or distance for complete solution.",
			a, math.Tan(radians(angle))),
		Steps: []string{
			stepf(1, "Angle of elevation = %s", a),
			stepf(2, "Using tangent ratio: tan(angle) = opposite/adjacent"),
			stepf(3, "tan(%s) = height/distance", a),
			stepf(4, "Need either height or distance to solve completely"),
			stepf(5, "With distance D: height = D × tan(%s)", a),
			stepf(6, "With height H: distance = H / tan(%s)", a),
		},
	}, nil
}

func handleTriangle(_ context.Context, m []string, _ string) (*Result, error) {
	angle, err := strconv.ParseFloat(m[1], 64)
	if err != nil || angle <= 0 || angle >= 90 {
		return nil, fmt.Errorf("%w: triangle angle %q", ErrNoMatch, m[1])
	}
	return &Result{
		FinalAnswer: "Need at least one side length to find the " + strings.ToLower(m[2]),
		Steps: []string{
			stepf(1, "Right triangle with angle %s", deg(angle)),
			stepf(2, "Using SOH CAH TOA:"),
			"   - Sine: sin(θ) = Opposite/Hypotenuse",
			"   - Cosine: cos(θ) = Adjacent/Hypotenuse",
			"   - Tangent: tan(θ) = Opposite/Adjacent",
			stepf(3, "Need more information about side lengths"),
			stepf(4, "With one known side, use appropriate trig ratio"),
		},
	}, nil
}
