package templates

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Solution is the outcome of solving f(x) = v over one turn.
type Solution struct {
	Function       string
	Target         float64
	ReferenceAngle float64
	// General holds the families, e.g. "x = 30° + 360°k".
	General []string
	// Principal holds the solutions in [0°, 360°).
	Principal []float64
	// NoSolution is set when |Target| > 1 for sin or cos.
	NoSolution bool
}

// SolveBasic solves fn(x) = value in degrees. The reference angle is taken
// from |value| and placed in the quadrants where fn has value's sign.
func SolveBasic(fn string, value float64) Solution {
	fn = strings.ToLower(fn)
	s := Solution{Function: fn, Target: value}
	abs := math.Abs(value)
	if (fn == "sin" || fn == "cos") && abs > 1 {
		s.NoSolution = true
		return s
	}

	var ref float64
	switch fn {
	case "sin":
		ref = math.Asin(abs)
	case "cos":
		ref = math.Acos(abs)
	default:
		ref = math.Atan(abs)
	}
	ref = math.Round(ref*180/math.Pi*100) / 100
	s.ReferenceAngle = ref

	var base []float64
	period := 360.0
	switch {
	case fn == "sin" && value >= 0:
		base = []float64{ref, 180 - ref}
	case fn == "sin":
		base = []float64{180 + ref, 360 - ref}
	case fn == "cos" && value >= 0:
		base = []float64{ref, 360 - ref}
	case fn == "cos":
		base = []float64{180 - ref, 180 + ref}
	case value >= 0:
		base, period = []float64{ref}, 180
	default:
		base, period = []float64{180 - ref}, 180
	}

	seen := make(map[float64]bool)
	for _, b := range base {
		b = math.Mod(b, 360)
		if seen[b] {
			continue
		}
		seen[b] = true
		s.General = append(s.General, fmt.Sprintf("x = %s + %s°k", deg(b), strconv.Itoa(int(period))))
	}
	for _, b := range base {
		for x := math.Mod(b, 360); x < 360; x += period {
			s.Principal = appendUnique(s.Principal, x)
			if period == 360 {
				break
			}
		}
	}
	sort.Float64s(s.Principal)
	return s
}

func appendUnique(xs []float64, v float64) []float64 {
	for _, x := range xs {
		if x == v {
			return xs
		}
	}
	return append(xs, v)
}

// parseValue reads "0.5", "-1/2", "√3/2" or "1/√2".
func parseValue(s string) (float64, bool) {
	s = strings.Join(strings.Fields(s), "")
	sign := 1.0
	if strings.HasPrefix(s, "-") {
		sign, s = -1, s[1:]
	}
	num, den := s, ""
	if i := strings.Index(s, "/"); i >= 0 {
		num, den = s[:i], s[i+1:]
	}
	n, ok := parseRoot(num)
	if !ok {
		return 0, false
	}
	if den != "" {
		d, ok := parseRoot(den)
		if !ok || d == 0 {
			return 0, false
		}
		n /= d
	}
	return sign * n, true
}

func parseRoot(s string) (float64, bool) {
	root := strings.HasPrefix(s, "√")
	s = strings.TrimPrefix(s, "√")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if root {
		v = math.Sqrt(v)
	}
	return v, true
}

func handleSolveEquation(_ context.Context, m []string, _ string) (*Result, error) {
	coefText, fn, valueText := strings.TrimSpace(m[1]), strings.ToLower(m[2]), strings.Join(strings.Fields(m[4]), "")
	switch arg := strings.Trim(strings.Join(strings.Fields(m[3]), ""), "()"); arg {
	case "", "x", "theta":
	default:
		return nil, fmt.Errorf("%w: only a bare x argument is solved, got %q", ErrNoMatch, arg)
	}
	value, ok := parseValue(valueText)
	if !ok {
		return nil, fmt.Errorf("%w: value %q", ErrNoMatch, valueText)
	}
	coef := 1.0
	switch coefText {
	case "", "+":
	case "-":
		coef = -1
	default:
		c, err := strconv.ParseFloat(coefText, 64)
		if err != nil || c == 0 {
			return nil, fmt.Errorf("%w: coefficient %q", ErrNoMatch, coefText)
		}
		coef = c
	}

	target := value / coef
	var first string
	if coef == 1 {
		first = stepf(1, "Solve %s(x) = %s", fn, valueText)
	} else {
		first = stepf(1, "Solve %s%s(x) = %s, so %s(x) = %s", coefText, fn, valueText, fn, fmtValue(target))
	}

	sol := SolveBasic(fn, target)
	if sol.NoSolution {
		return &Result{
			FinalAnswer: fmt.Sprintf("No solution: %s(x) only takes values between -1 and 1", fn),
			Steps: []string{
				first,
				stepf(2, "The range of %s(x) is [-1, 1]", fn),
				stepf(3, "%s lies outside this range, so the equation has no solution", fmtValue(target)),
			},
		}, nil
	}

	steps := []string{first, stepf(2, "Reference angle: %s", deg(sol.ReferenceAngle))}
	if target < 0 {
		steps = append(steps, fmt.Sprintf("   %s(x) is negative, so x lies in the quadrants where %s is negative", fn, fn))
	}
	steps = append(steps, stepf(3, "General solutions in degrees:"))
	for _, g := range sol.General {
		steps = append(steps, "   "+g)
	}

	principal := make([]string, len(sol.Principal))
	for i, p := range sol.Principal {
		principal[i] = deg(p)
	}
	return &Result{
		FinalAnswer: "Solutions: " + strings.Join(principal, ", "),
		Steps:       steps,
	}, nil
}

func fmtValue(v float64) string {
	return strconv.FormatFloat(math.Round(v*10000)/10000, 'f', -1, 64)
}
