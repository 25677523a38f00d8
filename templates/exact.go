package templates

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// StandardAngles are the angles, in degrees, with tabulated exact values.
var StandardAngles = []int{0, 30, 45, 60, 90, 120, 135, 150, 180}

var exactValues = map[int]map[string]string{
	0:   {"sin": "0", "cos": "1", "tan": "0"},
	30:  {"sin": "1/2", "cos": "√3/2", "tan": "1/√3"},
	45:  {"sin": "√2/2", "cos": "√2/2", "tan": "1"},
	60:  {"sin": "√3/2", "cos": "1/2", "tan": "√3"},
	90:  {"sin": "1", "cos": "0", "tan": "undefined"},
	120: {"sin": "√3/2", "cos": "-1/2", "tan": "-√3"},
	135: {"sin": "√2/2", "cos": "-√2/2", "tan": "-1"},
	150: {"sin": "1/2", "cos": "-√3/2", "tan": "-1/√3"},
	180: {"sin": "0", "cos": "-1", "tan": "0"},
}

// ExactValue looks up fn at angle degrees. Negative angles use symmetry:
// cos is even, sin and tan are odd. ok is false for angles outside the
// table; no approximation is ever returned.
func ExactValue(fn string, angle float64) (value string, ok bool) {
	fn = strings.ToLower(fn)
	if angle < 0 {
		value, ok = ExactValue(fn, -angle)
		if !ok || fn == "cos" {
			return value, ok
		}
		return negate(value), true
	}
	if angle != float64(int(angle)) {
		return "", false
	}
	row, ok := exactValues[int(angle)]
	if !ok {
		return "", false
	}
	value, ok = row[fn]
	return value, ok
}

func negate(value string) string {
	switch {
	case value == "0", value == "undefined":
		return value
	case strings.HasPrefix(value, "-"):
		return value[1:]
	}
	return "-" + value
}

func handleExactValue(_ context.Context, m []string, _ string) (*Result, error) {
	fn := strings.ToLower(m[1])
	angle, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: angle %q", ErrNoMatch, m[2])
	}
	a := deg(angle)
	call := fmt.Sprintf("%s(%s)", fn, a)

	value, ok := ExactValue(fn, angle)
	if !ok {
		return &Result{
			FinalAnswer: fmt.Sprintf("%s has no standard exact value: %s is not a standard angle", call, a),
			Steps: []string{
				stepf(1, "Finding exact value of %s", call),
				stepf(2, "%s is not a standard special angle", a),
				stepf(3, "Exact values are only tabulated for %s", standardAngleList()),
				stepf(4, "A decimal approximation needs a calculator, so no exact value is given"),
			},
		}, nil
	}
	if angle < 0 {
		pos := deg(-angle)
		rule := fmt.Sprintf("%s is odd: %s(-x) = -%s(x)", fn, fn, fn)
		if fn == "cos" {
			rule = "cos is even: cos(-x) = cos(x)"
		}
		return &Result{
			FinalAnswer: fmt.Sprintf("%s = %s", call, value),
			Steps: []string{
				stepf(1, "Finding exact value of %s", call),
				stepf(2, "%s", rule),
				stepf(3, "%s is a special angle", pos),
				stepf(4, "Therefore, %s = %s", call, value),
			},
		}, nil
	}
	return &Result{
		FinalAnswer: fmt.Sprintf("%s = %s", call, value),
		Steps: []string{
			stepf(1, "Finding exact value of %s", call),
			stepf(2, "%s is a special angle", a),
			stepf(3, "Using trigonometric ratios for special angles"),
			stepf(4, "Standard exact value for %s", a),
			stepf(5, "Therefore, %s = %s", call, value),
		},
	}, nil
}

func standardAngleList() string {
	parts := make([]string, len(StandardAngles))
	for i, a := range StandardAngles {
		parts[i] = strconv.Itoa(a) + "°"
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}
