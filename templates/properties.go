package templates

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/trigtutor/tutor/equation"
)

// PropertyReport is the computed value and explanation of every property.
type PropertyReport struct {
	Expression   equation.Expression
	Values       map[string]string
	Explanations map[string]string
}

// AnalyzeProperties reports amplitude, period, range and domain of expr.
// Period is stated in radians with the degree equivalent alongside.
func AnalyzeProperties(expr equation.Expression) PropertyReport {
	amp := math.Abs(expr.Amplitude)
	r := PropertyReport{
		Expression:   expr,
		Values:       make(map[string]string, 4),
		Explanations: make(map[string]string, 4),
	}

	r.Values["amplitude"] = equation.FormatNumber(amp)
	r.Explanations["amplitude"] = fmt.Sprintf("Amplitude = |%s| = %s",
		equation.FormatNumber(expr.Amplitude), equation.FormatNumber(amp))
	if expr.Function == equation.Tan {
		r.Explanations["amplitude"] += " (tan has no maximum, so this is a vertical stretch factor)"
	}

	numerator := "2π"
	if expr.Function == equation.Tan {
		numerator = "π"
	}
	if period, ok := expr.Period(equation.Radians); ok {
		degrees, _ := expr.Period(equation.Degrees)
		r.Values["period"] = fmt.Sprintf("%.2f radians (%s)", period, deg(degrees))
		r.Explanations["period"] = fmt.Sprintf("Period = %s / |%s| = %.2f radians",
			numerator, equation.FormatNumber(expr.Frequency), period)
	} else {
		r.Values["period"] = "undefined"
		r.Explanations["period"] = "The function is constant, so it has no period"
	}

	lo, hi, bounded := expr.Range()
	if bounded {
		r.Values["range"] = fmt.Sprintf("[%.2f, %.2f]", lo, hi)
		r.Explanations["range"] = fmt.Sprintf("Range = [%s ± %s] = [%.2f, %.2f]",
			equation.FormatNumber(expr.VerticalShift), equation.FormatNumber(amp), lo, hi)
	} else {
		r.Values["range"] = "all real numbers"
		r.Explanations["range"] = "tan takes every real value between its asymptotes, so the range is all real numbers"
	}

	r.Values["domain"] = "all real numbers"
	r.Explanations["domain"] = "sin and cos are defined for every real x, so the domain is all real numbers"
	if expr.Function == equation.Tan && !expr.IsConstant() {
		r.Values["domain"] = "all real x except the asymptotes"
		r.Explanations["domain"] = fmt.Sprintf("tan is undefined where %s equals π/2 + kπ",
			argumentText(expr))
	}
	return r
}

func argumentText(expr equation.Expression) string {
	s := expr
	s.Amplitude, s.VerticalShift = 1, 0
	str := s.String()
	return strings.TrimSuffix(strings.TrimPrefix(str, string(s.Function)+"("), ")")
}

func handleFunctionProperties(_ context.Context, m []string, _ string) (*Result, error) {
	prop := strings.ToLower(m[1])
	expr, err := equation.Parse(m[2])
	if err != nil {
		return nil, err
	}
	report := AnalyzeProperties(expr)
	return &Result{
		FinalAnswer: fmt.Sprintf("The %s is %s", prop, report.Values[prop]),
		Steps: []string{
			stepf(1, "Analyze function: y = %s", expr),
			stepf(2, "Extract parameters"),
			fmt.Sprintf("   amplitude a = %s, frequency b = %s, phase c = %s, vertical shift d = %s",
				equation.FormatNumber(expr.Amplitude), equation.FormatNumber(expr.Frequency),
				equation.FormatNumber(expr.Phase), equation.FormatNumber(expr.VerticalShift)),
			stepf(3, "Calculate %s", prop),
			stepf(4, "%s", report.Explanations[prop]),
		},
	}, nil
}
