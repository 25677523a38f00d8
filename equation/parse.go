package equation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// coefficient immediately before the function name
	trailingCoefficient = regexp.MustCompile(`[+-]?(?:\d+\.?\d*|\.\d+)?(?:pi)?(?:/\d+(?:\.\d+)?)?$`)
	// argument written without parentheses: sinx, sin2x, sinx/2, sin30
	bareArgument = regexp.MustCompile(`^(?:[+-]?(?:\d+\.?\d*|\.\d+)?x(?:/\d+(?:\.\d+)?)?|\d+\.?\d*)`)

	normalizer = strings.NewReplacer(
		"θ", "x", "theta", "x",
		"π", "pi",
		"−", "-", "–", "-",
		"*", "", "·", "", "×", "",
		"°", "",
	)
)

// Parse extracts the canonical parameters from an expression. The first
// trig function found (leftmost) is the one modeled; any further function
// clauses are ignored. Errors wrap ErrUnparsableExpression.
func Parse(expression string) (Expression, error) {
	s := normalize(expression)
	fn, idx := firstFunction(s)
	if idx < 0 {
		return Expression{}, fmt.Errorf("%w: no sin, cos or tan in %q", ErrUnparsableExpression, expression)
	}
	expr := Expression{Function: fn, Amplitude: 1, Frequency: 1}

	prefix := s[:idx]
	coef := trailingCoefficient.FindString(prefix)
	amp, ok := parseCoefficient(coef)
	if !ok {
		return Expression{}, fmt.Errorf("%w: bad amplitude %q in %q", ErrUnparsableExpression, coef, expression)
	}
	expr.Amplitude = amp
	prefix = strings.TrimSuffix(prefix, coef)

	inner, rest, err := splitArgument(s[idx+len(fn):])
	if err != nil {
		return Expression{}, fmt.Errorf("%w: %v in %q", ErrUnparsableExpression, err, expression)
	}
	freq, phase, hasX, err := parseLinear(inner)
	if err != nil {
		return Expression{}, fmt.Errorf("%w: %v in %q", ErrUnparsableExpression, err, expression)
	}
	if hasX {
		expr.Frequency = freq
	} else {
		expr.Frequency = 0
		expr.Constant = true
	}
	expr.Phase = phase
	expr.VerticalShift = sumNumericTerms(prefix) + sumNumericTerms(rest)
	return expr, nil
}

// MustParse is Parse for package-level fixtures; it panics on error.
func MustParse(expression string) Expression {
	e, err := Parse(expression)
	if err != nil {
		panic(err)
	}
	return e
}

func normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), "")
	s = normalizer.Replace(s)
	for _, p := range []string{"y=", "f(x)=", "f(x):=", "f:x->", "f:x→"} {
		if strings.HasPrefix(s, p) {
			s = s[len(p):]
			break
		}
	}
	return s
}

func firstFunction(s string) (Function, int) {
	best, at := Function(""), -1
	for _, fn := range Functions {
		if i := strings.Index(s, string(fn)); i >= 0 && (at < 0 || i < at) {
			best, at = fn, i
		}
	}
	return best, at
}

// splitArgument separates the function argument from whatever follows it.
// A division applied to the whole function value is not modeled and is
// rejected rather than dropped.
func splitArgument(s string) (inner, rest string, err error) {
	if strings.HasPrefix(s, "(") {
		depth := 0
		for i, r := range s {
			switch r {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					inner, rest = s[1:i], s[i+1:]
					return inner, rest, checkTrailingDivisor(rest)
				}
			}
		}
		return "", "", fmt.Errorf("unbalanced parentheses")
	}
	arg := bareArgument.FindString(s)
	if arg == "" {
		// "sin" alone is read as sin(x)
		return "x", s, checkTrailingDivisor(s)
	}
	rest = s[len(arg):]
	return arg, rest, checkTrailingDivisor(rest)
}

func checkTrailingDivisor(rest string) error {
	if strings.HasPrefix(rest, "/") {
		return fmt.Errorf("unsupported division %q after the function", rest)
	}
	return nil
}

// parseLinear reads "a*x + b" style content. hasX reports whether x occurred.
func parseLinear(s string) (freq, phase float64, hasX bool, err error) {
	if s == "" {
		return 0, 0, false, fmt.Errorf("empty argument")
	}
	for _, term := range splitTerms(s) {
		if i := strings.Index(term, "x"); i >= 0 {
			c, ok := parseCoefficient(term[:i])
			if !ok {
				return 0, 0, false, fmt.Errorf("bad frequency %q", term)
			}
			if tail := term[i+1:]; tail != "" {
				d, ok := parseNumber(strings.TrimPrefix(tail, "/"))
				if !strings.HasPrefix(tail, "/") || !ok || d == 0 {
					return 0, 0, false, fmt.Errorf("bad frequency %q", term)
				}
				c /= d
			}
			freq += c
			hasX = true
			continue
		}
		v, ok := parseNumber(term)
		if !ok {
			return 0, 0, false, fmt.Errorf("bad phase term %q", term)
		}
		phase += v
	}
	return freq, phase, hasX, nil
}

// splitTerms splits at top-level + and - signs, keeping the sign with its term.
func splitTerms(s string) []string {
	var terms []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case '+', '-':
			if depth == 0 && i > start && !strings.ContainsRune("+-/(", rune(s[i-1])) {
				terms = append(terms, s[start:i])
				start = i
			}
		}
	}
	if start < len(s) {
		terms = append(terms, s[start:])
	}
	return terms
}

// sumNumericTerms adds every standalone numeric term and ignores the rest,
// such as a second function clause.
func sumNumericTerms(s string) float64 {
	var sum float64
	for _, term := range splitTerms(s) {
		if v, ok := parseNumber(term); ok {
			sum += v
		}
	}
	return sum
}

// parseCoefficient applies the empty ⇒ 1, "-" ⇒ -1 convention.
func parseCoefficient(s string) (float64, bool) {
	switch s {
	case "", "+":
		return 1, true
	case "-":
		return -1, true
	}
	return parseNumber(s)
}

// parseNumber accepts signed decimals, fractions and multiples of pi:
// "3", "-0.5", "1/2", "pi", "2pi/3".
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	sign := 1.0
	switch s[0] {
	case '-':
		sign, s = -1, s[1:]
	case '+':
		s = s[1:]
	}
	num, den := s, ""
	if i := strings.Index(s, "/"); i >= 0 {
		num, den = s[:i], s[i+1:]
	}
	v := 1.0
	if strings.HasSuffix(num, "pi") {
		num = strings.TrimSuffix(num, "pi")
		v = math.Pi
		if num == "" {
			num = "1"
		}
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil || num == "" {
		return 0, false
	}
	v *= n
	if den != "" {
		d, err := strconv.ParseFloat(den, 64)
		if err != nil || d == 0 {
			return 0, false
		}
		v /= d
	}
	return sign * v, true
}

// ParseNumber reads a standalone constant such as "-2π", "pi/2" or "360".
func ParseNumber(s string) (float64, bool) {
	return parseNumber(normalizer.Replace(strings.ToLower(strings.Join(strings.Fields(s), ""))))
}
