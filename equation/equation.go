// Package equation extracts the parameters of single-term trigonometric
// expressions such as "2sin(3x-1)+2".
//
// The evaluated form is always
//
//	y = Amplitude * f(Frequency*x + Phase) + VerticalShift
//
// so "x-1" inside the parentheses yields Phase = -1 and the curve crosses its
// phase-shift point at x = -Phase/Frequency.
package equation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnparsableExpression is returned when no trigonometric function can be
// modeled from the input.
var ErrUnparsableExpression = errors.New("unparsable trigonometric expression")

// Function is one of the three supported trigonometric functions.
type Function string

const (
	Sin Function = "sin"
	Cos Function = "cos"
	Tan Function = "tan"
)

// Functions lists the supported functions in lookup order.
var Functions = []Function{Sin, Cos, Tan}

// AngularUnit selects how x is interpreted when evaluating.
type AngularUnit int

const (
	Radians AngularUnit = iota
	Degrees
)

func (u AngularUnit) String() string {
	if u == Degrees {
		return "degrees"
	}
	return "radians"
}

// ParseUnit maps "degrees"/"deg"/"°" to Degrees and anything else to Radians.
func ParseUnit(s string) AngularUnit {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "degrees", "degree", "deg", "°":
		return Degrees
	default:
		return Radians
	}
}

// Expression is the canonical parameter tuple of a trigonometric expression.
type Expression struct {
	Function      Function `json:"function"`
	Amplitude     float64  `json:"amplitude"`
	Frequency     float64  `json:"frequency"`
	Phase         float64  `json:"phase"`
	VerticalShift float64  `json:"vertical_shift"`
	// Constant is set when the argument does not depend on x.
	Constant bool `json:"constant,omitempty"`
}

// Eval returns the value of the expression at x.
func (e Expression) Eval(x float64, unit AngularUnit) float64 {
	arg := e.Frequency*x + e.Phase
	if unit == Degrees {
		arg = arg * math.Pi / 180
	}
	var v float64
	switch e.Function {
	case Cos:
		v = math.Cos(arg)
	case Tan:
		v = math.Tan(arg)
	default:
		v = math.Sin(arg)
	}
	return e.Amplitude*v + e.VerticalShift
}

// Period returns the period in the given unit. ok is false for constant
// expressions, which have no period.
func (e Expression) Period(unit AngularUnit) (period float64, ok bool) {
	if e.IsConstant() {
		return 0, false
	}
	full := 2 * math.Pi
	if unit == Degrees {
		full = 360
	}
	if e.Function == Tan {
		full /= 2
	}
	return full / math.Abs(e.Frequency), true
}

// IsConstant reports whether the expression evaluates to the same value for every x.
func (e Expression) IsConstant() bool {
	return e.Constant || e.Frequency == 0 || e.Amplitude == 0
}

// Range returns the closed output interval. bounded is false for tan, whose
// range is all real numbers unless the expression is constant.
func (e Expression) Range() (lo, hi float64, bounded bool) {
	if e.IsConstant() {
		v := e.Eval(0, Radians)
		return v, v, true
	}
	if e.Function == Tan {
		return math.Inf(-1), math.Inf(1), false
	}
	a := math.Abs(e.Amplitude)
	return e.VerticalShift - a, e.VerticalShift + a, true
}

// PhaseShift returns the x at which the argument crosses zero.
func (e Expression) PhaseShift() (float64, bool) {
	if e.Frequency == 0 {
		return 0, false
	}
	return -e.Phase / e.Frequency, true
}

// Finite reports whether every parameter is a finite number.
func (e Expression) Finite() bool {
	for _, v := range []float64{e.Amplitude, e.Frequency, e.Phase, e.VerticalShift} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// String renders the expression in canonical form, e.g. "2cos(3x - 1) + 4".
func (e Expression) String() string {
	var b strings.Builder
	switch e.Amplitude {
	case 1:
	case -1:
		b.WriteString("-")
	default:
		b.WriteString(FormatNumber(e.Amplitude))
	}
	b.WriteString(string(e.Function))
	b.WriteString("(")
	switch {
	case e.Constant:
		b.WriteString(FormatNumber(e.Phase))
	default:
		switch e.Frequency {
		case 1:
		case -1:
			b.WriteString("-")
		default:
			b.WriteString(FormatNumber(e.Frequency))
		}
		b.WriteString("x")
		writeSigned(&b, e.Phase)
	}
	b.WriteString(")")
	writeSigned(&b, e.VerticalShift)
	return b.String()
}

func writeSigned(b *strings.Builder, v float64) {
	switch {
	case v > 0:
		fmt.Fprintf(b, " + %s", FormatNumber(v))
	case v < 0:
		fmt.Fprintf(b, " - %s", FormatNumber(-v))
	}
}

// FormatNumber prints v with at most four decimals and no trailing zeros.
func FormatNumber(v float64) string {
	r := math.Round(v*10000) / 10000
	if r == 0 {
		r = 0 // normalizes -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
