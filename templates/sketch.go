package templates

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/trigtutor/tutor/common/logger"
	"github.com/trigtutor/tutor/equation"
	"github.com/trigtutor/tutor/graph"
)

func (e *Engine) handleGraphSketch(_ context.Context, m []string, question string) (*Result, error) {
	raw := strings.TrimSpace(m[1])
	expr, err := equation.Parse(raw)
	if err != nil {
		return nil, err
	}

	unit := e.unit
	var domain *graph.Domain
	if d, u, ok := graph.ParseDomain(question, e.unit); ok {
		domain, unit = &d, u
	} else if strings.Contains(question, "degree") || math.Abs(expr.Phase) > 2*math.Pi {
		// a phase like "x - 60" only makes sense in degrees
		unit = equation.Degrees
	}
	shown := graph.DefaultDomain(expr, unit)
	if domain != nil {
		shown = *domain
	}

	report := AnalyzeProperties(expr)
	features := []string{
		"   Amplitude: " + report.Values["amplitude"],
		"   Period: " + periodIn(expr, unit),
		"   Range: " + report.Values["range"],
	}
	if shift, ok := expr.PhaseShift(); ok && expr.Phase != 0 {
		features = append(features, "   Phase shift: x = "+equation.FormatNumber(shift))
	}
	if expr.VerticalShift != 0 {
		features = append(features, "   Midline: y = "+equation.FormatNumber(expr.VerticalShift))
	}

	steps := []string{stepf(1, "Identify the function: y = %s", expr), stepf(2, "Key features:")}
	steps = append(steps, features...)
	steps = append(steps,
		stepf(3, "Domain: %s ≤ x ≤ %s (%s)", equation.FormatNumber(shown.Min), equation.FormatNumber(shown.Max), unit),
		stepf(4, "Plot the curve and mark the y-intercept, midline and phase shift"),
	)

	res := &Result{Steps: steps}
	if !e.render {
		res.FinalAnswer = fmt.Sprintf("Key features of y = %s are listed in the steps", expr)
		return res, nil
	}
	rendering, err := e.renderer.Render(expr, domain, unit)
	if err != nil {
		logger.Warnf("templates: no graph available for %s: %v", expr, err)
		res.FinalAnswer = fmt.Sprintf("No graph available for y = %s; its key features are listed in the steps", expr)
		return res, nil
	}
	res.HasGraph = true
	res.Graph = rendering
	res.FinalAnswer = fmt.Sprintf("Graph of y = %s generated successfully", expr)
	return res, nil
}

func periodIn(expr equation.Expression, unit equation.AngularUnit) string {
	p, ok := expr.Period(unit)
	if !ok {
		return "undefined (constant function)"
	}
	if unit == equation.Degrees {
		return deg(p)
	}
	return fmt.Sprintf("%.2f radians", p)
}
