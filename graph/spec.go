package graph

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/trigtutor/tutor/common/logger"
	"github.com/trigtutor/tutor/equation"
	"github.com/trigtutor/tutor/metrics"
)

// Spec describes several equations drawn on one set of axes.
type Spec struct {
	Title     string
	Equations []string
	// Domain defaults to [0, 360] degrees when nil.
	Domain *Domain
	Unit   equation.AngularUnit
	XLabel string
	YLabel string
}

// RenderSpec draws every parseable equation in spec with the default renderer.
func RenderSpec(spec Spec) (*Rendering, error) {
	return defaultRenderer.RenderSpec(spec)
}

// RenderSpec draws every parseable equation in spec. Equations that cannot be
// parsed are skipped; if none remain the call fails with ErrRender.
func (r *Renderer) RenderSpec(spec Spec) (*Rendering, error) {
	start := time.Now()
	exprs := make([]equation.Expression, 0, len(spec.Equations))
	labels := make([]string, 0, len(spec.Equations))
	for _, raw := range spec.Equations {
		expr, err := equation.Parse(raw)
		if err != nil {
			logger.Warnf("graph: skipping equation %q: %v", raw, err)
			continue
		}
		if !expr.Finite() {
			logger.Warnf("graph: skipping non-finite equation %q", raw)
			continue
		}
		exprs = append(exprs, expr)
		labels = append(labels, strings.TrimSpace(raw))
	}
	if len(exprs) == 0 {
		return nil, fmt.Errorf("%w: no drawable equation in %v", ErrRender, spec.Equations)
	}

	d := Domain{Min: 0, Max: 360}
	if spec.Unit == equation.Radians {
		d = Domain{Min: 0, Max: 2 * math.Pi}
	}
	if spec.Domain != nil {
		d = *spec.Domain
	}
	if !d.valid() {
		return nil, fmt.Errorf("%w: invalid domain [%v, %v]", ErrRender, d.Min, d.Max)
	}

	p := plot.New()
	p.Title.Text = spec.Title
	if p.Title.Text == "" {
		p.Title.Text = "Graph: " + strings.Join(labels, ", ")
	}
	p.X.Label.Text = spec.XLabel
	if p.X.Label.Text == "" {
		p.X.Label.Text = "x (" + spec.Unit.String() + ")"
	}
	p.Y.Label.Text = spec.YLabel
	if p.Y.Label.Text == "" {
		p.Y.Label.Text = "y"
	}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	r.addAxes(p, d)
	p.X.Min, p.X.Max = d.Min, d.Max

	var first []Point
	clipped := false
	for i, expr := range exprs {
		pts := r.Sample(expr, d, spec.Unit)
		if i == 0 {
			first = pts
		}
		if expr.Function == equation.Tan {
			clipped = true
		}
		line, err := plotter.NewLine(toXYs(pts))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRender, err)
		}
		line.LineStyle.Width = vg.Points(2)
		line.LineStyle.Color = palette[i%len(palette)]
		p.Add(line)
		p.Legend.Add(labels[i], line)
	}
	if clipped {
		p.Y.Min, p.Y.Max = -r.opt.TanClip, r.opt.TanClip
	}

	img, err := r.encode(p)
	if err != nil {
		return nil, err
	}
	metrics.ObserveRender("spec", start)
	return &Rendering{PNG: img, Properties: describe(exprs[0], d, spec.Unit), Points: first}, nil
}

var domainPattern = regexp.MustCompile(
	`(-?\s*[\d.]*\s*(?:π|pi)?(?:\s*/\s*[\d.]+)?)\s*(?:≤|<=|<)\s*(?:x|θ|theta)\s*(?:≤|<=|<)\s*(-?\s*[\d.]*\s*(?:π|pi)?(?:\s*/\s*[\d.]+)?)`)

var dashes = strings.NewReplacer("−", "-", "–", "-")

// ParseDomain finds an interval such as "-2π ≤ x ≤ 2π" or "0 <= x <= 360" in a
// question. Bounds written with π select radians; bounds beyond one radian
// turn, or a mention of degrees, select degrees; otherwise fallback is used.
func ParseDomain(question string, fallback equation.AngularUnit) (Domain, equation.AngularUnit, bool) {
	q := dashes.Replace(strings.ToLower(question))
	m := domainPattern.FindStringSubmatch(q)
	if m == nil {
		return Domain{}, fallback, false
	}
	lo, ok1 := equation.ParseNumber(m[1])
	hi, ok2 := equation.ParseNumber(m[2])
	if !ok1 || !ok2 || lo >= hi {
		return Domain{}, fallback, false
	}
	unit := fallback
	switch {
	case strings.Contains(m[0], "π") || strings.Contains(m[0], "pi"):
		unit = equation.Radians
	case strings.Contains(q, "°") || strings.Contains(q, "degree"),
		math.Max(math.Abs(lo), math.Abs(hi)) > 2*math.Pi+0.5:
		unit = equation.Degrees
	}
	return Domain{Min: lo, Max: hi}, unit, true
}
