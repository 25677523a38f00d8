// Package graph renders trigonometric expressions to PNG images.
package graph

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/color"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/trigtutor/tutor/common/logger"
	"github.com/trigtutor/tutor/equation"
	"github.com/trigtutor/tutor/metrics"
)

// ErrRender is returned for degenerate input that cannot be drawn.
var ErrRender = errors.New("render failed")

const (
	// DefaultSamples is the number of evaluation points per curve.
	DefaultSamples = 400
	// MinSamples is the lower bound enforced on Options.Samples.
	MinSamples = 300
	// TanClip bounds tan output so asymptotes stay legible.
	TanClip = 10.0
)

var palette = []color.Color{
	color.RGBA{R: 31, G: 119, B: 180, A: 255},
	color.RGBA{R: 214, G: 39, B: 40, A: 255},
	color.RGBA{R: 44, G: 160, B: 44, A: 255},
	color.RGBA{R: 255, G: 127, B: 14, A: 255},
	color.RGBA{R: 148, G: 103, B: 189, A: 255},
}

// Domain is a closed x interval in the render's angular unit.
type Domain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (d Domain) valid() bool {
	return !math.IsNaN(d.Min) && !math.IsNaN(d.Max) &&
		!math.IsInf(d.Min, 0) && !math.IsInf(d.Max, 0) && d.Min < d.Max
}

// DefaultDomain returns ±360° or ±2π centred on the phase-shift point.
func DefaultDomain(expr equation.Expression, unit equation.AngularUnit) Domain {
	half := 2 * math.Pi
	if unit == equation.Degrees {
		half = 360
	}
	center := 0.0
	if shift, ok := expr.PhaseShift(); ok && !expr.Constant {
		center = shift
	}
	return Domain{Min: center - half, Max: center + half}
}

// Point is one evaluated sample.
type Point struct {
	X, Y float64
}

// Properties are the key features reported with a rendering.
type Properties struct {
	Amplitude  float64 `json:"amplitude"`
	Period     float64 `json:"period,omitempty"`
	HasPeriod  bool    `json:"has_period"`
	RangeMin   float64 `json:"range_min,omitempty"`
	RangeMax   float64 `json:"range_max,omitempty"`
	Bounded    bool    `json:"bounded"`
	PhaseShift float64 `json:"phase_shift"`
	Intercept  float64 `json:"y_intercept"`
	Constant   bool    `json:"constant,omitempty"`
	Domain     Domain  `json:"domain"`
	Unit       string  `json:"unit"`
}

// Rendering is the output of Render.
type Rendering struct {
	PNG        []byte
	Properties Properties
	// Points holds the samples of the primary curve after clipping.
	Points []Point
}

// DataURI encodes the image for JSON responses.
func (r *Rendering) DataURI() string {
	if r == nil || len(r.PNG) == 0 {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(r.PNG)
}

// Options tunes a Renderer.
type Options struct {
	Samples  int
	TanClip  float64
	WidthPt  float64
	HeightPt float64
}

// Renderer draws expressions with fixed options. The zero value is not usable;
// use New.
type Renderer struct {
	opt Options
}

// New returns a Renderer, filling unset options with defaults.
func New(opt Options) *Renderer {
	if opt.Samples < MinSamples {
		opt.Samples = DefaultSamples
	}
	if opt.TanClip <= 0 {
		opt.TanClip = TanClip
	}
	if opt.WidthPt <= 0 {
		opt.WidthPt = 720
	}
	if opt.HeightPt <= 0 {
		opt.HeightPt = 360
	}
	return &Renderer{opt: opt}
}

var defaultRenderer = New(Options{})

// Render draws expr with the default renderer.
func Render(expr equation.Expression, domain *Domain, unit equation.AngularUnit) (*Rendering, error) {
	return defaultRenderer.Render(expr, domain, unit)
}

// Render draws a single expression annotated with its y-intercept, midline
// (when shifted vertically) and phase-shift marker (when phase is non-zero).
func (r *Renderer) Render(expr equation.Expression, domain *Domain, unit equation.AngularUnit) (*Rendering, error) {
	start := time.Now()
	if !expr.Finite() {
		return nil, fmt.Errorf("%w: non-finite parameters in %s", ErrRender, expr)
	}
	d := DefaultDomain(expr, unit)
	if domain != nil {
		d = *domain
	}
	if !d.valid() {
		return nil, fmt.Errorf("%w: invalid domain [%v, %v]", ErrRender, d.Min, d.Max)
	}

	pts := r.Sample(expr, d, unit)
	props := describe(expr, d, unit)

	p := plot.New()
	p.Title.Text = "Graph of y = " + expr.String()
	p.X.Label.Text = "x (" + unit.String() + ")"
	p.Y.Label.Text = "y"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	r.addAxes(p, d)

	line, err := plotter.NewLine(toXYs(pts))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	line.LineStyle.Width = vg.Points(2)
	line.LineStyle.Color = palette[0]
	p.Add(line)
	p.Legend.Add("y = "+expr.String(), line)

	if err := r.annotate(p, expr, d, unit, props); err != nil {
		return nil, err
	}
	if expr.Function == equation.Tan && !expr.IsConstant() {
		p.Y.Min, p.Y.Max = -r.opt.TanClip+expr.VerticalShift, r.opt.TanClip+expr.VerticalShift
	}

	img, err := r.encode(p)
	if err != nil {
		return nil, err
	}
	metrics.ObserveRender("expression", start)
	logger.Debugf("graph: rendered %s over [%.2f, %.2f] with %d samples", expr, d.Min, d.Max, len(pts))
	return &Rendering{PNG: img, Properties: props, Points: pts}, nil
}

// Sample evaluates expr at evenly spaced points over d. tan output is
// clipped to the configured band around the vertical shift.
func (r *Renderer) Sample(expr equation.Expression, d Domain, unit equation.AngularUnit) []Point {
	n := r.opt.Samples
	pts := make([]Point, n)
	step := (d.Max - d.Min) / float64(n-1)
	for i := 0; i < n; i++ {
		x := d.Min + float64(i)*step
		if i == n-1 {
			x = d.Max
		}
		y := expr.Eval(x, unit)
		if expr.Function == equation.Tan {
			y = clip(y, expr.VerticalShift-r.opt.TanClip, expr.VerticalShift+r.opt.TanClip)
		}
		pts[i] = Point{X: x, Y: y}
	}
	return pts
}

func clip(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v):
		return hi
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

func describe(expr equation.Expression, d Domain, unit equation.AngularUnit) Properties {
	props := Properties{
		Amplitude: math.Abs(expr.Amplitude),
		Constant:  expr.IsConstant(),
		Domain:    d,
		Unit:      unit.String(),
		Intercept: expr.Eval(0, unit),
	}
	if props.Constant {
		props.Amplitude = 0
	}
	props.Period, props.HasPeriod = expr.Period(unit)
	props.RangeMin, props.RangeMax, props.Bounded = expr.Range()
	if props.Constant {
		// Range evaluates in radians; a constant must honor the caller's unit.
		props.RangeMin, props.RangeMax = props.Intercept, props.Intercept
	}
	if !props.Bounded {
		props.RangeMin, props.RangeMax = 0, 0
	}
	if shift, ok := expr.PhaseShift(); ok {
		props.PhaseShift = shift
	}
	return props
}

func (r *Renderer) addAxes(p *plot.Plot, d Domain) {
	xAxis, err := plotter.NewLine(plotter.XYs{{X: d.Min, Y: 0}, {X: d.Max, Y: 0}})
	if err != nil {
		return
	}
	xAxis.LineStyle.Width = vg.Points(0.5)
	p.Add(xAxis)
}

func (r *Renderer) annotate(p *plot.Plot, expr equation.Expression, d Domain, unit equation.AngularUnit, props Properties) error {
	if d.Min <= 0 && d.Max >= 0 {
		y0 := props.Intercept
		if expr.Function == equation.Tan {
			y0 = clip(y0, expr.VerticalShift-r.opt.TanClip, expr.VerticalShift+r.opt.TanClip)
		}
		sc, err := plotter.NewScatter(plotter.XYs{{X: 0, Y: y0}})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRender, err)
		}
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(4)
		sc.GlyphStyle.Color = palette[1]
		p.Add(sc)
		p.Legend.Add(fmt.Sprintf("y-intercept (0, %s)", equation.FormatNumber(y0)), sc)
	}

	if expr.VerticalShift != 0 {
		mid, err := plotter.NewLine(plotter.XYs{{X: d.Min, Y: expr.VerticalShift}, {X: d.Max, Y: expr.VerticalShift}})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRender, err)
		}
		mid.LineStyle.Color = palette[2]
		mid.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		p.Add(mid)
		p.Legend.Add("midline y = "+equation.FormatNumber(expr.VerticalShift), mid)
	}

	if shift, ok := expr.PhaseShift(); ok && expr.Phase != 0 && shift >= d.Min && shift <= d.Max {
		lo, hi := props.RangeMin, props.RangeMax
		if !props.Bounded {
			lo, hi = expr.VerticalShift-r.opt.TanClip, expr.VerticalShift+r.opt.TanClip
		}
		if lo == hi {
			lo, hi = lo-1, hi+1
		}
		marker, err := plotter.NewLine(plotter.XYs{{X: shift, Y: lo}, {X: shift, Y: hi}})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRender, err)
		}
		marker.LineStyle.Color = palette[3]
		marker.LineStyle.Dashes = []vg.Length{vg.Points(2), vg.Points(3)}
		p.Add(marker)
		p.Legend.Add(fmt.Sprintf("phase shift x = %s", equation.FormatNumber(shift)), marker)
	}
	return nil
}

func (r *Renderer) encode(p *plot.Plot) ([]byte, error) {
	wt, err := p.WriterTo(vg.Points(r.opt.WidthPt), vg.Points(r.opt.HeightPt), "png")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}

func toXYs(pts []Point) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xys[i].X, xys[i].Y = pt.X, pt.Y
	}
	return xys
}
