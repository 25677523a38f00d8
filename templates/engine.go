// Package templates answers recognizable question shapes directly with
// regex-driven handlers: exact values, equation solving, function properties,
// identity proofs, graph sketches and right-triangle applications.
package templates

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/trigtutor/tutor/common/logger"
	"github.com/trigtutor/tutor/config"
	"github.com/trigtutor/tutor/equation"
	"github.com/trigtutor/tutor/graph"
)

// Category groups patterns that share a handler family and booster list.
type Category string

const (
	GraphSketch        Category = "graph_sketch"
	ExactValues        Category = "exact_values"
	SolveEquations     Category = "solve_equations"
	FunctionProperties Category = "function_properties"
	TrigIdentities     Category = "trig_identities"
	Applications       Category = "applications"
)

// ErrNoMatch is returned by a handler that matched the pattern but cannot
// produce an answer for the captured values.
var ErrNoMatch = errors.New("template cannot answer")

// Result is a direct answer produced by a handler.
type Result struct {
	Category    Category
	FinalAnswer string
	Steps       []string
	Confidence  float64
	Method      string
	HasGraph    bool
	Graph       *graph.Rendering
	// Candidates is how many patterns matched before selection.
	Candidates int
}

// Handler computes an answer from a pattern's submatches. question is the
// preprocessed text.
type Handler func(ctx context.Context, m []string, question string) (*Result, error)

// Pattern is one registry entry.
type Pattern struct {
	Category Category
	Regexp   *regexp.Regexp
	Handler  Handler
}

// Candidate is a matched pattern with its score.
type Candidate struct {
	Category   Category
	Confidence float64
	order      int
	match      []string
	handler    Handler
}

// Boosters lists the keywords that raise confidence per category.
var Boosters = map[Category][]string{
	GraphSketch:        {"sketch", "graph", "plot", "draw"},
	ExactValues:        {"exact value", "without calculator", "special angle"},
	SolveEquations:     {"solve", "find x", "solution", "roots"},
	FunctionProperties: {"amplitude", "period", "range", "domain"},
	TrigIdentities:     {"prove", "verify", "identity", "show that"},
	Applications:       {"ladder", "angle of elevation", "triangle", "height"},
}

// Engine holds the ordered pattern registry.
type Engine struct {
	cfg      config.TemplateConfig
	renderer *graph.Renderer
	unit     equation.AngularUnit
	render   bool
	patterns []Pattern
}

// Option customizes an Engine.
type Option func(*Engine)

// WithRenderer sets the renderer used by graph sketches.
func WithRenderer(r *graph.Renderer) Option {
	return func(e *Engine) { e.renderer = r }
}

// WithDefaultUnit sets the unit assumed when a sketch question names no domain.
func WithDefaultUnit(u equation.AngularUnit) Option {
	return func(e *Engine) { e.unit = u }
}

// NewEngine builds the registry in its fixed order: graph_sketch,
// exact_values, solve_equations, function_properties, trig_identities,
// applications. Equal confidences are resolved by this order.
func NewEngine(cfg config.TemplateConfig, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		renderer: graph.New(graph.Options{}),
		unit:     equation.Radians,
		render:   cfg.RenderGraphs == nil || *cfg.RenderGraphs,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.patterns = e.registry()
	return e
}

// exprCapture grabs a single-function expression up to a clause boundary.
const exprCapture = `([-+\d.\s]*(?:sin|cos|tan)[^,;?]*?)(?:\s+(?:for|from|over|on|in|where|and|with|between)\b|[,;?]|$)`

const valueCapture = `(-?\s*√?\s*[\d.]+(?:\s*/\s*√?\s*[\d.]+)?)`

const angleCapture = `(\d+(?:\.\d+)?)`

const signedAngleCapture = `(-?\d+(?:\.\d+)?)`

func (e *Engine) registry() []Pattern {
	p := func(c Category, expr string, h Handler) Pattern {
		return Pattern{Category: c, Regexp: regexp.MustCompile(`(?i)` + expr), Handler: h}
	}
	return []Pattern{
		p(GraphSketch, `(?:sketch|graph|plot|draw).*?y\s*=\s*`+exprCapture, e.handleGraphSketch),
		p(GraphSketch, `(?:sketch|graph|plot|draw).*?f\s*:\s*x\s*(?:→|->)\s*`+exprCapture, e.handleGraphSketch),
		p(GraphSketch, `(?:graph|plot|sketch).*?of.*?f\(\s*x\s*\)\s*=\s*`+exprCapture, e.handleGraphSketch),
		p(GraphSketch, `f\s*:\s*x\s*(?:→|->)\s*`+exprCapture+`.*?(?:sketch|graph|plot|draw)`, e.handleGraphSketch),

		p(ExactValues, `(?:find|what is|calculate|compute|evaluate|determine).*?exact value.*?(sin|cos|tan)\D*?`+signedAngleCapture, handleExactValue),
		p(ExactValues, `(?:find|what is|calculate|compute|evaluate).*?(sin|cos|tan)\D*?`+signedAngleCapture+`\s*degrees`, handleExactValue),
		p(ExactValues, `(?:find|what is).*?(sin|cos|tan)\D*?`+signedAngleCapture+`.*?without calculator`, handleExactValue),

		p(SolveEquations, `solve.*?(-?[\d.]*)\s*(sin|cos|tan)([^=]*)=\s*`+valueCapture, handleSolveEquation),
		p(SolveEquations, `find.*?solutions?.*?(-?[\d.]*)\s*(sin|cos|tan)([^=]*)=\s*`+valueCapture, handleSolveEquation),
		p(SolveEquations, `what.*?values?.*?of.*?x.*?(-?[\d.]*)\s*(sin|cos|tan)([^=]*)=\s*`+valueCapture, handleSolveEquation),

		p(FunctionProperties, `(?:find|what is|what are|determine|state|calculate).*?(amplitude|period|range|domain).*?y\s*=\s*`+exprCapture, handleFunctionProperties),
		p(FunctionProperties, `(?:find|determine|state).*?(amplitude|period|range|domain).*?of.*?f\(\s*x\s*\)\s*=\s*`+exprCapture, handleFunctionProperties),
		p(FunctionProperties, `what.*?(amplitude|period|range|domain).*?function.*?y\s*=\s*`+exprCapture, handleFunctionProperties),

		p(TrigIdentities, `prove.*(sin|cos|tan).*identity`, handleProveIdentity),
		p(TrigIdentities, `verify.*(sin|cos|tan).*identity`, handleProveIdentity),
		p(TrigIdentities, `show that.*(sin|cos|tan)`, handleProveIdentity),
		p(TrigIdentities, `(?:prove|verify|show that)\b.*(sin|cos|tan|sec|csc|cot)`, handleProveIdentity),

		p(Applications, `ladder.*?`+angleCapture+`\s*degrees.*?(height|distance|length)`, handleLadder),
		p(Applications, `angle.*?elevation.*?`+angleCapture+`\s*degrees`, handleAngleOfElevation),
		p(Applications, `triangle.*?angle.*?`+angleCapture+`\s*degrees.*?find.*?(side|length|hypotenuse|opposite|adjacent)`, handleTriangle),
	}
}

// Confidence scores a question for a category: base, plus one step per
// booster present, minus the short-question penalty, clamped.
func (e *Engine) Confidence(question string, c Category) float64 {
	score := e.cfg.BaseConfidence
	for _, b := range Boosters[c] {
		if strings.Contains(question, b) {
			score += e.cfg.BoosterStep
		}
	}
	if len(strings.Fields(question)) < e.cfg.ShortTokenCount {
		score -= e.cfg.ShortPenalty
	}
	return math.Min(e.cfg.MaxConfidence, math.Max(e.cfg.MinConfidence, score))
}

// Match returns every matching pattern at or above the invocation floor,
// highest confidence first with ties in registry order.
func (e *Engine) Match(question string) []Candidate {
	q := Preprocess(question)
	var out []Candidate
	for i, p := range e.patterns {
		m := p.Regexp.FindStringSubmatch(q)
		if m == nil {
			continue
		}
		conf := e.Confidence(q, p.Category)
		if conf < e.cfg.InvocationFloor {
			continue
		}
		out = append(out, Candidate{Category: p.Category, Confidence: conf, order: i, match: m, handler: p.Handler})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].order < out[j].order
	})
	return out
}

// TryAnswer invokes the best candidate above the selection floor. A handler
// that fails is skipped and the next candidate is tried.
func (e *Engine) TryAnswer(ctx context.Context, question string) (*Result, bool) {
	q := Preprocess(question)
	candidates := e.Match(question)
	for _, c := range candidates {
		if c.Confidence <= e.cfg.SelectionFloor {
			break
		}
		if ctx.Err() != nil {
			return nil, false
		}
		res, err := c.handler(ctx, c.match, q)
		if err != nil {
			logger.Debugf("templates: %s handler skipped for %q: %v", c.Category, q, err)
			continue
		}
		res.Category = c.Category
		res.Confidence = c.Confidence
		res.Method = "template_" + string(c.Category)
		res.Candidates = len(candidates)
		logger.Debugf("templates: answered %q with %s at %.2f", q, c.Category, c.Confidence)
		return res, true
	}
	return nil, false
}

func stepf(n int, format string, args ...interface{}) string {
	return fmt.Sprintf("Step %d: ", n) + fmt.Sprintf(format, args...)
}

// deg formats an angle in degrees, e.g. "30°" or "48.59°".
func deg(v float64) string {
	return equation.FormatNumber(math.Round(v*100)/100) + "°"
}
