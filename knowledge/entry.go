package knowledge

import (
	"strings"

	"github.com/trigtutor/tutor/equation"
	"github.com/trigtutor/tutor/graph"
)

// Entry is one solved question of the knowledge base. Entries are built at
// load time and never modified afterwards.
type Entry struct {
	ID               string        `json:"id"`
	Question         string        `json:"question"`
	Category         string        `json:"category"`
	SolutionSteps    []string      `json:"solution"`
	AlternativeSteps []string      `json:"alternative_solution,omitempty"`
	FinalAnswer      string        `json:"final_answer,omitempty"`
	Plotting         *PlottingSpec `json:"plotting,omitempty"`
	Embedding        []float32     `json:"embedding,omitempty"`
	Tags             []string      `json:"tags,omitempty"`
}

// HasAlternative reports whether the entry carries a second method.
func (e *Entry) HasAlternative() bool {
	return len(e.AlternativeSteps) > 0
}

// WantsGraph reports whether answers for this entry should carry a graph.
func (e *Entry) WantsGraph() bool {
	return e.Plotting != nil && (len(e.Plotting.Equations) > 0 || e.Plotting.NeedsGraph)
}

// PlottingSpec is the plotting data stored with a graph question.
type PlottingSpec struct {
	Equations []string `json:"equations,omitempty"`
	// Domain is [min, max] in XScale units; empty means the renderer default.
	Domain []float64 `json:"domain,omitempty"`
	XScale string    `json:"x_scale,omitempty"`
	XLabel string    `json:"x_label,omitempty"`
	YLabel string    `json:"y_label,omitempty"`
	// NeedsGraph marks graph questions stored without equations; the curve
	// is then recovered from the question text.
	NeedsGraph bool `json:"needs_graph,omitempty"`
}

// Unit is the angular unit of the x axis. The dataset draws in degrees
// unless it says otherwise.
func (p *PlottingSpec) Unit() equation.AngularUnit {
	if p.XScale == "" {
		return equation.Degrees
	}
	return equation.ParseUnit(p.XScale)
}

// GraphSpec converts the stored plotting data for the renderer.
func (p *PlottingSpec) GraphSpec(title string) graph.Spec {
	spec := graph.Spec{
		Title:     title,
		Equations: append([]string(nil), p.Equations...),
		Unit:      p.Unit(),
		XLabel:    p.XLabel,
		YLabel:    p.YLabel,
	}
	if len(p.Domain) == 2 && p.Domain[0] < p.Domain[1] {
		spec.Domain = &graph.Domain{Min: p.Domain[0], Max: p.Domain[1]}
	}
	if spec.XLabel == "" {
		spec.XLabel = "x (" + spec.Unit.String() + ")"
	}
	return spec
}

var graphWords = []string{"sketch", "graph", "plot", "draw"}

func mentionsGraph(question string) bool {
	q := strings.ToLower(question)
	for _, w := range graphWords {
		if strings.Contains(q, w) {
			return true
		}
	}
	return false
}
