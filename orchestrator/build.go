package orchestrator

import (
	"fmt"

	"github.com/trigtutor/tutor/config"
	"github.com/trigtutor/tutor/embedding"
	"github.com/trigtutor/tutor/equation"
	"github.com/trigtutor/tutor/graph"
	"github.com/trigtutor/tutor/knowledge"
	"github.com/trigtutor/tutor/memory"
	"github.com/trigtutor/tutor/retrieval"
	"github.com/trigtutor/tutor/templates"
)

// NewFromConfig wires the template engine, the retrieval index over holder
// and the configured session store into a Solver.
func NewFromConfig(cfg *config.Config, holder *knowledge.Holder, enc embedding.Encoder) (*Solver, error) {
	pc := cfg.Pipeline
	renderer := graph.New(graph.Options{
		Samples:  pc.Graph.Samples,
		TanClip:  pc.Graph.TanClip,
		WidthPt:  pc.Graph.WidthPt,
		HeightPt: pc.Graph.HeightPt,
	})
	unit := equation.ParseUnit(pc.Graph.DefaultUnit)

	store, err := memory.NewStore(pc.Session)
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	engine := templates.NewEngine(pc.Templates,
		templates.WithRenderer(renderer),
		templates.WithDefaultUnit(unit),
	)
	var r Retriever
	if holder != nil && enc != nil {
		r = retrieval.NewIndex(holder, enc, pc.Retrieval)
	}
	return New(engine, r, store,
		WithRenderer(renderer),
		WithTemplateFloor(pc.TemplateFloor),
		WithDefaultUnit(unit),
		WithQueryLog(cfg.Metrics.QueryLog),
	), nil
}
