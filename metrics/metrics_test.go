package metrics

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trigtutor/tutor/common/logger"
)

func TestObserveSolveIncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(solveTotal.WithLabelValues("template_exact_values", "template"))
	ObserveSolve("template_exact_values", "template", time.Now())
	after := testutil.ToFloat64(solveTotal.WithLabelValues("template_exact_values", "template"))
	assert.Equal(t, before+1, after)
}

func TestSetKnowledgeEntries(t *testing.T) {
	SetKnowledgeEntries(42)
	assert.Equal(t, 42.0, testutil.ToFloat64(knowledgeEntries))
}

func TestCollectorsComplete(t *testing.T) {
	assert.Len(t, Collectors(), 7)
}

func TestSolveMetricsLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger.UseLogger(zap.New(core))
	defer logger.UseNop()

	m := NewSolveMetrics("q1", "s1", "solve sin x = 0.5")
	m.AddStage("template")
	m.RecordTemplate("solve_equations", 0.9, 2)
	m.Finish("template_solve_equations", "template", 0.9, false)
	m.Log()

	entries := logs.All()
	require.Len(t, entries, 1)
	msg := entries[0].Message
	require.True(t, strings.HasPrefix(msg, "[SOLVE_METRICS] "))

	var decoded SolveMetrics
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(msg, "[SOLVE_METRICS] ")), &decoded))
	assert.Equal(t, "q1", decoded.QueryID)
	assert.Equal(t, []string{"template"}, decoded.Stages)
	assert.Equal(t, "solve_equations", decoded.TemplateCategory)
	assert.InDelta(t, 0.9, decoded.Confidence, 1e-9)
}
