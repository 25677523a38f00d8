package tutor

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trigtutor/tutor/common/logger"
	"github.com/trigtutor/tutor/config"
	"github.com/trigtutor/tutor/knowledge"
	"github.com/trigtutor/tutor/orchestrator"
)

func init() {
	logger.UseNop()
}

func newTestClient(t *testing.T) *TutorClient {
	t.Helper()
	cfg := config.Default()
	cfg.Knowledge.Path = filepath.Join("testdata", "knowledge.json")
	client, err := NewTutorClient(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "first content is text")
	return text.Text
}

func TestNewTutorClientLoadsDataset(t *testing.T) {
	client := newTestClient(t)
	b := client.Knowledge().Load()
	require.NotNil(t, b)
	assert.Equal(t, 18, b.Len())
	assert.Greater(t, b.Threshold(), 0.0)
	_, ok := b.Lookup("graph_sketching_4")
	assert.True(t, ok)
}

func TestNewTutorClientFailures(t *testing.T) {
	cfg := config.Default()
	cfg.Knowledge.Path = filepath.Join(t.TempDir(), "missing.json")
	_, err := NewTutorClient(context.Background(), cfg)
	assert.ErrorIs(t, err, knowledge.ErrLoad)

	cfg = config.Default()
	cfg.Knowledge.Path = ""
	_, err = NewTutorClient(context.Background(), cfg)
	assert.Error(t, err)
}

func TestSolveQuestionTool(t *testing.T) {
	client := newTestClient(t)
	h := HandleSolveQuestion(client)

	res := call(t, h, map[string]any{
		"question":   "Find all angles between 0 and 360 degrees where sine and cosine are equal",
		"session_id": "mcp-1",
	})
	assert.False(t, res.IsError)
	var answer orchestrator.AnswerResponse
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &answer))
	assert.Equal(t, "solve_equations_1", answer.QuestionID)
	assert.Equal(t, "x = 45°, 225°", answer.FinalAnswer)
	assert.Equal(t, orchestrator.SourceDataset, answer.Source)
	assert.Equal(t, "mcp-1", answer.SessionID)

	res = call(t, h, map[string]any{"question": "explain step 2", "session_id": "mcp-1"})
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &answer))
	assert.Equal(t, "Step 2: tan x = 1", answer.FinalAnswer)

	res = call(t, h, map[string]any{"question": "   "})
	assert.True(t, res.IsError)
}

func TestSolveAgainstDatasetIndex(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	got := client.Solve(ctx, "Where do sine and cosine meet between 0 and 360 degrees", "")
	assert.Equal(t, "solve_equations_1", got.QuestionID, "a paraphrase still finds its entry")

	for _, q := range []string{
		"banana",
		"What is the capital of France?",
		"tangent line of a parabola",
		"recommend pizza restaurants nearby",
	} {
		t.Run(q, func(t *testing.T) {
			got := client.Solve(ctx, q, "")
			assert.Equal(t, orchestrator.MethodNoMatch, got.Method)
			assert.Equal(t, orchestrator.SourceNone, got.Source)
			assert.Zero(t, got.Confidence)
			assert.Empty(t, got.QuestionID)
		})
	}
}

func TestSolveQuestionToolAttachesGraph(t *testing.T) {
	client := newTestClient(t)
	res := call(t, HandleSolveQuestion(client), map[string]any{
		"question": "Sketch the graph of y = 2sin(3x) for -π ≤ x ≤ π",
	})
	require.Len(t, res.Content, 2)
	img, ok := res.Content[1].(mcp.ImageContent)
	require.True(t, ok)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.NotEmpty(t, img.Data)
	assert.NotContains(t, textOf(t, res), "data:image/png")
}

func TestRenderGraphTool(t *testing.T) {
	client := newTestClient(t)
	h := HandleRenderGraph(client)
	tests := []struct {
		name    string
		args    map[string]any
		isError bool
	}{
		{"radians default", map[string]any{"equation": "y = 2sin(3x) + 1"}, false},
		{"degrees with domain", map[string]any{"equation": "cos(x - 60)", "unit": "degrees", "domain_min": 0.0, "domain_max": 360.0}, false},
		{"inverted domain", map[string]any{"equation": "cos(x)", "domain_min": 5.0, "domain_max": 1.0}, true},
		{"not trigonometric", map[string]any{"equation": "banana"}, true},
		{"missing", map[string]any{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, h, tt.args)
			assert.Equal(t, tt.isError, res.IsError)
			if !tt.isError {
				assert.Len(t, res.Content, 2)
				assert.Contains(t, textOf(t, res), "amplitude")
			}
		})
	}
}

func TestResetSessionTool(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	client.Solve(ctx, "Solve sin x = 0.5", "s1")

	res := call(t, HandleResetSession(client), map[string]any{"session_id": "s1"})
	assert.False(t, res.IsError)
	assert.Equal(t, "Session s1 cleared", textOf(t, res))
	assert.Equal(t, orchestrator.MethodNoMatch, client.Solve(ctx, "explain step 1", "s1").Method)

	res = call(t, HandleResetSession(client), map[string]any{})
	assert.True(t, res.IsError)
}

func TestNewServer(t *testing.T) {
	assert.NotNil(t, NewServer("trigtutor", newTestClient(t)))
}
