package tutor

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/trigtutor/tutor/common/logger"
	"github.com/trigtutor/tutor/equation"
	"github.com/trigtutor/tutor/graph"
)

// HandleSolveQuestion answers a question. The response JSON is returned as
// text and a rendered graph, if any, as a PNG image content.
func HandleSolveQuestion(client *TutorClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		question, _ := args["question"].(string)
		if strings.TrimSpace(question) == "" {
			return mcp.NewToolResultError("question is required"), nil
		}
		sessionID, _ := args["session_id"].(string)

		resp := client.Solve(ctx, question, sessionID)
		textOnly := resp
		textOnly.GraphImage = ""
		data, err := json.Marshal(textOnly)
		if err != nil {
			return nil, fmt.Errorf("marshal answer failed, err: %w", err)
		}
		result := &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent(string(data))}}
		if resp.HasGraph && resp.Graph != nil {
			result.Content = append(result.Content,
				mcp.NewImageContent(base64.StdEncoding.EncodeToString(resp.Graph.PNG), "image/png"))
		}
		return result, nil
	}
}

// HandleRenderGraph draws a single equation.
func HandleRenderGraph(client *TutorClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		raw, _ := args["equation"].(string)
		expr, err := equation.Parse(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		unit, _ := args["unit"].(string)
		var domain *graph.Domain
		lo, okLo := args["domain_min"].(float64)
		hi, okHi := args["domain_max"].(float64)
		if okLo && okHi {
			if lo >= hi {
				return mcp.NewToolResultError("domain_min must be below domain_max"), nil
			}
			domain = &graph.Domain{Min: lo, Max: hi}
		}

		rendering, err := client.Solver().Renderer().Render(expr, domain, equation.ParseUnit(unit))
		if err != nil {
			logger.Warnf("tutor: render %q: %v", raw, err)
			return mcp.NewToolResultError("no graph available: " + err.Error()), nil
		}
		props, err := json.Marshal(rendering.Properties)
		if err != nil {
			return nil, fmt.Errorf("marshal properties failed, err: %w", err)
		}
		return &mcp.CallToolResult{Content: []mcp.Content{
			mcp.NewTextContent(fmt.Sprintf("y = %s\n%s", expr, props)),
			mcp.NewImageContent(base64.StdEncoding.EncodeToString(rendering.PNG), "image/png"),
		}}, nil
	}
}

// HandleResetSession clears a session's conversation memory.
func HandleResetSession(client *TutorClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, _ := request.GetArguments()["session_id"].(string)
		if sessionID == "" {
			return mcp.NewToolResultError("session_id is required"), nil
		}
		if err := client.ResetSession(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("reset session failed, err: %w", err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Session %s cleared", sessionID)), nil
	}
}

func GetSolveQuestionSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"question": {
				"type": "string",
				"description": "The trigonometry question, e.g. \"Solve sin x = 0.5\" or \"explain step 2\""
			},
			"session_id": {
				"type": "string",
				"description": "Conversation id returned by a previous answer; omit to start a new session"
			}
		},
		"required": ["question"]
	}`)
}

func GetRenderGraphSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"equation": {
				"type": "string",
				"description": "A single sin, cos or tan expression such as y = 2sin(3x) + 1"
			},
			"unit": {
				"type": "string",
				"enum": ["radians", "degrees"],
				"description": "Angular unit of the x axis, radians by default"
			},
			"domain_min": {
				"type": "number",
				"description": "Left end of the x range"
			},
			"domain_max": {
				"type": "number",
				"description": "Right end of the x range"
			}
		},
		"required": ["equation"]
	}`)
}

func GetResetSessionSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"session_id": {
				"type": "string",
				"description": "The session to forget"
			}
		},
		"required": ["session_id"]
	}`)
}
