// Package tutor serves the trigonometry tutor as MCP tools.
package tutor

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const Version = "1.0.0"

const instructions = "This is a trigonometry tutor. Ask it questions about exact values, " +
	"solving equations, function properties, identities, graphs and right-triangle problems; " +
	"pass the same session_id to ask follow-ups such as \"explain step 2\"."

// NewServer registers the tutor tools on a new MCP server.
func NewServer(serverName string, client *TutorClient) *server.MCPServer {
	mcpServer := server.NewMCPServer(
		serverName,
		Version,
		server.WithInstructions(instructions),
		server.WithToolCapabilities(false),
	)

	mcpServer.AddTool(
		mcp.NewToolWithRawSchema("solve-question", "Answer a trigonometry question with worked steps, using the same session_id for follow-up questions", GetSolveQuestionSchema()),
		HandleSolveQuestion(client),
	)
	mcpServer.AddTool(
		mcp.NewToolWithRawSchema("render-graph", "Draw a sin, cos or tan curve such as 2sin(3x)+1 and report its amplitude, period and range", GetRenderGraphSchema()),
		HandleRenderGraph(client),
	)
	mcpServer.AddTool(
		mcp.NewToolWithRawSchema("reset-session", "Forget the conversation of a session", GetResetSessionSchema()),
		HandleResetSession(client),
	)
	return mcpServer
}

// ServeStdio runs the MCP server on stdin/stdout until the client disconnects.
func ServeStdio(client *TutorClient) error {
	return server.ServeStdio(NewServer("trigtutor", client))
}
