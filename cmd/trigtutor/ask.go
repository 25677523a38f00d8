package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/trigtutor/tutor"
	"github.com/trigtutor/tutor/orchestrator"
)

type askOptions struct {
	sessionID string
	graphOut  string
	jsonOut   bool
	withImage bool
}

var askOpts askOptions

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one question and print the result",
	Example: `  trigtutor ask "Solve sin x = 0.5"
  trigtutor ask --graph sine.png "Sketch the graph of y = 2sin(3x) for -π ≤ x ≤ π"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := tutor.NewTutorClient(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer client.Close()

		ctx := context.Background()
		if ms := cfg.Server.SolveTimeoutMs; ms > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(ms)*time.Millisecond)
			defer cancel()
		}
		resp := client.Solve(ctx, strings.Join(args, " "), askOpts.sessionID)

		if askOpts.graphOut != "" && resp.Graph != nil {
			if err := os.WriteFile(askOpts.graphOut, resp.Graph.PNG, 0o644); err != nil {
				return fmt.Errorf("write graph: %w", err)
			}
		}
		if !askOpts.withImage {
			resp.GraphImage = ""
		}
		if askOpts.jsonOut {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(resp)
		}
		printAnswer(cmd, resp)
		return nil
	},
}

func printAnswer(cmd *cobra.Command, resp orchestrator.AnswerResponse) {
	out := cmd.OutOrStdout()
	for _, s := range resp.SolutionSteps {
		fmt.Fprintln(out, s)
	}
	fmt.Fprintf(out, "\nAnswer: %s\n", resp.FinalAnswer)
	fmt.Fprintf(out, "(%s, confidence %.2f, session %s)\n", resp.Method, resp.Confidence, resp.SessionID)
	if resp.HasGraph && askOpts.graphOut != "" {
		fmt.Fprintf(out, "Graph written to %s\n", askOpts.graphOut)
	}
}

func addAskFlags(fs *pflag.FlagSet, o *askOptions) {
	fs.StringVar(&o.sessionID, "session", "", "session id for follow-up questions")
	fs.StringVar(&o.graphOut, "graph", "", "write the graph PNG to this file")
	fs.BoolVar(&o.jsonOut, "json", false, "print the full response as JSON")
	fs.BoolVar(&o.withImage, "with-image", false, "keep the base64 graph in JSON output")
}

func init() {
	addAskFlags(askCmd.Flags(), &askOpts)
}
