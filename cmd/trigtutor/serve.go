package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trigtutor/tutor"
	"github.com/trigtutor/tutor/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client, err := tutor.NewTutorClient(ctx, cfg)
		if err != nil {
			return err
		}
		defer client.Close()
		return server.New(cfg, client.Solver(), client.Knowledge()).Run(ctx)
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the tutor as MCP tools on stdin/stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := tutor.NewTutorClient(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer client.Close()
		return tutor.ServeStdio(client)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overrides server.addr")
}
