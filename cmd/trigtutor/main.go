// Command trigtutor answers trigonometry questions over HTTP, MCP or the
// command line, and builds the knowledge base artifact.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trigtutor/tutor/common/logger"
	"github.com/trigtutor/tutor/config"
)

var (
	configPath string
	logLevel   string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "trigtutor",
	Short: "Trigonometry tutor with worked solutions and graphs",
	Long: `trigtutor answers trigonometry questions with step-by-step solutions.

Questions are answered by pattern templates first, then by the closest
question in the knowledge base. Follow-ups such as "explain step 2" use
the conversation memory of the session.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level = logLevel
		}
		return logger.Init(logger.Options{Level: cfg.Log.Level, Development: cfg.Log.Development})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd, mcpCmd, askCmd, buildIndexCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
