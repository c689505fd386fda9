// Command agent-team is the CLI front-end: it dispatches one of its
// subcommands against a per-agent supervisor: `add` runs a new
// supervisor in the foreground (or, with -b, via the background
// launcher), and every other subcommand talks to an already-running
// supervisor over its local RPC endpoint.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nekocode/agent-team/internal/agentteam/config"
	"github.com/nekocode/agent-team/internal/agentteam/logger"
)

var rootCmd = &cobra.Command{
	Use:           "agent-team",
	Short:         "Run and control AI coding agents speaking the Agent Client Protocol",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(allowCmd)
	rootCmd.AddCommand(denyCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(restartCmd)
	rootCmd.AddCommand(modeCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(runSupervisorCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "agent-team: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the process-wide logger, gated by AGENT_TEAM_LOG.
func newLogger() *logger.Logger {
	level := config.LogLevel()
	if level == "" {
		level = "info"
	}
	log, err := logger.NewLogger(logger.Config{Level: level, Format: "console", OutputPath: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "agent-team: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	return log
}
