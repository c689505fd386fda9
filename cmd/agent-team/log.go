package main

import (
	"github.com/spf13/cobra"

	"github.com/nekocode/agent-team/internal/agentteam/protocol"
	"github.com/nekocode/agent-team/internal/agentteam/rpcclient"
)

var logFlags struct {
	last      int
	agentOnly bool
}

var logCmd = &cobra.Command{
	Use:   "log <name>",
	Short: "View agent output history",
	Args:  cobra.ExactArgs(1),
	RunE:  runLog,
}

func init() {
	logCmd.Flags().IntVarP(&logFlags.last, "last", "n", 1, "show last N messages (0 = all)")
	logCmd.Flags().BoolVarP(&logFlags.agentOnly, "agent_only", "a", false, "show only agent messages, excluding user prompts")
}

func runLog(cmd *cobra.Command, args []string) error {
	resp, err := rpcclient.Call(args[0], protocol.SessionRequest{
		Type:      protocol.TypeGetOutput,
		Last:      logFlags.last,
		AgentOnly: logFlags.agentOnly,
	})
	if err != nil {
		exitOnError(err)
		return nil
	}
	printAndExit(resp)
	return nil
}
