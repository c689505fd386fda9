package main

import (
	"github.com/spf13/cobra"

	"github.com/nekocode/agent-team/internal/agentteam/protocol"
	"github.com/nekocode/agent-team/internal/agentteam/rpcclient"
)

var setCmd = &cobra.Command{
	Use:   "set <name> <key> <value>",
	Short: "Set agent config at runtime (e.g. model, thinking_budget_tokens)",
	Args:  cobra.ExactArgs(3),
	RunE:  runSet,
}

func runSet(cmd *cobra.Command, args []string) error {
	resp, err := rpcclient.Call(args[0], protocol.SessionRequest{Type: protocol.TypeSetConfig, Key: args[1], Value: args[2]})
	if err != nil {
		exitOnError(err)
		return nil
	}
	printAndExit(resp)
	return nil
}
