package main

import (
	"github.com/spf13/cobra"

	"github.com/nekocode/agent-team/internal/agentteam/protocol"
	"github.com/nekocode/agent-team/internal/agentteam/rpcclient"
)

var modeCmd = &cobra.Command{
	Use:   "mode <name> <mode>",
	Short: "Switch the agent's session mode (e.g. ask, code, architect)",
	Args:  cobra.ExactArgs(2),
	RunE:  runMode,
}

func runMode(cmd *cobra.Command, args []string) error {
	resp, err := rpcclient.Call(args[0], protocol.SessionRequest{Type: protocol.TypeSetMode, Mode: args[1]})
	if err != nil {
		exitOnError(err)
		return nil
	}
	printAndExit(resp)
	return nil
}
