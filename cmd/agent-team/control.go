package main

import (
	"github.com/spf13/cobra"

	"github.com/nekocode/agent-team/internal/agentteam/protocol"
	"github.com/nekocode/agent-team/internal/agentteam/rpcclient"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <name>",
	Short: "Cancel the agent's current task",
	Args:  cobra.ExactArgs(1),
	RunE:  simpleRequest(protocol.TypeCancel),
}

var allowCmd = &cobra.Command{
	Use:   "allow <name>",
	Short: "Approve the agent's pending permission request",
	Args:  cobra.ExactArgs(1),
	RunE:  simpleRequest(protocol.TypeApprovePermission),
}

var denyCmd = &cobra.Command{
	Use:   "deny <name>",
	Short: "Deny the agent's pending permission request",
	Args:  cobra.ExactArgs(1),
	RunE:  simpleRequest(protocol.TypeDenyPermission),
}

var restartCmd = &cobra.Command{
	Use:   "restart <name>",
	Short: "Restart the agent process",
	Args:  cobra.ExactArgs(1),
	RunE:  simpleRequest(protocol.TypeRestart),
}

// simpleRequest builds a RunE for subcommands that forward <name> as a
// bare, argument-less request of the given type.
func simpleRequest(reqType string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		resp, err := rpcclient.Call(args[0], protocol.SessionRequest{Type: reqType})
		if err != nil {
			exitOnError(err)
			return nil
		}
		printAndExit(resp)
		return nil
	}
}
