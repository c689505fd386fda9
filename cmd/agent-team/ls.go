package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nekocode/agent-team/internal/agentteam/endpoint"
	"github.com/nekocode/agent-team/internal/agentteam/protocol"
	"github.com/nekocode/agent-team/internal/agentteam/registry"
	"github.com/nekocode/agent-team/internal/agentteam/rpcclient"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List known agent sessions",
	Args:  cobra.NoArgs,
	RunE:  runLs,
}

func runLs(cmd *cobra.Command, args []string) error {
	names := registry.ExistingNames()
	if len(names) == 0 {
		fmt.Println("no agents")
		return nil
	}
	for _, name := range names {
		resp, err := rpcclient.Call(name, protocol.SessionRequest{Type: protocol.TypeGetStatus})
		if err != nil {
			_ = endpoint.RemoveStale(name)
			fmt.Printf("%-20s stale\n", name)
			continue
		}
		s := resp.Summary
		fmt.Printf("%-20s %-20s %-10s uptime=%s prompts=%d pending=%d\n",
			s.Name, s.AgentType, s.Status, s.Uptime, s.PromptCount, s.PendingPermissions)
	}
	return nil
}
