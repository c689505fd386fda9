package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nekocode/agent-team/internal/agentteam/endpoint"
	"github.com/nekocode/agent-team/internal/agentteam/protocol"
	"github.com/nekocode/agent-team/internal/agentteam/registry"
	"github.com/nekocode/agent-team/internal/agentteam/rpcclient"
)

var rmFlags struct {
	all bool
}

var rmCmd = &cobra.Command{
	Use:   "rm [name]",
	Short: "Shut down an agent session",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRm,
}

func init() {
	rmCmd.Flags().BoolVar(&rmFlags.all, "all", false, "shut down every running agent")
}

func runRm(cmd *cobra.Command, args []string) error {
	if rmFlags.all {
		for _, name := range registry.ExistingNames() {
			resp := rmOne(name)
			fmt.Printf("%s: %s\n", name, resp.Message)
		}
		return nil
	}
	if len(args) != 1 {
		return cmd.Usage()
	}
	printAndExit(rmOne(args[0]))
	return nil
}

func rmOne(name string) protocol.SessionResponse {
	resp, err := rpcclient.Call(name, protocol.SessionRequest{Type: protocol.TypeShutdown})
	if err != nil {
		_ = endpoint.Remove(name)
		return protocol.Ok(name + ": removed stale endpoint")
	}
	return resp
}
