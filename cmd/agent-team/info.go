package main

import (
	"github.com/spf13/cobra"

	"github.com/nekocode/agent-team/internal/agentteam/protocol"
	"github.com/nekocode/agent-team/internal/agentteam/rpcclient"
)

var infoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show agent details",
	Args:  cobra.ExactArgs(1),
	RunE:  simpleRequest(protocol.TypeGetStatus),
}
