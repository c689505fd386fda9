package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/nekocode/agent-team/internal/agentteam/launcher"
	"github.com/nekocode/agent-team/internal/agentteam/supervisor"
)

// runSupervisorCmd is the background launcher's re-exec target: not
// meant to be typed by a user, so it is hidden from --help and takes
// its configuration from flags the launcher itself encodes rather than
// cobra's own flag parsing (the agent's own argv may contain flags of
// its own after "--").
var runSupervisorCmd = &cobra.Command{
	Use:                launcher.Subcommand,
	Hidden:             true,
	DisableFlagParsing: true,
	RunE:               runRunSupervisor,
}

func runRunSupervisor(cmd *cobra.Command, args []string) error {
	cfg, err := launcher.DecodeArgs(args)
	if err != nil {
		return err
	}

	log := newLogger()
	srv := supervisor.New(supervisor.Config{
		Name:      cfg.Name,
		AgentType: cfg.AgentType,
		Command:   cfg.Command,
		Args:      cfg.Args,
		Cwd:       cfg.Cwd,
		Policy:    cfg.Policy,
	}, log)
	return srv.Run(context.Background())
}
