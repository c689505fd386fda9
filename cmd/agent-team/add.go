package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nekocode/agent-team/internal/agentteam/acpclient"
	"github.com/nekocode/agent-team/internal/agentteam/launcher"
	"github.com/nekocode/agent-team/internal/agentteam/registry"
	"github.com/nekocode/agent-team/internal/agentteam/supervisor"
)

var addFlags struct {
	name       string
	cwd        string
	args       string
	background bool
}

var addCmd = &cobra.Command{
	Use:   "add <type>",
	Short: "Start a new agent session",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addFlags.name, "name", "", "custom agent name (default: {type}-{n})")
	addCmd.Flags().StringVar(&addFlags.cwd, "cwd", "", "working directory for the agent (default: current directory)")
	addCmd.Flags().StringVar(&addFlags.args, "args", "", "extra arguments passed to the agent process")
	addCmd.Flags().BoolVarP(&addFlags.background, "background", "b", false, "run in background, detached from the terminal")
}

func runAdd(cmd *cobra.Command, cliArgs []string) error {
	agentType := cliArgs[0]
	spec, err := registry.Lookup(agentType)
	if err != nil {
		return err
	}

	name := addFlags.name
	if name == "" {
		name = registry.GenerateName(agentType)
	}

	cwd := addFlags.cwd
	if cwd == "" {
		cwd, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("agent-team: failed to resolve current directory: %w", err)
		}
	}

	agentArgs := spec.Args
	if addFlags.args != "" {
		agentArgs = append(append([]string(nil), spec.Args...), strings.Fields(addFlags.args)...)
	}

	cfg := launcher.Config{
		Name:      name,
		AgentType: agentType,
		Command:   spec.Command,
		Args:      agentArgs,
		Cwd:       cwd,
		Policy:    acpclient.PolicyNever,
	}

	if addFlags.background {
		if err := launcher.Launch(cfg); err != nil {
			return err
		}
		fmt.Printf("started %s in background (log: %s)\n", name, registry.LogPath(name))
		return nil
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
