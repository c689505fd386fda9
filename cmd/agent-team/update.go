package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// updateCmd exists so the subcommand is recognized, but self-update has
// no release channel wired into this build to check or replace itself
// against.
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update agent-team to the latest version",
	Args:  cobra.NoArgs,
	RunE:  runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	return fmt.Errorf("agent-team: self-update is not supported by this build; reinstall manually")
}
