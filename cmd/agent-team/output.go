package main

import (
	"fmt"
	"os"

	"github.com/nekocode/agent-team/internal/agentteam/protocol"
)

// printAndExit renders resp to stdout (Ok/Status/Output) or stderr
// (Error) and exits with the matching code.
func printAndExit(resp protocol.SessionResponse) {
	switch resp.Type {
	case protocol.TypeOk:
		fmt.Println(resp.Message)
		os.Exit(0)
	case protocol.TypeStatus:
		printStatus(*resp.Summary)
		os.Exit(0)
	case protocol.TypeOutput:
		printOutput(resp)
		os.Exit(0)
	case protocol.TypeError:
		fmt.Fprintln(os.Stderr, resp.Message)
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "agent-team: unrecognized response %q\n", resp.Type)
		os.Exit(1)
	}
}

// exitOnError prints a transport-level failure (could not even reach
// the endpoint) and exits non-zero.
func exitOnError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func printStatus(s protocol.StatusSummary) {
	fmt.Printf("name:                %s\n", s.Name)
	fmt.Printf("agent_type:          %s\n", s.AgentType)
	fmt.Printf("cwd:                 %s\n", s.Cwd)
	fmt.Printf("status:              %s\n", s.Status)
	fmt.Printf("uptime:              %s\n", s.Uptime)
	fmt.Printf("prompt_count:        %d\n", s.PromptCount)
	fmt.Printf("pending_permissions: %d\n", s.PendingPermissions)
	fmt.Printf("agent_info_name:     %s\n", s.AgentInfoName)
	fmt.Printf("agent_info_version:  %s\n", s.AgentInfoVersion)
}

func printOutput(resp protocol.SessionResponse) {
	for _, e := range resp.Entries {
		fmt.Printf("[%s] %s: %s\n", e.Timestamp, e.UpdateType, e.Content)
	}
}
