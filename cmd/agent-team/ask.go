package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nekocode/agent-team/internal/agentteam/protocol"
	"github.com/nekocode/agent-team/internal/agentteam/rpcclient"
)

var askFlags struct {
	files []string
}

var askCmd = &cobra.Command{
	Use:   "ask <name> [text]",
	Short: "Send a prompt to an agent (reads stdin if text is omitted)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringArrayVarP(&askFlags.files, "file", "f", nil, "attach a file's content (repeatable)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	name := args[0]

	text := ""
	if len(args) == 2 {
		text = args[1]
	} else {
		stdin, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("agent-team: failed to read stdin: %w", err)
		}
		text = string(stdin)
	}

	var files []protocol.FileAttachment
	for _, path := range askFlags.files {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("agent-team: failed to read attachment %q: %w", path, err)
		}
		files = append(files, protocol.FileAttachment{Path: path, Content: string(content)})
	}

	resp, err := rpcclient.Call(name, protocol.SessionRequest{Type: protocol.TypePrompt, Text: text, Files: files})
	if err != nil {
		exitOnError(err)
		return nil
	}
	printAndExit(resp)
	return nil
}
