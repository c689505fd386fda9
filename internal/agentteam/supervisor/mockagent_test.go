package supervisor

// mockagent_test.go implements a tiny ACP agent, driven over this test
// binary's own stdin/stdout when re-exec'd as a subprocess, so the
// supervisor integration tests below can spawn a real child process
// without depending on an external agent binary. The re-exec-self
// pattern mirrors the standard library's own TestHelperProcess idiom
// (see os/exec's tests).

import (
	"context"
	"os"
	"strings"

	"github.com/coder/acp-go-sdk"
)

// mockAgentEnv, when set to "1" in the test process's own environment
// before spawning a Handle whose Command is os.Args[0], causes the
// re-exec'd child to run runMockAgentProcess instead of go test's
// normal test selection.
const mockAgentEnv = "AGENT_TEAM_SUPERVISOR_MOCK_AGENT"

// permissionMarker in a prompt's text asks the mock agent to request
// permission before finishing the turn, exercising the permission
// gate end to end.
const permissionMarker = "REQUEST_PERMISSION"

type mockAgent struct {
	conn *acp.AgentSideConnection
}

func (a *mockAgent) SetAgentConnection(c *acp.AgentSideConnection) { a.conn = c }

func (*mockAgent) Authenticate(ctx context.Context, _ acp.AuthenticateRequest) error { return nil }

func (*mockAgent) Initialize(ctx context.Context, _ acp.InitializeRequest) (acp.InitializeResponse, error) {
	return acp.InitializeResponse{
		ProtocolVersion: acp.ProtocolVersionNumber,
		AgentInfo:       &acp.Implementation{Name: "mock-agent", Version: "0.1.0"},
	}, nil
}

func (*mockAgent) NewSession(ctx context.Context, _ acp.NewSessionRequest) (acp.NewSessionResponse, error) {
	return acp.NewSessionResponse{SessionId: acp.SessionId("sess-mock-1")}, nil
}

func (*mockAgent) Cancel(ctx context.Context, _ acp.CancelNotification) error { return nil }

func (a *mockAgent) Prompt(ctx context.Context, p acp.PromptRequest) (acp.PromptResponse, error) {
	text := ""
	if len(p.Prompt) > 0 && p.Prompt[0].Text != nil {
		text = p.Prompt[0].Text.Text
	}

	_ = a.conn.SessionUpdate(ctx, acp.SessionNotification{
		SessionId: p.SessionId,
		Update: acp.SessionUpdate{
			AgentMessageChunk: &acp.SessionUpdateAgentMessageChunk{
				Content: acp.TextBlock("echo: " + text),
			},
		},
	})

	if strings.Contains(text, permissionMarker) {
		resp, _ := a.conn.RequestPermission(ctx, acp.RequestPermissionRequest{
			SessionId: p.SessionId,
			ToolCall: acp.ToolCallUpdate{
				ToolCallId: acp.ToolCallId("call-1"),
				Title:      acp.Ptr("Apply change"),
			},
			Options: []acp.PermissionOption{
				{Kind: acp.PermissionOptionKindAllowOnce, Name: "Allow", OptionId: acp.PermissionOptionId("allow")},
				{Kind: acp.PermissionOptionKindRejectOnce, Name: "Reject", OptionId: acp.PermissionOptionId("reject")},
			},
		})

		outcome := "denied"
		if resp.Outcome.Selected != nil && string(resp.Outcome.Selected.OptionId) == "allow" {
			outcome = "approved"
		}
		_ = a.conn.SessionUpdate(ctx, acp.SessionNotification{
			SessionId: p.SessionId,
			Update: acp.SessionUpdate{
				AgentMessageChunk: &acp.SessionUpdateAgentMessageChunk{
					Content: acp.TextBlock("permission " + outcome),
				},
			},
		})
	}

	return acp.PromptResponse{StopReason: acp.StopReasonEndTurn}, nil
}

// runMockAgentProcess serves the ACP agent side over this process's
// own stdio until the peer disconnects.
func runMockAgentProcess() {
	ag := &mockAgent{}
	conn := acp.NewAgentSideConnection(ag, os.Stdout, os.Stdin)
	ag.SetAgentConnection(conn)
	<-conn.Done()
}
