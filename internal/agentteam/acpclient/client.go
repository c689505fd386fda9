// Package acpclient implements the client side of the Agent Client
// Protocol: the two callbacks the ACP runtime invokes on this process
// (session_notification, request_permission) plus the file/terminal
// service methods the acp.Client interface requires of any ACP client.
package acpclient

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/coder/acp-go-sdk"
	"go.uber.org/zap"

	"github.com/nekocode/agent-team/internal/agentteam/buffer"
	"github.com/nekocode/agent-team/internal/agentteam/permission"
	"github.com/nekocode/agent-team/internal/agentteam/status"
)

// Policy is the global auto-approve policy governing request_permission:
// Always, Never, or ReadOnly. Only Always is distinguished from
// "otherwise" today — Never and ReadOnly behave identically, since the
// supervisor has no notion of read/write tool classification to give
// ReadOnly a distinct behavior without interpreting ACP payload
// semantics.
type Policy string

const (
	PolicyAlways   Policy = "always"
	PolicyNever    Policy = "never"
	PolicyReadOnly Policy = "read_only"
)

// Client implements acp.Client.
type Client struct {
	logger        *zap.Logger
	workspaceRoot string

	buf        *buffer.Buffer
	queue      *permission.Queue
	statusCell *status.Cell
	policy     Policy
	broadcast  chan<- buffer.Entry
}

// Option configures a Client.
type Option func(*Client)

func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.logger = l } }

func WithWorkspaceRoot(root string) Option { return func(c *Client) { c.workspaceRoot = root } }

func WithPolicy(p Policy) Option { return func(c *Client) { c.policy = p } }

// WithBroadcast sets an optional channel every appended entry is also
// forwarded to, best-effort (a full channel drops the entry rather than
// blocking the callback).
func WithBroadcast(ch chan<- buffer.Entry) Option { return func(c *Client) { c.broadcast = ch } }

// New creates a Client over the given shared buffer, permission queue,
// and status cell (see DESIGN NOTES: "pass only what the handler needs").
func New(buf *buffer.Buffer, queue *permission.Queue, statusCell *status.Cell, opts ...Option) *Client {
	c := &Client{
		logger:        zap.NewNop(),
		workspaceRoot: "/",
		buf:           buf,
		queue:         queue,
		statusCell:    statusCell,
		policy:        PolicyNever,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) push(typ buffer.EntryType, content string) {
	if content == "" {
		return
	}
	e := buffer.Entry{Timestamp: time.Now().UTC(), Type: typ, Content: content}
	c.buf.Push(e)
	if c.broadcast != nil {
		select {
		case c.broadcast <- e:
		default:
		}
	}
}

// SessionUpdate maps an ACP session notification onto ring-buffer
// entries.
func (c *Client) SessionUpdate(ctx context.Context, n acp.SessionNotification) error {
	u := n.Update

	switch {
	case u.AgentMessageChunk != nil:
		if u.AgentMessageChunk.Content.Text != nil {
			c.push(buffer.AgentMessage, u.AgentMessageChunk.Content.Text.Text)
		}

	case u.AgentThoughtChunk != nil:
		if u.AgentThoughtChunk.Content.Text != nil {
			c.push(buffer.AgentThought, u.AgentThoughtChunk.Content.Text.Text)
		}

	case u.ToolCall != nil:
		title := u.ToolCall.Title
		c.push(buffer.ToolCallStart, title)

	case u.ToolCallUpdate != nil:
		var parts []string
		if u.ToolCallUpdate.Title != nil && *u.ToolCallUpdate.Title != "" {
			parts = append(parts, *u.ToolCallUpdate.Title)
		}
		if u.ToolCallUpdate.Status != nil && string(*u.ToolCallUpdate.Status) != "" {
			parts = append(parts, string(*u.ToolCallUpdate.Status))
		}
		content := strings.Join(parts, " ")
		if content == "" {
			content = "(No details)"
		}
		c.push(buffer.ToolCallUpdate, content)

	case u.Plan != nil:
		var sb strings.Builder
		sb.WriteString("Plan:\n")
		for _, entry := range u.Plan.Entries {
			fmt.Fprintf(&sb, "  [%s] %s\n", entry.Status, entry.Content)
		}
		c.push(buffer.PlanUpdate, strings.TrimRight(sb.String(), "\n"))

	case u.CurrentModeUpdate != nil:
		c.push(buffer.ModeUpdate, string(u.CurrentModeUpdate.CurrentModeId))

	case u.ConfigOptionUpdate != nil:
		parts := make([]string, 0, len(u.ConfigOptionUpdate.ConfigOptions))
		for _, opt := range u.ConfigOptionUpdate.ConfigOptions {
			parts = append(parts, fmt.Sprintf("%s (%s)", opt.Name, opt.OptionId))
		}
		c.push(buffer.ConfigUpdate, strings.Join(parts, ", "))

	default:
		// available-commands and other informational notifications are
		// silently dropped.
	}

	return nil
}

func toolInfo(p acp.RequestPermissionRequest) string {
	if p.ToolCall.Title != nil && *p.ToolCall.Title != "" {
		return *p.ToolCall.Title
	}
	if p.ToolCall.Kind != nil {
		return fmt.Sprintf("%+v", *p.ToolCall.Kind)
	}
	return "Unknown tool"
}

func selectedResponse(optionID acp.PermissionOptionId) acp.RequestPermissionResponse {
	return acp.RequestPermissionResponse{
		Outcome: acp.RequestPermissionOutcome{
			Selected: &acp.RequestPermissionOutcomeSelected{OptionId: optionID},
		},
	}
}

func cancelledResponse() acp.RequestPermissionResponse {
	return acp.RequestPermissionResponse{
		Outcome: acp.RequestPermissionOutcome{
			Cancelled: &acp.RequestPermissionOutcomeCancelled{},
		},
	}
}

// RequestPermission implements the permission-gating callback: it
// parks on the pending-permission queue until the user responds, or
// auto-approves under PolicyAlways.
func (c *Client) RequestPermission(ctx context.Context, p acp.RequestPermissionRequest) (acp.RequestPermissionResponse, error) {
	info := toolInfo(p)

	if c.policy == PolicyAlways {
		c.push(buffer.PermissionRequest, fmt.Sprintf("Permission auto-approved: %s", info))
		if len(p.Options) == 0 {
			c.logger.Warn("permission approved but no options available, cancelling")
			return cancelledResponse(), nil
		}
		return selectedResponse(p.Options[0].OptionId), nil
	}

	c.push(buffer.PermissionRequest, fmt.Sprintf("Permission requested: %s (Waiting for approval)", info))

	rec := permission.NewRecord(info)
	c.queue.Enqueue(rec)
	c.statusCell.Store(status.Status{Kind: status.WaitingPermission})

	var approved bool
	select {
	case approved = <-rec.Resp:
	case <-ctx.Done():
		approved = false
	}

	c.statusCell.Store(status.Status{Kind: status.Running})

	if !approved {
		return cancelledResponse(), nil
	}
	if len(p.Options) == 0 {
		c.logger.Warn("permission approved but no options available, cancelling")
		return cancelledResponse(), nil
	}
	return selectedResponse(p.Options[0].OptionId), nil
}

// resolvePath resolves a path relative to the agent's working directory
// and rejects traversal outside it.
func (c *Client) resolvePath(reqPath string) (string, error) {
	var resolved string
	if filepath.IsAbs(reqPath) {
		resolved = filepath.Clean(reqPath)
	} else {
		resolved = filepath.Join(c.workspaceRoot, reqPath)
	}
	root := filepath.Clean(c.workspaceRoot) + string(filepath.Separator)
	if resolved != filepath.Clean(c.workspaceRoot) && !strings.HasPrefix(resolved, root) {
		return "", fmt.Errorf("path %q resolves outside working directory %q", reqPath, c.workspaceRoot)
	}
	return resolved, nil
}

// ReadTextFile implements the client-side file-read service ACP agents
// may call, scoped to the agent's working directory. This is a client
// service the SDK requires an answer to, not notification semantics,
// so it is honored as an honest pass-through rather than stubbed out.
func (c *Client) ReadTextFile(ctx context.Context, p acp.ReadTextFileRequest) (acp.ReadTextFileResponse, error) {
	path, err := c.resolvePath(p.Path)
	if err != nil {
		return acp.ReadTextFileResponse{}, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return acp.ReadTextFileResponse{}, err
	}
	content := string(b)

	if p.Line != nil || p.Limit != nil {
		lines := strings.Split(content, "\n")
		start := 0
		if p.Line != nil && *p.Line > 0 {
			start = *p.Line - 1
			if start > len(lines) {
				start = len(lines)
			}
		}
		end := len(lines)
		if p.Limit != nil && *p.Limit > 0 && start+*p.Limit < end {
			end = start + *p.Limit
		}
		content = strings.Join(lines[start:end], "\n")
	}

	return acp.ReadTextFileResponse{Content: content}, nil
}

// WriteTextFile implements the client-side file-write service.
func (c *Client) WriteTextFile(ctx context.Context, p acp.WriteTextFileRequest) (acp.WriteTextFileResponse, error) {
	path, err := c.resolvePath(p.Path)
	if err != nil {
		return acp.WriteTextFileResponse{}, err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return acp.WriteTextFileResponse{}, err
		}
	}
	if err := os.WriteFile(path, []byte(p.Content), 0o644); err != nil {
		return acp.WriteTextFileResponse{}, err
	}
	return acp.WriteTextFileResponse{}, nil
}

// The terminal-service methods below are inert stubs: this repo owns
// exactly one child process's own stdio pipes and never allocates a
// pseudo-terminal for it, so there is no real terminal to back these
// with.

func (c *Client) CreateTerminal(ctx context.Context, p acp.CreateTerminalRequest) (acp.CreateTerminalResponse, error) {
	return acp.CreateTerminalResponse{TerminalId: "t-1"}, nil
}

func (c *Client) KillTerminalCommand(ctx context.Context, p acp.KillTerminalCommandRequest) (acp.KillTerminalCommandResponse, error) {
	return acp.KillTerminalCommandResponse{}, nil
}

func (c *Client) TerminalOutput(ctx context.Context, p acp.TerminalOutputRequest) (acp.TerminalOutputResponse, error) {
	return acp.TerminalOutputResponse{Output: "", Truncated: false}, nil
}

func (c *Client) ReleaseTerminal(ctx context.Context, p acp.ReleaseTerminalRequest) (acp.ReleaseTerminalResponse, error) {
	return acp.ReleaseTerminalResponse{}, nil
}

func (c *Client) WaitForTerminalExit(ctx context.Context, p acp.WaitForTerminalExitRequest) (acp.WaitForTerminalExitResponse, error) {
	exitCode := 0
	return acp.WaitForTerminalExitResponse{ExitCode: &exitCode}, nil
}

var _ acp.Client = (*Client)(nil)
