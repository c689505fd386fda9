// Package agent implements the agent handle: spawning the child process,
// driving the ACP initialize/new_session handshake, and tracking status,
// uptime, prompt count, and the agent's self-reported name/version.
package agent

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/acp-go-sdk"
	"go.uber.org/zap"

	"github.com/nekocode/agent-team/internal/agentteam/acpclient"
	"github.com/nekocode/agent-team/internal/agentteam/apierr"
	"github.com/nekocode/agent-team/internal/agentteam/buffer"
	"github.com/nekocode/agent-team/internal/agentteam/logger"
	"github.com/nekocode/agent-team/internal/agentteam/permission"
	"github.com/nekocode/agent-team/internal/agentteam/status"
)

// maxStderrCapture caps the background stderr accumulator at 64 KiB;
// further bytes are dropped.
const maxStderrCapture = 64 * 1024

// Spec holds everything needed to spawn an agent subprocess.
type Spec struct {
	Name      string
	AgentType string
	Command   string
	Args      []string
	Cwd       string
	Policy    acpclient.Policy
	Broadcast chan<- buffer.Entry
}

// Handle is the exclusive owner of one agent's child process, ACP
// connection, session id, status cell, prompt counter, and self-reported
// name/version; it shares the output buffer and pending-permission queue
// with the ACP callback handler.
type Handle struct {
	Spec Spec

	Buffer      *buffer.Buffer
	Permissions *permission.Queue
	Status      *status.Cell

	startedAt time.Time

	mu          sync.Mutex
	cmd         *exec.Cmd
	conn        *acp.ClientSideConnection
	sessionID   string
	stderrTail  *stderrCapture
	agentName   atomic.Value
	agentVer    atomic.Value
	promptCount atomic.Int64

	logger *logger.Logger
}

type stderrCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *stderrCapture) write(p []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	remaining := maxStderrCapture - s.buf.Len()
	if remaining <= 0 {
		return
	}
	if len(p) > remaining {
		p = p[:remaining]
	}
	s.buf.Write(p)
}

func (s *stderrCapture) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// New creates an un-started Handle sharing the given buffer, permission
// queue and status cell (already at status.Starting).
func New(spec Spec, buf *buffer.Buffer, queue *permission.Queue, cell *status.Cell, log *logger.Logger) *Handle {
	return &Handle{
		Spec:        spec,
		Buffer:      buf,
		Permissions: queue,
		Status:      cell,
		logger:      log.WithFields(zap.String("agent", spec.Name)),
	}
}

// Spawn launches the child process and drives it to Idle.
func (h *Handle) Spawn(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	cmd := exec.Command(h.Spec.Command, h.Spec.Args...)
	cmd.Dir = h.Spec.Cwd

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("agent: failed to open stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("agent: failed to open stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("agent: failed to open stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return apierr.New(apierr.Spawn, "agent: failed to start %q: %w", h.Spec.Command, err)
	}

	h.cmd = cmd
	h.stderrTail = &stderrCapture{}
	go drainStderr(stderr, h.stderrTail)

	acpClient := acpclient.New(h.Buffer, h.Permissions, h.Status,
		acpclient.WithLogger(h.logger.Zap()),
		acpclient.WithWorkspaceRoot(h.Spec.Cwd),
		acpclient.WithPolicy(h.Spec.Policy),
		acpclient.WithBroadcast(h.Spec.Broadcast),
	)

	conn := acp.NewClientSideConnection(acpClient, stdin, stdout)
	conn.SetLogger(slog.Default().With("component", "acp-conn", "agent", h.Spec.Name))

	resp, err := conn.Initialize(ctx, acp.InitializeRequest{
		ProtocolVersion: acp.ProtocolVersionNumber,
		ClientInfo: &acp.Implementation{
			Name:    "agent-team",
			Version: "1.0.0",
		},
	})
	if err != nil {
		time.Sleep(200 * time.Millisecond)
		tail := h.stderrTail.String()
		return apierr.New(apierr.ProtocolInit, "agent: ACP initialize failed: %w (stderr tail: %s)", err, tail)
	}
	if resp.AgentInfo != nil {
		h.agentName.Store(resp.AgentInfo.Name)
		h.agentVer.Store(resp.AgentInfo.Version)
	}

	sessResp, err := conn.NewSession(ctx, acp.NewSessionRequest{Cwd: h.Spec.Cwd})
	if err != nil {
		time.Sleep(200 * time.Millisecond)
		tail := h.stderrTail.String()
		return apierr.New(apierr.ProtocolInit, "agent: ACP new_session failed: %w (stderr tail: %s)", err, tail)
	}

	h.conn = conn
	h.sessionID = string(sessResp.SessionId)
	h.startedAt = time.Now()
	h.Status.Store(status.Status{Kind: status.Idle})

	return nil
}

func drainStderr(r io.Reader, capture *stderrCapture) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			capture.write(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// AgentInfo returns the agent's self-reported name/version, or ("", "")
// if not yet known.
func (h *Handle) AgentInfo() (name, version string) {
	if v, ok := h.agentName.Load().(string); ok {
		name = v
	}
	if v, ok := h.agentVer.Load().(string); ok {
		version = v
	}
	return name, version
}

// Uptime returns time since the handle reached Idle after spawning,
// formatted "{m}m {s}s"; callers must not parse this string, only
// display it.
func (h *Handle) Uptime() string {
	if h.startedAt.IsZero() {
		return "0m 0s"
	}
	d := time.Since(h.startedAt)
	m := int(d.Minutes())
	s := int(d.Seconds()) - m*60
	return fmt.Sprintf("%dm %ds", m, s)
}

// PromptCount returns the number of prompts sent so far.
func (h *Handle) PromptCount() int64 {
	return h.promptCount.Load()
}

// IncPromptCount increments and returns the new prompt count.
func (h *Handle) IncPromptCount() int64 {
	return h.promptCount.Add(1)
}

// SessionID returns the current ACP session id.
func (h *Handle) SessionID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessionID
}

// Conn returns the underlying ACP connection, or nil if not connected.
func (h *Handle) Conn() *acp.ClientSideConnection {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conn
}

// Prompt issues an ACP prompt call with the given content blocks.
func (h *Handle) Prompt(ctx context.Context, blocks []acp.ContentBlock) (acp.PromptResponse, error) {
	conn := h.Conn()
	sessionID := h.SessionID()
	if conn == nil || sessionID == "" {
		return acp.PromptResponse{}, apierr.New(apierr.State, "agent: no active session")
	}
	resp, err := conn.Prompt(ctx, acp.PromptRequest{
		SessionId: acp.SessionId(sessionID),
		Prompt:    blocks,
	})
	return resp, apierr.Wrap(apierr.ACP, err)
}

// Cancel issues an advisory ACP cancel notification.
func (h *Handle) Cancel(ctx context.Context) error {
	conn := h.Conn()
	sessionID := h.SessionID()
	if conn == nil || sessionID == "" {
		return nil
	}
	return apierr.Wrap(apierr.ACP, conn.Cancel(ctx, acp.CancelNotification{SessionId: acp.SessionId(sessionID)}))
}

// SetMode forwards to ACP set_session_mode.
func (h *Handle) SetMode(ctx context.Context, mode string) error {
	conn := h.Conn()
	sessionID := h.SessionID()
	if conn == nil || sessionID == "" {
		return apierr.New(apierr.State, "agent: no active session")
	}
	_, err := conn.SetSessionMode(ctx, acp.SetSessionModeRequest{
		SessionId: acp.SessionId(sessionID),
		ModeId:    acp.SessionModeId(mode),
	})
	return apierr.Wrap(apierr.ACP, err)
}

// SetConfig forwards to ACP set_session_config_option.
func (h *Handle) SetConfig(ctx context.Context, key, value string) error {
	conn := h.Conn()
	sessionID := h.SessionID()
	if conn == nil || sessionID == "" {
		return apierr.New(apierr.State, "agent: no active session")
	}
	_, err := conn.SetSessionConfigOption(ctx, acp.SetSessionConfigOptionRequest{
		SessionId: acp.SessionId(sessionID),
		OptionId:  acp.SessionConfigOptionId(key),
		ValueId:   acp.SessionConfigOptionValueId(value),
	})
	return apierr.Wrap(apierr.ACP, err)
}

// PID returns the child process id, or 0 if not running.
func (h *Handle) PID() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cmd == nil || h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

// TakeChild atomically removes and returns the child *exec.Cmd and ACP
// connection, taking the connection, session id, and child out of the
// handle so Restart/Shutdown can tear them down without racing a
// concurrent caller.
func (h *Handle) TakeChild() (*exec.Cmd, *acp.ClientSideConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cmd := h.cmd
	conn := h.conn
	h.cmd = nil
	h.conn = nil
	h.sessionID = ""
	return cmd, conn
}
