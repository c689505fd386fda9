// Package supervisor implements the per-agent session supervisor: the
// RPC accept loop, request dispatcher, status-machine guards,
// auto-cancel, restart, and graceful shutdown.
package supervisor

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"time"

	"github.com/coder/acp-go-sdk"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nekocode/agent-team/internal/agentteam/acpclient"
	"github.com/nekocode/agent-team/internal/agentteam/agent"
	"github.com/nekocode/agent-team/internal/agentteam/apierr"
	"github.com/nekocode/agent-team/internal/agentteam/buffer"
	"github.com/nekocode/agent-team/internal/agentteam/codec"
	"github.com/nekocode/agent-team/internal/agentteam/endpoint"
	"github.com/nekocode/agent-team/internal/agentteam/logger"
	"github.com/nekocode/agent-team/internal/agentteam/permission"
	"github.com/nekocode/agent-team/internal/agentteam/procutil"
	"github.com/nekocode/agent-team/internal/agentteam/protocol"
	"github.com/nekocode/agent-team/internal/agentteam/status"
)

// autoCancelSettleWindow is the settle deadline for auto-cancel.
const autoCancelSettleWindow = 5 * time.Second

// childShutdownTimeout is how long the child gets to exit after SIGTERM
// before SIGKILL escalation.
const childShutdownTimeout = 3 * time.Second

// Config holds everything needed to run one supervisor.
type Config struct {
	Name      string
	AgentType string
	Command   string
	Args      []string
	Cwd       string
	Policy    acpclient.Policy
}

// Event is an {tag, message} notification the dispatcher emits on
// notable transitions (cancelled, approved, denied, restarted, exited,
// done, idle, error).
type Event struct {
	Tag     string
	Message string
}

// Server is one agent's session supervisor.
type Server struct {
	cfg    Config
	logger *logger.Logger

	mu     sync.RWMutex
	handle *agent.Handle

	broadcast chan buffer.Entry
	events    chan Event

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// New creates a Server for cfg. Call Run to start it.
func New(cfg Config, log *logger.Logger) *Server {
	return &Server{
		cfg:        cfg,
		logger:     log.WithFields(zap.String("agent", cfg.Name)),
		broadcast:  make(chan buffer.Entry, 256),
		events:     make(chan Event, 256),
		shutdownCh: make(chan struct{}),
	}
}

// Events returns the channel of emitted Info events, for a terminal
// printer or test harness to consume.
func (s *Server) Events() <-chan Event { return s.events }

// Broadcast returns the channel every ring-buffer append is also
// forwarded to, for a terminal printer to consume.
func (s *Server) Broadcast() <-chan buffer.Entry { return s.broadcast }

func (s *Server) emit(tag, message string) {
	select {
	case s.events <- Event{Tag: tag, Message: message}:
	default:
	}
}

func (s *Server) currentHandle() *agent.Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handle
}

func (s *Server) buildHandle() *agent.Handle {
	buf := buffer.New(buffer.DefaultCapacity)
	queue := permission.NewQueue()
	cell := status.NewCell(status.Status{Kind: status.Starting})
	spec := agent.Spec{
		Name:      s.cfg.Name,
		AgentType: s.cfg.AgentType,
		Command:   s.cfg.Command,
		Args:      s.cfg.Args,
		Cwd:       s.cfg.Cwd,
		Policy:    s.cfg.Policy,
		Broadcast: s.broadcast,
	}
	return agent.New(spec, buf, queue, cell, s.logger)
}

// spawnInitial builds and spawns the first handle for this supervisor.
func (s *Server) spawnInitial(ctx context.Context) {
	h := s.buildHandle()
	s.mu.Lock()
	s.handle = h
	s.mu.Unlock()

	if err := h.Spawn(ctx); err != nil {
		h.Status.Store(status.Status{Kind: status.Error, Message: err.Error()})
		s.logger.Error("failed to spawn agent", zap.Error(err))
	}
}

// Run starts the supervisor: binds the endpoint, spawns the agent, and
// serves RPC connections until a signal, an explicit Shutdown request,
// or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := endpoint.Listen(s.cfg.Name)
	if err != nil {
		return fmt.Errorf("supervisor: failed to bind endpoint: %w", err)
	}
	defer ln.Close()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, procutil.ShutdownSignals()...)
	defer signal.Stop(signalCh)

	s.spawnInitial(ctx)

	type acceptResult struct {
		conn net.Conn
		err  error
	}
	acceptCh := make(chan acceptResult)
	go func() {
		for {
			conn, err := ln.Accept()
			acceptCh <- acceptResult{conn: conn, err: err}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case res := <-acceptCh:
			if res.err != nil {
				s.logger.Info("listener closed", zap.Error(res.err))
				s.gracefulClose(context.Background())
				return nil
			}
			go s.handleConn(ctx, res.conn)

		case <-s.shutdownCh:
			s.gracefulClose(context.Background())
			return nil

		case sig := <-signalCh:
			s.logger.Info("received shutdown signal", zap.String("signal", sig.String()))
			s.gracefulClose(context.Background())
			return nil

		case <-ctx.Done():
			s.gracefulClose(context.Background())
			return ctx.Err()
		}
	}
}

// triggerShutdown asks the main loop to quiesce after the response to a
// Shutdown request has been written.
func (s *Server) triggerShutdown() {
	s.shutdownOnce.Do(func() { close(s.shutdownCh) })
}

// gracefulClose drives the graceful-close sequence shared by every
// shutdown path: take the ACP pieces out of the handle, send ACP
// cancel, shut down the child, and let the caller's deferred
// listener.Close() remove the endpoint file.
func (s *Server) gracefulClose(ctx context.Context) {
	h := s.currentHandle()
	if h == nil {
		return
	}
	h.Status.Store(status.Status{Kind: status.Stopping})
	_ = h.Cancel(ctx)
	cmd, _ := h.TakeChild()
	s.shutdownChild(cmd)
}

// shutdownChild sends SIGTERM, waits up to childShutdownTimeout, then
// escalates to SIGKILL.
func (s *Server) shutdownChild(cmd *exec.Cmd) {
	if cmd == nil || cmd.Process == nil {
		return
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	if err := procutil.Terminate(cmd.Process.Pid); err != nil {
		s.logger.Warn("failed to send terminate signal", zap.Error(err))
	}

	select {
	case <-done:
		s.emit("exited", exitMessage(cmd))
	case <-time.After(childShutdownTimeout):
		_ = procutil.Kill(cmd.Process.Pid)
		<-done
		s.emit("exited", "Timeout, SIGKILL sent")
	}
}

func exitMessage(cmd *exec.Cmd) string {
	if cmd.ProcessState == nil {
		return "exited"
	}
	return fmt.Sprintf("exit code %d", cmd.ProcessState.ExitCode())
}

// handleConn runs the per-connection request/response loop: strict
// request/response order, closing on EOF or parse error. Every
// connection gets a correlation ID so its requests can be traced
// through the log without reconstructing them from a raw fd.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	connLog := s.logger.WithFields(zap.String("conn_id", uuid.NewString()))
	r := codec.NewReader(conn)
	w := codec.NewWriter(conn)

	for {
		var req protocol.SessionRequest
		ok, err := r.ReadMessage(&req)
		if err != nil {
			connLog.Debug("connection closed: protocol error", zap.Error(apierr.Wrap(apierr.Transport, err)))
			return
		}
		if !ok {
			return
		}

		connLog.Debug("dispatching request", zap.String("type", req.Type))
		resp := s.dispatch(ctx, req)
		if err := w.WriteMessage(resp); err != nil {
			connLog.Debug("connection closed: write error", zap.Error(apierr.Wrap(apierr.Transport, err)))
			return
		}

		if req.Type == protocol.TypeShutdown {
			s.triggerShutdown()
		}
	}
}

// dispatch handles one request and returns its response.
func (s *Server) dispatch(ctx context.Context, req protocol.SessionRequest) protocol.SessionResponse {
	h := s.currentHandle()
	if h == nil {
		return protocol.Err("No active session")
	}

	switch req.Type {
	case protocol.TypeGetStatus:
		return s.handleGetStatus(h)
	case protocol.TypePrompt:
		return s.handlePrompt(ctx, h, req)
	case protocol.TypeGetOutput:
		return s.handleGetOutput(h, req)
	case protocol.TypeCancel:
		return s.handleCancel(ctx, h)
	case protocol.TypeApprovePermission:
		return s.handleApprove(h)
	case protocol.TypeDenyPermission:
		return s.handleDeny(h)
	case protocol.TypeRestart:
		return s.handleRestart(ctx)
	case protocol.TypeShutdown:
		return protocol.Ok("Session shutting down")
	case protocol.TypeSetMode:
		return s.handleSetMode(ctx, h, req)
	case protocol.TypeSetConfig:
		return s.handleSetConfig(ctx, h, req)
	default:
		return protocol.Err(fmt.Sprintf("unknown request type %q", req.Type))
	}
}

func (s *Server) handleGetStatus(h *agent.Handle) protocol.SessionResponse {
	name, version := h.AgentInfo()
	summary := protocol.StatusSummary{
		Name:               s.cfg.Name,
		AgentType:          s.cfg.AgentType,
		Cwd:                s.cfg.Cwd,
		Status:             h.Status.Load().String(),
		Uptime:             h.Uptime(),
		PromptCount:        int(h.PromptCount()),
		PendingPermissions: h.Permissions.TryLen(),
		AgentInfoName:      name,
		AgentInfoVersion:   version,
	}
	return protocol.StatusResp(summary)
}

func (s *Server) handleGetOutput(h *agent.Handle, req protocol.SessionRequest) protocol.SessionResponse {
	entries := h.Buffer.LastMessages(req.Last)
	out := make([]protocol.OutputEntry, 0, len(entries))
	for _, e := range entries {
		if req.AgentOnly && e.Type == buffer.UserPrompt {
			continue
		}
		out = append(out, protocol.ToOutputEntry(e))
	}
	name, _ := h.AgentInfo()
	return protocol.OutputResp(name, out)
}

func (s *Server) handleCancel(ctx context.Context, h *agent.Handle) protocol.SessionResponse {
	if err := h.Cancel(ctx); err != nil {
		return protocol.Err(err.Error())
	}
	s.emit("cancelled", "")
	return protocol.Ok("Cancel sent")
}

func (s *Server) handleApprove(h *agent.Handle) protocol.SessionResponse {
	rec, ok := h.Permissions.Approve()
	if !ok {
		return protocol.Err("No pending permissions")
	}
	s.logger.Debug("permission approved", zap.String("permission_id", rec.ID), zap.String("tool", rec.ToolInfo))
	s.emit("approved", rec.ToolInfo)
	return protocol.Ok(fmt.Sprintf("Approved: %s", rec.ToolInfo))
}

func (s *Server) handleDeny(h *agent.Handle) protocol.SessionResponse {
	rec, ok := h.Permissions.Deny()
	if !ok {
		return protocol.Err("No pending permissions")
	}
	s.logger.Debug("permission denied", zap.String("permission_id", rec.ID), zap.String("tool", rec.ToolInfo))
	s.emit("denied", rec.ToolInfo)
	return protocol.Ok(fmt.Sprintf("Denied: %s", rec.ToolInfo))
}

func (s *Server) handleSetMode(ctx context.Context, h *agent.Handle, req protocol.SessionRequest) protocol.SessionResponse {
	if err := h.SetMode(ctx, req.Mode); err != nil {
		return protocol.Err(err.Error())
	}
	return protocol.Ok(fmt.Sprintf("Mode set to %s", req.Mode))
}

func (s *Server) handleSetConfig(ctx context.Context, h *agent.Handle, req protocol.SessionRequest) protocol.SessionResponse {
	if err := h.SetConfig(ctx, req.Key, req.Value); err != nil {
		return protocol.Err(err.Error())
	}
	return protocol.Ok(fmt.Sprintf("%s set to %s", req.Key, req.Value))
}

// handlePrompt handles a Prompt request, including the auto-cancel path
// for an overlapping prompt.
func (s *Server) handlePrompt(ctx context.Context, h *agent.Handle, req protocol.SessionRequest) protocol.SessionResponse {
	cur := h.Status.Load().Kind

	if cur == status.Running || cur == status.WaitingPermission {
		if err := s.autoCancel(ctx, h); err != nil {
			return protocol.Err(err.Error())
		}
		cur = h.Status.Load().Kind
	}

	if cur == status.Running {
		return protocol.Err("Agent is already running")
	}
	if h.Conn() == nil || h.SessionID() == "" {
		return protocol.Err("No active session")
	}

	entry := buffer.Entry{Timestamp: time.Now().UTC(), Type: buffer.UserPrompt, Content: req.Text}
	s.pushAndBroadcast(h, entry)

	blocks := []acp.ContentBlock{acp.TextBlock(req.Text)}
	for _, f := range req.Files {
		blocks = append(blocks, acp.TextBlock(fmt.Sprintf("--- %s ---\n%s", f.Path, f.Content)))
	}

	go s.runPrompt(ctx, h, blocks)

	return protocol.Ok("Prompt submitted")
}

func (s *Server) pushAndBroadcast(h *agent.Handle, e buffer.Entry) {
	h.Buffer.Push(e)
	select {
	case s.broadcast <- e:
	default:
	}
}

// autoCancel cancels the in-flight prompt, drains pending permissions
// as Deny both before and during the settle window, and polls every
// 100ms until the agent settles or the window expires.
func (s *Server) autoCancel(ctx context.Context, h *agent.Handle) error {
	_ = h.Cancel(ctx)
	h.Permissions.DrainAsDeny()
	s.emit("cancelled", "")

	deadline := time.Now().Add(autoCancelSettleWindow)
	for {
		h.Permissions.DrainAsDeny()
		cur := h.Status.Load().Kind
		if cur == status.Idle || cur == status.Error {
			return nil
		}
		if time.Now().After(deadline) {
			return stateErrorf("auto-cancel timed out waiting for agent to settle")
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// runPrompt is the asynchronous prompt task: it drives the ACP prompt
// call and records the result.
func (s *Server) runPrompt(ctx context.Context, h *agent.Handle, blocks []acp.ContentBlock) {
	h.IncPromptCount()
	h.Status.Store(status.Status{Kind: status.Running})

	resp, err := h.Prompt(ctx, blocks)
	if err != nil {
		h.Status.Store(status.Status{Kind: status.Error, Message: err.Error()})
		s.emit("error", err.Error())
		return
	}

	entry := buffer.Entry{
		Timestamp: time.Now().UTC(),
		Type:      buffer.PromptResponse,
		Content:   fmt.Sprintf("%+v", resp.StopReason),
	}
	s.pushAndBroadcast(h, entry)
	s.emit("done", "")
	s.emit("idle", "")
	h.Status.Store(status.Status{Kind: status.Idle})
}

// handleRestart stops the current child, spawns a fresh handle, and
// swaps it in only on success.
func (s *Server) handleRestart(ctx context.Context) protocol.SessionResponse {
	old := s.currentHandle()
	old.Status.Store(status.Status{Kind: status.Stopping})
	_ = old.Cancel(ctx)
	cmd, _ := old.TakeChild()
	s.shutdownChild(cmd)

	fresh := s.buildHandle()
	if err := fresh.Spawn(ctx); err != nil {
		old.Status.Store(status.Status{Kind: status.Error, Message: err.Error()})
		return protocol.Err(err.Error())
	}

	s.mu.Lock()
	s.handle = fresh
	s.mu.Unlock()

	s.emit("restarted", "")
	return protocol.Ok("Agent restarted")
}
