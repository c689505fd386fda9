// Package launcher spawns the supervisor for a new agent as a detached
// background process and waits for its endpoint to come up: build the
// command, redirect stdio to a log file, detach the process group,
// poll for the endpoint file, and reap the child in the background.
package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/nekocode/agent-team/internal/agentteam/acpclient"
	"github.com/nekocode/agent-team/internal/agentteam/apierr"
	"github.com/nekocode/agent-team/internal/agentteam/endpoint"
)

// Subcommand is the hidden CLI subcommand the re-exec'd background
// process runs instead of normal command dispatch.
const Subcommand = "__run_supervisor__"

// readyPollInterval and readyTimeout bound the wait for the endpoint
// file to appear.
const (
	readyPollInterval = 100 * time.Millisecond
	readyTimeout      = 10 * time.Second
)

// Config describes the agent to launch in the background.
type Config struct {
	Name      string
	AgentType string
	Command   string
	Args      []string
	Cwd       string
	Policy    acpclient.Policy
}

// Launch re-execs this binary into Subcommand, detached into its own
// process group with stdio redirected to the agent's log file, and
// blocks until its endpoint file is visible or readyTimeout elapses.
func Launch(cfg Config) error {
	exe, err := os.Executable()
	if err != nil {
		return apierr.New(apierr.Spawn, "launcher: failed to resolve own executable: %w", err)
	}

	if err := endpoint.RemoveStale(cfg.Name); err != nil {
		return apierr.Wrap(apierr.Spawn, err)
	}

	logFile, err := os.OpenFile(endpoint.LogPath(cfg.Name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return apierr.New(apierr.Spawn, "launcher: failed to open log file: %w", err)
	}

	cmd := exec.Command(exe, encodeArgs(cfg)...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Env = os.Environ()
	cmd.SysProcAttr = buildSysProcAttr()

	if err := cmd.Start(); err != nil {
		_ = logFile.Close()
		return apierr.New(apierr.Spawn, "launcher: failed to start %q: %w", cfg.Name, err)
	}

	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		_ = logFile.Close()
		close(exited)
	}()

	return waitForReady(cfg.Name, exited)
}

// waitForReady polls for the endpoint file's existence, bailing out
// early if the child process exits first.
func waitForReady(name string, exited <-chan struct{}) error {
	deadline := time.Now().Add(readyTimeout)
	for time.Now().Before(deadline) {
		if endpoint.Exists(name) {
			return nil
		}
		select {
		case <-exited:
			return apierr.New(apierr.Spawn, "launcher: agent %q exited before its endpoint came up (see %s)", name, endpoint.LogPath(name))
		case <-time.After(readyPollInterval):
		}
	}
	return apierr.New(apierr.Spawn, "launcher: timed out waiting for agent %q to become ready", name)
}

// encodeArgs builds the re-exec'd command line: Subcommand followed by
// flags carrying cfg, then "--" and the agent's own argv (kept
// unparsed so it may itself contain flags).
func encodeArgs(cfg Config) []string {
	args := []string{
		Subcommand,
		"-name", cfg.Name,
		"-type", cfg.AgentType,
		"-command", cfg.Command,
		"-cwd", cfg.Cwd,
		"-policy", string(cfg.Policy),
		"--",
	}
	return append(args, cfg.Args...)
}

// DecodeArgs is the inverse of encodeArgs, used by the re-exec'd
// process (cmd/agent-team's Subcommand branch) to recover Config
// before handing it to supervisor.New.
func DecodeArgs(args []string) (Config, error) {
	var cfg Config
	i := 0
	next := func(flag string) (string, error) {
		i++
		if i >= len(args) {
			return "", fmt.Errorf("launcher: missing value for %s", flag)
		}
		return args[i], nil
	}

	for ; i < len(args); i++ {
		switch a := args[i]; a {
		case "-name":
			v, err := next(a)
			if err != nil {
				return cfg, err
			}
			cfg.Name = v
		case "-type":
			v, err := next(a)
			if err != nil {
				return cfg, err
			}
			cfg.AgentType = v
		case "-command":
			v, err := next(a)
			if err != nil {
				return cfg, err
			}
			cfg.Command = v
		case "-cwd":
			v, err := next(a)
			if err != nil {
				return cfg, err
			}
			cfg.Cwd = v
		case "-policy":
			v, err := next(a)
			if err != nil {
				return cfg, err
			}
			cfg.Policy = acpclient.Policy(v)
		case "--":
			cfg.Args = append([]string(nil), args[i+1:]...)
			return cfg, nil
		default:
			return cfg, fmt.Errorf("launcher: unrecognized flag %q", a)
		}
	}
	return cfg, nil
}
