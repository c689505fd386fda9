// Package rpcclient implements the front-end's connection to a
// supervisor's local RPC endpoint: a synchronous one-shot client
// (connect, write, read, close) and a persistent variant that keeps the
// connection open for pipelined commands.
package rpcclient

import (
	"fmt"
	"net"

	"github.com/nekocode/agent-team/internal/agentteam/apierr"
	"github.com/nekocode/agent-team/internal/agentteam/codec"
	"github.com/nekocode/agent-team/internal/agentteam/endpoint"
	"github.com/nekocode/agent-team/internal/agentteam/protocol"
)

// notRunningHint is appended to a connect failure so CLI users get a
// clear explanation, not a bare "connection refused".
const notRunningHint = "agent is not running (or its endpoint is stale)"

// Call performs one request/response round trip against name's
// endpoint: connect, write, read, disconnect. If connect fails, any
// stale endpoint file is removed before returning the error.
func Call(name string, req protocol.SessionRequest) (protocol.SessionResponse, error) {
	conn, err := endpoint.Dial(name)
	if err != nil {
		_ = endpoint.RemoveStale(name)
		return protocol.SessionResponse{}, apierr.Wrap(apierr.Connection, fmt.Errorf("%s: %w", notRunningHint, err))
	}
	defer conn.Close()

	w := codec.NewWriter(conn)
	if err := w.WriteMessage(req); err != nil {
		return protocol.SessionResponse{}, fmt.Errorf("rpcclient: failed to send request: %w", err)
	}

	r := codec.NewReader(conn)
	var resp protocol.SessionResponse
	ok, err := r.ReadMessage(&resp)
	if err != nil {
		return protocol.SessionResponse{}, fmt.Errorf("rpcclient: failed to read response: %w", err)
	}
	if !ok {
		return protocol.SessionResponse{}, fmt.Errorf("rpcclient: connection closed unexpectedly")
	}
	return resp, nil
}

// Client is a reusable connection for pipelined commands against a
// single agent's endpoint.
type Client struct {
	name string
	conn net.Conn
	w    *codec.Writer
	r    *codec.Reader
}

// Dial opens a persistent connection to name's endpoint.
func Dial(name string) (*Client, error) {
	conn, err := endpoint.Dial(name)
	if err != nil {
		_ = endpoint.RemoveStale(name)
		return nil, apierr.Wrap(apierr.Connection, fmt.Errorf("%s: %w", notRunningHint, err))
	}
	return &Client{
		name: name,
		conn: conn,
		w:    codec.NewWriter(conn),
		r:    codec.NewReader(conn),
	}, nil
}

// Send writes req and waits for the matching response on this
// connection.
func (c *Client) Send(req protocol.SessionRequest) (protocol.SessionResponse, error) {
	if err := c.w.WriteMessage(req); err != nil {
		return protocol.SessionResponse{}, fmt.Errorf("rpcclient: failed to send request: %w", err)
	}
	var resp protocol.SessionResponse
	ok, err := c.r.ReadMessage(&resp)
	if err != nil {
		return protocol.SessionResponse{}, fmt.Errorf("rpcclient: failed to read response: %w", err)
	}
	if !ok {
		return protocol.SessionResponse{}, apierr.New(apierr.Connection, "connection closed unexpectedly")
	}
	return resp, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
