package acpclient

import (
	"context"
	"testing"
	"time"

	"github.com/coder/acp-go-sdk"

	"github.com/nekocode/agent-team/internal/agentteam/buffer"
	"github.com/nekocode/agent-team/internal/agentteam/permission"
	"github.com/nekocode/agent-team/internal/agentteam/status"
)

func titlePtr(s string) *string { return &s }

func TestRequestPermissionAlwaysApprovesFirstOption(t *testing.T) {
	buf := buffer.New(10)
	queue := permission.NewQueue()
	cell := status.NewCell(status.Status{Kind: status.Running})
	c := New(buf, queue, cell, WithPolicy(PolicyAlways))

	req := acp.RequestPermissionRequest{
		ToolCall: acp.ToolCall{Title: titlePtr("run ls")},
		Options: []acp.PermissionOption{
			{OptionId: "opt-1", Name: "Allow", Kind: acp.PermissionOptionKindAllowOnce},
		},
	}

	resp, err := c.RequestPermission(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Outcome.Selected == nil || resp.Outcome.Selected.OptionId != "opt-1" {
		t.Fatalf("expected Selected(opt-1), got %+v", resp.Outcome)
	}

	entries := buf.All()
	count := 0
	for _, e := range entries {
		if e.Type == buffer.PermissionRequest {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one PermissionRequest entry, got %d", count)
	}
}

func TestRequestPermissionNeverWithNoOptionsYieldsCancelledEvenIfApproved(t *testing.T) {
	buf := buffer.New(10)
	queue := permission.NewQueue()
	cell := status.NewCell(status.Status{Kind: status.Running})
	c := New(buf, queue, cell, WithPolicy(PolicyNever))

	req := acp.RequestPermissionRequest{
		ToolCall: acp.ToolCall{Title: titlePtr("rm -rf /tmp/x")},
		Options:  nil,
	}

	done := make(chan acp.RequestPermissionResponse, 1)
	go func() {
		resp, _ := c.RequestPermission(context.Background(), req)
		done <- resp
	}()

	// Give the callback time to enqueue, then approve it.
	deadline := time.After(time.Second)
	for queue.Len() == 0 {
		select {
		case <-deadline:
			t.Fatalf("permission request never enqueued")
		case <-time.After(time.Millisecond):
		}
	}
	queue.Approve()

	select {
	case resp := <-done:
		if resp.Outcome.Cancelled == nil {
			t.Fatalf("expected Cancelled outcome when options is empty, got %+v", resp.Outcome)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for RequestPermission to return")
	}
}

func TestRequestPermissionNeverParksUntilDenied(t *testing.T) {
	buf := buffer.New(10)
	queue := permission.NewQueue()
	cell := status.NewCell(status.Status{Kind: status.Running})
	c := New(buf, queue, cell, WithPolicy(PolicyNever))

	req := acp.RequestPermissionRequest{
		ToolCall: acp.ToolCall{Title: titlePtr("write file")},
		Options: []acp.PermissionOption{
			{OptionId: "opt-1", Name: "Allow", Kind: acp.PermissionOptionKindAllowOnce},
		},
	}

	done := make(chan acp.RequestPermissionResponse, 1)
	go func() {
		resp, _ := c.RequestPermission(context.Background(), req)
		done <- resp
	}()

	deadline := time.After(time.Second)
	for queue.Len() == 0 {
		select {
		case <-deadline:
			t.Fatalf("permission request never enqueued")
		case <-time.After(time.Millisecond):
		}
	}

	if cell.Load().Kind != status.WaitingPermission {
		t.Fatalf("expected status WaitingPermission while parked, got %v", cell.Load().Kind)
	}

	queue.Deny()

	select {
	case resp := <-done:
		if resp.Outcome.Cancelled == nil {
			t.Fatalf("expected Cancelled outcome on deny, got %+v", resp.Outcome)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for RequestPermission to return")
	}

	if cell.Load().Kind != status.Running {
		t.Fatalf("expected status restored to Running after resolution, got %v", cell.Load().Kind)
	}
}
