// Package permission implements the pending-permission queue shared
// between the ACP callback handler (producer) and the supervisor
// dispatcher (consumer, on ApprovePermission/DenyPermission and on
// auto-cancel): a small mutex-guarded FIFO of one-shot response
// channels, mirroring the buffer package's locking discipline.
package permission

import (
	"sync"

	"github.com/google/uuid"
)

// Record is one parked permission request: a human-readable description
// of the tool call, and a one-shot channel the dispatcher resolves with
// true (approve) or false (deny). ID lets a record be referenced in
// logs without leaking the raw response channel.
type Record struct {
	ID       string
	ToolInfo string
	Resp     chan bool
}

// NewRecord creates a Record with its one-shot response channel.
func NewRecord(toolInfo string) *Record {
	return &Record{ID: uuid.NewString(), ToolInfo: toolInfo, Resp: make(chan bool, 1)}
}

// Queue is a FIFO of pending Records.
type Queue struct {
	mu    sync.Mutex
	items []*Record
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends r to the back of the queue.
func (q *Queue) Enqueue(r *Record) {
	q.mu.Lock()
	q.items = append(q.items, r)
	q.mu.Unlock()
}

// Len returns the current queue length, blocking briefly for the lock.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// TryLen performs a best-effort, non-blocking length read: 0 if the
// mutex is currently held by another goroutine.
func (q *Queue) TryLen() int {
	if !q.mu.TryLock() {
		return 0
	}
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) popLocked() *Record {
	if len(q.items) == 0 {
		return nil
	}
	r := q.items[0]
	q.items = q.items[1:]
	return r
}

// Approve pops the front record and resolves it as approved. Returns
// ok=false if the queue was empty.
func (q *Queue) Approve() (rec *Record, ok bool) {
	q.mu.Lock()
	r := q.popLocked()
	q.mu.Unlock()
	if r == nil {
		return nil, false
	}
	r.Resp <- true
	return r, true
}

// Deny pops the front record and resolves it as denied. Returns
// ok=false if the queue was empty.
func (q *Queue) Deny() (rec *Record, ok bool) {
	q.mu.Lock()
	r := q.popLocked()
	q.mu.Unlock()
	if r == nil {
		return nil, false
	}
	r.Resp <- false
	return r, true
}

// DrainAsDeny resolves every currently-queued record as denied and
// empties the queue, returning the number drained. Used by auto-cancel,
// both before and during the settle window that follows it.
func (q *Queue) DrainAsDeny() int {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()

	for _, r := range items {
		r.Resp <- false
	}
	return len(items)
}
