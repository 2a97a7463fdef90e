// Package signalqueue implements the bounded FIFO of (account, signal)
// pairs spec.md §4.C describes as "SignalQueue (bounded FIFO of (account,
// ExecutionSignal) with depth SignalQueueDepth)", decoded and processed
// whole per block (spec.md §4.F process_signal_queue). Grounded on the
// teacher's BoundedVec-backed StorageValue idiom (a single value,
// bounded, decoded entirely on each access) — here a mutex-guarded slice
// standing in for that single StorageValue.
package signalqueue

import (
	"errors"
	"sync"

	"github.com/t3rn/circuit/xtx"
)

// ErrQueueFull is returned by Push when the queue is already at depth.
var ErrQueueFull = errors.New("signalqueue: SignalQueueFull")

// Entry is one queued (account, signal) pair.
type Entry struct {
	Account xtx.Account
	Signal  xtx.ExecutionSignal
}

// Queue is a bounded FIFO. All methods are safe for concurrent use,
// though the single-writer block-serialized model (spec.md §5) means
// callers never actually contend.
type Queue struct {
	mu    sync.Mutex
	depth uint32
	items []Entry
}

// New constructs an empty Queue bounded at depth.
func New(depth uint32) *Queue {
	return &Queue{depth: depth}
}

// Push appends an entry to the tail, failing with ErrQueueFull at depth
// (spec.md §5: "overflow ⇒ SignalQueueFull").
func (q *Queue) Push(e Entry) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if uint32(len(q.items)) >= q.depth {
		return ErrQueueFull
	}
	q.items = append(q.items, e)
	return nil
}

// Len reports the current depth.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Peek returns the head entry without removing it.
func (q *Queue) Peek() (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Entry{}, false
	}
	return q.items[0], true
}

// SwapRemoveHead removes the head entry the way the teacher's mempool
// removes processed items: swap the last element into its place and
// truncate, avoiding an O(n) shift for what is, per block, a bounded
// number of pops.
func (q *Queue) SwapRemoveHead() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return
	}
	last := len(q.items) - 1
	q.items[0] = q.items[last]
	q.items = q.items[:last]
}

// RotateHeadToTail moves the head entry to the tail — used when setup
// fails for the head signal's Xtx and process_signal_queue must try the
// next one without losing the rescheduled signal (spec.md §4.F: "On
// setup error, rotate the signal to the tail and continue").
func (q *Queue) RotateHeadToTail() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) < 2 {
		return
	}
	head := q.items[0]
	copy(q.items, q.items[1:])
	q.items[len(q.items)-1] = head
}
