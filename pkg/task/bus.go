package task

import (
	"sync"
	"time"
)

// ChangeKind names what happened to a task.
type ChangeKind string

const (
	Created ChangeKind = "created"
	Updated ChangeKind = "updated"
	Toggled ChangeKind = "toggled"
	Deleted ChangeKind = "deleted"
)

// Change is published after a successful mutation.
type Change struct {
	Kind     ChangeKind `json:"kind"`
	TaskID   int64      `json:"taskId"`
	ParentID *int64     `json:"parentId"`
	At       time.Time  `json:"at"`
}

// Bus is an in-process fan-out of task changes.
type Bus struct {
	mu   sync.RWMutex
	subs map[chan Change]struct{}
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[chan Change]struct{})}
}

// Publish delivers c to every subscriber without blocking. A subscriber
// whose buffer is full misses the change.
func (b *Bus) Publish(c Change) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

// Subscribe returns a buffered channel that receives all later changes.
func (b *Bus) Subscribe() chan Change {
	ch := make(chan Change, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(ch chan Change) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Subscribers returns the current subscriber count.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
