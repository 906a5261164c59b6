// Package transport defines the peer room the multiplayer layer talks
// through. Delivery is best effort: messages may be lost, duplicated or
// reordered, and callbacks may run on any goroutine.
package transport

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Send after the room has been left.
var ErrClosed = errors.New("transport: room closed")

// Room is one peer's membership in a named room.
type Room interface {
	// SelfID is this participant's peer id.
	SelfID() string
	// OnPeerJoin registers the join callback. Peers already present are
	// reported immediately.
	OnPeerJoin(fn func(peerID string))
	OnPeerLeave(fn func(peerID string))
	// Action returns the typed channel with the given name.
	Action(name string) Channel
	// Peers lists the other members, excluding self.
	Peers() []string
	Leave() error
}

// Channel is a named, peer-addressed message stream.
type Channel interface {
	// Send delivers payload to targets, or to every peer when none are
	// given.
	Send(payload []byte, targets ...string) error
	OnReceive(fn func(payload []byte, peerID string))
}

// Handlers stores room callbacks for Room implementations. Callbacks are
// always invoked without the lock held.
type Handlers struct {
	mu      sync.Mutex
	join    func(string)
	leave   func(string)
	receive map[string]func([]byte, string)
}

// SetJoin stores the join callback and replays it for the peers present
// returns. present runs after fn is stored and before the lock is
// released, so a join racing the registration is reported at least once.
func (h *Handlers) SetJoin(fn func(string), present func() []string) {
	h.mu.Lock()
	h.join = fn
	ids := present()
	h.mu.Unlock()
	for _, id := range ids {
		fn(id)
	}
}

func (h *Handlers) SetLeave(fn func(string)) {
	h.mu.Lock()
	h.leave = fn
	h.mu.Unlock()
}

func (h *Handlers) SetReceive(action string, fn func([]byte, string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.receive == nil {
		h.receive = make(map[string]func([]byte, string))
	}
	h.receive[action] = fn
}

func (h *Handlers) Join(peerID string) {
	h.mu.Lock()
	fn := h.join
	h.mu.Unlock()
	if fn != nil {
		fn(peerID)
	}
}

func (h *Handlers) Leave(peerID string) {
	h.mu.Lock()
	fn := h.leave
	h.mu.Unlock()
	if fn != nil {
		fn(peerID)
	}
}

func (h *Handlers) Receive(action string, payload []byte, from string) {
	h.mu.Lock()
	fn := h.receive[action]
	h.mu.Unlock()
	if fn != nil {
		fn(payload, from)
	}
}

// Reset drops every callback.
func (h *Handlers) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.join, h.leave, h.receive = nil, nil, nil
}
