package transport

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Hub is an in-process room registry. Every Room it hands out delivers
// synchronously on the sender's goroutine.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[string]*memberRoom

	// Drop, when set, is consulted for every delivery and discards the
	// message when it returns true.
	Drop func(action, from, to string) bool
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[string]*memberRoom)}
}

// Join adds a new participant to the named room.
func (h *Hub) Join(room string) Room {
	m := &memberRoom{hub: h, room: room, id: uuid.NewString()}

	h.mu.Lock()
	members := h.rooms[room]
	if members == nil {
		members = make(map[string]*memberRoom)
		h.rooms[room] = members
	}
	others := make([]*memberRoom, 0, len(members))
	for _, o := range members {
		others = append(others, o)
	}
	members[m.id] = m
	h.mu.Unlock()

	for _, o := range others {
		o.handlers.Join(m.id)
	}
	return m
}

// Members returns the number of participants in a room.
func (h *Hub) Members(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}

func (h *Hub) peers(room, self string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.rooms[room]))
	for id := range h.rooms[room] {
		if id != self {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func (h *Hub) targets(room, self string, to []string) []*memberRoom {
	h.mu.Lock()
	defer h.mu.Unlock()
	members := h.rooms[room]
	var out []*memberRoom
	if len(to) == 0 {
		for id, m := range members {
			if id != self {
				out = append(out, m)
			}
		}
		return out
	}
	for _, id := range to {
		if m, ok := members[id]; ok && id != self {
			out = append(out, m)
		}
	}
	return out
}

func (h *Hub) leave(m *memberRoom) bool {
	h.mu.Lock()
	members := h.rooms[m.room]
	if _, ok := members[m.id]; !ok {
		h.mu.Unlock()
		return false
	}
	delete(members, m.id)
	if len(members) == 0 {
		delete(h.rooms, m.room)
	}
	others := make([]*memberRoom, 0, len(members))
	for _, o := range members {
		others = append(others, o)
	}
	h.mu.Unlock()

	for _, o := range others {
		o.handlers.Leave(m.id)
	}
	return true
}

type memberRoom struct {
	hub      *Hub
	room     string
	id       string
	handlers Handlers

	mu     sync.Mutex
	closed bool
}

func (m *memberRoom) SelfID() string { return m.id }

func (m *memberRoom) OnPeerJoin(fn func(string)) {
	m.handlers.SetJoin(fn, m.Peers)
}

func (m *memberRoom) OnPeerLeave(fn func(string)) { m.handlers.SetLeave(fn) }

func (m *memberRoom) Peers() []string { return m.hub.peers(m.room, m.id) }

func (m *memberRoom) Action(name string) Channel {
	return &memberChannel{room: m, action: name}
}

func (m *memberRoom) Leave() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.hub.leave(m)
	m.handlers.Reset()
	return nil
}

func (m *memberRoom) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

type memberChannel struct {
	room   *memberRoom
	action string
}

func (c *memberChannel) Send(payload []byte, targets ...string) error {
	if c.room.isClosed() {
		return ErrClosed
	}
	for _, t := range c.room.hub.targets(c.room.room, c.room.id, targets) {
		if drop := c.room.hub.Drop; drop != nil && drop(c.action, c.room.id, t.id) {
			continue
		}
		buf := append([]byte(nil), payload...)
		t.handlers.Receive(c.action, buf, c.room.id)
	}
	return nil
}

func (c *memberChannel) OnReceive(fn func([]byte, string)) {
	c.room.handlers.SetReceive(c.action, fn)
}
