package relay

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Conn is one peer's websocket on the relay.
type Conn struct {
	ID   string
	Room string

	ws     *websocket.Conn
	enc    Encoding
	mu     sync.Mutex // protects ws writes and closed
	closed bool
}

// NewConn wraps an upgraded websocket with a fresh peer id.
func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{
		ID: uuid.New().String(),
		ws: ws,
	}
}

// Send encodes f in the peer's encoding and writes it to the websocket.
func (c *Conn) Send(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sendLocked(f)
}

// sendLocked is Send for callers already holding c.mu.
func (c *Conn) sendLocked(f Frame) error {
	msgType, data, err := c.enc.encode(f)
	if err != nil {
		return err
	}
	if c.closed {
		return nil
	}
	return c.ws.WriteMessage(msgType, data)
}

// Close marks the connection closed.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.ws.Close()
}

// rooms holds every connected peer by room.
type rooms struct {
	mu    sync.RWMutex
	byID  map[string]map[string]*Conn
	total int
}

func newRooms() *rooms {
	return &rooms{byID: make(map[string]map[string]*Conn)}
}

// add registers c and returns the ids of the peers already present, or
// false if the room is at capacity.
func (r *rooms) add(c *Conn, max int) ([]string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := r.byID[c.Room]
	if max > 0 && len(members) >= max {
		return nil, false
	}
	if members == nil {
		members = make(map[string]*Conn)
		r.byID[c.Room] = members
	}
	peers := make([]string, 0, len(members))
	for id := range members {
		peers = append(peers, id)
	}
	members[c.ID] = c
	r.total++
	return peers, true
}

func (r *rooms) remove(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := r.byID[c.Room]
	if _, ok := members[c.ID]; !ok {
		return
	}
	delete(members, c.ID)
	r.total--
	if len(members) == 0 {
		delete(r.byID, c.Room)
	}
}

// others returns the members of room other than self, or only the listed
// targets when to is not empty.
func (r *rooms) others(room, self string, to []string) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.byID[room]
	var list []*Conn
	if len(to) == 0 {
		list = make([]*Conn, 0, len(members))
		for id, c := range members {
			if id != self {
				list = append(list, c)
			}
		}
		return list
	}
	for _, id := range to {
		if c, ok := members[id]; ok && id != self {
			list = append(list, c)
		}
	}
	return list
}

func (r *rooms) count(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID[room])
}

func (r *rooms) connections() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.total
}
