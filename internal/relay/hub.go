// Package relay forwards room traffic between peers over websockets. The
// relay never inspects action payloads; it only tracks membership and
// routes frames, so peers stay authoritative for themselves.
package relay

import (
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const joinTimeout = 10 * time.Second

// Config limits what the relay accepts.
type Config struct {
	MaxPeers       int           // per room, 0 = unlimited
	MaxConnections int           // whole relay, 0 = unlimited
	IPCooldown     time.Duration // between connections from one IP, 0 = off
	ReadLimit      int64         // bytes per frame, 0 = unlimited
}

// Hub is the relay's http.Handler.
type Hub struct {
	cfg      Config
	rooms    *rooms
	limiter  *ipRateLimiter
	upgrader websocket.Upgrader
}

// NewHub creates a relay hub.
func NewHub(cfg Config) *Hub {
	return &Hub{
		cfg:     cfg,
		rooms:   newRooms(),
		limiter: newIPRateLimiter(cfg.IPCooldown),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow all origins; peers are browsers and native clients alike
				return true
			},
			ReadBufferSize:    1024,
			WriteBufferSize:   4096,
			EnableCompression: true,
		},
	}
}

// Count returns the number of peers in a room.
func (h *Hub) Count(room string) int { return h.rooms.count(room) }

// Connections returns the number of joined peers across all rooms.
func (h *Hub) Connections() int { return h.rooms.connections() }

// sendErrorAndClose sends an error frame then closes the connection
func sendErrorAndClose(c *Conn, msg string) {
	_ = c.Send(Frame{Type: MsgError, Message: msg})
	c.Close()
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Extract client IP (handle X-Forwarded-For for reverse proxies)
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip, _, _ = net.SplitHostPort(r.RemoteAddr)
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}
	if h.cfg.ReadLimit > 0 {
		ws.SetReadLimit(h.cfg.ReadLimit)
	}
	c := NewConn(ws)

	// Check limits after upgrade so client can receive error messages
	if h.cfg.MaxConnections > 0 && h.rooms.connections() >= h.cfg.MaxConnections {
		sendErrorAndClose(c, "Relay full. Please try again later.")
		return
	}
	if !h.limiter.allow(ip) {
		sendErrorAndClose(c, "Too many connections. Please wait.")
		return
	}

	if !h.awaitJoin(c) {
		return
	}
	if !h.welcome(c) {
		sendErrorAndClose(c, "Room full.")
		return
	}
	log.Printf("peer connected: %s room=%s enc=%s", c.ID, c.Room, c.enc)
	h.fanout(c, Frame{Type: MsgPeerJoin, ID: c.ID}, nil)

	// Blocking read loop, runs until the peer disconnects
	h.readLoop(c)

	h.rooms.remove(c)
	c.Close()
	h.fanout(c, Frame{Type: MsgPeerLeave, ID: c.ID}, nil)
	log.Printf("peer disconnected: %s room=%s", c.ID, c.Room)
}

// awaitJoin reads the first frame, which must name the room. The frame
// also fixes the peer's encoding.
func (h *Hub) awaitJoin(c *Conn) bool {
	_ = c.ws.SetReadDeadline(time.Now().Add(joinTimeout))
	msgType, raw, err := c.ws.ReadMessage()
	if err != nil {
		c.Close()
		return false
	}
	f, enc, err := decodeFrame(msgType, raw)
	c.enc = enc
	if err != nil || f.Type != MsgJoin || f.Room == "" {
		sendErrorAndClose(c, "Expected join.")
		return false
	}
	_ = c.ws.SetReadDeadline(time.Time{})
	c.Room = f.Room
	return true
}

// welcome registers c in its room and sends the welcome frame. The write
// lock is held across both so that frames fanned out to c by other peers
// can only follow the welcome.
func (h *Hub) welcome(c *Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	peers, ok := h.rooms.add(c, h.cfg.MaxPeers)
	if !ok {
		return false
	}
	if err := c.sendLocked(Frame{Type: MsgWelcome, ID: c.ID, Room: c.Room, Peers: peers}); err != nil {
		log.Printf("welcome to %s: %v", c.ID, err)
	}
	return true
}

func (h *Hub) readLoop(c *Conn) {
	for {
		msgType, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws read error for %s: %v", c.ID, err)
			}
			return
		}
		f, _, err := decodeFrame(msgType, raw)
		if err != nil {
			log.Printf("bad frame from %s: %v", c.ID, err)
			continue
		}
		switch f.Type {
		case MsgAction:
			if f.Action == "" {
				continue
			}
			h.fanout(c, Frame{Type: MsgAction, Action: f.Action, From: c.ID, Payload: f.Payload}, f.To)
		default:
			log.Printf("unexpected frame %q from %s", f.Type, c.ID)
		}
	}
}

// fanout sends f to the room members other than from, or only to the
// listed targets.
func (h *Hub) fanout(from *Conn, f Frame, to []string) {
	for _, c := range h.rooms.others(from.Room, from.ID, to) {
		if err := c.Send(f); err != nil {
			log.Printf("send to %s: %v", c.ID, err)
		}
	}
}
