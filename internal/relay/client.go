package relay

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"katamini/internal/transport"
)

// Client is a transport.Room backed by a relay connection.
type Client struct {
	ws   *websocket.Conn
	enc  Encoding
	self string
	room string

	handlers transport.Handlers

	mu     sync.Mutex // protects peers and closed
	peers  map[string]struct{}
	closed bool

	wmu  sync.Mutex // serializes writes
	done chan struct{}
}

var _ transport.Room = (*Client)(nil)

// Dial connects to a relay and joins room. It returns once the relay has
// welcomed the peer.
func Dial(ctx context.Context, url, room string, enc Encoding) (*Client, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("relay: dial %s: %w", url, err)
	}
	c := &Client{
		ws:    ws,
		enc:   enc,
		room:  room,
		peers: make(map[string]struct{}),
		done:  make(chan struct{}),
	}
	if err := c.write(Frame{Type: MsgJoin, Room: room}); err != nil {
		ws.Close()
		return nil, fmt.Errorf("relay: join: %w", err)
	}

	deadline := time.Now().Add(joinTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = ws.SetReadDeadline(deadline)
	msgType, raw, err := ws.ReadMessage()
	if err != nil {
		ws.Close()
		return nil, fmt.Errorf("relay: await welcome: %w", err)
	}
	f, _, err := decodeFrame(msgType, raw)
	if err != nil {
		ws.Close()
		return nil, fmt.Errorf("relay: await welcome: %w", err)
	}
	switch f.Type {
	case MsgWelcome:
	case MsgError:
		ws.Close()
		return nil, fmt.Errorf("relay: rejected: %s", f.Message)
	default:
		ws.Close()
		return nil, fmt.Errorf("relay: expected welcome, got %q", f.Type)
	}
	_ = ws.SetReadDeadline(time.Time{})

	c.self = f.ID
	for _, id := range f.Peers {
		c.peers[id] = struct{}{}
	}
	go c.readLoop()
	return c, nil
}

// Opener returns a function that dials url and joins the given room, for
// callers that only know the room name once a level is chosen.
func Opener(url string, enc Encoding) func(ctx context.Context, room string) (transport.Room, error) {
	return func(ctx context.Context, room string) (transport.Room, error) {
		return Dial(ctx, url, room, enc)
	}
}

func (c *Client) write(f Frame) error {
	msgType, data, err := c.enc.encode(f)
	if err != nil {
		return err
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.ws.WriteMessage(msgType, data)
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		msgType, raw, err := c.ws.ReadMessage()
		if err != nil {
			if !c.isClosed() && !errors.Is(err, websocket.ErrCloseSent) {
				log.Printf("relay: read: %v", err)
			}
			c.dropAll()
			return
		}
		f, _, err := decodeFrame(msgType, raw)
		if err != nil {
			log.Printf("relay: bad frame: %v", err)
			continue
		}
		switch f.Type {
		case MsgPeerJoin:
			c.mu.Lock()
			_, known := c.peers[f.ID]
			c.peers[f.ID] = struct{}{}
			c.mu.Unlock()
			if !known {
				c.handlers.Join(f.ID)
			}
		case MsgPeerLeave:
			c.mu.Lock()
			_, known := c.peers[f.ID]
			delete(c.peers, f.ID)
			c.mu.Unlock()
			if known {
				c.handlers.Leave(f.ID)
			}
		case MsgAction:
			c.handlers.Receive(f.Action, f.Payload, f.From)
		case MsgError:
			log.Printf("relay: error from server: %s", f.Message)
		}
	}
}

// dropAll reports every known peer as gone after the connection is lost.
func (c *Client) dropAll() {
	c.mu.Lock()
	ids := make([]string, 0, len(c.peers))
	for id := range c.peers {
		ids = append(ids, id)
	}
	c.peers = make(map[string]struct{})
	c.mu.Unlock()
	for _, id := range ids {
		c.handlers.Leave(id)
	}
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) SelfID() string { return c.self }

func (c *Client) OnPeerJoin(fn func(string)) { c.handlers.SetJoin(fn, c.Peers) }

func (c *Client) OnPeerLeave(fn func(string)) { c.handlers.SetLeave(fn) }

func (c *Client) Peers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.peers))
	for id := range c.peers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c *Client) Action(name string) transport.Channel {
	return &clientChannel{c: c, action: name}
}

// Leave closes the connection and waits for the reader to stop. Calling it
// again is a no-op.
func (c *Client) Leave() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.handlers.Reset()
	c.wmu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.wmu.Unlock()
	_ = c.ws.Close()
	<-c.done
	return nil
}

// Done is closed when the connection has stopped reading.
func (c *Client) Done() <-chan struct{} { return c.done }

type clientChannel struct {
	c      *Client
	action string
}

func (ch *clientChannel) Send(payload []byte, targets ...string) error {
	if ch.c.isClosed() {
		return transport.ErrClosed
	}
	return ch.c.write(Frame{Type: MsgAction, Action: ch.action, To: targets, Payload: payload})
}

func (ch *clientChannel) OnReceive(fn func([]byte, string)) {
	ch.c.handlers.SetReceive(ch.action, fn)
}
