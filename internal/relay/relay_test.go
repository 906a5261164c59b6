package relay

import (
	"context"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"katamini/internal/multiplayer"
	"katamini/internal/vec"
)

func startRelay(t *testing.T, cfg Config) (*Hub, string) {
	t.Helper()
	hub := NewHub(cfg)
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url, room string, enc Encoding) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, url, room, enc)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = c.Leave() })
	return c
}

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}
	var zero T
	return zero
}

func TestRelayMembershipAndActions(t *testing.T) {
	hub, url := startRelay(t, Config{})
	a := dial(t, url, "room", JSON)

	joined := make(chan string, 4)
	left := make(chan string, 4)
	a.OnPeerJoin(func(id string) { joined <- id })
	a.OnPeerLeave(func(id string) { left <- id })
	got := make(chan string, 4)
	a.Action("ping").OnReceive(func(p []byte, from string) { got <- from + ":" + string(p) })

	b := dial(t, url, "room", Msgpack)
	if id := waitFor(t, joined); id != b.SelfID() {
		t.Fatalf("joined %s, want %s", id, b.SelfID())
	}
	if peers := b.Peers(); len(peers) != 1 || peers[0] != a.SelfID() {
		t.Fatalf("b peers: %v", peers)
	}

	// msgpack sender, json receiver
	if err := b.Action("ping").Send([]byte("hello"), a.SelfID()); err != nil {
		t.Fatal(err)
	}
	if msg := waitFor(t, got); msg != b.SelfID()+":hello" {
		t.Fatalf("got %q", msg)
	}
	if hub.Count("room") != 2 {
		t.Fatalf("room count %d", hub.Count("room"))
	}

	_ = b.Leave()
	if id := waitFor(t, left); id != b.SelfID() {
		t.Fatalf("left %s", id)
	}
	if err := b.Action("ping").Send([]byte("late")); err == nil {
		t.Fatal("send after leave succeeded")
	}
}

func TestRelayRoomsIsolated(t *testing.T) {
	_, url := startRelay(t, Config{})
	a := dial(t, url, "one", JSON)
	b := dial(t, url, "two", JSON)
	got := make(chan string, 1)
	b.Action("x").OnReceive(func(p []byte, _ string) { got <- string(p) })
	_ = a.Action("x").Send([]byte("leak"))
	select {
	case p := <-got:
		t.Fatalf("message crossed rooms: %q", p)
	case <-time.After(100 * time.Millisecond):
	}
	if len(a.Peers()) != 0 {
		t.Fatalf("a sees peers in another room: %v", a.Peers())
	}
}

func TestRelayJoinWhileRoomBusy(t *testing.T) {
	_, url := startRelay(t, Config{})
	busy := dial(t, url, "room", JSON)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		state := busy.Action(multiplayer.ActionState)
		for {
			select {
			case <-stop:
				return
			default:
				_ = state.Send([]byte("x"))
			}
		}
	}()
	defer func() {
		close(stop)
		wg.Wait()
	}()

	for i := 0; i < 100; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		c, err := Dial(ctx, url, "room", JSON)
		cancel()
		if err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
		if peers := c.Peers(); !slices.Contains(peers, busy.SelfID()) {
			t.Fatalf("join %d peers: %v", i, peers)
		}
		_ = c.Leave()
	}
}

func TestRelayRoomFull(t *testing.T) {
	_, url := startRelay(t, Config{MaxPeers: 1})
	dial(t, url, "room", JSON)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := Dial(ctx, url, "room", JSON); err == nil || !strings.Contains(err.Error(), "Room full") {
		t.Fatalf("expected room full, got %v", err)
	}
}

func TestRelayIPCooldown(t *testing.T) {
	_, url := startRelay(t, Config{IPCooldown: time.Minute})
	dial(t, url, "room", JSON)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := Dial(ctx, url, "room", JSON); err == nil {
		t.Fatal("second connection inside cooldown accepted")
	}
}

func TestRelayCarriesMultiplayer(t *testing.T) {
	_, url := startRelay(t, Config{})
	a := multiplayer.NewManager(multiplayer.Options{Codec: multiplayer.MsgpackCodec{}})
	b := multiplayer.NewManager(multiplayer.Options{Codec: multiplayer.MsgpackCodec{}})
	if err := a.Join(dial(t, url, "gold-rush", Msgpack)); err != nil {
		t.Fatal(err)
	}
	if err := b.Join(dial(t, url, "gold-rush", JSON)); err != nil {
		t.Fatal(err)
	}

	pos := vec.Vec3{X: 3, Y: 0.5, Z: 3}
	deadline := time.Now().Add(5 * time.Second)
	now := time.Now()
	for time.Now().Before(deadline) {
		now = now.Add(100 * time.Millisecond)
		_ = a.Update(now, multiplayer.Local{Position: pos, Size: 1.5})
		_ = b.Update(now, multiplayer.Local{Size: 0.5})
		if g := b.Ghosts(); len(g) == 1 && g[0].HasState {
			if g[0].Target != pos || g[0].Size != 1.5 || g[0].PeerID != a.SelfID() {
				t.Fatalf("ghost %+v", g[0])
			}
			_ = a.Leave()
			_ = b.Leave()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("ghost state never arrived over the relay")
}

func TestLimiter(t *testing.T) {
	rl := newIPRateLimiter(time.Second)
	now := time.Unix(0, 0)
	rl.now = func() time.Time { return now }
	if !rl.allow("1.2.3.4") {
		t.Fatal("first connection refused")
	}
	if rl.allow("1.2.3.4") {
		t.Fatal("second connection allowed inside cooldown")
	}
	if !rl.allow("5.6.7.8") {
		t.Fatal("other ip refused")
	}
	now = now.Add(time.Second)
	if !rl.allow("1.2.3.4") {
		t.Fatal("connection refused after cooldown")
	}
}

func TestOpenerJoinsNamedRoom(t *testing.T) {
	hub, url := startRelay(t, Config{})
	open := Opener(url, Msgpack)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	room, err := open(ctx, "sweet-home")
	if err != nil {
		t.Fatal(err)
	}
	defer room.Leave()
	if room.SelfID() == "" || hub.Count("sweet-home") != 1 {
		t.Fatalf("self %q count %d", room.SelfID(), hub.Count("sweet-home"))
	}
}
