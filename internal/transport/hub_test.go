package transport

import (
	"errors"
	"slices"
	"sync"
	"testing"
)

type recorder struct {
	mu     sync.Mutex
	joins  []string
	leaves []string
	msgs   []string
}

func (r *recorder) attach(room Room, action string) {
	room.OnPeerJoin(func(id string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.joins = append(r.joins, id)
	})
	room.OnPeerLeave(func(id string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.leaves = append(r.leaves, id)
	})
	room.Action(action).OnReceive(func(p []byte, from string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.msgs = append(r.msgs, from+":"+string(p))
	})
}

func TestHubMembership(t *testing.T) {
	hub := NewHub()
	a := hub.Join("r1")
	var ra recorder
	ra.attach(a, "x")

	b := hub.Join("r1")
	var rb recorder
	rb.attach(b, "x")

	if len(ra.joins) != 1 || ra.joins[0] != b.SelfID() {
		t.Fatalf("a joins: %v", ra.joins)
	}
	// b learns about a when it registers its callback
	if len(rb.joins) != 1 || rb.joins[0] != a.SelfID() {
		t.Fatalf("b joins: %v", rb.joins)
	}
	if got := a.Peers(); len(got) != 1 || got[0] != b.SelfID() {
		t.Fatalf("peers: %v", got)
	}

	if err := b.Leave(); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if err := b.Leave(); err != nil {
		t.Fatalf("second leave: %v", err)
	}
	if len(ra.leaves) != 1 || ra.leaves[0] != b.SelfID() {
		t.Fatalf("a leaves: %v", ra.leaves)
	}
	if hub.Members("r1") != 1 {
		t.Fatalf("members = %d", hub.Members("r1"))
	}
}

func TestHubSendTargets(t *testing.T) {
	hub := NewHub()
	a, b, c := hub.Join("r"), hub.Join("r"), hub.Join("r")
	var rb, rc recorder
	rb.attach(b, "x")
	rc.attach(c, "x")
	other := hub.Join("elsewhere")
	var ro recorder
	ro.attach(other, "x")

	if err := a.Action("x").Send([]byte("all")); err != nil {
		t.Fatal(err)
	}
	if err := a.Action("x").Send([]byte("one"), c.SelfID()); err != nil {
		t.Fatal(err)
	}
	// a different action name is not delivered to the x handler
	_ = a.Action("y").Send([]byte("nope"))

	if len(rb.msgs) != 1 || rb.msgs[0] != a.SelfID()+":all" {
		t.Fatalf("b msgs: %v", rb.msgs)
	}
	if len(rc.msgs) != 2 || rc.msgs[1] != a.SelfID()+":one" {
		t.Fatalf("c msgs: %v", rc.msgs)
	}
	if len(ro.msgs) != 0 {
		t.Fatalf("message leaked across rooms: %v", ro.msgs)
	}

	_ = a.Leave()
	if err := a.Action("x").Send([]byte("late")); !errors.Is(err, ErrClosed) {
		t.Fatalf("send after leave: %v", err)
	}
}

func TestHubDrop(t *testing.T) {
	hub := NewHub()
	hub.Drop = func(action, from, to string) bool { return action == "lossy" }
	a, b := hub.Join("r"), hub.Join("r")
	var rb recorder
	rb.attach(b, "lossy")
	_ = a.Action("lossy").Send([]byte("gone"))
	if len(rb.msgs) != 0 {
		t.Fatalf("dropped message delivered: %v", rb.msgs)
	}
}

func TestSetJoinReportsRacingJoin(t *testing.T) {
	var h Handlers
	var mu sync.Mutex
	var seen []string
	fn := func(id string) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, id)
	}

	// a member joins while the snapshot is being taken
	done := make(chan struct{})
	h.SetJoin(fn, func() []string {
		go func() {
			h.Join("late")
			close(done)
		}()
		return []string{"early"}
	})
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || !slices.Contains(seen, "early") || !slices.Contains(seen, "late") {
		t.Fatalf("joins reported: %v", seen)
	}
}
