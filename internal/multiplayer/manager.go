// Package multiplayer mirrors remote players as ghosts and broadcasts the
// local player's state over a transport.Room. There is no authority: each
// client only reports itself and reconciles toward the latest snapshot it
// has seen from every peer.
package multiplayer

import (
	"errors"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"katamini/internal/transport"
	"katamini/internal/vec"
)

var ErrNotJoined = errors.New("multiplayer: not in a room")

const (
	BroadcastInterval = 50 * time.Millisecond
	StealRatio        = 2.0
	StealCooldown     = time.Second
	GhostLerp         = 0.1
	GhostScalePerSize = 0.5
	DefaultGhostScale = 0.25
	GhostColor        = "#6495ED"

	// GoneTTL is how long state from a departed peer keeps being ignored.
	GoneTTL = 10 * time.Second
)

// Options tunes a Manager. Zero fields take the package defaults.
type Options struct {
	Codec         Codec
	Interval      time.Duration
	StealRatio    float64
	StealCooldown time.Duration
	Lerp          float64

	// OnSteal is called on the update goroutine when a peer reports
	// overrunning the local player. What a steal does is up to the caller.
	OnSteal func(from string, a StealAttempt)
	// OnCollected is called on the update goroutine for each object a peer
	// absorbed.
	OnCollected func(from string, c CollectedMsg)
}

// Local is the local player as the manager sees it. It is read only.
type Local struct {
	Position  vec.Vec3
	Heading   vec.Vec3
	Size      float64
	Radius    float64
	Tier      int
	Collected int
}

// Ghost is the local picture of one remote peer.
type Ghost struct {
	PeerID    string
	Position  vec.Vec3 // smoothed
	Target    vec.Vec3 // last reported
	Heading   vec.Vec3
	Scale     float64
	Size      float64
	Tier      int
	Collected int
	Color     string
	HasState  bool

	lastSeq uint64
}

// Radius is the ghost's collision radius.
func (g *Ghost) Radius() float64 { return g.Scale * 0.5 }

// inbound events, queued by transport callbacks and applied in Update
type (
	peerJoined struct{ id string }
	peerLeft   struct{ id string }
	received   struct {
		action string
		from   string
		data   []byte
	}
)

// Manager is driven by Update from the game loop goroutine. Transport
// callbacks only append to the inbox.
type Manager struct {
	opts Options

	mu    sync.Mutex
	inbox []any

	room      transport.Room
	state     transport.Channel
	steal     transport.Channel
	collected transport.Channel

	ghosts      map[string]*Ghost
	gone        map[string]time.Time // departed peer -> when it left
	overlapping map[string]bool
	lastSteal   map[string]time.Time
	lastSent    time.Time
	seq         uint64
}

// NewManager returns a manager that has not joined any room.
func NewManager(opts Options) *Manager {
	if opts.Codec == nil {
		opts.Codec = JSONCodec{}
	}
	if opts.Interval <= 0 {
		opts.Interval = BroadcastInterval
	}
	if opts.StealRatio <= 1 {
		opts.StealRatio = StealRatio
	}
	if opts.StealCooldown <= 0 {
		opts.StealCooldown = StealCooldown
	}
	if opts.Lerp <= 0 || opts.Lerp > 1 {
		opts.Lerp = GhostLerp
	}
	m := &Manager{opts: opts}
	m.reset()
	return m
}

func (m *Manager) reset() {
	m.ghosts = make(map[string]*Ghost)
	m.gone = make(map[string]time.Time)
	m.overlapping = make(map[string]bool)
	m.lastSteal = make(map[string]time.Time)
	m.lastSent = time.Time{}
	m.seq = 0
}

// Join enters a room, leaving any previous one first.
func (m *Manager) Join(room transport.Room) error {
	if m.room != nil {
		if err := m.Leave(); err != nil {
			return err
		}
	}
	m.room = room
	m.state = room.Action(ActionState)
	m.steal = room.Action(ActionSteal)
	m.collected = room.Action(ActionCollected)

	m.state.OnReceive(m.receiver(ActionState))
	m.steal.OnReceive(m.receiver(ActionSteal))
	m.collected.OnReceive(m.receiver(ActionCollected))
	room.OnPeerLeave(func(id string) { m.push(peerLeft{id}) })
	room.OnPeerJoin(func(id string) { m.push(peerJoined{id}) })

	log.Printf("multiplayer: joined as %s (%s codec)", room.SelfID(), m.opts.Codec.Name())
	return nil
}

func (m *Manager) receiver(action string) func([]byte, string) {
	return func(data []byte, from string) {
		m.push(received{action: action, from: from, data: data})
	}
}

func (m *Manager) push(ev any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inbox = append(m.inbox, ev)
}

func (m *Manager) drain() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	evs := m.inbox
	m.inbox = nil
	return evs
}

// Joined reports whether the manager is in a room.
func (m *Manager) Joined() bool { return m.room != nil }

// SelfID is the local peer id, empty when not joined.
func (m *Manager) SelfID() string {
	if m.room == nil {
		return ""
	}
	return m.room.SelfID()
}

// Update applies queued network events, moves ghosts toward their targets,
// sends steal attempts for new overlaps and broadcasts the local state if
// the rate limit allows.
func (m *Manager) Update(now time.Time, local Local) error {
	if m.room == nil {
		return ErrNotJoined
	}
	for _, ev := range m.drain() {
		m.handle(now, ev)
	}
	for id, left := range m.gone {
		if now.Sub(left) > GoneTTL {
			delete(m.gone, id)
		}
	}
	for _, g := range m.ghosts {
		g.Position = g.Position.Lerp(g.Target, m.opts.Lerp)
	}
	err := m.checkSteals(now, local)
	if berr := m.Broadcast(now, local); err == nil {
		err = berr
	}
	return err
}

func (m *Manager) handle(now time.Time, ev any) {
	switch e := ev.(type) {
	case peerJoined:
		if e.id == m.room.SelfID() {
			return
		}
		delete(m.gone, e.id)
		if _, ok := m.ghosts[e.id]; !ok {
			m.ghosts[e.id] = newGhost(e.id)
			log.Printf("multiplayer: peer %s joined", e.id)
		}
	case peerLeft:
		m.drop(e.id)
		m.gone[e.id] = now
	case received:
		m.handleAction(e)
	}
}

func (m *Manager) handleAction(e received) {
	switch e.action {
	case ActionState:
		st, err := decode[PeerState](m.opts.Codec, e.data)
		if err != nil {
			log.Printf("multiplayer: bad state from %s: %v", e.from, err)
			return
		}
		m.applyState(e.from, st)
	case ActionSteal:
		a, err := decode[StealAttempt](m.opts.Codec, e.data)
		if err != nil {
			log.Printf("multiplayer: bad steal from %s: %v", e.from, err)
			return
		}
		if a.Target != m.room.SelfID() {
			return
		}
		if m.opts.OnSteal != nil {
			m.opts.OnSteal(e.from, a)
		}
	case ActionCollected:
		c, err := decode[CollectedMsg](m.opts.Codec, e.data)
		if err != nil {
			log.Printf("multiplayer: bad collected from %s: %v", e.from, err)
			return
		}
		if m.opts.OnCollected != nil {
			m.opts.OnCollected(e.from, c)
		}
	}
}

func (m *Manager) applyState(from string, st PeerState) {
	if _, left := m.gone[from]; left {
		return
	}
	if !validState(st) {
		log.Printf("multiplayer: dropping invalid state from %s", from)
		return
	}
	g, ok := m.ghosts[from]
	if !ok {
		// State can overtake the join event.
		g = newGhost(from)
		m.ghosts[from] = g
	}
	if st.Seq != 0 && st.Seq <= g.lastSeq {
		return
	}
	if st.Seq != 0 {
		g.lastSeq = st.Seq
	}
	g.Target = vec.FromArray(st.Position)
	g.Heading = vec.FromArray(st.Heading)
	g.Size = st.Size
	g.Scale = st.Size * GhostScalePerSize
	g.Tier = st.Tier
	g.Collected = st.Collected
	g.HasState = true
}

// validState rejects snapshots that would put a ghost somewhere it cannot
// be drawn or collided with.
func validState(st PeerState) bool {
	if !vec.FromArray(st.Position).Finite() || !vec.FromArray(st.Heading).Finite() {
		return false
	}
	return !math.IsNaN(st.Size) && !math.IsInf(st.Size, 0) && st.Size > 0
}

func newGhost(id string) *Ghost {
	return &Ghost{
		PeerID:   id,
		Position: vec.Vec3{Y: DefaultGhostScale * 0.5},
		Target:   vec.Vec3{Y: DefaultGhostScale * 0.5},
		Heading:  vec.Vec3{Z: -1},
		Scale:    DefaultGhostScale,
		Color:    GhostColor,
	}
}

func (m *Manager) drop(id string) {
	if _, ok := m.ghosts[id]; ok {
		log.Printf("multiplayer: peer %s left", id)
	}
	delete(m.ghosts, id)
	delete(m.overlapping, id)
	delete(m.lastSteal, id)
}

// checkSteals sends one steal attempt per new overlap with a ghost the
// local player outsizes by the steal ratio. Staying in contact does not
// resend, and each peer has a cooldown between attempts.
func (m *Manager) checkSteals(now time.Time, local Local) error {
	var firstErr error
	for id, g := range m.ghosts {
		over := g.HasState &&
			local.Position.Dist(g.Position) < local.Radius+g.Radius() &&
			local.Size >= g.Size*m.opts.StealRatio
		was := m.overlapping[id]
		m.overlapping[id] = over
		if !over || was {
			continue
		}
		if last, ok := m.lastSteal[id]; ok && now.Sub(last) < m.opts.StealCooldown {
			continue
		}
		data, err := m.opts.Codec.Marshal(StealAttempt{Target: id, Size: local.Size})
		if err != nil {
			return err
		}
		if err := m.steal.Send(data, id); err != nil && firstErr == nil {
			firstErr = err
		}
		m.lastSteal[id] = now
	}
	return firstErr
}

// Broadcast sends the local state unless one was sent within the
// broadcast interval.
func (m *Manager) Broadcast(now time.Time, local Local) error {
	if m.room == nil {
		return ErrNotJoined
	}
	if !m.lastSent.IsZero() && now.Sub(m.lastSent) < m.opts.Interval {
		return nil
	}
	return m.ForceBroadcast(now, local)
}

// ForceBroadcast sends the local state regardless of the rate limit.
func (m *Manager) ForceBroadcast(now time.Time, local Local) error {
	if m.room == nil {
		return ErrNotJoined
	}
	m.seq++
	data, err := m.opts.Codec.Marshal(PeerState{
		Seq:       m.seq,
		Position:  local.Position.Array(),
		Heading:   local.Heading.Array(),
		Size:      local.Size,
		Tier:      local.Tier,
		Collected: local.Collected,
	})
	if err != nil {
		return err
	}
	m.lastSent = now
	return m.state.Send(data)
}

// BroadcastCollected announces an absorbed object to every peer.
func (m *Manager) BroadcastCollected(objectID string, size float64) error {
	if m.room == nil {
		return ErrNotJoined
	}
	data, err := m.opts.Codec.Marshal(CollectedMsg{ObjectID: objectID, Size: size})
	if err != nil {
		return err
	}
	return m.collected.Send(data)
}

// Ghosts returns copies of every ghost ordered by peer id.
func (m *Manager) Ghosts() []Ghost {
	out := make([]Ghost, 0, len(m.ghosts))
	for _, g := range m.ghosts {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeerID < out[j].PeerID })
	return out
}

// PeerCount is the number of other members in the room.
func (m *Manager) PeerCount() int {
	if m.room == nil {
		return 0
	}
	return len(m.room.Peers())
}

// DisplayCount is the player count shown in the HUD, self included.
func (m *Manager) DisplayCount() int { return m.PeerCount() + 1 }

// Leave exits the room and forgets every peer. It is safe to call more
// than once and without having joined.
func (m *Manager) Leave() error {
	room := m.room
	m.room = nil
	m.state, m.steal, m.collected = nil, nil, nil
	m.reset()
	if room == nil {
		m.drain()
		return nil
	}
	err := room.Leave()
	m.drain()
	log.Printf("multiplayer: left room as %s", room.SelfID())
	return err
}
