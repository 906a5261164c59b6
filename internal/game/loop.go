package game

import (
	"context"
	"log"
	"time"

	"katamini/internal/multiplayer"
	"katamini/internal/transport"
)

// Frame is what a renderer draws for one tick.
type Frame struct {
	Snapshot
	Ghosts  []multiplayer.Ghost
	Players int // shown player count, self included
}

// Renderer consumes frames. It has no way back into the simulation.
type Renderer interface {
	Render(Frame)
}

// InputSource yields the intents for the next tick.
type InputSource interface {
	Input() Input
}

// InputFunc adapts a function to InputSource.
type InputFunc func() Input

func (f InputFunc) Input() Input { return f() }

// RoomOpener joins the transport room of a multiplayer level.
type RoomOpener func(ctx context.Context, room string) (transport.Room, error)

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithMultiplayer syncs multiplayer levels through m, opening rooms with
// open. Levels without a room stay single player.
func WithMultiplayer(m *multiplayer.Manager, open RoomOpener) LoopOption {
	return func(l *Loop) {
		l.mp = m
		l.open = open
	}
}

// WithLoopClock sets the clock used for broadcast pacing.
func WithLoopClock(c Clock) LoopOption { return func(l *Loop) { l.clock = c } }

// WithTickRate overrides the tick interval.
func WithTickRate(d time.Duration) LoopOption { return func(l *Loop) { l.rate = d } }

// Loop drives a Session at a fixed tick rate and feeds a renderer.
type Loop struct {
	session *Session
	input   InputSource
	render  Renderer
	mp      *multiplayer.Manager
	open    RoomOpener
	clock   Clock
	rate    time.Duration
}

// NewLoop binds a session to its input and output.
func NewLoop(s *Session, in InputSource, r Renderer, opts ...LoopOption) *Loop {
	l := &Loop{
		session: s,
		input:   in,
		render:  r,
		clock:   systemClock{},
		rate:    TickDur,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run ticks the current attempt until it ends or ctx is done. The last
// frame, showing the terminal state, is always rendered.
func (l *Loop) Run(ctx context.Context) error {
	if l.session.State() != Playing {
		return ErrNotPlaying
	}
	if err := l.Join(ctx); err != nil {
		log.Printf("multiplayer unavailable, playing solo: %v", err)
	}
	defer l.Leave()

	ticker := time.NewTicker(l.rate)
	defer ticker.Stop()
	log.Printf("game loop started at %s per tick", l.rate)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !l.Step() {
				return nil
			}
		}
	}
}

// Join opens the level's room when the level is multiplayer.
func (l *Loop) Join(ctx context.Context) error {
	lvl := l.session.Level()
	if l.mp == nil || l.open == nil || lvl == nil || !lvl.Multiplayer() {
		return nil
	}
	room, err := l.open(ctx, lvl.MultiplayerRoom)
	if err != nil {
		return err
	}
	return l.mp.Join(room)
}

// Leave exits the multiplayer room, if any.
func (l *Loop) Leave() {
	if l.mp == nil {
		return
	}
	if err := l.mp.Leave(); err != nil {
		log.Printf("multiplayer leave: %v", err)
	}
}

// Step runs one tick and renders it. It reports whether the attempt is
// still in progress.
func (l *Loop) Step() bool {
	res, err := l.session.Tick(l.input.Input())
	if err != nil {
		return false
	}
	l.sync(res)
	l.draw()
	return l.session.State() == Playing
}

func (l *Loop) sync(res Resolution) {
	if l.mp == nil || !l.mp.Joined() {
		return
	}
	now := l.clock.Now()
	p := l.session.Player()
	local := multiplayer.Local{
		Position:  p.Position,
		Heading:   p.Heading,
		Size:      p.Size,
		Radius:    p.Radius(),
		Tier:      p.Tier,
		Collected: p.Score(),
	}
	if len(res.Absorbed) > 0 {
		for _, e := range res.Absorbed {
			if err := l.mp.BroadcastCollected(e.ID, e.Size()); err != nil {
				log.Printf("multiplayer: collected: %v", err)
			}
		}
		if err := l.mp.ForceBroadcast(now, local); err != nil {
			log.Printf("multiplayer: broadcast: %v", err)
		}
	}
	if err := l.mp.Update(now, local); err != nil {
		log.Printf("multiplayer: update: %v", err)
	}
}

func (l *Loop) draw() {
	if l.render == nil {
		return
	}
	f := Frame{Snapshot: l.session.Snapshot(), Players: 1}
	if l.mp != nil && l.mp.Joined() {
		f.Ghosts = l.mp.Ghosts()
		f.Players = l.mp.DisplayCount()
	}
	l.render.Render(f)
}
