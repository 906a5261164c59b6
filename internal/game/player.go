package game

import (
	"time"

	"katamini/internal/vec"
)

// Squish is the transient non-uniform scale applied after a bounce.
type Squish struct {
	X, Z      float64
	Remaining time.Duration
}

// Active reports whether the distortion is still showing.
func (s Squish) Active() bool { return s.Remaining > 0 }

// Player is the rolling collector.
type Player struct {
	Position vec.Vec3
	Velocity vec.Vec3
	Heading  vec.Vec3 // unit vector on the floor plane
	Size     float64  // absorption threshold, non-decreasing within an attempt
	Tier     int
	Grounded bool

	Collected []*Entity
	Squish    Squish
}

// NewPlayer places a player of the starting size at the room center,
// resting on the floor and facing -Z.
func NewPlayer(size float64) *Player {
	p := &Player{
		Heading: vec.Vec3{Z: -1},
		Size:    size,
		Squish:  Squish{X: 1, Z: 1},
	}
	p.Position.Y = p.BaseScale() * 0.5
	return p
}

// BaseScale is the uniform scale the player's size maps to.
func (p *Player) BaseScale() float64 { return p.Size * ScalePerSize }

// Scale returns the per-axis scale including any active squish.
func (p *Player) Scale() vec.Vec3 {
	b := p.BaseScale()
	return vec.Vec3{X: b * p.Squish.X, Y: b, Z: b * p.Squish.Z}
}

// Radius is the player's collision radius.
func (p *Player) Radius() float64 { return p.Scale().X * 0.5 }

// Score is the number of absorbed objects.
func (p *Player) Score() int { return len(p.Collected) }

// squish starts (or restarts) the bounce distortion.
func (p *Player) squish(t Tuning) {
	p.Squish = Squish{X: t.SquishX, Z: t.SquishZ, Remaining: t.SquishFor}
}

// tickSquish advances the distortion timer and restores the shape when it
// runs out.
func (p *Player) tickSquish(dt time.Duration) {
	if !p.Squish.Active() {
		return
	}
	p.Squish.Remaining -= dt
	if p.Squish.Remaining <= 0 {
		p.Squish = Squish{X: 1, Z: 1}
	}
}
