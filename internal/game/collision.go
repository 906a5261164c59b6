package game

import (
	"math"
	"math/rand/v2"

	"katamini/internal/vec"
)

// Resolution is what happened during one resolver pass.
type Resolution struct {
	Absorbed []*Entity
	Promoted bool // a tier gate was cleared
	Bounced  bool
	Cleared  bool // the last free object was absorbed
}

// Resolver tests the player's tentative position against the field and
// classifies each contact as absorb or bounce.
type Resolver struct {
	tuning Tuning
	rng    *rand.Rand
}

// NewResolver creates a resolver. rng drives trophy placement only.
func NewResolver(t Tuning, rng *rand.Rand) *Resolver {
	return &Resolver{tuning: t, rng: rng}
}

// AbsorbLimit is the largest object size the player can absorb right now.
// The smallest object on the field is always absorbable so the level can
// never stall.
func (r *Resolver) AbsorbLimit(p *Player, w *World) float64 {
	return math.Max(p.Size*r.tuning.AbsorbRatio, w.Smallest())
}

// Resolve runs one pass over every collidable object near next, in stored
// order, then commits the player position. A bounce overrides the
// tentative move: the reflected velocity is applied to the current
// position instead.
func (r *Resolver) Resolve(p *Player, next vec.Vec3, w *World, prog *Progression, b Bounds) Resolution {
	var res Resolution
	for _, e := range w.Candidates(next.X, next.Z, p.Radius()) {
		if !e.Collidable() {
			continue
		}
		if next.Dist(e.Position) >= p.Radius()+e.Radius() {
			continue
		}
		if e.Size() <= r.AbsorbLimit(p, w) {
			r.absorb(p, e, w, prog, &res)
			continue
		}
		if r.bounce(p, e, next) {
			res.Bounced = true
		}
	}

	if res.Bounced {
		p.Position = b.Clamp(p.Position.Add(p.Velocity))
	} else {
		p.Position = next
	}
	return res
}

func (r *Resolver) absorb(p *Player, e *Entity, w *World, prog *Progression, res *Resolution) {
	w.Absorb(e)

	radius := p.Scale().X * 0.5
	e.Offset = sphereSurface(radius, r.rng).Add(r.jitter(p.Scale().X))
	e.TrophyScale = e.Scale * math.Min(r.tuning.TrophyCap, e.Size()/p.Size) * r.tuning.TrophyShrink

	p.Collected = append(p.Collected, e)
	size, promoted := prog.Absorb(e.Size(), p.Size)
	if size > p.Size {
		p.Size = size
	}
	p.Tier = prog.Tier()

	res.Absorbed = append(res.Absorbed, e)
	res.Promoted = res.Promoted || promoted
	if w.LiveCount() == 0 {
		res.Cleared = true
	}
}

// bounce reflects the velocity about the object-to-player normal. A player
// already moving away from the object keeps its velocity.
func (r *Resolver) bounce(p *Player, e *Entity, next vec.Vec3) bool {
	n := next.Sub(e.Position).Normalize()
	if p.Velocity.Dot(n) >= 0 && n != (vec.Vec3{}) {
		return false
	}
	p.Velocity = p.Velocity.Reflect(n).Scale(r.tuning.Bounce)
	p.squish(r.tuning)
	return true
}

func (r *Resolver) jitter(scale float64) vec.Vec3 {
	j := r.tuning.TrophyJitter * scale
	return vec.Vec3{
		X: (r.rng.Float64() - 0.5) * j,
		Y: (r.rng.Float64() - 0.5) * j,
		Z: (r.rng.Float64() - 0.5) * j,
	}
}

// sphereSurface samples a point uniformly on a sphere of the given radius.
// phi = acos(2v-1) avoids clustering at the poles.
func sphereSurface(radius float64, rng *rand.Rand) vec.Vec3 {
	theta := 2 * math.Pi * rng.Float64()
	phi := math.Acos(2*rng.Float64() - 1)
	sp := math.Sin(phi)
	return vec.Vec3{
		X: radius * sp * math.Cos(theta),
		Y: radius * sp * math.Sin(theta),
		Z: radius * math.Cos(phi),
	}
}
