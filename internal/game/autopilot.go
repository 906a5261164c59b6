package game

import (
	"math"
	"math/rand/v2"

	"katamini/internal/vec"
)

// Autopilot tuning, in world units and ticks.
const (
	AutopilotWallBuffer  = 2.0
	AutopilotDangerReach = 1.5 // look-ahead beyond the combined radii
	AutopilotSeekTicks   = 600 // give up on a target after 10s
	AutopilotAimSlack    = 0.08
	AutopilotAimCone     = 0.35 // drive while the target is this close to dead ahead
	AutopilotFarAway     = 3.0
)

// Autopilot drives a player toward the nearest absorbable object. It reads
// the session and returns intents; it never mutates simulation state.
type Autopilot struct {
	rng         *rand.Rand
	target      string
	seekTicks   int
	lastScore   int
	wanderTicks int
	wanderYaw   float64
}

// Target is the id of the object currently sought, if any.
func (a *Autopilot) Target() string { return a.target }

// NewAutopilot creates an autopilot using rng for wandering.
func NewAutopilot(rng *rand.Rand) *Autopilot {
	return &Autopilot{rng: rng}
}

// Decide applies priority-based rules and returns this tick's input.
func (a *Autopilot) Decide(s *Session) Input {
	if s.State() != Playing {
		return Input{}
	}
	p, w := s.Player(), s.World()
	pos := p.Position
	half := BoundsFor(s.Level().Room()).Half

	// --- Priority 1: Wall avoidance ---
	if math.Abs(pos.X) > half-AutopilotWallBuffer || math.Abs(pos.Z) > half-AutopilotWallBuffer {
		a.wanderTicks = 0
		return steer(p.Heading, vec.Vec3{}.Sub(pos))
	}

	limit := s.AbsorbLimit()
	heading := yaw(p.Heading)

	// --- Priority 2: Obstacles ahead that would bounce us ---
	reach := p.Radius() + AutopilotDangerReach
	for _, e := range w.Candidates(pos.X, pos.Z, reach) {
		if e.Size() <= limit {
			continue
		}
		to := e.Position.Sub(pos)
		to.Y = 0
		if to.Len() > reach+e.Radius() {
			continue
		}
		diff := normalizeAngle(yaw(to) - heading)
		if math.Abs(diff) < math.Pi/4 {
			// turn away from the side the obstacle is on
			return Input{Forward: true, Left: diff < 0, Right: diff >= 0}
		}
	}

	// --- Priority 3: Seek the closest absorbable object ---
	if p.Score() > a.lastScore {
		a.seekTicks = 0
		a.target = ""
	}
	a.lastScore = p.Score()

	if a.seekTicks < AutopilotSeekTicks {
		if best := a.pick(p, w, limit, heading); best != nil {
			a.target = best.ID
			a.seekTicks++
			return steer(p.Heading, best.Position.Sub(pos))
		}
	} else {
		// Circling: break away and roam for a while
		a.seekTicks = 0
		a.wanderYaw = heading + math.Pi/2 + a.rng.Float64()*math.Pi
		a.wanderTicks = 60 + a.rng.IntN(60)
	}

	// --- Priority 4: Roam ---
	if a.wanderTicks <= 0 {
		a.wanderYaw = a.rng.Float64() * 2 * math.Pi
		a.wanderTicks = 60 + a.rng.IntN(61)
	}
	a.wanderTicks--
	return steer(p.Heading, fromYaw(a.wanderYaw))
}

// pick returns the closest absorbable object, deprioritizing those behind.
func (a *Autopilot) pick(p *Player, w *World, limit, heading float64) *Entity {
	best, bestDist := (*Entity)(nil), math.MaxFloat64
	for _, e := range w.Collidable() {
		if e.Size() > limit {
			continue
		}
		to := e.Position.Sub(p.Position)
		to.Y = 0
		d := to.Len()
		if math.Abs(normalizeAngle(yaw(to)-heading)) > math.Pi/2 {
			d *= 2
		}
		if d < bestDist {
			best, bestDist = e, d
		}
	}
	return best
}

// steer turns the heading toward dir. Near targets are only driven at once
// roughly ahead, otherwise the turning circle makes the player orbit them.
func steer(heading, dir vec.Vec3) Input {
	dir.Y = 0
	d := dir.Len()
	if d == 0 {
		return Input{Forward: true}
	}
	diff := normalizeAngle(yaw(dir) - yaw(heading))
	off := math.Abs(diff)
	return Input{
		Forward: off < AutopilotAimCone || (d > AutopilotFarAway && off < math.Pi/2),
		Left:    diff > AutopilotAimSlack,
		Right:   diff < -AutopilotAimSlack,
	}
}

// yaw is the heading angle on the floor plane; 0 faces -Z and turning
// left increases it.
func yaw(v vec.Vec3) float64 { return math.Atan2(-v.X, -v.Z) }

func fromYaw(a float64) vec.Vec3 { return vec.Vec3{X: -math.Sin(a), Z: -math.Cos(a)} }

// normalizeAngle wraps an angle into (-π, π]
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
