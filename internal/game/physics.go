package game

import (
	"math"

	"katamini/internal/vec"
)

// Bounds is the symmetric square the player's XZ position is clamped to.
type Bounds struct {
	Half float64
}

// BoundsFor returns the clamp square for a room of the given edge length.
func BoundsFor(roomSize float64) Bounds {
	return Bounds{Half: math.Max(roomSize/2-RoomMargin, 0)}
}

// Clamp keeps p inside the room on the floor plane.
func (b Bounds) Clamp(p vec.Vec3) vec.Vec3 {
	p.X = vec.Clamp(p.X, -b.Half, b.Half)
	p.Z = vec.Clamp(p.Z, -b.Half, b.Half)
	return p
}

// Integrate advances the player's heading and velocity by one tick and
// returns the tentative next position. The position itself is committed by
// the collision resolver.
func Integrate(p *Player, in Input, t Tuning, b Bounds, touch bool) vec.Vec3 {
	// Steering rotates the heading only; velocity keeps its direction.
	if in.Left {
		p.Heading = p.Heading.RotateY(t.TurnRate)
	}
	if in.Right {
		p.Heading = p.Heading.RotateY(-t.TurnRate)
	}

	move := 0.0
	if in.Forward {
		move++
	}
	if in.Back {
		move--
	}
	p.Velocity = p.Velocity.Add(p.Heading.Scale(move * t.AccelFor(p.Size)))

	p.Velocity.Y -= t.Gravity

	half := p.Scale().Y * 0.5
	p.Grounded = p.Position.Y <= half
	if p.Grounded {
		p.Position.Y = half
		p.Velocity.Y = math.Max(0, p.Velocity.Y)
	}
	if in.Jump && p.Grounded {
		p.Velocity.Y = t.JumpForce
	}

	p.Velocity = p.Velocity.Scale(t.Friction)
	p.Velocity = p.Velocity.ClampLen(t.MaxSpeedFor(p.Size, touch))
	if !p.Velocity.Finite() {
		p.Velocity = vec.Vec3{}
	}

	return b.Clamp(p.Position.Add(p.Velocity))
}
