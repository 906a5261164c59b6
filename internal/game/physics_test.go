package game

import (
	"math"
	"math/rand/v2"
	"testing"

	"katamini/internal/vec"
)

func TestVelocityNeverExceedsDynamicCap(t *testing.T) {
	tun := DefaultTuning()
	b := BoundsFor(50)
	rng := rand.New(rand.NewPCG(1, 2))
	for _, touch := range []bool{false, true} {
		p := NewPlayer(StartSize)
		for i := 0; i < 5000; i++ {
			if i%500 == 0 {
				p.Size = 0.5 + rng.Float64()*40
			}
			in := Input{
				Forward: rng.IntN(3) > 0,
				Back:    rng.IntN(5) == 0,
				Left:    rng.IntN(4) == 0,
				Right:   rng.IntN(4) == 0,
				Jump:    rng.IntN(20) == 0,
			}
			p.Position = Integrate(p, in, tun, b, touch)
			limit := tun.MaxSpeedFor(p.Size, touch)
			if v := p.Velocity.Len(); v > limit+1e-12 {
				t.Fatalf("tick %d: |v|=%v exceeds %v (touch=%v)", i, v, limit, touch)
			}
		}
	}
}

func TestTouchDoublesSpeedCap(t *testing.T) {
	tun := DefaultTuning()
	if got, want := tun.MaxSpeedFor(1, true), 2*tun.MaxSpeedFor(1, false); got != want {
		t.Fatalf("touch cap %v, want %v", got, want)
	}
	if tun.MaxSpeedFor(10, false) <= tun.MaxSpeedFor(1, false) {
		t.Fatal("bigger players must have a higher cap")
	}
	if tun.AccelFor(10) <= tun.AccelFor(1) {
		t.Fatal("bigger players must accelerate faster")
	}
}

func TestSteeringRotatesHeadingNotVelocity(t *testing.T) {
	tun := DefaultTuning()
	p := NewPlayer(StartSize)
	p.Velocity = vec.Vec3{Z: -0.1}
	Integrate(p, Input{Left: true}, tun, BoundsFor(50), false)

	if p.Velocity.X != 0 {
		t.Fatalf("velocity turned with heading: %v", p.Velocity)
	}
	want := vec.Vec3{Z: -1}.RotateY(tun.TurnRate)
	if p.Heading.Dist(want) > 1e-12 {
		t.Fatalf("heading %v, want %v", p.Heading, want)
	}
	if math.Abs(p.Heading.Len()-1) > 1e-12 {
		t.Fatalf("heading not unit: %v", p.Heading.Len())
	}
}

func TestForwardAcceleratesAlongHeading(t *testing.T) {
	tun := DefaultTuning()
	p := NewPlayer(StartSize)
	Integrate(p, Input{Forward: true}, tun, BoundsFor(50), false)
	if p.Velocity.Z >= 0 || p.Velocity.X != 0 {
		t.Fatalf("forward should move along -Z, got %v", p.Velocity)
	}
	want := tun.AccelFor(StartSize) * tun.Friction
	if math.Abs(-p.Velocity.Z-want) > 1e-12 {
		t.Fatalf("speed %v, want %v", -p.Velocity.Z, want)
	}
}

func TestGravityGroundAndJump(t *testing.T) {
	tun := DefaultTuning()
	b := BoundsFor(50)
	p := NewPlayer(StartSize)
	p.Position.Y = 2

	for i := 0; i < 1000 && !p.Grounded; i++ {
		p.Position = Integrate(p, Input{}, tun, b, false)
	}
	if !p.Grounded {
		t.Fatal("player never landed")
	}
	half := p.Scale().Y * 0.5
	p.Position = Integrate(p, Input{}, tun, b, false)
	if p.Position.Y < half-1e-9 {
		t.Fatalf("player sank below the floor: y=%v half=%v", p.Position.Y, half)
	}

	Integrate(p, Input{Jump: true}, tun, b, false)
	if p.Velocity.Y <= 0 {
		t.Fatalf("jump from ground gave vy=%v", p.Velocity.Y)
	}

	p.Position.Y = 3
	p.Velocity = vec.Vec3{}
	Integrate(p, Input{Jump: true}, tun, b, false)
	if p.Velocity.Y > 0 {
		t.Fatal("jumped in mid air")
	}
}

func TestBoundsClamp(t *testing.T) {
	tun := DefaultTuning()
	b := BoundsFor(50)
	if b.Half != 24 {
		t.Fatalf("half extent %v, want 24", b.Half)
	}
	p := NewPlayer(StartSize)
	p.Position = vec.Vec3{X: 30, Y: 0.125, Z: -40}
	next := Integrate(p, Input{}, tun, b, false)
	if next.X != 24 || next.Z != -24 {
		t.Fatalf("not clamped: %v", next)
	}
}

func TestNonFiniteVelocityRecovers(t *testing.T) {
	p := NewPlayer(StartSize)
	p.Velocity = vec.Vec3{X: math.NaN()}
	next := Integrate(p, Input{Forward: true}, DefaultTuning(), BoundsFor(50), false)
	if !p.Velocity.Finite() || !next.Finite() {
		t.Fatalf("velocity %v next %v", p.Velocity, next)
	}
}
