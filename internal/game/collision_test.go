package game

import (
	"math"
	"math/rand/v2"
	"testing"

	"katamini/internal/level"
	"katamini/internal/vec"
)

func TestSingleTierPromotesOnFirstAbsorb(t *testing.T) {
	tiers := []level.Tier{{Min: 0, Max: 2, RequiredCount: 1}}
	lvl := testLevel("one", 60, 1, tiers, obj(1, 0, -0.1))
	s, clock := newTestSession([]level.Level{lvl})
	if err := s.SelectLevel("one"); err != nil {
		t.Fatal(err)
	}

	res := tick(s, clock, Input{})
	if len(res.Absorbed) != 1 || !res.Promoted {
		t.Fatalf("resolution %+v", res)
	}
	if s.Player().Tier != 1 {
		t.Fatalf("tier %d, want 1", s.Player().Tier)
	}
	want := StartSize * DefaultTuning().TierMultiplier
	if math.Abs(s.Player().Size-want) > 1e-12 {
		t.Fatalf("size %v, want %v", s.Player().Size, want)
	}
	if s.State() != Completed {
		t.Fatalf("state %s, want completed", s.State())
	}
}

func TestProgressionCountGate(t *testing.T) {
	tiers := []level.Tier{
		{Min: 0, Max: 1, RequiredCount: 3},
		{Min: 1, Max: 5, RequiredCount: 2},
		{Min: 5, Max: math.Inf(1), RequiredCount: 1},
	}
	p := NewProgression(tiers, 2)
	size := 1.0

	// objects outside the current tier do not open its gate
	size, up := p.Absorb(2, size)
	if up || p.Tier() != 0 || p.Count(1) != 1 {
		t.Fatalf("tier %d count1 %d promoted %v", p.Tier(), p.Count(1), up)
	}
	for i := 0; i < 2; i++ {
		if size, up = p.Absorb(0.5, size); up {
			t.Fatalf("promoted early at %d", i)
		}
	}
	if size, up = p.Absorb(0.5, size); !up || p.Tier() != 1 || size != 2 {
		t.Fatalf("third tier-0 object: tier %d size %v", p.Tier(), size)
	}
	// the earlier tier-1 object already counts toward the new gate
	if size, up = p.Absorb(3, size); !up || p.Tier() != 2 || size != 4 {
		t.Fatalf("tier-1 gate: tier %d size %v", p.Tier(), size)
	}
	if size, up = p.Absorb(10, size); !up || !p.Maxed() || size != 8 {
		t.Fatalf("last gate: tier %d size %v", p.Tier(), size)
	}
	if size, up = p.Absorb(10, size); up || size != 8 {
		t.Fatal("growth after every gate cleared")
	}
	if _, ok := p.Current(); ok {
		t.Fatal("maxed progression still has a current tier")
	}
}

func TestBounceReflectsVelocity(t *testing.T) {
	lvl := testLevel("bounce", 60, 1, oneTier(100),
		obj(0.1, 20, 20), // smallest on the field, far away
		obj(5, 0, -0.3),  // well above 1.2x the player
	)
	s, clock := newTestSession([]level.Level{lvl})
	_ = s.SelectLevel("bounce")
	big := s.World().At(1)
	s.Player().Velocity = vec.Vec3{Z: -0.1}

	res := tick(s, clock, Input{})
	if !res.Bounced || len(res.Absorbed) != 0 {
		t.Fatalf("resolution %+v", res)
	}
	v := s.Player().Velocity
	if v.Z <= 0 || v.Len() == 0 {
		t.Fatalf("velocity not reflected: %v", v)
	}
	if math.Abs(v.Z-0.09*0.4) > 1e-12 {
		t.Fatalf("bounce speed %v, want %v", v.Z, 0.09*0.4)
	}
	if !big.Collidable() || big.State != Free {
		t.Fatal("bounced object left the field")
	}
	if !s.Player().Squish.Active() || s.Player().Scale().X >= s.Player().BaseScale() {
		t.Fatal("no squish after bounce")
	}
	if got := s.Player().Position.Z; got <= 0 {
		t.Fatalf("bounce should push back toward +Z, z=%v", got)
	}

	// the squish wears off after its duration
	for i := 0; i < 10; i++ {
		tick(s, clock, Input{})
	}
	if s.Player().Squish.Active() {
		t.Fatal("squish never reverted")
	}
}

func TestSmallestObjectAlwaysAbsorbable(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	r := NewResolver(DefaultTuning(), rng)
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.IntN(30)
		inst := make([]level.Instance, n)
		for i := range inst {
			inst[i].Size = 0.05 + rng.Float64()*100
			inst[i].Position = vec.Vec3{X: rng.Float64()*40 - 20, Z: rng.Float64()*40 - 20}
		}
		w := NewWorld(inst)
		w.MarkAllReady()
		p := NewPlayer(0.5 + rng.Float64()*50)

		for w.LiveCount() > 0 {
			smallest := w.Smallest()
			if smallest > r.AbsorbLimit(p, w) {
				t.Fatalf("trial %d: smallest %v not absorbable at size %v", trial, smallest, p.Size)
			}
			// take the smallest and check again
			for _, e := range w.Collidable() {
				if e.Size() == smallest {
					w.Absorb(e)
					break
				}
			}
		}
		if !math.IsInf(w.Smallest(), 1) {
			t.Fatal("empty world reports a smallest object")
		}
	}
}

func TestCatchUpAbsorbsOutgrownObject(t *testing.T) {
	// Only a large object is left. It is the smallest on the field so it
	// must be absorbed rather than bounced off.
	lvl := testLevel("catchup", 60, 1, oneTier(100), obj(30, 0, -0.5))
	s, clock := newTestSession([]level.Level{lvl})
	_ = s.SelectLevel("catchup")

	res := tick(s, clock, Input{})
	if len(res.Absorbed) != 1 || res.Bounced {
		t.Fatalf("resolution %+v", res)
	}
	if s.State() != Completed {
		t.Fatalf("state %s", s.State())
	}
}

func TestAbsorbedObjectBecomesTrophy(t *testing.T) {
	lvl := testLevel("trophy", 60, 1, oneTier(100), obj(0.4, 0, -0.1), obj(0.4, 10, 10))
	s, clock := newTestSession([]level.Level{lvl})
	_ = s.SelectLevel("trophy")
	e := s.World().At(0)

	res := tick(s, clock, Input{})
	if len(res.Absorbed) != 1 || res.Absorbed[0] != e {
		t.Fatalf("resolution %+v", res)
	}
	if e.State != Absorbed || e.Collidable() || e.Size() != 0.4 {
		t.Fatalf("entity after absorb: state=%s size=%v", e.State, e.Size())
	}
	radius := s.Player().Scale().X * 0.5
	jitter := DefaultTuning().TrophyJitter * s.Player().Scale().X
	if d := e.Offset.Len(); math.Abs(d-radius) > jitter {
		t.Fatalf("trophy offset %v not on the player surface (r=%v)", d, radius)
	}
	wantScale := e.Scale * math.Min(1.2, 0.4/StartSize) * 0.8
	if math.Abs(e.TrophyScale-wantScale) > 1e-12 {
		t.Fatalf("trophy scale %v, want %v", e.TrophyScale, wantScale)
	}
	if s.Player().Score() != 1 || s.World().LiveCount() != 1 {
		t.Fatalf("score %d live %d", s.Player().Score(), s.World().LiveCount())
	}
}

func TestSphereSurfaceUniformRadius(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	var mean vec.Vec3
	const n = 20000
	for i := 0; i < n; i++ {
		p := sphereSurface(2, rng)
		if math.Abs(p.Len()-2) > 1e-9 {
			t.Fatalf("point %v off the sphere", p)
		}
		mean = mean.Add(p)
	}
	// a uniform distribution has its centroid at the center
	if mean.Scale(1.0/n).Len() > 0.05 {
		t.Fatalf("centroid %v", mean.Scale(1.0/n))
	}
}
