package game

import (
	"math"
	"math/rand/v2"
	"testing"

	"katamini/internal/level"
	"katamini/internal/vec"
)

func TestYawMatchesTurning(t *testing.T) {
	fwd := vec.Vec3{Z: -1}
	for _, a := range []float64{0, 0.5, -1, 2.5, math.Pi} {
		got := fwd.RotateY(a)
		if got.Dist(fromYaw(a)) > 1e-12 {
			t.Fatalf("RotateY(%v)=%v, fromYaw=%v", a, got, fromYaw(a))
		}
		if math.Abs(normalizeAngle(yaw(got)-a)) > 1e-12 {
			t.Fatalf("yaw(%v)=%v, want %v", got, yaw(got), a)
		}
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{2*math.Pi + 1, 1},
		{-2*math.Pi - 1, -1},
		{-math.Pi, math.Pi},
		{-3 * math.Pi / 2, math.Pi / 2},
	}
	for _, tt := range tests {
		if got := normalizeAngle(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("normalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSteer(t *testing.T) {
	heading := vec.Vec3{Z: -1}
	tests := []struct {
		name string
		dir  vec.Vec3
		want Input
	}{
		{"ahead", vec.Vec3{Z: -5}, Input{Forward: true}},
		{"left far", vec.Vec3{X: -5, Z: -5}, Input{Forward: true, Left: true}},
		{"right near", vec.Vec3{X: 1, Z: -1}, Input{Right: true}},
		{"behind", vec.Vec3{X: 0.1, Z: 5}, Input{Right: true}},
		{"here", vec.Vec3{}, Input{Forward: true}},
	}
	for _, tt := range tests {
		if got := steer(heading, tt.dir); got != tt.want {
			t.Errorf("%s: %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestAutopilotCollects(t *testing.T) {
	lvl := testLevel("pilot", 120, 3, oneTier(100),
		obj(0.3, 3, 2),
		obj(0.3, -4, -3),
		obj(0.3, 6, -6),
		obj(20, 0, -8), // too big to take
	)
	s, clock := newTestSession([]level.Level{lvl})
	_ = s.SelectLevel("pilot")
	pilot := NewAutopilot(rand.New(rand.NewPCG(5, 5)))

	for i := 0; i < 1800 && s.Player().Score() == 0; i++ {
		tick(s, clock, pilot.Decide(s))
	}
	if s.Player().Score() < 1 {
		t.Fatalf("no object collected, player at %v", s.Player().Position)
	}
	if e, _ := s.World().Get(pilot.Target()); e != nil && e.Size() > 1 {
		t.Fatal("autopilot targeted an object it cannot absorb")
	}
}

func TestAutopilotIdleOutsidePlay(t *testing.T) {
	s, _ := newTestSession(level.Builtin())
	if got := NewAutopilot(rand.New(rand.NewPCG(1, 1))).Decide(s); got != (Input{}) {
		t.Fatalf("input at level select: %+v", got)
	}
}
