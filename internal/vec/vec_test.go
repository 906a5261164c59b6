package vec

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRotateYMatchesAxisAngle(t *testing.T) {
	// Heading -Z rotated left by 90° around +Y points toward -X.
	got := New(0, 0, -1).RotateY(math.Pi / 2)
	if !near(got.X, -1) || !near(got.Z, 0) || !near(got.Y, 0) {
		t.Fatalf("rotate: got %+v want (-1,0,0)", got)
	}
	if l := New(0.6, 0, 0.8).RotateY(0.37).Len(); !near(l, 1) {
		t.Fatalf("rotation changed length: %f", l)
	}
}

func TestReflectAboutNormal(t *testing.T) {
	v := New(1, 0, -1)
	n := New(0, 0, 1)
	got := v.Reflect(n)
	if !near(got.X, 1) || !near(got.Z, 1) {
		t.Fatalf("reflect: got %+v want (1,0,1)", got)
	}
}

func TestClampLen(t *testing.T) {
	v := New(3, 0, 4).ClampLen(1)
	if !near(v.Len(), 1) {
		t.Fatalf("clamp: len=%f", v.Len())
	}
	short := New(0.1, 0, 0)
	if short.ClampLen(1) != short {
		t.Fatalf("clamp must not grow short vectors")
	}
}

func TestNormalizeZero(t *testing.T) {
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Fatalf("zero vector must normalize to zero")
	}
}

func TestFinite(t *testing.T) {
	if !New(1, 2, 3).Finite() {
		t.Fatal("finite vector reported non-finite")
	}
	if New(math.NaN(), 0, 0).Finite() || New(0, math.Inf(1), 0).Finite() {
		t.Fatal("non-finite vector reported finite")
	}
}
