package level

import (
	"math"
	"math/rand/v2"

	"katamini/internal/vec"
)

const (
	// SpawnHeight is the resting height of freshly placed objects.
	SpawnHeight = 0.05

	// Ring radius for a template is Size^RingExponent * RingFactor, so bigger
	// objects start farther from the room center.
	RingExponent = 1.05
	RingFactor   = 0.6
)

// Instance is one placed copy of a template.
type Instance struct {
	Template
	Index int // position in the distributed slice
}

// ReplicaCount is how many copies of a template of the given size are placed.
// Large objects are rarer.
func ReplicaCount(size float64) int {
	switch {
	case size < 5:
		return 20
	case size < 10:
		return 12
	case size < 20:
		return 4
	default:
		return 2
	}
}

// RingRadius is the distance from the room center at which copies of a
// template of the given size are placed.
func RingRadius(size float64) float64 {
	return math.Pow(size, RingExponent) * RingFactor
}

// Distribute expands templates into randomly placed instances. Counts are
// deterministic; angles and orientations come from rng. Templates are not
// modified.
func Distribute(templates []Template, rng *rand.Rand) []Instance {
	total := 0
	for _, t := range templates {
		total += ReplicaCount(t.Size)
	}
	out := make([]Instance, 0, total)
	for _, t := range templates {
		n := ReplicaCount(t.Size)
		dist := RingRadius(t.Size)
		for i := 0; i < n; i++ {
			inst := Instance{Template: t, Index: len(out)}
			inst.Position = ringPoint(dist, rng)
			inst.Rotation = spawnRotation(t, rng)
			out = append(out, inst)
		}
	}
	return out
}

// Count returns the number of instances Distribute would produce.
func Count(templates []Template) int {
	n := 0
	for _, t := range templates {
		n += ReplicaCount(t.Size)
	}
	return n
}

// ringPoint returns a point on the floor circle of the given radius at a
// uniformly random angle.
func ringPoint(radius float64, rng *rand.Rand) vec.Vec3 {
	angle := rng.Float64() * 2 * math.Pi
	return vec.Vec3{
		X: math.Cos(angle) * radius,
		Y: SpawnHeight,
		Z: math.Sin(angle) * radius,
	}
}

// Round objects tumble freely; others only get a random yaw.
func spawnRotation(t Template, rng *rand.Rand) vec.Vec3 {
	if t.Round {
		return vec.Vec3{
			X: t.Rotation.X,
			Y: t.Rotation.Y + rng.Float64()*math.Pi,
			Z: t.Rotation.Z + rng.Float64()*math.Pi,
		}
	}
	return vec.Vec3{Y: t.Rotation.Z + rng.Float64()*math.Pi}
}

// Place puts exactly one instance of each template at the template's own
// position and rotation. It is the layout for hand-placed scenes.
func Place(templates []Template) []Instance {
	out := make([]Instance, 0, len(templates))
	for _, t := range templates {
		out = append(out, Instance{Template: t, Index: len(out)})
	}
	return out
}
