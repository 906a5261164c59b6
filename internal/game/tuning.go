package game

import "time"

// Simulation constants. Velocities and forces are per tick.
const (
	// Game loop
	TickRate = 60 // ticks per second
	TickDur  = time.Second / TickRate

	// Player
	StartSize    = 0.5 // cm
	ScalePerSize = 0.5 // visual/collision scale per unit of size (0.5cm -> 0.25)

	// Objects
	ObjectRadiusFactor = 0.05 // collision radius per unit of object size

	// Room
	RoomMargin = 1.0 // keep the player this far inside the walls

	// Camera
	MinZoom    = 2.5
	MaxZoom    = 150.0
	ZoomFactor = 4.0
)

// Tuning holds the feel constants of locomotion, collision and progression.
type Tuning struct {
	Accel       float64 // base acceleration along heading
	AccelK      float64 // accel scales by (1 + size*AccelK)
	MaxSpeed    float64 // base speed cap
	SpeedK      float64 // cap scales by (1 + size*SpeedK)
	TouchBoost  float64 // cap multiplier on touch devices
	Friction    float64 // multiplicative damping per tick
	Gravity     float64
	JumpForce   float64
	TurnRate    float64 // radians per tick
	Bounce      float64 // reflected velocity scale
	AbsorbRatio float64 // objects up to size*AbsorbRatio are absorbable

	TierMultiplier float64 // player size multiplier on tier-up

	SquishX      float64
	SquishZ      float64
	SquishFor    time.Duration
	TrophyCap    float64 // cap of object.size/player.size for trophy scale
	TrophyShrink float64
	TrophyJitter float64
}

// DefaultTuning returns the shipped feel constants.
func DefaultTuning() Tuning {
	return Tuning{
		Accel:          0.003,
		AccelK:         0.4,
		MaxSpeed:       0.4,
		SpeedK:         0.6,
		TouchBoost:     2,
		Friction:       0.9,
		Gravity:        0.01,
		JumpForce:      0.2,
		TurnRate:       0.03,
		Bounce:         0.4,
		AbsorbRatio:    1.2,
		TierMultiplier: 1.8,
		SquishX:        0.95,
		SquishZ:        1.05,
		SquishFor:      100 * time.Millisecond,
		TrophyCap:      1.2,
		TrophyShrink:   0.8,
		TrophyJitter:   0.05,
	}
}

// MaxSpeedFor is the dynamic speed cap for a player of the given size.
func (t Tuning) MaxSpeedFor(size float64, touch bool) float64 {
	m := t.MaxSpeed * (1 + size*t.SpeedK)
	if touch {
		m *= t.TouchBoost
	}
	return m
}

// AccelFor is the dynamic acceleration for a player of the given size.
func (t Tuning) AccelFor(size float64) float64 {
	return t.Accel * (1 + size*t.AccelK)
}
