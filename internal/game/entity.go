package game

import (
	"github.com/google/uuid"

	"katamini/internal/level"
	"katamini/internal/vec"
)

// EntityState is the ownership of a world object.
type EntityState uint8

const (
	// Free objects lie in the room and can be collided with once ready.
	Free EntityState = iota
	// Absorbed objects ride on the player as trophies.
	Absorbed
	// Removed objects belong to a torn-down level.
	Removed
)

func (s EntityState) String() string {
	switch s {
	case Free:
		return "free"
	case Absorbed:
		return "absorbed"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// Entity is one object in the arena. Size is fixed at spawn.
type Entity struct {
	ID    string
	Index int
	Type  string
	Model string
	Color string
	Sound string
	Round bool

	size     float64
	Position vec.Vec3
	Rotation vec.Vec3
	Scale    float64

	State    EntityState
	Ready    bool // model resolved; only ready objects collide
	Fallback bool // model failed, drawn as a primitive of the same size

	// Set on absorption: position relative to the player center and
	// the trophy's visual scale.
	Offset      vec.Vec3
	TrophyScale float64
}

func newEntity(inst level.Instance) *Entity {
	return &Entity{
		ID:       uuid.NewString(),
		Index:    inst.Index,
		Type:     inst.Type,
		Model:    inst.Model,
		Color:    inst.Color,
		Sound:    inst.Sound,
		Round:    inst.Round,
		size:     inst.Size,
		Position: inst.Position,
		Rotation: inst.Rotation,
		Scale:    inst.Scale,
		State:    Free,
	}
}

// Size is the collection threshold of the object.
func (e *Entity) Size() float64 { return e.size }

// Radius is the collision radius of the object.
func (e *Entity) Radius() float64 { return e.size * ObjectRadiusFactor }

// Collidable reports whether the object is on the field and loaded.
func (e *Entity) Collidable() bool { return e.State == Free && e.Ready }
