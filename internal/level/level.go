// Package level holds the static level table: object templates, size tiers,
// time limits and score gates. Levels are immutable once a session starts.
package level

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"katamini/internal/vec"
)

var (
	// ErrUnknownLevel is returned when a level id is not in the table.
	ErrUnknownLevel = errors.New("level not found")
	// ErrInvalidTiers is returned for tier tables that are not contiguous and increasing.
	ErrInvalidTiers = errors.New("invalid size tiers")
	// ErrInvalidLevel covers the remaining structural problems.
	ErrInvalidLevel = errors.New("invalid level")
)

// DefaultRoomSize is the edge length of the square room when a level leaves it unset.
const DefaultRoomSize = 50.0

// Template is a catalog entry that Distribute expands into many instances.
type Template struct {
	Type     string   `json:"type"`
	Size     float64  `json:"size"`
	Model    string   `json:"model"`
	Position vec.Vec3 `json:"position"`
	Rotation vec.Vec3 `json:"rotation"`
	Scale    float64  `json:"scale"`
	Color    string   `json:"color"`
	Round    bool     `json:"round,omitempty"`
	Sound    string   `json:"sound,omitempty"`
}

// Tier is a size bracket [Min, Max) with a count gate. GrowthRate is kept
// from the content table but the simulation grows by tier steps only.
type Tier struct {
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	GrowthRate    float64 `json:"growthRate,omitempty"`
	RequiredCount int     `json:"requiredCount"`
}

// Contains reports whether size falls in [Min, Max).
func (t Tier) Contains(size float64) bool {
	return size >= t.Min && size < t.Max
}

// Level is one entry of the level table.
type Level struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	MaxTime         float64    `json:"maxTime"` // seconds
	RequiredScore   int        `json:"requiredScore"`
	RoomSize        float64    `json:"roomSize,omitempty"`
	Templates       []Template `json:"gameObjects"`
	Tiers           []Tier     `json:"sizeTiers"`
	Music           []string   `json:"backgroundMusic,omitempty"`
	MultiplayerRoom string     `json:"multiplayerRoom,omitempty"`

	AmbientColor string `json:"ambientColor,omitempty"`
	WallTexture  string `json:"wallTexture,omitempty"`
	FloorTexture string `json:"floorTexture,omitempty"`
}

// TimeLimit returns MaxTime as a duration.
func (l *Level) TimeLimit() time.Duration {
	return time.Duration(l.MaxTime * float64(time.Second))
}

// Room returns the room edge length, falling back to DefaultRoomSize.
func (l *Level) Room() float64 {
	if l.RoomSize <= 0 {
		return DefaultRoomSize
	}
	return l.RoomSize
}

// Multiplayer reports whether the level has a peer room.
func (l *Level) Multiplayer() bool { return l.MultiplayerRoom != "" }

// Normalize makes the last tier unbounded. Content tables often close the
// last bracket at the largest object; the tier model treats it as open.
func (l *Level) Normalize() {
	if n := len(l.Tiers); n > 0 {
		l.Tiers[n-1].Max = math.Inf(1)
	}
}

// Validate checks the structural invariants of a level.
func (l *Level) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidLevel)
	}
	if l.MaxTime <= 0 {
		return fmt.Errorf("%w: %s: maxTime must be positive", ErrInvalidLevel, l.ID)
	}
	if l.RequiredScore < 0 {
		return fmt.Errorf("%w: %s: requiredScore must not be negative", ErrInvalidLevel, l.ID)
	}
	for i, t := range l.Templates {
		if t.Size <= 0 {
			return fmt.Errorf("%w: %s: template %d (%s) has size %g", ErrInvalidLevel, l.ID, i, t.Type, t.Size)
		}
	}
	return ValidateTiers(l.Tiers)
}

// ValidateTiers checks that ranges are non-empty, contiguous and increasing.
func ValidateTiers(tiers []Tier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("%w: no tiers", ErrInvalidTiers)
	}
	for i, t := range tiers {
		if !(t.Min < t.Max) {
			return fmt.Errorf("%w: tier %d has min %g >= max %g", ErrInvalidTiers, i, t.Min, t.Max)
		}
		if t.RequiredCount < 0 {
			return fmt.Errorf("%w: tier %d has negative requiredCount", ErrInvalidTiers, i)
		}
		if i > 0 && tiers[i-1].Max != t.Min {
			return fmt.Errorf("%w: tier %d starts at %g, previous ends at %g", ErrInvalidTiers, i, t.Min, tiers[i-1].Max)
		}
	}
	return nil
}

// Lookup finds a level by id. Unknown ids fail with ErrUnknownLevel and a
// suggestion for the closest known id when one is near enough.
func Lookup(levels []Level, id string) (*Level, error) {
	for i := range levels {
		if levels[i].ID == id {
			return &levels[i], nil
		}
	}
	if s := suggest(levels, id); s != "" {
		return nil, fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownLevel, id, s)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownLevel, id)
}

// Next returns the level after id in table order, or nil at the end.
func Next(levels []Level, id string) *Level {
	for i := range levels {
		if levels[i].ID == id && i+1 < len(levels) {
			return &levels[i+1]
		}
	}
	return nil
}

// Index returns the table position of id, or -1.
func Index(levels []Level, id string) int {
	for i := range levels {
		if levels[i].ID == id {
			return i
		}
	}
	return -1
}

func suggest(levels []Level, id string) string {
	type cand struct {
		id   string
		dist int
	}
	needle := strings.ToLower(strings.TrimSpace(id))
	var cands []cand
	for _, l := range levels {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(l.ID))
		if d <= suggestLimit(len(l.ID)) {
			cands = append(cands, cand{l.ID, d})
		}
	}
	if len(cands) == 0 {
		return ""
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })
	return cands[0].id
}

func suggestLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
