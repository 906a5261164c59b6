package game

import (
	"fmt"
	"math"
	"time"

	"katamini/internal/vec"
)

// ObjectView is a live object as the renderer sees it.
type ObjectView struct {
	ID         string
	Type       string
	Model      string
	Color      string
	Size       float64
	Position   vec.Vec3
	Rotation   vec.Vec3
	Scale      float64
	Fallback   bool
	Absorbable bool // drawn with a highlight aura
}

// TrophyView is an absorbed object riding on the player.
type TrophyView struct {
	ID     string
	Model  string
	Color  string
	Offset vec.Vec3 // relative to the player center
	Scale  float64
}

// PlayerView is the player transform for one frame.
type PlayerView struct {
	Position vec.Vec3
	Velocity vec.Vec3
	Heading  vec.Vec3
	Scale    vec.Vec3
	Size     float64
	Tier     int
	Score    int
}

// Snapshot is the per-tick state handed to renderers and HUDs.
type Snapshot struct {
	Phase         Phase
	LevelID       string
	LevelName     string
	RoomSize      float64
	Elapsed       time.Duration
	Remaining     time.Duration
	RequiredScore int
	Live          int
	Zoom          float64

	Player   PlayerView
	Objects  []ObjectView
	Trophies []TrophyView
}

// Snapshot captures the current attempt. At level select before any level
// was played it carries only the phase.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{Phase: s.phase}
	if s.lvl == nil || s.player == nil {
		return snap
	}
	p := s.player
	snap.LevelID = s.lvl.ID
	snap.LevelName = s.lvl.Name
	snap.RoomSize = s.lvl.Room()
	snap.Elapsed = s.elapsed
	snap.Remaining = max(s.lvl.TimeLimit()-s.elapsed, 0)
	snap.RequiredScore = s.lvl.RequiredScore
	snap.Live = s.world.LiveCount()
	snap.Zoom = CameraZoom(p.BaseScale())
	snap.Player = PlayerView{
		Position: p.Position,
		Velocity: p.Velocity,
		Heading:  p.Heading,
		Scale:    p.Scale(),
		Size:     p.Size,
		Tier:     p.Tier,
		Score:    p.Score(),
	}

	limit := s.AbsorbLimit()
	for _, e := range s.world.Collidable() {
		snap.Objects = append(snap.Objects, ObjectView{
			ID:         e.ID,
			Type:       e.Type,
			Model:      e.Model,
			Color:      e.Color,
			Size:       e.Size(),
			Position:   e.Position,
			Rotation:   e.Rotation,
			Scale:      e.Scale,
			Fallback:   e.Fallback,
			Absorbable: e.Size() <= limit,
		})
	}
	for _, e := range p.Collected {
		snap.Trophies = append(snap.Trophies, TrophyView{
			ID:     e.ID,
			Model:  e.Model,
			Color:  e.Color,
			Offset: e.Offset,
			Scale:  e.TrophyScale,
		})
	}
	return snap
}

// CameraZoom is the follow distance for a player of the given scale.
func CameraZoom(scale float64) float64 {
	return vec.Clamp(scale*ZoomFactor, MinZoom, MaxZoom)
}

// FormatSize renders a size in cm as "12cm 3mm".
func FormatSize(size float64) string {
	cm := math.Floor(size)
	mm := math.Floor((size - cm) * 10)
	return fmt.Sprintf("%dcm %dmm", int(cm), int(mm))
}

// FormatClock renders a duration as mm:ss.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}
