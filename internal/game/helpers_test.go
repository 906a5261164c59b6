package game

import (
	"math"
	"math/rand/v2"
	"time"

	"katamini/internal/level"
	"katamini/internal/vec"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func placeAll(t []level.Template, _ *rand.Rand) []level.Instance { return level.Place(t) }

func obj(size float64, x, z float64) level.Template {
	return level.Template{Type: "thing", Model: "/models/thing.glb", Size: size, Scale: 1, Position: vec.Vec3{X: x, Y: 0.125, Z: z}}
}

func testLevel(id string, maxTime float64, required int, tiers []level.Tier, templates ...level.Template) level.Level {
	l := level.Level{
		ID:            id,
		Name:          id,
		MaxTime:       maxTime,
		RequiredScore: required,
		RoomSize:      50,
		Templates:     templates,
		Tiers:         tiers,
	}
	l.Normalize()
	return l
}

func oneTier(required int) []level.Tier {
	return []level.Tier{{Min: 0, Max: math.Inf(1), RequiredCount: required}}
}

// newTestSession places every template exactly once and steps time by hand.
func newTestSession(levels []level.Level, opts ...Option) (*Session, *ManualClock) {
	clock := NewManualClock(epoch)
	base := []Option{WithClock(clock), WithSeed(7), WithSpawner(placeAll)}
	return NewSession(levels, append(base, opts...)...), clock
}

// tick advances the clock by one tick and runs it.
func tick(s *Session, c *ManualClock, in Input) Resolution {
	c.Advance(TickDur)
	res, _ := s.Tick(in)
	return res
}

type recordingAudio struct {
	starts, stops int
	cues          []string
}

func (a *recordingAudio) Start([]string)   { a.starts++ }
func (a *recordingAudio) Stop()            { a.stops++ }
func (a *recordingAudio) Cue(sound string) { a.cues = append(a.cues, sound) }

type frameRecorder struct {
	frames []Frame
}

func (r *frameRecorder) Render(f Frame) { r.frames = append(r.frames, f) }

func (r *frameRecorder) last() Frame { return r.frames[len(r.frames)-1] }
