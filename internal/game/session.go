package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"katamini/internal/level"
	"katamini/internal/records"
)

var (
	ErrNotPlaying = errors.New("game: no level in progress")
	ErrNoLevel    = errors.New("game: no level selected")
	ErrPlaying    = errors.New("game: level already in progress")
)

// Phase is the session state.
type Phase uint8

const (
	LevelSelect Phase = iota
	Playing
	Completed
	Failed
)

func (p Phase) String() string {
	switch p {
	case LevelSelect:
		return "level-select"
	case Playing:
		return "playing"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether the phase ends an attempt.
func (p Phase) Terminal() bool { return p == Completed || p == Failed }

// Option configures a Session.
type Option func(*Session)

// WithClock sets the elapsed-time source.
func WithClock(c Clock) Option { return func(s *Session) { s.clock = c } }

// WithRand sets the RNG used for object placement and trophy offsets.
func WithRand(r *rand.Rand) Option { return func(s *Session) { s.rng = r } }

// WithSeed seeds a PCG generator for placement and trophies.
func WithSeed(seed uint64) Option {
	return func(s *Session) { s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithAudio injects the audio session.
func WithAudio(a AudioSession) Option { return func(s *Session) { s.audio = a } }

// WithAssets makes object readiness asynchronous. Without a loader every
// object is collidable from the first tick.
func WithAssets(l AssetLoader) Option { return func(s *Session) { s.assets = l } }

// WithRecords sets the best-record store.
func WithRecords(r records.Store) Option { return func(s *Session) { s.records = r } }

// WithTuning overrides the feel constants.
func WithTuning(t Tuning) Option { return func(s *Session) { s.tuning = t } }

// Spawner turns a level's templates into placed instances.
type Spawner func(templates []level.Template, rng *rand.Rand) []level.Instance

// WithSpawner replaces level.Distribute as the object layout.
func WithSpawner(fn Spawner) Option { return func(s *Session) { s.spawn = fn } }

// WithTouch selects the touch-device speed cap.
func WithTouch(touch bool) Option { return func(s *Session) { s.touch = touch } }

// Session is the level state machine. It owns one attempt at a time and
// is driven by Tick from a single goroutine.
type Session struct {
	levels  []level.Level
	clock   Clock
	rng     *rand.Rand
	audio   AudioSession
	assets  AssetLoader
	records records.Store
	tuning  Tuning
	touch   bool
	spawn   Spawner

	phase Phase
	lvl   *level.Level

	// per attempt
	world    *World
	player   *Player
	prog     *Progression
	resolver *Resolver
	bounds   Bounds
	start    time.Time
	elapsed  time.Duration
	ticks    int
	finished bool

	stopAssets context.CancelFunc
	loaded     <-chan assetResult
}

// NewSession returns a session at level select.
func NewSession(levels []level.Level, opts ...Option) *Session {
	s := &Session{
		levels: levels,
		clock:  systemClock{},
		audio:  NopAudio{},
		tuning: DefaultTuning(),
		spawn:  level.Distribute,
		phase:  LevelSelect,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if s.records == nil {
		s.records = records.NewMemoryStore()
	}
	return s
}

// SelectLevel starts a fresh attempt at the level with the given id.
func (s *Session) SelectLevel(id string) error {
	if s.phase == Playing {
		return ErrPlaying
	}
	lvl, err := level.Lookup(s.levels, id)
	if err != nil {
		return err
	}
	s.begin(lvl)
	return nil
}

// Retry restarts the current level from scratch.
func (s *Session) Retry() error {
	if s.lvl == nil {
		return ErrNoLevel
	}
	s.teardown()
	s.begin(s.lvl)
	return nil
}

// ToLevelSelect abandons or leaves the current attempt.
func (s *Session) ToLevelSelect() {
	s.teardown()
	s.phase = LevelSelect
}

func (s *Session) begin(lvl *level.Level) {
	s.lvl = lvl
	s.world = NewWorld(s.spawn(lvl.Templates, s.rng))
	s.player = NewPlayer(StartSize)
	s.prog = NewProgression(lvl.Tiers, s.tuning.TierMultiplier)
	s.resolver = NewResolver(s.tuning, s.rng)
	s.bounds = BoundsFor(lvl.Room())
	s.start = s.clock.Now()
	s.elapsed = 0
	s.ticks = 0
	s.finished = false
	s.phase = Playing

	if s.assets == nil {
		s.world.MarkAllReady()
	} else {
		ctx, cancel := context.WithCancel(context.Background())
		s.stopAssets = cancel
		s.loaded = loadAssets(ctx, s.assets, s.world)
	}

	s.audio.Start(lvl.Music)
	log.Printf("level %s started: %d objects, limit %s", lvl.ID, s.world.LiveCount(), lvl.TimeLimit())
}

// teardown stops the tick loop, detaches the attempt's listeners and
// releases its world, whether the attempt was still running or over.
func (s *Session) teardown() {
	s.finished = true
	if s.stopAssets != nil {
		s.stopAssets()
		s.stopAssets = nil
	}
	s.loaded = nil
	if s.world != nil {
		s.world.Release()
	}
	s.audio.Stop()
}

// Tick advances the attempt by one simulation step.
func (s *Session) Tick(in Input) (Resolution, error) {
	if s.finished || s.phase != Playing {
		return Resolution{}, ErrNotPlaying
	}
	s.ticks++

	// 1. Objects whose models finished loading become collidable
	s.drainAssets()

	// 2. Time limit
	s.elapsed = s.clock.Now().Sub(s.start)
	if s.elapsed > s.lvl.TimeLimit() {
		s.finish(Failed)
		return Resolution{}, nil
	}

	// 3. Locomotion
	s.player.tickSquish(TickDur)
	next := Integrate(s.player, in, s.tuning, s.bounds, s.touch)

	// 4. Collision and absorption
	res := s.resolver.Resolve(s.player, next, s.world, s.prog, s.bounds)
	for _, e := range res.Absorbed {
		s.audio.Cue(e.Sound)
	}
	if res.Promoted {
		log.Printf("level %s: tier %d reached, size %.2f", s.lvl.ID, s.player.Tier, s.player.Size)
	}

	// 5. The pool is empty: the level ends either way
	if s.world.LiveCount() == 0 {
		if s.player.Score() >= s.lvl.RequiredScore {
			s.finish(Completed)
		} else {
			s.finish(Failed)
		}
	}
	return res, nil
}

func (s *Session) drainAssets() {
	for s.loaded != nil {
		select {
		case r := <-s.loaded:
			if r.err != nil {
				log.Printf("asset %s: %v, using fallback", s.world.At(r.index).Model, r.err)
			}
			s.world.MarkReady(r.index, r.err != nil)
		default:
			return
		}
	}
}

func (s *Session) finish(p Phase) {
	s.phase = p
	s.finished = true
	if s.stopAssets != nil {
		s.stopAssets()
		s.stopAssets = nil
	}
	s.loaded = nil
	s.audio.Stop()

	r := records.Record{
		LevelID:   s.lvl.ID,
		Completed: p == Completed,
		Score:     s.player.Score(),
		Elapsed:   s.elapsed,
	}
	improved, err := s.records.Offer(r)
	if err != nil {
		log.Printf("level %s: save record: %v", s.lvl.ID, err)
	}
	log.Printf("level %s %s: score %d/%d in %s (new best: %v)",
		s.lvl.ID, p, r.Score, s.lvl.RequiredScore, r.Elapsed.Round(time.Millisecond), improved)
}

// State returns the current phase.
func (s *Session) State() Phase { return s.phase }

// Level returns the selected level, or nil at first level select.
func (s *Session) Level() *level.Level { return s.lvl }

// Levels returns the level table.
func (s *Session) Levels() []level.Level { return s.levels }

// Player returns the current attempt's player.
func (s *Session) Player() *Player { return s.player }

// World returns the current attempt's object store.
func (s *Session) World() *World { return s.world }

// Progression returns the current attempt's tier state.
func (s *Session) Progression() *Progression { return s.prog }

// Elapsed is the attempt time as of the last tick.
func (s *Session) Elapsed() time.Duration { return s.elapsed }

// Ticks is the number of simulation steps run in this attempt.
func (s *Session) Ticks() int { return s.ticks }

// AbsorbLimit is the largest size the player can absorb right now.
func (s *Session) AbsorbLimit() float64 {
	if s.resolver == nil {
		return 0
	}
	return s.resolver.AbsorbLimit(s.player, s.world)
}

// Record returns the best attempt for a level.
func (s *Session) Record(levelID string) (records.Record, bool) {
	return s.records.Get(levelID)
}

// Unlocked reports whether a level may be selected: the first level always
// is, every other one once the level before it has been completed.
func (s *Session) Unlocked(levelID string) (bool, error) {
	i := level.Index(s.levels, levelID)
	if i < 0 {
		_, err := level.Lookup(s.levels, levelID)
		return false, err
	}
	if i == 0 {
		return true, nil
	}
	prev, ok := s.records.Get(s.levels[i-1].ID)
	return ok && prev.Completed, nil
}

// NextLevel returns the level after the current one, if any.
func (s *Session) NextLevel() (*level.Level, error) {
	if s.lvl == nil {
		return nil, ErrNoLevel
	}
	next := level.Next(s.levels, s.lvl.ID)
	if next == nil {
		return nil, fmt.Errorf("game: %s is the last level", s.lvl.ID)
	}
	return next, nil
}
