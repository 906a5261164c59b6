package game

import (
	"log"
	"math/rand/v2"
	"sync"
)

// AudioSession is the music and cue player owned by a Session. Start is
// called on level start, Stop on every terminal state and teardown.
type AudioSession interface {
	Start(tracks []string)
	Stop()
	Cue(sound string)
}

// NopAudio plays nothing.
type NopAudio struct{}

func (NopAudio) Start([]string) {}
func (NopAudio) Stop()          {}
func (NopAudio) Cue(string)     {}

// LogAudio logs what would be played. It picks one background track per
// level start and remembers whether music is running.
type LogAudio struct {
	mu      sync.Mutex
	rng     *rand.Rand
	current string
}

// NewLogAudio returns a logging audio session.
func NewLogAudio(rng *rand.Rand) *LogAudio {
	return &LogAudio{rng: rng}
}

func (a *LogAudio) Start(tracks []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current != "" || len(tracks) == 0 {
		return
	}
	a.current = tracks[a.rng.IntN(len(tracks))]
	log.Printf("audio: music %s", a.current)
}

func (a *LogAudio) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current != "" {
		log.Printf("audio: stop %s", a.current)
	}
	a.current = ""
}

func (a *LogAudio) Cue(sound string) {
	if sound != "" {
		log.Printf("audio: cue %s", sound)
	}
}

// Playing returns the current background track, if any.
func (a *LogAudio) Playing() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}
