package main

import (
	"flag"
	"time"
)

// Config represents the command-line parameters of the headless runner.
type Config struct {
	Level     string
	Levels    string
	All       bool
	Seed      uint64
	Realtime  bool
	Timeout   time.Duration
	Relay     string
	Codec     string
	Records   string
	RecordDSN string
	Audio     bool
	Every     int
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Level:   "level1",
		Seed:    42,
		Timeout: 10 * time.Minute,
		Codec:   "json",
		Records: "memory",
		Every:   600,
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Level, "level", c.Level, "level id to play")
	fs.StringVar(&c.Levels, "levels", c.Levels, "JSON level table (default: built-in levels)")
	fs.BoolVar(&c.All, "all", c.All, "continue with the next level after each completion")
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "seed for object placement and the autopilot")
	fs.BoolVar(&c.Realtime, "realtime", c.Realtime, "tick at 60Hz on the wall clock instead of as fast as possible")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "give up after this much wall time")
	fs.StringVar(&c.Relay, "relay", c.Relay, "relay websocket URL for multiplayer levels, e.g. ws://localhost:8080/ws")
	fs.StringVar(&c.Codec, "codec", c.Codec, "multiplayer payload codec: json or msgpack")
	fs.StringVar(&c.Records, "records", c.Records, "record store: memory or sqlite")
	fs.StringVar(&c.RecordDSN, "records-dsn", c.RecordDSN, "sqlite DSN (default: in-memory)")
	fs.BoolVar(&c.Audio, "audio", c.Audio, "log music and sound cues")
	fs.IntVar(&c.Every, "every", c.Every, "print a status line every N ticks")
}
