package main

import "flag"

// Config represents the command-line parameters of the client.
type Config struct {
	Levels    string
	Seed      uint64
	Width     int
	Height    int
	Touch     bool
	Relay     string
	Codec     string
	Records   string
	RecordDSN string
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Width:   960,
		Height:  720,
		Codec:   "json",
		Records: "sqlite",
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Levels, "levels", c.Levels, "JSON level table (default: built-in levels)")
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "placement seed, 0 for a random layout every attempt")
	fs.IntVar(&c.Width, "width", c.Width, "window width")
	fs.IntVar(&c.Height, "height", c.Height, "window height")
	fs.BoolVar(&c.Touch, "touch", c.Touch, "use the touch-device speed cap")
	fs.StringVar(&c.Relay, "relay", c.Relay, "relay websocket URL for multiplayer levels")
	fs.StringVar(&c.Codec, "codec", c.Codec, "multiplayer payload codec: json or msgpack")
	fs.StringVar(&c.Records, "records", c.Records, "record store: memory or sqlite")
	fs.StringVar(&c.RecordDSN, "records-dsn", c.RecordDSN, "sqlite DSN (default: in-memory)")
}
