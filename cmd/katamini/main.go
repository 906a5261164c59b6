//go:build ebiten

// Command katamini is the windowed client: a top-down view of the room,
// keyboard or single-finger drag to roll.
package main

import (
	"errors"
	"flag"
	"io"
	"log"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"

	"katamini/internal/game"
	"katamini/internal/level"
	"katamini/internal/multiplayer"
	"katamini/internal/records"
	"katamini/internal/relay"
)

func main() {
	cfg := NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	levels := level.Builtin()
	if cfg.Levels != "" {
		var err error
		if levels, err = level.LoadFile(cfg.Levels); err != nil {
			log.Fatal(err)
		}
	}
	store, err := records.Open(cfg.Records, cfg.RecordDSN)
	if err != nil {
		log.Fatal(err)
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	opts := []game.Option{
		game.WithRecords(store),
		game.WithTouch(cfg.Touch),
		game.WithAudio(game.NewLogAudio(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))),
	}
	if cfg.Seed != 0 {
		opts = append(opts, game.WithSeed(cfg.Seed))
	}
	session := game.NewSession(levels, opts...)

	app := NewApp(session, cfg.Width, cfg.Height)
	var loopOpts []game.LoopOption
	if cfg.Relay != "" {
		codec, err := multiplayer.CodecByName(cfg.Codec)
		if err != nil {
			log.Fatal(err)
		}
		enc := relay.JSON
		if codec.Name() == "msgpack" {
			enc = relay.Msgpack
		}
		mp := multiplayer.NewManager(multiplayer.Options{Codec: codec, OnSteal: app.onSteal})
		loopOpts = append(loopOpts, game.WithMultiplayer(mp, relay.Opener(cfg.Relay, enc)))
	}
	app.loop = game.NewLoop(session, app, app, loopOpts...)

	ebiten.SetWindowTitle("Katamini")
	ebiten.SetTPS(game.TickRate)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)

	if err := ebiten.RunGame(app); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
	app.loop.Leave()
}
