// Command katamini-headless lets the autopilot play levels without a
// window. It is the driver for soak runs and for exercising the relay.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, cfg, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// reporter prints a status line every few ticks and on the terminal frame.
type reporter struct {
	w     io.Writer
	every int
	n     int
}

func (r *reporter) Render(f game.Frame) {
	r.n++
	if !f.Phase.Terminal() && (r.every <= 0 || r.n%r.every != 0) {
		return
	}
	fmt.Fprintf(r.w, "[%s] %s %s size %s tier %d score %d/%d live %d players %d\n",
		game.FormatClock(f.Elapsed), f.LevelID, f.Phase, game.FormatSize(f.Player.Size),
		f.Player.Tier, f.Player.Score, f.RequiredScore, f.Live, f.Players)
}

func run(ctx context.Context, cfg *Config, out io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	levels := level.Builtin()
	if cfg.Levels != "" {
		var err error
		if levels, err = level.LoadFile(cfg.Levels); err != nil {
			return err
		}
	}

	store, err := records.Open(cfg.Records, cfg.RecordDSN)
	if err != nil {
		return err
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed+1))
	opts := []game.Option{game.WithSeed(cfg.Seed), game.WithRecords(store)}
	if cfg.Audio {
		opts = append(opts, game.WithAudio(game.NewLogAudio(rng)))
	}
	var clock *game.ManualClock
	if !cfg.Realtime {
		clock = game.NewManualClock(time.Now())
		opts = append(opts, game.WithClock(clock))
	}
	s := game.NewSession(levels, opts...)

	pilot := game.NewAutopilot(rng)
	input := game.InputFunc(func() game.Input { return pilot.Decide(s) })
	// Broadcasts stay paced on the wall clock even when the simulation
	// runs fast, so peers get at most one snapshot per interval.
	var loopOpts []game.LoopOption
	if cfg.Relay != "" {
		codec, err := multiplayer.CodecByName(cfg.Codec)
		if err != nil {
			return err
		}
		enc := relay.JSON
		if codec.Name() == "msgpack" {
			enc = relay.Msgpack
		}
		mp := multiplayer.NewManager(multiplayer.Options{
			Codec: codec,
			OnSteal: func(from string, a multiplayer.StealAttempt) {
				log.Printf("peer %s (size %.2f) ran over us", from, a.Size)
			},
		})
		loopOpts = append(loopOpts, game.WithMultiplayer(mp, relay.Opener(cfg.Relay, enc)))
	}
	loop := game.NewLoop(s, input, &reporter{w: out, every: cfg.Every}, loopOpts...)

	id := cfg.Level
	for {
		if err := s.SelectLevel(id); err != nil {
			return err
		}
		if clock != nil {
			err = playFast(ctx, loop, clock)
		} else {
			err = loop.Run(ctx)
		}
		if err != nil {
			return err
		}

		rec, _ := s.Record(id)
		fmt.Fprintf(out, "result %s: %s, score %d in %s (best: completed=%v score %d in %s)\n",
			id, s.State(), s.Player().Score(), game.FormatClock(s.Elapsed()),
			rec.Completed, rec.Score, game.FormatClock(rec.Elapsed))

		if !cfg.All || s.State() != game.Completed {
			return nil
		}
		next, err := s.NextLevel()
		if err != nil {
			return nil
		}
		if ok, _ := s.Unlocked(next.ID); !ok {
			return nil
		}
		s.ToLevelSelect()
		id = next.ID
	}
}

// playFast steps the loop as fast as possible on a manual clock.
func playFast(ctx context.Context, loop *game.Loop, clock *game.ManualClock) error {
	if err := loop.Join(ctx); err != nil {
		log.Printf("multiplayer unavailable, playing solo: %v", err)
	}
	defer loop.Leave()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		clock.Advance(game.TickDur)
		if !loop.Step() {
			return nil
		}
	}
}
