package game

import (
	"context"
	"time"
)

// AssetLoader resolves an object's model. Loads run off the tick goroutine;
// an object becomes collidable on the first tick after its load finishes.
// A failed load still makes the object collidable, drawn as a fallback
// primitive of the same size.
type AssetLoader interface {
	Load(ctx context.Context, model string) error
}

// DelayLoader simulates a loader that takes a fixed time per model.
type DelayLoader struct {
	Delay time.Duration
	Fail  func(model string) bool
}

func (d DelayLoader) Load(ctx context.Context, model string) error {
	if d.Delay > 0 {
		t := time.NewTimer(d.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	if d.Fail != nil && d.Fail(model) {
		return errModelMissing{model}
	}
	return nil
}

type errModelMissing struct{ model string }

func (e errModelMissing) Error() string { return "model not found: " + e.model }

type assetResult struct {
	index int
	err   error
}

// loadAssets starts one load per object. Results land in a channel sized
// for every object so loaders never block on a torn-down level.
func loadAssets(ctx context.Context, loader AssetLoader, w *World) <-chan assetResult {
	ents := w.Entities()
	out := make(chan assetResult, len(ents))
	for _, e := range ents {
		go func(i int, model string) {
			err := loader.Load(ctx, model)
			if ctx.Err() != nil {
				return
			}
			out <- assetResult{index: i, err: err}
		}(e.Index, e.Model)
	}
	return out
}
