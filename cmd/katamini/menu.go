package main

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"katamini/internal/game"
)

// menuEntry is one line of the level select screen.
type menuEntry struct {
	Key         int // number key that selects it
	ID          string
	Name        string
	Unlocked    bool
	Completed   bool
	Best        string
	Multiplayer bool
}

func (e menuEntry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s", e.Key, e.Name)
	if !e.Unlocked {
		b.WriteString("  [locked]")
		return b.String()
	}
	if e.Best != "" {
		b.WriteString("  best: " + e.Best)
	}
	if e.Multiplayer {
		b.WriteString("  [online]")
	}
	return b.String()
}

// buildMenu lists every level with its lock state and best record.
func buildMenu(s *game.Session) []menuEntry {
	levels := s.Levels()
	out := make([]menuEntry, 0, len(levels))
	for i := range levels {
		l := &levels[i]
		unlocked, _ := s.Unlocked(l.ID)
		e := menuEntry{
			Key:         i + 1,
			ID:          l.ID,
			Name:        l.Name,
			Unlocked:    unlocked,
			Multiplayer: l.Multiplayer(),
		}
		if rec, ok := s.Record(l.ID); ok {
			e.Completed = rec.Completed
			if rec.Completed {
				e.Best = game.FormatClock(rec.Elapsed)
			} else {
				e.Best = fmt.Sprintf("%d objects", rec.Score)
			}
		}
		out = append(out, e)
	}
	return out
}

// hudLines is the in-game overlay text.
func hudLines(f game.Frame) []string {
	lines := []string{
		f.LevelName,
		"Time  " + game.FormatClock(f.Remaining),
		"Size  " + game.FormatSize(f.Player.Size),
		fmt.Sprintf("Score %d/%d", f.Player.Score, f.RequiredScore),
	}
	if f.Players > 1 {
		lines = append(lines, fmt.Sprintf("Players %d", f.Players))
	}
	return lines
}

// resultLines is the text of the completed and failed screens.
func resultLines(f game.Frame, hasNext bool) []string {
	var lines []string
	switch f.Phase {
	case game.Completed:
		lines = append(lines, "LEVEL COMPLETE!")
	case game.Failed:
		lines = append(lines, "TIME'S UP!")
	default:
		return nil
	}
	lines = append(lines,
		fmt.Sprintf("Collected %d objects", f.Player.Score),
		"Final size "+game.FormatSize(f.Player.Size),
		"Time "+game.FormatClock(f.Elapsed),
		"",
		"R: retry   Esc: level select",
	)
	if f.Phase == game.Completed && hasNext {
		lines = append(lines, "N: next level")
	}
	return lines
}

// parseColor reads "#RRGGBB". Anything else is drawn grey.
func parseColor(hex string) color.RGBA {
	grey := color.RGBA{0x9e, 0x9e, 0x9e, 0xff}
	if len(hex) != 7 || hex[0] != '#' {
		return grey
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return grey
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}
}
