package level

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Decode reads a JSON level table. The last tier of each level is made
// unbounded (JSON has no Infinity) and every level is validated.
func Decode(r io.Reader) ([]Level, error) {
	var levels []Level
	if err := json.NewDecoder(r).Decode(&levels); err != nil {
		return nil, fmt.Errorf("decode level table: %w", err)
	}
	seen := make(map[string]bool, len(levels))
	for i := range levels {
		levels[i].Normalize()
		if err := levels[i].Validate(); err != nil {
			return nil, err
		}
		if seen[levels[i].ID] {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidLevel, levels[i].ID)
		}
		seen[levels[i].ID] = true
	}
	return levels, nil
}

// LoadFile reads a JSON level table from disk.
func LoadFile(path string) ([]Level, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open level table: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
