package game

import "katamini/internal/level"

// Progression tracks per-tier absorbed counts and the current tier.
//
// Growth is tier-step only: absorbing an object never changes the player's
// size directly; completing the current tier's count gate multiplies it.
// The tier index may reach len(tiers), meaning every gate has been cleared.
type Progression struct {
	tiers      []level.Tier
	counts     []int
	tier       int
	multiplier float64
}

// NewProgression starts at tier 0 with zero counts.
func NewProgression(tiers []level.Tier, multiplier float64) *Progression {
	return &Progression{
		tiers:      tiers,
		counts:     make([]int, len(tiers)),
		multiplier: multiplier,
	}
}

// Tier returns the current tier index.
func (p *Progression) Tier() int { return p.tier }

// Maxed reports whether every tier gate has been cleared.
func (p *Progression) Maxed() bool { return p.tier >= len(p.tiers) }

// Count returns the absorbed count for tier i.
func (p *Progression) Count(i int) int {
	if i < 0 || i >= len(p.counts) {
		return 0
	}
	return p.counts[i]
}

// Current returns the current tier, or false once maxed.
func (p *Progression) Current() (level.Tier, bool) {
	if p.Maxed() {
		return level.Tier{}, false
	}
	return p.tiers[p.tier], true
}

// Absorb records an absorbed object of the given size and returns the
// player's new size. At most one tier is gained per absorption.
func (p *Progression) Absorb(objSize, playerSize float64) (newSize float64, promoted bool) {
	for i, t := range p.tiers {
		if t.Contains(objSize) {
			p.counts[i]++
		}
	}
	if p.Maxed() {
		return playerSize, false
	}
	if p.counts[p.tier] >= p.tiers[p.tier].RequiredCount {
		p.tier++
		return playerSize * p.multiplier, true
	}
	return playerSize, false
}
