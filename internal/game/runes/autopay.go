package runes

import (
	"math/bits"

	"github.com/riftbound/duel-server-go/internal/carddef"
)

// maxSearchRunes bounds the subset enumeration. The board never holds
// more than about a dozen runes per player, so brute force over all
// 2^n recycle subsets is exact and fast; this is a fixed upper bound,
// not a heuristic cutoff.
const maxSearchRunes = 16

// RuneState is the planner's view of one rune in play.
type RuneState struct {
	ID        string
	Domain    carddef.Domain
	Exhausted bool
}

// Plan describes how to generate the resources for a cost before
// paying it: which runes to recycle (each yields one power of its
// domain and goes to the bottom of the rune deck) and which ready
// runes to exhaust (each yields one energy). A rune may appear in
// both lists; exhausting then recycling the same rune counts as a
// single rune touched.
type Plan struct {
	Recycle []string
	Exhaust []string
}

// Touched returns the number of distinct runes the plan uses.
func (p *Plan) Touched() int {
	seen := make(map[string]struct{}, len(p.Recycle)+len(p.Exhaust))
	for _, id := range p.Recycle {
		seen[id] = struct{}{}
	}
	for _, id := range p.Exhaust {
		seen[id] = struct{}{}
	}
	return len(seen)
}

// planRank orders candidate plans: fewest recycled runes, then fewest
// exhaust-only runes, then fewest total runes touched. Ties keep the
// first plan found, which makes planning deterministic.
type planRank struct {
	recycled    int
	exhaustOnly int
	touched     int
}

func (r planRank) betterThan(o planRank) bool {
	if r.recycled != o.recycled {
		return r.recycled < o.recycled
	}
	if r.exhaustOnly != o.exhaustOnly {
		return r.exhaustOnly < o.exhaustOnly
	}
	return r.touched < o.touched
}

// AutoPlan searches for the cheapest way to generate and pay the cost
// from the current pool plus the runes in play. It returns nil when no
// combination of recycling and exhausting covers the cost.
//
// The search enumerates every subset of runes in play as the recycle
// set, then covers any remaining energy shortfall by exhausting the
// minimum number of ready runes, preferring runes already chosen for
// recycling so the combo counts as one rune used.
func AutoPlan(cost Cost, pool *Pool, inPlay []RuneState) *Plan {
	if cost.CanAfford(pool) {
		return &Plan{}
	}
	n := len(inPlay)
	if n > maxSearchRunes {
		n = maxSearchRunes
	}

	var best *Plan
	var bestRank planRank

	for mask := 0; mask < 1<<n; mask++ {
		plan, ok := tryMask(cost, pool, inPlay, n, mask)
		if !ok {
			continue
		}
		rank := planRank{
			recycled:    len(plan.Recycle),
			exhaustOnly: exhaustOnlyCount(plan),
			touched:     plan.Touched(),
		}
		if best == nil || rank.betterThan(bestRank) {
			best = plan
			bestRank = rank
		}
	}
	return best
}

// tryMask evaluates one recycle subset. It returns the completed plan
// and whether the augmented pool can afford the cost.
func tryMask(cost Cost, pool *Pool, inPlay []RuneState, n, mask int) (*Plan, bool) {
	sim := pool.Copy()
	plan := &Plan{}

	for i := 0; i < n; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		sim.AddPower(inPlay[i].Domain, 1)
		plan.Recycle = append(plan.Recycle, inPlay[i].ID)
	}

	// Energy shortfall after recycling: cover by exhausting ready
	// runes. Ready runes inside the recycle set come first; they are
	// already being touched.
	shortfall := cost.Energy - sim.Energy
	if shortfall > 0 {
		recycled := maskSet(inPlay, n, mask)
		for _, preferRecycled := range []bool{true, false} {
			for i := 0; i < len(inPlay) && shortfall > 0; i++ {
				r := inPlay[i]
				if r.Exhausted {
					continue
				}
				if _, in := recycled[r.ID]; in != preferRecycled {
					continue
				}
				if containsID(plan.Exhaust, r.ID) {
					continue
				}
				sim.AddEnergy(1)
				plan.Exhaust = append(plan.Exhaust, r.ID)
				shortfall--
			}
		}
		if shortfall > 0 {
			return nil, false
		}
	}

	if !cost.CanAfford(sim) {
		return nil, false
	}
	return plan, true
}

func maskSet(inPlay []RuneState, n, mask int) map[string]struct{} {
	set := make(map[string]struct{}, bits.OnesCount(uint(mask)))
	for i := 0; i < n; i++ {
		if mask&(1<<i) != 0 {
			set[inPlay[i].ID] = struct{}{}
		}
	}
	return set
}

func exhaustOnlyCount(p *Plan) int {
	recycled := make(map[string]struct{}, len(p.Recycle))
	for _, id := range p.Recycle {
		recycled[id] = struct{}{}
	}
	count := 0
	for _, id := range p.Exhaust {
		if _, ok := recycled[id]; !ok {
			count++
		}
	}
	return count
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
