package runes

import (
	"fmt"
	"strings"

	"github.com/riftbound/duel-server-go/internal/carddef"
)

// Cost is a resource cost specification: an energy amount, a base
// power amount payable from an allowed-domain set, optional extra
// power tagged to specific domains, and optional extra power payable
// from any domain.
type Cost struct {
	Energy   int
	Power    int
	Domains  []carddef.Domain // allowed domains for the base power amount
	Extra    map[carddef.Domain]int
	AnyPower int
}

// IsFree reports whether the cost requires no resources at all.
func (c Cost) IsFree() bool {
	if c.Energy > 0 || c.Power > 0 || c.AnyPower > 0 {
		return false
	}
	for _, v := range c.Extra {
		if v > 0 {
			return false
		}
	}
	return true
}

// String renders the cost for log lines.
func (c Cost) String() string {
	var parts []string
	if c.Energy > 0 {
		parts = append(parts, fmt.Sprintf("%d energy", c.Energy))
	}
	if c.Power > 0 {
		names := make([]string, len(c.Domains))
		for i, d := range c.Domains {
			names[i] = strings.ToLower(string(d))
		}
		parts = append(parts, fmt.Sprintf("%d power (%s)", c.Power, strings.Join(names, "/")))
	}
	for _, d := range carddef.AllDomains {
		if v := c.Extra[d]; v > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", v, strings.ToLower(string(d))))
		}
	}
	if c.AnyPower > 0 {
		parts = append(parts, fmt.Sprintf("%d power (any)", c.AnyPower))
	}
	if len(parts) == 0 {
		return "free"
	}
	return strings.Join(parts, " + ")
}

// CanAfford simulates payment of the cost against the pool without
// mutating it.
func (c Cost) CanAfford(pool *Pool) bool {
	return c.payInto(pool.Copy()) == nil
}

// Pay commits the cost against the pool. Power is drained from the
// domain with the largest surplus first; ties fall back to canonical
// domain order, keeping payment deterministic. Returns an error and
// leaves the pool untouched if the cost cannot be paid.
func (c Cost) Pay(pool *Pool) error {
	test := pool.Copy()
	if err := c.payInto(test); err != nil {
		return err
	}
	pool.Energy = test.Energy
	pool.Power = test.Power
	return nil
}

// payInto performs the actual payment against the given pool.
func (c Cost) payInto(pool *Pool) error {
	if !pool.SpendEnergy(c.Energy) {
		return fmt.Errorf("insufficient energy (need %d, have %d)", c.Energy, pool.Energy)
	}

	// Domain-tagged extras are the least flexible, pay them first.
	for _, d := range carddef.AllDomains {
		if v := c.Extra[d]; v > 0 {
			if !pool.SpendPower(d, v) {
				return fmt.Errorf("insufficient %s power (need %d, have %d)", strings.ToLower(string(d)), v, pool.GetPower(d))
			}
		}
	}

	if err := spendGreedy(pool, c.Power, c.Domains); err != nil {
		return err
	}
	return spendGreedy(pool, c.AnyPower, carddef.AllDomains)
}

// spendGreedy drains amount power from the allowed domains, largest
// surplus first.
func spendGreedy(pool *Pool, amount int, allowed []carddef.Domain) error {
	for amount > 0 {
		best := carddef.Domain("")
		bestAvail := 0
		for _, d := range allowed {
			if avail := pool.GetPower(d); avail > bestAvail {
				best = d
				bestAvail = avail
			}
		}
		if bestAvail == 0 {
			return fmt.Errorf("insufficient power (need %d more)", amount)
		}
		pool.SpendPower(best, 1)
		amount--
	}
	return nil
}
