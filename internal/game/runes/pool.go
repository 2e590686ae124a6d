// Package runes implements the duel's resource system: the energy and
// power pool, cost specifications, payment, and the auto-pay planner
// that decides which runes to exhaust or recycle to generate a cost.
package runes

import (
	"fmt"
	"strings"

	"github.com/riftbound/duel-server-go/internal/carddef"
)

// Pool holds a player's floating resources: an energy counter and one
// power counter per domain. Pools are owned by the engine and only
// touched inside an action, so there is no internal locking.
type Pool struct {
	Energy int
	Power  map[carddef.Domain]int
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{Power: make(map[carddef.Domain]int)}
}

// AddEnergy adds energy to the pool.
func (p *Pool) AddEnergy(amount int) {
	if amount <= 0 {
		return
	}
	p.Energy += amount
}

// AddPower adds power of a single domain to the pool.
func (p *Pool) AddPower(domain carddef.Domain, amount int) {
	if amount <= 0 {
		return
	}
	if p.Power == nil {
		p.Power = make(map[carddef.Domain]int)
	}
	p.Power[domain] += amount
}

// GetPower returns the power available for a domain.
func (p *Pool) GetPower(domain carddef.Domain) int {
	return p.Power[domain]
}

// TotalPower returns the power available across all domains.
func (p *Pool) TotalPower() int {
	total := 0
	for _, v := range p.Power {
		total += v
	}
	return total
}

// SpendEnergy removes energy, failing without mutation on shortfall.
func (p *Pool) SpendEnergy(amount int) bool {
	if amount < 0 || p.Energy < amount {
		return false
	}
	p.Energy -= amount
	return true
}

// SpendPower removes power of one domain, failing without mutation on
// shortfall.
func (p *Pool) SpendPower(domain carddef.Domain, amount int) bool {
	if amount < 0 || p.Power[domain] < amount {
		return false
	}
	p.Power[domain] -= amount
	return true
}

// Empty clears the pool. Called at end of the draw phase and at turn
// end.
func (p *Pool) Empty() {
	p.Energy = 0
	for d := range p.Power {
		delete(p.Power, d)
	}
}

// Clamp resets any negative counter to zero. Part of the state-based
// sweep; a correct payment never drives a counter negative, but card
// effects are interpreted from text and get the same safety net.
func (p *Pool) Clamp() {
	if p.Energy < 0 {
		p.Energy = 0
	}
	for d, v := range p.Power {
		if v < 0 {
			p.Power[d] = 0
		}
	}
}

// Copy creates a deep copy of the pool.
func (p *Pool) Copy() *Pool {
	cp := &Pool{Energy: p.Energy, Power: make(map[carddef.Domain]int, len(p.Power))}
	for d, v := range p.Power {
		cp.Power[d] = v
	}
	return cp
}

// String renders the pool for log lines, domains in canonical order.
func (p *Pool) String() string {
	parts := []string{fmt.Sprintf("%d energy", p.Energy)}
	for _, d := range carddef.AllDomains {
		if v := p.Power[d]; v > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", v, strings.ToLower(string(d))))
		}
	}
	return strings.Join(parts, ", ")
}
