package runes

import (
	"testing"

	"github.com/riftbound/duel-server-go/internal/carddef"
)

func TestCost_CanAffordDoesNotMutate(t *testing.T) {
	pool := NewPool()
	pool.AddEnergy(2)
	pool.AddPower(carddef.DomainFury, 1)

	cost := Cost{Energy: 2, Power: 1, Domains: []carddef.Domain{carddef.DomainFury}}

	if !cost.CanAfford(pool) {
		t.Fatal("expected cost to be affordable")
	}
	if pool.Energy != 2 || pool.GetPower(carddef.DomainFury) != 1 {
		t.Fatalf("CanAfford mutated pool: %s", pool)
	}
}

func TestCost_PayCommits(t *testing.T) {
	pool := NewPool()
	pool.AddEnergy(3)
	pool.AddPower(carddef.DomainMind, 2)

	cost := Cost{Energy: 2, Power: 1, Domains: []carddef.Domain{carddef.DomainMind}}
	if err := cost.Pay(pool); err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if pool.Energy != 1 {
		t.Errorf("expected 1 energy left, got %d", pool.Energy)
	}
	if pool.GetPower(carddef.DomainMind) != 1 {
		t.Errorf("expected 1 mind power left, got %d", pool.GetPower(carddef.DomainMind))
	}
}

func TestCost_PayFailureLeavesPoolUntouched(t *testing.T) {
	pool := NewPool()
	pool.AddEnergy(1)
	pool.AddPower(carddef.DomainMind, 3)

	cost := Cost{Energy: 1, Power: 2, Domains: []carddef.Domain{carddef.DomainFury}}
	if err := cost.Pay(pool); err == nil {
		t.Fatal("expected pay to fail: no fury power available")
	}
	if pool.Energy != 1 || pool.GetPower(carddef.DomainMind) != 3 {
		t.Fatalf("failed pay mutated pool: %s", pool)
	}
}

func TestCost_GreedySpendsLargestSurplusFirst(t *testing.T) {
	pool := NewPool()
	pool.AddPower(carddef.DomainFury, 1)
	pool.AddPower(carddef.DomainCalm, 3)

	cost := Cost{Power: 2, Domains: []carddef.Domain{carddef.DomainFury, carddef.DomainCalm}}
	if err := cost.Pay(pool); err != nil {
		t.Fatalf("pay failed: %v", err)
	}

	// Calm holds the surplus; fury must be untouched.
	if pool.GetPower(carddef.DomainFury) != 1 {
		t.Errorf("expected fury untouched, got %d", pool.GetPower(carddef.DomainFury))
	}
	if pool.GetPower(carddef.DomainCalm) != 1 {
		t.Errorf("expected 1 calm left, got %d", pool.GetPower(carddef.DomainCalm))
	}
}

func TestCost_ExtraDomainTaggedPower(t *testing.T) {
	pool := NewPool()
	pool.AddPower(carddef.DomainBody, 1)
	pool.AddPower(carddef.DomainOrder, 2)

	cost := Cost{
		Power:   1,
		Domains: []carddef.Domain{carddef.DomainBody, carddef.DomainOrder},
		Extra:   map[carddef.Domain]int{carddef.DomainBody: 1},
	}

	if err := cost.Pay(pool); err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	// The tagged body requirement must be paid from body even though
	// order held the surplus for the base amount.
	if pool.GetPower(carddef.DomainBody) != 0 {
		t.Errorf("expected body spent on tagged requirement, got %d", pool.GetPower(carddef.DomainBody))
	}
	if pool.GetPower(carddef.DomainOrder) != 1 {
		t.Errorf("expected 1 order left, got %d", pool.GetPower(carddef.DomainOrder))
	}
}

func TestCost_AnyPowerUsesAllDomains(t *testing.T) {
	pool := NewPool()
	pool.AddPower(carddef.DomainChaos, 1)

	cost := Cost{AnyPower: 1}
	if !cost.CanAfford(pool) {
		t.Fatal("expected any-domain power to be payable from chaos")
	}
	if err := cost.Pay(pool); err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if pool.TotalPower() != 0 {
		t.Errorf("expected empty pool, got %s", pool)
	}
}

func TestCost_IsFree(t *testing.T) {
	if !(Cost{}).IsFree() {
		t.Error("zero cost should be free")
	}
	if (Cost{Energy: 1}).IsFree() {
		t.Error("energy cost should not be free")
	}
	if (Cost{Extra: map[carddef.Domain]int{carddef.DomainFury: 1}}).IsFree() {
		t.Error("tagged power cost should not be free")
	}
}
