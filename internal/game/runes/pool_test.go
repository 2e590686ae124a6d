package runes

import (
	"testing"

	"github.com/riftbound/duel-server-go/internal/carddef"
)

func TestPool_AddAndSpend(t *testing.T) {
	pool := NewPool()

	pool.AddEnergy(3)
	pool.AddPower(carddef.DomainFury, 2)

	if pool.Energy != 3 {
		t.Errorf("expected 3 energy, got %d", pool.Energy)
	}
	if pool.GetPower(carddef.DomainFury) != 2 {
		t.Errorf("expected 2 fury power, got %d", pool.GetPower(carddef.DomainFury))
	}

	if !pool.SpendEnergy(2) {
		t.Error("expected to spend 2 energy")
	}
	if pool.SpendEnergy(5) {
		t.Error("expected spend of 5 energy to fail with 1 available")
	}
	if pool.Energy != 1 {
		t.Errorf("expected 1 energy after failed spend, got %d", pool.Energy)
	}

	if !pool.SpendPower(carddef.DomainFury, 2) {
		t.Error("expected to spend 2 fury power")
	}
	if pool.SpendPower(carddef.DomainFury, 1) {
		t.Error("expected spend on empty fury power to fail")
	}
}

func TestPool_NegativeAmountsIgnored(t *testing.T) {
	pool := NewPool()
	pool.AddEnergy(-5)
	pool.AddPower(carddef.DomainMind, -2)

	if pool.Energy != 0 || pool.TotalPower() != 0 {
		t.Errorf("expected empty pool, got %s", pool)
	}
}

func TestPool_Clamp(t *testing.T) {
	pool := NewPool()
	pool.Energy = -2
	pool.Power[carddef.DomainBody] = -1
	pool.Power[carddef.DomainCalm] = 3

	pool.Clamp()

	if pool.Energy != 0 {
		t.Errorf("expected clamped energy 0, got %d", pool.Energy)
	}
	if pool.GetPower(carddef.DomainBody) != 0 {
		t.Errorf("expected clamped body power 0, got %d", pool.GetPower(carddef.DomainBody))
	}
	if pool.GetPower(carddef.DomainCalm) != 3 {
		t.Errorf("expected calm power untouched, got %d", pool.GetPower(carddef.DomainCalm))
	}
}

func TestPool_CopyIsIndependent(t *testing.T) {
	pool := NewPool()
	pool.AddEnergy(1)
	pool.AddPower(carddef.DomainOrder, 2)

	cp := pool.Copy()
	cp.AddEnergy(5)
	cp.AddPower(carddef.DomainOrder, 5)

	if pool.Energy != 1 || pool.GetPower(carddef.DomainOrder) != 2 {
		t.Errorf("mutating copy changed original: %s", pool)
	}
}

func TestPool_Empty(t *testing.T) {
	pool := NewPool()
	pool.AddEnergy(4)
	pool.AddPower(carddef.DomainChaos, 1)

	pool.Empty()

	if pool.Energy != 0 || pool.TotalPower() != 0 {
		t.Errorf("expected empty pool, got %s", pool)
	}
}
