package chain

import (
	"testing"

	"github.com/riftbound/duel-server-go/internal/game/target"
)

func TestChainLIFO(t *testing.T) {
	c := New()

	c.Push(Item{ID: "first", Controller: 0, Description: "First Play"})
	c.Push(Item{ID: "second", Controller: 1, Description: "Reaction"})

	item, err := c.Pop()
	if err != nil {
		t.Fatalf("unexpected error popping top: %v", err)
	}
	if item.ID != "second" {
		t.Fatalf("expected LIFO order (second), got %s", item.ID)
	}

	item, err = c.Pop()
	if err != nil {
		t.Fatalf("unexpected error popping remaining item: %v", err)
	}
	if item.ID != "first" {
		t.Fatalf("expected remaining item to be first, got %s", item.ID)
	}

	if !c.IsEmpty() {
		t.Fatal("expected chain to be empty")
	}
	if _, err := c.Pop(); err == nil {
		t.Fatal("expected error popping empty chain")
	}
}

func TestChainSetTopTargets(t *testing.T) {
	c := New()
	c.Push(Item{
		ID:          "bottom",
		Requirement: target.NoTargets,
	})
	c.Push(Item{
		ID:          "top",
		Requirement: target.Requirement{Kind: target.KindUnit, Min: 1, Max: 1},
	})

	sel := []target.Target{target.Unit(1, "u1", "BATTLEFIELD")}
	if err := c.SetTopTargets(sel); err != nil {
		t.Fatalf("set targets failed: %v", err)
	}

	top, ok := c.Peek()
	if !ok {
		t.Fatal("expected top item")
	}
	if len(top.Targets) != 1 || top.Targets[0].UnitID != "u1" {
		t.Fatalf("targets not applied: %+v", top.Targets)
	}

	// Arity violations are rejected.
	if err := c.SetTopTargets(nil); err == nil {
		t.Fatal("expected error: requirement needs 1 target")
	}
	two := []target.Target{target.Unit(1, "u1", "BATTLEFIELD"), target.Unit(1, "u2", "BATTLEFIELD")}
	if err := c.SetTopTargets(two); err == nil {
		t.Fatal("expected error: requirement allows at most 1 target")
	}
}

func TestChainUpToZeroTargetsLegal(t *testing.T) {
	c := New()
	c.Push(Item{
		ID:          "upto",
		Requirement: target.Requirement{Kind: target.KindUnit, Min: 0, Max: 2},
	})

	if err := c.SetTopTargets(nil); err != nil {
		t.Fatalf("up-to requirement must accept zero targets: %v", err)
	}
}

func TestChainCopyIsIndependent(t *testing.T) {
	c := New()
	c.Push(Item{ID: "a", Targets: []target.Target{target.Battlefield(0)}})

	cp := c.Copy()
	cp.Push(Item{ID: "b"})
	top, _ := cp.Peek()
	top.Targets = append(top.Targets, target.Battlefield(1))

	if c.Len() != 1 {
		t.Fatalf("copy mutation changed original length: %d", c.Len())
	}
	orig, _ := c.Peek()
	if len(orig.Targets) != 1 {
		t.Fatalf("copy mutation changed original targets: %+v", orig.Targets)
	}
}
