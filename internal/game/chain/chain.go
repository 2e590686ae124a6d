// Package chain implements the LIFO chain of pending plays and
// abilities. Items are pushed when a play is committed (costs already
// paid, legality already checked) and popped top-first when both
// players pass priority.
package chain

import (
	"errors"

	"github.com/riftbound/duel-server-go/internal/game/target"
)

// ItemKind describes what kind of pending effect an item is.
type ItemKind string

const (
	// KindPlay is a card being played from a zone.
	KindPlay ItemKind = "PLAY"
	// KindAbility is an activated or triggered ability.
	KindAbility ItemKind = "ABILITY"
)

// Item is a single pending effect on the chain. Cost and legality were
// settled when the item was committed; only targets are revalidated at
// resolution.
type Item struct {
	ID          string
	Kind        ItemKind
	Controller  int
	CardID      string // instance id of the played card or ability source
	EffectText  string
	Requirement target.Requirement
	Targets     []target.Target
	// Destination is the battlefield index a played unit or gear goes
	// to, or -1 for base.
	Destination int
	Description string
}

// Chain is the LIFO stack of pending items.
type Chain struct {
	items []Item
}

// New creates an empty chain.
func New() *Chain {
	return &Chain{items: make([]Item, 0, 8)}
}

// Push adds an item on top of the chain.
func (c *Chain) Push(item Item) {
	c.items = append(c.items, item)
}

// Pop removes and returns the top item.
func (c *Chain) Pop() (Item, error) {
	if len(c.items) == 0 {
		return Item{}, errors.New("chain empty")
	}
	idx := len(c.items) - 1
	item := c.items[idx]
	c.items = c.items[:idx]
	return item, nil
}

// Peek returns the top item without removing it.
func (c *Chain) Peek() (*Item, bool) {
	if len(c.items) == 0 {
		return nil, false
	}
	return &c.items[len(c.items)-1], true
}

// SetTopTargets replaces the declared targets of the top item.
func (c *Chain) SetTopTargets(targets []target.Target) error {
	top, ok := c.Peek()
	if !ok {
		return errors.New("chain empty")
	}
	if err := top.Requirement.Validate(targets); err != nil {
		return err
	}
	top.Targets = targets
	return nil
}

// IsEmpty reports whether the chain has no pending items.
func (c *Chain) IsEmpty() bool { return len(c.items) == 0 }

// Len returns the number of pending items.
func (c *Chain) Len() int { return len(c.items) }

// List returns a copy of all items, bottom first.
func (c *Chain) List() []Item {
	cpy := make([]Item, len(c.items))
	copy(cpy, c.items)
	return cpy
}

// Copy creates a deep copy of the chain.
func (c *Chain) Copy() *Chain {
	cp := &Chain{items: make([]Item, len(c.items))}
	for i, item := range c.items {
		item.Targets = append([]target.Target(nil), item.Targets...)
		cp.items[i] = item
	}
	return cp
}
