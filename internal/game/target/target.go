// Package target defines the target references carried by chain items
// and passed to effect resolution. Targets are declared when a play is
// committed and revalidated when it resolves; a reference records
// enough identity to detect that its object has moved or died in
// between.
package target

import (
	"fmt"
	"strings"
)

// Kind discriminates the target variants.
type Kind string

const (
	// KindNone marks the absence of a target.
	KindNone Kind = "NONE"
	// KindUnit references a unit by owner, instance id and zone.
	KindUnit Kind = "UNIT"
	// KindBattlefield references a battlefield by index.
	KindBattlefield Kind = "BATTLEFIELD"
)

// Target is a tagged variant over unit, battlefield, or nothing.
type Target struct {
	Kind Kind

	// Unit reference fields. Zone is the zone the unit occupied when
	// the target was declared; resolution rechecks it.
	Owner  int
	UnitID string
	Zone   string

	// Battlefield reference field.
	Battlefield int
}

// None is the absent target.
func None() Target { return Target{Kind: KindNone} }

// Unit builds a unit target reference.
func Unit(owner int, unitID, zone string) Target {
	return Target{Kind: KindUnit, Owner: owner, UnitID: unitID, Zone: zone}
}

// Battlefield builds a battlefield target reference.
func Battlefield(index int) Target {
	return Target{Kind: KindBattlefield, Battlefield: index}
}

// IsNone reports whether the target is absent.
func (t Target) IsNone() bool { return t.Kind == KindNone || t.Kind == "" }

// String renders the target for log lines.
func (t Target) String() string {
	switch t.Kind {
	case KindUnit:
		return fmt.Sprintf("unit %s (player %d, %s)", t.UnitID, t.Owner, strings.ToLower(t.Zone))
	case KindBattlefield:
		return fmt.Sprintf("battlefield %d", t.Battlefield)
	default:
		return "none"
	}
}

// Requirement describes what targets a play or ability needs.
type Requirement struct {
	Kind Kind
	// Min and Max bound the number of targets. "Up to N" effects use
	// Min 0: resolving with zero surviving targets is a legal no-op.
	Min int
	Max int
	// EnemyOnly and FriendlyOnly restrict unit targets relative to the
	// chain item's controller.
	EnemyOnly    bool
	FriendlyOnly bool
	Description  string
}

// NoTargets is the requirement of an untargeted play.
var NoTargets = Requirement{Kind: KindNone}

// Wanted reports whether the requirement asks for any targets at all.
func (r Requirement) Wanted() bool {
	return r.Kind != KindNone && r.Kind != "" && r.Max > 0
}

// Validate checks a declared selection against the requirement. It
// only checks arity; zone and legality checks need game state and
// happen in the engine.
func (r Requirement) Validate(selected []Target) error {
	if !r.Wanted() {
		if len(selected) > 0 {
			return fmt.Errorf("no targets expected, got %d", len(selected))
		}
		return nil
	}
	if len(selected) < r.Min {
		return fmt.Errorf("not enough targets: need at least %d, got %d", r.Min, len(selected))
	}
	if len(selected) > r.Max {
		return fmt.Errorf("too many targets: need at most %d, got %d", r.Max, len(selected))
	}
	for _, t := range selected {
		if t.Kind != r.Kind {
			return fmt.Errorf("target %s does not match required kind %s", t, r.Kind)
		}
	}
	return nil
}
