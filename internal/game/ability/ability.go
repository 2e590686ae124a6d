// Package ability interprets the semi-structured effect text on cards.
// It is a pattern-driven primitive dispatcher, not a parser: each
// primitive effect is detected independently by its own pattern, and
// text that matches nothing is reported as unsupported rather than
// guessed at. The engine applies the returned primitives to state.
package ability

import (
	"strings"

	"github.com/riftbound/duel-server-go/internal/carddef"
)

// EffectKind identifies a primitive state mutation.
type EffectKind string

const (
	EffectDraw          EffectKind = "DRAW"
	EffectChannel       EffectKind = "CHANNEL"
	EffectAddEnergy     EffectKind = "ADD_ENERGY"
	EffectAddPower      EffectKind = "ADD_POWER"
	EffectTokens        EffectKind = "TOKENS"
	EffectGrantKeyword  EffectKind = "GRANT_KEYWORD"
	EffectStun          EffectKind = "STUN"
	EffectReady         EffectKind = "READY"
	EffectBuff          EffectKind = "BUFF"
	EffectMightThisTurn EffectKind = "MIGHT_THIS_TURN"
	EffectKill          EffectKind = "KILL"
	EffectBanish        EffectKind = "BANISH"
	EffectReturn        EffectKind = "RETURN"
	EffectDamage        EffectKind = "DAMAGE"
	EffectDamageAOE     EffectKind = "DAMAGE_AOE"
)

// Scope narrows the implicit target set of a mass effect and restricts
// legal declared targets of a targeted one.
type Scope struct {
	Friendly bool // "friendly"/"allied"
	Enemy    bool // "enemy"
	Here     bool // "here"/"at this battlefield"
}

// Effect is one detected primitive. Fields are meaningful per Kind:
// Amount carries the N of draw/channel/energy/damage/buff effects,
// Count and Might describe tokens, Keyword names a granted keyword.
type Effect struct {
	Kind     EffectKind
	Amount   int
	Count    int
	Might    int
	Domain   carddef.Domain
	AnyDomain bool
	Keyword  string
	ThisTurn bool
	UpTo     bool
	MaxTargets int
	Scope    Scope
	// DrawOnKill is the conditional "if this kills it, draw N" rider
	// on kill and damage effects.
	DrawOnKill int
}

// Targeted reports whether the primitive consumes declared targets
// (as opposed to inferring an implicit mass-target set).
func (e Effect) Targeted() bool {
	switch e.Kind {
	case EffectStun, EffectReady, EffectBuff, EffectMightThisTurn,
		EffectKill, EffectBanish, EffectReturn, EffectDamage:
		return true
	case EffectGrantKeyword:
		// "units here gain X" is a mass grant; "target unit gains X"
		// is targeted.
		return e.MaxTargets > 0
	}
	return false
}

// Result is the interpretation of one ability text.
type Result struct {
	Effects []Effect
	// Unsupported carries the original text when no primitive matched
	// a non-empty effect. The engine logs it and applies nothing;
	// under-automation has to stay visible.
	Unsupported string
}

// HasEffects reports whether any primitive was detected.
func (r Result) HasEffects() bool { return len(r.Effects) > 0 }

// Interpret runs every pattern detector over the normalized text and
// collects all primitives that fire. Multiple primitives may come from
// a single ability.
func Interpret(text string) Result {
	normalized := normalize(text)
	if normalized == "" {
		return Result{}
	}

	var out Result
	for _, d := range detectors {
		out.Effects = append(out.Effects, d(normalized)...)
	}
	if len(out.Effects) == 0 {
		out.Unsupported = strings.TrimSpace(text)
	}
	return out
}

// normalize lowercases the text and strips the bracket markup the
// card database uses around keywords.
func normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.ReplaceAll(s, "[", "")
	s = strings.ReplaceAll(s, "]", "")
	return s
}
