// Package carddef defines the card definition schema consumed by the
// duel engine. Definitions are produced by an external card database;
// this package models their shape and decodes them, it does not
// validate completeness of a card set.
package carddef

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is the card type tag.
type Kind string

const (
	KindUnit        Kind = "UNIT"
	KindSpell       Kind = "SPELL"
	KindGear        Kind = "GEAR"
	KindRune        Kind = "RUNE"
	KindBattlefield Kind = "BATTLEFIELD"
	KindLegend      Kind = "LEGEND"
)

// Domain is one of the six power domains.
type Domain string

const (
	DomainFury  Domain = "FURY"
	DomainCalm  Domain = "CALM"
	DomainMind  Domain = "MIND"
	DomainBody  Domain = "BODY"
	DomainOrder Domain = "ORDER"
	DomainChaos Domain = "CHAOS"
)

// AllDomains lists every domain in canonical order.
var AllDomains = []Domain{DomainFury, DomainCalm, DomainMind, DomainBody, DomainOrder, DomainChaos}

// Ability is the semi-structured ability block on a card.
type Ability struct {
	Trigger  string   // e.g. "Play", "Action", "Reaction", "Hold"
	Effect   string   // free-text effect, interpreted at resolution time
	Keywords []string // e.g. "Tank", "Assault 2", "Hidden"
}

// Card is a single card definition. Only the fields relevant to the
// card's Kind are meaningful: Might and PowerIcons apply to units,
// Cost to anything playable, Domains to everything but battlefields.
type Card struct {
	ID         string
	Name       string
	Kind       Kind
	Domains    []Domain
	Cost       int
	Might      int
	PowerIcons int
	Ability    Ability
	Tags       []string
}

// IsUnit reports whether the card is a unit (champion units included).
func (c *Card) IsUnit() bool { return c.Kind == KindUnit }

// HasKeyword reports whether the ability block carries the keyword,
// ignoring any numeric suffix ("Assault 2" matches "Assault").
func (c *Card) HasKeyword(kw string) bool {
	for _, k := range c.Ability.Keywords {
		if KeywordBase(k) == kw {
			return true
		}
	}
	return false
}

// KeywordValue returns the numeric suffix of a keyword ("Assault 2" ->
// 2) or 0 when absent.
func (c *Card) KeywordValue(kw string) int {
	for _, k := range c.Ability.Keywords {
		if KeywordBase(k) != kw {
			continue
		}
		var n int
		if _, err := fmt.Sscanf(k, kw+" %d", &n); err == nil {
			return n
		}
	}
	return 0
}

// KeywordBase strips a trailing numeric value from a keyword.
func KeywordBase(kw string) string {
	fields := strings.Fields(kw)
	if len(fields) > 1 {
		last := fields[len(fields)-1]
		digits := true
		for _, r := range last {
			if r < '0' || r > '9' {
				digits = false
				break
			}
		}
		if digits {
			return strings.Join(fields[:len(fields)-1], " ")
		}
	}
	return kw
}

// ParseDomains parses the comma-separated domain string used by the
// card database ("Fury, Mind"). Unknown names are skipped.
func ParseDomains(s string) []Domain {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []Domain
	for _, part := range strings.Split(s, ",") {
		d := Domain(strings.ToUpper(strings.TrimSpace(part)))
		for _, known := range AllDomains {
			if d == known {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// ParseKind maps a card database type line ("unit - yordle") to a Kind.
func ParseKind(typeLine string) (Kind, error) {
	base := strings.ToUpper(strings.TrimSpace(strings.SplitN(typeLine, "-", 2)[0]))
	switch Kind(base) {
	case KindUnit, KindSpell, KindGear, KindRune, KindBattlefield, KindLegend:
		return Kind(base), nil
	}
	return "", fmt.Errorf("unknown card type %q", typeLine)
}

// rawCard mirrors the card database JSON shape.
type rawCard struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Domain   string `json:"domain"`
	TypeLine string `json:"type_line"`
	Stats    struct {
		Energy *float64        `json:"energy"`
		Might  *float64        `json:"might"`
		Power  json.RawMessage `json:"power"`
	} `json:"stats"`
	RulesText struct {
		Raw      string   `json:"raw"`
		Trigger  string   `json:"trigger"`
		Keywords []string `json:"keywords"`
	} `json:"rules_text"`
	Tags []string `json:"tags"`
}

// DecodeCards decodes a card database JSON array into definitions.
// Cards with an unrecognized type line are skipped, not errors: the
// loader owns validation, the engine only consumes what it understands.
func DecodeCards(data []byte) ([]Card, error) {
	var raws []rawCard
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode card data: %w", err)
	}
	cards := make([]Card, 0, len(raws))
	for _, r := range raws {
		kind, err := ParseKind(r.TypeLine)
		if err != nil {
			continue
		}
		c := Card{
			ID:      r.ID,
			Name:    r.Name,
			Kind:    kind,
			Domains: ParseDomains(r.Domain),
			Ability: Ability{
				Trigger:  r.RulesText.Trigger,
				Effect:   r.RulesText.Raw,
				Keywords: r.RulesText.Keywords,
			},
			Tags: r.Tags,
		}
		if r.Stats.Energy != nil {
			c.Cost = int(*r.Stats.Energy)
		}
		if r.Stats.Might != nil {
			c.Might = int(*r.Stats.Might)
		}
		c.PowerIcons = decodePowerIcons(r.Stats.Power)
		cards = append(cards, c)
	}
	return cards, nil
}

// DecodeSet decodes a normalized card set as written by the import
// tool. Unlike DecodeCards it expects the native Card shape.
func DecodeSet(data []byte) ([]Card, error) {
	var cards []Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("decode card set: %w", err)
	}
	return cards, nil
}

// decodePowerIcons handles both encodings the card database uses for
// power icons: a number, or a string of repeated "C" glyphs.
func decodePowerIcons(raw json.RawMessage) int {
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.Count(strings.ToUpper(s), "C")
	}
	return 0
}
