package ability

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/riftbound/duel-server-go/internal/carddef"
)

// detector scans normalized text and returns every primitive it finds.
type detector func(text string) []Effect

// detectors is the rule table. Order only affects the order effects
// apply in; detection itself is independent per primitive.
var detectors = []detector{
	detectDraw,
	detectChannel,
	detectAddEnergy,
	detectAddPower,
	detectTokens,
	detectGrantKeyword,
	detectStun,
	detectReady,
	detectMight,
	detectKill,
	detectBanish,
	detectReturn,
	detectDamage,
}

var numberWords = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
}

// parseCount turns "a", "two" or "3" into a number, defaulting to 1.
func parseCount(word string) int {
	word = strings.TrimSpace(word)
	if n, ok := numberWords[word]; ok {
		return n
	}
	if n, err := strconv.Atoi(word); err == nil {
		return n
	}
	return 1
}

// scanScope extracts friendly/enemy/here qualifiers from a matched
// clause.
func scanScope(clause string) Scope {
	return Scope{
		Friendly: strings.Contains(clause, "friendly") || strings.Contains(clause, "allied"),
		Enemy:    strings.Contains(clause, "enemy") || strings.Contains(clause, "enemies"),
		Here:     strings.Contains(clause, "here") || strings.Contains(clause, "this battlefield"),
	}
}

const countPat = `(a|an|one|two|three|four|five|\d+)`

var (
	reDraw      = regexp.MustCompile(`draws? ` + countPat + ` cards?`)
	reChannel   = regexp.MustCompile(`channels? ` + countPat + ` runes?`)
	reEnergy    = regexp.MustCompile(`(?:gains?|adds?|gets?) ` + countPat + ` energy`)
	rePower     = regexp.MustCompile(`(?:gains?|adds?) ` + countPat + ` (fury|calm|mind|body|order|chaos) power`)
	reAnyPower  = regexp.MustCompile(`(?:gains?|adds?) ` + countPat + ` power of any domain`)
	reTokens    = regexp.MustCompile(`(?:plays?|summons?|creates?) ` + countPat + ` (\d+)[- ]might tokens?( here)?`)
	reGrant     = regexp.MustCompile(`((?:up to ` + countPat + ` )?(?:target |each |all )?(?:friendly |allied |enemy )?units?(?: here)?) gains? (tank|shield|assault|legion|hidden|deflect|temporary)(?: (\d+))?( this turn)?`)
	reStun      = regexp.MustCompile(`stun (up to ` + countPat + ` )?((?:target )?(?:friendly |allied |enemy )?units?(?: here)?)`)
	reReady     = regexp.MustCompile(`ready (up to ` + countPat + ` )?((?:target )?(?:friendly |allied |enemy )?units?(?: here)?)`)
	reMight     = regexp.MustCompile(`((?:up to ` + countPat + ` )?(?:target |each |all )?(?:friendly |allied |enemy )?units?(?: here)?) (?:gets?|gains?|has) \+(\d+) might( this turn)?`)
	reKill      = regexp.MustCompile(`kill (up to ` + countPat + ` )?((?:target )?(?:friendly |allied |enemy )?units?(?: here)?)`)
	reBanish    = regexp.MustCompile(`banish (up to ` + countPat + ` )?((?:target )?(?:friendly |allied |enemy )?units?(?: here)?)`)
	reReturn    = regexp.MustCompile(`return (up to ` + countPat + ` )?((?:target )?(?:friendly |allied |enemy )?units?(?: here)?) to (?:its owner'?s |their owners'? )?hands?`)
	reDamage    = regexp.MustCompile(`deals? (\d+) damage to ((?:up to ` + countPat + ` )?(?:target |each |all )?(?:friendly |allied |enemy |enemies )?units?(?: here)?)`)
	reKillDraw  = regexp.MustCompile(`if this kills it, draws? ` + countPat + ` cards?`)
	reUpTo      = regexp.MustCompile(`up to ` + countPat)
)

func detectDraw(text string) []Effect {
	var out []Effect
	for _, m := range reDraw.FindAllStringSubmatch(text, -1) {
		// Conditional draws belong to their kill/damage rider, not to
		// the standalone draw primitive.
		if strings.Contains(text, "if this kills it, "+m[0]) {
			continue
		}
		out = append(out, Effect{Kind: EffectDraw, Amount: parseCount(m[1])})
	}
	return out
}

func detectChannel(text string) []Effect {
	var out []Effect
	for _, m := range reChannel.FindAllStringSubmatch(text, -1) {
		out = append(out, Effect{Kind: EffectChannel, Amount: parseCount(m[1])})
	}
	return out
}

func detectAddEnergy(text string) []Effect {
	var out []Effect
	for _, m := range reEnergy.FindAllStringSubmatch(text, -1) {
		out = append(out, Effect{Kind: EffectAddEnergy, Amount: parseCount(m[1])})
	}
	return out
}

func detectAddPower(text string) []Effect {
	var out []Effect
	for _, m := range rePower.FindAllStringSubmatch(text, -1) {
		out = append(out, Effect{
			Kind:   EffectAddPower,
			Amount: parseCount(m[1]),
			Domain: carddef.Domain(strings.ToUpper(m[2])),
		})
	}
	for _, m := range reAnyPower.FindAllStringSubmatch(text, -1) {
		out = append(out, Effect{Kind: EffectAddPower, Amount: parseCount(m[1]), AnyDomain: true})
	}
	return out
}

func detectTokens(text string) []Effect {
	var out []Effect
	for _, m := range reTokens.FindAllStringSubmatch(text, -1) {
		might, _ := strconv.Atoi(m[2])
		out = append(out, Effect{
			Kind:  EffectTokens,
			Count: parseCount(m[1]),
			Might: might,
			Scope: Scope{Here: m[3] != ""},
		})
	}
	return out
}

func detectGrantKeyword(text string) []Effect {
	var out []Effect
	for _, m := range reGrant.FindAllStringSubmatch(text, -1) {
		clause := m[1]
		kw := carddef.KeywordBase(capitalizeKeyword(m[3]))
		if m[4] != "" {
			kw = kw + " " + m[4]
		}
		e := Effect{
			Kind:     EffectGrantKeyword,
			Keyword:  kw,
			ThisTurn: m[5] != "",
			Scope:    scanScope(clause),
		}
		e.UpTo, e.MaxTargets = targetArity(clause)
		out = append(out, e)
	}
	return out
}

func detectStun(text string) []Effect {
	return detectUnitOp(text, reStun, EffectStun)
}

func detectReady(text string) []Effect {
	return detectUnitOp(text, reReady, EffectReady)
}

func detectBanish(text string) []Effect {
	return detectUnitOp(text, reBanish, EffectBanish)
}

func detectReturn(text string) []Effect {
	return detectUnitOp(text, reReturn, EffectReturn)
}

// detectUnitOp handles the shared shape of stun/ready/banish/return:
// an optional "up to N", then a qualified unit clause.
func detectUnitOp(text string, re *regexp.Regexp, kind EffectKind) []Effect {
	var out []Effect
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		clause := m[0]
		e := Effect{Kind: kind, Scope: scanScope(clause)}
		e.UpTo, e.MaxTargets = targetArity(clause)
		out = append(out, e)
	}
	return out
}

func detectMight(text string) []Effect {
	var out []Effect
	for _, m := range reMight.FindAllStringSubmatch(text, -1) {
		clause := m[1]
		amount, _ := strconv.Atoi(m[3])
		kind := EffectBuff
		if m[4] != "" {
			kind = EffectMightThisTurn
		}
		e := Effect{Kind: kind, Amount: amount, Scope: scanScope(clause)}
		e.UpTo, e.MaxTargets = targetArity(clause)
		out = append(out, e)
	}
	return out
}

func detectKill(text string) []Effect {
	var out []Effect
	for _, m := range reKill.FindAllStringSubmatch(text, -1) {
		clause := m[0]
		e := Effect{Kind: EffectKill, Scope: scanScope(clause)}
		e.UpTo, e.MaxTargets = targetArity(clause)
		if km := reKillDraw.FindStringSubmatch(text); km != nil {
			e.DrawOnKill = parseCount(km[1])
		}
		out = append(out, e)
	}
	return out
}

func detectDamage(text string) []Effect {
	var out []Effect
	for _, m := range reDamage.FindAllStringSubmatch(text, -1) {
		amount, _ := strconv.Atoi(m[1])
		clause := m[2]
		kind := EffectDamage
		if strings.Contains(clause, "each") || strings.Contains(clause, "all") {
			kind = EffectDamageAOE
		}
		e := Effect{Kind: kind, Amount: amount, Scope: scanScope(clause)}
		if kind == EffectDamage {
			e.UpTo, e.MaxTargets = targetArity(clause)
		}
		if km := reKillDraw.FindStringSubmatch(text); km != nil {
			e.DrawOnKill = parseCount(km[1])
		}
		out = append(out, e)
	}
	return out
}

// targetArity derives the up-to flag and target count of a clause.
// "target unit" wants exactly one target, "up to N units" wants at
// most N with zero being a legal no-op, and a bare mass clause
// ("each friendly unit") wants none.
func targetArity(clause string) (upTo bool, maxTargets int) {
	if m := reUpTo.FindStringSubmatch(clause); m != nil {
		return true, parseCount(m[1])
	}
	if strings.Contains(clause, "target ") {
		return false, 1
	}
	return false, 0
}

func capitalizeKeyword(kw string) string {
	if kw == "" {
		return kw
	}
	return strings.ToUpper(kw[:1]) + kw[1:]
}
