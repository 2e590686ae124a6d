// Package game implements the duel rules engine: authoritative state,
// turn structure, priority and chain resolution, combat, scoring, and
// the action API external callers drive it with.
package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/riftbound/duel-server-go/internal/carddef"
	"github.com/riftbound/duel-server-go/internal/game/chain"
	"github.com/riftbound/duel-server-go/internal/game/runes"
)

// VictoryThreshold is the score that ends the game.
const VictoryThreshold = 8

// NumBattlefields is fixed for the duel mode: two contested
// battlefields, one base per player.
const NumBattlefields = 2

// NoPlayer marks an empty controller/contester slot.
const NoPlayer = -1

// Zone names a card pile. Unit target references carry the zone they
// were declared in so resolution can detect the unit has moved.
type Zone string

const (
	ZoneHand        Zone = "HAND"
	ZoneDeck        Zone = "DECK"
	ZoneTrash       Zone = "TRASH"
	ZoneBanishment  Zone = "BANISHMENT"
	ZoneBase        Zone = "BASE"
	ZoneBattlefield Zone = "BATTLEFIELD"
	ZoneChampion    Zone = "CHAMPION"
	ZoneFaceDown    Zone = "FACE_DOWN"
)

// Phase is the turn phase.
type Phase int

const (
	PhaseMulligan Phase = iota
	PhaseAwaken
	PhaseScoring
	PhaseChannel
	PhaseDraw
	PhaseAction
	PhaseEnding
	PhaseGameOver
)

var phaseNames = map[Phase]string{
	PhaseMulligan: "MULLIGAN",
	PhaseAwaken:   "AWAKEN",
	PhaseScoring:  "SCORING",
	PhaseChannel:  "CHANNEL",
	PhaseDraw:     "DRAW",
	PhaseAction:   "ACTION",
	PhaseEnding:   "ENDING",
	PhaseGameOver: "GAME_OVER",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// WindowType is the active reactive window.
type WindowType int

const (
	WindowNone WindowType = iota
	WindowShowdown
	WindowCombat
)

func (w WindowType) String() string {
	switch w {
	case WindowShowdown:
		return "SHOWDOWN"
	case WindowCombat:
		return "COMBAT"
	default:
		return "NONE"
	}
}

// CombatStep is the step of an open combat window.
type CombatStep int

const (
	CombatStepShowdown CombatStep = iota
	CombatStepDamage
	CombatStepResolution
)

func (s CombatStep) String() string {
	switch s {
	case CombatStepDamage:
		return "DAMAGE"
	case CombatStepResolution:
		return "RESOLUTION"
	default:
		return "SHOWDOWN"
	}
}

// CardInstance is a card's in-play identity: the static definition
// plus every mutable field the rules touch. An instance lives in
// exactly one zone at a time and is voided when it leaves play.
type CardInstance struct {
	ID           string
	Def          *carddef.Card
	Exhausted    bool
	Damage       int
	PermBuff     int
	TurnBonus    int
	Stunned      bool
	Keywords     []string // permanently granted
	TurnKeywords []string // granted until end of turn
	Token        bool
}

// EffectiveMight is printed might plus permanent and this-turn bonuses,
// floored at zero.
func (c *CardInstance) EffectiveMight() int {
	m := c.Def.Might + c.PermBuff + c.TurnBonus
	if m < 0 {
		return 0
	}
	return m
}

// HasKeyword checks printed and granted keywords.
func (c *CardInstance) HasKeyword(kw string) bool {
	if c.Def.HasKeyword(kw) {
		return true
	}
	for _, k := range c.Keywords {
		if carddef.KeywordBase(k) == kw {
			return true
		}
	}
	for _, k := range c.TurnKeywords {
		if carddef.KeywordBase(k) == kw {
			return true
		}
	}
	return false
}

// KeywordValue returns the largest value of a numeric keyword across
// printed and granted copies ("Assault 2").
func (c *CardInstance) KeywordValue(kw string) int {
	best := c.Def.KeywordValue(kw)
	for _, lists := range [][]string{c.Keywords, c.TurnKeywords} {
		for _, k := range lists {
			if carddef.KeywordBase(k) != kw {
				continue
			}
			var n int
			if _, err := fmt.Sscanf(k, kw+" %d", &n); err == nil && n > best {
				best = n
			}
		}
	}
	return best
}

// Copy deep-copies the instance.
func (c *CardInstance) Copy() *CardInstance {
	cp := *c
	cp.Keywords = append([]string(nil), c.Keywords...)
	cp.TurnKeywords = append([]string(nil), c.TurnKeywords...)
	return &cp
}

// RuneInstance is a resource card in the rune deck or in play.
type RuneInstance struct {
	ID        string
	Def       *carddef.Card
	Exhausted bool
}

// Domain is the power domain the rune provides when recycled.
func (r *RuneInstance) Domain() carddef.Domain {
	if len(r.Def.Domains) > 0 {
		return r.Def.Domains[0]
	}
	return carddef.DomainFury
}

// Copy copies the rune instance.
func (r *RuneInstance) Copy() *RuneInstance {
	cp := *r
	return &cp
}

// PlayerState is everything one player owns.
type PlayerState struct {
	Name     string
	Legend   *CardInstance
	Champion *CardInstance // champion-in-waiting

	Hand       []*CardInstance
	Deck       []*CardInstance
	Trash      []*CardInstance
	Banishment []*CardInstance
	BaseUnits  []*CardInstance
	BaseGear   []*CardInstance
	// Staged holds cards committed to the chain but not yet resolved.
	Staged []*CardInstance

	RuneDeck    []*RuneInstance
	RunesInPlay []*RuneInstance
	Pool        *runes.Pool

	Score int

	// Per-turn counters, reset in the ending phase.
	CardsPlayedThisTurn int
	BattlefieldsScored  map[int]bool

	MulliganConfirmed bool
	ChanneledOnce     bool
}

// ScoredAllOthers reports whether the player scored every battlefield
// except idx this turn. Gates the Final Point rule.
func (p *PlayerState) ScoredAllOthers(idx int) bool {
	for i := 0; i < NumBattlefields; i++ {
		if i != idx && !p.BattlefieldsScored[i] {
			return false
		}
	}
	return true
}

// Copy deep-copies the player state.
func (p *PlayerState) Copy() *PlayerState {
	cp := &PlayerState{
		Name:                p.Name,
		Score:               p.Score,
		CardsPlayedThisTurn: p.CardsPlayedThisTurn,
		MulliganConfirmed:   p.MulliganConfirmed,
		ChanneledOnce:       p.ChanneledOnce,
		Pool:                p.Pool.Copy(),
		BattlefieldsScored:  make(map[int]bool, len(p.BattlefieldsScored)),
	}
	if p.Legend != nil {
		cp.Legend = p.Legend.Copy()
	}
	if p.Champion != nil {
		cp.Champion = p.Champion.Copy()
	}
	cp.Hand = copyCards(p.Hand)
	cp.Deck = copyCards(p.Deck)
	cp.Trash = copyCards(p.Trash)
	cp.Banishment = copyCards(p.Banishment)
	cp.BaseUnits = copyCards(p.BaseUnits)
	cp.BaseGear = copyCards(p.BaseGear)
	cp.Staged = copyCards(p.Staged)
	cp.RuneDeck = copyRunes(p.RuneDeck)
	cp.RunesInPlay = copyRunes(p.RunesInPlay)
	for k, v := range p.BattlefieldsScored {
		cp.BattlefieldsScored[k] = v
	}
	return cp
}

// BattlefieldState is one contested location.
type BattlefieldState struct {
	Card          *carddef.Card
	Controller    int // NoPlayer when uncontrolled
	Contester     int // NoPlayer when uncontested
	FaceDown      *CardInstance
	FaceDownOwner int
	Units         [2][]*CardInstance
	Gear          [2][]*CardInstance
	// PendingWindow marks a contest that still needs its reactive
	// window opened once the chain empties.
	PendingWindow bool
}

// Copy deep-copies the battlefield.
func (b *BattlefieldState) Copy() *BattlefieldState {
	cp := &BattlefieldState{
		Card:          b.Card,
		Controller:    b.Controller,
		Contester:     b.Contester,
		FaceDownOwner: b.FaceDownOwner,
		PendingWindow: b.PendingWindow,
	}
	if b.FaceDown != nil {
		cp.FaceDown = b.FaceDown.Copy()
	}
	for i := 0; i < 2; i++ {
		cp.Units[i] = copyCards(b.Units[i])
		cp.Gear[i] = copyCards(b.Gear[i])
	}
	return cp
}

// LogEntry is one line of the running game log.
type LogEntry struct {
	Turn int
	Text string
	Time time.Time
}

// State is the root aggregate of one duel. It is owned exclusively by
// the engine; external callers read redacted projections only.
type State struct {
	ID             string
	Phase          Phase
	Turn           int
	TurnPlayer     int
	StartingPlayer int
	Priority       int
	// Closed marks the CLOSED resolution state: a chain item or a
	// reactive window is awaiting passes.
	Closed     bool
	Window     WindowType
	WindowStep CombatStep
	// WindowBattlefield is the battlefield the open window belongs to.
	WindowBattlefield int
	PassCount         int

	Chain        *chain.Chain
	Players      [2]*PlayerState
	Battlefields [NumBattlefields]*BattlefieldState

	Log    []LogEntry
	Over   bool
	Winner int

	// Unsupported collects interpretation-gap diagnostics.
	Unsupported []string

	// Deterministic shuffle state: every shuffle derives its generator
	// from the seed and a counter, so clones replay identically.
	Seed     int64
	Shuffles int

	nextInstance int
}

// Opponent returns the other player index.
func Opponent(p int) int { return 1 - p }

// Clone deep-copies the whole state tree. Every action works on a
// clone so observers never see a half-applied mutation and the AI can
// simulate freely.
func (s *State) Clone() *State {
	cp := &State{
		ID:                s.ID,
		Phase:             s.Phase,
		Turn:              s.Turn,
		TurnPlayer:        s.TurnPlayer,
		StartingPlayer:    s.StartingPlayer,
		Priority:          s.Priority,
		Closed:            s.Closed,
		Window:            s.Window,
		WindowStep:        s.WindowStep,
		WindowBattlefield: s.WindowBattlefield,
		PassCount:         s.PassCount,
		Chain:             s.Chain.Copy(),
		Over:              s.Over,
		Winner:            s.Winner,
		Seed:              s.Seed,
		Shuffles:          s.Shuffles,
		nextInstance:      s.nextInstance,
	}
	for i := 0; i < 2; i++ {
		cp.Players[i] = s.Players[i].Copy()
	}
	for i := 0; i < NumBattlefields; i++ {
		cp.Battlefields[i] = s.Battlefields[i].Copy()
	}
	cp.Log = append([]LogEntry(nil), s.Log...)
	cp.Unsupported = append([]string(nil), s.Unsupported...)
	return cp
}

// logf appends a line to the running game log.
func (s *State) logf(format string, args ...interface{}) {
	s.Log = append(s.Log, LogEntry{
		Turn: s.Turn,
		Text: fmt.Sprintf(format, args...),
		Time: time.Now(),
	})
}

// rng returns the generator for the next shuffle and advances the
// shuffle counter.
func (s *State) rng() *rand.Rand {
	r := rand.New(rand.NewSource(s.Seed + int64(s.Shuffles)))
	s.Shuffles++
	return r
}

// newInstanceID mints an instance id unique within this duel.
func (s *State) newInstanceID(prefix string) string {
	s.nextInstance++
	return fmt.Sprintf("%s-%d", prefix, s.nextInstance)
}

func copyCards(cards []*CardInstance) []*CardInstance {
	if cards == nil {
		return nil
	}
	out := make([]*CardInstance, len(cards))
	for i, c := range cards {
		out[i] = c.Copy()
	}
	return out
}

func copyRunes(rs []*RuneInstance) []*RuneInstance {
	if rs == nil {
		return nil
	}
	out := make([]*RuneInstance, len(rs))
	for i, r := range rs {
		out[i] = r.Copy()
	}
	return out
}

// removeCard removes an instance from a pile by id.
func removeCard(pile []*CardInstance, id string) ([]*CardInstance, *CardInstance) {
	for i, c := range pile {
		if c.ID == id {
			return append(pile[:i:i], pile[i+1:]...), c
		}
	}
	return pile, nil
}

// removeRune removes a rune from a pile by id.
func removeRune(pile []*RuneInstance, id string) ([]*RuneInstance, *RuneInstance) {
	for i, r := range pile {
		if r.ID == id {
			return append(pile[:i:i], pile[i+1:]...), r
		}
	}
	return pile, nil
}
