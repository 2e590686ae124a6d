package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/riftbound/duel-server-go/internal/carddef"
	"github.com/riftbound/duel-server-go/internal/game/ability"
	"github.com/riftbound/duel-server-go/internal/game/chain"
	"github.com/riftbound/duel-server-go/internal/game/runes"
	"github.com/riftbound/duel-server-go/internal/game/target"
)

// ActionType discriminates the action union.
type ActionType string

const (
	ActionAdvancePhase    ActionType = "ADVANCE_PHASE"
	ActionPassPriority    ActionType = "PASS_PRIORITY"
	ActionConfirmMulligan ActionType = "CONFIRM_MULLIGAN"
	ActionSetChainTargets ActionType = "SET_CHAIN_TARGETS"
	ActionPlayCard        ActionType = "PLAY_CARD"
	ActionPlaceFaceDown   ActionType = "PLACE_FACE_DOWN"
	ActionStandardMove    ActionType = "STANDARD_MOVE"
	ActionExhaustRune     ActionType = "EXHAUST_RUNE"
	ActionRecycleRune     ActionType = "RECYCLE_RUNE"
	ActionSealGear        ActionType = "SEAL_GEAR"
	ActionActivateLegend  ActionType = "ACTIVATE_LEGEND"
)

// Action is the closed union external callers drive the engine with.
// One struct carries every variant; unused fields stay zero.
type Action struct {
	Type   ActionType `json:"type"`
	Player int        `json:"player"`

	// PLAY_CARD / PLACE_FACE_DOWN
	CardID string `json:"cardId,omitempty"`
	From   Zone   `json:"from,omitempty"` // HAND, CHAMPION or FACE_DOWN; empty means HAND
	// Destination is a battlefield index; nil means base (plays) or
	// recall to base (moves).
	Destination *int            `json:"destination,omitempty"`
	Accelerate  bool            `json:"accelerate,omitempty"`
	AutoPay     bool            `json:"autoPay,omitempty"`
	Targets     []target.Target `json:"targets,omitempty"`

	// CONFIRM_MULLIGAN
	RecycleIDs []string `json:"recycleIds,omitempty"`

	// STANDARD_MOVE
	UnitIDs []string `json:"unitIds,omitempty"`

	// EXHAUST_RUNE / RECYCLE_RUNE
	RuneID string `json:"runeId,omitempty"`

	// SEAL_GEAR
	GearID string `json:"gearId,omitempty"`
}

// Illegal-action sentinels. These always leave state unchanged.
var (
	ErrGameOver   = errors.New("game is over")
	ErrNoPriority = errors.New("player does not hold priority")
	ErrWrongPhase = errors.New("not legal in this phase")
	ErrTiming     = errors.New("not legal at this time")
	ErrNotFound   = errors.New("no such card")
	ErrCannotPay  = errors.New("cannot pay cost")
)

// Apply validates and executes one action, mutating the state in
// place. Callers that need atomicity clone first; a returned error
// guarantees no mutation happened only at this layer's validation
// stage, so the engine always applies actions to a throwaway clone.
func (s *State) Apply(a Action) error {
	if a.Player != 0 && a.Player != 1 {
		return fmt.Errorf("invalid player %d", a.Player)
	}
	if s.Over {
		return ErrGameOver
	}

	switch a.Type {
	case ActionAdvancePhase:
		return s.AdvancePhase(a.Player)
	case ActionPassPriority:
		return s.PassPriority(a.Player)
	case ActionConfirmMulligan:
		return s.ConfirmMulligan(a.Player, a.RecycleIDs)
	case ActionSetChainTargets:
		return s.setChainTargets(a)
	case ActionPlayCard:
		return s.playCard(a)
	case ActionPlaceFaceDown:
		return s.placeFaceDown(a)
	case ActionStandardMove:
		return s.standardMove(a)
	case ActionExhaustRune:
		return s.exhaustRuneAction(a)
	case ActionRecycleRune:
		return s.recycleRuneAction(a)
	case ActionSealGear:
		return s.sealGear(a)
	case ActionActivateLegend:
		return s.activateLegend(a)
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
}

// setChainTargets declares targets for the top chain item. Only the
// item's controller may do so, and only before anyone has responded.
func (s *State) setChainTargets(a Action) error {
	top, ok := s.Chain.Peek()
	if !ok {
		return fmt.Errorf("%w: chain is empty", ErrTiming)
	}
	if top.Controller != a.Player {
		return fmt.Errorf("%w: not the controller of the top chain item", ErrNoPriority)
	}
	if s.PassCount > 0 {
		return fmt.Errorf("%w: targets lock once a response is possible", ErrTiming)
	}
	if err := top.Requirement.Validate(a.Targets); err != nil {
		return err
	}
	for _, t := range a.Targets {
		if t.Kind == target.KindUnit {
			if _, _, ok := s.resolveUnitTarget(t); !ok {
				return fmt.Errorf("target %s is not in play", t)
			}
		}
	}
	s.Chain.SetTopTargets(a.Targets)
	return nil
}

// mainTiming reports whether the player may take a main-speed action:
// open state, action phase, their turn, holding priority.
func (s *State) mainTiming(player int) bool {
	return !s.Closed && s.Phase == PhaseAction && s.TurnPlayer == player && s.Priority == player
}

// reactionTiming reports whether the player may take a chain-speed
// action: holding priority during an action phase or a closed state.
func (s *State) reactionTiming(player int) bool {
	if s.Priority != player {
		return false
	}
	return s.Phase == PhaseAction || s.Closed
}

func (s *State) playCard(a Action) error {
	p := s.Players[a.Player]

	card, unstage, err := s.takeForPlay(a)
	if err != nil {
		return err
	}

	// Reactive windows and a pending chain restrict plays to spells
	// and cards carrying Legion.
	if s.Closed || s.Window != WindowNone {
		if !s.reactionTiming(a.Player) {
			return ErrNoPriority
		}
		if card.Def.Kind != carddef.KindSpell && !card.HasKeyword("Legion") {
			return fmt.Errorf("%w: only spells and Legion cards during reactions", ErrTiming)
		}
	} else if !s.mainTiming(a.Player) {
		return fmt.Errorf("%w: main-speed plays need priority in your action phase", ErrTiming)
	}

	dest := -1
	if a.Destination != nil {
		dest = *a.Destination
		if dest < 0 || dest >= NumBattlefields {
			return fmt.Errorf("invalid battlefield %d", dest)
		}
	}

	// A face-down card flips where it lies: it enters the battlefield
	// that held it, never another one.
	if a.From == ZoneFaceDown {
		held := -1
		for idx, bf := range s.Battlefields {
			if bf.FaceDown != nil && bf.FaceDown.ID == card.ID {
				held = idx
				break
			}
		}
		if dest >= 0 && dest != held {
			return fmt.Errorf("%w: face-down card enters %s", ErrTiming, s.battlefieldName(held))
		}
		dest = held
	}

	// Units enter base unless Accelerate lets them deploy forward.
	if card.Def.Kind == carddef.KindUnit && dest >= 0 && !card.HasKeyword("Accelerate") && a.From != ZoneFaceDown {
		return fmt.Errorf("%w: %s cannot deploy to a battlefield", ErrTiming, card.Def.Name)
	}
	// Gear deploys forward only in support of friendly units; sweep
	// recalls it the moment those units leave.
	if card.Def.Kind == carddef.KindGear && dest >= 0 && a.From != ZoneFaceDown && len(s.Battlefields[dest].Units[a.Player]) == 0 {
		return fmt.Errorf("%w: gear needs friendly units at %s", ErrTiming, s.battlefieldName(dest))
	}
	switch card.Def.Kind {
	case carddef.KindUnit, carddef.KindSpell, carddef.KindGear:
	default:
		return fmt.Errorf("%w: %s is not playable", ErrTiming, card.Def.Name)
	}

	req := requirementFor(playEffectText(card.Def))
	if len(a.Targets) > 0 {
		if err := req.Validate(a.Targets); err != nil {
			return err
		}
	}

	cost := s.playCost(card, dest >= 0 && a.Accelerate)
	if err := s.payCost(a.Player, cost, a.AutoPay); err != nil {
		return err
	}

	unstage()
	p.Staged = append(p.Staged, card)
	p.CardsPlayedThisTurn++

	item := chain.Item{
		ID:          uuid.NewString(),
		Kind:        chain.KindPlay,
		Controller:  a.Player,
		CardID:      card.ID,
		Requirement: req,
		Targets:     a.Targets,
		Destination: dest,
		Description: fmt.Sprintf("%s plays %s", p.Name, card.Def.Name),
	}
	if text := playEffectText(card.Def); text != "" {
		item.EffectText = text
	}
	s.commitChainItem(item)
	s.logf("%s (cost %s)", item.Description, cost)
	return nil
}

// takeForPlay locates the card in its source zone and returns a
// closure that removes it once the play is fully validated and paid.
func (s *State) takeForPlay(a Action) (*CardInstance, func(), error) {
	p := s.Players[a.Player]
	from := a.From
	if from == "" {
		from = ZoneHand
	}

	switch from {
	case ZoneHand:
		for _, c := range p.Hand {
			if c.ID == a.CardID {
				card := c
				return card, func() {
					p.Hand, _ = removeCard(p.Hand, card.ID)
				}, nil
			}
		}
		return nil, nil, fmt.Errorf("%w: %s not in hand", ErrNotFound, a.CardID)
	case ZoneChampion:
		if p.Champion == nil || p.Champion.ID != a.CardID {
			return nil, nil, fmt.Errorf("%w: champion %s", ErrNotFound, a.CardID)
		}
		card := p.Champion
		return card, func() { p.Champion = nil }, nil
	case ZoneFaceDown:
		for _, bf := range s.Battlefields {
			if bf.FaceDown != nil && bf.FaceDown.ID == a.CardID {
				if bf.FaceDownOwner != a.Player {
					return nil, nil, fmt.Errorf("%w: not your face-down card", ErrTiming)
				}
				card := bf.FaceDown
				b := bf
				return card, func() {
					b.FaceDown = nil
					b.FaceDownOwner = NoPlayer
				}, nil
			}
		}
		return nil, nil, fmt.Errorf("%w: no face-down card %s", ErrNotFound, a.CardID)
	default:
		return nil, nil, fmt.Errorf("cannot play from zone %s", from)
	}
}

// playCost builds the cost of playing a card. Accelerated deploys add
// the keyword's energy surcharge.
func (s *State) playCost(card *CardInstance, accelerated bool) runes.Cost {
	cost := runes.Cost{
		Energy:  card.Def.Cost,
		Power:   card.Def.PowerIcons,
		Domains: card.Def.Domains,
	}
	if accelerated {
		extra := card.KeywordValue("Accelerate")
		if extra <= 0 {
			extra = 1
		}
		cost.Energy += extra
	}
	return cost
}

// payCost pays a cost from the player's pool, optionally running the
// auto-pay planner to generate missing resources from runes first.
// Failure after a successful plan is a programming error; the caller's
// clone is discarded, so state never persists half-paid.
func (s *State) payCost(player int, cost runes.Cost, autoPay bool) error {
	p := s.Players[player]
	if cost.IsFree() {
		return nil
	}

	if !cost.CanAfford(p.Pool) {
		if !autoPay {
			return fmt.Errorf("%w: %s", ErrCannotPay, cost)
		}
		states := make([]runes.RuneState, len(p.RunesInPlay))
		for i, r := range p.RunesInPlay {
			states[i] = runes.RuneState{ID: r.ID, Domain: r.Domain(), Exhausted: r.Exhausted}
		}
		plan := runes.AutoPlan(cost, p.Pool, states)
		if plan == nil {
			return fmt.Errorf("%w: %s", ErrCannotPay, cost)
		}
		for _, id := range plan.Exhaust {
			if err := s.ExhaustRune(player, id); err != nil {
				return fmt.Errorf("auto-pay exhaust: %w", err)
			}
		}
		for _, id := range plan.Recycle {
			if err := s.RecycleRune(player, id); err != nil {
				return fmt.Errorf("auto-pay recycle: %w", err)
			}
		}
	}

	if err := cost.Pay(p.Pool); err != nil {
		return fmt.Errorf("payment failed after affordability check: %w", err)
	}
	return nil
}

// requirementFor derives the target requirement of an effect text from
// its interpreted primitives.
func requirementFor(text string) target.Requirement {
	res := ability.Interpret(text)
	req := target.NoTargets
	for _, e := range res.Effects {
		if !e.Targeted() || e.MaxTargets == 0 {
			continue
		}
		r := target.Requirement{
			Kind:         target.KindUnit,
			Min:          e.MaxTargets,
			Max:          e.MaxTargets,
			EnemyOnly:    e.Scope.Enemy,
			FriendlyOnly: e.Scope.Friendly,
		}
		if e.UpTo {
			r.Min = 0
		}
		if r.Max > req.Max {
			req = r
		}
	}
	return req
}

// playEffectText returns the text that resolves with the play: spells
// always carry theirs, units and gear only their on-play trigger.
func playEffectText(def *carddef.Card) string {
	if def.Ability.Effect == "" {
		return ""
	}
	if def.Kind == carddef.KindSpell {
		return def.Ability.Effect
	}
	if strings.EqualFold(def.Ability.Trigger, "Play") {
		return def.Ability.Effect
	}
	return ""
}

// placeFaceDown hides a Hidden card at a controlled battlefield.
func (s *State) placeFaceDown(a Action) error {
	if !s.mainTiming(a.Player) {
		return fmt.Errorf("%w: face-down placement is main-speed", ErrTiming)
	}
	if a.Destination == nil {
		return fmt.Errorf("face-down placement needs a battlefield")
	}
	idx := *a.Destination
	if idx < 0 || idx >= NumBattlefields {
		return fmt.Errorf("invalid battlefield %d", idx)
	}
	bf := s.Battlefields[idx]
	if bf.Controller != a.Player {
		return fmt.Errorf("%w: you do not control %s", ErrTiming, s.battlefieldName(idx))
	}
	if bf.FaceDown != nil {
		return fmt.Errorf("%w: %s already holds a face-down card", ErrTiming, s.battlefieldName(idx))
	}

	p := s.Players[a.Player]
	rest, card := removeCard(p.Hand, a.CardID)
	if card == nil {
		return fmt.Errorf("%w: %s not in hand", ErrNotFound, a.CardID)
	}
	if !card.HasKeyword("Hidden") {
		return fmt.Errorf("%w: %s cannot be placed face-down", ErrTiming, card.Def.Name)
	}
	p.Hand = rest
	bf.FaceDown = card
	bf.FaceDownOwner = a.Player
	s.logf("%s places a card face-down at %s", p.Name, s.battlefieldName(idx))
	return nil
}

// standardMove walks ready units between base and one battlefield.
// Arriving at a battlefield exhausts them; returning to base does not.
func (s *State) standardMove(a Action) error {
	if !s.mainTiming(a.Player) {
		return fmt.Errorf("%w: moves are main-speed", ErrTiming)
	}
	if len(a.UnitIDs) == 0 {
		return fmt.Errorf("move needs at least one unit")
	}
	p := s.Players[a.Player]

	if a.Destination != nil {
		idx := *a.Destination
		if idx < 0 || idx >= NumBattlefields {
			return fmt.Errorf("invalid battlefield %d", idx)
		}
		// Validate first so the group moves atomically.
		for _, id := range a.UnitIDs {
			c, loc, ok := s.findUnit(a.Player, id)
			if !ok || loc.zone != ZoneBase {
				return fmt.Errorf("%w: %s is not a unit at your base", ErrNotFound, id)
			}
			if c.Exhausted || c.Stunned {
				return fmt.Errorf("%w: %s is not ready", ErrTiming, c.Def.Name)
			}
		}
		bf := s.Battlefields[idx]
		for _, id := range a.UnitIDs {
			rest, c := removeCard(p.BaseUnits, id)
			p.BaseUnits = rest
			c.Exhausted = true
			bf.Units[a.Player] = append(bf.Units[a.Player], c)
		}
		s.logf("%s moves %d unit(s) to %s", p.Name, len(a.UnitIDs), s.battlefieldName(idx))
		s.markContest(a.Player, idx)
		s.Sweep()
		s.openPendingWindow()
		return nil
	}

	// Recall to base.
	for _, id := range a.UnitIDs {
		c, loc, ok := s.findUnit(a.Player, id)
		if !ok || loc.zone != ZoneBattlefield {
			return fmt.Errorf("%w: %s is not at a battlefield", ErrNotFound, id)
		}
		if c.Exhausted || c.Stunned {
			return fmt.Errorf("%w: %s is not ready", ErrTiming, c.Def.Name)
		}
	}
	for _, id := range a.UnitIDs {
		_, loc, _ := s.findUnit(a.Player, id)
		bf := s.Battlefields[loc.battlefield]
		rest, c := removeCard(bf.Units[a.Player], id)
		bf.Units[a.Player] = rest
		p.BaseUnits = append(p.BaseUnits, c)
	}
	s.logf("%s recalls %d unit(s) to base", p.Name, len(a.UnitIDs))
	s.Sweep()
	return nil
}

// exhaustRuneAction turns a ready rune into one energy. Legal whenever
// the player holds priority; resources may be generated in reaction.
func (s *State) exhaustRuneAction(a Action) error {
	if !s.reactionTiming(a.Player) && !s.mainTiming(a.Player) {
		return ErrNoPriority
	}
	return s.ExhaustRune(a.Player, a.RuneID)
}

func (s *State) recycleRuneAction(a Action) error {
	if !s.reactionTiming(a.Player) && !s.mainTiming(a.Player) {
		return ErrNoPriority
	}
	return s.RecycleRune(a.Player, a.RuneID)
}

// sealGear exhausts a gear to put its activated ability on the chain.
func (s *State) sealGear(a Action) error {
	gear, ok := s.findGear(a.Player, a.GearID)
	if !ok {
		return fmt.Errorf("%w: gear %s", ErrNotFound, a.GearID)
	}
	return s.activateAbility(a, gear, "seals")
}

// activateLegend exhausts the legend to put its ability on the chain.
func (s *State) activateLegend(a Action) error {
	legend := s.Players[a.Player].Legend
	if legend == nil {
		return fmt.Errorf("%w: no legend in play", ErrNotFound)
	}
	if legend.ID != a.CardID && a.CardID != "" {
		return fmt.Errorf("%w: legend %s", ErrNotFound, a.CardID)
	}
	return s.activateAbility(a, legend, "activates")
}

// activateAbility validates timing for an activated ability, exhausts
// its source and pushes the ability onto the chain.
func (s *State) activateAbility(a Action, source *CardInstance, verb string) error {
	def := source.Def
	if def.Ability.Effect == "" {
		return fmt.Errorf("%w: %s has no ability", ErrTiming, def.Name)
	}
	switch strings.ToUpper(def.Ability.Trigger) {
	case "ACTION":
		if !s.mainTiming(a.Player) {
			return fmt.Errorf("%w: %s's ability is main-speed", ErrTiming, def.Name)
		}
	case "REACTION", "":
		if !s.reactionTiming(a.Player) && !s.mainTiming(a.Player) {
			return ErrNoPriority
		}
	default:
		return fmt.Errorf("%w: %s's ability is not activated", ErrTiming, def.Name)
	}
	if source.Exhausted {
		return fmt.Errorf("%w: %s is exhausted", ErrTiming, def.Name)
	}

	req := requirementFor(def.Ability.Effect)
	if len(a.Targets) > 0 {
		if err := req.Validate(a.Targets); err != nil {
			return err
		}
	}

	source.Exhausted = true
	item := chain.Item{
		ID:          uuid.NewString(),
		Kind:        chain.KindAbility,
		Controller:  a.Player,
		CardID:      source.ID,
		EffectText:  def.Ability.Effect,
		Requirement: req,
		Targets:     a.Targets,
		Destination: -1,
		Description: fmt.Sprintf("%s %s %s", s.Players[a.Player].Name, verb, def.Name),
	}
	s.commitChainItem(item)
	s.logf("%s", item.Description)
	return nil
}

// findGear locates a gear the player owns, at base or a battlefield.
func (s *State) findGear(owner int, gearID string) (*CardInstance, bool) {
	for _, g := range s.Players[owner].BaseGear {
		if g.ID == gearID {
			return g, true
		}
	}
	for _, bf := range s.Battlefields {
		for _, g := range bf.Gear[owner] {
			if g.ID == gearID {
				return g, true
			}
		}
	}
	return nil, false
}
