package game

import (
	"fmt"

	"github.com/riftbound/duel-server-go/internal/carddef"
	"github.com/riftbound/duel-server-go/internal/game/chain"
	"github.com/riftbound/duel-server-go/internal/game/runes"
	"github.com/riftbound/duel-server-go/internal/game/target"
)

// DeckList is the deck a player brings to a duel. Validation of deck
// legality belongs to the deck builder; the engine takes the list as
// given.
type DeckList struct {
	Name        string
	Legend      *carddef.Card
	Champion    *carddef.Card
	Battlefield *carddef.Card
	Cards       []*carddef.Card
	Runes       []*carddef.Card
}

// openingHandSize is the number of cards drawn before mulligans.
const openingHandSize = 4

// NewState deals a fresh duel from two deck lists. The seed fixes
// every shuffle, so a duel can be replayed deterministically.
func NewState(id string, seed int64, startingPlayer int, decks [2]DeckList) *State {
	s := &State{
		ID:             id,
		Phase:          PhaseMulligan,
		Turn:           1,
		TurnPlayer:     startingPlayer,
		StartingPlayer: startingPlayer,
		Priority:       startingPlayer,
		Winner:         NoPlayer,
		Seed:           seed,
	}
	s.Chain = chain.New()

	for i := 0; i < 2; i++ {
		d := decks[i]
		p := &PlayerState{
			Name:               d.Name,
			Pool:               runes.NewPool(),
			BattlefieldsScored: make(map[int]bool),
		}
		if d.Legend != nil {
			p.Legend = s.newInstance(d.Legend)
		}
		if d.Champion != nil {
			p.Champion = s.newInstance(d.Champion)
		}
		for _, def := range d.Cards {
			p.Deck = append(p.Deck, s.newInstance(def))
		}
		for _, def := range d.Runes {
			p.RuneDeck = append(p.RuneDeck, &RuneInstance{ID: s.newInstanceID("rune"), Def: def})
		}
		s.Players[i] = p
	}

	for i := 0; i < NumBattlefields; i++ {
		s.Battlefields[i] = &BattlefieldState{
			Card:          decks[i].Battlefield,
			Controller:    NoPlayer,
			Contester:     NoPlayer,
			FaceDownOwner: NoPlayer,
		}
	}

	for i := 0; i < 2; i++ {
		s.shuffleDeck(i)
		for n := 0; n < openingHandSize; n++ {
			s.drawOne(i)
		}
	}

	s.logf("duel started: %s vs %s, %s goes first",
		s.Players[0].Name, s.Players[1].Name, s.Players[startingPlayer].Name)
	return s
}

// newInstance mints a CardInstance for a definition.
func (s *State) newInstance(def *carddef.Card) *CardInstance {
	return &CardInstance{ID: s.newInstanceID("card"), Def: def}
}

// shuffleDeck shuffles a player's main deck with the duel's
// deterministic generator.
func (s *State) shuffleDeck(player int) {
	deck := s.Players[player].Deck
	s.rng().Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}

// drawOne moves the top card of the deck to hand without Burn Out
// handling. Setup only.
func (s *State) drawOne(player int) {
	p := s.Players[player]
	if len(p.Deck) == 0 {
		return
	}
	card := p.Deck[0]
	p.Deck = p.Deck[1:]
	p.Hand = append(p.Hand, card)
}

// DrawCards draws n cards for a player, applying Burn Out on an empty
// deck: the trash is reshuffled into the deck and the opponent scores
// one point; if deck and trash are both empty the opponent wins on the
// spot.
func (s *State) DrawCards(player, n int) {
	p := s.Players[player]
	for i := 0; i < n; i++ {
		if s.Over {
			return
		}
		if len(p.Deck) == 0 {
			if len(p.Trash) == 0 {
				s.logf("%s has no cards left anywhere: opponent wins", p.Name)
				s.endGame(Opponent(player))
				return
			}
			s.burnOut(player)
			if s.Over {
				return
			}
		}
		card := p.Deck[0]
		p.Deck = p.Deck[1:]
		p.Hand = append(p.Hand, card)
	}
}

// burnOut reshuffles the trash into the deck and awards the opponent
// one point.
func (s *State) burnOut(player int) {
	p := s.Players[player]
	p.Deck = append(p.Deck, p.Trash...)
	p.Trash = nil
	s.shuffleDeck(player)
	opp := Opponent(player)
	s.logf("%s burns out: trash reshuffled, %s scores a point", p.Name, s.Players[opp].Name)
	s.awardPoint(opp)
}

// ChannelRunes moves up to n runes from the top of the rune deck into
// play, ready.
func (s *State) ChannelRunes(player, n int) {
	p := s.Players[player]
	moved := 0
	for i := 0; i < n && len(p.RuneDeck) > 0; i++ {
		r := p.RuneDeck[0]
		p.RuneDeck = p.RuneDeck[1:]
		r.Exhausted = false
		p.RunesInPlay = append(p.RunesInPlay, r)
		moved++
	}
	if moved > 0 {
		s.logf("%s channels %d rune(s)", p.Name, moved)
	}
}

// RecycleRune consumes a rune in play: one power of its domain enters
// the pool and the rune goes to the bottom of the rune deck, ready.
func (s *State) RecycleRune(player int, runeID string) error {
	p := s.Players[player]
	rest, r := removeRune(p.RunesInPlay, runeID)
	if r == nil {
		return fmt.Errorf("rune %s is not in play", runeID)
	}
	p.RunesInPlay = rest
	p.Pool.AddPower(r.Domain(), 1)
	r.Exhausted = false
	p.RuneDeck = append(p.RuneDeck, r)
	return nil
}

// ExhaustRune exhausts a ready rune in play for one energy.
func (s *State) ExhaustRune(player int, runeID string) error {
	p := s.Players[player]
	for _, r := range p.RunesInPlay {
		if r.ID == runeID {
			if r.Exhausted {
				return fmt.Errorf("rune %s is already exhausted", runeID)
			}
			r.Exhausted = true
			p.Pool.AddEnergy(1)
			return nil
		}
	}
	return fmt.Errorf("rune %s is not in play", runeID)
}

// unitLocation records where on the board a unit currently is.
type unitLocation struct {
	player      int
	zone        Zone
	battlefield int // valid when zone == ZoneBattlefield
}

// findUnit locates a unit in play (base or a battlefield) by owner and
// instance id.
func (s *State) findUnit(owner int, unitID string) (*CardInstance, unitLocation, bool) {
	for _, c := range s.Players[owner].BaseUnits {
		if c.ID == unitID {
			return c, unitLocation{player: owner, zone: ZoneBase}, true
		}
	}
	for idx, bf := range s.Battlefields {
		for _, c := range bf.Units[owner] {
			if c.ID == unitID {
				return c, unitLocation{player: owner, zone: ZoneBattlefield, battlefield: idx}, true
			}
		}
	}
	return nil, unitLocation{}, false
}

// resolveUnitTarget revalidates a declared unit target: the unit must
// still be in play. The declared zone being stale is fine as long as
// the unit itself survived; a dead or returned unit is simply dropped.
func (s *State) resolveUnitTarget(t target.Target) (*CardInstance, unitLocation, bool) {
	if t.Kind != target.KindUnit {
		return nil, unitLocation{}, false
	}
	if t.Owner < 0 || t.Owner > 1 {
		return nil, unitLocation{}, false
	}
	return s.findUnit(t.Owner, t.UnitID)
}

// voidInstance strips the in-play identity of a card leaving play.
func voidInstance(c *CardInstance) {
	c.Exhausted = false
	c.Damage = 0
	c.PermBuff = 0
	c.TurnBonus = 0
	c.Stunned = false
	c.Keywords = nil
	c.TurnKeywords = nil
}

// removeUnitFromPlay detaches a unit from wherever it is.
func (s *State) removeUnitFromPlay(owner int, unitID string) *CardInstance {
	p := s.Players[owner]
	if rest, c := removeCard(p.BaseUnits, unitID); c != nil {
		p.BaseUnits = rest
		return c
	}
	for _, bf := range s.Battlefields {
		if rest, c := removeCard(bf.Units[owner], unitID); c != nil {
			bf.Units[owner] = rest
			return c
		}
	}
	return nil
}

// KillUnit moves a unit to its owner's trash. Tokens vanish instead.
func (s *State) KillUnit(owner int, unitID string) {
	c := s.removeUnitFromPlay(owner, unitID)
	if c == nil {
		return
	}
	s.logf("%s's %s dies", s.Players[owner].Name, c.Def.Name)
	voidInstance(c)
	if !c.Token {
		s.Players[owner].Trash = append(s.Players[owner].Trash, c)
	}
}

// BanishUnit moves a unit to its owner's banishment pile.
func (s *State) BanishUnit(owner int, unitID string) {
	c := s.removeUnitFromPlay(owner, unitID)
	if c == nil {
		return
	}
	s.logf("%s's %s is banished", s.Players[owner].Name, c.Def.Name)
	voidInstance(c)
	if !c.Token {
		s.Players[owner].Banishment = append(s.Players[owner].Banishment, c)
	}
}

// ReturnUnit moves a unit back to its owner's hand.
func (s *State) ReturnUnit(owner int, unitID string) {
	c := s.removeUnitFromPlay(owner, unitID)
	if c == nil {
		return
	}
	s.logf("%s's %s returns to hand", s.Players[owner].Name, c.Def.Name)
	voidInstance(c)
	if !c.Token {
		s.Players[owner].Hand = append(s.Players[owner].Hand, c)
	}
}

// endGame marks the duel finished.
func (s *State) endGame(winner int) {
	if s.Over {
		return
	}
	s.Over = true
	s.Winner = winner
	s.Phase = PhaseGameOver
	if winner >= 0 {
		s.logf("game over: %s wins", s.Players[winner].Name)
	} else {
		s.logf("game over: draw")
	}
}
