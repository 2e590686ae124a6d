package server

import (
	"github.com/riftbound/duel-server-go/internal/game"
)

// CardView is one card as clients see it. Hidden cards come through
// as placeholders already, so the view is a plain flattening.
type CardView struct {
	ID        string   `json:"id"`
	DefID     string   `json:"defId"`
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	Domains   []string `json:"domains,omitempty"`
	Cost      int      `json:"cost"`
	Might     int      `json:"might,omitempty"`
	Damage    int      `json:"damage,omitempty"`
	Exhausted bool     `json:"exhausted,omitempty"`
	Stunned   bool     `json:"stunned,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
	Token     bool     `json:"token,omitempty"`
}

// RuneView is a rune in play or in the rune deck.
type RuneView struct {
	ID        string `json:"id"`
	Domain    string `json:"domain"`
	Exhausted bool   `json:"exhausted"`
}

// PoolView is a player's floating resources.
type PoolView struct {
	Energy int            `json:"energy"`
	Power  map[string]int `json:"power,omitempty"`
}

// PlayerView is one player's visible state.
type PlayerView struct {
	Name          string     `json:"name"`
	Score         int        `json:"score"`
	Legend        *CardView  `json:"legend,omitempty"`
	Champion      *CardView  `json:"champion,omitempty"`
	Hand          []CardView `json:"hand"`
	DeckCount     int        `json:"deckCount"`
	Trash         []CardView `json:"trash"`
	BaseUnits     []CardView `json:"baseUnits"`
	BaseGear      []CardView `json:"baseGear"`
	Runes         []RuneView `json:"runes"`
	RuneDeckCount int        `json:"runeDeckCount"`
	Pool          PoolView   `json:"pool"`
}

// BattlefieldView is one battlefield.
type BattlefieldView struct {
	Name       string        `json:"name"`
	Controller int           `json:"controller"`
	Contester  int           `json:"contester"`
	FaceDown   *CardView     `json:"faceDown,omitempty"`
	Units      [2][]CardView `json:"units"`
	Gear       [2][]CardView `json:"gear"`
}

// ChainItemView is one pending chain item.
type ChainItemView struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Controller  int    `json:"controller"`
	Description string `json:"description"`
	EffectText  string `json:"effectText,omitempty"`
}

// GameView is the full projection sent to clients.
type GameView struct {
	ID           string             `json:"id"`
	Phase        string             `json:"phase"`
	Turn         int                `json:"turn"`
	TurnPlayer   int                `json:"turnPlayer"`
	Priority     int                `json:"priority"`
	Closed       bool               `json:"closed"`
	Window       string             `json:"window"`
	WindowStep   string             `json:"windowStep,omitempty"`
	Players      [2]PlayerView      `json:"players"`
	Battlefields []BattlefieldView  `json:"battlefields"`
	Chain        []ChainItemView    `json:"chain"`
	Over         bool               `json:"over"`
	Winner       int                `json:"winner"`
	Log          []string           `json:"log"`
}

func cardView(c *game.CardInstance) CardView {
	v := CardView{
		ID:        c.ID,
		DefID:     c.Def.ID,
		Name:      c.Def.Name,
		Kind:      string(c.Def.Kind),
		Cost:      c.Def.Cost,
		Might:     c.EffectiveMight(),
		Damage:    c.Damage,
		Exhausted: c.Exhausted,
		Stunned:   c.Stunned,
		Token:     c.Token,
	}
	for _, d := range c.Def.Domains {
		v.Domains = append(v.Domains, string(d))
	}
	v.Keywords = append(v.Keywords, c.Def.Ability.Keywords...)
	v.Keywords = append(v.Keywords, c.Keywords...)
	v.Keywords = append(v.Keywords, c.TurnKeywords...)
	return v
}

func cardViews(cards []*game.CardInstance) []CardView {
	out := make([]CardView, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardView(c))
	}
	return out
}

func runeViews(rs []*game.RuneInstance) []RuneView {
	out := make([]RuneView, 0, len(rs))
	for _, r := range rs {
		out = append(out, RuneView{ID: r.ID, Domain: string(r.Domain()), Exhausted: r.Exhausted})
	}
	return out
}

// toGameView flattens a redacted state into the client shape.
func toGameView(s *game.State) GameView {
	gv := GameView{
		ID:         s.ID,
		Phase:      s.Phase.String(),
		Turn:       s.Turn,
		TurnPlayer: s.TurnPlayer,
		Priority:   s.Priority,
		Closed:     s.Closed,
		Window:     s.Window.String(),
		Over:       s.Over,
		Winner:     s.Winner,
	}
	if s.Window != game.WindowNone {
		gv.WindowStep = s.WindowStep.String()
	}

	for i := 0; i < 2; i++ {
		p := s.Players[i]
		pv := PlayerView{
			Name:          p.Name,
			Score:         p.Score,
			Hand:          cardViews(p.Hand),
			DeckCount:     len(p.Deck),
			Trash:         cardViews(p.Trash),
			BaseUnits:     cardViews(p.BaseUnits),
			BaseGear:      cardViews(p.BaseGear),
			Runes:         runeViews(p.RunesInPlay),
			RuneDeckCount: len(p.RuneDeck),
			Pool: PoolView{
				Energy: p.Pool.Energy,
				Power:  powerMap(p),
			},
		}
		if p.Legend != nil {
			v := cardView(p.Legend)
			pv.Legend = &v
		}
		if p.Champion != nil {
			v := cardView(p.Champion)
			pv.Champion = &v
		}
		gv.Players[i] = pv
	}

	for _, bf := range s.Battlefields {
		bv := BattlefieldView{
			Controller: bf.Controller,
			Contester:  bf.Contester,
		}
		if bf.Card != nil {
			bv.Name = bf.Card.Name
		}
		if bf.FaceDown != nil {
			v := cardView(bf.FaceDown)
			bv.FaceDown = &v
		}
		for p := 0; p < 2; p++ {
			bv.Units[p] = cardViews(bf.Units[p])
			bv.Gear[p] = cardViews(bf.Gear[p])
		}
		gv.Battlefields = append(gv.Battlefields, bv)
	}

	for _, item := range s.Chain.List() {
		gv.Chain = append(gv.Chain, ChainItemView{
			ID:          item.ID,
			Kind:        string(item.Kind),
			Controller:  item.Controller,
			Description: item.Description,
			EffectText:  item.EffectText,
		})
	}

	// Clients only need the recent log tail.
	logs := s.Log
	if len(logs) > 50 {
		logs = logs[len(logs)-50:]
	}
	for _, entry := range logs {
		gv.Log = append(gv.Log, entry.Text)
	}
	return gv
}

func powerMap(p *game.PlayerState) map[string]int {
	out := make(map[string]int)
	for d, v := range p.Pool.Power {
		if v > 0 {
			out[string(d)] = v
		}
	}
	return out
}
