package game

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"

	"github.com/riftbound/duel-server-go/internal/carddef"
)

// Checksum digests everything rules-relevant in the state. Two states
// reached by replaying the same action log from the same seed must
// produce the same checksum; a mismatch means the engine diverged.
// Log entries and wall-clock times are excluded.
func (s *State) Checksum() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%d|%d|%d|%t|%d|%d|%d|%d",
		s.Phase, s.Turn, s.TurnPlayer, s.StartingPlayer, s.Priority,
		s.Closed, s.Window, s.WindowStep, s.WindowBattlefield, s.PassCount)
	fmt.Fprintf(h, "|%t|%d|%d|%d", s.Over, s.Winner, s.Seed, s.Shuffles)

	for _, p := range s.Players {
		hashPlayer(h, p)
	}
	for _, bf := range s.Battlefields {
		fmt.Fprintf(h, "|bf:%d:%d:%t", bf.Controller, bf.Contester, bf.PendingWindow)
		if bf.FaceDown != nil {
			fmt.Fprintf(h, ":fd=%d", bf.FaceDownOwner)
			hashCard(h, bf.FaceDown)
		}
		for side := 0; side < 2; side++ {
			hashCards(h, bf.Units[side])
			hashCards(h, bf.Gear[side])
		}
	}
	for _, item := range s.Chain.List() {
		fmt.Fprintf(h, "|chain:%s:%s:%d:%s:%d",
			item.ID, item.Kind, item.Controller, item.CardID, len(item.Targets))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func hashPlayer(h io.Writer, p *PlayerState) {
	fmt.Fprintf(h, "|p:%s:%d:%d:%t:%t",
		p.Name, p.Score, p.CardsPlayedThisTurn, p.MulliganConfirmed, p.ChanneledOnce)
	if p.Legend != nil {
		hashCard(h, p.Legend)
	}
	if p.Champion != nil {
		hashCard(h, p.Champion)
	}
	hashCards(h, p.Hand)
	hashCards(h, p.Deck)
	hashCards(h, p.Trash)
	hashCards(h, p.Banishment)
	hashCards(h, p.BaseUnits)
	hashCards(h, p.BaseGear)
	hashCards(h, p.Staged)
	for _, r := range p.RuneDeck {
		fmt.Fprintf(h, "|r:%s:%t", r.ID, r.Exhausted)
	}
	for _, r := range p.RunesInPlay {
		fmt.Fprintf(h, "|R:%s:%t", r.ID, r.Exhausted)
	}
	fmt.Fprintf(h, "|e:%d", p.Pool.Energy)
	domains := make([]carddef.Domain, 0, len(p.Pool.Power))
	for d := range p.Pool.Power {
		if p.Pool.Power[d] != 0 {
			domains = append(domains, d)
		}
	}
	sort.Slice(domains, func(i, j int) bool { return domains[i] < domains[j] })
	for _, d := range domains {
		fmt.Fprintf(h, ":%s=%d", d, p.Pool.Power[d])
	}
	scored := make([]int, 0, len(p.BattlefieldsScored))
	for idx, ok := range p.BattlefieldsScored {
		if ok {
			scored = append(scored, idx)
		}
	}
	sort.Ints(scored)
	fmt.Fprintf(h, "|s:%v", scored)
}

func hashCards(h io.Writer, cards []*CardInstance) {
	for _, c := range cards {
		hashCard(h, c)
	}
}

func hashCard(h io.Writer, c *CardInstance) {
	fmt.Fprintf(h, "|c:%s:%s:%t:%d:%d:%d:%t:%t:%v:%v",
		c.ID, c.Def.ID, c.Exhausted, c.Damage, c.PermBuff, c.TurnBonus,
		c.Stunned, c.Token, c.Keywords, c.TurnKeywords)
}
