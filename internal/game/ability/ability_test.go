package ability

import (
	"testing"

	"github.com/riftbound/duel-server-go/internal/carddef"
)

func single(t *testing.T, text string, kind EffectKind) Effect {
	t.Helper()
	res := Interpret(text)
	if res.Unsupported != "" {
		t.Fatalf("unexpected unsupported diagnostic for %q", text)
	}
	if len(res.Effects) != 1 {
		t.Fatalf("expected 1 effect for %q, got %d: %+v", text, len(res.Effects), res.Effects)
	}
	if res.Effects[0].Kind != kind {
		t.Fatalf("expected %s for %q, got %s", kind, text, res.Effects[0].Kind)
	}
	return res.Effects[0]
}

func TestInterpretDraw(t *testing.T) {
	e := single(t, "Draw two cards.", EffectDraw)
	if e.Amount != 2 {
		t.Errorf("expected draw 2, got %d", e.Amount)
	}
	e = single(t, "Draw a card.", EffectDraw)
	if e.Amount != 1 {
		t.Errorf("expected draw 1, got %d", e.Amount)
	}
}

func TestInterpretChannel(t *testing.T) {
	e := single(t, "Channel a rune.", EffectChannel)
	if e.Amount != 1 {
		t.Errorf("expected channel 1, got %d", e.Amount)
	}
}

func TestInterpretResources(t *testing.T) {
	e := single(t, "Gain 2 energy.", EffectAddEnergy)
	if e.Amount != 2 {
		t.Errorf("expected 2 energy, got %d", e.Amount)
	}

	e = single(t, "Gain 1 fury power.", EffectAddPower)
	if e.Domain != carddef.DomainFury || e.Amount != 1 {
		t.Errorf("expected 1 fury power, got %+v", e)
	}

	e = single(t, "Gain 1 power of any domain.", EffectAddPower)
	if !e.AnyDomain {
		t.Errorf("expected any-domain power, got %+v", e)
	}
}

func TestInterpretTokens(t *testing.T) {
	e := single(t, "Play two 1-might tokens here.", EffectTokens)
	if e.Count != 2 || e.Might != 1 || !e.Scope.Here {
		t.Errorf("expected two 1-might tokens here, got %+v", e)
	}
}

func TestInterpretGrantKeyword(t *testing.T) {
	e := single(t, "Target unit gains [Tank] this turn.", EffectGrantKeyword)
	if e.Keyword != "Tank" || !e.ThisTurn || e.MaxTargets != 1 {
		t.Errorf("expected targeted this-turn Tank grant, got %+v", e)
	}

	e = single(t, "Friendly units here gain [Assault 2].", EffectGrantKeyword)
	if e.Keyword != "Assault 2" || e.ThisTurn || e.MaxTargets != 0 {
		t.Errorf("expected mass permanent Assault 2 grant, got %+v", e)
	}
	if !e.Scope.Friendly || !e.Scope.Here {
		t.Errorf("expected friendly+here scope, got %+v", e.Scope)
	}
}

func TestInterpretStunUpTo(t *testing.T) {
	e := single(t, "Stun up to two enemy units here.", EffectStun)
	if !e.UpTo || e.MaxTargets != 2 {
		t.Errorf("expected up to 2 targets, got %+v", e)
	}
	if !e.Scope.Enemy || !e.Scope.Here {
		t.Errorf("expected enemy+here scope, got %+v", e.Scope)
	}
}

func TestInterpretKillWithConditionalDraw(t *testing.T) {
	e := single(t, "Kill target unit. If this kills it, draw a card.", EffectKill)
	if e.MaxTargets != 1 {
		t.Errorf("expected 1 target, got %+v", e)
	}
	if e.DrawOnKill != 1 {
		t.Errorf("expected conditional draw 1, got %d", e.DrawOnKill)
	}
}

func TestInterpretMight(t *testing.T) {
	e := single(t, "Target friendly unit gets +2 might this turn.", EffectMightThisTurn)
	if e.Amount != 2 || e.MaxTargets != 1 || !e.Scope.Friendly {
		t.Errorf("expected targeted +2 this turn, got %+v", e)
	}

	e = single(t, "Friendly units here get +1 might.", EffectBuff)
	if e.Amount != 1 || e.MaxTargets != 0 {
		t.Errorf("expected mass permanent +1, got %+v", e)
	}
}

func TestInterpretDamage(t *testing.T) {
	e := single(t, "Deal 2 damage to target unit.", EffectDamage)
	if e.Amount != 2 || e.MaxTargets != 1 {
		t.Errorf("expected 2 damage to one target, got %+v", e)
	}

	e = single(t, "Deal 1 damage to each enemy unit here.", EffectDamageAOE)
	if e.Amount != 1 || !e.Scope.Enemy || !e.Scope.Here {
		t.Errorf("expected AOE 1 damage enemy-here, got %+v", e)
	}
}

func TestInterpretReadyAndReturn(t *testing.T) {
	single(t, "Ready target friendly unit.", EffectReady)
	single(t, "Return target enemy unit to its owner's hand.", EffectReturn)
	single(t, "Banish target unit.", EffectBanish)
}

func TestInterpretMultiplePrimitives(t *testing.T) {
	res := Interpret("Draw a card. Gain 1 energy.")
	if len(res.Effects) != 2 {
		t.Fatalf("expected 2 effects, got %+v", res.Effects)
	}
}

func TestInterpretUnsupported(t *testing.T) {
	res := Interpret("Transform all runes into dragons.")
	if res.HasEffects() {
		t.Fatalf("expected no effects, got %+v", res.Effects)
	}
	if res.Unsupported == "" {
		t.Fatal("expected unsupported diagnostic")
	}
}

func TestInterpretEmptyTextIsNoop(t *testing.T) {
	res := Interpret("   ")
	if res.HasEffects() || res.Unsupported != "" {
		t.Fatalf("expected silent no-op for empty text, got %+v", res)
	}
}
