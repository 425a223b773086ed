// Tell derivation — turns a decision into the player-facing signal the bot
// leaks, governed by the archetype's tell profile. Tells are best-effort
// flavor: failures to emit never affect decision or execution correctness.
package bots

import (
	"fmt"

	"github.com/talgya/star-dominion/internal/entropy"
)

// TellEvent is a signal a bot emits hinting at its action.
type TellEvent struct {
	EmpireID   string       `json:"empire_id"`
	Turn       int          `json:"turn"`
	Style      TellStyle    `json:"style"`
	Hint       DecisionType `json:"hint"`
	TargetID   string       `json:"target_id,omitempty"`
	TurnsAhead int          `json:"turns_ahead,omitempty"`
	Message    string       `json:"message"`
}

// DeriveTell produces the tell for a decision, or nil when the bot stays
// quiet. Bots without an archetype never emit tells; silent-style archetypes
// rarely pass the tell-rate gate.
func DeriveTell(b *Bot, d Decision, turn int, src entropy.Source) *TellEvent {
	if b.Archetype == "" || d == nil {
		return nil
	}
	src = entropy.FromSource(src)

	prof := BehaviorFor(b.Archetype).Tell
	if src.Float64() >= prof.TellRate {
		return nil
	}

	tell := &TellEvent{
		EmpireID: b.EmpireID,
		Turn:     turn,
		Style:    prof.Style,
		Hint:     d.Type(),
	}

	if atk, ok := d.(AttackDecision); ok {
		tell.TargetID = atk.TargetID
		span := prof.WarningMax - prof.WarningMin
		tell.TurnsAhead = prof.WarningMin
		if span > 0 {
			tell.TurnsAhead += src.IntN(span + 1)
		}
	}

	// Misdirection hints at a different action than the real one.
	if prof.Style == TellMisdirection {
		tell.Hint = misdirectedHint(d.Type(), src)
	}

	tell.Message = tellMessage(tell)
	return tell
}

// misdirectedHint picks a random decision type other than the real one.
func misdirectedHint(actual DecisionType, src entropy.Source) DecisionType {
	for {
		dt := decisionOrder[src.IntN(len(decisionOrder))]
		if dt != actual {
			return dt
		}
	}
}

func tellMessage(t *TellEvent) string {
	switch t.Style {
	case TellBoastful:
		if t.Hint == DecisionAttack {
			return fmt.Sprintf("loudly promises ruin within %d turns", t.TurnsAhead)
		}
		return fmt.Sprintf("boasts about plans for %s", t.Hint)
	case TellCryptic:
		return "hints that something is in motion"
	case TellMisdirection:
		return fmt.Sprintf("lets slip plans for %s", t.Hint)
	case TellSilent:
		return "goes unusually quiet"
	default:
		if t.Hint == DecisionAttack {
			return fmt.Sprintf("announces military intent, %d turns of warning", t.TurnsAhead)
		}
		return fmt.Sprintf("states an interest in %s", t.Hint)
	}
}
