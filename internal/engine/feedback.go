// Emotional feedback — maps executed decisions to emotional events and
// shifts each bot's state. Attack feedback is optimistic: a submitted attack
// that the combat service accepted triggers battle_won before true combat
// results are known. This is a documented approximation to be corrected once
// real outcomes flow back from combat resolution.
package engine

import (
	"log/slog"

	"github.com/talgya/star-dominion/internal/bots"
)

// EmotionalEvent tags what a turn outcome felt like to the bot.
type EmotionalEvent string

const (
	EventBattleWon     EmotionalEvent = "battle_won"
	EventBattleLost    EmotionalEvent = "battle_lost"
	EventExpansion     EmotionalEvent = "expansion"
	EventDealStruck    EmotionalEvent = "deal_struck"
	EventDealRejected  EmotionalEvent = "deal_rejected"
	EventSetback       EmotionalEvent = "setback"
	EventUnderAttack   EmotionalEvent = "under_attack"
	EventQuietTurn     EmotionalEvent = "quiet_turn"
)

// outcomeEvent maps a decision type and its success flag to an emotional
// event.
func outcomeEvent(dt bots.DecisionType, executed, success bool) EmotionalEvent {
	if !executed || !success {
		switch dt {
		case bots.DecisionAttack:
			return EventBattleLost
		case bots.DecisionDiplomacy:
			return EventDealRejected
		case bots.DecisionDoNothing:
			return EventQuietTurn
		default:
			return EventSetback
		}
	}
	switch dt {
	case bots.DecisionAttack:
		return EventBattleWon
	case bots.DecisionBuyPlanet, bots.DecisionBuildUnits:
		return EventExpansion
	case bots.DecisionDiplomacy, bots.DecisionTrade:
		return EventDealStruck
	case bots.DecisionDoNothing:
		return EventQuietTurn
	default:
		return EventQuietTurn
	}
}

// emotionShift describes the state an event pushes a bot toward and how much
// intensity it adds.
type emotionShift struct {
	toward    bots.EmotionName
	intensity float64
}

var emotionShifts = map[EmotionalEvent]emotionShift{
	EventBattleWon:    {toward: bots.EmotionTriumphant, intensity: 0.30},
	EventBattleLost:   {toward: bots.EmotionVengeful, intensity: 0.40},
	EventExpansion:    {toward: bots.EmotionConfident, intensity: 0.15},
	EventDealStruck:   {toward: bots.EmotionConfident, intensity: 0.10},
	EventDealRejected: {toward: bots.EmotionArrogant, intensity: 0.10},
	EventSetback:      {toward: bots.EmotionDesperate, intensity: 0.20},
	EventUnderAttack:  {toward: bots.EmotionFearful, intensity: 0.35},
}

// intensityDecay is subtracted from emotional intensity each quiet turn;
// states fade back to neutral without reinforcement.
const intensityDecay = 0.10

// ApplyEmotionalEvent shifts an emotional state toward the event's target
// state. Matching states deepen; conflicting states weaken first, flipping
// once drained.
func ApplyEmotionalEvent(state bots.EmotionalState, event EmotionalEvent) bots.EmotionalState {
	shift, ok := emotionShifts[event]
	if !ok {
		// Quiet turns fade the current state.
		state.Intensity -= intensityDecay
		if state.Intensity <= 0 {
			return bots.NeutralState()
		}
		return state
	}

	if state.IsNeutral() || state.Name == shift.toward {
		state.Name = shift.toward
		state.Intensity += shift.intensity
		if state.Intensity > 1 {
			state.Intensity = 1
		}
		return state
	}

	// Opposing pull: weaken the current state; flip when it runs out.
	state.Intensity -= shift.intensity
	if state.Intensity <= 0 {
		state.Name = shift.toward
		state.Intensity = shift.intensity
	}
	return state
}

// feedbackOutcomes closes the loop after execution: each bot's emotion
// shifts from its own outcome, and attacked bot defenders record the attack
// in relationship memory. Feedback failures are best-effort only.
func (o *Orchestrator) feedbackOutcomes(g *Game, work []*botWork, turn int) {
	byEmpire := make(map[string]*bots.Bot, len(g.Bots))
	for _, b := range g.Bots {
		byEmpire[b.EmpireID] = b
	}

	for _, w := range work {
		event := outcomeEvent(w.result.DecisionType, w.result.Executed, w.result.Success)
		w.bot.Emotion = ApplyEmotionalEvent(w.bot.Emotion, event)

		// Defenders remember being attacked; grudges grow from here.
		atk, ok := w.decision.(bots.AttackDecision)
		if !ok || !w.result.Executed {
			continue
		}
		defender, isBot := byEmpire[atk.TargetID]
		if !isBot {
			continue
		}
		src := o.sourceFor(defender.EmpireID+"/memory", turn)
		rel := defender.Relationship(w.bot.EmpireID)
		rel.AddMemory(bots.EventAttackedMe, turn, src)
		if w.result.Success {
			rel.AddMemory(bots.EventCapturedMyPlanet, turn, src)
		}
		defender.Emotion = ApplyEmotionalEvent(defender.Emotion, EventUnderAttack)

		slog.Debug("attack remembered",
			"defender", defender.EmpireID,
			"attacker", w.bot.EmpireID,
			"net_score", rel.NetScore,
			"tier", bots.GetRelationshipTier(rel.NetScore))
	}
}
