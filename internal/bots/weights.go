// Weight adjustment engine — composes the archetype base vector, the
// protection-period attack redistribution, emotional modifiers, and the
// grudge boost into a fresh normalized probability vector. Static tables are
// never mutated; every stage returns a new vector.
package bots

// weightTolerance is the allowed deviation from 1.0 for a consumed vector.
const weightTolerance = 1e-3

// grudgeAttackBoost is the fractional attack-weight increase applied when a
// permanent-grudge target is in range.
const grudgeAttackBoost = 0.20

// WeightContext carries the inputs that reshape a bot's decision vector for
// one turn.
type WeightContext struct {
	CurrentTurn     int
	ProtectionTurns int
	Targets         []EmpireTarget
}

// InProtection reports whether the game-wide protection period is active.
func (c WeightContext) InProtection() bool {
	return c.CurrentTurn <= c.ProtectionTurns
}

// AdjustWeights produces the decision vector for a bot this turn. The result
// is always a valid probability vector: sum within 1e-3 of 1.0 and no
// negative entries.
func AdjustWeights(b *Bot, ctx WeightContext) DecisionWeights {
	w := WeightsFor(b.Archetype)

	if ctx.InProtection() {
		w = RedistributeAttackWeight(w)
	}

	if !b.Emotion.IsNeutral() {
		w = ApplyEmotionalModifiers(w, b.Emotion.Name, b.Emotion.Intensity)
	}

	if !ctx.InProtection() && b.hasGrudgeAmong(ctx.Targets) {
		w = BoostAttackWeight(w, grudgeAttackBoost)
	}

	return w
}

// RedistributeAttackWeight zeroes the attack weight and spreads it
// proportionally across the other eleven keys, preserving a sum of 1.0
// without reintroducing attack probability.
func RedistributeAttackWeight(w DecisionWeights) DecisionWeights {
	out := w.Clone()
	attack := out[DecisionAttack]
	if attack <= 0 {
		out[DecisionAttack] = 0
		return out
	}

	sumOthers := out.Sum() - attack
	out[DecisionAttack] = 0
	if sumOthers <= 0 {
		// Degenerate all-attack vector: fall back to doing nothing.
		out[DecisionDoNothing] = 1
		return out
	}

	factor := 1 + attack/sumOthers
	for k, v := range out {
		if k == DecisionAttack {
			continue
		}
		out[k] = v * factor
	}
	return out
}

// BoostAttackWeight raises the attack weight by the given fraction of its
// current value and renormalizes the full vector.
func BoostAttackWeight(w DecisionWeights, fraction float64) DecisionWeights {
	out := w.Clone()
	out[DecisionAttack] *= 1 + fraction
	out.Normalize()
	return out
}

// hasGrudgeAmong reports whether any live target is on the bot's permanent
// grudge list.
func (b *Bot) hasGrudgeAmong(targets []EmpireTarget) bool {
	if len(b.Relationships) == 0 {
		return false
	}
	grudges := b.GrudgeTargets()
	if len(grudges) == 0 {
		return false
	}
	for i := range targets {
		t := &targets[i]
		if t.IsEliminated || t.ID == b.EmpireID {
			continue
		}
		if grudges[t.ID] {
			return true
		}
	}
	return false
}
