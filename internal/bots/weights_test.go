package bots

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// scarredBot returns a bot holding a permanent grudge against targetID.
func scarredBot(t *testing.T, targetID string) *Bot {
	t.Helper()
	b := NewBot("e1", ArchWarlord, DifficultyMedium)
	rel := b.Relationship(targetID)
	// Float64 0.0 < scar chance, and betrayal is negative with weight >= 30.
	rel.AddMemory(EventBetrayedAlliance, 1, &scriptedSource{floats: []float64{0.0}})
	require.True(t, rel.HasPermanentScar())
	return b
}

func TestAdjustWeightsAlwaysValid(t *testing.T) {
	archetypes := append([]Archetype{""}, Archetypes...)
	emotions := []EmotionalState{
		NeutralState(),
		{Name: EmotionVengeful, Intensity: 0.8},
		{Name: EmotionFearful, Intensity: 1.0},
		{Name: EmotionDesperate, Intensity: 0.5},
		{Name: EmotionArrogant, Intensity: 0.3},
	}
	targets := []EmpireTarget{{ID: "e2", Networth: 1000}}

	for _, arch := range archetypes {
		for _, protection := range []bool{true, false} {
			for _, emo := range emotions {
				name := fmt.Sprintf("%s/protection=%v/%s", arch, protection, emo.Name)
				t.Run(name, func(t *testing.T) {
					b := NewBot("e1", arch, DifficultyMedium)
					b.Emotion = emo
					ctx := WeightContext{CurrentTurn: 1, ProtectionTurns: 0, Targets: targets}
					if protection {
						ctx.ProtectionTurns = 5
					}

					w := AdjustWeights(b, ctx)
					require.InDelta(t, 1.0, w.Sum(), weightTolerance)
					for dt, v := range w {
						require.GreaterOrEqual(t, v, 0.0, "weight for %s", dt)
					}
					if protection {
						require.Zero(t, w[DecisionAttack])
					}
				})
			}
		}
	}
}

func TestProtectionBoundary(t *testing.T) {
	b := NewBot("e1", ArchWarlord, DifficultyMedium)

	last := WeightContext{CurrentTurn: 5, ProtectionTurns: 5}
	require.True(t, last.InProtection())
	require.Zero(t, AdjustWeights(b, last)[DecisionAttack])

	first := WeightContext{CurrentTurn: 6, ProtectionTurns: 5}
	require.False(t, first.InProtection())
	w := AdjustWeights(b, first)
	require.InDelta(t, archetypeWeights[ArchWarlord][DecisionAttack], w[DecisionAttack], 1e-9,
		"attack weight restored the turn after protection ends")
}

func TestRedistributeAttackWeight(t *testing.T) {
	w := BaseWeights()
	out := RedistributeAttackWeight(w)

	require.Zero(t, out[DecisionAttack])
	require.InDelta(t, 1.0, out.Sum(), weightTolerance)

	// Each surviving key scaled by 1 + attack/sumOthers.
	factor := 1 + 0.10/0.90
	require.InDelta(t, 0.25*factor, out[DecisionBuildUnits], 1e-9)
	require.InDelta(t, 0.05*factor, out[DecisionDoNothing], 1e-9)

	// Input untouched.
	require.InDelta(t, 0.10, w[DecisionAttack], 1e-9)
}

func TestRedistributeDegenerateAllAttack(t *testing.T) {
	w := DecisionWeights{DecisionAttack: 1.0}
	out := RedistributeAttackWeight(w)
	require.Zero(t, out[DecisionAttack])
	require.InDelta(t, 1.0, out[DecisionDoNothing], 1e-9)
}

func TestBoostAttackWeight(t *testing.T) {
	out := BoostAttackWeight(BaseWeights(), grudgeAttackBoost)
	require.InDelta(t, 1.0, out.Sum(), weightTolerance)
	require.InDelta(t, 0.12/1.02, out[DecisionAttack], 1e-9)
}

func TestGrudgeBoostsAttack(t *testing.T) {
	b := scarredBot(t, "e2")
	base := archetypeWeights[ArchWarlord][DecisionAttack]

	ctx := WeightContext{CurrentTurn: 10, ProtectionTurns: 5,
		Targets: []EmpireTarget{{ID: "e2", Networth: 1000}}}
	w := AdjustWeights(b, ctx)
	require.Greater(t, w[DecisionAttack], base)
	require.InDelta(t, 1.0, w.Sum(), weightTolerance)
}

func TestGrudgeIgnoredDuringProtection(t *testing.T) {
	b := scarredBot(t, "e2")
	ctx := WeightContext{CurrentTurn: 2, ProtectionTurns: 5,
		Targets: []EmpireTarget{{ID: "e2", Networth: 1000}}}
	require.Zero(t, AdjustWeights(b, ctx)[DecisionAttack])
}

func TestGrudgeRequiresLiveTarget(t *testing.T) {
	b := scarredBot(t, "e2")
	base := archetypeWeights[ArchWarlord][DecisionAttack]

	// Grudge target eliminated: no boost.
	ctx := WeightContext{CurrentTurn: 10, ProtectionTurns: 5,
		Targets: []EmpireTarget{{ID: "e2", IsEliminated: true}, {ID: "e3"}}}
	w := AdjustWeights(b, ctx)
	require.InDelta(t, base, w[DecisionAttack], 1e-9)
}
