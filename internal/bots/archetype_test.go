package bots

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/star-dominion/internal/entropy"
)

func TestArchetypeTablesComplete(t *testing.T) {
	for _, arch := range Archetypes {
		t.Run(string(arch), func(t *testing.T) {
			w := WeightsFor(arch)
			require.Len(t, w, len(decisionOrder))
			require.InDelta(t, 1.0, w.Sum(), weightTolerance)
			for _, dt := range decisionOrder {
				v, ok := w[dt]
				require.True(t, ok, "missing %s", dt)
				require.GreaterOrEqual(t, v, 0.0)
			}

			b := BehaviorFor(arch)
			require.NotEmpty(t, b.Combat.Style)
			require.NotEmpty(t, b.Tell.Style)
			require.Positive(t, b.Combat.AttackThreshold)
			require.LessOrEqual(t, b.Tell.WarningMin, b.Tell.WarningMax)
			require.NotEmpty(t, b.Syndicate.ContractRisk)
		})
	}
}

func TestWeightsForReturnsCopy(t *testing.T) {
	w := WeightsFor(ArchWarlord)
	w[DecisionAttack] = 99
	require.InDelta(t, 0.22, WeightsFor(ArchWarlord)[DecisionAttack], 1e-9)

	base := BaseWeights()
	base[DecisionAttack] = 99
	require.InDelta(t, 0.10, BaseWeights()[DecisionAttack], 1e-9)
}

func TestUnknownArchetypePanics(t *testing.T) {
	require.Panics(t, func() { BehaviorFor("galactic_gardener") })
	require.Panics(t, func() { WeightsFor("galactic_gardener") })
}

func TestWouldArchetypeAttack(t *testing.T) {
	// Warlord attacks up to 20% stronger enemies; turtle only far weaker ones.
	require.True(t, WouldArchetypeAttack(ArchWarlord, 1.19))
	require.False(t, WouldArchetypeAttack(ArchWarlord, 1.2))
	require.True(t, WouldArchetypeAttack(ArchTurtle, 0.29))
	require.False(t, WouldArchetypeAttack(ArchTurtle, 0.3))
	require.True(t, WouldArchetypeAttack(ArchBlitzkrieg, 1.39))
}

func TestPickArchetype(t *testing.T) {
	t.Run("uniform covers the registry", func(t *testing.T) {
		seen := make(map[Archetype]bool)
		src := entropy.NewSeeded(7)
		for i := 0; i < 500; i++ {
			arch := PickArchetype(src, nil)
			require.Contains(t, Archetypes, arch)
			seen[arch] = true
		}
		require.Len(t, seen, len(Archetypes))
	})

	t.Run("weighted skips zero-weight entries", func(t *testing.T) {
		weighted := make(map[Archetype]float64, len(Archetypes))
		for _, arch := range Archetypes {
			weighted[arch] = 0
		}
		weighted[ArchDiplomat] = 1
		src := entropy.NewSeeded(11)
		for i := 0; i < 100; i++ {
			require.Equal(t, ArchDiplomat, PickArchetype(src, weighted))
		}
	})
}

func TestValidateWeightsRejectsMalformed(t *testing.T) {
	w := BaseWeights()
	delete(w, DecisionTrade)
	require.Error(t, validateWeights(w))

	w = BaseWeights()
	w[DecisionTrade] = -0.01
	require.Error(t, validateWeights(w))

	w = BaseWeights()
	w[DecisionTrade] += 0.5
	require.Error(t, validateWeights(w))
}
