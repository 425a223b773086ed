package bots

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/star-dominion/internal/empire"
)

func TestDeriveTell(t *testing.T) {
	attack := AttackDecision{TargetID: "e2", Forces: empire.Forces{Soldiers: 10}, Stance: StanceAllOut}

	t.Run("no archetype stays quiet", func(t *testing.T) {
		b := NewBot("e1", "", DifficultyMedium)
		require.Nil(t, DeriveTell(b, attack, 3, &scriptedSource{floats: []float64{0.0}}))
	})

	t.Run("nil decision stays quiet", func(t *testing.T) {
		b := NewBot("e1", ArchWarlord, DifficultyMedium)
		require.Nil(t, DeriveTell(b, nil, 3, &scriptedSource{}))
	})

	t.Run("tell rate gates emission", func(t *testing.T) {
		b := NewBot("e1", ArchTurtle, DifficultyMedium) // rate 0.1
		require.Nil(t, DeriveTell(b, attack, 3, &scriptedSource{floats: []float64{0.5}}))
		tell := DeriveTell(b, attack, 3, &scriptedSource{floats: []float64{0.05}, ints: []int{0}})
		require.NotNil(t, tell)
		require.Equal(t, TellSilent, tell.Style)
	})

	t.Run("attack tells carry target and warning window", func(t *testing.T) {
		b := NewBot("e1", ArchWarlord, DifficultyMedium) // warning 1-2
		tell := DeriveTell(b, attack, 7, &scriptedSource{floats: []float64{0.0}, ints: []int{1}})
		require.NotNil(t, tell)
		require.Equal(t, "e1", tell.EmpireID)
		require.Equal(t, 7, tell.Turn)
		require.Equal(t, "e2", tell.TargetID)
		require.Equal(t, DecisionAttack, tell.Hint)
		require.Equal(t, 2, tell.TurnsAhead)
		require.Contains(t, tell.Message, "ruin")
	})

	t.Run("misdirection hints at something else", func(t *testing.T) {
		b := NewBot("e1", ArchSchemer, DifficultyMedium)
		d := BuildUnitsDecision{Unit: 0, Quantity: 10}
		// First misdirect pick lands on the real action and is rerolled.
		tell := DeriveTell(b, d, 3, &scriptedSource{floats: []float64{0.0}, ints: []int{0, 1}})
		require.NotNil(t, tell)
		require.Equal(t, TellMisdirection, tell.Style)
		require.NotEqual(t, d.Type(), tell.Hint)
		require.Equal(t, DecisionBuyPlanet, tell.Hint)
	})
}
