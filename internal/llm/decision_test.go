package llm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/star-dominion/internal/bots"
	"github.com/talgya/star-dominion/internal/empire"
)

func decisionInput(protectionTurns int) bots.DecisionInput {
	return bots.DecisionInput{
		Bot: bots.NewBot("e1", bots.ArchWarlord, bots.DifficultyMedium),
		Empire: &empire.Empire{
			ID:        "e1",
			Resources: empire.Resources{Credits: 100000},
			Units:     empire.Forces{Soldiers: 200, Fighters: 51},
		},
		Context: bots.WeightContext{CurrentTurn: 10, ProtectionTurns: protectionTurns},
	}
}

func TestParseDecision(t *testing.T) {
	in := decisionInput(0)

	t.Run("attack with target", func(t *testing.T) {
		d, err := parseDecision(`{"action":"attack","target_id":"e2"}`, in)
		require.NoError(t, err)
		atk, ok := d.(bots.AttackDecision)
		require.True(t, ok)
		require.Equal(t, "e2", atk.TargetID)
		require.Equal(t, bots.StanceStandard, atk.Stance)
		require.EqualValues(t, 100, atk.Forces.Soldiers)
		require.EqualValues(t, 25, atk.Forces.Fighters)
	})

	t.Run("attack during protection becomes a pass", func(t *testing.T) {
		protected := decisionInput(20)
		d, err := parseDecision(`{"action":"attack","target_id":"e2"}`, protected)
		require.NoError(t, err)
		require.IsType(t, bots.DoNothingDecision{}, d)
	})

	t.Run("attack without target becomes a pass", func(t *testing.T) {
		d, err := parseDecision(`{"action":"attack"}`, in)
		require.NoError(t, err)
		require.IsType(t, bots.DoNothingDecision{}, d)
	})

	t.Run("diplomacy needs a target", func(t *testing.T) {
		d, err := parseDecision(`{"action":"diplomacy","target_id":"e3"}`, in)
		require.NoError(t, err)
		dip, ok := d.(bots.DiplomacyDecision)
		require.True(t, ok)
		require.Equal(t, "e3", dip.TargetID)

		d, err = parseDecision(`{"action":"diplomacy"}`, in)
		require.NoError(t, err)
		require.IsType(t, bots.DoNothingDecision{}, d)
	})

	t.Run("JSON embedded in prose is tolerated", func(t *testing.T) {
		text := "Here is my choice:\n```json\n{\"action\":\"build_units\",\"quantity\":50}\n```"
		d, err := parseDecision(text, in)
		require.NoError(t, err)
		b, ok := d.(bots.BuildUnitsDecision)
		require.True(t, ok)
		require.EqualValues(t, 50, b.Quantity)
	})

	t.Run("negative quantity clamps to the default", func(t *testing.T) {
		d, err := parseDecision(`{"action":"build_units","quantity":-5}`, in)
		require.NoError(t, err)
		require.EqualValues(t, 1, d.(bots.BuildUnitsDecision).Quantity)

		d, err = parseDecision(`{"action":"trade","quantity":-5}`, in)
		require.NoError(t, err)
		require.EqualValues(t, 100, d.(bots.TradeDecision).Quantity)
	})

	t.Run("research funds a tenth of the treasury", func(t *testing.T) {
		d, err := parseDecision(`{"action":"fund_research"}`, in)
		require.NoError(t, err)
		require.EqualValues(t, 10000, d.(bots.FundResearchDecision).Amount)
	})

	t.Run("profile-driven actions are delegated", func(t *testing.T) {
		for _, action := range []string{
			"craft_component", "accept_contract", "purchase_black_market",
			"covert_operation", "upgrade_units",
		} {
			_, err := parseDecision(`{"action":"`+action+`"}`, in)
			require.Error(t, err, action)
			require.Contains(t, err.Error(), "delegated")
		}
	})

	t.Run("unknown action errors", func(t *testing.T) {
		_, err := parseDecision(`{"action":"surrender"}`, in)
		require.Error(t, err)
	})

	t.Run("no JSON object errors", func(t *testing.T) {
		_, err := parseDecision("I refuse to answer.", in)
		require.Error(t, err)
	})
}

func TestHalfForces(t *testing.T) {
	f := halfForces(empire.Forces{Soldiers: 200, Tanks: 7})
	require.EqualValues(t, 100, f.Soldiers)
	require.EqualValues(t, 3, f.Tanks)

	// Token soldier when rounding would commit nothing.
	f = halfForces(empire.Forces{Soldiers: 1})
	require.EqualValues(t, 1, f.Soldiers)

	require.True(t, halfForces(empire.Forces{}).IsEmpty())
}

func TestNewDeciderDisabled(t *testing.T) {
	require.Nil(t, NewDecider(nil))
	require.Nil(t, NewDecider(NewClient("")))
}

func TestBuildPromptMentionsSituation(t *testing.T) {
	in := decisionInput(20)
	in.Context.Targets = []bots.EmpireTarget{
		{ID: "e2", Name: "Rival", Networth: 5000, HasTreaty: true},
	}
	in.Bot.Emotion = bots.EmotionalState{Name: bots.EmotionVengeful, Intensity: 0.8}

	p := buildPrompt(in)
	require.Contains(t, p, "Turn 10")
	require.Contains(t, p, "attacks forbidden")
	require.Contains(t, p, "warlord")
	require.Contains(t, p, "vengeful")
	require.Contains(t, p, "Rival")
	require.Contains(t, p, "treaty in force")
}
