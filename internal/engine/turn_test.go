package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/star-dominion/internal/bots"
	"github.com/talgya/star-dominion/internal/empire"
	"github.com/talgya/star-dominion/internal/entropy"
)

// fakeCombat records attacker order and reports a fixed outcome.
type fakeCombat struct {
	order []string
	win   bool
}

func (f *fakeCombat) ExecuteAttack(ctx context.Context, gameID, attackerID, defenderID string, forces empire.Forces, stance bots.AttackStance) (CombatResult, error) {
	f.order = append(f.order, attackerID)
	return CombatResult{Success: f.win, Outcome: "scripted"}, nil
}

// scriptedDecisions returns a fixed decision per empire; missing entries fall
// back to the scripted generator.
type scriptedDecisions struct {
	decisions map[string]bots.Decision
	panics    map[string]bool
}

func (s *scriptedDecisions) Decide(ctx context.Context, in bots.DecisionInput) (bots.Decision, error) {
	if s.panics[in.Bot.EmpireID] {
		panic("scripted decision panic")
	}
	if d, ok := s.decisions[in.Bot.EmpireID]; ok {
		return d, nil
	}
	return nil, errors.New("no scripted decision")
}

type failingSink struct{ calls int }

func (f *failingSink) EmitTell(ctx context.Context, tell *bots.TellEvent) error {
	f.calls++
	return errors.New("sink down")
}

func newTestGame(networths map[string]int64) *Game {
	g := &Game{ID: "g1", ProtectionTurns: 0, Empires: make(map[string]*empire.Empire)}
	for id, nw := range networths {
		e := &empire.Empire{
			ID: id, Name: id, Networth: nw, Population: 1000, IsBot: true,
			Resources: empire.Resources{Credits: 100000, Food: 1000, Ore: 1000, Fuel: 1000},
			Units:     empire.Forces{Soldiers: 100},
		}
		e.Planets[empire.PlanetUrban] = 3
		g.Empires[id] = e
		g.Bots = append(g.Bots, bots.NewBot(id, bots.ArchWarlord, bots.DifficultyMedium))
	}
	return g
}

func seededEntropy(empireID string, turn int) entropy.Source {
	return entropy.NewSeeded(uint64(len(empireID)*1000 + turn))
}

func TestRunTurnWeakFirstAttackOrdering(t *testing.T) {
	g := newTestGame(map[string]int64{"weak": 1000, "strong": 5000, "prey": 3000})
	fc := &fakeCombat{win: false}

	forces := empire.Forces{Soldiers: 10}
	orch := &Orchestrator{
		Combat:  fc,
		Entropy: seededEntropy,
		Tier1: &scriptedDecisions{decisions: map[string]bots.Decision{
			"weak":   bots.AttackDecision{TargetID: "prey", Forces: forces, Stance: bots.StanceStandard},
			"strong": bots.AttackDecision{TargetID: "prey", Forces: forces, Stance: bots.StanceStandard},
			"prey":   bots.DoNothingDecision{Reason: "holding"},
		}},
	}

	report := orch.RunTurn(context.Background(), g)
	require.Len(t, report.Results, 3)
	require.Equal(t, []string{"weak", "strong"}, fc.order,
		"lower networth resolves first")
}

func TestRunTurnPanicIsolation(t *testing.T) {
	g := newTestGame(map[string]int64{"a": 1000, "b": 2000})
	orch := &Orchestrator{
		Entropy: seededEntropy,
		Tier1: &scriptedDecisions{
			panics: map[string]bool{"a": true},
			decisions: map[string]bots.Decision{
				"b": bots.DoNothingDecision{Reason: "holding"},
			},
		},
	}

	report := orch.RunTurn(context.Background(), g)
	require.Len(t, report.Results, 2)

	byID := make(map[string]BotTurnResult)
	for _, r := range report.Results {
		byID[r.EmpireID] = r
	}
	require.Equal(t, bots.DecisionDoNothing, byID["a"].DecisionType)
	require.Contains(t, byID["a"].Error, "panic")
	require.True(t, byID["b"].Success)
	require.Empty(t, byID["b"].Error)
}

func TestRunTurnProtectionBlocksAttacks(t *testing.T) {
	for seed := 1; seed <= 30; seed++ {
		g := newTestGame(map[string]int64{"a": 1000, "b": 2000, "c": 3000})
		g.ProtectionTurns = 5
		fc := &fakeCombat{}
		orch := &Orchestrator{
			Combat: fc,
			Entropy: func(empireID string, turn int) entropy.Source {
				return entropy.NewSeeded(uint64(seed*10000 + len(empireID)*100 + turn))
			},
		}

		report := orch.RunTurn(context.Background(), g)
		for _, r := range report.Results {
			require.NotEqual(t, bots.DecisionAttack, r.DecisionType, "seed %d", seed)
		}
		require.Empty(t, fc.order)
	}
}

func TestRunTurnTellFailuresSwallowed(t *testing.T) {
	g := newTestGame(map[string]int64{"a": 1000, "b": 2000})
	sink := &failingSink{}
	orch := &Orchestrator{
		Tells: sink,
		// Constant-zero rolls guarantee the tell gate passes.
		Entropy: func(string, int) entropy.Source {
			return &zeroSource{}
		},
		Tier1: &scriptedDecisions{decisions: map[string]bots.Decision{
			"a": bots.DoNothingDecision{Reason: "holding"},
			"b": bots.DoNothingDecision{Reason: "holding"},
		}},
	}

	report := orch.RunTurn(context.Background(), g)
	require.Len(t, report.Results, 2)
	require.Positive(t, sink.calls, "tells were attempted")
	for _, r := range report.Results {
		require.True(t, r.Success)
	}
}

type zeroSource struct{}

func (zeroSource) Float64() float64 { return 0 }
func (zeroSource) IntN(n int) int   { return 0 }

func TestRunTurnSkipsEliminated(t *testing.T) {
	g := newTestGame(map[string]int64{"a": 1000, "b": 2000})
	g.Empires["b"].IsEliminated = true

	orch := &Orchestrator{
		Entropy: seededEntropy,
		Tier1: &scriptedDecisions{decisions: map[string]bots.Decision{
			"a": bots.DoNothingDecision{Reason: "holding"},
		}},
	}
	report := orch.RunTurn(context.Background(), g)
	require.Len(t, report.Results, 1)
	require.Equal(t, "a", report.Results[0].EmpireID)
}

func TestExecuteDecisionBuildUnits(t *testing.T) {
	g := newTestGame(map[string]int64{"a": 1000})
	e := g.Empires["a"]
	orch := &Orchestrator{}

	t.Run("nightmare bonus applies after payment", func(t *testing.T) {
		bot := bots.NewBot("a", bots.ArchWarlord, bots.DifficultyNightmare)
		w := &botWork{bot: bot, emp: e,
			decision: bots.BuildUnitsDecision{Unit: empire.UnitSoldier, Quantity: 100}}
		before := e.Resources.Credits

		orch.executeDecision(context.Background(), g, w, 1)
		require.True(t, w.result.Success)
		require.EqualValues(t, before-100*100, e.Resources.Credits)
		require.EqualValues(t, 100+125, e.Units.Soldiers)
	})

	t.Run("insufficient funds degrade to a skipped action", func(t *testing.T) {
		bot := bots.NewBot("a", bots.ArchWarlord, bots.DifficultyMedium)
		w := &botWork{bot: bot, emp: e,
			decision: bots.BuildUnitsDecision{Unit: empire.UnitStation, Quantity: 1000000}}
		orch.executeDecision(context.Background(), g, w, 1)
		require.False(t, w.result.Executed)
		require.NotEmpty(t, w.result.Error)
	})
}

func TestExecuteAttackValidation(t *testing.T) {
	g := newTestGame(map[string]int64{"a": 1000, "b": 2000})
	fc := &fakeCombat{win: true}
	orch := &Orchestrator{Combat: fc}
	bot := bots.NewBot("a", bots.ArchWarlord, bots.DifficultyMedium)

	t.Run("overcommitted forces degrade", func(t *testing.T) {
		w := &botWork{bot: bot, emp: g.Empires["a"],
			decision: bots.AttackDecision{TargetID: "b", Forces: empire.Forces{Soldiers: 9999}}}
		orch.executeAttack(context.Background(), g, w, 1)
		require.True(t, w.result.Executed)
		require.False(t, w.result.Success)
		require.Contains(t, w.result.Error, "exceed holdings")
		require.Empty(t, fc.order, "combat service never called")
	})

	t.Run("invalid target degrades", func(t *testing.T) {
		w := &botWork{bot: bot, emp: g.Empires["a"],
			decision: bots.AttackDecision{TargetID: "ghost", Forces: empire.Forces{Soldiers: 1}}}
		orch.executeAttack(context.Background(), g, w, 1)
		require.False(t, w.result.Success)
		require.Contains(t, w.result.Error, "target")
	})

	t.Run("valid attack reaches the service", func(t *testing.T) {
		w := &botWork{bot: bot, emp: g.Empires["a"],
			decision: bots.AttackDecision{TargetID: "b", Forces: empire.Forces{Soldiers: 10}}}
		orch.executeAttack(context.Background(), g, w, 1)
		require.True(t, w.result.Success)
		require.Equal(t, []string{"a"}, fc.order)
	})
}

func TestTargetsForSortedAndAnnotated(t *testing.T) {
	g := newTestGame(map[string]int64{"c": 3000, "a": 1000, "b": 2000})
	g.Empires["b"].IsEliminated = true

	orch := &Orchestrator{}
	targets := orch.targetsFor(g, g.Bots[0])

	var ids []string
	for _, tgt := range targets {
		ids = append(ids, tgt.ID)
	}
	require.Equal(t, []string{"a", "c"}, ids, "sorted, eliminated excluded")
}
