// Turn orchestration — an explicit pipeline per turn: load bots and targets,
// generate decisions in parallel, emit tells, execute non-attacks in
// parallel, then execute attacks sequentially in ascending-networth order so
// a weaker empire always resolves before a stronger one can eliminate it.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/talgya/star-dominion/internal/bots"
	"github.com/talgya/star-dominion/internal/empire"
	"github.com/talgya/star-dominion/internal/entropy"
)

// defaultParallelism bounds the decision-generation and non-attack worker
// pool when the orchestrator is not configured otherwise.
const defaultParallelism = 8

// Game is the shared state one orchestrator instance drives.
type Game struct {
	ID              string
	Turn            int
	ProtectionTurns int

	Empires map[string]*empire.Empire
	Bots    []*bots.Bot

	mu sync.RWMutex
}

// Empire returns the empire for an ID, or nil.
func (g *Game) Empire(id string) *empire.Empire {
	return g.Empires[id]
}

// RLock takes a read lock on game state. Observers (the HTTP API) hold it
// while reading so a concurrently running turn cannot mutate underneath them.
func (g *Game) RLock() { g.mu.RLock() }

// RUnlock releases the read lock.
func (g *Game) RUnlock() { g.mu.RUnlock() }

// Orchestrator runs bot turns against the collaborating services.
type Orchestrator struct {
	Combat    CombatService
	Diplomacy DiplomacyService
	Market    MarketService
	Syndicate SyndicateService
	Store     Store
	Tells     TellSink

	// Tier1 is the optional LLM-backed decision path. Nil or failing calls
	// fall back to the scripted generator.
	Tier1 DecisionSource

	// Entropy builds the per-bot random source for a turn. Nil uses the
	// process default.
	Entropy func(empireID string, turn int) entropy.Source

	// Parallelism bounds concurrent decision generation and non-attack
	// execution. Zero means defaultParallelism.
	Parallelism int
}

func (o *Orchestrator) parallelism() int {
	if o.Parallelism > 0 {
		return o.Parallelism
	}
	return defaultParallelism
}

func (o *Orchestrator) sourceFor(empireID string, turn int) entropy.Source {
	if o.Entropy != nil {
		return o.Entropy(empireID, turn)
	}
	return entropy.Default()
}

// botWork pairs a bot with its generated decision during a turn.
type botWork struct {
	bot      *bots.Bot
	emp      *empire.Empire
	decision bots.Decision
	networth int64 // snapshot taken before execution, used for attack sort
	result   BotTurnResult
}

// RunTurn executes one full turn. It always returns a report with one result
// per active bot; per-bot failures are isolated and never abort the batch.
func (o *Orchestrator) RunTurn(ctx context.Context, g *Game) *TurnReport {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Turn++
	turn := g.Turn

	// Init: active bots and the shared read-only target list.
	work := make([]*botWork, 0, len(g.Bots))
	for _, b := range g.Bots {
		e := g.Empire(b.EmpireID)
		if e == nil || e.IsEliminated {
			continue
		}
		work = append(work, &botWork{bot: b, emp: e, networth: e.Networth})
	}

	slog.Debug("turn started", "game", g.ID, "turn", turn, "bots", len(work))

	o.generateDecisions(work, g, turn)
	o.emitTells(ctx, g, work, turn)

	// Partition attacks from everything else.
	var attacks, others []*botWork
	for _, w := range work {
		if w.decision != nil && w.decision.Type() == bots.DecisionAttack {
			attacks = append(attacks, w)
		} else {
			others = append(others, w)
		}
	}

	o.executeNonAttacks(ctx, g, others, turn)

	// Weak-first initiative: ascending networth from the pre-execution
	// snapshot. The order is fixed here and never re-sorted mid-turn.
	sort.SliceStable(attacks, func(i, j int) bool {
		return attacks[i].networth < attacks[j].networth
	})
	for _, w := range attacks {
		o.executeAttack(ctx, g, w, turn)
	}

	o.feedbackOutcomes(g, work, turn)

	report := &TurnReport{GameID: g.ID, Turn: turn, Results: make([]BotTurnResult, 0, len(work))}
	for _, w := range work {
		report.Results = append(report.Results, w.result)
	}

	o.persistTurn(ctx, g, report, work)

	slog.Debug("turn finished", "game", g.ID, "turn", turn,
		"attacks", len(attacks), "non_attacks", len(others))
	return report
}

// generateDecisions runs the decision engine for every bot independently and
// in parallel. Each bot reads only its own state plus the shared target
// list; a panic in one bot becomes a do_nothing failure entry.
func (o *Orchestrator) generateDecisions(work []*botWork, g *Game, turn int) {
	var grp errgroup.Group
	grp.SetLimit(o.parallelism())

	for _, w := range work {
		grp.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("bot decision panicked", "empire", w.bot.EmpireID, "panic", r)
					w.decision = bots.DoNothingDecision{Reason: "decision failure"}
					w.result = BotTurnResult{
						EmpireID:     w.bot.EmpireID,
						DecisionType: bots.DecisionDoNothing,
						Decision:     w.decision,
						Error:        fmt.Sprintf("panic: %v", r),
					}
				}
			}()

			// Decay relationship memories up to the current turn.
			for _, rel := range w.bot.Relationships {
				rel.Refresh(turn)
			}

			in := bots.DecisionInput{
				Bot:    w.bot,
				Empire: w.emp,
				Context: bots.WeightContext{
					CurrentTurn:     turn,
					ProtectionTurns: g.ProtectionTurns,
					Targets:         o.targetsFor(g, w.bot),
				},
			}

			w.decision = o.decide(in, turn)
			w.result = BotTurnResult{
				EmpireID:     w.bot.EmpireID,
				DecisionType: w.decision.Type(),
				Decision:     w.decision,
			}
			return nil
		})
	}
	grp.Wait()
}

// decide tries the tier-1 path first, falling back to the scripted engine on
// error or a nil decision.
func (o *Orchestrator) decide(in bots.DecisionInput, turn int) bots.Decision {
	if o.Tier1 != nil {
		d, err := o.Tier1.Decide(context.Background(), in)
		if err == nil && d != nil {
			return d
		}
		if err != nil {
			slog.Debug("tier 1 decision failed, falling back",
				"empire", in.Bot.EmpireID, "error", err)
		}
	}
	return bots.GenerateDecision(in, o.sourceFor(in.Bot.EmpireID, turn))
}

// targetsFor snapshots every non-eliminated empire for a bot, with its
// treaty flags.
func (o *Orchestrator) targetsFor(g *Game, b *bots.Bot) []bots.EmpireTarget {
	targets := make([]bots.EmpireTarget, 0, len(g.Empires))
	for _, e := range g.Empires {
		if e.IsEliminated {
			continue
		}
		hasTreaty := false
		if o.Diplomacy != nil && e.ID != b.EmpireID {
			hasTreaty = o.Diplomacy.HasTreaty(b.EmpireID, e.ID)
		}
		targets = append(targets, bots.SnapshotTarget(e, hasTreaty))
	}
	// Stable order keeps uniform target rolls reproducible for a seed.
	sort.Slice(targets, func(i, j int) bool { return targets[i].ID < targets[j].ID })
	return targets
}

// emitTells derives and publishes signaling events. Failures are logged and
// swallowed; they never abort the turn.
func (o *Orchestrator) emitTells(ctx context.Context, g *Game, work []*botWork, turn int) {
	for _, w := range work {
		tell := bots.DeriveTell(w.bot, w.decision, turn, o.sourceFor(w.bot.EmpireID+"/tell", turn))
		if tell == nil {
			continue
		}
		w.result.Tell = tell
		if o.Tells != nil {
			if err := o.Tells.EmitTell(ctx, tell); err != nil {
				slog.Warn("tell emission failed", "empire", w.bot.EmpireID, "error", err)
			}
		}
		if o.Store != nil {
			if err := o.Store.SaveTell(ctx, g.ID, tell); err != nil {
				slog.Warn("tell persistence failed", "empire", w.bot.EmpireID, "error", err)
			}
		}
	}
}

// executeNonAttacks runs every non-attack decision in parallel; these only
// touch the acting bot's own resources.
func (o *Orchestrator) executeNonAttacks(ctx context.Context, g *Game, work []*botWork, turn int) {
	var grp errgroup.Group
	grp.SetLimit(o.parallelism())

	for _, w := range work {
		grp.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("bot execution panicked", "empire", w.bot.EmpireID, "panic", r)
					w.result.Executed = false
					w.result.Error = fmt.Sprintf("panic: %v", r)
				}
			}()
			o.executeDecision(ctx, g, w, turn)
			return nil
		})
	}
	grp.Wait()
}

// executeDecision applies a non-attack decision. Resource insufficiency
// degrades to a skipped action, never an error; service failures become
// per-bot failure entries.
func (o *Orchestrator) executeDecision(ctx context.Context, g *Game, w *botWork, turn int) {
	e := w.emp
	switch d := w.decision.(type) {
	case bots.BuildUnitsDecision:
		cost := empire.UnitCost(d.Unit)
		total := empire.Resources{
			Credits: cost.Credits * d.Quantity,
			Food:    cost.Food * d.Quantity,
			Ore:     cost.Ore * d.Quantity,
			Fuel:    cost.Fuel * d.Quantity,
		}
		if err := e.Spend(total); err != nil {
			w.result.Error = err.Error()
			return
		}
		qty := bots.ApplyNightmareBonus(d.Quantity, w.bot.Difficulty)
		e.Units.SetCount(d.Unit, e.Units.Count(d.Unit)+qty)
		e.RecomputeNetworth()
		w.result.Executed = true
		w.result.Success = true

	case bots.BuyPlanetDecision:
		for i := int64(0); i < d.Quantity; i++ {
			price := empire.PlanetCost(d.Planet, e.TotalPlanets())
			if e.Resources.Credits < price {
				break
			}
			e.Resources.Credits -= price
			e.Planets[d.Planet]++
			w.result.Executed = true
			w.result.Success = true
		}
		e.RecomputeNetworth()

	case bots.DiplomacyDecision:
		if o.Diplomacy == nil {
			w.result.Error = "diplomacy service unavailable"
			return
		}
		res, err := o.Diplomacy.ProposeTreaty(ctx, e.ID, d.TargetID, d.Treaty, turn)
		w.result.Executed = true
		if err != nil {
			w.result.Error = err.Error()
			return
		}
		w.result.Success = res.Success
		w.result.Error = res.Error

	case bots.TradeDecision:
		if o.Market == nil {
			w.result.Error = "market service unavailable"
			return
		}
		var res MarketResult
		var err error
		if d.Side == bots.TradeBuy {
			res, err = o.Market.ExecuteBuyOrder(ctx, g.ID, e.ID, d.Commodity, d.Quantity, turn)
		} else {
			res, err = o.Market.ExecuteSellOrder(ctx, g.ID, e.ID, d.Commodity, d.Quantity, turn)
		}
		w.result.Executed = true
		if err != nil {
			w.result.Error = err.Error()
			return
		}
		w.result.Success = res.Success
		w.result.Error = res.Error
		if res.Success {
			e.RecomputeNetworth()
		}

	case bots.CraftComponentDecision:
		o.executeSyndicate(ctx, g, w, func() (SyndicateResult, error) {
			return o.Syndicate.CraftComponent(ctx, g.ID, e.ID, d.Component, turn)
		})

	case bots.AcceptContractDecision:
		o.executeSyndicate(ctx, g, w, func() (SyndicateResult, error) {
			return o.Syndicate.AcceptContract(ctx, g.ID, e.ID, d.RiskTier, turn)
		})

	case bots.BlackMarketDecision:
		o.executeSyndicate(ctx, g, w, func() (SyndicateResult, error) {
			return o.Syndicate.PurchaseBlackMarket(ctx, g.ID, e.ID, d.Budget, turn)
		})

	case bots.CovertOpDecision:
		// Covert intent is recorded now; resolution happens out of band.
		// Only the acting bot's credits move during this phase.
		const covertCost = 5000
		if e.Resources.Credits < covertCost {
			w.result.Error = "insufficient credits for covert operation"
			return
		}
		e.Resources.Credits -= covertCost
		e.RecomputeNetworth()
		w.result.Executed = true
		w.result.Success = true

	case bots.FundResearchDecision:
		if e.Resources.Credits < d.Amount {
			w.result.Error = "insufficient credits for research"
			return
		}
		e.Resources.Credits -= d.Amount
		e.ResearchPoints += bots.ApplyNightmareBonus(d.Amount/100, w.bot.Difficulty)
		e.RecomputeNetworth()
		w.result.Executed = true
		w.result.Success = true

	case bots.UpgradeUnitsDecision:
		if e.Resources.Credits < d.Amount {
			w.result.Error = "insufficient credits for upgrade"
			return
		}
		e.Resources.Credits -= d.Amount
		e.UnitTechLevel++
		e.RecomputeNetworth()
		w.result.Executed = true
		w.result.Success = true

	case bots.DoNothingDecision:
		w.result.Executed = true
		w.result.Success = true

	case bots.AttackDecision:
		// Partition routes attacks to the sequential executor; reaching this
		// branch is a pipeline bug.
		w.result.Error = "attack reached the parallel executor"

	default:
		w.result.Error = fmt.Sprintf("unhandled decision type %T", w.decision)
	}
}

func (o *Orchestrator) executeSyndicate(ctx context.Context, g *Game, w *botWork, call func() (SyndicateResult, error)) {
	if o.Syndicate == nil {
		w.result.Error = "syndicate service unavailable"
		return
	}
	res, err := call()
	w.result.Executed = true
	if err != nil {
		w.result.Error = err.Error()
		return
	}
	w.result.Success = res.Success
	w.result.Error = res.Error
	if res.Success {
		w.emp.RecomputeNetworth()
	}
}

// executeAttack resolves one attack. Runs strictly sequentially; earlier
// attacks may change later attackers' or defenders' state, but the queue
// order itself was fixed at sort time.
func (o *Orchestrator) executeAttack(ctx context.Context, g *Game, w *botWork, turn int) {
	d, ok := w.decision.(bots.AttackDecision)
	if !ok {
		w.result.Error = "attack executor received non-attack decision"
		return
	}

	e := w.emp
	if e.IsEliminated {
		w.result.Error = "attacker eliminated before resolving"
		return
	}
	defender := g.Empire(d.TargetID)
	if defender == nil || defender.IsEliminated {
		w.result.Error = "target no longer valid"
		return
	}
	if !e.Units.Covers(d.Forces) {
		// Holdings may have shrunk since decision time; degrade, don't error.
		w.result.Executed = true
		w.result.Error = "committed forces exceed holdings"
		return
	}
	if o.Combat == nil {
		w.result.Error = "combat service unavailable"
		return
	}

	res, err := o.Combat.ExecuteAttack(ctx, g.ID, e.ID, d.TargetID, d.Forces, d.Stance)
	w.result.Executed = true
	if err != nil {
		w.result.Error = err.Error()
		return
	}
	w.result.Success = res.Success
	w.result.Error = res.Error

	e.RecomputeNetworth()
	defender.RecomputeNetworth()
}

// persistTurn writes the turn's results and mutated empires. Persistence is
// fire-and-forget: failures are logged, never surfaced to the turn result.
func (o *Orchestrator) persistTurn(ctx context.Context, g *Game, report *TurnReport, work []*botWork) {
	if o.Store == nil {
		return
	}
	if err := o.Store.SaveTurnResults(ctx, g.ID, report.Turn, report.Results); err != nil {
		slog.Warn("turn result persistence failed", "game", g.ID, "turn", report.Turn, "error", err)
	}
	for _, w := range work {
		if err := o.Store.SaveEmpire(ctx, g.ID, w.emp); err != nil {
			slog.Warn("empire persistence failed", "empire", w.emp.ID, "error", err)
		}
	}
}
