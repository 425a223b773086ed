// Tier-1 decision generation — turns a bot's situation into a prompt, asks
// the model for one action, and maps the reply onto the decision union.
// Anything unparseable is an error; the orchestrator then falls back to the
// scripted engine.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/talgya/star-dominion/internal/bots"
	"github.com/talgya/star-dominion/internal/empire"
	"github.com/talgya/star-dominion/internal/engine"
)

const decisionSystem = `You are the strategic mind of an empire in a turn-based space conquest game.
Reply with a single JSON object and nothing else:
{"action": one of build_units|buy_planet|attack|diplomacy|trade|craft_component|accept_contract|purchase_black_market|covert_operation|fund_research|upgrade_units|do_nothing,
 "target_id": empire id when attacking or negotiating, else omit,
 "quantity": integer when building or trading, else omit}`

// defaultWait bounds how long one tier-1 decision may take before the
// scripted engine takes over.
const defaultWait = 10 * time.Second

// Decider implements the tier-1 decision path with a per-(empire, turn)
// response cache.
type Decider struct {
	Client *Client
	// Wait bounds each call; zero means defaultWait.
	Wait time.Duration

	mu    sync.Mutex
	cache map[string]bots.Decision
}

var _ engine.DecisionSource = (*Decider)(nil)

// NewDecider wraps a client. Returns nil when the client is disabled so the
// orchestrator skips the tier entirely.
func NewDecider(c *Client) *Decider {
	if !c.Enabled() {
		return nil
	}
	return &Decider{Client: c, cache: make(map[string]bots.Decision)}
}

// Decide asks the model for this bot's action. Cached replies are reused
// within the same turn.
func (d *Decider) Decide(ctx context.Context, in bots.DecisionInput) (bots.Decision, error) {
	key := fmt.Sprintf("%s/%d", in.Bot.EmpireID, in.Context.CurrentTurn)

	d.mu.Lock()
	if cached, ok := d.cache[key]; ok {
		d.mu.Unlock()
		return cached, nil
	}
	d.mu.Unlock()

	wait := d.Wait
	if wait <= 0 {
		wait = defaultWait
	}
	callCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	text, err := d.Client.Complete(callCtx, decisionSystem, buildPrompt(in), 200)
	if err != nil {
		return nil, err
	}

	decision, err := parseDecision(text, in)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.cache[key] = decision
	d.mu.Unlock()
	return decision, nil
}

func buildPrompt(in bots.DecisionInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Turn %d", in.Context.CurrentTurn)
	if in.Context.InProtection() {
		fmt.Fprintf(&b, " (protection active until turn %d, attacks forbidden)", in.Context.ProtectionTurns)
	}
	b.WriteString("\n")

	e := in.Empire
	fmt.Fprintf(&b, "Your empire: networth %d, planets %d, credits %d, population %d, military power %.0f\n",
		e.Networth, e.TotalPlanets(), e.Resources.Credits, e.Population, e.MilitaryPower())
	if in.Bot.Archetype != "" {
		fmt.Fprintf(&b, "Personality: %s\n", in.Bot.Archetype)
	}
	if !in.Bot.Emotion.IsNeutral() {
		fmt.Fprintf(&b, "Mood: %s (%.1f)\n", in.Bot.Emotion.Name, in.Bot.Emotion.Intensity)
	}

	grudges := in.Bot.GrudgeTargets()
	b.WriteString("Other empires:\n")
	for _, t := range in.Context.Targets {
		if t.ID == e.ID || t.IsEliminated {
			continue
		}
		fmt.Fprintf(&b, "- %s (%s): networth %d, power %.0f", t.Name, t.ID, t.Networth, t.MilitaryPower)
		if t.HasTreaty {
			b.WriteString(", treaty in force")
		}
		if grudges[t.ID] {
			b.WriteString(", you hold a grudge")
		}
		b.WriteString("\n")
	}
	b.WriteString("Choose one action.")
	return b.String()
}

// parseDecision maps the model's JSON reply onto the decision union.
func parseDecision(text string, in bots.DecisionInput) (bots.Decision, error) {
	// Tolerate replies wrapped in prose or code fences.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply")
	}

	var reply struct {
		Action   string `json:"action"`
		TargetID string `json:"target_id"`
		Quantity int64  `json:"quantity"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &reply); err != nil {
		return nil, fmt.Errorf("parse reply: %w", err)
	}

	if reply.Quantity < 0 {
		reply.Quantity = 0
	}

	switch bots.DecisionType(reply.Action) {
	case bots.DecisionBuildUnits:
		qty := reply.Quantity
		if qty <= 0 {
			qty = 1
		}
		return bots.BuildUnitsDecision{Unit: empire.UnitSoldier, Quantity: qty}, nil
	case bots.DecisionBuyPlanet:
		qty := reply.Quantity
		if qty <= 0 {
			qty = 1
		}
		return bots.BuyPlanetDecision{Planet: empire.PlanetUrban, Quantity: qty}, nil
	case bots.DecisionAttack:
		if in.Context.InProtection() || reply.TargetID == "" {
			return bots.DoNothingDecision{Reason: "tier 1 proposed invalid attack"}, nil
		}
		return bots.AttackDecision{
			TargetID: reply.TargetID,
			Forces:   halfForces(in.Empire.Units),
			Stance:   bots.StanceStandard,
		}, nil
	case bots.DecisionDiplomacy:
		if reply.TargetID == "" {
			return bots.DoNothingDecision{Reason: "tier 1 proposed treaty without target"}, nil
		}
		return bots.DiplomacyDecision{TargetID: reply.TargetID, Treaty: bots.TreatyNonAggression}, nil
	case bots.DecisionTrade:
		qty := reply.Quantity
		if qty <= 0 {
			qty = 100
		}
		return bots.TradeDecision{Commodity: empire.CommodityFood, Side: bots.TradeBuy, Quantity: qty}, nil
	case bots.DecisionFundResearch:
		return bots.FundResearchDecision{Amount: in.Empire.Resources.Credits / 10}, nil
	case bots.DecisionDoNothing:
		return bots.DoNothingDecision{Reason: "tier 1 passed"}, nil
	case bots.DecisionCraftComponent, bots.DecisionAcceptContract,
		bots.DecisionBlackMarket, bots.DecisionCovertOp, bots.DecisionUpgradeUnits:
		// Profile-driven actions stay with the scripted generator, which
		// knows the archetype's syndicate data.
		return nil, fmt.Errorf("action %q delegated to scripted engine", reply.Action)
	default:
		return nil, fmt.Errorf("unknown action %q", reply.Action)
	}
}

// halfForces commits half of each owned unit type.
func halfForces(units empire.Forces) empire.Forces {
	var f empire.Forces
	for t := empire.UnitType(0); t < empire.NumUnitTypes; t++ {
		f.SetCount(t, units.Count(t)/2)
	}
	if f.Soldiers == 0 && units.Soldiers > 0 {
		f.Soldiers = 1
	}
	return f
}
