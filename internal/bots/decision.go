// Decision generation — rolls a decision type from the adjusted weight
// vector, then synthesizes a concrete decision for that type. The generator
// never fails: every unreachable branch degrades to do_nothing.
package bots

import (
	"math"

	"github.com/talgya/star-dominion/internal/empire"
	"github.com/talgya/star-dominion/internal/entropy"
)

// grudgePriorityChance is the probability that an attack prioritizes a
// permanent-grudge target over the difficulty-driven selector.
const grudgePriorityChance = 0.70

// SelectDecisionType walks the fixed key order accumulating weights and
// returns the first key whose cumulative sum exceeds roll. Deterministic for
// a given (weights, roll). Falls back to do_nothing when floating-point
// rounding leaves roll at or beyond the final cumulative sum.
func SelectDecisionType(w DecisionWeights, roll float64) DecisionType {
	var cum float64
	for _, dt := range decisionOrder {
		cum += w[dt]
		if cum > roll {
			return dt
		}
	}
	return DecisionDoNothing
}

// DecisionInput carries everything the generator needs for one bot's turn.
type DecisionInput struct {
	Bot     *Bot
	Empire  *empire.Empire
	Context WeightContext
}

// GenerateDecision produces this turn's decision for a bot: weight
// adjustment, type selection, an optional difficulty-driven suboptimal
// override, then per-type synthesis.
func GenerateDecision(in DecisionInput, src entropy.Source) Decision {
	src = entropy.FromSource(src)

	weights := AdjustWeights(in.Bot, in.Context)
	dt := SelectDecisionType(weights, src.Float64())

	if ShouldMakeSuboptimalChoice(in.Bot.Difficulty, src.Float64()) {
		dt = randomValidType(in.Context, src)
	}

	switch dt {
	case DecisionBuildUnits:
		return in.generateBuildUnits(src)
	case DecisionBuyPlanet:
		return in.generateBuyPlanet(src)
	case DecisionAttack:
		return in.generateAttack(src)
	case DecisionDiplomacy:
		return in.generateDiplomacy(src)
	case DecisionTrade:
		return in.generateTrade()
	case DecisionCraftComponent:
		return in.generateCraftComponent(src)
	case DecisionAcceptContract:
		return in.generateAcceptContract(src)
	case DecisionBlackMarket:
		return in.generateBlackMarket(src)
	case DecisionCovertOp:
		return in.generateCovertOp(src)
	case DecisionFundResearch:
		return in.generateFundResearch(src)
	case DecisionUpgradeUnits:
		return in.generateUpgradeUnits(src)
	default:
		return DoNothingDecision{Reason: "selected"}
	}
}

// randomValidType picks a uniformly random decision type, excluding attack
// while protection is active.
func randomValidType(ctx WeightContext, src entropy.Source) DecisionType {
	valid := make([]DecisionType, 0, len(decisionOrder))
	for _, dt := range decisionOrder {
		if dt == DecisionAttack && ctx.InProtection() {
			continue
		}
		valid = append(valid, dt)
	}
	return valid[src.IntN(len(valid))]
}

func (in DecisionInput) generateBuildUnits(src entropy.Source) Decision {
	e := in.Empire

	var affordable []empire.UnitType
	for t := empire.UnitType(0); t < empire.NumUnitTypes; t++ {
		if e.CanAfford(empire.UnitCost(t)) {
			affordable = append(affordable, t)
		}
	}
	if len(affordable) == 0 {
		return DoNothingDecision{Reason: "no affordable units"}
	}

	unit := affordable[src.IntN(len(affordable))]
	maxQty := maxAffordableUnits(e, unit)
	if maxQty <= 0 {
		return DoNothingDecision{Reason: "no affordable units"}
	}

	// Spend a random 10-50% of the max affordable quantity.
	fraction := 0.10 + src.Float64()*0.40
	qty := int64(math.Floor(float64(maxQty) * fraction))
	if qty < 1 {
		qty = 1
	}
	qty = ApplySuboptimalQuantity(qty, 1, in.Bot.Difficulty, src.Float64())

	return BuildUnitsDecision{Unit: unit, Quantity: qty}
}

// maxAffordableUnits returns how many units of type t the empire could buy
// with its current stockpiles.
func maxAffordableUnits(e *empire.Empire, t empire.UnitType) int64 {
	cost := empire.UnitCost(t)
	limit := int64(math.MaxInt64)
	consider := func(have, per int64) {
		if per <= 0 {
			return
		}
		if n := have / per; n < limit {
			limit = n
		}
	}
	consider(e.Resources.Credits, cost.Credits)
	consider(e.Resources.Food, cost.Food)
	consider(e.Resources.Ore, cost.Ore)
	consider(e.Resources.Fuel, cost.Fuel)
	if limit == int64(math.MaxInt64) {
		return 0
	}
	return limit
}

func (in DecisionInput) generateBuyPlanet(src entropy.Source) Decision {
	e := in.Empire
	owned := e.TotalPlanets()

	var affordable []empire.PlanetType
	for t := empire.PlanetType(0); t < empire.NumPlanetTypes; t++ {
		if e.Resources.Credits >= empire.PlanetCost(t, owned) {
			affordable = append(affordable, t)
		}
	}
	if len(affordable) == 0 {
		return DoNothingDecision{Reason: "no affordable planets"}
	}

	planet := affordable[src.IntN(len(affordable))]
	maxQty := e.Resources.Credits / empire.PlanetCost(planet, owned)
	if maxQty < 1 {
		return DoNothingDecision{Reason: "no affordable planets"}
	}

	fraction := 0.10 + src.Float64()*0.40
	qty := int64(math.Floor(float64(maxQty) * fraction))
	if qty < 1 {
		qty = 1
	}
	qty = ApplySuboptimalQuantity(qty, 1, in.Bot.Difficulty, src.Float64())

	return BuyPlanetDecision{Planet: planet, Quantity: qty}
}

func (in DecisionInput) generateAttack(src entropy.Source) Decision {
	if in.Context.InProtection() {
		return DoNothingDecision{Reason: "protection period"}
	}
	e := in.Empire
	if e.Units.IsEmpty() {
		return DoNothingDecision{Reason: "no forces"}
	}

	var valid []EmpireTarget
	for _, t := range in.Context.Targets {
		if t.IsEliminated || t.ID == e.ID {
			continue
		}
		valid = append(valid, t)
	}
	if len(valid) == 0 {
		return DoNothingDecision{Reason: "no valid targets"}
	}

	grudges := in.Bot.GrudgeTargets()
	var target *EmpireTarget
	targetIsGrudge := false

	// Grudge targets take priority 70% of the time.
	if len(grudges) > 0 && src.Float64() < grudgePriorityChance {
		var held []EmpireTarget
		for _, t := range valid {
			if grudges[t.ID] {
				held = append(held, t)
			}
		}
		if len(held) > 0 {
			picked := held[src.IntN(len(held))]
			target = &picked
			targetIsGrudge = true
		}
	}
	if target == nil {
		target = SelectTarget(valid, in.Bot.Difficulty, src.Float64())
		if target == nil {
			return DoNothingDecision{Reason: "no valid targets"}
		}
		targetIsGrudge = grudges[target.ID]
	}

	// Archetype combat gate, overridden by grudges.
	if in.Bot.Archetype != "" && !targetIsGrudge {
		ownPower := e.MilitaryPower()
		if ownPower <= 0 {
			return DoNothingDecision{Reason: "no forces"}
		}
		ratio := target.MilitaryPower / ownPower
		if !WouldArchetypeAttack(in.Bot.Archetype, ratio) {
			return DoNothingDecision{Reason: "target too strong"}
		}
	}

	forces := in.allocateForces(src)
	if forces.IsEmpty() {
		return DoNothingDecision{Reason: "no forces"}
	}

	return AttackDecision{
		TargetID: target.ID,
		Forces:   forces,
		Stance:   in.attackStance(),
	}
}

// allocateForces commits a random fraction of each owned unit type: 30-70%
// normally, 30-80% for overwhelming-style archetypes. A token ground force
// is guaranteed when any soldiers exist.
func (in DecisionInput) allocateForces(src entropy.Source) empire.Forces {
	span := 0.40
	if in.Bot.Archetype != "" {
		if BehaviorFor(in.Bot.Archetype).Combat.Style == StyleOverwhelming {
			span = 0.50
		}
	}

	var pref map[string]float64
	if in.Bot.Archetype != "" {
		pref = BehaviorFor(in.Bot.Archetype).Combat.UnitPreference
	}

	var forces empire.Forces
	for t := empire.UnitType(0); t < empire.NumUnitTypes; t++ {
		owned := in.Empire.Units.Count(t)
		if owned == 0 {
			continue
		}
		fraction := 0.30 + src.Float64()*span
		if mult, ok := pref[empire.UnitName(t)]; ok {
			fraction *= mult
		}
		if fraction > 1 {
			fraction = 1
		}
		forces.SetCount(t, int64(math.Floor(float64(owned)*fraction)))
	}

	// Token ground force: at least one soldier if any exist.
	if forces.Soldiers == 0 && in.Empire.Units.Soldiers > 0 {
		forces.Soldiers = 1
	}
	return forces
}

func (in DecisionInput) attackStance() AttackStance {
	if in.Bot.Archetype == "" {
		return StanceStandard
	}
	switch BehaviorFor(in.Bot.Archetype).Combat.Style {
	case StyleOverwhelming:
		return StanceAllOut
	case StyleHitAndRun:
		return StanceProbing
	case StyleDefensive:
		return StanceCautious
	default:
		return StanceStandard
	}
}

func (in DecisionInput) generateDiplomacy(src entropy.Source) Decision {
	var candidates []EmpireTarget
	for _, t := range in.Context.Targets {
		if t.IsEliminated || t.ID == in.Empire.ID || t.HasTreaty {
			continue
		}
		candidates = append(candidates, t)
	}
	if len(candidates) == 0 {
		return DoNothingDecision{Reason: "no treaty candidates"}
	}

	allianceSeeking := 0.4
	if in.Bot.Archetype != "" {
		prof := BehaviorFor(in.Bot.Archetype).Diplomacy
		allianceSeeking = prof.AllianceSeeking
		// Aggressive archetypes mostly skip diplomacy outright.
		if allianceSeeking < 0.2 && src.Float64() < 0.6 {
			return DoNothingDecision{Reason: "not the diplomatic type"}
		}
	}

	if src.Float64() < allianceSeeking {
		// Alliances court the strongest remaining candidate.
		best := candidates[0]
		for _, t := range candidates[1:] {
			if t.Networth > best.Networth {
				best = t
			}
		}
		return DiplomacyDecision{TargetID: best.ID, Treaty: TreatyAlliance}
	}

	// Pacts go to the closest-networth peer.
	own := in.Empire.Networth
	best := candidates[0]
	bestDist := absInt64(best.Networth - own)
	for _, t := range candidates[1:] {
		if d := absInt64(t.Networth - own); d < bestDist {
			best = t
			bestDist = d
		}
	}
	return DiplomacyDecision{TargetID: best.ID, Treaty: TreatyNonAggression}
}

// Per-capita stock bands for trade decisions. Below needFactor× the bot
// buys the deficit; above surplusFactor× it sells the excess.
const (
	tradeNeedFactor    = 0.5
	tradeSurplusFactor = 2.0
)

// perCapitaNeed is the stock each commodity should hold per citizen.
var perCapitaNeed = [empire.NumCommodities]int64{
	empire.CommodityFood: 2,
	empire.CommodityOre:  1,
	empire.CommodityFuel: 1,
}

func (in DecisionInput) generateTrade() Decision {
	e := in.Empire

	// Buying always takes priority over selling.
	for c := empire.Commodity(0); c < empire.NumCommodities; c++ {
		need := e.Population * perCapitaNeed[c]
		if need <= 0 {
			continue
		}
		stock := e.Resources.Stock(c)
		floor := int64(float64(need) * tradeNeedFactor)
		if stock < floor {
			return TradeDecision{Commodity: c, Side: TradeBuy, Quantity: need - stock}
		}
	}
	for c := empire.Commodity(0); c < empire.NumCommodities; c++ {
		need := e.Population * perCapitaNeed[c]
		if need <= 0 {
			continue
		}
		stock := e.Resources.Stock(c)
		ceiling := int64(float64(need) * tradeSurplusFactor)
		if stock > ceiling {
			return TradeDecision{Commodity: c, Side: TradeSell, Quantity: stock - ceiling}
		}
	}
	return DoNothingDecision{Reason: "no trade thresholds crossed"}
}

func (in DecisionInput) generateCraftComponent(src entropy.Source) Decision {
	if in.Bot.Archetype == "" {
		return DoNothingDecision{Reason: "no archetype"}
	}
	focus := BehaviorFor(in.Bot.Archetype).Syndicate.CraftingFocus
	if len(focus) == 0 {
		return DoNothingDecision{Reason: "no crafting focus"}
	}
	return CraftComponentDecision{Component: focus[src.IntN(len(focus))]}
}

func (in DecisionInput) generateAcceptContract(src entropy.Source) Decision {
	if in.Bot.Archetype == "" {
		return DoNothingDecision{Reason: "no archetype"}
	}
	prof := BehaviorFor(in.Bot.Archetype).Syndicate
	if src.Float64() >= prof.Willingness {
		return DoNothingDecision{Reason: "declined contract"}
	}
	return AcceptContractDecision{RiskTier: prof.ContractRisk}
}

func (in DecisionInput) generateBlackMarket(src entropy.Source) Decision {
	if in.Bot.Archetype == "" {
		return DoNothingDecision{Reason: "no archetype"}
	}
	prof := BehaviorFor(in.Bot.Archetype).Syndicate
	if src.Float64() >= prof.Willingness {
		return DoNothingDecision{Reason: "avoided the black market"}
	}
	budget := int64(float64(in.Empire.Resources.Credits) * prof.BudgetShare)
	if budget <= 0 {
		return DoNothingDecision{Reason: "no black market budget"}
	}
	return BlackMarketDecision{Budget: budget}
}

var covertOperations = []string{"sabotage", "steal_technology", "infiltrate"}

func (in DecisionInput) generateCovertOp(src entropy.Source) Decision {
	var valid []EmpireTarget
	for _, t := range in.Context.Targets {
		if t.IsEliminated || t.ID == in.Empire.ID {
			continue
		}
		valid = append(valid, t)
	}
	target := SelectTarget(valid, in.Bot.Difficulty, src.Float64())
	if target == nil {
		return DoNothingDecision{Reason: "no covert targets"}
	}
	return CovertOpDecision{
		TargetID:  target.ID,
		Operation: covertOperations[src.IntN(len(covertOperations))],
	}
}

// minResearchSpend is the smallest credit pile worth investing from.
const minResearchSpend = 1000

func (in DecisionInput) generateFundResearch(src entropy.Source) Decision {
	credits := in.Empire.Resources.Credits
	if credits < minResearchSpend {
		return DoNothingDecision{Reason: "insufficient credits for research"}
	}
	fraction := 0.10 + src.Float64()*0.20
	return FundResearchDecision{Amount: int64(float64(credits) * fraction)}
}

func (in DecisionInput) generateUpgradeUnits(src entropy.Source) Decision {
	// Upgrade cost rises with the current tech level.
	cost := (in.Empire.UnitTechLevel + 1) * 20000
	if in.Empire.Resources.Credits < cost {
		return DoNothingDecision{Reason: "cannot afford upgrade"}
	}
	return UpgradeUnitsDecision{Amount: cost}
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
