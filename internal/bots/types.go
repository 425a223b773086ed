// Package bots implements the autonomous competitor engine: archetype
// behavior tables, the decaying memory and relationship model, emotional
// state, decision-weight adjustment, and concrete decision generation.
package bots

import (
	"github.com/talgya/star-dominion/internal/empire"
)

// Archetype is a bot's static behavioral profile tag, assigned at creation.
type Archetype string

const (
	ArchWarlord     Archetype = "warlord"
	ArchDiplomat    Archetype = "diplomat"
	ArchMerchant    Archetype = "merchant"
	ArchSchemer     Archetype = "schemer"
	ArchTurtle      Archetype = "turtle"
	ArchBlitzkrieg  Archetype = "blitzkrieg"
	ArchTechRush    Archetype = "tech_rush"
	ArchOpportunist Archetype = "opportunist"
)

// Archetypes lists every archetype tag. Registry validation iterates this.
var Archetypes = []Archetype{
	ArchWarlord, ArchDiplomat, ArchMerchant, ArchSchemer,
	ArchTurtle, ArchBlitzkrieg, ArchTechRush, ArchOpportunist,
}

// Difficulty is the bot difficulty tag.
type Difficulty string

const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyMedium    Difficulty = "medium"
	DifficultyHard      Difficulty = "hard"
	DifficultyNightmare Difficulty = "nightmare"
)

// DecisionType enumerates the twelve actions a bot can take in a turn.
type DecisionType string

const (
	DecisionBuildUnits     DecisionType = "build_units"
	DecisionBuyPlanet      DecisionType = "buy_planet"
	DecisionAttack         DecisionType = "attack"
	DecisionDiplomacy      DecisionType = "diplomacy"
	DecisionTrade          DecisionType = "trade"
	DecisionCraftComponent DecisionType = "craft_component"
	DecisionAcceptContract DecisionType = "accept_contract"
	DecisionBlackMarket    DecisionType = "purchase_black_market"
	DecisionCovertOp       DecisionType = "covert_operation"
	DecisionFundResearch   DecisionType = "fund_research"
	DecisionUpgradeUnits   DecisionType = "upgrade_units"
	DecisionDoNothing      DecisionType = "do_nothing"
)

// decisionOrder is the fixed walk order for cumulative-roll selection.
// The order is part of the engine contract: changing it changes which
// boundary rolls map to which type.
var decisionOrder = []DecisionType{
	DecisionBuildUnits,
	DecisionBuyPlanet,
	DecisionDiplomacy,
	DecisionAttack,
	DecisionTrade,
	DecisionCraftComponent,
	DecisionCovertOp,
	DecisionFundResearch,
	DecisionUpgradeUnits,
	DecisionAcceptContract,
	DecisionBlackMarket,
	DecisionDoNothing,
}

// DecisionOrder returns the fixed selection walk order.
func DecisionOrder() []DecisionType {
	out := make([]DecisionType, len(decisionOrder))
	copy(out, decisionOrder)
	return out
}

// DecisionWeights maps each decision type to its selection probability.
// A valid vector has no negative entries and sums to 1.0 within 1e-3.
type DecisionWeights map[DecisionType]float64

// Clone returns an independent copy of the vector.
func (w DecisionWeights) Clone() DecisionWeights {
	out := make(DecisionWeights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// Sum returns the total probability mass.
func (w DecisionWeights) Sum() float64 {
	var s float64
	for _, v := range w {
		s += v
	}
	return s
}

// Normalize scales the vector in place so it sums to 1.0. A zero vector is
// left untouched.
func (w DecisionWeights) Normalize() {
	s := w.Sum()
	if s <= 0 {
		return
	}
	for k, v := range w {
		w[k] = v / s
	}
}

// EmpireTarget is the read-only snapshot the decision engine targets against.
// Rebuilt every turn from authoritative empire state.
type EmpireTarget struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Networth      int64   `json:"networth"`
	Planets       int64   `json:"planets"`
	IsBot         bool    `json:"is_bot"`
	IsEliminated  bool    `json:"is_eliminated"`
	MilitaryPower float64 `json:"military_power"`
	HasTreaty     bool    `json:"has_treaty"`
}

// SnapshotTarget builds a targeting snapshot from an empire, marking whether
// the observing bot holds a treaty with it.
func SnapshotTarget(e *empire.Empire, hasTreaty bool) EmpireTarget {
	return EmpireTarget{
		ID:            e.ID,
		Name:          e.Name,
		Networth:      e.Networth,
		Planets:       e.TotalPlanets(),
		IsBot:         e.IsBot,
		IsEliminated:  e.IsEliminated,
		MilitaryPower: e.MilitaryPower(),
		HasTreaty:     hasTreaty,
	}
}

// Bot holds the per-bot decision state carried between turns.
type Bot struct {
	EmpireID   string
	Archetype  Archetype // empty = no archetype, base weights apply
	Difficulty Difficulty

	Emotion EmotionalState

	// Relationships is keyed by target empire ID; entries are created lazily
	// on first interaction and never deleted.
	Relationships map[string]*RelationshipMemory
}

// NewBot creates a bot for an empire.
func NewBot(empireID string, arch Archetype, diff Difficulty) *Bot {
	return &Bot{
		EmpireID:      empireID,
		Archetype:     arch,
		Difficulty:    diff,
		Emotion:       NeutralState(),
		Relationships: make(map[string]*RelationshipMemory),
	}
}

// Relationship returns the memory record for a target empire, creating it on
// first interaction.
func (b *Bot) Relationship(targetID string) *RelationshipMemory {
	rel, ok := b.Relationships[targetID]
	if !ok {
		rel = &RelationshipMemory{TargetEmpireID: targetID}
		b.Relationships[targetID] = rel
	}
	return rel
}

// GrudgeTargets returns the IDs of empires against which this bot holds at
// least one permanent scar.
func (b *Bot) GrudgeTargets() map[string]bool {
	grudges := make(map[string]bool)
	for id, rel := range b.Relationships {
		if rel.HasPermanentScar() {
			grudges[id] = true
		}
	}
	return grudges
}

// TreatyType enumerates the treaty proposals bots can make.
type TreatyType string

const (
	TreatyNonAggression TreatyType = "non_aggression"
	TreatyAlliance      TreatyType = "alliance"
)

// TradeSide is the direction of a market order.
type TradeSide string

const (
	TradeBuy  TradeSide = "buy"
	TradeSell TradeSide = "sell"
)

// AttackStance tunes how committed forces fight.
type AttackStance string

const (
	StanceStandard   AttackStance = "standard"
	StanceAllOut     AttackStance = "all_out"
	StanceProbing    AttackStance = "probing"
	StanceCautious   AttackStance = "cautious"
)

// Decision is the tagged union of the twelve bot actions. Exactly one
// concrete variant backs each value; the executor switches exhaustively.
type Decision interface {
	Type() DecisionType
	isDecision()
}

// BuildUnitsDecision orders a quantity of one unit type.
type BuildUnitsDecision struct {
	Unit     empire.UnitType
	Quantity int64
}

// BuyPlanetDecision purchases planets of one type.
type BuyPlanetDecision struct {
	Planet   empire.PlanetType
	Quantity int64
}

// AttackDecision commits forces against a target empire.
type AttackDecision struct {
	TargetID string
	Forces   empire.Forces
	Stance   AttackStance
}

// DiplomacyDecision proposes a treaty to a target empire.
type DiplomacyDecision struct {
	TargetID string
	Treaty   TreatyType
}

// TradeDecision places a market order for one commodity.
type TradeDecision struct {
	Commodity empire.Commodity
	Side      TradeSide
	Quantity  int64
}

// CraftComponentDecision crafts one component from the archetype's focus list.
type CraftComponentDecision struct {
	Component string
}

// AcceptContractDecision takes a Syndicate contract at a risk tier.
type AcceptContractDecision struct {
	RiskTier string
}

// BlackMarketDecision spends a credit budget on the black market.
type BlackMarketDecision struct {
	Budget int64
}

// CovertOpDecision runs a covert operation against a target empire.
type CovertOpDecision struct {
	TargetID  string
	Operation string
}

// FundResearchDecision invests credits into research.
type FundResearchDecision struct {
	Amount int64
}

// UpgradeUnitsDecision raises the unit tech level.
type UpgradeUnitsDecision struct {
	Amount int64
}

// DoNothingDecision is the universal fallback action.
type DoNothingDecision struct {
	Reason string
}

func (BuildUnitsDecision) Type() DecisionType     { return DecisionBuildUnits }
func (BuyPlanetDecision) Type() DecisionType      { return DecisionBuyPlanet }
func (AttackDecision) Type() DecisionType         { return DecisionAttack }
func (DiplomacyDecision) Type() DecisionType      { return DecisionDiplomacy }
func (TradeDecision) Type() DecisionType          { return DecisionTrade }
func (CraftComponentDecision) Type() DecisionType { return DecisionCraftComponent }
func (AcceptContractDecision) Type() DecisionType { return DecisionAcceptContract }
func (BlackMarketDecision) Type() DecisionType    { return DecisionBlackMarket }
func (CovertOpDecision) Type() DecisionType       { return DecisionCovertOp }
func (FundResearchDecision) Type() DecisionType   { return DecisionFundResearch }
func (UpgradeUnitsDecision) Type() DecisionType   { return DecisionUpgradeUnits }
func (DoNothingDecision) Type() DecisionType      { return DecisionDoNothing }

func (BuildUnitsDecision) isDecision()     {}
func (BuyPlanetDecision) isDecision()      {}
func (AttackDecision) isDecision()         {}
func (DiplomacyDecision) isDecision()      {}
func (TradeDecision) isDecision()          {}
func (CraftComponentDecision) isDecision() {}
func (AcceptContractDecision) isDecision() {}
func (BlackMarketDecision) isDecision()    {}
func (CovertOpDecision) isDecision()       {}
func (FundResearchDecision) isDecision()   {}
func (UpgradeUnitsDecision) isDecision()   {}
func (DoNothingDecision) isDecision()      {}
