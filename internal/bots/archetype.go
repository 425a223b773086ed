// Archetype registry — static behavioral profiles for the eight bot
// personalities. Tables are built once at package init, validated so every
// archetype tag resolves, and never mutated afterwards.
package bots

import (
	"fmt"

	"github.com/talgya/star-dominion/internal/entropy"
)

// CombatStyle tags how an archetype commits forces.
type CombatStyle string

const (
	StyleOverwhelming CombatStyle = "overwhelming"
	StyleMeasured     CombatStyle = "measured"
	StyleDefensive    CombatStyle = "defensive"
	StyleHitAndRun    CombatStyle = "hit_and_run"
)

// TellStyle tags how an archetype signals intentions.
type TellStyle string

const (
	TellDirect       TellStyle = "direct"
	TellCryptic      TellStyle = "cryptic"
	TellBoastful     TellStyle = "boastful"
	TellSilent       TellStyle = "silent"
	TellMisdirection TellStyle = "misdirection"
)

// Priorities weights the five strategic concerns. Values are relative, not
// normalized.
type Priorities struct {
	Military  float64
	Economy   float64
	Research  float64
	Diplomacy float64
	Covert    float64
}

// CombatProfile governs attack behavior.
type CombatProfile struct {
	Style CombatStyle

	// AttackThreshold is the enemy-to-own power ratio below which the
	// archetype is willing to attack. 1.2 means "attack anyone up to 20%
	// stronger than me"; 0.5 means "only attack targets half my strength".
	AttackThreshold float64

	RequireAllies      bool
	RetreatWillingness float64 // 0 = fights to the last, 1 = withdraws early

	// UnitPreference multiplies the committed fraction per unit type.
	UnitPreference map[string]float64
}

// DiplomacyProfile governs treaty behavior.
type DiplomacyProfile struct {
	AllianceSeeking   float64
	BaseTrust         float64
	BetrayalChance    float64
	TributeAcceptance float64
	MediatesConflicts bool
}

// TellProfile governs signaling behavior.
type TellProfile struct {
	TellRate float64 // probability a decision leaks a tell
	Style    TellStyle

	// Advance warning window in turns for telegraphed attacks.
	WarningMin int
	WarningMax int
}

// SyndicateProfile governs crafting and black-market engagement.
type SyndicateProfile struct {
	CraftingFocus []string // component keys the archetype prefers, in order
	Willingness   float64  // Bernoulli gate for contracts and black market
	BudgetShare   float64  // fraction of credits spent on a black-market buy
	ContractRisk  string   // preferred contract risk tier
}

// ArchetypeBehavior is the complete static profile for one archetype.
type ArchetypeBehavior struct {
	Priorities Priorities
	Combat     CombatProfile
	Diplomacy  DiplomacyProfile
	Tell       TellProfile
	Syndicate  SyndicateProfile
}

// baseWeights is the default decision vector for bots without an archetype.
var baseWeights = DecisionWeights{
	DecisionBuildUnits:     0.25,
	DecisionBuyPlanet:      0.12,
	DecisionAttack:         0.10,
	DecisionDiplomacy:      0.08,
	DecisionTrade:          0.08,
	DecisionDoNothing:      0.05,
	DecisionCraftComponent: 0.08,
	DecisionAcceptContract: 0.04,
	DecisionBlackMarket:    0.04,
	DecisionCovertOp:       0.06,
	DecisionFundResearch:   0.05,
	DecisionUpgradeUnits:   0.05,
}

// BaseWeights returns a copy of the default decision vector.
func BaseWeights() DecisionWeights { return baseWeights.Clone() }

// archetypeWeights holds the per-archetype decision vectors. Each sums to 1.0.
var archetypeWeights = map[Archetype]DecisionWeights{
	ArchWarlord: {
		DecisionBuildUnits:     0.28,
		DecisionBuyPlanet:      0.08,
		DecisionAttack:         0.22,
		DecisionDiplomacy:      0.03,
		DecisionTrade:          0.05,
		DecisionDoNothing:      0.02,
		DecisionCraftComponent: 0.07,
		DecisionAcceptContract: 0.04,
		DecisionBlackMarket:    0.05,
		DecisionCovertOp:       0.04,
		DecisionFundResearch:   0.04,
		DecisionUpgradeUnits:   0.08,
	},
	ArchDiplomat: {
		DecisionBuildUnits:     0.15,
		DecisionBuyPlanet:      0.14,
		DecisionAttack:         0.03,
		DecisionDiplomacy:      0.22,
		DecisionTrade:          0.12,
		DecisionDoNothing:      0.04,
		DecisionCraftComponent: 0.08,
		DecisionAcceptContract: 0.03,
		DecisionBlackMarket:    0.02,
		DecisionCovertOp:       0.04,
		DecisionFundResearch:   0.08,
		DecisionUpgradeUnits:   0.05,
	},
	ArchMerchant: {
		DecisionBuildUnits:     0.12,
		DecisionBuyPlanet:      0.18,
		DecisionAttack:         0.03,
		DecisionDiplomacy:      0.08,
		DecisionTrade:          0.24,
		DecisionDoNothing:      0.03,
		DecisionCraftComponent: 0.10,
		DecisionAcceptContract: 0.05,
		DecisionBlackMarket:    0.05,
		DecisionCovertOp:       0.02,
		DecisionFundResearch:   0.05,
		DecisionUpgradeUnits:   0.05,
	},
	ArchSchemer: {
		DecisionBuildUnits:     0.12,
		DecisionBuyPlanet:      0.10,
		DecisionAttack:         0.08,
		DecisionDiplomacy:      0.10,
		DecisionTrade:          0.06,
		DecisionDoNothing:      0.03,
		DecisionCraftComponent: 0.08,
		DecisionAcceptContract: 0.08,
		DecisionBlackMarket:    0.08,
		DecisionCovertOp:       0.18,
		DecisionFundResearch:   0.04,
		DecisionUpgradeUnits:   0.05,
	},
	ArchTurtle: {
		DecisionBuildUnits:     0.26,
		DecisionBuyPlanet:      0.14,
		DecisionAttack:         0.02,
		DecisionDiplomacy:      0.08,
		DecisionTrade:          0.10,
		DecisionDoNothing:      0.06,
		DecisionCraftComponent: 0.08,
		DecisionAcceptContract: 0.02,
		DecisionBlackMarket:    0.02,
		DecisionCovertOp:       0.03,
		DecisionFundResearch:   0.09,
		DecisionUpgradeUnits:   0.10,
	},
	ArchBlitzkrieg: {
		DecisionBuildUnits:     0.24,
		DecisionBuyPlanet:      0.06,
		DecisionAttack:         0.26,
		DecisionDiplomacy:      0.02,
		DecisionTrade:          0.04,
		DecisionDoNothing:      0.02,
		DecisionCraftComponent: 0.06,
		DecisionAcceptContract: 0.05,
		DecisionBlackMarket:    0.06,
		DecisionCovertOp:       0.05,
		DecisionFundResearch:   0.04,
		DecisionUpgradeUnits:   0.10,
	},
	ArchTechRush: {
		DecisionBuildUnits:     0.12,
		DecisionBuyPlanet:      0.12,
		DecisionAttack:         0.04,
		DecisionDiplomacy:      0.06,
		DecisionTrade:          0.08,
		DecisionDoNothing:      0.03,
		DecisionCraftComponent: 0.12,
		DecisionAcceptContract: 0.03,
		DecisionBlackMarket:    0.03,
		DecisionCovertOp:       0.04,
		DecisionFundResearch:   0.20,
		DecisionUpgradeUnits:   0.13,
	},
	ArchOpportunist: {
		DecisionBuildUnits:     0.18,
		DecisionBuyPlanet:      0.12,
		DecisionAttack:         0.12,
		DecisionDiplomacy:      0.08,
		DecisionTrade:          0.10,
		DecisionDoNothing:      0.03,
		DecisionCraftComponent: 0.07,
		DecisionAcceptContract: 0.07,
		DecisionBlackMarket:    0.06,
		DecisionCovertOp:       0.08,
		DecisionFundResearch:   0.04,
		DecisionUpgradeUnits:   0.05,
	},
}

// archetypeBehaviors maps each archetype to its static profile.
var archetypeBehaviors = map[Archetype]ArchetypeBehavior{
	ArchWarlord: {
		Priorities: Priorities{Military: 0.9, Economy: 0.4, Research: 0.3, Diplomacy: 0.1, Covert: 0.3},
		Combat: CombatProfile{
			Style:              StyleOverwhelming,
			AttackThreshold:    1.2,
			RequireAllies:      false,
			RetreatWillingness: 0.1,
			UnitPreference:     map[string]float64{"soldier": 1.3, "tank": 1.2, "cruiser": 1.1},
		},
		Diplomacy: DiplomacyProfile{AllianceSeeking: 0.1, BaseTrust: 0.2, BetrayalChance: 0.4, TributeAcceptance: 0.6, MediatesConflicts: false},
		Tell:      TellProfile{TellRate: 0.6, Style: TellBoastful, WarningMin: 1, WarningMax: 2},
		Syndicate: SyndicateProfile{
			CraftingFocus: []string{"targeting_array", "plasma_lance", "siege_driver"},
			Willingness:   0.5, BudgetShare: 0.15, ContractRisk: "high",
		},
	},
	ArchDiplomat: {
		Priorities: Priorities{Military: 0.3, Economy: 0.6, Research: 0.5, Diplomacy: 0.9, Covert: 0.2},
		Combat: CombatProfile{
			Style:              StyleDefensive,
			AttackThreshold:    0.5,
			RequireAllies:      true,
			RetreatWillingness: 0.7,
			UnitPreference:     map[string]float64{"station": 1.3, "carrier": 1.1},
		},
		Diplomacy: DiplomacyProfile{AllianceSeeking: 0.9, BaseTrust: 0.7, BetrayalChance: 0.05, TributeAcceptance: 0.3, MediatesConflicts: true},
		Tell:      TellProfile{TellRate: 0.3, Style: TellDirect, WarningMin: 2, WarningMax: 4},
		Syndicate: SyndicateProfile{
			CraftingFocus: []string{"envoy_beacon", "shield_lattice"},
			Willingness:   0.1, BudgetShare: 0.05, ContractRisk: "low",
		},
	},
	ArchMerchant: {
		Priorities: Priorities{Military: 0.2, Economy: 0.95, Research: 0.4, Diplomacy: 0.6, Covert: 0.2},
		Combat: CombatProfile{
			Style:              StyleDefensive,
			AttackThreshold:    0.4,
			RequireAllies:      true,
			RetreatWillingness: 0.8,
			UnitPreference:     map[string]float64{"fighter": 1.1, "station": 1.2},
		},
		Diplomacy: DiplomacyProfile{AllianceSeeking: 0.6, BaseTrust: 0.5, BetrayalChance: 0.1, TributeAcceptance: 0.8, MediatesConflicts: false},
		Tell:      TellProfile{TellRate: 0.4, Style: TellDirect, WarningMin: 2, WarningMax: 3},
		Syndicate: SyndicateProfile{
			CraftingFocus: []string{"cargo_expander", "trade_manifest", "refinery_core"},
			Willingness:   0.6, BudgetShare: 0.20, ContractRisk: "medium",
		},
	},
	ArchSchemer: {
		Priorities: Priorities{Military: 0.4, Economy: 0.5, Research: 0.4, Diplomacy: 0.5, Covert: 0.95},
		Combat: CombatProfile{
			Style:              StyleHitAndRun,
			AttackThreshold:    0.7,
			RequireAllies:      false,
			RetreatWillingness: 0.6,
			UnitPreference:     map[string]float64{"fighter": 1.3, "cruiser": 1.1},
		},
		Diplomacy: DiplomacyProfile{AllianceSeeking: 0.5, BaseTrust: 0.3, BetrayalChance: 0.6, TributeAcceptance: 0.5, MediatesConflicts: false},
		Tell:      TellProfile{TellRate: 0.5, Style: TellMisdirection, WarningMin: 1, WarningMax: 3},
		Syndicate: SyndicateProfile{
			CraftingFocus: []string{"cloak_module", "listening_post", "forged_credentials"},
			Willingness:   0.85, BudgetShare: 0.25, ContractRisk: "high",
		},
	},
	ArchTurtle: {
		Priorities: Priorities{Military: 0.6, Economy: 0.7, Research: 0.6, Diplomacy: 0.4, Covert: 0.1},
		Combat: CombatProfile{
			Style:              StyleDefensive,
			AttackThreshold:    0.3,
			RequireAllies:      true,
			RetreatWillingness: 0.9,
			UnitPreference:     map[string]float64{"station": 1.5, "tank": 1.2},
		},
		Diplomacy: DiplomacyProfile{AllianceSeeking: 0.4, BaseTrust: 0.6, BetrayalChance: 0.05, TributeAcceptance: 0.4, MediatesConflicts: true},
		Tell:      TellProfile{TellRate: 0.1, Style: TellSilent, WarningMin: 3, WarningMax: 5},
		Syndicate: SyndicateProfile{
			CraftingFocus: []string{"shield_lattice", "bunker_array"},
			Willingness:   0.15, BudgetShare: 0.05, ContractRisk: "low",
		},
	},
	ArchBlitzkrieg: {
		Priorities: Priorities{Military: 0.95, Economy: 0.3, Research: 0.3, Diplomacy: 0.05, Covert: 0.3},
		Combat: CombatProfile{
			Style:              StyleOverwhelming,
			AttackThreshold:    1.4,
			RequireAllies:      false,
			RetreatWillingness: 0.05,
			UnitPreference:     map[string]float64{"fighter": 1.4, "cruiser": 1.3, "soldier": 1.2},
		},
		Diplomacy: DiplomacyProfile{AllianceSeeking: 0.05, BaseTrust: 0.1, BetrayalChance: 0.5, TributeAcceptance: 0.2, MediatesConflicts: false},
		Tell:      TellProfile{TellRate: 0.7, Style: TellBoastful, WarningMin: 0, WarningMax: 1},
		Syndicate: SyndicateProfile{
			CraftingFocus: []string{"afterburner_kit", "plasma_lance"},
			Willingness:   0.6, BudgetShare: 0.20, ContractRisk: "high",
		},
	},
	ArchTechRush: {
		Priorities: Priorities{Military: 0.3, Economy: 0.5, Research: 0.95, Diplomacy: 0.4, Covert: 0.2},
		Combat: CombatProfile{
			Style:              StyleMeasured,
			AttackThreshold:    0.6,
			RequireAllies:      false,
			RetreatWillingness: 0.6,
			UnitPreference:     map[string]float64{"cruiser": 1.2, "carrier": 1.3},
		},
		Diplomacy: DiplomacyProfile{AllianceSeeking: 0.5, BaseTrust: 0.5, BetrayalChance: 0.1, TributeAcceptance: 0.5, MediatesConflicts: false},
		Tell:      TellProfile{TellRate: 0.2, Style: TellCryptic, WarningMin: 2, WarningMax: 4},
		Syndicate: SyndicateProfile{
			CraftingFocus: []string{"lab_module", "quantum_core", "refinery_core"},
			Willingness:   0.3, BudgetShare: 0.10, ContractRisk: "medium",
		},
	},
	ArchOpportunist: {
		Priorities: Priorities{Military: 0.5, Economy: 0.6, Research: 0.4, Diplomacy: 0.5, Covert: 0.5},
		Combat: CombatProfile{
			Style:              StyleHitAndRun,
			AttackThreshold:    0.8,
			RequireAllies:      false,
			RetreatWillingness: 0.5,
			UnitPreference:     map[string]float64{"fighter": 1.2, "tank": 1.1},
		},
		Diplomacy: DiplomacyProfile{AllianceSeeking: 0.5, BaseTrust: 0.4, BetrayalChance: 0.3, TributeAcceptance: 0.7, MediatesConflicts: false},
		Tell:      TellProfile{TellRate: 0.35, Style: TellCryptic, WarningMin: 1, WarningMax: 3},
		Syndicate: SyndicateProfile{
			CraftingFocus: []string{"cargo_expander", "cloak_module"},
			Willingness:   0.7, BudgetShare: 0.15, ContractRisk: "medium",
		},
	},
}

func init() {
	if err := validateTables(); err != nil {
		panic(err)
	}
}

// validateTables checks every archetype resolves to a behavior and a valid
// weight vector. A missing or malformed entry is a programming error and
// fails at startup, not at first lookup.
func validateTables() error {
	if err := validateWeights(baseWeights); err != nil {
		return fmt.Errorf("base weights: %w", err)
	}
	for _, arch := range Archetypes {
		if _, ok := archetypeBehaviors[arch]; !ok {
			return fmt.Errorf("archetype %q has no behavior entry", arch)
		}
		w, ok := archetypeWeights[arch]
		if !ok {
			return fmt.Errorf("archetype %q has no weight table", arch)
		}
		if err := validateWeights(w); err != nil {
			return fmt.Errorf("archetype %q weights: %w", arch, err)
		}
	}
	return nil
}

// validateWeights checks a vector covers all twelve types, has no negative
// entries, and sums to 1.0 within tolerance.
func validateWeights(w DecisionWeights) error {
	if len(w) != len(decisionOrder) {
		return fmt.Errorf("expected %d entries, got %d", len(decisionOrder), len(w))
	}
	for _, dt := range decisionOrder {
		v, ok := w[dt]
		if !ok {
			return fmt.Errorf("missing entry for %q", dt)
		}
		if v < 0 {
			return fmt.Errorf("negative weight %f for %q", v, dt)
		}
	}
	if s := w.Sum(); s < 1.0-weightTolerance || s > 1.0+weightTolerance {
		return fmt.Errorf("weights sum to %f, want 1.0", s)
	}
	return nil
}

// BehaviorFor returns the static profile for an archetype. Panics on an
// unknown tag: the registry is validated at init, so an unresolvable tag
// here means a caller fabricated one.
func BehaviorFor(arch Archetype) ArchetypeBehavior {
	b, ok := archetypeBehaviors[arch]
	if !ok {
		panic(fmt.Sprintf("bots: unknown archetype %q", arch))
	}
	return b
}

// WeightsFor returns a copy of the decision vector for an archetype, or the
// base vector when arch is empty.
func WeightsFor(arch Archetype) DecisionWeights {
	if arch == "" {
		return baseWeights.Clone()
	}
	w, ok := archetypeWeights[arch]
	if !ok {
		panic(fmt.Sprintf("bots: unknown archetype %q", arch))
	}
	return w.Clone()
}

// WouldArchetypeAttack reports whether the archetype's combat profile allows
// attacking a target whose power ratio (enemy power / own power) is given.
func WouldArchetypeAttack(arch Archetype, enemyPowerRatio float64) bool {
	return enemyPowerRatio < BehaviorFor(arch).Combat.AttackThreshold
}

// TellRateFor returns the archetype's tell rate.
func TellRateFor(arch Archetype) float64 {
	return BehaviorFor(arch).Tell.TellRate
}

// PickArchetype selects a uniformly random archetype. When weighted is
// non-nil its values bias the pick; missing entries count as weight 1.
func PickArchetype(src entropy.Source, weighted map[Archetype]float64) Archetype {
	src = entropy.FromSource(src)
	if len(weighted) == 0 {
		return Archetypes[src.IntN(len(Archetypes))]
	}

	var total float64
	for _, arch := range Archetypes {
		w, ok := weighted[arch]
		if !ok {
			w = 1
		}
		if w > 0 {
			total += w
		}
	}
	roll := src.Float64() * total
	var cum float64
	for _, arch := range Archetypes {
		w, ok := weighted[arch]
		if !ok {
			w = 1
		}
		if w <= 0 {
			continue
		}
		cum += w
		if roll < cum {
			return arch
		}
	}
	return Archetypes[len(Archetypes)-1]
}
