// Memory and relationship model — a weighted, decaying event log per
// (bot, target empire) pair. Memories never expire outright, but their
// weight decays each turn unless flagged as a permanent scar.
package bots

import (
	"fmt"
	"math"

	"github.com/talgya/star-dominion/internal/entropy"
)

// DecayResistance tiers how strongly a memory resists decay.
type DecayResistance string

const (
	ResistVeryLow   DecayResistance = "very_low"
	ResistLow       DecayResistance = "low"
	ResistMedium    DecayResistance = "medium"
	ResistHigh      DecayResistance = "high"
	ResistPermanent DecayResistance = "permanent"
)

// resistanceValues maps each tier to its numeric resistance.
var resistanceValues = map[DecayResistance]float64{
	ResistVeryLow:   0.1,
	ResistLow:       0.3,
	ResistMedium:    0.5,
	ResistHigh:      0.8,
	ResistPermanent: 1.0,
}

// MemoryEventType tags what happened between two empires.
type MemoryEventType string

const (
	EventAttackedMe           MemoryEventType = "attacked_me"
	EventAttackedAlly         MemoryEventType = "attacked_ally"
	EventBetrayedAlliance     MemoryEventType = "betrayed_alliance"
	EventBrokeTreaty          MemoryEventType = "broke_treaty"
	EventStoleTechnology      MemoryEventType = "stole_technology"
	EventSabotagedMe          MemoryEventType = "sabotaged_me"
	EventInsultedMe           MemoryEventType = "insulted_me"
	EventRejectedAlliance     MemoryEventType = "rejected_alliance"
	EventTradeEmbargo         MemoryEventType = "trade_embargo"
	EventCapturedMyPlanet     MemoryEventType = "captured_my_planet"
	EventEliminatedMyAlly     MemoryEventType = "eliminated_my_ally"
	EventMarketUndercut       MemoryEventType = "market_undercut"
	EventHelpedInWar          MemoryEventType = "helped_in_war"
	EventSavedFromDestruction MemoryEventType = "saved_from_destruction"
	EventGiftedResources      MemoryEventType = "gifted_resources"
	EventFormedAlliance       MemoryEventType = "formed_alliance"
	EventHonoredTreaty        MemoryEventType = "honored_treaty"
	EventFairTrade            MemoryEventType = "fair_trade"
	EventMediatedPeace        MemoryEventType = "mediated_peace"
)

// memoryEventEntry is one row of the static event-type table.
type memoryEventEntry struct {
	Weight     float64
	Resistance DecayResistance
	IsNegative bool
}

// memoryEventTable holds the nineteen event types with their base weight,
// decay-resistance tier, and polarity.
var memoryEventTable = map[MemoryEventType]memoryEventEntry{
	EventAttackedMe:           {Weight: 50, Resistance: ResistMedium, IsNegative: true},
	EventAttackedAlly:         {Weight: 30, Resistance: ResistLow, IsNegative: true},
	EventBetrayedAlliance:     {Weight: 90, Resistance: ResistHigh, IsNegative: true},
	EventBrokeTreaty:          {Weight: 70, Resistance: ResistHigh, IsNegative: true},
	EventStoleTechnology:      {Weight: 40, Resistance: ResistMedium, IsNegative: true},
	EventSabotagedMe:          {Weight: 45, Resistance: ResistMedium, IsNegative: true},
	EventInsultedMe:           {Weight: 10, Resistance: ResistVeryLow, IsNegative: true},
	EventRejectedAlliance:     {Weight: 15, Resistance: ResistLow, IsNegative: true},
	EventTradeEmbargo:         {Weight: 25, Resistance: ResistLow, IsNegative: true},
	EventCapturedMyPlanet:     {Weight: 65, Resistance: ResistHigh, IsNegative: true},
	EventEliminatedMyAlly:     {Weight: 80, Resistance: ResistHigh, IsNegative: true},
	EventMarketUndercut:       {Weight: 8, Resistance: ResistVeryLow, IsNegative: true},
	EventHelpedInWar:          {Weight: 60, Resistance: ResistHigh, IsNegative: false},
	EventSavedFromDestruction: {Weight: 90, Resistance: ResistHigh, IsNegative: false},
	EventGiftedResources:      {Weight: 30, Resistance: ResistMedium, IsNegative: false},
	EventFormedAlliance:       {Weight: 50, Resistance: ResistMedium, IsNegative: false},
	EventHonoredTreaty:        {Weight: 20, Resistance: ResistLow, IsNegative: false},
	EventFairTrade:            {Weight: 10, Resistance: ResistVeryLow, IsNegative: false},
	EventMediatedPeace:        {Weight: 40, Resistance: ResistMedium, IsNegative: false},
}

// scarChance is the Bernoulli probability that a severe negative event
// leaves a permanent scar.
const scarChance = 0.20

// scarWeightFloor is the minimum base weight for a scar-eligible event.
const scarWeightFloor = 30.0

// BaseDecayRate is the default per-turn decay rate.
const BaseDecayRate = 0.01

// EventEntryFor returns the static table entry for an event type. Panics on
// an unknown tag; the table is fixed at build time.
func EventEntryFor(et MemoryEventType) (weight float64, resistance DecayResistance, isNegative bool) {
	e, ok := memoryEventTable[et]
	if !ok {
		panic(fmt.Sprintf("bots: unknown memory event type %q", et))
	}
	return e.Weight, e.Resistance, e.IsNegative
}

// MemoryRecord is one remembered event. Immutable once created except for
// CurrentWeight, which decay recomputation updates.
type MemoryRecord struct {
	TargetEmpireID  string          `json:"target_empire_id"`
	EventType       MemoryEventType `json:"event_type"`
	OriginalWeight  float64         `json:"original_weight"`
	CurrentWeight   float64         `json:"current_weight"`
	Turn            int             `json:"turn"`
	IsNegative      bool            `json:"is_negative"`
	Resistance      DecayResistance `json:"resistance"`
	IsPermanentScar bool            `json:"is_permanent_scar"`
}

// RelationshipMemory is the per-(bot, target) event log with its derived
// net score. Created lazily on first interaction, never deleted.
type RelationshipMemory struct {
	TargetEmpireID string         `json:"target_empire_id"`
	Memories       []MemoryRecord `json:"memories"`
	NetScore       float64        `json:"net_score"`
}

// RollPermanentScar decides at creation time whether an event becomes a
// permanent scar: deterministically false unless the event is negative with
// base weight >= 30, then a 20% Bernoulli trial on src.
func RollPermanentScar(et MemoryEventType, src entropy.Source) bool {
	e, ok := memoryEventTable[et]
	if !ok {
		return false
	}
	if !e.IsNegative || e.Weight < scarWeightFloor {
		return false
	}
	return entropy.FromSource(src).Float64() < scarChance
}

// AddMemory records an event against the target at the given turn and
// refreshes the net score.
func (r *RelationshipMemory) AddMemory(et MemoryEventType, turn int, src entropy.Source) MemoryRecord {
	weight, resistance, isNegative := EventEntryFor(et)
	rec := MemoryRecord{
		TargetEmpireID:  r.TargetEmpireID,
		EventType:       et,
		OriginalWeight:  weight,
		CurrentWeight:   weight,
		Turn:            turn,
		IsNegative:      isNegative,
		Resistance:      resistance,
		IsPermanentScar: RollPermanentScar(et, src),
	}
	r.Memories = append(r.Memories, rec)
	r.NetScore = CalculateNetRelationship(r.Memories, turn)
	return rec
}

// HasPermanentScar reports whether any memory is a permanent scar.
func (r *RelationshipMemory) HasPermanentScar() bool {
	for i := range r.Memories {
		if r.Memories[i].IsPermanentScar {
			return true
		}
	}
	return false
}

// PermanentScars returns the subset of memories flagged as permanent scars.
func (r *RelationshipMemory) PermanentScars() []MemoryRecord {
	var scars []MemoryRecord
	for i := range r.Memories {
		if r.Memories[i].IsPermanentScar {
			scars = append(scars, r.Memories[i])
		}
	}
	return scars
}

// Refresh recomputes every memory's current weight for the given turn,
// prunes fully-decayed non-scar memories, and updates the net score.
// Permanent scars keep their original weight regardless of their nominal
// resistance tier.
func (r *RelationshipMemory) Refresh(currentTurn int) {
	for i := range r.Memories {
		m := &r.Memories[i]
		if m.IsPermanentScar {
			m.CurrentWeight = m.OriginalWeight
			continue
		}
		m.CurrentWeight = CalculateMemoryDecay(m.OriginalWeight, currentTurn-m.Turn, m.Resistance, BaseDecayRate)
	}
	r.Memories = PruneDecayedMemories(r.Memories, currentTurn, 0.5)
	r.NetScore = CalculateNetRelationship(r.Memories, currentTurn)
}

// CalculateMemoryDecay returns the decayed weight after turnsSince turns.
// Permanent resistance returns weight unchanged; otherwise
// weight * max(0, 1 - turnsSince*baseRate*(1-resistance)), rounded to two
// decimals.
func CalculateMemoryDecay(weight float64, turnsSince int, resistance DecayResistance, baseRate float64) float64 {
	if resistance == ResistPermanent {
		return weight
	}
	rv, ok := resistanceValues[resistance]
	if !ok {
		rv = resistanceValues[ResistMedium]
	}
	factor := 1 - float64(turnsSince)*baseRate*(1-rv)
	if factor < 0 {
		factor = 0
	}
	return round2(weight * factor)
}

// CalculateNetRelationship recomputes each memory's decayed weight at
// currentTurn and sums: negative events subtract, positive events add.
// Rounded to two decimals. Permanent scars never decay.
func CalculateNetRelationship(memories []MemoryRecord, currentTurn int) float64 {
	var net float64
	for i := range memories {
		m := &memories[i]
		w := m.OriginalWeight
		if !m.IsPermanentScar {
			w = CalculateMemoryDecay(m.OriginalWeight, currentTurn-m.Turn, m.Resistance, BaseDecayRate)
		}
		if m.IsNegative {
			net -= w
		} else {
			net += w
		}
	}
	return round2(net)
}

// RelationshipTier labels a net score band.
type RelationshipTier string

const (
	TierHostile    RelationshipTier = "hostile"
	TierUnfriendly RelationshipTier = "unfriendly"
	TierNeutral    RelationshipTier = "neutral"
	TierFriendly   RelationshipTier = "friendly"
	TierAllied     RelationshipTier = "allied"
)

// GetRelationshipTier maps a net score to its tier. Boundaries are exclusive
// on the upper side: hostile < -100 <= unfriendly < -25 <= neutral < 25 <=
// friendly < 100 <= allied.
func GetRelationshipTier(netScore float64) RelationshipTier {
	switch {
	case netScore < -100:
		return TierHostile
	case netScore < -25:
		return TierUnfriendly
	case netScore < 25:
		return TierNeutral
	case netScore < 100:
		return TierFriendly
	default:
		return TierAllied
	}
}

// PruneDecayedMemories drops non-scar memories whose decayed weight at
// currentTurn falls below threshold. Scars are never pruned.
func PruneDecayedMemories(memories []MemoryRecord, currentTurn int, threshold float64) []MemoryRecord {
	kept := memories[:0]
	for i := range memories {
		m := memories[i]
		if m.IsPermanentScar {
			kept = append(kept, m)
			continue
		}
		w := CalculateMemoryDecay(m.OriginalWeight, currentTurn-m.Turn, m.Resistance, BaseDecayRate)
		if w >= threshold {
			kept = append(kept, m)
		}
	}
	return kept
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
