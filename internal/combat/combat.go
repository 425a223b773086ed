// Package combat provides the in-process attack resolver used by the sim
// binary. The engine treats it as an opaque service; the real game may
// substitute a different resolution algorithm behind the same interface.
package combat

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/talgya/star-dominion/internal/bots"
	"github.com/talgya/star-dominion/internal/empire"
	"github.com/talgya/star-dominion/internal/engine"
	"github.com/talgya/star-dominion/internal/entropy"
)

// stanceMultipliers scale attacker power per stance.
var stanceMultipliers = map[bots.AttackStance]float64{
	bots.StanceAllOut:   1.20,
	bots.StanceStandard: 1.00,
	bots.StanceProbing:  0.85,
	bots.StanceCautious: 0.75,
}

// Resolver resolves attacks against live empire state.
type Resolver struct {
	// Lookup returns the empire for an ID, or nil.
	Lookup func(id string) *empire.Empire
	// Rand injects the casualty rolls; nil uses the process default.
	Rand entropy.Source
}

var _ engine.CombatService = (*Resolver)(nil)

// ExecuteAttack resolves one attack: committed power against the defender's
// standing power, with casualties on both sides and planet capture on a win.
func (r *Resolver) ExecuteAttack(ctx context.Context, gameID, attackerID, defenderID string, forces empire.Forces, stance bots.AttackStance) (engine.CombatResult, error) {
	attacker := r.Lookup(attackerID)
	defender := r.Lookup(defenderID)
	if attacker == nil || defender == nil {
		return engine.CombatResult{Error: "unknown empire"}, fmt.Errorf("combat: unknown empire %s or %s", attackerID, defenderID)
	}
	if defender.IsEliminated {
		return engine.CombatResult{Error: "defender eliminated"}, nil
	}

	src := entropy.FromSource(r.Rand)

	mult, ok := stanceMultipliers[stance]
	if !ok {
		mult = 1.0
	}
	attackPower := committedPower(forces) * mult
	defensePower := defender.MilitaryPower()
	if defensePower <= 0 {
		defensePower = 1
	}

	ratio := attackPower / defensePower
	// Win chance follows the power ratio through a soft curve.
	winChance := ratio / (ratio + 1)
	won := src.Float64() < winChance

	// Both sides take casualties; the loser bleeds harder.
	attackerLoss := 0.15 + src.Float64()*0.20
	defenderLoss := 0.15 + src.Float64()*0.20
	if won {
		defenderLoss += 0.15
	} else {
		attackerLoss += 0.15
	}
	applyCasualties(&attacker.Units, forces, attackerLoss)
	scaleForces(&defender.Units, 1-defenderLoss*math.Min(ratio, 1))

	result := engine.CombatResult{Success: won}
	if won {
		captured := defender.TotalPlanets() / 10
		if captured < 1 {
			captured = 1
		}
		result.TerritoryCaptured = transferPlanets(defender, attacker, captured)
		result.Outcome = "attacker broke through"
	} else {
		result.Outcome = "defender held"
	}

	if defender.TotalPlanets() == 0 {
		defender.IsEliminated = true
		result.Outcome = "defender eliminated"
	}

	attacker.RecomputeNetworth()
	defender.RecomputeNetworth()

	slog.Debug("attack resolved",
		"game", gameID,
		"attacker", attackerID,
		"defender", defenderID,
		"stance", stance,
		"won", won,
		"captured", result.TerritoryCaptured)
	return result, nil
}

func committedPower(f empire.Forces) float64 {
	var p float64
	for t := empire.UnitType(0); t < empire.NumUnitTypes; t++ {
		p += float64(f.Count(t)) * empire.UnitPower(t)
	}
	return p
}

// applyCasualties removes lossFraction of the committed forces from the
// attacker's standing units.
func applyCasualties(units *empire.Forces, committed empire.Forces, lossFraction float64) {
	for t := empire.UnitType(0); t < empire.NumUnitTypes; t++ {
		losses := int64(math.Floor(float64(committed.Count(t)) * lossFraction))
		n := units.Count(t) - losses
		if n < 0 {
			n = 0
		}
		units.SetCount(t, n)
	}
}

func scaleForces(units *empire.Forces, keep float64) {
	if keep < 0 {
		keep = 0
	}
	for t := empire.UnitType(0); t < empire.NumUnitTypes; t++ {
		units.SetCount(t, int64(math.Floor(float64(units.Count(t))*keep)))
	}
}

// transferPlanets moves up to want planets from loser to winner, draining
// planet types in order. Returns the number moved.
func transferPlanets(loser, winner *empire.Empire, want int64) int64 {
	var moved int64
	for t := empire.PlanetType(0); t < empire.NumPlanetTypes && moved < want; t++ {
		take := loser.Planets[t]
		if take > want-moved {
			take = want - moved
		}
		loser.Planets[t] -= take
		winner.Planets[t] += take
		moved += take
	}
	return moved
}
