package combat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/star-dominion/internal/bots"
	"github.com/talgya/star-dominion/internal/empire"
)

// scriptedRolls feeds predetermined values; exhausted queues return midpoints.
type scriptedRolls struct {
	floats []float64
	fi     int
}

func (s *scriptedRolls) Float64() float64 {
	if s.fi < len(s.floats) {
		v := s.floats[s.fi]
		s.fi++
		return v
	}
	return 0.5
}

func (s *scriptedRolls) IntN(n int) int { return 0 }

func testEmpires() map[string]*empire.Empire {
	attacker := &empire.Empire{
		ID:    "atk",
		Units: empire.Forces{Soldiers: 1000},
	}
	attacker.Planets[empire.PlanetUrban] = 5
	defender := &empire.Empire{
		ID:    "def",
		Units: empire.Forces{Soldiers: 10},
	}
	defender.Planets[empire.PlanetFood] = 1
	return map[string]*empire.Empire{"atk": attacker, "def": defender}
}

func newResolver(empires map[string]*empire.Empire, rolls *scriptedRolls) *Resolver {
	return &Resolver{
		Lookup: func(id string) *empire.Empire { return empires[id] },
		Rand:   rolls,
	}
}

func TestExecuteAttackOverwhelmingWin(t *testing.T) {
	empires := testEmpires()
	// Rolls consumed in order: win, attacker loss, defender loss.
	r := newResolver(empires, &scriptedRolls{floats: []float64{0.0, 0.0, 0.0}})

	forces := empire.Forces{Soldiers: 100}
	res, err := r.ExecuteAttack(context.Background(), "g1", "atk", "def", forces, bots.StanceStandard)
	require.NoError(t, err)
	require.True(t, res.Success)

	// 15% floor casualties on the committed contingent only.
	require.EqualValues(t, 985, empires["atk"].Units.Soldiers)

	// Defender's single planet is captured; zero planets means elimination.
	require.EqualValues(t, 1, res.TerritoryCaptured)
	require.EqualValues(t, 1, empires["atk"].Planets[empire.PlanetFood])
	require.EqualValues(t, 0, empires["def"].TotalPlanets())
	require.True(t, empires["def"].IsEliminated)
	require.Equal(t, "defender eliminated", res.Outcome)
}

func TestExecuteAttackCaptureWithoutElimination(t *testing.T) {
	empires := testEmpires()
	empires["def"].Planets[empire.PlanetFood] = 10
	empires["def"].Planets[empire.PlanetOre] = 5
	r := newResolver(empires, &scriptedRolls{floats: []float64{0.0, 0.0, 0.0}})

	res, err := r.ExecuteAttack(context.Background(), "g1", "atk", "def",
		empire.Forces{Soldiers: 100}, bots.StanceStandard)
	require.NoError(t, err)
	require.True(t, res.Success)

	// One tenth of fifteen planets, drained from the first type.
	require.EqualValues(t, 1, res.TerritoryCaptured)
	require.EqualValues(t, 9, empires["def"].Planets[empire.PlanetFood])
	require.False(t, empires["def"].IsEliminated)
	require.Equal(t, "attacker broke through", res.Outcome)
}

func TestExecuteAttackRepelled(t *testing.T) {
	empires := testEmpires()
	empires["def"].Units.Soldiers = 5000
	r := newResolver(empires, &scriptedRolls{floats: []float64{0.99, 0.0, 0.0}})

	res, err := r.ExecuteAttack(context.Background(), "g1", "atk", "def",
		empire.Forces{Soldiers: 100}, bots.StanceStandard)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "defender held", res.Outcome)
	require.Zero(t, res.TerritoryCaptured)
	require.EqualValues(t, 1, empires["def"].TotalPlanets())

	// Losing attacker bleeds the extra 15%: floor(100 * 0.30) = 30.
	require.EqualValues(t, 970, empires["atk"].Units.Soldiers)
}

func TestExecuteAttackStanceScalesPower(t *testing.T) {
	// Against an equal-power defender the all-out stance tips the win chance
	// from 0.50 to 1.2/2.2; a roll between the two separates the stances.
	roll := 0.52

	empires := testEmpires()
	empires["def"].Units.Soldiers = 100
	r := newResolver(empires, &scriptedRolls{floats: []float64{roll, 0.0, 0.0}})
	res, err := r.ExecuteAttack(context.Background(), "g1", "atk", "def",
		empire.Forces{Soldiers: 100}, bots.StanceStandard)
	require.NoError(t, err)
	require.False(t, res.Success, "standard stance loses at this roll")

	empires = testEmpires()
	empires["def"].Units.Soldiers = 100
	r = newResolver(empires, &scriptedRolls{floats: []float64{roll, 0.0, 0.0}})
	res, err = r.ExecuteAttack(context.Background(), "g1", "atk", "def",
		empire.Forces{Soldiers: 100}, bots.StanceAllOut)
	require.NoError(t, err)
	require.True(t, res.Success, "all-out stance wins at this roll")
}

func TestExecuteAttackUnknownEmpire(t *testing.T) {
	r := newResolver(testEmpires(), &scriptedRolls{})
	_, err := r.ExecuteAttack(context.Background(), "g1", "atk", "ghost",
		empire.Forces{Soldiers: 1}, bots.StanceStandard)
	require.Error(t, err)
}

func TestExecuteAttackEliminatedDefender(t *testing.T) {
	empires := testEmpires()
	empires["def"].IsEliminated = true
	r := newResolver(empires, &scriptedRolls{})
	res, err := r.ExecuteAttack(context.Background(), "g1", "atk", "def",
		empire.Forces{Soldiers: 1}, bots.StanceStandard)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "defender eliminated", res.Error)
}
