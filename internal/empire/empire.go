// Package empire provides the empire entity the bot engine acts on: planets,
// resources, population, and the six military unit types.
package empire

import "fmt"

// UnitType enumerates the six military unit classes.
type UnitType uint8

const (
	UnitSoldier UnitType = iota
	UnitFighter
	UnitTank
	UnitCruiser
	UnitCarrier
	UnitStation
)

// NumUnitTypes is the total number of unit classes.
const NumUnitTypes = 6

// UnitName returns the display name for a unit type.
func UnitName(t UnitType) string {
	switch t {
	case UnitSoldier:
		return "soldier"
	case UnitFighter:
		return "fighter"
	case UnitTank:
		return "tank"
	case UnitCruiser:
		return "cruiser"
	case UnitCarrier:
		return "carrier"
	case UnitStation:
		return "station"
	default:
		return "unknown"
	}
}

// Forces holds a count of each unit type. Used both for an empire's standing
// military and for the contingent committed to a single attack.
type Forces struct {
	Soldiers int64 `json:"soldiers" db:"soldiers"`
	Fighters int64 `json:"fighters" db:"fighters"`
	Tanks    int64 `json:"tanks" db:"tanks"`
	Cruisers int64 `json:"cruisers" db:"cruisers"`
	Carriers int64 `json:"carriers" db:"carriers"`
	Stations int64 `json:"stations" db:"stations"`
}

// Count returns the number of units of the given type.
func (f Forces) Count(t UnitType) int64 {
	switch t {
	case UnitSoldier:
		return f.Soldiers
	case UnitFighter:
		return f.Fighters
	case UnitTank:
		return f.Tanks
	case UnitCruiser:
		return f.Cruisers
	case UnitCarrier:
		return f.Carriers
	case UnitStation:
		return f.Stations
	default:
		return 0
	}
}

// SetCount sets the number of units of the given type.
func (f *Forces) SetCount(t UnitType, n int64) {
	switch t {
	case UnitSoldier:
		f.Soldiers = n
	case UnitFighter:
		f.Fighters = n
	case UnitTank:
		f.Tanks = n
	case UnitCruiser:
		f.Cruisers = n
	case UnitCarrier:
		f.Carriers = n
	case UnitStation:
		f.Stations = n
	}
}

// Total returns the total unit count across all types.
func (f Forces) Total() int64 {
	return f.Soldiers + f.Fighters + f.Tanks + f.Cruisers + f.Carriers + f.Stations
}

// IsEmpty reports whether no units are present.
func (f Forces) IsEmpty() bool { return f.Total() == 0 }

// Covers reports whether f holds at least as many units of every type as
// needed. Attack validation uses this before calling the combat service.
func (f Forces) Covers(needed Forces) bool {
	for t := UnitType(0); t < NumUnitTypes; t++ {
		if f.Count(t) < needed.Count(t) {
			return false
		}
	}
	return true
}

// Subtract removes the given units. The caller must have checked Covers first;
// counts are clamped at zero rather than going negative.
func (f *Forces) Subtract(other Forces) {
	for t := UnitType(0); t < NumUnitTypes; t++ {
		n := f.Count(t) - other.Count(t)
		if n < 0 {
			n = 0
		}
		f.SetCount(t, n)
	}
}

// Resources holds an empire's stockpiles. Credits are the currency; food,
// ore, and fuel are the three tradable commodities.
type Resources struct {
	Credits int64 `json:"credits" db:"credits"`
	Food    int64 `json:"food" db:"food"`
	Ore     int64 `json:"ore" db:"ore"`
	Fuel    int64 `json:"fuel" db:"fuel"`
}

// Commodity enumerates the tradable resources.
type Commodity uint8

const (
	CommodityFood Commodity = iota
	CommodityOre
	CommodityFuel
)

// NumCommodities is the number of tradable resource types.
const NumCommodities = 3

// CommodityName returns the display name for a commodity.
func CommodityName(c Commodity) string {
	switch c {
	case CommodityFood:
		return "food"
	case CommodityOre:
		return "ore"
	case CommodityFuel:
		return "fuel"
	default:
		return "unknown"
	}
}

// Stock returns the current holdings of a commodity.
func (r Resources) Stock(c Commodity) int64 {
	switch c {
	case CommodityFood:
		return r.Food
	case CommodityOre:
		return r.Ore
	case CommodityFuel:
		return r.Fuel
	default:
		return 0
	}
}

// AddStock adjusts the holdings of a commodity by delta (may be negative).
func (r *Resources) AddStock(c Commodity, delta int64) {
	switch c {
	case CommodityFood:
		r.Food += delta
	case CommodityOre:
		r.Ore += delta
	case CommodityFuel:
		r.Fuel += delta
	}
}

// PlanetType enumerates purchasable planet classes.
type PlanetType uint8

const (
	PlanetFood PlanetType = iota
	PlanetOre
	PlanetFuel
	PlanetUrban
	PlanetResearch
	PlanetDefense
)

// NumPlanetTypes is the number of planet classes.
const NumPlanetTypes = 6

// PlanetName returns the display name for a planet type.
func PlanetName(t PlanetType) string {
	switch t {
	case PlanetFood:
		return "agricultural"
	case PlanetOre:
		return "mining"
	case PlanetFuel:
		return "refinery"
	case PlanetUrban:
		return "urban"
	case PlanetResearch:
		return "research"
	case PlanetDefense:
		return "fortress"
	default:
		return "unknown"
	}
}

// Empire is the full game entity for one player or bot.
type Empire struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`

	Networth   int64 `json:"networth" db:"networth"`
	Population int64 `json:"population" db:"population"`

	Planets   [NumPlanetTypes]int64 `json:"planets"`
	Resources Resources             `json:"resources"`
	Units     Forces                `json:"units"`

	ResearchPoints int64 `json:"research_points" db:"research_points"`
	UnitTechLevel  int64 `json:"unit_tech_level" db:"unit_tech_level"`

	IsBot        bool `json:"is_bot" db:"is_bot"`
	IsEliminated bool `json:"is_eliminated" db:"is_eliminated"`
}

// TotalPlanets returns the empire's territory count.
func (e *Empire) TotalPlanets() int64 {
	var n int64
	for _, c := range e.Planets {
		n += c
	}
	return n
}

// unitCatalog holds the static cost and power entry per unit type.
var unitCatalog = [NumUnitTypes]struct {
	Credits int64
	Ore     int64
	Fuel    int64
	Power   float64
}{
	UnitSoldier: {Credits: 100, Ore: 0, Fuel: 0, Power: 1},
	UnitFighter: {Credits: 800, Ore: 20, Fuel: 10, Power: 6},
	UnitTank:    {Credits: 1500, Ore: 60, Fuel: 20, Power: 10},
	UnitCruiser: {Credits: 6000, Ore: 200, Fuel: 80, Power: 35},
	UnitCarrier: {Credits: 12000, Ore: 450, Fuel: 160, Power: 60},
	UnitStation: {Credits: 25000, Ore: 900, Fuel: 300, Power: 120},
}

// UnitCost returns the resource cost of one unit of the given type.
func UnitCost(t UnitType) Resources {
	c := unitCatalog[t]
	return Resources{Credits: c.Credits, Ore: c.Ore, Fuel: c.Fuel}
}

// UnitPower returns the combat power of one unit of the given type.
func UnitPower(t UnitType) float64 {
	return unitCatalog[t].Power
}

// PlanetCost returns the credit price of the next planet of type t for an
// empire already holding owned planets. Prices rise with total holdings.
func PlanetCost(t PlanetType, owned int64) int64 {
	base := int64(50000)
	switch t {
	case PlanetUrban:
		base = 65000
	case PlanetResearch:
		base = 70000
	case PlanetDefense:
		base = 80000
	}
	return base + owned*2500
}

// CanAfford reports whether the empire can pay the given cost.
func (e *Empire) CanAfford(cost Resources) bool {
	return e.Resources.Credits >= cost.Credits &&
		e.Resources.Food >= cost.Food &&
		e.Resources.Ore >= cost.Ore &&
		e.Resources.Fuel >= cost.Fuel
}

// Spend deducts the given cost. Returns an error if the empire cannot pay.
func (e *Empire) Spend(cost Resources) error {
	if !e.CanAfford(cost) {
		return fmt.Errorf("empire %s cannot afford cost %+v", e.ID, cost)
	}
	e.Resources.Credits -= cost.Credits
	e.Resources.Food -= cost.Food
	e.Resources.Ore -= cost.Ore
	e.Resources.Fuel -= cost.Fuel
	return nil
}

// MilitaryPower estimates the empire's combat strength from its standing
// units, scaled by the unit tech level.
func (e *Empire) MilitaryPower() float64 {
	var p float64
	for t := UnitType(0); t < NumUnitTypes; t++ {
		p += float64(e.Units.Count(t)) * UnitPower(t)
	}
	techScale := 1.0 + 0.05*float64(e.UnitTechLevel)
	return p * techScale
}

// RecomputeNetworth rebuilds the networth figure from holdings. Called after
// every mutation so targeting snapshots never lag by more than one turn.
func (e *Empire) RecomputeNetworth() {
	nw := e.Resources.Credits
	nw += e.Resources.Food/4 + e.Resources.Ore/2 + e.Resources.Fuel/2
	nw += e.TotalPlanets() * 40000
	nw += int64(e.MilitaryPower() * 50)
	nw += e.Population * 5
	e.Networth = nw
}
