// Package market provides the in-process commodity market. Prices drift
// with traded volume; the engine only sees the buy/sell order contract.
package market

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/talgya/star-dominion/internal/empire"
	"github.com/talgya/star-dominion/internal/engine"
)

// basePrices are the per-unit credit prices before pressure adjustment.
var basePrices = [empire.NumCommodities]float64{
	empire.CommodityFood: 8,
	empire.CommodityOre:  15,
	empire.CommodityFuel: 22,
}

// priceDriftPerUnit nudges a commodity's pressure per unit traded. Buys push
// prices up, sells push them down.
const priceDriftPerUnit = 0.00001

// Market executes commodity orders against live empire state.
type Market struct {
	// Lookup returns the empire for an ID, or nil.
	Lookup func(id string) *empire.Empire

	mu       sync.Mutex
	pressure [empire.NumCommodities]float64
}

var _ engine.MarketService = (*Market)(nil)

// New creates a market over the given empire lookup.
func New(lookup func(id string) *empire.Empire) *Market {
	return &Market{Lookup: lookup}
}

// Price returns the current per-unit price for a commodity.
func (m *Market) Price(c empire.Commodity) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.priceLocked(c)
}

func (m *Market) priceLocked(c empire.Commodity) float64 {
	p := basePrices[c] * (1 + m.pressure[c])
	if p < 1 {
		p = 1
	}
	return p
}

// ExecuteBuyOrder buys quantity units for the empire at the current price.
// Partial fills happen when credits run short; a zero fill is a failed order.
func (m *Market) ExecuteBuyOrder(ctx context.Context, gameID, empireID string, resource empire.Commodity, quantity int64, turn int) (engine.MarketResult, error) {
	if quantity <= 0 {
		return engine.MarketResult{Error: "non-positive quantity"}, nil
	}
	e := m.Lookup(empireID)
	if e == nil {
		return engine.MarketResult{}, fmt.Errorf("market: unknown empire %s", empireID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	price := m.priceLocked(resource)
	affordable := int64(math.Floor(float64(e.Resources.Credits) / price))
	fill := quantity
	if affordable < fill {
		fill = affordable
	}
	if fill <= 0 {
		return engine.MarketResult{Error: "insufficient credits", NewBalance: e.Resources.Credits}, nil
	}

	cost := int64(math.Ceil(float64(fill) * price))
	e.Resources.Credits -= cost
	e.Resources.AddStock(resource, fill)
	m.pressure[resource] += float64(fill) * priceDriftPerUnit

	return engine.MarketResult{Success: true, NewBalance: e.Resources.Credits}, nil
}

// ExecuteSellOrder sells quantity units from the empire's stock, clamped to
// holdings.
func (m *Market) ExecuteSellOrder(ctx context.Context, gameID, empireID string, resource empire.Commodity, quantity int64, turn int) (engine.MarketResult, error) {
	if quantity <= 0 {
		return engine.MarketResult{Error: "non-positive quantity"}, nil
	}
	e := m.Lookup(empireID)
	if e == nil {
		return engine.MarketResult{}, fmt.Errorf("market: unknown empire %s", empireID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	fill := quantity
	if held := e.Resources.Stock(resource); held < fill {
		fill = held
	}
	if fill <= 0 {
		return engine.MarketResult{Error: "nothing to sell", NewBalance: e.Resources.Credits}, nil
	}

	price := m.priceLocked(resource)
	proceeds := int64(math.Floor(float64(fill) * price))
	e.Resources.AddStock(resource, -fill)
	e.Resources.Credits += proceeds
	m.pressure[resource] -= float64(fill) * priceDriftPerUnit

	return engine.MarketResult{Success: true, NewBalance: e.Resources.Credits}, nil
}
