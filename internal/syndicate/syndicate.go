// Package syndicate provides the in-process crafting, contract, and
// black-market service. Recipe costs and contract payouts live here; the
// engine only sees the engagement contract.
package syndicate

import (
	"context"
	"fmt"
	"sync"

	"github.com/talgya/star-dominion/internal/empire"
	"github.com/talgya/star-dominion/internal/engine"
	"github.com/talgya/star-dominion/internal/entropy"
)

// componentCosts maps craftable component keys to their credit cost.
// Unknown components fall back to defaultComponentCost.
var componentCosts = map[string]int64{
	"targeting_array":    8000,
	"plasma_lance":       15000,
	"siege_driver":       22000,
	"envoy_beacon":       5000,
	"shield_lattice":     12000,
	"cargo_expander":     7000,
	"trade_manifest":     4000,
	"refinery_core":      10000,
	"cloak_module":       18000,
	"listening_post":     9000,
	"forged_credentials": 6000,
	"bunker_array":       14000,
	"afterburner_kit":    8000,
	"lab_module":         11000,
	"quantum_core":       25000,
}

const defaultComponentCost = 10000

// contractTerms defines payout and failure odds per risk tier.
var contractTerms = map[string]struct {
	Payout      int64
	FailureRisk float64
}{
	"low":    {Payout: 8000, FailureRisk: 0.10},
	"medium": {Payout: 20000, FailureRisk: 0.30},
	"high":   {Payout: 50000, FailureRisk: 0.50},
}

// Syndicate executes crafting and black-market engagements against live
// empire state.
type Syndicate struct {
	// Lookup returns the empire for an ID, or nil.
	Lookup func(id string) *empire.Empire
	// Rand injects the contract rolls; nil uses the process default.
	Rand entropy.Source

	mu         sync.Mutex
	components map[string][]string // empire ID -> crafted component keys
}

var _ engine.SyndicateService = (*Syndicate)(nil)

// New creates a syndicate service over the given empire lookup.
func New(lookup func(id string) *empire.Empire) *Syndicate {
	return &Syndicate{Lookup: lookup, components: make(map[string][]string)}
}

// CraftComponent charges the component cost and records the component.
func (s *Syndicate) CraftComponent(ctx context.Context, gameID, empireID, component string, turn int) (engine.SyndicateResult, error) {
	e := s.Lookup(empireID)
	if e == nil {
		return engine.SyndicateResult{}, fmt.Errorf("syndicate: unknown empire %s", empireID)
	}
	cost, ok := componentCosts[component]
	if !ok {
		cost = defaultComponentCost
	}
	if e.Resources.Credits < cost {
		return engine.SyndicateResult{Error: "insufficient credits", Cost: cost}, nil
	}
	e.Resources.Credits -= cost

	s.mu.Lock()
	s.components[empireID] = append(s.components[empireID], component)
	s.mu.Unlock()

	return engine.SyndicateResult{Success: true, Cost: cost}, nil
}

// AcceptContract rolls the contract's risk: payout on success, a penalty on
// failure.
func (s *Syndicate) AcceptContract(ctx context.Context, gameID, empireID, riskTier string, turn int) (engine.SyndicateResult, error) {
	e := s.Lookup(empireID)
	if e == nil {
		return engine.SyndicateResult{}, fmt.Errorf("syndicate: unknown empire %s", empireID)
	}
	terms, ok := contractTerms[riskTier]
	if !ok {
		return engine.SyndicateResult{Error: fmt.Sprintf("unknown risk tier %q", riskTier)}, nil
	}

	if entropy.FromSource(s.Rand).Float64() < terms.FailureRisk {
		penalty := terms.Payout / 4
		if e.Resources.Credits < penalty {
			penalty = e.Resources.Credits
		}
		e.Resources.Credits -= penalty
		return engine.SyndicateResult{Error: "contract went bad", Cost: penalty}, nil
	}

	e.Resources.Credits += terms.Payout
	return engine.SyndicateResult{Success: true, Cost: -terms.Payout}, nil
}

// blackMarketRate converts black-market credits to fighter units. The
// Syndicate's stock is discounted but unreliable.
const blackMarketRate = 600

// PurchaseBlackMarket converts the budget into discounted fighters. A bad
// batch (20%) delivers half.
func (s *Syndicate) PurchaseBlackMarket(ctx context.Context, gameID, empireID string, budget int64, turn int) (engine.SyndicateResult, error) {
	e := s.Lookup(empireID)
	if e == nil {
		return engine.SyndicateResult{}, fmt.Errorf("syndicate: unknown empire %s", empireID)
	}
	if budget <= 0 || e.Resources.Credits < budget {
		return engine.SyndicateResult{Error: "insufficient credits"}, nil
	}

	units := budget / blackMarketRate
	if units <= 0 {
		return engine.SyndicateResult{Error: "budget below minimum lot"}, nil
	}
	if entropy.FromSource(s.Rand).Float64() < 0.20 {
		units /= 2
	}

	e.Resources.Credits -= budget
	e.Units.Fighters += units
	return engine.SyndicateResult{Success: true, Cost: budget}, nil
}

// Components returns the crafted components for an empire.
func (s *Syndicate) Components(empireID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.components[empireID]))
	copy(out, s.components[empireID])
	return out
}
