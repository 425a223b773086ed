// Package engine drives bot turns: parallel decision generation, tell
// emission, weak-first attack ordering, and emotional feedback. External
// subsystems (combat, market, diplomacy, syndicate, persistence) are
// consumed through the interfaces below and treated as opaque.
package engine

import (
	"context"

	"github.com/talgya/star-dominion/internal/bots"
	"github.com/talgya/star-dominion/internal/empire"
)

// CombatResult is the outcome of one attack resolution.
type CombatResult struct {
	Success           bool
	Error             string
	Outcome           string
	TerritoryCaptured int64
}

// CombatService resolves attacks. The engine validates force sufficiency
// before calling and maps the result into its own reporting; the resolution
// algorithm itself is opaque.
type CombatService interface {
	ExecuteAttack(ctx context.Context, gameID, attackerID, defenderID string, forces empire.Forces, stance bots.AttackStance) (CombatResult, error)
}

// TreatyResult is the outcome of a treaty proposal.
type TreatyResult struct {
	Success bool
	Error   string
}

// DiplomacyService manages the treaty legal state machine.
type DiplomacyService interface {
	ProposeTreaty(ctx context.Context, proposerID, recipientID string, treaty bots.TreatyType, turn int) (TreatyResult, error)
	// HasTreaty reports whether any treaty binds the two empires. Used to
	// annotate targeting snapshots.
	HasTreaty(a, b string) bool
}

// MarketResult is the outcome of a market order.
type MarketResult struct {
	Success    bool
	Error      string
	NewBalance int64
}

// MarketService executes buy and sell orders; pricing is its concern.
type MarketService interface {
	ExecuteBuyOrder(ctx context.Context, gameID, empireID string, resource empire.Commodity, quantity int64, turn int) (MarketResult, error)
	ExecuteSellOrder(ctx context.Context, gameID, empireID string, resource empire.Commodity, quantity int64, turn int) (MarketResult, error)
}

// SyndicateResult is the outcome of a crafting or black-market engagement.
type SyndicateResult struct {
	Success bool
	Error   string
	Cost    int64
}

// SyndicateService owns crafting recipes, contracts, and the black market.
type SyndicateService interface {
	CraftComponent(ctx context.Context, gameID, empireID, component string, turn int) (SyndicateResult, error)
	AcceptContract(ctx context.Context, gameID, empireID, riskTier string, turn int) (SyndicateResult, error)
	PurchaseBlackMarket(ctx context.Context, gameID, empireID string, budget int64, turn int) (SyndicateResult, error)
}

// Store persists game entities. Calls are fire-and-forget from the engine's
// perspective: it issues intent and does not read back to verify.
type Store interface {
	SaveEmpire(ctx context.Context, gameID string, e *empire.Empire) error
	SaveTurnResults(ctx context.Context, gameID string, turn int, results []BotTurnResult) error
	SaveTell(ctx context.Context, gameID string, tell *bots.TellEvent) error
}

// TellSink consumes tell events for player-facing signaling. Strictly
// best-effort: a sink failure never affects decision or execution
// correctness.
type TellSink interface {
	EmitTell(ctx context.Context, tell *bots.TellEvent) error
}

// DecisionSource is an alternate decision path (the LLM-backed tier). A nil
// decision or an error falls back to the scripted engine.
type DecisionSource interface {
	Decide(ctx context.Context, in bots.DecisionInput) (bots.Decision, error)
}

// BotTurnResult is the per-bot record a turn always produces, even on
// partial failure.
type BotTurnResult struct {
	EmpireID     string             `json:"empire_id"`
	DecisionType bots.DecisionType  `json:"decision_type"`
	Decision     bots.Decision      `json:"-"`
	Executed     bool               `json:"executed"`
	Success      bool               `json:"success"`
	Error        string             `json:"error,omitempty"`
	Tell         *bots.TellEvent    `json:"tell,omitempty"`
}

// TurnReport summarizes one completed turn.
type TurnReport struct {
	GameID  string          `json:"game_id"`
	Turn    int             `json:"turn"`
	Results []BotTurnResult `json:"results"`
}
