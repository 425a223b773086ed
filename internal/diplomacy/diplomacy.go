// Package diplomacy provides the in-process treaty registry. Acceptance is
// probabilistic, weighted by the recipient archetype's trust profile.
package diplomacy

import (
	"context"
	"log/slog"
	"sync"

	"github.com/talgya/star-dominion/internal/bots"
	"github.com/talgya/star-dominion/internal/engine"
	"github.com/talgya/star-dominion/internal/entropy"
)

// Registry tracks active treaties between empire pairs.
type Registry struct {
	// ArchetypeOf returns the recipient's archetype, or "" for non-bots.
	ArchetypeOf func(empireID string) bots.Archetype
	// Rand injects the acceptance rolls; nil uses the process default.
	Rand entropy.Source

	mu       sync.RWMutex
	treaties map[pairKey]bots.TreatyType
}

var _ engine.DiplomacyService = (*Registry)(nil)

type pairKey struct{ a, b string }

func keyFor(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// NewRegistry creates an empty treaty registry.
func NewRegistry(archetypeOf func(empireID string) bots.Archetype) *Registry {
	return &Registry{
		ArchetypeOf: archetypeOf,
		treaties:    make(map[pairKey]bots.TreatyType),
	}
}

// baseAcceptChance applies when the recipient has no archetype profile.
const baseAcceptChance = 0.5

// ProposeTreaty records the proposal and rolls the recipient's acceptance.
// An accepted treaty replaces any existing one between the pair.
func (r *Registry) ProposeTreaty(ctx context.Context, proposerID, recipientID string, treaty bots.TreatyType, turn int) (engine.TreatyResult, error) {
	chance := baseAcceptChance
	if r.ArchetypeOf != nil {
		if arch := r.ArchetypeOf(recipientID); arch != "" {
			prof := bots.BehaviorFor(arch).Diplomacy
			if treaty == bots.TreatyAlliance {
				chance = prof.AllianceSeeking*0.6 + prof.BaseTrust*0.4
			} else {
				chance = prof.BaseTrust
			}
		}
	}

	if entropy.FromSource(r.Rand).Float64() >= chance {
		return engine.TreatyResult{Success: false, Error: "proposal declined"}, nil
	}

	r.mu.Lock()
	r.treaties[keyFor(proposerID, recipientID)] = treaty
	r.mu.Unlock()

	slog.Debug("treaty formed",
		"proposer", proposerID, "recipient", recipientID,
		"treaty", treaty, "turn", turn)
	return engine.TreatyResult{Success: true}, nil
}

// HasTreaty reports whether any treaty binds the two empires.
func (r *Registry) HasTreaty(a, b string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.treaties[keyFor(a, b)]
	return ok
}

// TreatyBetween returns the active treaty type, or "" when none exists.
func (r *Registry) TreatyBetween(a, b string) bots.TreatyType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.treaties[keyFor(a, b)]
}

// Break removes any treaty between the pair. Returns true if one existed.
func (r *Registry) Break(a, b string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := keyFor(a, b)
	_, ok := r.treaties[k]
	delete(r.treaties, k)
	return ok
}
