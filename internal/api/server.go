// Package api serves read-only game state over HTTP. All endpoints are GET
// observation endpoints; nothing here mutates the game.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/star-dominion/internal/bots"
	"github.com/talgya/star-dominion/internal/empire"
	"github.com/talgya/star-dominion/internal/engine"
	"github.com/talgya/star-dominion/internal/market"
	"github.com/talgya/star-dominion/internal/persistence"
)

// Server exposes a running game for observation.
type Server struct {
	Game   *engine.Game
	Market *market.Market
	DB     *persistence.DB
	Port   int
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	limiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", RateLimitMiddleware(limiter, s.handleStatus))
	mux.HandleFunc("/api/v1/empires", RateLimitMiddleware(limiter, s.handleEmpires))
	mux.HandleFunc("/api/v1/empire/", RateLimitMiddleware(limiter, s.handleEmpireDetail))
	mux.HandleFunc("/api/v1/market", RateLimitMiddleware(limiter, s.handleMarket))
	mux.HandleFunc("/api/v1/results", RateLimitMiddleware(limiter, s.handleResults))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response encode failed", "error", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.Game.RLock()
	defer s.Game.RUnlock()

	active, eliminated := 0, 0
	for _, e := range s.Game.Empires {
		if e.IsEliminated {
			eliminated++
		} else {
			active++
		}
	}

	writeJSON(w, map[string]any{
		"game_id":          s.Game.ID,
		"turn":             s.Game.Turn,
		"protection_turns": s.Game.ProtectionTurns,
		"in_protection":    s.Game.Turn <= s.Game.ProtectionTurns,
		"active_empires":   active,
		"eliminated":       eliminated,
		"bots":             len(s.Game.Bots),
	})
}

type empireSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Networth      int64  `json:"networth"`
	Population    int64  `json:"population"`
	Planets       int64  `json:"planets"`
	Credits       int64  `json:"credits"`
	MilitaryPower int64  `json:"military_power"`
	TechLevel     int64  `json:"tech_level"`
	Archetype     string `json:"archetype,omitempty"`
	Difficulty    string `json:"difficulty,omitempty"`
	Eliminated    bool   `json:"eliminated"`
}

func (s *Server) handleEmpires(w http.ResponseWriter, r *http.Request) {
	s.Game.RLock()
	defer s.Game.RUnlock()

	byEmpire := make(map[string]*bots.Bot, len(s.Game.Bots))
	for _, b := range s.Game.Bots {
		byEmpire[b.EmpireID] = b
	}

	result := make([]empireSummary, 0, len(s.Game.Empires))
	for _, e := range s.Game.Empires {
		sum := empireSummary{
			ID:            e.ID,
			Name:          e.Name,
			Networth:      e.Networth,
			Population:    e.Population,
			Planets:       e.TotalPlanets(),
			Credits:       e.Resources.Credits,
			MilitaryPower: int64(e.MilitaryPower()),
			TechLevel:     e.UnitTechLevel,
			Eliminated:    e.IsEliminated,
		}
		if b := byEmpire[e.ID]; b != nil {
			sum.Archetype = string(b.Archetype)
			sum.Difficulty = string(b.Difficulty)
		}
		result = append(result, sum)
	}
	// Leaderboard order.
	sort.Slice(result, func(i, j int) bool { return result[i].Networth > result[j].Networth })
	writeJSON(w, result)
}

func (s *Server) handleEmpireDetail(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 || parts[4] == "" {
		http.Error(w, "missing empire id", http.StatusBadRequest)
		return
	}
	id := parts[4]

	s.Game.RLock()
	defer s.Game.RUnlock()

	e := s.Game.Empire(id)
	if e == nil {
		http.Error(w, "empire not found", http.StatusNotFound)
		return
	}

	result := map[string]any{
		"id":              e.ID,
		"name":            e.Name,
		"networth":        e.Networth,
		"population":      e.Population,
		"planets":         e.Planets,
		"resources":       e.Resources,
		"units":           e.Units,
		"research_points": e.ResearchPoints,
		"tech_level":      e.UnitTechLevel,
		"eliminated":      e.IsEliminated,
	}

	for _, b := range s.Game.Bots {
		if b.EmpireID != id {
			continue
		}
		result["archetype"] = b.Archetype
		result["difficulty"] = b.Difficulty
		if !b.Emotion.IsNeutral() {
			result["emotion"] = map[string]any{
				"name":      b.Emotion.Name,
				"intensity": b.Emotion.Intensity,
			}
		}

		type relEntry struct {
			TargetID string  `json:"target_id"`
			NetScore float64 `json:"net_score"`
			Tier     string  `json:"tier"`
			Memories int     `json:"memories"`
			Scars    int     `json:"permanent_scars"`
		}
		rels := make([]relEntry, 0, len(b.Relationships))
		for _, rel := range b.Relationships {
			rels = append(rels, relEntry{
				TargetID: rel.TargetEmpireID,
				NetScore: rel.NetScore,
				Tier:     string(bots.GetRelationshipTier(rel.NetScore)),
				Memories: len(rel.Memories),
				Scars:    len(rel.PermanentScars()),
			})
		}
		sort.Slice(rels, func(i, j int) bool { return rels[i].TargetID < rels[j].TargetID })
		result["relationships"] = rels
		break
	}

	writeJSON(w, result)
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	if s.Market == nil {
		http.Error(w, "market not available", http.StatusServiceUnavailable)
		return
	}
	prices := make(map[string]float64, empire.NumCommodities)
	for c := empire.Commodity(0); c < empire.NumCommodities; c++ {
		prices[empire.CommodityName(c)] = s.Market.Price(c)
	}
	writeJSON(w, map[string]any{"prices": prices})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	rows, err := s.DB.RecentResults(s.Game.ID, limit)
	if err != nil {
		slog.Error("results query failed", "error", err)
		writeJSON(w, []persistence.TurnResultRow{})
		return
	}
	if rows == nil {
		rows = []persistence.TurnResultRow{}
	}
	writeJSON(w, rows)
}
