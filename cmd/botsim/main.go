// Command botsim runs an autonomous bot-versus-bot galactic conquest game.
package main

import (
	"context"
	"flag"
	"fmt"
	"hash/fnv"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/star-dominion/internal/api"
	"github.com/talgya/star-dominion/internal/bots"
	"github.com/talgya/star-dominion/internal/combat"
	"github.com/talgya/star-dominion/internal/diplomacy"
	"github.com/talgya/star-dominion/internal/empire"
	"github.com/talgya/star-dominion/internal/engine"
	"github.com/talgya/star-dominion/internal/entropy"
	"github.com/talgya/star-dominion/internal/llm"
	"github.com/talgya/star-dominion/internal/market"
	"github.com/talgya/star-dominion/internal/persistence"
	"github.com/talgya/star-dominion/internal/syndicate"
)

func main() {
	var (
		numBots         = flag.Int("bots", 8, "number of bot empires")
		turns           = flag.Int("turns", 100, "turns to run (0 = until one empire remains)")
		protectionTurns = flag.Int("protection", 5, "turns of new-player protection")
		difficulty      = flag.String("difficulty", "medium", "bot difficulty: easy, medium, hard, nightmare")
		seed            = flag.Uint64("seed", 0, "deterministic seed (0 = crypto entropy)")
		dbPath          = flag.String("db", "data/dominion.db", "SQLite database path")
		apiPort         = flag.Int("port", 0, "HTTP observation API port (0 = disabled)")
		turnDelay       = flag.Duration("delay", 0, "pause between turns")
		verbose         = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	diff := bots.Difficulty(*difficulty)
	switch diff {
	case bots.DifficultyEasy, bots.DifficultyMedium, bots.DifficultyHard, bots.DifficultyNightmare:
	default:
		slog.Error("unknown difficulty", "difficulty", *difficulty)
		os.Exit(1)
	}

	os.MkdirAll("data", 0755)
	db, err := persistence.Open(*dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", *dbPath)

	gameID := uuid.NewString()
	g := &engine.Game{
		ID:              gameID,
		ProtectionTurns: *protectionTurns,
		Empires:         make(map[string]*empire.Empire),
	}

	// ── Seed bot empires ─────────────────────────────────────────────
	pick := entropy.Default()
	if *seed != 0 {
		pick = entropy.NewSeeded(*seed)
	}
	for i := 0; i < *numBots; i++ {
		arch := bots.PickArchetype(pick, nil)
		e := seedEmpire(fmt.Sprintf("bot-%02d", i+1), fmt.Sprintf("%s Dominion %d", titleCase(string(arch)), i+1))
		g.Empires[e.ID] = e
		g.Bots = append(g.Bots, bots.NewBot(e.ID, arch, diff))
		slog.Info("bot seeded", "empire", e.ID, "name", e.Name,
			"archetype", arch, "networth", humanize.Comma(e.Networth))
	}

	// ── Services ─────────────────────────────────────────────────────
	lookup := g.Empire
	archetypeOf := func(empireID string) bots.Archetype {
		for _, b := range g.Bots {
			if b.EmpireID == empireID {
				return b.Archetype
			}
		}
		return ""
	}

	resolver := &combat.Resolver{Lookup: lookup}
	mkt := market.New(lookup)
	registry := diplomacy.NewRegistry(archetypeOf)
	synd := syndicate.New(lookup)

	var tier1 engine.DecisionSource
	if client := llm.NewClient(os.Getenv("ANTHROPIC_API_KEY")); client.Enabled() {
		slog.Info("tier-1 LLM decisions enabled")
		tier1 = llm.NewDecider(client)
	} else {
		slog.Info("ANTHROPIC_API_KEY not set, scripted decisions only")
	}

	orch := &engine.Orchestrator{
		Combat:    resolver,
		Diplomacy: registry,
		Market:    mkt,
		Syndicate: synd,
		Store:     db,
		Tier1:     tier1,
	}
	if *seed != 0 {
		base := *seed
		orch.Entropy = func(empireID string, turn int) entropy.Source {
			h := fnv.New64a()
			fmt.Fprintf(h, "%s/%d", empireID, turn)
			return entropy.NewSeeded(base ^ h.Sum64())
		}
		resolver.Rand = entropy.NewSeeded(base + 1)
		registry.Rand = entropy.NewSeeded(base + 2)
		synd.Rand = entropy.NewSeeded(base + 3)
	}

	if err := db.SaveMeta(gameID, "difficulty", string(diff)); err != nil {
		slog.Warn("meta save failed", "error", err)
	}

	if *apiPort > 0 {
		server := &api.Server{Game: g, Market: mkt, DB: db, Port: *apiPort}
		server.Start()
		fmt.Printf("API: http://localhost:%d/api/v1/status\n", *apiPort)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, stopping after current turn", "signal", sig)
		cancel()
	}()

	fmt.Printf("\nGame %s: %d empires, %s difficulty, %d protection turns.\n",
		gameID, *numBots, diff, *protectionTurns)

	// ── Turn loop ────────────────────────────────────────────────────
	for turn := 1; *turns == 0 || turn <= *turns; turn++ {
		if ctx.Err() != nil {
			break
		}

		report := orch.RunTurn(ctx, g)
		printTurn(report)

		if alive := activeCount(g); alive <= 1 {
			fmt.Printf("\nGame over on turn %d: %d empire(s) remain.\n", g.Turn, alive)
			break
		}
		if *turnDelay > 0 {
			select {
			case <-time.After(*turnDelay):
			case <-ctx.Done():
			}
		}
	}

	printStandings(g)
	fmt.Println("Game state saved.")
}

// seedEmpire builds a fresh bot empire with the standard starting holdings.
func seedEmpire(id, name string) *empire.Empire {
	e := &empire.Empire{
		ID:         id,
		Name:       name,
		Population: 50000,
		IsBot:      true,
		Resources: empire.Resources{
			Credits: 500000,
			Food:    20000,
			Ore:     10000,
			Fuel:    8000,
		},
		Units: empire.Forces{Soldiers: 500, Fighters: 100, Tanks: 40},
	}
	e.Planets[empire.PlanetFood] = 3
	e.Planets[empire.PlanetOre] = 2
	e.Planets[empire.PlanetFuel] = 2
	e.Planets[empire.PlanetUrban] = 2
	e.RecomputeNetworth()
	return e
}

func activeCount(g *engine.Game) int {
	n := 0
	for _, e := range g.Empires {
		if !e.IsEliminated {
			n++
		}
	}
	return n
}

func printTurn(report *engine.TurnReport) {
	fmt.Printf("── turn %d ──\n", report.Turn)
	for _, r := range report.Results {
		status := "skipped"
		if r.Executed && r.Success {
			status = "ok"
		} else if r.Executed {
			status = "failed"
		}
		line := fmt.Sprintf("  %-8s %-22s %s", r.EmpireID, r.DecisionType, status)
		if r.Error != "" {
			line += " (" + r.Error + ")"
		}
		fmt.Println(line)
		if r.Tell != nil {
			fmt.Printf("  %-8s   \"%s\"\n", "", r.Tell.Message)
		}
	}
}

func printStandings(g *engine.Game) {
	standings := make([]*empire.Empire, 0, len(g.Empires))
	for _, e := range g.Empires {
		standings = append(standings, e)
	}
	sort.Slice(standings, func(i, j int) bool { return standings[i].Networth > standings[j].Networth })

	fmt.Printf("\nFinal standings after turn %d:\n", g.Turn)
	for _, e := range standings {
		state := ""
		if e.IsEliminated {
			state = "  [eliminated]"
		}
		fmt.Printf("  %-8s %-28s networth %12s  planets %3d%s\n",
			e.ID, e.Name, humanize.Comma(e.Networth), e.TotalPlanets(), state)
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	out := []byte(s)
	up := true
	for i := range out {
		c := out[i]
		if c == '_' {
			out[i] = ' '
			up = true
			continue
		}
		if up && c >= 'a' && c <= 'z' {
			out[i] = c - 32
		}
		up = false
	}
	return string(out)
}
