// Package persistence provides SQLite-backed game state storage. The engine
// writes through the Store interface fire-and-forget; reads are for the API
// and for resuming a saved game.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/star-dominion/internal/bots"
	"github.com/talgya/star-dominion/internal/empire"
	"github.com/talgya/star-dominion/internal/engine"
)

// DB wraps a SQLite connection for game state persistence.
type DB struct {
	conn *sqlx.DB
}

var _ engine.Store = (*DB)(nil)

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS empires (
		game_id TEXT NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		networth INTEGER NOT NULL,
		population INTEGER NOT NULL,
		research_points INTEGER NOT NULL,
		unit_tech_level INTEGER NOT NULL,
		is_bot INTEGER NOT NULL,
		is_eliminated INTEGER NOT NULL,
		planets_json TEXT NOT NULL,
		resources_json TEXT NOT NULL,
		units_json TEXT NOT NULL,
		PRIMARY KEY (game_id, id)
	);

	CREATE TABLE IF NOT EXISTS turn_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id TEXT NOT NULL,
		turn INTEGER NOT NULL,
		empire_id TEXT NOT NULL,
		decision_type TEXT NOT NULL,
		executed INTEGER NOT NULL,
		success INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS tells (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id TEXT NOT NULL,
		turn INTEGER NOT NULL,
		empire_id TEXT NOT NULL,
		style TEXT NOT NULL,
		hint TEXT NOT NULL,
		target_id TEXT NOT NULL DEFAULT '',
		turns_ahead INTEGER NOT NULL DEFAULT 0,
		message TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS game_meta (
		game_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (game_id, key)
	);

	CREATE INDEX IF NOT EXISTS idx_turn_results_game_turn ON turn_results(game_id, turn);
	CREATE INDEX IF NOT EXISTS idx_tells_game_turn ON tells(game_id, turn);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveEmpire upserts one empire's full state.
func (db *DB) SaveEmpire(ctx context.Context, gameID string, e *empire.Empire) error {
	planetsJSON, _ := json.Marshal(e.Planets)
	resourcesJSON, _ := json.Marshal(e.Resources)
	unitsJSON, _ := json.Marshal(e.Units)

	_, err := db.conn.ExecContext(ctx, `INSERT OR REPLACE INTO empires
		(game_id, id, name, networth, population, research_points,
		 unit_tech_level, is_bot, is_eliminated,
		 planets_json, resources_json, units_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		gameID, e.ID, e.Name, e.Networth, e.Population, e.ResearchPoints,
		e.UnitTechLevel, boolInt(e.IsBot), boolInt(e.IsEliminated),
		string(planetsJSON), string(resourcesJSON), string(unitsJSON),
	)
	if err != nil {
		return fmt.Errorf("save empire %s: %w", e.ID, err)
	}
	return nil
}

// SaveTurnResults appends the per-bot results for one turn.
func (db *DB) SaveTurnResults(ctx context.Context, gameID string, turn int, results []engine.BotTurnResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO turn_results
		(game_id, turn, empire_id, decision_type, executed, success, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range results {
		_, err := stmt.Exec(gameID, turn, r.EmpireID, string(r.DecisionType),
			boolInt(r.Executed), boolInt(r.Success), r.Error)
		if err != nil {
			return fmt.Errorf("insert result for %s: %w", r.EmpireID, err)
		}
	}

	return tx.Commit()
}

// SaveTell appends one tell event.
func (db *DB) SaveTell(ctx context.Context, gameID string, tell *bots.TellEvent) error {
	_, err := db.conn.ExecContext(ctx, `INSERT INTO tells
		(game_id, turn, empire_id, style, hint, target_id, turns_ahead, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		gameID, tell.Turn, tell.EmpireID, string(tell.Style), string(tell.Hint),
		tell.TargetID, tell.TurnsAhead, tell.Message,
	)
	return err
}

// empireRow is the scan shape for the empires table.
type empireRow struct {
	ID            string `db:"id"`
	Name          string `db:"name"`
	Networth      int64  `db:"networth"`
	Population    int64  `db:"population"`
	Research      int64  `db:"research_points"`
	TechLevel     int64  `db:"unit_tech_level"`
	IsBot         int    `db:"is_bot"`
	IsEliminated  int    `db:"is_eliminated"`
	PlanetsJSON   string `db:"planets_json"`
	ResourcesJSON string `db:"resources_json"`
	UnitsJSON     string `db:"units_json"`
}

// LoadEmpires restores all empires for a game.
func (db *DB) LoadEmpires(gameID string) ([]*empire.Empire, error) {
	var rows []empireRow
	err := db.conn.Select(&rows, `SELECT id, name, networth, population,
		research_points, unit_tech_level, is_bot, is_eliminated,
		planets_json, resources_json, units_json
		FROM empires WHERE game_id = ?`, gameID)
	if err != nil {
		return nil, fmt.Errorf("load empires: %w", err)
	}

	out := make([]*empire.Empire, 0, len(rows))
	for _, r := range rows {
		e := &empire.Empire{
			ID:             r.ID,
			Name:           r.Name,
			Networth:       r.Networth,
			Population:     r.Population,
			ResearchPoints: r.Research,
			UnitTechLevel:  r.TechLevel,
			IsBot:          r.IsBot != 0,
			IsEliminated:   r.IsEliminated != 0,
		}
		if err := json.Unmarshal([]byte(r.PlanetsJSON), &e.Planets); err != nil {
			slog.Warn("bad planets payload", "empire", r.ID, "error", err)
		}
		if err := json.Unmarshal([]byte(r.ResourcesJSON), &e.Resources); err != nil {
			slog.Warn("bad resources payload", "empire", r.ID, "error", err)
		}
		if err := json.Unmarshal([]byte(r.UnitsJSON), &e.Units); err != nil {
			slog.Warn("bad units payload", "empire", r.ID, "error", err)
		}
		out = append(out, e)
	}
	return out, nil
}

// TurnResultRow is one persisted turn result, for the API and reports.
type TurnResultRow struct {
	Turn         int    `db:"turn" json:"turn"`
	EmpireID     string `db:"empire_id" json:"empire_id"`
	DecisionType string `db:"decision_type" json:"decision_type"`
	Executed     int    `db:"executed" json:"executed"`
	Success      int    `db:"success" json:"success"`
	Error        string `db:"error" json:"error,omitempty"`
}

// RecentResults returns the most recent N turn results for a game.
func (db *DB) RecentResults(gameID string, limit int) ([]TurnResultRow, error) {
	var rows []TurnResultRow
	err := db.conn.Select(&rows, `SELECT turn, empire_id, decision_type,
		executed, success, error
		FROM turn_results WHERE game_id = ?
		ORDER BY id DESC LIMIT ?`, gameID, limit)
	return rows, err
}

// SaveMeta stores a key-value pair of game metadata.
func (db *DB) SaveMeta(gameID, key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO game_meta (game_id, key, value) VALUES (?, ?, ?)",
		gameID, key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(gameID, key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM game_meta WHERE game_id = ? AND key = ?", gameID, key)
	return value, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
