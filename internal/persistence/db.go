// Package persistence provides SQLite-based simulation state storage.
package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection for simulation state persistence.
type DB struct {
	conn *sqlx.DB
}

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
	CREATE TABLE IF NOT EXISTS snapshots (
		year        INTEGER PRIMARY KEY,
		tick        INTEGER NOT NULL,
		taken_at    TEXT NOT NULL,
		grid_json   TEXT NOT NULL,
		people_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id          TEXT PRIMARY KEY,
		tick        INTEGER NOT NULL,
		category    TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS stats_history (
		year       INTEGER PRIMARY KEY,
		population INTEGER NOT NULL,
		births     INTEGER NOT NULL,
		deaths     INTEGER NOT NULL,
		disasters  INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}

	// Columns that may not exist in older databases.
	migrations := []string{
		"ALTER TABLE stats_history ADD COLUMN food_stockpile INTEGER NOT NULL DEFAULT 0",
	}
	for _, m := range migrations {
		db.conn.Exec(m) // Ignore errors — column may already exist.
	}

	return nil
}

// SaveSnapshot persists a year's grid-plus-population state, overwriting
// any existing row for that year.
func (db *DB) SaveSnapshot(year, tick int, takenAt string, gridRows any, people any) error {
	gridJSON, err := json.Marshal(gridRows)
	if err != nil {
		return err
	}
	peopleJSON, err := json.Marshal(people)
	if err != nil {
		return err
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO snapshots (year, tick, taken_at, grid_json, people_json)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(year) DO UPDATE SET
			tick=excluded.tick, taken_at=excluded.taken_at,
			grid_json=excluded.grid_json, people_json=excluded.people_json`,
		year, tick, takenAt, string(gridJSON), string(peopleJSON))
	if err != nil {
		return fmt.Errorf("insert snapshot year %d: %w", year, err)
	}

	return tx.Commit()
}

// SnapshotRow is the persisted form of a simulation snapshot.
type SnapshotRow struct {
	Year       int    `db:"year"`
	Tick       int    `db:"tick"`
	TakenAt    string `db:"taken_at"`
	GridJSON   string `db:"grid_json"`
	PeopleJSON string `db:"people_json"`
}

// LoadLatestSnapshot returns the most recently saved snapshot row.
func (db *DB) LoadLatestSnapshot() (*SnapshotRow, error) {
	var row SnapshotRow
	err := db.conn.Get(&row, "SELECT year, tick, taken_at, grid_json, people_json FROM snapshots ORDER BY year DESC LIMIT 1")
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// LoadSnapshot returns a specific year's snapshot row.
func (db *DB) LoadSnapshot(year int) (*SnapshotRow, error) {
	var row SnapshotRow
	err := db.conn.Get(&row, "SELECT year, tick, taken_at, grid_json, people_json FROM snapshots WHERE year = ?", year)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// HasSnapshot returns true if the database contains at least one snapshot.
func (db *DB) HasSnapshot() bool {
	var count int
	err := db.conn.Get(&count, "SELECT COUNT(*) FROM snapshots")
	return err == nil && count > 0
}

// EventRow is a persisted simulation event.
type EventRow struct {
	ID          string `db:"id"`
	Tick        int    `db:"tick"`
	Category    string `db:"category"`
	Description string `db:"description"`
}

// SaveEvents appends a batch of events to the database, ignoring
// duplicates by ID (a subscriber may hand back the same event twice
// across overlapping flush windows).
func (db *DB) SaveEvents(events []EventRow) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex("INSERT OR IGNORE INTO events (id, tick, category, description) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.Exec(e.ID, e.Tick, e.Category, e.Description); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]EventRow, error) {
	var events []EventRow
	err := db.conn.Select(&events,
		"SELECT id, tick, category, description FROM events ORDER BY tick DESC LIMIT ?",
		limit,
	)
	return events, err
}

// TrimOldEvents removes events older than keepTicks relative to currentTick.
func (db *DB) TrimOldEvents(currentTick, keepTicks int) (int64, error) {
	if currentTick <= keepTicks {
		return 0, nil
	}
	cutoff := currentTick - keepTicks
	result, err := db.conn.Exec("DELETE FROM events WHERE tick < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// SaveMeta stores a key-value pair in world metadata, such as the seed
// a run was started with or the last tick it reached.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// StatsRow represents a single year's population statistics.
type StatsRow struct {
	Year          int `json:"year" db:"year"`
	Population    int `json:"population" db:"population"`
	Births        int `json:"births" db:"births"`
	Deaths        int `json:"deaths" db:"deaths"`
	Disasters     int `json:"disasters" db:"disasters"`
	FoodStockpile int `json:"food_stockpile" db:"food_stockpile"`
}

// SaveStats records a yearly statistics snapshot.
func (db *DB) SaveStats(row StatsRow) error {
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO stats_history
		(year, population, births, deaths, disasters, food_stockpile)
		VALUES (?, ?, ?, ?, ?, ?)`,
		row.Year, row.Population, row.Births, row.Deaths, row.Disasters, row.FoodStockpile,
	)
	return err
}

// StatsRange returns stats rows within a year range, oldest first.
func (db *DB) StatsRange(fromYear, toYear int) ([]StatsRow, error) {
	var rows []StatsRow
	err := db.conn.Select(&rows,
		`SELECT year, population, births, deaths, disasters, food_stockpile
		 FROM stats_history WHERE year >= ? AND year <= ? ORDER BY year`,
		fromYear, toYear,
	)
	return rows, err
}
