package persistence

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore archives snapshots in a single SQLite file
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the archive at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite serialises writers anyway
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS match_snapshots (
		match_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		players TEXT NOT NULL,
		current_turn INTEGER NOT NULL,
		snapshot TEXT NOT NULL,
		saved_at DATETIME NOT NULL,
		PRIMARY KEY (match_id, seq)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// SaveSnapshot stores a record, replacing any earlier record with the same key
func (ss *SQLiteStore) SaveSnapshot(rec SnapshotRecord) error {
	playersJSON, snapJSON, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	_, err = ss.db.Exec(`INSERT OR REPLACE INTO match_snapshots (match_id, seq, players, current_turn, snapshot, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.MatchID, rec.Seq, playersJSON, rec.CurrentTurn, snapJSON, rec.SavedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshots returns every record of a match ordered by sequence
func (ss *SQLiteStore) LoadSnapshots(matchID string) ([]SnapshotRecord, error) {
	rows, err := ss.db.Query(`SELECT match_id, seq, players, current_turn, snapshot, saved_at
		FROM match_snapshots WHERE match_id = ? ORDER BY seq`, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows, matchID)
}

// Close closes the database connection
func (ss *SQLiteStore) Close() error {
	return ss.db.Close()
}
