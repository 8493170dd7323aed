package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStore archives snapshots in PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL archive
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema initializes the database schema
func (ps *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS match_snapshots (
		match_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		players JSONB NOT NULL,
		current_turn INTEGER NOT NULL,
		snapshot JSONB NOT NULL,
		saved_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		PRIMARY KEY (match_id, seq)
	);
	`

	_, err := ps.db.Exec(schema)
	return err
}

// SaveSnapshot stores a record, replacing any earlier record with the same key
func (ps *PostgresStore) SaveSnapshot(rec SnapshotRecord) error {
	playersJSON, snapJSON, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO match_snapshots (match_id, seq, players, current_turn, snapshot, saved_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (match_id, seq)
	DO UPDATE SET
		players = $3, current_turn = $4, snapshot = $5, saved_at = $6
	`

	_, err = ps.db.Exec(query, rec.MatchID, rec.Seq, playersJSON, rec.CurrentTurn, snapJSON, rec.SavedAt)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshots returns every record of a match ordered by sequence
func (ps *PostgresStore) LoadSnapshots(matchID string) ([]SnapshotRecord, error) {
	query := `SELECT match_id, seq, players, current_turn, snapshot, saved_at FROM match_snapshots WHERE match_id = $1 ORDER BY seq`

	rows, err := ps.db.Query(query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows, matchID)
}

// Close closes the database connection
func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

func encodeRecord(rec SnapshotRecord) (string, string, error) {
	playersJSON, err := json.Marshal(rec.Players)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal players: %w", err)
	}
	snapJSON, err := json.Marshal(rec.Snapshot)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return string(playersJSON), string(snapJSON), nil
}

func scanRecords(rows *sql.Rows, matchID string) ([]SnapshotRecord, error) {
	var records []SnapshotRecord
	for rows.Next() {
		var (
			rec         SnapshotRecord
			playersJSON []byte
			snapJSON    []byte
		)
		if err := rows.Scan(&rec.MatchID, &rec.Seq, &playersJSON, &rec.CurrentTurn, &snapJSON, &rec.SavedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if err := json.Unmarshal(playersJSON, &rec.Players); err != nil {
			return nil, fmt.Errorf("failed to unmarshal players: %w", err)
		}
		if err := json.Unmarshal(snapJSON, &rec.Snapshot); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("match %s not found", matchID)
	}
	return records, nil
}
