package persistence

import (
	"errors"
	"fmt"
	"time"

	"github.com/ReZorDos/TerraWar-sub000/messages"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// SnapshotRecord is one accepted state of a match
type SnapshotRecord struct {
	MatchID     string            `json:"matchId"`
	Seq         int               `json:"seq"`
	Players     []string          `json:"players"`
	CurrentTurn int               `json:"currentTurn"`
	Snapshot    messages.Snapshot `json:"snapshot"`
	SavedAt     time.Time         `json:"savedAt"`
}

// Storage defines the interface for the snapshot archive
type Storage interface {
	SaveSnapshot(rec SnapshotRecord) error
	LoadSnapshots(matchID string) ([]SnapshotRecord, error)
	Close() error
}

// Open selects a backend by name. "none" and "" return a nil Storage.
func Open(backend, dsn, file string) (Storage, error) {
	var (
		store Storage
		err   error
	)
	switch backend {
	case "", "none":
		return nil, nil
	case "json":
		store, err = NewJSONStore(file)
	case "postgres":
		store, err = NewPostgresStore(dsn)
	case "sqlite":
		store, err = NewSQLiteStore(file)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
