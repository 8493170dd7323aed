package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

// JSONStore archives snapshots in a local JSON file
type JSONStore struct {
	filePath string
	mutex    sync.RWMutex
	data     *JSONData
}

// JSONData represents the structure of the JSON archive
type JSONData struct {
	Matches map[string][]SnapshotRecord `json:"matches"`
}

// NewJSONStore creates a new JSON archive
func NewJSONStore(filePath string) (*JSONStore, error) {
	store := &JSONStore{
		filePath: filePath,
		data: &JSONData{
			Matches: make(map[string][]SnapshotRecord),
		},
	}

	// Load existing data if file exists
	if _, err := os.Stat(filePath); err == nil {
		if err := store.loadFromFile(); err != nil {
			return nil, fmt.Errorf("failed to load JSON store: %w", err)
		}
	} else {
		store.mutex.Lock()
		err := store.saveToFile()
		store.mutex.Unlock()
		if err != nil {
			return nil, fmt.Errorf("failed to create JSON store file: %w", err)
		}
	}

	return store, nil
}

// loadFromFile loads data from the JSON file
func (js *JSONStore) loadFromFile() error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	file, err := os.ReadFile(js.filePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(file, js.data); err != nil {
		return err
	}
	if js.data.Matches == nil {
		js.data.Matches = make(map[string][]SnapshotRecord)
	}
	return nil
}

// saveToFile writes the archive; callers hold the write lock
func (js *JSONStore) saveToFile() error {
	data, err := json.MarshalIndent(js.data, "", "  ")
	if err != nil {
		return err
	}

	tmp := js.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, js.filePath)
}

// SaveSnapshot appends a record to its match
func (js *JSONStore) SaveSnapshot(rec SnapshotRecord) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	js.data.Matches[rec.MatchID] = append(js.data.Matches[rec.MatchID], rec)
	if err := js.saveToFile(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshots returns every record of a match ordered by sequence
func (js *JSONStore) LoadSnapshots(matchID string) ([]SnapshotRecord, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	records, exists := js.data.Matches[matchID]
	if !exists {
		return nil, fmt.Errorf("match %s not found", matchID)
	}

	out := append([]SnapshotRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

// Close closes the store (no-op for JSON store)
func (js *JSONStore) Close() error {
	return nil
}
