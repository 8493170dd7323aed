package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ReZorDos/TerraWar-sub000/messages"
	"github.com/ReZorDos/TerraWar-sub000/persistence"
	"github.com/ReZorDos/TerraWar-sub000/services"
)

type fakeBroadcaster struct {
	mu     sync.Mutex
	states []messages.StateMessage
}

func (b *fakeBroadcaster) Broadcast(msg interface{}) {
	env, ok := msg.(messages.Envelope)
	if !ok || env.Type != messages.MessageTypeState {
		return
	}
	var state messages.StateMessage
	if err := json.Unmarshal(env.Data, &state); err != nil {
		return
	}
	b.mu.Lock()
	b.states = append(b.states, state)
	b.mu.Unlock()
}

func (b *fakeBroadcaster) last() messages.StateMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.states[len(b.states)-1]
}

func (b *fakeBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.states)
}

type memArchive struct {
	mu      sync.Mutex
	records []persistence.SnapshotRecord
}

func (a *memArchive) SaveSnapshot(rec persistence.SnapshotRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
	return nil
}

func (a *memArchive) LoadSnapshots(matchID string) ([]persistence.SnapshotRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []persistence.SnapshotRecord
	for _, r := range a.records {
		if r.MatchID == matchID {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("match %s not found", matchID)
	}
	return out, nil
}

func (a *memArchive) Close() error { return nil }

func (a *memArchive) saved() []persistence.SnapshotRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]persistence.SnapshotRecord(nil), a.records...)
}

// waitArchived blocks until the archive writer has stored n records
func waitArchived(t *testing.T, a *memArchive, n int) []persistence.SnapshotRecord {
	t.Helper()
	require.Eventually(t, func() bool { return len(a.saved()) >= n }, 2*time.Second, 5*time.Millisecond)
	records := a.saved()
	require.Len(t, records, n)
	return records
}

// blockingArchive holds every save until release is closed
type blockingArchive struct {
	memArchive
	release chan struct{}
}

func (a *blockingArchive) SaveSnapshot(rec persistence.SnapshotRecord) error {
	<-a.release
	return a.memArchive.SaveSnapshot(rec)
}

func startCoordinator(t *testing.T) (*MatchCoordinator, *fakeBroadcaster, *memArchive) {
	t.Helper()
	b := &fakeBroadcaster{}
	a := &memArchive{}
	c := NewMatchCoordinator(b, a, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go c.Run(ctx)
	t.Cleanup(cancel)
	return c, b, a
}

func register(t *testing.T, c *MatchCoordinator, nicks ...string) {
	t.Helper()
	for i, nick := range nicks {
		index, err := c.RegisterPlayer(nick)
		require.NoError(t, err)
		require.Equal(t, i, index)
	}
}

func openingSnapshot(t *testing.T, nicks ...string) messages.Snapshot {
	t.Helper()
	w, err := services.NewMatchWorld(nicks, 8, 8, 3)
	require.NoError(t, err)
	return services.ToSnapshot(w)
}

func startMatch(t *testing.T, c *MatchCoordinator, nicks ...string) {
	t.Helper()
	register(t, c, nicks...)
	for _, nick := range nicks {
		require.NoError(t, c.HandleReady(nick, true))
	}
	require.NoError(t, c.ApplyClientState(nicks[0], openingSnapshot(t, nicks...)))
}

func TestReadyGateBlocksFirstSnapshot(t *testing.T) {
	c, _, archive := startCoordinator(t)
	register(t, c, "alice", "bob")
	require.NoError(t, c.HandleReady("alice", true))

	err := c.ApplyClientState("alice", openingSnapshot(t, "alice", "bob"))
	assert.ErrorIs(t, err, ErrPlayersNotReady)

	state, err := c.State()
	require.NoError(t, err)
	assert.Nil(t, state.StateSnapshot)
	assert.False(t, state.GameStarted)
	assert.Empty(t, archive.saved())
}

func TestSinglePlayerCannotStart(t *testing.T) {
	c, _, _ := startCoordinator(t)
	register(t, c, "alice")
	require.NoError(t, c.HandleReady("alice", true))

	assert.ErrorIs(t, c.ApplyClientState("alice", openingSnapshot(t, "alice", "bob")), ErrPlayersNotReady)
}

func TestFirstSnapshotStartsMatch(t *testing.T) {
	c, b, archive := startCoordinator(t)
	startMatch(t, c, "alice", "bob")

	state := b.last()
	assert.True(t, state.GameStarted)
	require.NotNil(t, state.StateSnapshot)
	assert.Equal(t, 0, state.CurrentTurn)
	assert.Equal(t, map[string]bool{"alice": true, "bob": true}, state.ReadyPlayers)

	records := waitArchived(t, archive, 1)
	assert.Equal(t, c.MatchID(), records[0].MatchID)
	assert.Equal(t, 1, records[0].Seq)
}

func TestTurnArbitration(t *testing.T) {
	c, b, archive := startCoordinator(t)
	startMatch(t, c, "alice", "bob")
	snap := openingSnapshot(t, "alice", "bob")

	assert.ErrorIs(t, c.ApplyClientState("bob", snap), ErrNotYourTurn)
	assert.ErrorIs(t, c.EndTurn("bob"), ErrNotYourTurn)
	assert.ErrorIs(t, c.EndTurn("mallory"), ErrUnknownPlayer)

	require.NoError(t, c.ApplyClientState("alice", snap))
	require.NoError(t, c.EndTurn("alice"))
	assert.Equal(t, 1, b.last().CurrentTurn)

	assert.ErrorIs(t, c.ApplyClientState("alice", snap), ErrNotYourTurn)
	require.NoError(t, c.ApplyClientState("bob", snap))
	require.NoError(t, c.EndTurn("bob"))
	assert.Equal(t, 0, b.last().CurrentTurn)

	records := waitArchived(t, archive, 3)
	assert.Equal(t, 3, records[2].Seq)
}

func TestSlowArchiveDoesNotStallCommands(t *testing.T) {
	archive := &blockingArchive{release: make(chan struct{})}
	c := NewMatchCoordinator(&fakeBroadcaster{}, archive, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	startMatch(t, c, "alice", "bob")
	snap := openingSnapshot(t, "alice", "bob")
	require.NoError(t, c.ApplyClientState("alice", snap))
	require.NoError(t, c.EndTurn("alice"))
	state, err := c.State()
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentTurn)
	assert.Empty(t, archive.saved())

	close(archive.release)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("coordinator did not stop")
	}
	records := archive.saved()
	require.Len(t, records, 2, "queued snapshots are written before Run returns")
	assert.Equal(t, 2, records[1].Seq)
}

func TestEndTurnBeforeStart(t *testing.T) {
	c, _, _ := startCoordinator(t)
	register(t, c, "alice", "bob")

	assert.ErrorIs(t, c.EndTurn("alice"), ErrNotStarted)
}

func TestRegisterPlayerRejections(t *testing.T) {
	c, _, _ := startCoordinator(t)
	register(t, c, "a", "b", "c", "d")

	_, err := c.RegisterPlayer("a")
	assert.ErrorIs(t, err, ErrNickTaken)
	_, err = c.RegisterPlayer("e")
	assert.ErrorIs(t, err, ErrMatchFull)
	_, err = c.RegisterPlayer("")
	assert.ErrorIs(t, err, ErrNickRequired)
	assert.ErrorIs(t, c.HandleReady("e", true), ErrUnknownPlayer)
}

func TestRegisterAfterStartIsRejected(t *testing.T) {
	c, _, _ := startCoordinator(t)
	startMatch(t, c, "alice", "bob")

	_, err := c.RegisterPlayer("carol")
	assert.ErrorIs(t, err, ErrMatchStarted)
}

func TestRemovePlayerKeepsTurnHolder(t *testing.T) {
	c, b, _ := startCoordinator(t)
	startMatch(t, c, "a", "b", "c")
	require.NoError(t, c.EndTurn("a"))
	require.NoError(t, c.EndTurn("b"))
	require.Equal(t, 2, b.last().CurrentTurn)

	require.NoError(t, c.RemovePlayer("a"))

	state := b.last()
	assert.Equal(t, []string{"b", "c"}, state.Players)
	assert.Equal(t, 1, state.CurrentTurn)
	current, ok := state.CurrentPlayer()
	require.True(t, ok)
	assert.Equal(t, "c", current)
}

func TestRemoveTurnHolderPassesTurn(t *testing.T) {
	c, b, _ := startCoordinator(t)
	startMatch(t, c, "a", "b", "c")
	require.NoError(t, c.EndTurn("a"))
	require.NoError(t, c.EndTurn("b"))

	require.NoError(t, c.RemovePlayer("c"))

	state := b.last()
	assert.Equal(t, 0, state.CurrentTurn)
	require.NoError(t, c.ApplyClientState("a", *state.StateSnapshot))
}

func TestRemovePlayerPurgesSnapshot(t *testing.T) {
	c, b, archive := startCoordinator(t)
	startMatch(t, c, "a", "b", "c")

	require.NoError(t, c.RemovePlayer("b"))

	snap := b.last().StateSnapshot
	require.NotNil(t, snap)
	for _, hex := range snap.Hexes {
		assert.NotEqual(t, 1, hex.OwnerID)
	}
	for _, u := range snap.Units {
		assert.NotEqual(t, 1, u.OwnerID)
	}
	assert.Len(t, snap.PlayersState, 2)
	_, ok := snap.PlayerIDByName("b")
	assert.False(t, ok)
	waitArchived(t, archive, 2)

	assert.ErrorIs(t, c.RemovePlayer("b"), ErrUnknownPlayer)
}

func TestLastPlayerLeavingResetsMatch(t *testing.T) {
	c, _, _ := startCoordinator(t)
	startMatch(t, c, "a", "b")
	firstMatch := c.MatchID()

	require.NoError(t, c.RemovePlayer("a"))
	require.NoError(t, c.RemovePlayer("b"))

	state, err := c.State()
	require.NoError(t, err)
	assert.Empty(t, state.Players)
	assert.Nil(t, state.StateSnapshot)
	assert.False(t, state.GameStarted)
	assert.NotEqual(t, firstMatch, c.MatchID())

	index, err := c.RegisterPlayer("a")
	require.NoError(t, err)
	assert.Equal(t, 0, index)
}

func TestStateIsACopy(t *testing.T) {
	c, _, _ := startCoordinator(t)
	startMatch(t, c, "a", "b")

	state, err := c.State()
	require.NoError(t, err)
	state.Players[0] = "mallory"
	state.StateSnapshot.Hexes[0].OwnerID = 42

	again, err := c.State()
	require.NoError(t, err)
	assert.Equal(t, "a", again.Players[0])
	assert.NotEqual(t, 42, again.StateSnapshot.Hexes[0].OwnerID)
}

func TestStoppedCoordinator(t *testing.T) {
	c := NewMatchCoordinator(nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	_, err := c.RegisterPlayer("a")
	assert.ErrorIs(t, err, ErrStopped)
}

func TestEveryChangeIsBroadcast(t *testing.T) {
	c, b, _ := startCoordinator(t)
	register(t, c, "a", "b")
	require.Equal(t, 2, b.count())

	require.NoError(t, c.HandleReady("a", true))
	assert.Equal(t, 3, b.count())
	assert.Equal(t, map[string]bool{"a": true, "b": false}, b.last().ReadyPlayers)

	_, err := c.RegisterPlayer("a")
	require.Error(t, err)
	assert.Equal(t, 3, b.count(), "rejections do not broadcast")
}
