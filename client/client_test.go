package client

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ReZorDos/TerraWar-sub000/handlers"
	"github.com/ReZorDos/TerraWar-sub000/messages"
	"github.com/ReZorDos/TerraWar-sub000/network"
	"github.com/ReZorDos/TerraWar-sub000/services"
)

const waitFor = 2 * time.Second

func startServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	clients := handlers.NewClientManager(nil)
	coordinator := handlers.NewMatchCoordinator(clients, nil, nil)
	go coordinator.Run(ctx)
	server := handlers.NewServer(coordinator, clients, network.Options{}, 0)

	served := make(chan struct{})
	go func() {
		_ = server.Serve(ctx, ln)
		close(served)
	}()
	t.Cleanup(func() {
		cancel()
		<-served
	})
	return ln.Addr().String()
}

type responses struct {
	mu  sync.Mutex
	all []messages.InboundResponse
}

func (r *responses) add(resp messages.InboundResponse) {
	r.mu.Lock()
	r.all = append(r.all, resp)
	r.mu.Unlock()
}

func (r *responses) list() []messages.InboundResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]messages.InboundResponse(nil), r.all...)
}

func dialAndConnect(t *testing.T, addr, nick string, index int) (*SyncClient, *responses) {
	t.Helper()
	c, err := Dial(context.Background(), addr, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	rec := &responses{}
	c.OnResponse(rec.add)
	require.NoError(t, c.Connect(nick, index))
	require.Eventually(t, func() bool { return len(rec.list()) > 0 }, waitFor, 10*time.Millisecond)
	require.True(t, rec.list()[0].Success, rec.list()[0].Message)
	return c, rec
}

func TestDialFailureIsReturned(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = Dial(context.Background(), addr, Options{DialTimeout: time.Second})
	assert.Error(t, err)
}

func TestConnectReportsSlot(t *testing.T) {
	addr := startServer(t)
	_, first := dialAndConnect(t, addr, "alice", 0)
	_, second := dialAndConnect(t, addr, "bob", 1)

	var result messages.ConnectResult
	require.NoError(t, json.Unmarshal(first.list()[0].Data, &result))
	assert.Equal(t, 0, result.IndexOfPlayer)
	require.NoError(t, json.Unmarshal(second.list()[0].Data, &result))
	assert.Equal(t, 1, result.IndexOfPlayer)
}

func TestMatchFlow(t *testing.T) {
	addr := startServer(t)
	alice, aliceResp := dialAndConnect(t, addr, "alice", 0)
	bob, bobResp := dialAndConnect(t, addr, "bob", 1)

	states := make(chan messages.StateMessage, 64)
	bob.OnState(func(s messages.StateMessage) { states <- s })

	require.NoError(t, alice.SetReady(true))
	require.NoError(t, bob.SetReady(true))
	require.Eventually(t, func() bool {
		s, ok := alice.LastState()
		return ok && s.AllReady()
	}, waitFor, 10*time.Millisecond)
	assert.False(t, alice.IsMyTurn(), "no turns before the first snapshot")

	w, err := services.NewMatchWorld([]string{"alice", "bob"}, 8, 8, 11)
	require.NoError(t, err)
	require.NoError(t, alice.SubmitState(services.ToSnapshot(w)))

	require.Eventually(t, alice.IsMyTurn, waitFor, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		s, ok := bob.LastState()
		return ok && s.GameStarted
	}, waitFor, 10*time.Millisecond)
	assert.False(t, bob.IsMyTurn())

	var bobUnits int
	bob.WithWorld(func(w *services.World) {
		bobUnits = len(w.Units.ByOwner(1))
		assert.Equal(t, []string{"alice", "bob"}, w.Match.Players)
	})
	assert.Equal(t, 1, bobUnits)

	require.NoError(t, bob.SubmitWorld())
	require.Eventually(t, func() bool {
		for _, r := range bobResp.list() {
			if !r.Success && r.Message == handlers.ErrNotYourTurn.Error() {
				return true
			}
		}
		return false
	}, waitFor, 10*time.Millisecond)

	require.NoError(t, alice.EndTurn())
	require.Eventually(t, bob.IsMyTurn, waitFor, 10*time.Millisecond)
	require.Eventually(t, func() bool { return !alice.IsMyTurn() }, waitFor, 10*time.Millisecond)
	assert.NotEmpty(t, aliceResp.list())
	assert.NotEmpty(t, states)
}

func TestLeaveEndsSession(t *testing.T) {
	addr := startServer(t)
	alice, _ := dialAndConnect(t, addr, "alice", 0)
	bob, _ := dialAndConnect(t, addr, "bob", 1)

	require.NoError(t, alice.Leave("bye"))

	select {
	case <-alice.Done():
	case <-time.After(waitFor):
		t.Fatal("server did not close the connection after leave")
	}
	assert.ErrorIs(t, alice.EndTurn(), ErrNotConnected)

	require.Eventually(t, func() bool {
		s, ok := bob.LastState()
		return ok && len(s.Players) == 1 && s.Players[0] == "bob"
	}, waitFor, 10*time.Millisecond)
}
