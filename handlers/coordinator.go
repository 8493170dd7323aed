package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ReZorDos/TerraWar-sub000/logging"
	"github.com/ReZorDos/TerraWar-sub000/messages"
	"github.com/ReZorDos/TerraWar-sub000/persistence"
	"github.com/ReZorDos/TerraWar-sub000/services"
)

var (
	ErrNotYourTurn     = errors.New("not your turn")
	ErrPlayersNotReady = errors.New("not all players are ready")
	ErrNotStarted      = errors.New("match has not started")
	ErrNickTaken       = errors.New("nickname already taken")
	ErrNickRequired    = errors.New("nickname required")
	ErrMatchFull       = errors.New("match is full")
	ErrMatchStarted    = errors.New("match already started")
	ErrUnknownPlayer   = errors.New("unknown player")
	ErrStopped         = errors.New("coordinator stopped")
)

// archiveQueueSize bounds snapshots waiting for the archive writer
const archiveQueueSize = 64

// Broadcaster delivers a message to every open connection
type Broadcaster interface {
	Broadcast(msg interface{})
}

// MatchCoordinator owns the authoritative match: roster, ready flags, turn index and the
// last accepted snapshot. All state lives in the Run goroutine; public methods submit
// commands and wait for them to finish, so each call is one atomic step.
type MatchCoordinator struct {
	commands    chan func()
	stopped     chan struct{}
	broadcaster Broadcaster
	archive     persistence.Storage
	archived    chan persistence.SnapshotRecord
	log         *zap.Logger

	players     []string
	ready       map[string]bool
	currentTurn int
	snapshot    *messages.Snapshot
	matchID     string
	seq         int
}

// NewMatchCoordinator creates a coordinator. archive may be nil.
func NewMatchCoordinator(broadcaster Broadcaster, archive persistence.Storage, log *zap.Logger) *MatchCoordinator {
	log = logging.OrNop(log)
	return &MatchCoordinator{
		commands:    make(chan func()),
		stopped:     make(chan struct{}),
		broadcaster: broadcaster,
		archive:     archive,
		archived:    make(chan persistence.SnapshotRecord, archiveQueueSize),
		log:         log,
		ready:       make(map[string]bool),
		matchID:     uuid.NewString(),
	}
}

// Run processes commands until ctx is done. Archived snapshots still queued
// when ctx ends are written before Run returns.
func (c *MatchCoordinator) Run(ctx context.Context) {
	defer close(c.stopped)
	c.log.Info("match coordinator started", zap.String("match", c.matchID))

	writerDone := make(chan struct{})
	go c.archiveLoop(writerDone)
	defer func() {
		close(c.archived)
		<-writerDone
	}()

	for {
		select {
		case cmd := <-c.commands:
			cmd()
		case <-ctx.Done():
			c.log.Info("match coordinator stopped", zap.String("match", c.matchID))
			return
		}
	}
}

func (c *MatchCoordinator) do(cmd func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		cmd()
	}

	select {
	case c.commands <- wrapped:
	case <-c.stopped:
		return ErrStopped
	}
	<-finished
	return nil
}

// RegisterPlayer adds nick to the roster and returns its slot
func (c *MatchCoordinator) RegisterPlayer(nick string) (int, error) {
	var (
		index int
		err   error
	)
	if stopErr := c.do(func() { index, err = c.registerPlayer(nick) }); stopErr != nil {
		return 0, stopErr
	}
	return index, err
}

func (c *MatchCoordinator) registerPlayer(nick string) (int, error) {
	switch {
	case nick == "":
		return 0, ErrNickRequired
	case c.indexOf(nick) >= 0:
		return 0, ErrNickTaken
	case c.snapshot != nil:
		return 0, ErrMatchStarted
	case len(c.players) >= services.MaxPlayers:
		return 0, ErrMatchFull
	}

	c.players = append(c.players, nick)
	c.ready[nick] = false
	c.log.Info("player joined", zap.String("nick", nick), zap.Int("slot", len(c.players)-1))
	c.broadcastState()
	return len(c.players) - 1, nil
}

// HandleReady records nick's ready flag
func (c *MatchCoordinator) HandleReady(nick string, ready bool) error {
	var err error
	if stopErr := c.do(func() {
		if c.indexOf(nick) < 0 {
			err = ErrUnknownPlayer
			return
		}
		c.ready[nick] = ready
		c.log.Info("ready changed", zap.String("nick", nick), zap.Bool("ready", ready))
		c.broadcastState()
	}); stopErr != nil {
		return stopErr
	}
	return err
}

// ApplyClientState accepts a full snapshot from sender.
// The first snapshot needs every registered player ready; later ones must come from the turn holder.
func (c *MatchCoordinator) ApplyClientState(sender string, snap messages.Snapshot) error {
	var err error
	if stopErr := c.do(func() { err = c.applyClientState(sender, snap) }); stopErr != nil {
		return stopErr
	}
	return err
}

func (c *MatchCoordinator) applyClientState(sender string, snap messages.Snapshot) error {
	if c.indexOf(sender) < 0 {
		return ErrUnknownPlayer
	}
	if c.snapshot == nil {
		if !c.allReady() {
			return ErrPlayersNotReady
		}
	} else if c.players[c.currentTurn] != sender {
		return ErrNotYourTurn
	}

	c.snapshot = snap.Clone()
	c.log.Info("state accepted", zap.String("nick", sender), zap.Int("turn", c.currentTurn))
	c.archiveSnapshot()
	c.broadcastState()
	return nil
}

// EndTurn passes the turn to the next slot. Only the turn holder may end it.
func (c *MatchCoordinator) EndTurn(sender string) error {
	var err error
	if stopErr := c.do(func() {
		switch {
		case c.indexOf(sender) < 0:
			err = ErrUnknownPlayer
		case c.snapshot == nil:
			err = ErrNotStarted
		case c.players[c.currentTurn] != sender:
			err = ErrNotYourTurn
		default:
			c.currentTurn = (c.currentTurn + 1) % len(c.players)
			c.log.Info("turn ended", zap.String("nick", sender), zap.String("next", c.players[c.currentTurn]))
			c.broadcastState()
		}
	}); stopErr != nil {
		return stopErr
	}
	return err
}

// RemovePlayer drops nick from the match and purges their holdings from the last snapshot.
// When nobody is left the match resets.
func (c *MatchCoordinator) RemovePlayer(nick string) error {
	var err error
	if stopErr := c.do(func() { err = c.removePlayer(nick) }); stopErr != nil {
		return stopErr
	}
	return err
}

func (c *MatchCoordinator) removePlayer(nick string) error {
	players, current, removed := services.RemoveFromRoster(c.players, c.currentTurn, nick)
	if !removed {
		return ErrUnknownPlayer
	}
	c.players = players
	c.currentTurn = current
	delete(c.ready, nick)
	c.log.Info("player left", zap.String("nick", nick), zap.Int("remaining", len(players)))

	if len(c.players) == 0 {
		c.reset()
		return nil
	}

	if c.snapshot != nil {
		if id, ok := c.snapshot.PlayerIDByName(nick); ok {
			c.snapshot.PurgeOwner(id)
			c.archiveSnapshot()
		}
	}
	c.broadcastState()
	return nil
}

func (c *MatchCoordinator) reset() {
	c.players = nil
	c.ready = make(map[string]bool)
	c.currentTurn = 0
	c.snapshot = nil
	c.seq = 0
	c.matchID = uuid.NewString()
	c.log.Info("match reset", zap.String("match", c.matchID))
}

// State returns the payload broadcast to clients
func (c *MatchCoordinator) State() (messages.StateMessage, error) {
	var state messages.StateMessage
	if err := c.do(func() { state = c.state() }); err != nil {
		return messages.StateMessage{}, err
	}
	return state, nil
}

// MatchID identifies the current match in the archive
func (c *MatchCoordinator) MatchID() string {
	var id string
	_ = c.do(func() { id = c.matchID })
	return id
}

func (c *MatchCoordinator) state() messages.StateMessage {
	ready := make(map[string]bool, len(c.ready))
	for nick, r := range c.ready {
		ready[nick] = r
	}
	return messages.StateMessage{
		Players:       append([]string{}, c.players...),
		CurrentTurn:   c.currentTurn,
		StateSnapshot: c.snapshot.Clone(),
		ReadyPlayers:  ready,
		GameStarted:   c.snapshot != nil,
	}
}

func (c *MatchCoordinator) broadcastState() {
	if c.broadcaster == nil {
		return
	}
	env, err := messages.NewEnvelope(messages.MessageTypeState, c.state())
	if err != nil {
		c.log.Error("failed to encode state", zap.Error(err))
		return
	}
	c.broadcaster.Broadcast(env)
}

func (c *MatchCoordinator) archiveSnapshot() {
	if c.archive == nil || c.snapshot == nil {
		return
	}
	c.seq++
	rec := persistence.SnapshotRecord{
		MatchID:     c.matchID,
		Seq:         c.seq,
		Players:     append([]string{}, c.players...),
		CurrentTurn: c.currentTurn,
		Snapshot:    *c.snapshot.Clone(),
		SavedAt:     time.Now().UTC(),
	}
	select {
	case c.archived <- rec:
	default:
		c.log.Error("archive queue full, snapshot dropped", zap.String("match", rec.MatchID), zap.Int("seq", rec.Seq))
	}
}

// archiveLoop writes queued snapshots so slow storage never blocks the command loop
func (c *MatchCoordinator) archiveLoop(done chan<- struct{}) {
	defer close(done)
	for rec := range c.archived {
		if err := c.archive.SaveSnapshot(rec); err != nil {
			c.log.Error("failed to archive snapshot", zap.String("match", rec.MatchID), zap.Int("seq", rec.Seq), zap.Error(err))
		}
	}
}

func (c *MatchCoordinator) indexOf(nick string) int {
	for i, p := range c.players {
		if p == nick {
			return i
		}
	}
	return -1
}

func (c *MatchCoordinator) allReady() bool {
	if len(c.players) < services.MinPlayers {
		return false
	}
	for _, p := range c.players {
		if !c.ready[p] {
			return false
		}
	}
	return true
}
