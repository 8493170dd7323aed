package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ReZorDos/TerraWar-sub000/logging"
	"github.com/ReZorDos/TerraWar-sub000/messages"
	"github.com/ReZorDos/TerraWar-sub000/network"
	"github.com/ReZorDos/TerraWar-sub000/services"
)

var ErrNotConnected = errors.New("not connected")

// StateHandler receives every state broadcast
type StateHandler func(state messages.StateMessage)

// ResponseHandler receives every reply to this client's requests
type ResponseHandler func(resp messages.InboundResponse)

// Options configures Dial
type Options struct {
	Logger      *zap.Logger
	MaxLine     int
	DialTimeout time.Duration
}

// SyncClient is a thin client: it mirrors the server's state into a local World
// and sends requests without waiting for their replies.
type SyncClient struct {
	transport network.Transport
	log       *zap.Logger
	writeMu   sync.Mutex

	mu               sync.RWMutex
	nick             string
	last             *messages.StateMessage
	world            *services.World
	stateHandlers    []StateHandler
	responseHandlers []ResponseHandler

	routes    map[messages.MessageType]func(messages.Envelope) error
	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to a server. Failure is returned as is; there is no retry.
func Dial(ctx context.Context, addr string, opts Options) (*SyncClient, error) {
	timeout := opts.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return newClient(network.NewLineTransport(conn, opts.MaxLine), opts.Logger), nil
}

func newClient(t network.Transport, log *zap.Logger) *SyncClient {
	log = logging.OrNop(log)
	c := &SyncClient{
		transport: t,
		log:       log,
		world:     services.NewWorld(0, 0),
		done:      make(chan struct{}),
	}
	c.routes = map[messages.MessageType]func(messages.Envelope) error{
		messages.MessageTypeState:    c.handleState,
		messages.MessageTypeResponse: c.handleResponse,
	}
	go c.readLoop()
	return c
}

// OnState registers a state handler. Handlers run on the reader goroutine.
func (c *SyncClient) OnState(h StateHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateHandlers = append(c.stateHandlers, h)
}

// OnResponse registers a response handler. Handlers run on the reader goroutine.
func (c *SyncClient) OnResponse(h ResponseHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responseHandlers = append(c.responseHandlers, h)
}

func (c *SyncClient) readLoop() {
	defer c.Close()

	for {
		line, err := c.transport.ReadLine()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.log.Info("connection lost", zap.Error(err))
			}
			return
		}

		var env messages.Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			c.log.Warn("malformed message skipped", zap.Error(err))
			continue
		}
		route, ok := c.routes[env.Type]
		if !ok {
			c.log.Debug("unhandled message type", zap.String("type", string(env.Type)))
			continue
		}
		if err := route(env); err != nil {
			c.log.Warn("failed to handle message", zap.String("type", string(env.Type)), zap.Error(err))
		}
	}
}

func (c *SyncClient) handleState(env messages.Envelope) error {
	var state messages.StateMessage
	if err := env.Decode(&state); err != nil {
		return err
	}

	c.mu.Lock()
	c.last = &state
	var applyErr error
	if state.StateSnapshot == nil {
		c.world.Reset()
	} else {
		applyErr = services.ApplySnapshot(*state.StateSnapshot, c.world, state.Players)
		if applyErr == nil && state.CurrentTurn >= 0 && state.CurrentTurn < len(state.Players) {
			c.world.Match.CurrentPlayerIndex = state.CurrentTurn
		}
	}
	handlers := append([]StateHandler(nil), c.stateHandlers...)
	c.mu.Unlock()

	for _, h := range handlers {
		h(state)
	}
	return applyErr
}

func (c *SyncClient) handleResponse(env messages.Envelope) error {
	var resp messages.InboundResponse
	if err := env.Decode(&resp); err != nil {
		return err
	}
	if !resp.Success {
		c.log.Info("request rejected", zap.String("reason", resp.Message))
	}

	c.mu.RLock()
	handlers := append([]ResponseHandler(nil), c.responseHandlers...)
	c.mu.RUnlock()

	for _, h := range handlers {
		h(resp)
	}
	return nil
}

func (c *SyncClient) send(t messages.MessageType, payload interface{}) error {
	select {
	case <-c.done:
		return ErrNotConnected
	default:
	}

	env, err := messages.NewEnvelope(t, payload)
	if err != nil {
		return err
	}
	line, err := json.Marshal(env)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.transport.WriteLine(line); err != nil {
		return fmt.Errorf("failed to send %s: %w", t, err)
	}
	return nil
}

// Connect registers nick with the server
func (c *SyncClient) Connect(nick string, index int) error {
	c.mu.Lock()
	c.nick = nick
	c.mu.Unlock()
	return c.send(messages.MessageTypeConnect, messages.ConnectMessage{NickName: nick, IndexOfPlayer: index})
}

// SetReady toggles the pre-game ready flag
func (c *SyncClient) SetReady(ready bool) error {
	return c.send(messages.MessageTypeReady, messages.ReadyMessage{Ready: ready})
}

// SubmitState proposes snap as the new authoritative state
func (c *SyncClient) SubmitState(snap messages.Snapshot) error {
	return c.send(messages.MessageTypeStateUpdate, snap)
}

// SubmitWorld proposes the local world as the new authoritative state
func (c *SyncClient) SubmitWorld() error {
	c.mu.RLock()
	snap := services.ToSnapshot(c.world)
	c.mu.RUnlock()
	return c.SubmitState(snap)
}

// EndTurn hands the turn to the next player
func (c *SyncClient) EndTurn() error {
	return c.send(messages.MessageTypeEndTurn, messages.EndTurnMessage{})
}

// Leave tells the server this player is quitting
func (c *SyncClient) Leave(reason string) error {
	return c.send(messages.MessageTypeLeave, messages.LeaveMessage{Reason: reason})
}

// Nick returns the nickname passed to Connect
func (c *SyncClient) Nick() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nick
}

// IsMyTurn reports whether the last broadcast gives this client the turn in a started match
func (c *SyncClient) IsMyTurn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil || !c.last.GameStarted || c.nick == "" {
		return false
	}
	current, ok := c.last.CurrentPlayer()
	return ok && current == c.nick
}

// LastState returns the most recent broadcast, if any
func (c *SyncClient) LastState() (messages.StateMessage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return messages.StateMessage{}, false
	}
	return *c.last, true
}

// WithWorld runs fn with exclusive access to the local world. fn must not call back into the client.
func (c *SyncClient) WithWorld(fn func(w *services.World)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.world)
}

// Done is closed when the reader stops
func (c *SyncClient) Done() <-chan struct{} {
	return c.done
}

// Close drops the connection
func (c *SyncClient) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.transport.Close()
	})
	return err
}
