package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ReZorDos/TerraWar-sub000/messages"
	"github.com/ReZorDos/TerraWar-sub000/network"
)

const msgNotConnected = "not connected"

// handlerFunc serves one message type. It decodes its own payload and returns the reply.
type handlerFunc func(h *ClientHandler, env messages.Envelope) messages.Response

var dispatch = map[messages.MessageType]handlerFunc{
	messages.MessageTypeConnect:     (*ClientHandler).handleConnect,
	messages.MessageTypeStateUpdate: (*ClientHandler).handleStateUpdate,
	messages.MessageTypeEndTurn:     (*ClientHandler).handleEndTurn,
	messages.MessageTypeReady:       (*ClientHandler).handleReady,
	messages.MessageTypeLeave:       (*ClientHandler).handleLeave,
}

// ClientHandler manages a single client connection.
// nick and leaving are only touched from the connection's read goroutine.
type ClientHandler struct {
	conn          *network.Connection
	coordinator   *MatchCoordinator
	clientManager *ClientManager
	log           *zap.Logger

	nick    string
	leaving bool
}

// NewClientHandler creates the handler for conn
func NewClientHandler(conn *network.Connection, coordinator *MatchCoordinator, clientManager *ClientManager) *ClientHandler {
	return &ClientHandler{
		conn:          conn,
		coordinator:   coordinator,
		clientManager: clientManager,
		log:           conn.Logger(),
	}
}

// Nick returns the registered nickname, empty before connect
func (h *ClientHandler) Nick() string {
	return h.nick
}

// HandleClientConnection serves conn until it closes, then removes the player from the match
func HandleClientConnection(ctx context.Context, conn *network.Connection, coordinator *MatchCoordinator, clientManager *ClientManager) {
	handler := NewClientHandler(conn, coordinator, clientManager)
	clientManager.Add(handler)
	handler.log.Info("client connected")

	// Start the write pump in a goroutine
	go conn.WritePump()

	// Handle the read pump in the current goroutine
	err := conn.ReadPump(ctx, handler)
	if err != nil && ctx.Err() == nil {
		handler.log.Warn("connection failed", zap.Error(err))
	}

	handler.teardown()
}

func (h *ClientHandler) teardown() {
	h.clientManager.Remove(h)
	h.conn.Close()

	if h.nick != "" {
		if err := h.coordinator.RemovePlayer(h.nick); err != nil {
			h.log.Debug("remove player", zap.String("nick", h.nick), zap.Error(err))
		}
	}
	h.log.Info("client disconnected", zap.String("nick", h.nick))
}

// HandleMessage handles incoming messages from the client
func (h *ClientHandler) HandleMessage(conn *network.Connection, message []byte) {
	var env messages.Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		h.log.Warn("malformed message skipped", zap.Error(err))
		return
	}
	if env.Type == "" {
		h.log.Warn("message without type skipped", zap.ByteString("raw", message))
		return
	}

	handle, ok := dispatch[env.Type]
	var resp messages.Response
	switch {
	case !ok:
		h.log.Warn("unknown message type", zap.String("type", string(env.Type)))
		resp = messages.Fail(fmt.Sprintf("unknown message type %q", env.Type))
	case h.nick == "" && env.Type != messages.MessageTypeConnect:
		resp = messages.Fail(msgNotConnected)
	default:
		resp = handle(h, env)
	}

	if !resp.Success {
		h.log.Info("request rejected", zap.String("type", string(env.Type)), zap.String("nick", h.nick), zap.String("reason", resp.Message))
	}
	h.reply(resp)

	if h.leaving {
		conn.Close()
	}
}

func (h *ClientHandler) reply(resp messages.Response) {
	env, err := messages.NewEnvelope(messages.MessageTypeResponse, resp)
	if err != nil {
		h.log.Error("failed to encode response", zap.Error(err))
		return
	}
	if err := h.conn.SendMessage(env); err != nil {
		h.log.Debug("response dropped", zap.Error(err))
	}
}

func (h *ClientHandler) handleConnect(env messages.Envelope) messages.Response {
	var msg messages.ConnectMessage
	if err := env.Decode(&msg); err != nil {
		return messages.Fail("invalid connect payload")
	}
	if h.nick != "" {
		return messages.Fail(fmt.Sprintf("already connected as %s", h.nick))
	}

	index, err := h.coordinator.RegisterPlayer(msg.NickName)
	if err != nil {
		return messages.Fail(err.Error())
	}
	h.nick = msg.NickName
	h.log = h.log.With(zap.String("nick", h.nick))
	return messages.OK("connected", messages.ConnectResult{IndexOfPlayer: index})
}

func (h *ClientHandler) handleStateUpdate(env messages.Envelope) messages.Response {
	var snap messages.Snapshot
	if err := env.Decode(&snap); err != nil {
		return messages.Fail("invalid snapshot")
	}
	if err := h.coordinator.ApplyClientState(h.nick, snap); err != nil {
		return messages.Fail(err.Error())
	}
	return messages.OK("state accepted", nil)
}

func (h *ClientHandler) handleEndTurn(env messages.Envelope) messages.Response {
	if err := h.coordinator.EndTurn(h.nick); err != nil {
		return messages.Fail(err.Error())
	}
	return messages.OK("turn ended", nil)
}

func (h *ClientHandler) handleReady(env messages.Envelope) messages.Response {
	var msg messages.ReadyMessage
	if err := env.Decode(&msg); err != nil {
		return messages.Fail("invalid ready payload")
	}
	if err := h.coordinator.HandleReady(h.nick, msg.Ready); err != nil {
		return messages.Fail(err.Error())
	}
	return messages.OK("ready updated", nil)
}

func (h *ClientHandler) handleLeave(env messages.Envelope) messages.Response {
	var msg messages.LeaveMessage
	_ = env.Decode(&msg)
	h.log.Info("player leaving", zap.String("reason", msg.Reason))
	h.leaving = true
	return messages.OK("bye", nil)
}
