package messages

import "encoding/json"

// MessageType defines the type of message being sent
type MessageType string

const (
	// client -> server
	MessageTypeConnect     MessageType = "connect"
	MessageTypeStateUpdate MessageType = "stateUpdate"
	MessageTypeEndTurn     MessageType = "endTurn"
	MessageTypeLeave       MessageType = "leave"
	MessageTypeReady       MessageType = "ready"

	// server -> client
	MessageTypeResponse MessageType = "response"
	MessageTypeState    MessageType = "state"
)

// Envelope is the outer structure of every line on the wire
type Envelope struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals payload into an envelope of the given type
func NewEnvelope(t MessageType, payload interface{}) (Envelope, error) {
	env := Envelope{Type: t}
	if payload == nil {
		return env, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	env.Data = data
	return env, nil
}

// Decode unmarshals the envelope data into v; empty data leaves v untouched
func (e Envelope) Decode(v interface{}) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	return json.Unmarshal(e.Data, v)
}

// ConnectMessage registers a nickname with the server
type ConnectMessage struct {
	NickName      string `json:"nickName"`
	IndexOfPlayer int    `json:"indexOfPlayer"`
}

// ConnectResult is the data of a successful connect response
type ConnectResult struct {
	IndexOfPlayer int `json:"indexOfPlayer"`
}

// EndTurnMessage carries no data
type EndTurnMessage struct{}

// LeaveMessage announces a voluntary departure
type LeaveMessage struct {
	Reason string `json:"reason"`
}

// ReadyMessage toggles the sender's pre-game ready flag
type ReadyMessage struct {
	Ready bool `json:"ready"`
}

// Response answers every client request
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// InboundResponse is Response as seen by a client, with data left undecoded
type InboundResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// OK builds a successful response
func OK(message string, data interface{}) Response {
	return Response{Success: true, Message: message, Data: data}
}

// Fail builds a rejection
func Fail(message string) Response {
	return Response{Success: false, Message: message}
}

// StateMessage is broadcast to every connection whenever the match changes
type StateMessage struct {
	Players       []string        `json:"players"`
	CurrentTurn   int             `json:"currentTurn"`
	StateSnapshot *Snapshot       `json:"stateSnapshot"`
	ReadyPlayers  map[string]bool `json:"readyPlayers"`
	GameStarted   bool            `json:"gameStarted"`
}

// CurrentPlayer returns the nickname holding the turn
func (s StateMessage) CurrentPlayer() (string, bool) {
	if s.CurrentTurn < 0 || s.CurrentTurn >= len(s.Players) {
		return "", false
	}
	return s.Players[s.CurrentTurn], true
}

// AllReady reports whether every listed player has signalled ready
func (s StateMessage) AllReady() bool {
	if len(s.Players) == 0 {
		return false
	}
	for _, p := range s.Players {
		if !s.ReadyPlayers[p] {
			return false
		}
	}
	return true
}
