package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope for every message crossing the push channel, in
// either direction. Inbound events from the backend may carry only Type
// and Data; ID and Timestamp are stamped on everything we emit.
type Event struct {
	ID        string          `json:"id,omitempty"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// EventType identifies a push-channel event.
type EventType string

// Events consumed from the backend.
const (
	EventTypeUpdatePlayers   EventType = "updatePlayers"
	EventTypeUpdateTile      EventType = "updateTile"
	EventTypeGameStarted     EventType = "gameStarted"
	EventTypeTurnSwitched    EventType = "turnSwitched"
	EventTypeGamePaused      EventType = "gamePaused"
	EventTypeGameResumed     EventType = "gameResumed"
	EventTypeGameEnded       EventType = "gameEnded"
	EventTypeGameStartFailed EventType = "gameStartFailed"
	EventTypeNewHint         EventType = "newHint"
	EventTypeHintRejected    EventType = "hintRejected"
)

// Events emitted to the backend.
const (
	EventTypeJoinRoom           EventType = "joinRoom"
	EventTypeTileClicked        EventType = "tileClicked"
	EventTypeTimerExpired       EventType = "timerExpired"
	EventTypeSubmitHint         EventType = "submitHint"
	EventTypePlayerLeft         EventType = "playerLeft"
	EventTypeRequestTimerUpdate EventType = "requestTimerUpdate"
)

// NewEvent builds an outbound event with a fresh ID and timestamp.
func NewEvent(eventType EventType, payload interface{}) (*Event, error) {
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
		}
		data = b
	}

	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}, nil
}
