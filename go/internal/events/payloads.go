package events

import (
	"encoding/json"
	"fmt"
)

// Wire-level player record shared by snapshots and player-list events.
type Player struct {
	Username string `json:"username"`
	Team     string `json:"team"`
	Role     string `json:"role"`
}

// UpdatePlayersPayload is the payload for an updatePlayers event: the full
// player list, replacing whatever the client held.
type UpdatePlayersPayload []Player

// UpdateTilePayload is the payload for an updateTile event.
type UpdateTilePayload struct {
	Index int `json:"index"`
}

// TurnPayload is the payload for gameStarted and turnSwitched events. The
// backend reports the turn boundary either as an absolute deadline or, in
// its older form, as the turn start time; both are millisecond epochs.
type TurnPayload struct {
	CurrentTurnTeam string `json:"currentTurnTeam"`
	TimerDeadline   int64  `json:"timerDeadline,omitempty"`
	TimerStartTime  int64  `json:"timerStartTime,omitempty"`
}

// NoticePayload is the payload for gamePaused, gameResumed,
// gameStartFailed and hintRejected events.
type NoticePayload struct {
	Message string `json:"message"`
}

// GameEndedPayload is the payload for a gameEnded event.
type GameEndedPayload struct {
	Result string `json:"result"`
}

// TileClickedPayload is the payload for an outbound tileClicked event.
type TileClickedPayload struct {
	RoomCode string `json:"roomCode"`
	Index    int    `json:"index"`
}

// RoomPayload is the payload for outbound events that carry only the room
// code (timerExpired, requestTimerUpdate).
type RoomPayload struct {
	RoomCode string `json:"roomCode"`
}

// SubmitHintPayload is the payload for an outbound submitHint event.
type SubmitHintPayload struct {
	RoomCode string `json:"roomCode"`
	Hint     string `json:"hint"`
	Username string `json:"username"`
}

// PlayerLeftPayload is the payload for an outbound playerLeft event,
// carrying the player list the leave call returned.
type PlayerLeftPayload struct {
	RoomCode string   `json:"roomCode"`
	Players  []Player `json:"players"`
}

// ParsePayload decodes an event's data into the payload type for its
// event type. joinRoom and newHint carry a bare JSON string.
func ParsePayload(event *Event) (interface{}, error) {
	switch event.Type {
	case EventTypeUpdatePlayers:
		var payload UpdatePlayersPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", event.Type, err)
		}
		return payload, nil

	case EventTypeUpdateTile:
		var payload UpdateTilePayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", event.Type, err)
		}
		return payload, nil

	case EventTypeGameStarted, EventTypeTurnSwitched:
		var payload TurnPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", event.Type, err)
		}
		return payload, nil

	case EventTypeGamePaused, EventTypeGameResumed, EventTypeGameStartFailed, EventTypeHintRejected:
		var payload NoticePayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", event.Type, err)
		}
		return payload, nil

	case EventTypeGameEnded:
		var payload GameEndedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", event.Type, err)
		}
		return payload, nil

	case EventTypeNewHint, EventTypeJoinRoom:
		var payload string
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", event.Type, err)
		}
		return payload, nil

	case EventTypeTileClicked:
		var payload TileClickedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", event.Type, err)
		}
		return payload, nil

	case EventTypeTimerExpired, EventTypeRequestTimerUpdate:
		var payload RoomPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", event.Type, err)
		}
		return payload, nil

	case EventTypeSubmitHint:
		var payload SubmitHintPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", event.Type, err)
		}
		return payload, nil

	case EventTypePlayerLeft:
		var payload PlayerLeftPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", event.Type, err)
		}
		return payload, nil

	default:
		return nil, nil // Unknown event type
	}
}
