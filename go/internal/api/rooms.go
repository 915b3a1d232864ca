package api

import (
	"fmt"
	"net/http"

	"github.com/mcdev12/codenames/go/internal/events"
)

const (
	createEndpoint    = "/api/rooms/create"
	joinEndpoint      = "/api/rooms/join"
	roomEndpoint      = "/api/rooms/%s"
	hintEndpoint      = "/api/rooms/%s/hint"
	startGameEndpoint = "/api/rooms/startGame"
	leaveEndpoint     = "/api/rooms/leave"
	endTurnEndpoint   = "/api/rooms/endTurn"
)

// CreateRoomRequest is the body for POST /api/rooms/create.
type CreateRoomRequest struct {
	RoomCode string        `json:"roomCode"`
	Creator  events.Player `json:"creator"`
}

// CreateRoomResponse is the 201 body for a created room.
type CreateRoomResponse struct {
	RoomCode string `json:"roomCode"`
}

// JoinRoomRequest is the body for POST /api/rooms/join.
type JoinRoomRequest struct {
	RoomCode string `json:"roomCode"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Team     string `json:"team"`
}

// RoomSnapshot is the full room state returned by GET /api/rooms/{code}.
// The timer boundary arrives as timerDeadline or, from older backends, as
// timerStartTime; both are millisecond epochs.
type RoomSnapshot struct {
	RoomCode        string          `json:"roomCode"`
	Players         []events.Player `json:"players"`
	WordSet         []string        `json:"wordSet"`
	RevealedTiles   []bool          `json:"revealedTiles"`
	Patterns        []string        `json:"patterns"`
	GameState       string          `json:"gameState"`
	CurrentTurnTeam string          `json:"currentTurnTeam,omitempty"`
	TimerDeadline   int64           `json:"timerDeadline,omitempty"`
	TimerStartTime  int64           `json:"timerStartTime,omitempty"`
	EndMessage      string          `json:"endMessage,omitempty"`
}

// HintResponse is the body for GET /api/rooms/{code}/hint.
type HintResponse struct {
	CurrentHint string `json:"currentHint"`
}

// LeaveRoomResponse is the 200 body for a leave, carrying the player list
// after removal.
type LeaveRoomResponse struct {
	Players   []events.Player `json:"players"`
	GameState string          `json:"gameState,omitempty"`
}

type roomCodeRequest struct {
	RoomCode string `json:"roomCode"`
}

type leaveRoomRequest struct {
	RoomCode string `json:"roomCode"`
	Username string `json:"username"`
}

// CreateRoom creates a room with the given creator as first player.
func (c *Client) CreateRoom(roomCode string, creator events.Player) (*CreateRoomResponse, error) {
	var resp CreateRoomResponse
	if err := c.do(http.MethodPost, createEndpoint, CreateRoomRequest{RoomCode: roomCode, Creator: creator}, &resp); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	return &resp, nil
}

// JoinRoom joins an existing room.
func (c *Client) JoinRoom(req JoinRoomRequest) error {
	if err := c.do(http.MethodPost, joinEndpoint, req, nil); err != nil {
		return fmt.Errorf("join room: %w", err)
	}
	return nil
}

// GetRoom fetches the full room snapshot.
func (c *Client) GetRoom(roomCode string) (*RoomSnapshot, error) {
	var snapshot RoomSnapshot
	if err := c.do(http.MethodGet, fmt.Sprintf(roomEndpoint, roomCode), nil, &snapshot); err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	return &snapshot, nil
}

// GetHint fetches the current hint for the room.
func (c *Client) GetHint(roomCode string) (string, error) {
	var resp HintResponse
	if err := c.do(http.MethodGet, fmt.Sprintf(hintEndpoint, roomCode), nil, &resp); err != nil {
		return "", fmt.Errorf("get hint: %w", err)
	}
	return resp.CurrentHint, nil
}

// StartGame asks the backend to start the game.
func (c *Client) StartGame(roomCode string) error {
	if err := c.do(http.MethodPost, startGameEndpoint, roomCodeRequest{RoomCode: roomCode}, nil); err != nil {
		return fmt.Errorf("start game: %w", err)
	}
	return nil
}

// LeaveRoom removes username from the room and returns the remaining
// player list.
func (c *Client) LeaveRoom(roomCode, username string) (*LeaveRoomResponse, error) {
	var resp LeaveRoomResponse
	if err := c.do(http.MethodDelete, leaveEndpoint, leaveRoomRequest{RoomCode: roomCode, Username: username}, &resp); err != nil {
		return nil, fmt.Errorf("leave room: %w", err)
	}
	return &resp, nil
}

// EndTurn asks the backend to end the current turn.
func (c *Client) EndTurn(roomCode string) error {
	if err := c.do(http.MethodPost, endTurnEndpoint, roomCodeRequest{RoomCode: roomCode}, nil); err != nil {
		return fmt.Errorf("end turn: %w", err)
	}
	return nil
}
