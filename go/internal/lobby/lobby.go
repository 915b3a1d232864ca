// Package lobby implements the create-room and join-room flows: local
// validation before any network call, the duplicate-Spymaster pre-check,
// and binding the session identity on success.
package lobby

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/mcdev12/codenames/go/internal/api"
	"github.com/mcdev12/codenames/go/internal/events"
	"github.com/mcdev12/codenames/go/internal/room"
)

// Validation errors, caught before any network call.
var (
	ErrEmptyFields = errors.New("room code and name cannot be empty")
	ErrBadRoomCode = errors.New("room code must be at least 4 alphanumeric characters")
)

// ErrSpymasterTaken is returned when the chosen team already has a
// Spymaster.
var ErrSpymasterTaken = errors.New("spymaster already taken")

var roomCodePattern = regexp.MustCompile(`^[a-zA-Z0-9]{4,}$`)

// API is the REST surface the lobby flows need, satisfied by *api.Client.
type API interface {
	CreateRoom(roomCode string, creator events.Player) (*api.CreateRoomResponse, error)
	JoinRoom(req api.JoinRoomRequest) error
	GetRoom(roomCode string) (*api.RoomSnapshot, error)
}

// Flow runs the pre-room entry flows.
type Flow struct {
	api     API
	session *room.Session
}

// NewFlow creates a lobby flow binding successful entries into session.
func NewFlow(a API, session *room.Session) *Flow {
	return &Flow{api: a, session: session}
}

// Create creates a room with the local player as its first member.
func (f *Flow) Create(roomCode, username string, team room.Team, role room.Role) error {
	if roomCode == "" || username == "" {
		return ErrEmptyFields
	}
	if !roomCodePattern.MatchString(roomCode) {
		return ErrBadRoomCode
	}

	_, err := f.api.CreateRoom(roomCode, events.Player{
		Username: username,
		Team:     string(team),
		Role:     string(role),
	})
	if err != nil {
		return err
	}

	f.session.Bind(username)
	return nil
}

// Join joins an existing room. When the requested role is Spymaster, the
// current snapshot is checked first so a taken seat fails locally instead
// of as a rejected join; the backend still enforces the same invariant.
func (f *Flow) Join(roomCode, username string, team room.Team, role room.Role) error {
	if roomCode == "" || username == "" {
		return ErrEmptyFields
	}

	snapshot, err := f.api.GetRoom(roomCode)
	if err != nil {
		return err
	}

	if role == room.RoleSpymaster {
		for _, p := range snapshot.Players {
			if room.Role(p.Role) == room.RoleSpymaster && room.Team(p.Team) == team {
				return fmt.Errorf("%w for the %s team", ErrSpymasterTaken, team)
			}
		}
	}

	if err := f.api.JoinRoom(api.JoinRoomRequest{
		RoomCode: roomCode,
		Username: username,
		Role:     string(role),
		Team:     string(team),
	}); err != nil {
		return err
	}

	f.session.Bind(username)
	return nil
}
