package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/mcdev12/codenames/go/internal/api"
	"github.com/mcdev12/codenames/go/internal/events"
	"github.com/mcdev12/codenames/go/internal/lobby"
	"github.com/mcdev12/codenames/go/internal/room"
	"github.com/mcdev12/codenames/go/internal/transport"
)

func main() {
	initLogger()

	if err := godotenv.Load(); err != nil {
		zlog.Debug().Err(err).Msg("no .env file loaded")
	}

	config, err := loadConfig(getEnv("CODENAMES_CONFIG", ""))
	if err != nil {
		zlog.Fatal().Err(err).Msg("invalid configuration")
	}

	if err := run(config); err != nil {
		zlog.Fatal().Err(err).Msg("client exited")
	}
}

func initLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level := zerolog.InfoLevel
	if getEnvAsBool("CODENAMES_DEBUG", false) {
		level = zerolog.DebugLevel
	}
	zlog.Logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

func run(config *Config) error {
	apiClient := api.NewClient(config.Backend.URL)
	session := &room.Session{}
	flow := lobby.NewFlow(apiClient, session)

	team := room.Team(config.Room.Team)
	role := room.Role(config.Room.Role)
	roomCode := config.Room.Code

	var err error
	if config.Room.Create {
		err = flow.Create(roomCode, config.Room.Username, team, role)
	} else {
		err = flow.Join(roomCode, config.Room.Username, team, role)
	}
	if err != nil {
		return fmt.Errorf("enter room %s: %w", roomCode, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	notices := func(message string) {
		fmt.Printf("\n*** %s ***\n", message)
	}

	clock := clockwork.NewRealClock()
	rec := room.NewReconciler(clock, room.DefaultReconcilerConfig(), notices)
	defer rec.Close()

	conn, err := transport.Dial(ctx, config.Backend.PushURL, transport.DefaultConfig())
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Send(events.EventTypeJoinRoom, roomCode); err != nil {
		return fmt.Errorf("announce join: %w", err)
	}
	// Resync the turn timer on entry; a mid-turn joiner would otherwise
	// wait a full poll cycle for the deadline.
	if err := conn.Send(events.EventTypeRequestTimerUpdate, events.RoomPayload{RoomCode: roomCode}); err != nil {
		zlog.Warn().Err(err).Msg("timer resync request failed")
	}

	teardown := rec.Bind(conn)
	defer teardown()

	renderer := newRenderer(os.Stdout, session, clock)
	unlisten := rec.Listen(func() {
		renderer.Render(rec.State())
	})
	defer unlisten()

	// The poller doubles as room-liveness detection: once the room is
	// gone, leave the view entirely.
	poller := room.NewPoller(clock, apiClient, rec, roomCode, room.DefaultPollerConfig(), cancel)
	poller.Start()
	defer poller.Stop()

	turnClock := room.NewTurnClock(clock, rec, conn, roomCode, renderer.RenderCountdown)
	turnClock.Start()
	defer turnClock.Stop()

	ctrl := room.NewController(apiClient, conn, rec, session, roomCode, notices)
	go readCommands(ctx, ctrl, cancel)

	<-ctx.Done()

	if session.Username() != "" {
		if err := ctrl.Leave(); err != nil {
			zlog.Warn().Err(err).Msg("leave on shutdown failed")
		}
	}
	return nil
}

// readCommands drives local actions from stdin: start, end, click <n>,
// hint <text>, leave.
func readCommands(ctx context.Context, ctrl *room.Controller, quit func()) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "start":
			if err := ctrl.StartGame(); err != nil {
				zlog.Warn().Err(err).Msg("start game rejected")
			}
		case "end":
			if err := ctrl.EndTurn(); err != nil {
				zlog.Warn().Err(err).Msg("end turn rejected")
			}
		case "click":
			if len(fields) != 2 {
				fmt.Println("usage: click <tile-index>")
				continue
			}
			index, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("usage: click <tile-index>")
				continue
			}
			if !ctrl.RevealTile(index) {
				fmt.Println("you can't reveal that tile right now")
			}
		case "hint":
			if !ctrl.SubmitHint(strings.Join(fields[1:], " ")) {
				fmt.Println("you can't submit a hint right now")
			}
		case "leave", "quit":
			quit()
			return
		default:
			fmt.Println("commands: start, end, click <n>, hint <text>, leave")
		}
	}
}
