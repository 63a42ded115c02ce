package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/quizdeck/quizdeck/go/internal/board"
	"github.com/quizdeck/quizdeck/go/internal/dbconfig"
	"github.com/quizdeck/quizdeck/go/internal/gateway"
	"github.com/quizdeck/quizdeck/go/internal/session"
)

// Services holds the wired application components.
type Services struct {
	Boards     *board.Service
	Controller *session.Controller
	WebSocket  *gateway.WebSocketHandler
	BoardAPI   *gateway.BoardHandler
	Bridge     *gateway.NATSBridge
}

// setupServices wires the dependency chain:
// store -> board service -> controller -> gateway.
func setupServices(ctx context.Context, cfg *Config) (*Services, error) {
	store, err := setupStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	boards, err := board.NewService(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("failed to set up board service: %w", err)
	}

	// The controller publishes through a sink assembled below; the WebSocket
	// fan-out is always present, the NATS bridge only when enabled.
	var sinks session.MultiSink

	var bridge *gateway.NATSBridge
	if cfg.NATS.Enabled {
		bridgeCfg := gateway.DefaultNATSBridgeConfig()
		bridgeCfg.URL = cfg.NATS.URL
		bridgeCfg.SubjectPrefix = cfg.NATS.SubjectPrefix
		bridge, err = gateway.NewNATSBridge(bridgeCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to set up NATS bridge: %w", err)
		}
	}

	controller := session.NewController(cfg.SessionConfig(), boards, &sinks)

	ws := gateway.NewWebSocketHandler(gateway.DefaultConnectionConfig(), controller, boards, cfg.Host.Secret)
	sinks = append(sinks, ws.Manager())
	if bridge != nil {
		sinks = append(sinks, bridge)
	}

	boardAPI := gateway.NewBoardHandler(boards, controller, ws.Manager(), cfg.Host.Secret)

	return &Services{
		Boards:     boards,
		Controller: controller,
		WebSocket:  ws,
		BoardAPI:   boardAPI,
		Bridge:     bridge,
	}, nil
}

func setupStore(ctx context.Context, cfg *Config) (board.Store, error) {
	switch cfg.Store.Backend {
	case "postgres":
		dbCfg := dbconfig.NewConfigFromEnv()
		store, err := board.NewPostgresStore(ctx, dbCfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to set up Postgres board store: %w", err)
		}
		return store, nil
	case "file":
		log.Info().Str("path", cfg.Store.File).Msg("using file board store")
		return board.NewFileStore(cfg.Store.File), nil
	default:
		return nil, fmt.Errorf("unknown board store backend %q", cfg.Store.Backend)
	}
}
