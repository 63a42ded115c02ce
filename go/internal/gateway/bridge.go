package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/quizdeck/quizdeck/go/internal/events"
)

// NATSBridge republishes every session event to a NATS subject so external
// consumers (overlay renderers, stream tooling, secondary venues) can follow
// the game without holding a WebSocket to the host process.
type NATSBridge struct {
	nc            *nats.Conn
	subjectPrefix string
}

// NATSBridgeConfig holds the bridge connection settings.
type NATSBridgeConfig struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultNATSBridgeConfig returns the default bridge settings.
func DefaultNATSBridgeConfig() NATSBridgeConfig {
	return NATSBridgeConfig{
		URL:           nats.DefaultURL,
		SubjectPrefix: "quizdeck.events",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// NewNATSBridge connects to NATS.
func NewNATSBridge(cfg NATSBridgeConfig) (*NATSBridge, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Info().Str("url", cfg.URL).Msg("NATS event bridge connected")
	return &NATSBridge{nc: nc, subjectPrefix: cfg.SubjectPrefix}, nil
}

// Publish sends the envelope to <prefix>.<event-type>. Failures are logged;
// the bridge is best-effort and never blocks the game.
func (b *NATSBridge) Publish(ev events.Envelope) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for NATS")
		return
	}
	subject := fmt.Sprintf("%s.%s", b.subjectPrefix, ev.Type)
	if err := b.nc.Publish(subject, data); err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("failed to publish event to NATS")
	}
}

// Close drains and closes the connection.
func (b *NATSBridge) Close() {
	if b.nc != nil {
		b.nc.Close()
	}
}
