package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/quizdeck/quizdeck/go/internal/events"
)

// Role classifies a connected screen. Every role receives every broadcast;
// the role gates which inbound actions a connection may send.
type Role string

const (
	RolePlayer Role = "player"
	RoleHost   Role = "host"
	RoleBoard  Role = "board"
)

// ConnectionManager owns every WebSocket connection to the session and fans
// broadcast events out to all of them.
type ConnectionManager struct {
	connections map[*Connection]bool
	mu          sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig

	broadcastCh chan events.Envelope

	// onMessage receives every inbound client frame.
	onMessage func(conn *Connection, data []byte)
	// onDisconnect fires after a connection is unregistered.
	onDisconnect func(conn *Connection)
}

// Connection represents one WebSocket client.
type Connection struct {
	ID      string
	Role    Role
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	// done is closed on unregister. Send is never closed: senders race with
	// the pump teardown, and a send on a closed channel would panic the whole
	// process. Senders check done instead and the write pump exits through it.
	done chan struct{}

	ConnectedAt time.Time
	LastPing    time.Time
}

// ConnectionConfig holds WebSocket tuning.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns the default WebSocket tuning.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  8 * 1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Phones join over the venue LAN; origins vary.
			return true
		},
	}
}

// NewConnectionManager creates a manager. onMessage and onDisconnect are
// invoked from connection goroutines and must be safe for concurrent use.
func NewConnectionManager(config ConnectionConfig, onMessage func(*Connection, []byte), onDisconnect func(*Connection)) *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:       config,
		broadcastCh:  make(chan events.Envelope, 256),
		onMessage:    onMessage,
		onDisconnect: onDisconnect,
	}
}

// Start processes broadcast events until ctx is cancelled.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return
		case ev := <-cm.broadcastCh:
			cm.handleBroadcast(ev)
		}
	}
}

// Publish enqueues an event for fan-out to every connection. It satisfies the
// session controller's sink interface.
func (cm *ConnectionManager) Publish(ev events.Envelope) {
	select {
	case cm.broadcastCh <- ev:
	default:
		log.Warn().Str("event_type", string(ev.Type)).Msg("broadcast channel full, dropping event")
	}
}

// Upgrade turns an HTTP request into a registered WebSocket connection.
func (cm *ConnectionManager) Upgrade(w http.ResponseWriter, r *http.Request, role Role) (*Connection, error) {
	ws, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}

	conn := &Connection{
		ID:          uuid.New().String(),
		Role:        role,
		Conn:        ws,
		Send:        make(chan []byte, 256),
		Manager:     cm,
		done:        make(chan struct{}),
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}
	cm.registerConnection(conn)

	go conn.writePump()
	go conn.readPump()

	log.Info().
		Str("connection_id", conn.ID).
		Str("role", string(role)).
		Msg("WebSocket connection established")
	return conn, nil
}

// SendTo delivers one event to a single connection, used for the initial
// board and state sync on connect.
func (cm *ConnectionManager) SendTo(conn *Connection, ev events.Envelope) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for direct send")
		return
	}
	select {
	case <-conn.done:
		// The client dropped between upgrade and sync.
		return
	default:
	}
	select {
	case conn.Send <- data:
	default:
		log.Warn().Str("connection_id", conn.ID).Msg("send buffer full on direct send")
	}
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.connections[conn] = true
	log.Debug().
		Str("connection_id", conn.ID).
		Int("total_connections", len(cm.connections)).
		Msg("connection registered")
}

func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	if _, exists := cm.connections[conn]; !exists {
		cm.mu.Unlock()
		return
	}
	delete(cm.connections, conn)
	close(conn.done)
	cm.mu.Unlock()

	log.Info().
		Str("connection_id", conn.ID).
		Str("role", string(conn.Role)).
		Msg("connection unregistered")
	if cm.onDisconnect != nil {
		cm.onDisconnect(conn)
	}
}

func (cm *ConnectionManager) handleBroadcast(ev events.Envelope) {
	cm.mu.RLock()
	targets := make([]*Connection, 0, len(cm.connections))
	for conn := range cm.connections {
		targets = append(targets, conn)
	}
	cm.mu.RUnlock()

	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	for _, conn := range targets {
		select {
		case <-conn.done:
			// Unregistered after the snapshot was taken.
			continue
		default:
		}
		select {
		case conn.Send <- data:
		default:
			// Connection is slow/dead, close it.
			log.Warn().
				Str("connection_id", conn.ID).
				Msg("connection send buffer full, closing connection")
			cm.unregisterConnection(conn)
			conn.Conn.Close()
		}
	}

	log.Debug().
		Str("event_type", string(ev.Type)).
		Int("connections", len(targets)).
		Msg("event broadcasted")
}

// ConnectionInfo describes one live connection on the stats endpoint.
type ConnectionInfo struct {
	ID          string    `json:"id"`
	Role        Role      `json:"role"`
	ConnectedAt time.Time `json:"connectedAt"`
	LastPing    time.Time `json:"lastPing"`
}

// ConnectionStats summarizes the live connections.
type ConnectionStats struct {
	Total       int              `json:"total"`
	ByRole      map[Role]int     `json:"byRole"`
	Connections []ConnectionInfo `json:"connections"`
}

// Stats reports the live connections for the stats endpoint.
func (cm *ConnectionManager) Stats() ConnectionStats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	stats := ConnectionStats{
		Total:       len(cm.connections),
		ByRole:      make(map[Role]int),
		Connections: make([]ConnectionInfo, 0, len(cm.connections)),
	}
	for conn := range cm.connections {
		stats.ByRole[conn.Role]++
		stats.Connections = append(stats.Connections, ConnectionInfo{
			ID:          conn.ID,
			Role:        conn.Role,
			ConnectedAt: conn.ConnectedAt,
			LastPing:    conn.LastPing,
		})
	}
	sort.Slice(stats.Connections, func(i, j int) bool {
		return stats.Connections[i].ConnectedAt.Before(stats.Connections[j].ConnectedAt)
	})
	return stats
}

// markPing records liveness under the manager lock so Stats can read it.
func (c *Connection) markPing() {
	c.Manager.mu.Lock()
	c.LastPing = time.Now()
	c.Manager.mu.Unlock()
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
			c.markPing()
		}
	}
}

func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		c.markPing()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}
		if c.Manager.onMessage != nil {
			c.Manager.onMessage(c, message)
		}
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
