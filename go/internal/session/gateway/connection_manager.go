package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/livesession/go/internal/models"
	"github.com/mcdev12/livesession/go/internal/session"
	"github.com/mcdev12/livesession/go/internal/session/events"
	"github.com/rs/zerolog/log"
)

// SyncCommand asks the gateway for a fresh StateSync instead of a mutation.
const SyncCommand = "sync"

// RoomApp defines what the gateway needs from the session application
type RoomApp interface {
	GetView(ctx context.Context, code string, actor session.Actor) (*session.View, error)
	Execute(ctx context.Context, code string, actor session.Actor, cmd session.Command) (*session.Result, error)
}

// ConnectionManager manages WebSocket connections for room events
type ConnectionManager struct {
	// Connection pools organized by room code
	roomConnections map[string]map[*Connection]bool
	mu              sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig
	app      RoomApp

	broadcastCh chan BroadcastMessage
}

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID       string
	RoomCode string
	Actor    session.Actor
	Conn     *websocket.Conn
	Send     chan []byte
	Manager  *ConnectionManager

	ConnectedAt time.Time
	LastPing    time.Time
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	CommandTimeout  time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// BroadcastMessage represents a message to broadcast to connections
type BroadcastMessage struct {
	RoomCode string
	Event    *events.Event
	// ConnectionID, when set, restricts delivery to one connection.
	ConnectionID string
}

// ClientMessage is a command sent by a client over its socket.
type ClientMessage struct {
	RequestID string `json:"request_id,omitempty"`
	session.CommandEnvelope
}

// CommandAcceptedPayload answers a ClientMessage that was applied.
type CommandAcceptedPayload struct {
	RequestID string `json:"request_id,omitempty"`
	Command   string `json:"command"`
	Version   uint64 `json:"version"`
	Data      any    `json:"data,omitempty"`
}

// ConnectionStats summarizes live connections.
type ConnectionStats struct {
	TotalConnections int            `json:"total_connections"`
	ActiveRooms      int            `json:"active_rooms"`
	RoomConnections  map[string]int `json:"room_connections"`
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		CommandTimeout:  5 * time.Second,
		MaxMessageSize:  8 * 1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// OriginChecker allows the listed origins, or any origin when the list
// contains "*". Requests without an Origin header are always allowed.
func OriginChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set["*"] || set[origin]
	}
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(app RoomApp, config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		roomConnections: make(map[string]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		app:         app,
		broadcastCh: make(chan BroadcastMessage, 1000),
	}
}

// Start begins processing broadcast messages
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			cm.closeAll()
			return
		case message := <-cm.broadcastCh:
			cm.handleBroadcast(message)
		}
	}
}

// HandleEvent is a bus handler that fans room events out to sockets.
func (cm *ConnectionManager) HandleEvent(event *events.Event) {
	cm.BroadcastToRoom(event.RoomCode, event)
}

// UpgradeConnection upgrades an HTTP connection to WebSocket and sends the
// caller's view of the room as the first frame.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, roomCode string, actor session.Actor, view *session.View) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		RoomCode:    roomCode,
		Actor:       actor,
		Conn:        conn,
		Send:        make(chan []byte, 256),
		Manager:     cm,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}

	cm.registerConnection(connection)
	cm.sendTo(connection, newDirectEvent(roomCode, events.EventTypeStateSync, view))

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("room_code", roomCode).
		Str("role", string(actor.Role)).
		Msg("WebSocket connection established")

	return nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.roomConnections[conn.RoomCode] == nil {
		cm.roomConnections[conn.RoomCode] = make(map[*Connection]bool)
	}
	cm.roomConnections[conn.RoomCode][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("room_code", conn.RoomCode).
		Int("total_connections", len(cm.roomConnections[conn.RoomCode])).
		Msg("connection registered")
}

// unregisterConnection removes a connection and closes its send channel.
// It is safe to call more than once.
func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	connections, exists := cm.roomConnections[conn.RoomCode]
	if !exists {
		return
	}
	if _, exists := connections[conn]; !exists {
		return
	}
	delete(connections, conn)
	close(conn.Send)

	if len(connections) == 0 {
		delete(cm.roomConnections, conn.RoomCode)
	}

	log.Info().
		Str("connection_id", conn.ID).
		Str("room_code", conn.RoomCode).
		Msg("connection unregistered")
}

// BroadcastToRoom sends an event to all connections in a room
func (cm *ConnectionManager) BroadcastToRoom(roomCode string, event *events.Event) {
	select {
	case cm.broadcastCh <- BroadcastMessage{RoomCode: roomCode, Event: event}:
	default:
		log.Warn().Str("room_code", roomCode).Msg("broadcast channel full, dropping message")
	}
}

// sendTo queues an event for a single connection behind any pending room broadcasts.
func (cm *ConnectionManager) sendTo(conn *Connection, event *events.Event) {
	select {
	case cm.broadcastCh <- BroadcastMessage{RoomCode: conn.RoomCode, Event: event, ConnectionID: conn.ID}:
	default:
		log.Warn().
			Str("room_code", conn.RoomCode).
			Str("connection_id", conn.ID).
			Msg("broadcast channel full, dropping direct message")
	}
}

func (cm *ConnectionManager) handleBroadcast(message BroadcastMessage) {
	eventData, err := json.Marshal(message.Event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	var slow []*Connection
	delivered := 0

	// Sends happen under the read lock so no Send channel is closed mid-broadcast.
	cm.mu.RLock()
	for conn := range cm.roomConnections[message.RoomCode] {
		if message.ConnectionID != "" && conn.ID != message.ConnectionID {
			continue
		}
		select {
		case conn.Send <- eventData:
			delivered++
		default:
			slow = append(slow, conn)
		}
	}
	cm.mu.RUnlock()

	for _, conn := range slow {
		log.Warn().
			Str("connection_id", conn.ID).
			Str("room_code", conn.RoomCode).
			Msg("connection send buffer full, closing connection")
		cm.unregisterConnection(conn)
		conn.Conn.Close()
	}

	log.Debug().
		Str("event_type", string(message.Event.Type)).
		Str("room_code", message.RoomCode).
		Int("connections", delivered).
		Msg("event broadcasted")
}

// GetConnectionStats returns statistics about active connections
func (cm *ConnectionManager) GetConnectionStats() ConnectionStats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	stats := ConnectionStats{RoomConnections: make(map[string]int)}
	for code, connections := range cm.roomConnections {
		stats.TotalConnections += len(connections)
		stats.RoomConnections[code] = len(connections)
	}
	stats.ActiveRooms = len(cm.roomConnections)
	return stats
}

func (cm *ConnectionManager) closeAll() {
	cm.mu.RLock()
	var all []*Connection
	for _, connections := range cm.roomConnections {
		for conn := range connections {
			all = append(all, conn)
		}
	}
	cm.mu.RUnlock()

	for _, conn := range all {
		cm.unregisterConnection(conn)
	}
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

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
			c.LastPing = time.Now()
		}
	}
}

// readPump handles reading commands from the WebSocket connection
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
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

		c.handleClientMessage(message)
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}

// handleClientMessage applies a client command and answers the sender with
// CommandAccepted or CommandRejected. Resulting room events reach every
// connection through the bus.
func (c *Connection) handleClientMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.reject(msg, fmt.Errorf("%w: malformed message: %v", models.ErrValidation, err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Manager.config.CommandTimeout)
	defer cancel()

	if msg.Command == SyncCommand {
		view, err := c.Manager.app.GetView(ctx, c.RoomCode, c.Actor)
		if err != nil {
			c.reject(msg, err)
			return
		}
		c.Manager.sendTo(c, newDirectEvent(c.RoomCode, events.EventTypeStateSync, view))
		return
	}

	cmd, err := session.DecodeCommand(msg.Command, msg.Payload)
	if err != nil {
		c.reject(msg, err)
		return
	}

	res, err := c.Manager.app.Execute(ctx, c.RoomCode, c.Actor, cmd)
	if err != nil {
		c.reject(msg, err)
		return
	}

	c.Manager.sendTo(c, newDirectEvent(c.RoomCode, events.EventTypeCommandAccepted, CommandAcceptedPayload{
		RequestID: msg.RequestID,
		Command:   msg.Command,
		Version:   res.Version,
		Data:      res.Data,
	}))
}

func (c *Connection) reject(msg ClientMessage, err error) {
	log.Debug().
		Err(err).
		Str("connection_id", c.ID).
		Str("room_code", c.RoomCode).
		Str("command", msg.Command).
		Msg("client command rejected")

	c.Manager.sendTo(c, newDirectEvent(c.RoomCode, events.EventTypeCommandRejected, events.CommandRejectedPayload{
		RequestID: msg.RequestID,
		Command:   msg.Command,
		Code:      session.ErrorCode(err),
		Message:   err.Error(),
	}))
}

func newDirectEvent(roomCode string, eventType events.EventType, payload any) *events.Event {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(eventType)).Msg("failed to marshal direct event")
		data = json.RawMessage(`null`)
	}
	return &events.Event{
		ID:        uuid.New().String(),
		RoomCode:  roomCode,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}
