package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"flowpulse/internal/infrastructure"
)

// broadcastQueueSize bounds pending events; Publish drops beyond it
const broadcastQueueSize = 256

// Hub maintains the set of active clients and routes events to the clients
// of the user they belong to
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound events
	broadcast chan envelope

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics

	messagesSent    int64
	messagesDropped int64

	quit    chan struct{}
	done    chan struct{}
	running bool
	stopped bool
}

// NewHub creates a new Hub. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope, broadcastQueueSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    metrics,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop in its own goroutine
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running || h.stopped {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run is the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()

			ctx := client.context()
			h.logger.InfoContext(ctx, "client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("user_id", client.userID),
				slog.String("remote_addr", client.remoteAddr))
			h.recordConnections(ctx, 1)

			if payload, err := marshalEvent(TypeConnection, map[string]string{
				"status":    "connected",
				"client_id": client.id,
			}, client.traceID); err == nil {
				select {
				case client.send <- payload:
				default:
					h.logger.WarnContext(ctx, "client buffer full, connection message dropped",
						slog.String("client_id", client.id))
				}
			}

		case client := <-h.unregister:
			h.removeClient(client, "closed")

		case env := <-h.broadcast:
			h.deliver(env)
		}
	}
}

// deliver sends env to every matching client, dropping slow consumers
func (h *Hub) deliver(env envelope) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		if env.userID == "" || client.userID == env.userID {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	delivered := 0
	for _, client := range targets {
		select {
		case client.send <- env.payload:
			delivered++
		default:
			h.removeClient(client, "slow consumer")
		}
	}

	h.mu.Lock()
	h.messagesSent += int64(delivered)
	h.mu.Unlock()

	h.logger.Debug("event delivered",
		slog.String("type", env.eventType),
		slog.String("user_id", env.userID),
		slog.Int("clients", delivered))

	if h.metrics != nil {
		h.metrics.WebSocketBroadcasts.Add(context.Background(), 1,
			metric.WithAttributes(attribute.String("event", env.eventType)))
	}
}

func (h *Hub) removeClient(client *Client, reason string) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	ctx := client.context()
	h.logger.InfoContext(ctx, "client unregistered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.String("reason", reason),
		slog.Duration("connection_duration", time.Since(client.connectedAt)))
	h.recordConnections(ctx, -1)
}

func (h *Hub) recordConnections(ctx context.Context, delta int64) {
	if h.metrics != nil {
		h.metrics.WebSocketConnections.Add(ctx, delta)
	}
}

// Publish queues an event for the clients of userID. An empty userID
// addresses every client. It never blocks: events are dropped when the
// queue is full or the hub is stopped.
func (h *Hub) Publish(ctx context.Context, userID, eventType string, data interface{}) {
	payload, err := marshalEvent(eventType, data, infrastructure.GetTraceID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to marshal event",
			slog.String("type", eventType),
			slog.String("error", err.Error()))
		return
	}

	select {
	case <-h.quit:
		return
	default:
	}

	select {
	case h.broadcast <- envelope{userID: userID, eventType: eventType, payload: payload}:
	default:
		h.mu.Lock()
		h.messagesDropped++
		h.mu.Unlock()
		h.logger.WarnContext(ctx, "broadcast queue full, event dropped",
			slog.String("type", eventType),
			slog.String("user_id", userID))
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns counters for the health endpoint
func (h *Hub) Stats() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"active_clients":   len(h.clients),
		"messages_sent":    h.messagesSent,
		"messages_dropped": h.messagesDropped,
		"queue_depth":      len(h.broadcast),
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
		close(client.send)
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// Stop gracefully stops the hub and closes every client
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.stopped = true
	h.mu.Unlock()

	close(h.quit)
	<-h.done
}

func marshalEvent(eventType string, data interface{}, traceID string) ([]byte, error) {
	return json.Marshal(Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
		TraceID:   traceID,
	})
}
