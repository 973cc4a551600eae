package realtime

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/okian/mentorlink/pkg/logger"
	"github.com/okian/mentorlink/pkg/metrics"
)

// Hub tracks the websocket clients of this instance, grouped by user.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	total   int
	stopped bool

	upgrader websocket.Upgrader
	logger   logger.Logger
}

// HubOption applies a configuration option to the Hub.
type HubOption func(*Hub)

// WithHubLogger sets a custom logger for the hub.
func WithHubLogger(l logger.Logger) HubOption {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithCheckOrigin sets the origin policy for websocket upgrades.
func WithCheckOrigin(fn func(r *http.Request) bool) HubOption {
	return func(h *Hub) {
		if fn != nil {
			h.upgrader.CheckOrigin = fn
		}
	}
}

// NewHub creates an empty hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients: make(map[string]map[*Client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		logger: logger.Get().Named("realtime-hub"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Serve upgrades the request and attaches the connection to userID.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	NewClient(h, conn, userID).Start()
	return nil
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		close(c.send)
		return
	}
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	h.total++
	total := h.total
	h.mu.Unlock()

	metrics.UpdateWebsocketClients(total)
	h.logger.Debug(context.Background(), "websocket client connected",
		logger.String("userID", c.userID), logger.Int("total_clients", total))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	removed := h.removeLocked(c)
	total := h.total
	h.mu.Unlock()

	if removed {
		metrics.UpdateWebsocketClients(total)
		h.logger.Debug(context.Background(), "websocket client disconnected",
			logger.String("userID", c.userID), logger.Int("total_clients", total))
	}
}

// removeLocked drops c and closes its send channel. Caller holds mu.
func (h *Hub) removeLocked(c *Client) bool {
	set, ok := h.clients[c.userID]
	if !ok {
		return false
	}
	if _, ok := set[c]; !ok {
		return false
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
	h.total--
	return true
}

// Publish implements Publisher for a single instance.
func (h *Hub) Publish(ctx context.Context, userID string, msg Message) error {
	if userID == "" {
		return ErrNoRecipient
	}
	if h.isStopped() {
		return ErrHubStopped
	}
	frame, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	h.deliver(userID, frame)
	metrics.RecordChatPublish("local")
	return nil
}

// deliver writes frame to every connection of userID. A client whose buffer
// is full is dropped.
func (h *Hub) deliver(userID string, frame []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.clients[userID]
	clients := make([]*Client, 0, len(set))
	for c := range set {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	sent := 0
	for _, c := range clients {
		select {
		case c.send <- frame:
			sent++
		default:
			h.removeLocked(c)
		}
	}
	metrics.UpdateWebsocketClients(h.total)
	return sent
}

// Connected reports whether userID has at least one local connection.
func (h *Hub) Connected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

func (h *Hub) isStopped() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stopped
}

// ClientCount returns the number of local connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total
}

// Run blocks until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	<-ctx.Done()

	h.mu.Lock()
	closed := h.total
	for _, set := range h.clients {
		for c := range set {
			h.removeLocked(c)
		}
	}
	h.stopped = true
	h.mu.Unlock()

	metrics.UpdateWebsocketClients(0)
	h.logger.Info(ctx, "websocket hub stopped", logger.Int("clients_closed", closed))
	return nil
}
