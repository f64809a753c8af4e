package gateway

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rollcall-app/rollcall/internal/models"
	"go.uber.org/zap"
)

// Hub relays session and ledger state transitions to every connected viewer.
// It owns only the connection set; business data passes through without being
// retained. Registration, removal and broadcasting are serialized by the Run
// loop so a snapshot sent on connect is never overtaken by an older delta.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	// departed holds clients whose unregister arrived ahead of their
	// register. Both channels are buffered, so the Run loop can pick the
	// unregister first; the tombstone makes the late register a no-op
	// instead of a connection nothing will ever remove.
	departed map[*Client]struct{}

	broadcast  chan Message
	register   chan *Client
	unregister chan *Client

	snapshot SnapshotFunc
	logger   *zap.Logger
}

func NewHub(snapshot SnapshotFunc, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		departed:   make(map[*Client]struct{}),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		snapshot:   snapshot,
		logger:     logger,
	}
}

// Run drives the hub until ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case c := <-h.register:
			h.addClient(c)

		case c := <-h.unregister:
			h.removeClient(c)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	if _, gone := h.departed[c]; gone {
		delete(h.departed, c)
		h.mu.Unlock()
		c.close()
		return
	}
	h.clients[c] = struct{}{}
	c.registered = true
	total := len(h.clients)
	h.mu.Unlock()

	snap, err := h.snapshot()
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("gateway snapshot failed", zap.Error(err))
		}
		snap = Snapshot{Records: []models.AttendanceRecord{}}
	}
	if snap.Records == nil {
		snap.Records = []models.AttendanceRecord{}
	}
	h.send(c, Message{Type: TypeInitialData, Data: snap})

	if h.logger != nil {
		h.logger.Info("viewer connected", zap.String("ip", c.ip), zap.Int("total", total))
	}
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	} else if !c.registered {
		// Never registered yet: leave a tombstone so the register that
		// is still in flight does not resurrect the connection.
		h.departed[c] = struct{}{}
	}
	total := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	c.close()
	if h.logger != nil {
		h.logger.Info("viewer disconnected", zap.String("ip", c.ip), zap.Int("total", total))
	}
}

func (h *Hub) deliver(msg Message) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.send(c, msg)
	}
}

// send marshals once per client and enqueues without blocking. A viewer
// whose queue is full is dropped rather than allowed to stall the loop.
func (h *Hub) send(c *Client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("gateway marshal failed", zap.Error(err))
		}
		return
	}
	if !c.enqueue(data) {
		if h.logger != nil {
			h.logger.Warn("viewer send queue full, dropping connection", zap.String("ip", c.ip))
		}
		h.removeClient(c)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		c.close()
	}
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()
}

// ClientCount returns the number of connected viewers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// NotifyAttendanceRecorded broadcasts a newly accepted record.
func (h *Hub) NotifyAttendanceRecorded(record *models.AttendanceRecord) {
	h.broadcast <- Message{Type: TypeAttendanceRecorded, Data: record}
}

// NotifySessionToggled broadcasts a session state transition.
func (h *Hub) NotifySessionToggled(active bool, session *models.Session) {
	h.broadcast <- Message{Type: TypeSessionToggled, Data: ToggleEvent{Active: active, Session: session}}
}

// NotifyRecordsCleared tells viewers to empty their local view.
func (h *Hub) NotifyRecordsCleared() {
	h.broadcast <- Message{Type: TypeRecordsCleared}
}
