package ws

import (
	"context"
	"encoding/json"

	"talent-track/internal/metrics"

	"go.uber.org/zap"
)

type outbound struct {
	event Event
	data  []byte
}

// membership travels on a single channel so a client's join and leave are
// applied in the order they were requested.
type membership struct {
	client *Client
	join   bool
}

// Hub fans pipeline events out to connected dashboard clients. All client
// bookkeeping happens on the Run goroutine.
type Hub struct {
	clients   map[*Client]bool
	broadcast chan outbound
	members   chan membership
	count     chan chan int
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

func NewHub(logger *zap.Logger, m *metrics.Metrics) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:   make(map[*Client]bool),
		broadcast: make(chan outbound, 1024),
		members:   make(chan membership, 256),
		count:     make(chan chan int),
		logger:    logger,
		metrics:   m,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case m := <-h.members:
			if m.client == nil {
				continue
			}
			if m.join {
				h.clients[m.client] = true
				h.metrics.WSClients(len(h.clients))
				h.logger.Debug("ws client connected", zap.Int("total_clients", len(h.clients)))
				continue
			}
			if _, ok := h.clients[m.client]; ok {
				h.drop(m.client)
			}
			h.logger.Debug("ws client disconnected", zap.Int("total_clients", len(h.clients)))

		case msg := <-h.broadcast:
			delivered := 0
			for client := range h.clients {
				if !client.wants(msg.event) {
					continue
				}
				select {
				case client.send <- msg.data:
					delivered++
				default:
					h.drop(client)
				}
			}
			h.logger.Debug("ws broadcast", zap.String("type", msg.event.Type), zap.Int("clients", delivered))

		case reply := <-h.count:
			reply <- len(h.clients)
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.metrics.WSClients(len(h.clients))
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.members <- membership{client: client, join: true}
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	h.members <- membership{client: client}
}

// Publish queues evt for broadcast without blocking; events are dropped when
// the buffer is full.
func (h *Hub) Publish(evt Event) {
	if h == nil {
		return
	}
	b, err := json.Marshal(evt)
	if err != nil {
		h.logger.Warn("ws event encode failed", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- outbound{event: evt, data: b}:
	default:
		h.logger.Warn("ws broadcast dropped", zap.String("reason", "buffer_full"), zap.String("type", evt.Type))
	}
}

// ClientCount asks the Run loop for the number of connected clients.
func (h *Hub) ClientCount(ctx context.Context) int {
	if h == nil {
		return 0
	}
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
	case <-ctx.Done():
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-ctx.Done():
		return 0
	}
}
