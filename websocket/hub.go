package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"home-services-server/models"
)

// Event is one push-feed message. Order events mirror the row the backend
// just wrote; delivery order is only guaranteed per order.
type Event struct {
	Type      string        `json:"type"` // order_created, order_updated, connected, pong
	Order     *models.Order `json:"order,omitempty"`
	Alert     bool          `json:"alert,omitempty"`
	Message   string        `json:"message,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Hub fans order events out to connected clients. Workers receive
// order_created alerts for their category while online; customers receive
// updates for their own orders. A user may hold several connections
// (multiple tabs); the claim race between them is resolved at the
// database, not here.
type Hub struct {
	mu sync.RWMutex

	// clients by user id; a set per user allows multiple tabs
	clients map[uint]map[*Client]bool

	// worker availability by user id, mirrors workers.is_online
	workerOnline map[uint]bool

	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan *Event
}

func NewHub() *Hub {
	return &Hub{
		clients:      make(map[uint]map[*Client]bool),
		workerOnline: make(map[uint]bool),
		Register:     make(chan *Client),
		Unregister:   make(chan *Client),
		Broadcast:    make(chan *Event, 128),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			if client.IsWorker() {
				h.workerOnline[client.UserID] = client.Online
			}
			h.mu.Unlock()
			log.Printf("feed client registered: user=%d role=%s", client.UserID, client.Role)

		case client := <-h.Unregister:
			h.mu.Lock()
			if set, ok := h.clients[client.UserID]; ok && set[client] {
				delete(set, client)
				close(client.Send)
				if len(set) == 0 {
					delete(h.clients, client.UserID)
					// drop the availability entry too, or the map grows
					// forever over worker churn
					delete(h.workerOnline, client.UserID)
				}
			}
			h.mu.Unlock()
			log.Printf("feed client unregistered: user=%d role=%s", client.UserID, client.Role)

		case event := <-h.Broadcast:
			h.dispatch(event)
		}
	}
}

// SetWorkerAvailability mirrors the is_online flag into the hub so an
// offline worker stops receiving alerts without reconnecting.
func (h *Hub) SetWorkerAvailability(userID uint, online bool) {
	h.mu.Lock()
	h.workerOnline[userID] = online
	h.mu.Unlock()
}

// OrderCreated implements services.OrderEvents
func (h *Hub) OrderCreated(order models.Order) {
	h.publish(&Event{Type: "order_created", Order: &order, Alert: true, Timestamp: time.Now()})
}

// OrderUpdated implements services.OrderEvents
func (h *Hub) OrderUpdated(order models.Order) {
	h.publish(&Event{Type: "order_updated", Order: &order, Timestamp: time.Now()})
}

func (h *Hub) publish(event *Event) {
	select {
	case h.Broadcast <- event:
	default:
		log.Printf("feed broadcast channel full, dropping %s for order %d", event.Type, event.Order.ID)
	}
}

func (h *Hub) dispatch(event *Event) {
	if event.Order == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("error marshaling feed event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	order := event.Order
	for userID, set := range h.clients {
		for client := range set {
			if !h.shouldReceive(client, event.Type, order) {
				continue
			}
			select {
			case client.Send <- data:
			default:
				log.Printf("send buffer full for user %d, skipping", userID)
			}
		}
	}
}

// shouldReceive applies the fan-out rules. Caller holds the read lock.
func (h *Hub) shouldReceive(client *Client, eventType string, order *models.Order) bool {
	if client.IsWorker() {
		if client.Category != order.Category {
			return false
		}
		switch eventType {
		case "order_created":
			// only online workers are alerted about new work
			return h.workerOnline[client.UserID]
		case "order_updated":
			// claimed/cancelled orders must drop out of pending lists
			// even for workers who just went offline
			return true
		}
		return false
	}

	// customers follow their own orders only
	return client.UserID == order.CustomerID
}

// ConnectedUsers returns the ids of users with at least one connection
func (h *Hub) ConnectedUsers() []uint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]uint, 0, len(h.clients))
	for userID := range h.clients {
		users = append(users, userID)
	}
	return users
}

// IsUserConnected checks if a user has an open feed connection
func (h *Hub) IsUserConnected(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}
