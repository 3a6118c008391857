package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"home-services-server/models"
)

const (
	testWait = 2 * time.Second
	testTick = 10 * time.Millisecond
)

func plumberOrder(customerID uint) *models.Order {
	return &models.Order{
		ID:         1,
		CustomerID: customerID,
		Category:   models.CategoryPlumber,
		Status:     models.OrderStatusSearching,
	}
}

func TestWorkerAlertsFilterByCategoryAndAvailability(t *testing.T) {
	hub := NewHub()
	order := plumberOrder(100)

	onlinePlumber := &Client{UserID: 1, Role: "worker", Category: models.CategoryPlumber}
	offlinePlumber := &Client{UserID: 2, Role: "worker", Category: models.CategoryPlumber}
	onlinePainter := &Client{UserID: 3, Role: "worker", Category: models.CategoryPainter}

	hub.SetWorkerAvailability(1, true)
	hub.SetWorkerAvailability(2, false)
	hub.SetWorkerAvailability(3, true)

	assert.True(t, hub.shouldReceive(onlinePlumber, "order_created", order))
	assert.False(t, hub.shouldReceive(offlinePlumber, "order_created", order))
	assert.False(t, hub.shouldReceive(onlinePainter, "order_created", order))
}

func TestWorkerUpdatesDeliveredRegardlessOfAvailability(t *testing.T) {
	hub := NewHub()
	order := plumberOrder(100)

	// A claimed order must drop out of a worker's pending list even if the
	// worker toggled offline after the alert arrived.
	offlinePlumber := &Client{UserID: 2, Role: "worker", Category: models.CategoryPlumber}
	hub.SetWorkerAvailability(2, false)

	assert.True(t, hub.shouldReceive(offlinePlumber, "order_updated", order))

	painter := &Client{UserID: 3, Role: "worker", Category: models.CategoryPainter}
	hub.SetWorkerAvailability(3, true)
	assert.False(t, hub.shouldReceive(painter, "order_updated", order))
}

func TestCustomersOnlyFollowOwnOrders(t *testing.T) {
	hub := NewHub()
	order := plumberOrder(100)

	owner := &Client{UserID: 100, Role: "customer"}
	stranger := &Client{UserID: 200, Role: "customer"}

	assert.True(t, hub.shouldReceive(owner, "order_updated", order))
	assert.True(t, hub.shouldReceive(owner, "order_created", order))
	assert.False(t, hub.shouldReceive(stranger, "order_updated", order))
	assert.False(t, hub.shouldReceive(stranger, "order_created", order))
}

func TestHubRegisterUnregisterTracksConnections(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{UserID: 7, Role: "customer", Send: make(chan []byte, 1)}
	hub.Register <- client

	assert.Eventually(t, func() bool {
		return hub.IsUserConnected(7)
	}, testWait, testTick)

	hub.Unregister <- client

	assert.Eventually(t, func() bool {
		return !hub.IsUserConnected(7)
	}, testWait, testTick)
}

func TestUnregisterPrunesWorkerAvailability(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{
		UserID:   11,
		Role:     "worker",
		Category: models.CategoryPlumber,
		Online:   true,
		Send:     make(chan []byte, 1),
	}
	hub.Register <- client

	assert.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		_, tracked := hub.workerOnline[11]
		return tracked
	}, testWait, testTick)

	// The last connection going away must drop the availability entry,
	// or the map grows without bound over worker churn.
	hub.Unregister <- client

	assert.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		_, tracked := hub.workerOnline[11]
		return !tracked && len(hub.clients) == 0
	}, testWait, testTick)
}

func TestSetWorkerAvailabilityWithoutConnection(t *testing.T) {
	hub := NewHub()

	// Toggling availability for a worker with no open socket must not panic
	hub.SetWorkerAvailability(42, true)
	hub.SetWorkerAvailability(42, false)

	client := &Client{UserID: 42, Role: "worker", Category: models.CategoryCleaner}
	order := &models.Order{ID: 2, CustomerID: 9, Category: models.CategoryCleaner}
	assert.False(t, hub.shouldReceive(client, "order_created", order))
}
