package routes

import (
	"home-services-server/database"
	"home-services-server/services"
	ws "home-services-server/websocket"
)

// orderEvents is the realtime sink the lifecycle controller publishes to.
// It stays a no-op until the hub is wired in at startup, so handlers keep
// working in tests without a running feed.
var orderEvents services.OrderEvents = services.NopEvents{}

// feedHub is the live hub, used to mirror worker availability
var feedHub *ws.Hub

// InitOrderFeed wires the WebSocket hub into the order lifecycle
func InitOrderFeed(hub *ws.Hub) {
	feedHub = hub
	orderEvents = hub
}

// SetOrderEvents overrides the event sink. Tests use this to record
// published events.
func SetOrderEvents(events services.OrderEvents) {
	if events == nil {
		events = services.NopEvents{}
	}
	orderEvents = events
}

func orderService() *services.OrderService {
	return services.NewOrderService(database.DB, orderEvents)
}
