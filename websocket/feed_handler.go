package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"home-services-server/database"
	"home-services-server/models"
)

// FeedHandler exposes the push feed over gin routes. Both endpoints run
// behind WebSocketAuthMiddleware, which puts the user in context.
type FeedHandler struct {
	hub *Hub
}

func NewFeedHandler(hub *Hub) *FeedHandler {
	return &FeedHandler{hub: hub}
}

// HandleWorkerFeed subscribes a worker to new-order alerts for their
// category. The connection requires a worker profile.
func (h *FeedHandler) HandleWorkerFeed(c *gin.Context) {
	userID := c.GetUint("user_id")

	var worker models.Worker
	if err := database.DB.Where("user_id = ?", userID).First(&worker).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Worker profile required",
			"message": "Create a worker profile before subscribing to the feed",
		})
		return
	}

	client := &Client{
		UserID:   userID,
		Role:     "worker",
		WorkerID: worker.ID,
		Category: worker.Category,
		Online:   worker.IsOnline,
	}
	serve(h.hub, c.Writer, c.Request, client)
}

// HandleCustomerFeed subscribes a customer to updates on their own orders.
func (h *FeedHandler) HandleCustomerFeed(c *gin.Context) {
	userID := c.GetUint("user_id")

	client := &Client{
		UserID: userID,
		Role:   "customer",
	}
	serve(h.hub, c.Writer, c.Request, client)
}
