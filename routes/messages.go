package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"home-services-server/database"
	"home-services-server/middleware"
	"home-services-server/models"
)

// orderForParty loads the order and checks the requester is the customer
// or the assigned worker. Message threads are private to the two parties.
func orderForParty(c *gin.Context) (models.Order, bool) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return models.Order{}, false
	}
	userID := c.GetUint("user_id")

	var order models.Order
	if err := database.DB.First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Order not found",
			"message": "No order with this ID",
		})
		return models.Order{}, false
	}

	if order.CustomerID != userID && !isAssignedWorkerUser(order, userID) {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Access denied",
			"message": "You are not a party to this order",
		})
		return models.Order{}, false
	}
	return order, true
}

func getOrderMessages(c *gin.Context) {
	order, ok := orderForParty(c)
	if !ok {
		return
	}
	userID := c.GetUint("user_id")

	var messages []models.OrderMessage
	if err := database.DB.Where("order_id = ?", order.ID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch messages",
			"message": err.Error(),
		})
		return
	}

	// Reading the thread marks the other party's messages as read.
	database.DB.Model(&models.OrderMessage{}).
		Where("order_id = ? AND sender_id <> ? AND is_read = ?", order.ID, userID, false).
		Update("is_read", true)

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"messages":    messages,
		"total_count": len(messages),
	})
}

func postOrderMessage(c *gin.Context) {
	order, ok := orderForParty(c)
	if !ok {
		return
	}
	userID := c.GetUint("user_id")

	if order.Status.IsTerminal() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Order closed",
			"message": "Messaging is only available while the order is active",
		})
		return
	}

	var req models.OrderMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": err.Error(),
		})
		return
	}

	message := models.OrderMessage{
		OrderID:  order.ID,
		SenderID: userID,
		Message:  middleware.SanitizeInput(req.Message),
	}
	if err := database.DB.Create(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to send message",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    message,
	})
}
