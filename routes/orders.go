package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"home-services-server/database"
	"home-services-server/models"
	"home-services-server/services"
)

// RegisterOrderRoutes registers customer-side order endpoints
func RegisterOrderRoutes(router *gin.RouterGroup) {
	router.POST("", createOrder)
	router.GET("", getMyOrders)
	router.GET("/:id", getOrder)
	router.POST("/:id/cancel", cancelOrder)
	router.POST("/:id/payment", choosePaymentMethod)
	router.POST("/:id/review", reviewOrder)
	router.GET("/:id/messages", getOrderMessages)
	router.POST("/:id/messages", postOrderMessage)
}

func orderIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid order ID",
			"message": "Order ID must be numeric",
		})
		return 0, false
	}
	return uint(id), true
}

// createOrder books a service. The order starts in `searching` and is
// pushed to online workers of the matching category right away.
func createOrder(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req models.OrderCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": err.Error(),
		})
		return
	}

	order, err := orderService().Create(userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to create order",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Order placed, searching for available workers",
		"data":    orderWithOTP(order),
	})
}

// orderWithOTP exposes the completion code to its owner. The customer
// discloses it to the worker in person at completion time, so it is
// omitted from the model's JSON and only attached on owner-facing reads.
func orderWithOTP(order *models.Order) gin.H {
	return gin.H{
		"order": order,
		"otp":   order.OTP,
	}
}

func getMyOrders(c *gin.Context) {
	userID := c.GetUint("user_id")

	var orders []models.Order
	if err := database.DB.Where("customer_id = ?", userID).
		Preload("Worker.User").
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch orders",
			"message": err.Error(),
		})
		return
	}

	items := make([]gin.H, 0, len(orders))
	for i := range orders {
		items = append(items, orderWithOTP(&orders[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"orders":      items,
		"total_count": len(orders),
	})
}

func getOrder(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	userID := c.GetUint("user_id")

	var order models.Order
	if err := database.DB.
		Preload("Customer").
		Preload("Worker.User").
		First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Order not found",
			"message": "No order with this ID",
		})
		return
	}

	if order.CustomerID != userID && !isAssignedWorkerUser(order, userID) {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Access denied",
			"message": "You are not a party to this order",
		})
		return
	}

	if order.CustomerID == userID {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": orderWithOTP(&order)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"order": order}})
}

// isAssignedWorkerUser reports whether userID owns the worker profile
// assigned to the order
func isAssignedWorkerUser(order models.Order, userID uint) bool {
	if order.WorkerID == nil {
		return false
	}
	var worker models.Worker
	if err := database.DB.First(&worker, *order.WorkerID).Error; err != nil {
		return false
	}
	return worker.UserID == userID
}

func cancelOrder(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	userID := c.GetUint("user_id")

	order, err := orderService().Cancel(orderID, userID)
	if err != nil {
		respondOrderError(c, err, "Failed to cancel order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order cancelled",
		"order":   order,
	})
}

func reviewOrder(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	userID := c.GetUint("user_id")

	var req models.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": err.Error(),
		})
		return
	}

	review, err := orderService().Review(orderID, userID, req)
	if err != nil {
		respondOrderError(c, err, "Failed to submit review")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Review submitted",
		"review":  review,
	})
}

// respondOrderError maps lifecycle errors to HTTP statuses, keeping
// business-rule refusals distinct from generic backend failures.
func respondOrderError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Order not found",
			"message": "No order with this ID",
		})
	case errors.Is(err, services.ErrNotOrderOwner), errors.Is(err, services.ErrNotAssignedWorker):
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Access denied",
			"message": err.Error(),
		})
	case errors.Is(err, services.ErrOrderAlreadyClaimed):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Order already taken",
			"message": "Another worker accepted this order first",
		})
	case errors.Is(err, services.ErrOTPMismatch):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid code",
			"message": "The completion code does not match, please try again",
		})
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrPaymentNotReady),
		errors.Is(err, services.ErrCategoryMismatch),
		errors.Is(err, services.ErrAlreadyReviewed):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   fallback,
			"message": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   fallback,
			"message": err.Error(),
		})
	}
}
