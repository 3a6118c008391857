package routes

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"home-services-server/database"
	"home-services-server/models"
)

// RegisterWorkerRoutes registers worker profile and job endpoints
func RegisterWorkerRoutes(router *gin.RouterGroup) {
	router.POST("/profile", createWorkerProfile)
	router.GET("/profile", getMyWorkerProfile)
	router.PUT("/profile", updateWorkerProfile)
	router.PUT("/availability", setWorkerAvailability)

	// Pending lives outside /orders: a static sibling of :id would
	// conflict in gin's route tree.
	router.GET("/pending", getPendingOrders)
	router.GET("/orders", getActiveOrders)
	router.POST("/orders/:id/accept", acceptOrder)
	router.POST("/orders/:id/reject", rejectOrder)
	router.POST("/orders/:id/start", startOrder)
	router.POST("/orders/:id/complete", completeOrder)

	router.GET("/notifications", getWorkerNotifications)
}

// workerForUser loads the worker profile bound to the authenticated user
func workerForUser(c *gin.Context) (models.Worker, bool) {
	userID := c.GetUint("user_id")

	var worker models.Worker
	if err := database.DB.Where("user_id = ?", userID).First(&worker).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Worker profile required",
			"message": "This area is for workers; create a worker profile first",
		})
		return models.Worker{}, false
	}
	return worker, true
}

// createWorkerProfile makes the 1:1 profile and grants the worker role.
func createWorkerProfile(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req models.WorkerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": err.Error(),
		})
		return
	}

	if !models.IsValidCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid category",
			"message": "Category must be one of the supported service categories",
		})
		return
	}

	var existing models.Worker
	if err := database.DB.Where("user_id = ?", userID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Profile exists",
			"message": "This account already has a worker profile",
		})
		return
	}

	worker := models.Worker{
		UserID:          userID,
		Category:        req.Category,
		Bio:             req.Bio,
		Skills:          req.Skills,
		HourlyRate:      req.HourlyRate,
		ExperienceYears: req.ExperienceYears,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&worker).Error; err != nil {
			return err
		}

		var role models.UserRole
		err := tx.Where("user_id = ? AND role = ?", userID, models.RoleWorker).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&models.UserRole{UserID: userID, Role: models.RoleWorker}).Error
		}
		return err
	})
	if err != nil {
		log.Printf("worker profile creation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create profile",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"worker":  worker,
	})
}

func getMyWorkerProfile(c *gin.Context) {
	worker, ok := workerForUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"worker":  worker,
	})
}

func updateWorkerProfile(c *gin.Context) {
	worker, ok := workerForUser(c)
	if !ok {
		return
	}

	var req models.WorkerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": err.Error(),
		})
		return
	}

	// Category is fixed at profile creation: a worker serves one specialty.
	updates := map[string]interface{}{
		"bio":              req.Bio,
		"skills":           req.Skills,
		"hourly_rate":      req.HourlyRate,
		"experience_years": req.ExperienceYears,
	}
	if err := database.DB.Model(&worker).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update profile",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"worker":  worker,
	})
}

// setWorkerAvailability flips the online flag. Going online returns the
// current pending list so the worker's alert state is seeded immediately.
func setWorkerAvailability(c *gin.Context) {
	worker, ok := workerForUser(c)
	if !ok {
		return
	}

	var req struct {
		IsOnline *bool `json:"is_online" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": "is_online is required",
		})
		return
	}

	if err := database.DB.Model(&worker).Update("is_online", *req.IsOnline).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update availability",
			"message": err.Error(),
		})
		return
	}

	if feedHub != nil {
		feedHub.SetWorkerAvailability(worker.UserID, *req.IsOnline)
	}

	response := gin.H{
		"success":   true,
		"is_online": *req.IsOnline,
	}

	if *req.IsOnline {
		pending, err := orderService().PendingForWorker(worker.ID)
		if err == nil {
			response["pending_orders"] = pending
			response["total_count"] = len(pending)
		}
	}

	c.JSON(http.StatusOK, response)
}

// getPendingOrders is the baseline fetch of unclaimed orders in the
// worker's category.
func getPendingOrders(c *gin.Context) {
	worker, ok := workerForUser(c)
	if !ok {
		return
	}

	if !worker.IsOnline {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Worker offline",
			"message": "Go online to see pending orders",
		})
		return
	}

	orders, err := orderService().PendingForWorker(worker.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch pending orders",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"pending_orders": orders,
		"total_count":    len(orders),
	})
}

func getActiveOrders(c *gin.Context) {
	worker, ok := workerForUser(c)
	if !ok {
		return
	}

	var orders []models.Order
	if err := database.DB.
		Where("worker_id = ? AND status IN ?", worker.ID,
			[]models.OrderStatus{models.OrderStatusAssigned, models.OrderStatusInProgress}).
		Preload("Customer").
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch active orders",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"orders":      orders,
		"total_count": len(orders),
	})
}

// acceptOrder is the first-accept-wins claim. Losing the race returns 409
// and the order should be dropped from the local pending list.
func acceptOrder(c *gin.Context) {
	worker, ok := workerForUser(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, err := orderService().Accept(orderID, worker.ID)
	if err != nil {
		respondOrderError(c, err, "Failed to accept order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order accepted, the customer will choose a payment method",
		"order":   order,
	})
}

// rejectOrder only acknowledges this worker's alert; the order stays
// available to everyone else.
func rejectOrder(c *gin.Context) {
	worker, ok := workerForUser(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	if err := orderService().Reject(orderID, worker.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reject order",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order dismissed",
	})
}

func startOrder(c *gin.Context) {
	worker, ok := workerForUser(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, err := orderService().Start(orderID, worker.ID)
	if err != nil {
		respondOrderError(c, err, "Failed to start work")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Work started",
		"order":   order,
	})
}

// completeOrder verifies the customer-disclosed code and settles the job.
func completeOrder(c *gin.Context) {
	worker, ok := workerForUser(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Code string `json:"code" binding:"required,len=4,numeric"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid code",
			"message": "Enter the 4-digit completion code",
		})
		return
	}

	order, err := orderService().Complete(orderID, worker.ID, req.Code)
	if err != nil {
		respondOrderError(c, err, "Failed to complete job")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Job completed",
		"order":   order,
	})
}

func getWorkerNotifications(c *gin.Context) {
	worker, ok := workerForUser(c)
	if !ok {
		return
	}

	var notifications []models.WorkerNotification
	if err := database.DB.Where("worker_id = ?", worker.ID).
		Preload("Order").
		Order("created_at DESC").
		Limit(50).
		Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch notifications",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"notifications": notifications,
		"total_count":   len(notifications),
	})
}
