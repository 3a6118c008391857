package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"home-services-server/database"
	"home-services-server/models"
)

// RegisterAdminRoutes registers the admin console endpoints. The group
// is mounted behind RequireRole(admin) in main.
func RegisterAdminRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard", getDashboardStats)
	router.GET("/users", listUsers)
	router.GET("/workers", listWorkers)
	router.PATCH("/workers/:id/verify", verifyWorker)
	router.GET("/orders", listAllOrders)
	router.GET("/transactions", listTransactions)
	router.POST("/services", createService)
	router.PUT("/services/:id", updateService)
	router.DELETE("/services/:id", deactivateService)
}

// getDashboardStats aggregates the headline numbers: user/worker counts,
// orders by status, and revenue from settled transactions.
func getDashboardStats(c *gin.Context) {
	var totalUsers, totalWorkers, totalOrders int64
	database.DB.Model(&models.User{}).Count(&totalUsers)
	database.DB.Model(&models.Worker{}).Count(&totalWorkers)
	database.DB.Model(&models.Order{}).Count(&totalOrders)

	type statusCount struct {
		Status models.OrderStatus `json:"status"`
		Count  int64              `json:"count"`
	}
	var byStatus []statusCount
	database.DB.Model(&models.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&byStatus)

	var totalRevenue float64
	database.DB.Model(&models.Transaction{}).
		Where("payment_status = ?", models.PaymentStatusPaid).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&totalRevenue)

	var onlineWorkers int64
	database.DB.Model(&models.Worker{}).Where("is_online = ?", true).Count(&onlineWorkers)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"total_users":      totalUsers,
			"total_workers":    totalWorkers,
			"online_workers":   onlineWorkers,
			"total_orders":     totalOrders,
			"orders_by_status": byStatus,
			"total_revenue":    totalRevenue,
		},
	})
}

// pagination reads ?page= and ?limit= with sane bounds
func pagination(c *gin.Context) (offset, limit int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return (page - 1) * limit, limit
}

func listUsers(c *gin.Context) {
	offset, limit := pagination(c)

	var total int64
	database.DB.Model(&models.User{}).Count(&total)

	var users []models.User
	if err := database.DB.Preload("Roles").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch users",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"users":       users,
		"total_count": total,
	})
}

func listWorkers(c *gin.Context) {
	offset, limit := pagination(c)

	category := c.Query("category")
	filter := func(db *gorm.DB) *gorm.DB {
		if category != "" {
			return db.Where("category = ?", category)
		}
		return db
	}

	var total int64
	filter(database.DB.Model(&models.Worker{})).Count(&total)

	var workers []models.Worker
	if err := filter(database.DB.Model(&models.Worker{})).Preload("User").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&workers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch workers",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"workers":     workers,
		"total_count": total,
	})
}

func verifyWorker(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid worker ID",
			"message": "Worker ID must be numeric",
		})
		return
	}

	var req struct {
		IsVerified *bool `json:"is_verified" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": "is_verified is required",
		})
		return
	}

	var worker models.Worker
	if err := database.DB.First(&worker, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Worker not found",
			"message": "No worker with this ID",
		})
		return
	}

	if err := database.DB.Model(&worker).Update("is_verified", *req.IsVerified).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update worker",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"worker":  worker,
	})
}

func listAllOrders(c *gin.Context) {
	offset, limit := pagination(c)

	status := c.Query("status")
	filter := func(db *gorm.DB) *gorm.DB {
		if status != "" {
			return db.Where("status = ?", status)
		}
		return db
	}

	var total int64
	filter(database.DB.Model(&models.Order{})).Count(&total)

	var orders []models.Order
	if err := filter(database.DB.Model(&models.Order{})).Preload("Customer").Preload("Worker.User").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch orders",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"orders":      orders,
		"total_count": total,
	})
}

func listTransactions(c *gin.Context) {
	offset, limit := pagination(c)

	status := c.Query("status")
	filter := func(db *gorm.DB) *gorm.DB {
		if status != "" {
			return db.Where("payment_status = ?", status)
		}
		return db
	}

	var total int64
	filter(database.DB.Model(&models.Transaction{})).Count(&total)

	var transactions []models.Transaction
	if err := filter(database.DB.Model(&models.Transaction{})).Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&transactions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch transactions",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"transactions": transactions,
		"total_count":  total,
	})
}

func createService(c *gin.Context) {
	var req models.ServiceRequest
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
			"message": "Unknown service category",
		})
		return
	}

	service := models.Service{
		Category:    req.Category,
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Duration:    req.Duration,
		Icon:        req.Icon,
		IsActive:    true,
	}
	if err := database.DB.Create(&service).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Failed to create service",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"service": service,
	})
}

func updateService(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid service ID",
			"message": "Service ID must be numeric",
		})
		return
	}

	var service models.Service
	if err := database.DB.First(&service, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Service not found",
			"message": "No catalog entry with this ID",
		})
		return
	}

	var req models.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": err.Error(),
		})
		return
	}

	updates := map[string]interface{}{
		"name":        req.Name,
		"description": req.Description,
		"price":       req.Price,
		"duration":    req.Duration,
		"icon":        req.Icon,
	}
	if err := database.DB.Model(&service).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update service",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"service": service,
	})
}

// deactivateService hides a catalog entry from customers without
// touching orders that already reference it.
func deactivateService(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid service ID",
			"message": "Service ID must be numeric",
		})
		return
	}

	result := database.DB.Model(&models.Service{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to deactivate service",
			"message": result.Error.Error(),
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Service not found",
			"message": "No catalog entry with this ID",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Service deactivated",
	})
}
