package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"home-services-server/database"
	"home-services-server/models"
)

// RegisterCatalogRoutes registers the public service catalog endpoints.
// These need no auth; the catalog is the browse surface of the app.
func RegisterCatalogRoutes(router *gin.RouterGroup) {
	router.GET("/categories", getCategories)
	router.GET("/services", getServices)
}

func getCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"categories": models.AllCategories(),
	})
}

// getServices lists active catalog entries, optionally filtered by
// ?category=
func getServices(c *gin.Context) {
	query := database.DB.Where("is_active = ?", true)

	if category := c.Query("category"); category != "" {
		if !models.IsValidCategory(models.WorkerCategory(category)) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid category",
				"message": "Unknown service category",
			})
			return
		}
		query = query.Where("category = ?", category)
	}

	var items []models.Service
	if err := query.Order("category ASC, price ASC").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch services",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"services":        items,
		"convenience_fee": models.ConvenienceFee,
	})
}
