package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"home-services-server/database"
	"home-services-server/middleware"
	"home-services-server/models"
)

// RegisterAddressRoutes registers the saved-address book endpoints
func RegisterAddressRoutes(router *gin.RouterGroup) {
	router.GET("", getAddresses)
	router.POST("", createAddress)
	router.PUT("/:id", updateAddress)
	router.DELETE("/:id", deleteAddress)
	router.POST("/:id/default", setDefaultAddress)
}

func addressIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid address ID",
			"message": "Address ID must be numeric",
		})
		return 0, false
	}
	return uint(id), true
}

// addressForUser loads an address scoped to the authenticated user
func addressForUser(c *gin.Context) (models.Address, bool) {
	id, ok := addressIDParam(c)
	if !ok {
		return models.Address{}, false
	}
	userID := c.GetUint("user_id")

	var address models.Address
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&address).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Address not found",
			"message": "No saved address with this ID",
		})
		return models.Address{}, false
	}
	return address, true
}

func getAddresses(c *gin.Context) {
	userID := c.GetUint("user_id")

	var addresses []models.Address
	if err := database.DB.Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&addresses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch addresses",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"addresses": addresses,
	})
}

func createAddress(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req models.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": err.Error(),
		})
		return
	}

	address := models.Address{
		UserID:      userID,
		Label:       middleware.SanitizeInput(req.Label),
		FullAddress: middleware.SanitizeInput(req.FullAddress),
		City:        req.City,
		Pincode:     req.Pincode,
		IsDefault:   req.IsDefault,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := tx.Model(&models.Address{}).
				Where("user_id = ?", userID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to save address",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"address": address,
	})
}

func updateAddress(c *gin.Context) {
	address, ok := addressForUser(c)
	if !ok {
		return
	}

	var req models.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": err.Error(),
		})
		return
	}

	address.Label = middleware.SanitizeInput(req.Label)
	address.FullAddress = middleware.SanitizeInput(req.FullAddress)
	address.City = req.City
	address.Pincode = req.Pincode

	if err := database.DB.Save(&address).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update address",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"address": address,
	})
}

func deleteAddress(c *gin.Context) {
	address, ok := addressForUser(c)
	if !ok {
		return
	}

	if err := database.DB.Delete(&address).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete address",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Address deleted",
	})
}

// setDefaultAddress makes this address the default and clears the flag
// on every other address the user has.
func setDefaultAddress(c *gin.Context) {
	address, ok := addressForUser(c)
	if !ok {
		return
	}
	userID := c.GetUint("user_id")

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Address{}).
			Where("user_id = ? AND id <> ?", userID, address.ID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&address).Update("is_default", true).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to set default address",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"address": address,
	})
}
