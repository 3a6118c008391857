package routes

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"home-services-server/database"
	"home-services-server/middleware"
	"home-services-server/models"
	"home-services-server/services"
	"home-services-server/utils"
)

// RegisterAuthRoutes registers signup/login/refresh/logout endpoints
func RegisterAuthRoutes(router *gin.RouterGroup) {
	jwtService := services.NewJWTService()

	router.POST("/signup", func(c *gin.Context) {
		var req struct {
			FullName        string `json:"full_name" binding:"required,min=2,max=100"`
			Phone           string `json:"phone" binding:"required"`
			Email           string `json:"email" binding:"omitempty,email"`
			Password        string `json:"password" binding:"required,min=8,max=128"`
			ConfirmPassword string `json:"confirm_password" binding:"required"`
			Role            string `json:"role" binding:"omitempty,oneof=customer worker"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}

		req.FullName = middleware.SanitizeInput(req.FullName)
		req.Phone = strings.TrimSpace(req.Phone)

		if !middleware.ValidatePhoneNumber(req.Phone) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid phone number",
				"message": "Phone number must include a country code, e.g. +91XXXXXXXXXX",
			})
			return
		}

		if ok, problems := middleware.ValidatePasswordStrength(req.Password); !ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Weak password",
				"message": "Password does not meet security requirements",
				"details": problems,
			})
			return
		}

		if req.Password != req.ConfirmPassword {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Password mismatch",
				"message": "Passwords do not match",
			})
			return
		}

		var existingUser models.User
		if err := database.DB.Where("phone = ?", req.Phone).First(&existingUser).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "User already exists",
				"message": "An account with this phone number already exists",
			})
			return
		}

		hashedPassword, err := utils.HashPassword(req.Password)
		if err != nil {
			log.Printf("password hashing failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal server error",
				"message": "Failed to process password",
			})
			return
		}

		role := models.RoleCustomer
		if strings.ToLower(req.Role) == "worker" {
			role = models.RoleWorker
		}

		user := models.User{
			FullName:     req.FullName,
			Phone:        req.Phone,
			PasswordHash: hashedPassword,
			IsActive:     true,
		}
		if req.Email != "" {
			user.Email = &req.Email
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			return tx.Create(&models.UserRole{UserID: user.ID, Role: role}).Error
		})
		if err != nil {
			log.Printf("user creation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal server error",
				"message": "Failed to create account",
			})
			return
		}

		tokenPair, err := jwtService.GenerateTokenPair(user.ID,
			c.GetHeader("X-Device-ID"), c.GetHeader("User-Agent"), c.ClientIP())
		if err != nil {
			log.Printf("token generation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal server error",
				"message": "Failed to generate authentication tokens",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Account created successfully",
			"data": gin.H{
				"user": gin.H{
					"id":        user.ID,
					"full_name": user.FullName,
					"phone":     user.Phone,
					"roles":     []models.AppRole{role},
				},
				"tokens": tokenPair,
			},
		})
	})

	router.POST("/login", func(c *gin.Context) {
		var req struct {
			Phone    string `json:"phone" binding:"required"`
			Password string `json:"password" binding:"required"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}

		var user models.User
		if err := database.DB.Preload("Roles").Where("phone = ?", strings.TrimSpace(req.Phone)).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid credentials",
				"message": "Phone number or password is incorrect",
			})
			return
		}

		if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid credentials",
				"message": "Phone number or password is incorrect",
			})
			return
		}

		if !user.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Account deactivated",
				"message": "This account has been deactivated",
			})
			return
		}

		tokenPair, err := jwtService.GenerateTokenPair(user.ID,
			c.GetHeader("X-Device-ID"), c.GetHeader("User-Agent"), c.ClientIP())
		if err != nil {
			log.Printf("token generation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal server error",
				"message": "Failed to generate authentication tokens",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"user":   user,
				"tokens": tokenPair,
			},
		})
	})

	router.POST("/refresh", func(c *gin.Context) {
		var req struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}

		tokenPair, err := jwtService.RefreshAccessToken(req.RefreshToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid refresh token",
				"message": "Please sign in again",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"tokens": tokenPair},
		})
	})
}

// RegisterAuthenticatedAuthRoutes registers auth endpoints that need a session
func RegisterAuthenticatedAuthRoutes(router *gin.RouterGroup) {
	jwtService := services.NewJWTService()

	router.GET("/me", func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Authentication required",
				"message": "Please sign in to continue",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"user": user},
		})
	})

	router.POST("/logout", func(c *gin.Context) {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		// Missing body is fine; access token simply expires.
		_ = c.ShouldBindJSON(&req)

		if req.RefreshToken != "" {
			if err := jwtService.RevokeRefreshToken(req.RefreshToken); err != nil {
				log.Printf("refresh token revocation failed: %v", err)
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Signed out",
		})
	})
}
