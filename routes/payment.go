package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"home-services-server/models"
)

// choosePaymentMethod records how the customer settles an assigned order
// and moves it to `in_progress`. Cash stays pending until completion;
// online is marked paid immediately (there is no gateway behind it).
// Resubmitting returns the already-recorded transaction.
func choosePaymentMethod(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	userID := c.GetUint("user_id")

	var req struct {
		Method models.PaymentMethod `json:"method" binding:"required,oneof=cash online"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": "method must be cash or online",
		})
		return
	}

	txn, err := orderService().RecordPayment(orderID, userID, req.Method)
	if err != nil {
		respondOrderError(c, err, "Failed to record payment")
		return
	}

	message := "Payment method saved, pay the worker in cash after completion"
	if txn.PaymentMethod == models.PaymentMethodOnline {
		message = "Payment successful"
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     message,
		"transaction": txn,
	})
}
