package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	servertypes "github.com/SumitJoshiGIT/distributed-task-runner/internal/server/types"
	apierrors "github.com/SumitJoshiGIT/distributed-task-runner/pkg/errors"
)

// CreateCheckoutSession validates the deposit request and reports 501: no
// external checkout integration is wired into this service, so no checkout
// session is ever created.
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var req servertypes.CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": apierrors.ErrInvalidRequestBody})
		return
	}

	c.JSON(http.StatusNotImplemented, gin.H{"error": "Checkout is not configured"})
}

// CheckoutWebhook applies a completed external checkout to the wallet of the
// session that initiated it.
func (h *Handler) CheckoutWebhook(c *gin.Context) {
	var req servertypes.CheckoutWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": apierrors.ErrInvalidRequestBody})
		return
	}

	if req.Type != "checkout.session.completed" {
		// Unhandled event types are acknowledged so the provider stops
		// retrying them.
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	user, err := h.wallet.EnsureUserBySession(c.Request.Context(), req.SessionID)
	if err != nil {
		h.logger.Errorf("Checkout webhook failed to resolve session %s: %v", req.SessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": apierrors.ErrDBOperationFailed})
		return
	}

	if _, _, err := h.wallet.ApplyCheckout(c.Request.Context(), user.ID, req.Amount); err != nil {
		h.logger.Errorf("Checkout webhook failed to credit user %s: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": apierrors.ErrDBOperationFailed})
		return
	}

	h.logger.Infof("POST [CheckoutWebhook] %v credited to session %s", req.Amount, req.SessionID)
	c.JSON(http.StatusOK, gin.H{"received": true})
}
