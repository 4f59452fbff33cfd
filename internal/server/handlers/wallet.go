package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/server/middleware"
	servertypes "github.com/SumitJoshiGIT/distributed-task-runner/internal/server/types"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/wallet"
	apierrors "github.com/SumitJoshiGIT/distributed-task-runner/pkg/errors"
)

// Deposit applies a sandbox-only manual credit to the caller's wallet.
func (h *Handler) Deposit(c *gin.Context) {
	var req servertypes.WalletAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": apierrors.ErrInvalidRequestBody})
		return
	}

	user := middleware.User(c)
	updated, tx, err := h.wallet.Deposit(c.Request.Context(), user.ID, req.Amount)
	if err != nil {
		h.writeWalletError(c, err)
		return
	}

	h.logger.Infof("POST [Deposit] %v credited to user %s", req.Amount, user.ID)
	c.JSON(http.StatusOK, gin.H{"user": updated, "transaction": tx})
}

// Withdraw applies a sandbox-only manual debit to the caller's wallet.
func (h *Handler) Withdraw(c *gin.Context) {
	var req servertypes.WalletAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": apierrors.ErrInvalidRequestBody})
		return
	}

	user := middleware.User(c)
	updated, tx, err := h.wallet.Withdraw(c.Request.Context(), user.ID, req.Amount)
	if err != nil {
		h.writeWalletError(c, err)
		return
	}

	h.logger.Infof("POST [Withdraw] %v debited from user %s", req.Amount, user.ID)
	c.JSON(http.StatusOK, gin.H{"user": updated, "transaction": tx})
}

func (h *Handler) writeWalletError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, wallet.ErrSandboxDisabled):
		c.JSON(http.StatusForbidden, gin.H{"error": apierrors.ErrSandboxDisabled})
	case errors.Is(err, wallet.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": apierrors.ErrInvalidRequestBody})
	case errors.Is(err, wallet.ErrInsufficientFunds):
		c.JSON(http.StatusBadRequest, gin.H{"error": apierrors.ErrInsufficientFunds})
	default:
		h.logger.Errorf("Wallet operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": apierrors.ErrDBOperationFailed})
	}
}
