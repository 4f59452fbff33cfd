package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/server/middleware"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/errors"
)

const transactionPageSize = 25

// GetMe returns the caller's profile plus the last 25 wallet transactions.
func (h *Handler) GetMe(c *gin.Context) {
	user := middleware.User(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errors.ErrMissingSession})
		return
	}

	txs, total, err := h.wallet.Transactions(c.Request.Context(), user.ID, transactionPageSize)
	if err != nil {
		h.logger.Errorf("%s: %v", errors.ErrDBOperationFailed, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrDBOperationFailed})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":                    user,
		"walletTransactions":      txs,
		"walletTransactionsTotal": total,
	})
}
