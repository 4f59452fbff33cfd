package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/dispatch"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/repository"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/server/middleware"
	apierrors "github.com/SumitJoshiGIT/distributed-task-runner/pkg/errors"
)

// ClaimTask opts the calling worker in to a task.
func (h *Handler) ClaimTask(c *gin.Context) {
	taskID := c.Param("id")
	workerID := middleware.SessionID(c)

	task, err := h.engine.Claim(c.Request.Context(), taskID, workerID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": apierrors.ErrTaskNotFound})
		return
	case errors.Is(err, dispatch.ErrTaskRevoked):
		c.JSON(http.StatusConflict, gin.H{"error": "Task is revoked"})
		return
	case errors.Is(err, dispatch.ErrWorkerOffline):
		c.JSON(http.StatusBadRequest, gin.H{"error": apierrors.ErrWorkerOffline})
		return
	case err != nil:
		h.logger.Errorf("%s: %v", apierrors.ErrDBOperationFailed, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": apierrors.ErrDBOperationFailed})
		return
	}

	h.logger.Infof("POST [ClaimTask] Worker %s claimed task %s", workerID, taskID)
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// DropTask opts the calling worker out and releases its leases.
func (h *Handler) DropTask(c *gin.Context) {
	taskID := c.Param("id")
	workerID := middleware.SessionID(c)

	task, err := h.engine.DropAssignments(c.Request.Context(), taskID, workerID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": apierrors.ErrTaskNotFound})
		return
	}
	if err != nil {
		h.logger.Errorf("%s: %v", apierrors.ErrDBOperationFailed, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": apierrors.ErrDBOperationFailed})
		return
	}

	h.logger.Infof("POST [DropTask] Worker %s dropped task %s", workerID, taskID)
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// RevokeTask pauses claims and deletes pending leases. Creator only.
func (h *Handler) RevokeTask(c *gin.Context) {
	taskID := c.Param("id")
	if !h.requireCreator(c, taskID) {
		return
	}

	task, err := h.engine.Revoke(c.Request.Context(), taskID)
	if err != nil {
		h.logger.Errorf("%s: %v", apierrors.ErrDBOperationFailed, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": apierrors.ErrDBOperationFailed})
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

// ReinvokeTask re-enables claims on a revoked task. Creator only.
func (h *Handler) ReinvokeTask(c *gin.Context) {
	taskID := c.Param("id")
	if !h.requireCreator(c, taskID) {
		return
	}

	task, err := h.engine.Reinvoke(c.Request.Context(), taskID)
	if err != nil {
		h.logger.Errorf("%s: %v", apierrors.ErrDBOperationFailed, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": apierrors.ErrDBOperationFailed})
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

// DeleteTask cascades to results, assignments, and on-disk artifacts.
// Creator only.
func (h *Handler) DeleteTask(c *gin.Context) {
	taskID := c.Param("id")
	if !h.requireCreator(c, taskID) {
		return
	}

	if err := h.engine.DeleteTask(c.Request.Context(), taskID); err != nil {
		h.logger.Errorf("%s: %v", apierrors.ErrDBOperationFailed, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": apierrors.ErrDBOperationFailed})
		return
	}

	h.logger.Infof("DELETE [DeleteTask] Task %s deleted", taskID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// requireCreator verifies the caller's session owns the task. It writes the
// error response itself and reports whether to continue.
func (h *Handler) requireCreator(c *gin.Context, taskID string) bool {
	task, err := h.engine.GetTask(c.Request.Context(), taskID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": apierrors.ErrTaskNotFound})
		return false
	}
	if err != nil {
		h.logger.Errorf("%s: %v", apierrors.ErrDBOperationFailed, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": apierrors.ErrDBOperationFailed})
		return false
	}
	if task.CreatorID != middleware.SessionID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": apierrors.ErrNotTaskCreator})
		return false
	}
	return true
}
