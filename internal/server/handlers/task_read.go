package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/repository"
	apierrors "github.com/SumitJoshiGIT/distributed-task-runner/pkg/errors"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/types"
)

// ListTasks returns all tasks, optionally filtered with ?status=.
func (h *Handler) ListTasks(c *gin.Context) {
	status := types.TaskStatus(c.Query("status"))

	tasks, err := h.engine.ListTasks(c.Request.Context(), status)
	if err != nil {
		h.logger.Errorf("%s: %v", apierrors.ErrDBOperationFailed, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": apierrors.ErrDBOperationFailed})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// GetTask returns one task with derived progress fields.
func (h *Handler) GetTask(c *gin.Context) {
	task, err := h.engine.GetTask(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": apierrors.ErrTaskNotFound})
		return
	}
	if err != nil {
		h.logger.Errorf("%s: %v", apierrors.ErrDBOperationFailed, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": apierrors.ErrDBOperationFailed})
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

// GetTaskResults returns a task's bucket results and live assignments.
func (h *Handler) GetTaskResults(c *gin.Context) {
	results, assignments, err := h.engine.TaskResults(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": apierrors.ErrTaskNotFound})
		return
	}
	if err != nil {
		h.logger.Errorf("%s: %v", apierrors.ErrDBOperationFailed, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": apierrors.ErrDBOperationFailed})
		return
	}

	if results == nil {
		results = []*types.BucketResult{}
	}
	if assignments == nil {
		assignments = []*types.BucketAssignment{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "assignments": assignments})
}
