package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/dispatch"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/server/middleware"
	apierrors "github.com/SumitJoshiGIT/distributed-task-runner/pkg/errors"
)

// CreateTask accepts a multipart upload: a required code archive, an
// optional data file holding the JSON input array, and the budget fields.
// Artifacts are stored under a storage id equal to the task id.
func (h *Handler) CreateTask(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	logger := h.logger

	codeFile, err := c.FormFile("code")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code archive is required"})
		return
	}

	costPerBucket := formFloat(c, "costPerBucket", 0)
	maxBillableBuckets := formInt(c, "maxBillableBuckets", 0)
	if costPerBucket <= 0 || maxBillableBuckets < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": apierrors.ErrInvalidRequestBody})
		return
	}

	taskID := uuid.NewString()

	code, err := codeFile.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": apierrors.ErrInvalidRequestBody})
		return
	}
	defer code.Close()

	if _, err := h.artifacts.SaveCode(taskID, codeFile.Filename, code); err != nil {
		logger.Errorf("Failed to store code archive: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store upload"})
		return
	}

	dataRef := ""
	totalItems := 0
	if dataFile, err := c.FormFile("data"); err == nil {
		f, err := dataFile.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": apierrors.ErrInvalidRequestBody})
			return
		}
		payload, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": apierrors.ErrInvalidRequestBody})
			return
		}

		var items []json.RawMessage
		if err := json.Unmarshal(payload, &items); err != nil {
			_ = h.artifacts.Remove(taskID)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Data file must be a JSON array"})
			return
		}

		dataRef, err = h.artifacts.SaveItems(taskID, items)
		if err != nil {
			logger.Errorf("Failed to store data file: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store upload"})
			return
		}
		totalItems = len(items)
	}

	task, err := h.engine.CreateTask(c.Request.Context(), dispatch.CreateTaskParams{
		ID:                 taskID,
		CreatorID:          sessionID,
		Name:               c.PostForm("name"),
		CapabilityRequired: c.PostForm("capabilityRequired"),
		DataItemsRef:       dataRef,
		TotalItems:         totalItems,
		MaxBuckets:         formInt(c, "maxBuckets", 0),
		MaxBucketBytes:     int64(formInt(c, "maxBucketBytes", 0)),
		CostPerBucket:      costPerBucket,
		MaxBillableBuckets: maxBillableBuckets,
		PlatformFeePercent: formFloat(c, "platformFeePercent", 0),
	})
	if err != nil {
		_ = h.artifacts.Remove(taskID)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger.Infof("POST [CreateTask] Task %s created (%d items)", task.ID, totalItems)
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func formInt(c *gin.Context, field string, fallback int) int {
	value := c.PostForm(field)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func formFloat(c *gin.Context, field string, fallback float64) float64 {
	value := c.PostForm(field)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
