package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/dispatch"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/server/metrics"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/server/middleware"
	servertypes "github.com/SumitJoshiGIT/distributed-task-runner/internal/server/types"
	apierrors "github.com/SumitJoshiGIT/distributed-task-runner/pkg/errors"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/types"
)

// NextChunk grants or resumes a bucket lease. Denials come back as
// { ok:false, message } so the worker can back off. Calling this endpoint
// counts as a heartbeat.
func (h *Handler) NextChunk(c *gin.Context) {
	var req servertypes.NextChunkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": apierrors.ErrInvalidRequestBody})
		return
	}

	workerID := middleware.SessionID(c)
	h.engine.Heartbeat().Beat(workerID)

	grant, reason, err := h.engine.NextBucket(c.Request.Context(), req.TaskID, workerID)
	if err != nil {
		h.logger.Errorf("POST [NextChunk] task=%s worker=%s failed: %v", req.TaskID, workerID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "internal"})
		return
	}
	if reason != "" {
		metrics.NextChunkDenialsTotal.WithLabelValues(reason).Inc()
		c.JSON(http.StatusOK, gin.H{"ok": false, "message": reason})
		return
	}

	if grant.Resume {
		metrics.BucketsResumedTotal.Inc()
	} else {
		metrics.BucketsLeasedTotal.Inc()
	}
	h.logger.Debugf("POST [NextChunk] task=%s worker=%s bucket=%d resume=%t",
		req.TaskID, workerID, grant.BucketIndex, grant.Resume)

	c.JSON(http.StatusOK, servertypes.NextChunkResponse{
		OK:          true,
		BucketIndex: grant.BucketIndex,
		ChunkData:   grant.Items,
		RangeStart:  grant.RangeStart,
		RangeEnd:    grant.RangeEnd,
		BucketBytes: grant.BucketBytes,
		Resume:      grant.Resume,
	})
}

// RecordProgress merges an incremental item batch into the bucket's result.
func (h *Handler) RecordProgress(c *gin.Context) {
	var req servertypes.RecordProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": apierrors.ErrInvalidRequestBody})
		return
	}

	workerID := middleware.SessionID(c)
	processed, total, err := h.engine.RecordProgress(c.Request.Context(), dispatch.ProgressBatch{
		TaskID:         req.TaskID,
		BucketIndex:    *req.BucketIndex,
		WorkerID:       workerID,
		RangeStart:     req.RangeStart,
		ItemsProcessed: req.ItemsProcessed,
		TotalItems:     req.TotalItems,
		BytesUsed:      req.BytesUsed,
		Items:          req.Items,
		BatchOffset:    req.BatchOffset,
		BatchSize:      req.BatchSize,
	})
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"ok": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "processed": processed, "total": total})
}

// RecordChunk installs a terminal bucket result and settles the payout.
func (h *Handler) RecordChunk(c *gin.Context) {
	var req servertypes.RecordChunkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": apierrors.ErrInvalidRequestBody})
		return
	}

	workerID := middleware.SessionID(c)
	payout, err := h.engine.RecordBucket(c.Request.Context(), dispatch.BucketReport{
		TaskID:      req.TaskID,
		BucketIndex: *req.BucketIndex,
		WorkerID:    workerID,
		Status:      types.BucketStatus(req.Status),
		RangeStart:  req.RangeStart,
		RangeEnd:    req.RangeEnd,
		ItemsCount:  req.ItemsCount,
		ItemResults: req.ItemResults,
		Output:      req.Output,
		Error:       req.Error,
	})
	if err != nil {
		h.logger.Errorf("POST [RecordChunk] task=%s bucket=%d failed: %v", req.TaskID, *req.BucketIndex, err)
		c.JSON(http.StatusOK, gin.H{"ok": false, "message": err.Error()})
		return
	}

	response := gin.H{"ok": true}
	if payout != nil {
		response["payout"] = payout
	}
	c.JSON(http.StatusOK, response)
}

// WorkerHeartbeat records a liveness ping for the calling worker.
func (h *Handler) WorkerHeartbeat(c *gin.Context) {
	workerID := middleware.SessionID(c)
	at := h.engine.Heartbeat().Beat(workerID)
	metrics.HeartbeatsTotal.Inc()

	c.JSON(http.StatusOK, gin.H{"ok": true, "serverTime": at.UTC()})
}

// WorkerOnline reports whether a worker has a recent heartbeat.
func (h *Handler) WorkerOnline(c *gin.Context) {
	workerID := c.Param("id")
	last, ok := h.engine.Heartbeat().LastSeen(workerID)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"online": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"online":        true,
		"lastHeartbeat": last.UTC(),
		"ageMs":         h.engine.Heartbeat().AgeMillis(workerID),
	})
}
