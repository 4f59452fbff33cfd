package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/artifacts"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/dispatch"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/heartbeat"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/repository"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/server/middleware"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/wallet"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/logging"
)

type handlerEnv struct {
	handler   *Handler
	router    *gin.Engine
	engine    *dispatch.Engine
	wallet    *wallet.Service
	tracker   *heartbeat.Tracker
	store     *repository.Store
	artifacts *artifacts.Store
}

func newHandlerEnv(t *testing.T, engineCfg dispatch.Config, walletCfg wallet.Config) *handlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := &logging.MockLogger{}
	logger.SetupDefaultExpectations()

	store := repository.NewMemoryStore()
	walletSvc := wallet.NewService(store, walletCfg, logger)
	tracker := heartbeat.NewTracker(20 * time.Minute)

	artifactStore, err := artifacts.NewStore(t.TempDir(), logger)
	require.NoError(t, err)

	engine := dispatch.NewEngine(store, walletSvc, tracker, artifactStore, engineCfg, logger)
	handler := NewHandler(engine, walletSvc, artifactStore, logger)

	router := gin.New()
	api := router.Group("/api")
	api.Use(middleware.Session(walletSvc, logger))
	api.GET("/me", handler.GetMe)
	api.POST("/wallet/deposit", handler.Deposit)
	api.POST("/wallet/withdraw", handler.Withdraw)
	api.POST("/tasks", handler.CreateTask)
	api.GET("/tasks", handler.ListTasks)
	api.GET("/tasks/:id", handler.GetTask)
	api.POST("/tasks/:id/claim", handler.ClaimTask)
	api.POST("/tasks/:id/drop", handler.DropTask)
	api.POST("/tasks/:id/revoke", handler.RevokeTask)
	api.POST("/tasks/:id/reinvoke", handler.ReinvokeTask)
	api.DELETE("/tasks/:id", handler.DeleteTask)
	api.GET("/tasks/:id/results", handler.GetTaskResults)
	api.POST("/worker/next-chunk", handler.NextChunk)
	api.POST("/worker/record-progress", handler.RecordProgress)
	api.POST("/worker/record-chunk", handler.RecordChunk)
	api.POST("/worker/heartbeat", handler.WorkerHeartbeat)
	api.GET("/worker/online/:id", handler.WorkerOnline)
	router.POST("/api/stripe/webhook", handler.CheckoutWebhook)

	return &handlerEnv{
		handler:   handler,
		router:    router,
		engine:    engine,
		wallet:    walletSvc,
		tracker:   tracker,
		store:     store,
		artifacts: artifactStore,
	}
}

// do performs a JSON request as the given session.
func (env *handlerEnv) do(t *testing.T, method, path, session string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set("x-session-id", session)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// createTaskUpload posts a multipart task create with a code archive and a
// JSON data array.
func (env *handlerEnv) createTaskUpload(t *testing.T, session string, fields map[string]string, items []json.RawMessage) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	code, err := mw.CreateFormFile("code", "bundle.tar.gz")
	require.NoError(t, err)
	_, err = code.Write([]byte("archive-bytes"))
	require.NoError(t, err)

	if items != nil {
		payload, err := json.Marshal(items)
		require.NoError(t, err)
		data, err := mw.CreateFormFile("data", "data.json")
		require.NoError(t, err)
		_, err = data.Write(payload)
		require.NoError(t, err)
	}

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("x-session-id", session)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func rawItems(n int) []json.RawMessage {
	items := make([]json.RawMessage, n)
	for i := range items {
		items[i] = json.RawMessage(`"item"`)
	}
	return items
}

var testCtx = context.Background()
