package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/artifacts"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/dispatch"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/server/config"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/server/events"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/server/handlers"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/server/middleware"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/server/websocket"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/wallet"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/logging"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/redis"
)

// Server wires the engine, wallet, and artifact store behind the HTTP API.
type Server struct {
	router      *gin.Engine
	engine      *dispatch.Engine
	wallet      *wallet.Service
	hub         *websocket.Hub
	publisher   *events.Publisher
	redisClient *redis.Client
	rateLimiter *middleware.RateLimiter
	logger      logging.Logger
	startedAt   time.Time
	storeMode   string
}

// NewServer builds the router and attaches the event publisher to the
// engine. redisClient may be nil.
func NewServer(engine *dispatch.Engine, walletSvc *wallet.Service, artifactStore *artifacts.Store, redisClient *redis.Client, storeMode string, logger logging.Logger) *Server {
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.MetricsMiddleware())

	// CORS for the browser UI
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, X-Requested-With, X-Session-Id")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	hub := websocket.NewHub(logger)
	publisher := events.NewPublisher(hub, redisClient, logger)
	engine.SetEventSink(publisher)

	var rateLimiter *middleware.RateLimiter
	if redisClient != nil && config.GetWorkerRateLimit() > 0 {
		var err error
		rateLimiter, err = middleware.NewRateLimiterWithClient(redisClient, config.GetWorkerRateLimit(), logger)
		if err != nil {
			logger.Errorf("Failed to initialize rate limiter: %v", err)
		}
	}

	s := &Server{
		router:      router,
		engine:      engine,
		wallet:      walletSvc,
		hub:         hub,
		publisher:   publisher,
		redisClient: redisClient,
		rateLimiter: rateLimiter,
		logger:      logger,
		startedAt:   time.Now(),
		storeMode:   storeMode,
	}

	handler := handlers.NewHandler(engine, walletSvc, artifactStore, logger)
	s.registerRoutes(handler)

	return s
}

func (s *Server) registerRoutes(handler *handlers.Handler) {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "ok",
			"uptimeSeconds": int(time.Since(s.startedAt).Seconds()),
			"store":         s.storeMode,
		})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	api.Use(middleware.Session(s.wallet, s.logger))

	api.GET("/me", handler.GetMe)
	api.POST("/wallet/deposit", handler.Deposit)
	api.POST("/wallet/withdraw", handler.Withdraw)
	api.POST("/stripe/create-checkout-session", handler.CreateCheckoutSession)

	api.POST("/tasks", handler.CreateTask)
	api.GET("/tasks", handler.ListTasks)
	api.GET("/tasks/:id", handler.GetTask)
	api.POST("/tasks/:id/claim", handler.ClaimTask)
	api.POST("/tasks/:id/drop", handler.DropTask)
	api.POST("/tasks/:id/revoke", handler.RevokeTask)
	api.POST("/tasks/:id/reinvoke", handler.ReinvokeTask)
	api.DELETE("/tasks/:id", handler.DeleteTask)
	api.GET("/tasks/:id/results", handler.GetTaskResults)

	worker := api.Group("/worker")
	if s.rateLimiter != nil {
		worker.Use(s.rateLimiter.GinMiddleware())
	}
	worker.POST("/next-chunk", handler.NextChunk)
	worker.POST("/record-progress", handler.RecordProgress)
	worker.POST("/record-chunk", handler.RecordChunk)
	worker.POST("/heartbeat", handler.WorkerHeartbeat)
	worker.GET("/online/:id", handler.WorkerOnline)

	// webhook carries no session; it authenticates by provider signature
	// upstream of this service
	s.router.POST("/api/stripe/webhook", handler.CheckoutWebhook)

	s.router.GET("/api/ws", websocket.ServeWS(s.hub, s.logger))
}

// GetRouter returns the underlying Gin router, used by tests and custom
// deployments.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// StartHub runs the websocket hub loop.
func (s *Server) StartHub() {
	go s.hub.Run()
}

// Shutdown stops the hub and closes redis.
func (s *Server) Shutdown() {
	s.hub.Shutdown()
	if s.redisClient != nil {
		_ = s.redisClient.Close()
	}
}

// Start starts the HTTP server on the given port. For graceful shutdown use
// GetRouter with a custom http.Server.
func (s *Server) Start(port int) error {
	s.logger.Infof("Starting server on port %d", port)
	s.StartHub()
	return s.router.Run(fmt.Sprintf(":%d", port))
}
