package handlers

import (
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/artifacts"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/dispatch"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/wallet"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/logging"
)

// Handler carries the services the API surface projects. Each endpoint maps
// to exactly one engine or wallet operation.
type Handler struct {
	engine    *dispatch.Engine
	wallet    *wallet.Service
	artifacts *artifacts.Store
	logger    logging.Logger
}

func NewHandler(engine *dispatch.Engine, walletSvc *wallet.Service, artifactStore *artifacts.Store, logger logging.Logger) *Handler {
	return &Handler{
		engine:    engine,
		wallet:    walletSvc,
		artifacts: artifactStore,
		logger:    logger,
	}
}
