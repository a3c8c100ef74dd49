package handlers

import (
	"go.uber.org/zap"

	"github.com/mygads/genfity-order-main-sub002/internal/cart"
	"github.com/mygads/genfity-order-main-sub002/internal/config"
	"github.com/mygads/genfity-order-main-sub002/internal/queue"
	"github.com/mygads/genfity-order-main-sub002/internal/storage"
	"github.com/mygads/genfity-order-main-sub002/internal/upstream"
)

// Handler carries the shared page-controller dependencies. Queue and
// Archive are nil when their subsystems are not configured.
type Handler struct {
	Upstream *upstream.Client
	Queries  *upstream.Queries
	Carts    cart.Store
	Logger   *zap.Logger
	Config   config.Config
	Queue    *queue.Client
	Archive  *storage.ObjectStore
}
