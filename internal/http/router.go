package httpapi

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/mygads/genfity-order-main-sub002/internal/auth"
	"github.com/mygads/genfity-order-main-sub002/internal/http/handlers"
	"github.com/mygads/genfity-order-main-sub002/internal/middleware"
	"github.com/mygads/genfity-order-main-sub002/internal/ws"
)

func NewRouter(h *handlers.Handler, creds *auth.CredentialStore, logger *zap.Logger, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Telemetry(logger))

	cfg := h.Config
	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"X-Device-Id",
				"Cache-Control",
				"Pragma",
			},
			AllowCredentials: true,
			MaxAge:           300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Customer storefront: anonymous, keyed by device.
	r.Route("/api/storefront", func(r chi.Router) {
		r.Use(middleware.Device())

		r.Get("/merchants/{code}/menu", h.MenuBrowse)
		r.Get("/merchants/{code}/menu/{id}", h.MenuItemDetail)

		r.Post("/cart/initialize", h.CartInitialize)
		r.Get("/cart", h.CartGet)
		r.Post("/cart/items", h.CartAddItem)
		r.Patch("/cart/items/{itemId}", h.CartUpdateItem)
		r.Delete("/cart/items/{itemId}", h.CartRemoveItem)
		r.Put("/cart/table-number", h.CartSetTableNumber)

		r.Post("/cart/checkout", h.Checkout)
	})

	// Merchant dashboard: owner or staff session.
	r.Route("/api/merchant", func(r chi.Router) {
		r.Use(middleware.Device())
		r.Use(middleware.SessionAuth(creds, cfg.JWTSecret, auth.RoleMerchantOwner, auth.RoleMerchantStaff))

		r.Get("/balance", h.BalanceGet)
		r.Get("/balance/transactions", h.TransactionsList)
		r.Get("/balance/transactions/export", h.TransactionsExport)
		r.Get("/balance/transactions/export/csv", h.TransactionsExportCSV)
		r.Get("/balance/transactions/export/pdf", h.TransactionsExportPDF)
		r.Get("/balance/group", h.GroupBalance)
		r.Post("/balance/transfer", h.GroupTransfer)

		r.Get("/drivers", h.DriversList)
		r.Post("/drivers", h.DriverGrant)
		r.Patch("/drivers/{id}", h.DriverToggle)
		r.Delete("/drivers/{id}", h.DriverRevoke)

		r.Get("/profile", h.ProfileGet)
		r.Put("/profile", h.ProfileUpdate)

		r.Get("/addon-items/bulk-upload/template", h.BulkUploadTemplate)
		r.Post("/addon-items/bulk-upload", h.BulkUpload)
	})

	// Platform admin console.
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Device())
		r.Use(middleware.SessionAuth(creds, cfg.JWTSecret, auth.RoleSuperAdmin))

		r.Get("/merchants", h.MerchantsList)
		r.Get("/merchants/{id}", h.MerchantDetail)
		r.Put("/merchants/{id}", h.MerchantUpdate)
		r.Delete("/merchants/{id}", h.MerchantDelete)

		r.Get("/subscription-plans", h.PlansList)
		r.Put("/subscription-plans/{id}", h.PlanUpdate)
	})

	if wsServer != nil {
		r.Get("/ws/merchant/balance", wsServer.MerchantBalance)
	}

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
