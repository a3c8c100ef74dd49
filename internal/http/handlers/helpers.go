package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mygads/genfity-order-main-sub002/internal/cart"
	"github.com/mygads/genfity-order-main-sub002/internal/middleware"
	"github.com/mygads/genfity-order-main-sub002/internal/upstream"
	"github.com/mygads/genfity-order-main-sub002/pkg/response"
)

func zapError(err error) zap.Field {
	return zap.Error(err)
}

func readPathString(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// writeUpstreamError converts a failed upstream call into the page error
// banner contract: readable message, stable code, matching status. Transport
// failures surface as 502 so the page renders its retry affordance.
func writeUpstreamError(w http.ResponseWriter, err error) {
	ue := upstream.AsError(err)
	status := ue.Status
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}
	code := ue.Code
	if code == "" {
		code = "UPSTREAM_ERROR"
	}
	response.Error(w, status, code, ue.Message)
}

// cartKey resolves the cart addressed by a storefront request: device from
// the middleware, merchant and mode from the query string.
func cartKey(r *http.Request) (cart.Key, bool) {
	deviceID := middleware.GetDeviceID(r.Context())
	if deviceID == "" {
		return cart.Key{}, false
	}
	key, err := cart.NewKey(deviceID, r.URL.Query().Get("merchantCode"), r.URL.Query().Get("mode"))
	if err != nil || key.MerchantCode == "" {
		return cart.Key{}, false
	}
	return key, true
}

func authToken(r *http.Request) string {
	if authCtx, ok := middleware.GetAuthContext(r.Context()); ok {
		return authCtx.Token
	}
	return ""
}
