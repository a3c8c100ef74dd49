package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mygads/genfity-order-main-sub002/internal/auth"
)

type contextKey string

const (
	authContextKey   contextKey = "authContext"
	deviceContextKey contextKey = "deviceId"
)

// AuthContext is the verified identity attached to privileged requests. The
// gateway trusts the token's claims for routing; the platform re-checks
// everything on the proxied call.
type AuthContext struct {
	UserID       string
	SessionID    string
	Role         auth.UserRole
	Email        string
	MerchantID   string
	MerchantCode string
	Token        string
}

func WithAuthContext(ctx context.Context, authCtx *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

func GetAuthContext(ctx context.Context) (*AuthContext, bool) {
	value := ctx.Value(authContextKey)
	if value == nil {
		return nil, false
	}
	ac, ok := value.(*AuthContext)
	return ac, ok
}

func GetDeviceID(ctx context.Context) string {
	if value, ok := ctx.Value(deviceContextKey).(string); ok {
		return value
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// absence of credentials sends the page to login instead of retrying
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":    false,
		"error":      "UNAUTHORIZED",
		"message":    message,
		"redirectTo": "/login",
	})
}

// Device tags every request with the caller's device ID, the key the cart
// store and credential store are scoped by.
func Device() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			deviceID := strings.TrimSpace(r.Header.Get("X-Device-Id"))
			if deviceID == "" {
				deviceID = strings.TrimSpace(r.URL.Query().Get("deviceId"))
			}
			ctx := context.WithValue(r.Context(), deviceContextKey, deviceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionAuth verifies the bearer token locally and records it in the
// credential store so background pollers can reuse it. Requests without a
// valid token are turned back toward the login route.
func SessionAuth(creds *auth.CredentialStore, jwtSecret string, roles ...auth.UserRole) func(http.Handler) http.Handler {
	allowed := make(map[auth.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ParseBearerToken(r.Header.Get("Authorization"))
			claims, err := auth.VerifyAccessToken(token, jwtSecret)
			if err != nil {
				// evict the stored session so pollers stop reusing a dead token
				if deviceID := GetDeviceID(r.Context()); deviceID != "" && creds != nil {
					creds.Delete(deviceID)
				}
				writeAuthError(w, http.StatusUnauthorized, "Authorization token required")
				return
			}

			if len(allowed) > 0 {
				if _, ok := allowed[claims.Role]; !ok {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusForbidden)
					_ = json.NewEncoder(w).Encode(map[string]any{
						"success": false,
						"error":   "FORBIDDEN",
						"message": "You do not have permission to access this resource",
					})
					return
				}
			}

			authCtx := &AuthContext{
				UserID:    claims.UserID,
				SessionID: claims.SessionID,
				Role:      claims.Role,
				Email:     claims.Email,
				Token:     token,
			}
			if claims.MerchantID != nil {
				authCtx.MerchantID = *claims.MerchantID
			}
			if claims.MerchantCode != nil {
				authCtx.MerchantCode = *claims.MerchantCode
			}

			if deviceID := GetDeviceID(r.Context()); deviceID != "" && creds != nil {
				creds.Put(deviceID, token)
			}

			ctx := WithAuthContext(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
