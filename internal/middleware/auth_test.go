package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mygads/genfity-order-main-sub002/internal/auth"
)

const testSecret = "test-secret"

func signTestToken(t *testing.T, secret string, role auth.UserRole, expiresAt time.Time) string {
	t.Helper()

	merchantID := "m-1"
	claims := auth.Claims{
		UserID:     "user-1",
		SessionID:  "session-1",
		Role:       role,
		Email:      "owner@example.com",
		MerchantID: &merchantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func authTestHandler(creds *auth.CredentialStore, roles ...auth.UserRole) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return Device()(SessionAuth(creds, testSecret, roles...)(next))
}

func TestSessionAuthStoresDeviceCredential(t *testing.T) {
	creds := auth.NewCredentialStore()
	handler := authTestHandler(creds, auth.RoleMerchantOwner)
	token := signTestToken(t, testSecret, auth.RoleMerchantOwner, time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/merchant/balance", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Device-Id", "device-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := creds.Get("device-1"); got != token {
		t.Fatalf("stored credential = %q, want the presented token", got)
	}
}

func TestSessionAuthEvictsStaleCredential(t *testing.T) {
	creds := auth.NewCredentialStore()
	creds.Put("device-1", "stale-token")
	handler := authTestHandler(creds, auth.RoleMerchantOwner)

	req := httptest.NewRequest(http.MethodGet, "/api/merchant/balance", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	req.Header.Set("X-Device-Id", "device-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "UNAUTHORIZED" || body["redirectTo"] != "/login" {
		t.Fatalf("unexpected error body %v", body)
	}
	if got := creds.Get("device-1"); got != "" {
		t.Fatalf("expected stale credential evicted, still %q", got)
	}
}

func TestSessionAuthExpiredTokenRejected(t *testing.T) {
	creds := auth.NewCredentialStore()
	handler := authTestHandler(creds, auth.RoleMerchantOwner)
	token := signTestToken(t, testSecret, auth.RoleMerchantOwner, time.Now().Add(-time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/api/merchant/balance", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Device-Id", "device-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := creds.Get("device-1"); got != "" {
		t.Fatalf("expired session should not be stored, got %q", got)
	}
}

func TestSessionAuthRoleForbidden(t *testing.T) {
	creds := auth.NewCredentialStore()
	handler := authTestHandler(creds, auth.RoleSuperAdmin)
	token := signTestToken(t, testSecret, auth.RoleMerchantStaff, time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/merchants", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "FORBIDDEN" {
		t.Fatalf("error = %v, want FORBIDDEN", body["error"])
	}
}
