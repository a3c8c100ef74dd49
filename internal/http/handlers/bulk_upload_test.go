package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mygads/genfity-order-main-sub002/internal/config"
	"github.com/mygads/genfity-order-main-sub002/internal/upstream"
)

func newBulkUploadTestHandler(t *testing.T, platform http.Handler) *Handler {
	t.Helper()

	upstreamServer := httptest.NewServer(platform)
	t.Cleanup(upstreamServer.Close)

	client := upstream.NewClient(upstreamServer.URL, 5*time.Second, zap.NewNop())
	return &Handler{
		Upstream: client,
		Queries:  upstream.NewQueries(client, time.Second),
		Logger:   zap.NewNop(),
		Config:   config.Config{MaxUploadSizeBytes: 1 << 20},
	}
}

func TestBulkUploadForwardsPlatformCounts(t *testing.T) {
	var submitted struct {
		Items        []map[string]any `json:"items"`
		UpsertByName bool             `json:"upsertByName"`
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/merchant/addon-categories", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    []map[string]any{{"id": "cat-1", "name": "Toppings"}},
		})
	})
	mux.HandleFunc("/api/merchant/addon-items", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": []any{}})
	})
	mux.HandleFunc("/api/merchant/addon-items/bulk-upload", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&submitted); err != nil {
			t.Errorf("decode batch payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"createdCount": 3, "updatedCount": 2},
		})
	})

	h := newBulkUploadTestHandler(t, mux)

	body, _ := json.Marshal(map[string]any{
		"rows": []map[string]any{
			{"categoryName": "Toppings", "name": "Extra Cheese", "price": 5000},
			{"categoryName": "Toppings", "name": "Fried Egg", "price": 4000, "isActive": false},
			{"categoryName": "Toppings", "name": "Crispy Shallots", "price": 3000, "isActive": true},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/merchant/addon-items/bulk-upload", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.BulkUpload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Submitted bool `json:"submitted"`
			Created   int  `json:"created"`
			Updated   int  `json:"updated"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || !resp.Data.Submitted {
		t.Fatalf("expected a submitted success response, got %s", rec.Body.String())
	}
	if resp.Data.Created != 3 || resp.Data.Updated != 2 {
		t.Fatalf("created/updated = %d/%d, want 3/2", resp.Data.Created, resp.Data.Updated)
	}

	if !submitted.UpsertByName {
		t.Fatalf("expected upsertByName on the batch payload")
	}
	if len(submitted.Items) != 3 {
		t.Fatalf("batch items = %d, want 3", len(submitted.Items))
	}
	// rows without an explicit isActive default to active
	if submitted.Items[0]["isActive"] != true {
		t.Fatalf("items[0].isActive = %v, want true", submitted.Items[0]["isActive"])
	}
	if submitted.Items[1]["isActive"] != false {
		t.Fatalf("items[1].isActive = %v, want false", submitted.Items[1]["isActive"])
	}
}
