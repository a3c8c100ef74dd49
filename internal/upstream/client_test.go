package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestClientDecodesEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token-123" {
			t.Errorf("expected bearer header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"balance":250000,"currency":"IDR","isLow":false,"orderFee":500,"estimatedOrders":500}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, nil)
	var balance Balance
	if err := client.Get(context.Background(), "/api/merchant/balance", "token-123", &balance); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance.Balance != 250000 || balance.Currency != "IDR" || balance.EstimatedOrders != 500 {
		t.Fatalf("unexpected balance: %+v", balance)
	}
}

func TestClientMapsEnvelopeRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"CURRENCY_MISMATCH","message":"Merchants must use the same currency"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, nil)
	err := client.Do(context.Background(), http.MethodPost, "/api/merchant/balance/transfer", "t", map[string]any{}, nil)
	if err == nil {
		t.Fatalf("expected error")
	}

	var ue *Error
	if !errors.As(err, &ue) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if ue.Code != "CURRENCY_MISMATCH" || ue.Message != "Merchants must use the same currency" {
		t.Fatalf("unexpected error mapping: %+v", ue)
	}
}

func TestClientFallbackMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, nil)
	err := client.Get(context.Background(), "/api/merchant/balance", "t", &Balance{})
	ue := AsError(err)
	if ue == nil || ue.Message != fallbackMessage {
		t.Fatalf("expected generic fallback message, got %+v", ue)
	}
	if ue.Status != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", ue.Status)
	}
}

func TestClientCancelledContext(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	err := client.Get(ctx, "/api/merchant/balance", "t", &Balance{})
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestQueriesDedupAndTTL(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		time.Sleep(20 * time.Millisecond)
		_, _ = w.Write([]byte(`{"success":true,"data":{"balance":100,"currency":"IDR"}}`))
	}))
	defer server.Close()

	queries := NewQueries(NewClient(server.URL, time.Second, nil), time.Minute)

	done := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			var out Balance
			done <- queries.Get(context.Background(), "/api/merchant/balance", "tok", &out)
		}()
	}
	for i := 0; i < 4; i++ {
		if err := <-done; err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("expected concurrent reads deduplicated into one request, got %d", got)
	}

	// fresh entry served from cache
	var out Balance
	if err := queries.Get(context.Background(), "/api/merchant/balance", "tok", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("expected cache hit without refetch, got %d calls", got)
	}
}

func TestQueriesMutateForcesRefetch(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		_, _ = w.Write([]byte(`{"success":true,"data":{"balance":100,"currency":"IDR"}}`))
	}))
	defer server.Close()

	queries := NewQueries(NewClient(server.URL, time.Second, nil), time.Minute)
	var out Balance
	_ = queries.Get(context.Background(), "/api/merchant/balance", "tok", &out)
	queries.Mutate("/api/merchant/balance")
	_ = queries.Get(context.Background(), "/api/merchant/balance", "tok", &out)

	if got := atomic.LoadInt64(&calls); got != 2 {
		t.Fatalf("expected mutate to invalidate the entry, got %d calls", got)
	}
}

func TestPollStopsOnCancel(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		_, _ = w.Write([]byte(`{"success":true,"data":{"balance":100,"currency":"IDR"}}`))
	}))
	defer server.Close()

	queries := NewQueries(NewClient(server.URL, time.Second, nil), time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	var snapshots int64
	done := make(chan struct{})
	go func() {
		queries.Poll(ctx, "/api/merchant/balance", "tok", 10*time.Millisecond, func(json.RawMessage) {
			atomic.AddInt64(&snapshots, 1)
		})
		close(done)
	}()

	time.Sleep(60 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("poll loop did not stop on cancel")
	}

	if atomic.LoadInt64(&snapshots) == 0 {
		t.Fatalf("expected at least one polled snapshot")
	}
	settled := atomic.LoadInt64(&calls)
	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt64(&calls) != settled {
		t.Fatalf("poll kept fetching after cancellation")
	}
}
