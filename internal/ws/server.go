// Package ws pushes live balance snapshots to dashboard clients. A client
// connects with its bearer token, the server polls the upstream balance on
// the configured interval and broadcasts whenever the snapshot changes,
// replacing the dashboards' 10s HTTP polling with a single shared poller per
// merchant.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mygads/genfity-order-main-sub002/internal/auth"
	"github.com/mygads/genfity-order-main-sub002/internal/config"
	"github.com/mygads/genfity-order-main-sub002/internal/upstream"
)

type Server struct {
	queries *upstream.Queries
	creds   *auth.CredentialStore
	logger  *zap.Logger
	cfg     config.Config

	upgrader websocket.Upgrader
	balances *balanceRealtime
}

func New(queries *upstream.Queries, creds *auth.CredentialStore, logger *zap.Logger, cfg config.Config) *Server {
	server := &Server{
		queries: queries,
		creds:   creds,
		logger:  logger,
		cfg:     cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.Env == "development" {
					return true
				}
				origin := r.Header.Get("Origin")
				for _, allowed := range cfg.CorsAllowedOrigins {
					if origin == allowed {
						return true
					}
				}
				return origin == ""
			},
		},
	}
	server.balances = newBalanceRealtime(queries, logger, cfg.BalancePollInterval)
	return server
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) writeJSON(value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(value)
}

func (c *wsClient) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

// connectionToken resolves the dial credentials. Browsers cannot set
// headers on websocket dials, so the token travels as a query parameter;
// dials without one fall back to the session the device already
// authenticated over HTTP.
func (s *Server) connectionToken(r *http.Request) string {
	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		return token
	}
	if s.creds == nil {
		return ""
	}
	deviceID := strings.TrimSpace(r.Header.Get("X-Device-Id"))
	if deviceID == "" {
		deviceID = strings.TrimSpace(r.URL.Query().Get("deviceId"))
	}
	if deviceID == "" {
		return ""
	}
	return s.creds.Get(deviceID)
}

// MerchantBalance upgrades /ws/merchant/balance.
func (s *Server) MerchantBalance(w http.ResponseWriter, r *http.Request) {
	token := s.connectionToken(r)
	claims, err := auth.VerifyAccessToken(token, s.cfg.JWTSecret)
	if err != nil || claims.MerchantID == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("balance ws upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{conn: conn}
	unsubscribe := s.balances.subscribe(*claims.MerchantID, token, client)
	defer unsubscribe()
	defer conn.Close()

	heartbeat := time.NewTicker(s.cfg.WSHeartbeatInterval)
	defer heartbeat.Stop()

	readClosed := make(chan struct{})
	go func() {
		defer close(readClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-readClosed:
			return
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if err := client.ping(); err != nil {
				return
			}
		}
	}
}

type balanceRealtime struct {
	queries  *upstream.Queries
	logger   *zap.Logger
	interval time.Duration

	mu          sync.Mutex
	subscribers map[string][]*wsClient
	cancels     map[string]context.CancelFunc
	last        map[string]upstream.Balance
}

func newBalanceRealtime(queries *upstream.Queries, logger *zap.Logger, interval time.Duration) *balanceRealtime {
	return &balanceRealtime{
		queries:     queries,
		logger:      logger,
		interval:    interval,
		subscribers: make(map[string][]*wsClient),
		cancels:     make(map[string]context.CancelFunc),
		last:        make(map[string]upstream.Balance),
	}
}

// subscribe registers the client under its merchant and starts the
// merchant's poll loop on first use. The returned func drops the client and
// cancels the loop once nobody is listening.
func (br *balanceRealtime) subscribe(merchantID string, token string, client *wsClient) (unsubscribe func()) {
	br.mu.Lock()
	br.subscribers[merchantID] = append(br.subscribers[merchantID], client)
	if _, running := br.cancels[merchantID]; !running {
		ctx, cancel := context.WithCancel(context.Background())
		br.cancels[merchantID] = cancel
		go br.pollLoop(ctx, merchantID, token)
	}
	if snapshot, ok := br.last[merchantID]; ok {
		_ = client.writeJSON(balanceMessage(snapshot))
	}
	br.mu.Unlock()

	return func() {
		br.mu.Lock()
		defer br.mu.Unlock()
		clients := br.subscribers[merchantID]
		for i, c := range clients {
			if c == client {
				br.subscribers[merchantID] = append(clients[:i], clients[i+1:]...)
				break
			}
		}
		if len(br.subscribers[merchantID]) == 0 {
			delete(br.subscribers, merchantID)
			if cancel, ok := br.cancels[merchantID]; ok {
				cancel()
				delete(br.cancels, merchantID)
			}
		}
	}
}

func (br *balanceRealtime) pollLoop(ctx context.Context, merchantID string, token string) {
	br.queries.Poll(ctx, "/api/merchant/balance", token, br.interval, func(data json.RawMessage) {
		var snapshot upstream.Balance
		if err := json.Unmarshal(data, &snapshot); err != nil {
			br.logger.Warn("balance snapshot decode failed", zap.String("merchantId", merchantID), zap.Error(err))
			return
		}

		br.mu.Lock()
		previous, seen := br.last[merchantID]
		changed := !seen || !reflect.DeepEqual(previous, snapshot)
		if changed {
			br.last[merchantID] = snapshot
		}
		clients := append([]*wsClient(nil), br.subscribers[merchantID]...)
		br.mu.Unlock()

		if !changed {
			return
		}
		for _, client := range clients {
			if err := client.writeJSON(balanceMessage(snapshot)); err != nil {
				br.logger.Debug("balance push failed", zap.String("merchantId", merchantID), zap.Error(err))
			}
		}
	})
}

func balanceMessage(snapshot upstream.Balance) map[string]any {
	return map[string]any{
		"type": "balance.updated",
		"data": snapshot,
		"ts":   time.Now().UTC(),
	}
}
