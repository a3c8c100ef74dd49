package upstream

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Queries is the read-side cache in front of the client. It deduplicates
// concurrent identical reads, serves fresh entries without refetching, and
// revalidates on demand (Mutate) or on an interval (Poll). Poll loops stop
// when their context is cancelled, so a closed subscription never produces a
// late update.
type Queries struct {
	client *Client
	ttl    time.Duration

	group   singleflight.Group
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	data      json.RawMessage
	fetchedAt time.Time
}

func NewQueries(client *Client, ttl time.Duration) *Queries {
	if ttl <= 0 {
		ttl = 2 * time.Second
	}
	return &Queries{
		client:  client,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Get decodes the cached data for path into out, fetching through the
// deduplication group when the entry is missing or stale.
func (q *Queries) Get(ctx context.Context, path string, token string, out any) error {
	key := cacheKey(path, token)

	q.mu.Lock()
	entry, ok := q.entries[key]
	q.mu.Unlock()
	if ok && time.Since(entry.fetchedAt) < q.ttl {
		return json.Unmarshal(entry.data, out)
	}

	data, err := q.fetch(ctx, key, path, token)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// Mutate drops every cached entry under path so the next read refetches.
// Prefix matching covers paginated variants of the same resource, which
// carry their query string in the cache key. Pages call it after any write
// to the resource.
func (q *Queries) Mutate(path string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for key := range q.entries {
		if strings.HasPrefix(keyPath(key), path) {
			delete(q.entries, key)
		}
	}
}

// Poll revalidates path on the interval and hands each successful snapshot
// to fn until ctx is cancelled.
func (q *Queries) Poll(ctx context.Context, path string, token string, interval time.Duration, fn func(json.RawMessage)) {
	if interval <= 0 {
		return
	}
	key := cacheKey(path, token)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		q.mu.Lock()
		delete(q.entries, key)
		q.mu.Unlock()

		data, err := q.fetch(ctx, key, path, token)
		if err != nil {
			continue
		}
		fn(data)
	}
}

func (q *Queries) fetch(ctx context.Context, key string, path string, token string) (json.RawMessage, error) {
	result, err, _ := q.group.Do(key, func() (any, error) {
		var raw json.RawMessage
		if err := q.client.Get(ctx, path, token, &raw); err != nil {
			return nil, err
		}
		q.mu.Lock()
		q.entries[key] = cacheEntry{data: raw, fetchedAt: time.Now()}
		q.mu.Unlock()
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(json.RawMessage), nil
}

func cacheKey(path string, token string) string {
	sum := sha256.Sum256([]byte(token))
	return path + "|" + hex.EncodeToString(sum[:8])
}

func keyPath(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '|' {
			return key[:i]
		}
	}
	return key
}
