package auth

import (
	"context"
	"net/http"
	"sync"
	"time"

	"canchapp/internal/common/database"
)

// CookieStore persists the backend session cookies between process runs.
type CookieStore interface {
	Load(ctx context.Context) ([]*http.Cookie, error)
	Save(ctx context.Context, cookies []*http.Cookie) error
	Clear(ctx context.Context) error
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func toStored(cookies []*http.Cookie) []storedCookie {
	out := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, storedCookie{Name: c.Name, Value: c.Value})
	}
	return out
}

func fromStored(stored []storedCookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(stored))
	for _, s := range stored {
		out = append(out, &http.Cookie{Name: s.Name, Value: s.Value})
	}
	return out
}

// MemoryCookieStore keeps cookies for the lifetime of the process.
type MemoryCookieStore struct {
	mu      sync.Mutex
	cookies []storedCookie
}

func NewMemoryCookieStore() *MemoryCookieStore {
	return &MemoryCookieStore{}
}

func (m *MemoryCookieStore) Load(context.Context) ([]*http.Cookie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fromStored(m.cookies), nil
}

func (m *MemoryCookieStore) Save(_ context.Context, cookies []*http.Cookie) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cookies = toStored(cookies)
	return nil
}

func (m *MemoryCookieStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cookies = nil
	return nil
}

// RedisCookieStore keeps cookies under <prefix>:cookies so a login survives
// across CLI invocations.
type RedisCookieStore struct {
	redis *database.RedisClient
	key   string
	ttl   time.Duration
}

func NewRedisCookieStore(rc *database.RedisClient, prefix string, ttl time.Duration) *RedisCookieStore {
	return &RedisCookieStore{redis: rc, key: prefix + ":cookies", ttl: ttl}
}

func (r *RedisCookieStore) Load(ctx context.Context) ([]*http.Cookie, error) {
	var stored []storedCookie
	if _, err := r.redis.GetJSON(ctx, r.key, &stored); err != nil {
		return nil, err
	}
	return fromStored(stored), nil
}

func (r *RedisCookieStore) Save(ctx context.Context, cookies []*http.Cookie) error {
	if len(cookies) == 0 {
		return r.Clear(ctx)
	}
	return r.redis.SetJSON(ctx, r.key, toStored(cookies), r.ttl)
}

func (r *RedisCookieStore) Clear(ctx context.Context) error {
	return r.redis.Del(ctx, r.key)
}
