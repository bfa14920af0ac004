package pinger

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

// DefaultCookieMaxAge keeps the last ping cookie across browser restarts
const DefaultCookieMaxAge = 365 * 24 * time.Hour

// CookieStore is a per-request store backed by cookies, which scopes pinger
// state to one browser. Values set during the request are visible to later
// Get calls on the same store.
type CookieStore struct {
	w      http.ResponseWriter
	r      *http.Request
	maxAge time.Duration

	mu      sync.Mutex
	written map[string]string
}

// NewCookieStore creates a store reading from r and writing to w
func NewCookieStore(w http.ResponseWriter, r *http.Request, maxAge time.Duration) *CookieStore {
	if maxAge <= 0 {
		maxAge = DefaultCookieMaxAge
	}
	return &CookieStore{
		w:       w,
		r:       r,
		maxAge:  maxAge,
		written: make(map[string]string),
	}
}

// Get returns the cookie value for key
func (s *CookieStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	value, ok := s.written[key]
	s.mu.Unlock()
	if ok {
		return value, true, nil
	}

	cookie, err := s.r.Cookie(key)
	if errors.Is(err, http.ErrNoCookie) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return cookie.Value, true, nil
}

// Set writes a cookie for key on the response. It must be called before the
// response header is written.
func (s *CookieStore) Set(ctx context.Context, key, value string) error {
	http.SetCookie(s.w, &http.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		MaxAge:   int(s.maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	s.mu.Lock()
	s.written[key] = value
	s.mu.Unlock()
	return nil
}
