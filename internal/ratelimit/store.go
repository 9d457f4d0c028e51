package ratelimit

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// WindowKey identifies the counter of client for the fixed window containing
// now. Window boundaries are aligned to multiples of length, so every client
// rolls over at the same instant.
func WindowKey(client string, now time.Time, length time.Duration) string {
	return client + "|" + strconv.FormatInt(now.Truncate(length).Unix(), 10)
}

// entry is one stored limiter counter.
type entry struct {
	val     []byte
	expires time.Time // zero means no expiry
}

// Store is a concurrency-safe in-memory fiber.Storage holding the fixed-window
// counters of the inbound limiter, keyed by WindowKey.
type Store struct {
	mu sync.RWMutex

	// key: client identity + window start, value: encoded counter
	data map[string]entry

	now func() time.Time
}

var _ fiber.Storage = (*Store)(nil)

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

// Get returns the value for key, or nil if it is missing or expired.
func (s *Store) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok || e.expired(s.now()) {
		return nil, nil
	}
	return e.val, nil
}

// Set stores val under key. A non-positive exp keeps the value until deleted.
func (s *Store) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}

	e := entry{val: append([]byte(nil), val...)}
	if exp > 0 {
		e.expires = s.now().Add(exp)
	}

	s.mu.Lock()
	s.data[key] = e
	s.mu.Unlock()
	return nil
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

func (s *Store) Reset() error {
	s.mu.Lock()
	s.data = make(map[string]entry)
	s.mu.Unlock()
	return nil
}

func (s *Store) Close() error {
	return nil
}

// Sweep drops entries expired at now and returns how many were removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.data {
		if e.expired(now) {
			delete(s.data, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored counters, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}
