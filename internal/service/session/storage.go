package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"SentinelConsole/internal/domain/models"
	"SentinelConsole/pkg/cache"
	applogger "SentinelConsole/pkg/logger"
)

// StorageKey is the single entry holding the persisted session.
const StorageKey = "adminSession"

const persistTimeout = 2 * time.Second

// Storage keeps the live session in memory and mirrors it to a cache backend.
// It is safe for concurrent use; the backend client reads Token on every request.
type Storage struct {
	cache cache.Service
	ttl   time.Duration
	log   *applogger.Logger

	mu        sync.RWMutex
	current   *models.AdminSession
	listeners []func(active bool)

	// notifyMu orders listener dispatch; notified is the last state delivered.
	notifyMu sync.Mutex
	notified bool
}

func NewStorage(c cache.Service, ttl time.Duration, log *applogger.Logger) *Storage {
	if log == nil {
		log = applogger.Nop()
	}
	return &Storage{cache: c, ttl: ttl, log: log}
}

// Load reads the persisted session, if any, into memory.
func (s *Storage) Load(ctx context.Context) (*models.AdminSession, error) {
	var sess models.AdminSession
	err := s.cache.Get(ctx, StorageKey, &sess)
	switch {
	case errors.Is(err, cache.ErrCacheMiss):
		s.set(nil)
		return nil, nil
	case err != nil:
		// A corrupt entry is dropped, the same as an unreadable stored value.
		_ = s.cache.Delete(ctx, StorageKey)
		s.set(nil)
		return nil, fmt.Errorf("load session: %w", err)
	}

	s.set(&sess)
	return s.Current(), nil
}

// Save replaces the live session and persists it.
func (s *Storage) Save(ctx context.Context, sess models.AdminSession) error {
	s.set(&sess)
	if err := s.cache.Set(ctx, StorageKey, sess, s.ttl); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Clear drops the live session and its persisted copy.
func (s *Storage) Clear() {
	s.set(nil)

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.cache.Delete(ctx, StorageKey); err != nil {
		s.log.Warn("session: failed to delete persisted session", applogger.Error(err))
	}
}

// Current returns a copy of the live session or nil.
func (s *Storage) Current() *models.AdminSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// Token returns the bearer token of the live session, or "".
func (s *Storage) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// OnChange registers fn to run whenever a session appears or goes away.
// Listeners run outside the storage lock, one dispatch at a time, and always
// receive the state current at dispatch. They must not call Save, Load or Clear.
func (s *Storage) OnChange(fn func(active bool)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Storage) set(sess *models.AdminSession) {
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
	s.notify()
}

func (s *Storage) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.RLock()
	active := s.current != nil
	listeners := append([]func(bool){}, s.listeners...)
	s.mu.RUnlock()

	if active == s.notified {
		return
	}
	s.notified = active
	for _, fn := range listeners {
		fn(active)
	}
}
