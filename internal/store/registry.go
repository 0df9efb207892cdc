package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stationcal/stationcal/internal/calendar"
)

// ErrSessionNotFound is returned for unknown or evicted sessions.
var ErrSessionNotFound = errors.New("session not found")

// DefaultSessionTTL is how long an untouched session is kept.
const DefaultSessionTTL = 30 * time.Minute

// Session is a calendar Store addressed by ID.
type Session struct {
	ID        string
	CreatedAt time.Time
	Store     *Store

	lastSeen atomic.Int64
}

// LastSeen returns the time the session was last used.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// Registry keeps calendar sessions in memory and evicts idle ones.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	clock    calendar.Clock
	loc      *time.Location
	logger   zerolog.Logger
}

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	TTL      time.Duration
	Clock    calendar.Clock
	Location *time.Location
	Logger   zerolog.Logger
}

// NewRegistry creates an empty session registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = calendar.SystemClock
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      cfg.TTL,
		clock:    cfg.Clock,
		loc:      cfg.Location,
		logger:   cfg.Logger,
	}
}

// Create starts a new session on the current week.
func (r *Registry) Create() *Session {
	now := r.clock.Now()
	sess := &Session{
		ID:        "ses_" + uuid.NewString(),
		CreatedAt: now,
		Store:     New(r.clock, r.loc),
	}
	sess.touch(now)

	r.mu.Lock()
	r.sessions[sess.ID] = sess
	r.mu.Unlock()

	return sess
}

// Get returns a live session and marks it as used.
func (r *Registry) Get(id string) (*Session, error) {
	now := r.clock.Now()

	r.mu.RLock()
	sess, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok || r.expired(sess, now) {
		return nil, ErrSessionNotFound
	}

	sess.touch(now)
	return sess, nil
}

// Delete removes a session.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// TTL returns how long an idle session is kept.
func (r *Registry) TTL() time.Duration {
	return r.ttl
}

// Len returns the number of sessions held, expired ones included until the
// next eviction.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// EvictIdle drops sessions idle longer than the TTL and returns how many
// were removed.
func (r *Registry) EvictIdle() int {
	now := r.clock.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, sess := range r.sessions {
		if r.expired(sess, now) {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Run evicts idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.EvictIdle(); n > 0 {
				r.logger.Debug().Int("evicted", n).Int("remaining", r.Len()).Msg("evicted idle calendar sessions")
			}
		}
	}
}

func (r *Registry) expired(sess *Session, now time.Time) bool {
	return now.Sub(sess.LastSeen()) > r.ttl
}
