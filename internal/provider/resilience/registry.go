package resilience

import (
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Provider health states as reported on the ops endpoints.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// ProviderHealth is a point-in-time view of one upstream provider.
type ProviderHealth struct {
	Name          string
	CircuitState  gobreaker.State
	Counts        gobreaker.Counts
	LastSuccessAt *time.Time
	LastFailureAt *time.Time
	LastError     string
}

// Status is unhealthy while the breaker is open and degraded while it is
// probing in half-open state.
func (h *ProviderHealth) Status() string {
	switch h.CircuitState {
	case gobreaker.StateOpen:
		return StatusUnhealthy
	case gobreaker.StateHalfOpen:
		return StatusDegraded
	}
	return StatusHealthy
}

// Registry records the clients created against it and their last outcomes.
// The ops status endpoint and the circuit-state gauge both read from it.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	now     func() time.Time
}

type entry struct {
	client      *Client
	lastSuccess time.Time
	lastFailure time.Time
	lastError   string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry), now: time.Now}
}

// Register adds client under name, replacing any earlier client and its
// history.
func (r *Registry) Register(name string, client *Client) {
	r.mu.Lock()
	r.entries[name] = &entry{client: client}
	r.mu.Unlock()
}

// RecordSuccess notes a successful call. Unknown names are ignored.
func (r *Registry) RecordSuccess(name string) {
	r.update(name, func(e *entry, now time.Time) { e.lastSuccess = now })
}

// RecordFailure notes a failed call. Unknown names are ignored.
func (r *Registry) RecordFailure(name string, err error) {
	r.update(name, func(e *entry, now time.Time) {
		e.lastFailure = now
		if err != nil {
			e.lastError = err.Error()
		}
	})
}

func (r *Registry) update(name string, fn func(*entry, time.Time)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[name]; ok {
		fn(e, r.now())
	}
}

// Health returns the health of one provider, or nil if it is not registered.
func (r *Registry) Health(name string) *ProviderHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return nil
	}
	return e.health(name)
}

// AllHealth returns the health of every provider, sorted by name.
func (r *Registry) AllHealth() []*ProviderHealth {
	r.mu.RLock()
	all := make([]*ProviderHealth, 0, len(r.entries))
	for name, e := range r.entries {
		all = append(all, e.health(name))
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

func (e *entry) health(name string) *ProviderHealth {
	h := &ProviderHealth{
		Name:         name,
		CircuitState: e.client.CircuitBreakerState(),
		Counts:       e.client.CircuitBreakerCounts(),
		LastError:    e.lastError,
	}
	if !e.lastSuccess.IsZero() {
		t := e.lastSuccess
		h.LastSuccessAt = &t
	}
	if !e.lastFailure.IsZero() {
		t := e.lastFailure
		h.LastFailureAt = &t
	}
	return h
}
