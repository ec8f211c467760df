package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meghashyamc/localsearch/logger"
	"github.com/meghashyamc/localsearch/services/controller"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const janitorInterval = time.Minute

var (
	activeSessions     prometheus.Gauge
	activeSessionsOnce sync.Once
)

func activeSessionsGauge() prometheus.Gauge {
	activeSessionsOnce.Do(func() {
		activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
			Name: "localsearch_web_sessions",
			Help: "Number of live web sessions, each owning one search controller",
		})
	})
	return activeSessions
}

// Factory builds the controller of a new session. The context ends with the store.
type Factory func(ctx context.Context) *controller.Controller

type entry struct {
	controller *controller.Controller
	lastSeen   time.Time
}

// Store maps browser sessions to their controllers and evicts sessions left idle.
type Store struct {
	logger      logger.Logger
	factory     Factory
	idleTimeout time.Duration
	ctx         context.Context
	now         func() time.Time
	gauge       prometheus.Gauge

	mu       sync.Mutex
	sessions map[string]*entry
}

func New(ctx context.Context, logger logger.Logger, factory Factory, idleTimeout time.Duration) *Store {
	store := &Store{
		logger:      logger,
		factory:     factory,
		idleTimeout: idleTimeout,
		ctx:         ctx,
		now:         time.Now,
		gauge:       activeSessionsGauge(),
		sessions:    make(map[string]*entry),
	}

	go store.evictLoop(ctx)
	return store
}

// Get returns the controller of id, creating a session (with a fresh id) when id is unknown.
func (s *Store) Get(id string) (string, *controller.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions[id]; ok {
		existing.lastSeen = s.now()
		return id, existing.controller
	}

	newID := uuid.New().String()
	s.sessions[newID] = &entry{
		controller: s.factory(s.ctx),
		lastSeen:   s.now(),
	}
	s.gauge.Inc()
	s.logger.Info("session created", "session_id", newID)

	return newID, s.sessions[newID].controller
}

// Lookup returns the controller of an existing session without creating one.
func (s *Store) Lookup(id string) (*controller.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	existing.lastSeen = s.now()

	return existing.controller, true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

func (s *Store) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if evicted := s.EvictIdle(); evicted > 0 {
				s.logger.Info("evicted idle sessions", "count", evicted)
			}
		case <-ctx.Done():
			s.logger.Info("session store stopped", "reason", ctx.Err())
			s.Close()
			return
		}
	}
}

// EvictIdle closes every session not seen within the idle timeout and reports how many it closed.
func (s *Store) EvictIdle() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idleTimeout)
	evicted := 0
	for id, session := range s.sessions {
		if session.lastSeen.Before(cutoff) {
			session.controller.Close()
			delete(s.sessions, id)
			s.gauge.Dec()
			evicted++
		}
	}

	return evicted
}

func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, session := range s.sessions {
		session.controller.Close()
		delete(s.sessions, id)
		s.gauge.Dec()
	}
}
