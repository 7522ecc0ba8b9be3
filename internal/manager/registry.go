package manager

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/marketfront/cartstate/internal/port"
)

// session is a per-owner init guard: the registry lock only covers the map,
// hydration runs inside the once so one slow owner never stalls the others.
type session struct {
	once sync.Once
	m    *Manager
	err  error
}

// Registry hands out one Manager per owner, hydrating lazily on first touch.
// All managers share the same store and notifier.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session

	store    port.Store
	notifier port.Notifier
	logger   *zap.Logger
}

func NewRegistry(store port.Store, notifier port.Notifier, logger *zap.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*session),
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

func (r *Registry) ForOwner(ctx context.Context, ownerID string) (*Manager, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}

	r.mu.Lock()
	s, ok := r.sessions[ownerID]
	if !ok {
		s = &session{}
		r.sessions[ownerID] = s
	}
	r.mu.Unlock()

	s.once.Do(func() {
		s.m, s.err = New(ctx, ownerID, r.store, r.notifier, r.logger)
	})

	if s.err != nil {
		// Drop the failed session so the next caller retries hydration.
		r.mu.Lock()
		if r.sessions[ownerID] == s {
			delete(r.sessions, ownerID)
		}
		r.mu.Unlock()
		return nil, fmt.Errorf("manager.New: %w", s.err)
	}

	return s.m, nil
}
