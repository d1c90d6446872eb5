package prediction

import (
	"context"
	"log"
	"sync"
	"time"
)

// Registry tracks active prediction sessions by connection id. It exists only
// for the idle-timeout sweep; per-sample logic never goes through it.
type Registry struct {
	selector  *Selector
	preloader Preloader
	cfg       SessionConfig

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(selector *Selector, preloader Preloader, cfg SessionConfig) *Registry {
	return &Registry{
		selector:  selector,
		preloader: preloader,
		cfg:       cfg,
		sessions:  map[string]*Session{},
	}
}

func (r *Registry) Register(id string) *Session {
	session := newSession(id, r.selector, r.preloader, r.cfg)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = session
	return session
}

func (r *Registry) Unregister(session *Session) {
	r.mu.Lock()
	delete(r.sessions, session.ID)
	r.mu.Unlock()
	session.Close()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// SweepIdle closes and removes sessions with no sample activity for the
// configured idle timeout. Returns the number of sessions closed.
func (r *Registry) SweepIdle() int {
	if r.cfg.IdleTimeout <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-r.cfg.IdleTimeout)

	r.mu.Lock()
	var stale []*Session
	for id, session := range r.sessions {
		if session.LastActivity().Before(cutoff) {
			stale = append(stale, session)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, session := range stale {
		session.Close()
		log.Printf("closed idle prediction session %s", session.ID)
	}
	return len(stale)
}

// StartSweeper runs SweepIdle on a ticker until ctx is done.
func (r *Registry) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.SweepIdle()
			}
		}
	}()
}
