package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"preload-service/internal/geo"
	"preload-service/internal/preload"

	"github.com/google/uuid"
)

type SessionConfig struct {
	DebounceInterval time.Duration
	MinDisplacementM float64
	IdleTimeout      time.Duration
}

// Preloader warms caches for a predicted batch. Implemented by
// preload.Orchestrator.
type Preloader interface {
	Preload(ctx context.Context, ids []uuid.UUID) *preload.PreloadMetrics
}

type sessionState int

const (
	stateOpen sessionState = iota
	stateClosed
)

// Session is one client connection's prediction state machine. Sample
// processing is serialized by the session mutex; samples arriving after close
// are dropped silently since the peer may race the close.
type Session struct {
	ID   string
	Send chan []byte

	cfg       SessionConfig
	selector  *Selector
	preloader Preloader

	ctx    context.Context
	cancel context.CancelFunc

	mu               sync.Mutex
	state            sessionState
	lastActivity     time.Time
	lastTrigger      time.Time
	lastTriggerCoord geo.Coordinate
	triggered        bool
}

func newSession(id string, selector *Selector, preloader Preloader, cfg SessionConfig) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:           id,
		Send:         make(chan []byte, 64),
		cfg:          cfg,
		selector:     selector,
		preloader:    preloader,
		ctx:          ctx,
		cancel:       cancel,
		lastActivity: time.Now(),
	}
}

// HandleSample runs one sample through validation, debounce and selection,
// emitting a prediction or error notification on the session's Send channel.
func (s *Session) HandleSample(sample TrajectorySample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateOpen {
		return
	}
	now := time.Now()
	s.lastActivity = now

	coord := sample.Coordinate()
	if err := coord.Validate(); err != nil {
		s.emitError(err)
		return
	}

	if s.triggered &&
		now.Sub(s.lastTrigger) < s.cfg.DebounceInterval &&
		geo.HaversineMeters(s.lastTriggerCoord, coord) < s.cfg.MinDisplacementM {
		return
	}

	ids, err := s.selector.Select(s.ctx, sample)
	if err != nil {
		if errors.Is(err, context.Canceled) || s.state != stateOpen {
			return
		}
		s.emitError(err)
		return
	}

	s.triggered = true
	s.lastTrigger = now
	s.lastTriggerCoord = coord
	s.emitPrediction(ids)

	if s.preloader != nil && len(ids) > 0 {
		// Detached from the session context: closing the session must not
		// cancel in-flight warming.
		go func(batch []uuid.UUID) {
			metrics := s.preloader.Preload(context.Background(), batch)
			log.Printf("session %s: %s", s.ID, metrics.Summary())
		}(ids)
	}
}

// Close cancels any in-flight selection and transitions the session to
// closed. Safe to call more than once.
func (s *Session) Close() {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == stateClosed {
		return
	}
	s.state = stateClosed
	close(s.Send)
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateClosed
}

// EmitError reports a malformed inbound message without closing the session.
func (s *Session) EmitError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateOpen {
		return
	}
	payload, _ := json.Marshal(errorNotification{Error: msg})
	s.send(payload)
}

func (s *Session) emitPrediction(ids []uuid.UUID) {
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}
	payload, _ := json.Marshal(predictionNotification{PredictedIDs: raw})
	s.send(payload)
}

func (s *Session) emitError(err error) {
	payload, _ := json.Marshal(errorNotification{Error: err.Error()})
	s.send(payload)
}

func (s *Session) send(payload []byte) {
	select {
	case s.Send <- payload:
	default:
	}
}
