package preload

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound reports that the upstream source has no payload for the id.
// Layers count it as a skip, not a warm failure.
var ErrNotFound = errors.New("object not found")

type WarmStatus int

const (
	// StatusWarmed means the layer fetched and stored the object.
	StatusWarmed WarmStatus = iota
	// StatusSkipped means the object was already warm in the layer.
	StatusSkipped
)

type WarmResult struct {
	Status    WarmStatus
	SizeBytes int64
}

// CacheLayer is one tier of the preload hierarchy. Warm returns an error for
// transport or backend failures; an already-cached object is a skip, not an
// error.
type CacheLayer interface {
	Name() string
	Warm(ctx context.Context, id uuid.UUID) (WarmResult, error)
}

// Source supplies object payloads for layers that populate themselves on warm.
type Source interface {
	Fetch(ctx context.Context, id uuid.UUID) ([]byte, error)
}
