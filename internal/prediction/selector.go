package prediction

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"preload-service/internal/catalog"
	"preload-service/internal/geo"

	"github.com/google/uuid"
)

var (
	ErrInvalidSample = errors.New("invalid trajectory sample")
	ErrSelection     = errors.New("candidate selection failed")
)

// Catalog is the read-only slice of the object catalog the selector needs.
type Catalog interface {
	FindByBoundingBox(ctx context.Context, box geo.BoundingBox) ([]catalog.Object, error)
}

type SelectorConfig struct {
	RadiusMeters      float64
	DirectionalFilter bool
	ToleranceDeg      float64
}

// Selector picks the catalog objects a client is likely to need next, ranked
// closest first.
type Selector struct {
	catalog Catalog
	cfg     SelectorConfig
}

func NewSelector(catalog Catalog, cfg SelectorConfig) *Selector {
	return &Selector{catalog: catalog, cfg: cfg}
}

func (s *Selector) Select(ctx context.Context, sample TrajectorySample) ([]uuid.UUID, error) {
	center := sample.Coordinate()
	if err := center.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSample, err)
	}

	box := geo.BoundingBoxAround(center, s.cfg.RadiusMeters)
	objects, err := s.catalog.FindByBoundingBox(ctx, box)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSelection, err)
	}

	type candidate struct {
		id       uuid.UUID
		distance float64
	}
	var candidates []candidate
	for _, obj := range objects {
		pos := geo.Coordinate{Latitude: obj.Latitude, Longitude: obj.Longitude, Altitude: obj.Altitude}
		distance := geo.HaversineMeters(center, pos)
		if distance > s.cfg.RadiusMeters {
			continue
		}
		if s.cfg.DirectionalFilter && !geo.IsAhead(center, sample.Heading, pos, s.cfg.ToleranceDeg) {
			continue
		}
		candidates = append(candidates, candidate{id: obj.ID, distance: distance})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].id.String() < candidates[j].id.String()
	})

	ids := make([]uuid.UUID, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.id)
	}
	return ids, nil
}
