package prediction

import (
	"context"
	"errors"
	"testing"

	"preload-service/internal/catalog"
	"preload-service/internal/geo"

	"github.com/google/uuid"
)

type fakeCatalog struct {
	objects []catalog.Object
	err     error
	queries int
}

func (f *fakeCatalog) FindByBoundingBox(_ context.Context, box geo.BoundingBox) ([]catalog.Object, error) {
	f.queries++
	if f.err != nil {
		return nil, f.err
	}
	var inside []catalog.Object
	for _, obj := range f.objects {
		if box.Contains(geo.Coordinate{Latitude: obj.Latitude, Longitude: obj.Longitude}) {
			inside = append(inside, obj)
		}
	}
	return inside, nil
}

func objectAt(lat, lng float64) catalog.Object {
	return catalog.Object{ID: uuid.New(), Latitude: lat, Longitude: lng}
}

func sampleAt(lat, lng float64) TrajectorySample {
	return TrajectorySample{Latitude: lat, Longitude: lng}
}

func TestSelectRanksByDistance(t *testing.T) {
	near := objectAt(54.5001, 17.4)   // ~11 m
	far := objectAt(54.5009, 17.4)    // ~100 m
	outside := objectAt(54.51, 17.4)  // ~1.1 km
	cat := &fakeCatalog{objects: []catalog.Object{far, outside, near}}

	selector := NewSelector(cat, SelectorConfig{RadiusMeters: 200})
	ids, err := selector.Select(context.Background(), sampleAt(54.5, 17.4))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(ids))
	}
	if ids[0] != near.ID || ids[1] != far.ID {
		t.Fatalf("candidates not ranked by distance")
	}
}

func TestSelectNeverExceedsRadius(t *testing.T) {
	// Corner of the bounding box is inside the box but beyond the radius.
	corner := objectAt(54.5+150.0/111320.0, 17.4+150.0/65000.0)
	cat := &fakeCatalog{objects: []catalog.Object{corner}}

	selector := NewSelector(cat, SelectorConfig{RadiusMeters: 150})
	ids, err := selector.Select(context.Background(), sampleAt(54.5, 17.4))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("bounding-box corner must be filtered by exact distance")
	}
}

func TestSelectInvalidSample(t *testing.T) {
	cat := &fakeCatalog{}
	selector := NewSelector(cat, SelectorConfig{RadiusMeters: 100})

	_, err := selector.Select(context.Background(), sampleAt(95, 17.4))
	if !errors.Is(err, ErrInvalidSample) {
		t.Fatalf("expected ErrInvalidSample, got %v", err)
	}
	if cat.queries != 0 {
		t.Fatalf("validation must fail before any catalog query")
	}
}

func TestSelectCatalogError(t *testing.T) {
	cat := &fakeCatalog{err: errors.New("connection refused")}
	selector := NewSelector(cat, SelectorConfig{RadiusMeters: 100})

	_, err := selector.Select(context.Background(), sampleAt(54.5, 17.4))
	if !errors.Is(err, ErrSelection) {
		t.Fatalf("expected ErrSelection, got %v", err)
	}
}

func TestSelectDirectionalFilter(t *testing.T) {
	ahead := objectAt(54.5005, 17.4)  // due north
	behind := objectAt(54.4995, 17.4) // due south
	cat := &fakeCatalog{objects: []catalog.Object{ahead, behind}}

	selector := NewSelector(cat, SelectorConfig{RadiusMeters: 200, DirectionalFilter: true, ToleranceDeg: 45})

	heading := 0.0
	sample := sampleAt(54.5, 17.4)
	sample.Heading = &heading
	ids, err := selector.Select(context.Background(), sample)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(ids) != 1 || ids[0] != ahead.ID {
		t.Fatalf("expected only the candidate ahead, got %v", ids)
	}
}

func TestSelectDirectionalFilterNilHeading(t *testing.T) {
	ahead := objectAt(54.5005, 17.4)
	behind := objectAt(54.4995, 17.4)

	filtered := NewSelector(&fakeCatalog{objects: []catalog.Object{ahead, behind}},
		SelectorConfig{RadiusMeters: 200, DirectionalFilter: true, ToleranceDeg: 45})
	unfiltered := NewSelector(&fakeCatalog{objects: []catalog.Object{ahead, behind}},
		SelectorConfig{RadiusMeters: 200})

	a, err := filtered.Select(context.Background(), sampleAt(54.5, 17.4))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	b, err := unfiltered.Select(context.Background(), sampleAt(54.5, 17.4))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(a) != len(b) || len(a) != 2 {
		t.Fatalf("nil heading must not drop candidates: %v vs %v", a, b)
	}
}

func TestSelectZeroRadius(t *testing.T) {
	exact := objectAt(54.5, 17.4)
	nearby := objectAt(54.5001, 17.4)
	cat := &fakeCatalog{objects: []catalog.Object{exact, nearby}}

	selector := NewSelector(cat, SelectorConfig{RadiusMeters: 0})
	ids, err := selector.Select(context.Background(), sampleAt(54.5, 17.4))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(ids) != 1 || ids[0] != exact.ID {
		t.Fatalf("zero radius must only match the exact coordinate: %v", ids)
	}
}

func TestSelectEmptyResultIsNotError(t *testing.T) {
	selector := NewSelector(&fakeCatalog{}, SelectorConfig{RadiusMeters: 100})
	ids, err := selector.Select(context.Background(), sampleAt(54.5, 17.4))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty batch")
	}
}
