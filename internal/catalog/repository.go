package catalog

import (
	"context"

	"preload-service/internal/db"
	"preload-service/internal/geo"

	"github.com/google/uuid"
)

type Repository struct {
	db db.Querier
}

func NewRepository(db db.Querier) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateObject(ctx context.Context, input Object) (Object, error) {
	if input.ID == uuid.Nil {
		input.ID = uuid.New()
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO objects (id, name, storage_key, latitude, longitude, altitude, size_bytes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at
	`, input.ID, input.Name, input.StorageKey, input.Latitude, input.Longitude, input.Altitude, input.SizeBytes)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Object{}, err
	}
	return input, nil
}

func (r *Repository) GetObject(ctx context.Context, id uuid.UUID) (Object, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, storage_key, latitude, longitude, COALESCE(altitude,0), size_bytes, created_at
		FROM objects WHERE id=$1
	`, id)
	var obj Object
	if err := row.Scan(&obj.ID, &obj.Name, &obj.StorageKey, &obj.Latitude, &obj.Longitude, &obj.Altitude, &obj.SizeBytes, &obj.CreatedAt); err != nil {
		return Object{}, err
	}
	return obj, nil
}

func (r *Repository) ListObjects(ctx context.Context) ([]Object, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, storage_key, latitude, longitude, COALESCE(altitude,0), size_bytes, created_at
		FROM objects
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var objects []Object
	for rows.Next() {
		var obj Object
		if err := rows.Scan(&obj.ID, &obj.Name, &obj.StorageKey, &obj.Latitude, &obj.Longitude, &obj.Altitude, &obj.SizeBytes, &obj.CreatedAt); err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

func (r *Repository) DeleteObject(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM objects WHERE id=$1`, id)
	return err
}

// FindByBoundingBox returns objects whose stored coordinates fall inside the
// box. Callers narrow by exact distance afterwards.
func (r *Repository) FindByBoundingBox(ctx context.Context, box geo.BoundingBox) ([]Object, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, storage_key, latitude, longitude, COALESCE(altitude,0), size_bytes, created_at
		FROM objects
		WHERE latitude BETWEEN $1 AND $2
		  AND longitude BETWEEN $3 AND $4
		ORDER BY id
	`, box.MinLat, box.MaxLat, box.MinLon, box.MaxLon)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var objects []Object
	for rows.Next() {
		var obj Object
		if err := rows.Scan(&obj.ID, &obj.Name, &obj.StorageKey, &obj.Latitude, &obj.Longitude, &obj.Altitude, &obj.SizeBytes, &obj.CreatedAt); err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	return objects, nil
}
