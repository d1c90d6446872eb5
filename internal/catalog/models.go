package catalog

import (
	"time"

	"github.com/google/uuid"
)

type Object struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	StorageKey string    `json:"storage_key"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Altitude   float64   `json:"altitude"`
	SizeBytes  int64     `json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`
}
