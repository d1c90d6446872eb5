package prediction

import (
	"time"

	"preload-service/internal/geo"
)

// TrajectorySample is one location report from a moving client. Speed and
// heading are optional; a missing heading disables directional narrowing for
// that sample.
type TrajectorySample struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Altitude  float64   `json:"altitude"`
	Timestamp time.Time `json:"timestamp"`
	Speed     *float64  `json:"speed,omitempty"`
	Heading   *float64  `json:"heading,omitempty"`
}

func (s TrajectorySample) Coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: s.Latitude, Longitude: s.Longitude, Altitude: s.Altitude}
}

type predictionNotification struct {
	PredictedIDs []string `json:"predictedIds"`
}

type errorNotification struct {
	Error string `json:"error"`
}
