// Package archive ships named time series to remote archival services.
package archive

import (
	"context"
	"encoding/json"
	"math"
	"time"
)

// Point is a single timestamped sample. A NaN value marks a reading
// that could not be taken; it is archived as a gap (JSON null).
type Point struct {
	Timestamp time.Time
	Value     float64
}

// Series holds the samples of one named time series, oldest first.
type Series []Point

// Readings maps a series path to its series. One run of the recorder
// produces exactly one point per path.
type Readings map[string]Series

// Writer submits a whole readings payload in one call.
type Writer interface {
	PostReadings(ctx context.Context, readings Readings) error
}

func (p Point) MarshalJSON() ([]byte, error) {
	out := struct {
		Timestamp string   `json:"timestamp"`
		Value     *float64 `json:"value"`
	}{
		Timestamp: p.Timestamp.Format(time.RFC3339),
	}
	if !math.IsNaN(p.Value) {
		out.Value = &p.Value
	}

	return json.Marshal(out)
}
