// Package stanleytemp records one-wire temperature readings to a
// remote time-series archiver, one reading per sensor per run.
package stanleytemp

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/hubertat/stanleytemp/archive"
	"github.com/hubertat/stanleytemp/drivers"
)

const seriesNamespace = "/sensors/temperature/"

// TemperatureReader produces a reading for a sensor id. It must not
// fail: unreadable sensors yield an invalid Reading.
type TemperatureReader interface {
	ReadTemperature(id string) drivers.Reading
}

// Recorder runs the whole pipeline once: read every configured sensor
// in order, then submit the collected payload to each writer.
type Recorder struct {
	Sensors []string
	Reader  TemperatureReader
	Writers []archive.Writer

	Logger *log.Logger
}

// SeriesName returns the archiver series path for a sensor id.
func SeriesName(sensor string) string {
	return seriesNamespace + sensor
}

func (rec *Recorder) logger() *log.Logger {
	if rec.Logger != nil {
		return rec.Logger
	}
	return log.Default()
}

// Run takes one timestamped reading per configured sensor and submits
// the payload. Sensor failures are carried as NaN points; a submission
// failure aborts the run, readings are not retried or persisted.
func (rec *Recorder) Run(ctx context.Context) error {
	localZone := time.Now().Location()

	readings := archive.Readings{}
	for _, sensor := range rec.Sensors {
		timestamp := time.Now().In(localZone)
		reading := rec.Reader.ReadTemperature(sensor)
		rec.logger().Info("collected reading", "sensor", sensor, "celsius", reading.Value())

		readings[SeriesName(sensor)] = archive.Series{{
			Timestamp: timestamp,
			Value:     reading.Value(),
		}}
	}

	rec.logger().Info("sending readings to archiver", "series", len(readings))
	for _, writer := range rec.Writers {
		err := writer.PostReadings(ctx, readings)
		if err != nil {
			return errors.Wrap(err, "failed to post readings")
		}
	}
	rec.logger().Info("all done")

	return nil
}
