package archive

import (
	"context"
	"math"

	"github.com/charmbracelet/log"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/pkg/errors"
)

const influxDefaultMeasurement = "temperature"

// InfluxWriter mirrors a readings payload to an InfluxDB bucket. Each
// point lands in one measurement tagged with its series path. NaN
// points are skipped, line protocol has no way to express them.
type InfluxWriter struct {
	Host         string
	Token        string
	Organization string
	Bucket       string
	Measurement  string

	Logger *log.Logger
}

func (iw *InfluxWriter) measurement() string {
	if len(iw.Measurement) > 0 {
		return iw.Measurement
	}
	return influxDefaultMeasurement
}

func (iw *InfluxWriter) logger() *log.Logger {
	if iw.Logger != nil {
		return iw.Logger
	}
	return log.Default()
}

func (iw *InfluxWriter) PostReadings(ctx context.Context, readings Readings) error {
	client := influxdb2.NewClient(iw.Host, iw.Token)
	defer client.Close()

	writeApi := client.WriteAPIBlocking(iw.Organization, iw.Bucket)

	for seriesPath, series := range readings {
		for _, point := range series {
			if math.IsNaN(point.Value) {
				iw.logger().Debug("skipping NaN point", "series", seriesPath)
				continue
			}
			influxPoint := influxdb2.NewPoint(
				iw.measurement(),
				map[string]string{"series": seriesPath},
				map[string]interface{}{"temperature": point.Value},
				point.Timestamp,
			)
			err := writeApi.WritePoint(ctx, influxPoint)
			if err != nil {
				return errors.Wrapf(err, "failed to write point for series %s", seriesPath)
			}
		}
	}

	return nil
}
