package drivers

import (
	"math"
	"os"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

const wireSystemPath string = "/sys/bus/w1/devices"
const wireSlaveFilename string = "w1_slave"

// The w1_slave report is two lines: a crc status line and a raw
// millidegree line, e.g.
//
//	4b 46 7f ff 0e 10 57 : crc=57 YES
//	4b 46 7f ff 0e 10 57 t=21562
var (
	wireCrcLinePattern         = regexp.MustCompile(`.*: crc=\w\w (YES|NO)`)
	wireTemperatureLinePattern = regexp.MustCompile(`.*t=(-?\d+)`)
)

// Reading is a single temperature measurement taken from one sensor.
// An invalid Reading means the sensor file was missing, malformed or
// failed its crc check; Celsius is NaN in that case.
type Reading struct {
	Sensor  string
	Celsius float64
	Valid   bool
}

// Value returns the measured temperature, NaN for invalid readings.
func (r Reading) Value() float64 {
	if !r.Valid {
		return math.NaN()
	}
	return r.Celsius
}

// Wire reads temperature sensors exposed through the kernel one-wire
// subsystem. Sensor ids are opaque; each maps to a directory under
// SystemPath holding a w1_slave report file.
type Wire struct {
	SystemPath string

	Logger *log.Logger
}

func (w1 *Wire) systemPath() string {
	if len(w1.SystemPath) > 0 {
		return w1.SystemPath
	}
	return wireSystemPath
}

func (w1 *Wire) logger() *log.Logger {
	if w1.Logger != nil {
		return w1.Logger
	}
	return log.Default()
}

// ReadTemperature reads and parses the w1_slave report for the given
// sensor id. It never fails: any read or parse problem yields an
// invalid Reading carrying NaN.
func (w1 *Wire) ReadTemperature(id string) Reading {
	reading := Reading{Sensor: id, Celsius: math.NaN()}

	filePath := path.Join(w1.systemPath(), id, wireSlaveFilename)
	content, err := os.ReadFile(filePath)
	if err != nil {
		w1.logger().Debug("failed reading sensor file", "sensor", id, "path", filePath, "err", err)
		return reading
	}

	celsius, err := parseWireSlave(string(content))
	if err != nil {
		w1.logger().Debug("failed parsing sensor report", "sensor", id, "err", err)
		return reading
	}

	reading.Celsius = celsius
	reading.Valid = true
	w1.logger().Info("read sensor temperature", "sensor", id, "celsius", celsius)

	return reading
}

func parseWireSlave(content string) (celsius float64, err error) {
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		err = errors.Errorf("expected two report lines, got %d", len(lines))
		return
	}

	crcMatch := wireCrcLinePattern.FindStringSubmatch(lines[0])
	temperatureMatch := wireTemperatureLinePattern.FindStringSubmatch(lines[1])
	if crcMatch == nil || temperatureMatch == nil {
		err = errors.Errorf("report lines do not match expected format")
		return
	}

	if crcMatch[1] != "YES" {
		err = errors.Errorf("sensor reported invalid crc")
		return
	}

	milliCelsiuses, err := strconv.ParseInt(temperatureMatch[1], 10, 32)
	if err != nil {
		err = errors.Wrapf(err, "failed converting temperature string %s to milli °C int value", temperatureMatch[1])
		return
	}

	celsius = float64(milliCelsiuses) / 1000
	return
}
