package main

import (
	"context"
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hubertat/servicemaker"

	"github.com/hubertat/stanleytemp"
	"github.com/hubertat/stanleytemp/archive"
	"github.com/hubertat/stanleytemp/drivers"
)

const passwordEnvVar = "STANLEY_PASSWORD"
const influxTokenEnvVar = "INFLUX_TOKEN"

// sensorList collects repeated --sensor flags in command line order.
type sensorList []string

func (sl *sensorList) String() string {
	return strings.Join(*sl, ",")
}

func (sl *sensorList) Set(value string) error {
	*sl = append(*sl, value)
	return nil
}

// verbosity counts repeated -v flags.
type verbosity int

func (v *verbosity) String() string {
	return strconv.Itoa(int(*v))
}

func (v *verbosity) Set(string) error {
	*v++
	return nil
}

func (v *verbosity) IsBoolFlag() bool {
	return true
}

func (v *verbosity) Level() log.Level {
	switch {
	case *v <= 0:
		return log.WarnLevel
	case *v == 1:
		return log.InfoLevel
	default:
		return log.DebugLevel
	}
}

var (
	Version string

	flagURL          = flag.String("url", "", "Stanley archiver URL (required)")
	flagUsername     = flag.String("username", "", "Stanley archiver username (required)")
	flagCaCert       = flag.String("ca-cert", "", "custom certification authority certificate path")
	flagInstall      = flag.Bool("install", false, "install systemd service in os")
	flagInfluxURL    = flag.String("influx-url", "", "InfluxDB server url, readings are mirrored there when set")
	flagInfluxOrg    = flag.String("influx-org", "", "InfluxDB organization")
	flagInfluxBucket = flag.String("influx-bucket", "", "InfluxDB bucket")

	sensors sensorList
	verbose verbosity

	stService = servicemaker.ServiceMaker{
		User:               "stanleytemp",
		ServicePath:        "/etc/systemd/system/stanleytemp.service",
		ServiceDescription: "stanleytemp: records one-wire temperature readings to a Stanley archiver. github.com/hubertat/stanleytemp",
		ExecDir:            "/srv/stanleytemp",
		ExecName:           "stanleytemp",
	}
)

func main() {
	flag.Var(&sensors, "sensor", "sensor id to read, repeat for multiple sensors")
	flag.Var(&verbose, "v", "increase output, repeat for more")
	flag.Var(&verbose, "verbose", "increase output, repeat for more")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level: verbose.Level(),
	})
	logger.Debug("stanleytemp started", "version", Version)

	if *flagInstall {
		err := stService.InstallService()
		if err != nil {
			logger.Fatal("failed to install service", "err", err)
		}
		logger.Print("service installed!")
		return
	}

	if len(*flagURL) == 0 || len(*flagUsername) == 0 {
		logger.Fatal("both --url and --username are required")
	}

	logger.Debug("reading archiver password from environment")
	password, err := stanleytemp.PopSecret(passwordEnvVar)
	if err != nil {
		logger.Fatal("failed to read archiver credential", "err", err)
	}

	logger.Debug("using Stanley archiver", "url", *flagURL)
	stanley, err := archive.NewStanleyClient(*flagURL, *flagUsername, password, *flagCaCert)
	if err != nil {
		logger.Fatal("failed to prepare Stanley client", "err", err)
	}

	writers := []archive.Writer{stanley}
	if len(*flagInfluxURL) > 0 {
		token, err := stanleytemp.PopSecret(influxTokenEnvVar)
		if err != nil {
			logger.Fatal("failed to read InfluxDB credential", "err", err)
		}
		writers = append(writers, &archive.InfluxWriter{
			Host:         *flagInfluxURL,
			Token:        token,
			Organization: *flagInfluxOrg,
			Bucket:       *flagInfluxBucket,
			Logger:       logger,
		})
	}

	recorder := &stanleytemp.Recorder{
		Sensors: sensors,
		Reader:  &drivers.Wire{Logger: logger},
		Writers: writers,
		Logger:  logger,
	}

	err = recorder.Run(context.Background())
	if err != nil {
		logger.Fatal("run failed", "err", err)
	}
}
