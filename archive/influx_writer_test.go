package archive

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestInfluxWriterPostReadings(t *testing.T) {
	var lineProtocol string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		lineProtocol += string(body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	writer := &InfluxWriter{
		Host:         server.URL,
		Token:        "secret-token",
		Organization: "home",
		Bucket:       "sensors",
		Logger:       log.New(io.Discard),
	}

	when := time.Date(2026, time.February, 7, 12, 30, 0, 0, time.UTC)
	readings := Readings{
		"/sensors/temperature/28-000001": Series{{Timestamp: when, Value: 21.562}},
		"/sensors/temperature/28-000002": Series{{Timestamp: when, Value: math.NaN()}},
	}

	err := writer.PostReadings(context.Background(), readings)
	if err != nil {
		t.Fatalf("PostReadings returned error: %v", err)
	}

	if !strings.Contains(lineProtocol, "temperature=21.562") {
		t.Errorf("line protocol is missing the temperature field:\n%s", lineProtocol)
	}
	if !strings.Contains(lineProtocol, "series=/sensors/temperature/28-000001") {
		t.Errorf("line protocol is missing the series tag:\n%s", lineProtocol)
	}
	if strings.Contains(lineProtocol, "28-000002") {
		t.Errorf("NaN point should be skipped, got:\n%s", lineProtocol)
	}
}
