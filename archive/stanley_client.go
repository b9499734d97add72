package archive

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/pkg/errors"
)

const stanleyReadingsPath = "/api/readings"
const stanleyClientTimeout = 30 * time.Second

// StanleyClient submits readings to a Stanley archiver over https with
// basic auth. An optional custom certification authority certificate
// replaces the system root pool.
type StanleyClient struct {
	baseURL  *url.URL
	username string
	password string

	netClient *http.Client
}

func NewStanleyClient(baseURL, username, password, caCertPath string) (*StanleyClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse archiver url %s", baseURL)
	}

	netClient := &http.Client{
		Timeout: stanleyClientTimeout,
	}

	if len(caCertPath) > 0 {
		caCert, err := os.ReadFile(caCertPath)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read ca certificate %s", caCertPath)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, errors.Errorf("no pem certificates found in %s", caCertPath)
		}
		netClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: pool},
		}
	}

	return &StanleyClient{
		baseURL:   parsed,
		username:  username,
		password:  password,
		netClient: netClient,
	}, nil
}

// PostReadings sends the whole payload in a single request. It does
// not retry; any failure is returned to the caller.
func (sc *StanleyClient) PostReadings(ctx context.Context, readings Readings) error {
	payload := struct {
		Readings Readings `json:"readings"`
	}{readings}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal readings payload")
	}

	reqURL := *sc.baseURL
	reqURL.Path = path.Join(reqURL.Path, stanleyReadingsPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "preparing request failed")
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(sc.username, sc.password)

	response, err := sc.netClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "sending request failed")
	}
	defer response.Body.Close()

	if response.StatusCode >= 300 {
		respBody, _ := io.ReadAll(response.Body)
		return errors.Errorf("stanley archiver returned non success status code (%d), response:\n%s", response.StatusCode, respBody)
	}

	return nil
}
