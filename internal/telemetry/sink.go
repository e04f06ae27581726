// Package telemetry delivers state reports to the remote logging endpoint.
// Delivery is best-effort: every failure is reported to the caller and left
// to the controller's retry policy.
package telemetry

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/models"
)

// ErrNoEndpoint is returned when no endpoint identifier has been configured
// yet. The controller skips the send entirely in that case.
var ErrNoEndpoint = errors.New("no endpoint identifier configured")

// successMarker is the literal substring the endpoint puts in its response
// body on accepted reports. Its absence counts as a failed delivery.
const successMarker = "success"

// Sink delivers one telemetry record. A nil return means the endpoint
// confirmed the report.
type Sink interface {
	Send(record models.TelemetryRecord) error
}

// ScriptIDSource provides the current remote-endpoint identifier. The sink
// looks it up per send so a SET_SCRIPT_ID command takes effect immediately.
type ScriptIDSource interface {
	ScriptID() string
}

// HTTPSinkConfig holds configuration for the HTTP sink
type HTTPSinkConfig struct {
	// EndpointTemplate builds the endpoint URL from the script ID, e.g.
	// "https://script.google.com/macros/s/%s/exec".
	EndpointTemplate string

	// ResponseTimeout bounds the wait for the endpoint's response.
	ResponseTimeout time.Duration

	// InsecureSkipVerify disables certificate validation. The reference
	// transport never validated certificates; the endpoint contract does not
	// depend on it.
	InsecureSkipVerify bool
}

// HTTPSink reports state with a single GET request per record
type HTTPSink struct {
	template string
	ids      ScriptIDSource
	client   *http.Client
	logger   zerolog.Logger
}

// NewHTTPSink creates a sink that resolves its endpoint through ids
func NewHTTPSink(cfg HTTPSinkConfig, ids ScriptIDSource, logger zerolog.Logger) *HTTPSink {
	transport := http.DefaultTransport
	if cfg.InsecureSkipVerify {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &HTTPSink{
		template: cfg.EndpointTemplate,
		ids:      ids,
		client: &http.Client{
			Timeout:   cfg.ResponseTimeout,
			Transport: transport,
		},
		logger: logger,
	}
}

// Send delivers one record and waits for the endpoint's confirmation. The
// request blocks up to the response timeout; there is no cancellation once a
// send has begun.
func (s *HTTPSink) Send(record models.TelemetryRecord) error {
	id := s.ids.ScriptID()
	if id == "" {
		return ErrNoEndpoint
	}

	url := fmt.Sprintf(s.template, id) + "?" + record.EncodeQuery()

	resp, err := s.client.Get(url)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// The endpoint signals acceptance only through the body marker; the
	// status code alone proves nothing.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if !strings.Contains(string(body), successMarker) {
		return fmt.Errorf("response missing success marker (status %d)", resp.StatusCode)
	}

	s.logger.Debug().Int("status", resp.StatusCode).Msg("Report accepted")
	return nil
}
