package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"flight-position-gateway/internal/metrics"
	"flight-position-gateway/internal/model"
	"flight-position-gateway/pkg/logger"
)

// StatusError is returned when OpenSky answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Body)
}

// maxErrorBody bounds how much of a failed response is kept in StatusError.
const maxErrorBody = 512

// BoundingBoxQuery formats the /states/all path and query for a boundary.
func BoundingBoxQuery(b model.Boundary) string {
	return "/states/all?lamin=" + formatDegrees(b.LatMin) +
		"&lomin=" + formatDegrees(b.LonMin) +
		"&lamax=" + formatDegrees(b.LatMax) +
		"&lomax=" + formatDegrees(b.LonMax)
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// OpenSkyClient is a client for fetching data from OpenSky Network API
type OpenSkyClient struct {
	statesURL  string
	httpClient *http.Client
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

// NewOpenSkyClient creates a new OpenSky API client scoped to boundary.
// The states URL is built once here since the boundary never changes.
func NewOpenSkyClient(baseURL string, boundary model.Boundary, timeout time.Duration, log *logger.Logger, m *metrics.Metrics) *OpenSkyClient {
	return &OpenSkyClient{
		statesURL: strings.TrimRight(baseURL, "/") + BoundingBoxQuery(boundary),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  log.With("component", "opensky"),
		metrics: m,
	}
}

// StatesURL returns the fully qualified bounding box query URL.
func (c *OpenSkyClient) StatesURL() string {
	return c.statesURL
}

// FetchRaw returns the unmodified /states/all response body.
func (c *OpenSkyClient) FetchRaw(ctx context.Context) ([]byte, error) {
	startTime := time.Now()

	body, outcome, err := c.get(ctx)
	if c.metrics != nil {
		c.metrics.ObserveUpstream(outcome, time.Since(startTime))
	}
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("bytes", len(body)).
		Dur("latency", time.Since(startTime)).
		Msg("Fetched state vectors")

	return body, nil
}

// FetchReport fetches the bounding box and parses every state vector.
// A row that does not parse fails the whole report.
func (c *OpenSkyClient) FetchReport(ctx context.Context) (*model.PositionReport, error) {
	startTime := time.Now()

	var report *model.PositionReport
	body, outcome, err := c.get(ctx)
	if err == nil {
		report, err = c.decode(body)
		if err != nil {
			outcome = metrics.OutcomeMalformed
		}
	}
	if c.metrics != nil {
		c.metrics.ObserveUpstream(outcome, time.Since(startTime))
	}
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("positions", len(report.Positions())).
		Dur("latency", time.Since(startTime)).
		Msg("Parsed state vectors")

	return report, nil
}

func (c *OpenSkyClient) decode(body []byte) (*model.PositionReport, error) {
	var report model.PositionReport
	if err := json.Unmarshal(body, &report); err != nil {
		if c.metrics != nil {
			c.metrics.IncrementParseFailures()
		}
		c.logger.Error().Err(err).Msg("Failed to parse state vectors")
		return nil, fmt.Errorf("failed to parse state vectors: %w", err)
	}
	if c.metrics != nil {
		c.metrics.AddPositionsParsed(len(report.Positions()))
	}
	return &report, nil
}

// get performs the request and classifies the result for metrics.
func (c *OpenSkyClient) get(ctx context.Context) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.statesURL, nil)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to create request")
		return nil, metrics.OutcomeTransport, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "flight-position-gateway/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("url", c.statesURL).Msg("Failed to fetch data from OpenSky")
		return nil, metrics.OutcomeTransport, fmt.Errorf("failed to fetch data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Error().Int("status", resp.StatusCode).Msg("OpenSky API returned non-OK status")
		return nil, metrics.OutcomeStatus, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to read response body")
		return nil, metrics.OutcomeRead, fmt.Errorf("failed to read response: %w", err)
	}

	return body, metrics.OutcomeSuccess, nil
}

// IsTimeout reports whether err came from a deadline on the upstream call.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
