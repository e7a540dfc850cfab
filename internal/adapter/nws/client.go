// Package nws is an HTTP client for the National Weather Service API
// (https://api.weather.gov): nearest-station lookup for a coordinate and the
// latest observation for a station.
package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GNSkier/MoonRabbit/internal/config"
	"github.com/GNSkier/MoonRabbit/internal/domain"
	"github.com/GNSkier/MoonRabbit/internal/observability"
)

// Client implements domain.StationResolver and domain.ObservationFetcher
// against the NWS API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an NWS API client. The NWS API asks callers to identify
// themselves with a contact address in the User-Agent header.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(cfg.NWSBaseURL, "/"),
		userAgent: fmt.Sprintf("MoonRabbit/1.0 (%s)", cfg.NWSUserEmail),
		httpClient: &http.Client{
			Timeout: cfg.NWSTimeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// NearestStation resolves the observation station closest to a coordinate via
// the points endpoint. Returns a zero Station with nil error when the API
// lists no stations for the point.
func (c *Client) NearestStation(ctx context.Context, lat, lon float64) (domain.Station, error) {
	u := fmt.Sprintf("%s/points/%s,%s/stations",
		c.baseURL,
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lon, 'f', -1, 64),
	)

	start := time.Now()
	body, err := c.doRequest(ctx, u)
	c.metrics.LookupDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.StationLookups.WithLabelValues("error").Inc()
		return domain.Station{}, fmt.Errorf("nearest station %s,%s: %w",
			strconv.FormatFloat(lat, 'f', -1, 64), strconv.FormatFloat(lon, 'f', -1, 64), err)
	}

	var resp stationsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.metrics.StationLookups.WithLabelValues("error").Inc()
		return domain.Station{}, fmt.Errorf("decode stations response: %w", err)
	}

	if len(resp.Features) == 0 {
		c.metrics.StationLookups.WithLabelValues("empty").Inc()
		return domain.Station{}, nil
	}

	f := resp.Features[0]
	id := stationIDFromURL(f.ID)
	if id == "" {
		id = f.Properties.StationIdentifier
	}
	c.metrics.StationLookups.WithLabelValues("success").Inc()
	return domain.Station{ID: id, Name: f.Properties.Name}, nil
}

// LatestObservation fetches the most recent observation for a station and
// returns its raw JSON payload.
func (c *Client) LatestObservation(ctx context.Context, stationID string) (domain.Observation, error) {
	u := fmt.Sprintf("%s/stations/%s/observations/latest", c.baseURL, stationID)

	start := time.Now()
	body, err := c.doRequest(ctx, u)
	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ObservationFetches.WithLabelValues("error").Inc()
		return domain.Observation{}, fmt.Errorf("latest observation %s: %w", stationID, err)
	}

	if !json.Valid(body) {
		c.metrics.ObservationFetches.WithLabelValues("error").Inc()
		return domain.Observation{}, fmt.Errorf("latest observation %s: response is not valid JSON", stationID)
	}

	c.metrics.ObservationFetches.WithLabelValues("success").Inc()
	return domain.NewObservation(stationID, body), nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nws API error: status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}

// stationIDFromURL extracts the station identifier from a feature id URL,
// e.g. "https://api.weather.gov/stations/KDSM" -> "KDSM".
func stationIDFromURL(u string) string {
	u = strings.TrimRight(u, "/")
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[i+1:]
	}
	return u
}

// NWS API response types (GeoJSON feature collection).

type stationsResponse struct {
	Features []stationFeature `json:"features"`
}

type stationFeature struct {
	ID         string `json:"id"` // station URL
	Properties struct {
		StationIdentifier string `json:"stationIdentifier"`
		Name              string `json:"name"`
	} `json:"properties"`
}
