// Package geocoder resolves free-text addresses to coordinates.
package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"healthmap/internal/metrics"

	"go.uber.org/zap"
)

// ErrUpstream marks a non-success response from the geocoding service.
var ErrUpstream = errors.New("geocoder upstream error")

// Match is one geocoding candidate.
type Match struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name,omitempty"`
}

// Geocoder looks up at most limit matches for a query, best first. An empty
// result with a nil error means nothing matched.
type Geocoder interface {
	Search(ctx context.Context, query string, limit int) ([]Match, error)
}

// Nominatim queries an OpenStreetMap Nominatim /search endpoint.
type Nominatim struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	metrics    *metrics.Collector
	logr       *zap.Logger
}

// NominatimOption customises a Nominatim client.
type NominatimOption func(*Nominatim)

// WithHTTPClient replaces the default client (timeout from NewNominatim).
func WithHTTPClient(c *http.Client) NominatimOption {
	return func(n *Nominatim) { n.httpClient = c }
}

func WithMetrics(m *metrics.Collector) NominatimOption {
	return func(n *Nominatim) { n.metrics = m }
}

func WithLogger(l *zap.Logger) NominatimOption {
	return func(n *Nominatim) { n.logr = l }
}

// NewNominatim creates a client. A zero timeout leaves requests bounded only
// by the caller's context.
func NewNominatim(baseURL, userAgent string, timeout time.Duration, opts ...NominatimOption) *Nominatim {
	n := &Nominatim{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		logr:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// nominatim returns coordinates as strings
type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (n *Nominatim) Search(ctx context.Context, query string, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = 1
	}
	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}

	start := time.Now()
	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.metrics.ObserveGeocoder("error", time.Since(start))
		n.logr.Warn("geocoder request failed", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		n.metrics.ObserveGeocoder("error", time.Since(start))
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var raw []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		n.metrics.ObserveGeocoder("error", time.Since(start))
		return nil, fmt.Errorf("decode geocoder response: %w", err)
	}

	matches := make([]Match, 0, len(raw))
	for _, r := range raw {
		lat, err := strconv.ParseFloat(r.Lat, 64)
		if err != nil {
			n.metrics.ObserveGeocoder("error", time.Since(start))
			return nil, fmt.Errorf("parse lat %q: %w", r.Lat, err)
		}
		lon, err := strconv.ParseFloat(r.Lon, 64)
		if err != nil {
			n.metrics.ObserveGeocoder("error", time.Since(start))
			return nil, fmt.Errorf("parse lon %q: %w", r.Lon, err)
		}
		matches = append(matches, Match{Lat: lat, Lon: lon, DisplayName: r.DisplayName})
		if len(matches) == limit {
			break
		}
	}

	outcome := "ok"
	if len(matches) == 0 {
		outcome = "empty"
	}
	n.metrics.ObserveGeocoder(outcome, time.Since(start))
	n.logr.Debug("geocoder response",
		zap.String("query", query),
		zap.Int("matches", len(matches)),
		zap.Duration("took", time.Since(start)))

	return matches, nil
}
