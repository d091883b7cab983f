package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// Geocoder resolves a free-form address to coordinates. ok is false when
// the address is unknown.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lon float64, ok bool, err error)
}

// NominatimGeocoder queries an OpenStreetMap Nominatim search endpoint.
// Requests are throttled to one per second, the public service's limit.
type NominatimGeocoder struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
}

func NewNominatimGeocoder(baseURL, userAgent string) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL:   baseURL,
		userAgent: userAgent,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (float64, float64, bool, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return 0, 0, false, err
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, 0, false, err
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, 0, false, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, false, fmt.Errorf("geocode request: unexpected status %d", resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return 0, 0, false, fmt.Errorf("geocode decode: %w", err)
	}
	if len(places) == 0 {
		return 0, 0, false, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("geocode lat: %w", err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("geocode lon: %w", err)
	}
	return lat, lon, true, nil
}
