// Package ors implements the RouteProvider port using the OpenRouteService
// directions API. Fetched routes are optionally stored in a RouteCache so
// repeated tracking requests for the same leg skip the external call.
package ors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tracker/internal/core/domain/model/kernel"
	"tracker/internal/core/ports"
	"tracker/internal/pkg/errs"
)

const (
	defaultBaseURL = "https://api.openrouteservice.org"
	defaultProfile = "driving-car"
	maxAttempts    = 4
)

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("code %d: %s", e.Code, e.Body)
}

// RouteProvider fetches driving routes from OpenRouteService.
//
// Transient failures (network errors, 429 and 5xx responses) are retried
// with exponential backoff while respecting context cancellation. The
// provider is safe for concurrent use.
type RouteProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
	cache   ports.RouteCache
	logger  *slog.Logger
}

// NewRouteProvider creates a RouteProvider.
// An empty baseURL falls back to the public OpenRouteService endpoint;
// cache may be nil to disable route caching.
func NewRouteProvider(apiKey string, baseURL string, cache ports.RouteCache, logger *slog.Logger) (*RouteProvider, error) {
	if apiKey == "" {
		return nil, errs.NewValueIsRequiredError("apiKey")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &RouteProvider{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: defaultProfile,
		cache:   cache,
		logger:  logger.With("component", "ors"),
	}, nil
}

// FetchRoute returns the driving route between the two coordinates.
// Returns errs.RouteUnavailableError when the directions service yields no
// usable geometry.
func (p *RouteProvider) FetchRoute(
	ctx context.Context,
	source kernel.GeoPoint,
	destination kernel.GeoPoint,
) ([]kernel.GeoPoint, error) {
	if err := errors.Join(source.Validate(), destination.Validate()); err != nil {
		return nil, err
	}

	if p.cache != nil {
		route, found, err := p.cache.Get(ctx, source, destination)
		if err != nil {
			p.logger.Warn("route cache read failed", "error", err)
		} else if found {
			return route, nil
		}
	}

	resp, err := p.doWithRetry(ctx, func() (*http.Request, error) {
		return p.newDirectionsRequest(ctx, source, destination)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch directions: %w", err)
	}
	defer resp.Body.Close()

	route, err := decodeRoute(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(route) == 0 {
		return nil, errs.NewRouteUnavailableError(
			fmt.Sprintf("%s -> %s", source, destination),
			errors.New("directions response contains no coordinates"),
		)
	}

	if p.cache != nil {
		if err = p.cache.Set(ctx, source, destination, route); err != nil {
			p.logger.Warn("route cache write failed", "error", err)
		}
	}

	return route, nil
}

func (p *RouteProvider) newDirectionsRequest(
	ctx context.Context,
	source kernel.GeoPoint,
	destination kernel.GeoPoint,
) (*http.Request, error) {
	query := url.Values{}
	// ORS expects lon,lat pairs.
	query.Set("start", fmt.Sprintf("%f,%f", source.Longitude(), source.Latitude()))
	query.Set("end", fmt.Sprintf("%f,%f", destination.Longitude(), destination.Latitude()))

	endpoint := fmt.Sprintf("%s/v2/directions/%s?%s", p.baseURL, p.profile, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", p.apiKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (p *RouteProvider) do(req *http.Request) (*http.Response, error) {
	resp, err := p.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429 and 5xx
// responses) using exponential backoff while respecting context cancellation.
func (p *RouteProvider) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	backoff := 200 * time.Millisecond

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := p.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var he *httpStatusError
		if errors.As(err, &he) {
			switch he.Code {
			case http.StatusTooManyRequests,
				http.StatusInternalServerError,
				http.StatusBadGateway,
				http.StatusServiceUnavailable,
				http.StatusGatewayTimeout:
				retry = true
			}
		}

		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}

		if !retry || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

// directionsResponse mirrors the GeoJSON subset of the directions payload.
type directionsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

func decodeRoute(r io.Reader) ([]kernel.GeoPoint, error) {
	var payload directionsResponse
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode directions response: %w", err)
	}

	if len(payload.Features) == 0 {
		return nil, nil
	}

	coordinates := payload.Features[0].Geometry.Coordinates
	route := make([]kernel.GeoPoint, 0, len(coordinates))
	for _, pair := range coordinates {
		if len(pair) < 2 {
			return nil, errs.NewValueIsInvalidError("coordinates")
		}
		point, err := kernel.NewGeoPoint(pair[1], pair[0])
		if err != nil {
			return nil, err
		}
		route = append(route, point)
	}

	return route, nil
}
