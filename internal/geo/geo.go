// Package geo looks up road distances between places.
package geo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/diewo77/traiteur/internal/cache"
	"github.com/diewo77/traiteur/internal/config"
	"github.com/diewo77/traiteur/internal/models"
)

var (
	ErrDisabled   = errors.New("geo: distance lookups are disabled")
	ErrNoRoute    = errors.New("geo: no route between places")
	ErrNoLocation = errors.New("geo: place cannot be located")
	ErrRateLimit  = errors.New("geo: rate limited")
)

// Route is the road distance and travel time between two places.
type Route struct {
	DistanceKm float64       `json:"distance"`
	Duration   time.Duration `json:"duration"`
}

// DistanceProvider computes routes.
type DistanceProvider interface {
	Distance(ctx context.Context, origin, dest models.Place) (Route, error)
}

// Disabled is the provider used without an API key.
type Disabled struct{}

func (Disabled) Distance(context.Context, models.Place, models.Place) (Route, error) {
	return Route{}, ErrDisabled
}

// New returns a client when cfg carries an API key, Disabled otherwise.
func New(cfg config.MapsConfig, log *zap.Logger) DistanceProvider {
	if !cfg.Enabled() {
		log.Named("geo").Info("no maps API key, distance lookups disabled")
		return Disabled{}
	}
	return NewClient(cfg, log)
}

// Client queries a distance matrix endpoint and memoizes the answers.
type Client struct {
	http   *resty.Client
	apiKey string
	routes *cache.Cache[string, Route]
	log    *zap.Logger
}

func NewClient(cfg config.MapsConfig, log *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(1).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return resp != nil && resp.StatusCode() == http.StatusTooManyRequests
		})
	return &Client{
		http:   httpClient,
		apiKey: cfg.APIKey,
		routes: cache.New[string, Route](cfg.CacheTTL),
		log:    log.Named("geo"),
	}
}

type matrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value float64 `json:"value"`
			} `json:"distance"`
			Duration struct {
				Value float64 `json:"value"`
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

// Distance returns the driving route from origin to dest in kilometres,
// rounded to 100 m.
func (c *Client) Distance(ctx context.Context, origin, dest models.Place) (Route, error) {
	from, err := locate(origin)
	if err != nil {
		return Route{}, err
	}
	to, err := locate(dest)
	if err != nil {
		return Route{}, err
	}
	return c.routes.GetOrLoad(ctx, from+"|"+to, func(ctx context.Context) (Route, error) {
		return c.fetch(ctx, from, to)
	})
}

func (c *Client) fetch(ctx context.Context, from, to string) (Route, error) {
	var out matrixResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"origins":      from,
			"destinations": to,
			"mode":         "driving",
			"units":        "metric",
			"key":          c.apiKey,
		}).
		SetResult(&out).
		Get("/distancematrix/json")
	if err != nil {
		return Route{}, fmt.Errorf("distance request: %w", err)
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return Route{}, ErrRateLimit
	}
	if resp.IsError() {
		return Route{}, fmt.Errorf("distance api error: %s", resp.Status())
	}
	if out.Status != "OK" {
		return Route{}, fmt.Errorf("distance api status %s: %s", out.Status, out.ErrorMessage)
	}
	if len(out.Rows) == 0 || len(out.Rows[0].Elements) == 0 || out.Rows[0].Elements[0].Status != "OK" {
		return Route{}, ErrNoRoute
	}
	el := out.Rows[0].Elements[0]
	route := Route{
		DistanceKm: math.Round(el.Distance.Value/100) / 10,
		Duration:   time.Duration(el.Duration.Value) * time.Second,
	}
	c.log.Debug("route fetched", zap.String("from", from), zap.String("to", to), zap.Float64("km", route.DistanceKm))
	return route, nil
}

// locate renders a place for the API: its place id when known, its
// coordinates for locations, its postal line otherwise.
func locate(p models.Place) (string, error) {
	switch {
	case p.PlaceID != "":
		return "place_id:" + p.PlaceID, nil
	case p.HasCoordinates():
		return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng), nil
	case strings.TrimSpace(p.Line()) != "":
		return p.Line(), nil
	}
	return "", ErrNoLocation
}
