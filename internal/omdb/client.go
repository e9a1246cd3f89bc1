// Package omdb looks up movie metadata in the OMDb API.
package omdb

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/Clark-Hu/movie-journal/internal/domain"
	"github.com/Clark-Hu/movie-journal/internal/metrics"
)

var (
	// ErrNotFound is returned when OMDb has no usable record for the title.
	ErrNotFound = errors.New("omdb: not found")
	// ErrUnavailable is returned while the circuit breaker rejects calls.
	ErrUnavailable = errors.New("omdb: temporarily unavailable")
)

// Result is the metadata captured when a user records or wishlists a movie.
type Result struct {
	Title      string
	Year       int
	IMDBRating *float64
	Genre      string
	Director   string
	Language   string
	BoxOffice  string
	Poster     string
}

// Client defines the contract for metadata lookups.
type Client interface {
	Lookup(ctx context.Context, title string) (*Result, error)
}

// Options configures HTTPClient.
type Options struct {
	BaseURL         string
	APIKey          string
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerCooldown time.Duration
	Logger          zerolog.Logger
}

// HTTPClient implements Client over HTTP behind a circuit breaker.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*Result]
	logger  zerolog.Logger
}

// NewHTTPClient constructs a new OMDb client.
func NewHTTPClient(opts Options) (*HTTPClient, error) {
	parsed, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse omdb url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("parse omdb url: %q is not absolute", opts.BaseURL)
	}
	failures := opts.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	c := &HTTPClient{
		baseURL: parsed,
		apiKey:  opts.APIKey,
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   opts.Timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   opts.Timeout,
				ResponseHeaderTimeout: opts.Timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: opts.Logger.With().Str("component", "omdb").Logger(),
	}
	c.breaker = gobreaker.NewCircuitBreaker[*Result](gobreaker.Settings{
		Name:        "omdb",
		MaxRequests: 1,
		Timeout:     opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.LookupBreakerState.Set(float64(to))
			c.logger.Warn().Str("breaker", name).Stringer("from", from).Stringer("to", to).Msg("circuit breaker state change")
		},
	})
	return c, nil
}

// Lookup retrieves metadata by exact title.
func (c *HTTPClient) Lookup(ctx context.Context, title string) (*Result, error) {
	res, err := c.breaker.Execute(func() (*Result, error) {
		return c.fetch(ctx, title)
	})
	switch {
	case err == nil:
		metrics.LookupRequests.WithLabelValues("ok").Inc()
		return res, nil
	case errors.Is(err, ErrNotFound):
		metrics.LookupRequests.WithLabelValues("not_found").Inc()
		return nil, err
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.LookupRequests.WithLabelValues("open").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		metrics.LookupRequests.WithLabelValues("error").Inc()
		return nil, err
	}
}

func (c *HTTPClient) fetch(ctx context.Context, title string) (*Result, error) {
	endpoint := *c.baseURL
	if endpoint.Path == "" {
		endpoint.Path = "/"
	}
	q := endpoint.Query()
	q.Set("t", title)
	q.Set("apikey", c.apiKey)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload apiResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decode omdb response: %w", err)
		}
		return convertToResult(payload)
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		c.logger.Error().Int("status", resp.StatusCode).Str("title", title).Msg("unexpected upstream status")
		return nil, fmt.Errorf("omdb: upstream returned %d", resp.StatusCode)
	}
}

type apiResponse struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	IMDBRating string `json:"imdbRating"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Language   string `json:"Language"`
	BoxOffice  string `json:"BoxOffice"`
	Poster     string `json:"Poster"`
}

const notAvailable = "N/A"

func convertToResult(payload apiResponse) (*Result, error) {
	if !strings.EqualFold(payload.Response, "True") {
		if payload.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, payload.Error)
		}
		return nil, ErrNotFound
	}

	year, err := parseYear(payload.Year)
	if err != nil {
		return nil, fmt.Errorf("%w: year %q", ErrNotFound, payload.Year)
	}

	result := &Result{
		Title:     payload.Title,
		Year:      year,
		Genre:     payload.Genre,
		Director:  payload.Director,
		Language:  payload.Language,
		BoxOffice: domain.BoxOfficeUnknown,
	}
	if rating, err := strconv.ParseFloat(payload.IMDBRating, 64); err == nil && rating >= 0 && rating <= 10 {
		result.IMDBRating = &rating
	}
	if domain.ValidBoxOffice(payload.BoxOffice) {
		result.BoxOffice = payload.BoxOffice
	}
	if payload.Poster != notAvailable {
		result.Poster = payload.Poster
	}
	return result, nil
}

// parseYear accepts "1979" as well as series ranges such as "2011–2019".
func parseYear(value string) (int, error) {
	value = strings.TrimSpace(value)
	if len(value) > 4 {
		value = value[:4]
	}
	year, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if year <= 0 {
		return 0, fmt.Errorf("year %d out of range", year)
	}
	return year, nil
}
