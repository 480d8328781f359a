package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/diwise/conference-go/internal/pkg/domain"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const DefaultBaseURL string = "https://api.openweathermap.org"

var (
	ErrNotConfigured = errors.New("openweather api key is not configured")
	ErrBadResponse   = errors.New("bad response from openweather")
)

var tracer = otel.Tracer("openweather-client")

type Client struct {
	apiKey       string
	geocodingURL string
	weatherURL   string
	httpClient   http.Client
}

func WithGeocodingURL(baseURL string) func(*Client) {
	return func(c *Client) {
		c.geocodingURL = baseURL
	}
}

func WithWeatherURL(baseURL string) func(*Client) {
	return func(c *Client) {
		c.weatherURL = baseURL
	}
}

func New(apiKey string, options ...func(*Client)) *Client {
	c := &Client{
		apiKey:       apiKey,
		geocodingURL: DefaultBaseURL,
		weatherURL:   DefaultBaseURL,
		httpClient: http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, option := range options {
		option(c)
	}

	return c
}

// CurrentWeather geocodes a US city and returns its current weather in
// imperial units. It returns nil without error when the place or its
// weather cannot be found.
func (c *Client) CurrentWeather(ctx context.Context, city, state string) (*domain.Weather, error) {
	var err error

	ctx, span := tracer.Start(ctx, "current-weather", trace.WithAttributes(
		attribute.String("city", city),
		attribute.String("state", state),
	))
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if c.apiKey == "" {
		err = ErrNotConfigured
		return nil, err
	}

	params := url.Values{}
	params.Set("q", fmt.Sprintf("%s,%s,US", city, state))
	params.Set("appid", c.apiKey)

	places := []struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	}{}

	err = c.get(ctx, c.geocodingURL+"/geo/1.0/direct?"+params.Encode(), &places)
	if err != nil {
		return nil, err
	}

	if len(places) == 0 || places[0].Lat == nil || places[0].Lon == nil {
		return nil, nil
	}

	params = url.Values{}
	params.Set("lat", strconv.FormatFloat(*places[0].Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(*places[0].Lon, 'f', -1, 64))
	params.Set("appid", c.apiKey)
	params.Set("units", "imperial")

	current := struct {
		Main *struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	}{}

	err = c.get(ctx, c.weatherURL+"/data/2.5/weather?"+params.Encode(), &current)
	if err != nil {
		return nil, err
	}

	if current.Main == nil || len(current.Weather) == 0 {
		return nil, nil
	}

	return &domain.Weather{
		Temperature: current.Main.Temp,
		Description: current.Weather[0].Description,
	}, nil
}

func (c *Client) get(ctx context.Context, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected response code %d", ErrBadResponse, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	err = json.Unmarshal(body, result)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBadResponse, err.Error())
	}

	return nil
}
