package pexels

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const DefaultBaseURL string = "https://api.pexels.com"

var (
	ErrNotConfigured = errors.New("pexels api key is not configured")
	ErrNoPhoto       = errors.New("no photo found")
	ErrBadResponse   = errors.New("bad response from pexels")
)

var tracer = otel.Tracer("pexels-client")

type Client struct {
	apiKey     string
	baseURL    string
	httpClient http.Client
}

func WithBaseURL(baseURL string) func(*Client) {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func New(apiKey string, options ...func(*Client)) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		httpClient: http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, option := range options {
		option(c)
	}

	return c
}

// FindPhoto returns the url of the first photo matching the query
func (c *Client) FindPhoto(ctx context.Context, query string) (string, error) {
	var err error

	ctx, span := tracer.Start(ctx, "find-photo", trace.WithAttributes(attribute.String("query", query)))
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if c.apiKey == "" {
		err = ErrNotConfigured
		return "", err
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/search?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("%w: unexpected response code %d", ErrBadResponse, resp.StatusCode)
		return "", err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	result := struct {
		Photos []struct {
			URL string `json:"url"`
		} `json:"photos"`
	}{}

	err = json.Unmarshal(body, &result)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrBadResponse, err.Error())
	}

	if len(result.Photos) == 0 || result.Photos[0].URL == "" {
		err = ErrNoPhoto
		return "", err
	}

	return result.Photos[0].URL, nil
}
