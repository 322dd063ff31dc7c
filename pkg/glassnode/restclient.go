package glassnode

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type RESTClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewRESTClient(baseURL, apiKey string, timeout time.Duration) *RESTClient {
	return &RESTClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *RESTClient) BaseURL() string {
	return c.baseURL
}

// GetMetric fetches one metric URL for the given asset and returns the raw body.
// The body is not decoded here; callers decide what to do with malformed JSON.
func (c *RESTClient) GetMetric(ctx context.Context, metricURL, asset string) ([]byte, error) {
	return c.get(ctx, metricURL, map[string]string{"a": asset})
}

// GetEndpoints downloads the endpoint catalog listing.
func (c *RESTClient) GetEndpoints(ctx context.Context, path string) ([]byte, error) {
	return c.get(ctx, c.baseURL+path, nil)
}

func (c *RESTClient) get(ctx context.Context, rawURL string, params map[string]string) ([]byte, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %s: %w", rawURL, err)
	}
	query := parsedURL.Query()
	for k, v := range params {
		query.Set(k, v)
	}
	query.Set("api_key", c.apiKey)
	parsedURL.RawQuery = query.Encode()

	// Construct the GET request with context for timeout/cancel support
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsedURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error echoes the full URL, api_key included
		return nil, fmt.Errorf("request %s failed: %w", redact(rawURL), unwrapURLError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %w", redact(rawURL), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ResponseError{StatusCode: resp.StatusCode, Status: resp.Status, Body: body}
	}

	return body, nil
}

func unwrapURLError(err error) error {
	if uerr, ok := err.(*url.Error); ok {
		return uerr.Err
	}
	return err
}

func redact(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsedURL.Query()
	if query.Has("api_key") {
		query.Set("api_key", "REDACTED")
		parsedURL.RawQuery = query.Encode()
	}
	return parsedURL.String()
}
