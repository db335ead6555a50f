package placesapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/rs/zerolog/log"
)

const (
	Version    = "1.0.0"
	APIVersion = "1.0"

	defaultHost = "api.simplegeo.com"
	defaultPort = 80

	userAgent = "SimpleGeo Go Client v" + Version
)

var defaultHTTPClient = &http.Client{
	Timeout: 15 * time.Second,
}

var endpoints = map[string]string{
	"feature": "feature/{simplegeoid}.json",
}

var placeholderRe = regexp.MustCompile(`\{([a-z_]+)\}`)

// Client talks to the places API, signing every request with two-legged
// OAuth1 (HMAC-SHA1).
type Client struct {
	Host       string
	Port       int
	APIVersion string

	http *http.Client
}

type ClientOption func(*Client, *http.Client) *http.Client

func WithHost(host string) ClientOption {
	return func(c *Client, base *http.Client) *http.Client {
		c.Host = host
		return base
	}
}

func WithPort(port int) ClientOption {
	return func(c *Client, base *http.Client) *http.Client {
		c.Port = port
		return base
	}
}

func WithAPIVersion(version string) ClientOption {
	return func(c *Client, base *http.Client) *http.Client {
		c.APIVersion = version
		return base
	}
}

// WithHTTPClient sets the client whose transport carries the signed requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client, _ *http.Client) *http.Client {
		return hc
	}
}

func NewClient(key, secret string, opts ...ClientOption) *Client {
	c := &Client{
		Host:       defaultHost,
		Port:       defaultPort,
		APIVersion: APIVersion,
	}

	base := defaultHTTPClient
	for _, opt := range opts {
		base = opt(c, base)
	}

	config := oauth1.NewConfig(key, secret)
	ctx := context.WithValue(context.Background(), oauth1.HTTPClient, base)
	c.http = config.Client(ctx, oauth1.NewToken("", ""))
	c.http.Timeout = base.Timeout
	return c
}

func (c *Client) baseURL() string {
	return fmt.Sprintf("http://%s:%d/%s/", c.Host, c.Port, c.APIVersion)
}

// Endpoint expands a named endpoint template into an absolute URL.
func (c *Client) Endpoint(name string, args map[string]string) (string, error) {
	tmpl, ok := endpoints[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", errUnknownEndpoint, name)
	}

	var missing string
	path := placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
		key := m[1 : len(m)-1]
		v, ok := args[key]
		if !ok {
			if missing == "" {
				missing = key
			}
			return m
		}
		return url.PathEscape(v)
	})
	if missing != "" {
		return "", malformed("missing required argument %q", missing)
	}

	return c.baseURL() + path, nil
}

// Response is what the service sent back, body untouched.
type Response struct {
	Status     string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Request performs a signed request. body may be nil. Statuses outside
// 2xx/3xx come back as *APIError.
func (c *Client) Request(ctx context.Context, method string, endpoint string, body []byte, header http.Header) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("method", method).
		Str("url", endpoint).
		Int("status", resp.StatusCode).
		Int("bytes", len(content)).
		Dur("duration", time.Since(start)).
		Msg("Places API request")

	if class := resp.StatusCode / 100; class != 2 && class != 3 {
		return nil, &APIError{
			Code:        resp.StatusCode,
			Body:        content,
			Header:      resp.Header,
			Description: strings.TrimSpace(resp.Status),
		}
	}

	return &Response{
		Status:     resp.Status,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       content,
	}, nil
}

// GetFeature returns the decoded JSON document stored under handle.
func (c *Client) GetFeature(ctx context.Context, handle string) (map[string]interface{}, error) {
	body, err := c.getFeatureBody(ctx, handle)
	if err != nil {
		return nil, err
	}

	doc, err := decodeJSON(body)
	if err != nil {
		return nil, err
	}
	m, ok := doc.(map[string]interface{})
	if !ok {
		return nil, malformed("feature document is not an object")
	}
	return m, nil
}

// Feature fetches and validates the feature stored under handle.
func (c *Client) Feature(ctx context.Context, handle string) (*Feature, error) {
	body, err := c.getFeatureBody(ctx, handle)
	if err != nil {
		return nil, err
	}
	return FeatureFromJSON(body)
}

func (c *Client) getFeatureBody(ctx context.Context, handle string) ([]byte, error) {
	endpoint, err := c.Endpoint("feature", map[string]string{"simplegeoid": handle})
	if err != nil {
		return nil, err
	}

	resp, err := c.Request(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
