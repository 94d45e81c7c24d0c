// Package client is a typed Go client for the company directory REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const companiesPath = "/api/companies"

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithHeaders assigns default headers added to every request.
func WithHeaders(h http.Header) Option {
	return func(c *Client) {
		for k, values := range h {
			for _, v := range values {
				c.headers.Add(k, v)
			}
		}
	}
}

// Client talks to a company directory gateway. Failed requests are not
// retried.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	headers    http.Header
}

// New creates a Client for the gateway at baseURL, e.g. http://localhost:5000.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("client: base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("client: invalid base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("client: base URL %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: parsed,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		headers: make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List returns companies matching opts.
func (c *Client) List(ctx context.Context, opts ListOptions) ([]Company, error) {
	var companies []Company
	if err := c.do(ctx, http.MethodGet, companiesPath, opts.values(), nil, &companies); err != nil {
		return nil, err
	}
	if companies == nil {
		companies = []Company{}
	}
	return companies, nil
}

// Get fetches a single company.
func (c *Client) Get(ctx context.Context, id string) (*Company, error) {
	var company Company
	if err := c.do(ctx, http.MethodGet, companyPath(id), nil, nil, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

// Create stores a new company and returns it with its assigned id.
func (c *Client) Create(ctx context.Context, in CompanyInput) (*Company, error) {
	var resp createResponse
	if err := c.do(ctx, http.MethodPost, companiesPath, nil, in, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, errors.New("client: create response has no data")
	}
	return resp.Data, nil
}

// Update changes the set fields of a company and returns the stored result.
func (c *Client) Update(ctx context.Context, id string, in CompanyInput) (*Company, error) {
	var company Company
	if err := c.do(ctx, http.MethodPut, companyPath(id), nil, in, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

// Delete removes a company.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, companyPath(id), nil, nil, nil)
}

// companyPath returns the escaped path for one company.
func companyPath(id string) string {
	return companiesPath + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, query), reader)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	for k, values := range c.headers {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
			Body:       data,
		}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

// buildURL joins the base URL with an already escaped path.
func (c *Client) buildURL(path string, q url.Values) string {
	full := *c.baseURL
	full.RawPath = strings.TrimRight(full.EscapedPath(), "/") + path
	if p, err := url.PathUnescape(full.RawPath); err == nil {
		full.Path = p
	}
	if len(q) > 0 {
		full.RawQuery = q.Encode()
	} else {
		full.RawQuery = ""
	}
	return full.String()
}
