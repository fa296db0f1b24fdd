package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/nicolagi/gcemetad/metadata"
)

type options struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

type Option func(*options)

func WithBaseURL(value string) Option {
	return func(o *options) {
		o.baseURL = value
	}
}

func WithHTTPClient(value *http.Client) Option {
	return func(o *options) {
		o.httpClient = value
	}
}

func WithTimeout(value time.Duration) Option {
	return func(o *options) {
		o.timeout = value
	}
}

// Client is a typed client for the emulated metadata endpoints. Code
// that would fetch credentials from the real metadata service can use
// it against a local gcemetad instead.
type Client struct {
	opts options
}

func New(opts ...Option) *Client {
	c := &Client{}
	c.opts.baseURL = "http://127.0.0.1"
	c.opts.httpClient = http.DefaultClient
	c.opts.timeout = 5 * time.Second
	for _, o := range opts {
		o(&c.opts)
	}
	return c
}

// AccessToken fetches and unwraps the service account access token.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	body, err := c.get(ctx, metadata.TokenPath)
	if err != nil {
		return "", err
	}
	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("access token: %.40q: %w", body, err)
	}
	return payload.AccessToken, nil
}

// ProjectID fetches the configured project id.
func (c *Client) ProjectID(ctx context.Context) (string, error) {
	body, err := c.get(ctx, metadata.ProjectIDPath)
	if err != nil {
		return "", err
	}
	var project string
	if err := json.Unmarshal(body, &project); err != nil {
		return "", fmt.Errorf("project id: %.40q: %w", body, err)
	}
	return project, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.timeout)
	defer cancel()
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	response, err := c.opts.httpClient.Do(request)
	if response != nil && response.Body != nil {
		defer func() {
			_ = response.Body.Close()
		}()
	}
	if err != nil {
		return nil, err
	}
	body, err := ioutil.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	if response.StatusCode != http.StatusOK {
		return nil, errors.New(string(body))
	}
	return body, nil
}
