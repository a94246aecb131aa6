package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ridenow-service/internal/domain/entity"
	"ridenow-service/pkg/logger"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
)

// CollaboratorClientConfig configures the HTTP transport towards one collaborator
type CollaboratorClientConfig struct {
	BaseURL      string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// NewCollaboratorHTTPClient builds a pooled client retrying connection errors and 5xx with backoff.
// Non-idempotent collaborators must be given RetryMax 0.
func NewCollaboratorHTTPClient(cfg CollaboratorClientConfig, log logger.Logger) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.HTTPClient = cleanhttp.DefaultPooledClient()
	client.HTTPClient.Timeout = cfg.Timeout
	client.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		client.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		client.RetryWaitMax = cfg.RetryWaitMax
	}
	client.Logger = log
	// hand the last response back so the status can be classified
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return client
}

type collaboratorClient struct {
	name    string
	baseURL string
	client  *retryablehttp.Client
	logger  logger.Logger
}

func newCollaboratorClient(name string, cfg CollaboratorClientConfig, log logger.Logger) collaboratorClient {
	log = log.With("collaborator", name)
	return collaboratorClient{
		name:    name,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  NewCollaboratorHTTPClient(cfg, log),
		logger:  log,
	}
}

func (c *collaboratorClient) do(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Response, error) {
	var rawBody interface{}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s request: %w", c.name, err)
		}
		rawBody = data
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, target, rawBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s %s: %w", entity.ErrUnreachable, c.name, method, path, err)
	}

	c.logger.Debug("Collaborator responded", "method", method, "path", path, "status", resp.StatusCode)
	return resp, nil
}

func (c *collaboratorClient) decode(resp *http.Response, out interface{}) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode %s response: %v", entity.ErrUnexpectedResponse, c.name, err)
	}
	return nil
}

func (c *collaboratorClient) unexpectedStatus(resp *http.Response) error {
	return fmt.Errorf("%w: %s returned status %d: %s", entity.ErrUnexpectedResponse, c.name, resp.StatusCode, responseDetail(resp))
}

func responseDetail(resp *http.Response) string {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return strings.TrimSpace(string(detail))
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
