package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Kudusch/twitter-user-stats/pkg/config"
	"github.com/Kudusch/twitter-user-stats/pkg/errors"
	"github.com/Kudusch/twitter-user-stats/pkg/logger"
	"github.com/Kudusch/twitter-user-stats/pkg/metrics"
	"github.com/Kudusch/twitter-user-stats/pkg/ratelimit"
	"github.com/Kudusch/twitter-user-stats/pkg/retry"
)

// Client is a bearer-authenticated Twitter API v2 client. It paces
// requests, retries transport faults, and applies the 429 protocol:
// sleep until the advertised reset plus a margin, retry exactly once,
// and treat a second 429 as fatal for the current run.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	bearerToken string
	logger      logger.Logger
	pacer       *ratelimit.Pacer
	rateCfg     config.RateLimitConfig
	retryCfg    config.RetryConfig
}

// NewClient creates a Twitter API client from configuration
func NewClient(cfg *config.Config, log logger.Logger) *Client {
	baseURL := cfg.Twitter.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Twitter.Timeout,
		},
		baseURL:     baseURL,
		bearerToken: cfg.Twitter.BearerToken,
		logger:      log,
		pacer:       ratelimit.NewPacer(cfg.RateLimit.PageInterval),
		rateCfg:     cfg.RateLimit,
		retryCfg:    cfg.Retry,
	}
}

// response is the outcome of a single paced request after transport
// retries have been exhausted or a definitive status arrived.
type response struct {
	status int
	header http.Header
	body   []byte
}

// GetJSON performs a paced GET against an endpoint and returns the
// response body. 5xx and network faults are retried with backoff; a 429
// triggers the sleep-and-retry-once protocol; any other non-200 status
// is fatal.
func (c *Client) GetJSON(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	resp, err := c.doWithRetry(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	if resp.status == http.StatusTooManyRequests {
		sleep := ratelimit.SleepFor(
			resp.header.Get(HeaderRateLimitReset),
			time.Now(),
			c.rateCfg.ResetMargin,
			c.rateCfg.FallbackSleep,
		)
		logger.LogRateLimit(endpoint, int(sleep.Seconds()))
		metrics.IncRateLimitSleep()

		if err := retry.Wait(ctx, sleep); err != nil {
			return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
		}

		resp, err = c.doWithRetry(ctx, endpoint, params)
		if err != nil {
			return nil, err
		}
		if resp.status == http.StatusTooManyRequests {
			return nil, &errors.Error{
				Type:    errors.ErrorTypeRateLimit,
				Message: "rate limited again after back-off",
				Code:    resp.status,
			}
		}
	}

	logger.LogCallsRemaining(
		resp.header.Get(HeaderRateLimitRemaining),
		resp.header.Get(HeaderRateLimitLimit),
	)

	if resp.status != http.StatusOK {
		return nil, fatalFromResponse(resp.status, resp.body)
	}

	return resp.body, nil
}

// doWithRetry performs one logical request, retrying network faults and
// 5xx responses with exponential backoff. Definitive statuses (2xx,
// 4xx, 429) pass through to the caller.
func (c *Client) doWithRetry(ctx context.Context, endpoint string, params url.Values) (*response, error) {
	cfg := &retry.Config{
		MaxAttempts: c.retryCfg.MaxAttempts,
		Backoff: &retry.ExponentialBackoff{
			BaseDelay:  c.retryCfg.BackoffFactor,
			MaxDelay:   120 * time.Second,
			Multiplier: 2.0,
		},
		RetryIf: retry.DefaultRetryIf,
		Context: ctx,
		Logger:  c.logger,
	}

	return retry.DoWithResult(func() (*response, error) {
		return c.do(ctx, endpoint, params)
	}, cfg)
}

// do performs a single HTTP request
func (c *Client) do(ctx context.Context, endpoint string, params url.Values) (*response, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, fmt.Errorf("pacing wait cancelled: %w", err)
	}

	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &errors.Error{Type: errors.ErrorTypeUnknown, Message: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncRequest(endpoint, "network_error")
		return nil, &errors.Error{Type: errors.ErrorTypeNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.Error{Type: errors.ErrorTypeNetwork, Message: err.Error()}
	}

	logger.LogRequest(http.MethodGet, reqURL, resp.StatusCode, float64(time.Since(start).Milliseconds()))
	metrics.IncRequest(endpoint, fmt.Sprintf("%d", resp.StatusCode))

	if errors.IsRetryableStatusCode(resp.StatusCode) {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeServerError,
			Message: http.StatusText(resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}

	return &response{
		status: resp.StatusCode,
		header: resp.Header,
		body:   body,
	}, nil
}

// fatalFromResponse builds the fatal error for an unexpected status,
// preferring the message of the first error entry in the body.
func fatalFromResponse(status int, body []byte) error {
	var envelope struct {
		Errors []APIErrorDetail `json:"errors"`
		Title  string           `json:"title"`
		Detail string           `json:"detail"`
	}

	message := http.StatusText(status)
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch {
		case len(envelope.Errors) > 0 && envelope.Errors[0].Message != "":
			message = envelope.Errors[0].Message
		case len(envelope.Errors) > 0 && envelope.Errors[0].Detail != "":
			message = envelope.Errors[0].Detail
		case envelope.Detail != "":
			message = envelope.Detail
		case envelope.Title != "":
			message = envelope.Title
		}
	}

	return errors.NewFatalStatus(status, message)
}
