package extract

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/standingshq/leaguecrawl/internal/logger"
	"github.com/standingshq/leaguecrawl/internal/ratelimit"
	"github.com/standingshq/leaguecrawl/internal/retry"
)

// Fetcher issues rate-limited, retried GET requests. Every attempt takes a
// fresh grant from the limiter, so retries count against the host's budget
// like any other request.
type Fetcher struct {
	client  *resty.Client
	limiter *ratelimit.Limiter
	policy  retry.Policy
	logger  logger.Interface
}

// FetcherConfig holds the outbound HTTP settings.
type FetcherConfig struct {
	UserAgent      string
	RequestTimeout time.Duration
}

// NewFetcher creates a Fetcher.
func NewFetcher(
	cfg FetcherConfig,
	limiter *ratelimit.Limiter,
	policy retry.Policy,
	log logger.Interface,
) *Fetcher {
	client := resty.New().
		SetTimeout(cfg.RequestTimeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))

	return &Fetcher{
		client:  client,
		limiter: limiter,
		policy:  policy,
		logger:  log,
	}
}

// GetText fetches rawURL and returns the body with its content type.
// Extra headers are applied on top of the client defaults.
func (f *Fetcher) GetText(
	ctx context.Context,
	rawURL string,
	headers map[string]string,
) (body, contentType string, err error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	host := parsed.Host

	err = f.policy.Do(ctx, func(ctx context.Context) error {
		if waitErr := f.limiter.Wait(ctx, host); waitErr != nil {
			return waitErr
		}

		resp, reqErr := f.client.R().
			SetContext(ctx).
			SetHeaders(headers).
			Get(rawURL)
		if reqErr != nil {
			return fmt.Errorf("get %s: %w", rawURL, reqErr)
		}
		if resp.IsError() {
			return fmt.Errorf("get %s: status %d", rawURL, resp.StatusCode())
		}

		body = string(resp.Body())
		contentType = resp.Header().Get("Content-Type")
		return nil
	})
	if err != nil {
		return "", "", err
	}

	return body, contentType, nil
}
