package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesmith/internal/metrics"
	"github.com/desertthunder/tunesmith/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultMaxRetries = 4
	defaultBackoff    = 500 * time.Millisecond
	defaultMaxBackoff = 10 * time.Second
)

// retryTransport is an [http.RoundTripper] that paces, authenticates and retries catalog requests.
//
// Network errors, 429 and 5xx responses are retried on an exponential schedule; Retry-After wins
// when present. A 401 triggers a single forced token refresh and replay.
type retryTransport struct {
	base       http.RoundTripper
	tokens     *tokenStore
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
	maxBackoff time.Duration
	logger     *log.Logger
	metrics    *metrics.Metrics
}

func (t *retryTransport) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = t.backoff
	b.MaxInterval = t.maxBackoff
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// RoundTrip implements [http.RoundTripper].
func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	getBody := req.GetBody
	if req.Body != nil && getBody != nil {
		defer req.Body.Close()
	}
	if req.Body != nil && getBody == nil {
		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: read request body: %v", shared.ErrAPIRequest, err)
		}
		_ = req.Body.Close()
		getBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(bodyBytes)), nil
		}
	}

	schedule := t.newBackOff()
	refreshed := false

	for attempt := 0; attempt < t.maxRetries; {
		if t.limiter != nil {
			if err := t.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
			}
		}

		outgoing, err := t.prepare(ctx, req, getBody)
		if err != nil {
			return nil, err
		}

		resp, err := t.base.RoundTrip(outgoing)

		if err == nil && resp.StatusCode == http.StatusUnauthorized && !refreshed {
			_ = resp.Body.Close()
			refreshed = true
			t.logger.Warn("access token rejected, refreshing", "url", req.URL.Path)
			if _, refreshErr := t.tokens.Refresh(ctx, rejectedToken(outgoing)); refreshErr != nil {
				return nil, refreshErr
			}
			continue
		}

		retryAfter, retry := shouldRetry(resp, err)
		if !retry {
			return resp, err
		}

		attempt++
		if attempt >= t.maxRetries {
			return nil, exhaustedError(resp, err, t.maxRetries)
		}

		if err != nil {
			t.logger.Warn("retrying catalog request", "attempt", attempt, "max", t.maxRetries, "error", err)
		} else {
			t.logger.Warn("retrying catalog request", "attempt", attempt, "max", t.maxRetries, "status", resp.StatusCode)
			_ = resp.Body.Close()
		}
		t.metrics.RecordRetry()

		delay := schedule.NextBackOff()
		if retryAfter > 0 {
			delay = retryAfter
		}
		if err := sleepWithContext(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: request failed after %d attempts", shared.ErrAPIRequest, t.maxRetries)
}

func (t *retryTransport) prepare(ctx context.Context, req *http.Request, getBody func() (io.ReadCloser, error)) (*http.Request, error) {
	outgoing := req.Clone(ctx)
	if getBody != nil {
		body, err := getBody()
		if err != nil {
			return nil, fmt.Errorf("%w: reset request body: %v", shared.ErrAPIRequest, err)
		}
		outgoing.Body = body
	}

	if t.tokens != nil {
		token, err := t.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		token.SetAuthHeader(outgoing)
	}
	return outgoing, nil
}

// rejectedToken returns the bearer token a request was sent with.
func rejectedToken(req *http.Request) string {
	return strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")
}

func exhaustedError(resp *http.Response, err error, attempts int) error {
	if err != nil {
		return fmt.Errorf("%w: request failed after %d attempts: %v", shared.ErrAPIRequest, attempts, err)
	}

	status := resp.StatusCode
	_ = resp.Body.Close()
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("%w: status %d after %d attempts", shared.ErrRateLimited, status, attempts)
	}
	return fmt.Errorf("%w: status %d after %d attempts", shared.ErrServiceUnavailable, status, attempts)
}

func shouldRetry(resp *http.Response, err error) (time.Duration, bool) {
	if err != nil {
		return 0, true
	}
	if resp == nil {
		return 0, false
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return parseRetryAfter(resp), true
	}

	return 0, false
}

func parseRetryAfter(resp *http.Response) time.Duration {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if when, err := http.ParseTime(retryAfter); err == nil {
		if until := time.Until(when); until > 0 {
			return until
		}
	}

	return 0
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: request canceled: %w", shared.ErrAPIRequest, ctx.Err())
	case <-timer.C:
		return nil
	}
}
