package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

const (
	defaultMaxRetries  = 3
	defaultBaseBackoff = 500 * time.Millisecond
)

// retryPolicy retries GET requests on transport errors, 429 and 5xx responses.
// Every attempt, retries included, takes a token from limiter when one is set.
type retryPolicy struct {
	maxRetries  int
	baseBackoff time.Duration
	limiter     *rate.Limiter
	logger      *log.Logger
}

func (p retryPolicy) do(client *http.Client, req *http.Request) (*http.Response, error) {
	attempts := p.maxRetries
	if attempts <= 0 {
		attempts = defaultMaxRetries
	}
	backoff := p.baseBackoff
	if backoff <= 0 {
		backoff = defaultBaseBackoff
	}

	ctx := req.Context()
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("request canceled: %w", err)
		}
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limiter: %w", err)
			}
		}

		resp, err := client.Do(req)
		retryAfter, retry := shouldRetry(resp, err)
		if !retry {
			return resp, err
		}

		if p.logger != nil {
			if err != nil {
				p.logger.Warn("retrying request", "attempt", attempt+1, "max", attempts, "error", err)
			} else {
				p.logger.Warn("retrying request", "attempt", attempt+1, "max", attempts, "status", resp.StatusCode)
			}
		}
		if resp != nil {
			_ = resp.Body.Close()
		}

		if attempt == attempts-1 {
			if err != nil {
				return nil, fmt.Errorf("request failed after %d attempts: %w", attempts, err)
			}
			return nil, fmt.Errorf("request failed after %d attempts: status %d", attempts, resp.StatusCode)
		}

		delay := backoff * time.Duration(1<<attempt)
		if retryAfter > 0 {
			delay = retryAfter
		}
		if err := sleepWithContext(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("request failed after %d attempts", attempts)
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
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(v); err == nil {
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
		return fmt.Errorf("request canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
