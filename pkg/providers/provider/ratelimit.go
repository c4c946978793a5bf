package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"
)

var _ TextGenerator = (*RateLimited)(nil)

// RateLimitError reports a 429 response from a provider API.
type RateLimitError struct {
	RetryAfter time.Duration
	Body       string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %s): %s", e.RetryAfter, e.Body)
	}
	return fmt.Sprintf("rate limited: %s", e.Body)
}

// ParseRetryAfter parses the Retry-After header value as either seconds
// (integer) or an HTTP-date (RFC 7231). Returns zero if unparseable or if the
// date is in the past.
func ParseRetryAfter(val string) time.Duration {
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(val); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// EstimateTokens estimates the token count of a text using the
// 1-token-per-4-characters heuristic for English text.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4 // round up
}

type tokenEntry struct {
	timestamp    time.Time
	inputTokens  int
	outputTokens int
}

// RateLimited wraps a TextGenerator with proactive TPM/RPM-based throttling
// and reactive 429 retry with exponential backoff and jitter. Input and
// output tokens are tracked and throttled independently, using the token
// counts reported by the provider (falling back to an estimate when the
// provider reports none).
type RateLimited struct {
	inner      TextGenerator
	mu         sync.Mutex
	window     []tokenEntry
	inputTPM   int           // input tokens-per-minute limit (0 = no limit)
	outputTPM  int           // output tokens-per-minute limit (0 = no limit)
	rpm        int           // requests-per-minute limit (0 = no limit)
	maxRetries int           // max retries on 429
	baseDelay  time.Duration // initial backoff delay

	// nowFunc is used for testing; defaults to time.Now.
	nowFunc func() time.Time
	// sleepFunc is used for testing; defaults to a context-aware sleep.
	sleepFunc func(ctx context.Context, d time.Duration) error
	// randFunc returns a random float64 in [0,1); used for jitter.
	randFunc func() float64
}

// RateLimitOpts configures a RateLimited generator.
type RateLimitOpts struct {
	InputTPM   int           // Input tokens per minute (0 = no limit).
	OutputTPM  int           // Output tokens per minute (0 = no limit).
	RPM        int           // Requests per minute (0 = no limit).
	MaxRetries int           // Max retries on 429 (default 3).
	BaseDelay  time.Duration // Initial backoff delay (default 1s).
}

// NewRateLimited wraps a TextGenerator with rate limiting.
func NewRateLimited(inner TextGenerator, opts RateLimitOpts) *RateLimited {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = time.Second
	}

	return &RateLimited{
		inner:      inner,
		inputTPM:   opts.InputTPM,
		outputTPM:  opts.OutputTPM,
		rpm:        opts.RPM,
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.BaseDelay,
		nowFunc:    time.Now,
		sleepFunc:  contextSleep,
		randFunc:   rand.Float64,
	}
}

// SetNowFunc overrides the time source (for testing).
func (r *RateLimited) SetNowFunc(fn func() time.Time) { r.nowFunc = fn }

// SetSleepFunc overrides the sleep function (for testing).
func (r *RateLimited) SetSleepFunc(fn func(ctx context.Context, d time.Duration) error) {
	r.sleepFunc = fn
}

// SetRandFunc overrides the random number generator (for testing).
func (r *RateLimited) SetRandFunc(fn func() float64) { r.randFunc = fn }

// contextSleep sleeps for d or until ctx is cancelled.
func contextSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// pruneWindow removes entries older than 1 minute. Must be called with mu held.
func (r *RateLimited) pruneWindow(now time.Time) {
	cutoff := now.Add(-time.Minute)
	i := 0
	for i < len(r.window) && !r.window[i].timestamp.After(cutoff) {
		i++
	}
	if i > 0 {
		r.window = append(r.window[:0:0], r.window[i:]...)
	}
}

// windowTotals returns the sum of input and output tokens in the current
// window. Must be called with mu held.
func (r *RateLimited) windowTotals() (inputTotal, outputTotal int) {
	for _, e := range r.window {
		inputTotal += e.inputTokens
		outputTotal += e.outputTokens
	}
	return inputTotal, outputTotal
}

// waitForCapacity blocks until there is capacity in both TPM and RPM windows.
func (r *RateLimited) waitForCapacity(ctx context.Context) error {
	if r.inputTPM <= 0 && r.outputTPM <= 0 && r.rpm <= 0 {
		return nil
	}

	for {
		r.mu.Lock()
		now := r.nowFunc()
		r.pruneWindow(now)
		inputTotal, outputTotal := r.windowTotals()

		inputOK := r.inputTPM <= 0 || inputTotal < r.inputTPM
		outputOK := r.outputTPM <= 0 || outputTotal < r.outputTPM
		rpmOK := r.rpm <= 0 || len(r.window) < r.rpm

		if inputOK && outputOK && rpmOK {
			r.mu.Unlock()
			return nil
		}

		// Find when the oldest entry expires to free capacity.
		var waitDur time.Duration
		if len(r.window) > 0 {
			waitDur = max(r.window[0].timestamp.Add(time.Minute).Sub(now), 0)
		}
		r.mu.Unlock()

		const minWait = 10 * time.Millisecond
		if waitDur < minWait {
			waitDur = minWait
		}

		if err := r.sleepFunc(ctx, waitDur); err != nil {
			return err
		}
	}
}

// recordTokens adds a token entry to the sliding window.
func (r *RateLimited) recordTokens(inputTokens, outputTokens int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.window = append(r.window, tokenEntry{
		timestamp:    r.nowFunc(),
		inputTokens:  inputTokens,
		outputTokens: outputTokens,
	})
}

// jitter applies ±25% random jitter to a duration.
func (r *RateLimited) jitter(d time.Duration) time.Duration {
	// Scale factor in [0.75, 1.25).
	factor := 0.75 + r.randFunc()*0.5
	return time.Duration(float64(d) * factor)
}

// GenerateText implements TextGenerator with proactive TPM/RPM throttling and
// 429 retry.
func (r *RateLimited) GenerateText(ctx context.Context, req Request) (Response, error) {
	if err := r.waitForCapacity(ctx); err != nil {
		return Response{}, err
	}

	var lastErr error
	for attempt := range r.maxRetries + 1 {
		resp, err := r.inner.GenerateText(ctx, req)
		if err == nil {
			in, out := resp.InputTokens, resp.OutputTokens
			if in == 0 && out == 0 {
				in = EstimateTokens(req.Input)
				out = EstimateTokens(resp.Text)
			}
			r.recordTokens(in, out)

			return resp, nil
		}

		var rle *RateLimitError
		if !errors.As(err, &rle) {
			return Response{}, err
		}

		lastErr = err

		if attempt >= r.maxRetries {
			break
		}

		// Backoff: baseDelay * 2^attempt, but use RetryAfter if larger.
		backoff := r.jitter(max(
			r.baseDelay*time.Duration(math.Pow(2, float64(attempt))),
			rle.RetryAfter,
		))

		if err := r.sleepFunc(ctx, backoff); err != nil {
			return Response{}, err
		}
	}

	if lastErr == nil {
		lastErr = errors.New("rate limit: exhausted retries without a successful response")
	}

	return Response{}, lastErr
}
