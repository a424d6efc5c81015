package llm

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Middleware decorates a Client to inject cross-cutting concerns
// (rate limiting, retries, logging, hooks).
type Middleware func(Client) Client

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Client, mws ...Middleware) Client {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Rate Limiting --------

// RateLimit limits request rate to rps with the given burst.
// If rps <= 0, the limiter is disabled.
func RateLimit(rps float64, burst int) Middleware {
	return func(next Client) Client {
		if rps <= 0 {
			return next
		}
		if burst < 1 {
			burst = 1
		}
		return &rateLimited{next: next, rl: rate.NewLimiter(rate.Limit(rps), burst)}
	}
}

type rateLimited struct {
	next Client
	rl   *rate.Limiter
}

func (c *rateLimited) Name() string { return c.next.Name() }
func (c *rateLimited) Close() error { return c.next.Close() }
func (c *rateLimited) GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return "", err
	}
	return c.next.GenerateText(ctx, prompt, opts)
}

// -------- Retry with exponential backoff --------

// Retry retries GenerateText up to maxAttempts with exponential backoff
// starting at baseDelay. Permanent errors and context cancellation stop it
// immediately. maxAttempts of 1 means a single try.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next Client) Client {
		if maxAttempts == 1 {
			return next
		}
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next Client
	max  int
	base time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }
func (r *retrying) GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	var last error
	for i := 0; i < r.max; i++ {
		out, err := r.next.GenerateText(ctx, prompt, opts)
		if err == nil {
			return out, nil
		}
		var pErr *PermanentError
		if errors.As(err, &pErr) {
			return "", err
		}
		last = err
		if i == r.max-1 {
			break
		}
		timer := time.NewTimer(r.base * time.Duration(1<<i))
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return "", last
}

// -------- Logging --------

// WithLogging logs request size, latency and errors. A nil logger disables it.
func WithLogging(logger *zap.Logger) Middleware {
	return func(next Client) Client {
		if logger == nil {
			return next
		}
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next Client
	log  *zap.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }
func (l *logging) GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	start := time.Now()
	l.log.Debug("llm request",
		zap.String("client", l.next.Name()),
		zap.String("worker", WorkerFrom(ctx)),
		zap.Int("prompt_bytes", len(prompt)),
	)
	out, err := l.next.GenerateText(ctx, prompt, opts)
	if err != nil {
		l.log.Warn("llm error",
			zap.String("worker", WorkerFrom(ctx)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return out, err
	}
	l.log.Debug("llm response",
		zap.String("worker", WorkerFrom(ctx)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("response_bytes", len(out)),
	)
	return out, nil
}
