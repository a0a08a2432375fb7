package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
)

// WithTimeout bounds every call with its own deadline.
func WithTimeout(next contractx.CompletionClient, timeout time.Duration) contractx.CompletionClient {
	if timeout <= 0 {
		return next
	}
	return contractx.CompletionFunc(func(ctx context.Context, behavior, input string) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return next.Complete(ctx, behavior, input)
	})
}

// WithRetry retries ErrModelInvoke failures with linear backoff. Empty
// completions and caller cancellation are returned immediately.
func WithRetry(next contractx.CompletionClient, attempts int, backoff time.Duration) contractx.CompletionClient {
	if attempts <= 1 {
		return next
	}
	return contractx.CompletionFunc(func(ctx context.Context, behavior, input string) (string, error) {
		var lastErr error
		for attempt := 1; attempt <= attempts; attempt++ {
			out, err := next.Complete(ctx, behavior, input)
			if err == nil {
				return out, nil
			}
			lastErr = err
			if !errors.Is(err, contractx.ErrModelInvoke) || ctx.Err() != nil || attempt == attempts {
				break
			}

			log.Ctx(ctx).Warn().Err(err).Int("attempt", attempt).Msg("completion failed, retrying")

			timer := time.NewTimer(backoff * time.Duration(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", fmt.Errorf("%w: %v", contractx.ErrModelInvoke, ctx.Err())
			case <-timer.C:
			}
		}
		return "", lastErr
	})
}

func WithLogging(next contractx.CompletionClient, provider, model string) contractx.CompletionClient {
	return contractx.CompletionFunc(func(ctx context.Context, behavior, input string) (string, error) {
		start := time.Now()
		out, err := next.Complete(ctx, behavior, input)

		evt := log.Ctx(ctx).Debug()
		if err != nil {
			evt = log.Ctx(ctx).Error().Err(err)
		}
		evt.Str("provider", provider).
			Str("model", model).
			Int("input_len", len(input)).
			Int("output_len", len(out)).
			Dur("duration", time.Since(start)).
			Msg("completion")
		return out, err
	})
}
