package agent

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"interviewsim/pkg/agent/llmerrors"
	"interviewsim/pkg/logx"
)

// RetryableClient wraps an LLMClient with classified-error retry logic.
// Backoff parameters come from the error's classification, so a rate limit
// waits longer than a dropped connection.
type RetryableClient struct {
	client LLMClient
	logger *logx.Logger
}

// NewRetryableClient wraps client with retry behavior.
func NewRetryableClient(client LLMClient) *RetryableClient {
	return &RetryableClient{
		client: client,
		logger: logx.NewLogger("llm-retry"),
	}
}

// Complete implements LLMClient with per-error-type retry.
func (r *RetryableClient) Complete(ctx context.Context, in CompletionRequest) (CompletionResponse, error) {
	var lastErr error

	for attempt := 0; ; attempt++ {
		resp, err := r.client.Complete(ctx, in)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var llmErr *llmerrors.Error
		if !errors.As(err, &llmErr) || !llmErr.IsRetryable() {
			return CompletionResponse{}, err
		}

		cfg := llmErr.GetRetryConfig()
		if attempt >= cfg.MaxRetries {
			break
		}

		delay := backoffDelay(cfg, attempt)
		r.logger.Warn("completion failed (%s), retry %d/%d in %s: %v",
			llmErr.Type, attempt+1, cfg.MaxRetries, delay, err)

		select {
		case <-ctx.Done():
			return CompletionResponse{}, ctx.Err()
		case <-time.After(delay):
		}
	}

	return CompletionResponse{}, lastErr
}

// GetModelName implements LLMClient.
func (r *RetryableClient) GetModelName() string {
	return r.client.GetModelName()
}

func backoffDelay(cfg llmerrors.RetryConfig, attempt int) time.Duration {
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.BackoffFactor, float64(attempt))
	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	if cfg.Jitter {
		delay *= 0.5 + rand.Float64()*0.5 //nolint:gosec // jitter does not need crypto rand
	}
	return time.Duration(delay)
}
