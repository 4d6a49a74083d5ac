package interview

import (
	"context"
	"errors"
	"time"

	"interviewsim/pkg/agent"
	"interviewsim/pkg/agent/llmerrors"
	"interviewsim/pkg/metrics"
	"interviewsim/pkg/tokens"
)

// measuredClient wraps an LLMClient to record per-call metrics and token
// usage for one named agent step.
type measuredClient struct {
	inner     agent.LLMClient
	agentName string
	recorder  *metrics.Recorder
	counter   *tokens.Counter
	usage     *tokens.Usage
}

func newMeasuredClient(inner agent.LLMClient, agentName string,
	recorder *metrics.Recorder, counter *tokens.Counter, usage *tokens.Usage) agent.LLMClient {
	if recorder == nil && usage == nil {
		return inner
	}
	return &measuredClient{
		inner:     inner,
		agentName: agentName,
		recorder:  recorder,
		counter:   counter,
		usage:     usage,
	}
}

func (m *measuredClient) Complete(ctx context.Context, in agent.CompletionRequest) (agent.CompletionResponse, error) {
	start := time.Now()
	resp, err := m.inner.Complete(ctx, in)
	elapsed := time.Since(start)

	if m.recorder != nil {
		errorType := ""
		if err != nil {
			errorType = "unknown"
			var llmErr *llmerrors.Error
			if errors.As(err, &llmErr) {
				errorType = llmErr.Type.String()
			}
		}
		m.recorder.ObserveLLMRequest(m.agentName, m.inner.GetModelName(), err == nil, errorType, elapsed)
	}

	if m.usage != nil && err == nil {
		promptTokens := 0
		for _, msg := range in.Messages {
			promptTokens += m.counter.Count(msg.Content)
		}
		m.usage.Record(promptTokens, m.counter.Count(resp.Content))
	}

	return resp, err
}

func (m *measuredClient) GetModelName() string {
	return m.inner.GetModelName()
}
