package agent

import (
	"fmt"

	"interviewsim/pkg/agent/internal/llmimpl/anthropic"
	"interviewsim/pkg/agent/internal/llmimpl/google"
	"interviewsim/pkg/agent/internal/llmimpl/ollama"
	"interviewsim/pkg/agent/internal/llmimpl/openai"
	"interviewsim/pkg/config"
)

// NewLLMClient constructs a retry-wrapped LLM client for the given model
// config. Credentials are resolved by the config package; the returned client
// never reads the environment itself.
func NewLLMClient(mc config.ModelConfig) (LLMClient, error) {
	raw, err := newRawClient(mc)
	if err != nil {
		return nil, err
	}
	return NewRetryableClient(raw), nil
}

func newRawClient(mc config.ModelConfig) (LLMClient, error) {
	switch mc.Provider {
	case config.ProviderAnthropic:
		key := config.APIKeyFor(mc.Provider)
		if key == "" {
			return nil, fmt.Errorf("no API key for provider %s", mc.Provider)
		}
		return anthropic.NewClient(key, mc.Model), nil
	case config.ProviderOpenAI:
		key := config.APIKeyFor(mc.Provider)
		if key == "" {
			return nil, fmt.Errorf("no API key for provider %s", mc.Provider)
		}
		return openai.NewClient(key, mc.Model), nil
	case config.ProviderGoogle:
		key := config.APIKeyFor(mc.Provider)
		if key == "" {
			return nil, fmt.Errorf("no API key for provider %s", mc.Provider)
		}
		return google.NewClient(key, mc.Model), nil
	case config.ProviderOllama:
		cfg, err := config.GetConfig()
		if err != nil {
			return nil, err
		}
		return ollama.NewClient(cfg.OllamaHost, mc.Model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", mc.Provider)
	}
}

// NewVisionClient constructs the optional multimodal client. A nil model
// config returns (nil, nil): vision absence is a configuration condition,
// not an error.
func NewVisionClient(mc *config.ModelConfig) (VisionClient, error) {
	if mc == nil {
		return nil, nil
	}
	if mc.Provider != config.ProviderGoogle {
		return nil, fmt.Errorf("vision provider %q not supported", mc.Provider)
	}
	key := config.APIKeyFor(mc.Provider)
	if key == "" {
		return nil, fmt.Errorf("no API key for vision provider %s", mc.Provider)
	}
	return google.NewClient(key, mc.Model), nil
}
