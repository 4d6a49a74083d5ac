// Package tokens provides token counting and accounting for interview
// sessions. All supported providers are approximated with the GPT-4
// encoding; when the codec is unavailable we fall back to a 4-chars-per-token
// estimate.
package tokens

import (
	"fmt"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// Counter counts tokens for prompt and completion text.
type Counter struct {
	codec tokenizer.Codec
}

// NewCounter creates a counter for the given model name. Unknown models
// use GPT-4 encoding, which is close enough for budgeting purposes.
func NewCounter(model string) (*Counter, error) {
	codec, err := tokenizer.ForModel(tokenizer.GPT4)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokenizer codec for model %s: %w", model, err)
	}
	return &Counter{codec: codec}, nil
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	if c == nil || c.codec == nil {
		return len(text) / 4
	}
	count, err := c.codec.Count(text)
	if err != nil {
		return len(text) / 4
	}
	return count
}

// Usage accumulates token totals for one session across all agent calls.
type Usage struct {
	mu         sync.Mutex
	prompt     int
	completion int
	calls      int
}

// NewUsage returns an empty usage accumulator.
func NewUsage() *Usage {
	return &Usage{}
}

// Record adds one LLM call's prompt and completion token counts.
func (u *Usage) Record(promptTokens, completionTokens int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.prompt += promptTokens
	u.completion += completionTokens
	u.calls++
}

// Totals returns prompt tokens, completion tokens, and call count.
func (u *Usage) Totals() (prompt, completion, calls int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.prompt, u.completion, u.calls
}

// Summary renders a one-line accounting string for the final report.
func (u *Usage) Summary() string {
	prompt, completion, calls := u.Totals()
	return fmt.Sprintf("%d LLM calls, %d prompt tokens, %d completion tokens", calls, prompt, completion)
}
