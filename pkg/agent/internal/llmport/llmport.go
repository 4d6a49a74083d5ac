// Package llmport holds the LLM and vision port types shared between
// pkg/agent and the provider adapters under pkg/agent/internal/llmimpl.
// pkg/agent re-exports everything here via type aliases; the split exists
// only to break the import cycle between the factory and the adapters.
package llmport

import (
	"context"
)

// CompletionRole represents the role of a message in a conversation.
type CompletionRole string

const (
	// RoleSystem indicates a system message that provides instructions or context.
	RoleSystem CompletionRole = "system"
	// RoleUser indicates a message from the human user.
	RoleUser CompletionRole = "user"
	// RoleAssistant indicates a message from the AI assistant.
	RoleAssistant CompletionRole = "assistant"
)

const (
	// TemperatureDefault is used for question generation and narrative text.
	TemperatureDefault float32 = 0.7
	// TemperatureStrict is used for judgment tasks that must parse as JSON.
	TemperatureStrict float32 = 0.3

	// DefaultMaxTokens bounds completion length for interview turns.
	DefaultMaxTokens = 4096
)

// CompletionMessage represents a message in a completion request.
type CompletionMessage struct {
	Role    CompletionRole
	Content string
}

// CompletionRequest represents a request to generate a completion.
type CompletionRequest struct {
	Messages    []CompletionMessage
	MaxTokens   int
	Temperature float32
}

// CompletionResponse represents a response from a completion request.
type CompletionResponse struct {
	Content    string // Main response text
	StopReason string // Why the response stopped, provider-specific
}

// LLMClient defines the interface for language model interactions.
// Implementations must distinguish provider unavailability (classified
// llmerrors.ErrorTypeUnavailable) from an empty completion.
type LLMClient interface {
	// Complete generates a completion synchronously. The call blocks until
	// the provider responds or ctx is done.
	Complete(ctx context.Context, in CompletionRequest) (CompletionResponse, error)

	// GetModelName returns the backing model identifier for diagnostics.
	GetModelName() string
}

// VisionRequest carries one webcam frame plus the question being answered,
// for non-verbal analysis on the optional side channel.
type VisionRequest struct {
	ImageJPEG []byte // Raw JPEG bytes of the captured frame
	Context   string // The question the candidate is currently answering
}

// VisionResult is the structured judgment returned for a frame.
type VisionResult struct {
	Confidence  int    `json:"confidence"` // 0-10
	Engagement  int    `json:"engagement"` // 0-10
	Description string `json:"body_language"`
	Tip         string `json:"coaching_tip"`
}

// VisionClient is the optional multimodal port. Absence of a configured
// vision provider is a configuration condition, not an error.
type VisionClient interface {
	AnalyzeFrame(ctx context.Context, in VisionRequest) (VisionResult, error)
}

// NewCompletionRequest creates a completion request with default limits.
func NewCompletionRequest(messages []CompletionMessage) CompletionRequest {
	return CompletionRequest{
		Messages:    messages,
		MaxTokens:   DefaultMaxTokens,
		Temperature: TemperatureDefault,
	}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) CompletionMessage {
	return CompletionMessage{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) CompletionMessage {
	return CompletionMessage{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) CompletionMessage {
	return CompletionMessage{Role: RoleAssistant, Content: content}
}
