// Package agent provides the LLM capability ports consumed by the interview
// core, a factory wiring provider adapters behind them, and the control-state
// machine the interview driver runs on.
package agent

import (
	"interviewsim/pkg/agent/internal/llmport"
)

// The port types live in internal/llmport so the provider adapters can share
// them without importing this package (which imports the adapters from the
// factory). The aliases below keep pkg/agent's API unchanged.

// CompletionRole represents the role of a message in a conversation.
type CompletionRole = llmport.CompletionRole

const (
	// RoleSystem indicates a system message that provides instructions or context.
	RoleSystem = llmport.RoleSystem
	// RoleUser indicates a message from the human user.
	RoleUser = llmport.RoleUser
	// RoleAssistant indicates a message from the AI assistant.
	RoleAssistant = llmport.RoleAssistant
)

const (
	// TemperatureDefault is used for question generation and narrative text.
	TemperatureDefault = llmport.TemperatureDefault
	// TemperatureStrict is used for judgment tasks that must parse as JSON.
	TemperatureStrict = llmport.TemperatureStrict

	// DefaultMaxTokens bounds completion length for interview turns.
	DefaultMaxTokens = llmport.DefaultMaxTokens
)

// CompletionMessage represents a message in a completion request.
type CompletionMessage = llmport.CompletionMessage

// CompletionRequest represents a request to generate a completion.
type CompletionRequest = llmport.CompletionRequest

// CompletionResponse represents a response from a completion request.
type CompletionResponse = llmport.CompletionResponse

// LLMClient defines the interface for language model interactions.
// Implementations must distinguish provider unavailability (classified
// llmerrors.ErrorTypeUnavailable) from an empty completion.
type LLMClient = llmport.LLMClient

// VisionRequest carries one webcam frame plus the question being answered,
// for non-verbal analysis on the optional side channel.
type VisionRequest = llmport.VisionRequest

// VisionResult is the structured judgment returned for a frame.
type VisionResult = llmport.VisionResult

// VisionClient is the optional multimodal port. Absence of a configured
// vision provider is a configuration condition, not an error.
type VisionClient = llmport.VisionClient

// NewCompletionRequest creates a completion request with default limits.
func NewCompletionRequest(messages []CompletionMessage) CompletionRequest {
	return llmport.NewCompletionRequest(messages)
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) CompletionMessage {
	return llmport.NewSystemMessage(content)
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) CompletionMessage {
	return llmport.NewUserMessage(content)
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) CompletionMessage {
	return llmport.NewAssistantMessage(content)
}
