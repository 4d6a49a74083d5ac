// Package google provides the Google Gemini adapter for the LLM port.
// It is also the only adapter implementing the optional multimodal vision
// port, used for non-verbal analysis of webcam frames.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"interviewsim/pkg/agent/internal/llmport"
	"interviewsim/pkg/agent/llmerrors"
)

// Client wraps the Google GenAI client to implement llmport.LLMClient and
// llmport.VisionClient.
type Client struct {
	client *genai.Client
	apiKey string
	model  string
}

// NewClient creates a Gemini-backed client. The underlying genai client is
// created lazily on first use because its constructor requires a context.
func NewClient(apiKey, model string) *Client {
	return &Client{apiKey: apiKey, model: model}
}

func (g *Client) ensureClient(ctx context.Context) error {
	if g.client != nil {
		return nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeUnavailable, err, "failed to create Gemini client")
	}
	g.client = client
	return nil
}

func convertMessages(messages []llmport.CompletionMessage) ([]*genai.Content, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("message list cannot be empty")
	}

	var systemInstruction string
	var contents []*genai.Content

	for i := range messages {
		msg := &messages[i]
		if msg.Role == llmport.RoleSystem {
			if systemInstruction != "" {
				systemInstruction += "\n\n" + msg.Content
			} else {
				systemInstruction = msg.Content
			}
			continue
		}

		role := "user"
		if msg.Role == llmport.RoleAssistant {
			role = "model" // Gemini uses "model" instead of "assistant"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}

	return contents, systemInstruction, nil
}

// Complete implements llmport.LLMClient.
func (g *Client) Complete(ctx context.Context, in llmport.CompletionRequest) (llmport.CompletionResponse, error) {
	if err := g.ensureClient(ctx); err != nil {
		return llmport.CompletionResponse{}, err
	}

	contents, systemInstruction, err := convertMessages(in.Messages)
	if err != nil {
		return llmport.CompletionResponse{}, llmerrors.NewErrorWithCause(llmerrors.ErrorTypeBadPrompt, err, "message conversion error")
	}

	//nolint:gosec // MaxTokens bounded at request construction
	cfg := &genai.GenerateContentConfig{
		Temperature:     &in.Temperature,
		MaxOutputTokens: int32(in.MaxTokens),
	}
	if systemInstruction != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		}
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return llmport.CompletionResponse{}, classifyError(err)
	}
	if result == nil || result.Text() == "" {
		return llmport.CompletionResponse{}, llmerrors.NewError(llmerrors.ErrorTypeEmptyResponse, "received empty response from Gemini API")
	}

	return llmport.CompletionResponse{
		Content:    result.Text(),
		StopReason: stopReason(result),
	}, nil
}

// AnalyzeFrame implements llmport.VisionClient: one frame plus the question
// being answered, judged for confidence and engagement.
func (g *Client) AnalyzeFrame(ctx context.Context, in llmport.VisionRequest) (llmport.VisionResult, error) {
	if err := g.ensureClient(ctx); err != nil {
		return llmport.VisionResult{}, err
	}
	if len(in.ImageJPEG) == 0 {
		return llmport.VisionResult{}, llmerrors.NewError(llmerrors.ErrorTypeBadPrompt, "no frame data provided")
	}

	prompt := fmt.Sprintf(`You are an expert interview coach analyzing a candidate's non-verbal communication.

THE QUESTION THEY'RE ANSWERING: %s

Analyze this webcam image and evaluate:
1. Confidence Level (0-10): eye contact, posture, facial expression
2. Engagement (0-10): attentiveness, energy level
3. Body language signals: fidgeting, slouching, hand gestures

Return JSON:
{"confidence": 0-10, "engagement": 0-10, "body_language": "brief description", "coaching_tip": "one specific tip"}

Return ONLY valid JSON.`, in.Context)

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: prompt},
			{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: in.ImageJPEG}},
		},
	}}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return llmport.VisionResult{}, classifyError(err)
	}
	if result == nil || result.Text() == "" {
		return llmport.VisionResult{}, llmerrors.NewError(llmerrors.ErrorTypeEmptyResponse, "received empty vision response")
	}

	var parsed llmport.VisionResult
	raw := stripFences(result.Text())
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return llmport.VisionResult{}, llmerrors.NewErrorWithCause(llmerrors.ErrorTypeUnknown, err, "vision response was not valid JSON")
	}
	return parsed, nil
}

// GetModelName implements llmport.LLMClient.
func (g *Client) GetModelName() string {
	return g.model
}

func stopReason(result *genai.GenerateContentResponse) string {
	if len(result.Candidates) > 0 {
		return string(result.Candidates[0].FinishReason)
	}
	return ""
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func classifyError(err error) *llmerrors.Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeTransient, err, "request interrupted")
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "api key") || strings.Contains(errStr, "401") || strings.Contains(errStr, "permission"):
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeAuth, err, "authentication failed - check API key")
	case strings.Contains(errStr, "quota") || strings.Contains(errStr, "429") || strings.Contains(errStr, "rate"):
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeRateLimit, err, "rate limit exceeded")
	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "refused"):
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeUnavailable, err, "provider unreachable")
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "500") || strings.Contains(errStr, "503"):
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeTransient, err, "network or server error")
	default:
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeUnknown, err, "unclassified error")
	}
}
