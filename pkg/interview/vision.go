package interview

import (
	"context"
	"time"

	"interviewsim/pkg/agent"
	"interviewsim/pkg/logx"
)

// DefaultVisionTimeout bounds how long a frame analysis may hold up the
// answer-evaluate-decide path.
const DefaultVisionTimeout = 30 * time.Second

// VisionCoach analyzes webcam frames for non-verbal cues on an optional
// side channel. Its observations never influence stage or termination
// decisions, and any failure is logged and dropped.
type VisionCoach struct {
	client  agent.VisionClient
	timeout time.Duration
	logger  *logx.Logger
}

// NewVisionCoach creates a vision coach. A nil client disables the side
// channel entirely.
func NewVisionCoach(client agent.VisionClient, timeout time.Duration) *VisionCoach {
	if timeout <= 0 {
		timeout = DefaultVisionTimeout
	}
	return &VisionCoach{client: client, timeout: timeout, logger: logx.NewLogger("vision")}
}

// Enabled reports whether a vision provider is configured.
func (v *VisionCoach) Enabled() bool {
	return v != nil && v.client != nil
}

// Observe analyzes one frame against the live question and appends the
// result to the session's vision log. Best-effort: timeouts and provider
// failures leave the session unchanged.
func (v *VisionCoach) Observe(ctx context.Context, s *Session, frameJPEG []byte) {
	if !v.Enabled() || len(frameJPEG) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	result, err := v.client.AnalyzeFrame(ctx, agent.VisionRequest{
		ImageJPEG: frameJPEG,
		Context:   s.CurrentQuestion,
	})
	if err != nil {
		v.logger.Warn("Frame analysis failed: %v", err)
		return
	}

	s.VisionLog = append(s.VisionLog, VisionEntry{
		QuestionNum: s.QuestionCount,
		Confidence:  result.Confidence,
		Engagement:  result.Engagement,
		Description: result.Description,
		Tip:         result.Tip,
	})
	v.logger.Info("Confidence %d/10, engagement %d/10", result.Confidence, result.Engagement)
}
