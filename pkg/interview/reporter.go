package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"interviewsim/pkg/agent"
	"interviewsim/pkg/logx"
)

// Reporter assembles the final performance report: a generated narrative
// followed by a deterministic per-question recap. The recap is always
// emitted, even when the narrative generation fails, so report generation
// never fails the session.
type Reporter struct {
	llm    agent.LLMClient
	logger *logx.Logger
}

// NewReporter creates a reporter backed by the judge model.
func NewReporter(llm agent.LLMClient) *Reporter {
	return &Reporter{llm: llm, logger: logx.NewLogger("reporter")}
}

// Run writes FinalReport. Idempotent: a session that already has a report
// is left untouched.
func (r *Reporter) Run(ctx context.Context, s *Session) {
	if s.FinalReport != "" {
		return
	}

	avg := s.AverageScore()
	r.logger.Info("Generating report: %d answers, avg score %.1f/10", len(s.FeedbackLog), avg)

	narrative := r.generateNarrative(ctx, s, avg)

	var sb strings.Builder
	sb.WriteString("# Interview Performance Report\n\n")
	fmt.Fprintf(&sb, "## Score: %.1f/10\n\n", avg)

	if s.EarlyTerminationReason != "" {
		fmt.Fprintf(&sb, "**Early termination:** %s\n\n", s.EarlyTerminationReason)
	}

	if narrative != "" {
		sb.WriteString(narrative)
		sb.WriteString("\n\n")
	}

	sb.WriteString("---\n\n## Detailed Question Analysis\n")
	for i, eval := range s.FeedbackLog {
		fmt.Fprintf(&sb, "\n### Question %d - Score: %d/10\n", i+1, eval.Score)
		fmt.Fprintf(&sb, "**Strengths:** %s\n", orNA(eval.Strengths))
		fmt.Fprintf(&sb, "**Weaknesses:** %s\n", orNA(eval.Weaknesses))
		fmt.Fprintf(&sb, "**Coaching Tip:** %s\n", orNA(eval.Tip))
		if i < len(s.VisionLog) && s.VisionLog[i].Description != "" {
			fmt.Fprintf(&sb, "**Body Language:** %s\n", s.VisionLog[i].Description)
		}
	}

	if len(s.FailedTopics) > 0 {
		sb.WriteString("\n## Abandoned Topics\n")
		for _, topic := range s.FailedTopics {
			fmt.Fprintf(&sb, "- %s...\n", topic)
		}
	}

	s.FinalReport = sb.String()
}

// generateNarrative produces the free-text assessment. Any failure is
// logged and returns empty: the deterministic recap still goes out.
func (r *Reporter) generateNarrative(ctx context.Context, s *Session, avg float64) string {
	feedbackJSON, err := json.MarshalIndent(s.FeedbackLog, "", "  ")
	if err != nil {
		feedbackJSON = []byte("[]")
	}

	var visionSummary string
	if len(s.VisionLog) > 0 {
		if visionJSON, err := json.MarshalIndent(s.VisionLog, "", "  "); err == nil {
			visionSummary = fmt.Sprintf("\n\nNON-VERBAL ANALYSIS:\n%s", visionJSON)
		}
	}

	var strengths, weaknesses []string
	if s.Profile != nil {
		strengths = s.Profile.Strengths
		weaknesses = s.Profile.Weaknesses
	}

	prompt := fmt.Sprintf(`Generate a comprehensive interview performance report.

OVERALL SCORE: %.1f/10

CANDIDATE STRENGTHS: %s
AREAS TO IMPROVE: %s

ANSWER-BY-ANSWER FEEDBACK:
%s%s

Create a report with:
1. **Overall Performance** (1 paragraph)
2. **Top 3 Strengths**
3. **Top 3 Areas for Improvement**
4. **Specific Action Items** (What to practice for next interview)
5. **Tone & Delivery Assessment**
6. **Non-Verbal Communication** (if video was enabled)

Be constructive but honest.`,
		avg, strings.Join(strengths, ", "), strings.Join(weaknesses, ", "),
		feedbackJSON, visionSummary)

	req := agent.NewCompletionRequest([]agent.CompletionMessage{agent.NewUserMessage(prompt)})
	req.Temperature = agent.TemperatureStrict

	resp, err := r.llm.Complete(ctx, req)
	if err != nil {
		r.logger.Warn("Narrative generation failed, emitting recap only: %v", err)
		return ""
	}
	return strings.TrimSpace(resp.Content)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
