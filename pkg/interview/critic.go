package interview

import (
	"context"
	"fmt"

	"interviewsim/pkg/agent"
	"interviewsim/pkg/logx"
)

// Critic silently scores each answer against the STAR rubric. Its output
// feeds the stage and termination decisions, so a malformed evaluation is
// fatal to the turn rather than being defaulted.
type Critic struct {
	llm    agent.LLMClient
	logger *logx.Logger
}

// NewCritic creates a critic backed by the judge model.
func NewCritic(llm agent.LLMClient) *Critic {
	return &Critic{llm: llm, logger: logx.NewLogger("critic")}
}

// Evaluate scores the live answer and appends the evaluation to the
// feedback log. A session without an answer to judge is a no-op.
func (c *Critic) Evaluate(ctx context.Context, s *Session) error {
	if s.CurrentAnswer == "" {
		c.logger.Debug("No answer to evaluate, skipping")
		return nil
	}

	prompt := fmt.Sprintf(`You are a silent interview coach evaluating a candidate's answer.

QUESTION: %s
ANSWER: %s

Evaluate using STAR method (Situation, Task, Action, Result):
1. Did they answer the specific question asked?
2. Was the answer structured (STAR for behavioral, clear logic for technical)?
3. Did they show confidence or hesitation?
4. Was it too brief or too rambling?
5. Any red flags? (vague, defensive, off-topic)

BE BRUTALLY HONEST. If answer was weak or didn't address the question, score 1-3. If excellent, score 9-10. Don't be nice.

Return JSON:
{"score":7,"strengths":"Clear structure","weaknesses":"Missing specific examples","tip":"Use STAR method with concrete metrics","sentiment":"confident"}

CRITICAL: Return ONLY valid JSON. No markdown blocks, no explanations. Just pure JSON starting with {.`,
		s.CurrentQuestion, s.CurrentAnswer)

	req := agent.NewCompletionRequest([]agent.CompletionMessage{agent.NewUserMessage(prompt)})
	req.Temperature = agent.TemperatureStrict

	resp, err := c.llm.Complete(ctx, req)
	if err != nil {
		return fmt.Errorf("answer evaluation failed: %w", err)
	}

	eval, err := ParseEvaluation("critic", resp.Content)
	if err != nil {
		return err
	}

	s.FeedbackLog = append(s.FeedbackLog, *eval)
	c.logger.Info("Scored %d/10, sentiment=%s", eval.Score, eval.Sentiment)
	return nil
}
