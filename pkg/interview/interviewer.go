package interview

import (
	"context"
	"fmt"
	"strings"

	"interviewsim/pkg/agent"
	"interviewsim/pkg/logx"
	"interviewsim/pkg/prompts"
)

// Interviewer generates questions in the current stage and persona,
// folding the last evaluation into escalating pressure. The same
// generator handles pushback rephrasings; only the caller's path decides
// whether the question counter advances.
type Interviewer struct {
	llm    agent.LLMClient
	pack   *prompts.Pack
	logger *logx.Logger
}

// NewInterviewer creates an interviewer backed by the conversational model.
func NewInterviewer(llm agent.LLMClient, pack *prompts.Pack) *Interviewer {
	return &Interviewer{llm: llm, pack: pack, logger: logx.NewLogger("interviewer")}
}

// Ask generates the next question, appends it to the history, and
// increments QuestionCount. Exactly one question is live afterwards.
func (iv *Interviewer) Ask(ctx context.Context, s *Session) error {
	question, err := iv.generate(ctx, s, "")
	if err != nil {
		return err
	}

	s.AppendQuestion(question)
	s.QuestionCount++
	iv.logger.Info("Asked %s question #%d in %s tone", s.Stage, s.QuestionCount, s.Persona)
	return nil
}

// Pushback rephrases the live question with added pressure. The question
// counter is explicitly held constant: this is the same question, not a
// new one.
func (iv *Interviewer) Pushback(ctx context.Context, s *Session) error {
	lastEval := s.LastEvaluation()
	if lastEval == nil {
		return fmt.Errorf("pushback requires a prior evaluation")
	}

	directive := iv.pack.PushbackPrompt(s.CurrentQuestion, s.CurrentAnswer, lastEval.Score, lastEval.Weaknesses)
	question, err := iv.generate(ctx, s, directive)
	if err != nil {
		return err
	}

	s.AppendQuestion(question)
	iv.logger.Info("Pushback on question #%d (attempt %d/%d)", s.QuestionCount, s.PushbackCount, MaxPushbacks)
	return nil
}

func (iv *Interviewer) generate(ctx context.Context, s *Session, pushbackDirective string) (string, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are conducting a job interview for %s.\n\n", s.CompanyName)
	fmt.Fprintf(&sb, "COMPANY CONTEXT:\n%s\n\n", s.CompanyIntel)

	if s.Profile != nil {
		fmt.Fprintf(&sb, "CANDIDATE PROFILE:\n- Strengths: %s\n- Areas to Probe: %s\n\n",
			strings.Join(s.Profile.Strengths, ", "),
			strings.Join(s.Profile.Weaknesses, ", "))
	}

	fmt.Fprintf(&sb, "INTERVIEW STRATEGY:\n%s\n\n", s.Strategy)
	fmt.Fprintf(&sb, "CURRENT STAGE: %s\n", strings.ToUpper(string(s.Stage)))
	fmt.Fprintf(&sb, "YOUR PERSONA: %s\n", iv.pack.PersonaTone(string(s.Persona)))

	if instruction := iv.pack.StageInstruction(string(s.Stage)); instruction != "" {
		sb.WriteString(instruction)
		sb.WriteString("\n")
	}

	if lastEval := s.LastEvaluation(); lastEval != nil && s.CurrentQuestion != "" {
		fmt.Fprintf(&sb, "\nPREVIOUS QUESTION: %s\n", s.CurrentQuestion)
		fmt.Fprintf(&sb, "CANDIDATE'S ANSWER: %s\n", s.CurrentAnswer)
		fmt.Fprintf(&sb, "INTERNAL ASSESSMENT: Score %d/10 - %s\n", lastEval.Score, lastEval.Tip)
		fmt.Fprintf(&sb, "SENTIMENT: %s\n", lastEval.Sentiment)

		if pressure := iv.pack.PressureTier(lastEval.Score); pressure != "" {
			sb.WriteString("\n")
			sb.WriteString(pressure)
			sb.WriteString("\n")
		}
	}

	if pushbackDirective != "" {
		sb.WriteString("\n")
		sb.WriteString(pushbackDirective)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(iv.pack.BehaviorProtocol)

	req := agent.NewCompletionRequest([]agent.CompletionMessage{agent.NewUserMessage(sb.String())})

	resp, err := iv.llm.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("question generation failed: %w", err)
	}

	question := strings.TrimSpace(resp.Content)
	if question == "" {
		return "", fmt.Errorf("question generation returned empty output")
	}
	return question, nil
}
