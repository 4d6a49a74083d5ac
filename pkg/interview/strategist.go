package interview

import (
	"context"
	"fmt"
	"strings"

	"interviewsim/pkg/agent"
	"interviewsim/pkg/logx"
)

// Strategist plans the interview arc from the candidate profile and
// company intel. The plan is free text accepted verbatim; the persona is
// selected by keyword detection and defaults safely to neutral.
type Strategist struct {
	llm    agent.LLMClient
	logger *logx.Logger
}

// NewStrategist creates a strategist backed by the judge model.
func NewStrategist(llm agent.LLMClient) *Strategist {
	return &Strategist{llm: llm, logger: logx.NewLogger("strategist")}
}

// Run writes Strategy and Persona. Fails only when the generation call
// itself fails; malformed output is non-fatal.
func (st *Strategist) Run(ctx context.Context, s *Session) error {
	profile := s.Profile
	if profile == nil {
		return fmt.Errorf("strategy requires a candidate profile")
	}

	prompt := fmt.Sprintf(`You are designing a realistic interview flow.

CANDIDATE PROFILE:
- Matched Skills: %s
- Missing Skills: %s
- Experience Level: %s
- Weaknesses: %s

COMPANY CONTEXT:
%s

Create a strategic interview plan:
1. What persona should the interviewer adopt? (supportive/neutral/challenging)
2. What sequence of topics? (Start easy -> build up OR start with curveball?)
3. Which weaknesses to probe?
4. How many questions per stage?

Return a concise strategy (3-4 sentences).`,
		strings.Join(profile.MatchedSkills, ", "),
		strings.Join(profile.MissingSkills, ", "),
		profile.ExperienceLevel,
		strings.Join(profile.Weaknesses, ", "),
		s.CompanyIntel)

	req := agent.NewCompletionRequest([]agent.CompletionMessage{agent.NewUserMessage(prompt)})
	req.Temperature = agent.TemperatureStrict

	resp, err := st.llm.Complete(ctx, req)
	if err != nil {
		return fmt.Errorf("strategy generation failed: %w", err)
	}

	s.Strategy = strings.TrimSpace(resp.Content)
	s.Persona = detectPersona(s.Strategy)
	st.logger.Info("Planned %s interview approach", s.Persona)
	return nil
}

// detectPersona scans the plan text for persona keywords, defaulting to
// neutral.
func detectPersona(plan string) Persona {
	lowered := strings.ToLower(plan)
	switch {
	case strings.Contains(lowered, string(PersonaSupportive)):
		return PersonaSupportive
	case strings.Contains(lowered, string(PersonaChallenging)):
		return PersonaChallenging
	default:
		return PersonaNeutral
	}
}
