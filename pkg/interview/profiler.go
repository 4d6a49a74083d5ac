package interview

import (
	"context"
	"fmt"

	"interviewsim/pkg/agent"
	"interviewsim/pkg/logx"
)

// Profiler extracts a structured candidate profile from resume and job
// description. Its output is load-bearing for every later prompt, so a
// malformed response aborts the session with no retry.
type Profiler struct {
	llm    agent.LLMClient
	logger *logx.Logger
}

// NewProfiler creates a profiler backed by the judge model.
func NewProfiler(llm agent.LLMClient) *Profiler {
	return &Profiler{llm: llm, logger: logx.NewLogger("profiler")}
}

// Run analyzes the session's resume against its job description and
// writes Profile. Fatal on malformed output.
func (p *Profiler) Run(ctx context.Context, s *Session) error {
	p.logger.Debug("Analyzing resume (%d chars) against job description (%d chars)",
		len(s.ResumeText), len(s.JobDescription))

	prompt := fmt.Sprintf(`You are an expert talent analyzer. Extract structured insights.

RESUME:
%s

JOB DESCRIPTION:
%s

Analyze and return JSON with:
1. "matched_skills": List of skills candidate has that match job
2. "missing_skills": Skills mentioned in job but not in resume
3. "strengths": Top 3 strong points
4. "weaknesses": Top 3 areas to probe (vague descriptions, gaps, etc.)
5. "experience_level": "junior", "mid", or "senior"
6. "red_flags": Any concerns (employment gaps, job hopping, etc.)

CRITICAL: Return ONLY valid JSON. No markdown, no code blocks, no explanation. Start with { and end with }.`,
		s.ResumeText, s.JobDescription)

	req := agent.NewCompletionRequest([]agent.CompletionMessage{agent.NewUserMessage(prompt)})
	req.Temperature = agent.TemperatureStrict

	resp, err := p.llm.Complete(ctx, req)
	if err != nil {
		return fmt.Errorf("profile generation failed: %w", err)
	}

	profile, err := ParseProfile("profiler", resp.Content)
	if err != nil {
		return err
	}

	s.Profile = profile
	p.logger.Info("Found %d matching skills, %d areas to probe, level=%s",
		len(profile.MatchedSkills), len(profile.Weaknesses), profile.ExperienceLevel)
	return nil
}
