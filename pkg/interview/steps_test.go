package interview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interviewsim/pkg/agent"
	"interviewsim/pkg/prompts"
	"interviewsim/pkg/search"
)

type stubSearch struct {
	results []search.Result
	err     error
	queries []string
}

func (s *stubSearch) Search(_ context.Context, query string, _ int) ([]search.Result, error) {
	s.queries = append(s.queries, query)
	return s.results, s.err
}

type stubVision struct {
	result agent.VisionResult
	err    error
	calls  int
}

func (v *stubVision) AnalyzeFrame(_ context.Context, _ agent.VisionRequest) (agent.VisionResult, error) {
	v.calls++
	return v.result, v.err
}

func newStepSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession("resume text", "job description", "Acme")
	require.NoError(t, err)
	return s
}

func TestResearcherFallbackWithoutSearch(t *testing.T) {
	llm := agent.NewMockLLMClient(nil, nil)
	r := NewResearcher(llm, nil, 3)
	s := newStepSession(t)

	r.Run(context.Background(), s)

	assert.Contains(t, s.CompanyIntel, "Acme values innovation")
	assert.Zero(t, llm.CallCount(), "no synthesis call without search results")
}

func TestResearcherFallbackOnSearchError(t *testing.T) {
	llm := agent.NewMockLLMClient(nil, nil)
	r := NewResearcher(llm, &stubSearch{err: errors.New("rate limited")}, 3)
	s := newStepSession(t)

	r.Run(context.Background(), s)

	assert.Contains(t, s.CompanyIntel, "Acme values innovation")
	assert.Zero(t, llm.CallCount())
}

func TestResearcherFallbackOnEmptyResults(t *testing.T) {
	llm := agent.NewMockLLMClient(nil, nil)
	r := NewResearcher(llm, &stubSearch{}, 3)
	s := newStepSession(t)

	r.Run(context.Background(), s)

	assert.Contains(t, s.CompanyIntel, "Acme values innovation")
}

func TestResearcherSynthesizesResults(t *testing.T) {
	llm := agent.NewMockLLMClient([]agent.CompletionResponse{
		{Content: "Acme runs deep systems-design interviews and prizes ownership."},
	}, nil)
	stub := &stubSearch{results: []search.Result{
		{Title: "Interviewing at Acme", URL: "https://example.com", Content: "Expect systems design rounds."},
	}}
	r := NewResearcher(llm, stub, 3)
	s := newStepSession(t)

	r.Run(context.Background(), s)

	assert.Equal(t, "Acme runs deep systems-design interviews and prizes ownership.", s.CompanyIntel)
	require.Len(t, stub.queries, 1)
	assert.Contains(t, stub.queries[0], "Acme")
}

func TestResearcherFallbackOnSynthesisFailure(t *testing.T) {
	llm := agent.NewMockLLMClient(nil, errors.New("provider down"))
	r := NewResearcher(llm, &stubSearch{results: []search.Result{{Content: "stuff"}}}, 3)
	s := newStepSession(t)

	r.Run(context.Background(), s)

	assert.Contains(t, s.CompanyIntel, "Acme values innovation")
}

func TestStrategistRequiresProfile(t *testing.T) {
	st := NewStrategist(agent.NewMockLLMClient(nil, nil))
	s := newStepSession(t)

	err := st.Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a candidate profile")
}

func TestStrategistSetsPersona(t *testing.T) {
	st := NewStrategist(agent.NewMockLLMClient([]agent.CompletionResponse{
		{Content: "Adopt a challenging persona and probe the Kubernetes gap early."},
	}, nil))
	s := newStepSession(t)
	s.Profile = &ProfileAnalysis{ExperienceLevel: "senior"}

	require.NoError(t, st.Run(context.Background(), s))
	assert.Equal(t, PersonaChallenging, s.Persona)
	assert.NotEmpty(t, s.Strategy)
}

func TestDetectPersona(t *testing.T) {
	tests := []struct {
		plan string
		want Persona
	}{
		{"Be Supportive and encouraging throughout.", PersonaSupportive},
		{"A challenging, pressure-heavy approach.", PersonaChallenging},
		{"Mix supportive warmth with challenging probes.", PersonaSupportive},
		{"Standard question sequence.", PersonaNeutral},
		{"", PersonaNeutral},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, detectPersona(tt.plan), "plan=%q", tt.plan)
	}
}

func TestCriticSkipsWithoutAnswer(t *testing.T) {
	llm := agent.NewMockLLMClient(nil, nil)
	c := NewCritic(llm)
	s := newStepSession(t)

	require.NoError(t, c.Evaluate(context.Background(), s))
	assert.Empty(t, s.FeedbackLog)
	assert.Zero(t, llm.CallCount())
}

func TestCriticAppendsEvaluation(t *testing.T) {
	c := NewCritic(agent.NewMockLLMClient([]agent.CompletionResponse{evalResp(7)}, nil))
	s := newStepSession(t)
	s.AppendQuestion("Describe a production incident you handled.")
	s.AppendAnswer("We had a cache stampede; I added request coalescing.")

	require.NoError(t, c.Evaluate(context.Background(), s))
	require.Len(t, s.FeedbackLog, 1)
	assert.Equal(t, 7, s.FeedbackLog[0].Score)
	assert.Equal(t, "confident", s.FeedbackLog[0].Sentiment)
}

func TestCriticRejectsMalformedScore(t *testing.T) {
	c := NewCritic(agent.NewMockLLMClient([]agent.CompletionResponse{
		{Content: `{"score": 12, "strengths": "", "weaknesses": "", "tip": "", "sentiment": ""}`},
	}, nil))
	s := newStepSession(t)
	s.AppendQuestion("Q")
	s.AppendAnswer("A")

	err := c.Evaluate(context.Background(), s)
	require.Error(t, err)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Empty(t, s.FeedbackLog)
}

func TestInterviewerAskIncrementsCount(t *testing.T) {
	pack, err := prompts.Load()
	require.NoError(t, err)

	iv := NewInterviewer(agent.NewMockLLMClient([]agent.CompletionResponse{
		{Content: "Walk me through your most complex migration."},
	}, nil), pack)
	s := newStepSession(t)

	require.NoError(t, iv.Ask(context.Background(), s))
	assert.Equal(t, 1, s.QuestionCount)
	assert.Equal(t, "Walk me through your most complex migration.", s.CurrentQuestion)
	assert.Len(t, s.History, 1)
}

func TestInterviewerPushbackHoldsCount(t *testing.T) {
	pack, err := prompts.Load()
	require.NoError(t, err)

	llm := agent.NewMockLLMClient([]agent.CompletionResponse{
		{Content: "You mentioned a migration but gave no numbers. What was the actual downtime?"},
	}, nil)
	iv := NewInterviewer(llm, pack)
	s := newStepSession(t)
	s.QuestionCount = 3
	s.AppendQuestion("Tell me about a migration.")
	s.AppendAnswer("It went fine.")
	s.FeedbackLog = append(s.FeedbackLog, AnswerEvaluation{Score: 2, Weaknesses: "no specifics"})
	s.PushbackCount = 1

	require.NoError(t, iv.Pushback(context.Background(), s))
	assert.Equal(t, 3, s.QuestionCount)
	assert.Contains(t, s.CurrentQuestion, "actual downtime")

	// The rephrasing carries the prior exchange and the escalation directive
	require.Len(t, llm.Calls, 1)
	prompt := llm.Calls[0].Messages[0].Content
	assert.Contains(t, prompt, "Tell me about a migration.")
	assert.Contains(t, prompt, "no specifics")
}

func TestInterviewerPushbackRequiresEvaluation(t *testing.T) {
	pack, err := prompts.Load()
	require.NoError(t, err)

	iv := NewInterviewer(agent.NewMockLLMClient(nil, nil), pack)
	s := newStepSession(t)

	err = iv.Pushback(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a prior evaluation")
}

func TestInterviewerRejectsEmptyQuestion(t *testing.T) {
	pack, err := prompts.Load()
	require.NoError(t, err)

	iv := NewInterviewer(agent.NewMockLLMClient([]agent.CompletionResponse{{Content: "  "}}, nil), pack)
	s := newStepSession(t)

	err = iv.Ask(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty output")
	assert.Zero(t, s.QuestionCount)
}

func TestReporterIdempotent(t *testing.T) {
	llm := agent.NewMockLLMClient([]agent.CompletionResponse{{Content: "Narrative."}}, nil)
	r := NewReporter(llm)
	s := newStepSession(t)
	s.FeedbackLog = append(s.FeedbackLog, AnswerEvaluation{Score: 6, Strengths: "calm"})

	r.Run(context.Background(), s)
	first := s.FinalReport
	require.NotEmpty(t, first)

	r.Run(context.Background(), s)
	assert.Equal(t, first, s.FinalReport)
	assert.Equal(t, 1, llm.CallCount())
}

func TestReporterRecapSurvivesNarrativeFailure(t *testing.T) {
	r := NewReporter(agent.NewMockLLMClient(nil, errors.New("provider down")))
	s := newStepSession(t)
	s.FeedbackLog = append(s.FeedbackLog,
		AnswerEvaluation{Score: 6, Strengths: "calm", Weaknesses: "vague", Tip: "add metrics"},
		AnswerEvaluation{Score: 4},
	)
	s.VisionLog = append(s.VisionLog, VisionEntry{QuestionNum: 1, Description: "steady eye contact"})
	s.FailedTopics = append(s.FailedTopics, "Explain the CAP theorem")

	r.Run(context.Background(), s)

	assert.Contains(t, s.FinalReport, "## Score: 5.0/10")
	assert.Contains(t, s.FinalReport, "### Question 1 - Score: 6/10")
	assert.Contains(t, s.FinalReport, "**Coaching Tip:** add metrics")
	assert.Contains(t, s.FinalReport, "**Strengths:** N/A")
	assert.Contains(t, s.FinalReport, "**Body Language:** steady eye contact")
	assert.Contains(t, s.FinalReport, "## Abandoned Topics")
	assert.Contains(t, s.FinalReport, "- Explain the CAP theorem...")
}

func TestVisionCoachDisabled(t *testing.T) {
	v := NewVisionCoach(nil, 0)
	s := newStepSession(t)

	assert.False(t, v.Enabled())
	v.Observe(context.Background(), s, []byte{0xff, 0xd8})
	assert.Empty(t, s.VisionLog)
}

func TestVisionCoachSkipsEmptyFrame(t *testing.T) {
	stub := &stubVision{}
	v := NewVisionCoach(stub, 0)
	s := newStepSession(t)

	v.Observe(context.Background(), s, nil)
	assert.Zero(t, stub.calls)
	assert.Empty(t, s.VisionLog)
}

func TestVisionCoachRecordsObservation(t *testing.T) {
	stub := &stubVision{result: agent.VisionResult{
		Confidence:  7,
		Engagement:  8,
		Description: "leaning forward, engaged",
		Tip:         "slow down",
	}}
	v := NewVisionCoach(stub, 0)
	s := newStepSession(t)
	s.QuestionCount = 4

	v.Observe(context.Background(), s, []byte{0xff, 0xd8})

	require.Len(t, s.VisionLog, 1)
	entry := s.VisionLog[0]
	assert.Equal(t, 4, entry.QuestionNum)
	assert.Equal(t, 7, entry.Confidence)
	assert.Equal(t, "leaning forward, engaged", entry.Description)
}

func TestVisionCoachDropsFailures(t *testing.T) {
	stub := &stubVision{err: errors.New("model refused")}
	v := NewVisionCoach(stub, 0)
	s := newStepSession(t)

	v.Observe(context.Background(), s, []byte{0xff, 0xd8})
	assert.Equal(t, 1, stub.calls)
	assert.Empty(t, s.VisionLog)
}
