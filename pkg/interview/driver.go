package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"interviewsim/pkg/agent"
	"interviewsim/pkg/logx"
	"interviewsim/pkg/metrics"
	"interviewsim/pkg/persistence"
	"interviewsim/pkg/prompts"
	"interviewsim/pkg/search"
	"interviewsim/pkg/state"
	"interviewsim/pkg/tokens"
)

// Deps carries the capability ports and supporting infrastructure the
// driver needs. The two LLM ports are required; everything else is
// optional and degrades gracefully when absent.
type Deps struct {
	InterviewerLLM agent.LLMClient // conversational model, required
	JudgeLLM       agent.LLMClient // strict judgment model, required
	Vision         agent.VisionClient
	Search         search.Client
	Prompts        *prompts.Pack
	PersistCh      chan<- *persistence.Request
	Snapshots      *state.Store
	Recorder       *metrics.Recorder
	TokenCounter   *tokens.Counter

	// CandidateName labels the session in persisted records. Optional.
	CandidateName string

	SearchMaxResults int
	VisionTimeout    time.Duration
}

// Driver owns one interview session and sequences the agent steps
// according to the decision function. It runs a single logical thread of
// control: steps execute strictly sequentially, and the driver is not
// safe for concurrent use. Independent sessions get independent drivers.
type Driver struct {
	session *Session
	machine *agent.StateMachine

	profiler    *Profiler
	researcher  *Researcher
	strategist  *Strategist
	interviewer *Interviewer
	critic      *Critic
	reporter    *Reporter
	vision      *VisionCoach

	persistCh chan<- *persistence.Request
	snapshots *state.Store
	recorder  *metrics.Recorder
	usage     *tokens.Usage

	candidateName string
	ended         bool
	logger        *logx.Logger
}

// NewDriver validates the configured ports and assembles the step
// functions. A missing generation capability is a startup precondition
// failure: the session must not start.
func NewDriver(deps Deps) (*Driver, error) {
	if deps.InterviewerLLM == nil {
		return nil, fmt.Errorf("no interviewer model configured: configure a provider before starting a session")
	}
	if deps.JudgeLLM == nil {
		return nil, fmt.Errorf("no judge model configured: configure a provider before starting a session")
	}

	pack := deps.Prompts
	if pack == nil {
		var err error
		pack, err = prompts.Load()
		if err != nil {
			return nil, err
		}
	}

	candidateName := deps.CandidateName
	if candidateName == "" {
		candidateName = "candidate"
	}

	usage := tokens.NewUsage()
	measure := func(inner agent.LLMClient, agentName string) agent.LLMClient {
		return newMeasuredClient(inner, agentName, deps.Recorder, deps.TokenCounter, usage)
	}

	return &Driver{
		profiler:    NewProfiler(measure(deps.JudgeLLM, "profiler")),
		researcher:  NewResearcher(measure(deps.JudgeLLM, "researcher"), deps.Search, deps.SearchMaxResults),
		strategist:  NewStrategist(measure(deps.JudgeLLM, "strategist")),
		interviewer: NewInterviewer(measure(deps.InterviewerLLM, "interviewer"), pack),
		critic:      NewCritic(measure(deps.JudgeLLM, "critic")),
		reporter:    NewReporter(measure(deps.JudgeLLM, "reporter")),
		vision:      NewVisionCoach(deps.Vision, deps.VisionTimeout),
		persistCh:   deps.PersistCh,
		snapshots:   deps.Snapshots,
		recorder:    deps.Recorder,
		usage:       usage,

		candidateName: candidateName,
		logger:        logx.NewLogger("driver"),
	}, nil
}

// Session returns the session owned by this driver, nil before BeginSession.
func (d *Driver) Session() *Session {
	return d.session
}

// ControlState returns the driver's current control state.
func (d *Driver) ControlState() agent.State {
	if d.machine == nil {
		return ""
	}
	return d.machine.CurrentState()
}

// Usage returns the accumulated token usage for this session.
func (d *Driver) Usage() *tokens.Usage {
	return d.usage
}

// BeginSession runs the preparation phase synchronously: profile,
// research, strategize, and the first question. A profile failure aborts
// the session; research degrades to fallback intel.
func (d *Driver) BeginSession(ctx context.Context, resumeText, jobDescription, companyName string) (*Session, error) {
	if d.session != nil {
		return nil, fmt.Errorf("driver already owns session %s", d.session.ID)
	}

	s, err := NewSession(resumeText, jobDescription, companyName)
	if err != nil {
		return nil, err
	}
	d.session = s
	d.machine = agent.NewStateMachine(s.ID, StatePreparing, ControlTransitions())

	if d.recorder != nil {
		d.recorder.IncSession()
	}
	persistence.PersistSession(&persistence.SessionRecord{
		ID:            s.ID,
		CandidateName: d.candidateName,
		Company:       s.CompanyName,
		Role:          jobTitle(jobDescription),
		Persona:       string(s.Persona),
		StartTime:     s.CreatedAt,
		ResumeLength:  len(s.ResumeText),
	}, d.persistCh)

	if err := d.profiler.Run(ctx, s); err != nil {
		d.fail(ctx, "profile failed")
		return nil, err
	}
	d.persistProfile(s)

	d.researcher.Run(ctx, s)

	if err := d.strategist.Run(ctx, s); err != nil {
		d.fail(ctx, "strategy failed")
		return nil, err
	}

	if err := d.interviewer.Ask(ctx, s); err != nil {
		d.fail(ctx, "first question failed")
		return nil, err
	}

	if err := d.machine.TransitionTo(ctx, StateAwaitingAnswer, "preparation complete"); err != nil {
		return nil, err
	}
	d.snapshot()
	return s, nil
}

// SubmitAnswer processes one candidate answer: evaluate, decide, then
// pushback, next question, or terminate with the final report. Returns
// the updated session; when terminal, FinalReport is populated.
func (d *Driver) SubmitAnswer(ctx context.Context, answerText string) (*Session, error) {
	return d.SubmitAnswerWithFrame(ctx, answerText, nil)
}

// SubmitAnswerWithFrame is SubmitAnswer plus an optional webcam frame for
// the non-verbal side channel.
func (d *Driver) SubmitAnswerWithFrame(ctx context.Context, answerText string, frameJPEG []byte) (*Session, error) {
	s := d.session
	if s == nil {
		return nil, fmt.Errorf("no active session: call BeginSession first")
	}
	if d.machine.CurrentState() != StateAwaitingAnswer {
		return nil, fmt.Errorf("session %s is not awaiting an answer (state %s)", s.ID, d.machine.CurrentState())
	}
	if answerText == "" {
		return nil, fmt.Errorf("answer text is required: provide the candidate's answer")
	}

	s.AppendAnswer(answerText)
	answeringPushback := s.PushbackCount > 0

	d.vision.Observe(ctx, s, frameJPEG)

	if err := d.machine.TransitionTo(ctx, StateEvaluating, "answer received"); err != nil {
		return nil, err
	}
	if err := d.critic.Evaluate(ctx, s); err != nil {
		d.fail(ctx, "evaluation failed")
		return nil, err
	}

	if eval := s.LastEvaluation(); eval != nil {
		if d.recorder != nil {
			d.recorder.ObserveScore(eval.Score)
		}
		d.persistExchange(s, eval, answeringPushback)
	}

	if err := d.machine.TransitionTo(ctx, StateDeciding, "answer evaluated"); err != nil {
		return nil, err
	}

	ClassifyStage(s)
	decision := Decide(s)
	d.logger.Info("Decision after answer: %s (stage=%s, q=%d, pushback=%d)",
		decision, s.Stage, s.QuestionCount, s.PushbackCount)

	switch decision {
	case DecidePushback:
		if d.recorder != nil {
			d.recorder.IncPushback()
		}
		if err := d.machine.TransitionTo(ctx, StatePushback, "answer critically weak"); err != nil {
			return nil, err
		}
		if err := d.interviewer.Pushback(ctx, s); err != nil {
			d.fail(ctx, "pushback generation failed")
			return nil, err
		}
		if err := d.machine.TransitionTo(ctx, StateAwaitingAnswer, "pushback issued"); err != nil {
			return nil, err
		}

	case DecideTerminate:
		if err := d.terminate(ctx); err != nil {
			return nil, err
		}

	case DecideAskNext:
		if err := d.interviewer.Ask(ctx, s); err != nil {
			d.fail(ctx, "question generation failed")
			return nil, err
		}
		if err := d.machine.TransitionTo(ctx, StateAwaitingAnswer, "next question asked"); err != nil {
			return nil, err
		}
	}

	d.snapshot()
	return s, nil
}

// FinalizeReport idempotently ensures the final report is populated,
// whether or not the decision function already triggered it. Callable
// from any control state, including after an abort.
func (d *Driver) FinalizeReport(ctx context.Context) (*Session, error) {
	s := d.session
	if s == nil {
		return nil, fmt.Errorf("no active session: call BeginSession first")
	}

	if s.FinalReport == "" {
		if current := d.machine.CurrentState(); current != StateReporting && current != StateDone {
			if err := d.machine.TransitionTo(ctx, StateReporting, "report requested"); err != nil {
				return nil, err
			}
		}
		d.reporter.Run(ctx, s)
		s.Stage = StageComplete
		d.finish()
		if d.machine.CurrentState() == StateReporting {
			if err := d.machine.TransitionTo(ctx, StateDone, "report generated"); err != nil {
				return nil, err
			}
		}
		d.snapshot()
	}
	return s, nil
}

// Abort externally terminates the session: the next decision evaluation
// routes to termination and no further question or evaluate steps run.
func (d *Driver) Abort(reason string) {
	if d.session != nil {
		d.session.Terminate(reason)
	}
}

func (d *Driver) terminate(ctx context.Context) error {
	s := d.session
	s.Stage = StageComplete

	if err := d.machine.TransitionTo(ctx, StateReporting, "session terminating"); err != nil {
		return err
	}
	d.reporter.Run(ctx, s)
	d.finish()
	return d.machine.TransitionTo(ctx, StateDone, "report generated")
}

// finish records the terminal outcome exactly once.
func (d *Driver) finish() {
	if d.ended {
		return
	}
	d.ended = true

	s := d.session
	avg := s.AverageScore()

	if d.recorder != nil {
		d.recorder.IncTermination(terminationReason(s))
	}

	promptTokens, completionTokens, _ := d.usage.Totals()
	persistence.PersistSessionEnd(&persistence.SessionEnd{
		Timestamp:        time.Now().UTC(),
		SessionID:        s.ID,
		OverallScore:     avg,
		FinalVerdict:     verdictFor(avg),
		EarlyTermination: s.EarlyTerminationReason,
		PromptTokens:     int64(promptTokens),
		CompletionTokens: int64(completionTokens),
	}, d.persistCh)
}

// fail moves the machine to the error state; the session can still be
// finalized into a recap-only report from there.
func (d *Driver) fail(ctx context.Context, reason string) {
	if err := d.machine.TransitionTo(ctx, StateError, reason); err != nil {
		d.logger.Warn("Failed to enter error state: %v", err)
	}
}

func (d *Driver) snapshot() {
	if d.snapshots == nil || d.session == nil {
		return
	}
	if err := d.snapshots.Save(d.session.ID, string(d.machine.CurrentState()), d.session); err != nil {
		d.logger.Warn("Snapshot save failed: %v", err)
	}
}

func (d *Driver) persistProfile(s *Session) {
	if s.Profile == nil {
		return
	}
	persistence.PersistProfile(&persistence.ProfileRecord{
		SessionID:       s.ID,
		MatchedSkills:   jsonList(s.Profile.MatchedSkills),
		MissingSkills:   jsonList(s.Profile.MissingSkills),
		Strengths:       jsonList(s.Profile.Strengths),
		Weaknesses:      jsonList(s.Profile.Weaknesses),
		ExperienceLevel: s.Profile.ExperienceLevel,
		RedFlags:        jsonList(s.Profile.RedFlags),
	}, d.persistCh)
}

func (d *Driver) persistExchange(s *Session, eval *AnswerEvaluation, isPushback bool) {
	persistence.PersistQALog(&persistence.QARecord{
		CreatedAt:        time.Now().UTC(),
		SessionID:        s.ID,
		QuestionNumber:   s.QuestionCount,
		Stage:            string(s.Stage),
		Question:         s.CurrentQuestion,
		Answer:           s.CurrentAnswer,
		AnswerLength:     len(s.CurrentAnswer),
		CriticScore:      eval.Score,
		CriticStrengths:  eval.Strengths,
		CriticWeaknesses: eval.Weaknesses,
		CriticTip:        eval.Tip,
		Sentiment:        eval.Sentiment,
		IsPushback:       isPushback,
	}, d.persistCh)
}

func terminationReason(s *Session) string {
	switch {
	case s.QuestionCount >= MaxQuestions:
		return "question_cap"
	case s.EarlyTerminationReason != "":
		return "low_performance"
	default:
		return "completed"
	}
}

// jobTitle takes the first line of the job description as the role label.
func jobTitle(jobDescription string) string {
	const maxTitle = 120
	for _, line := range strings.Split(jobDescription, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) > maxTitle {
			line = line[:maxTitle]
		}
		return line
	}
	return "unknown role"
}

func jsonList(items []string) string {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func verdictFor(avg float64) string {
	switch {
	case avg >= 7.5:
		return "Strong Hire"
	case avg >= 6:
		return "Hire"
	case avg >= 4.5:
		return "Borderline"
	default:
		return "No Hire"
	}
}
