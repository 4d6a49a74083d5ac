package interview

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage is the interview phase governing question style. Monotonic except
// it can jump directly to StageComplete early.
type Stage string

const (
	StageIntro      Stage = "intro"
	StageTechnical  Stage = "technical"
	StageBehavioral Stage = "behavioral"
	StageClosing    Stage = "closing"
	StageComplete   Stage = "complete"
)

// Persona is the tone the question-generation step adopts.
type Persona string

const (
	PersonaSupportive  Persona = "supportive"
	PersonaNeutral     Persona = "neutral"
	PersonaChallenging Persona = "challenging"
)

// Role identifies the speaker of a conversation turn.
type Role string

const (
	RoleInterviewer Role = "interviewer"
	RoleCandidate   Role = "candidate"
)

// Turn is one entry in the append-only conversation history.
type Turn struct {
	At   time.Time `json:"at"`
	Role Role      `json:"role"`
	Text string    `json:"text"`
}

// VisionEntry is one non-verbal observation on the optional side channel.
// Never consulted by stage or termination decisions.
type VisionEntry struct {
	QuestionNum int    `json:"question_num"`
	Confidence  int    `json:"confidence"`
	Engagement  int    `json:"engagement"`
	Description string `json:"description"`
	Tip         string `json:"tip,omitempty"`
}

// Session is the single mutable aggregate threaded through every step.
// It is exclusively owned by one driver for its lifetime and is not safe
// for concurrent mutation.
//
//nolint:govet // struct alignment optimization not critical for this type
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Immutable inputs, set once at session creation.
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description"`
	CompanyName    string `json:"company_name"`

	// Preparation phase outputs.
	Profile      *ProfileAnalysis `json:"profile_analysis,omitempty"`
	CompanyIntel string           `json:"company_intel,omitempty"`
	Strategy     string           `json:"question_strategy,omitempty"`
	Persona      Persona          `json:"interviewer_persona"`

	// Conversation loop.
	Stage           Stage              `json:"interview_stage"`
	History         []Turn             `json:"conversation_history"`
	CurrentQuestion string             `json:"current_question,omitempty"`
	CurrentAnswer   string             `json:"current_answer,omitempty"`
	FeedbackLog     []AnswerEvaluation `json:"feedback_log"`
	QuestionCount   int                `json:"question_count"`
	PushbackCount   int                `json:"pushback_count"`
	TotalPushbacks  int                `json:"total_pushbacks"`
	FailedTopics    []string           `json:"failed_topics,omitempty"`

	// Optional side channel.
	VisionLog []VisionEntry `json:"vision_feedback_log,omitempty"`

	// Terminal outputs.
	FinalReport            string `json:"final_report,omitempty"`
	EarlyTerminationReason string `json:"early_termination_reason,omitempty"`
}

// NewSession validates the immutable inputs and creates a fresh session
// in the intro stage with a neutral persona.
func NewSession(resumeText, jobDescription, companyName string) (*Session, error) {
	if resumeText == "" {
		return nil, fmt.Errorf("resume text is required: provide the candidate's resume before starting")
	}
	if jobDescription == "" {
		return nil, fmt.Errorf("job description is required: provide the role's job description before starting")
	}
	if companyName == "" {
		return nil, fmt.Errorf("company name is required: provide the target company before starting")
	}

	return &Session{
		ID:             uuid.New().String(),
		CreatedAt:      time.Now().UTC(),
		ResumeText:     resumeText,
		JobDescription: jobDescription,
		CompanyName:    companyName,
		Persona:        PersonaNeutral,
		Stage:          StageIntro,
	}, nil
}

// AppendQuestion records a question as the live exchange. Pushback
// rephrasings replace the live question without creating a second one.
func (s *Session) AppendQuestion(text string) {
	s.History = append(s.History, Turn{At: time.Now().UTC(), Role: RoleInterviewer, Text: text})
	s.CurrentQuestion = text
	s.CurrentAnswer = ""
}

// AppendAnswer records the candidate's response to the live question.
func (s *Session) AppendAnswer(text string) {
	s.History = append(s.History, Turn{At: time.Now().UTC(), Role: RoleCandidate, Text: text})
	s.CurrentAnswer = text
}

// LastScore returns the most recent evaluation score, false when no
// answer has been evaluated yet.
func (s *Session) LastScore() (int, bool) {
	if len(s.FeedbackLog) == 0 {
		return 0, false
	}
	return s.FeedbackLog[len(s.FeedbackLog)-1].Score, true
}

// LastEvaluation returns the most recent evaluation, nil when none exists.
func (s *Session) LastEvaluation() *AnswerEvaluation {
	if len(s.FeedbackLog) == 0 {
		return nil
	}
	return &s.FeedbackLog[len(s.FeedbackLog)-1]
}

// AverageScore returns the mean of all evaluation scores, 0 for an empty log.
func (s *Session) AverageScore() float64 {
	if len(s.FeedbackLog) == 0 {
		return 0
	}
	total := 0
	for _, eval := range s.FeedbackLog {
		total += eval.Score
	}
	return float64(total) / float64(len(s.FeedbackLog))
}

// RecentAverage returns the mean of the last n scores, false when fewer
// than n evaluations exist.
func (s *Session) RecentAverage(n int) (float64, bool) {
	if n <= 0 || len(s.FeedbackLog) < n {
		return 0, false
	}
	total := 0
	for _, eval := range s.FeedbackLog[len(s.FeedbackLog)-n:] {
		total += eval.Score
	}
	return float64(total) / float64(n), true
}

// Complete reports whether the session has reached the terminal stage.
func (s *Session) Complete() bool {
	return s.Stage == StageComplete
}

// Terminate forces the session to the terminal stage with the given
// reason. The next decision evaluation routes to termination; no further
// question or evaluate steps execute.
func (s *Session) Terminate(reason string) {
	s.Stage = StageComplete
	if reason != "" && s.EarlyTerminationReason == "" {
		s.EarlyTerminationReason = reason
	}
}
