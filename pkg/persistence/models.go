package persistence

import (
	"time"

	"github.com/google/uuid"
)

// SessionRecord represents one interview session row.
//
//nolint:govet // struct alignment optimization not critical for this type
type SessionRecord struct {
	StartTime        time.Time  `json:"start_time"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	ID               string     `json:"id"`
	CandidateName    string     `json:"candidate_name"`
	Company          string     `json:"company"`
	Role             string     `json:"role"`
	Persona          string     `json:"persona"`
	FinalVerdict     string     `json:"final_verdict,omitempty"`
	EarlyTermination string     `json:"early_termination,omitempty"`
	OverallScore     *float64   `json:"overall_score,omitempty"`
	ResumeLength     int        `json:"resume_length"`
	TotalQuestions   int        `json:"total_questions"`
	PromptTokens     int64      `json:"prompt_tokens"`
	CompletionTokens int64      `json:"completion_tokens"`
}

// QARecord represents one question/answer exchange in the transcript.
//
//nolint:govet // struct alignment optimization not critical for this type
type QARecord struct {
	CreatedAt        time.Time `json:"created_at"`
	SessionID        string    `json:"session_id"`
	Stage            string    `json:"stage"`
	Question         string    `json:"question"`
	Answer           string    `json:"answer"`
	CriticStrengths  string    `json:"critic_strengths,omitempty"`
	CriticWeaknesses string    `json:"critic_weaknesses,omitempty"`
	CriticTip        string    `json:"critic_tip,omitempty"`
	Sentiment        string    `json:"sentiment,omitempty"`
	QuestionNumber   int       `json:"question_number"`
	AnswerLength     int       `json:"answer_length"`
	CriticScore      int       `json:"critic_score"`
	IsPushback       bool      `json:"is_pushback"`
}

// ProfileRecord represents the profiler's resume analysis for a session.
// Skill and flag lists are stored as JSON arrays.
type ProfileRecord struct {
	SessionID       string `json:"session_id"`
	MatchedSkills   string `json:"matched_skills"`
	MissingSkills   string `json:"missing_skills"`
	Strengths       string `json:"strengths"`
	Weaknesses      string `json:"weaknesses"`
	ExperienceLevel string `json:"experience_level"`
	RedFlags        string `json:"red_flags"`
}

// SessionEnd carries the final outcome for a session.
type SessionEnd struct {
	Timestamp        time.Time `json:"timestamp"`
	SessionID        string    `json:"session_id"`
	FinalVerdict     string    `json:"final_verdict"`
	EarlyTermination string    `json:"early_termination,omitempty"`
	OverallScore     float64   `json:"overall_score"`
	PromptTokens     int64     `json:"prompt_tokens"`
	CompletionTokens int64     `json:"completion_tokens"`
}

// SessionStats aggregates transcript numbers for one session.
type SessionStats struct {
	SessionID      string  `json:"session_id"`
	TotalAnswers   int     `json:"total_answers"`
	Pushbacks      int     `json:"pushbacks"`
	AverageScore   float64 `json:"average_score"`
	LowestScore    int     `json:"lowest_score"`
	HighestScore   int     `json:"highest_score"`
	TotalQuestions int     `json:"total_questions"`
}

// GenerateSessionID generates a new UUID for a session.
func GenerateSessionID() string {
	return uuid.New().String()
}
