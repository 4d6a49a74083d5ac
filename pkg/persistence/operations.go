package persistence

import (
	"database/sql"
	"errors"
	"fmt"
)

// Request represents a database operation request.
// This is the interface between the interview driver and the database worker.
type Request struct {
	Data      interface{}        `json:"data"`      // Operation-specific data payload
	Response  chan<- interface{} `json:"-"`         // Response channel for queries (nil for fire-and-forget writes)
	Operation string             `json:"operation"` // Operation type
}

// Operation constants for Request.
const (
	// Write operations (fire-and-forget).
	OpInsertSession = "insert_session"
	OpInsertQALog   = "insert_qa_log"
	OpUpsertProfile = "upsert_profile"
	OpEndSession    = "end_session"

	// Query operations (with response).
	OpGetSession     = "get_session"
	OpGetTranscript  = "get_transcript"
	OpGetSessionList = "get_session_list"
)

// DatabaseOperations provides methods for database operations.
// This is used by the database worker goroutine.
type DatabaseOperations struct {
	db *sql.DB
}

// NewDatabaseOperations creates a new DatabaseOperations instance.
func NewDatabaseOperations(db *sql.DB) *DatabaseOperations {
	return &DatabaseOperations{db: db}
}

// InsertSession inserts a new session record.
func (ops *DatabaseOperations) InsertSession(rec *SessionRecord) error {
	query := `
		INSERT INTO sessions (
			id, candidate_name, company, role, persona, start_time,
			resume_length, total_questions, prompt_tokens, completion_tokens
		) VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, 0)
	`
	_, err := ops.db.Exec(query,
		rec.ID, rec.CandidateName, rec.Company, rec.Role, rec.Persona,
		rec.StartTime, rec.ResumeLength)
	if err != nil {
		return fmt.Errorf("failed to insert session %s: %w", rec.ID, err)
	}
	return nil
}

// InsertQALog appends one transcript row and refreshes the session's
// question count. Pushback exchanges are logged without advancing the count.
func (ops *DatabaseOperations) InsertQALog(rec *QARecord) error {
	query := `
		INSERT INTO qa_logs (
			session_id, question_number, stage, question, answer, answer_length,
			critic_score, critic_strengths, critic_weaknesses, critic_tip,
			sentiment, is_pushback, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := ops.db.Exec(query,
		rec.SessionID, rec.QuestionNumber, rec.Stage, rec.Question, rec.Answer,
		rec.AnswerLength, rec.CriticScore, rec.CriticStrengths, rec.CriticWeaknesses,
		rec.CriticTip, rec.Sentiment, rec.IsPushback, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert qa log for session %s: %w", rec.SessionID, err)
	}

	_, err = ops.db.Exec("UPDATE sessions SET total_questions = ? WHERE id = ?",
		rec.QuestionNumber, rec.SessionID)
	if err != nil {
		return fmt.Errorf("failed to update question count for session %s: %w", rec.SessionID, err)
	}
	return nil
}

// UpsertProfile inserts or replaces the profile analysis for a session.
func (ops *DatabaseOperations) UpsertProfile(rec *ProfileRecord) error {
	query := `
		INSERT INTO profile_analysis (
			session_id, matched_skills, missing_skills, strengths, weaknesses,
			experience_level, red_flags
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			matched_skills = excluded.matched_skills,
			missing_skills = excluded.missing_skills,
			strengths = excluded.strengths,
			weaknesses = excluded.weaknesses,
			experience_level = excluded.experience_level,
			red_flags = excluded.red_flags
	`
	_, err := ops.db.Exec(query,
		rec.SessionID, rec.MatchedSkills, rec.MissingSkills, rec.Strengths,
		rec.Weaknesses, rec.ExperienceLevel, rec.RedFlags)
	if err != nil {
		return fmt.Errorf("failed to upsert profile for session %s: %w", rec.SessionID, err)
	}
	return nil
}

// EndSession records the final outcome for a session.
func (ops *DatabaseOperations) EndSession(end *SessionEnd) error {
	query := `
		UPDATE sessions SET
			end_time = ?,
			overall_score = ?,
			final_verdict = ?,
			early_termination = ?,
			prompt_tokens = ?,
			completion_tokens = ?
		WHERE id = ?
	`
	result, err := ops.db.Exec(query,
		end.Timestamp, end.OverallScore, end.FinalVerdict, end.EarlyTermination,
		end.PromptTokens, end.CompletionTokens, end.SessionID)
	if err != nil {
		return fmt.Errorf("failed to end session %s: %w", end.SessionID, err)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return fmt.Errorf("session %s not found", end.SessionID)
	}
	return nil
}

// GetSession retrieves one session record by ID.
func (ops *DatabaseOperations) GetSession(sessionID string) (*SessionRecord, error) {
	query := `
		SELECT id, candidate_name, company, role, persona, start_time, end_time,
			overall_score, final_verdict, resume_length, total_questions,
			early_termination, prompt_tokens, completion_tokens
		FROM sessions WHERE id = ?
	`
	rec := &SessionRecord{}
	var endTime sql.NullTime
	var overallScore sql.NullFloat64
	var verdict, earlyTermination sql.NullString

	err := ops.db.QueryRow(query, sessionID).Scan(
		&rec.ID, &rec.CandidateName, &rec.Company, &rec.Role, &rec.Persona,
		&rec.StartTime, &endTime, &overallScore, &verdict, &rec.ResumeLength,
		&rec.TotalQuestions, &earlyTermination, &rec.PromptTokens, &rec.CompletionTokens)
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", sessionID, err)
	}

	if endTime.Valid {
		rec.EndTime = &endTime.Time
	}
	if overallScore.Valid {
		rec.OverallScore = &overallScore.Float64
	}
	rec.FinalVerdict = verdict.String
	rec.EarlyTermination = earlyTermination.String
	return rec, nil
}

// GetTranscript retrieves all transcript rows for a session in order.
func (ops *DatabaseOperations) GetTranscript(sessionID string) ([]*QARecord, error) {
	query := `
		SELECT session_id, question_number, stage, question, answer, answer_length,
			critic_score, critic_strengths, critic_weaknesses, critic_tip,
			sentiment, is_pushback, created_at
		FROM qa_logs WHERE session_id = ? ORDER BY id ASC
	`
	rows, err := ops.db.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcript for session %s: %w", sessionID, err)
	}
	defer func() { _ = rows.Close() }()

	var records []*QARecord
	for rows.Next() {
		rec := &QARecord{}
		var strengths, weaknesses, tip, sentiment sql.NullString
		if err := rows.Scan(
			&rec.SessionID, &rec.QuestionNumber, &rec.Stage, &rec.Question,
			&rec.Answer, &rec.AnswerLength, &rec.CriticScore, &strengths,
			&weaknesses, &tip, &sentiment, &rec.IsPushback, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan qa log row: %w", err)
		}
		rec.CriticStrengths = strengths.String
		rec.CriticWeaknesses = weaknesses.String
		rec.CriticTip = tip.String
		rec.Sentiment = sentiment.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transcript rows: %w", err)
	}
	return records, nil
}

// GetProfile retrieves the profile analysis for a session, nil when none
// was persisted.
func (ops *DatabaseOperations) GetProfile(sessionID string) (*ProfileRecord, error) {
	query := `
		SELECT session_id, matched_skills, missing_skills, strengths, weaknesses,
			experience_level, red_flags
		FROM profile_analysis WHERE session_id = ?
	`
	rec := &ProfileRecord{}
	err := ops.db.QueryRow(query, sessionID).Scan(
		&rec.SessionID, &rec.MatchedSkills, &rec.MissingSkills, &rec.Strengths,
		&rec.Weaknesses, &rec.ExperienceLevel, &rec.RedFlags)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile for session %s: %w", sessionID, err)
	}
	return rec, nil
}

// GetSessionStats aggregates transcript numbers for one session.
func (ops *DatabaseOperations) GetSessionStats(sessionID string) (*SessionStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(is_pushback), 0),
			COALESCE(AVG(critic_score), 0),
			COALESCE(MIN(critic_score), 0),
			COALESCE(MAX(critic_score), 0)
		FROM qa_logs WHERE session_id = ?
	`
	stats := &SessionStats{SessionID: sessionID}
	err := ops.db.QueryRow(query, sessionID).Scan(
		&stats.TotalAnswers, &stats.Pushbacks, &stats.AverageScore,
		&stats.LowestScore, &stats.HighestScore)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats for session %s: %w", sessionID, err)
	}

	err = ops.db.QueryRow("SELECT total_questions FROM sessions WHERE id = ?", sessionID).
		Scan(&stats.TotalQuestions)
	if err != nil {
		return nil, fmt.Errorf("failed to get question count for session %s: %w", sessionID, err)
	}
	return stats, nil
}

// ListSessions returns session records ordered by start time, newest first.
func (ops *DatabaseOperations) ListSessions(limit int) ([]*SessionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, candidate_name, company, role, persona, start_time, end_time,
			overall_score, final_verdict, resume_length, total_questions,
			early_termination, prompt_tokens, completion_tokens
		FROM sessions ORDER BY start_time DESC LIMIT ?
	`
	rows, err := ops.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*SessionRecord
	for rows.Next() {
		rec := &SessionRecord{}
		var endTime sql.NullTime
		var overallScore sql.NullFloat64
		var verdict, earlyTermination sql.NullString
		if err := rows.Scan(
			&rec.ID, &rec.CandidateName, &rec.Company, &rec.Role, &rec.Persona,
			&rec.StartTime, &endTime, &overallScore, &verdict, &rec.ResumeLength,
			&rec.TotalQuestions, &earlyTermination, &rec.PromptTokens,
			&rec.CompletionTokens); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		if endTime.Valid {
			rec.EndTime = &endTime.Time
		}
		if overallScore.Valid {
			rec.OverallScore = &overallScore.Float64
		}
		rec.FinalVerdict = verdict.String
		rec.EarlyTermination = earlyTermination.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session rows: %w", err)
	}
	return records, nil
}
