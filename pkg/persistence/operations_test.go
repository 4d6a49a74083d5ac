package persistence

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func insertTestSession(t *testing.T, ops *DatabaseOperations, id string) *SessionRecord {
	t.Helper()
	rec := &SessionRecord{
		ID:            id,
		CandidateName: "candidate",
		Company:       "Acme",
		Role:          "Staff Engineer",
		Persona:       "neutral",
		StartTime:     time.Now().UTC().Truncate(time.Second),
		ResumeLength:  1200,
	}
	require.NoError(t, ops.InsertSession(rec))
	return rec
}

func TestSchemaVersion(t *testing.T) {
	db := openTestDB(t)

	version, err := GetSchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)
}

func TestInsertAndGetSession(t *testing.T) {
	db := openTestDB(t)
	ops := NewDatabaseOperations(db)

	in := insertTestSession(t, ops, GenerateSessionID())

	out, err := ops.GetSession(in.ID)
	require.NoError(t, err)
	assert.Equal(t, in.CandidateName, out.CandidateName)
	assert.Equal(t, in.Company, out.Company)
	assert.Equal(t, in.ResumeLength, out.ResumeLength)
	assert.Nil(t, out.EndTime)
	assert.Nil(t, out.OverallScore)
	assert.Empty(t, out.FinalVerdict)
}

func TestInsertQALogUpdatesQuestionCount(t *testing.T) {
	db := openTestDB(t)
	ops := NewDatabaseOperations(db)
	session := insertTestSession(t, ops, GenerateSessionID())

	require.NoError(t, ops.InsertQALog(&QARecord{
		SessionID:      session.ID,
		QuestionNumber: 1,
		Stage:          "intro",
		Question:       "Walk me through your Go experience.",
		Answer:         "Five years of services work.",
		AnswerLength:   28,
		CriticScore:    7,
		Sentiment:      "confident",
		CreatedAt:      time.Now().UTC(),
	}))
	require.NoError(t, ops.InsertQALog(&QARecord{
		SessionID:      session.ID,
		QuestionNumber: 1,
		Stage:          "intro",
		Question:       "That was vague. Be specific.",
		Answer:         "We shipped a payments service.",
		CriticScore:    2,
		IsPushback:     true,
		CreatedAt:      time.Now().UTC(),
	}))

	transcript, err := ops.GetTranscript(session.ID)
	require.NoError(t, err)
	require.Len(t, transcript, 2)
	assert.False(t, transcript[0].IsPushback)
	assert.True(t, transcript[1].IsPushback)

	out, err := ops.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, out.TotalQuestions)
}

func TestUpsertProfile(t *testing.T) {
	db := openTestDB(t)
	ops := NewDatabaseOperations(db)
	session := insertTestSession(t, ops, GenerateSessionID())

	missing, err := ops.GetProfile(session.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, ops.UpsertProfile(&ProfileRecord{
		SessionID:       session.ID,
		MatchedSkills:   `["Go"]`,
		MissingSkills:   `["Kubernetes"]`,
		Strengths:       `["systems"]`,
		Weaknesses:      `["frontend"]`,
		ExperienceLevel: "mid",
		RedFlags:        `[]`,
	}))
	require.NoError(t, ops.UpsertProfile(&ProfileRecord{
		SessionID:       session.ID,
		MatchedSkills:   `["Go","SQL"]`,
		MissingSkills:   `[]`,
		Strengths:       `["systems"]`,
		Weaknesses:      `["frontend"]`,
		ExperienceLevel: "senior",
		RedFlags:        `[]`,
	}))

	out, err := ops.GetProfile(session.ID)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "senior", out.ExperienceLevel)
	assert.Equal(t, `["Go","SQL"]`, out.MatchedSkills)
}

func TestEndSession(t *testing.T) {
	db := openTestDB(t)
	ops := NewDatabaseOperations(db)
	session := insertTestSession(t, ops, GenerateSessionID())

	require.NoError(t, ops.EndSession(&SessionEnd{
		Timestamp:        time.Now().UTC(),
		SessionID:        session.ID,
		OverallScore:     6.5,
		FinalVerdict:     "Hire",
		PromptTokens:     4200,
		CompletionTokens: 900,
	}))

	out, err := ops.GetSession(session.ID)
	require.NoError(t, err)
	require.NotNil(t, out.EndTime)
	require.NotNil(t, out.OverallScore)
	assert.InDelta(t, 6.5, *out.OverallScore, 0.001)
	assert.Equal(t, "Hire", out.FinalVerdict)
	assert.Equal(t, int64(4200), out.PromptTokens)
}

func TestEndSessionUnknownID(t *testing.T) {
	db := openTestDB(t)
	ops := NewDatabaseOperations(db)

	err := ops.EndSession(&SessionEnd{SessionID: "no-such-session", Timestamp: time.Now().UTC()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGetSessionStats(t *testing.T) {
	db := openTestDB(t)
	ops := NewDatabaseOperations(db)
	session := insertTestSession(t, ops, GenerateSessionID())

	for i, score := range []int{8, 2, 5} {
		require.NoError(t, ops.InsertQALog(&QARecord{
			SessionID:      session.ID,
			QuestionNumber: i + 1,
			Stage:          "technical",
			Question:       "Q",
			Answer:         "A",
			CriticScore:    score,
			IsPushback:     score == 2,
			CreatedAt:      time.Now().UTC(),
		}))
	}

	stats, err := ops.GetSessionStats(session.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalAnswers)
	assert.Equal(t, 1, stats.Pushbacks)
	assert.InDelta(t, 5.0, stats.AverageScore, 0.001)
	assert.Equal(t, 2, stats.LowestScore)
	assert.Equal(t, 8, stats.HighestScore)
	assert.Equal(t, 3, stats.TotalQuestions)
}

func TestListSessionsNewestFirst(t *testing.T) {
	db := openTestDB(t)
	ops := NewDatabaseOperations(db)

	older := &SessionRecord{
		ID: "older", CandidateName: "a", Company: "Acme", Role: "r",
		Persona: "neutral", StartTime: time.Now().UTC().Add(-time.Hour),
	}
	newer := &SessionRecord{
		ID: "newer", CandidateName: "b", Company: "Acme", Role: "r",
		Persona: "neutral", StartTime: time.Now().UTC(),
	}
	require.NoError(t, ops.InsertSession(older))
	require.NoError(t, ops.InsertSession(newer))

	records, err := ops.ListSessions(10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "newer", records[0].ID)
	assert.Equal(t, "older", records[1].ID)

	limited, err := ops.ListSessions(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
