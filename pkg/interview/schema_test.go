package interview

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "bare object",
			raw:  `{"score": 7}`,
			want: `{"score": 7}`,
		},
		{
			name: "json fence",
			raw:  "```json\n{\"score\": 7}\n```",
			want: `{"score": 7}`,
		},
		{
			name: "plain fence",
			raw:  "```\n{\"score\": 7}\n```",
			want: `{"score": 7}`,
		},
		{
			name: "surrounding prose",
			raw:  "Here is my evaluation:\n{\"score\": 7}\nLet me know if you need more.",
			want: `{"score": 7}`,
		},
		{
			name: "nested braces",
			raw:  `prose {"outer": {"inner": 1}} trailing`,
			want: `{"outer": {"inner": 1}}`,
		},
		{
			name: "whitespace",
			raw:  "  \n {\"score\": 7} \n ",
			want: `{"score": 7}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.raw))
		})
	}
}

func TestParseProfile(t *testing.T) {
	raw := "```json\n" + `{
		"matched_skills": ["Go", "SQL"],
		"missing_skills": ["Kubernetes"],
		"strengths": ["distributed systems"],
		"weaknesses": ["no leadership experience"],
		"experience_level": "Senior",
		"red_flags": []
	}` + "\n```"

	profile, err := ParseProfile("profiler", raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, profile.MatchedSkills)
	assert.Equal(t, "senior", profile.ExperienceLevel)
	assert.Empty(t, profile.RedFlags)
}

func TestParseProfileRejectsBadExperienceLevel(t *testing.T) {
	raw := `{"matched_skills": [], "missing_skills": [], "strengths": [], "weaknesses": [], "experience_level": "principal", "red_flags": []}`

	_, err := ParseProfile("profiler", raw)
	require.Error(t, err)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "profiler", schemaErr.Agent)
	assert.Contains(t, schemaErr.Error(), "profile analysis")
}

func TestParseProfileRejectsMalformedJSON(t *testing.T) {
	_, err := ParseProfile("profiler", "I couldn't produce an analysis, sorry.")
	require.Error(t, err)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
}

func TestParseEvaluation(t *testing.T) {
	raw := `{"score": 8, "strengths": "clear structure", "weaknesses": "light on metrics", "tip": "quantify impact", "sentiment": "confident"}`

	eval, err := ParseEvaluation("critic", raw)
	require.NoError(t, err)
	assert.Equal(t, 8, eval.Score)
	assert.Equal(t, "confident", eval.Sentiment)
}

func TestParseEvaluationRejectsOutOfRangeScore(t *testing.T) {
	for _, raw := range []string{
		`{"score": 11, "strengths": "", "weaknesses": "", "tip": "", "sentiment": ""}`,
		`{"score": -1, "strengths": "", "weaknesses": "", "tip": "", "sentiment": ""}`,
	} {
		_, err := ParseEvaluation("critic", raw)
		require.Error(t, err, raw)

		var schemaErr *SchemaError
		require.True(t, errors.As(err, &schemaErr))
		assert.Contains(t, schemaErr.Error(), "answer evaluation")
	}
}

func TestParseEvaluationRejectsProseOnly(t *testing.T) {
	_, err := ParseEvaluation("critic", "Great answer, I'd give it an 8 out of 10.")
	require.Error(t, err)
}

func TestSchemaErrorBoundsRawSample(t *testing.T) {
	raw := make([]byte, 2000)
	for i := range raw {
		raw[i] = 'x'
	}

	schemaErr := NewSchemaError("critic", "answer evaluation", string(raw), errors.New("boom"))
	assert.Len(t, schemaErr.Raw, 500)
	assert.EqualError(t, errors.Unwrap(schemaErr), "boom")
}
