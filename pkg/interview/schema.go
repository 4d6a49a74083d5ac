// Package interview implements the interview orchestration core: the
// session aggregate, the stage and pushback decision logic, the agent
// steps, and the driver that sequences them.
package interview

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ProfileAnalysis is the profiler's structured comparison of resume
// against job description. Written once, read by every later step.
type ProfileAnalysis struct {
	MatchedSkills   []string `json:"matched_skills"`
	MissingSkills   []string `json:"missing_skills"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	ExperienceLevel string   `json:"experience_level"`
	RedFlags        []string `json:"red_flags"`
}

// AnswerEvaluation is the scoring contract: the structured record every
// judged answer must produce. Stage and termination decisions depend on
// score integrity, so parsing is strict with no silent fallback.
type AnswerEvaluation struct {
	Score      int    `json:"score"`
	Strengths  string `json:"strengths"`
	Weaknesses string `json:"weaknesses"`
	Tip        string `json:"tip"`
	Sentiment  string `json:"sentiment"`
}

// SchemaError signals that a model returned output that cannot be parsed
// into the expected structured schema. It is fatal to the step that
// required the structure: continuing with a guessed profile or score
// would corrupt every downstream decision.
type SchemaError struct {
	Err    error
	Agent  string
	Schema string
	Raw    string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s returned output that does not match the %s schema: %v", e.Agent, e.Schema, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// NewSchemaError wraps a parse failure, keeping a bounded sample of the
// raw output for diagnostics.
func NewSchemaError(agentName, schema, raw string, err error) *SchemaError {
	const sampleLimit = 500
	if len(raw) > sampleLimit {
		raw = raw[:sampleLimit]
	}
	return &SchemaError{Err: err, Agent: agentName, Schema: schema, Raw: raw}
}

// ExtractJSON strips markdown code fences and surrounding prose from raw
// model output, returning the JSON payload that must then parse exactly.
func ExtractJSON(raw string) string {
	content := strings.TrimSpace(raw)

	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		if len(lines) > 2 {
			content = strings.Join(lines[1:len(lines)-1], "\n")
		}
		content = strings.ReplaceAll(content, "```json", "")
		content = strings.ReplaceAll(content, "```", "")
		content = strings.TrimSpace(content)
	}

	// Drop prose around the outermost object
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}

// ParseProfile parses raw model output into a ProfileAnalysis, enforcing
// the experience-level enum.
func ParseProfile(agentName, raw string) (*ProfileAnalysis, error) {
	payload := ExtractJSON(raw)

	var profile ProfileAnalysis
	if err := json.Unmarshal([]byte(payload), &profile); err != nil {
		return nil, NewSchemaError(agentName, "profile analysis", raw, err)
	}

	profile.ExperienceLevel = strings.ToLower(strings.TrimSpace(profile.ExperienceLevel))
	switch profile.ExperienceLevel {
	case "junior", "mid", "senior":
	default:
		return nil, NewSchemaError(agentName, "profile analysis", raw,
			fmt.Errorf("invalid experience_level %q", profile.ExperienceLevel))
	}
	return &profile, nil
}

// ParseEvaluation parses raw model output into an AnswerEvaluation,
// enforcing the 0-10 score range.
func ParseEvaluation(agentName, raw string) (*AnswerEvaluation, error) {
	payload := ExtractJSON(raw)

	var eval AnswerEvaluation
	if err := json.Unmarshal([]byte(payload), &eval); err != nil {
		return nil, NewSchemaError(agentName, "answer evaluation", raw, err)
	}

	if eval.Score < 0 || eval.Score > 10 {
		return nil, NewSchemaError(agentName, "answer evaluation", raw,
			fmt.Errorf("score %d out of range 0-10", eval.Score))
	}
	return &eval, nil
}
