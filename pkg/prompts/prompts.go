// Package prompts loads the embedded prompt pack: stage instructions,
// persona tones, and the escalating pressure tiers applied after weak
// answers.
package prompts

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var packYAML []byte

// Pack holds all prompt fragments used by the interviewer step.
type Pack struct {
	Stages           map[string]string `yaml:"stages"`
	Personas         map[string]string `yaml:"personas"`
	PressureTiers    map[string]string `yaml:"pressure_tiers"`
	Pushback         string            `yaml:"pushback"`
	BehaviorProtocol string            `yaml:"behavior_protocol"`
}

//nolint:gochecknoglobals // Embedded pack parsed once
var (
	pack     *Pack
	packOnce sync.Once
	packErr  error
)

// Load parses the embedded pack. Safe to call repeatedly.
func Load() (*Pack, error) {
	packOnce.Do(func() {
		p := &Pack{}
		if err := yaml.Unmarshal(packYAML, p); err != nil {
			packErr = fmt.Errorf("failed to parse embedded prompt pack: %w", err)
			return
		}
		pack = p
	})
	return pack, packErr
}

// StageInstruction returns the question-style instruction for a stage,
// empty when the stage has no entry (e.g. "complete").
func (p *Pack) StageInstruction(stage string) string {
	return p.Stages[stage]
}

// PersonaTone returns the tone modifier for a persona, defaulting to the
// neutral tone for unknown personas.
func (p *Pack) PersonaTone(persona string) string {
	if tone, ok := p.Personas[persona]; ok {
		return tone
	}
	return p.Personas["neutral"]
}

// PressureTier returns the escalation instruction for a previous score.
// Scores of 7 and above get no added pressure.
func (p *Pack) PressureTier(score int) string {
	var tier string
	switch {
	case score <= 2:
		tier = "critical"
	case score <= 4:
		tier = "weak"
	case score <= 6:
		tier = "mediocre"
	default:
		return ""
	}
	return strings.ReplaceAll(p.PressureTiers[tier], "{score}", fmt.Sprintf("%d", score))
}

// PushbackPrompt renders the re-challenge prompt for the current question.
func (p *Pack) PushbackPrompt(question, answer string, score int, weaknesses string) string {
	if weaknesses == "" {
		weaknesses = "it lacked depth and specifics"
	}
	out := p.Pushback
	out = strings.ReplaceAll(out, "{question}", question)
	out = strings.ReplaceAll(out, "{answer}", answer)
	out = strings.ReplaceAll(out, "{score}", fmt.Sprintf("%d", score))
	out = strings.ReplaceAll(out, "{weaknesses}", weaknesses)
	return out
}
