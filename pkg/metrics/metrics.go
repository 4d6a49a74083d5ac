// Package metrics provides Prometheus-based metrics recording for
// interview sessions: LLM request outcomes, answer scores, pushbacks,
// and termination reasons.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Recorder records interview metrics against its own registry so multiple
// sessions in one process never collide on registration.
type Recorder struct {
	registry *prometheus.Registry

	llmRequests  *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	answerScores prometheus.Histogram
	pushbacks    prometheus.Counter
	terminations *prometheus.CounterVec
	sessions     prometheus.Counter
}

// NewRecorder creates a recorder with a fresh registry.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		llmRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interview_llm_requests_total",
				Help: "Total number of LLM requests by agent, model, status, and error type",
			},
			[]string{"agent", "model", "status", "error_type"},
		),
		stepDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "interview_step_duration_seconds",
				Help:    "Duration of agent steps in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"agent"},
		),
		answerScores: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "interview_answer_score",
				Help:    "Distribution of judged answer scores on the 0-10 scale",
				Buckets: prometheus.LinearBuckets(0, 1, 11),
			},
		),
		pushbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "interview_pushbacks_total",
				Help: "Total number of pushback re-challenges issued",
			},
		),
		terminations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interview_terminations_total",
				Help: "Total number of session terminations by reason",
			},
			[]string{"reason"},
		),
		sessions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "interview_sessions_total",
				Help: "Total number of interview sessions started",
			},
		),
	}
}

// ObserveLLMRequest records one agent LLM call outcome.
func (r *Recorder) ObserveLLMRequest(agent, model string, success bool, errorType string, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	r.llmRequests.WithLabelValues(agent, model, status, errorType).Inc()
	r.stepDuration.WithLabelValues(agent).Observe(duration.Seconds())
}

// ObserveScore records a judged answer score.
func (r *Recorder) ObserveScore(score int) {
	r.answerScores.Observe(float64(score))
}

// IncPushback increments the pushback counter.
func (r *Recorder) IncPushback() {
	r.pushbacks.Inc()
}

// IncTermination records why a session ended.
func (r *Recorder) IncTermination(reason string) {
	r.terminations.WithLabelValues(reason).Inc()
}

// IncSession records a session start.
func (r *Recorder) IncSession() {
	r.sessions.Inc()
}

// Registry exposes the underlying registry so a serving handler can be
// attached when the process runs long enough to scrape.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteSnapshot dumps all families in the Prometheus text exposition
// format, one file per session, so short-lived CLI runs still leave
// inspectable metrics behind.
func (r *Recorder) WriteSnapshot(path string) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create metrics snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()

	encoder := expfmt.NewEncoder(f, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := encoder.Encode(family); err != nil {
			return fmt.Errorf("failed to encode metric family %s: %w", family.GetName(), err)
		}
	}
	return nil
}
