package interview

import (
	"fmt"

	"interviewsim/pkg/agent"
)

// Control states for the driver's state machine. These sequence the steps;
// the interview stage (intro/technical/...) lives on the Session.
const (
	StatePreparing      agent.State = "PREPARING"
	StateAwaitingAnswer agent.State = "AWAITING_ANSWER"
	StateEvaluating     agent.State = "EVALUATING"
	StateDeciding       agent.State = "DECIDING"
	StatePushback       agent.State = "PUSHBACK"
	StateReporting      agent.State = "REPORTING"
	StateDone           agent.State = "DONE"
	StateError          agent.State = "ERROR"
)

// ControlTransitions is the legal control flow for one session.
func ControlTransitions() agent.TransitionTable {
	return agent.TransitionTable{
		StatePreparing:      {StateAwaitingAnswer, StateError},
		StateAwaitingAnswer: {StateEvaluating, StateReporting, StateError},
		StateEvaluating:     {StateDeciding, StateError},
		StateDeciding:       {StateAwaitingAnswer, StatePushback, StateReporting, StateError},
		StatePushback:       {StateAwaitingAnswer, StateError},
		StateReporting:      {StateDone, StateError},
		StateDone:           {},
		StateError:          {StateReporting},
	}
}

// Decision is the outcome of the pushback decision function.
type Decision string

const (
	// DecideAskNext advances to a new question.
	DecideAskNext Decision = "ask-next"
	// DecidePushback re-challenges on the same question.
	DecidePushback Decision = "pushback"
	// DecideTerminate ends the session and generates the report.
	DecideTerminate Decision = "terminate"
)

const (
	// MaxQuestions is the hard cap on new questions per session.
	MaxQuestions = 10
	// MaxPushbacks bounds escalations on a single question before the
	// topic is abandoned.
	MaxPushbacks = 2

	failedTopicPrefixLen = 50
	rollingWindow        = 3
	rollingFloor         = 3.5
	overallFloor         = 4.0
	earlyTerminationMin  = 3
)

// ClassifyStage progresses the session through interview stages based on
// question count and performance. A failing overall average after enough
// questions jumps straight to complete, overriding the threshold table.
func ClassifyStage(s *Session) {
	if s.Stage == StageComplete {
		return
	}

	if len(s.FeedbackLog) > 0 && s.QuestionCount >= earlyTerminationMin {
		if avg := s.AverageScore(); avg < overallFloor {
			s.Terminate(fmt.Sprintf("Performance too low (avg %.1f/10 after %d questions)", avg, s.QuestionCount))
			return
		}
	}

	switch {
	case s.QuestionCount <= 2:
		s.Stage = StageIntro
	case s.QuestionCount <= 5:
		s.Stage = StageTechnical
	case s.QuestionCount <= 7:
		s.Stage = StageBehavioral
	case s.QuestionCount == 8:
		s.Stage = StageClosing
	default:
		s.Stage = StageComplete
	}
}

// Decide is the pushback decision function, re-evaluated after every
// answer including re-answers following a pushback. Checked in order,
// first match wins:
//
//  1. Hard cap reached or stage complete: terminate.
//  2. Critically low last score with pushback budget left: pushback.
//     Budget exhausted: abandon the topic and fall through.
//  3. Rolling last-3 average below the floor: terminate.
//  4. Otherwise: ask the next question.
//
// A pushback outcome never increments QuestionCount; topic abandonment
// falls through into the rolling-average check in the same call.
func Decide(s *Session) Decision {
	if s.QuestionCount >= MaxQuestions || s.Stage == StageComplete {
		return DecideTerminate
	}

	if len(s.FeedbackLog) > 0 && s.QuestionCount > 0 {
		lastScore, _ := s.LastScore()

		if lastScore <= 2 && s.PushbackCount < MaxPushbacks {
			s.PushbackCount++
			s.TotalPushbacks++
			return DecidePushback
		}

		switch {
		case s.PushbackCount >= MaxPushbacks:
			// Topic abandoned after exhausting the pushback budget
			s.PushbackCount = 0
			s.FailedTopics = append(s.FailedTopics, topicPrefix(s.CurrentQuestion))
		case s.PushbackCount > 0 && lastScore > 2:
			// Recovered on the re-challenge
			s.PushbackCount = 0
		}
	}

	if avg, ok := s.RecentAverage(rollingWindow); ok && avg < rollingFloor {
		s.Terminate(fmt.Sprintf("Performance below bar (avg %.1f/10)", avg))
		return DecideTerminate
	}

	return DecideAskNext
}

func topicPrefix(question string) string {
	if len(question) > failedTopicPrefixLen {
		return question[:failedTopicPrefixLen]
	}
	return question
}
