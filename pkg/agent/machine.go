package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"interviewsim/pkg/logx"
)

// State identifies a control state in a driver's state machine.
type State string

// ErrInvalidTransition is returned when a transition is not in the table.
var ErrInvalidTransition = errors.New("invalid state transition")

// StateTransition records one transition between control states.
type StateTransition struct {
	FromState State
	ToState   State
	Timestamp time.Time
	Reason    string
}

// TransitionTable lists the valid successor states for each control state.
type TransitionTable map[State][]State

// StateMachine tracks the current control state of a driver, validates
// transitions against an instance-local table, and keeps a bounded history.
// Domain data lives in the driver's typed session aggregate, not here.
type StateMachine struct {
	id           string
	currentState State
	transitions  []StateTransition
	table        TransitionTable
	mu           sync.Mutex
	logger       *logx.Logger
}

const maxTransitionHistory = 100

// NewStateMachine creates a state machine starting in initialState.
func NewStateMachine(id string, initialState State, table TransitionTable) *StateMachine {
	return &StateMachine{
		id:           id,
		currentState: initialState,
		table:        table,
		logger:       logx.NewLogger(id),
	}
}

// CurrentState returns the current control state.
func (sm *StateMachine) CurrentState() State {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.currentState
}

// IsValidTransition reports whether from -> to is allowed by the table.
func (sm *StateMachine) IsValidTransition(from, to State) bool {
	for _, next := range sm.table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionTo moves to a new state and records the transition.
func (sm *StateMachine) TransitionTo(ctx context.Context, newState State, reason string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("state transition cancelled: %w", ctx.Err())
	default:
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	oldState := sm.currentState
	if !sm.IsValidTransition(oldState, newState) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, oldState, newState)
	}

	sm.transitions = append(sm.transitions, StateTransition{
		FromState: oldState,
		ToState:   newState,
		Timestamp: time.Now().UTC(),
		Reason:    reason,
	})
	if len(sm.transitions) > maxTransitionHistory {
		sm.transitions = sm.transitions[len(sm.transitions)-maxTransitionHistory:]
	}

	sm.currentState = newState
	sm.logger.Debug("state transition: %s -> %s (%s)", oldState, newState, reason)
	return nil
}

// Transitions returns a copy of the recorded transition history.
func (sm *StateMachine) Transitions() []StateTransition {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return append([]StateTransition{}, sm.transitions...)
}

// ID returns the machine's identifier.
func (sm *StateMachine) ID() string {
	return sm.id
}
