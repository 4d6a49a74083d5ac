package agent

import (
	"context"
	"errors"
	"testing"
)

func testTable() TransitionTable {
	return TransitionTable{
		"A":   {"B", "ERR"},
		"B":   {"C", "ERR"},
		"C":   {},
		"ERR": {"C"},
	}
}

func TestStateMachineInitialState(t *testing.T) {
	sm := NewStateMachine("sm-1", "A", testTable())
	if sm.CurrentState() != "A" {
		t.Errorf("expected initial state A, got %s", sm.CurrentState())
	}
	if sm.ID() != "sm-1" {
		t.Errorf("expected id sm-1, got %s", sm.ID())
	}
}

func TestStateMachineValidTransition(t *testing.T) {
	sm := NewStateMachine("sm-1", "A", testTable())
	ctx := context.Background()

	if err := sm.TransitionTo(ctx, "B", "advance"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sm.CurrentState() != "B" {
		t.Errorf("expected state B, got %s", sm.CurrentState())
	}

	transitions := sm.Transitions()
	if len(transitions) != 1 {
		t.Fatalf("expected 1 recorded transition, got %d", len(transitions))
	}
	if transitions[0].FromState != "A" || transitions[0].ToState != "B" {
		t.Errorf("unexpected transition record: %+v", transitions[0])
	}
	if transitions[0].Reason != "advance" {
		t.Errorf("expected reason 'advance', got %q", transitions[0].Reason)
	}
}

func TestStateMachineInvalidTransition(t *testing.T) {
	sm := NewStateMachine("sm-1", "A", testTable())

	err := sm.TransitionTo(context.Background(), "C", "skip ahead")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if sm.CurrentState() != "A" {
		t.Errorf("state changed on invalid transition: %s", sm.CurrentState())
	}
	if len(sm.Transitions()) != 0 {
		t.Errorf("invalid transition was recorded")
	}
}

func TestStateMachineTerminalState(t *testing.T) {
	sm := NewStateMachine("sm-1", "C", testTable())

	if err := sm.TransitionTo(context.Background(), "A", "restart"); err == nil {
		t.Error("expected error transitioning out of terminal state")
	}
}

func TestStateMachineCancelledContext(t *testing.T) {
	sm := NewStateMachine("sm-1", "A", testTable())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sm.TransitionTo(ctx, "B", "advance"); err == nil {
		t.Error("expected error on cancelled context")
	}
	if sm.CurrentState() != "A" {
		t.Errorf("state changed after cancelled transition: %s", sm.CurrentState())
	}
}

func TestStateMachineIsValidTransition(t *testing.T) {
	sm := NewStateMachine("sm-1", "A", testTable())

	tests := []struct {
		from  State
		to    State
		valid bool
	}{
		{"A", "B", true},
		{"A", "ERR", true},
		{"B", "C", true},
		{"ERR", "C", true},
		{"A", "C", false},
		{"C", "A", false},
		{"UNKNOWN", "A", false},
	}
	for _, tt := range tests {
		if got := sm.IsValidTransition(tt.from, tt.to); got != tt.valid {
			t.Errorf("IsValidTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}
