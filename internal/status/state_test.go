package status

import (
	"testing"
	"time"

	"github.com/AI-ML-Modelor/aa/internal/bus"
)

func TestInitialState(t *testing.T) {
	m := NewMachine(nil)
	if m.Current() != Booting {
		t.Errorf("initial state = %s, want %s", m.Current(), Booting)
	}
}

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		name string
		path []State
	}{
		{"fresh install onboarding", []State{ProfileRequired, Ready}},
		{"returning user", []State{Ready, Degraded, Ready}},
		{"boot failure recovery", []State{Error, Booting, Ready}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(nil)
			for _, s := range tt.path {
				if err := m.Transition(s); err != nil {
					t.Fatalf("Transition(%s) error = %v", s, err)
				}
			}
			if m.Current() != tt.path[len(tt.path)-1] {
				t.Errorf("final state = %s, want %s", m.Current(), tt.path[len(tt.path)-1])
			}
		})
	}
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		from []State // valid path to reach the starting state
		to   State
	}{
		{"booting to degraded", nil, Degraded},
		{"ready back to profile required", []State{Ready}, ProfileRequired},
		{"error to ready directly", []State{Error}, Ready},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(nil)
			for _, s := range tt.from {
				if err := m.Transition(s); err != nil {
					t.Fatalf("setup Transition(%s) error = %v", s, err)
				}
			}
			before := m.Current()
			if err := m.Transition(tt.to); err == nil {
				t.Errorf("Transition(%s) from %s should fail", tt.to, before)
			}
			if m.Current() != before {
				t.Errorf("state changed to %s after invalid transition", m.Current())
			}
		})
	}
}

func TestTransitionPublishesEvent(t *testing.T) {
	b := bus.New()
	m := NewMachine(b)

	ch, unsub := b.Subscribe("session.", 10)
	defer unsub()

	if err := m.Transition(ProfileRequired); err != nil {
		t.Fatal(err)
	}

	select {
	case evt := <-ch:
		change, ok := evt.Payload.(StatusChange)
		if !ok {
			t.Fatalf("payload type = %T, want StatusChange", evt.Payload)
		}
		if change.From != Booting || change.To != ProfileRequired {
			t.Errorf("change = %+v, want Booting->ProfileRequired", change)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for status change event")
	}
}
