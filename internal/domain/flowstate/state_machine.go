// Package flowstate enforces the flow definition lifecycle:
// draft and inactive may activate, active may only deactivate, and
// removal is reachable from any state except active.
package flowstate

import (
	"fmt"

	"github.com/lqor/igorforce/pkg/constants"
)

// Transition represents an action that can change a flow definition's status
type Transition string

const (
	// TransitionActivate publishes a flow (increments its version)
	TransitionActivate Transition = "Activate"
	// TransitionDeactivate takes an active flow out of service
	TransitionDeactivate Transition = "Deactivate"
)

// Machine enforces valid lifecycle transitions for flow definitions.
// Invalid transitions return an error (fail-fast approach).
type Machine struct {
	// transitions maps (current status, transition) -> next status
	transitions map[transitionKey]constants.FlowStatus
}

type transitionKey struct {
	status     constants.FlowStatus
	transition Transition
}

// NewMachine creates a state machine with the lifecycle rules.
// State diagram:
//
//	[draft] ──Activate──► [active] ◄──Activate── [inactive]
//	                         │                       ▲
//	                         └──────Deactivate───────┘
//
// There is no transition back to draft.
func NewMachine() *Machine {
	m := &Machine{
		transitions: make(map[transitionKey]constants.FlowStatus),
	}

	m.addTransition(constants.FlowStatusDraft, TransitionActivate, constants.FlowStatusActive)
	m.addTransition(constants.FlowStatusInactive, TransitionActivate, constants.FlowStatusActive)
	m.addTransition(constants.FlowStatusActive, TransitionDeactivate, constants.FlowStatusInactive)

	return m
}

func (m *Machine) addTransition(from constants.FlowStatus, via Transition, to constants.FlowStatus) {
	m.transitions[transitionKey{status: from, transition: via}] = to
}

// Transition attempts to move from the current status using the given action.
// Returns the new status or an error if the transition is invalid.
func (m *Machine) Transition(current constants.FlowStatus, action Transition) (constants.FlowStatus, error) {
	key := transitionKey{status: current, transition: action}
	next, ok := m.transitions[key]
	if !ok {
		return current, fmt.Errorf("invalid lifecycle transition: cannot %s from %s", action, current)
	}
	return next, nil
}

// CanTransition checks if a transition is valid without performing it.
func (m *Machine) CanTransition(current constants.FlowStatus, action Transition) bool {
	_, ok := m.transitions[transitionKey{status: current, transition: action}]
	return ok
}

// CanRemove reports whether a flow definition in the given status may be
// deleted. Active flows must deactivate first.
func (m *Machine) CanRemove(current constants.FlowStatus) bool {
	return current != constants.FlowStatusActive
}
