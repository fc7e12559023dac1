package flowstate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lqor/igorforce/pkg/constants"
)

func TestActivateFromDraftAndInactive(t *testing.T) {
	m := NewMachine()

	next, err := m.Transition(constants.FlowStatusDraft, TransitionActivate)
	assert.NoError(t, err)
	assert.Equal(t, constants.FlowStatusActive, next)

	next, err = m.Transition(constants.FlowStatusInactive, TransitionActivate)
	assert.NoError(t, err)
	assert.Equal(t, constants.FlowStatusActive, next)
}

func TestActivateFromActiveIsInvalid(t *testing.T) {
	m := NewMachine()

	_, err := m.Transition(constants.FlowStatusActive, TransitionActivate)
	assert.Error(t, err)
}

func TestDeactivate(t *testing.T) {
	m := NewMachine()

	next, err := m.Transition(constants.FlowStatusActive, TransitionDeactivate)
	assert.NoError(t, err)
	assert.Equal(t, constants.FlowStatusInactive, next)

	assert.False(t, m.CanTransition(constants.FlowStatusInactive, TransitionDeactivate))
}

func TestNoTransitionBackToDraft(t *testing.T) {
	m := NewMachine()

	for _, status := range []constants.FlowStatus{constants.FlowStatusActive, constants.FlowStatusInactive} {
		for _, action := range []Transition{TransitionActivate, TransitionDeactivate} {
			next, err := m.Transition(status, action)
			if err == nil {
				assert.NotEqual(t, constants.FlowStatusDraft, next)
			}
		}
	}
}

func TestCanRemove(t *testing.T) {
	m := NewMachine()

	assert.True(t, m.CanRemove(constants.FlowStatusDraft))
	assert.True(t, m.CanRemove(constants.FlowStatusInactive))
	assert.False(t, m.CanRemove(constants.FlowStatusActive))
}
