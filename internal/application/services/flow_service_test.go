package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lqor/igorforce/internal/domain/models"
	"github.com/lqor/igorforce/pkg/constants"
	"github.com/lqor/igorforce/pkg/errors"
)

func createDraftFlow(t *testing.T, svc *ServiceManager, name string) *models.FlowDefinition {
	t.Helper()
	def, err := svc.Flows.CreateDefinition(context.Background(), CreateFlowDefinitionInput{
		Name: name,
		Type: constants.FlowTypeScreen,
	})
	require.NoError(t, err)
	return def
}

func TestFlowService_CreateDefinition(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	def := createDraftFlow(t, svc, "Onboarding")
	assert.Equal(t, constants.FlowStatusDraft, def.Status)
	assert.Equal(t, 1, def.Version)

	// A start element is provisioned with the definition
	elements, err := svc.Flows.ListElementsByFlow(ctx, def.ID)
	require.NoError(t, err)
	require.Len(t, elements, 1)
	assert.Equal(t, constants.ElementTypeStart, elements[0].Type)
	assert.Equal(t, "Start", elements[0].Label)
	assert.Equal(t, float64(400), elements[0].PositionX)
	assert.Equal(t, float64(50), elements[0].PositionY)
	assert.Equal(t, 0, elements[0].SortOrder)
}

func TestFlowService_CreateDefinition_DuplicateName(t *testing.T) {
	svc := newTestServices(t)

	createDraftFlow(t, svc, "Onboarding")
	_, err := svc.Flows.CreateDefinition(context.Background(), CreateFlowDefinitionInput{
		Name: "Onboarding",
		Type: constants.FlowTypeScreen,
	})
	assert.True(t, errors.IsConflict(err))
}

func TestFlowService_CreateDefinition_UnknownType(t *testing.T) {
	svc := newTestServices(t)

	_, err := svc.Flows.CreateDefinition(context.Background(), CreateFlowDefinitionInput{
		Name: "Bad",
		Type: "batch",
	})
	assert.True(t, errors.IsValidation(err))
}

func TestFlowService_Lifecycle(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	def := createDraftFlow(t, svc, "Onboarding")

	activated, err := svc.Flows.Activate(ctx, def.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.FlowStatusActive, activated.Status)
	assert.Equal(t, 2, activated.Version)

	// Activating an active flow is not a valid transition
	_, err = svc.Flows.Activate(ctx, def.ID)
	assert.True(t, errors.IsInvariantViolation(err))

	deactivated, err := svc.Flows.Deactivate(ctx, def.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.FlowStatusInactive, deactivated.Status)
	// Deactivate does not bump the version
	assert.Equal(t, 2, deactivated.Version)

	// Inactive flows can be reactivated
	reactivated, err := svc.Flows.Activate(ctx, def.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.FlowStatusActive, reactivated.Status)
	assert.Equal(t, 3, reactivated.Version)
}

func TestFlowService_Activate_RecordTriggeredNeedsTrigger(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	def, err := svc.Flows.CreateDefinition(ctx, CreateFlowDefinitionInput{
		Name: "On Account Create",
		Type: constants.FlowTypeRecordTriggered,
	})
	require.NoError(t, err)

	_, err = svc.Flows.Activate(ctx, def.ID)
	assert.True(t, errors.IsValidation(err))

	event := constants.TriggerEventCreate
	_, err = svc.Flows.UpdateDefinition(ctx, def.ID, models.FlowDefinitionUpdate{
		TriggerObject: strPtr("Account"),
		TriggerEvent:  &event,
	})
	require.NoError(t, err)

	activated, err := svc.Flows.Activate(ctx, def.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.FlowStatusActive, activated.Status)
}

func TestFlowService_ListDefinitionsByTrigger(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	event := constants.TriggerEventCreate
	def, err := svc.Flows.CreateDefinition(ctx, CreateFlowDefinitionInput{
		Name:          "On Account Create",
		Type:          constants.FlowTypeRecordTriggered,
		TriggerObject: strPtr("Account"),
		TriggerEvent:  &event,
	})
	require.NoError(t, err)

	// Draft flows never appear in the trigger projection
	flows, err := svc.Flows.ListDefinitionsByTrigger(ctx, "Account", constants.TriggerEventCreate)
	require.NoError(t, err)
	assert.Empty(t, flows)

	_, err = svc.Flows.Activate(ctx, def.ID)
	require.NoError(t, err)

	flows, err = svc.Flows.ListDefinitionsByTrigger(ctx, "Account", constants.TriggerEventCreate)
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, def.ID, flows[0].ID)

	flows, err = svc.Flows.ListDefinitionsByTrigger(ctx, "Contact", constants.TriggerEventCreate)
	require.NoError(t, err)
	assert.Empty(t, flows)
}

func TestFlowService_DeleteDefinition(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	def := createDraftFlow(t, svc, "Onboarding")
	elements, err := svc.Flows.ListElementsByFlow(ctx, def.ID)
	require.NoError(t, err)
	start := elements[0]

	screen, err := svc.Flows.CreateElement(ctx, CreateFlowElementInput{
		FlowID: def.ID, Type: constants.ElementTypeScreen, Label: "Welcome",
	})
	require.NoError(t, err)
	conn, err := svc.Flows.CreateConnection(ctx, CreateFlowConnectionInput{
		FlowID: def.ID, SourceElementID: start.ID, TargetElementID: screen.ID,
	})
	require.NoError(t, err)

	// Active flows are protected
	_, err = svc.Flows.Activate(ctx, def.ID)
	require.NoError(t, err)
	err = svc.Flows.DeleteDefinition(ctx, def.ID)
	assert.True(t, errors.IsInvariantViolation(err))

	_, err = svc.Flows.Deactivate(ctx, def.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Flows.DeleteDefinition(ctx, def.ID))

	// Everything went with it
	_, err = svc.Flows.GetDefinition(ctx, def.ID)
	assert.True(t, errors.IsNotFound(err))
	_, err = svc.Flows.GetElement(ctx, screen.ID)
	assert.True(t, errors.IsNotFound(err))
	_, err = svc.Flows.GetConnection(ctx, conn.ID)
	assert.True(t, errors.IsNotFound(err))
}

func TestFlowService_CreateElement_SortOrder(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	def := createDraftFlow(t, svc, "Onboarding")

	first, err := svc.Flows.CreateElement(ctx, CreateFlowElementInput{
		FlowID: def.ID, Type: constants.ElementTypeScreen, Label: "Welcome",
	})
	require.NoError(t, err)
	// Start element holds 0
	assert.Equal(t, 1, first.SortOrder)

	second, err := svc.Flows.CreateElement(ctx, CreateFlowElementInput{
		FlowID: def.ID, Type: constants.ElementTypeDecision, Label: "Qualified?",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.SortOrder)
}

func TestFlowService_CreateElement_MissingFlow(t *testing.T) {
	svc := newTestServices(t)

	_, err := svc.Flows.CreateElement(context.Background(), CreateFlowElementInput{
		FlowID: "nope", Type: constants.ElementTypeScreen, Label: "X",
	})
	assert.True(t, errors.IsNotFound(err))
}

func TestFlowService_DeleteElement_StartProtected(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	def := createDraftFlow(t, svc, "Onboarding")
	elements, err := svc.Flows.ListElementsByFlow(ctx, def.ID)
	require.NoError(t, err)

	err = svc.Flows.DeleteElement(ctx, elements[0].ID)
	assert.True(t, errors.IsInvariantViolation(err))
}

func TestFlowService_DeleteElement_CascadesConnections(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	def := createDraftFlow(t, svc, "Onboarding")
	elements, err := svc.Flows.ListElementsByFlow(ctx, def.ID)
	require.NoError(t, err)
	start := elements[0]

	screen, err := svc.Flows.CreateElement(ctx, CreateFlowElementInput{
		FlowID: def.ID, Type: constants.ElementTypeScreen, Label: "Welcome",
	})
	require.NoError(t, err)
	conn, err := svc.Flows.CreateConnection(ctx, CreateFlowConnectionInput{
		FlowID: def.ID, SourceElementID: start.ID, TargetElementID: screen.ID,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Flows.DeleteElement(ctx, screen.ID))

	_, err = svc.Flows.GetConnection(ctx, conn.ID)
	assert.True(t, errors.IsNotFound(err))
	// Start survives
	_, err = svc.Flows.GetElement(ctx, start.ID)
	assert.NoError(t, err)
}

func TestFlowService_CreateConnection_Validation(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	first := createDraftFlow(t, svc, "First")
	second := createDraftFlow(t, svc, "Second")

	firstElements, err := svc.Flows.ListElementsByFlow(ctx, first.ID)
	require.NoError(t, err)
	secondElements, err := svc.Flows.ListElementsByFlow(ctx, second.ID)
	require.NoError(t, err)

	screen, err := svc.Flows.CreateElement(ctx, CreateFlowElementInput{
		FlowID: first.ID, Type: constants.ElementTypeScreen, Label: "Welcome",
	})
	require.NoError(t, err)

	// Unknown source
	_, err = svc.Flows.CreateConnection(ctx, CreateFlowConnectionInput{
		FlowID: first.ID, SourceElementID: "nope", TargetElementID: screen.ID,
	})
	assert.True(t, errors.IsNotFound(err))

	// Target from another flow
	_, err = svc.Flows.CreateConnection(ctx, CreateFlowConnectionInput{
		FlowID:          first.ID,
		SourceElementID: firstElements[0].ID,
		TargetElementID: secondElements[0].ID,
	})
	assert.True(t, errors.IsValidation(err))

	// Self-loop
	_, err = svc.Flows.CreateConnection(ctx, CreateFlowConnectionInput{
		FlowID: first.ID, SourceElementID: screen.ID, TargetElementID: screen.ID,
	})
	assert.True(t, errors.IsInvariantViolation(err))
}

func TestFlowService_CreateConnection_BranchOrder(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	def := createDraftFlow(t, svc, "Onboarding")
	decision, err := svc.Flows.CreateElement(ctx, CreateFlowElementInput{
		FlowID: def.ID, Type: constants.ElementTypeDecision, Label: "Qualified?",
	})
	require.NoError(t, err)
	yes, err := svc.Flows.CreateElement(ctx, CreateFlowElementInput{
		FlowID: def.ID, Type: constants.ElementTypeScreen, Label: "Yes Path",
	})
	require.NoError(t, err)
	no, err := svc.Flows.CreateElement(ctx, CreateFlowElementInput{
		FlowID: def.ID, Type: constants.ElementTypeScreen, Label: "No Path",
	})
	require.NoError(t, err)

	c1, err := svc.Flows.CreateConnection(ctx, CreateFlowConnectionInput{
		FlowID: def.ID, SourceElementID: decision.ID, TargetElementID: yes.ID,
		ConditionLabel: strPtr("Yes"),
	})
	require.NoError(t, err)
	c2, err := svc.Flows.CreateConnection(ctx, CreateFlowConnectionInput{
		FlowID: def.ID, SourceElementID: decision.ID, TargetElementID: no.ID,
		ConditionLabel: strPtr("No"),
	})
	require.NoError(t, err)

	// Branch order is per source element
	assert.Equal(t, 0, c1.SortOrder)
	assert.Equal(t, 1, c2.SortOrder)

	outgoing, err := svc.Flows.ListConnectionsBySource(ctx, decision.ID)
	require.NoError(t, err)
	require.Len(t, outgoing, 2)
	assert.Equal(t, c1.ID, outgoing[0].ID)
	assert.Equal(t, c2.ID, outgoing[1].ID)
}

func TestFlowService_UpdateElementPosition(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	def := createDraftFlow(t, svc, "Onboarding")
	elements, err := svc.Flows.ListElementsByFlow(ctx, def.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Flows.UpdateElementPosition(ctx, elements[0].ID, 120, 340))

	moved, err := svc.Flows.GetElement(ctx, elements[0].ID)
	require.NoError(t, err)
	assert.Equal(t, float64(120), moved.PositionX)
	assert.Equal(t, float64(340), moved.PositionY)
}

func TestFlowService_LintDefinition(t *testing.T) {
	svc := newTestServices(t)

	clean := &models.FlowDefinition{
		TriggerCondition:  json.RawMessage(`"Amount > 10000"`),
		ScheduleFrequency: strPtr("daily"),
	}
	assert.Empty(t, svc.Flows.LintDefinition(clean))

	broken := &models.FlowDefinition{
		TriggerCondition:  json.RawMessage(`"Amount >"`),
		ScheduleFrequency: strPtr("every blue moon"),
	}
	warnings := svc.Flows.LintDefinition(broken)
	assert.Len(t, warnings, 2)

	cronExpr := &models.FlowDefinition{ScheduleFrequency: strPtr("0 6 * * 1")}
	assert.Empty(t, svc.Flows.LintDefinition(cronExpr))
}

// Builds a decision flow end to end and walks the stored shape back out.
func TestFlowService_BuildGraphScenario(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	event := constants.TriggerEventCreate
	def, err := svc.Flows.CreateDefinition(ctx, CreateFlowDefinitionInput{
		Name:          "Lead Routing",
		Type:          constants.FlowTypeRecordTriggered,
		TriggerObject: strPtr("Account"),
		TriggerEvent:  &event,
	})
	require.NoError(t, err)

	elements, err := svc.Flows.ListElementsByFlow(ctx, def.ID)
	require.NoError(t, err)
	start := elements[0]

	decision, err := svc.Flows.CreateElement(ctx, CreateFlowElementInput{
		FlowID: def.ID, Type: constants.ElementTypeDecision, Label: "Big Deal?",
		PositionX: 400, PositionY: 200,
	})
	require.NoError(t, err)
	assign, err := svc.Flows.CreateElement(ctx, CreateFlowElementInput{
		FlowID: def.ID, Type: constants.ElementTypeAssignment, Label: "Route to AE",
		PositionX: 250, PositionY: 350,
	})
	require.NoError(t, err)

	_, err = svc.Flows.CreateConnection(ctx, CreateFlowConnectionInput{
		FlowID: def.ID, SourceElementID: start.ID, TargetElementID: decision.ID,
	})
	require.NoError(t, err)
	_, err = svc.Flows.CreateConnection(ctx, CreateFlowConnectionInput{
		FlowID: def.ID, SourceElementID: decision.ID, TargetElementID: assign.ID,
		ConditionLabel: strPtr("Yes"),
		Condition:      json.RawMessage(`"Amount > 100000"`),
	})
	require.NoError(t, err)

	_, err = svc.Flows.Activate(ctx, def.ID)
	require.NoError(t, err)

	// The stored graph round-trips
	elements, err = svc.Flows.ListElementsByFlow(ctx, def.ID)
	require.NoError(t, err)
	assert.Len(t, elements, 3)

	connections, err := svc.Flows.ListConnectionsByFlow(ctx, def.ID)
	require.NoError(t, err)
	assert.Len(t, connections, 2)

	active, err := svc.Flows.ListDefinitionsByTrigger(ctx, "Account", constants.TriggerEventCreate)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Lead Routing", active[0].Name)
}
