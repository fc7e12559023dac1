package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/lqor/igorforce/internal/domain/flowstate"
	"github.com/lqor/igorforce/internal/domain/models"
	"github.com/lqor/igorforce/internal/infrastructure/database"
	"github.com/lqor/igorforce/internal/infrastructure/persistence"
	"github.com/lqor/igorforce/pkg/constants"
	"github.com/lqor/igorforce/pkg/errors"
	"github.com/lqor/igorforce/pkg/expression"
	"github.com/lqor/igorforce/pkg/utils"
)

// FlowService owns the flow graph store: definitions with their lifecycle,
// elements, and connections. The graph is purely declarative here; nothing
// in this service interprets or executes it.
type FlowService struct {
	mu    sync.RWMutex
	db    *sql.DB
	tm    *persistence.TransactionManager
	flows *persistence.FlowRepository
	sm    *flowstate.Machine
}

// NewFlowService creates a new FlowService
func NewFlowService(conn *database.Connection) *FlowService {
	return &FlowService{
		db:    conn.DB(),
		tm:    persistence.NewTransactionManager(conn),
		flows: persistence.NewFlowRepository(),
		sm:    flowstate.NewMachine(),
	}
}

// ==================== Flow Definitions ====================

// CreateFlowDefinitionInput carries the arguments for creating a flow definition
type CreateFlowDefinitionInput struct {
	Name              string                      `json:"name"`
	Description       *string                     `json:"description,omitempty"`
	Type              constants.FlowType          `json:"type"`
	TriggerObject     *string                     `json:"trigger_object,omitempty"`
	TriggerEvent      *constants.FlowTriggerEvent `json:"trigger_event,omitempty"`
	TriggerCondition  json.RawMessage             `json:"trigger_condition,omitempty"`
	ScheduleFrequency *string                     `json:"schedule_frequency,omitempty"`
}

// CreateDefinition creates a flow definition in draft at version 1 and,
// atomically with it, the mandatory start element at the default canvas
// position.
func (s *FlowService) CreateDefinition(ctx context.Context, input CreateFlowDefinitionInput) (*models.FlowDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.Name == "" {
		return nil, errors.NewValidationError("name", "Flow name is required")
	}
	if !constants.IsValidFlowType(input.Type) {
		return nil, errors.NewValidationError("type", fmt.Sprintf("unknown flow type '%s'", input.Type))
	}
	if input.TriggerEvent != nil && !constants.IsValidTriggerEvent(*input.TriggerEvent) {
		return nil, errors.NewValidationError("trigger_event", fmt.Sprintf("unknown trigger event '%s'", *input.TriggerEvent))
	}

	def := &models.FlowDefinition{
		ID:                utils.GenerateID(),
		Name:              input.Name,
		Description:       input.Description,
		Type:              input.Type,
		Status:            constants.FlowStatusDraft,
		TriggerObject:     input.TriggerObject,
		TriggerEvent:      input.TriggerEvent,
		TriggerCondition:  input.TriggerCondition,
		ScheduleFrequency: input.ScheduleFrequency,
		Version:           1,
	}
	start := &models.FlowElement{
		ID:        utils.GenerateID(),
		FlowID:    def.ID,
		Type:      constants.ElementTypeStart,
		Label:     constants.StartElementLabel,
		PositionX: constants.StartElementPositionX,
		PositionY: constants.StartElementPositionY,
		SortOrder: 0,
	}

	err := s.tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		existing, err := s.flows.GetDefinitionByName(ctx, tx, input.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			return errors.NewConflictError("Flow definition", "name", input.Name)
		}
		if err := s.flows.InsertDefinition(ctx, tx, def); err != nil {
			return err
		}
		return s.flows.InsertElement(ctx, tx, start)
	})
	if err != nil {
		return nil, err
	}
	return def, nil
}

// GetDefinition returns a flow definition by id
func (s *FlowService) GetDefinition(ctx context.Context, id string) (*models.FlowDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, err := s.flows.GetDefinition(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, errors.NewNotFoundError("Flow definition", id)
	}
	return def, nil
}

// GetDefinitionByName returns a flow definition by its unique name
func (s *FlowService) GetDefinitionByName(ctx context.Context, name string) (*models.FlowDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, err := s.flows.GetDefinitionByName(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, errors.NewNotFoundError("Flow definition", name)
	}
	return def, nil
}

// ListDefinitions returns all flow definitions
func (s *FlowService) ListDefinitions(ctx context.Context) ([]models.FlowDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flows.ListDefinitions(ctx, s.db)
}

// ListDefinitionsByStatus returns the flow definitions with a given status
func (s *FlowService) ListDefinitionsByStatus(ctx context.Context, status constants.FlowStatus) ([]models.FlowDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !constants.IsValidFlowStatus(status) {
		return nil, errors.NewValidationError("status", fmt.Sprintf("unknown flow status '%s'", status))
	}
	return s.flows.ListDefinitionsByStatus(ctx, s.db, status)
}

// ListDefinitionsByTrigger returns the active flow definitions registered
// for a trigger object and event pair.
func (s *FlowService) ListDefinitionsByTrigger(ctx context.Context, triggerObject string, triggerEvent constants.FlowTriggerEvent) ([]models.FlowDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !constants.IsValidTriggerEvent(triggerEvent) {
		return nil, errors.NewValidationError("trigger_event", fmt.Sprintf("unknown trigger event '%s'", triggerEvent))
	}
	return s.flows.ListDefinitionsByTrigger(ctx, s.db, triggerObject, triggerEvent)
}

// UpdateDefinition applies a partial update; nil members leave the stored
// values untouched. Status and version are not updatable here, only via
// Activate and Deactivate.
func (s *FlowService) UpdateDefinition(ctx context.Context, id string, update models.FlowDefinitionUpdate) (*models.FlowDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if update.Type != nil && !constants.IsValidFlowType(*update.Type) {
		return nil, errors.NewValidationError("type", fmt.Sprintf("unknown flow type '%s'", *update.Type))
	}
	if update.TriggerEvent != nil && !constants.IsValidTriggerEvent(*update.TriggerEvent) {
		return nil, errors.NewValidationError("trigger_event", fmt.Sprintf("unknown trigger event '%s'", *update.TriggerEvent))
	}

	var def *models.FlowDefinition
	err := s.tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		existing, err := s.flows.GetDefinition(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return errors.NewNotFoundError("Flow definition", id)
		}

		if update.Name != nil && *update.Name != existing.Name {
			dup, err := s.flows.GetDefinitionByName(ctx, tx, *update.Name)
			if err != nil {
				return err
			}
			if dup != nil {
				return errors.NewConflictError("Flow definition", "name", *update.Name)
			}
			existing.Name = *update.Name
		}
		if update.Description != nil {
			existing.Description = update.Description
		}
		if update.Type != nil {
			existing.Type = *update.Type
		}
		if update.TriggerObject != nil {
			existing.TriggerObject = update.TriggerObject
		}
		if update.TriggerEvent != nil {
			existing.TriggerEvent = update.TriggerEvent
		}
		if update.TriggerCondition != nil {
			existing.TriggerCondition = update.TriggerCondition
		}
		if update.ScheduleFrequency != nil {
			existing.ScheduleFrequency = update.ScheduleFrequency
		}

		def = existing
		return s.flows.UpdateDefinition(ctx, tx, existing)
	})
	if err != nil {
		return nil, err
	}
	return def, nil
}

// Activate publishes a flow definition. Preconditions, checked before any
// write: the flow must carry a start element, and a record-triggered flow
// must have both trigger object and trigger event configured. On success
// the version increments by one.
func (s *FlowService) Activate(ctx context.Context, id string) (*models.FlowDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var def *models.FlowDefinition
	err := s.tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		existing, err := s.flows.GetDefinition(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return errors.NewNotFoundError("Flow definition", id)
		}

		startCount, err := s.flows.CountElementsByType(ctx, tx, id, constants.ElementTypeStart)
		if err != nil {
			return err
		}
		if startCount == 0 {
			return errors.NewValidationError("elements", "Flow must have a Start element")
		}
		if existing.Type == constants.FlowTypeRecordTriggered {
			if existing.TriggerObject == nil || *existing.TriggerObject == "" ||
				existing.TriggerEvent == nil || *existing.TriggerEvent == "" {
				return errors.NewValidationError("trigger", "Record-triggered flows require triggerObject and triggerEvent")
			}
		}

		next, err := s.sm.Transition(existing.Status, flowstate.TransitionActivate)
		if err != nil {
			return errors.NewInvariantViolationError(err.Error())
		}
		existing.Status = next
		existing.Version++

		def = existing
		return s.flows.UpdateDefinition(ctx, tx, existing)
	})
	if err != nil {
		return nil, err
	}
	return def, nil
}

// Deactivate takes a flow definition out of service. There is no
// precondition beyond existence.
func (s *FlowService) Deactivate(ctx context.Context, id string) (*models.FlowDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var def *models.FlowDefinition
	err := s.tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		existing, err := s.flows.GetDefinition(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return errors.NewNotFoundError("Flow definition", id)
		}
		existing.Status = constants.FlowStatusInactive
		def = existing
		return s.flows.UpdateDefinition(ctx, tx, existing)
	})
	if err != nil {
		return nil, err
	}
	return def, nil
}

// DeleteDefinition removes a flow definition together with all of its
// connections and elements in one transaction. Active flows must be
// deactivated first.
func (s *FlowService) DeleteDefinition(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		def, err := s.flows.GetDefinition(ctx, tx, id)
		if err != nil {
			return err
		}
		if def == nil {
			return errors.NewNotFoundError("Flow definition", id)
		}
		if !s.sm.CanRemove(def.Status) {
			return errors.NewInvariantViolationError("cannot delete an active flow; deactivate it first")
		}
		if err := s.flows.DeleteConnectionsByFlow(ctx, tx, id); err != nil {
			return err
		}
		if err := s.flows.DeleteElementsByFlow(ctx, tx, id); err != nil {
			return err
		}
		return s.flows.DeleteDefinition(ctx, tx, id)
	})
}

// LintDefinition returns advisory warnings about a definition's opaque
// payloads: a trigger condition that does not compile as an expression, or
// a schedule frequency the cron parser cannot understand. Warnings never
// block persistence.
func (s *FlowService) LintDefinition(def *models.FlowDefinition) []string {
	var warnings []string
	if w := expression.LintCondition("trigger condition", def.TriggerCondition); w != "" {
		warnings = append(warnings, w)
	}
	if def.ScheduleFrequency != nil && *def.ScheduleFrequency != "" {
		if w := lintScheduleFrequency(*def.ScheduleFrequency); w != "" {
			warnings = append(warnings, w)
		}
	}
	return warnings
}

// lintScheduleFrequency accepts plain keywords (daily, hourly, ...) via the
// cron descriptor syntax as well as standard five-field cron expressions.
func lintScheduleFrequency(freq string) string {
	candidate := freq
	if !strings.Contains(freq, " ") && !strings.HasPrefix(freq, "@") {
		candidate = "@" + freq
	}
	if _, err := cron.ParseStandard(candidate); err != nil {
		return fmt.Sprintf("schedule frequency %q is not a recognized schedule: %v", freq, err)
	}
	return ""
}

// ==================== Flow Elements ====================

// CreateFlowElementInput carries the arguments for creating a flow element
type CreateFlowElementInput struct {
	FlowID                string                    `json:"flow_id"`
	Type                  constants.FlowElementType `json:"type"`
	Label                 string                    `json:"label"`
	Description           *string                   `json:"description,omitempty"`
	PositionX             float64                   `json:"position_x"`
	PositionY             float64                   `json:"position_y"`
	Config                json.RawMessage           `json:"config,omitempty"`
	DefaultConnectorLabel *string                   `json:"default_connector_label,omitempty"`
}

// CreateElement appends an element to a flow's graph. The sort order is
// one past the current maximum for the flow, assigned inside the insert
// transaction.
func (s *FlowService) CreateElement(ctx context.Context, input CreateFlowElementInput) (*models.FlowElement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !constants.IsValidElementType(input.Type) {
		return nil, errors.NewValidationError("type", fmt.Sprintf("unknown element type '%s'", input.Type))
	}

	el := &models.FlowElement{
		ID:                    utils.GenerateID(),
		FlowID:                input.FlowID,
		Type:                  input.Type,
		Label:                 input.Label,
		Description:           input.Description,
		PositionX:             input.PositionX,
		PositionY:             input.PositionY,
		Config:                input.Config,
		DefaultConnectorLabel: input.DefaultConnectorLabel,
	}

	err := s.tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		def, err := s.flows.GetDefinition(ctx, tx, input.FlowID)
		if err != nil {
			return err
		}
		if def == nil {
			return errors.NewNotFoundError("Flow definition", input.FlowID)
		}
		maxSort, err := s.flows.MaxElementSortOrder(ctx, tx, input.FlowID)
		if err != nil {
			return err
		}
		el.SortOrder = maxSort + 1
		return s.flows.InsertElement(ctx, tx, el)
	})
	if err != nil {
		return nil, err
	}
	return el, nil
}

// GetElement returns a flow element by id
func (s *FlowService) GetElement(ctx context.Context, id string) (*models.FlowElement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	el, err := s.flows.GetElement(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if el == nil {
		return nil, errors.NewNotFoundError("Flow element", id)
	}
	return el, nil
}

// ListElementsByFlow returns a flow's elements in sort order
func (s *FlowService) ListElementsByFlow(ctx context.Context, flowID string) ([]models.FlowElement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flows.ListElementsByFlow(ctx, s.db, flowID)
}

// UpdateElement applies a partial update to a flow element
func (s *FlowService) UpdateElement(ctx context.Context, id string, update models.FlowElementUpdate) (*models.FlowElement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var el *models.FlowElement
	err := s.tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		existing, err := s.flows.GetElement(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return errors.NewNotFoundError("Flow element", id)
		}

		if update.Label != nil {
			existing.Label = *update.Label
		}
		if update.Description != nil {
			existing.Description = update.Description
		}
		if update.PositionX != nil {
			existing.PositionX = *update.PositionX
		}
		if update.PositionY != nil {
			existing.PositionY = *update.PositionY
		}
		if update.Config != nil {
			existing.Config = update.Config
		}
		if update.DefaultConnectorLabel != nil {
			existing.DefaultConnectorLabel = update.DefaultConnectorLabel
		}
		if update.SortOrder != nil {
			existing.SortOrder = *update.SortOrder
		}

		el = existing
		return s.flows.UpdateElement(ctx, tx, existing)
	})
	if err != nil {
		return nil, err
	}
	return el, nil
}

// UpdateElementPosition is a dedicated fast path that touches only the
// canvas coordinates.
func (s *FlowService) UpdateElementPosition(ctx context.Context, id string, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, err := s.flows.GetElement(ctx, s.db, id)
	if err != nil {
		return err
	}
	if el == nil {
		return errors.NewNotFoundError("Flow element", id)
	}
	return s.flows.UpdateElementPosition(ctx, s.db, id, x, y)
}

// DeleteElement removes an element and, atomically, every connection that
// references it as source or target. The start element can never be
// deleted.
func (s *FlowService) DeleteElement(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		el, err := s.flows.GetElement(ctx, tx, id)
		if err != nil {
			return err
		}
		if el == nil {
			return errors.NewNotFoundError("Flow element", id)
		}
		if el.Type == constants.ElementTypeStart {
			return errors.NewInvariantViolationError("cannot delete the Start element")
		}
		if err := s.flows.DeleteConnectionsByElement(ctx, tx, id); err != nil {
			return err
		}
		return s.flows.DeleteElement(ctx, tx, id)
	})
}

// ==================== Flow Connections ====================

// CreateFlowConnectionInput carries the arguments for creating a connection
type CreateFlowConnectionInput struct {
	FlowID          string  `json:"flow_id"`
	SourceElementID string  `json:"source_element_id"`
	TargetElementID string  `json:"target_element_id"`
	ConditionLabel  *string `json:"condition_label,omitempty"`
	Condition       json.RawMessage `json:"condition,omitempty"`
}

// CreateConnection adds a directed edge between two elements of the same
// flow. Self-loops are rejected; source and target must both belong to the
// stated flow. The sort order is one past the current maximum among the
// source element's outgoing connections, producing a stable branch order.
func (s *FlowService) CreateConnection(ctx context.Context, input CreateFlowConnectionInput) (*models.FlowConnection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn := &models.FlowConnection{
		ID:              utils.GenerateID(),
		FlowID:          input.FlowID,
		SourceElementID: input.SourceElementID,
		TargetElementID: input.TargetElementID,
		ConditionLabel:  input.ConditionLabel,
		Condition:       input.Condition,
	}

	err := s.tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		source, err := s.flows.GetElement(ctx, tx, input.SourceElementID)
		if err != nil {
			return err
		}
		if source == nil {
			return errors.NewNotFoundError("Source element", input.SourceElementID)
		}
		if source.FlowID != input.FlowID {
			return errors.NewValidationError("source_element_id", "source element belongs to a different flow")
		}

		target, err := s.flows.GetElement(ctx, tx, input.TargetElementID)
		if err != nil {
			return err
		}
		if target == nil {
			return errors.NewNotFoundError("Target element", input.TargetElementID)
		}
		if target.FlowID != input.FlowID {
			return errors.NewValidationError("target_element_id", "target element belongs to a different flow")
		}

		if input.SourceElementID == input.TargetElementID {
			return errors.NewInvariantViolationError("cannot connect an element to itself")
		}

		maxSort, err := s.flows.MaxConnectionSortOrder(ctx, tx, input.SourceElementID)
		if err != nil {
			return err
		}
		conn.SortOrder = maxSort + 1
		return s.flows.InsertConnection(ctx, tx, conn)
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// GetConnection returns a flow connection by id
func (s *FlowService) GetConnection(ctx context.Context, id string) (*models.FlowConnection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conn, err := s.flows.GetConnection(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, errors.NewNotFoundError("Flow connection", id)
	}
	return conn, nil
}

// ListConnectionsByFlow returns a flow's connections in sort order
func (s *FlowService) ListConnectionsByFlow(ctx context.Context, flowID string) ([]models.FlowConnection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flows.ListConnectionsByFlow(ctx, s.db, flowID)
}

// ListConnectionsBySource returns the ordered outgoing connections of an element
func (s *FlowService) ListConnectionsBySource(ctx context.Context, sourceElementID string) ([]models.FlowConnection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flows.ListConnectionsBySource(ctx, s.db, sourceElementID)
}

// ListConnectionsByTarget returns the ordered incoming connections of an element
func (s *FlowService) ListConnectionsByTarget(ctx context.Context, targetElementID string) ([]models.FlowConnection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flows.ListConnectionsByTarget(ctx, s.db, targetElementID)
}

// UpdateConnection applies a partial update to a connection
func (s *FlowService) UpdateConnection(ctx context.Context, id string, update models.FlowConnectionUpdate) (*models.FlowConnection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var conn *models.FlowConnection
	err := s.tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		existing, err := s.flows.GetConnection(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return errors.NewNotFoundError("Flow connection", id)
		}

		if update.ConditionLabel != nil {
			existing.ConditionLabel = update.ConditionLabel
		}
		if update.Condition != nil {
			existing.Condition = update.Condition
		}
		if update.SortOrder != nil {
			existing.SortOrder = *update.SortOrder
		}

		conn = existing
		return s.flows.UpdateConnection(ctx, tx, existing)
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// DeleteConnection removes a connection
func (s *FlowService) DeleteConnection(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		conn, err := s.flows.GetConnection(ctx, tx, id)
		if err != nil {
			return err
		}
		if conn == nil {
			return errors.NewNotFoundError("Flow connection", id)
		}
		return s.flows.DeleteConnection(ctx, tx, id)
	})
}
