package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lqor/igorforce/internal/domain/models"
	"github.com/lqor/igorforce/pkg/constants"
)

const flowDefinitionColumns = "id, name, description, type, status, trigger_object, trigger_event, trigger_condition, schedule_frequency, version"

const flowElementColumns = "id, flow_id, type, label, description, position_x, position_y, config, default_connector_label, sort_order"

const flowConnectionColumns = "id, flow_id, source_element_id, target_element_id, condition_label, condition, sort_order"

// FlowRepository persists the flow graph aggregate: definitions, elements
// and connections.
type FlowRepository struct{}

// NewFlowRepository creates a new FlowRepository
func NewFlowRepository() *FlowRepository {
	return &FlowRepository{}
}

// ==================== Flow Definitions ====================

// InsertDefinition writes a new flow definition
func (r *FlowRepository) InsertDefinition(ctx context.Context, q DBTX, def *models.FlowDefinition) error {
	condition, err := nullableJSON(def.TriggerCondition)
	if err != nil {
		return err
	}
	var event any
	if def.TriggerEvent != nil {
		event = string(*def.TriggerEvent)
	}
	_, err = q.ExecContext(ctx,
		"INSERT INTO flow_definitions (id, name, description, type, status, trigger_object, trigger_event, trigger_condition, schedule_frequency, version) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		def.ID, def.Name, nullableString(def.Description), string(def.Type), string(def.Status),
		nullableString(def.TriggerObject), event, condition, nullableString(def.ScheduleFrequency), def.Version)
	if err != nil {
		return fmt.Errorf("failed to insert flow definition: %w", err)
	}
	return nil
}

// GetDefinition returns the flow definition with the given id, or nil when absent
func (r *FlowRepository) GetDefinition(ctx context.Context, q DBTX, id string) (*models.FlowDefinition, error) {
	row := q.QueryRowContext(ctx, "SELECT "+flowDefinitionColumns+" FROM flow_definitions WHERE id = ?", id)
	return scanDefinitionRow(row)
}

// GetDefinitionByName returns the flow definition with the given name, or nil when absent
func (r *FlowRepository) GetDefinitionByName(ctx context.Context, q DBTX, name string) (*models.FlowDefinition, error) {
	row := q.QueryRowContext(ctx, "SELECT "+flowDefinitionColumns+" FROM flow_definitions WHERE name = ?", name)
	return scanDefinitionRow(row)
}

// ListDefinitions returns all flow definitions ordered by name
func (r *FlowRepository) ListDefinitions(ctx context.Context, q DBTX) ([]models.FlowDefinition, error) {
	return r.queryDefinitions(ctx, q, "SELECT "+flowDefinitionColumns+" FROM flow_definitions ORDER BY name")
}

// ListDefinitionsByStatus returns flow definitions with the given status
func (r *FlowRepository) ListDefinitionsByStatus(ctx context.Context, q DBTX, status constants.FlowStatus) ([]models.FlowDefinition, error) {
	return r.queryDefinitions(ctx, q,
		"SELECT "+flowDefinitionColumns+" FROM flow_definitions WHERE status = ? ORDER BY name", string(status))
}

// ListDefinitionsByTrigger returns active flow definitions for a trigger pair
func (r *FlowRepository) ListDefinitionsByTrigger(ctx context.Context, q DBTX, triggerObject string, triggerEvent constants.FlowTriggerEvent) ([]models.FlowDefinition, error) {
	return r.queryDefinitions(ctx, q,
		"SELECT "+flowDefinitionColumns+" FROM flow_definitions WHERE trigger_object = ? AND trigger_event = ? AND status = ? ORDER BY name",
		triggerObject, string(triggerEvent), string(constants.FlowStatusActive))
}

func (r *FlowRepository) queryDefinitions(ctx context.Context, q DBTX, query string, args ...any) ([]models.FlowDefinition, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query flow definitions: %w", err)
	}
	defer rows.Close()

	defs := make([]models.FlowDefinition, 0)
	for rows.Next() {
		def, err := scanDefinition(rows.Scan)
		if err != nil {
			return nil, err
		}
		defs = append(defs, *def)
	}
	return defs, rows.Err()
}

// UpdateDefinition rewrites a flow definition row
func (r *FlowRepository) UpdateDefinition(ctx context.Context, q DBTX, def *models.FlowDefinition) error {
	condition, err := nullableJSON(def.TriggerCondition)
	if err != nil {
		return err
	}
	var event any
	if def.TriggerEvent != nil {
		event = string(*def.TriggerEvent)
	}
	_, err = q.ExecContext(ctx,
		"UPDATE flow_definitions SET name = ?, description = ?, type = ?, status = ?, trigger_object = ?, trigger_event = ?, trigger_condition = ?, schedule_frequency = ?, version = ? WHERE id = ?",
		def.Name, nullableString(def.Description), string(def.Type), string(def.Status),
		nullableString(def.TriggerObject), event, condition, nullableString(def.ScheduleFrequency),
		def.Version, def.ID)
	if err != nil {
		return fmt.Errorf("failed to update flow definition: %w", err)
	}
	return nil
}

// DeleteDefinition removes the definition row itself
func (r *FlowRepository) DeleteDefinition(ctx context.Context, q DBTX, id string) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM flow_definitions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete flow definition: %w", err)
	}
	return nil
}

func scanDefinitionRow(row *sql.Row) (*models.FlowDefinition, error) {
	def, err := scanDefinition(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return def, nil
}

func scanDefinition(scan func(dest ...any) error) (*models.FlowDefinition, error) {
	var def models.FlowDefinition
	var flowType, status string
	var description, triggerObject, triggerEvent, triggerCondition, scheduleFrequency sql.NullString
	err := scan(&def.ID, &def.Name, &description, &flowType, &status,
		&triggerObject, &triggerEvent, &triggerCondition, &scheduleFrequency, &def.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan flow definition: %w", err)
	}
	def.Type = constants.FlowType(flowType)
	def.Status = constants.FlowStatus(status)
	def.Description = stringPtr(description)
	def.TriggerObject = stringPtr(triggerObject)
	if triggerEvent.Valid {
		event := constants.FlowTriggerEvent(triggerEvent.String)
		def.TriggerEvent = &event
	}
	def.TriggerCondition = rawJSON(triggerCondition)
	def.ScheduleFrequency = stringPtr(scheduleFrequency)
	return &def, nil
}

// ==================== Flow Elements ====================

// InsertElement writes a new flow element
func (r *FlowRepository) InsertElement(ctx context.Context, q DBTX, el *models.FlowElement) error {
	config, err := nullableJSON(el.Config)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		"INSERT INTO flow_elements (id, flow_id, type, label, description, position_x, position_y, config, default_connector_label, sort_order) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		el.ID, el.FlowID, string(el.Type), el.Label, nullableString(el.Description),
		el.PositionX, el.PositionY, config, nullableString(el.DefaultConnectorLabel), el.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to insert flow element: %w", err)
	}
	return nil
}

// GetElement returns the element with the given id, or nil when absent
func (r *FlowRepository) GetElement(ctx context.Context, q DBTX, id string) (*models.FlowElement, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+flowElementColumns+" FROM flow_elements WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query flow element: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanElement(rows.Scan)
}

// ListElementsByFlow returns a flow's elements ordered by sort order
func (r *FlowRepository) ListElementsByFlow(ctx context.Context, q DBTX, flowID string) ([]models.FlowElement, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+flowElementColumns+" FROM flow_elements WHERE flow_id = ? ORDER BY sort_order", flowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query flow elements: %w", err)
	}
	defer rows.Close()

	elements := make([]models.FlowElement, 0)
	for rows.Next() {
		el, err := scanElement(rows.Scan)
		if err != nil {
			return nil, err
		}
		elements = append(elements, *el)
	}
	return elements, rows.Err()
}

// CountElementsByType returns how many elements of a type a flow has
func (r *FlowRepository) CountElementsByType(ctx context.Context, q DBTX, flowID string, elementType constants.FlowElementType) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM flow_elements WHERE flow_id = ? AND type = ?",
		flowID, string(elementType)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count flow elements: %w", err)
	}
	return n, nil
}

// MaxElementSortOrder returns the highest sort order within a flow, -1 when empty
func (r *FlowRepository) MaxElementSortOrder(ctx context.Context, q DBTX, flowID string) (int, error) {
	var max sql.NullInt64
	err := q.QueryRowContext(ctx,
		"SELECT MAX(sort_order) FROM flow_elements WHERE flow_id = ?", flowID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to query element sort order: %w", err)
	}
	if !max.Valid {
		return -1, nil
	}
	return int(max.Int64), nil
}

// UpdateElement rewrites a flow element row
func (r *FlowRepository) UpdateElement(ctx context.Context, q DBTX, el *models.FlowElement) error {
	config, err := nullableJSON(el.Config)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		"UPDATE flow_elements SET label = ?, description = ?, position_x = ?, position_y = ?, config = ?, default_connector_label = ?, sort_order = ? WHERE id = ?",
		el.Label, nullableString(el.Description), el.PositionX, el.PositionY, config,
		nullableString(el.DefaultConnectorLabel), el.SortOrder, el.ID)
	if err != nil {
		return fmt.Errorf("failed to update flow element: %w", err)
	}
	return nil
}

// UpdateElementPosition touches only the canvas coordinates
func (r *FlowRepository) UpdateElementPosition(ctx context.Context, q DBTX, id string, x, y float64) error {
	_, err := q.ExecContext(ctx,
		"UPDATE flow_elements SET position_x = ?, position_y = ? WHERE id = ?", x, y, id)
	if err != nil {
		return fmt.Errorf("failed to update element position: %w", err)
	}
	return nil
}

// DeleteElement removes a single element
func (r *FlowRepository) DeleteElement(ctx context.Context, q DBTX, id string) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM flow_elements WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete flow element: %w", err)
	}
	return nil
}

// DeleteElementsByFlow removes every element of a flow
func (r *FlowRepository) DeleteElementsByFlow(ctx context.Context, q DBTX, flowID string) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM flow_elements WHERE flow_id = ?", flowID); err != nil {
		return fmt.Errorf("failed to delete flow elements: %w", err)
	}
	return nil
}

func scanElement(scan func(dest ...any) error) (*models.FlowElement, error) {
	var el models.FlowElement
	var elementType string
	var description, config, connectorLabel sql.NullString
	err := scan(&el.ID, &el.FlowID, &elementType, &el.Label, &description,
		&el.PositionX, &el.PositionY, &config, &connectorLabel, &el.SortOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to scan flow element: %w", err)
	}
	el.Type = constants.FlowElementType(elementType)
	el.Description = stringPtr(description)
	el.Config = rawJSON(config)
	el.DefaultConnectorLabel = stringPtr(connectorLabel)
	return &el, nil
}

// ==================== Flow Connections ====================

// InsertConnection writes a new flow connection
func (r *FlowRepository) InsertConnection(ctx context.Context, q DBTX, conn *models.FlowConnection) error {
	condition, err := nullableJSON(conn.Condition)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		"INSERT INTO flow_connections (id, flow_id, source_element_id, target_element_id, condition_label, condition, sort_order) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?)",
		conn.ID, conn.FlowID, conn.SourceElementID, conn.TargetElementID,
		nullableString(conn.ConditionLabel), condition, conn.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to insert flow connection: %w", err)
	}
	return nil
}

// GetConnection returns the connection with the given id, or nil when absent
func (r *FlowRepository) GetConnection(ctx context.Context, q DBTX, id string) (*models.FlowConnection, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+flowConnectionColumns+" FROM flow_connections WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query flow connection: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanConnection(rows.Scan)
}

// ListConnectionsByFlow returns a flow's connections ordered by sort order
func (r *FlowRepository) ListConnectionsByFlow(ctx context.Context, q DBTX, flowID string) ([]models.FlowConnection, error) {
	return r.queryConnections(ctx, q,
		"SELECT "+flowConnectionColumns+" FROM flow_connections WHERE flow_id = ? ORDER BY sort_order", flowID)
}

// ListConnectionsBySource returns the ordered outgoing connections of an element
func (r *FlowRepository) ListConnectionsBySource(ctx context.Context, q DBTX, sourceElementID string) ([]models.FlowConnection, error) {
	return r.queryConnections(ctx, q,
		"SELECT "+flowConnectionColumns+" FROM flow_connections WHERE source_element_id = ? ORDER BY sort_order", sourceElementID)
}

// ListConnectionsByTarget returns the ordered incoming connections of an element
func (r *FlowRepository) ListConnectionsByTarget(ctx context.Context, q DBTX, targetElementID string) ([]models.FlowConnection, error) {
	return r.queryConnections(ctx, q,
		"SELECT "+flowConnectionColumns+" FROM flow_connections WHERE target_element_id = ? ORDER BY sort_order", targetElementID)
}

func (r *FlowRepository) queryConnections(ctx context.Context, q DBTX, query string, args ...any) ([]models.FlowConnection, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query flow connections: %w", err)
	}
	defer rows.Close()

	conns := make([]models.FlowConnection, 0)
	for rows.Next() {
		conn, err := scanConnection(rows.Scan)
		if err != nil {
			return nil, err
		}
		conns = append(conns, *conn)
	}
	return conns, rows.Err()
}

// MaxConnectionSortOrder returns the highest sort order among connections
// sharing a source element, -1 when there are none.
func (r *FlowRepository) MaxConnectionSortOrder(ctx context.Context, q DBTX, sourceElementID string) (int, error) {
	var max sql.NullInt64
	err := q.QueryRowContext(ctx,
		"SELECT MAX(sort_order) FROM flow_connections WHERE source_element_id = ?", sourceElementID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to query connection sort order: %w", err)
	}
	if !max.Valid {
		return -1, nil
	}
	return int(max.Int64), nil
}

// UpdateConnection rewrites a flow connection row
func (r *FlowRepository) UpdateConnection(ctx context.Context, q DBTX, conn *models.FlowConnection) error {
	condition, err := nullableJSON(conn.Condition)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		"UPDATE flow_connections SET condition_label = ?, condition = ?, sort_order = ? WHERE id = ?",
		nullableString(conn.ConditionLabel), condition, conn.SortOrder, conn.ID)
	if err != nil {
		return fmt.Errorf("failed to update flow connection: %w", err)
	}
	return nil
}

// DeleteConnection removes a single connection
func (r *FlowRepository) DeleteConnection(ctx context.Context, q DBTX, id string) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM flow_connections WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete flow connection: %w", err)
	}
	return nil
}

// DeleteConnectionsByElement removes every connection that references the
// element as source or target.
func (r *FlowRepository) DeleteConnectionsByElement(ctx context.Context, q DBTX, elementID string) error {
	_, err := q.ExecContext(ctx,
		"DELETE FROM flow_connections WHERE source_element_id = ? OR target_element_id = ?",
		elementID, elementID)
	if err != nil {
		return fmt.Errorf("failed to delete connections for element: %w", err)
	}
	return nil
}

// DeleteConnectionsByFlow removes every connection of a flow
func (r *FlowRepository) DeleteConnectionsByFlow(ctx context.Context, q DBTX, flowID string) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM flow_connections WHERE flow_id = ?", flowID); err != nil {
		return fmt.Errorf("failed to delete flow connections: %w", err)
	}
	return nil
}

func scanConnection(scan func(dest ...any) error) (*models.FlowConnection, error) {
	var conn models.FlowConnection
	var conditionLabel, condition sql.NullString
	err := scan(&conn.ID, &conn.FlowID, &conn.SourceElementID, &conn.TargetElementID,
		&conditionLabel, &condition, &conn.SortOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to scan flow connection: %w", err)
	}
	conn.ConditionLabel = stringPtr(conditionLabel)
	conn.Condition = rawJSON(condition)
	return &conn, nil
}
