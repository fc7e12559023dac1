// Package models defines the persisted entities of the metadata catalog,
// the record store and the flow graph store.
package models

import (
	"encoding/json"

	"github.com/lqor/igorforce/pkg/constants"
)

// Object is a logical record type: a user- or system-defined "table".
type Object struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Label       string  `json:"label"`
	PluralLabel string  `json:"plural_label"`
	IsCustom    bool    `json:"is_custom"`
	Icon        string  `json:"icon"`
	Description *string `json:"description,omitempty"`
}

// Field is an attribute descriptor owned by exactly one Object.
type Field struct {
	ID             string              `json:"id"`
	ObjectID       string              `json:"object_id"`
	APIName        string              `json:"api_name"`
	Label          string              `json:"label"`
	Type           constants.FieldType `json:"type"`
	Required       bool                `json:"required"`
	DefaultValue   *string             `json:"default_value,omitempty"`
	PicklistValues []string            `json:"picklist_values,omitempty"`
	LookupObject   *string             `json:"lookup_object,omitempty"`
	IsNameField    bool                `json:"is_name_field"`
	IsCustom       bool                `json:"is_custom"`
	SortOrder      int                 `json:"sort_order"`
}

// FieldUpdate carries the mutable subset of a field. A nil member means
// "leave the stored value unchanged", never "set to null".
type FieldUpdate struct {
	Label          *string  `json:"label,omitempty"`
	Required       *bool    `json:"required,omitempty"`
	PicklistValues []string `json:"picklist_values,omitempty"`
	DefaultValue   *string  `json:"default_value,omitempty"`
}

// LookupFieldRef pairs a lookup field with its owning object, used to
// materialize the inverse side of a lookup relationship.
type LookupFieldRef struct {
	Field       Field  `json:"field"`
	ObjectName  string `json:"object_name"`
	ObjectLabel string `json:"object_label"`
}

// Record is an instance of an Object. Data maps field API names to values;
// the keys are advisory and never validated against the field catalog.
type Record struct {
	ID       string         `json:"id"`
	ObjectID string         `json:"object_id"`
	Data     map[string]any `json:"data"`
}

// FlowDefinition is a named, versioned process container.
type FlowDefinition struct {
	ID                string                      `json:"id"`
	Name              string                      `json:"name"`
	Description       *string                     `json:"description,omitempty"`
	Type              constants.FlowType          `json:"type"`
	Status            constants.FlowStatus        `json:"status"`
	TriggerObject     *string                     `json:"trigger_object,omitempty"`
	TriggerEvent      *constants.FlowTriggerEvent `json:"trigger_event,omitempty"`
	TriggerCondition  json.RawMessage             `json:"trigger_condition,omitempty"`
	ScheduleFrequency *string                     `json:"schedule_frequency,omitempty"`
	Version           int                         `json:"version"`
}

// FlowDefinitionUpdate carries partial updates for a flow definition.
// Nil members leave the stored values untouched.
type FlowDefinitionUpdate struct {
	Name              *string                     `json:"name,omitempty"`
	Description       *string                     `json:"description,omitempty"`
	Type              *constants.FlowType         `json:"type,omitempty"`
	TriggerObject     *string                     `json:"trigger_object,omitempty"`
	TriggerEvent      *constants.FlowTriggerEvent `json:"trigger_event,omitempty"`
	TriggerCondition  json.RawMessage             `json:"trigger_condition,omitempty"`
	ScheduleFrequency *string                     `json:"schedule_frequency,omitempty"`
}

// FlowElement is a node in a flow definition's graph.
type FlowElement struct {
	ID                    string                    `json:"id"`
	FlowID                string                    `json:"flow_id"`
	Type                  constants.FlowElementType `json:"type"`
	Label                 string                    `json:"label"`
	Description           *string                   `json:"description,omitempty"`
	PositionX             float64                   `json:"position_x"`
	PositionY             float64                   `json:"position_y"`
	Config                json.RawMessage           `json:"config,omitempty"`
	DefaultConnectorLabel *string                   `json:"default_connector_label,omitempty"`
	SortOrder             int                       `json:"sort_order"`
}

// FlowElementUpdate carries partial updates for a flow element.
type FlowElementUpdate struct {
	Label                 *string         `json:"label,omitempty"`
	Description           *string         `json:"description,omitempty"`
	PositionX             *float64        `json:"position_x,omitempty"`
	PositionY             *float64        `json:"position_y,omitempty"`
	Config                json.RawMessage `json:"config,omitempty"`
	DefaultConnectorLabel *string         `json:"default_connector_label,omitempty"`
	SortOrder             *int            `json:"sort_order,omitempty"`
}

// FlowConnection is a directed edge between two elements of the same flow.
type FlowConnection struct {
	ID              string          `json:"id"`
	FlowID          string          `json:"flow_id"`
	SourceElementID string          `json:"source_element_id"`
	TargetElementID string          `json:"target_element_id"`
	ConditionLabel  *string         `json:"condition_label,omitempty"`
	Condition       json.RawMessage `json:"condition,omitempty"`
	SortOrder       int             `json:"sort_order"`
}

// FlowConnectionUpdate carries partial updates for a flow connection.
type FlowConnectionUpdate struct {
	ConditionLabel *string         `json:"condition_label,omitempty"`
	Condition      json.RawMessage `json:"condition,omitempty"`
	SortOrder      *int            `json:"sort_order,omitempty"`
}

// User is an authenticated operator of the REST surface.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
}
