package constants

// FlowStatus represents the lifecycle status of a flow definition
type FlowStatus string

const (
	FlowStatusDraft    FlowStatus = "draft"
	FlowStatusActive   FlowStatus = "active"
	FlowStatusInactive FlowStatus = "inactive"
)

// IsValidFlowStatus checks whether s is a known lifecycle status
func IsValidFlowStatus(s FlowStatus) bool {
	switch s {
	case FlowStatusDraft, FlowStatusActive, FlowStatusInactive:
		return true
	}
	return false
}

// FlowType represents how a flow is launched
type FlowType string

const (
	FlowTypeScreen          FlowType = "screen"
	FlowTypeRecordTriggered FlowType = "recordTriggered"
	FlowTypeScheduled       FlowType = "scheduled"
	FlowTypeAutolaunched    FlowType = "autolaunched"
)

// IsValidFlowType checks whether t is a known flow type
func IsValidFlowType(t FlowType) bool {
	switch t {
	case FlowTypeScreen, FlowTypeRecordTriggered, FlowTypeScheduled, FlowTypeAutolaunched:
		return true
	}
	return false
}

// FlowTriggerEvent represents the record event that launches a record-triggered flow
type FlowTriggerEvent string

const (
	TriggerEventCreate         FlowTriggerEvent = "create"
	TriggerEventUpdate         FlowTriggerEvent = "update"
	TriggerEventCreateOrUpdate FlowTriggerEvent = "createOrUpdate"
	TriggerEventDelete         FlowTriggerEvent = "delete"
)

// IsValidTriggerEvent checks whether e is a known trigger event
func IsValidTriggerEvent(e FlowTriggerEvent) bool {
	switch e {
	case TriggerEventCreate, TriggerEventUpdate, TriggerEventCreateOrUpdate, TriggerEventDelete:
		return true
	}
	return false
}

// FlowElementType represents the type of a node in a flow graph
type FlowElementType string

const (
	ElementTypeStart         FlowElementType = "start"
	ElementTypeScreen        FlowElementType = "screen"
	ElementTypeDecision      FlowElementType = "decision"
	ElementTypeAssignment    FlowElementType = "assignment"
	ElementTypeLoop          FlowElementType = "loop"
	ElementTypeGetRecords    FlowElementType = "getRecords"
	ElementTypeCreateRecords FlowElementType = "createRecords"
	ElementTypeUpdateRecords FlowElementType = "updateRecords"
	ElementTypeDeleteRecords FlowElementType = "deleteRecords"
	ElementTypeAction        FlowElementType = "action"
	ElementTypeSubflow       FlowElementType = "subflow"
	ElementTypePause         FlowElementType = "pause"
	ElementTypeEnd           FlowElementType = "end"
)

// IsValidElementType checks whether t is a known flow element type
func IsValidElementType(t FlowElementType) bool {
	switch t {
	case ElementTypeStart, ElementTypeScreen, ElementTypeDecision, ElementTypeAssignment,
		ElementTypeLoop, ElementTypeGetRecords, ElementTypeCreateRecords, ElementTypeUpdateRecords,
		ElementTypeDeleteRecords, ElementTypeAction, ElementTypeSubflow, ElementTypePause,
		ElementTypeEnd:
		return true
	}
	return false
}
