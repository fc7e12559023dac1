package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lqor/igorforce/internal/application/services"
	"github.com/lqor/igorforce/internal/domain/models"
	"github.com/lqor/igorforce/pkg/constants"
)

// FlowHandler handles flow graph API endpoints
type FlowHandler struct {
	svc *services.ServiceManager
}

// NewFlowHandler creates a new FlowHandler
func NewFlowHandler(svc *services.ServiceManager) *FlowHandler {
	return &FlowHandler{svc: svc}
}

// ==================== Definitions ====================

// ListFlows handles GET /api/flows.
// Optional query filters: status, or trigger_object + trigger_event for the
// active-trigger projection.
func (h *FlowHandler) ListFlows(c *gin.Context) {
	HandleGetEnvelope(c, "flows", func() (interface{}, error) {
		if obj := c.Query("trigger_object"); obj != "" {
			event := constants.FlowTriggerEvent(c.Query("trigger_event"))
			return h.svc.Flows.ListDefinitionsByTrigger(c.Request.Context(), obj, event)
		}
		if status := c.Query("status"); status != "" {
			return h.svc.Flows.ListDefinitionsByStatus(c.Request.Context(), constants.FlowStatus(status))
		}
		return h.svc.Flows.ListDefinitions(c.Request.Context())
	})
}

// GetFlow handles GET /api/flows/:flowId
func (h *FlowHandler) GetFlow(c *gin.Context) {
	flowID := c.Param("flowId")
	HandleGetEnvelope(c, "flow", func() (interface{}, error) {
		return h.svc.Flows.GetDefinition(c.Request.Context(), flowID)
	})
}

// CreateFlow handles POST /api/flows. The response carries advisory
// warnings about opaque payloads alongside the created definition.
func (h *FlowHandler) CreateFlow(c *gin.Context) {
	var input services.CreateFlowDefinitionInput
	if !BindJSON(c, &input) {
		return
	}
	def, err := h.svc.Flows.CreateDefinition(c.Request.Context(), input)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		constants.FieldMessage: "Flow created successfully",
		"flow":                 def,
		"warnings":             h.svc.Flows.LintDefinition(def),
	})
}

// UpdateFlow handles PATCH /api/flows/:flowId
func (h *FlowHandler) UpdateFlow(c *gin.Context) {
	flowID := c.Param("flowId")
	var update models.FlowDefinitionUpdate
	if !BindJSON(c, &update) {
		return
	}
	def, err := h.svc.Flows.UpdateDefinition(c.Request.Context(), flowID, update)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		constants.FieldMessage: "Flow updated successfully",
		"flow":                 def,
		"warnings":             h.svc.Flows.LintDefinition(def),
	})
}

// ActivateFlow handles POST /api/flows/:flowId/activate
func (h *FlowHandler) ActivateFlow(c *gin.Context) {
	flowID := c.Param("flowId")
	HandleMutationEnvelope(c, http.StatusOK, "flow", "Flow activated successfully", func() (interface{}, error) {
		return h.svc.Flows.Activate(c.Request.Context(), flowID)
	})
}

// DeactivateFlow handles POST /api/flows/:flowId/deactivate
func (h *FlowHandler) DeactivateFlow(c *gin.Context) {
	flowID := c.Param("flowId")
	HandleMutationEnvelope(c, http.StatusOK, "flow", "Flow deactivated successfully", func() (interface{}, error) {
		return h.svc.Flows.Deactivate(c.Request.Context(), flowID)
	})
}

// DeleteFlow handles DELETE /api/flows/:flowId
func (h *FlowHandler) DeleteFlow(c *gin.Context) {
	flowID := c.Param("flowId")
	HandleDeleteEnvelope(c, "Flow deleted successfully", func() error {
		return h.svc.Flows.DeleteDefinition(c.Request.Context(), flowID)
	})
}

// ==================== Elements ====================

// ListElements handles GET /api/flows/:flowId/elements
func (h *FlowHandler) ListElements(c *gin.Context) {
	flowID := c.Param("flowId")
	HandleGetEnvelope(c, "elements", func() (interface{}, error) {
		return h.svc.Flows.ListElementsByFlow(c.Request.Context(), flowID)
	})
}

// CreateElement handles POST /api/flows/:flowId/elements
func (h *FlowHandler) CreateElement(c *gin.Context) {
	var input services.CreateFlowElementInput
	if !BindJSON(c, &input) {
		return
	}
	input.FlowID = c.Param("flowId")
	HandleMutationEnvelope(c, http.StatusCreated, "element", "Element created successfully", func() (interface{}, error) {
		return h.svc.Flows.CreateElement(c.Request.Context(), input)
	})
}

// GetElement handles GET /api/flow-elements/:elementId
func (h *FlowHandler) GetElement(c *gin.Context) {
	elementID := c.Param("elementId")
	HandleGetEnvelope(c, "element", func() (interface{}, error) {
		return h.svc.Flows.GetElement(c.Request.Context(), elementID)
	})
}

// UpdateElement handles PATCH /api/flow-elements/:elementId
func (h *FlowHandler) UpdateElement(c *gin.Context) {
	elementID := c.Param("elementId")
	var update models.FlowElementUpdate
	if !BindJSON(c, &update) {
		return
	}
	HandleMutationEnvelope(c, http.StatusOK, "element", "Element updated successfully", func() (interface{}, error) {
		return h.svc.Flows.UpdateElement(c.Request.Context(), elementID, update)
	})
}

// positionRequest is the body for the element position fast path
type positionRequest struct {
	PositionX float64 `json:"position_x"`
	PositionY float64 `json:"position_y"`
}

// UpdateElementPosition handles PATCH /api/flow-elements/:elementId/position
func (h *FlowHandler) UpdateElementPosition(c *gin.Context) {
	elementID := c.Param("elementId")
	var req positionRequest
	if !BindJSON(c, &req) {
		return
	}
	HandleDeleteEnvelope(c, "Element position updated", func() error {
		return h.svc.Flows.UpdateElementPosition(c.Request.Context(), elementID, req.PositionX, req.PositionY)
	})
}

// DeleteElement handles DELETE /api/flow-elements/:elementId
func (h *FlowHandler) DeleteElement(c *gin.Context) {
	elementID := c.Param("elementId")
	HandleDeleteEnvelope(c, "Element deleted successfully", func() error {
		return h.svc.Flows.DeleteElement(c.Request.Context(), elementID)
	})
}

// ==================== Connections ====================

// ListConnections handles GET /api/flows/:flowId/connections
func (h *FlowHandler) ListConnections(c *gin.Context) {
	flowID := c.Param("flowId")
	HandleGetEnvelope(c, "connections", func() (interface{}, error) {
		return h.svc.Flows.ListConnectionsByFlow(c.Request.Context(), flowID)
	})
}

// CreateConnection handles POST /api/flows/:flowId/connections
func (h *FlowHandler) CreateConnection(c *gin.Context) {
	var input services.CreateFlowConnectionInput
	if !BindJSON(c, &input) {
		return
	}
	input.FlowID = c.Param("flowId")
	HandleMutationEnvelope(c, http.StatusCreated, "connection", "Connection created successfully", func() (interface{}, error) {
		return h.svc.Flows.CreateConnection(c.Request.Context(), input)
	})
}

// UpdateConnection handles PATCH /api/flow-connections/:connectionId
func (h *FlowHandler) UpdateConnection(c *gin.Context) {
	connectionID := c.Param("connectionId")
	var update models.FlowConnectionUpdate
	if !BindJSON(c, &update) {
		return
	}
	HandleMutationEnvelope(c, http.StatusOK, "connection", "Connection updated successfully", func() (interface{}, error) {
		return h.svc.Flows.UpdateConnection(c.Request.Context(), connectionID, update)
	})
}

// DeleteConnection handles DELETE /api/flow-connections/:connectionId
func (h *FlowHandler) DeleteConnection(c *gin.Context) {
	connectionID := c.Param("connectionId")
	HandleDeleteEnvelope(c, "Connection deleted successfully", func() error {
		return h.svc.Flows.DeleteConnection(c.Request.Context(), connectionID)
	})
}
