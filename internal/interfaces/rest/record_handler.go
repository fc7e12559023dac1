package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lqor/igorforce/internal/application/services"
)

// RecordHandler handles dynamic record API endpoints
type RecordHandler struct {
	svc *services.ServiceManager
}

// NewRecordHandler creates a new RecordHandler
func NewRecordHandler(svc *services.ServiceManager) *RecordHandler {
	return &RecordHandler{svc: svc}
}

// recordDataRequest is the body for record create and update
type recordDataRequest struct {
	Data map[string]any `json:"data"`
}

// ListRecords handles GET /api/objects/:objectId/records
func (h *RecordHandler) ListRecords(c *gin.Context) {
	objectID := c.Param("objectId")
	HandleGetEnvelope(c, "records", func() (interface{}, error) {
		if field := c.Query("lookup_field"); field != "" {
			return h.svc.Records.ListByLookup(c.Request.Context(), objectID, field, c.Query("lookup_value"))
		}
		return h.svc.Records.ListRecordsByObject(c.Request.Context(), objectID)
	})
}

// GetRecord handles GET /api/records/:recordId
func (h *RecordHandler) GetRecord(c *gin.Context) {
	recordID := c.Param("recordId")
	HandleGetEnvelope(c, "record", func() (interface{}, error) {
		return h.svc.Records.GetRecord(c.Request.Context(), recordID)
	})
}

// CreateRecord handles POST /api/objects/:objectId/records
func (h *RecordHandler) CreateRecord(c *gin.Context) {
	objectID := c.Param("objectId")
	var req recordDataRequest
	if !BindJSON(c, &req) {
		return
	}
	HandleMutationEnvelope(c, http.StatusCreated, "record", "Record created successfully", func() (interface{}, error) {
		return h.svc.Records.CreateRecord(c.Request.Context(), objectID, req.Data)
	})
}

// UpdateRecord handles PUT /api/records/:recordId
func (h *RecordHandler) UpdateRecord(c *gin.Context) {
	recordID := c.Param("recordId")
	var req recordDataRequest
	if !BindJSON(c, &req) {
		return
	}
	HandleMutationEnvelope(c, http.StatusOK, "record", "Record updated successfully", func() (interface{}, error) {
		return h.svc.Records.UpdateRecord(c.Request.Context(), recordID, req.Data)
	})
}

// DeleteRecord handles DELETE /api/records/:recordId
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	recordID := c.Param("recordId")
	HandleDeleteEnvelope(c, "Record deleted successfully", func() error {
		return h.svc.Records.DeleteRecord(c.Request.Context(), recordID)
	})
}
