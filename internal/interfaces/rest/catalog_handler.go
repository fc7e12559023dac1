package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lqor/igorforce/internal/application/services"
	"github.com/lqor/igorforce/internal/domain/models"
)

// CatalogHandler handles schema catalog API endpoints
type CatalogHandler struct {
	svc *services.ServiceManager
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(svc *services.ServiceManager) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// ==================== Objects ====================

// ListObjects handles GET /api/catalog/objects
func (h *CatalogHandler) ListObjects(c *gin.Context) {
	HandleGetEnvelope(c, "objects", func() (interface{}, error) {
		return h.svc.Catalog.ListObjects(c.Request.Context())
	})
}

// GetObject handles GET /api/catalog/objects/:objectId
func (h *CatalogHandler) GetObject(c *gin.Context) {
	objectID := c.Param("objectId")
	HandleGetEnvelope(c, "object", func() (interface{}, error) {
		return h.svc.Catalog.GetObject(c.Request.Context(), objectID)
	})
}

// GetObjectByName handles GET /api/catalog/objects/by-name/:name
func (h *CatalogHandler) GetObjectByName(c *gin.Context) {
	name := c.Param("name")
	HandleGetEnvelope(c, "object", func() (interface{}, error) {
		return h.svc.Catalog.GetObjectByName(c.Request.Context(), name)
	})
}

// CreateObject handles POST /api/catalog/objects
func (h *CatalogHandler) CreateObject(c *gin.Context) {
	var input services.CreateObjectInput
	if !BindJSON(c, &input) {
		return
	}
	HandleMutationEnvelope(c, http.StatusCreated, "object", "Object created successfully", func() (interface{}, error) {
		return h.svc.Catalog.CreateObject(c.Request.Context(), input)
	})
}

// DeleteObject handles DELETE /api/catalog/objects/:objectId
func (h *CatalogHandler) DeleteObject(c *gin.Context) {
	objectID := c.Param("objectId")
	HandleDeleteEnvelope(c, "Object deleted successfully", func() error {
		return h.svc.Catalog.DeleteObject(c.Request.Context(), objectID)
	})
}

// ==================== Fields ====================

// ListFields handles GET /api/catalog/objects/:objectId/fields
func (h *CatalogHandler) ListFields(c *gin.Context) {
	objectID := c.Param("objectId")
	HandleGetEnvelope(c, "fields", func() (interface{}, error) {
		return h.svc.Catalog.ListFieldsByObject(c.Request.Context(), objectID)
	})
}

// GetField handles GET /api/catalog/fields/:fieldId
func (h *CatalogHandler) GetField(c *gin.Context) {
	fieldID := c.Param("fieldId")
	HandleGetEnvelope(c, "field", func() (interface{}, error) {
		return h.svc.Catalog.GetField(c.Request.Context(), fieldID)
	})
}

// CreateField handles POST /api/catalog/objects/:objectId/fields
func (h *CatalogHandler) CreateField(c *gin.Context) {
	var input services.CreateFieldInput
	if !BindJSON(c, &input) {
		return
	}
	input.ObjectID = c.Param("objectId")
	HandleMutationEnvelope(c, http.StatusCreated, "field", "Field created successfully", func() (interface{}, error) {
		return h.svc.Catalog.CreateField(c.Request.Context(), input)
	})
}

// UpdateField handles PATCH /api/catalog/fields/:fieldId
func (h *CatalogHandler) UpdateField(c *gin.Context) {
	fieldID := c.Param("fieldId")
	var update models.FieldUpdate
	if !BindJSON(c, &update) {
		return
	}
	HandleMutationEnvelope(c, http.StatusOK, "field", "Field updated successfully", func() (interface{}, error) {
		return h.svc.Catalog.UpdateField(c.Request.Context(), fieldID, update)
	})
}

// DeleteField handles DELETE /api/catalog/fields/:fieldId
func (h *CatalogHandler) DeleteField(c *gin.Context) {
	fieldID := c.Param("fieldId")
	HandleDeleteEnvelope(c, "Field deleted successfully", func() error {
		return h.svc.Catalog.DeleteField(c.Request.Context(), fieldID)
	})
}

// ListLookupsTo handles GET /api/catalog/objects/by-name/:name/lookups
func (h *CatalogHandler) ListLookupsTo(c *gin.Context) {
	name := c.Param("name")
	HandleGetEnvelope(c, "lookups", func() (interface{}, error) {
		return h.svc.Catalog.ListLookupsTo(c.Request.Context(), name)
	})
}
