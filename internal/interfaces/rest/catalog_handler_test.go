package rest_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lqor/igorforce/internal/application/services"
	"github.com/lqor/igorforce/internal/infrastructure/database"
	"github.com/lqor/igorforce/internal/interfaces/rest"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	svcMgr := services.NewServiceManager(conn)
	catalogHandler := rest.NewCatalogHandler(svcMgr)
	flowHandler := rest.NewFlowHandler(svcMgr)

	router := gin.New()
	api := router.Group("/api")
	api.GET("/catalog/objects", catalogHandler.ListObjects)
	api.POST("/catalog/objects", catalogHandler.CreateObject)
	api.GET("/catalog/objects/:objectId", catalogHandler.GetObject)
	api.GET("/catalog/objects/:objectId/fields", catalogHandler.ListFields)
	api.POST("/flows", flowHandler.CreateFlow)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCatalogHandler_CreateObject(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/catalog/objects", gin.H{
		"name": "Project", "label": "Project", "plural_label": "Projects",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Object struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"object"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Project__c", resp.Object.Name)

	// The mandatory Name field rides along
	w = doJSON(t, router, http.MethodGet, "/api/catalog/objects/"+resp.Object.ID+"/fields", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fieldsResp struct {
		Fields []struct {
			APIName string `json:"api_name"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fieldsResp))
	require.Len(t, fieldsResp.Fields, 1)
	assert.Equal(t, "Name", fieldsResp.Fields[0].APIName)
}

func TestCatalogHandler_CreateObject_Conflict(t *testing.T) {
	router := newTestRouter(t)

	body := gin.H{"name": "Project", "label": "Project", "plural_label": "Projects"}
	w := doJSON(t, router, http.MethodPost, "/api/catalog/objects", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/catalog/objects", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CONFLICT", resp["code"])
	assert.NotEmpty(t, resp["message"])
}

func TestCatalogHandler_GetObject_NotFound(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/catalog/objects/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFlowHandler_CreateFlow_Warnings(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/flows", gin.H{
		"name":               "Nightly Sync",
		"type":               "scheduled",
		"schedule_frequency": "every blue moon",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Warnings []string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "every blue moon")
}
