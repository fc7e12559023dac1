package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lqor/igorforce/internal/application/services"
	"github.com/lqor/igorforce/pkg/errors"
)

// AuthHandler handles authentication API endpoints
type AuthHandler struct {
	svc *services.ServiceManager
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(svc *services.ServiceManager) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSON(c, &req) {
		return
	}
	result, err := h.svc.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondAppError(c, errors.NewUnauthorizedError("not authenticated"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
