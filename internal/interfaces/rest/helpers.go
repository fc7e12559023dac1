package rest

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lqor/igorforce/pkg/auth"
	"github.com/lqor/igorforce/pkg/constants"
	"github.com/lqor/igorforce/pkg/errors"
)

// GetUserFromContext extracts the authenticated user from gin.Context
func GetUserFromContext(c *gin.Context) *auth.UserSession {
	userInterface, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil
	}
	session := userInterface.(auth.UserSession)
	return &session
}

// RespondAppError sends a standardised JSON error response using pkg/errors
func RespondAppError(c *gin.Context, err error) {
	code := errors.GetHTTPStatus(err)
	errorCode := errors.GetErrorCode(err)
	message := err.Error()

	if code >= 500 {
		log.Printf("❌ ERROR [%d] %s %s: %s", code, c.Request.Method, c.Request.URL.Path, message)
	}

	c.JSON(code, gin.H{
		constants.ResponseError: message,
		"message":               message,
		"code":                  errorCode,
		"data":                  nil,
	})
}

// BindJSON binds JSON and returns true if successful. If failed, it sends bad request error.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondAppError(c, errors.NewValidationError("body", err.Error()))
		return false
	}
	return true
}

// HandleGetEnvelope executes a read action and returns the result wrapped in a JSON key
// Response: { [key]: result }
func HandleGetEnvelope(c *gin.Context, key string, action func() (interface{}, error)) {
	result, err := action()
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{key: result})
}

// HandleMutationEnvelope executes a mutation whose result object comes from
// the service, and returns it wrapped under a JSON key together with a
// success message.
func HandleMutationEnvelope(c *gin.Context, status int, key string, successMsg string, action func() (interface{}, error)) {
	result, err := action()
	if err != nil {
		RespondAppError(c, err)
		return
	}
	response := gin.H{constants.FieldMessage: successMsg}
	if key != "" {
		response[key] = result
	}
	c.JSON(status, response)
}

// HandleDeleteEnvelope executes a delete action and returns a success message
// Response: { constants.FieldMessage: successMsg }
func HandleDeleteEnvelope(c *gin.Context, successMsg string, action func() error) {
	if err := action(); err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.FieldMessage: successMsg})
}
