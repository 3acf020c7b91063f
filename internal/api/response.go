package api

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/logger"
	"alcyxob/coach-app/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// respondOK writes a successful envelope. data is always present; null is the
// "nothing found" answer.
func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// Helper to return an error envelope and abort the request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Envelope{Success: false, Error: message})
}

func badRequest(c *gin.Context, message string) {
	abortWithError(c, http.StatusBadRequest, message)
}

// domainErrors are invariant violations: reported with 200 and success=false.
var domainErrors = []error{
	service.ErrUserNotFound,
	service.ErrGoalNotFound,
	service.ErrPlanNotFound,
	service.ErrNoActivePlan,
	service.ErrSessionNotFound,
	service.ErrSetNotFound,
	service.ErrMealNotFound,
	service.ErrDateOccupied,
	service.ErrNoSetsInSession,
	service.ErrExerciseNotInCatalog,
	service.ErrExerciseNotInSession,
	service.ErrExerciseNotFound,
	service.ErrNoAlternative,
	service.ErrAlreadyBlocked,
}

// respondError maps a service error onto the envelope and status code.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	var liftErr *service.LiftValidationError
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, domain.ErrInvalidEquipment):
		badRequest(c, err.Error())
	case errors.Is(err, service.ErrGeneration):
		log.Error("generation failed", "path", c.FullPath(), "error", err)
		abortWithError(c, http.StatusInternalServerError, err.Error())
	case errors.As(err, &liftErr), isDomainError(err):
		c.AbortWithStatusJSON(http.StatusOK, Envelope{Success: false, Error: err.Error()})
	default:
		log.Error("request failed", "path", c.FullPath(), "error", err)
		abortWithError(c, http.StatusInternalServerError, "internal server error")
	}
}

func isDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
