package api

import (
	"alcyxob/coach-app/internal/domain"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// requireUser returns the authenticated user or aborts.
func requireUser(c *gin.Context) (*domain.User, bool) {
	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return nil, false
	}
	return user, true
}

// pathID parses the ObjectID path parameter name or aborts with 400.
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		badRequest(c, "Invalid "+name+" format.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// parseID parses an ObjectID taken from a request body field or aborts.
func parseID(c *gin.Context, field, hex string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		badRequest(c, "Invalid "+field+" format.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// today is the current UTC calendar date.
func today() string {
	return time.Now().UTC().Format(domain.DateLayout)
}

// orToday returns date, or today when it is empty.
func orToday(date string) string {
	if date == "" {
		return today()
	}
	return date
}

// dateQuery reads an optional date query parameter.
func dateQuery(c *gin.Context, name string) string {
	return orToday(c.Query(name))
}

// bindJSON binds the body or aborts with 400.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, "Validation error: "+err.Error())
		return false
	}
	return true
}
