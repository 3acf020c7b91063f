package api

import (
	"alcyxob/coach-app/internal/logger"
	"alcyxob/coach-app/internal/service"
	"strings"

	"github.com/gin-gonic/gin"
)

// IdentityHandler receives identity provider webhooks.
type IdentityHandler struct {
	profiles service.ProfileService
	log      *logger.Logger
}

func NewIdentityHandler(profiles service.ProfileService, log *logger.Logger) *IdentityHandler {
	return &IdentityHandler{profiles: profiles, log: log}
}

// identityWebhookRequest is the subset of the identity provider payload we read.
type identityWebhookRequest struct {
	Type string `json:"type" binding:"required"`
	Data struct {
		ID             string `json:"id" binding:"required"`
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
	} `json:"data"`
}

// IdentityWebhook godoc
// @Summary Sync a user from the identity provider
// @Tags Identity
// @Accept json
// @Produce json
// @Param X-Webhook-Secret header string true "Shared webhook secret"
// @Success 200 {object} Envelope "User synced (data is null for ignored events)"
// @Failure 400 {object} Envelope "Malformed payload"
// @Failure 401 {object} Envelope "Bad secret"
// @Router /clerk-webhook [post]
func (h *IdentityHandler) IdentityWebhook(c *gin.Context) {
	var req identityWebhookRequest
	if !bindJSON(c, &req) {
		return
	}
	ev := service.IdentityEvent{
		Type:       req.Type,
		ExternalID: req.Data.ID,
		Name:       strings.TrimSpace(req.Data.FirstName + " " + req.Data.LastName),
	}
	if len(req.Data.EmailAddresses) > 0 {
		ev.Email = req.Data.EmailAddresses[0].EmailAddress
	}

	user, err := h.profiles.SyncIdentity(c.Request.Context(), ev)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, user)
}
