package api

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/logger"
	"alcyxob/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler serves the exercise catalog, projections and blocked items.
type ExerciseHandler struct {
	exercises  service.ExerciseService
	projection service.ProjectionService
	tracking   service.TrackingService
	log        *logger.Logger
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exercises service.ExerciseService, projection service.ProjectionService, tracking service.TrackingService, log *logger.Logger) *ExerciseHandler {
	return &ExerciseHandler{exercises: exercises, projection: projection, tracking: tracking, log: log}
}

// BlockRequest blocks an exercise or a meal for good.
type BlockRequest struct {
	ItemType string `json:"item_type" binding:"required,oneof=exercise meal"`
	ItemID   string `json:"item_id" binding:"required"`
	Name     string `json:"name"`
}

// ListExercises godoc
// @Summary List the exercise catalog
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param body_part query string false "Only exercises training this body part"
// @Success 200 {object} Envelope
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	exercises, err := h.exercises.ListExercises(c.Request.Context(), c.Query("body_part"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, exercises)
}

// Projection godoc
// @Summary Project the working weight of an exercise four weeks ahead
// @Description data is null when fewer than two sessions are logged.
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope "Invalid exercise ID format"
// @Router /exercises/{id}/projection [get]
func (h *ExerciseHandler) Projection(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	exerciseID, valid := pathID(c, "id")
	if !valid {
		return
	}
	projection, err := h.projection.Project(c.Request.Context(), user.ID, exerciseID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, projection)
}

func (h *ExerciseHandler) Media(c *gin.Context) {
	exerciseID, valid := pathID(c, "id")
	if !valid {
		return
	}
	link, err := h.exercises.MediaURL(c.Request.Context(), exerciseID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, link)
}

func (h *ExerciseHandler) BlockItem(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req BlockRequest
	if !bindJSON(c, &req) {
		return
	}
	itemID, valid := parseID(c, "item_id", req.ItemID)
	if !valid {
		return
	}
	item, err := h.tracking.BlockItem(c.Request.Context(), user.ID, domain.BlockedItemType(req.ItemType), itemID, req.Name)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, item)
}

func (h *ExerciseHandler) ListBlocked(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	items, err := h.tracking.ListBlocked(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, items)
}
