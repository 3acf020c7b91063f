package api

import (
	"alcyxob/coach-app/internal/logger"
	"alcyxob/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// WorkoutHandler serves day generation and execution tracking.
type WorkoutHandler struct {
	materializer service.Materializer
	tracking     service.TrackingService
	log          *logger.Logger
}

func NewWorkoutHandler(materializer service.Materializer, tracking service.TrackingService, log *logger.Logger) *WorkoutHandler {
	return &WorkoutHandler{materializer: materializer, tracking: tracking, log: log}
}

type DateRequest struct {
	Date string `json:"date"`
}

type CompleteSetRequest struct {
	ActualWeight *float64 `json:"actual_weight" binding:"omitempty,gte=0"`
	ActualReps   *int     `json:"actual_reps" binding:"omitempty,gte=0"`
	RPE          *float64 `json:"rpe"`
	Completed    bool     `json:"completed"`
}

type ReduceRequest struct {
	Mode string `json:"mode"`
}

type MoveSessionRequest struct {
	Date string `json:"date" binding:"required"`
}

type SwapRequest struct {
	ExerciseID string  `json:"exercise_id" binding:"required"`
	BodyPart   *string `json:"body_part"`
	Block      bool    `json:"block"`
}

type AccessoryRequest struct {
	BodyPart    string `json:"body_part" binding:"required"`
	FromDate    string `json:"from_date"`
	MaxSessions int    `json:"max_sessions" binding:"gte=0"`
}

// GenerateDay godoc
// @Summary Plan and persist the workout of one day
// @Description Replaces any session already stored on that date.
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DateRequest false "Day to generate, defaults to today"
// @Success 200 {object} Envelope "session, sets, meals plus skipped and trimmed exercises"
// @Failure 429 {object} Envelope "Rate limited"
// @Failure 500 {object} Envelope "Generation failed"
// @Router /workouts/generate [post]
func (h *WorkoutHandler) GenerateDay(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req DateRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	result, err := h.materializer.GenerateDay(c.Request.Context(), user.ID, orToday(req.Date))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, result)
}

func (h *WorkoutHandler) Today(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	view, err := h.tracking.TodayWorkout(c.Request.Context(), user.ID, dateQuery(c, "date"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, view)
}

func (h *WorkoutHandler) Upcoming(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	sessions, err := h.tracking.Upcoming(c.Request.Context(), user.ID, dateQuery(c, "from"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, sessions)
}

func (h *WorkoutHandler) History(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	entries, err := h.tracking.History(c.Request.Context(), user.ID, dateQuery(c, "to"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, entries)
}

func (h *WorkoutHandler) ExportHistory(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req DateRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	result, err := h.tracking.ExportHistory(c.Request.Context(), user.ID, orToday(req.Date))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, result)
}

// CompleteSet logs the actual values of a set. Completion never reverts.
func (h *WorkoutHandler) CompleteSet(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	setID, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req CompleteSetRequest
	if !bindJSON(c, &req) {
		return
	}
	set, err := h.tracking.CompleteSet(c.Request.Context(), user.ID, setID, service.SetCompletion{
		ActualWeight: req.ActualWeight,
		ActualReps:   req.ActualReps,
		RPE:          req.RPE,
		Completed:    req.Completed,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, set)
}

func (h *WorkoutHandler) ReduceVolume(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	sessionID, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req ReduceRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	mode := service.ReduceMode(req.Mode)
	if mode == "" {
		mode = service.ReduceRemoveSet
	}
	result, err := h.tracking.ReduceVolume(c.Request.Context(), user.ID, sessionID, mode)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, result)
}

func (h *WorkoutHandler) MoveSession(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	sessionID, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req MoveSessionRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.tracking.MoveSession(c.Request.Context(), user.ID, sessionID, req.Date)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, session)
}

func (h *WorkoutHandler) DeleteSession(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	sessionID, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.tracking.DeleteSession(c.Request.Context(), user.ID, sessionID); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, gin.H{"deleted": sessionID.Hex()})
}

func (h *WorkoutHandler) SwapExercise(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	sessionID, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req SwapRequest
	if !bindJSON(c, &req) {
		return
	}
	exerciseID, valid := parseID(c, "exercise_id", req.ExerciseID)
	if !valid {
		return
	}
	result, err := h.tracking.SwapExercise(c.Request.Context(), user.ID, sessionID, exerciseID, req.BodyPart, req.Block)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, result)
}

func (h *WorkoutHandler) AddAccessory(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req AccessoryRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.tracking.AddAccessory(c.Request.Context(), user.ID, req.BodyPart, orToday(req.FromDate), req.MaxSessions)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, result)
}

func (h *WorkoutHandler) WeeklyVolume(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	volume, err := h.tracking.WeeklyVolume(c.Request.Context(), user.ID, dateQuery(c, "week_of"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, volume)
}

func (h *WorkoutHandler) BodyPartVolume(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	volume, err := h.tracking.BodyPartVolume(c.Request.Context(), user.ID, dateQuery(c, "week_of"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, volume)
}
