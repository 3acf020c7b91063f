package api

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/logger"
	"alcyxob/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ProfileHandler serves the user's own profile and goals.
type ProfileHandler struct {
	profiles service.ProfileService
	strategy service.StrategyService
	log      *logger.Logger
}

func NewProfileHandler(profiles service.ProfileService, strategy service.StrategyService, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, strategy: strategy, log: log}
}

type UpdateProfileRequest struct {
	Name       *string                 `json:"name"`
	WeightKg   *float64                `json:"weight_kg" binding:"omitempty,gt=0"`
	HeightCm   *float64                `json:"height_cm" binding:"omitempty,gt=0"`
	Age        *int                    `json:"age" binding:"omitempty,gt=0"`
	Experience *domain.ExperienceLevel `json:"experience"`
	Equipment  *domain.Equipment       `json:"equipment"`
	Injuries   []string                `json:"injuries"`
}

type CreateGoalRequest struct {
	Description string             `json:"description" binding:"required"`
	Category    string             `json:"category"`
	Direction   string             `json:"direction"`
	Target      *domain.GoalTarget `json:"target"`
	Value       float64            `json:"value"`
	Unit        string             `json:"unit"`
}

type ValidateLiftRequest struct {
	PrimaryLift *string `json:"primary_lift"`
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	profile, err := h.profiles.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, profile)
}

// UpdateProfile godoc
// @Summary Patch body metrics, experience, equipment and injuries
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope "Validation error"
// @Router /profile [patch]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.profiles.UpdateProfile(c.Request.Context(), user.ID, service.ProfilePatch{
		Name:       req.Name,
		WeightKg:   req.WeightKg,
		HeightCm:   req.HeightCm,
		Age:        req.Age,
		Experience: req.Experience,
		Equipment:  req.Equipment,
		Injuries:   req.Injuries,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, profile)
}

func (h *ProfileHandler) CreateGoal(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req CreateGoalRequest
	if !bindJSON(c, &req) {
		return
	}
	goal, err := h.profiles.CreateGoal(c.Request.Context(), user.ID, service.GoalInput{
		Description: req.Description,
		Category:    domain.GoalCategory(req.Category),
		Direction:   domain.GoalDirection(req.Direction),
		Target:      req.Target,
		Value:       req.Value,
		Unit:        req.Unit,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, goal)
}

func (h *ProfileHandler) ActiveGoal(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	goal, err := h.profiles.ActiveGoal(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, goal)
}

func (h *ProfileHandler) CompleteGoal(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	goalID, valid := pathID(c, "id")
	if !valid {
		return
	}
	goal, err := h.profiles.CompleteGoal(c.Request.Context(), user.ID, goalID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, goal)
}

// ValidateLift checks that a goal lift is an allowed primary lift.
// Invalid lifts are a normal answer, not an error.
func (h *ProfileHandler) ValidateLift(c *gin.Context) {
	var req ValidateLiftRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.strategy.ValidatePrimaryLiftForGoal(c.Request.Context(), req.PrimaryLift)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, result)
}
