package api

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/logger"
	"alcyxob/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ProgramHandler serves long-term program generation and the plan's diet.
type ProgramHandler struct {
	strategy service.StrategyService
	meals    service.MealService
	log      *logger.Logger
}

func NewProgramHandler(strategy service.StrategyService, meals service.MealService, log *logger.Logger) *ProgramHandler {
	return &ProgramHandler{strategy: strategy, meals: meals, log: log}
}

type GenerateProgramRequest struct {
	Goal string `json:"goal" binding:"required"`
}

type SavePlanRequest struct {
	GoalID   string                   `json:"goal_id"`
	Strategy *domain.TrainingStrategy `json:"strategy"`
	Diet     *domain.DietPlan         `json:"diet_plan"`
}

type MealRequest struct {
	Name  string   `json:"name" binding:"required"`
	Foods []string `json:"foods"`
}

type AddMealRequest struct {
	PlanID string      `json:"plan_id" binding:"required"`
	Meal   MealRequest `json:"meal"`
}

type UpdateMealRequest struct {
	PlanID string      `json:"plan_id" binding:"required"`
	Index  *int        `json:"index" binding:"required"`
	Meal   MealRequest `json:"meal"`
}

type RemoveMealRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
	Index  *int   `json:"index" binding:"required"`
}

type ImportMealsRequest struct {
	Meals []any `json:"meals" binding:"required"`
}

// GenerateProgram godoc
// @Summary Generate a training strategy and diet for a free-text goal
// @Description Records the goal and caches the strategy as a draft until POST /plans.
// @Tags Program
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GenerateProgramRequest true "Goal text"
// @Success 200 {object} Envelope "goal, strategy and dietPlan"
// @Failure 400 {object} Envelope "Missing goal"
// @Failure 429 {object} Envelope "Rate limited"
// @Failure 500 {object} Envelope "Generation failed"
// @Router /generate-program [post]
func (h *ProgramHandler) GenerateProgram(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req GenerateProgramRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.strategy.GenerateProgram(c.Request.Context(), user.ID, req.Goal)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, result)
}

// SavePlan persists the posted strategy, or the cached draft when none is
// posted, as the only active plan.
func (h *ProgramHandler) SavePlan(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req SavePlanRequest
	if !bindJSON(c, &req) {
		return
	}
	in := service.SavePlanInput{Strategy: req.Strategy, Diet: req.Diet}
	if req.GoalID != "" {
		goalID, valid := parseID(c, "goal_id", req.GoalID)
		if !valid {
			return
		}
		in.GoalID = &goalID
	}
	plan, err := h.strategy.SaveLongTermPlan(c.Request.Context(), user.ID, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, plan)
}

func (h *ProgramHandler) ActivePlan(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	plan, err := h.strategy.ActivePlan(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, plan)
}

func (h *ProgramHandler) AddMeal(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req AddMealRequest
	if !bindJSON(c, &req) {
		return
	}
	planID, valid := parseID(c, "plan_id", req.PlanID)
	if !valid {
		return
	}
	diet, err := h.meals.AddMeal(c.Request.Context(), user.ID, planID, req.Meal.diet())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, diet)
}

func (h *ProgramHandler) UpdateMeal(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req UpdateMealRequest
	if !bindJSON(c, &req) {
		return
	}
	planID, valid := parseID(c, "plan_id", req.PlanID)
	if !valid {
		return
	}
	diet, err := h.meals.UpdateMeal(c.Request.Context(), user.ID, planID, *req.Index, req.Meal.diet())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, diet)
}

func (h *ProgramHandler) RemoveMeal(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req RemoveMealRequest
	if !bindJSON(c, &req) {
		return
	}
	planID, valid := parseID(c, "plan_id", req.PlanID)
	if !valid {
		return
	}
	diet, err := h.meals.RemoveMeal(c.Request.Context(), user.ID, planID, *req.Index)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, diet)
}

// ImportMeals godoc
// @Summary Bulk import catalog meals
// @Description Each entry needs name:string, foods:array, calories:number and instructions:array.
// @Description Valid entries are imported even when others fail.
// @Tags Meals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ImportMealsRequest true "Meals"
// @Success 200 {object} Envelope "imported and failed entries"
// @Failure 400 {object} Envelope "meals missing or empty"
// @Router /import-meals [post]
func (h *ProgramHandler) ImportMeals(c *gin.Context) {
	var req ImportMealsRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.meals.ImportMeals(c.Request.Context(), req.Meals)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, result)
}

func (m MealRequest) diet() domain.DietMeal {
	return domain.DietMeal{Name: m.Name, Foods: m.Foods}
}
