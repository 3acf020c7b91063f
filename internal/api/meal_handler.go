package api

import (
	"alcyxob/coach-app/internal/logger"
	"alcyxob/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// MealHandler serves meal logs, planned meal regeneration and daily logs.
type MealHandler struct {
	meals    service.MealService
	tracking service.TrackingService
	log      *logger.Logger
}

func NewMealHandler(meals service.MealService, tracking service.TrackingService, log *logger.Logger) *MealHandler {
	return &MealHandler{meals: meals, tracking: tracking, log: log}
}

type LogMealRequest struct {
	Date     string   `json:"date"`
	Name     string   `json:"name" binding:"required"`
	Foods    []string `json:"foods"`
	Calories *float64 `json:"calories" binding:"required,gte=0"`
	Protein  *float64 `json:"protein" binding:"omitempty,gte=0"`
}

type StepsRequest struct {
	Date  string `json:"date"`
	Steps *int   `json:"steps" binding:"required,gte=0"`
}

type WaterRequest struct {
	Date string `json:"date"`
	Ml   int    `json:"ml" binding:"required,gt=0"`
}

func (h *MealHandler) LogMeal(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req LogMealRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.meals.LogMeal(c.Request.Context(), user.ID, service.MealLogInput{
		Date:     orToday(req.Date),
		Name:     req.Name,
		Foods:    req.Foods,
		Calories: *req.Calories,
		Protein:  req.Protein,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, entry)
}

func (h *MealHandler) MealLogs(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	day, err := h.meals.MealLogs(c.Request.Context(), user.ID, dateQuery(c, "date"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, day)
}

func (h *MealHandler) DeleteMealLog(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	logID, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.meals.DeleteMealLog(c.Request.Context(), user.ID, logID); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, gin.H{"deleted": logID.Hex()})
}

// RegenerateMeal swaps a planned meal for another of the same type.
func (h *MealHandler) RegenerateMeal(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	dailyMealID, valid := pathID(c, "id")
	if !valid {
		return
	}
	view, err := h.meals.RegenerateMeal(c.Request.Context(), user.ID, dailyMealID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, view)
}

func (h *MealHandler) LogSteps(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req StepsRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.tracking.LogSteps(c.Request.Context(), user.ID, orToday(req.Date), *req.Steps)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, entry)
}

func (h *MealHandler) LogWater(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req WaterRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.tracking.LogWater(c.Request.Context(), user.ID, orToday(req.Date), req.Ml)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, entry)
}
