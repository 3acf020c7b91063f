package service

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/llm"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultTimeHorizonWeeks applies when the generator gives no usable horizon.
const DefaultTimeHorizonWeeks = 12

// Top-level keys of a program response.
const (
	keyStrategy = "strategy"
	keyDietPlan = "diet_plan"
)

// ParseProgram decodes a generator answer into a normalized strategy and
// diet. Parse failures and missing top-level keys wrap ErrGeneration.
func ParseProgram(text string) (domain.TrainingStrategy, domain.DietPlan, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(llm.StripFences(text)), &raw); err != nil {
		return domain.TrainingStrategy{}, domain.DietPlan{}, fmt.Errorf("%w: invalid JSON: %v", ErrGeneration, err)
	}
	for _, key := range []string{keyStrategy, keyDietPlan} {
		if _, ok := raw[key]; !ok {
			return domain.TrainingStrategy{}, domain.DietPlan{}, fmt.Errorf("%w: missing key %q", ErrGeneration, key)
		}
	}
	strategyRaw, ok := raw[keyStrategy].(map[string]any)
	if !ok {
		return domain.TrainingStrategy{}, domain.DietPlan{}, fmt.Errorf("%w: %q is not an object", ErrGeneration, keyStrategy)
	}
	return NormalizeStrategy(strategyRaw), NormalizeDiet(raw[keyDietPlan]), nil
}

// NormalizeStrategy coerces a loosely typed strategy object.
func NormalizeStrategy(raw map[string]any) domain.TrainingStrategy {
	s := domain.TrainingStrategy{
		GoalType:              asString(raw["goal_type"]),
		PrimaryFocus:          asString(raw["primary_focus"]),
		TimeHorizonWeeks:      timeHorizon(raw["time_horizon_weeks"]),
		TrainingPriorities:    priorities(raw["training_priorities"]),
		SecondarySupport:      stringList(raw["secondary_support"]),
		RecommendedFrequency:  map[string]any{},
		IntensityDistribution: intensity(raw["intensity_distribution"]),
		SplitType:             asString(raw["split_type"]),
		Phases:                phases(raw["phases"]),
	}
	if m, ok := raw["recommended_frequency"].(map[string]any); ok {
		s.RecommendedFrequency = m
	}
	return s
}

// timeHorizon keeps numbers (truncated), parses the leading integer of a
// string, and otherwise falls back to DefaultTimeHorizonWeeks.
func timeHorizon(v any) int {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return DefaultTimeHorizonWeeks
		}
		return int(t)
	case string:
		if n, ok := leadingInt(t); ok {
			return n
		}
	}
	return DefaultTimeHorizonWeeks
}

// leadingInt parses an optional sign and the digits that follow, ignoring
// leading whitespace and anything after the digits.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func intensity(v any) domain.IntensityDistribution {
	m, _ := v.(map[string]any)
	return domain.IntensityDistribution{
		Heavy:    coerceFloat(m["heavy"]),
		Moderate: coerceFloat(m["moderate"]),
		Light:    coerceFloat(m["light"]),
	}
}

// coerceFloat keeps numbers, parses numeric strings and maps everything
// else to 0.
func coerceFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	}
	return 0
}

func priorities(v any) []domain.TrainingPriority {
	items, ok := v.([]any)
	if !ok {
		return []domain.TrainingPriority{}
	}
	out := make([]domain.TrainingPriority, 0, len(items))
	for _, it := range items {
		switch t := it.(type) {
		case string:
			if t != "" {
				out = append(out, domain.TrainingPriority{Name: t})
			}
		case map[string]any:
			p := domain.TrainingPriority{
				Name:      asString(t["name"]),
				Frequency: asString(t["frequency"]),
				Notes:     asString(t["notes"]),
			}
			if p.Name != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func phases(v any) []domain.StrategyPhase {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]domain.StrategyPhase, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		weeks, _ := m["weeks"].(float64)
		out = append(out, domain.StrategyPhase{
			Name:  asString(m["name"]),
			Weeks: int(weeks),
			Focus: asString(m["focus"]),
		})
	}
	return out
}

// NormalizeDiet trims a diet object to dailyCalories and meals[].{name, foods}
// and spreads the calories evenly.
func NormalizeDiet(v any) domain.DietPlan {
	m, _ := v.(map[string]any)
	calories := m["dailyCalories"]
	if calories == nil {
		calories = m["daily_calories"]
	}
	diet := domain.DietPlan{
		DailyCalories: int(coerceFloat(calories)),
		Meals:         []domain.DietMeal{},
	}
	if meals, ok := m["meals"].([]any); ok {
		for _, it := range meals {
			meal, ok := it.(map[string]any)
			if !ok {
				continue
			}
			diet.Meals = append(diet.Meals, domain.DietMeal{
				Name:  asString(meal["name"]),
				Foods: stringList(meal["foods"]),
			})
		}
	}
	diet.SpreadCalories()
	return diet
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
