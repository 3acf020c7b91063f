package service

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/matching"
	"fmt"
	"regexp"
	"strings"
)

const strategySystemPrompt = `You are an experienced strength and conditioning coach and sports nutritionist.
Given a client's goal and profile, design a long-term training strategy and a daily diet plan.

Respond with a single JSON object with exactly these top-level keys:
{
  "strategy": {
    "goal_type": "strength | body_composition | endurance | mobility | skill",
    "primary_focus": "short description",
    "time_horizon_weeks": 12,
    "training_priorities": [{"name": "...", "frequency": "2-3x/week", "notes": "..."}],
    "secondary_support": ["..."],
    "recommended_frequency": {"strength": 3, "cardio": 2},
    "intensity_distribution": {"heavy": 0.3, "moderate": 0.5, "light": 0.2},
    "split_type": "full_body | upper_lower | push_pull_legs | ...",
    "phases": [{"name": "...", "weeks": 4, "focus": "..."}]
  },
  "diet_plan": {
    "dailyCalories": 2400,
    "meals": [{"name": "Breakfast", "foods": ["..."]}]
  }
}

Rules:
- If the goal names a specific lift with a numeric target, that lift MUST be the first entry of
  training_priorities with frequency "high frequency (2-3x/week)", and its supporting muscle groups
  MUST be listed in secondary_support.
- If the goal mentions running or cardio, running MUST be a primary entry of training_priorities,
  never only secondary support.
- Respect the client's equipment. Without equipment, use bodyweight movements only.
- Work around listed injuries.
- Output JSON only.`

const dayPlanSystemPrompt = `You are a coach turning a long-term strategy into one day of training and meals.

Respond with a single JSON object:
{
  "workoutType": "strength | hypertrophy | cardio | mobility | rest | mixed",
  "explanation": "one or two sentences on why this day looks like this",
  "exercises": [{"name": "Bench Press", "bodyPart": "chest", "sets": 4, "reps": 6}],
  "meals": [{"name": "Oats with berries", "foods": ["oats", "blueberries"], "calories": 450, "mealType": "breakfast"}]
}

Rules:
- Use common exercise names (e.g. "Barbell Back Squat", "Romanian Deadlift").
- Match the requested intensity: heavy = low reps and more sets, light = high reps or technique work.
- Never use an exercise or meal from the avoid list.
- A rest day has an empty exercises list.
- Output JSON only.`

const chatSystemPrompt = `You classify a client's message to their coaching app into exactly one intent.

Intents and their params:
- swap_exercise: {"exercise": "name of the exercise to replace", "block": true|false}
- reduce_volume: {"mode": "remove_set" | "remove_exercise"}
- log_meal: {"name": "...", "foods": ["..."], "calories": 500, "protein": 30}
- move_session: {"date": "YYYY-MM-DD"}
- block_item: {"type": "exercise" | "meal", "name": "..."}
- answer_question: {}

Respond with JSON only:
{"intent": "...", "params": {...}, "reply": "short friendly reply to the client"}`

var numericTarget = regexp.MustCompile(`\d`)

var cardioWords = []string{"run", "running", "cardio", "marathon", "jog", "5k", "10k"}

// liftsNamed returns the allow-listed lifts that appear in the goal text.
func liftsNamed(goal string) []matching.PrimaryLift {
	text := matching.Normalize(goal)
	var out []matching.PrimaryLift
	for _, l := range matching.PrimaryLifts {
		if strings.Contains(text, l.Name) {
			out = append(out, l)
		}
	}
	return out
}

func mentionsCardio(goal string) bool {
	text := strings.ToLower(goal)
	for _, w := range cardioWords {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func describeProfile(u *domain.User) string {
	var b strings.Builder
	if u.WeightKg > 0 {
		fmt.Fprintf(&b, "Weight: %.1f kg\n", u.WeightKg)
	}
	if u.HeightCm > 0 {
		fmt.Fprintf(&b, "Height: %.0f cm\n", u.HeightCm)
	}
	if u.Age > 0 {
		fmt.Fprintf(&b, "Age: %d\n", u.Age)
	}
	if u.Experience != "" {
		fmt.Fprintf(&b, "Experience: %s\n", u.Experience)
	}
	if u.HasEquipment() {
		fmt.Fprintf(&b, "Equipment: %s\n", u.Equipment.Describe())
	} else {
		b.WriteString("Equipment: none (bodyweight only)\n")
	}
	if len(u.Injuries) > 0 {
		fmt.Fprintf(&b, "Injuries: %s\n", strings.Join(u.Injuries, ", "))
	}
	return b.String()
}

func buildStrategyPrompt(goal string, u *domain.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Goal: %s\n\nProfile:\n%s", goal, describeProfile(u))
	if numericTarget.MatchString(goal) {
		for _, l := range liftsNamed(goal) {
			fmt.Fprintf(&b, "\nThe goal targets %s. Supporting muscle groups: %s.", l.Name, strings.Join(l.Supporting, ", "))
		}
	}
	if mentionsCardio(goal) {
		b.WriteString("\nThe goal involves running; running must be a primary priority.")
	}
	return b.String()
}

type dayPromptInput struct {
	Date       string
	Intensity  domain.Intensity
	Strategy   domain.TrainingStrategy
	User       *domain.User
	Adherence  float64
	AvgRPE     *float64
	AvoidNames []string
	Diet       domain.DietPlan
}

func buildDayPrompt(in dayPromptInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\nIntensity: %s\n", in.Date, in.Intensity)
	fmt.Fprintf(&b, "Strategy: %s (%s split)\n", in.Strategy.PrimaryFocus, in.Strategy.SplitType)
	if len(in.Strategy.TrainingPriorities) > 0 {
		names := make([]string, 0, len(in.Strategy.TrainingPriorities))
		for _, p := range in.Strategy.TrainingPriorities {
			names = append(names, p.Name)
		}
		fmt.Fprintf(&b, "Priorities: %s\n", strings.Join(names, ", "))
	}
	if len(in.Strategy.SecondarySupport) > 0 {
		fmt.Fprintf(&b, "Secondary support: %s\n", strings.Join(in.Strategy.SecondarySupport, ", "))
	}
	fmt.Fprintf(&b, "Recent adherence: %.0f%%\n", in.Adherence*100)
	if in.AvgRPE != nil {
		fmt.Fprintf(&b, "Average RPE last 7 days: %.1f\n", *in.AvgRPE)
	}
	b.WriteString("\nProfile:\n")
	b.WriteString(describeProfile(in.User))
	if in.Diet.DailyCalories > 0 {
		fmt.Fprintf(&b, "\nDaily calories: %d across %d meals\n", in.Diet.DailyCalories, len(in.Diet.Meals))
	}
	if len(in.AvoidNames) > 0 {
		fmt.Fprintf(&b, "\nAvoid: %s\n", strings.Join(in.AvoidNames, ", "))
	}
	return b.String()
}
