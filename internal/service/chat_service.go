package service

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/llm"
	"alcyxob/coach-app/internal/logger"
	"alcyxob/coach-app/internal/matching"
	"alcyxob/coach-app/internal/repository"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat intents.
const (
	IntentSwapExercise   = "swap_exercise"
	IntentReduceVolume   = "reduce_volume"
	IntentLogMeal        = "log_meal"
	IntentMoveSession    = "move_session"
	IntentBlockItem      = "block_item"
	IntentAnswerQuestion = "answer_question"
)

// ChatChange is one mutation made on behalf of a chat message.
type ChatChange struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type ChatResult struct {
	Intent  string       `json:"intent"`
	Reply   string       `json:"reply"`
	Changes []ChatChange `json:"changes"`
}

type ChatService interface {
	// Handle classifies message and applies it to the user's day at date.
	Handle(ctx context.Context, userID primitive.ObjectID, message, date string) (*ChatResult, error)
}

type chatService struct {
	store    *repository.Store
	gen      llm.Generator
	tracking TrackingService
	meals    MealService
	scorer   matching.Scorer
	log      *logger.Logger
}

func NewChatService(store *repository.Store, gen llm.Generator, tracking TrackingService, meals MealService, log *logger.Logger) ChatService {
	return &chatService{store: store, gen: gen, tracking: tracking, meals: meals, scorer: matching.RankedScorer{}, log: log}
}

type classified struct {
	Intent string         `json:"intent"`
	Params map[string]any `json:"params"`
	Reply  string         `json:"reply"`
}

// parseClassification reads the generator's JSON. Unknown intents become
// answer_question.
func parseClassification(text string) (*classified, error) {
	var c classified
	if err := json.Unmarshal([]byte(llm.StripFences(text)), &c); err != nil {
		return nil, fmt.Errorf("%w: chat response is not valid JSON: %v", ErrGeneration, err)
	}
	c.Intent = strings.ToLower(strings.TrimSpace(c.Intent))
	switch c.Intent {
	case IntentSwapExercise, IntentReduceVolume, IntentLogMeal, IntentMoveSession, IntentBlockItem, IntentAnswerQuestion:
	default:
		c.Intent = IntentAnswerQuestion
	}
	if c.Params == nil {
		c.Params = map[string]any{}
	}
	return &c, nil
}

func (s *chatService) Handle(ctx context.Context, userID primitive.ObjectID, message, date string) (*ChatResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, invalidf("message is required")
	}
	if _, err := parseDate(date); err != nil {
		return nil, err
	}

	view, err := s.tracking.TodayWorkout(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	text, err := s.gen.Complete(ctx, llm.Request{
		Kind:   llm.KindChat,
		System: chatSystemPrompt,
		User:   chatContext(message, date, view),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	c, err := parseClassification(text)
	if err != nil {
		s.log.Warn("chat response rejected", "userId", userID.Hex(), "error", err)
		return nil, err
	}

	result := &ChatResult{Intent: c.Intent, Reply: c.Reply, Changes: []ChatChange{}}
	change, err := s.dispatch(ctx, userID, date, view, c)
	switch {
	case err == nil:
	case isUserFacing(err):
		// Nothing was changed; tell the user why instead of failing the request.
		result.Reply = fmt.Sprintf("I couldn't do that: %v", err)
		return result, nil
	default:
		return nil, err
	}
	if change != nil {
		change.ID = uuid.NewString()
		result.Changes = append(result.Changes, *change)
		if result.Reply == "" {
			result.Reply = change.Description
		}
	}
	if result.Reply == "" {
		result.Reply = "Got it."
	}
	return result, nil
}

func chatContext(message, date string, view *WorkoutView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n", date)
	if view == nil {
		b.WriteString("No workout is scheduled that day.\n")
	} else {
		names := make([]string, 0, len(view.Exercises))
		for _, ex := range view.Exercises {
			names = append(names, ex.Name)
		}
		fmt.Fprintf(&b, "Workout (%s): %s\n", view.Session.WorkoutType, strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, "Message: %s", message)
	return b.String()
}

func (s *chatService) dispatch(ctx context.Context, userID primitive.ObjectID, date string, view *WorkoutView, c *classified) (*ChatChange, error) {
	switch c.Intent {
	case IntentSwapExercise:
		if view == nil {
			return nil, fmt.Errorf("%w on %s", ErrSessionNotFound, date)
		}
		name := asString(c.Params["exercise"])
		ex := s.sessionExercise(view, name)
		if ex == nil {
			return nil, fmt.Errorf("%w: %q", ErrExerciseNotInSession, name)
		}
		block, _ := c.Params["block"].(bool)
		res, err := s.tracking.SwapExercise(ctx, userID, view.Session.ID, ex.ID, nil, block)
		if err != nil {
			return nil, err
		}
		return &ChatChange{Type: IntentSwapExercise, Description: fmt.Sprintf("Swapped %s for %s", res.From.Name, res.To.Name)}, nil

	case IntentReduceVolume:
		if view == nil {
			return nil, fmt.Errorf("%w on %s", ErrSessionNotFound, date)
		}
		mode := ReduceMode(asString(c.Params["mode"]))
		if mode == "" {
			mode = ReduceRemoveSet
		}
		res, err := s.tracking.ReduceVolume(ctx, userID, view.Session.ID, mode)
		if err != nil {
			return nil, err
		}
		return &ChatChange{Type: IntentReduceVolume, Description: fmt.Sprintf("Removed %d sets", res.RemovedSets)}, nil

	case IntentLogMeal:
		in := MealLogInput{
			Date:     date,
			Name:     asString(c.Params["name"]),
			Foods:    stringList(c.Params["foods"]),
			Calories: coerceFloat(c.Params["calories"]),
		}
		if _, ok := c.Params["protein"]; ok {
			p := coerceFloat(c.Params["protein"])
			in.Protein = &p
		}
		entry, err := s.meals.LogMeal(ctx, userID, in)
		if err != nil {
			return nil, err
		}
		return &ChatChange{Type: IntentLogMeal, Description: fmt.Sprintf("Logged %s (%.0f kcal)", entry.Name, entry.Calories)}, nil

	case IntentMoveSession:
		if view == nil {
			return nil, fmt.Errorf("%w on %s", ErrSessionNotFound, date)
		}
		moved, err := s.tracking.MoveSession(ctx, userID, view.Session.ID, asString(c.Params["date"]))
		if err != nil {
			return nil, err
		}
		return &ChatChange{Type: IntentMoveSession, Description: fmt.Sprintf("Moved workout from %s to %s", date, moved.Date)}, nil

	case IntentBlockItem:
		itemType := domain.BlockedItemType(strings.ToLower(asString(c.Params["type"])))
		name := asString(c.Params["name"])
		id, err := s.resolveBlockTarget(ctx, itemType, name)
		if err != nil {
			return nil, err
		}
		item, err := s.tracking.BlockItem(ctx, userID, itemType, id, "")
		if err != nil {
			return nil, err
		}
		return &ChatChange{Type: IntentBlockItem, Description: fmt.Sprintf("Blocked %s %s", item.ItemType, item.ItemName)}, nil
	}
	return nil, nil
}

// sessionExercise finds the session exercise confidently matching name.
// A weak token overlap ("leg press" against "bench press") is no match.
func (s *chatService) sessionExercise(view *WorkoutView, name string) *domain.Exercise {
	if name == "" {
		return nil
	}
	names := make([]string, len(view.Exercises))
	for i, ex := range view.Exercises {
		names[i] = ex.Name
	}
	m := matching.Best(s.scorer, name, names)
	if !m.Found() || !m.Confident() {
		return nil
	}
	return &view.Exercises[m.Index]
}

func (s *chatService) resolveBlockTarget(ctx context.Context, itemType domain.BlockedItemType, name string) (primitive.ObjectID, error) {
	if name == "" {
		return primitive.NilObjectID, invalidf("name of the item to block is required")
	}
	switch itemType {
	case domain.BlockedExercise:
		catalog, err := loadCatalog(ctx, s.store)
		if err != nil {
			return primitive.NilObjectID, err
		}
		ex, m := catalog.resolve(s.scorer, name)
		if ex == nil {
			if sug := catalog.suggestion(m); sug != "" {
				return primitive.NilObjectID, fmt.Errorf("%w: %q, did you mean %q?", ErrExerciseNotInCatalog, name, sug)
			}
			return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrExerciseNotInCatalog, name)
		}
		return ex.ID, nil
	case domain.BlockedMeal:
		meal, err := s.store.Meals.FindByName(ctx, name)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrMealNotFound, name)
			}
			return primitive.NilObjectID, err
		}
		return meal.ID, nil
	}
	return primitive.NilObjectID, invalidf("item type must be %q or %q", domain.BlockedExercise, domain.BlockedMeal)
}

// isUserFacing reports errors caused by the request rather than the system.
func isUserFacing(err error) bool {
	for _, target := range []error{
		ErrInvalidInput, ErrSessionNotFound, ErrSetNotFound, ErrMealNotFound, ErrDateOccupied,
		ErrNoSetsInSession, ErrExerciseNotInCatalog, ErrExerciseNotInSession, ErrNoAlternative,
		ErrAlreadyBlocked, ErrUserNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
