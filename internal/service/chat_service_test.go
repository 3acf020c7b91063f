package service

import (
	"alcyxob/coach-app/internal/llm"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChat(f *fixture, response string) (ChatService, *fakeGenerator) {
	gen := newFakeGenerator().on(llm.KindChat, response)
	return NewChatService(f.store, gen, f.tracking(), NewMealService(f.store, f.log), f.log), gen
}

func TestChatSwapExercise(t *testing.T) {
	f := newFixture(t)
	s := f.session("2024-03-06", exerciseSets{name: "Bench Press", sets: 3, weight: 100, reps: 5})
	chat, gen := newChat(f, `{"intent": "swap_exercise", "params": {"exercise": "bench"}, "reply": "Swapped it for you."}`)

	res, err := chat.Handle(f.ctx, f.user.ID, "my shoulder hurts, swap the bench", "2024-03-06")
	require.NoError(t, err)
	assert.Equal(t, IntentSwapExercise, res.Intent)
	assert.Equal(t, "Swapped it for you.", res.Reply)
	require.Len(t, res.Changes, 1)
	assert.NotEmpty(t, res.Changes[0].ID)
	assert.Equal(t, IntentSwapExercise, res.Changes[0].Type)
	assert.Contains(t, res.Changes[0].Description, "Incline Dumbbell Press")

	counts := countByExercise(f.setsOf(s.ID))
	assert.Zero(t, counts[f.ex["Bench Press"].ID])
	require.Len(t, gen.requests, 1)
	assert.Contains(t, gen.requests[0].User, "Bench Press")
}

func TestChatSwapIgnoresWeakNameOverlap(t *testing.T) {
	f := newFixture(t)
	s := f.session("2024-03-06", exerciseSets{name: "Bench Press", sets: 3, weight: 100, reps: 5})
	chat, _ := newChat(f, `{"intent": "swap_exercise", "params": {"exercise": "leg press", "block": true}, "reply": "Swapped!"}`)

	res, err := chat.Handle(f.ctx, f.user.ID, "swap the leg press", "2024-03-06")
	require.NoError(t, err)
	assert.Empty(t, res.Changes)
	assert.Contains(t, res.Reply, "I couldn't do that")
	assert.Contains(t, res.Reply, "leg press")

	counts := countByExercise(f.setsOf(s.ID))
	assert.Equal(t, 3, counts[f.ex["Bench Press"].ID])
	assert.Len(t, counts, 1)
	blocked, err := f.store.Blocked.ListByUser(f.ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, blocked)
}

func TestChatReduceVolumeDefaultsToRemoveSet(t *testing.T) {
	f := newFixture(t)
	s := f.session("2024-03-06", exerciseSets{name: "Squat", sets: 3, weight: 100, reps: 5})
	chat, _ := newChat(f, `{"intent": "reduce_volume", "params": {}}`)

	res, err := chat.Handle(f.ctx, f.user.ID, "too tired today", "2024-03-06")
	require.NoError(t, err)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, "Removed 1 sets", res.Reply)
	assert.Len(t, f.setsOf(s.ID), 2)
}

func TestChatLogMeal(t *testing.T) {
	f := newFixture(t)
	chat, _ := newChat(f, `{"intent": "log_meal", "params": {"name": "Burrito", "foods": ["beans", "rice"], "calories": "750", "protein": 30}}`)

	res, err := chat.Handle(f.ctx, f.user.ID, "I had a burrito", "2024-03-06")
	require.NoError(t, err)
	require.Len(t, res.Changes, 1)

	logs, err := f.store.MealLogs.ListByUserAndDate(f.ctx, f.user.ID, "2024-03-06")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 750.0, logs[0].Calories)
	require.NotNil(t, logs[0].Protein)
	assert.Equal(t, 30.0, *logs[0].Protein)
}

func TestChatMoveToOccupiedDateExplains(t *testing.T) {
	f := newFixture(t)
	s := f.session("2024-03-06")
	f.session("2024-03-07")
	chat, _ := newChat(f, `{"intent": "move_session", "params": {"date": "2024-03-07"}, "reply": "Moved!"}`)

	res, err := chat.Handle(f.ctx, f.user.ID, "move today to tomorrow", "2024-03-06")
	require.NoError(t, err)
	assert.Empty(t, res.Changes)
	assert.Contains(t, res.Reply, "2024-03-07")

	stored, err := f.store.Sessions.GetByID(f.ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-06", stored.Date)
}

func TestChatBlockItem(t *testing.T) {
	f := newFixture(t)
	chat, _ := newChat(f, `{"intent": "block_item", "params": {"type": "exercise", "name": "leg press"}}`)

	res, err := chat.Handle(f.ctx, f.user.ID, "never give me leg press again", "2024-03-06")
	require.NoError(t, err)
	require.Len(t, res.Changes, 1)
	blocked, err := f.store.Blocked.ListByUser(f.ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, blocked, 1)
	assert.Equal(t, f.ex["Leg Press"].ID.Hex(), blocked[0].ItemID)
}

func TestChatUnknownIntentAnswers(t *testing.T) {
	f := newFixture(t)
	chat, _ := newChat(f, `{"intent": "order_pizza", "params": {}, "reply": "Protein helps recovery."}`)

	res, err := chat.Handle(f.ctx, f.user.ID, "why protein?", "2024-03-06")
	require.NoError(t, err)
	assert.Equal(t, IntentAnswerQuestion, res.Intent)
	assert.Empty(t, res.Changes)
	assert.Equal(t, "Protein helps recovery.", res.Reply)
}

func TestChatRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	chat, _ := newChat(f, `not json`)

	_, err := chat.Handle(f.ctx, f.user.ID, "hello", "2024-03-06")
	assert.ErrorIs(t, err, ErrGeneration)
	_, err = chat.Handle(f.ctx, f.user.ID, "  ", "2024-03-06")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
