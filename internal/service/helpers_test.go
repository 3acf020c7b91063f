package service

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/llm"
	"alcyxob/coach-app/internal/logger"
	"alcyxob/coach-app/internal/repository"
	"alcyxob/coach-app/internal/repository/memory"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeGenerator answers with canned text per request kind.
type fakeGenerator struct {
	mu        sync.Mutex
	responses map[string]string
	err       error
	requests  []llm.Request
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{responses: map[string]string{}}
}

func (f *fakeGenerator) on(kind, text string) *fakeGenerator {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[kind] = text
	return f
}

func (f *fakeGenerator) Complete(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.responses[req.Kind], nil
}

// memoryDrafts is a DraftStore for tests.
type memoryDrafts struct {
	mu     sync.Mutex
	drafts map[primitive.ObjectID]*domain.StrategyDraft
}

func (m *memoryDrafts) SaveStrategyDraft(_ context.Context, userID primitive.ObjectID, d *domain.StrategyDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.drafts == nil {
		m.drafts = map[primitive.ObjectID]*domain.StrategyDraft{}
	}
	m.drafts[userID] = d
	return nil
}

func (m *memoryDrafts) GetStrategyDraft(_ context.Context, userID primitive.ObjectID) (*domain.StrategyDraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.drafts[userID], nil
}

// catalogFixture is inserted in this order; lookups rely on it.
var catalogFixture = []domain.Exercise{
	{Name: "Bench Press", BodyParts: []string{"chest", "triceps"}, Compound: true, Equipment: domain.EquipBarbell},
	{Name: "Incline Dumbbell Press", BodyParts: []string{"chest"}, Compound: true, Equipment: domain.EquipDumbbell},
	{Name: "Cable Fly", BodyParts: []string{"chest"}, Equipment: domain.EquipCable},
	{Name: "Squat", BodyParts: []string{"legs"}, Compound: true, Equipment: domain.EquipBarbell},
	{Name: "Leg Press", BodyParts: []string{"legs"}, Compound: true, Equipment: domain.EquipMachine},
	{Name: "Barbell Row", BodyParts: []string{"back"}, Compound: true, Equipment: domain.EquipBarbell},
	{Name: "Lat Pulldown", BodyParts: []string{"back"}, Equipment: domain.EquipCable},
	{Name: "Bicep Curl", BodyParts: []string{"biceps"}, Equipment: domain.EquipDumbbell},
	{Name: "Hammer Curl", BodyParts: []string{"biceps"}, Equipment: domain.EquipDumbbell},
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *repository.Store
	log   *logger.Logger
	user  *domain.User
	ex    map[string]*domain.Exercise
}

// newFixture seeds a gym user and the exercise catalog.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		store: memory.NewStore(),
		log:   logger.NewNop(),
		ex:    map[string]*domain.Exercise{},
	}
	user, err := f.store.Users.UpsertByExternalID(f.ctx, &domain.User{ExternalID: "user_1", Name: "Sam"})
	require.NoError(t, err)
	user.Equipment = domain.Equipment{Kind: domain.EquipmentAccessGym}
	require.NoError(t, f.store.Users.Update(f.ctx, user))
	f.user = user

	for _, ex := range catalogFixture {
		ex := ex
		_, err := f.store.Exercises.Create(f.ctx, &ex)
		require.NoError(t, err)
		f.ex[ex.Name] = &ex
	}
	return f
}

type exerciseSets struct {
	name   string
	sets   int
	weight float64
	reps   int
	done   bool
}

// session stores a session on date with the given sets, numbered from 1.
func (f *fixture) session(date string, items ...exerciseSets) *domain.WorkoutSession {
	f.t.Helper()
	s := &domain.WorkoutSession{UserID: f.user.ID, Date: date, WorkoutType: domain.WorkoutStrength}
	_, err := f.store.Sessions.Create(f.ctx, s)
	require.NoError(f.t, err)

	var sets []domain.ExerciseSet
	for _, it := range items {
		ex := f.ex[it.name]
		require.NotNil(f.t, ex, it.name)
		for n := 1; n <= it.sets; n++ {
			set := domain.ExerciseSet{
				SessionID:     s.ID,
				UserID:        f.user.ID,
				ExerciseID:    ex.ID,
				SetNumber:     n,
				PlannedWeight: it.weight,
				PlannedReps:   it.reps,
				Date:          date,
				Completed:     it.done,
			}
			if it.done {
				reps := it.reps
				set.ActualReps = &reps
			}
			sets = append(sets, set)
		}
	}
	require.NoError(f.t, f.store.Sets.CreateMany(f.ctx, sets))
	return s
}

func (f *fixture) setsOf(sessionID primitive.ObjectID) []domain.ExerciseSet {
	f.t.Helper()
	sets, err := f.store.Sets.ListBySession(f.ctx, sessionID)
	require.NoError(f.t, err)
	return sets
}

func countByExercise(sets []domain.ExerciseSet) map[primitive.ObjectID]int {
	out := map[primitive.ObjectID]int{}
	for _, s := range sets {
		out[s.ExerciseID]++
	}
	return out
}

func (f *fixture) activePlan(dist domain.IntensityDistribution) *domain.TrainingPlan {
	f.t.Helper()
	plan := &domain.TrainingPlan{
		UserID:   f.user.ID,
		IsActive: true,
		Strategy: domain.TrainingStrategy{GoalType: "strength", TimeHorizonWeeks: 12, IntensityDistribution: dist},
		Diet: domain.DietPlan{DailyCalories: 2000, Meals: []domain.DietMeal{
			{Name: "Oats Bowl", Foods: []string{"oats", "milk"}, Calories: 1000},
			{Name: "Chicken Rice", Foods: []string{"chicken", "rice"}, Calories: 1000},
		}},
	}
	_, err := f.store.Plans.Create(f.ctx, plan)
	require.NoError(f.t, err)
	return plan
}

func (f *fixture) tracking() TrackingService {
	return NewTrackingService(f.store, nil, TrackingOptions{}, f.log)
}
