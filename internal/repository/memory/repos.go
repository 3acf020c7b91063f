package memory

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/repository"
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- users ---

type userRepo struct{ db *DB }

func (r *userRepo) UpsertByExternalID(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.ExternalID == "" {
		return nil, errors.New("user external ID is required")
	}
	defer r.db.lock(ctx)()
	now := time.Now().UTC()
	existing, err := first(r.db.t.users, func(u domain.User) bool { return u.ExternalID == user.ExternalID })
	if err == nil {
		existing.Email = user.Email
		existing.Name = user.Name
		existing.UpdatedAt = now
		r.db.t.users[existing.ID] = *existing
		return existing, nil
	}
	u := domain.User{
		ID:         primitive.NewObjectID(),
		ExternalID: user.ExternalID,
		Email:      user.Email,
		Name:       user.Name,
		Equipment:  domain.Equipment{Kind: domain.EquipmentAccessNone},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.db.t.users[u.ID] = u
	return &u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	defer r.db.lock(ctx)()
	return get(r.db.t.users, id)
}

func (r *userRepo) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	defer r.db.lock(ctx)()
	return first(r.db.t.users, func(u domain.User) bool { return u.ExternalID == externalID })
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	defer r.db.lock(ctx)()
	cur, ok := r.db.t.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	cur.Name = user.Name
	cur.WeightKg = user.WeightKg
	cur.HeightCm = user.HeightCm
	cur.Age = user.Age
	cur.Experience = user.Experience
	cur.Equipment = user.Equipment
	cur.Injuries = user.Injuries
	cur.UpdatedAt = user.UpdatedAt
	r.db.t.users[user.ID] = cur
	return nil
}

// --- goals ---

type goalRepo struct{ db *DB }

func (r *goalRepo) Create(ctx context.Context, goal *domain.Goal) (primitive.ObjectID, error) {
	if goal.UserID == primitive.NilObjectID || goal.Category == "" {
		return primitive.NilObjectID, errors.New("goal requires userId and category")
	}
	defer r.db.lock(ctx)()
	if goal.IsActive {
		if _, err := first(r.db.t.goals, func(g domain.Goal) bool { return g.UserID == goal.UserID && g.IsActive }); err == nil {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	goal.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	goal.CreatedAt = now
	goal.UpdatedAt = now
	r.db.t.goals[goal.ID] = *goal
	return goal.ID, nil
}

func (r *goalRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Goal, error) {
	defer r.db.lock(ctx)()
	return get(r.db.t.goals, id)
}

func (r *goalRepo) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Goal, error) {
	defer r.db.lock(ctx)()
	return first(r.db.t.goals, func(g domain.Goal) bool { return g.UserID == userID && g.IsActive })
}

func (r *goalRepo) DeactivateAllForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	defer r.db.lock(ctx)()
	var n int64
	for id, g := range r.db.t.goals {
		if g.UserID == userID && g.IsActive {
			g.IsActive = false
			g.UpdatedAt = time.Now().UTC()
			r.db.t.goals[id] = g
			n++
		}
	}
	return n, nil
}

func (r *goalRepo) Update(ctx context.Context, goal *domain.Goal) error {
	defer r.db.lock(ctx)()
	cur, ok := r.db.t.goals[goal.ID]
	if !ok {
		return repository.ErrNotFound
	}
	goal.UpdatedAt = time.Now().UTC()
	cur.IsActive = goal.IsActive
	cur.Completed = goal.Completed
	cur.CompletedAt = goal.CompletedAt
	cur.UpdatedAt = goal.UpdatedAt
	r.db.t.goals[goal.ID] = cur
	return nil
}

// --- training plans ---

type planRepo struct{ db *DB }

func (r *planRepo) Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error) {
	if plan.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("plan requires userId")
	}
	defer r.db.lock(ctx)()
	if plan.IsActive {
		if _, err := first(r.db.t.plans, func(p domain.TrainingPlan) bool { return p.UserID == plan.UserID && p.IsActive }); err == nil {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	r.db.t.plans[plan.ID] = *plan
	return plan.ID, nil
}

func (r *planRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error) {
	defer r.db.lock(ctx)()
	return get(r.db.t.plans, id)
}

func (r *planRepo) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.TrainingPlan, error) {
	defer r.db.lock(ctx)()
	return first(r.db.t.plans, func(p domain.TrainingPlan) bool { return p.UserID == userID && p.IsActive })
}

func (r *planRepo) DeactivateAllForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	defer r.db.lock(ctx)()
	var n int64
	for id, p := range r.db.t.plans {
		if p.UserID == userID && p.IsActive {
			p.IsActive = false
			p.UpdatedAt = time.Now().UTC()
			r.db.t.plans[id] = p
			n++
		}
	}
	return n, nil
}

func (r *planRepo) UpdateDiet(ctx context.Context, planID primitive.ObjectID, diet domain.DietPlan) error {
	defer r.db.lock(ctx)()
	p, ok := r.db.t.plans[planID]
	if !ok {
		return repository.ErrNotFound
	}
	p.Diet = diet
	p.UpdatedAt = time.Now().UTC()
	r.db.t.plans[planID] = p
	return nil
}

// --- exercises ---

type exerciseRepo struct{ db *DB }

func (r *exerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" {
		return primitive.NilObjectID, errors.New("exercise name is required")
	}
	defer r.db.lock(ctx)()
	if _, err := first(r.db.t.exercises, func(e domain.Exercise) bool { return strings.EqualFold(e.Name, exercise.Name) }); err == nil {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	r.db.t.exercises[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (r *exerciseRepo) UpsertByName(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" {
		return primitive.NilObjectID, errors.New("exercise name is required")
	}
	defer r.db.lock(ctx)()
	now := time.Now().UTC()
	if cur, err := first(r.db.t.exercises, func(e domain.Exercise) bool { return strings.EqualFold(e.Name, exercise.Name) }); err == nil {
		exercise.ID = cur.ID
		exercise.CreatedAt = cur.CreatedAt
	} else {
		exercise.ID = primitive.NewObjectID()
		exercise.CreatedAt = now
	}
	exercise.UpdatedAt = now
	r.db.t.exercises[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (r *exerciseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	defer r.db.lock(ctx)()
	return get(r.db.t.exercises, id)
}

func (r *exerciseRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	defer r.db.lock(ctx)()
	want := idSet(ids)
	return collect(r.db.t.exercises, func(e domain.Exercise) bool { _, ok := want[e.ID]; return ok }), nil
}

func (r *exerciseRepo) ListAll(ctx context.Context) ([]domain.Exercise, error) {
	defer r.db.lock(ctx)()
	return collect(r.db.t.exercises, func(domain.Exercise) bool { return true }), nil
}

func (r *exerciseRepo) ListByBodyPart(ctx context.Context, bodyPart string) ([]domain.Exercise, error) {
	defer r.db.lock(ctx)()
	out := collect(r.db.t.exercises, func(e domain.Exercise) bool { return e.Targets(bodyPart) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- sessions ---

type sessionRepo struct{ db *DB }

func (r *sessionRepo) Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error) {
	if session.UserID == primitive.NilObjectID || session.Date == "" {
		return primitive.NilObjectID, errors.New("session requires userId and date")
	}
	defer r.db.lock(ctx)()
	if r.occupied(session.UserID, session.Date, primitive.NilObjectID) {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	r.db.t.sessions[session.ID] = *session
	return session.ID, nil
}

func (r *sessionRepo) occupied(userID primitive.ObjectID, date string, except primitive.ObjectID) bool {
	for id, s := range r.db.t.sessions {
		if id != except && s.UserID == userID && s.Date == date {
			return true
		}
	}
	return false
}

func (r *sessionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	defer r.db.lock(ctx)()
	return get(r.db.t.sessions, id)
}

func (r *sessionRepo) GetByUserAndDate(ctx context.Context, userID primitive.ObjectID, date string) (*domain.WorkoutSession, error) {
	defer r.db.lock(ctx)()
	return first(r.db.t.sessions, func(s domain.WorkoutSession) bool { return s.UserID == userID && s.Date == date })
}

func (r *sessionRepo) ListByUserInRange(ctx context.Context, userID primitive.ObjectID, from, to string, ascending bool) ([]domain.WorkoutSession, error) {
	defer r.db.lock(ctx)()
	out := collect(r.db.t.sessions, func(s domain.WorkoutSession) bool {
		return s.UserID == userID && s.Date >= from && s.Date <= to
	})
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return out[i].Date < out[j].Date
		}
		return out[i].Date > out[j].Date
	})
	return out, nil
}

func (r *sessionRepo) ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]domain.WorkoutSession, error) {
	defer r.db.lock(ctx)()
	out := collect(r.db.t.sessions, func(s domain.WorkoutSession) bool { return s.PlanID == planID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *sessionRepo) UpdateDate(ctx context.Context, id primitive.ObjectID, date string, dayOfWeek *int) error {
	defer r.db.lock(ctx)()
	s, ok := r.db.t.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	if r.occupied(s.UserID, date, id) {
		return repository.ErrDuplicate
	}
	s.Date = date
	s.DayOfWeek = dayOfWeek
	s.UpdatedAt = time.Now().UTC()
	r.db.t.sessions[id] = s
	return nil
}

func (r *sessionRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.db.lock(ctx)()
	if _, ok := r.db.t.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.t.sessions, id)
	return nil
}

// --- sets ---

type setRepo struct{ db *DB }

func (r *setRepo) CreateMany(ctx context.Context, sets []domain.ExerciseSet) error {
	if len(sets) == 0 {
		return nil
	}
	defer r.db.lock(ctx)()
	now := time.Now().UTC()
	for i := range sets {
		if sets[i].SessionID == primitive.NilObjectID || sets[i].ExerciseID == primitive.NilObjectID {
			return errors.New("set requires sessionId and exerciseId")
		}
		for _, s := range r.db.t.sets {
			if s.SessionID == sets[i].SessionID && s.ExerciseID == sets[i].ExerciseID && s.SetNumber == sets[i].SetNumber {
				return repository.ErrDuplicate
			}
		}
		sets[i].ID = primitive.NewObjectID()
		sets[i].CreatedAt = now
		sets[i].UpdatedAt = now
		r.db.t.sets[sets[i].ID] = sets[i]
	}
	return nil
}

func (r *setRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseSet, error) {
	defer r.db.lock(ctx)()
	return get(r.db.t.sets, id)
}

func (r *setRepo) ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]domain.ExerciseSet, error) {
	defer r.db.lock(ctx)()
	return collect(r.db.t.sets, func(s domain.ExerciseSet) bool { return s.SessionID == sessionID }), nil
}

func (r *setRepo) ListBySessions(ctx context.Context, sessionIDs []primitive.ObjectID) ([]domain.ExerciseSet, error) {
	defer r.db.lock(ctx)()
	want := idSet(sessionIDs)
	return collect(r.db.t.sets, func(s domain.ExerciseSet) bool { _, ok := want[s.SessionID]; return ok }), nil
}

func (r *setRepo) ListRecentCompleted(ctx context.Context, userID, exerciseID primitive.ObjectID, limit int) ([]domain.ExerciseSet, error) {
	defer r.db.lock(ctx)()
	out := collect(r.db.t.sets, func(s domain.ExerciseSet) bool {
		return s.UserID == userID && s.ExerciseID == exerciseID && s.Completed
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].SetNumber < out[j].SetNumber
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *setRepo) ListByUserInRange(ctx context.Context, userID primitive.ObjectID, from, to string) ([]domain.ExerciseSet, error) {
	defer r.db.lock(ctx)()
	out := collect(r.db.t.sets, func(s domain.ExerciseSet) bool {
		return s.UserID == userID && s.Date >= from && s.Date <= to
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *setRepo) Update(ctx context.Context, set *domain.ExerciseSet) error {
	defer r.db.lock(ctx)()
	cur, ok := r.db.t.sets[set.ID]
	if !ok {
		return repository.ErrNotFound
	}
	set.UpdatedAt = time.Now().UTC()
	cur.ExerciseID = set.ExerciseID
	cur.PlannedWeight = set.PlannedWeight
	cur.PlannedReps = set.PlannedReps
	cur.ActualWeight = set.ActualWeight
	cur.ActualReps = set.ActualReps
	cur.RPE = set.RPE
	cur.Completed = set.Completed
	cur.CompletedAt = set.CompletedAt
	cur.UpdatedAt = set.UpdatedAt
	r.db.t.sets[set.ID] = cur
	return nil
}

func (r *setRepo) UpdateDateForSession(ctx context.Context, sessionID primitive.ObjectID, date string) error {
	defer r.db.lock(ctx)()
	for id, s := range r.db.t.sets {
		if s.SessionID == sessionID {
			s.Date = date
			s.UpdatedAt = time.Now().UTC()
			r.db.t.sets[id] = s
		}
	}
	return nil
}

func (r *setRepo) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	defer r.db.lock(ctx)()
	var n int64
	for _, id := range ids {
		if _, ok := r.db.t.sets[id]; ok {
			delete(r.db.t.sets, id)
			n++
		}
	}
	return n, nil
}

func (r *setRepo) DeleteBySession(ctx context.Context, sessionID primitive.ObjectID) (int64, error) {
	defer r.db.lock(ctx)()
	var n int64
	for id, s := range r.db.t.sets {
		if s.SessionID == sessionID {
			delete(r.db.t.sets, id)
			n++
		}
	}
	return n, nil
}
