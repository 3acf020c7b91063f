package service

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/logger"
	"alcyxob/coach-app/internal/repository"
	"alcyxob/coach-app/internal/storage"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const (
	accessorySets      = 3
	accessoryReps      = 12
	upcomingDays       = 7
	historyDays        = 14
	exportContentType  = "application/json"
	exportKeyPrefix    = "exports/"
	maxRPE             = 10.0
	defaultAccessories = 2
)

// ReduceMode selects how ReduceVolume cuts a session.
type ReduceMode string

const (
	ReduceRemoveSet      ReduceMode = "remove_set"
	ReduceRemoveExercise ReduceMode = "remove_exercise"
)

// SetCompletion carries the logged values of a set. Nil fields are kept.
type SetCompletion struct {
	ActualWeight *float64
	ActualReps   *int
	RPE          *float64
	Completed    bool
}

type ReduceResult struct {
	Mode        ReduceMode           `json:"mode"`
	RemovedSets int                  `json:"removedSets"`
	ExerciseIDs []primitive.ObjectID `json:"exerciseIds"`
}

type AccessoryResult struct {
	Exercise  domain.Exercise `json:"exercise"`
	Dates     []string        `json:"dates"`
	SetsAdded int             `json:"setsAdded"`
}

type SwapResult struct {
	From        domain.Exercise `json:"from"`
	To          domain.Exercise `json:"to"`
	SetsChanged int             `json:"setsChanged"`
	Blocked     bool            `json:"blocked"`
}

// MealView is a planned meal joined with its catalog entry.
type MealView struct {
	domain.DailyMeal
	Meal *domain.Meal `json:"meal,omitempty"`
}

// WorkoutView is a session with its sets, the exercises they reference
// and its planned meals.
type WorkoutView struct {
	Session   domain.WorkoutSession `json:"session"`
	Sets      []domain.ExerciseSet  `json:"sets"`
	Exercises []domain.Exercise     `json:"exercises"`
	Meals     []MealView            `json:"meals"`
}

type HistoryEntry struct {
	Session        domain.WorkoutSession `json:"session"`
	CompletedSets  int                   `json:"completedSets"`
	TotalSets      int                   `json:"totalSets"`
	CompletionRate float64               `json:"completionRate"`
}

type WeeklyVolume struct {
	WeekStart     string  `json:"weekStart"`
	WeekEnd       string  `json:"weekEnd"`
	CompletedSets int     `json:"completedSets"`
	Tonnage       float64 `json:"tonnage"`
}

type BodyPartVolume struct {
	WeekStart string         `json:"weekStart"`
	WeekEnd   string         `json:"weekEnd"`
	Sets      map[string]int `json:"sets"`
}

type ExportResult struct {
	Export domain.HistoryExport `json:"export"`
	URL    string               `json:"url"`
}

// TrackingOptions tunes TrackingService.
type TrackingOptions struct {
	AccessorySessions int
	ExportURLTTL      time.Duration
}

type TrackingService interface {
	CompleteSet(ctx context.Context, userID, setID primitive.ObjectID, in SetCompletion) (*domain.ExerciseSet, error)
	ReduceVolume(ctx context.Context, userID, sessionID primitive.ObjectID, mode ReduceMode) (*ReduceResult, error)
	MoveSession(ctx context.Context, userID, sessionID primitive.ObjectID, newDate string) (*domain.WorkoutSession, error)
	// AddAccessory appends 3x12 of one exercise for bodyPart to up to
	// maxSessions sessions in the 7 days starting at fromDate. maxSessions <= 0
	// means the configured default.
	AddAccessory(ctx context.Context, userID primitive.ObjectID, bodyPart, fromDate string, maxSessions int) (*AccessoryResult, error)
	SwapExercise(ctx context.Context, userID, sessionID, fromExerciseID primitive.ObjectID, bodyPart *string, block bool) (*SwapResult, error)
	BlockItem(ctx context.Context, userID primitive.ObjectID, itemType domain.BlockedItemType, itemID primitive.ObjectID, name string) (*domain.BlockedItem, error)
	ListBlocked(ctx context.Context, userID primitive.ObjectID) ([]domain.BlockedItem, error)
	DeleteSession(ctx context.Context, userID, sessionID primitive.ObjectID) error

	// TodayWorkout returns nil, nil when there is no session on date.
	TodayWorkout(ctx context.Context, userID primitive.ObjectID, date string) (*WorkoutView, error)
	Upcoming(ctx context.Context, userID primitive.ObjectID, from string) ([]domain.WorkoutSession, error)
	History(ctx context.Context, userID primitive.ObjectID, to string) ([]HistoryEntry, error)
	WeeklyVolume(ctx context.Context, userID primitive.ObjectID, weekOf string) (*WeeklyVolume, error)
	BodyPartVolume(ctx context.Context, userID primitive.ObjectID, weekOf string) (*BodyPartVolume, error)

	LogSteps(ctx context.Context, userID primitive.ObjectID, date string, steps int) (*domain.DailyLog, error)
	LogWater(ctx context.Context, userID primitive.ObjectID, date string, ml int) (*domain.DailyLog, error)
	ExportHistory(ctx context.Context, userID primitive.ObjectID, to string) (*ExportResult, error)
}

type trackingService struct {
	store *repository.Store
	files storage.FileStorage
	opts  TrackingOptions
	log   *logger.Logger
}

// NewTrackingService creates the execution tracking service. files may be nil
// when exports are not needed.
func NewTrackingService(store *repository.Store, files storage.FileStorage, opts TrackingOptions, log *logger.Logger) TrackingService {
	if opts.AccessorySessions <= 0 {
		opts.AccessorySessions = defaultAccessories
	}
	if opts.ExportURLTTL <= 0 {
		opts.ExportURLTTL = storage.DefaultPresignedURLExpiry
	}
	return &trackingService{store: store, files: files, opts: opts, log: log}
}

// ownedSession loads a session and checks it belongs to userID.
func ownedSession(ctx context.Context, store *repository.Store, userID, sessionID primitive.ObjectID) (*domain.WorkoutSession, error) {
	session, err := store.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *trackingService) CompleteSet(ctx context.Context, userID, setID primitive.ObjectID, in SetCompletion) (*domain.ExerciseSet, error) {
	if in.ActualWeight != nil && *in.ActualWeight < 0 {
		return nil, invalidf("actual weight must not be negative")
	}
	if in.ActualReps != nil && *in.ActualReps < 0 {
		return nil, invalidf("actual reps must not be negative")
	}
	if in.RPE != nil && (*in.RPE < 1 || *in.RPE > maxRPE) {
		return nil, invalidf("rpe must be between 1 and 10")
	}

	set, err := s.store.Sets.GetByID(ctx, setID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSetNotFound
		}
		return nil, err
	}
	if set.UserID != userID {
		return nil, ErrSetNotFound
	}

	if in.ActualWeight != nil {
		set.ActualWeight = in.ActualWeight
	}
	if in.ActualReps != nil {
		set.ActualReps = in.ActualReps
	}
	if in.RPE != nil {
		set.RPE = in.RPE
	}
	// completed never reverts
	if in.Completed && !set.Completed {
		now := time.Now().UTC()
		set.Completed = true
		set.CompletedAt = &now
	}
	if err := s.store.Sets.Update(ctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

// exerciseGroups groups sets by exercise in first-seen order.
func exerciseGroups(sets []domain.ExerciseSet) ([]primitive.ObjectID, map[primitive.ObjectID][]domain.ExerciseSet) {
	var order []primitive.ObjectID
	groups := map[primitive.ObjectID][]domain.ExerciseSet{}
	for _, set := range sets {
		if _, ok := groups[set.ExerciseID]; !ok {
			order = append(order, set.ExerciseID)
		}
		groups[set.ExerciseID] = append(groups[set.ExerciseID], set)
	}
	return order, groups
}

func (s *trackingService) ReduceVolume(ctx context.Context, userID, sessionID primitive.ObjectID, mode ReduceMode) (*ReduceResult, error) {
	if mode != ReduceRemoveSet && mode != ReduceRemoveExercise {
		return nil, invalidf("mode must be %q or %q", ReduceRemoveSet, ReduceRemoveExercise)
	}
	if _, err := ownedSession(ctx, s.store, userID, sessionID); err != nil {
		return nil, err
	}
	sets, err := s.store.Sets.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, ErrNoSetsInSession
	}

	order, groups := exerciseGroups(sets)
	result := &ReduceResult{Mode: mode, ExerciseIDs: []primitive.ObjectID{}}
	var ids []primitive.ObjectID
	switch mode {
	case ReduceRemoveSet:
		for _, exID := range order {
			last := groups[exID][0]
			for _, set := range groups[exID][1:] {
				if set.SetNumber > last.SetNumber {
					last = set
				}
			}
			ids = append(ids, last.ID)
			result.ExerciseIDs = append(result.ExerciseIDs, exID)
		}
	case ReduceRemoveExercise:
		biggest := order[0]
		for _, exID := range order[1:] {
			if len(groups[exID]) > len(groups[biggest]) {
				biggest = exID
			}
		}
		for _, set := range groups[biggest] {
			ids = append(ids, set.ID)
		}
		result.ExerciseIDs = append(result.ExerciseIDs, biggest)
	}

	n, err := s.store.Sets.DeleteByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	result.RemovedSets = int(n)
	s.log.Info("session volume reduced", "sessionId", sessionID.Hex(), "mode", mode, "removed", n)
	return result, nil
}

func (s *trackingService) MoveSession(ctx context.Context, userID, sessionID primitive.ObjectID, newDate string) (*domain.WorkoutSession, error) {
	date, err := parseDate(newDate)
	if err != nil {
		return nil, err
	}
	session, err := ownedSession(ctx, s.store, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Date == newDate {
		return session, nil
	}

	occupied := fmt.Errorf("%w: %s", ErrDateOccupied, newDate)
	other, err := s.store.Sessions.GetByUserAndDate(ctx, userID, newDate)
	switch {
	case err == nil && other.ID != session.ID:
		return nil, occupied
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	dow := isoWeekday(date)
	err = s.store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.store.Sessions.UpdateDate(ctx, sessionID, newDate, &dow); err != nil {
			return err
		}
		return s.store.Sets.UpdateDateForSession(ctx, sessionID, newDate)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, occupied
		}
		return nil, err
	}
	session.Date = newDate
	session.DayOfWeek = &dow
	return session, nil
}

func (s *trackingService) AddAccessory(ctx context.Context, userID primitive.ObjectID, bodyPart, fromDate string, maxSessions int) (*AccessoryResult, error) {
	bodyPart = strings.ToLower(strings.TrimSpace(bodyPart))
	if bodyPart == "" {
		return nil, invalidf("body part is required")
	}
	if _, err := parseDate(fromDate); err != nil {
		return nil, err
	}
	if maxSessions <= 0 {
		maxSessions = s.opts.AccessorySessions
	}
	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserNotFound, err)
	}

	sessions, err := s.store.Sessions.ListByUserInRange(ctx, userID, fromDate, addDays(fromDate, upcomingDays-1), true)
	if err != nil {
		return nil, err
	}
	targets := make([]domain.WorkoutSession, 0, maxSessions)
	for _, sess := range sessions {
		if sess.WorkoutType == domain.WorkoutRest {
			continue
		}
		if len(targets) == maxSessions {
			break
		}
		targets = append(targets, sess)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: none between %s and %s", ErrSessionNotFound, fromDate, addDays(fromDate, upcomingDays-1))
	}

	ids := make([]primitive.ObjectID, len(targets))
	for i := range targets {
		ids[i] = targets[i].ID
	}
	existing, err := s.store.Sets.ListBySessions(ctx, ids)
	if err != nil {
		return nil, err
	}
	used := map[primitive.ObjectID]bool{}
	for _, set := range existing {
		used[set.ExerciseID] = true
	}

	catalog, err := loadCatalog(ctx, s.store)
	if err != nil {
		return nil, err
	}
	blocked, err := loadBlocked(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	ex := catalog.alternative(bodyPart, blocked, user.Equipment, used)
	if ex == nil {
		return nil, fmt.Errorf("%w: for %s", ErrNoAlternative, bodyPart)
	}

	var sets []domain.ExerciseSet
	result := &AccessoryResult{Exercise: *ex, Dates: []string{}}
	for _, sess := range targets {
		target, err := targetFor(ctx, s.store, userID, ex, sess.Date, accessoryReps)
		if err != nil {
			return nil, err
		}
		start := 0
		for _, set := range existing {
			if set.SessionID == sess.ID && set.ExerciseID == ex.ID && set.SetNumber > start {
				start = set.SetNumber
			}
		}
		for n := 1; n <= accessorySets; n++ {
			sets = append(sets, domain.ExerciseSet{
				SessionID:     sess.ID,
				UserID:        userID,
				ExerciseID:    ex.ID,
				SetNumber:     start + n,
				PlannedWeight: target.Weight,
				PlannedReps:   accessoryReps,
				Date:          sess.Date,
			})
		}
		result.Dates = append(result.Dates, sess.Date)
	}
	if err := s.store.Sets.CreateMany(ctx, sets); err != nil {
		return nil, err
	}
	result.SetsAdded = len(sets)
	return result, nil
}

func (s *trackingService) SwapExercise(ctx context.Context, userID, sessionID, fromExerciseID primitive.ObjectID, bodyPart *string, block bool) (*SwapResult, error) {
	session, err := ownedSession(ctx, s.store, userID, sessionID)
	if err != nil {
		return nil, err
	}
	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserNotFound, err)
	}
	sets, err := s.store.Sets.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	_, groups := exerciseGroups(sets)
	fromSets := groups[fromExerciseID]
	if len(fromSets) == 0 {
		return nil, ErrExerciseNotInSession
	}

	catalog, err := loadCatalog(ctx, s.store)
	if err != nil {
		return nil, err
	}
	from := catalog.byID[fromExerciseID]
	if from == nil {
		return nil, ErrExerciseNotInCatalog
	}
	bp := primaryBodyPart(from)
	if bodyPart != nil && strings.TrimSpace(*bodyPart) != "" {
		bp = strings.ToLower(strings.TrimSpace(*bodyPart))
	}
	blocked, err := loadBlocked(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	exclude := map[primitive.ObjectID]bool{}
	for exID := range groups {
		exclude[exID] = true
	}
	to := catalog.fresh(bp, blocked, user.Equipment, exclude)
	if to == nil {
		return nil, fmt.Errorf("%w: for %s", ErrNoAlternative, bp)
	}
	target, err := targetFor(ctx, s.store, userID, to, session.Date, fromSets[0].PlannedReps)
	if err != nil {
		return nil, err
	}

	err = s.store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		for i := range fromSets {
			set := fromSets[i]
			set.ExerciseID = to.ID
			set.PlannedWeight = target.Weight
			set.PlannedReps = target.Reps
			if err := s.store.Sets.Update(ctx, &set); err != nil {
				return err
			}
		}
		if !block {
			return nil
		}
		_, err := s.store.Blocked.Create(ctx, &domain.BlockedItem{
			UserID: userID, ItemType: domain.BlockedExercise, ItemID: from.ID.Hex(), ItemName: from.Name,
		})
		if errors.Is(err, repository.ErrDuplicate) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("exercise swapped", "sessionId", sessionID.Hex(), "from", from.Name, "to", to.Name, "blocked", block)
	return &SwapResult{From: *from, To: *to, SetsChanged: len(fromSets), Blocked: block}, nil
}

func (s *trackingService) BlockItem(ctx context.Context, userID primitive.ObjectID, itemType domain.BlockedItemType, itemID primitive.ObjectID, name string) (*domain.BlockedItem, error) {
	switch itemType {
	case domain.BlockedExercise:
		ex, err := s.store.Exercises.GetByID(ctx, itemID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrExerciseNotInCatalog
			}
			return nil, err
		}
		if name == "" {
			name = ex.Name
		}
	case domain.BlockedMeal:
		meal, err := s.store.Meals.GetByID(ctx, itemID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrMealNotFound
			}
			return nil, err
		}
		if name == "" {
			name = meal.Name
		}
	default:
		return nil, invalidf("item type must be %q or %q", domain.BlockedExercise, domain.BlockedMeal)
	}

	item := &domain.BlockedItem{UserID: userID, ItemType: itemType, ItemID: itemID.Hex(), ItemName: name}
	if _, err := s.store.Blocked.Create(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyBlocked
		}
		return nil, err
	}
	return item, nil
}

func (s *trackingService) ListBlocked(ctx context.Context, userID primitive.ObjectID) ([]domain.BlockedItem, error) {
	return s.store.Blocked.ListByUser(ctx, userID)
}

func (s *trackingService) DeleteSession(ctx context.Context, userID, sessionID primitive.ObjectID) error {
	if _, err := ownedSession(ctx, s.store, userID, sessionID); err != nil {
		return err
	}
	return s.store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		return deleteSessionCascade(ctx, s.store, sessionID)
	})
}

func (s *trackingService) TodayWorkout(ctx context.Context, userID primitive.ObjectID, date string) (*WorkoutView, error) {
	if _, err := parseDate(date); err != nil {
		return nil, err
	}
	session, err := s.store.Sessions.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	view := &WorkoutView{Session: *session}
	var dailyMeals []domain.DailyMeal
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		view.Sets, err = s.store.Sets.ListBySession(gctx, session.ID)
		return err
	})
	g.Go(func() error {
		var err error
		dailyMeals, err = s.store.DailyMeals.ListBySession(gctx, session.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var meals []domain.Meal
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		ids := make([]primitive.ObjectID, 0, len(view.Sets))
		for _, set := range view.Sets {
			ids = append(ids, set.ExerciseID)
		}
		var err error
		view.Exercises, err = s.store.Exercises.GetByIDs(gctx, ids)
		return err
	})
	g.Go(func() error {
		ids := make([]primitive.ObjectID, 0, len(dailyMeals))
		for _, dm := range dailyMeals {
			ids = append(ids, dm.MealID)
		}
		var err error
		meals, err = s.store.Meals.GetByIDs(gctx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]*domain.Meal, len(meals))
	for i := range meals {
		byID[meals[i].ID] = &meals[i]
	}
	view.Meals = make([]MealView, 0, len(dailyMeals))
	for _, dm := range dailyMeals {
		view.Meals = append(view.Meals, MealView{DailyMeal: dm, Meal: byID[dm.MealID]})
	}
	return view, nil
}

func (s *trackingService) Upcoming(ctx context.Context, userID primitive.ObjectID, from string) ([]domain.WorkoutSession, error) {
	if _, err := parseDate(from); err != nil {
		return nil, err
	}
	return s.store.Sessions.ListByUserInRange(ctx, userID, from, addDays(from, upcomingDays-1), true)
}

func (s *trackingService) History(ctx context.Context, userID primitive.ObjectID, to string) ([]HistoryEntry, error) {
	if _, err := parseDate(to); err != nil {
		return nil, err
	}
	sessions, err := s.store.Sessions.ListByUserInRange(ctx, userID, addDays(to, -(historyDays-1)), to, false)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(sessions))
	for i := range sessions {
		ids[i] = sessions[i].ID
	}
	sets, err := s.store.Sets.ListBySessions(ctx, ids)
	if err != nil {
		return nil, err
	}
	total := map[primitive.ObjectID]int{}
	done := map[primitive.ObjectID]int{}
	for _, set := range sets {
		total[set.SessionID]++
		if set.Completed {
			done[set.SessionID]++
		}
	}

	out := make([]HistoryEntry, 0, len(sessions))
	for _, sess := range sessions {
		e := HistoryEntry{Session: sess, CompletedSets: done[sess.ID], TotalSets: total[sess.ID]}
		if e.TotalSets > 0 {
			e.CompletionRate = float64(e.CompletedSets) / float64(e.TotalSets)
		}
		out = append(out, e)
	}
	return out, nil
}

// completedInWeek returns the completed sets of the ISO week containing weekOf.
func (s *trackingService) completedInWeek(ctx context.Context, userID primitive.ObjectID, weekOf string) (string, string, []domain.ExerciseSet, error) {
	t, err := parseDate(weekOf)
	if err != nil {
		return "", "", nil, err
	}
	from, to := weekBounds(t)
	sets, err := s.store.Sets.ListByUserInRange(ctx, userID, from, to)
	if err != nil {
		return "", "", nil, err
	}
	done := sets[:0]
	for _, set := range sets {
		if set.Completed {
			done = append(done, set)
		}
	}
	return from, to, done, nil
}

func (s *trackingService) WeeklyVolume(ctx context.Context, userID primitive.ObjectID, weekOf string) (*WeeklyVolume, error) {
	from, to, sets, err := s.completedInWeek(ctx, userID, weekOf)
	if err != nil {
		return nil, err
	}
	v := &WeeklyVolume{WeekStart: from, WeekEnd: to, CompletedSets: len(sets)}
	for _, set := range sets {
		v.Tonnage += set.EffectiveWeight() * float64(set.EffectiveReps())
	}
	return v, nil
}

func (s *trackingService) BodyPartVolume(ctx context.Context, userID primitive.ObjectID, weekOf string) (*BodyPartVolume, error) {
	from, to, sets, err := s.completedInWeek(ctx, userID, weekOf)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(sets))
	for _, set := range sets {
		ids = append(ids, set.ExerciseID)
	}
	exercises, err := s.store.Exercises.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*domain.Exercise, len(exercises))
	for i := range exercises {
		byID[exercises[i].ID] = &exercises[i]
	}
	v := &BodyPartVolume{WeekStart: from, WeekEnd: to, Sets: map[string]int{}}
	for _, set := range sets {
		v.Sets[primaryBodyPart(byID[set.ExerciseID])]++
	}
	return v, nil
}

func (s *trackingService) LogSteps(ctx context.Context, userID primitive.ObjectID, date string, steps int) (*domain.DailyLog, error) {
	if _, err := parseDate(date); err != nil {
		return nil, err
	}
	if steps < 0 {
		return nil, invalidf("steps must not be negative")
	}
	return s.store.DailyLogs.SetSteps(ctx, userID, date, steps)
}

func (s *trackingService) LogWater(ctx context.Context, userID primitive.ObjectID, date string, ml int) (*domain.DailyLog, error) {
	if _, err := parseDate(date); err != nil {
		return nil, err
	}
	if ml <= 0 {
		return nil, invalidf("water must be a positive amount of ml")
	}
	return s.store.DailyLogs.Increment(ctx, userID, date, 0, ml)
}

func (s *trackingService) ExportHistory(ctx context.Context, userID primitive.ObjectID, to string) (*ExportResult, error) {
	if s.files == nil {
		return nil, errors.New("object storage is not configured")
	}
	history, err := s.History(ctx, userID, to)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(history)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s%s/%s.json", exportKeyPrefix, userID.Hex(), uuid.NewString())
	if err := s.files.PutObject(ctx, key, exportContentType, body); err != nil {
		s.log.Error("history export upload failed", "userId", userID.Hex(), "key", key, "error", err)
		return nil, err
	}
	export := domain.HistoryExport{
		UserID:      userID,
		ObjectKey:   key,
		ContentType: exportContentType,
		Size:        int64(len(body)),
		FromDate:    addDays(to, -(historyDays - 1)),
		ToDate:      to,
	}
	if _, err := s.store.Exports.Create(ctx, &export); err != nil {
		return nil, err
	}
	url, err := s.files.GeneratePresignedDownloadURL(ctx, key, s.opts.ExportURLTTL)
	if err != nil {
		return nil, err
	}
	return &ExportResult{Export: export, URL: url}, nil
}
