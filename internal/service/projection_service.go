package service

import (
	"alcyxob/coach-app/internal/repository"
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	projectionPoints     = 4
	projectionHorizon    = 28 * 24 * time.Hour
	msPerWeek            = float64(7 * 24 * time.Hour / time.Millisecond)
	projectionHistoryCap = 200
)

// Point is the heaviest weight of one session.
type Point struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

type Projection struct {
	ExerciseID      primitive.ObjectID `json:"exerciseId"`
	Points          []Point            `json:"points"`
	CurrentWeight   float64            `json:"currentWeight"`
	ProjectedWeight float64            `json:"projectedWeight"`
	WeeklyGain      float64            `json:"weeklyGain"`
	ProjectedDate   string             `json:"projectedDate"`
}

type ProjectionService interface {
	// Project returns nil, nil when there is not enough history.
	Project(ctx context.Context, userID, exerciseID primitive.ObjectID) (*Projection, error)
}

type projectionService struct {
	store *repository.Store
	now   func() time.Time
}

// NewProjectionService creates the progress projection service. now defaults
// to time.Now.
func NewProjectionService(store *repository.Store, now func() time.Time) ProjectionService {
	if now == nil {
		now = time.Now
	}
	return &projectionService{store: store, now: now}
}

func (s *projectionService) Project(ctx context.Context, userID, exerciseID primitive.ObjectID) (*Projection, error) {
	if _, err := s.store.Exercises.GetByID(ctx, exerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotInCatalog
		}
		return nil, err
	}
	sets, err := s.store.Sets.ListRecentCompleted(ctx, userID, exerciseID, projectionHistoryCap)
	if err != nil {
		return nil, err
	}

	best := map[string]float64{}
	for _, set := range sets {
		if w, ok := best[set.Date]; !ok || set.EffectiveWeight() > w {
			best[set.Date] = set.EffectiveWeight()
		}
	}
	points := make([]Point, 0, len(best))
	for date, w := range best {
		points = append(points, Point{Date: date, Weight: w})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	if len(points) > projectionPoints {
		points = points[len(points)-projectionPoints:]
	}

	p, ok := ProjectPoints(points, s.now())
	if !ok {
		return nil, nil
	}
	p.ExerciseID = exerciseID
	return p, nil
}

// ProjectPoints fits an ordinary least squares line over (ms timestamp,
// weight) and evaluates it 28 days after now. It fails on fewer than two
// points or when every point has the same date.
func ProjectPoints(points []Point, now time.Time) (*Projection, bool) {
	if len(points) < 2 {
		return nil, false
	}
	xs := make([]float64, len(points))
	var sumX, sumY float64
	for i, p := range points {
		t, err := parseDate(p.Date)
		if err != nil {
			return nil, false
		}
		xs[i] = float64(t.UnixMilli())
		sumX += xs[i]
		sumY += p.Weight
	}
	n := float64(len(points))
	meanX, meanY := sumX/n, sumY/n
	var sxx, sxy float64
	for i, p := range points {
		dx := xs[i] - meanX
		sxx += dx * dx
		sxy += dx * (p.Weight - meanY)
	}
	if sxx == 0 {
		return nil, false
	}
	slope := sxy / sxx
	intercept := meanY - slope*meanX

	target := now.Add(projectionHorizon)
	current := points[len(points)-1].Weight
	projected := intercept + slope*float64(target.UnixMilli())
	return &Projection{
		Points:          points,
		CurrentWeight:   current,
		ProjectedWeight: roundTo1(math.Max(projected, current)),
		WeeklyGain:      roundTo1(slope * msPerWeek),
		ProjectedDate:   formatDate(target),
	}, true
}

func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}
