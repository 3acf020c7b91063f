package service

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/matching"
	"alcyxob/coach-app/internal/repository"
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// exerciseCatalog is a snapshot of the exercise table for name resolution.
type exerciseCatalog struct {
	exercises []domain.Exercise
	names     []string
	byID      map[primitive.ObjectID]*domain.Exercise
}

func loadCatalog(ctx context.Context, store *repository.Store) (*exerciseCatalog, error) {
	all, err := store.Exercises.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	c := &exerciseCatalog{
		exercises: all,
		names:     make([]string, len(all)),
		byID:      make(map[primitive.ObjectID]*domain.Exercise, len(all)),
	}
	for i := range all {
		c.names[i] = all[i].Name
		c.byID[all[i].ID] = &c.exercises[i]
	}
	return c, nil
}

// resolve returns the best catalog entry for name, or nil plus the match
// (for a suggestion) when the match is not confident.
func (c *exerciseCatalog) resolve(scorer matching.Scorer, name string) (*domain.Exercise, matching.Match) {
	m := matching.Best(scorer, name, c.names)
	if !m.Found() || !m.Confident() {
		return nil, m
	}
	return &c.exercises[m.Index], m
}

func (c *exerciseCatalog) suggestion(m matching.Match) string {
	if !m.Found() {
		return ""
	}
	return c.names[m.Index]
}

// primaryBodyPart is the body part an exercise's volume is counted against.
func primaryBodyPart(ex *domain.Exercise) string {
	if ex == nil || len(ex.BodyParts) == 0 {
		return "other"
	}
	return strings.ToLower(ex.BodyParts[0])
}

// fresh returns the first usable exercise that trains bodyPart and is not
// in exclude.
func (c *exerciseCatalog) fresh(bodyPart string, blocked domain.BlockedSet, eq domain.Equipment, exclude map[primitive.ObjectID]bool) *domain.Exercise {
	for i := range c.exercises {
		ex := &c.exercises[i]
		if c.usable(ex, bodyPart, blocked, eq) && !exclude[ex.ID] {
			return ex
		}
	}
	return nil
}

// alternative is fresh, falling back to an excluded but usable exercise.
func (c *exerciseCatalog) alternative(bodyPart string, blocked domain.BlockedSet, eq domain.Equipment, exclude map[primitive.ObjectID]bool) *domain.Exercise {
	if ex := c.fresh(bodyPart, blocked, eq, exclude); ex != nil {
		return ex
	}
	return c.fresh(bodyPart, blocked, eq, nil)
}

func (c *exerciseCatalog) usable(ex *domain.Exercise, bodyPart string, blocked domain.BlockedSet, eq domain.Equipment) bool {
	return ex.Targets(bodyPart) && !blocked.Has(domain.BlockedExercise, ex.ID) && eq.Allows(ex.Equipment)
}

func loadBlocked(ctx context.Context, store *repository.Store, userID primitive.ObjectID) (domain.BlockedSet, error) {
	items, err := store.Blocked.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.NewBlockedSet(items), nil
}
