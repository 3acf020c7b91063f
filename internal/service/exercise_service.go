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

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrExerciseNotFound = errors.New("exercise not found")

// MediaLink is a temporary download URL for an exercise demo.
type MediaLink struct {
	ExerciseID primitive.ObjectID `json:"exerciseId"`
	URL        string             `json:"url"`
	ExpiresAt  time.Time          `json:"expiresAt"`
}

// CatalogExercise is one exercise entry of a catalog file.
type CatalogExercise struct {
	Name      string               `json:"name"`
	BodyParts []string             `json:"bodyParts"`
	Compound  bool                 `json:"compound"`
	Equipment domain.EquipmentType `json:"equipment"`
	MediaKey  string               `json:"mediaKey"`
}

// CatalogFile is the JSON document read by the catalog import.
type CatalogFile struct {
	Exercises []CatalogExercise `json:"exercises"`
	Meals     []any             `json:"meals"`
}

type CatalogImportResult struct {
	Exercises int             `json:"exercises"`
	Failed    []ImportFailure `json:"failed"`
	Meals     *ImportResult   `json:"meals,omitempty"`
}

type ExerciseService interface {
	// ListExercises returns the whole catalog, or the exercises of one body part.
	ListExercises(ctx context.Context, bodyPart string) ([]domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	// MediaURL returns nil, nil when the exercise has no demo media.
	MediaURL(ctx context.Context, exerciseID primitive.ObjectID) (*MediaLink, error)
	ImportCatalog(ctx context.Context, raw []byte) (*CatalogImportResult, error)
}

type exerciseService struct {
	store *repository.Store
	files storage.FileStorage
	meals MealService
	ttl   time.Duration
	log   *logger.Logger
}

// NewExerciseService creates the catalog service. files may be nil, in which
// case no media URL is ever returned.
func NewExerciseService(store *repository.Store, files storage.FileStorage, meals MealService, ttl time.Duration, log *logger.Logger) ExerciseService {
	if ttl <= 0 {
		ttl = storage.DefaultPresignedURLExpiry
	}
	return &exerciseService{store: store, files: files, meals: meals, ttl: ttl, log: log}
}

func (s *exerciseService) ListExercises(ctx context.Context, bodyPart string) ([]domain.Exercise, error) {
	bodyPart = strings.ToLower(strings.TrimSpace(bodyPart))
	if bodyPart == "" {
		return s.store.Exercises.ListAll(ctx)
	}
	return s.store.Exercises.ListByBodyPart(ctx, bodyPart)
}

func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.store.Exercises.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrExerciseNotFound, exerciseID.Hex())
		}
		return nil, err
	}
	return exercise, nil
}

func (s *exerciseService) MediaURL(ctx context.Context, exerciseID primitive.ObjectID) (*MediaLink, error) {
	exercise, err := s.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	if exercise.MediaKey == "" || s.files == nil {
		return nil, nil
	}
	url, err := s.files.GeneratePresignedDownloadURL(ctx, exercise.MediaKey, s.ttl)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("presign media for %s: %w", exercise.Name, err)
	}
	return &MediaLink{ExerciseID: exercise.ID, URL: url, ExpiresAt: time.Now().Add(s.ttl).UTC()}, nil
}

// ImportCatalog upserts every exercise by name and imports the meals. Bad
// entries are reported, not fatal.
func (s *exerciseService) ImportCatalog(ctx context.Context, raw []byte) (*CatalogImportResult, error) {
	var file CatalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, invalidf("catalog is not valid JSON: %v", err)
	}
	if len(file.Exercises) == 0 && len(file.Meals) == 0 {
		return nil, invalidf("catalog has no exercises or meals")
	}

	result := &CatalogImportResult{Failed: []ImportFailure{}}
	for i, in := range file.Exercises {
		exercise, err := exerciseFromCatalog(in)
		if err == nil {
			_, err = s.store.Exercises.UpsertByName(ctx, exercise)
		}
		if err != nil {
			result.Failed = append(result.Failed, ImportFailure{Index: i, Name: in.Name, Error: err.Error()})
			continue
		}
		result.Exercises++
	}

	if len(file.Meals) > 0 {
		meals, err := s.meals.ImportMeals(ctx, file.Meals)
		if err != nil {
			return nil, err
		}
		result.Meals = meals
	}
	s.log.Info("catalog imported", "exercises", result.Exercises, "failed", len(result.Failed))
	return result, nil
}

func exerciseFromCatalog(in CatalogExercise) (*domain.Exercise, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.New("name is required")
	}
	parts := make([]string, 0, len(in.BodyParts))
	for _, bp := range in.BodyParts {
		if bp = strings.ToLower(strings.TrimSpace(bp)); bp != "" {
			parts = append(parts, bp)
		}
	}
	if len(parts) == 0 {
		return nil, errors.New("at least one body part is required")
	}
	return &domain.Exercise{
		Name:      name,
		BodyParts: parts,
		Compound:  in.Compound,
		Equipment: domain.EquipmentType(strings.ToLower(string(in.Equipment))),
		MediaKey:  in.MediaKey,
	}, nil
}
