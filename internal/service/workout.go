package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/technix/fittrack/internal/model"
	"github.com/technix/fittrack/internal/repository"
)

var (
	ErrWorkoutNotFound = errors.New("workout not found")
	// ErrWorkoutForbidden is returned when a user touches a workout that
	// belongs to someone else. Admin operations bypass the owner check.
	ErrWorkoutForbidden = errors.New("workout belongs to another user")
)

// WorkoutUpdate is a partial workout update. Nil fields are left untouched.
type WorkoutUpdate struct {
	Title *string
	Reps  *int
	Load  *int
}

type WorkoutService struct {
	workoutRepository repository.WorkoutRepository
}

func NewWorkoutService(workoutRepository repository.WorkoutRepository) *WorkoutService {
	return &WorkoutService{workoutRepository: workoutRepository}
}

func (s *WorkoutService) Create(userID, title string, reps, load int) (*model.Workout, error) {
	title = strings.TrimSpace(title)

	missing := []string{}
	if title == "" {
		missing = append(missing, "title")
	}
	if reps <= 0 {
		missing = append(missing, "reps")
	}
	if load < 0 {
		missing = append(missing, "load")
	}
	if len(missing) > 0 {
		return nil, NewValidationError("please fill in all the fields", missing...)
	}

	workout := &model.Workout{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Reps:      reps,
		Load:      load,
		CreatedAt: time.Now(),
	}

	err := s.workoutRepository.Create(workout)
	if err != nil {
		return nil, fmt.Errorf("failed to create workout: %w", err)
	}

	slog.Info("workout created", "workout_id", workout.ID, "user_id", userID)
	return workout, nil
}

func (s *WorkoutService) ByUser(userID string) ([]model.Workout, error) {
	return s.workoutRepository.ByUser(userID)
}

func (s *WorkoutService) All() ([]model.Workout, error) {
	return s.workoutRepository.All()
}

func (s *WorkoutService) Get(id, userID string) (*model.Workout, error) {
	workout, err := s.workoutRepository.ByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrWorkoutNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("failed to get workout: %w", err)
	}
	if workout.UserID != userID {
		return nil, ErrWorkoutForbidden
	}
	return workout, nil
}

func (s *WorkoutService) Update(id, userID string, update WorkoutUpdate, adminScope bool) (*model.Workout, error) {
	workout, err := s.workoutRepository.ByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrWorkoutNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("failed to get workout: %w", err)
	}
	if !adminScope && workout.UserID != userID {
		return nil, ErrWorkoutForbidden
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, NewValidationError("title is required", "title")
		}
		workout.Title = title
	}
	if update.Reps != nil {
		if *update.Reps <= 0 {
			return nil, NewValidationError("reps must be positive", "reps")
		}
		workout.Reps = *update.Reps
	}
	if update.Load != nil {
		if *update.Load < 0 {
			return nil, NewValidationError("load cannot be negative", "load")
		}
		workout.Load = *update.Load
	}

	err = s.workoutRepository.Update(workout)
	if err != nil {
		return nil, fmt.Errorf("failed to update workout: %w", err)
	}

	return workout, nil
}

func (s *WorkoutService) Delete(id, userID string, adminScope bool) (*model.Workout, error) {
	workout, err := s.workoutRepository.ByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrWorkoutNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("failed to get workout: %w", err)
	}
	if !adminScope && workout.UserID != userID {
		return nil, ErrWorkoutForbidden
	}

	err = s.workoutRepository.Delete(id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete workout: %w", err)
	}

	slog.Info("workout deleted", "workout_id", id)
	return workout, nil
}
