package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/technix/fittrack/internal/repository"
)

func newTestWorkoutService(t *testing.T) *WorkoutService {
	t.Helper()
	return NewWorkoutService(repository.NewWorkoutRepository(newTestDB(t)))
}

func TestWorkoutCreateValidation(t *testing.T) {
	workoutService := newTestWorkoutService(t)

	_, err := workoutService.Create("user-1", "", 0, -5)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.ElementsMatch(t, []string{"title", "reps", "load"}, validationErr.Fields)

	workout, err := workoutService.Create("user-1", "Bench Press", 10, 45)
	require.NoError(t, err)
	require.Equal(t, "Bench Press", workout.Title)
	require.Equal(t, "user-1", workout.UserID)
}

func TestWorkoutOwnerScoping(t *testing.T) {
	workoutService := newTestWorkoutService(t)

	workout, err := workoutService.Create("alice", "Deadlift", 5, 120)
	require.NoError(t, err)

	_, err = workoutService.Get(workout.ID, "bob")
	require.ErrorIs(t, err, ErrWorkoutForbidden)

	got, err := workoutService.Get(workout.ID, "alice")
	require.NoError(t, err)
	require.Equal(t, workout.ID, got.ID)

	_, err = workoutService.Delete(workout.ID, "bob", false)
	require.ErrorIs(t, err, ErrWorkoutForbidden)

	// Admin scope bypasses the owner check.
	_, err = workoutService.Delete(workout.ID, "bob", true)
	require.NoError(t, err)

	_, err = workoutService.Get(workout.ID, "alice")
	require.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestWorkoutPartialUpdate(t *testing.T) {
	workoutService := newTestWorkoutService(t)

	workout, err := workoutService.Create("alice", "Squat", 8, 100)
	require.NoError(t, err)

	reps := 12
	updated, err := workoutService.Update(workout.ID, "alice", WorkoutUpdate{Reps: &reps}, false)
	require.NoError(t, err)
	require.Equal(t, 12, updated.Reps)
	require.Equal(t, "Squat", updated.Title)
	require.Equal(t, 100, updated.Load)

	bad := -1
	_, err = workoutService.Update(workout.ID, "alice", WorkoutUpdate{Load: &bad}, false)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}
