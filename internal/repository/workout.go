package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/technix/fittrack/internal/model"
)

var ErrWorkoutNotFound = errors.New("workout not found")

type WorkoutRepository interface {
	Create(workout *model.Workout) error
	ByID(id string) (*model.Workout, error)
	ByUser(userID string) ([]model.Workout, error)
	All() ([]model.Workout, error)
	Update(workout *model.Workout) error
	Delete(id string) error
}

type workoutRepository struct {
	db *sqlx.DB
}

func NewWorkoutRepository(db *sqlx.DB) WorkoutRepository {
	return &workoutRepository{db: db}
}

func (r *workoutRepository) Create(workout *model.Workout) error {
	query := `
		INSERT INTO workouts (id, user_id, title, reps, load, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(query,
		workout.ID,
		workout.UserID,
		workout.Title,
		workout.Reps,
		workout.Load,
		workout.CreatedAt,
	)
	return err
}

func (r *workoutRepository) ByID(id string) (*model.Workout, error) {
	workout := &model.Workout{}
	query := `SELECT * FROM workouts WHERE id = $1`

	err := r.db.Get(workout, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrWorkoutNotFound
	}

	return workout, err
}

func (r *workoutRepository) ByUser(userID string) ([]model.Workout, error) {
	workouts := []model.Workout{}
	query := `SELECT * FROM workouts WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&workouts, query, userID)
	return workouts, err
}

func (r *workoutRepository) All() ([]model.Workout, error) {
	workouts := []model.Workout{}
	query := `SELECT * FROM workouts ORDER BY created_at DESC`

	err := r.db.Select(&workouts, query)
	return workouts, err
}

func (r *workoutRepository) Update(workout *model.Workout) error {
	query := `UPDATE workouts SET title = $1, reps = $2, load = $3 WHERE id = $4`

	result, err := r.db.Exec(query, workout.Title, workout.Reps, workout.Load, workout.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrWorkoutNotFound
	}

	return nil
}

func (r *workoutRepository) Delete(id string) error {
	query := `DELETE FROM workouts WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrWorkoutNotFound
	}

	return nil
}
