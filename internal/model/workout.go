package model

import (
	"time"
)

type Workout struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Title     string    `db:"title" json:"title"`
	Reps      int       `db:"reps" json:"reps"`
	Load      int       `db:"load" json:"load"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
