package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/technix/fittrack/internal/model"
)

type ContactRepository interface {
	Create(message *model.ContactMessage) error
	All() ([]model.ContactMessage, error)
}

type contactRepository struct {
	db *sqlx.DB
}

func NewContactRepository(db *sqlx.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(message *model.ContactMessage) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO contact_messages (id, name, email, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(query,
		message.ID,
		message.Name,
		message.Email,
		message.Message,
		message.CreatedAt,
	)
	return err
}

func (r *contactRepository) All() ([]model.ContactMessage, error) {
	messages := []model.ContactMessage{}
	query := `SELECT * FROM contact_messages ORDER BY created_at DESC`

	err := r.db.Select(&messages, query)
	return messages, err
}
