package service

import (
	"fmt"
	"strings"

	"github.com/technix/fittrack/internal/model"
	"github.com/technix/fittrack/internal/repository"
	"github.com/technix/fittrack/internal/validation"
)

type ContactService struct {
	contactRepository repository.ContactRepository
}

func NewContactService(contactRepository repository.ContactRepository) *ContactService {
	return &ContactService{contactRepository: contactRepository}
}

func (s *ContactService) Submit(name, email, message string) (*model.ContactMessage, error) {
	name = strings.TrimSpace(name)
	message = strings.TrimSpace(message)

	missing := []string{}
	if name == "" {
		missing = append(missing, "name")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if message == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		return nil, NewValidationError("all fields are required", missing...)
	}

	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, NewValidationError(err.Error(), "email")
	}

	contact := &model.ContactMessage{
		Name:    name,
		Email:   email,
		Message: message,
	}

	err = s.contactRepository.Create(contact)
	if err != nil {
		return nil, fmt.Errorf("failed to save contact message: %w", err)
	}

	return contact, nil
}

func (s *ContactService) All() ([]model.ContactMessage, error) {
	return s.contactRepository.All()
}
