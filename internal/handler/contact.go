package handler

import (
	"net/http"

	"github.com/technix/fittrack/internal/service"
)

type contactHandler struct {
	contactService *service.ContactService
}

func NewContactHandler(contactService *service.ContactService) *contactHandler {
	return &contactHandler{contactService: contactService}
}

func (h *contactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	err := decodeJSON(r, &body)
	if err != nil {
		respondError(w, err)
		return
	}

	message, err := h.contactService.Submit(body.Name, body.Email, body.Message)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"contact": message,
	})
}

func (h *contactHandler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.contactService.All()
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"messages": messages,
	})
}
