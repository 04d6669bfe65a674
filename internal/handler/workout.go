package handler

import (
	"net/http"

	"github.com/technix/fittrack/internal/ctxkeys"
	"github.com/technix/fittrack/internal/model"
	"github.com/technix/fittrack/internal/service"
)

type workoutHandler struct {
	workoutService      *service.WorkoutService
	notificationService *service.NotificationService
}

func NewWorkoutHandler(workoutService *service.WorkoutService, notificationService *service.NotificationService) *workoutHandler {
	return &workoutHandler{
		workoutService:      workoutService,
		notificationService: notificationService,
	}
}

type workoutBody struct {
	Title *string `json:"title"`
	Reps  *int    `json:"reps"`
	Load  *int    `json:"load"`
}

func (h *workoutHandler) List(w http.ResponseWriter, r *http.Request) {
	principal := ctxkeys.Principal(r.Context())

	workouts, err := h.workoutService.ByUser(principal.UserID)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"workouts": workouts,
	})
}

func (h *workoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal := ctxkeys.Principal(r.Context())

	workout, err := h.workoutService.Get(r.PathValue("id"), principal.UserID)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"workout": workout,
	})
}

func (h *workoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal := ctxkeys.Principal(r.Context())

	var body workoutBody
	err := decodeJSON(r, &body)
	if err != nil {
		respondError(w, err)
		return
	}

	title, reps, load := "", 0, 0
	if body.Title != nil {
		title = *body.Title
	}
	if body.Reps != nil {
		reps = *body.Reps
	}
	if body.Load != nil {
		load = *body.Load
	}

	workout, err := h.workoutService.Create(principal.UserID, title, reps, load)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"workout": workout,
	})

	h.notificationService.Record(principal.UserID, "Workout Added", "New workout added: "+workout.Title, model.NotificationTypeAdd)
}

func (h *workoutHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal := ctxkeys.Principal(r.Context())

	var body workoutBody
	err := decodeJSON(r, &body)
	if err != nil {
		respondError(w, err)
		return
	}

	workout, err := h.workoutService.Update(r.PathValue("id"), principal.UserID, service.WorkoutUpdate{
		Title: body.Title,
		Reps:  body.Reps,
		Load:  body.Load,
	}, false)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"workout": workout,
	})
}

func (h *workoutHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := ctxkeys.Principal(r.Context())

	workout, err := h.workoutService.Delete(r.PathValue("id"), principal.UserID, false)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"workout": workout,
	})
}
