package handler

import (
	"net/http"

	"github.com/technix/fittrack/internal/ctxkeys"
	"github.com/technix/fittrack/internal/model"
	"github.com/technix/fittrack/internal/service"
)

type adminHandler struct {
	userService         *service.UserService
	workoutService      *service.WorkoutService
	notificationService *service.NotificationService
}

func NewAdminHandler(userService *service.UserService, workoutService *service.WorkoutService, notificationService *service.NotificationService) *adminHandler {
	return &adminHandler{
		userService:         userService,
		workoutService:      workoutService,
		notificationService: notificationService,
	}
}

func (h *adminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.All()
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"users":   users,
	})
}

func (h *adminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Role     string `json:"role"`
	}
	err := decodeJSON(r, &body)
	if err != nil {
		respondError(w, err)
		return
	}

	user, err := h.userService.CreateUserAsAdmin(body.Email, body.Password, body.Name, body.Role)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, userEnvelope{
		Success: true,
		Message: "User created successfully",
		User:    authUser{User: user},
	})
}

func (h *adminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	principal := ctxkeys.Principal(r.Context())

	var body struct {
		Name           string `json:"name"`
		Email          string `json:"email"`
		Password       string `json:"password"`
		ProfilePicture string `json:"profilePicture"`
		Role           string `json:"role"`
	}
	err := decodeJSON(r, &body)
	if err != nil {
		respondError(w, err)
		return
	}

	user, err := h.userService.UpdateUserAsAdmin(r.PathValue("id"), service.ProfileUpdate{
		Name:           body.Name,
		Email:          body.Email,
		Password:       body.Password,
		ProfilePicture: body.ProfilePicture,
		Role:           body.Role,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userEnvelope{
		Success: true,
		Message: "User updated successfully",
		User:    authUser{User: user},
	})

	h.notificationService.Record(principal.UserID, "User Updated by Admin", "User "+user.Email+" was updated by admin", model.NotificationTypeUpdate)
}

func (h *adminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	principal := ctxkeys.Principal(r.Context())

	id := r.PathValue("id")
	user, err := h.userService.ByID(id)
	if err != nil {
		respondError(w, err)
		return
	}

	err = h.userService.Delete(id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "User deleted successfully")

	h.notificationService.Record(principal.UserID, "User Deleted", "User "+user.Email+" was deleted", model.NotificationTypeUpdate)
}

func (h *adminHandler) ListWorkouts(w http.ResponseWriter, r *http.Request) {
	workouts, err := h.workoutService.All()
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"workouts": workouts,
	})
}

func (h *adminHandler) CreateWorkout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
		Title  string `json:"title"`
		Reps   int    `json:"reps"`
		Load   int    `json:"load"`
	}
	err := decodeJSON(r, &body)
	if err != nil {
		respondError(w, err)
		return
	}

	if body.UserID == "" {
		respondError(w, service.NewValidationError("userId is required", "userId"))
		return
	}

	workout, err := h.workoutService.Create(body.UserID, body.Title, body.Reps, body.Load)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"workout": workout,
	})
}

func (h *adminHandler) UpdateWorkout(w http.ResponseWriter, r *http.Request) {
	var body workoutBody
	err := decodeJSON(r, &body)
	if err != nil {
		respondError(w, err)
		return
	}

	workout, err := h.workoutService.Update(r.PathValue("id"), "", service.WorkoutUpdate{
		Title: body.Title,
		Reps:  body.Reps,
		Load:  body.Load,
	}, true)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"workout": workout,
	})
}

func (h *adminHandler) DeleteWorkout(w http.ResponseWriter, r *http.Request) {
	workout, err := h.workoutService.Delete(r.PathValue("id"), "", true)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"workout": workout,
	})
}
