package handler

import (
	"net/http"

	"github.com/technix/fittrack/internal/service"
)

type planHandler struct {
	planService *service.PlanService
}

func NewPlanHandler(planService *service.PlanService) *planHandler {
	return &planHandler{planService: planService}
}

func (h *planHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MuscleGroup string `json:"muscleGroup"`
		Difficulty  string `json:"difficulty"`
	}
	err := decodeJSON(r, &body)
	if err != nil {
		respondError(w, err)
		return
	}

	plan, err := h.planService.GeneratePlan(r.Context(), body.MuscleGroup, body.Difficulty)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"workoutPlan": plan,
	})
}
