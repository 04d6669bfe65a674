package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ErrPlanUnavailable is returned when the plan generator dependency is not
// configured or fails. Surfaced as a generic dependency failure.
var ErrPlanUnavailable = errors.New("workout plan generation unavailable")

// PlanService proxies workout-plan generation to the OpenAI API.
type PlanService struct {
	client  *openai.Client
	enabled bool
}

func NewPlanService(apiKey string) *PlanService {
	if apiKey == "" {
		return &PlanService{}
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &PlanService{client: &client, enabled: true}
}

func (s *PlanService) Enabled() bool {
	return s.enabled
}

// GeneratePlan produces a structured workout plan for the given muscle group
// and difficulty level.
func (s *PlanService) GeneratePlan(ctx context.Context, muscleGroup, difficulty string) (string, error) {
	muscleGroup = strings.TrimSpace(muscleGroup)
	difficulty = strings.TrimSpace(difficulty)

	missing := []string{}
	if muscleGroup == "" {
		missing = append(missing, "muscleGroup")
	}
	if difficulty == "" {
		missing = append(missing, "difficulty")
	}
	if len(missing) > 0 {
		return "", NewValidationError("muscle group and difficulty are required", missing...)
	}

	if !s.enabled {
		return "", ErrPlanUnavailable
	}

	completion, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(planPrompt(muscleGroup, difficulty)),
		},
		Model: openai.ChatModelGPT4oMini,
	})
	if err != nil {
		slog.Error("workout plan generation failed", "error", err, "muscle_group", muscleGroup)
		return "", fmt.Errorf("%w: %v", ErrPlanUnavailable, err)
	}

	if len(completion.Choices) == 0 {
		return "", ErrPlanUnavailable
	}

	return completion.Choices[0].Message.Content, nil
}

func planPrompt(muscleGroup, difficulty string) string {
	return fmt.Sprintf(`Create a detailed, structured workout plan with the following specifications:
- Muscle group: %s
- Difficulty level: %s

Provide the plan in this exact format:

## Title
%s workout, %s level

## Warm-up (5-10 minutes)
List 3-4 specific warm-up exercises targeting the muscle group, with duration or reps for each.

## Main Workout
For each of 5-7 exercises:
1. [Exercise Name]
   Sets: [number]
   Reps: [number]
   Weight: [appropriate weight range in kg based on difficulty]
   Rest: [seconds between sets]
   Technique tips: [1-2 specific form cues]

## Cool-down (5-10 minutes)
List 2-3 specific stretches for the targeted muscles, with duration for each.

## Additional Notes
Include 3-4 specific tips relevant to this muscle group, progression advice and safety precautions.

Be specific with all numbers (reps, sets, weights, rest times) and keep weights realistic for the difficulty level.`,
		muscleGroup, difficulty, muscleGroup, difficulty)
}
