package ai

import (
	"context"
	"fmt"

	"goalspace-backend/pkg/models"
)

// MockGenerator returns deterministic fixture content instead of
// calling any provider. Enabled by AI_USE_MOCK for development and
// cost avoidance; it is not a failure-recovery fallback.
type MockGenerator struct{}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate produces canned content keyed by use case. Output is a pure
// function of the request, so repeated calls are identical.
func (g *MockGenerator) Generate(_ context.Context, req models.GenerationRequest) (string, error) {
	if !models.ValidUseCase(req.UseCase) {
		return "", fmt.Errorf("unknown use case: %s", req.UseCase)
	}
	if !models.ValidModel(req.Model) {
		return "", fmt.Errorf("unsupported model: %s", req.Model)
	}

	mentor := req.Space.Mentor.Name
	if mentor == "" {
		mentor = "Your mentor"
	}
	title := req.Space.Title
	if title == "" {
		title = "this space"
	}

	switch req.UseCase {
	case models.UseCasePlan:
		return fmt.Sprintf(`# Learning Plan: %s

%s here. Work through these milestones in order:

1. **Foundations** — review the prerequisites and set up your environment.
2. **Core concepts** — study the main objectives one at a time.
3. **Practice** — apply each concept in a small exercise before moving on.
4. **Review** — revisit anything that felt shaky and consolidate notes.

Check items off as you go; consistency beats intensity.`, title, mentor), nil

	case models.UseCaseResearch:
		return fmt.Sprintf(`# Research Notes: %s

Key concepts to understand first, a short list of dependable resources,
and the pitfalls %s sees learners hit most often:

- Start with the official documentation and one structured course.
- Build something small before reading more theory.
- The most common mistake is skipping fundamentals to chase advanced topics.`, title, mentor), nil

	case models.UseCaseMindmap:
		return fmt.Sprintf(`%s
  Fundamentals
    Core vocabulary
    Mental models
  Practice
    Exercises
    Projects
  Mastery
    Teaching others
    Advanced topics`, title), nil

	case models.UseCasePodcast:
		return fmt.Sprintf(`[Intro music]

%s: Welcome back! Today we're diving into %s. By the end of this episode
you'll know exactly where to start, what to focus on, and the one mistake
almost everyone makes. Let's get into it.

[Outro music]`, mentor, title), nil

	case models.UseCaseChat:
		return fmt.Sprintf("%s: That's a great question about %s. Let's break it down step by step.", mentor, title), nil
	}

	// Unreachable: ValidUseCase covers the switch.
	return "", fmt.Errorf("unknown use case: %s", req.UseCase)
}
