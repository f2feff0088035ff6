package ai

import (
	"strings"
	"testing"

	"goalspace-backend/pkg/models"
)

func sampleSpace() models.Space {
	return models.Space{
		ID:          "s1",
		Title:       "Spanish Grammar",
		Category:    models.CategoryLearning,
		Description: "Core grammar for conversational Spanish",
		Objectives:  []string{"Master ser vs estar", "Learn past tenses"},
		Mentor: models.Mentor{
			Name:        "Professor Elena",
			Personality: "patient and encouraging",
			Expertise:   []string{"Spanish", "linguistics"},
		},
	}
}

func TestRenderPromptIncludesMentorAndSpace(t *testing.T) {
	prompt, err := RenderPrompt(models.GenerationRequest{
		UseCase: models.UseCasePlan,
		Model:   models.ModelOpenAI,
		Space:   sampleSpace(),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{"Professor Elena", "Spanish Grammar", "patient and encouraging", "- Master ser vs estar"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestRenderPromptUnknownUseCase(t *testing.T) {
	if _, err := RenderPrompt(models.GenerationRequest{UseCase: "translate"}); err == nil {
		t.Error("expected error for unknown use case")
	}
}

func TestRenderPromptDefaultsMentorName(t *testing.T) {
	space := sampleSpace()
	space.Mentor = models.Mentor{}

	prompt, err := RenderPrompt(models.GenerationRequest{
		UseCase: models.UseCaseResearch,
		Space:   space,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(prompt, "a helpful mentor") {
		t.Errorf("expected generic mentor fallback:\n%s", prompt)
	}
}

func TestRenderChatPromptIncludesHistory(t *testing.T) {
	prompt, err := RenderPrompt(models.GenerationRequest{
		UseCase: models.UseCaseChat,
		Space:   sampleSpace(),
		Message: "When do I use the subjunctive?",
		History: []models.ChatMessage{
			{Role: models.RoleUser, Content: "Hola!"},
			{Role: models.RoleAssistant, Content: "Hola, ready to practice?"},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(prompt, "Learner: Hola!") {
		t.Errorf("history missing learner turn:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Professor Elena: Hola, ready to practice?") {
		t.Errorf("history missing mentor turn:\n%s", prompt)
	}
	if !strings.Contains(prompt, "When do I use the subjunctive?") {
		t.Errorf("current message missing:\n%s", prompt)
	}
}

func TestSystemPromptPrefersMentorPrompt(t *testing.T) {
	space := sampleSpace()
	space.Mentor.SystemPrompt = "You are a strict grammarian."
	if got := SystemPrompt(space); got != "You are a strict grammarian." {
		t.Errorf("got %q", got)
	}

	space.Mentor.SystemPrompt = ""
	if got := SystemPrompt(space); !strings.Contains(got, "Professor Elena") {
		t.Errorf("derived prompt should name the mentor, got %q", got)
	}

	if got := SystemPrompt(models.Space{}); got == "" {
		t.Error("bare space still needs a system prompt")
	}
}
