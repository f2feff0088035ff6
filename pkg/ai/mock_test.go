package ai

import (
	"context"
	"strings"
	"testing"

	"goalspace-backend/pkg/models"
)

func TestMockGeneratorIsDeterministic(t *testing.T) {
	g := NewMockGenerator()
	req := models.GenerationRequest{
		UseCase: models.UseCasePlan,
		Model:   models.ModelOpenAI,
		Space:   sampleSpace(),
	}

	first, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("generate again: %v", err)
	}
	if first != second {
		t.Error("mock output must not vary between calls")
	}
}

func TestMockGeneratorCoversEveryUseCase(t *testing.T) {
	g := NewMockGenerator()
	space := sampleSpace()

	for _, useCase := range []string{
		models.UseCasePlan, models.UseCaseResearch, models.UseCaseMindmap,
		models.UseCasePodcast, models.UseCaseChat,
	} {
		out, err := g.Generate(context.Background(), models.GenerationRequest{
			UseCase: useCase,
			Model:   models.ModelAnthropic,
			Space:   space,
		})
		if err != nil {
			t.Fatalf("%s: %v", useCase, err)
		}
		if !strings.Contains(out, space.Title) {
			t.Errorf("%s output should mention the space title:\n%s", useCase, out)
		}
	}
}

func TestMockGeneratorRejectsInvalidInput(t *testing.T) {
	g := NewMockGenerator()

	if _, err := g.Generate(context.Background(), models.GenerationRequest{
		UseCase: "translate", Model: models.ModelOpenAI,
	}); err == nil {
		t.Error("expected unknown use case error")
	}
	if _, err := g.Generate(context.Background(), models.GenerationRequest{
		UseCase: models.UseCasePlan, Model: "llama",
	}); err == nil {
		t.Error("expected unsupported model error")
	}
}
