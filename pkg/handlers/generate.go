package handlers

import (
	"net/http"

	"goalspace-backend/pkg/ai"
	"goalspace-backend/pkg/logger"
	"goalspace-backend/pkg/middleware"
	"goalspace-backend/pkg/models"
	"goalspace-backend/pkg/store"
	"goalspace-backend/pkg/utils"
)

// GenerateHandler is the gateway endpoint for mentor-personalized
// content generation.
type GenerateHandler struct {
	stores    *store.Manager
	generator ai.Generator
	log       *logger.Logger
}

func NewGenerateHandler(stores *store.Manager, generator ai.Generator, log *logger.Logger) *GenerateHandler {
	return &GenerateHandler{stores: stores, generator: generator, log: log}
}

type generateRequest struct {
	UseCase string `json:"useCase"`
	Model   string `json:"model"`
	SpaceID string `json:"spaceId"`
	Message string `json:"message,omitempty"`
}

type generateResponse struct {
	Content string `json:"content"`
}

// Generate produces content for a space. The result is returned to the
// caller; storing it on the space is a separate, explicit mutation.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	var req generateRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if !models.ValidUseCase(req.UseCase) {
		utils.WriteValidationErrorResponse(w, "Invalid use case", req.UseCase)
		return
	}
	model := req.Model
	if model == "" {
		model = models.ModelOpenAI
	}
	if !models.ValidModel(model) {
		utils.WriteValidationErrorResponse(w, "Unsupported model", model)
		return
	}

	s := h.stores.Get(user.ID)
	space, ok := s.Space(req.SpaceID)
	if !ok {
		utils.WriteNotFoundResponse(w, "Space not found")
		return
	}

	content, err := h.generator.Generate(r.Context(), models.GenerationRequest{
		UseCase: req.UseCase,
		Model:   model,
		Space:   space,
		Message: req.Message,
		History: s.Messages(req.SpaceID),
	})
	if err != nil {
		h.log.Error("generation failed",
			"user_id", user.ID, "use_case", req.UseCase, "error", err)
		utils.WriteBadGatewayResponse(w, "Generation failed")
		return
	}

	utils.WriteSuccessResponse(w, generateResponse{Content: content})
}
