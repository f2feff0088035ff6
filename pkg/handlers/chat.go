package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"goalspace-backend/pkg/ai"
	"goalspace-backend/pkg/logger"
	"goalspace-backend/pkg/middleware"
	"goalspace-backend/pkg/models"
	"goalspace-backend/pkg/store"
	"goalspace-backend/pkg/utils"
)

// ChatHandler serves per-space mentor conversations. Transcripts live
// in the session store and its cache only.
type ChatHandler struct {
	stores    *store.Manager
	generator ai.Generator
	log       *logger.Logger
}

func NewChatHandler(stores *store.Manager, generator ai.Generator, log *logger.Logger) *ChatHandler {
	return &ChatHandler{stores: stores, generator: generator, log: log}
}

func (h *ChatHandler) userSpace(w http.ResponseWriter, r *http.Request) (*store.Store, string, bool) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return nil, "", false
	}

	spaceID := chi.URLParam(r, "spaceID")
	s := h.stores.Get(user.ID)
	if _, ok := s.Space(spaceID); !ok {
		utils.WriteNotFoundResponse(w, "Space not found")
		return nil, "", false
	}
	return s, spaceID, true
}

// GetMessages returns the transcript for a space.
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	s, spaceID, ok := h.userSpace(w, r)
	if !ok {
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"messages": s.Messages(spaceID),
	})
}

type sendMessageRequest struct {
	Message string `json:"message"`
	Model   string `json:"model"`
}

// SendMessage appends the user's message, asks the mentor for a reply
// and appends that too. The user message survives a generation failure
// so the client can retry.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	s, spaceID, ok := h.userSpace(w, r)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		utils.WriteValidationErrorResponse(w, "Message is required", "")
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

	history := s.Messages(spaceID)
	userMsg := s.AddMessage(spaceID, models.RoleUser, req.Message)

	space, _ := s.Space(spaceID)
	reply, err := h.generator.Generate(r.Context(), models.GenerationRequest{
		UseCase: models.UseCaseChat,
		Model:   model,
		Space:   space,
		Message: req.Message,
		History: history,
	})
	if err != nil {
		h.log.Error("chat generation failed", "space_id", spaceID, "error", err)
		utils.WriteBadGatewayResponse(w, "Mentor is unavailable right now")
		return
	}

	assistantMsg := s.AddMessage(spaceID, models.RoleAssistant, reply)
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"messages": []models.ChatMessage{userMsg, assistantMsg},
	})
}

// ClearChat drops the transcript for a space.
func (h *ChatHandler) ClearChat(w http.ResponseWriter, r *http.Request) {
	s, spaceID, ok := h.userSpace(w, r)
	if !ok {
		return
	}

	s.ClearChat(spaceID)
	utils.WriteSuccessResponse(w, map[string]string{"status": "cleared"})
}
