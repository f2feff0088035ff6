package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"goalspace-backend/pkg/logger"
	"goalspace-backend/pkg/middleware"
	"goalspace-backend/pkg/models"
	"goalspace-backend/pkg/store"
	"goalspace-backend/pkg/utils"
)

// DocumentsHandler serves a space's knowledge-base documents.
type DocumentsHandler struct {
	stores *store.Manager
	log    *logger.Logger
}

func NewDocumentsHandler(stores *store.Manager, log *logger.Logger) *DocumentsHandler {
	return &DocumentsHandler{stores: stores, log: log}
}

func (h *DocumentsHandler) userSpace(w http.ResponseWriter, r *http.Request) (*store.Store, string, bool) {
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

// ListDocuments returns the locally known documents for a space.
func (h *DocumentsHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	s, spaceID, ok := h.userSpace(w, r)
	if !ok {
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"documents": s.Documents(spaceID),
	})
}

type createDocumentRequest struct {
	Title    string                 `json:"title"`
	Content  string                 `json:"content"`
	Type     string                 `json:"type"`
	Tags     []string               `json:"tags"`
	Metadata map[string]interface{} `json:"metadata"`
}

// CreateDocument writes a document through to the remote store before
// it becomes visible locally. A remote failure changes nothing.
func (h *DocumentsHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	s, spaceID, ok := h.userSpace(w, r)
	if !ok {
		return
	}

	var req createDocumentRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		utils.WriteValidationErrorResponse(w, "Title is required", "")
		return
	}
	if !models.ValidDocumentType(req.Type) {
		utils.WriteValidationErrorResponse(w, "Invalid document type", req.Type)
		return
	}

	doc, err := s.AddDocument(spaceID, models.Document{
		Title:    req.Title,
		Content:  req.Content,
		Type:     req.Type,
		Tags:     req.Tags,
		Metadata: req.Metadata,
	})
	if err != nil {
		h.log.Error("document write-through failed", "space_id", spaceID, "error", err)
		utils.WriteBadGatewayResponse(w, "Failed to save document")
		return
	}

	utils.WriteCreatedResponse(w, doc)
}

// LoadDocuments refreshes a space's document list from the remote.
// Failures are reported so the client can offer a retry.
func (h *DocumentsHandler) LoadDocuments(w http.ResponseWriter, r *http.Request) {
	s, spaceID, ok := h.userSpace(w, r)
	if !ok {
		return
	}

	if err := s.LoadDocuments(spaceID); err != nil {
		h.log.Warn("document load failed", "space_id", spaceID, "error", err)
		utils.WriteBadGatewayResponse(w, "Failed to load documents")
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"documents": s.Documents(spaceID),
	})
}
