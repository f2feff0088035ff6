package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"goalspace-backend/pkg/logger"
	"goalspace-backend/pkg/middleware"
	"goalspace-backend/pkg/store"
	"goalspace-backend/pkg/utils"
)

// SpacesHandler serves per-space mutations: todos, collapse state and
// generated artifacts.
type SpacesHandler struct {
	stores *store.Manager
	log    *logger.Logger
}

func NewSpacesHandler(stores *store.Manager, log *logger.Logger) *SpacesHandler {
	return &SpacesHandler{stores: stores, log: log}
}

// userSpace resolves the caller and the addressed space, or writes the
// error response and returns ok=false.
func (h *SpacesHandler) userSpace(w http.ResponseWriter, r *http.Request) (*store.Store, string, bool) {
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

// ToggleTodo flips one todo item and returns the recomputed progress.
func (h *SpacesHandler) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	s, spaceID, ok := h.userSpace(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		utils.WriteBadRequestResponse(w, "Invalid todo index")
		return
	}

	s.ToggleTodo(spaceID, index)
	h.writeSpace(w, s, spaceID)
}

type updateTodosRequest struct {
	Todos []string `json:"todos"`
}

// UpdateTodos replaces a space's todo list, keeping completion flags
// for items that survive the resize.
func (h *SpacesHandler) UpdateTodos(w http.ResponseWriter, r *http.Request) {
	s, spaceID, ok := h.userSpace(w, r)
	if !ok {
		return
	}

	var req updateTodosRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	s.UpdateTodoList(spaceID, req.Todos)
	h.writeSpace(w, s, spaceID)
}

// ToggleCollapse flips the space's sidebar collapse flag.
func (h *SpacesHandler) ToggleCollapse(w http.ResponseWriter, r *http.Request) {
	s, spaceID, ok := h.userSpace(w, r)
	if !ok {
		return
	}

	s.ToggleSpaceCollapse(spaceID)
	h.writeSpace(w, s, spaceID)
}

type setArtifactRequest struct {
	Content string `json:"content"`
}

// SetPlan stores generated plan markdown on the space.
func (h *SpacesHandler) SetPlan(w http.ResponseWriter, r *http.Request) {
	h.setArtifact(w, r, func(s *store.Store, spaceID, content string) {
		s.SetPlan(spaceID, content)
	})
}

// SetResearch stores generated research markdown on the space.
func (h *SpacesHandler) SetResearch(w http.ResponseWriter, r *http.Request) {
	h.setArtifact(w, r, func(s *store.Store, spaceID, content string) {
		s.SetResearch(spaceID, content)
	})
}

// SetContent stores generated long-form content on the space.
func (h *SpacesHandler) SetContent(w http.ResponseWriter, r *http.Request) {
	h.setArtifact(w, r, func(s *store.Store, spaceID, content string) {
		s.SetContent(spaceID, content)
	})
}

func (h *SpacesHandler) setArtifact(w http.ResponseWriter, r *http.Request, apply func(*store.Store, string, string)) {
	s, spaceID, ok := h.userSpace(w, r)
	if !ok {
		return
	}

	var req setArtifactRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	apply(s, spaceID, req.Content)
	h.writeSpace(w, s, spaceID)
}

func (h *SpacesHandler) writeSpace(w http.ResponseWriter, s *store.Store, spaceID string) {
	sp, ok := s.Space(spaceID)
	if !ok {
		utils.WriteNotFoundResponse(w, "Space not found")
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"space":       sp,
		"todo_states": s.TodoStates()[spaceID],
		"goals":       s.Goals(),
	})
}
