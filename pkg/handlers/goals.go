package handlers

import (
	"net/http"
	"strings"

	"goalspace-backend/pkg/logger"
	"goalspace-backend/pkg/middleware"
	"goalspace-backend/pkg/models"
	"goalspace-backend/pkg/store"
	"goalspace-backend/pkg/utils"
)

// GoalsHandler serves goal-level reads and the sync trigger.
type GoalsHandler struct {
	stores *store.Manager
	log    *logger.Logger
}

func NewGoalsHandler(stores *store.Manager, log *logger.Logger) *GoalsHandler {
	return &GoalsHandler{stores: stores, log: log}
}

// ListGoals returns the user's goals and spaces, hydrating the store
// from the remote on first touch.
func (h *GoalsHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	s := h.stores.Get(user.ID)
	s.EnsureLoaded()

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"current_goal": s.CurrentGoal(),
		"goals":        s.Goals(),
		"spaces":       s.Spaces(),
		"todo_states":  s.TodoStates(),
		"hydrated":     s.Hydrated(),
	})
}

// SyncGoals forces a reconciliation pass against the remote store.
func (h *GoalsHandler) SyncGoals(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	s := h.stores.Get(user.ID)
	// Sync failures keep the prior state; the response reflects
	// whatever the store holds afterwards.
	if err := s.LoadUserData(); err != nil {
		h.log.Warn("sync failed", "user_id", user.ID, "error", err)
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"goals":    s.Goals(),
		"spaces":   s.Spaces(),
		"hydrated": s.Hydrated(),
	})
}

type createGoalRequest struct {
	Spaces []models.Space `json:"spaces"`
}

// CreateGoal accepts a generated space set and installs it as the
// current goal, replacing all local space state.
func (h *GoalsHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	var req createGoalRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if len(req.Spaces) == 0 {
		utils.WriteValidationErrorResponse(w, "At least one space is required", "")
		return
	}
	for _, sp := range req.Spaces {
		if strings.TrimSpace(sp.Title) == "" {
			utils.WriteValidationErrorResponse(w, "Every space needs a title", "")
			return
		}
	}

	s := h.stores.Get(user.ID)
	goal, err := s.ReplaceSpaces(req.Spaces)
	if err != nil {
		h.log.Error("goal write-through failed", "user_id", user.ID, "error", err)
		utils.WriteBadGatewayResponse(w, "Failed to save goal")
		return
	}

	h.log.Info("goal created", "user_id", user.ID, "goal_id", goal.ID, "spaces", len(goal.Spaces))
	utils.WriteCreatedResponse(w, map[string]interface{}{
		"goal":   goal,
		"spaces": s.Spaces(),
	})
}

type setCurrentGoalRequest struct {
	Title string `json:"title"`
}

// SetCurrentGoal records the goal title the user is working toward.
func (h *GoalsHandler) SetCurrentGoal(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	var req setCurrentGoalRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	s := h.stores.Get(user.ID)
	s.SetCurrentGoal(req.Title)

	utils.WriteSuccessResponse(w, map[string]string{"current_goal": s.CurrentGoal()})
}
