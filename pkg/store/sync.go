package store

import (
	"strconv"

	"goalspace-backend/pkg/models"
)

// LoadUserData reconciles the store with the remote persistence
// service: it fetches the user's goals, then each goal's spaces, and
// atomically overwrites the store's goals and spaces collections.
//
// Not-logged-in is a normal state, not an error. A failure anywhere in
// the fetch leaves the prior state completely untouched and is logged,
// never propagated: stale data beats a broken session. Two concurrent
// calls are allowed and converge last-writer-wins.
func (s *Store) LoadUserData() error {
	if s.userID == "" {
		return nil
	}

	// All fetching happens off-lock into a staging area.
	goals, err := s.db.ListGoalsByUser(s.userID)
	if err != nil {
		s.log.Error("failed to load goals, keeping prior state", "error", err)
		return nil
	}

	staged := make(map[string]models.Space)
	for i := range goals {
		spaces, err := s.db.ListSpacesByGoal(goals[i].ID)
		if err != nil {
			s.log.Error("failed to load spaces, keeping prior state",
				"goal_id", goals[i].ID, "error", err)
			return nil
		}

		// The goal's space list is derived from the fetched rows,
		// never trusted from a cached value.
		ids := make([]string, 0, len(spaces))
		for _, sp := range spaces {
			ids = append(ids, sp.ID)
			staged[sp.ID] = sp
		}
		goals[i].Spaces = ids
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The remote schema does not persist todo lists, generated
	// artifacts or UI flags, so those survive reconciliation for
	// spaces that still exist, with todo state rebuilt to match.
	newSpaces := make(map[string]*models.Space, len(staged))
	newTodoStates := make(models.TodoState, len(staged))
	for id := range staged {
		sp := staged[id]
		if prev, ok := s.spaces[id]; ok {
			sp.TodoList = prev.TodoList
			sp.Plan = prev.Plan
			sp.Research = prev.Research
			sp.Content = prev.Content
			sp.IsCollapsed = prev.IsCollapsed
		}

		old := s.todoStates[id]
		flags := make(map[string]bool, len(sp.TodoList))
		for i := range sp.TodoList {
			key := strconv.Itoa(i)
			flags[key] = old[key]
		}
		newTodoStates[id] = flags

		// Progress is derived: where a local todo list exists its
		// preserved flags win over the fetched row value.
		if len(sp.TodoList) > 0 {
			sp.Progress = spaceProgress(len(sp.TodoList), flags)
		}

		newSpaces[id] = &sp
	}

	for i := range goals {
		values := make([]float64, 0, len(goals[i].Spaces))
		for _, id := range goals[i].Spaces {
			if sp, ok := newSpaces[id]; ok {
				values = append(values, sp.Progress)
			}
		}
		goals[i].Progress = goalProgress(values)
	}

	s.goals = goals
	s.spaces = newSpaces
	s.todoStates = newTodoStates
	s.hydrated = true
	s.persistLocked()
	return nil
}

// EnsureLoaded runs the reconciliation once per store lifetime; later
// calls are cheap no-ops unless the first load failed.
func (s *Store) EnsureLoaded() {
	if s.Hydrated() {
		return
	}
	_ = s.LoadUserData()
}

// LoadDocuments fetches all documents for one space and replaces that
// space's entry in the document map. Unlike LoadUserData the error is
// returned so the caller can offer a retry; the prior list stays
// untouched on failure.
func (s *Store) LoadDocuments(spaceID string) error {
	docs, err := s.db.ListDocumentsBySpace(spaceID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[spaceID] = docs
	s.persistLocked()
	return nil
}
