package store

import (
	"strconv"
	"sync"
	"time"

	"goalspace-backend/pkg/database"
	"goalspace-backend/pkg/logger"
	"goalspace-backend/pkg/models"

	"github.com/google/uuid"
)

// Store is the per-user session state: goals, spaces, todo completion,
// documents and chat transcripts, plus the derived progress values.
// It is the only sanctioned write path to any of those collections.
//
// All operations run under one mutex. Operations that touch the
// network (ReplaceSpaces, AddDocument, LoadUserData, LoadDocuments) do
// their I/O outside the lock and apply the result atomically, so a
// failed remote call never leaves partial state behind.
type Store struct {
	mu    sync.Mutex
	log   *logger.Logger
	db    database.DatabaseInterface
	cache *Cache

	userID      string
	currentGoal string
	hydrated    bool

	goals      []models.Goal
	spaces     map[string]*models.Space
	todoStates models.TodoState
	documents  map[string][]models.Document
	chats      map[string][]models.ChatMessage
}

// Snapshot is the whole store state as one serializable unit. The
// local durable cache persists exactly this shape under one key.
type Snapshot struct {
	CurrentGoal string                          `json:"current_goal"`
	Goals       []models.Goal                   `json:"goals"`
	Spaces      map[string]models.Space         `json:"spaces"`
	TodoStates  models.TodoState                `json:"todo_states"`
	Documents   map[string][]models.Document    `json:"documents"`
	Chats       map[string][]models.ChatMessage `json:"chats"`
}

// New creates a store for one user, seeded from the local durable
// cache when a snapshot from a previous session exists. cache may be
// nil (tests, cache open failure); the store then simply never
// persists locally.
func New(userID string, db database.DatabaseInterface, cache *Cache, log *logger.Logger) *Store {
	s := &Store{
		log:        log.With("component", "store", "user_id", userID),
		db:         db,
		cache:      cache,
		userID:     userID,
		goals:      []models.Goal{},
		spaces:     make(map[string]*models.Space),
		todoStates: make(models.TodoState),
		documents:  make(map[string][]models.Document),
		chats:      make(map[string][]models.ChatMessage),
	}

	if cache != nil {
		if snap, ok := cache.Load(userID); ok {
			s.restore(snap)
		}
	}

	return s
}

// restore applies a cached snapshot. Only called before the store is
// shared, so no locking.
func (s *Store) restore(snap Snapshot) {
	s.currentGoal = snap.CurrentGoal
	if snap.Goals != nil {
		s.goals = snap.Goals
	}
	for id, sp := range snap.Spaces {
		copied := sp
		s.spaces[id] = &copied
	}
	for id, flags := range snap.TodoStates {
		s.todoStates[id] = flags
	}
	for id, docs := range snap.Documents {
		s.documents[id] = docs
	}
	for id, msgs := range snap.Chats {
		s.chats[id] = msgs
	}
}

// spaceProgress computes completion percent from todo flags. A space
// with no todo items has progress 0, never NaN.
func spaceProgress(todoCount int, flags map[string]bool) float64 {
	if todoCount == 0 {
		return 0
	}
	completed := 0
	for i := 0; i < todoCount; i++ {
		if flags[strconv.Itoa(i)] {
			completed++
		}
	}
	return float64(completed) / float64(todoCount) * 100
}

// goalProgress is the mean of the owned spaces' progress values, 0 for
// a goal that owns none.
func goalProgress(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SetCurrentGoal records the goal title the next accepted space set
// will be attached to.
func (s *Store) SetCurrentGoal(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentGoal = title
	s.persistLocked()
}

// CurrentGoal returns the pending goal title.
func (s *Store) CurrentGoal() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentGoal
}

// ReplaceSpaces accepts a freshly generated set of spaces: one new
// goal titled after the current goal is written through to the remote
// store together with its spaces, then installed locally under the
// server-assigned IDs. Every space starts collapsed with zero progress
// and all-incomplete todo state. A remote failure is returned and
// leaves the local state untouched.
func (s *Store) ReplaceSpaces(newSpaces []models.Space) (models.Goal, error) {
	s.mu.Lock()
	title := s.currentGoal
	s.mu.Unlock()
	if title == "" {
		title = "New Goal"
	}

	// Remote inserts happen outside the lock; the remote assigns IDs
	// and timestamps.
	goal := models.Goal{
		UserID:   s.userID,
		Title:    title,
		Progress: 0,
	}
	if err := s.db.CreateGoal(&goal); err != nil {
		return models.Goal{}, err
	}

	staged := make([]models.Space, 0, len(newSpaces))
	for i := range newSpaces {
		sp := newSpaces[i]
		sp.GoalID = goal.ID
		sp.Progress = 0
		sp.IsCollapsed = true
		if sp.Objectives == nil {
			sp.Objectives = []string{}
		}
		if sp.Prerequisites == nil {
			sp.Prerequisites = []string{}
		}
		if sp.TodoList == nil {
			sp.TodoList = []string{}
		}
		if sp.OrderIndex == 0 {
			sp.OrderIndex = i
		}
		if err := s.db.CreateSpace(&sp); err != nil {
			return models.Goal{}, err
		}
		staged = append(staged, sp)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	goal.Spaces = make([]string, 0, len(staged))
	for i := range staged {
		sp := staged[i]

		flags := make(map[string]bool, len(sp.TodoList))
		for j := range sp.TodoList {
			flags[strconv.Itoa(j)] = false
		}
		s.todoStates[sp.ID] = flags

		s.spaces[sp.ID] = &sp
		goal.Spaces = append(goal.Spaces, sp.ID)
	}

	s.goals = append(s.goals, goal)
	s.persistLocked()
	return goal, nil
}

// ToggleTodo flips one todo completion flag and recomputes the
// affected space and goal progress. Unknown spaces or out-of-range
// indices are a no-op.
func (s *Store) ToggleTodo(spaceID string, todoIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.spaces[spaceID]
	if !ok || todoIndex < 0 || todoIndex >= len(sp.TodoList) {
		return
	}

	flags := s.todoStates[spaceID]
	if flags == nil {
		flags = make(map[string]bool, len(sp.TodoList))
		s.todoStates[spaceID] = flags
	}
	key := strconv.Itoa(todoIndex)
	flags[key] = !flags[key]

	s.updateSpaceProgressLocked(spaceID, spaceProgress(len(sp.TodoList), flags))
	s.persistLocked()
}

// SetTodoStates bulk-replaces todo state for every space present in
// the given map and recomputes each affected space's progress.
func (s *Store) SetTodoStates(states models.TodoState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for spaceID, flags := range states {
		if flags == nil {
			flags = map[string]bool{}
		}
		s.todoStates[spaceID] = flags
		if sp, ok := s.spaces[spaceID]; ok {
			s.updateSpaceProgressLocked(spaceID, spaceProgress(len(sp.TodoList), flags))
		}
	}
	s.persistLocked()
}

// UpdateTodoList replaces a space's todo items, rebuilding its todo
// state to match the new length while preserving completion flags for
// indices that still exist.
func (s *Store) UpdateTodoList(spaceID string, newList []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.spaces[spaceID]
	if !ok {
		return
	}
	if newList == nil {
		newList = []string{}
	}
	sp.TodoList = newList

	old := s.todoStates[spaceID]
	rebuilt := make(map[string]bool, len(newList))
	for i := range newList {
		key := strconv.Itoa(i)
		rebuilt[key] = old[key]
	}
	s.todoStates[spaceID] = rebuilt

	s.updateSpaceProgressLocked(spaceID, spaceProgress(len(newList), rebuilt))
	s.persistLocked()
}

// UpdateSpaceProgress sets a space's progress directly and recomputes
// the progress of every goal owning that space.
func (s *Store) UpdateSpaceProgress(spaceID string, progress float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.spaces[spaceID]; !ok {
		return
	}
	s.updateSpaceProgressLocked(spaceID, progress)
	s.persistLocked()
}

// updateSpaceProgressLocked is the single recomputation path: it sets
// the space progress and refreshes every owning goal's derived mean.
func (s *Store) updateSpaceProgressLocked(spaceID string, progress float64) {
	sp, ok := s.spaces[spaceID]
	if !ok {
		return
	}
	sp.Progress = progress

	for i := range s.goals {
		owns := false
		for _, id := range s.goals[i].Spaces {
			if id == spaceID {
				owns = true
				break
			}
		}
		if !owns {
			continue
		}

		values := make([]float64, 0, len(s.goals[i].Spaces))
		for _, id := range s.goals[i].Spaces {
			if owned, ok := s.spaces[id]; ok {
				values = append(values, owned.Progress)
			}
		}
		s.goals[i].Progress = goalProgress(values)
	}
}

// AddDocument writes the document through to the remote store first
// and appends it locally only after the insert succeeded. On failure
// the in-memory state is untouched and the error is returned to the
// caller.
func (s *Store) AddDocument(spaceID string, doc models.Document) (models.Document, error) {
	doc.SpaceID = spaceID
	if doc.Tags == nil {
		doc.Tags = []string{}
	}

	// Remote insert outside the lock; it assigns ID and timestamps.
	if err := s.db.CreateDocument(&doc); err != nil {
		return models.Document{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[spaceID] = append(s.documents[spaceID], doc)
	s.persistLocked()
	return doc, nil
}

// Documents returns the loaded documents for a space, never nil.
func (s *Store) Documents(spaceID string) []models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.documents[spaceID]
	out := make([]models.Document, len(docs))
	copy(out, docs)
	return out
}

// AddMessage appends a chat message with a locally-generated ID and
// the current timestamp.
func (s *Store) AddMessage(spaceID, role, content string) models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := models.ChatMessage{
		ID:        uuid.New().String(),
		SpaceID:   spaceID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	s.chats[spaceID] = append(s.chats[spaceID], msg)
	s.persistLocked()
	return msg
}

// Messages returns the chat transcript for a space, never nil.
func (s *Store) Messages(spaceID string) []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.chats[spaceID]
	out := make([]models.ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}

// ClearChat drops a space's entire transcript.
func (s *Store) ClearChat(spaceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chats, spaceID)
	s.persistLocked()
}

// SetPlan stores generated plan text on a space.
func (s *Store) SetPlan(spaceID, text string) {
	s.setSpaceText(spaceID, func(sp *models.Space) { sp.Plan = text })
}

// SetResearch stores generated research text on a space.
func (s *Store) SetResearch(spaceID, text string) {
	s.setSpaceText(spaceID, func(sp *models.Space) { sp.Research = text })
}

// SetContent stores a space's free-form content blob.
func (s *Store) SetContent(spaceID, text string) {
	s.setSpaceText(spaceID, func(sp *models.Space) { sp.Content = text })
}

func (s *Store) setSpaceText(spaceID string, apply func(*models.Space)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.spaces[spaceID]
	if !ok {
		return
	}
	apply(sp)
	s.persistLocked()
}

// ToggleSpaceCollapse flips the UI collapse flag. No progress
// implication.
func (s *Store) ToggleSpaceCollapse(spaceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.spaces[spaceID]
	if !ok {
		return
	}
	sp.IsCollapsed = !sp.IsCollapsed
	s.persistLocked()
}

// Reset clears all session state, leaving the store as if freshly
// constructed. Invoked on sign-out.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentGoal = ""
	s.hydrated = false
	s.goals = []models.Goal{}
	s.spaces = make(map[string]*models.Space)
	s.todoStates = make(models.TodoState)
	s.documents = make(map[string][]models.Document)
	s.chats = make(map[string][]models.ChatMessage)
	s.persistLocked()
}

// Goals returns a copy of the goal list.
func (s *Store) Goals() []models.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Goal, len(s.goals))
	copy(out, s.goals)
	return out
}

// Space returns one space by ID.
func (s *Store) Space(spaceID string) (models.Space, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.spaces[spaceID]
	if !ok {
		return models.Space{}, false
	}
	return *sp, true
}

// Spaces returns every space in goal order, orphans last.
func (s *Store) Spaces() []models.Space {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Space, 0, len(s.spaces))
	seen := make(map[string]bool, len(s.spaces))
	for _, g := range s.goals {
		for _, id := range g.Spaces {
			if sp, ok := s.spaces[id]; ok && !seen[id] {
				out = append(out, *sp)
				seen[id] = true
			}
		}
	}
	for id, sp := range s.spaces {
		if !seen[id] {
			out = append(out, *sp)
		}
	}
	return out
}

// TodoStates returns a copy of the completion-flag map.
func (s *Store) TodoStates() models.TodoState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(models.TodoState, len(s.todoStates))
	for id, flags := range s.todoStates {
		copied := make(map[string]bool, len(flags))
		for k, v := range flags {
			copied[k] = v
		}
		out[id] = copied
	}
	return out
}

// Hydrated reports whether remote state has been loaded into this
// store at least once.
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// Snapshot returns the whole store state as one unit.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		CurrentGoal: s.currentGoal,
		Goals:       make([]models.Goal, len(s.goals)),
		Spaces:      make(map[string]models.Space, len(s.spaces)),
		TodoStates:  make(models.TodoState, len(s.todoStates)),
		Documents:   make(map[string][]models.Document, len(s.documents)),
		Chats:       make(map[string][]models.ChatMessage, len(s.chats)),
	}
	copy(snap.Goals, s.goals)
	for id, sp := range s.spaces {
		snap.Spaces[id] = *sp
	}
	for id, flags := range s.todoStates {
		copied := make(map[string]bool, len(flags))
		for k, v := range flags {
			copied[k] = v
		}
		snap.TodoStates[id] = copied
	}
	for id, docs := range s.documents {
		copied := make([]models.Document, len(docs))
		copy(copied, docs)
		snap.Documents[id] = copied
	}
	for id, msgs := range s.chats {
		copied := make([]models.ChatMessage, len(msgs))
		copy(copied, msgs)
		snap.Chats[id] = copied
	}
	return snap
}

// persistLocked mirrors the whole state to the local durable cache.
// Best effort: a cache write failure must never fail a mutation.
func (s *Store) persistLocked() {
	if s.cache == nil {
		return
	}
	if err := s.cache.Save(s.userID, s.snapshotLocked()); err != nil {
		s.log.Warn("failed to persist store snapshot", "error", err)
	}
}
