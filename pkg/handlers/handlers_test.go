package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"goalspace-backend/pkg/ai"
	"goalspace-backend/pkg/logger"
	"goalspace-backend/pkg/middleware"
	"goalspace-backend/pkg/models"
	"goalspace-backend/pkg/store"
)

// fakeDB is a minimal in-memory DatabaseInterface for handler tests.
type fakeDB struct {
	users        map[string]*models.User
	goals        map[string][]models.Goal
	spacesByGoal map[string][]models.Space
	docsBySpace  map[string][]models.Document
	nextGoalID   int
	nextSpaceID  int
	nextDocID    int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:        make(map[string]*models.User),
		goals:        make(map[string][]models.Goal),
		spacesByGoal: make(map[string][]models.Space),
		docsBySpace:  make(map[string][]models.Document),
	}
}

func (db *fakeDB) CreateUser(user *models.User) error {
	user.ID = fmt.Sprintf("user-%d", len(db.users)+1)
	db.users[user.Email] = user
	return nil
}

func (db *fakeDB) GetUserByEmail(email string) (*models.User, error) {
	if u, ok := db.users[email]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user not found")
}

func (db *fakeDB) GetUserByID(id string) (*models.User, error) {
	for _, u := range db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (db *fakeDB) CreateGoal(goal *models.Goal) error {
	db.nextGoalID++
	goal.ID = fmt.Sprintf("goal-%d", db.nextGoalID)
	db.goals[goal.UserID] = append(db.goals[goal.UserID], *goal)
	return nil
}

func (db *fakeDB) ListGoalsByUser(userID string) ([]models.Goal, error) {
	return db.goals[userID], nil
}

func (db *fakeDB) CreateSpace(space *models.Space) error {
	db.nextSpaceID++
	space.ID = fmt.Sprintf("space-%d", db.nextSpaceID)
	db.spacesByGoal[space.GoalID] = append(db.spacesByGoal[space.GoalID], *space)
	return nil
}

func (db *fakeDB) ListSpacesByGoal(goalID string) ([]models.Space, error) {
	return db.spacesByGoal[goalID], nil
}

func (db *fakeDB) CreateDocument(doc *models.Document) error {
	db.nextDocID++
	doc.ID = fmt.Sprintf("doc-%d", db.nextDocID)
	db.docsBySpace[doc.SpaceID] = append(db.docsBySpace[doc.SpaceID], *doc)
	return nil
}

func (db *fakeDB) ListDocumentsBySpace(spaceID string) ([]models.Document, error) {
	return db.docsBySpace[spaceID], nil
}

func (db *fakeDB) HealthCheck() error { return nil }
func (db *fakeDB) Close() error       { return nil }

// testRouter wires the store-backed handlers behind a stub auth
// middleware that injects a fixed user.
func testRouter(t *testing.T) (*chi.Mux, *store.Manager) {
	t.Helper()

	stores := store.NewManager(newFakeDB(), nil, logger.NewNop())
	goals := NewGoalsHandler(stores, logger.NewNop())
	spaces := NewSpacesHandler(stores, logger.NewNop())
	generate := NewGenerateHandler(stores, ai.NewMockGenerator(), logger.NewNop())

	authenticated := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := &models.User{ID: "user-1", Email: "u@example.com"}
			ctx := context.WithValue(r.Context(), middleware.UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/goals", goals.ListGoals)
			r.Post("/goals", goals.CreateGoal)
			r.Put("/goals/current", goals.SetCurrentGoal)
			r.Post("/spaces/{spaceID}/todos/{index}/toggle", spaces.ToggleTodo)
			r.Post("/ai/generate", generate.Generate)
		})
		// Same handlers without the stub middleware: requests arrive
		// with no user in context.
		r.Get("/unauthenticated/goals", goals.ListGoals)
	})
	return router, stores
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope from %q: %v", rec.Body.String(), err)
	}
	return rec, env
}

func TestHandlersRequireAuthentication(t *testing.T) {
	router, _ := testRouter(t)

	rec, env := doJSON(t, router, http.MethodGet, "/api/unauthenticated/goals", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if env.Success || env.Error == nil || env.Error.Code != "UNAUTHORIZED" {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestCreateGoalAndListRoundTrip(t *testing.T) {
	router, _ := testRouter(t)

	// Hydrate first: the initial list triggers the remote load, and a
	// goal created afterwards must survive later reads.
	if rec, _ := doJSON(t, router, http.MethodGet, "/api/goals", nil); rec.Code != http.StatusOK {
		t.Fatalf("initial list failed: %d", rec.Code)
	}

	rec, env := doJSON(t, router, http.MethodPost, "/api/goals", map[string]interface{}{
		"spaces": []map[string]interface{}{
			{"title": "Grammar", "category": models.CategoryLearning, "to_do_list": []string{"a", "b"}},
			{"title": "Vocabulary", "category": models.CategoryLearning, "to_do_list": []string{"c"}},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !env.Success {
		t.Fatalf("expected success envelope: %+v", env)
	}

	rec, env = doJSON(t, router, http.MethodGet, "/api/goals", nil)
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("list failed: %d %+v", rec.Code, env)
	}

	var data struct {
		Goals  []models.Goal  `json:"goals"`
		Spaces []models.Space `json:"spaces"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(data.Goals) != 1 || len(data.Spaces) != 2 {
		t.Errorf("expected 1 goal with 2 spaces, got %d/%d", len(data.Goals), len(data.Spaces))
	}
}

func TestCreateGoalRejectsEmptySpaces(t *testing.T) {
	router, _ := testRouter(t)

	rec, env := doJSON(t, router, http.MethodPost, "/api/goals", map[string]interface{}{
		"spaces": []map[string]interface{}{},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestToggleTodoThroughRouter(t *testing.T) {
	router, stores := testRouter(t)

	s := stores.Get("user-1")
	goal, err := s.ReplaceSpaces([]models.Space{
		{Title: "Grammar", Category: models.CategoryLearning, TodoList: []string{"a", "b"}},
	})
	if err != nil {
		t.Fatalf("replace spaces: %v", err)
	}
	spaceID := goal.Spaces[0]

	rec, env := doJSON(t, router, http.MethodPost, "/api/spaces/"+spaceID+"/todos/0/toggle", nil)
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("toggle failed: %d %+v", rec.Code, env)
	}

	sp, _ := s.Space(spaceID)
	if sp.Progress != 50 {
		t.Errorf("expected progress 50 after toggle, got %v", sp.Progress)
	}
}

func TestToggleTodoUnknownSpaceIs404(t *testing.T) {
	router, _ := testRouter(t)

	rec, env := doJSON(t, router, http.MethodPost, "/api/spaces/missing/todos/0/toggle", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestGenerateEndpointWithMock(t *testing.T) {
	router, stores := testRouter(t)

	s := stores.Get("user-1")
	goal, err := s.ReplaceSpaces([]models.Space{
		{Title: "Grammar", Category: models.CategoryLearning,
			Mentor: models.Mentor{Name: "Professor Elena"}},
	})
	if err != nil {
		t.Fatalf("replace spaces: %v", err)
	}

	rec, env := doJSON(t, router, http.MethodPost, "/api/ai/generate", map[string]string{
		"useCase": models.UseCasePlan,
		"model":   models.ModelOpenAI,
		"spaceId": goal.Spaces[0],
	})
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("generate failed: %d %s", rec.Code, rec.Body.String())
	}

	var data struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Content == "" {
		t.Error("expected generated content")
	}
}

func TestGenerateRejectsUnknownUseCase(t *testing.T) {
	router, _ := testRouter(t)

	rec, env := doJSON(t, router, http.MethodPost, "/api/ai/generate", map[string]string{
		"useCase": "translate",
		"model":   models.ModelOpenAI,
		"spaceId": "s1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("unexpected envelope: %+v", env)
	}
}
