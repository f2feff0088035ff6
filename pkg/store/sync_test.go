package store

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"goalspace-backend/pkg/logger"
	"goalspace-backend/pkg/models"
)

func seedRemote(db *fakeDB) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	db.goals = []models.Goal{
		{ID: "g1", UserID: "user-1", Title: "Learn Spanish", Progress: 10, CreatedAt: now},
		{ID: "g2", UserID: "user-1", Title: "Run a marathon", Progress: 0, CreatedAt: now},
	}
	db.spacesByGoal["g1"] = []models.Space{
		{ID: "s1", GoalID: "g1", Title: "Grammar", Category: models.CategoryLearning,
			Objectives: []string{"verbs"}, Prerequisites: []string{}, TodoList: []string{},
			Mentor: models.Mentor{Name: "Ada"}, Progress: 20},
		{ID: "s2", GoalID: "g1", Title: "Vocabulary", Category: models.CategoryLearning,
			Objectives: []string{}, Prerequisites: []string{}, TodoList: []string{}, Progress: 0},
	}
	db.spacesByGoal["g2"] = []models.Space{
		{ID: "s3", GoalID: "g2", Title: "Training", Category: models.CategoryGoal,
			Objectives: []string{}, Prerequisites: []string{}, TodoList: []string{}, Progress: 0},
	}
}

func TestLoadUserDataPopulatesStore(t *testing.T) {
	db := newFakeDB()
	seedRemote(db)
	s := newTestStore(t, db)

	if err := s.LoadUserData(); err != nil {
		t.Fatalf("load user data: %v", err)
	}

	goals := s.Goals()
	if len(goals) != 2 {
		t.Fatalf("expected 2 goals, got %d", len(goals))
	}
	// Space lists are derived from the fetched rows.
	if !reflect.DeepEqual(goals[0].Spaces, []string{"s1", "s2"}) {
		t.Errorf("goal 1 spaces = %v", goals[0].Spaces)
	}
	if !reflect.DeepEqual(goals[1].Spaces, []string{"s3"}) {
		t.Errorf("goal 2 spaces = %v", goals[1].Spaces)
	}
	if sp, ok := s.Space("s1"); !ok || sp.Mentor.Name != "Ada" {
		t.Errorf("space s1 not loaded correctly: %+v", sp)
	}
	if !s.Hydrated() {
		t.Error("store should report hydrated after a successful load")
	}
}

func TestLoadUserDataIsIdempotent(t *testing.T) {
	db := newFakeDB()
	seedRemote(db)
	s := newTestStore(t, db)

	if err := s.LoadUserData(); err != nil {
		t.Fatalf("first load: %v", err)
	}
	first := s.Snapshot()

	if err := s.LoadUserData(); err != nil {
		t.Fatalf("second load: %v", err)
	}
	second := s.Snapshot()

	if !reflect.DeepEqual(first, second) {
		t.Error("two loads with no remote change must yield identical snapshots")
	}
}

func TestLoadUserDataWithoutSessionIsNoOp(t *testing.T) {
	db := newFakeDB()
	seedRemote(db)
	s := New("", db, nil, logger.NewNop())

	if err := s.LoadUserData(); err != nil {
		t.Fatalf("unauthenticated load must not error: %v", err)
	}
	if len(s.Goals()) != 0 {
		t.Error("unauthenticated load must not mutate the store")
	}
}

func TestLoadUserDataFailureKeepsPriorState(t *testing.T) {
	db := newFakeDB()
	seedRemote(db)
	s := newTestStore(t, db)
	if err := s.LoadUserData(); err != nil {
		t.Fatalf("seed load: %v", err)
	}
	before := s.Snapshot()

	// A failure on the second goal's spaces must leave everything
	// untouched, including data from the first goal's successful fetch.
	db.failListSpaces["g2"] = errors.New("connection reset")
	db.goals[0].Title = "Changed Remotely"

	if err := s.LoadUserData(); err != nil {
		t.Fatalf("failed load must be swallowed, got %v", err)
	}
	after := s.Snapshot()
	if !reflect.DeepEqual(before, after) {
		t.Error("failed reconciliation mutated the store")
	}
}

func TestLoadUserDataPreservesLocalOnlyFields(t *testing.T) {
	db := newFakeDB()
	seedRemote(db)
	s := newTestStore(t, db)
	if err := s.LoadUserData(); err != nil {
		t.Fatalf("load: %v", err)
	}

	// Todo lists, artifacts and UI flags live only locally; a second
	// reconciliation must not wipe them for spaces that still exist.
	s.UpdateTodoList("s1", []string{"a", "b"})
	s.ToggleTodo("s1", 0)
	s.SetPlan("s1", "study plan")
	s.ToggleSpaceCollapse("s1")

	if err := s.LoadUserData(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	sp, ok := s.Space("s1")
	if !ok {
		t.Fatal("space s1 missing after reload")
	}
	if len(sp.TodoList) != 2 || sp.Plan != "study plan" {
		t.Errorf("local-only fields lost: %+v", sp)
	}
	flags := s.TodoStates()["s1"]
	if !flags["0"] || flags["1"] {
		t.Errorf("todo flags lost across reload: %v", flags)
	}
}

func TestLoadUserDataMalformedMentorFallsBack(t *testing.T) {
	// The defensive decode happens at the database boundary; mimic a
	// row whose mentor column held the literal string "not-json" by
	// returning what the real implementations produce for it.
	db := newFakeDB()
	seedRemote(db)
	db.spacesByGoal["g1"][0].Mentor = models.DecodeMentor("not-json")
	s := newTestStore(t, db)

	if err := s.LoadUserData(); err != nil {
		t.Fatalf("load: %v", err)
	}
	sp, ok := s.Space("s1")
	if !ok {
		t.Fatal("space with malformed mentor was dropped")
	}
	if sp.Mentor.Name != "" {
		t.Errorf("expected default mentor, got %+v", sp.Mentor)
	}
	// Sibling spaces load normally.
	if _, ok := s.Space("s2"); !ok {
		t.Error("sibling space failed to load")
	}
}

func TestEnsureLoadedRunsOnce(t *testing.T) {
	db := newFakeDB()
	seedRemote(db)
	s := newTestStore(t, db)

	s.EnsureLoaded()
	if !s.Hydrated() {
		t.Fatal("first EnsureLoaded must hydrate")
	}

	// Remote changes are not picked up by EnsureLoaded once hydrated.
	db.goals = append(db.goals, models.Goal{ID: "g3", UserID: "user-1", Title: "New"})
	s.EnsureLoaded()
	if len(s.Goals()) != 2 {
		t.Error("EnsureLoaded must not re-sync a hydrated store")
	}
}

func TestLoadDocumentsReplacesList(t *testing.T) {
	db := newFakeDB()
	db.docsBySpace["s1"] = []models.Document{
		{ID: "d1", SpaceID: "s1", Title: "Guide", Type: models.DocTypeGuide, Tags: []string{}},
	}
	s := newTestStore(t, db)

	if err := s.LoadDocuments("s1"); err != nil {
		t.Fatalf("load documents: %v", err)
	}
	if got := s.Documents("s1"); len(got) != 1 || got[0].ID != "d1" {
		t.Errorf("unexpected documents: %+v", got)
	}

	// Replace, not append.
	db.docsBySpace["s1"] = append(db.docsBySpace["s1"],
		models.Document{ID: "d2", SpaceID: "s1", Title: "More", Type: models.DocTypeReference, Tags: []string{}})
	if err := s.LoadDocuments("s1"); err != nil {
		t.Fatalf("reload documents: %v", err)
	}
	if got := s.Documents("s1"); len(got) != 2 {
		t.Errorf("expected replaced list of 2, got %d", len(got))
	}
}

func TestLoadDocumentsFailureIsReturned(t *testing.T) {
	db := newFakeDB()
	db.docsBySpace["s1"] = []models.Document{
		{ID: "d1", SpaceID: "s1", Title: "Guide", Type: models.DocTypeGuide, Tags: []string{}},
	}
	s := newTestStore(t, db)
	if err := s.LoadDocuments("s1"); err != nil {
		t.Fatalf("seed load: %v", err)
	}

	db.failListDocs = errors.New("timeout")
	err := s.LoadDocuments("s1")
	if !errors.Is(err, db.failListDocs) {
		t.Fatalf("expected the original error back, got %v", err)
	}
	// Prior list untouched.
	if got := s.Documents("s1"); len(got) != 1 {
		t.Errorf("document list mutated on failed load: %d entries", len(got))
	}
}
