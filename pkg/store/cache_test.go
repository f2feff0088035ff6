package store

import (
	"path/filepath"
	"reflect"
	"testing"

	"goalspace-backend/pkg/logger"
	"goalspace-backend/pkg/models"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := OpenCache(filepath.Join(t.TempDir(), "cache.db"), logger.NewNop())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCacheSaveAndLoad(t *testing.T) {
	c := newTestCache(t)

	snap := Snapshot{
		CurrentGoal: "Learn Spanish",
		Goals: []models.Goal{
			{ID: "g1", Title: "Learn Spanish", Spaces: []string{"s1"}, Progress: 50},
		},
		Spaces: map[string]models.Space{
			"s1": {ID: "s1", Title: "Grammar", Category: models.CategoryLearning,
				Objectives: []string{}, Prerequisites: []string{},
				TodoList: []string{"a", "b"}, Progress: 50, IsCollapsed: true},
		},
		TodoStates: models.TodoState{"s1": {"0": true, "1": false}},
		Documents:  map[string][]models.Document{},
		Chats:      map[string][]models.ChatMessage{},
	}

	if err := c.Save("user-1", snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok := c.Load("user-1")
	if !ok {
		t.Fatal("expected a snapshot back")
	}
	if got.CurrentGoal != snap.CurrentGoal || len(got.Goals) != 1 {
		t.Errorf("snapshot mismatch: %+v", got)
	}
	if !reflect.DeepEqual(got.TodoStates, snap.TodoStates) {
		t.Errorf("todo states mismatch: %v", got.TodoStates)
	}
}

func TestCacheSaveOverwrites(t *testing.T) {
	c := newTestCache(t)

	if err := c.Save("user-1", Snapshot{CurrentGoal: "first"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := c.Save("user-1", Snapshot{CurrentGoal: "second"}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, ok := c.Load("user-1")
	if !ok || got.CurrentGoal != "second" {
		t.Errorf("expected last write to win, got %+v", got)
	}
}

func TestCacheLoadMissingUser(t *testing.T) {
	c := newTestCache(t)
	if _, ok := c.Load("never-seen"); ok {
		t.Error("first run must report no snapshot")
	}
}

func TestCacheLoadCorruptState(t *testing.T) {
	c := newTestCache(t)
	if _, err := c.db.Exec(
		`INSERT INTO snapshots (user_id, state, updated_at) VALUES ('user-1', 'not-json', '2025-01-01T00:00:00Z')`,
	); err != nil {
		t.Fatalf("inject corrupt row: %v", err)
	}

	if _, ok := c.Load("user-1"); ok {
		t.Error("corrupt state must be treated like absence")
	}
}

func TestCacheDelete(t *testing.T) {
	c := newTestCache(t)
	if err := c.Save("user-1", Snapshot{CurrentGoal: "x"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := c.Delete("user-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := c.Load("user-1"); ok {
		t.Error("snapshot should be gone after delete")
	}
}

func TestStoreSeedsFromCache(t *testing.T) {
	c := newTestCache(t)
	db := newFakeDB()

	first := New("user-1", db, c, logger.NewNop())
	first.SetCurrentGoal("Learn Spanish")
	goal := mustReplaceSpaces(t, first, generatedSpaces(1, 2))
	first.ToggleTodo(goal.Spaces[0], 0)

	// A new store for the same user picks up where the last one left off.
	second := New("user-1", db, c, logger.NewNop())
	if got := second.Goals(); len(got) != 1 || got[0].Title != "Learn Spanish" {
		t.Fatalf("cache seed lost goals: %+v", got)
	}
	sp, ok := second.Space(goal.Spaces[0])
	if !ok || sp.Progress != 50 {
		t.Errorf("cache seed lost progress: %+v", sp)
	}
}
