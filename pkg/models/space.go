package models

import "time"

// Space categories form a closed set.
const (
	CategoryLearning = "learning"
	CategoryGoal     = "goal"
)

// Mentor is the AI persona attached to a space. Generated content is
// kept in-character by interpolating it into every prompt.
type Mentor struct {
	Name         string   `json:"name"`
	Introduction string   `json:"introduction,omitempty"`
	Personality  string   `json:"personality,omitempty"`
	Expertise    []string `json:"expertise,omitempty"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
}

// SpaceColor is an optional palette for rendering a space.
type SpaceColor struct {
	Main      string `json:"main"`
	Secondary string `json:"secondary,omitempty"`
	Accent    string `json:"accent,omitempty"`
}

// Space is a unit of learning/work within a goal. Progress is derived
// from the companion todo-state map, never stored as an independent
// source of truth.
type Space struct {
	ID             string      `json:"id" db:"id"`
	GoalID         string      `json:"goal_id,omitempty" db:"goal_id"`
	Title          string      `json:"title" db:"title"`
	Category       string      `json:"category" db:"category"`
	Description    string      `json:"description,omitempty" db:"description"`
	Objectives     []string    `json:"objectives"`
	Prerequisites  []string    `json:"prerequisites"`
	TodoList       []string    `json:"to_do_list"`
	TimeToComplete string      `json:"time_to_complete,omitempty" db:"time_to_complete"`
	Mentor         Mentor      `json:"mentor"`
	SpaceColor     *SpaceColor `json:"space_color,omitempty"`
	Plan           string      `json:"plan,omitempty"`
	Research       string      `json:"research,omitempty"`
	Content        string      `json:"content,omitempty"`
	Progress       float64     `json:"progress" db:"progress"`
	IsCollapsed    bool        `json:"is_collapsed"`
	OrderIndex     int         `json:"order_index,omitempty" db:"order_index"`
	CreatedAt      time.Time   `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at,omitempty" db:"updated_at"`
}

// TodoState maps a space ID to per-item completion flags, keyed by the
// stringified item index ("0".."N-1").
type TodoState map[string]map[string]bool
