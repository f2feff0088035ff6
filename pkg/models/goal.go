package models

import "time"

// Goal is a top-level user objective that owns one or more spaces.
// Progress is derived: the arithmetic mean of the owned spaces'
// progress values (0 when it owns none).
type Goal struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id,omitempty" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description,omitempty" db:"description"`
	Deadline    string    `json:"deadline,omitempty" db:"deadline"`
	Progress    float64   `json:"progress" db:"progress"`
	Spaces      []string  `json:"spaces"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at,omitempty" db:"updated_at"`
}
