package database

import (
	"fmt"

	"goalspace-backend/pkg/models"
)

// DatabaseInterface is the remote persistence contract. The remote
// store is the durable source of truth for users, goals, spaces and
// documents; everything else the product tracks stays in the session
// store and its local cache.
type DatabaseInterface interface {
	// Users
	CreateUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)

	// Goals
	CreateGoal(goal *models.Goal) error
	ListGoalsByUser(userID string) ([]models.Goal, error)

	// Spaces (scoped per goal in the schema; callers fetch per goal)
	CreateSpace(space *models.Space) error
	ListSpacesByGoal(goalID string) ([]models.Space, error)

	// Documents
	CreateDocument(doc *models.Document) error
	ListDocumentsBySpace(spaceID string) ([]models.Document, error)

	HealthCheck() error
	Close() error
}

// DatabaseConfig selects and parameterizes the implementation.
type DatabaseConfig struct {
	PostgresDSN string
	SupabaseURL string
	SupabaseKey string
}

// NewDatabase picks an implementation from the configuration:
// direct PostgreSQL when a DSN is present, Supabase REST otherwise.
func NewDatabase(config DatabaseConfig) (DatabaseInterface, error) {
	if config.PostgresDSN != "" {
		return NewPostgresDatabase(config.PostgresDSN)
	}

	if config.SupabaseURL != "" && config.SupabaseKey != "" {
		return NewSupabaseDatabase(config.SupabaseURL, config.SupabaseKey), nil
	}

	return nil, fmt.Errorf("no valid database configuration: set POSTGRES_DSN or SUPABASE_URL+SUPABASE_SERVICE_KEY")
}
