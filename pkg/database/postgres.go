package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"goalspace-backend/pkg/models"

	"github.com/lib/pq"
)

// PostgresDatabase talks straight to PostgreSQL.
type PostgresDatabase struct {
	db *sql.DB
}

// NewPostgresDatabase opens a connection pool against the given DSN.
func NewPostgresDatabase(dsn string) (DatabaseInterface, error) {
	// Sanitize DSN to avoid stray CR/LF from env values
	dsn = strings.TrimSpace(dsn)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresDatabase{db: db}, nil
}

// CreateUser inserts a user and fills in server-assigned fields.
func (db *PostgresDatabase) CreateUser(user *models.User) error {
	query := `
		INSERT INTO users (email, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := db.db.QueryRow(query, user.Email, user.Name, user.Password).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail fetches one user by email.
func (db *PostgresDatabase) GetUserByEmail(email string) (*models.User, error) {
	query := `
		SELECT id, email, COALESCE(name,''), COALESCE(password_hash,''), created_at, updated_at
		FROM users
		WHERE email = $1
	`
	var u models.User
	err := db.db.QueryRow(query, email).Scan(
		&u.ID, &u.Email, &u.Name, &u.Password, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

// GetUserByID fetches one user by primary key.
func (db *PostgresDatabase) GetUserByID(id string) (*models.User, error) {
	query := `
		SELECT id, email, COALESCE(name,''), created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var u models.User
	err := db.db.QueryRow(query, id).Scan(
		&u.ID, &u.Email, &u.Name, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &u, nil
}

// CreateGoal inserts a goal row. The caller's client-assigned ID is
// replaced by the server-assigned one.
func (db *PostgresDatabase) CreateGoal(goal *models.Goal) error {
	query := `
		INSERT INTO goals (user_id, title, description, deadline, progress, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := db.db.QueryRow(query, goal.UserID, goal.Title, goal.Description, goal.Deadline, goal.Progress).
		Scan(&goal.ID, &goal.CreatedAt, &goal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

// ListGoalsByUser returns all goal rows owned by a user.
func (db *PostgresDatabase) ListGoalsByUser(userID string) ([]models.Goal, error) {
	query := `
		SELECT id, user_id, title, COALESCE(description,''), COALESCE(deadline,''), progress, created_at, updated_at
		FROM goals
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := db.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	goals := make([]models.Goal, 0)
	for rows.Next() {
		var g models.Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.Deadline, &g.Progress, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan goal row: %w", err)
		}
		g.Spaces = []string{}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate goal rows: %w", err)
	}
	return goals, nil
}

// CreateSpace inserts a space row with its JSON-text sub-fields encoded.
func (db *PostgresDatabase) CreateSpace(space *models.Space) error {
	query := `
		INSERT INTO spaces (goal_id, title, category, description, objectives, prerequisites,
		                    mentor, progress, space_color, order_index, time_to_complete, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	spaceColor := ""
	if space.SpaceColor != nil {
		spaceColor = models.EncodeJSON(space.SpaceColor)
	}
	err := db.db.QueryRow(query,
		space.GoalID, space.Title, space.Category, space.Description,
		models.EncodeJSON(space.Objectives), models.EncodeJSON(space.Prerequisites),
		models.EncodeJSON(space.Mentor), space.Progress, spaceColor,
		space.OrderIndex, space.TimeToComplete,
	).Scan(&space.ID, &space.CreatedAt, &space.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create space: %w", err)
	}
	return nil
}

// ListSpacesByGoal returns all space rows under one goal, decoding the
// JSON-text columns defensively.
func (db *PostgresDatabase) ListSpacesByGoal(goalID string) ([]models.Space, error) {
	query := `
		SELECT id, goal_id, title, category, COALESCE(description,''),
		       COALESCE(objectives,''), COALESCE(prerequisites,''), COALESCE(mentor,''),
		       progress, COALESCE(space_color,''), order_index, COALESCE(time_to_complete,''),
		       created_at, updated_at
		FROM spaces
		WHERE goal_id = $1
		ORDER BY order_index ASC
	`
	rows, err := db.db.Query(query, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list spaces: %w", err)
	}
	defer rows.Close()

	spaces := make([]models.Space, 0)
	for rows.Next() {
		var s models.Space
		var objectives, prerequisites, mentor, spaceColor string
		if err := rows.Scan(
			&s.ID, &s.GoalID, &s.Title, &s.Category, &s.Description,
			&objectives, &prerequisites, &mentor,
			&s.Progress, &spaceColor, &s.OrderIndex, &s.TimeToComplete,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan space row: %w", err)
		}
		s.Objectives = models.DecodeStringList(objectives)
		s.Prerequisites = models.DecodeStringList(prerequisites)
		s.Mentor = models.DecodeMentor(mentor)
		s.SpaceColor = models.DecodeSpaceColor(spaceColor)
		s.TodoList = []string{}
		spaces = append(spaces, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate space rows: %w", err)
	}
	return spaces, nil
}

// CreateDocument inserts a document and fills in the server-assigned
// ID and timestamps.
func (db *PostgresDatabase) CreateDocument(doc *models.Document) error {
	query := `
		INSERT INTO documents (space_id, title, content, "type", tags, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	var metadata []byte
	if doc.Metadata != nil {
		data, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal document metadata: %w", err)
		}
		metadata = data
	} else {
		metadata = []byte("{}")
	}

	err := db.db.QueryRow(query,
		doc.SpaceID, doc.Title, doc.Content, doc.Type,
		pq.Array(doc.Tags), metadata,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// ListDocumentsBySpace returns all documents under one space.
func (db *PostgresDatabase) ListDocumentsBySpace(spaceID string) ([]models.Document, error) {
	query := `
		SELECT id, space_id, title, content, "type", tags, COALESCE(metadata,'{}'::jsonb), created_at, updated_at
		FROM documents
		WHERE space_id = $1
		ORDER BY created_at ASC
	`
	rows, err := db.db.Query(query, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]models.Document, 0)
	for rows.Next() {
		var d models.Document
		var tags pq.StringArray
		var metadata []byte
		if err := rows.Scan(&d.ID, &d.SpaceID, &d.Title, &d.Content, &d.Type, &tags, &metadata, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		d.Tags = []string(tags)
		if d.Tags == nil {
			d.Tags = []string{}
		}
		if len(metadata) > 0 {
			// Metadata corruption should not block the listing.
			_ = json.Unmarshal(metadata, &d.Metadata)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate document rows: %w", err)
	}
	return docs, nil
}

// HealthCheck pings the database.
func (db *PostgresDatabase) HealthCheck() error {
	if err := db.db.Ping(); err != nil {
		return fmt.Errorf("postgres health check failed: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (db *PostgresDatabase) Close() error {
	return db.db.Close()
}
