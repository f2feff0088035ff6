package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"goalspace-backend/pkg/models"
)

// SupabaseDatabase talks to the Supabase PostgREST API over HTTP.
type SupabaseDatabase struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewSupabaseDatabase creates a Supabase-backed database client.
func NewSupabaseDatabase(rawURL, key string) DatabaseInterface {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "https://" + rawURL
	}

	return &SupabaseDatabase{
		baseURL: strings.TrimRight(rawURL, "/"),
		apiKey:  key,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// makeRequest sends one PostgREST request and returns the raw body.
func (db *SupabaseDatabase) makeRequest(method, endpoint string, body interface{}) ([]byte, error) {
	var reqBody io.Reader

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, db.baseURL+"/rest/v1"+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", db.apiKey)
	req.Header.Set("Authorization", "Bearer "+db.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := db.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// Row shapes: PostgREST returns timestamps without a guaranteed RFC3339
// offset and stores list/object columns as JSON text, so rows keep those
// as strings and are converted at the boundary.

type userRow struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Password  string `json:"password_hash"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type goalRow struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Deadline    string  `json:"deadline"`
	Progress    float64 `json:"progress"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type spaceRow struct {
	ID             string  `json:"id"`
	GoalID         string  `json:"goal_id"`
	Title          string  `json:"title"`
	Category       string  `json:"category"`
	Description    string  `json:"description"`
	Objectives     string  `json:"objectives"`
	Prerequisites  string  `json:"prerequisites"`
	Mentor         string  `json:"mentor"`
	Progress       float64 `json:"progress"`
	SpaceColor     string  `json:"space_color"`
	OrderIndex     int     `json:"order_index"`
	TimeToComplete string  `json:"time_to_complete"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

type documentRow struct {
	ID        string                 `json:"id"`
	SpaceID   string                 `json:"space_id"`
	Title     string                 `json:"title"`
	Content   string                 `json:"content"`
	Type      string                 `json:"type"`
	Tags      []string               `json:"tags"`
	Metadata  map[string]interface{} `json:"metadata"`
	CreatedAt string                 `json:"created_at"`
	UpdatedAt string                 `json:"updated_at"`
}

func (r userRow) toModel() *models.User {
	return &models.User{
		ID:        r.ID,
		Email:     r.Email,
		Name:      r.Name,
		Password:  r.Password,
		CreatedAt: parseTimestamp(r.CreatedAt),
		UpdatedAt: parseTimestamp(r.UpdatedAt),
	}
}

func (r goalRow) toModel() models.Goal {
	return models.Goal{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		Deadline:    r.Deadline,
		Progress:    r.Progress,
		Spaces:      []string{},
		CreatedAt:   parseTimestamp(r.CreatedAt),
		UpdatedAt:   parseTimestamp(r.UpdatedAt),
	}
}

func (r spaceRow) toModel() models.Space {
	// Malformed JSON in one space's metadata must never block the
	// rest of the load; every decoder falls back to a default.
	return models.Space{
		ID:             r.ID,
		GoalID:         r.GoalID,
		Title:          r.Title,
		Category:       r.Category,
		Description:    r.Description,
		Objectives:     models.DecodeStringList(r.Objectives),
		Prerequisites:  models.DecodeStringList(r.Prerequisites),
		TodoList:       []string{},
		Mentor:         models.DecodeMentor(r.Mentor),
		SpaceColor:     models.DecodeSpaceColor(r.SpaceColor),
		Progress:       r.Progress,
		OrderIndex:     r.OrderIndex,
		TimeToComplete: r.TimeToComplete,
		CreatedAt:      parseTimestamp(r.CreatedAt),
		UpdatedAt:      parseTimestamp(r.UpdatedAt),
	}
}

func (r documentRow) toModel() models.Document {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.Document{
		ID:        r.ID,
		SpaceID:   r.SpaceID,
		Title:     r.Title,
		Content:   r.Content,
		Type:      r.Type,
		Tags:      tags,
		Metadata:  r.Metadata,
		CreatedAt: parseTimestamp(r.CreatedAt),
		UpdatedAt: parseTimestamp(r.UpdatedAt),
	}
}

// parseTimestamp accepts the timestamp formats PostgREST emits.
func parseTimestamp(raw string) time.Time {
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// CreateUser inserts a user and fills in server-assigned fields.
func (db *SupabaseDatabase) CreateUser(user *models.User) error {
	payload := map[string]interface{}{
		"email":         user.Email,
		"name":          user.Name,
		"password_hash": user.Password,
	}

	body, err := db.makeRequest("POST", "/users", payload)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	var rows []userRow
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		return fmt.Errorf("unexpected create user response: %s", string(body))
	}

	created := rows[0].toModel()
	user.ID = created.ID
	user.CreatedAt = created.CreatedAt
	user.UpdatedAt = created.UpdatedAt
	return nil
}

// GetUserByEmail fetches one user by email.
func (db *SupabaseDatabase) GetUserByEmail(email string) (*models.User, error) {
	endpoint := "/users?email=eq." + url.QueryEscape(email) + "&limit=1"
	body, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	var rows []userRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse user rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("user not found")
	}
	return rows[0].toModel(), nil
}

// GetUserByID fetches one user by primary key.
func (db *SupabaseDatabase) GetUserByID(id string) (*models.User, error) {
	endpoint := "/users?id=eq." + url.QueryEscape(id) + "&limit=1"
	body, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	var rows []userRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse user rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("user not found")
	}
	return rows[0].toModel(), nil
}

// CreateGoal inserts a goal row. The caller's client-assigned ID is
// replaced by the server-assigned one.
func (db *SupabaseDatabase) CreateGoal(goal *models.Goal) error {
	payload := map[string]interface{}{
		"user_id":     goal.UserID,
		"title":       goal.Title,
		"description": goal.Description,
		"deadline":    goal.Deadline,
		"progress":    goal.Progress,
	}

	body, err := db.makeRequest("POST", "/goals", payload)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}

	var rows []goalRow
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		return fmt.Errorf("unexpected create goal response: %s", string(body))
	}

	created := rows[0].toModel()
	goal.ID = created.ID
	goal.CreatedAt = created.CreatedAt
	goal.UpdatedAt = created.UpdatedAt
	return nil
}

// ListGoalsByUser returns all goal rows owned by a user.
func (db *SupabaseDatabase) ListGoalsByUser(userID string) ([]models.Goal, error) {
	endpoint := "/goals?user_id=eq." + url.QueryEscape(userID) + "&order=created_at.asc"
	body, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	var rows []goalRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse goal rows: %w", err)
	}

	goals := make([]models.Goal, 0, len(rows))
	for _, r := range rows {
		goals = append(goals, r.toModel())
	}
	return goals, nil
}

// CreateSpace inserts a space row with its JSON-text sub-fields encoded.
func (db *SupabaseDatabase) CreateSpace(space *models.Space) error {
	payload := map[string]interface{}{
		"goal_id":          space.GoalID,
		"title":            space.Title,
		"category":         space.Category,
		"description":      space.Description,
		"objectives":       models.EncodeJSON(space.Objectives),
		"prerequisites":    models.EncodeJSON(space.Prerequisites),
		"mentor":           models.EncodeJSON(space.Mentor),
		"progress":         space.Progress,
		"order_index":      space.OrderIndex,
		"time_to_complete": space.TimeToComplete,
	}
	if space.SpaceColor != nil {
		payload["space_color"] = models.EncodeJSON(space.SpaceColor)
	}

	body, err := db.makeRequest("POST", "/spaces", payload)
	if err != nil {
		return fmt.Errorf("failed to create space: %w", err)
	}

	var rows []spaceRow
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		return fmt.Errorf("unexpected create space response: %s", string(body))
	}

	space.ID = rows[0].ID
	space.CreatedAt = parseTimestamp(rows[0].CreatedAt)
	space.UpdatedAt = parseTimestamp(rows[0].UpdatedAt)
	return nil
}

// ListSpacesByGoal returns all space rows under one goal, decoded
// defensively.
func (db *SupabaseDatabase) ListSpacesByGoal(goalID string) ([]models.Space, error) {
	endpoint := "/spaces?goal_id=eq." + url.QueryEscape(goalID) + "&order=order_index.asc"
	body, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list spaces: %w", err)
	}

	var rows []spaceRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse space rows: %w", err)
	}

	spaces := make([]models.Space, 0, len(rows))
	for _, r := range rows {
		spaces = append(spaces, r.toModel())
	}
	return spaces, nil
}

// CreateDocument inserts a document and fills in the server-assigned
// ID and timestamps.
func (db *SupabaseDatabase) CreateDocument(doc *models.Document) error {
	payload := map[string]interface{}{
		"space_id": doc.SpaceID,
		"title":    doc.Title,
		"content":  doc.Content,
		"type":     doc.Type,
		"tags":     doc.Tags,
	}
	if doc.Metadata != nil {
		payload["metadata"] = doc.Metadata
	}

	body, err := db.makeRequest("POST", "/documents", payload)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	var rows []documentRow
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		return fmt.Errorf("unexpected create document response: %s", string(body))
	}

	created := rows[0].toModel()
	doc.ID = created.ID
	doc.CreatedAt = created.CreatedAt
	doc.UpdatedAt = created.UpdatedAt
	return nil
}

// ListDocumentsBySpace returns all documents under one space.
func (db *SupabaseDatabase) ListDocumentsBySpace(spaceID string) ([]models.Document, error) {
	endpoint := "/documents?space_id=eq." + url.QueryEscape(spaceID) + "&order=created_at.asc"
	body, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	var rows []documentRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse document rows: %w", err)
	}

	docs := make([]models.Document, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, r.toModel())
	}
	return docs, nil
}

// HealthCheck verifies the REST endpoint answers.
func (db *SupabaseDatabase) HealthCheck() error {
	_, err := db.makeRequest("GET", "/users?select=id&limit=1", nil)
	if err != nil {
		return fmt.Errorf("supabase health check failed: %w", err)
	}
	return nil
}

// Close is a no-op for the HTTP client.
func (db *SupabaseDatabase) Close() error {
	return nil
}
