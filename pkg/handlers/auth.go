package handlers

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"goalspace-backend/pkg/config"
	"goalspace-backend/pkg/database"
	"goalspace-backend/pkg/logger"
	"goalspace-backend/pkg/middleware"
	"goalspace-backend/pkg/models"
	"goalspace-backend/pkg/store"
	"goalspace-backend/pkg/utils"
)

// AuthHandler owns registration, login and the token lifecycle.
type AuthHandler struct {
	config *config.Config
	db     database.DatabaseInterface
	jwt    *utils.JWTService
	stores *store.Manager
	log    *logger.Logger
}

func NewAuthHandler(cfg *config.Config, db database.DatabaseInterface, stores *store.Manager, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		config: cfg,
		db:     db,
		jwt:    utils.NewJWTService(cfg.JWTSecret),
		stores: stores,
		log:    log,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	ExpiresAt    int64        `json:"expires_at"`
	User         *models.User `json:"user,omitempty"`
}

// Register creates an account and returns a token pair.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		utils.WriteValidationErrorResponse(w, "Invalid email", "")
		return
	}
	if len(req.Password) < 8 {
		utils.WriteValidationErrorResponse(w, "Password must be at least 8 characters", "")
		return
	}

	if existing, err := h.db.GetUserByEmail(req.Email); err == nil && existing != nil {
		utils.WriteConflictResponse(w, "Email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.log.Error("password hashing failed", "error", err)
		utils.WriteInternalServerErrorResponse(w, "Failed to create account")
		return
	}

	user := &models.User{
		Email:    req.Email,
		Name:     req.Name,
		Password: string(hash),
	}
	if err := h.db.CreateUser(user); err != nil {
		h.log.Error("user creation failed", "email", req.Email, "error", err)
		utils.WriteInternalServerErrorResponse(w, "Failed to create account")
		return
	}

	access, refresh, expiresAt, err := h.jwt.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		h.log.Error("token generation failed", "user_id", user.ID, "error", err)
		utils.WriteInternalServerErrorResponse(w, "Failed to issue tokens")
		return
	}

	h.log.Info("user registered", "user_id", user.ID)
	utils.WriteCreatedResponse(w, tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		User:         user,
	})
}

// Login verifies credentials and returns a token pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	user, err := h.db.GetUserByEmail(req.Email)
	if err != nil || user == nil {
		utils.WriteUnauthorizedResponse(w, "Invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		utils.WriteUnauthorizedResponse(w, "Invalid email or password")
		return
	}

	access, refresh, expiresAt, err := h.jwt.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		h.log.Error("token generation failed", "user_id", user.ID, "error", err)
		utils.WriteInternalServerErrorResponse(w, "Failed to issue tokens")
		return
	}

	// Never leak the hash even through the envelope.
	user.Password = ""
	utils.WriteSuccessResponse(w, tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		User:         user,
	})
}

// RefreshToken exchanges a refresh token for a new access token. The
// account must still exist: a valid token for a deleted user is refused.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if req.RefreshToken == "" {
		utils.WriteBadRequestResponse(w, "Refresh token is required")
		return
	}

	claims, err := h.jwt.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Invalid refresh token")
		return
	}

	user, err := h.db.GetUserByID(claims.UserID)
	if err != nil || user == nil {
		h.log.Warn("refresh for unknown account", "user_id", claims.UserID)
		utils.WriteUnauthorizedResponse(w, "Unknown account")
		return
	}

	access, expiresAt, err := h.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		h.log.Error("token generation failed", "user_id", user.ID, "error", err)
		utils.WriteInternalServerErrorResponse(w, "Failed to issue tokens")
		return
	}

	utils.WriteSuccessResponse(w, tokenResponse{
		AccessToken: access,
		ExpiresAt:   expiresAt,
	})
}

// Logout tears down the caller's session store and cache entry.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	h.stores.Remove(user.ID)
	h.log.Info("user logged out", "user_id", user.ID)
	utils.WriteSuccessResponse(w, map[string]string{"status": "logged_out"})
}

// HealthCheck reports service and database health.
func (h *AuthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{
		"status":   "ok",
		"database": "ok",
	}
	code := http.StatusOK

	if err := h.db.HealthCheck(); err != nil {
		status["status"] = "degraded"
		status["database"] = err.Error()
		code = http.StatusServiceUnavailable
	}

	utils.WriteJSONResponse(w, code, status)
}
