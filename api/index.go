package handler

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"goalspace-backend/pkg/ai"
	"goalspace-backend/pkg/config"
	"goalspace-backend/pkg/database"
	"goalspace-backend/pkg/handlers"
	"goalspace-backend/pkg/logger"
	custommiddleware "goalspace-backend/pkg/middleware"
	"goalspace-backend/pkg/store"
	"goalspace-backend/pkg/utils"
)

// Process-wide application state. Built once; warm invocations and the
// long-running server reuse the same stores, cache and generator.
var (
	appOnce      sync.Once
	appLog       *logger.Logger
	appDB        database.DatabaseInterface
	appStores    *store.Manager
	appGenerator ai.Generator
	appErr       error
)

func initApp(cfg *config.Config) error {
	appOnce.Do(func() {
		log, err := logger.New(cfg.Environment, cfg.Debug)
		if err != nil {
			appErr = fmt.Errorf("logger init: %w", err)
			return
		}
		appLog = log

		db, err := database.GetDatabase(database.DatabaseConfig{
			PostgresDSN: cfg.PostgresDSN,
			SupabaseURL: cfg.SupabaseURL,
			SupabaseKey: cfg.SupabaseKey,
		}, appLog)
		if err != nil {
			appErr = fmt.Errorf("database init: %w", err)
			return
		}

		// A broken cache degrades to remote-only operation.
		cache, err := store.OpenCache(cfg.CachePath, appLog)
		if err != nil {
			appLog.Warn("local cache unavailable, running without it", "error", err)
			cache = nil
		}

		appDB = db
		appStores = store.NewManager(db, cache, appLog)
		appGenerator = ai.NewGenerator(cfg, appLog)
	})
	return appErr
}

// Handler is the single serverless entry point: every API route runs
// through one chi router.
func Handler(w http.ResponseWriter, r *http.Request) {
	cfg := config.GetCached()

	if err := cfg.Validate(); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Configuration error: "+err.Error())
		return
	}

	if err := initApp(cfg); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Startup error: "+err.Error())
		return
	}

	NewRouter(cfg).ServeHTTP(w, r)
}

// NewRouter assembles middleware and routes. The long-running server
// entry point uses it directly.
func NewRouter(cfg *config.Config) *chi.Mux {
	router := chi.NewRouter()
	setupMiddleware(router, cfg)
	setupRoutes(router, cfg)
	return router
}

func setupMiddleware(router *chi.Mux, cfg *config.Config) {
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	// Normalize path and restore scheme/host before logging and routing
	router.Use(custommiddleware.Normalize())
	router.Use(custommiddleware.RequestLogger(appLog))
	router.Use(custommiddleware.Recovery(cfg, appLog))

	router.Use(custommiddleware.CORS(cfg))

	// Generation requests dominate the latency budget.
	router.Use(chimiddleware.Timeout(cfg.AITimeout + 5*time.Second))

	router.Use(chimiddleware.Compress(5))

	if cfg.IsDevelopment() {
		router.Use(chimiddleware.Heartbeat("/ping"))
	}
}

func setupRoutes(router *chi.Mux, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(cfg, appDB, appStores, appLog)
	goalsHandler := handlers.NewGoalsHandler(appStores, appLog)
	spacesHandler := handlers.NewSpacesHandler(appStores, appLog)
	documentsHandler := handlers.NewDocumentsHandler(appStores, appLog)
	chatHandler := handlers.NewChatHandler(appStores, appGenerator, appLog)
	generateHandler := handlers.NewGenerateHandler(appStores, appGenerator, appLog)

	router.Get("/", authHandler.HealthCheck)

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)

			// Logout needs the caller's identity to know which store
			// to tear down.
			r.Group(func(r chi.Router) {
				r.Use(custommiddleware.AuthMiddleware(cfg, appLog))
				r.Post("/logout", authHandler.Logout)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.AuthMiddleware(cfg, appLog))

			r.Route("/goals", func(r chi.Router) {
				r.Get("/", goalsHandler.ListGoals)
				r.Post("/", goalsHandler.CreateGoal)
				r.Post("/sync", goalsHandler.SyncGoals)
				r.Put("/current", goalsHandler.SetCurrentGoal)
			})

			r.Route("/spaces/{spaceID}", func(r chi.Router) {
				r.Post("/todos/{index}/toggle", spacesHandler.ToggleTodo)
				r.Put("/todos", spacesHandler.UpdateTodos)
				r.Post("/collapse", spacesHandler.ToggleCollapse)
				r.Put("/plan", spacesHandler.SetPlan)
				r.Put("/research", spacesHandler.SetResearch)
				r.Put("/content", spacesHandler.SetContent)

				r.Route("/documents", func(r chi.Router) {
					r.Get("/", documentsHandler.ListDocuments)
					r.Post("/", documentsHandler.CreateDocument)
					r.Post("/load", documentsHandler.LoadDocuments)
				})

				r.Route("/chat", func(r chi.Router) {
					r.Get("/", chatHandler.GetMessages)
					r.Post("/", chatHandler.SendMessage)
					r.Delete("/", chatHandler.ClearChat)
				})
			})

			r.Route("/ai", func(r chi.Router) {
				r.Post("/generate", generateHandler.Generate)
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteNotFoundResponse(w, fmt.Sprintf("Route not found: %s %s", r.Method, r.URL.Path))
	})

	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponseWithCode(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			fmt.Sprintf("Method %s not allowed for %s", r.Method, r.URL.Path), "")
	})
}
