package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"goalspace-backend/pkg/config"
	"goalspace-backend/pkg/logger"
	"goalspace-backend/pkg/utils"
)

// Recovery converts panics into 500 responses. Stack traces are only
// exposed to the client in development.
func Recovery(cfg *config.Config, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					stack := debug.Stack()
					log.Error("panic recovered",
						"path", r.URL.Path, "error", err, "stack", string(stack))

					if cfg.IsDevelopment() {
						utils.WriteErrorResponseWithCode(w, http.StatusInternalServerError,
							"INTERNAL_SERVER_ERROR",
							fmt.Sprintf("Internal server error: %v", err),
							string(stack))
					} else {
						utils.WriteInternalServerErrorResponse(w, "Internal server error occurred")
					}
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
